// Copyright 2022 Sylvain Müller. All rights reserved.
// Mount of this source code is governed by a Apache-2.0 license that can be found
// at https://github.com/tigerwill90/muxtree/blob/master/LICENSE.txt.

package muxdebug

import (
	"net/http"
	"net/http/httputil"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/tigerwill90/muxtree"
)

var Version = "v0.1.0"

// Handler returns a muxtree.Handler that responds with the matched route, its parameters, every registered
// route and the routing tree of r. Additionally, if a "sleep" query parameter is provided with a valid
// duration, the handler will sleep for the specified duration before responding. This handler may leak
// sensitive information and is only useful for debugging purposes.
func Handler(r *muxtree.Router) muxtree.Handler {
	return muxtree.HandlerFunc(func(w http.ResponseWriter, req *http.Request, params muxtree.Params) {
		if sleep := req.URL.Query().Get("sleep"); sleep != "" {
			if d, err := time.ParseDuration(sleep); err == nil {
				time.Sleep(d)
			}
		}

		w.Header().Set(muxtree.HeaderServer, "muxtree "+Version)
		w.Header().Set(muxtree.HeaderContentType, muxtree.MIMETextPlainCharsetUTF8)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(dump(r, req, params)))
	})
}

func dump(r *muxtree.Router, req *http.Request, params muxtree.Params) string {
	path := req.URL.Path
	if len(req.URL.RawPath) > 0 {
		path = req.URL.RawPath
	}
	res := r.Tree().Lookup(req.Method, path)

	hostname, err := os.Hostname()
	if err != nil {
		hostname = "unknown"
	}

	requestDump, err := httputil.DumpRequest(req, false)
	if err != nil {
		requestDump = []byte("Failed to dump request")
	}

	var builder strings.Builder
	builder.WriteString("Version: ")
	builder.WriteString(Version)
	builder.WriteString("\n\n")

	builder.WriteString("Handler Information:\n")
	builder.WriteString("Matched Route: ")
	builder.WriteString(req.Method)
	builder.WriteByte(' ')
	builder.WriteString(res.Pattern)
	builder.WriteByte('\n')
	builder.WriteString("Route Parameters:\n")
	if len(params) > 0 {
		for _, param := range params {
			builder.WriteString("- ")
			builder.WriteString(param.Key)
			builder.WriteString(": ")
			builder.WriteString(param.Value)
			builder.WriteByte('\n')
		}
	} else {
		builder.WriteString("- None\n")
	}

	builder.WriteString("\nRegistered Routes (")
	builder.WriteString(strconv.Itoa(r.Len()))
	builder.WriteString("):\n")
	for route := range r.Routes() {
		builder.WriteString("- ")
		builder.WriteString(route.Method)
		builder.WriteByte(' ')
		builder.WriteString(route.Pattern)
		builder.WriteByte('\n')
	}

	builder.WriteString("\nRouting Tree:\n")
	builder.WriteString(r.Tree().String())

	builder.WriteString("\nRequest Dump:\n")
	builder.Write(requestDump)

	builder.WriteString("\nSystem Information:\n")
	builder.WriteString("Hostname: ")
	builder.WriteString(hostname)
	builder.WriteByte('\n')
	builder.WriteString("Go Version: ")
	builder.WriteString(runtime.Version())
	builder.WriteByte('\n')
	builder.WriteString("Number of Goroutines: ")
	builder.WriteString(strconv.Itoa(runtime.NumGoroutine()))
	builder.WriteByte('\n')

	return builder.String()
}
