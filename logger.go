// Copyright 2022 Sylvain Müller. All rights reserved.
// Mount of this source code is governed by a Apache-2.0 license that can be found
// at https://github.com/tigerwill90/muxtree/blob/master/LICENSE.txt.

package muxtree

import (
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/tigerwill90/muxtree/internal/slogpretty"
)

// NewLogHandler returns a slog.Handler that writes colourised, human-friendly records to os.Stdout,
// and records of level error and above to os.Stderr.
func NewLogHandler(lvl slog.Leveler) slog.Handler {
	return slogpretty.New(os.Stdout, os.Stderr, lvl)
}

// LoggerWithHandler returns a Handler that calls next and logs the request using the provided slog.Handler.
// It logs details such as the HTTP method, request path, route parameters, status code and latency.
func LoggerWithHandler(handler slog.Handler, next Handler) Handler {
	log := slog.New(handler)
	return HandlerFunc(func(w http.ResponseWriter, r *http.Request, params Params) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w}
		next.ServeHTTP(rec, r, params)
		latency := time.Since(start)

		status := rec.Status()
		attrs := make([]slog.Attr, 0, 5)
		attrs = append(attrs,
			slog.Int("status", status),
			slog.String("method", r.Method),
			slog.String("path", r.URL.String()),
			slog.Duration("latency", roundLatency(latency)),
		)
		if len(params) > 0 {
			group := make([]any, 0, len(params))
			for _, p := range params {
				group = append(group, slog.String(p.Key, p.Value))
			}
			attrs = append(attrs, slog.Group("params", group...))
		}

		log.LogAttrs(r.Context(), level(status), r.RemoteAddr, attrs...)
	})
}

// statusRecorder captures the status code written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (w *statusRecorder) WriteHeader(code int) {
	if w.status == 0 {
		w.status = code
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusRecorder) Write(b []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}
	return w.ResponseWriter.Write(b)
}

// Status returns the written status code, or http.StatusOK if nothing was written.
func (w *statusRecorder) Status() int {
	if w.status == 0 {
		return http.StatusOK
	}
	return w.status
}

// Unwrap returns the underlying http.ResponseWriter, for http.ResponseController.
func (w *statusRecorder) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}

func level(status int) slog.Level {
	switch {
	case status >= 200 && status < 300:
		return slog.LevelInfo
	case status >= 300 && status < 400:
		return slog.LevelDebug
	case status >= 400 && status < 500:
		return slog.LevelWarn
	case status >= 500:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func roundLatency(d time.Duration) time.Duration {
	switch {
	case d < 1*time.Microsecond:
		return d.Round(100 * time.Nanosecond)
	case d < 1*time.Millisecond:
		return d.Round(10 * time.Microsecond)
	case d < 10*time.Millisecond:
		return d.Round(100 * time.Microsecond)
	case d < 100*time.Millisecond:
		return d.Round(1 * time.Millisecond)
	case d < 1*time.Second:
		return d.Round(10 * time.Millisecond)
	case d < 10*time.Second:
		return d.Round(100 * time.Millisecond)
	default:
		return d.Round(1 * time.Second)
	}
}
