// Copyright 2022 Sylvain Müller. All rights reserved.
// Mount of this source code is governed by a Apache-2.0 license that can be found
// at https://github.com/tigerwill90/muxtree/blob/master/LICENSE.txt.

package muxtree

import (
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"runtime/debug"
	"strings"
)

// PanicHandlerFunc is a function type that defines how to handle panics that occur during the
// handling of an HTTP request.
type PanicHandlerFunc func(w http.ResponseWriter, r *http.Request, err any)

// DefaultPanicHandler returns a PanicHandlerFunc that logs the recovered panic, including the
// stack trace, with the provided slog.Handler. If the error is not caused by a broken connection,
// it replies with http.StatusInternalServerError.
func DefaultPanicHandler(handler slog.Handler) PanicHandlerFunc {
	log := slog.New(handler)
	return func(w http.ResponseWriter, r *http.Request, err any) {
		log.LogAttrs(
			r.Context(),
			slog.LevelError,
			"panic recovered",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Any("error", err),
			slog.String("stack", string(debug.Stack())),
		)
		if !connIsBroken(err) {
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		}
	}
}

// recover calls the panic handler, except for http.ErrAbortHandler which is re-panicked so that
// the http server handles it as an abort.
func (mux *Router) recover(w http.ResponseWriter, r *http.Request) {
	if val := recover(); val != nil {
		if abortErr, ok := val.(error); ok && errors.Is(abortErr, http.ErrAbortHandler) {
			panic(abortErr)
		}
		mux.onPanic(w, r, val)
	}
}

func connIsBroken(err any) bool {
	if ne, ok := err.(*net.OpError); ok {
		var se *os.SyscallError
		if errors.As(ne, &se) {
			seStr := strings.ToLower(se.Error())
			return strings.Contains(seStr, "broken pipe") || strings.Contains(seStr, "connection reset by peer")
		}
	}
	return false
}
