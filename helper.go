package muxtree

import (
	"net/http"
)

// WrapF is an adapter for wrapping http.HandlerFunc and returns a Handler function.
// The route parameters are made available via [ParamsFromContext].
func WrapF(f http.HandlerFunc) Handler {
	return WrapH(f)
}

// WrapH is an adapter for wrapping http.Handler and returns a Handler function.
// The route parameters are made available via [ParamsFromContext].
func WrapH(h http.Handler) Handler {
	return HandlerFunc(func(w http.ResponseWriter, r *http.Request, params Params) {
		if len(params) > 0 {
			h.ServeHTTP(w, r.WithContext(WithParams(r.Context(), params)))
			return
		}
		h.ServeHTTP(w, r)
	})
}
