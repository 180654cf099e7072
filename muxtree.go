// Copyright 2022 Sylvain Müller. All rights reserved.
// Mount of this source code is governed by a Apache-2.0 license that can be found
// at https://github.com/tigerwill90/muxtree/blob/master/LICENSE.txt.

package muxtree

import (
	"context"
	"fmt"
	"iter"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
)

// Handler respond to an HTTP request.
//
// This interface enforce the same contract as http.Handler except that matched route parameters
// are accessible via params, in the order they are declared in the route pattern.
//
// As for http.Handler interface, to abort a handler so the client sees an interrupted response, panic with
// the value http.ErrAbortHandler.
type Handler interface {
	ServeHTTP(http.ResponseWriter, *http.Request, Params)
}

// HandlerFunc is an adapter to allow the use of ordinary functions as HTTP handlers. If f is a function with the
// appropriate signature, HandlerFunc(f) is a Handler that calls f.
type HandlerFunc func(http.ResponseWriter, *http.Request, Params)

// ServeHTTP calls f(w, r, params)
func (f HandlerFunc) ServeHTTP(w http.ResponseWriter, r *http.Request, params Params) {
	f(w, r, params)
}

// Router is an HTTP request router backed by a method-aware radix tree.
//
// A Router has a two phase lifecycle. While it is being built, routes are registered with
// [Router.Handle]. The first call to [Router.Freeze], [Router.Lookup] or [Router.ServeHTTP]
// publishes the tree: from then on, the tree is immutable, registration fails with [ErrFrozen],
// and lookups are safe for concurrent use without any locking.
type Router struct {
	tree      atomic.Pointer[Tree]
	building  *Tree
	noRoute   http.Handler
	noMethod  http.Handler
	onPanic   PanicHandlerFunc
	log       *slog.Logger
	logger    slog.Handler
	registry  prometheus.Registerer
	metrics   *metrics
	mu        sync.Mutex
	handle405 bool
}

var _ http.Handler = (*Router)(nil)

// New returns a ready to use Router, configured with the provided options.
func New(opts ...Option) (*Router, error) {
	mux := &Router{
		building:  newTree(),
		noRoute:   http.HandlerFunc(DefaultNotFoundHandler),
		noMethod:  http.HandlerFunc(DefaultMethodNotAllowedHandler),
		logger:    slog.DiscardHandler,
		handle405: true,
	}

	for _, opt := range opts {
		if err := opt.apply(mux); err != nil {
			return nil, err
		}
	}

	mux.log = slog.New(mux.logger)

	if mux.registry != nil {
		m, err := newMetrics(mux.registry)
		if err != nil {
			return nil, err
		}
		mux.metrics = m
	}

	return mux, nil
}

// MustHandle registers a new handler for the given method and route pattern. On error, it panics.
func (mux *Router) MustHandle(method, pattern string, handler Handler) {
	if err := mux.Handle(method, pattern, handler); err != nil {
		panic(err)
	}
}

// HandleFunc registers a new handler function for the given method and route pattern.
func (mux *Router) HandleFunc(method, pattern string, handler func(http.ResponseWriter, *http.Request, Params)) error {
	if handler == nil {
		return fmt.Errorf("%w: nil handler for route %s %s", ErrInvalidRoute, method, pattern)
	}
	return mux.Handle(method, pattern, HandlerFunc(handler))
}

// Handle registers a new handler for the given method and route pattern. Registering the same method and
// pattern again replaces the previous handler.
//
// It returns a [PatternError] if the pattern is malformed (e.g. unbalanced brace or misplaced wildcard),
// a [DuplicateParamError] if the pattern declares the same parameter twice, and [ErrFrozen] if the router
// already serves requests. A failed registration leaves the routing tree unchanged.
//
// Handle is safe for concurrent use by multiple goroutines, but must happen before the router is frozen.
func (mux *Router) Handle(method, pattern string, handler Handler) error {
	if method == "" {
		return fmt.Errorf("%w: empty method for pattern %s", ErrInvalidMethod, pattern)
	}
	if handler == nil {
		return fmt.Errorf("%w: nil handler for route %s %s", ErrInvalidRoute, method, pattern)
	}

	mux.mu.Lock()
	defer mux.mu.Unlock()

	if mux.building == nil {
		return fmt.Errorf("%w: cannot register route %s %s", ErrFrozen, method, pattern)
	}

	res, err := mux.building.insert(method, pattern, handler)
	if err != nil {
		mux.metrics.registrationFailed()
		mux.log.LogAttrs(
			context.Background(),
			slog.LevelWarn,
			"route registration failed",
			slog.String("method", method),
			slog.String("pattern", pattern),
			slog.String("error", err.Error()),
		)
		return err
	}

	if res.replaced != nil {
		mux.log.LogAttrs(
			context.Background(),
			slog.LevelWarn,
			"route replaced",
			slog.String("method", method),
			slog.String("pattern", pattern),
			slog.String("previous", res.replaced.pattern),
		)
		return nil
	}

	mux.log.LogAttrs(
		context.Background(),
		slog.LevelDebug,
		"route registered",
		slog.String("method", method),
		slog.String("pattern", pattern),
		slog.Any("params", res.params),
	)
	return nil
}

// Freeze ends the build phase and returns the immutable routing tree. Subsequent calls return the
// same tree. Freeze is safe for concurrent use.
func (mux *Router) Freeze() *Tree {
	if t := mux.tree.Load(); t != nil {
		return t
	}

	mux.mu.Lock()
	defer mux.mu.Unlock()

	if t := mux.tree.Load(); t != nil {
		return t
	}

	t := mux.building
	mux.building = nil
	mux.tree.Store(t)

	mux.metrics.setRoutes(t.Len())
	mux.log.LogAttrs(
		context.Background(),
		slog.LevelInfo,
		"router frozen",
		slog.Int("routes", t.Len()),
		slog.Int("max_params", t.maxParams),
	)
	return t
}

// Frozen reports whether the router has left the build phase.
func (mux *Router) Frozen() bool {
	return mux.tree.Load() != nil
}

// Tree returns the routing tree, freezing the router if needed.
func (mux *Router) Tree() *Tree {
	return mux.Freeze()
}

// Lookup returns the route matching method and path, freezing the router if needed. Lookup is safe for
// concurrent use by multiple goroutines.
func (mux *Router) Lookup(method, path string) Result {
	res := mux.Freeze().Lookup(method, path)
	mux.metrics.observe(res.Status)
	return res
}

// Len returns the number of registered routes.
func (mux *Router) Len() int {
	mux.mu.Lock()
	defer mux.mu.Unlock()
	if mux.building != nil {
		return mux.building.Len()
	}
	return mux.tree.Load().Len()
}

// Routes returns an iterator over all registered routes, freezing the router if needed. Routes are
// yielded in tree order.
func (mux *Router) Routes() iter.Seq[RouteInfo] {
	return mux.Freeze().Routes()
}

// ServeHTTP dispatches the request to the handler whose route matches the request method and path.
// When the path matches only routes registered for other methods, the "Allow" header is set and the
// no method handler is called. Otherwise, the no route handler is called.
func (mux *Router) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if mux.onPanic != nil {
		defer mux.recover(w, r)
	}

	path := r.URL.Path
	if len(r.URL.RawPath) > 0 {
		// Using RawPath to prevent unintended match (e.g. /search/a%2Fb/1)
		path = r.URL.RawPath
	}

	res := mux.Lookup(r.Method, path)
	switch res.Status {
	case Matched:
		res.Handler.ServeHTTP(w, r, res.Params)
		return
	case MethodNotAllowed:
		if mux.handle405 {
			w.Header().Set(HeaderAllow, strings.Join(res.Allowed, ", "))
			mux.logUnmatched(r, path, http.StatusMethodNotAllowed)
			mux.noMethod.ServeHTTP(w, r)
			return
		}
	}

	mux.logUnmatched(r, path, http.StatusNotFound)
	mux.noRoute.ServeHTTP(w, r)
}

func (mux *Router) logUnmatched(r *http.Request, path string, status int) {
	if !mux.log.Enabled(r.Context(), slog.LevelDebug) {
		return
	}
	mux.log.LogAttrs(
		r.Context(),
		slog.LevelDebug,
		"no route",
		slog.Int("status", status),
		slog.String("method", r.Method),
		slog.String("path", path),
	)
}

// DefaultNotFoundHandler is a simple http.HandlerFunc that replies to each request
// with a “404 page not found” reply.
func DefaultNotFoundHandler(w http.ResponseWriter, r *http.Request) {
	http.Error(w, "404 page not found", http.StatusNotFound)
}

// DefaultMethodNotAllowedHandler is a simple http.HandlerFunc that replies to each request
// with a “405 Method Not Allowed” reply.
func DefaultMethodNotAllowedHandler(w http.ResponseWriter, r *http.Request) {
	http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
}
