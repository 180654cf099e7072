// Copyright 2022 Sylvain Müller. All rights reserved.
// Mount of this source code is governed by a Apache-2.0 license that can be found
// at https://github.com/tigerwill90/muxtree/blob/master/LICENSE.txt.

package muxtree

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
)

// Option configures a [Router].
type Option interface {
	apply(*Router) error
}

type optionFunc func(*Router) error

func (o optionFunc) apply(r *Router) error {
	return o(r)
}

// WithNoRouteHandler register an http.Handler which is called when no matching route is found.
// By default, the [DefaultNotFoundHandler] is used.
func WithNoRouteHandler(handler http.Handler) Option {
	return optionFunc(func(r *Router) error {
		if handler == nil {
			return fmt.Errorf("%w: no route handler cannot be nil", ErrInvalidConfig)
		}
		r.noRoute = handler
		return nil
	})
}

// WithNoMethodHandler register an http.Handler which is called when the request cannot be routed,
// but the same route exist for other methods. The "Allow" header it automatically set before calling the
// handler. By default, the [DefaultMethodNotAllowedHandler] is used. Note that this option automatically
// enable [WithNoMethod].
func WithNoMethodHandler(handler http.Handler) Option {
	return optionFunc(func(r *Router) error {
		if handler == nil {
			return fmt.Errorf("%w: no method handler cannot be nil", ErrInvalidConfig)
		}
		r.noMethod = handler
		r.handle405 = true
		return nil
	})
}

// WithNoMethod enable or disable the "405 Method Not Allowed" reply. When disabled, requests matching
// only routes registered for other methods are handled by the no route handler. Enabled by default.
// Note that [Router.Lookup] always reports [MethodNotAllowed], regardless of this option.
func WithNoMethod(enable bool) Option {
	return optionFunc(func(r *Router) error {
		r.handle405 = enable
		return nil
	})
}

// WithLogger configures the structured logger used to report route registration, the end of the
// build phase and, at debug level, unmatched requests. By default, nothing is logged. Use
// [NewLogHandler] for a human-friendly console output.
func WithLogger(handler slog.Handler) Option {
	return optionFunc(func(r *Router) error {
		if handler == nil {
			return fmt.Errorf("%w: log handler cannot be nil", ErrInvalidConfig)
		}
		r.logger = handler
		return nil
	})
}

// WithMetrics registers the router metrics on reg: a counter of lookups by status, a gauge of
// registered routes and a counter of failed registrations.
func WithMetrics(reg prometheus.Registerer) Option {
	return optionFunc(func(r *Router) error {
		if reg == nil {
			return fmt.Errorf("%w: prometheus registerer cannot be nil", ErrInvalidConfig)
		}
		r.registry = reg
		return nil
	})
}

// WithPanicHandler register a function to handle panics recovered from route handlers.
// See [DefaultPanicHandler].
func WithPanicHandler(handler PanicHandlerFunc) Option {
	return optionFunc(func(r *Router) error {
		if handler == nil {
			return fmt.Errorf("%w: panic handler cannot be nil", ErrInvalidConfig)
		}
		r.onPanic = handler
		return nil
	})
}
