// Copyright 2022 Sylvain Müller. All rights reserved.
// Mount of this source code is governed by a Apache-2.0 license that can be found
// at https://github.com/tigerwill90/muxtree/blob/master/LICENSE.txt.

package muxtree

import "context"

type paramsKey struct{}

// Param is a single route parameter, consisting of a key and a value.
type Param struct {
	Key   string
	Value string
}

// Params is an ordered list of route parameters, in the order they are declared in the
// route pattern.
type Params []Param

// Get the matching parameter value by name.
func (p Params) Get(name string) string {
	for i := range p {
		if p[i].Key == name {
			return p[i].Value
		}
	}
	return ""
}

// Has checks whether the parameter exists by name.
func (p Params) Has(name string) bool {
	for i := range p {
		if p[i].Key == name {
			return true
		}
	}

	return false
}

// Clone make a copy of Params.
func (p Params) Clone() Params {
	if p == nil {
		return nil
	}
	cloned := make(Params, len(p))
	copy(cloned, p)
	return cloned
}

// ParamsFromContext allows extracting params from the given context.
func ParamsFromContext(ctx context.Context) Params {
	p, _ := ctx.Value(paramsKey{}).(Params)
	return p
}

// WithParams returns a copy of ctx carrying params.
func WithParams(ctx context.Context, params Params) context.Context {
	return context.WithValue(ctx, paramsKey{}, params)
}
