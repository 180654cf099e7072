// Copyright 2022 Sylvain Müller. All rights reserved.
// Mount of this source code is governed by a Apache-2.0 license that can be found
// at https://github.com/tigerwill90/muxtree/blob/master/LICENSE.txt.

package muxtree

import "slices"

// matchContext accumulates the state of a single lookup. Values are captured in the
// order variable segments are accepted during the descent, and popped when a branch
// is abandoned. A matchContext is owned by one lookup at a time.
type matchContext struct {
	values  []string
	allowed []string
	// Set when a leaf matched the path but had no endpoint for the requested method.
	methodNotAllowed bool
}

func newMatchContext(maxParams int) *matchContext {
	return &matchContext{
		values: make([]string, 0, maxParams),
	}
}

func (c *matchContext) reset() {
	c.values = c.values[:0]
	c.allowed = c.allowed[:0]
	c.methodNotAllowed = false
}

func (c *matchContext) push(value string) {
	c.values = append(c.values, value)
}

func (c *matchContext) pop() {
	c.values = c.values[:len(c.values)-1]
}

// allow records the methods of a leaf matching the path for another method.
func (c *matchContext) allow(n *node) {
	c.methodNotAllowed = true
	for method := range n.endpoints {
		if !slices.Contains(c.allowed, method) {
			c.allowed = append(c.allowed, method)
		}
	}
}

// params binds the captured values to the parameter names of ep. Names and values are
// zipped positionally; the returned Params does not alias the context.
func (c *matchContext) params(ep *endpoint) Params {
	if len(ep.params) == 0 {
		return nil
	}
	n := min(len(ep.params), len(c.values))
	params := make(Params, n)
	for i := 0; i < n; i++ {
		params[i] = Param{Key: ep.params[i], Value: c.values[i]}
	}
	return params
}

// allowedMethods returns a sorted copy of the recorded methods.
func (c *matchContext) allowedMethods() []string {
	if len(c.allowed) == 0 {
		return nil
	}
	allowed := slices.Clone(c.allowed)
	slices.Sort(allowed)
	return allowed
}
