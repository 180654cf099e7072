// Copyright 2022 Sylvain Müller. All rights reserved.
// Mount of this source code is governed by a Apache-2.0 license that can be found
// at https://github.com/tigerwill90/muxtree/blob/master/LICENSE.txt.

package muxtree

import (
	"strings"
	"sync"
)

// Status is the outcome of a route lookup.
type Status uint8

const (
	// NotFound means that no registered route matches the path.
	NotFound Status = iota
	// Matched means that a route matches both the method and the path.
	Matched
	// MethodNotAllowed means that at least one route matches the path, but none for the requested method.
	MethodNotAllowed
)

func (s Status) String() string {
	switch s {
	case Matched:
		return "matched"
	case MethodNotAllowed:
		return "method_not_allowed"
	default:
		return "not_found"
	}
}

// Result holds the outcome of [Tree.Lookup]. Handler, Pattern and Params are only set when
// Status is [Matched]. Allowed lists, in lexicographical order, the methods of the routes
// matching the path when Status is [MethodNotAllowed].
type Result struct {
	Handler Handler
	Pattern string
	Params  Params
	Allowed []string
	Status  Status
}

// Tree is a method-aware radix tree of routes. Routes are inserted while the owning
// [Router] is being built; once the router is frozen, the tree is never mutated again
// and is safe for concurrent lookups without any coordination.
type Tree struct {
	pool      sync.Pool
	root      *node
	maxParams int
	size      int
}

func newTree() *Tree {
	t := &Tree{
		root: &node{kind: staticKind},
	}
	t.pool = sync.Pool{
		New: func() any {
			return newMatchContext(t.maxParams)
		},
	}
	return t
}

// Lookup returns the route matching method and path. It never mutates the tree and is safe
// for concurrent use once the tree is frozen.
func (t *Tree) Lookup(method, path string) Result {
	c := t.pool.Get().(*matchContext)
	c.reset()
	defer t.pool.Put(c)

	n := t.lookup(t.root, method, path, c)
	if n != nil {
		ep := n.endpoints[method]
		return Result{
			Status:  Matched,
			Handler: ep.handler,
			Pattern: ep.pattern,
			Params:  c.params(ep),
		}
	}

	if c.methodNotAllowed {
		return Result{
			Status:  MethodNotAllowed,
			Allowed: c.allowedMethods(),
		}
	}

	return Result{Status: NotFound}
}

// Len returns the number of registered (method, pattern) pairs.
func (t *Tree) Len() int {
	return t.size
}

func (t *Tree) String() string {
	return t.root.String()
}

// insertResult describes what an insertion did, for logging.
type insertResult struct {
	replaced *endpoint
	params   []string
}

// insert registers handler for method and pattern. The pattern is fully validated before the
// tree is touched, so a failed insertion leaves the tree unchanged. Registering an existing
// (method, pattern) pair replaces its handler. insert is not safe for concurrent use.
func (t *Tree) insert(method, pattern string, handler Handler) (insertResult, error) {
	params, err := parsePattern(pattern)
	if err != nil {
		return insertResult{}, err
	}

	leaf := t.root.insert(pattern)
	prev := leaf.setEndpoint(method, handler, pattern, params)
	if prev == nil {
		t.size++
	}
	t.maxParams = max(t.maxParams, len(params))

	return insertResult{replaced: prev, params: params}, nil
}

// insert walks the tree for pattern, creating and splitting nodes as needed, and returns
// the node where the pattern ends.
func (n *node) insert(pattern string) *node {
	var parent *node
	search := pattern

	for {
		if len(search) == 0 {
			return n
		}

		// A variable segment is looked up by its kind, tail and expression.
		label := search[0]
		var seg segment
		if label == bracketDelim || label == starDelim {
			var err error
			if seg, err = nextSegment(search); err != nil {
				panic("internal error: inserting an invalid pattern")
			}
		}

		var prefix string
		if seg.kind == regexpKind {
			prefix = seg.regexp
		}

		parent = n
		n = n.getEdge(seg.kind, label, seg.tail, prefix)

		if n == nil {
			child := &node{label: label, tail: seg.tail, prefix: search}
			return parent.addChild(child, search)
		}

		if n.kind != staticKind {
			// Variable nodes are never split, the whole segment is consumed at once.
			search = search[seg.end:]
			continue
		}

		cp := longestPrefix(search, n.prefix)
		if cp == len(n.prefix) {
			search = search[cp:]
			continue
		}

		// e.g. matched until "s" for "st" node when inserting "sa".
		// te
		// ├── st
		// └── am
		//
		// After patching
		// te
		// ├── am
		// └── s
		//     ├── a
		//     └── t
		// 1. Create the intermediate "s" node and swap it with "st" in the parent.
		// 2. Shrink "st" to "t" and attach it to "s".
		// 3. Attach the remaining "a" suffix to "s", unless the pattern ends at "s".
		child := &node{
			kind:   staticKind,
			prefix: search[:cp],
		}
		parent.replaceChild(staticKind, label, 0, child)

		n.label = n.prefix[cp]
		n.prefix = n.prefix[cp:]
		child.addChild(n, n.prefix)

		search = search[cp:]
		if len(search) == 0 {
			return child
		}

		return child.addChild(&node{label: search[0], prefix: search}, search)
	}
}

// lookup performs a priority ordered, backtracking descent from n: static children first,
// then regexp, param and catch-all children. It returns the leaf holding an endpoint for
// method, or nil.
func (t *Tree) lookup(n *node, method, path string, c *matchContext) *node {
	for i := range n.children {
		kind := nodeKind(i)
		nds := n.children[kind]
		if len(nds) == 0 {
			continue
		}

		switch kind {
		case staticKind:
			if path == "" {
				continue
			}
			child := n.getStaticEdge(path[0])
			// A label match does not guarantee a full prefix match.
			if child == nil || !strings.HasPrefix(path, child.prefix) {
				continue
			}
			if found := t.visit(child, method, path[len(child.prefix):], c); found != nil {
				return found
			}

		case regexpKind, paramKind:
			if path == "" {
				continue
			}
			for _, child := range nds {
				end := strings.IndexByte(path, child.tail)
				if end < 0 {
					if child.tail != slashDelim {
						continue
					}
					end = len(path)
				}
				// Empty values are never captured.
				if end == 0 {
					continue
				}

				value := path[:end]
				if kind == regexpKind {
					if !child.rex.MatchString(value) {
						continue
					}
				} else if strings.IndexByte(value, slashDelim) >= 0 {
					// Params never span path segments.
					continue
				}

				c.push(value)
				if found := t.visit(child, method, path[end:], c); found != nil {
					return found
				}
				c.pop()
			}

		case catchAllKind:
			c.push(path)
			if found := t.visit(nds[0], method, "", c); found != nil {
				return found
			}
			c.pop()
		}
	}

	return nil
}

// visit checks whether child terminates the lookup and otherwise descends into it.
func (t *Tree) visit(child *node, method, path string, c *matchContext) *node {
	if path == "" && child.isLeaf() {
		if _, ok := child.endpoints[method]; ok {
			return child
		}
		// Keep scanning, another branch may still match this method.
		c.allow(child)
	}
	return t.lookup(child, method, path, c)
}

// longestPrefix finds the length of the shared prefix of two strings.
func longestPrefix(k1, k2 string) int {
	n := min(len(k1), len(k2))
	for i := 0; i < n; i++ {
		if k1[i] != k2[i] {
			return i
		}
	}
	return n
}
