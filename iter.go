package muxtree

import (
	"iter"
	"slices"
)

// RouteInfo describes a registered route.
type RouteInfo struct {
	Handler Handler
	Method  string
	Pattern string
	// Parameter names in declaration order.
	Params []string
}

// Routes returns an iterator over all registered routes. Routes are yielded in tree order, i.e. the order
// in which a lookup tries them, and by method in lexicographical order for routes sharing the same node.
func (t *Tree) Routes() iter.Seq[RouteInfo] {
	return func(yield func(RouteInfo) bool) {
		it := newIterator(t.root)
		for it.hasNextLeaf() {
			n := it.current
			for _, method := range n.methods() {
				ep := n.endpoints[method]
				info := RouteInfo{
					Handler: ep.handler,
					Method:  method,
					Pattern: ep.pattern,
					Params:  slices.Clone(ep.params),
				}
				if !yield(info) {
					return
				}
			}
		}
	}
}

func newIterator(n *node) *iterator {
	return &iterator{
		stack: [][]*node{{n}},
	}
}

// iterator performs a depth-first walk of the tree, visiting child groups in lookup priority order.
type iterator struct {
	current *node
	stack   [][]*node
}

func (it *iterator) hasNextLeaf() bool {
	for it.hasNext() {
		if it.current.isLeaf() {
			return true
		}
	}
	return false
}

func (it *iterator) hasNext() bool {
	for len(it.stack) > 0 {
		n := len(it.stack)
		last := it.stack[n-1]
		if len(last) == 0 {
			it.stack = it.stack[:n-1]
			continue
		}

		elem := last[0]
		it.stack[n-1] = last[1:]

		var edges []*node
		for _, nds := range elem.children {
			edges = append(edges, nds...)
		}
		if len(edges) > 0 {
			it.stack = append(it.stack, edges)
		}

		it.current = elem
		return true
	}

	it.current = nil
	return false
}
