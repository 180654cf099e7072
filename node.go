package muxtree

import (
	"regexp"
	"slices"
	"sort"
	"strings"
)

type nodeKind uint8

const (
	staticKind nodeKind = iota
	regexpKind
	paramKind
	catchAllKind

	kindCount = int(catchAllKind) + 1
)

func (k nodeKind) String() string {
	switch k {
	case staticKind:
		return "static"
	case regexpKind:
		return "regexp"
	case paramKind:
		return "param"
	case catchAllKind:
		return "catch-all"
	default:
		return "unknown"
	}
}

type node struct {
	// Registered endpoints keyed by method. Nil unless the node terminates at least one route.
	endpoints map[string]*endpoint

	// Compiled expression of a regexp node.
	rex *regexp.Regexp

	// Literal text of a static node, anchored expression of a regexp node, or the raw
	// segment ({name}, *name) of a param and catch-all node.
	prefix string

	// Child nodes grouped by kind. Each group is sorted by label, and variable nodes
	// whose tail is '/' come last in their group.
	children [kindCount][]*node

	// First byte of the prefix, used to select an edge within a group.
	label byte

	// Delimiter ending the value captured by a variable node.
	tail byte

	kind nodeKind
}

type endpoint struct {
	handler Handler
	pattern string
	// Parameter names in declaration order.
	params []string
}

func (n *node) isLeaf() bool {
	return n.endpoints != nil
}

// addChild attaches child to n, using search as the pattern text the child starts at. A
// search that mixes literal and variable parts is subdivided into a chain of single
// purpose nodes. addChild returns the node where the pattern ends. The pattern must have
// been validated by parsePattern.
func (n *node) addChild(child *node, search string) *node {
	leaf := child

	seg, err := nextSegment(search)
	if err != nil {
		panic("internal error: adding child from an invalid pattern")
	}

	if seg.kind != staticKind {
		if seg.start == 0 {
			child.kind = seg.kind
			child.label = search[0]
			child.tail = seg.tail
			child.prefix = search[:seg.end]
			if seg.kind == regexpKind {
				child.prefix = seg.regexp
				child.rex = regexp.MustCompile(seg.regexp)
			}
			if seg.kind == catchAllKind {
				child.tail = 0
			}

			if seg.end < len(search) {
				// Variable nodes are never adjacent, so what follows is static text.
				rest := search[seg.end:]
				leaf = child.addChild(&node{label: rest[0], prefix: rest}, rest)
			}
		} else {
			child.kind = staticKind
			child.prefix = search[:seg.start]
			child.rex = nil
			child.tail = 0

			rest := search[seg.start:]
			leaf = child.addChild(&node{label: rest[0]}, rest)
		}
	}

	n.children[child.kind] = append(n.children[child.kind], child)
	n.sortEdges(child.kind)
	return leaf
}

// sortEdges restores the ordering of a child group: label ascending, with variable nodes
// delimited by '/' moved last since they match up to the end of the segment.
func (n *node) sortEdges(kind nodeKind) {
	nds := n.children[kind]
	if len(nds) < 2 {
		return
	}
	if kind == staticKind {
		slices.SortStableFunc(nds, func(a, b *node) int {
			return int(a.label) - int(b.label)
		})
		return
	}
	slices.SortStableFunc(nds, func(a, b *node) int {
		if ta, tb := a.tail == slashDelim, b.tail == slashDelim; ta != tb {
			if ta {
				return 1
			}
			return -1
		}
		return int(a.label) - int(b.label)
	})
}

// replaceChild swaps the child of the given kind, label and tail for child.
func (n *node) replaceChild(kind nodeKind, label, tail byte, child *node) {
	nds := n.children[kind]
	for i := range nds {
		if nds[i].label == label && nds[i].tail == tail {
			child.label = label
			child.tail = tail
			nds[i] = child
			return
		}
	}
	panic("internal error: replacing missing child")
}

// getEdge returns the child matching the given kind, label and tail. Regexp children
// must also have the same expression.
func (n *node) getEdge(kind nodeKind, label, tail byte, prefix string) *node {
	if kind == staticKind {
		return n.getStaticEdge(label)
	}
	for _, child := range n.children[kind] {
		if child.label != label || child.tail != tail {
			continue
		}
		if kind == regexpKind && child.prefix != prefix {
			continue
		}
		return child
	}
	return nil
}

// getStaticEdge performs a binary search over the static children for label.
func (n *node) getStaticEdge(label byte) *node {
	nds := n.children[staticKind]
	num := len(nds)
	idx := sort.Search(num, func(i int) bool { return nds[i].label >= label })
	if idx < num && nds[idx].label == label {
		return nds[idx]
	}
	return nil
}

// setEndpoint registers handler for method on n and returns the endpoint it replaced, if any.
func (n *node) setEndpoint(method string, handler Handler, pattern string, params []string) *endpoint {
	if n.endpoints == nil {
		n.endpoints = make(map[string]*endpoint)
	}
	prev := n.endpoints[method]
	n.endpoints[method] = &endpoint{
		handler: handler,
		pattern: pattern,
		params:  params,
	}
	return prev
}

// methods returns the methods registered on n in lexicographical order.
func (n *node) methods() []string {
	methods := make([]string, 0, len(n.endpoints))
	for method := range n.endpoints {
		methods = append(methods, method)
	}
	slices.Sort(methods)
	return methods
}

func (n *node) String() string {
	return n.string(0)
}

func (n *node) string(space int) string {
	sb := strings.Builder{}
	sb.WriteString(strings.Repeat(" ", space))
	sb.WriteString("path: ")
	sb.WriteString(n.prefix)
	if n.kind != staticKind {
		sb.WriteString(" [")
		sb.WriteString(n.kind.String())
		if n.tail != 0 {
			sb.WriteString(", tail=")
			sb.WriteByte(n.tail)
		}
		sb.WriteByte(']')
	}

	if n.isLeaf() {
		sb.WriteString(" (leaf")
		for _, method := range n.methods() {
			sb.WriteByte(' ')
			sb.WriteString(method)
			sb.WriteByte('=')
			sb.WriteString(n.endpoints[method].pattern)
		}
		sb.WriteByte(')')
	}

	sb.WriteByte('\n')
	for _, nds := range n.children {
		for _, child := range nds {
			sb.WriteString(child.string(space + 2))
		}
	}
	return sb.String()
}
