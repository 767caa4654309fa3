// spans.go — sidecar byte-offset spans for the Lavendish AST.
//
// The AST (see parser.go) is an S-expression: a node is []any whose first
// element is a string tag. Nodes don't carry their own span field; instead
// the parser records one Span per node, in strict post-order (children
// before parent), and BuildSpanIndexPostOrder binds those spans to a
// structural NodePath by re-walking the finished tree in the same order.
// This keeps the AST itself tiny and serializable while still letting
// error messages point at a precise byte range.
package lavendish

import "strconv"

// Span is a half-open byte interval [Start, End) in the original UTF-8
// source. Line/column are not stored here; callers derive them on demand.
type Span struct {
	Start int
	End   int
}

// NodePath addresses a node by the chain of child indices from the root:
// []int{0, 2, 1} means "root's child 0 -> its child 2 -> its child 1",
// where child i of an S-expression node refers to node[i+1].
type NodePath []int

func (p NodePath) key() string {
	if len(p) == 0 {
		return ""
	}
	b := make([]byte, 0, len(p)*2)
	for i, n := range p {
		if i > 0 {
			b = append(b, '.')
		}
		b = strconv.AppendInt(b, int64(n), 10)
	}
	return string(b)
}

// SpanIndex maps NodePaths to Spans. Read-only after construction, safe
// for concurrent reads.
type SpanIndex struct {
	byPath map[string]Span
}

// Get returns the span recorded for path, or the zero Span if none.
func (si *SpanIndex) Get(path NodePath) (Span, bool) {
	if si == nil {
		return Span{}, false
	}
	s, ok := si.byPath[path.key()]
	return s, ok
}

// BuildSpanIndexPostOrder binds a flat, post-order list of spans (one per
// AST node, produced by the parser) to structural NodePaths by replaying
// the same post-order walk over the finished tree.
// wrapperTags are list nodes the parser builds without emitting a span
// ("args" of a call, "params" of a definition, "arms" of a match); the
// replay recurses through them without consuming a span.
var wrapperTags = map[string]bool{"args": true, "params": true, "param": true, "arms": true}

func BuildSpanIndexPostOrder(ast S, spans []Span) *SpanIndex {
	idx := &SpanIndex{byPath: make(map[string]Span, len(spans))}
	i := 0
	var walk func(n S, path NodePath)
	walk = func(n S, path NodePath) {
		if len(n) == 0 {
			return
		}
		for c := 1; c < len(n); c++ {
			if child, ok := n[c].(S); ok {
				walk(child, append(append(NodePath{}, path...), c-1))
			}
		}
		if tag, ok := n[0].(string); ok && wrapperTags[tag] {
			return
		}
		if i < len(spans) {
			idx.byPath[path.key()] = spans[i]
			i++
		}
	}
	walk(ast, NodePath{})
	return idx
}
