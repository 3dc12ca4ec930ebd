package migrate

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/verilab/cocomig/types"
)

// Pass is one self-contained rewrite rule, applied in a single post-order
// traversal of one tree. Implementations are read-only configuration
// shared across files; all per-run state lives in the Context, so a
// caller may migrate many files concurrently with one catalogue.
type Pass interface {
	Name() string

	// Kinds returns the node kinds the pass inspects. The runner only
	// offers nodes of these kinds to the pass.
	Kinds() []string

	// Pattern is the pass's trigger shape. Visit runs only for nodes that
	// match it, and the detection pre-scan asks it without rewriting.
	Pattern() Pattern

	// Visit may record edits and diagnostics for one matched node. A pass
	// declines shapes it does not recognize by returning without
	// recording anything; it must not fail.
	Visit(cx *Context, n *sitter.Node)
}

// Finalizer is implemented by passes that act once at the end of a
// traversal, e.g. to insert file-level advisory comments gathered from
// accumulator flags.
type Finalizer interface {
	Finalize(cx *Context)
}

// Context carries the state of one pass's traversal over one tree:
// pending edits, diagnostics, and accumulator flags. The runner creates
// it and discards it when the traversal ends; nothing outlives the run.
type Context struct {
	src   []byte
	pass  string
	seq   int
	edits []Edit
	diags []types.Diagnostic
	flags map[string]bool
}

func newContext(src []byte, pass string) *Context {
	return &Context{src: src, pass: pass, flags: make(map[string]bool)}
}

// Src returns the source text this traversal reads from.
func (cx *Context) Src() []byte { return cx.src }

// Text returns the original source text of a node.
func (cx *Context) Text(n *sitter.Node) string { return n.Content(cx.src) }

// Take returns the current text of n with any edits already recorded
// inside its span applied, and removes those edits from the pending set.
// A parent rewrite that embeds a child's text therefore sees the child's
// rewrite, which is what post-order traversal promises.
func (cx *Context) Take(n *sitter.Node) string {
	start, end := n.StartByte(), n.EndByte()
	var inner, rest []Edit
	for _, e := range cx.edits {
		if e.Start >= start && e.End <= end {
			inner = append(inner, e)
		} else {
			rest = append(rest, e)
		}
	}
	cx.edits = rest
	return spliceWithin(cx.src, start, end, inner)
}

// Replace records an edit substituting text for the node's span.
func (cx *Context) Replace(n *sitter.Node, text string) {
	cx.ReplaceSpan(n.StartByte(), n.EndByte(), text)
}

// ReplaceSpan records an edit substituting text for [start, end).
func (cx *Context) ReplaceSpan(start, end uint32, text string) {
	cx.edits = append(cx.edits, Edit{Start: start, End: end, Text: text, pass: cx.pass, seq: cx.seq})
	cx.seq++
}

// Insert records an insertion at the given offset.
func (cx *Context) Insert(at uint32, text string) { cx.ReplaceSpan(at, at, text) }

// Delete records a deletion of [start, end).
func (cx *Context) Delete(start, end uint32) { cx.ReplaceSpan(start, end, "") }

// Report records a diagnostic for the node (nil for file-scoped
// findings). Diagnostics surface migrations that cannot be mechanized;
// they are never dropped and never fatal.
func (cx *Context) Report(sev types.Severity, n *sitter.Node, msg string) {
	d := types.Diagnostic{Pass: cx.pass, Severity: sev, Message: msg}
	if n != nil {
		d.Range = rangeOf(n)
	}
	cx.diags = append(cx.diags, d)
}

// SetFlag raises an accumulator flag scoped to this traversal.
func (cx *Context) SetFlag(name string) { cx.flags[name] = true }

// Flag reads an accumulator flag.
func (cx *Context) Flag(name string) bool { return cx.flags[name] }

// Modified reports whether the pass recorded any rewrite.
func (cx *Context) Modified() bool { return len(cx.edits) > 0 }

// walk visits every node in post-order: children before parents, so a
// child's rewrite is already recorded when its parent is considered.
func walk(n *sitter.Node, visit func(*sitter.Node)) {
	if n == nil {
		return
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		walk(n.Child(i), visit)
	}
	visit(n)
}
