// Package migrate implements the cocotb 1.x to 2.x transformation engine:
// a full-fidelity Python parse, a declarative pattern matcher, the rewrite
// pass catalogue, and the per-file runner. The engine performs no I/O of
// its own; the batch layer in this package feeds it file contents.
package migrate

import (
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"

	"github.com/verilab/cocomig/types"
)

// ParseError reports syntactically invalid input. A parse failure is
// fatal for that one file only; no partial tree accompanies it.
type ParseError struct {
	Msg string
	Pos types.Position
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at %d:%d: %s", e.Pos.Line, e.Pos.Column, e.Msg)
}

// Tree is one parsed source unit. The original bytes stay authoritative:
// comments and whitespace live in them, and rewrites are expressed as
// byte-span edits against them, so printing an unedited tree reproduces
// the input exactly.
type Tree struct {
	tree *sitter.Tree
	src  []byte
}

// Parse parses Python source. It returns a ParseError when the source is
// not syntactically valid.
func Parse(src []byte) (*Tree, error) {
	return parseWith(newPyParser(), src)
}

// newPyParser builds a tree-sitter parser bound to the Python grammar.
// Parsers are not safe for concurrent use; callers that reparse keep one
// per pipeline.
func newPyParser() *sitter.Parser {
	p := sitter.NewParser()
	p.SetLanguage(python.GetLanguage())
	return p
}

func parseWith(p *sitter.Parser, src []byte) (*Tree, error) {
	t := p.Parse(nil, src)
	if t == nil {
		return nil, &ParseError{Msg: "parser produced no tree"}
	}
	root := t.RootNode()
	if root.HasError() {
		bad := firstErrorNode(root)
		if bad == nil {
			bad = root
		}
		pt := bad.StartPoint()
		msg := "syntax error"
		if bad.IsMissing() {
			msg = fmt.Sprintf("missing %q", bad.Type())
		}
		return nil, &ParseError{
			Msg: msg,
			Pos: types.Position{Line: int(pt.Row) + 1, Column: int(pt.Column) + 1},
		}
	}
	return &Tree{tree: t, src: src}, nil
}

// firstErrorNode finds the shallowest-leftmost error or missing node.
func firstErrorNode(n *sitter.Node) *sitter.Node {
	if n.Type() == "ERROR" || n.IsMissing() {
		return n
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		c := n.Child(i)
		if c == nil || !c.HasError() {
			continue
		}
		if bad := firstErrorNode(c); bad != nil {
			return bad
		}
	}
	return nil
}

// Root returns the module node.
func (t *Tree) Root() *sitter.Node { return t.tree.RootNode() }

// Src returns the source bytes the tree was parsed from.
func (t *Tree) Src() []byte { return t.src }

// Print reproduces the source of an unmodified tree byte for byte.
func (t *Tree) Print() []byte { return t.src }

// Text returns the source text of one node.
func (t *Tree) Text(n *sitter.Node) string { return n.Content(t.src) }

// rangeOf converts a node's span to a 1-based range.
func rangeOf(n *sitter.Node) types.Range {
	s, e := n.StartPoint(), n.EndPoint()
	return types.Range{
		Start: types.Position{Line: int(s.Row) + 1, Column: int(s.Column) + 1},
		End:   types.Position{Line: int(e.Row) + 1, Column: int(e.Column) + 1},
	}
}
