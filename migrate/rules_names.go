package migrate

import (
	sitter "github.com/smacker/go-tree-sitter"
)

// CallRenamePass rewrites bare legacy call names to their namespaced
// replacements, leaving the arguments untouched: fork(coro) becomes
// cocotb.start_soon(coro).
type CallRenamePass struct {
	// Renames maps bare function names to their replacements.
	Renames map[string]string
}

func (p *CallRenamePass) Name() string { return "call-rename" }

func (p *CallRenamePass) Kinds() []string { return []string{"call"} }

func (p *CallRenamePass) Pattern() Pattern {
	return CallTo(patternFunc(func(n *sitter.Node, src []byte) bool {
		if n.Type() != "identifier" {
			return false
		}
		_, ok := p.Renames[n.Content(src)]
		return ok
	}))
}

func (p *CallRenamePass) Visit(cx *Context, n *sitter.Node) {
	fn := n.ChildByFieldName("function")
	if fn == nil {
		return
	}
	cx.Replace(fn, p.Renames[cx.Text(fn)])
}

// QualifyPass rewrites bare references to known symbols into their fully
// qualified form: RisingEdge(clk) becomes cocotb.triggers.RisingEdge(clk).
//
// The idempotence guard is in the trigger pattern, checked before any
// rewrite: only an identifier in call-function position matches, so an
// already-qualified cocotb.triggers.RisingEdge(clk) - whose function is
// an attribute chain - is left alone. Names are qualified only in
// call-function position; without semantic analysis, touching every
// identifier occurrence would mis-fire on unrelated bindings.
type QualifyPass struct {
	// Names maps bare symbols to the namespace that holds them.
	Names map[string]string
}

func (p *QualifyPass) Name() string { return "qualify" }

func (p *QualifyPass) Kinds() []string { return []string{"call"} }

func (p *QualifyPass) Pattern() Pattern {
	return CallTo(patternFunc(func(n *sitter.Node, src []byte) bool {
		if n.Type() != "identifier" {
			return false
		}
		_, ok := p.Names[n.Content(src)]
		return ok
	}))
}

func (p *QualifyPass) Visit(cx *Context, n *sitter.Node) {
	fn := n.ChildByFieldName("function")
	if fn == nil {
		return
	}
	name := cx.Text(fn)
	cx.Replace(fn, p.Names[name]+"."+name)
}
