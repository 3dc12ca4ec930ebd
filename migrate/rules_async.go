package migrate

import (
	sitter "github.com/smacker/go-tree-sitter"
)

// CoroutinePass rewrites functions carrying the legacy coroutine marker
// decorator into native async functions: the decorator line is dropped
// and "async " is prefixed to the definition when not already present.
type CoroutinePass struct {
	// Marker is the decorator path, e.g. "cocotb.coroutine".
	Marker string
}

func (p *CoroutinePass) Name() string { return "coroutine-to-async" }

func (p *CoroutinePass) Kinds() []string { return []string{"decorated_definition"} }

func (p *CoroutinePass) Pattern() Pattern {
	return And(Kind("decorated_definition"), hasDecorator(p.Marker))
}

func (p *CoroutinePass) Visit(cx *Context, n *sitter.Node) {
	def := n.ChildByFieldName("definition")
	if def == nil || def.Type() != "function_definition" {
		return
	}

	marker := Dotted(p.Marker)
	for i := 0; i < int(n.NamedChildCount()); i++ {
		c := n.NamedChild(i)
		if c.Type() != "decorator" {
			continue
		}
		expr := c.NamedChild(0)
		if !Matches(expr, cx.Src(), marker) {
			continue
		}
		start, end := lineSpan(cx.Src(), c.StartByte(), c.EndByte())
		cx.Delete(start, end)
	}

	if keywordChild(def, "async") == nil {
		if kw := keywordChild(def, "def"); kw != nil {
			cx.Insert(kw.StartByte(), "async ")
		}
	}
}

// hasDecorator matches a decorated definition carrying a decorator with
// the given dotted path.
func hasDecorator(path string) Pattern {
	return patternFunc(func(n *sitter.Node, src []byte) bool {
		marker := Dotted(path)
		for i := 0; i < int(n.NamedChildCount()); i++ {
			c := n.NamedChild(i)
			if c.Type() != "decorator" {
				continue
			}
			if Matches(c.NamedChild(0), src, marker) {
				return true
			}
		}
		return false
	})
}

// lineSpan widens [start, end) to swallow the whole line the span sits
// on: leading indentation when the span starts the line, trailing blanks
// and one newline. Used to remove a decorator without leaving a hole.
func lineSpan(src []byte, start, end uint32) (uint32, uint32) {
	s := start
	for s > 0 && src[s-1] != '\n' {
		if src[s-1] != ' ' && src[s-1] != '\t' {
			// Something else shares the line; keep the span as given.
			s = start
			break
		}
		s--
	}
	e := end
	for e < uint32(len(src)) && (src[e] == ' ' || src[e] == '\t') {
		e++
	}
	if e < uint32(len(src)) && src[e] == '\n' {
		e++
	}
	return s, e
}

// YieldPass normalizes a suspension on a single call, "yield foo()", to
// the equivalent await expression. Any other yield shape (yield from,
// tuples, non-call values) passes through unchanged; that is not an
// error.
type YieldPass struct{}

func (p *YieldPass) Name() string { return "yield-to-await" }

func (p *YieldPass) Kinds() []string { return []string{"yield"} }

func (p *YieldPass) Pattern() Pattern {
	return And(Kind("yield"), patternFunc(func(n *sitter.Node, _ []byte) bool {
		if keywordChild(n, "from") != nil {
			return false
		}
		value := singleNamedChild(n)
		return value != nil && value.Type() == "call"
	}))
}

func (p *YieldPass) Visit(cx *Context, n *sitter.Node) {
	if kw := keywordChild(n, "yield"); kw != nil {
		cx.ReplaceSpan(kw.StartByte(), kw.EndByte(), "await")
	}
}

// RaiseReturnPass rewrites the legacy exceptional return:
// "raise ReturnValue(x)" becomes "return x" and the bare
// "raise ReturnValue()" becomes "return".
type RaiseReturnPass struct {
	// Exception is the exception class name, e.g. "ReturnValue".
	Exception string
}

func (p *RaiseReturnPass) Name() string { return "raise-return" }

func (p *RaiseReturnPass) Kinds() []string { return []string{"raise_statement"} }

func (p *RaiseReturnPass) Pattern() Pattern {
	return And(
		Kind("raise_statement"),
		patternFunc(func(n *sitter.Node, src []byte) bool {
			if n.ChildByFieldName("cause") != nil {
				return false
			}
			exc := singleNamedChild(n)
			return Matches(exc, src, CallTo(Ident(p.Exception)))
		}),
	)
}

func (p *RaiseReturnPass) Visit(cx *Context, n *sitter.Node) {
	call := singleNamedChild(n)
	if call == nil {
		return
	}
	args := callArguments(call)
	if len(args) == 0 {
		cx.Replace(n, "return")
		return
	}
	cx.ReplaceSpan(n.StartByte(), n.EndByte(), "return "+cx.Take(args[0]))
}

// singleNamedChild returns the sole named non-comment child, or nil when
// there is none or more than one.
func singleNamedChild(n *sitter.Node) *sitter.Node {
	var found *sitter.Node
	for i := 0; i < int(n.NamedChildCount()); i++ {
		c := n.NamedChild(i)
		if c.Type() == "comment" {
			continue
		}
		if found != nil {
			return nil
		}
		found = c
	}
	return found
}
