package migrate

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
)

// Pattern is a side-effect-free predicate over a node's shape. Patterns
// only test; they never rewrite. New rules are written by composing these
// predicates rather than by hand-rolling traversal code.
type Pattern interface {
	Match(n *sitter.Node, src []byte) bool
}

type patternFunc func(n *sitter.Node, src []byte) bool

func (f patternFunc) Match(n *sitter.Node, src []byte) bool { return f(n, src) }

// Matches reports whether node satisfies pattern. A nil node never matches.
func Matches(n *sitter.Node, src []byte, p Pattern) bool {
	if n == nil || p == nil {
		return false
	}
	return p.Match(n, src)
}

// AnyNode matches every node.
func AnyNode() Pattern {
	return patternFunc(func(*sitter.Node, []byte) bool { return true })
}

// Kind matches nodes of exactly the given tree-sitter kind.
func Kind(kind string) Pattern {
	return patternFunc(func(n *sitter.Node, _ []byte) bool { return n.Type() == kind })
}

// And matches when every sub-pattern matches.
func And(ps ...Pattern) Pattern {
	return patternFunc(func(n *sitter.Node, src []byte) bool {
		for _, p := range ps {
			if !p.Match(n, src) {
				return false
			}
		}
		return true
	})
}

// Or matches when any sub-pattern matches.
func Or(ps ...Pattern) Pattern {
	return patternFunc(func(n *sitter.Node, src []byte) bool {
		for _, p := range ps {
			if p.Match(n, src) {
				return true
			}
		}
		return false
	})
}

// Ident matches an identifier with the given text.
func Ident(name string) Pattern {
	return patternFunc(func(n *sitter.Node, src []byte) bool {
		return n.Type() == "identifier" && n.Content(src) == name
	})
}

// TextIs matches a node whose exact source text equals literal. Useful
// for string and number arguments.
func TextIs(literal string) Pattern {
	return patternFunc(func(n *sitter.Node, src []byte) bool {
		return n.Content(src) == literal
	})
}

// Dotted matches a bare identifier or a pure attribute chain whose text
// equals the dotted path, e.g. "cocotb.start_soon". A chain hanging off a
// call result (a().b) is not a name and does not match.
func Dotted(path string) Pattern {
	return patternFunc(func(n *sitter.Node, src []byte) bool {
		switch n.Type() {
		case "identifier":
			return !strings.Contains(path, ".") && n.Content(src) == path
		case "attribute":
			return isNameChain(n) && n.Content(src) == path
		}
		return false
	})
}

func isNameChain(n *sitter.Node) bool {
	for n.Type() == "attribute" {
		n = n.ChildByFieldName("object")
		if n == nil {
			return false
		}
	}
	return n.Type() == "identifier"
}

// Field matches when the child at the named grammar field matches p.
func Field(name string, p Pattern) Pattern {
	return patternFunc(func(n *sitter.Node, src []byte) bool {
		return Matches(n.ChildByFieldName(name), src, p)
	})
}

// CallTo matches a call expression whose function matches fn.
func CallTo(fn Pattern) Pattern {
	return And(Kind("call"), Field("function", fn))
}

// HasKeyword matches a call carrying a keyword argument with the given
// name.
func HasKeyword(name string) Pattern {
	return patternFunc(func(n *sitter.Node, src []byte) bool {
		for _, arg := range callArguments(n) {
			if keywordName(arg, src) == name {
				return true
			}
		}
		return false
	})
}

// ArgCount matches a call with exactly count arguments, positional and
// keyword alike.
func ArgCount(count int) Pattern {
	return patternFunc(func(n *sitter.Node, _ []byte) bool {
		return len(callArguments(n)) == count
	})
}

// callArguments returns the arguments of a call node, skipping comments
// that may sit inside the argument list. Returns nil for non-call nodes.
func callArguments(n *sitter.Node) []*sitter.Node {
	if n.Type() != "call" {
		return nil
	}
	list := n.ChildByFieldName("arguments")
	if list == nil {
		return nil
	}
	var args []*sitter.Node
	for i := 0; i < int(list.NamedChildCount()); i++ {
		c := list.NamedChild(i)
		if c.Type() == "comment" {
			continue
		}
		args = append(args, c)
	}
	return args
}

// keywordName returns the name of a keyword argument node, or "" when the
// node is not a keyword argument.
func keywordName(n *sitter.Node, src []byte) string {
	if n.Type() != "keyword_argument" {
		return ""
	}
	name := n.ChildByFieldName("name")
	if name == nil {
		return ""
	}
	return name.Content(src)
}

// calleeName returns the name a call is made under: the identifier itself
// for f(...), the final attribute for a.b.f(...). Returns "" for anything
// else.
func calleeName(n *sitter.Node, src []byte) string {
	fn := n.ChildByFieldName("function")
	if fn == nil {
		return ""
	}
	switch fn.Type() {
	case "identifier":
		return fn.Content(src)
	case "attribute":
		attr := fn.ChildByFieldName("attribute")
		if attr == nil {
			return ""
		}
		return attr.Content(src)
	}
	return ""
}

// keywordChild finds an anonymous keyword token ("def", "async", "yield")
// among a node's direct children.
func keywordChild(n *sitter.Node, keyword string) *sitter.Node {
	for i := 0; i < int(n.ChildCount()); i++ {
		c := n.Child(i)
		if c != nil && !c.IsNamed() && c.Type() == keyword {
			return c
		}
	}
	return nil
}
