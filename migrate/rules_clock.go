package migrate

import (
	"bytes"
	"fmt"
	"sort"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/verilab/cocomig/types"
)

// StartSoonUnwrapPass unwraps scheduler calls around clock starts:
// cocotb.start_soon(clock.start()) becomes clock.start(), which
// schedules itself in cocotb 2.x.
type StartSoonUnwrapPass struct {
	// Scheduler is the wrapping call path, e.g. "cocotb.start_soon".
	Scheduler string
	// Method is the method name of the wrapped call, e.g. "start".
	Method string
}

func (p *StartSoonUnwrapPass) Name() string { return "start-soon-unwrap" }

func (p *StartSoonUnwrapPass) Kinds() []string { return []string{"call"} }

func (p *StartSoonUnwrapPass) Pattern() Pattern {
	return And(
		CallTo(Dotted(p.Scheduler)),
		ArgCount(1),
		patternFunc(func(n *sitter.Node, src []byte) bool {
			arg := callArguments(n)[0]
			if arg.Type() != "call" {
				return false
			}
			fn := arg.ChildByFieldName("function")
			return fn != nil && fn.Type() == "attribute" &&
				Matches(fn.ChildByFieldName("attribute"), src, Ident(p.Method))
		}),
	)
}

func (p *StartSoonUnwrapPass) Visit(cx *Context, n *sitter.Node) {
	arg := callArguments(n)[0]
	cx.ReplaceSpan(n.StartByte(), n.EndByte(), cx.Take(arg))
}

// KeywordRenamePass renames keyword arguments within calls to specific
// callees. The value expression is untouched and non-matching keywords
// pass through unchanged.
type KeywordRenamePass struct {
	// Renames maps a callee name to old-to-new keyword names.
	Renames map[string]map[string]string
}

func (p *KeywordRenamePass) Name() string { return "keyword-rename" }

func (p *KeywordRenamePass) Kinds() []string { return []string{"call"} }

func (p *KeywordRenamePass) Pattern() Pattern {
	return And(Kind("call"), patternFunc(func(n *sitter.Node, src []byte) bool {
		table := p.Renames[calleeName(n, src)]
		if table == nil {
			return false
		}
		for _, arg := range callArguments(n) {
			if _, ok := table[keywordName(arg, src)]; ok {
				return true
			}
		}
		return false
	}))
}

func (p *KeywordRenamePass) Visit(cx *Context, n *sitter.Node) {
	table := p.Renames[calleeName(n, cx.Src())]
	for _, arg := range callArguments(n) {
		to, ok := table[keywordName(arg, cx.Src())]
		if !ok {
			continue
		}
		if name := arg.ChildByFieldName("name"); name != nil {
			cx.Replace(name, to)
		}
	}
}

// KeywordRemovalPass drops keyword arguments that no longer exist in the
// new API. Dropping an argument may change runtime behavior, so each
// removal is reported for manual review.
type KeywordRemovalPass struct {
	// Removals maps a callee name to the keywords dropped from its calls.
	Removals map[string][]string
}

func (p *KeywordRemovalPass) Name() string { return "keyword-removal" }

func (p *KeywordRemovalPass) Kinds() []string { return []string{"call"} }

func (p *KeywordRemovalPass) Pattern() Pattern {
	return And(Kind("call"), patternFunc(func(n *sitter.Node, src []byte) bool {
		removed := p.Removals[calleeName(n, src)]
		if len(removed) == 0 {
			return false
		}
		for _, arg := range callArguments(n) {
			if containsString(removed, keywordName(arg, src)) {
				return true
			}
		}
		return false
	}))
}

func (p *KeywordRemovalPass) Visit(cx *Context, n *sitter.Node) {
	callee := calleeName(n, cx.Src())
	removed := p.Removals[callee]
	args := callArguments(n)
	for i, arg := range args {
		kw := keywordName(arg, cx.Src())
		if !containsString(removed, kw) {
			continue
		}
		start, end := arg.StartByte(), arg.EndByte()
		switch {
		case i > 0:
			// Swallow the preceding comma and spacing.
			start = args[i-1].EndByte()
		case len(args) > 1:
			// First of several: swallow up to the next argument.
			end = args[i+1].StartByte()
		default:
			// Sole argument: a trailing comma must not be left behind.
			end = pastTrailingComma(cx.Src(), end)
		}
		cx.Delete(start, end)
		cx.Report(types.SeverityWarning, arg, fmt.Sprintf(
			"%s() no longer accepts %s=; the argument was dropped and may change runtime behavior", callee, kw))
	}
}

// pastTrailingComma extends a deletion span over a comma that follows
// it, skipping any whitespace in between. Without this, removing the
// sole argument of f(x,) would leave f(,), which is not Python.
func pastTrailingComma(src []byte, at uint32) uint32 {
	i := at
	for i < uint32(len(src)) {
		switch src[i] {
		case ' ', '\t', '\n', '\r':
			i++
		case ',':
			return i + 1
		default:
			return at
		}
	}
	return at
}

func containsString(list []string, s string) bool {
	if s == "" {
		return false
	}
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// RemovedAttributePass reports accesses to attributes that no longer
// exist on their targets. There is no safe rewrite: each access produces
// a diagnostic, and finalization inserts one advisory comment per
// distinct removal kind at the top of the file, however many accesses
// were found.
type RemovedAttributePass struct {
	// Attributes maps removed attribute names to their advisory text.
	Attributes map[string]string
}

func (p *RemovedAttributePass) Name() string { return "removed-attribute" }

func (p *RemovedAttributePass) Kinds() []string { return []string{"attribute"} }

func (p *RemovedAttributePass) Pattern() Pattern {
	return And(Kind("attribute"), patternFunc(func(n *sitter.Node, src []byte) bool {
		attr := n.ChildByFieldName("attribute")
		if attr == nil {
			return false
		}
		_, ok := p.Attributes[attr.Content(src)]
		return ok
	}))
}

func (p *RemovedAttributePass) Visit(cx *Context, n *sitter.Node) {
	attr := n.ChildByFieldName("attribute")
	if attr == nil {
		return
	}
	name := cx.Text(attr)
	cx.Report(types.SeverityWarning, n, p.Attributes[name])
	cx.SetFlag(name)
}

func (p *RemovedAttributePass) Finalize(cx *Context) {
	names := make([]string, 0, len(p.Attributes))
	for name := range p.Attributes {
		if cx.Flag(name) {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	var b strings.Builder
	for _, name := range names {
		line := "# WARNING: " + p.Attributes[name] + "\n"
		// Idempotence guard: a previous run already left this advisory.
		if bytes.Contains(cx.Src(), []byte(line)) {
			continue
		}
		b.WriteString(line)
	}
	if b.Len() == 0 {
		return
	}
	cx.Insert(advisoryOffset(cx.Src()), b.String())
}

// advisoryOffset is where top-of-file advisory comments go: offset zero,
// or just past a shebang line, which must stay first.
func advisoryOffset(src []byte) uint32 {
	if !bytes.HasPrefix(src, []byte("#!")) {
		return 0
	}
	nl := bytes.IndexByte(src, '\n')
	if nl < 0 {
		return uint32(len(src))
	}
	return uint32(nl + 1)
}
