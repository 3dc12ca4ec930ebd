package migrate

import (
	"bytes"
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/verilab/cocomig/types"
)

// Result is the terminal artifact of migrating one source unit. It is
// never mutated after Run returns.
type Result struct {
	Output      []byte
	Changed     bool
	Diagnostics []types.Diagnostic
}

// Run applies the passes to src in registration order. Each pass performs
// one post-order traversal of a fresh parse of the preceding pass's
// output, so a rewrite made by an earlier pass is visible to later
// passes. The list is never iterated to a fixed point; the registration
// order is part of the catalogue contract (see Catalogue).
//
// The Changed verdict comes from comparing the final text against the
// original, independent of any pass's own bookkeeping; it is the one
// signal callers should use to decide whether to persist the output.
func Run(src []byte, passes []Pass) (*Result, error) {
	parser := newPyParser()
	tree, err := parseWith(parser, src)
	if err != nil {
		return nil, err
	}

	current := src
	var diags []types.Diagnostic
	for i, p := range passes {
		if i > 0 {
			tree, err = parseWith(parser, current)
			if err != nil {
				// A rule emitted text the grammar rejects. This is a bug
				// in the catalogue, not in the input.
				return nil, fmt.Errorf("pass %q produced invalid output: %w", passes[i-1].Name(), err)
			}
		}

		cx := newContext(current, p.Name())
		runPass(cx, p, tree)

		kept, dropped := resolveOverlaps(cx.edits)
		for _, e := range dropped {
			cx.diags = append(cx.diags, types.Diagnostic{
				Pass:     p.Name(),
				Severity: types.SeverityWarning,
				Message: fmt.Sprintf(
					"ambiguous rewrite: edit at bytes %d-%d conflicts with an earlier match and was discarded", e.Start, e.End),
			})
		}

		current = applyEdits(current, kept)
		diags = append(diags, cx.diags...)
	}

	return &Result{
		Output:      current,
		Changed:     Changed(src, current),
		Diagnostics: diags,
	}, nil
}

// runPass drives one pass's traversal: gate on declared kinds, then on
// the trigger pattern, then visit.
func runPass(cx *Context, p Pass, tree *Tree) {
	kinds := make(map[string]bool, len(p.Kinds()))
	for _, k := range p.Kinds() {
		kinds[k] = true
	}
	pat := p.Pattern()

	walk(tree.Root(), func(n *sitter.Node) {
		if len(kinds) > 0 && !kinds[n.Type()] {
			return
		}
		if !Matches(n, cx.src, pat) {
			return
		}
		visitNode(cx, p, n)
	})

	if f, ok := p.(Finalizer); ok {
		f.Finalize(cx)
	}
}

// visitNode isolates one rule invocation: a failure inside one rule must
// not abort the traversal. Any edits the rule recorded before failing are
// discarded so a half-applied rewrite cannot leak into the output.
func visitNode(cx *Context, p Pass, n *sitter.Node) {
	base := len(cx.edits)
	defer func() {
		if r := recover(); r != nil {
			cx.edits = cx.edits[:base]
			cx.Report(types.SeverityError, n, fmt.Sprintf("rule failed on %s node: %v", n.Type(), r))
		}
	}()
	p.Visit(cx, n)
}

// Changed reports the authoritative changed/unchanged verdict: textual
// inequality of the printed result versus the original.
func Changed(original, rewritten []byte) bool {
	return !bytes.Equal(original, rewritten)
}

// Detect reports whether any pass would touch src, without performing any
// rewrite. It is a cheap pattern-presence pre-scan over a single parse,
// for detection-only reporting.
func Detect(src []byte, passes []Pass) (bool, error) {
	tree, err := Parse(src)
	if err != nil {
		return false, err
	}

	kindSets := make([]map[string]bool, len(passes))
	patterns := make([]Pattern, len(passes))
	for i, p := range passes {
		kindSets[i] = make(map[string]bool, len(p.Kinds()))
		for _, k := range p.Kinds() {
			kindSets[i][k] = true
		}
		patterns[i] = p.Pattern()
	}

	found := false
	walk(tree.Root(), func(n *sitter.Node) {
		if found {
			return
		}
		for i := range passes {
			if len(kindSets[i]) > 0 && !kindSets[i][n.Type()] {
				continue
			}
			if Matches(n, src, patterns[i]) {
				found = true
				return
			}
		}
	})
	return found, nil
}
