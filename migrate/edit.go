package migrate

import (
	"bytes"
	"sort"
)

// Edit replaces the half-open byte span [Start, End) of the source with
// Text. Start == End inserts; empty Text deletes. Edits are pure data:
// nothing is spliced until the runner applies a resolved, non-overlapping
// set in one go, so sibling spans and their trivia are never perturbed.
type Edit struct {
	Start uint32
	End   uint32
	Text  string

	pass string // originating pass, for ambiguity diagnostics
	seq  int    // recording order within one traversal
}

// overlaps reports whether two spans collide. Touching spans and two
// inserts at the same offset are fine.
func (e Edit) overlaps(o Edit) bool {
	if e.Start == e.End && o.Start == o.End {
		return false
	}
	return e.Start < o.End && o.Start < e.End
}

// resolveOverlaps drops every edit that collides with an earlier-recorded
// one. Recording order is post-order visitation order, which is
// deterministic, so the precedence is documented rather than arbitrary:
// the first match wins and the discarded rewrite is reported.
func resolveOverlaps(edits []Edit) (kept, dropped []Edit) {
	ordered := make([]Edit, len(edits))
	copy(ordered, edits)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].seq < ordered[j].seq })

	for _, e := range ordered {
		conflict := false
		for _, k := range kept {
			if e.overlaps(k) {
				conflict = true
				break
			}
		}
		if conflict {
			dropped = append(dropped, e)
			continue
		}
		kept = append(kept, e)
	}
	return kept, dropped
}

// applyEdits splices a non-overlapping edit set into src and returns the
// rewritten text. src itself is never mutated.
func applyEdits(src []byte, edits []Edit) []byte {
	if len(edits) == 0 {
		out := make([]byte, len(src))
		copy(out, src)
		return out
	}

	ordered := make([]Edit, len(edits))
	copy(ordered, edits)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].Start != ordered[j].Start {
			return ordered[i].Start < ordered[j].Start
		}
		// An insert at a span's start applies before the span's
		// replacement; the splice cursor would otherwise skip it.
		ii, ji := ordered[i].Start == ordered[i].End, ordered[j].Start == ordered[j].End
		if ii != ji {
			return ii
		}
		return ordered[i].seq < ordered[j].seq
	})

	var buf bytes.Buffer
	cursor := uint32(0)
	for _, e := range ordered {
		if e.Start < cursor {
			// Overlap should have been resolved; skip rather than corrupt.
			continue
		}
		buf.Write(src[cursor:e.Start])
		buf.WriteString(e.Text)
		cursor = e.End
	}
	buf.Write(src[cursor:])
	return buf.Bytes()
}

// spliceWithin renders the span [start, end) of src with the given edits
// (all of which must lie inside the span) already applied.
func spliceWithin(src []byte, start, end uint32, edits []Edit) string {
	rebased := make([]Edit, 0, len(edits))
	for _, e := range edits {
		rebased = append(rebased, Edit{Start: e.Start - start, End: e.End - start, Text: e.Text, seq: e.seq})
	}
	return string(applyEdits(src[start:end], rebased))
}
