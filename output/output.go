// Package output renders migration reports for a human operator.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/pmezard/go-difflib/difflib"

	"github.com/verilab/cocomig/types"
)

// Writer renders per-file results and a batch summary.
type Writer struct {
	out  io.Writer
	json bool
	diff bool

	changed *color.Color
	ok      *color.Color
	failed  *color.Color
	warn    *color.Color
}

// Config holds output configuration.
type Config struct {
	JSON    bool
	Diff    bool
	NoColor bool
	Output  io.Writer
}

// New creates a new report Writer.
func New(cfg Config) *Writer {
	if cfg.Output == nil {
		cfg.Output = os.Stdout
	}

	w := &Writer{
		out:     cfg.Output,
		json:    cfg.JSON,
		diff:    cfg.Diff,
		changed: color.New(color.FgGreen),
		ok:      color.New(color.FgCyan),
		failed:  color.New(color.FgRed),
		warn:    color.New(color.FgYellow),
	}
	if cfg.NoColor {
		for _, c := range []*color.Color{w.changed, w.ok, w.failed, w.warn} {
			c.DisableColor()
		}
	}
	return w
}

// Report renders every file result and the summary. Unchanged files are
// reported distinctly from changed ones, and diagnostics are surfaced
// even for files that were fully rewritten.
func (w *Writer) Report(results []types.FileResult) error {
	if w.json {
		return w.reportJSON(results)
	}

	for _, r := range results {
		switch {
		case r.Err != "":
			w.failed.Fprintf(w.out, "[error]   %s: %s\n", r.File, r.Err)
		case r.Changed:
			line := fmt.Sprintf("[changed] %s", r.File)
			if r.Wrote != "" && r.Wrote != r.File {
				line += fmt.Sprintf(" -> %s", r.Wrote)
			}
			w.changed.Fprintln(w.out, line)
		default:
			w.ok.Fprintf(w.out, "[ok]      %s\n", r.File)
		}

		for _, d := range r.Diagnostics {
			w.warn.Fprintf(w.out, "  %s: %s [%s]\n", d.Severity, d.Message, d.Pass)
		}

		if w.diff && r.Changed && len(r.Source) > 0 {
			text, err := unifiedDiff(r)
			if err != nil {
				return err
			}
			fmt.Fprint(w.out, text)
		}
	}

	s := Summarize(results)
	fmt.Fprintln(w.out, "\nSummary:")
	w.changed.Fprintf(w.out, "  %d file(s) changed\n", s.Changed)
	w.ok.Fprintf(w.out, "  %d file(s) unchanged\n", s.Unchanged)
	if s.Failed > 0 {
		w.failed.Fprintf(w.out, "  %d file(s) failed\n", s.Failed)
	}
	if s.Diagnostics > 0 {
		w.warn.Fprintf(w.out, "  %d finding(s) need manual review\n", s.Diagnostics)
	}
	return nil
}

func (w *Writer) reportJSON(results []types.FileResult) error {
	enc := json.NewEncoder(w.out)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(struct {
		Files   []types.FileResult `json:"files"`
		Summary types.Summary      `json:"summary"`
	}{Files: results, Summary: Summarize(results)})
}

func unifiedDiff(r types.FileResult) (string, error) {
	return difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(string(r.Source)),
		B:        difflib.SplitLines(string(r.Output)),
		FromFile: r.File,
		ToFile:   r.File + " (migrated)",
		Context:  3,
	})
}

// Summarize aggregates the per-file results.
func Summarize(results []types.FileResult) types.Summary {
	var s types.Summary
	for _, r := range results {
		switch {
		case r.Err != "":
			s.Failed++
		case r.Changed:
			s.Changed++
		default:
			s.Unchanged++
		}
		s.Diagnostics += len(r.Diagnostics)
	}
	return s
}
