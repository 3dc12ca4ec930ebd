// Package types defines shared data types for cocomig.
package types

// Position represents a location in a source file.
type Position struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

// Range represents a span in a source file.
type Range struct {
	Start Position `json:"start"`
	End   Position `json:"end"`
}

// Severity classifies how urgent a diagnostic is.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Diagnostic is a finding that could not be rewritten mechanically and
// needs a human to follow up. Diagnostics are advisory; they never abort
// a migration.
type Diagnostic struct {
	Pass     string   `json:"pass"`
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
	Range    Range    `json:"range"`
}

// FileResult is the outcome of migrating one file.
type FileResult struct {
	File        string       `json:"file"`
	Changed     bool         `json:"changed"`
	Wrote       string       `json:"wrote,omitempty"` // where the rewritten text was persisted
	Err         string       `json:"error,omitempty"` // per-file failure (e.g. parse error)
	Diagnostics []Diagnostic `json:"diagnostics,omitempty"`

	// Source and Output carry the file texts when the caller asked for
	// them (e.g. to render a diff). They are not part of the JSON report.
	Source []byte `json:"-"`
	Output []byte `json:"-"`
}

// Summary aggregates a batch of file results.
type Summary struct {
	Changed     int `json:"changed"`
	Unchanged   int `json:"unchanged"`
	Failed      int `json:"failed"`
	Diagnostics int `json:"diagnostics"`
}

// FileJob represents a file to be processed.
type FileJob struct {
	AbsPath     string
	DisplayPath string
}
