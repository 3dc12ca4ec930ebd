package migrate

import "github.com/spf13/afero"

// WriteMode controls where a changed result is persisted. The engine is
// agnostic to this choice; only the batch layer consults it.
type WriteMode int

const (
	// WriteNone only reports; nothing is written.
	WriteNone WriteMode = iota

	// WriteSideBySide writes the rewritten text alongside the original
	// under a derived name (see MigrateOptions.Suffix).
	WriteSideBySide

	// WriteInPlace overwrites the original file.
	WriteInPlace
)

// MigrateOptions configures the Migrate batch entry point.
type MigrateOptions struct {
	// Path is the root directory to scan for Python files.
	// If empty, the current directory is used.
	Path string

	// File is a single file to migrate.
	// If set, Path is ignored.
	File string

	// Rules are the name tables for the pass catalogue.
	// If nil, DefaultRules() is used.
	Rules *Rules

	// Mode selects output placement for changed files.
	Mode WriteMode

	// Suffix derives the side-by-side file name from the original.
	// Defaults to ".migrated.py".
	Suffix string

	// Jobs is the number of parallel workers.
	// If 0, defaults to the number of CPUs.
	Jobs int

	// MaxBytes skips files larger than this size.
	// If 0, defaults to 2 MiB.
	MaxBytes int64

	// KeepText retains each file's original and rewritten text on its
	// result, e.g. for diff rendering.
	KeepText bool

	// Fs is the filesystem to read and write through.
	// If nil, the OS filesystem is used.
	Fs afero.Fs
}
