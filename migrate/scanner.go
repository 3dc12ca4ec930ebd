package migrate

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"github.com/verilab/cocomig/types"
)

// defaultIgnoreDirs returns the directories never descended into:
// version control, dependency trees, and Python environments.
func defaultIgnoreDirs() map[string]struct{} {
	return map[string]struct{}{
		".git":          {},
		".hg":           {},
		".svn":          {},
		".jj":           {},
		"node_modules":  {},
		"dist":          {},
		"build":         {},
		".venv":         {},
		"venv":          {},
		".tox":          {},
		".eggs":         {},
		"site-packages": {},
		"__pycache__":   {},
		".mypy_cache":   {},
		".pytest_cache": {},
		".cache":        {},
	}
}

// scannerConfig holds scanner configuration.
type scannerConfig struct {
	fs         afero.Fs
	root       string
	ignoreDirs map[string]struct{}
	maxBytes   int64
}

// scanner discovers Python files for processing.
type scanner struct {
	cfg scannerConfig
}

// newScanner creates a new scanner with the given configuration.
func newScanner(cfg scannerConfig) *scanner {
	if cfg.fs == nil {
		cfg.fs = afero.NewOsFs()
	}
	if cfg.ignoreDirs == nil {
		cfg.ignoreDirs = defaultIgnoreDirs()
	}
	return &scanner{cfg: cfg}
}

// collect finds all candidate files and returns them as FileJobs.
func (s *scanner) collect() ([]types.FileJob, error) {
	root := s.cfg.root
	if root == "" {
		root = "."
	}

	var jobs []types.FileJob
	err := afero.Walk(s.cfg.fs, root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if info.IsDir() {
			if path == root {
				return nil
			}
			if _, skip := s.cfg.ignoreDirs[info.Name()]; skip {
				return filepath.SkipDir
			}
			return nil
		}

		if !strings.EqualFold(filepath.Ext(info.Name()), ".py") {
			return nil
		}

		if s.cfg.maxBytes > 0 && info.Size() > s.cfg.maxBytes {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			rel = path
		}

		jobs = append(jobs, types.FileJob{
			AbsPath:     path,
			DisplayPath: filepath.ToSlash(rel),
		})
		return nil
	})

	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", root, err)
	}

	return jobs, nil
}

// collectSingle returns a single file as a FileJob.
func (s *scanner) collectSingle(filePath string) (types.FileJob, error) {
	info, err := s.cfg.fs.Stat(filePath)
	if err != nil {
		return types.FileJob{}, fmt.Errorf("stat %s: %w", filePath, err)
	}
	if info.IsDir() {
		return types.FileJob{}, fmt.Errorf("%s is a directory, not a file", filePath)
	}

	return types.FileJob{
		AbsPath:     filePath,
		DisplayPath: filepath.ToSlash(filePath),
	}, nil
}
