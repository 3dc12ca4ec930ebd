package migrate

import (
	"errors"
	"runtime"
	"sort"
	"strings"
	"sync"

	"github.com/spf13/afero"

	"github.com/verilab/cocomig/types"
)

// Migrate runs the engine over every Python file under the configured
// root, one independent parse-transform-print pipeline per file. No state
// is shared between files, so the workers need no coordination beyond the
// job queue. A per-file failure (typically a parse error) is recorded on
// that file's result and never aborts the batch.
func Migrate(opts MigrateOptions) ([]types.FileResult, error) {
	if opts.Path == "" {
		opts.Path = "."
	}
	if opts.Suffix == "" {
		opts.Suffix = ".migrated.py"
	}
	if opts.Jobs == 0 {
		opts.Jobs = runtime.NumCPU()
	}
	if opts.MaxBytes == 0 {
		opts.MaxBytes = 2 * 1024 * 1024
	}
	if opts.Fs == nil {
		opts.Fs = afero.NewOsFs()
	}

	rules := DefaultRules()
	if opts.Rules != nil {
		rules = *opts.Rules
	}
	passes := Catalogue(rules)

	var files []types.FileJob
	if opts.File != "" {
		sc := newScanner(scannerConfig{fs: opts.Fs})
		job, err := sc.collectSingle(opts.File)
		if err != nil {
			return nil, err
		}
		files = []types.FileJob{job}
	} else {
		sc := newScanner(scannerConfig{
			fs:       opts.Fs,
			root:     opts.Path,
			maxBytes: opts.MaxBytes,
		})
		var err error
		files, err = sc.collect()
		if err != nil {
			return nil, err
		}
	}

	if len(files) == 0 {
		return []types.FileResult{}, nil
	}

	return runFileWorkers(opts, passes, files), nil
}

// runFileWorkers fans the files out over a worker pool. The pass
// catalogue is read-only configuration and safe to share; every per-run
// value lives inside Run.
func runFileWorkers(opts MigrateOptions, passes []Pass, files []types.FileJob) []types.FileResult {
	results := make(chan types.FileResult, 128)
	jobQueue := make(chan types.FileJob, 128)
	var wg sync.WaitGroup

	workerCount := opts.Jobs
	if workerCount < 1 {
		workerCount = 1
	}
	if workerCount > len(files) {
		workerCount = len(files)
	}

	worker := func() {
		defer wg.Done()
		for job := range jobQueue {
			results <- migrateOne(opts, passes, job)
		}
	}

	wg.Add(workerCount)
	for i := 0; i < workerCount; i++ {
		go worker()
	}

	go func() {
		for _, f := range files {
			jobQueue <- f
		}
		close(jobQueue)
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	var all []types.FileResult
	for r := range results {
		all = append(all, r)
	}

	sort.Slice(all, func(i, j int) bool { return all[i].File < all[j].File })
	return all
}

// migrateOne is one file's whole pipeline: read, run, place output.
func migrateOne(opts MigrateOptions, passes []Pass, job types.FileJob) types.FileResult {
	result := types.FileResult{File: job.DisplayPath}

	src, err := afero.ReadFile(opts.Fs, job.AbsPath)
	if err != nil {
		result.Err = err.Error()
		return result
	}

	res, err := Run(src, passes)
	if err != nil {
		result.Err = err.Error()
		return result
	}

	result.Changed = res.Changed
	result.Diagnostics = res.Diagnostics
	if opts.KeepText {
		result.Source = src
		result.Output = res.Output
	}

	if res.Changed {
		if path, err := placeOutput(opts, job, res.Output); err != nil {
			result.Err = err.Error()
		} else {
			result.Wrote = path
		}
	}
	return result
}

// placeOutput persists a changed result per the configured mode. The
// derived side-by-side name swaps the .py suffix for opts.Suffix.
func placeOutput(opts MigrateOptions, job types.FileJob, output []byte) (string, error) {
	var target string
	switch opts.Mode {
	case WriteNone:
		return "", nil
	case WriteInPlace:
		target = job.AbsPath
	case WriteSideBySide:
		target = derivedName(job.AbsPath, opts.Suffix)
	default:
		return "", errors.New("unknown write mode")
	}

	if err := afero.WriteFile(opts.Fs, target, output, 0644); err != nil {
		return "", err
	}
	return target, nil
}

func derivedName(path, suffix string) string {
	if strings.HasSuffix(path, ".py") {
		return strings.TrimSuffix(path, ".py") + suffix
	}
	return path + suffix
}
