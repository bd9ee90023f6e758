package database

import (
	"io/fs"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"

	"github.com/melodypapa/autosar-calltree-sub001/internal/logging"
	"github.com/melodypapa/autosar-calltree-sub001/internal/model"
	"github.com/melodypapa/autosar-calltree-sub001/internal/modulemap"
	"github.com/melodypapa/autosar-calltree-sub001/internal/parser"
)

// BuildOptions configures Build.
type BuildOptions struct {
	SourceRoot   string
	UseCache     bool
	RebuildCache bool
	CachePath    string // defaults under SourceRoot when empty
	ModuleMap    modulemap.Resolver
	Log          logging.Sink
}

// sourceFileExtension is the only suffix Build scans.
const sourceFileExtension = ".c"

// parseOutcome is one file's parse result, gathered on the worker pool
// below and later inserted into the database in deterministic order.
type parseOutcome struct {
	path      string
	functions []model.FunctionInfo
	err       error
}

// Build populates a fresh Database by walking opts.SourceRoot, applying
// opts.ModuleMap to every parsed function, and optionally persisting (or
// reusing) an on-disk cache. It returns the database, the list of
// non-fatal parse errors encountered (duplicate qualified names, unreadable
// files), and a fatal error if the source tree itself could not be walked.
//
// File parsing runs on a bounded worker pool sized to runtime.NumCPU();
// insertion into the database is strictly sequential, ordered by
// absolute file path, so the by_name and by_file index order — and
// therefore every smart-selection result — is reproducible regardless of
// how parsing itself was scheduled.
func Build(opts BuildOptions) (*Database, []string, error) {
	db := New(opts.Log)
	log := opts.Log
	cachePath := cachePathFor(opts.SourceRoot, opts.CachePath)

	if opts.UseCache && !opts.RebuildCache {
		if err := db.LoadCache(cachePath, opts.SourceRoot); err == nil {
			return db, nil, nil
		} else { //nolint:revive // log before falling through to a full rebuild
			log.Infof("cache unusable (%v), rebuilding", err)
		}
	}

	var files []string
	walkErr := filepath.WalkDir(opts.SourceRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == opts.SourceRoot {
				// The source root itself could not be statted/read: fatal,
				// per the caller's "only the root is fatal" contract.
				return err
			}
			db.RecordParseError(path + ": " + err.Error())
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if strings.ToLower(filepath.Ext(path)) != sourceFileExtension {
			return nil
		}
		files = append(files, path)
		return nil
	})
	if walkErr != nil {
		return nil, db.parseErrorsSnapshot(), walkErr
	}
	sort.Strings(files)

	outcomes := parseFilesConcurrently(files)

	for _, outcome := range outcomes {
		if outcome.err != nil {
			db.RecordParseError(outcome.path + ": " + outcome.err.Error())
			continue
		}
		for _, fn := range outcome.functions {
			rec, ierr := db.Insert(fn)
			if ierr != nil {
				db.RecordParseError(ierr.Error())
			}
			if opts.ModuleMap != nil {
				if module, ok := opts.ModuleMap.Resolve(rec.FilePath); ok {
					db.SetModule(rec, module)
				}
			}
		}
	}

	if opts.UseCache || opts.RebuildCache {
		if serr := db.SaveCache(cachePath, opts.SourceRoot); serr != nil {
			log.Warningf("failed to save cache: %v", serr)
		}
	}

	return db, db.parseErrorsSnapshot(), nil
}

// parseFilesConcurrently parses every file in files on a worker pool
// bounded to runtime.NumCPU(), returning one outcome per file in the
// same order files was given — already the deterministic (sorted path)
// order Build requires for insertion.
func parseFilesConcurrently(files []string) []parseOutcome {
	outcomes := make([]parseOutcome, len(files))
	workers := runtime.NumCPU()
	if workers < 1 {
		workers = 1
	}
	if workers > len(files) {
		workers = len(files)
	}
	if workers <= 1 {
		for i, path := range files {
			fns, err := parser.ParseFile(path)
			outcomes[i] = parseOutcome{path: path, functions: fns, err: err}
		}
		return outcomes
	}

	var wg sync.WaitGroup
	indices := make(chan int)
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for i := range indices {
				fns, err := parser.ParseFile(files[i])
				outcomes[i] = parseOutcome{path: files[i], functions: fns, err: err}
			}
		}()
	}
	for i := range files {
		indices <- i
	}
	close(indices)
	wg.Wait()
	return outcomes
}
