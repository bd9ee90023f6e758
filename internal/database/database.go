// Package database holds every parsed FunctionInfo in three parallel
// indexes and resolves ambiguous lookups by name.
package database

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/sasha-s/go-deadlock"

	"github.com/melodypapa/autosar-calltree-sub001/internal/logging"
	"github.com/melodypapa/autosar-calltree-sub001/internal/model"
)

func init() {
	// go-deadlock's global Opts apply process-wide; an injectable sink
	// would be preferable to a silent global, but deadlock detection
	// itself is inherently a process-wide facility. The timeout must be a
	// real duration: zero disables the stuck-lock watchdog entirely and
	// degrades RWMutex to hanging silently on a true deadlock instead of
	// reporting one.
	deadlock.Opts.DeadlockTimeout = 5 * time.Second
}

// Database indexes parsed functions three ways and resolves same-named
// lookups using a four-level smart-selection rule.
type Database struct {
	mu deadlock.RWMutex

	byName      map[string][]*model.FunctionInfo
	byQualified map[string]*model.FunctionInfo
	byFile      map[string][]*model.FunctionInfo
	moduleStats map[string]int

	parseErrors []string

	log logging.Sink
}

// New returns an empty Database. log may be logging.NewNoop().
func New(log logging.Sink) *Database {
	return &Database{
		byName:      make(map[string][]*model.FunctionInfo),
		byQualified: make(map[string]*model.FunctionInfo),
		byFile:      make(map[string][]*model.FunctionInfo),
		moduleStats: make(map[string]int),
		log:         log,
	}
}

// ErrDuplicateInFile is returned by Insert when two records parsed from
// the same file share the same (name, line_number) identity. The later
// record is dropped; Insert returns the previously stored one.
type ErrDuplicateInFile struct {
	Name     string
	FilePath string
	Line     int
}

func (e *ErrDuplicateInFile) Error() string {
	return fmt.Sprintf("database: duplicate (name,line) %s at %s:%d", e.Name, e.FilePath, e.Line)
}

// ErrQualifiedNameCollision is returned by Insert when two functions
// with different identities resolve to the same "<stem>::<name>". This
// is reported as a parse error, and the colliding record still gets a
// synthetic line-number-suffixed qualified name so later lookups do not
// silently drop it.
type ErrQualifiedNameCollision struct {
	Name     string
	FilePath string
	Line     int
}

func (e *ErrQualifiedNameCollision) Error() string {
	return fmt.Sprintf("database: qualified-name collision for %s at %s:%d", e.Name, e.FilePath, e.Line)
}

// Insert adds info to all three indexes. info.QualifiedName is assigned
// here as "<file-stem>::<name>"; a name already present in byQualified
// gets a "::<line>" suffix and Insert returns ErrQualifiedNameCollision
// alongside the (still-indexed) record. A duplicate (name, file_path,
// line_number) is rejected outright: Insert returns the existing record
// and ErrDuplicateInFile.
func (d *Database) Insert(info model.FunctionInfo) (*model.FunctionInfo, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	for _, existing := range d.byFile[info.FilePath] {
		if existing.Name == info.Name && existing.LineNumber == info.LineNumber {
			return existing, &ErrDuplicateInFile{Name: info.Name, FilePath: info.FilePath, Line: info.LineNumber}
		}
	}

	rec := info
	rec.QualifiedName = model.QualifiedName(info.FilePath, info.Name)
	var collisionErr error
	if _, exists := d.byQualified[rec.QualifiedName]; exists {
		rec.QualifiedName = fmt.Sprintf("%s::%d", rec.QualifiedName, info.LineNumber)
		collisionErr = &ErrQualifiedNameCollision{Name: info.Name, FilePath: info.FilePath, Line: info.LineNumber}
		d.log.Warningf("qualified name collision for %s in %s:%d, disambiguated to %s", info.Name, info.FilePath, info.LineNumber, rec.QualifiedName)
	}

	stored := &rec
	d.byQualified[rec.QualifiedName] = stored
	d.byName[rec.Name] = append(d.byName[rec.Name], stored)
	d.byFile[rec.FilePath] = append(d.byFile[rec.FilePath], stored)

	return stored, collisionErr
}

// SetModule records the SW module owning the function at path once it
// has been resolved, the only field FunctionInfo may be updated after
// Insert.
func (d *Database) SetModule(rec *model.FunctionInfo, module string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	rec.SWModule = module
	rec.HasModule = true
	d.moduleStats[module]++
}

// RecordParseError appends msg to the per-file parse-error list surfaced
// by Snapshot.
func (d *Database) RecordParseError(msg string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.parseErrors = append(d.parseErrors, msg)
}

// parseErrorsSnapshot returns a copy of the parse-error list accumulated
// so far, for Build's non-fatal-errors return value.
func (d *Database) parseErrorsSnapshot() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return append([]string(nil), d.parseErrors...)
}

// ByQualifiedName returns the unique record with the given qualified
// name, if any.
func (d *Database) ByQualifiedName(qualified string) (*model.FunctionInfo, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	rec, ok := d.byQualified[qualified]
	return rec, ok
}

// FunctionsInFile returns every function recorded for the given file
// path, in insertion (i.e. source) order.
func (d *Database) FunctionsInFile(path string) []*model.FunctionInfo {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return append([]*model.FunctionInfo(nil), d.byFile[path]...)
}

// Search returns every record whose Name contains substr, case-insensitively,
// sorted by qualified name for deterministic output.
func (d *Database) Search(substr string) []*model.FunctionInfo {
	d.mu.RLock()
	defer d.mu.RUnlock()
	needle := strings.ToLower(substr)
	var out []*model.FunctionInfo
	for name, recs := range d.byName {
		if strings.Contains(strings.ToLower(name), needle) {
			out = append(out, recs...)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].QualifiedName < out[j].QualifiedName })
	return out
}

// AllNames returns every distinct function name in the database, sorted.
func (d *Database) AllNames() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	names := make([]string, 0, len(d.byName))
	for name := range d.byName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Lookup resolves name to a single FunctionInfo using a four-level
// smart-selection rule. If name is unknown, ok is false. Otherwise a
// record is always returned: the levels narrow the
// candidate set and the first level to narrow it to exactly one wins;
// if more than one candidate survives all four levels, Lookup returns
// the first one in insertion (i.e. by_name list) order.
func (d *Database) Lookup(name, contextFile string) (*model.FunctionInfo, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	candidates := d.byName[name]
	if len(candidates) == 0 {
		return nil, false
	}
	if len(candidates) == 1 {
		return candidates[0], true
	}

	// Level 1: prefer real definitions (non-empty Calls) over forward
	// declarations.
	candidates = narrow(candidates, func(c *model.FunctionInfo) bool { return len(c.Calls) > 0 })

	// Level 2: prefer files whose stem shares the function name's first
	// "_"-delimited token, case-insensitively.
	if len(candidates) > 1 {
		token := strings.ToLower(firstToken(name))
		if token != "" {
			candidates = narrow(candidates, func(c *model.FunctionInfo) bool {
				return strings.HasPrefix(strings.ToLower(model.FileStem(c.FilePath)), token)
			})
		}
	}

	// Level 3: exclude records from contextFile — a cross-module call
	// must not resolve to a local declaration — unless that would empty
	// the set.
	if len(candidates) > 1 && contextFile != "" {
		candidates = narrow(candidates, func(c *model.FunctionInfo) bool { return c.FilePath != contextFile })
	}

	// Level 4: prefer records with an assigned SW module.
	if len(candidates) > 1 {
		candidates = narrow(candidates, func(c *model.FunctionInfo) bool { return c.HasModule })
	}

	return candidates[0], true
}

// narrow returns the subset of candidates matching keep, preserving
// order, unless that subset is empty — in which case candidates is
// returned unchanged. "Unless exclusion empties the set" applies
// uniformly across all four levels.
func narrow(candidates []*model.FunctionInfo, keep func(*model.FunctionInfo) bool) []*model.FunctionInfo {
	var out []*model.FunctionInfo
	for _, c := range candidates {
		if keep(c) {
			out = append(out, c)
		}
	}
	if len(out) == 0 {
		return candidates
	}
	return out
}

// firstToken returns the text before the first '_' in name, or name
// itself if there is none.
func firstToken(name string) string {
	if i := strings.IndexByte(name, '_'); i >= 0 {
		return name[:i]
	}
	return name
}

// Statistics summarizes the current contents of the database: totals,
// per-module counts, the parser identifier, and the accumulated
// parse-error list.
type Statistics struct {
	TotalFunctions   int
	UniqueNames      int
	FilesIndexed     int
	StaticFunctions  int
	AutosarFunctions int
	ModuleCounts     map[string]int
	ParserIdentity   string
	ParseErrors      []string
}

// Snapshot computes the current database Statistics.
func (d *Database) Snapshot() Statistics {
	d.mu.RLock()
	defer d.mu.RUnlock()

	s := Statistics{
		ModuleCounts:   make(map[string]int, len(d.moduleStats)),
		ParserIdentity: parserIdentity,
		ParseErrors:    append([]string(nil), d.parseErrors...),
	}
	s.UniqueNames = len(d.byName)
	s.FilesIndexed = len(d.byFile)
	for module, count := range d.moduleStats {
		s.ModuleCounts[module] = count
	}
	for _, rec := range d.byQualified {
		s.TotalFunctions++
		if rec.IsStatic {
			s.StaticFunctions++
		}
		switch rec.FunctionType {
		case model.AutosarFunc, model.AutosarFuncP2Var, model.AutosarFuncP2Const:
			s.AutosarFunctions++
		}
	}
	return s
}

// normalizeSourcePath is used when computing cache-invalidation keys so
// a rebuilt cache keyed on an absolute path still matches a relative
// invocation of the same tree.
func normalizeSourcePath(p string) string {
	abs, err := filepath.Abs(p)
	if err != nil {
		return p
	}
	return abs
}
