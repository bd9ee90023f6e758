package database

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/segmentio/ksuid"

	"github.com/melodypapa/autosar-calltree-sub001/internal/model"
)

// parserIdentity is bumped whenever the parser's recognized grammar
// changes in a way that could make a previously cached parse stale. It
// is baked into the cache file so an older binary's cache is rejected
// rather than silently trusted.
const parserIdentity = "autosar-calltree-sub001/parser-v1"

// cacheHeader is the first thing written to (and read from) a cache
// file; it is what Load uses to decide whether the rest of the payload
// can be trusted at all.
type cacheHeader struct {
	ParserIdentity string
	SourceRoot     string
	BuildID        string
	BuiltAt        time.Time
}

// cachePayload is the full gob-encoded cache contents: the header plus a
// flat list of every indexed function (the three in-memory indexes are
// rebuilt from this list on load, rather than serialized directly, so
// the on-disk format does not depend on map iteration order).
type cachePayload struct {
	Header      cacheHeader
	Functions   []model.FunctionInfo
	ModuleStats map[string]int
}

// SaveCache writes the database's current contents to path, identified
// by sourceRoot, using an atomic temp-file-then-rename so a crash or
// concurrent reader never observes a partially written cache.
func (d *Database) SaveCache(path, sourceRoot string) error {
	d.mu.RLock()
	payload := cachePayload{
		Header: cacheHeader{
			ParserIdentity: parserIdentity,
			SourceRoot:     normalizeSourcePath(sourceRoot),
			BuildID:        ksuid.New().String(),
			BuiltAt:        time.Now(),
		},
		Functions:   make([]model.FunctionInfo, 0, len(d.byQualified)),
		ModuleStats: make(map[string]int, len(d.moduleStats)),
	}
	for _, rec := range d.byQualified {
		payload.Functions = append(payload.Functions, *rec)
	}
	for module, count := range d.moduleStats {
		payload.ModuleStats[module] = count
	}
	d.mu.RUnlock()

	// Functions is gathered from a map, so its order is otherwise
	// nondeterministic; sort by (file path, line number) — the same
	// order Build uses for insertion — so a reloaded cache reproduces
	// identical smart-selection results.
	sort.Slice(payload.Functions, func(i, j int) bool {
		if payload.Functions[i].FilePath != payload.Functions[j].FilePath {
			return payload.Functions[i].FilePath < payload.Functions[j].FilePath
		}
		return payload.Functions[i].LineNumber < payload.Functions[j].LineNumber
	})

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(&payload); err != nil {
		return fmt.Errorf("database: encode cache: %w", err)
	}

	tmp := path + ".tmp-" + ksuid.New().String()
	if err := os.WriteFile(tmp, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("database: write cache temp file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("database: rename cache into place: %w", err)
	}

	d.log.Infof("cache saved to %s (build %s, %d functions)", path, payload.Header.BuildID, len(payload.Functions))
	return nil
}

// LoadCache populates the database from the cache file at path,
// rejecting it outright if its parser identity or source root does not
// match what the caller expects.
func (d *Database) LoadCache(path, sourceRoot string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("database: read cache: %w", err)
	}

	var payload cachePayload
	if err := gob.NewDecoder(bytes.NewReader(raw)).Decode(&payload); err != nil {
		return fmt.Errorf("database: decode cache: %w", err)
	}

	if payload.Header.ParserIdentity != parserIdentity {
		return fmt.Errorf("database: cache parser identity %q does not match current %q", payload.Header.ParserIdentity, parserIdentity)
	}
	if payload.Header.SourceRoot != normalizeSourcePath(sourceRoot) {
		return fmt.Errorf("database: cache source root %q does not match %q", payload.Header.SourceRoot, normalizeSourcePath(sourceRoot))
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	d.byName = make(map[string][]*model.FunctionInfo)
	d.byQualified = make(map[string]*model.FunctionInfo)
	d.byFile = make(map[string][]*model.FunctionInfo)
	d.moduleStats = make(map[string]int, len(payload.ModuleStats))
	for module, count := range payload.ModuleStats {
		d.moduleStats[module] = count
	}
	for _, fn := range payload.Functions {
		rec := fn
		d.byQualified[rec.QualifiedName] = &rec
		d.byName[rec.Name] = append(d.byName[rec.Name], &rec)
		d.byFile[rec.FilePath] = append(d.byFile[rec.FilePath], &rec)
	}

	d.log.Infof("cache loaded from %s (build %s, %d functions)", path, payload.Header.BuildID, len(payload.Functions))
	return nil
}

// defaultCacheFileName is the name Build uses under sourceRoot when the
// caller does not specify an explicit cache path.
const defaultCacheFileName = ".calltrace-cache.gob"

func cachePathFor(sourceRoot, explicit string) string {
	if explicit != "" {
		return explicit
	}
	return filepath.Join(sourceRoot, defaultCacheFileName)
}
