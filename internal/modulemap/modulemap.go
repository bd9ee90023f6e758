// Package modulemap resolves a source file path to an AUTOSAR software
// module name using a file-mapping/pattern-mapping/default priority
// order.
package modulemap

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// PatternMapping is one glob-to-module rule. Order matters: Resolve
// tries PatternMappings in the order they appear in the YAML document
// and takes the first matching glob.
type PatternMapping struct {
	Pattern string `yaml:"pattern"`
	Module  string `yaml:"module"`
}

// Config is the decoded shape of a module-mapping YAML file:
//
//	default_module: Application
//	file_mappings:
//	  Com_Cbk.c: Com
//	pattern_mappings:
//	  - pattern: "Rte_*.c"
//	    module: Rte
//	  - pattern: "Dio_*.c"
//	    module: Dio
type Config struct {
	DefaultModule   string            `yaml:"default_module"`
	FileMappings    map[string]string `yaml:"file_mappings"`
	PatternMappings []PatternMapping  `yaml:"pattern_mappings"`
}

// Resolver maps a source file path to the AUTOSAR module that owns it.
type Resolver interface {
	Resolve(filePath string) (module string, ok bool)
}

// Load reads and parses a module-mapping YAML file at path.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("modulemap: read %s: %w", path, err)
	}
	var cfg Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("modulemap: parse %s: %w", path, err)
	}
	return &cfg, nil
}

// Resolve implements Resolver: exact basename match in FileMappings wins
// first, then the first PatternMappings glob (filepath.Match against the
// basename, in document order) that matches, then DefaultModule.
func (c *Config) Resolve(filePath string) (string, bool) {
	base := filepath.Base(filePath)

	if m, ok := c.FileMappings[base]; ok {
		return m, true
	}

	for _, pm := range c.PatternMappings {
		if ok, err := filepath.Match(pm.Pattern, base); err == nil && ok {
			return pm.Module, true
		}
	}

	if c.DefaultModule != "" {
		return c.DefaultModule, true
	}
	return "", false
}
