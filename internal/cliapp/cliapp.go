// Package cliapp wires the core analysis library together behind a
// small command-line surface. It is a thin adapter whose only job is to
// read flags, configure logging, and print a textual summary of the
// model.AnalysisResult the core produces.
package cliapp

import (
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"

	"github.com/melodypapa/autosar-calltree-sub001/internal/calltree"
	"github.com/melodypapa/autosar-calltree-sub001/internal/database"
	"github.com/melodypapa/autosar-calltree-sub001/internal/logging"
	"github.com/melodypapa/autosar-calltree-sub001/internal/model"
	"github.com/melodypapa/autosar-calltree-sub001/internal/modulemap"
)

// Options are the flags Run understands.
type Options struct {
	Source       string
	Start        string
	MaxDepth     int
	IncludeRTE   bool
	UseCache     bool
	RebuildCache bool
	ModuleMap    string
	Verbose      bool
}

// ParseArgs parses args (excluding the program name) into Options.
func ParseArgs(args []string) (Options, error) {
	var opts Options
	fs := flag.NewFlagSet("calltrace", flag.ContinueOnError)
	fs.StringVar(&opts.Source, "source", "", "root of the source tree to analyze")
	fs.StringVar(&opts.Start, "start", "", "entry function name to expand from")
	fs.IntVar(&opts.MaxDepth, "max-depth", 10, "maximum call-tree depth")
	fs.BoolVar(&opts.IncludeRTE, "include-rte", false, "descend into RTE call nodes")
	fs.BoolVar(&opts.UseCache, "use-cache", true, "reuse the on-disk function-database cache when valid")
	fs.BoolVar(&opts.RebuildCache, "rebuild-cache", false, "force a fresh parse, ignoring any existing cache")
	fs.StringVar(&opts.ModuleMap, "module-map", "", "path to a module-mapping YAML file")
	fs.BoolVar(&opts.Verbose, "verbose", false, "enable verbose logging")
	if err := fs.Parse(args); err != nil {
		return Options{}, err
	}
	if opts.Source == "" {
		return Options{}, fmt.Errorf("cliapp: -source is required")
	}
	if opts.Start == "" {
		return Options{}, fmt.Errorf("cliapp: -start is required")
	}
	return opts, nil
}

// Run parses args, builds the function database over opts.Source,
// expands the call tree from opts.Start, and writes a textual summary
// to out. Only source-tree or collaborator construction failures are
// fatal; everything else surfaces through the printed result's own
// Errors field.
func Run(args []string, out io.Writer) error {
	opts, err := ParseArgs(args)
	if err != nil {
		return err
	}

	commonlog.Configure(1, nil)
	log := logging.NewNoop()
	if opts.Verbose {
		log = logging.NewCommonLog("calltrace")
	}

	var resolver modulemap.Resolver
	if opts.ModuleMap != "" {
		cfg, err := modulemap.Load(opts.ModuleMap)
		if err != nil {
			return fmt.Errorf("cliapp: load module map: %w", err)
		}
		resolver = cfg
	}

	db, parseErrors, err := database.Build(database.BuildOptions{
		SourceRoot:   opts.Source,
		UseCache:     opts.UseCache,
		RebuildCache: opts.RebuildCache,
		ModuleMap:    resolver,
		Log:          log,
	})
	if err != nil {
		return fmt.Errorf("cliapp: build function database: %w", err)
	}
	for _, perr := range parseErrors {
		log.Warningf("parse error: %s", perr)
	}

	builder := calltree.New(db, log)
	result := builder.Build(opts.Start, opts.MaxDepth, opts.IncludeRTE)
	result.SourceDirectory = opts.Source

	writeSummary(out, result)
	return nil
}

// writeSummary prints a plain-text rendering of result: the root
// function, statistics, any circular dependencies, and the call tree
// itself indented by depth. Diagram emission (Mermaid/XMI/Rhapsody) is
// out of scope here; this is the minimal adapter needed to make the
// module runnable end-to-end.
func writeSummary(out io.Writer, result *model.AnalysisResult) {
	fmt.Fprintf(out, "root: %s\n", result.RootFunction)
	if len(result.Errors) > 0 {
		fmt.Fprintf(out, "errors: %s\n", strings.Join(result.Errors, "; "))
		return
	}

	s := result.Statistics
	fmt.Fprintf(out, "functions: total=%d unique=%d calls=%d max_depth=%d static=%d rte=%d autosar=%d cycles=%d\n",
		s.TotalFunctions, s.UniqueFunctions, s.TotalFunctionCalls, s.MaxDepthReached,
		s.StaticFunctions, s.RteFunctions, s.AutosarFunctions, s.CircularDependenciesFound)

	for _, c := range result.CircularDependencies {
		fmt.Fprintf(out, "cycle (depth %d): %s\n", c.Depth, strings.Join(c.Cycle, " -> "))
	}

	if result.CallTree != nil {
		printNode(out, result.CallTree)
	}
}

func printNode(out io.Writer, node *model.CallTreeNode) {
	indent := strings.Repeat("  ", node.Depth)
	marker := ""
	switch {
	case node.IsRecursive:
		marker = " [recursive]"
	case node.IsTruncated:
		marker = " [truncated]"
	}
	if node.IsOptional {
		marker += fmt.Sprintf(" [if %s]", node.Condition)
	}
	if node.IsLoop {
		marker += fmt.Sprintf(" [loop %s]", node.LoopCondition)
	}
	fmt.Fprintf(out, "%s%s%s\n", indent, node.FunctionInfo.QualifiedName, marker)
	for _, child := range node.Children {
		printNode(out, child)
	}
}
