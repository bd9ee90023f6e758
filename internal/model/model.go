// Package model holds the data types shared by the parser, the function
// database, and the call-tree builder. Every type here is a plain value
// type; nothing in this package talks to a file system or a network.
package model

import (
	"path/filepath"
	"strings"
)

// FunctionType tags the syntactic form a function declaration was
// recognized from.
type FunctionType string

const (
	AutosarFunc        FunctionType = "AutosarFunc"
	AutosarFuncP2Var   FunctionType = "AutosarFuncP2Var"
	AutosarFuncP2Const FunctionType = "AutosarFuncP2Const"
	TraditionalC       FunctionType = "TraditionalC"
	RteCall            FunctionType = "RteCall"
	Unknown            FunctionType = "Unknown"
)

// Parameter is one entry in a function's parameter list.
type Parameter struct {
	Name        string
	ParamType   string
	IsPointer   bool
	IsConst     bool
	MemoryClass string // empty when not AUTOSAR-qualified
	HasMemClass bool
}

// String renders the parameter the way it would appear in a C
// declaration: "[const ]<type>[*] <name>[ [<memclass>]]".
func (p Parameter) String() string {
	var b strings.Builder
	if p.IsConst {
		b.WriteString("const ")
	}
	b.WriteString(p.ParamType)
	if p.IsPointer {
		b.WriteString("*")
	}
	if p.Name != "" {
		b.WriteString(" ")
		b.WriteString(p.Name)
	}
	if p.HasMemClass {
		b.WriteString(" [")
		b.WriteString(p.MemoryClass)
		b.WriteString("]")
	}
	return b.String()
}

// FunctionCall is one call-site record discovered inside a function body.
type FunctionCall struct {
	Name          string
	IsConditional bool
	Condition     string // cleaned guard text ("else" for an else branch); empty when IsConditional is false
	IsLoop        bool
	LoopCondition string // empty when IsLoop is false
}

// mergeContext folds another occurrence of the same call into this one:
// flags are OR'd, and the most recently observed condition/loop text wins.
func (c *FunctionCall) mergeContext(other FunctionCall) {
	if other.IsConditional {
		c.IsConditional = true
		c.Condition = other.Condition
	}
	if other.IsLoop {
		c.IsLoop = true
		c.LoopCondition = other.LoopCondition
	}
}

// MergeCall records an occurrence of a call named name with the given
// context into calls, collapsing it into an existing entry with the same
// name if one is already present.
func MergeCall(calls []FunctionCall, call FunctionCall) []FunctionCall {
	for i := range calls {
		if calls[i].Name == call.Name {
			calls[i].mergeContext(call)
			return calls
		}
	}
	return append(calls, call)
}

// FunctionInfo is the central, immutable-after-insertion record produced
// by the parser and indexed by the database.
type FunctionInfo struct {
	Name          string
	FilePath      string
	LineNumber    int
	IsStatic      bool
	QualifiedName string

	FunctionType FunctionType
	ReturnType   string
	MemoryClass  string // empty when not AUTOSAR-qualified
	HasMemClass  bool
	MacroType    string // "FUNC", "FUNC_P2VAR", "FUNC_P2CONST", or empty

	Parameters []Parameter
	Calls      []FunctionCall
	SWModule   string
	HasModule  bool
}

// FileStem returns the base name of filePath with its extension removed,
// the left-hand side of a QualifiedName.
func FileStem(filePath string) string {
	base := filepath.Base(filePath)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// QualifiedName builds the canonical "<file_stem>::<name>" form used to
// disambiguate same-named functions across files.
func QualifiedName(filePath, name string) string {
	return FileStem(filePath) + "::" + name
}

// Identity is the (name, file_path, line_number) triple used for
// FunctionInfo equality and hashing. Go has no operator overloading,
// so call sites that need a composite map key use this directly.
type Identity struct {
	Name       string
	FilePath   string
	LineNumber int
}

// Identity returns f's (name, file_path, line_number) triple.
func (f *FunctionInfo) Identity() Identity {
	return Identity{Name: f.Name, FilePath: f.FilePath, LineNumber: f.LineNumber}
}

// IsRte reports whether f should be treated as an AUTOSAR RTE call: its
// name begins with "Rte_", or its FunctionType is already tagged RteCall.
func (f *FunctionInfo) IsRte() bool {
	if f.FunctionType == RteCall {
		return true
	}
	return strings.HasPrefix(f.Name, "Rte_")
}

// CallTreeNode is one node of a call tree produced by the builder.
// Children are owned by their parent; there is no parent back-reference —
// tree consumers do not need to walk upward.
type CallTreeNode struct {
	FunctionInfo *FunctionInfo
	Depth        int
	Children     []*CallTreeNode

	IsRecursive   bool
	IsTruncated   bool
	IsOptional    bool
	Condition     string
	IsLoop        bool
	LoopCondition string
	CallCount     int
}

// CircularDependency records one detected call cycle.
type CircularDependency struct {
	Cycle []string // qualified names, first == last
	Depth int       // depth at which the cycle was detected
}

// AnalysisStatistics are the counters accumulated while building a call
// tree.
type AnalysisStatistics struct {
	TotalFunctions            int
	UniqueFunctions           int
	MaxDepthReached           int
	TotalFunctionCalls        int
	StaticFunctions           int
	RteFunctions              int
	AutosarFunctions          int
	CircularDependenciesFound int
}

// AnalysisResult is the outcome of one CallTreeBuilder.Build invocation.
type AnalysisResult struct {
	RootFunction        string
	CallTree            *CallTreeNode // nil on failure
	Statistics          AnalysisStatistics
	CircularDependencies []CircularDependency
	Errors              []string
	Timestamp           string
	SourceDirectory     string
	MaxDepthLimit       int
}
