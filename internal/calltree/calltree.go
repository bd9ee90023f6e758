// Package calltree performs a depth-first expansion: given a start
// function name, it walks a database.Database's resolved call graph and
// produces a model.AnalysisResult — a tree rooted at the start function,
// with cycle detection, a depth bound, and conditional/loop context
// propagated onto each child node.
package calltree

import (
	"time"

	"github.com/melodypapa/autosar-calltree-sub001/internal/database"
	"github.com/melodypapa/autosar-calltree-sub001/internal/logging"
	"github.com/melodypapa/autosar-calltree-sub001/internal/model"
)

// Builder expands a database's call graph into AnalysisResult trees.
type Builder struct {
	db  *database.Database
	log logging.Sink
}

// New returns a Builder backed by db. log may be logging.NewNoop().
func New(db *database.Database, log logging.Sink) *Builder {
	return &Builder{db: db, log: log}
}

// state threads the per-build bookkeeping (stats, the visited set, and
// the accumulated cycle list) through the recursive expansion without
// making every helper take five parameters.
type state struct {
	maxDepth   int
	includeRTE bool
	stats      model.AnalysisStatistics
	visited    map[string]bool
	cycles     []model.CircularDependency
}

// Build expands startName into a call tree. maxDepth must be >= 0. A node
// at depth maxDepth is not expanded: its resolved callees are added as
// truncated leaves at depth maxDepth+1 (so maxDepth 0 yields the root and
// its truncated callees). When
// includeRTE is false, RTE call nodes (name begins with "Rte_", or
// FunctionType == RteCall) are still created but never expanded further.
// If startName has no resolvable record, the result carries a nil
// CallTree and the error "start function not found".
func (b *Builder) Build(startName string, maxDepth int, includeRTE bool) *model.AnalysisResult {
	result := &model.AnalysisResult{
		RootFunction:  startName,
		MaxDepthLimit: maxDepth,
		Timestamp:     time.Now().UTC().Format(time.RFC3339),
	}

	root, ok := b.db.Lookup(startName, "")
	if !ok {
		result.Errors = append(result.Errors, "start function not found")
		return result
	}

	st := &state{
		maxDepth:   maxDepth,
		includeRTE: includeRTE,
		visited:    make(map[string]bool),
	}

	result.CallTree = b.expand(root, 0, nil, st)
	result.Statistics = st.stats
	result.CircularDependencies = st.cycles
	return result
}

// expand creates the node for rec at depth, recording it in st's
// counters, then — unless rec is a pruned RTE call — walks rec's call
// sites, resolving each against the database with rec's own file as
// context. ancestors is the ordered list of
// qualified names currently open on the DFS path (not including rec).
func (b *Builder) expand(rec *model.FunctionInfo, depth int, ancestors []string, st *state) *model.CallTreeNode {
	node := &model.CallTreeNode{FunctionInfo: rec, Depth: depth, CallCount: 1}
	countNode(rec, depth, st)

	if !st.includeRTE && rec.IsRte() {
		return node
	}

	stack := append(append([]string(nil), ancestors...), rec.QualifiedName)

	for _, call := range rec.Calls {
		callee, ok := b.db.Lookup(call.Name, rec.FilePath)
		if !ok {
			// Unresolved callee: skip silently.
			continue
		}
		st.stats.TotalFunctionCalls++

		if idx := indexOf(stack, callee.QualifiedName); idx >= 0 {
			child := &model.CallTreeNode{FunctionInfo: callee, Depth: depth + 1, IsRecursive: true, CallCount: 1}
			countNode(callee, depth+1, st)
			applyCallContext(child, call)
			node.Children = append(node.Children, child)

			cycle := append(append([]string(nil), stack[idx:]...), callee.QualifiedName)
			st.cycles = append(st.cycles, model.CircularDependency{Cycle: cycle, Depth: depth + 1})
			st.stats.CircularDependenciesFound++
			continue
		}

		if depth == st.maxDepth {
			child := &model.CallTreeNode{FunctionInfo: callee, Depth: depth + 1, IsTruncated: true, CallCount: 1}
			countNode(callee, depth+1, st)
			applyCallContext(child, call)
			node.Children = append(node.Children, child)
			continue
		}

		child := b.expand(callee, depth+1, stack, st)
		applyCallContext(child, call)
		node.Children = append(node.Children, child)
	}

	return node
}

// countNode updates st.stats for a single node's creation: max depth
// reached, the per-kind counters, and (once per distinct qualified name)
// the unique-functions counter. Invoked once per CallTreeNode created,
// including recursive and truncated leaves: include_rte affects
// traversal only, never these counters.
func countNode(rec *model.FunctionInfo, depth int, st *state) {
	st.stats.TotalFunctions++
	if depth > st.stats.MaxDepthReached {
		st.stats.MaxDepthReached = depth
	}
	if !st.visited[rec.QualifiedName] {
		st.visited[rec.QualifiedName] = true
		st.stats.UniqueFunctions++
	}
	if rec.IsStatic {
		st.stats.StaticFunctions++
	}
	if rec.IsRte() {
		st.stats.RteFunctions++
	}
	switch rec.FunctionType {
	case model.AutosarFunc, model.AutosarFuncP2Var, model.AutosarFuncP2Const:
		st.stats.AutosarFunctions++
	}
}

// applyCallContext copies a call site's conditional/loop context onto
// its child node: is_conditional/condition becomes is_optional/condition;
// is_loop/loop_condition keep their names.
func applyCallContext(node *model.CallTreeNode, call model.FunctionCall) {
	node.IsOptional = call.IsConditional
	node.Condition = call.Condition
	node.IsLoop = call.IsLoop
	node.LoopCondition = call.LoopCondition
}

// indexOf returns the first index of target in stack, or -1.
func indexOf(stack []string, target string) int {
	for i, s := range stack {
		if s == target {
			return i
		}
	}
	return -1
}
