// Package parser implements a hybrid line-oriented, bounded-regex scan
// over AUTOSAR/C source: it never builds a full AST or grammar tree,
// trading completeness on exotic C constructs for linear-time, bounded
// behavior on arbitrarily large AUTOSAR source trees.
package parser

import (
	"bytes"
	"os"

	"github.com/melodypapa/autosar-calltree-sub001/internal/model"
)

// ParseFile extracts every AUTOSAR-macro and traditional-C function
// definition from the file at path, in source order. Declarations are
// recognized only while the running top-level brace depth is 0, so
// nothing inside a function body is mistaken for a nested declaration.
func ParseFile(path string) ([]model.FunctionInfo, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	content := string(stripComments(bytes.ToValidUTF8(raw, []byte("?"))))

	lines, offsets := splitLinesKeepOffsets([]byte(content))

	var results []model.FunctionInfo
	depth := 0
	li := 0
	for li < len(lines) {
		if depth == 0 {
			if info, endLine, ok := tryMacroDeclaration(content, lines, offsets, li); ok {
				info.FilePath = path
				results = append(results, info)
				li = endLine + 1
				continue
			}
			if info, endLine, ok := tryTraditionalDeclaration(content, lines, offsets, li); ok {
				info.FilePath = path
				results = append(results, info)
				li = endLine + 1
				continue
			}
		}
		depth += countBraceDelta(lines[li])
		if depth < 0 {
			depth = 0
		}
		li++
	}

	return results, nil
}

// countBraceDelta returns the net change in top-level brace depth
// contributed by line, ignoring braces that appear inside string or
// character literals.
func countBraceDelta(line string) int {
	delta := 0
	for i := 0; i < len(line); i++ {
		switch line[i] {
		case '"', '\'':
			i = skipStringLiteralStr(line, i)
		case '{':
			delta++
		case '}':
			delta--
		}
	}
	return delta
}
