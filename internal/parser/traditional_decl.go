package parser

import (
	"regexp"
	"strings"

	"github.com/melodypapa/autosar-calltree-sub001/internal/model"
)

// typeOnlyLineRe recognizes a line that consists solely of a type-like
// token sequence (identifiers, whitespace, pointer stars) with no
// parens, braces, or statement terminators — a return type declared on
// its own line, with the function name and parameter list following on
// the next line.
var typeOnlyLineRe = regexp.MustCompile(`^[\w\s\*]+$`)

// tryTraditionalDeclaration attempts to match a plain C function
// definition starting at line li (0-based), used only when the caller's
// running top-level brace depth is 0. It looks for the last
// "identifier (" at paren-depth 0 on the line, requires non-empty text
// before it (the return type) either on the same line or, failing that,
// on the immediately preceding line if that line is type-only (e.g.
// "static void\nmy_func(void)"), and requires a '{' body to follow the
// parameter list (prototypes ending in ';' are recognized but yield
// ok=false).
func tryTraditionalDeclaration(content string, lines []string, offsets []int, li int) (model.FunctionInfo, int, bool) {
	line := lines[li]
	trimmed := strings.TrimSpace(line)
	if trimmed == "" || strings.HasPrefix(trimmed, "#") {
		return model.FunctionInfo{}, 0, false
	}

	nameStartRel, nameEndRel, name, ok := findDeclarationName(line)
	if !ok || isKeyword(name) {
		return model.FunctionInfo{}, 0, false
	}

	precedingRaw := strings.TrimSpace(line[:nameStartRel])
	isStatic, isInline, typeText := stripLeadingQualifiers(precedingRaw)
	declLine := li
	if typeText == "" {
		prevText, prevOK := precedingTypeLine(lines, li)
		if !prevOK {
			return model.FunctionInfo{}, 0, false
		}
		isStatic, isInline, typeText = stripLeadingQualifiers(prevText)
		if typeText == "" {
			return model.FunctionInfo{}, 0, false
		}
		declLine = li - 1
	}
	_ = isInline

	limitLine := li + maxSignatureLookaheadLines
	var limitOffset int
	if limitLine < len(offsets) {
		limitOffset = offsets[limitLine]
	} else {
		limitOffset = len(content)
	}
	window := content[offsets[li]:limitOffset]

	paramOpenRel := nameEndRel
	for paramOpenRel < len(window) && window[paramOpenRel] != '(' {
		paramOpenRel++
	}
	if paramOpenRel >= len(window) {
		return model.FunctionInfo{}, 0, false
	}
	paramCloseRel := matchBalanced(window, paramOpenRel, '(', ')')
	if paramCloseRel < 0 {
		return model.FunctionInfo{}, 0, false
	}
	params := parseParameterList(window[paramOpenRel+1 : paramCloseRel])

	after := skipSpaces(window, paramCloseRel+1)
	if after >= len(window) {
		return model.FunctionInfo{}, 0, false
	}
	switch window[after] {
	case ';':
		return model.FunctionInfo{}, 0, false
	case '{':
		braceOpenAbs := offsets[li] + after
		braceCloseAbs := matchBalanced(content, braceOpenAbs, '{', '}')
		// A body with no matching '}' is kept as an empty body running to
		// the end of the file.
		var calls []model.FunctionCall
		endLine := len(offsets) - 1
		if braceCloseAbs >= 0 {
			calls = extractCallsFromBody(content[braceOpenAbs+1 : braceCloseAbs])
			endLine = lineNumberForOffset(offsets, braceCloseAbs) - 1
		}

		returnType, isPointerReturn := splitTrailingPointer(typeText)
		info := model.FunctionInfo{
			Name:          name,
			LineNumber:    declLine + 1,
			IsStatic:      isStatic,
			QualifiedName: name,
			FunctionType:  model.TraditionalC,
			ReturnType:    returnType,
			Parameters:    params,
			Calls:         calls,
		}
		if isPointerReturn {
			info.ReturnType += " *"
		}
		return info, endLine, true
	default:
		return model.FunctionInfo{}, 0, false
	}
}

// precedingTypeLine reports whether the line immediately before li is a
// type-only line (identifiers, whitespace, and pointer stars only — no
// parens, braces, or statement terminators), returning its trimmed text.
// li must be > 0; a missing or non-type-like previous line reports ok=false.
func precedingTypeLine(lines []string, li int) (string, bool) {
	if li == 0 {
		return "", false
	}
	prev := strings.TrimSpace(lines[li-1])
	if prev == "" || !typeOnlyLineRe.MatchString(prev) {
		return "", false
	}
	return prev, true
}

// findDeclarationName scans line for the last identifier immediately
// (ignoring whitespace) followed by '(' at paren-depth 0, returning its
// start/end byte offsets within line and the identifier itself.
func findDeclarationName(line string) (int, int, string, bool) {
	depth := 0
	bestStart, bestEnd := -1, -1
	var bestName string

	i := 0
	for i < len(line) {
		c := line[i]
		switch {
		case c == '"' || c == '\'':
			i = skipStringLiteralStr(line, i) + 1
			continue
		case isIdentStart(c):
			start := i
			tok, end := readIdentifier(line, i)
			after := skipSpaces(line, end)
			if depth == 0 && after < len(line) && line[after] == '(' {
				bestStart, bestEnd, bestName = start, end, tok
			}
			i = end
			continue
		case c == '(':
			depth++
		case c == ')':
			depth--
		}
		i++
	}

	if bestStart < 0 {
		return 0, 0, "", false
	}
	return bestStart, bestEnd, bestName, true
}

// stripLeadingQualifiers removes a leading "static" and an inline
// variant (in either order) from text, reporting which were present and
// returning what remains as the candidate return-type text.
func stripLeadingQualifiers(text string) (isStatic, isInline bool, rest string) {
	rest = text
	for {
		trimmed := strings.TrimSpace(rest)
		switch {
		case strings.HasPrefix(trimmed, "static") && isWordBoundary(trimmed, len("static")):
			isStatic = true
			rest = trimmed[len("static"):]
		case matchesInlineVariant(trimmed):
			isInline = true
			rest = trimmed[inlineVariantLen(trimmed):]
		default:
			return isStatic, isInline, strings.TrimSpace(rest)
		}
	}
}

func isWordBoundary(s string, idx int) bool {
	return idx >= len(s) || !isIdentByte(s[idx])
}

func matchesInlineVariant(s string) bool {
	for v := range inlineVariants {
		if strings.HasPrefix(s, v) && isWordBoundary(s, len(v)) {
			return true
		}
	}
	return false
}

func inlineVariantLen(s string) int {
	for v := range inlineVariants {
		if strings.HasPrefix(s, v) && isWordBoundary(s, len(v)) {
			return len(v)
		}
	}
	return 0
}

// splitTrailingPointer strips trailing '*' characters from a return-type
// string, reporting whether any were found.
func splitTrailingPointer(typeText string) (string, bool) {
	t := strings.TrimSpace(typeText)
	found := false
	for strings.HasSuffix(t, "*") {
		found = true
		t = strings.TrimSpace(strings.TrimSuffix(t, "*"))
	}
	return t, found
}
