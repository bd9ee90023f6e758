package parser

import (
	"regexp"
	"strings"

	"github.com/melodypapa/autosar-calltree-sub001/internal/model"
)

// declMacroHeadRe anchors on the start of a candidate AUTOSAR function
// declaration line: an optional "static", then one of the three function
// macros, then its opening paren. Quantifiers are bounded to keep
// worst-case matching linear.
var declMacroHeadRe = regexp.MustCompile(`^[ \t]{0,20}(static\s{1,20})?(FUNC_P2VAR|FUNC_P2CONST|FUNC)\s{0,10}\(`)

// maxSignatureLookaheadLines bounds how far a macro's return-type args,
// function name and parameter list may span before the parser gives up
// on the candidate.
const maxSignatureLookaheadLines = 10

// tryMacroDeclaration attempts to match an AUTOSAR macro function
// declaration starting at line li (0-based, must be called only when the
// caller's running brace depth is 0). It returns the parsed
// FunctionInfo, the 0-based index of the line containing the closing
// '}' of its body (so the caller can skip past it), and whether a
// definition was found at all. Prototypes (macro declarations ending in
// ';') are recognized but report ok=false since they contribute no
// FunctionInfo.
func tryMacroDeclaration(content string, lines []string, offsets []int, li int) (model.FunctionInfo, int, bool) {
	limitLine := li + maxSignatureLookaheadLines
	var limitOffset int
	if limitLine < len(offsets) {
		limitOffset = offsets[limitLine]
	} else {
		limitOffset = len(content)
	}
	window := content[offsets[li]:limitOffset]

	loc := declMacroHeadRe.FindStringSubmatchIndex(window)
	if loc == nil {
		return model.FunctionInfo{}, li, false
	}

	isStatic := loc[2] >= 0
	macroName := window[loc[4]:loc[5]]
	openParenRel := loc[1] - 1

	return parseMacroDeclaration(content, window, offsets, offsets[li], openParenRel, macroName, isStatic, li+1)
}

func parseMacroDeclaration(content, window string, offsets []int, winBase, openParenRel int, macroName string, isStatic bool, lineNumber int) (model.FunctionInfo, int, bool) {
	closeParenRel := matchBalanced(window, openParenRel, '(', ')')
	if closeParenRel < 0 {
		return model.FunctionInfo{}, 0, false
	}
	args := splitTopLevel(window[openParenRel+1:closeParenRel], ',')

	nameStart := skipSpaces(window, closeParenRel+1)
	name, nameEnd := readIdentifier(window, nameStart)
	if name == "" {
		return model.FunctionInfo{}, 0, false
	}

	paramOpenRel := skipSpaces(window, nameEnd)
	if paramOpenRel >= len(window) || window[paramOpenRel] != '(' {
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
		// Prototype only; no body to extract calls from.
		return model.FunctionInfo{}, 0, false
	case '{':
		braceOpenAbs := winBase + after
		braceCloseAbs := matchBalanced(content, braceOpenAbs, '{', '}')
		if braceCloseAbs < 0 {
			return model.FunctionInfo{}, 0, false
		}
		body := content[braceOpenAbs+1 : braceCloseAbs]
		calls := extractCallsFromBody(body)

		info := model.FunctionInfo{
			Name:          name,
			LineNumber:    lineNumber,
			IsStatic:      isStatic,
			QualifiedName: name,
			MacroType:     macroName,
			Parameters:    params,
			Calls:         calls,
		}
		applyMacroReturnShape(&info, macroName, args)
		endLine := lineNumberForOffset(offsets, braceCloseAbs) - 1
		return info, endLine, true
	default:
		return model.FunctionInfo{}, 0, false
	}
}

// applyMacroReturnShape fills FunctionType, ReturnType and MemoryClass
// from the macro's own argument list.
func applyMacroReturnShape(info *model.FunctionInfo, macroName string, args []string) {
	switch macroName {
	case "FUNC":
		info.FunctionType = model.AutosarFunc
		if len(args) == 2 {
			info.ReturnType = strings.TrimSpace(args[0])
			info.MemoryClass = strings.TrimSpace(args[1])
			info.HasMemClass = true
		}
	case "FUNC_P2VAR":
		info.FunctionType = model.AutosarFuncP2Var
		if len(args) == 3 {
			info.ReturnType = strings.TrimSpace(args[0]) + " *"
			info.MemoryClass = strings.TrimSpace(args[2])
			info.HasMemClass = true
		}
	case "FUNC_P2CONST":
		info.FunctionType = model.AutosarFuncP2Const
		if len(args) == 3 {
			info.ReturnType = "const " + strings.TrimSpace(args[0]) + " *"
			info.MemoryClass = strings.TrimSpace(args[2])
			info.HasMemClass = true
		}
	}
}
