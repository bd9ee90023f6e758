package parser

import (
	"regexp"
	"strings"

	"github.com/melodypapa/autosar-calltree-sub001/internal/model"
)

// macroParamHeadRe recognizes the head of a parameter macro invocation:
// VAR(..., P2VAR(..., P2CONST(..., or CONST(... . The argument list
// itself is extracted separately via matchBalanced so arbitrary internal
// whitespace around commas and parens is tolerated.
var macroParamHeadRe = regexp.MustCompile(`^(VAR|P2VAR|P2CONST|CONST)\s*\(`)

// parseParameterList splits the raw text between a function's outer
// parameter-list parentheses into Parameters. A literal "void" or an
// empty list yields an empty (not one-element) result.
func parseParameterList(raw string) []model.Parameter {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "void" {
		return nil
	}

	segments := splitTopLevel(raw, ',')
	params := make([]model.Parameter, 0, len(segments))
	for _, seg := range segments {
		seg = strings.TrimSpace(seg)
		if seg == "" || seg == "void" {
			continue
		}
		if p, ok := parseMacroParameter(seg); ok {
			params = append(params, p)
			continue
		}
		params = append(params, parseTraditionalParameter(seg))
	}
	return params
}

// parseMacroParameter recognizes one AUTOSAR parameter macro invocation:
// VAR, CONST, P2VAR, or P2CONST.
func parseMacroParameter(seg string) (model.Parameter, bool) {
	loc := macroParamHeadRe.FindStringSubmatchIndex(seg)
	if loc == nil {
		return model.Parameter{}, false
	}
	macroName := seg[loc[2]:loc[3]]
	openParen := loc[1] - 1 // index of the '(' consumed by the head regex

	closeParen := matchBalanced(seg, openParen, '(', ')')
	if closeParen < 0 {
		return model.Parameter{}, false
	}

	args := splitTopLevel(seg[openParen+1:closeParen], ',')
	name := strings.TrimSpace(seg[closeParen+1:])
	if name == "" {
		return model.Parameter{}, false
	}

	switch macroName {
	case "VAR":
		if len(args) != 2 {
			return model.Parameter{}, false
		}
		return model.Parameter{Name: name, ParamType: args[0], MemoryClass: args[1], HasMemClass: true}, true
	case "CONST":
		if len(args) != 2 {
			return model.Parameter{}, false
		}
		return model.Parameter{Name: name, ParamType: args[0], IsConst: true, MemoryClass: args[1], HasMemClass: true}, true
	case "P2VAR":
		if len(args) != 3 {
			return model.Parameter{}, false
		}
		return model.Parameter{Name: name, ParamType: args[0], IsPointer: true, MemoryClass: args[2], HasMemClass: true}, true
	case "P2CONST":
		if len(args) != 3 {
			return model.Parameter{}, false
		}
		return model.Parameter{Name: name, ParamType: args[0], IsPointer: true, IsConst: true, MemoryClass: args[2], HasMemClass: true}, true
	}
	return model.Parameter{}, false
}

// parseTraditionalParameter handles a plain C parameter: split on the
// rightmost whitespace into type/name, detect a trailing '*' as a
// pointer, detect a leading "const" token.
func parseTraditionalParameter(seg string) model.Parameter {
	seg = strings.TrimSpace(seg)

	isConst := false
	if seg == "const" || strings.HasPrefix(seg, "const ") || strings.HasPrefix(seg, "const\t") {
		isConst = true
		seg = strings.TrimSpace(seg[len("const"):])
	}

	idx := lastWhitespace(seg)
	var typePart, namePart string
	if idx < 0 {
		typePart = seg
		namePart = ""
	} else {
		typePart = strings.TrimSpace(seg[:idx])
		namePart = strings.TrimSpace(seg[idx+1:])
	}

	isPointer := false
	for strings.HasPrefix(namePart, "*") {
		isPointer = true
		namePart = strings.TrimPrefix(namePart, "*")
	}
	for strings.HasSuffix(typePart, "*") {
		isPointer = true
		typePart = strings.TrimSpace(strings.TrimSuffix(typePart, "*"))
	}

	return model.Parameter{
		Name:      namePart,
		ParamType: typePart,
		IsPointer: isPointer,
		IsConst:   isConst,
	}
}

func lastWhitespace(s string) int {
	for i := len(s) - 1; i >= 0; i-- {
		switch s[i] {
		case ' ', '\t':
			return i
		}
	}
	return -1
}
