package parser

// cKeywords is the full C11 reserved-word set. Tokens in this set are
// never accepted as a function name or recorded as a call target; the
// return-type text of a declaration is not checked against it.
var cKeywords = map[string]struct{}{
	"auto": {}, "break": {}, "case": {}, "char": {}, "const": {},
	"continue": {}, "default": {}, "do": {}, "double": {}, "else": {},
	"enum": {}, "extern": {}, "float": {}, "for": {}, "goto": {},
	"if": {}, "inline": {}, "int": {}, "long": {}, "register": {},
	"restrict": {}, "return": {}, "short": {}, "signed": {}, "sizeof": {},
	"static": {}, "struct": {}, "switch": {}, "typedef": {}, "union": {},
	"unsigned": {}, "void": {}, "volatile": {}, "while": {},
	"_Alignas": {}, "_Alignof": {}, "_Atomic": {}, "_Bool": {},
	"_Complex": {}, "_Generic": {}, "_Imaginary": {}, "_Noreturn": {},
	"_Static_assert": {}, "_Thread_local": {},
}

// autosarPrimitiveTypes are the fixed AUTOSAR scalar types that must
// never be mistaken for a call target when they appear as "Name(" in a
// cast or declaration context.
var autosarPrimitiveTypes = map[string]struct{}{
	"uint8": {}, "uint16": {}, "uint32": {}, "uint64": {},
	"sint8": {}, "sint16": {}, "sint32": {}, "sint64": {},
	"boolean": {}, "Boolean": {},
	"float32": {}, "float64": {},
	"Std_ReturnType": {}, "StatusType": {},
}

// literalSuffixMacros are the C99/AUTOSAR integer-literal-suffix macros
// that look like calls ("UINT32_C(5)") but are not.
var literalSuffixMacros = map[string]struct{}{
	"INT8_C": {}, "UINT8_C": {}, "INT16_C": {}, "UINT16_C": {},
	"INT32_C": {}, "UINT32_C": {}, "INT64_C": {}, "UINT64_C": {},
}

// declarationMacros are the AUTOSAR macros recognized as part of the
// parser's own grammar rather than as function calls, whether they
// appear in a signature or inside a function body (e.g. a local
// VAR(...) declaration).
var declarationMacros = map[string]struct{}{
	"FUNC": {}, "FUNC_P2VAR": {}, "FUNC_P2CONST": {},
	"VAR": {}, "P2VAR": {}, "P2CONST": {}, "CONST": {},
}

// inlineVariants are accepted in place of "inline" and discarded.
var inlineVariants = map[string]struct{}{
	"inline": {}, "__inline": {}, "__inline__": {},
}

func isKeyword(tok string) bool {
	_, ok := cKeywords[tok]
	return ok
}

func isCallFilteredName(name string) bool {
	if isKeyword(name) {
		return true
	}
	if _, ok := autosarPrimitiveTypes[name]; ok {
		return true
	}
	if _, ok := literalSuffixMacros[name]; ok {
		return true
	}
	if _, ok := declarationMacros[name]; ok {
		return true
	}
	return false
}
