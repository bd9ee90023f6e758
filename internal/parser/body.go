package parser

import (
	"github.com/melodypapa/autosar-calltree-sub001/internal/model"
)

// ctxFrame is one entry on the conditional or loop context stack
// maintained while scanning a function body.
type ctxFrame struct {
	text             string
	closeAtDepth     int // valid when popAfterSemicolon is false
	popAfterSemicolon bool
}

// bodyScanner walks a function body byte-by-byte, extracting call sites
// enriched with the innermost surrounding conditional/loop context.
type bodyScanner struct {
	body      string
	pos       int
	depth     int
	condStack []ctxFrame
	loopStack []ctxFrame
	calls     []model.FunctionCall
}

// extractCallsFromBody finds every "identifier(" call site in body,
// filters out keywords, AUTOSAR
// primitive types, literal-suffix macros and declaration macros, and
// tags each surviving call with the innermost active if/else and
// for/while context.
func extractCallsFromBody(body string) []model.FunctionCall {
	s := &bodyScanner{body: body}
	s.run()
	return s.calls
}

func (s *bodyScanner) run() {
	n := len(s.body)
	for s.pos < n {
		c := s.body[s.pos]
		switch {
		case c == '"' || c == '\'':
			s.pos = skipStringLiteralStr(s.body, s.pos) + 1
		case isIdentStart(c):
			s.handleIdentifier()
		case c == '{':
			s.depth++
			s.pos++
		case c == '}':
			s.depth--
			s.popBraceFrames()
			s.pos++
		case c == ';':
			s.pos++
			s.popSemicolonFrames()
		default:
			s.pos++
		}
	}
}

func (s *bodyScanner) popBraceFrames() {
	for len(s.condStack) > 0 && !s.condStack[len(s.condStack)-1].popAfterSemicolon && s.condStack[len(s.condStack)-1].closeAtDepth == s.depth {
		s.condStack = s.condStack[:len(s.condStack)-1]
	}
	for len(s.loopStack) > 0 && !s.loopStack[len(s.loopStack)-1].popAfterSemicolon && s.loopStack[len(s.loopStack)-1].closeAtDepth == s.depth {
		s.loopStack = s.loopStack[:len(s.loopStack)-1]
	}
}

func (s *bodyScanner) popSemicolonFrames() {
	for len(s.condStack) > 0 && s.condStack[len(s.condStack)-1].popAfterSemicolon {
		s.condStack = s.condStack[:len(s.condStack)-1]
	}
	for len(s.loopStack) > 0 && s.loopStack[len(s.loopStack)-1].popAfterSemicolon {
		s.loopStack = s.loopStack[:len(s.loopStack)-1]
	}
}

func (s *bodyScanner) handleIdentifier() {
	tok, end := readIdentifier(s.body, s.pos)
	switch tok {
	case "if":
		s.handleIf(end)
		return
	case "else":
		s.handleElse(end)
		return
	case "while":
		s.handleWhile(end)
		return
	case "for":
		s.handleFor(end)
		return
	}

	after := skipSpaces(s.body, end)
	if after < len(s.body) && s.body[after] == '(' && !isCallFilteredName(tok) {
		s.recordCall(tok)
	}
	s.pos = end
}

func (s *bodyScanner) recordCall(name string) {
	call := model.FunctionCall{Name: name}
	if len(s.condStack) > 0 {
		call.IsConditional = true
		call.Condition = s.condStack[len(s.condStack)-1].text
	}
	if len(s.loopStack) > 0 {
		call.IsLoop = true
		call.LoopCondition = s.loopStack[len(s.loopStack)-1].text
	}
	s.calls = model.MergeCall(s.calls, call)
}

// handleIf parses "if (...)" starting right after the "if" token at end,
// pushes a conditional frame, and advances pos past the guard.
func (s *bodyScanner) handleIf(end int) {
	guard, afterParen, ok := s.parseGuard(end)
	if !ok {
		s.pos = end
		return
	}
	s.pushControlFrame(s.condStack2(), sanitizeCondition(guard), afterParen)
}

func (s *bodyScanner) handleElse(end int) {
	after := skipSpaces(s.body, end)
	if tok, tokEnd := readIdentifier(s.body, after); tok == "if" {
		guard, afterParen, ok := s.parseGuard(tokEnd)
		if !ok {
			s.pos = tokEnd
			return
		}
		s.pushControlFrame(s.condStack2(), sanitizeCondition(guard), afterParen)
		return
	}
	s.pushControlFrame(s.condStack2(), "else", after)
}

func (s *bodyScanner) handleWhile(end int) {
	guard, afterParen, ok := s.parseGuard(end)
	if !ok {
		// Malformed loop header: do not push.
		s.pos = end
		return
	}
	s.pushControlFrame(s.loopStack2(), sanitizeCondition(guard), afterParen)
}

func (s *bodyScanner) handleFor(end int) {
	open := skipSpaces(s.body, end)
	if open >= len(s.body) || s.body[open] != '(' {
		s.pos = end
		return
	}
	close := matchBalanced(s.body, open, '(', ')')
	if close < 0 {
		s.pos = end
		return
	}
	clauses := splitSemicolons(s.body[open+1 : close])
	if len(clauses) != 3 {
		// Malformed for-header: do not push.
		s.pos = skipSpaces(s.body, close+1)
		return
	}
	s.pushControlFrame(s.loopStack2(), sanitizeCondition(clauses[1]), close+1)
}

// parseGuard expects "(" at or after idx, returns the raw text between
// the balanced parens, the position right after the closing ')', and
// whether a balanced guard was found at all.
func (s *bodyScanner) parseGuard(idx int) (string, int, bool) {
	open := skipSpaces(s.body, idx)
	if open >= len(s.body) || s.body[open] != '(' {
		return "", idx, false
	}
	close := matchBalanced(s.body, open, '(', ')')
	if close < 0 {
		return "", idx, false
	}
	return s.body[open+1 : close], close + 1, true
}

// pushControlFrame pushes a conditional/loop frame onto stack (passed by
// pointer via the *2 helpers below) after the guard, choosing braced vs
// braceless (one-statement lookahead) handling depending on what
// immediately follows.
func (s *bodyScanner) pushControlFrame(stack *[]ctxFrame, text string, afterParen int) {
	next := skipSpaces(s.body, afterParen)
	if next < len(s.body) && s.body[next] == '{' {
		*stack = append(*stack, ctxFrame{text: text, closeAtDepth: s.depth})
		s.pos = next
		return
	}
	*stack = append(*stack, ctxFrame{text: text, popAfterSemicolon: true})
	s.pos = next
}

func (s *bodyScanner) condStack2() *[]ctxFrame { return &s.condStack }
func (s *bodyScanner) loopStack2() *[]ctxFrame { return &s.loopStack }

// splitSemicolons splits a for-header's inner text on top-level ';'
// (parens/brackets/braces tracked) into its init/cond/step clauses.
func splitSemicolons(s string) []string {
	return splitTopLevel(s, ';')
}
