package parser

import "strings"

// splitLinesKeepOffsets splits content into lines (newline stripped) and
// returns, for each line, the absolute byte offset of its first byte in
// content. This lets later stages recover a 1-based line number for any
// absolute offset without re-scanning the file.
func splitLinesKeepOffsets(content []byte) (lines []string, offsets []int) {
	start := 0
	for i := 0; i <= len(content); i++ {
		if i == len(content) || content[i] == '\n' {
			line := string(content[start:i])
			line = strings.TrimSuffix(line, "\r")
			lines = append(lines, line)
			offsets = append(offsets, start)
			start = i + 1
		}
	}
	return lines, offsets
}

// lineNumberForOffset returns the 1-based line number containing the
// given absolute byte offset, using the offsets table produced by
// splitLinesKeepOffsets.
func lineNumberForOffset(offsets []int, offset int) int {
	lo, hi := 0, len(offsets)-1
	result := 0
	for lo <= hi {
		mid := (lo + hi) / 2
		if offsets[mid] <= offset {
			result = mid
			lo = mid + 1
		} else {
			hi = mid - 1
		}
	}
	return result + 1
}

// matchBalanced scans s starting at open (which must hold openCh) and
// returns the index of the matching close rune, tracking nesting. Returns
// -1 if no match is found before the end of s.
func matchBalanced(s string, open int, openCh, closeCh byte) int {
	if open >= len(s) || s[open] != openCh {
		return -1
	}
	depth := 0
	for i := open; i < len(s); i++ {
		switch s[i] {
		case '"', '\'':
			i = skipStringLiteralStr(s, i)
		case openCh:
			depth++
		case closeCh:
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// skipStringLiteralStr mirrors skipStringLiteral but operates on a
// string and returns the index of the literal's closing quote (or, if
// unterminated, the index just before the line's newline or the last
// index of s).
func skipStringLiteralStr(s string, i int) int {
	if i >= len(s) {
		return i
	}
	quote := s[i]
	j := i + 1
	for j < len(s) {
		if s[j] == '\\' && j+1 < len(s) {
			j += 2
			continue
		}
		if s[j] == quote {
			return j
		}
		if s[j] == '\n' {
			return j - 1
		}
		j++
	}
	return len(s) - 1
}

// splitTopLevel splits s on sep at nesting depth 0, tracking (), [], {}.
// Each resulting segment is trimmed of surrounding whitespace. Empty
// input (after trimming) yields no segments.
func splitTopLevel(s string, sep byte) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}

	var segments []string
	depth := 0
	last := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '"', '\'':
			i = skipStringLiteralStr(s, i)
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			depth--
		default:
			if s[i] == sep && depth == 0 {
				segments = append(segments, strings.TrimSpace(s[last:i]))
				last = i + 1
			}
		}
	}
	segments = append(segments, strings.TrimSpace(s[last:]))
	return segments
}

// isIdentByte reports whether b can appear inside a C identifier.
func isIdentByte(b byte) bool {
	return b == '_' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9')
}

// isIdentStart reports whether b can start a C identifier.
func isIdentStart(b byte) bool {
	return b == '_' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

// readIdentifier reads the maximal identifier token starting at i,
// bounded to 50 characters to keep worst-case scanning linear, returning
// the token and the index just past it.
func readIdentifier(s string, i int) (string, int) {
	if i >= len(s) || !isIdentStart(s[i]) {
		return "", i
	}
	j := i + 1
	for j < len(s) && isIdentByte(s[j]) && j-i < 50 {
		j++
	}
	return s[i:j], j
}

// skipSpaces returns the index of the next non-whitespace byte at or
// after i.
func skipSpaces(s string, i int) int {
	for i < len(s) && (s[i] == ' ' || s[i] == '\t' || s[i] == '\n' || s[i] == '\r') {
		i++
	}
	return i
}
