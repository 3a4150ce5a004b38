package contract

import (
	"strings"
)

// DefaultMaxDropBytes bounds the dangling-line heuristic: dropping more than
// this many bytes risks discarding a structurally significant trailing
// element, so the repairer skips the drop and lets the engine fall back.
const DefaultMaxDropBytes = 256

// Repairer attempts bounded structural repair of a JSON candidate that failed
// to parse. It is best-effort and single-pass: the goal is syntactically
// valid JSON, not semantically complete content; the validator still rejects
// payloads the repair left incomplete. Repair is idempotent: running it on an
// already-balanced candidate returns it unchanged.
type Repairer struct {
	MaxDropBytes int
}

// NewRepairer returns a Repairer with the given dangling-line drop budget.
// Non-positive budgets fall back to DefaultMaxDropBytes.
func NewRepairer(maxDropBytes int) Repairer {
	if maxDropBytes <= 0 {
		maxDropBytes = DefaultMaxDropBytes
	}
	return Repairer{MaxDropBytes: maxDropBytes}
}

// Repair applies, in order: drop of a dangling final line (a trailing key or
// list element cut off mid-write, re-extracting once afterwards), balancing
// of unmatched braces/brackets, and removal of trailing commas before
// closers. Structural characters inside string literals are ignored
// throughout.
func (r Repairer) Repair(candidate string, kind Kind) string {
	out := candidate

	if dropped, ok := r.dropDanglingLine(out, kind); ok {
		if slice, found := Extract(dropped, kind); found {
			out = slice
		} else {
			out = dropped
		}
	}

	out = balance(out)
	out = stripTrailingCommas(out)
	return out
}

// dropDanglingLine removes the final non-empty line when it ends with a colon
// or comma, the signature of a key or element truncated mid-write. The drop
// is skipped when it would exceed the byte budget or leave no opener behind.
func (r Repairer) dropDanglingLine(s string, kind Kind) (string, bool) {
	trimmed := strings.TrimRight(s, " \t\r\n")
	if trimmed == "" {
		return s, false
	}

	last := trimmed[len(trimmed)-1]
	if last != ':' && last != ',' {
		return s, false
	}

	lineStart := strings.LastIndexByte(trimmed, '\n') + 1
	if len(trimmed)-lineStart > r.MaxDropBytes {
		return s, false
	}

	remainder := trimmed[:lineStart]
	if strings.IndexByte(remainder, kind.opener()) < 0 {
		return s, false
	}
	return remainder, true
}

// balance closes an unterminated string literal and appends the closers for
// every structure still open at end of input, innermost first. Truncation
// most commonly cuts an object inside an array, so the brace naturally closes
// before the bracket.
func balance(s string) string {
	var stack []byte
	inString := false
	escaped := false

	for i := 0; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{', '[':
			stack = append(stack, c)
		case '}':
			if len(stack) > 0 && stack[len(stack)-1] == '{' {
				stack = stack[:len(stack)-1]
			}
		case ']':
			if len(stack) > 0 && stack[len(stack)-1] == '[' {
				stack = stack[:len(stack)-1]
			}
		}
	}

	if !inString && len(stack) == 0 {
		return s
	}

	var b strings.Builder
	b.WriteString(s)
	if inString {
		b.WriteByte('"')
	}
	for i := len(stack) - 1; i >= 0; i-- {
		if stack[i] == '{' {
			b.WriteByte('}')
		} else {
			b.WriteByte(']')
		}
	}
	return b.String()
}

// stripTrailingCommas removes commas that are followed only by whitespace and
// a closing brace or bracket.
func stripTrailingCommas(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	inString := false
	escaped := false

	for i := 0; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			b.WriteByte(c)
			continue
		}
		if c == '"' {
			inString = true
			b.WriteByte(c)
			continue
		}
		if c == ',' {
			j := i + 1
			for j < len(s) && isSpace(s[j]) {
				j++
			}
			if j < len(s) && (s[j] == '}' || s[j] == ']') {
				continue // drop the comma, keep the whitespace
			}
		}
		b.WriteByte(c)
	}
	return b.String()
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\r' || c == '\n'
}
