package contract

import "strings"

// Extract locates the JSON candidate inside a raw completion: the slice from
// the first occurrence of the shape's opening character to the last
// occurrence of the matching closing character. Models routinely wrap the
// payload in prose or markdown fences; everything outside the slice is
// discarded. Returns false when no opener exists at all.
func Extract(raw string, kind Kind) (string, bool) {
	start := strings.IndexByte(raw, kind.opener())
	if start < 0 {
		return "", false
	}

	end := strings.LastIndexByte(raw, kind.closer())
	if end < start {
		// Truncated before any closer. Keep the tail; the repairer may
		// still be able to balance it.
		return raw[start:], true
	}
	return raw[start : end+1], true
}
