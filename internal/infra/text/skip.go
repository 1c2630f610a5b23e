package text

import "strings"

// isCJKIdeograph reports whether r is a CJK Unified Ideograph, including
// the extension blocks.
func isCJKIdeograph(r rune) bool {
	switch {
	case r >= 0x4E00 && r <= 0x9FFF: // main CJK block
		return true
	case r >= 0x3400 && r <= 0x4DBF: // extension A
		return true
	case r >= 0x20000 && r <= 0x2A6DF: // extension B
		return true
	case r >= 0x2A700 && r <= 0x2CEAF: // extensions C-E
		return true
	case r >= 0x2CEB0 && r <= 0x2EBEF: // extensions F-I
		return true
	case r >= 0x30000 && r <= 0x323AF: // extensions G-H
		return true
	}
	return false
}

// ShouldSkipSegment reports whether a segment carries nothing worth
// translating: empty/whitespace-only text, or text with no CJK ideographs
// (pure punctuation, symbols, numbers, Latin letters).
func ShouldSkipSegment(segment string) bool {
	if strings.TrimSpace(segment) == "" {
		return true
	}
	for _, r := range segment {
		if isCJKIdeograph(r) {
			return false
		}
	}
	return true
}
