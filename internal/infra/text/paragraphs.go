package text

import (
	"strings"
	"unicode"
)

// Paragraph is one unit of input between paragraph breaks. Indent and
// Separator carry the exact surrounding whitespace so the original layout
// can be reproduced on reassembly.
type Paragraph struct {
	Content   string
	Indent    string
	Separator string
}

// SplitParagraphs splits text on newlines while preserving whitespace
// information. Leading blank lines are dropped; each paragraph's Separator
// is the run of newlines that follows it ("" for the final line of input).
func SplitParagraphs(text string) []Paragraph {
	if text == "" {
		return nil
	}

	lines := strings.Split(text, "\n")
	var paragraphs []Paragraph

	for i, line := range lines {
		trimmed := strings.TrimSpace(line)

		// Skip completely empty lines before the first paragraph.
		if len(paragraphs) == 0 && trimmed == "" {
			continue
		}
		if trimmed == "" {
			continue
		}

		// Count consecutive blank lines after this one to build the separator.
		separator := "\n"
		for j := i + 1; j < len(lines) && strings.TrimSpace(lines[j]) == ""; j++ {
			separator += "\n"
		}
		if i == len(lines)-1 {
			separator = ""
		}

		// Leading run of any Unicode whitespace, including the ideographic
		// space (U+3000) conventionally used to indent Chinese paragraphs.
		indent := line[:len(line)-len(strings.TrimLeftFunc(line, unicode.IsSpace))]

		paragraphs = append(paragraphs, Paragraph{
			Content:   trimmed,
			Indent:    indent,
			Separator: separator,
		})
	}

	return paragraphs
}
