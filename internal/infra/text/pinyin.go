package text

import (
	"strings"

	"github.com/mozillazg/go-pinyin"
)

// ToPinyin converts a Chinese segment to tone-marked pinyin, syllables
// joined with single spaces ("你好" -> "nǐ hǎo"). Non-hanzi runes are
// preserved as-is. Deterministic: no heteronym expansion, first reading
// only, so the same segment always yields the same transcription.
func ToPinyin(segment string) string {
	if ShouldSkipSegment(segment) {
		return ""
	}

	args := pinyin.NewArgs()
	args.Style = pinyin.Tone
	args.Fallback = func(r rune, a pinyin.Args) []string {
		return []string{string(r)}
	}

	readings := pinyin.Pinyin(segment, args)
	syllables := make([]string, 0, len(readings))
	for _, rs := range readings {
		if len(rs) > 0 {
			syllables = append(syllables, rs[0])
		}
	}
	return strings.TrimSpace(strings.Join(syllables, " "))
}
