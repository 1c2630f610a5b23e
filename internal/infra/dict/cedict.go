package dict

import (
	"bufio"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/rs/zerolog"
)

// CC-CEDICT line: TRADITIONAL SIMPLIFIED [pin1 yin1] /def/def/.../
var entryPattern = regexp.MustCompile(`^(\S+)\s+(\S+)\s+\[([^\]]+)\]\s+/(.+)/$`)

type Entry struct {
	Pinyin     string
	Definition string
}

// Dictionary is an in-memory CC-CEDICT index keyed by both simplified and
// traditional forms. A nil *Dictionary is valid and never matches, so the
// dictionary stays optional in wiring.
type Dictionary struct {
	entries map[string]Entry
}

// Load parses a CC-CEDICT file. Comment lines and malformed entries are
// ignored. The first entry per headword wins, which keeps lookups stable
// across reloads.
func Load(path string, log *zerolog.Logger) (*Dictionary, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open cedict: %w", err)
	}
	defer f.Close()

	d := &Dictionary{entries: make(map[string]Entry)}
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lines := 0
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "%") {
			continue
		}
		m := entryPattern.FindStringSubmatch(line)
		if len(m) != 5 {
			continue
		}
		traditional, simplified := m[1], m[2]
		defs := splitDefinitions(m[4])
		if len(defs) == 0 {
			continue
		}
		e := Entry{
			Pinyin:     strings.TrimSpace(m[3]),
			Definition: strings.Join(defs, "; "),
		}
		if _, ok := d.entries[simplified]; !ok {
			d.entries[simplified] = e
		}
		if _, ok := d.entries[traditional]; !ok {
			d.entries[traditional] = e
		}
		lines++
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan cedict: %w", err)
	}
	if log != nil {
		log.Info().Int("entries", lines).Str("path", path).Msg("cedict loaded")
	}
	return d, nil
}

// Lookup returns a one-line hint for the translator prompt, or "" when the
// word is unknown.
func (d *Dictionary) Lookup(word string) string {
	if d == nil {
		return ""
	}
	e, ok := d.entries[strings.TrimSpace(word)]
	if !ok {
		return ""
	}
	return fmt.Sprintf("[%s] %s", e.Pinyin, e.Definition)
}

func splitDefinitions(raw string) []string {
	parts := strings.Split(raw, "/")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
