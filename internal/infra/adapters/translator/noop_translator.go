package translator

import (
	"context"
	"strings"

	"chinese-translation-service/internal/domain/ports/adapter"
)

var _ adapter.TranslatorAdapter = (*NoopTranslator)(nil)

// NoopTranslator is a deterministic stand-in for development and tests:
// it segments rune-by-rune and echoes canned glosses, so the full pipeline
// can run without a provider key.
type NoopTranslator struct{}

func NewNoopTranslator() *NoopTranslator { return &NoopTranslator{} }

func (n *NoopTranslator) Segment(ctx context.Context, text string) ([]string, error) {
	var segments []string
	for _, r := range strings.TrimSpace(text) {
		segments = append(segments, string(r))
	}
	return segments, nil
}

func (n *NoopTranslator) Translate(ctx context.Context, segment, sentenceContext, dictionaryEntry string) (string, error) {
	if dictionaryEntry != "" && dictionaryEntry != adapter.NoDictionaryEntry {
		return dictionaryEntry, nil
	}
	return "(" + segment + ")", nil
}

func (n *NoopTranslator) FullTranslate(ctx context.Context, text string) (string, error) {
	return "[dev translation of " + strings.TrimSpace(text) + "]", nil
}
