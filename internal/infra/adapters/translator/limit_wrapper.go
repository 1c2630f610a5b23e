package translator

import (
	"context"

	"chinese-translation-service/internal/domain/ports/adapter"
)

// Compile-time check
var _ adapter.TranslatorAdapter = (*limitedTranslator)(nil)

// limitedTranslator caps concurrent provider calls with a semaphore. The
// queue's rate limiter controls spacing; this wrapper only bounds in-flight
// requests when many jobs run at once.
type limitedTranslator struct {
	inner adapter.TranslatorAdapter
	sem   chan struct{}
}

func NewLimitedTranslator(inner adapter.TranslatorAdapter, maxConcurrent int) adapter.TranslatorAdapter {
	if maxConcurrent <= 0 {
		return inner
	}
	return &limitedTranslator{
		inner: inner,
		sem:   make(chan struct{}, maxConcurrent),
	}
}

func (l *limitedTranslator) Segment(ctx context.Context, text string) ([]string, error) {
	l.sem <- struct{}{}
	defer func() { <-l.sem }()
	return l.inner.Segment(ctx, text)
}

func (l *limitedTranslator) Translate(ctx context.Context, segment, sentenceContext, dictionaryEntry string) (string, error) {
	l.sem <- struct{}{}
	defer func() { <-l.sem }()
	return l.inner.Translate(ctx, segment, sentenceContext, dictionaryEntry)
}

func (l *limitedTranslator) FullTranslate(ctx context.Context, text string) (string, error) {
	l.sem <- struct{}{}
	defer func() { <-l.sem }()
	return l.inner.FullTranslate(ctx, text)
}
