package adapter

import "context"

// NoDictionaryEntry is the sentinel passed to Translate when the dictionary
// has no entry for the segment.
const NoDictionaryEntry = "Not in dictionary"

// TranslatorAdapter is the port for the LLM-backed text-processing service.
// All three operations block until the provider responds; callers that need
// pacing wrap calls with the queue's rate limiter.
type TranslatorAdapter interface {
	// Segment splits one paragraph of Chinese text into word/token-sized
	// units, in reading order.
	Segment(ctx context.Context, text string) ([]string, error)

	// Translate glosses a single segment into English. sentenceContext is
	// the full paragraph the segment came from; dictionaryEntry is a hint
	// from the dictionary or NoDictionaryEntry.
	Translate(ctx context.Context, segment, sentenceContext, dictionaryEntry string) (string, error)

	// FullTranslate renders the whole input text into fluent English.
	FullTranslate(ctx context.Context, text string) (string, error)
}
