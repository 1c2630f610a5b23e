package translator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	openai "github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
	"github.com/pkoukk/tiktoken-go"

	"chinese-translation-service/internal/domain/ports/adapter"
	"chinese-translation-service/internal/infra/metrics"
)

// Compile-time assurance this adapter satisfies the port
var _ adapter.TranslatorAdapter = (*OpenAIAdapter)(nil)

const (
	segmentSystemPrompt = "You segment Chinese text into words. " +
		"Reply with each word on its own line, in reading order, and nothing else. " +
		"Punctuation marks are their own segments."

	translateSystemPrompt = "You select the best English definition for a single Chinese word based on context. " +
		"You are defining ONE WORD, not translating the whole sentence. " +
		"Use the dictionary entry to pick the most appropriate meaning for this context. " +
		"Reply with the definition only (1-5 words)."

	fullTranslateSystemPrompt = "Translate the full Chinese text into fluent English for reference. " +
		"Reply with the translation only."
)

// OpenAIAdapter implements the translator port against any OpenAI-compatible
// Chat Completions endpoint.
type OpenAIAdapter struct {
	client  openai.Client
	model   string
	encoder *tiktoken.Tiktoken // nil when the encoding is unavailable
}

func NewOpenAIAdapter(apiKey, model, baseURL string) (*OpenAIAdapter, error) {
	if apiKey == "" {
		return nil, errors.New("openai api key empty")
	}
	if model == "" {
		model = "gpt-4o-mini"
	}

	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}

	// Token accounting is best-effort; the adapter works without it.
	enc, _ := tiktoken.GetEncoding("cl100k_base")

	return &OpenAIAdapter{
		client:  openai.NewClient(opts...),
		model:   model,
		encoder: enc,
	}, nil
}

func (o *OpenAIAdapter) Segment(ctx context.Context, text string) ([]string, error) {
	out, err := o.chat(ctx, "segment", segmentSystemPrompt, text)
	if err != nil {
		return nil, err
	}
	var segments []string
	for _, line := range strings.Split(out, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			segments = append(segments, line)
		}
	}
	if len(segments) == 0 {
		return nil, errors.New("segmenter returned no segments")
	}
	return segments, nil
}

func (o *OpenAIAdapter) Translate(ctx context.Context, segment, sentenceContext, dictionaryEntry string) (string, error) {
	prompt := fmt.Sprintf("Word: %s\nSentence (for disambiguation only): %s\nDictionary entry: %s",
		segment, sentenceContext, dictionaryEntry)
	out, err := o.chat(ctx, "translate", translateSystemPrompt, prompt)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

func (o *OpenAIAdapter) FullTranslate(ctx context.Context, text string) (string, error) {
	out, err := o.chat(ctx, "full_translate", fullTranslateSystemPrompt, text)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

func (o *OpenAIAdapter) chat(ctx context.Context, op, system, user string) (string, error) {
	o.countTokens(op, system+user)

	start := time.Now()
	resp, err := o.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(o.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(system),
			openai.UserMessage(user),
		},
	})
	latency := int(time.Since(start) / time.Millisecond)

	if err != nil {
		metrics.ObserveTranslatorCall("openai", op, latency, false)
		return "", fmt.Errorf("openai %s: %w", op, err)
	}
	metrics.ObserveTranslatorCall("openai", op, latency, true)

	for _, c := range resp.Choices {
		if c.Message.Content != "" {
			return c.Message.Content, nil
		}
	}
	return "", fmt.Errorf("openai %s: no choice content", op)
}

func (o *OpenAIAdapter) countTokens(op, prompt string) {
	if o.encoder == nil {
		return
	}
	metrics.AddPromptTokens("openai", op, len(o.encoder.Encode(prompt, nil, nil)))
}
