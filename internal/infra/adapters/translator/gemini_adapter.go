package translator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"

	"chinese-translation-service/internal/domain/ports/adapter"
	"chinese-translation-service/internal/infra/metrics"
)

var _ adapter.TranslatorAdapter = (*GeminiAdapter)(nil)

type GeminiAdapter struct {
	client *genai.Client
	model  string
}

// NewGeminiAdapter creates a Gemini-backed translator using the official SDK.
func NewGeminiAdapter(ctx context.Context, apiKey, baseURL, model string) (*GeminiAdapter, error) {
	if apiKey == "" {
		return nil, errors.New("gemini: empty api key")
	}
	if model == "" {
		model = "gemini-2.0-flash"
	}
	c, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{
			BaseURL: baseURL,
		},
	})
	if err != nil {
		return nil, err
	}
	return &GeminiAdapter{client: c, model: model}, nil
}

func (g *GeminiAdapter) Segment(ctx context.Context, text string) ([]string, error) {
	out, err := g.generate(ctx, "segment", segmentSystemPrompt+"\n\n"+text)
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

func (g *GeminiAdapter) Translate(ctx context.Context, segment, sentenceContext, dictionaryEntry string) (string, error) {
	prompt := fmt.Sprintf("%s\n\nWord: %s\nSentence (for disambiguation only): %s\nDictionary entry: %s",
		translateSystemPrompt, segment, sentenceContext, dictionaryEntry)
	out, err := g.generate(ctx, "translate", prompt)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

func (g *GeminiAdapter) FullTranslate(ctx context.Context, text string) (string, error) {
	out, err := g.generate(ctx, "full_translate", fullTranslateSystemPrompt+"\n\n"+text)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

func (g *GeminiAdapter) generate(ctx context.Context, op, prompt string) (string, error) {
	start := time.Now()
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), nil)
	latency := int(time.Since(start) / time.Millisecond)

	if err != nil {
		metrics.ObserveTranslatorCall("gemini", op, latency, false)
		return "", fmt.Errorf("gemini %s: %w", op, err)
	}
	metrics.ObserveTranslatorCall("gemini", op, latency, true)

	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("gemini %s: empty response", op)
	}
	return text, nil
}
