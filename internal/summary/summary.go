// Package summary produces a short English summary of a transcript.
package summary

import (
	"context"
	"fmt"

	"github.com/sashabaranov/go-openai"

	"jamesfarrell.me/kanglish-summarizer/internal/llm"
)

const systemPrompt = "Summarize the user's text clearly and concisely in 3-5 sentences."

type Summarizer struct {
	client *openai.Client
	model  string
}

// New builds a summarizer against an OpenRouter-compatible endpoint.
// referer is sent as HTTP-Referer, which OpenRouter uses for app attribution.
func New(apiKey, baseURL, model, referer string) *Summarizer {
	headers := map[string]string{}
	if referer != "" {
		headers["HTTP-Referer"] = referer
	}
	if model == "" {
		model = "openrouter/auto"
	}
	return &Summarizer{client: llm.NewClient(apiKey, baseURL, headers), model: model}
}

// Summarize sends text as is. An empty transcript from silent media still
// goes to the model so the job completes with whatever it answers.
func (s *Summarizer) Summarize(ctx context.Context, text string) (string, error) {
	out, err := llm.Complete(ctx, s.client, openai.ChatCompletionRequest{
		Model: s.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: text},
		},
	})
	if err != nil {
		return "", fmt.Errorf("summary failed: %w", err)
	}
	return out, nil
}
