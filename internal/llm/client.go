// Package llm wraps go-openai for the OpenAI-compatible chat endpoints
// (OpenRouter, DeepSeek) used for summaries and translations.
package llm

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/sashabaranov/go-openai"
)

var ErrNoChoices = errors.New("no choices in completion response")

// headerTransport adds fixed headers to every outgoing request.
type headerTransport struct {
	headers map[string]string
	base    http.RoundTripper
}

func (t *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	for k, v := range t.headers {
		req.Header.Set(k, v)
	}
	return t.base.RoundTrip(req)
}

// NewClient builds a chat client for baseURL. headers are sent with every call.
func NewClient(apiKey, baseURL string, headers map[string]string) *openai.Client {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = strings.TrimRight(baseURL, "/")
	}
	if len(headers) > 0 {
		cfg.HTTPClient = &http.Client{Transport: &headerTransport{headers: headers, base: http.DefaultTransport}}
	}
	return openai.NewClientWithConfig(cfg)
}

// Complete runs one chat completion and returns the trimmed content of the first choice.
func Complete(ctx context.Context, client *openai.Client, req openai.ChatCompletionRequest) (string, error) {
	resp, err := client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", ErrNoChoices
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
