package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chatServer(t *testing.T, content []string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "http://localhost", r.Header.Get("HTTP-Referer"))
		assert.Equal(t, "Bearer key", r.Header.Get("Authorization"))

		resp := openai.ChatCompletionResponse{}
		for _, c := range content {
			resp.Choices = append(resp.Choices, openai.ChatCompletionChoice{
				Message: openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: c},
			})
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestComplete(t *testing.T) {
	srv := chatServer(t, []string{"  trimmed answer \n"})
	client := NewClient("key", srv.URL+"/", map[string]string{"HTTP-Referer": "http://localhost"})

	got, err := Complete(context.Background(), client, openai.ChatCompletionRequest{
		Model:    "m",
		Messages: []openai.ChatCompletionMessage{{Role: openai.ChatMessageRoleUser, Content: "hi"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "trimmed answer", got)
}

func TestCompleteNoChoices(t *testing.T) {
	srv := chatServer(t, nil)
	client := NewClient("key", srv.URL, map[string]string{"HTTP-Referer": "http://localhost"})

	_, err := Complete(context.Background(), client, openai.ChatCompletionRequest{Model: "m"})
	assert.ErrorIs(t, err, ErrNoChoices)
}
