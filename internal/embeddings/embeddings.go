package embeddings

import (
	"context"
	"errors"
	"fmt"

	"github.com/sashabaranov/go-openai"
)

// Dimensions is the vector size produced by text-embedding-ada-002.
const Dimensions = 1536

type Embedder struct {
	client *openai.Client
	model  openai.EmbeddingModel
}

func New(apiKey, baseURL string) *Embedder {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &Embedder{client: openai.NewClientWithConfig(cfg), model: openai.AdaEmbeddingV2}
}

// Embed converts text to an embedding vector using OpenAI's API
func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	resp, err := e.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Model: e.model,
		Input: []string{text},
	})
	if err != nil {
		return nil, fmt.Errorf("OpenAI embedding creation failed: %w", err)
	}
	if len(resp.Data) == 0 {
		return nil, errors.New("OpenAI embedding response had no data")
	}
	return resp.Data[0].Embedding, nil
}
