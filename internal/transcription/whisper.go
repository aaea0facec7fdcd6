package transcription

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sashabaranov/go-openai"
)

// Whisper talks to any OpenAI-compatible /audio/transcriptions endpoint
// (Lemonfox, OpenAI) and asks for VTT so the media length can be recovered.
type Whisper struct {
	client *openai.Client
	model  string
}

func NewWhisper(apiKey, baseURL, model string) *Whisper {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	if model == "" {
		model = openai.Whisper1
	}
	return &Whisper{client: openai.NewClientWithConfig(cfg), model: model}
}

func (w *Whisper) Name() string { return "whisper" }

func (w *Whisper) Transcribe(ctx context.Context, path string) (*Result, error) {
	slog.Info("starting transcription", slog.String("provider", w.Name()), slog.String("path", path))

	resp, err := w.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    w.model,
		FilePath: path,
		Language: "en",
		Format:   openai.AudioResponseFormatVTT,
	})
	if err != nil {
		return nil, fmt.Errorf("transcription failed: %w", err)
	}

	cues, err := ParseVTT(resp.Text)
	if err != nil {
		return nil, fmt.Errorf("transcription failed: %w", err)
	}

	res := &Result{Text: PlainText(cues)}
	if len(cues) > 0 {
		res.Duration = cues[len(cues)-1].End
	}
	return res, nil
}
