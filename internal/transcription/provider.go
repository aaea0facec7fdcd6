// Package transcription turns media files into text through a hosted
// speech-to-text service.
package transcription

import (
	"context"
	"fmt"
	"time"

	"jamesfarrell.me/kanglish-summarizer/internal/config"
)

// UnknownDuration is shown when the provider did not report a length.
const UnknownDuration = "--:--"

// Provider transcribes a local audio or video file.
type Provider interface {
	Name() string
	Transcribe(ctx context.Context, path string) (*Result, error)
}

type Result struct {
	Text     string
	Duration time.Duration
}

// DurationLabel renders the duration as m:ss or h:mm:ss.
func (r *Result) DurationLabel() string {
	if r == nil || r.Duration <= 0 {
		return UnknownDuration
	}
	total := int(r.Duration.Round(time.Second) / time.Second)
	h, m, s := total/3600, (total%3600)/60, total%60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d", m, s)
}

// New builds the provider selected in cfg.
func New(cfg *config.Config) (Provider, error) {
	switch cfg.TranscriptionProvider {
	case config.ProviderAssemblyAI:
		return NewAssemblyAI(cfg.AssemblyAIKey, cfg.AssemblyAIBaseURL, cfg.AssemblyAIPollInterval), nil
	case config.ProviderWhisper:
		return NewWhisper(cfg.WhisperKey, cfg.WhisperBaseURL, cfg.WhisperModel), nil
	}
	return nil, fmt.Errorf("unknown transcription provider %q", cfg.TranscriptionProvider)
}
