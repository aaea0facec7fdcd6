package transcription

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
)

const (
	assemblySpeechModel  = "best"
	assemblyLanguageCode = "en"
	defaultMaxWait       = 2 * time.Hour
)

var errTranscriptPending = errors.New("transcript not ready")

// AssemblyAI uploads the file, requests a transcript and polls until it is done.
type AssemblyAI struct {
	apiKey       string
	baseURL      string
	pollInterval time.Duration
	maxWait      time.Duration
	http         *http.Client
}

func NewAssemblyAI(apiKey, baseURL string, pollInterval time.Duration) *AssemblyAI {
	if pollInterval <= 0 {
		pollInterval = 3 * time.Second
	}
	return &AssemblyAI{
		apiKey:       apiKey,
		baseURL:      strings.TrimRight(baseURL, "/"),
		pollInterval: pollInterval,
		maxWait:      defaultMaxWait,
		http:         &http.Client{Timeout: 10 * time.Minute},
	}
}

func (a *AssemblyAI) Name() string { return "assemblyai" }

type assemblyTranscript struct {
	ID            string   `json:"id"`
	Status        string   `json:"status"`
	Text          string   `json:"text"`
	Error         string   `json:"error"`
	AudioDuration *float64 `json:"audio_duration"`
}

func (a *AssemblyAI) Transcribe(ctx context.Context, path string) (*Result, error) {
	log := slog.With(slog.String("provider", a.Name()), slog.String("path", path))
	log.Info("starting transcription")

	uploadURL, err := a.upload(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("transcription failed: %w", err)
	}

	id, err := a.createTranscript(ctx, uploadURL)
	if err != nil {
		return nil, fmt.Errorf("transcription failed: %w", err)
	}
	log.Info("transcript queued", slog.String("transcript_id", id))

	t, err := a.waitForTranscript(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("transcription failed: %w", err)
	}

	res := &Result{Text: t.Text}
	if t.AudioDuration != nil {
		res.Duration = time.Duration(*t.AudioDuration * float64(time.Second))
	}
	log.Info("transcription completed", slog.Int("chars", len(res.Text)))
	return res, nil
}

func (a *AssemblyAI) upload(ctx context.Context, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("error opening file: %w", err)
	}
	defer f.Close()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+"/v2/upload", f)
	if err != nil {
		return "", fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/octet-stream")

	var out struct {
		UploadURL string `json:"upload_url"`
	}
	if err := a.do(req, &out); err != nil {
		return "", fmt.Errorf("upload: %w", err)
	}
	if out.UploadURL == "" {
		return "", errors.New("upload: empty upload_url in response")
	}
	return out.UploadURL, nil
}

func (a *AssemblyAI) createTranscript(ctx context.Context, audioURL string) (string, error) {
	body, err := json.Marshal(map[string]string{
		"audio_url":     audioURL,
		"speech_model":  assemblySpeechModel,
		"language_code": assemblyLanguageCode,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+"/v2/transcript", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	var t assemblyTranscript
	if err := a.do(req, &t); err != nil {
		return "", fmt.Errorf("create transcript: %w", err)
	}
	if t.ID == "" {
		return "", errors.New("create transcript: empty id in response")
	}
	return t.ID, nil
}

func (a *AssemblyAI) waitForTranscript(ctx context.Context, id string) (*assemblyTranscript, error) {
	poll := func() (*assemblyTranscript, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.baseURL+"/v2/transcript/"+id, nil)
		if err != nil {
			return nil, backoff.Permanent(err)
		}

		var t assemblyTranscript
		if err := a.do(req, &t); err != nil {
			var se *statusError
			if errors.As(err, &se) && se.code < http.StatusInternalServerError {
				return nil, backoff.Permanent(err)
			}
			return nil, err
		}

		switch t.Status {
		case "completed":
			return &t, nil
		case "error":
			return nil, backoff.Permanent(fmt.Errorf("assemblyai: %s", t.Error))
		}
		return nil, errTranscriptPending
	}

	return backoff.Retry(ctx, poll,
		backoff.WithBackOff(backoff.NewConstantBackOff(a.pollInterval)),
		backoff.WithMaxElapsedTime(a.maxWait),
	)
}

type statusError struct {
	code int
	body string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("API request failed with status %d: %s", e.code, e.body)
}

func (a *AssemblyAI) do(req *http.Request, out any) error {
	req.Header.Set("Authorization", a.apiKey)

	resp, err := a.http.Do(req)
	if err != nil {
		return fmt.Errorf("error sending request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("error reading response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return &statusError{code: resp.StatusCode, body: string(respBody)}
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("error decoding response: %w", err)
	}
	return nil
}
