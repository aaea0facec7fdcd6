// Package translation renders English text as Kannada and as Kanglish,
// the Kannada-English mix spoken in Karnataka.
package translation

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/sashabaranov/go-openai"

	"jamesfarrell.me/kanglish-summarizer/internal/llm"
)

const (
	promptLimit   = 1000
	fallbackLimit = 100
	maxTokens     = 500
	temperature   = 0.3

	noContentKannada  = "ಅನುವಾದಿಸಲು ಯಾವುದೇ ವಿಷಯ ಲಭ್ಯವಿಲ್ಲ."
	noContentKanglish = "No content available for translation."

	kannadaPrompt = "Translate the following English text to Kannada. " +
		"Provide only the translation without any explanations:\n\nEnglish: %s\n\nKannada:"
	kanglishPrompt = "Convert the following English text to Kanglish " +
		"(mixed Kannada-English as commonly spoken in Karnataka). " +
		"Use English words written in Kannada script where appropriate and mix both languages naturally:" +
		"\n\nEnglish: %s\n\nKanglish:"

	kannadaFallback  = "ಸಾರಾಂಶ (ಪರೀಕ್ಷಾ ಆವೃತ್ತಿ): ಈ ವಿಷಯದ ಮುಖ್ಯ ಅಂಶಗಳನ್ನು ಶೀಘ್ರದಲ್ಲೇ ಸ್ವಯಂ ಅನುವಾದಿಸಲಾಗುತ್ತದೆ. ಮೂಲ ಪಠ್ಯ: %s..."
	kanglishFallback = "Summary (test version): Main points inda auto-translation soon ready aagutaade. Original text: %s..."
)

type Translations struct {
	Kannada  string `json:"kannada"`
	Kanglish string `json:"kanglish"`
}

type Translator struct {
	client  *openai.Client
	model   string
	timeout time.Duration
}

func New(apiKey, baseURL, model string, timeout time.Duration) *Translator {
	if model == "" {
		model = "deepseek-chat"
	}
	if timeout <= 0 {
		timeout = 45 * time.Second
	}
	return &Translator{client: llm.NewClient(apiKey, baseURL, nil), model: model, timeout: timeout}
}

// Translate never fails: when either call errors, both outputs are replaced
// by fallback text quoting the start of the input.
func (t *Translator) Translate(ctx context.Context, text string) Translations {
	if strings.TrimSpace(text) == "" {
		return Translations{Kannada: noContentKannada, Kanglish: noContentKanglish}
	}

	input := truncateRunes(text, promptLimit)
	var wg sync.WaitGroup
	var out Translations
	var knErr, kgErr error
	wg.Add(2)
	go func() {
		defer wg.Done()
		out.Kannada, knErr = t.complete(ctx, fmt.Sprintf(kannadaPrompt, input), "kannada:")
	}()
	go func() {
		defer wg.Done()
		out.Kanglish, kgErr = t.complete(ctx, fmt.Sprintf(kanglishPrompt, input), "kanglish:")
	}()
	wg.Wait()

	if knErr != nil || kgErr != nil {
		slog.Warn("AI translation failed, using fallback",
			slog.Any("kannada_error", knErr), slog.Any("kanglish_error", kgErr))
		return Fallback(text)
	}

	for lang, tr := range map[string]string{"kannada": out.Kannada, "kanglish": out.Kanglish} {
		if v := ValidateTranslation(tr, text); !v.Valid {
			slog.Warn("translation looks unusual", slog.String("language", lang), slog.String("reason", v.Reason))
		}
	}
	return out
}

func (t *Translator) complete(ctx context.Context, prompt, label string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	out, err := llm.Complete(ctx, t.client, openai.ChatCompletionRequest{
		Model:       t.model,
		Messages:    []openai.ChatCompletionMessage{{Role: openai.ChatMessageRoleUser, Content: prompt}},
		MaxTokens:   maxTokens,
		Temperature: temperature,
	})
	if err != nil {
		return "", fmt.Errorf("translation service error: %w", err)
	}
	return stripLabel(out, label), nil
}

// Fallback returns the placeholder pair used when the translation service is down.
func Fallback(text string) Translations {
	head := truncateRunes(text, fallbackLimit)
	return Translations{
		Kannada:  fmt.Sprintf(kannadaFallback, head),
		Kanglish: fmt.Sprintf(kanglishFallback, head),
	}
}

func stripLabel(s, label string) string {
	if len(s) >= len(label) && strings.EqualFold(s[:len(label)], label) {
		return strings.TrimSpace(s[len(label):])
	}
	return s
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
