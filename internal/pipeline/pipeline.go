// Package pipeline runs a job through transcription, summary and
// translation, publishing progress to a status.Tracker.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"jamesfarrell.me/kanglish-summarizer/internal/cache"
	"jamesfarrell.me/kanglish-summarizer/internal/status"
	"jamesfarrell.me/kanglish-summarizer/internal/storage/models"
	"jamesfarrell.me/kanglish-summarizer/internal/transcription"
	"jamesfarrell.me/kanglish-summarizer/internal/translation"
)

const (
	InputFile = "file"
	InputText = "text"
)

type Transcriber interface {
	Transcribe(ctx context.Context, path string) (*transcription.Result, error)
}

type Summarizer interface {
	Summarize(ctx context.Context, text string) (string, error)
}

type Translator interface {
	Translate(ctx context.Context, text string) translation.Translations
}

// Recorder persists job history.
type Recorder interface {
	Create(ctx context.Context, job *models.Job) error
	Complete(ctx context.Context, id string, res models.JobResult) error
	Fail(ctx context.Context, id string, msg string) error
}

type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

type VectorStore interface {
	Save(ctx context.Context, jobID string, embedding []float32) error
}

type Pipeline struct {
	transcriber Transcriber
	summarizer  Summarizer
	translator  Translator
	tracker     *status.Tracker

	cache    *cache.Cache
	recorder Recorder
	embedder Embedder
	vectors  VectorStore
	onStage  func(step status.Step, msg string)

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

type Option func(*Pipeline)

func WithCache(c *cache.Cache) Option {
	return func(p *Pipeline) { p.cache = c }
}

func WithRecorder(r Recorder) Option {
	return func(p *Pipeline) { p.recorder = r }
}

// WithSearch embeds every finished summary into vectors.
func WithSearch(e Embedder, vectors VectorStore) Option {
	return func(p *Pipeline) { p.embedder, p.vectors = e, vectors }
}

// WithStageHook calls fn whenever a step starts.
func WithStageHook(fn func(step status.Step, msg string)) Option {
	return func(p *Pipeline) { p.onStage = fn }
}

func New(tr Transcriber, s Summarizer, t Translator, tracker *status.Tracker, opts ...Option) *Pipeline {
	p := &Pipeline{transcriber: tr, summarizer: s, translator: t, tracker: tracker}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// StartMedia processes path in the background, cancelling any earlier job.
func (p *Pipeline) StartMedia(jobID, path string) {
	p.start(func(ctx context.Context) { _ = p.RunMedia(ctx, jobID, path) })
}

// StartText processes text in the background, cancelling any earlier job.
func (p *Pipeline) StartText(jobID, text string) {
	p.start(func(ctx context.Context) { _ = p.RunText(ctx, jobID, text) })
}

func (p *Pipeline) start(run func(ctx context.Context)) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.cancel != nil {
		p.cancel()
	}
	ctx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		defer cancel()
		run(ctx)
	}()
}

// Shutdown cancels the running job and waits for it to return.
func (p *Pipeline) Shutdown() {
	p.mu.Lock()
	if p.cancel != nil {
		p.cancel()
	}
	p.mu.Unlock()
	p.wg.Wait()
}

// Wait blocks until every background job has returned.
func (p *Pipeline) Wait() {
	p.wg.Wait()
}

// RunMedia transcribes the file at path, then summarizes and translates it.
func (p *Pipeline) RunMedia(ctx context.Context, jobID, path string) error {
	filename := filepath.Base(path)
	log := slog.With(slog.String("job_id", jobID), slog.String("input_type", InputFile), slog.String("file", filename))
	log.Info("processing media file")
	p.record(ctx, &models.Job{ID: jobID, InputType: InputFile, Source: path, Filename: filename})

	p.progress(jobID, status.StepTranscription, "Transcribing media...")
	res, err := p.transcriber.Transcribe(ctx, path)
	if err != nil {
		return p.fail(ctx, log, jobID, err, filename, InputFile)
	}
	p.tracker.Complete(jobID, status.StepTranscription, res.Text)

	return p.finish(ctx, log, jobID, res.Text, filename, res.DurationLabel(), InputFile)
}

// RunText uses text as the transcription and continues from the summary step.
func (p *Pipeline) RunText(ctx context.Context, jobID, text string) error {
	log := slog.With(slog.String("job_id", jobID), slog.String("input_type", InputText))
	log.Info("processing text input", slog.Int("chars", len(text)))
	p.record(ctx, &models.Job{ID: jobID, InputType: InputText, Source: preview(text)})

	p.tracker.Complete(jobID, status.StepTranscription, text)
	return p.finish(ctx, log, jobID, text, "", status.NoDuration, InputText)
}

func (p *Pipeline) finish(ctx context.Context, log *slog.Logger, jobID, text, filename, duration, inputType string) error {
	p.progress(jobID, status.StepSummary, "Creating summary...")
	summary, err := p.summarize(ctx, text)
	if err != nil {
		return p.fail(ctx, log, jobID, err, filename, inputType)
	}
	p.tracker.Complete(jobID, status.StepSummary, summary)

	p.progress(jobID, status.StepTranslation, "Creating translations...")
	tr := p.translate(ctx, summary)
	if err := ctx.Err(); err != nil {
		return p.fail(ctx, log, jobID, err, filename, inputType)
	}
	p.tracker.Complete(jobID, status.StepTranslation, tr)

	p.tracker.Finish(jobID, filename, duration, inputType)
	log.Info("processing completed")

	if p.recorder != nil {
		err := p.recorder.Complete(ctx, jobID, models.JobResult{
			Transcription: text,
			Summary:       summary,
			Kannada:       tr.Kannada,
			Kanglish:      tr.Kanglish,
			Duration:      duration,
		})
		if err != nil {
			log.Warn("failed to record job result", slog.Any("error", err))
		}
	}
	p.index(ctx, log, jobID, summary)
	return nil
}

func (p *Pipeline) progress(jobID string, step status.Step, msg string) {
	if p.tracker.Progress(jobID, step, msg) && p.onStage != nil {
		p.onStage(step, msg)
	}
}

func (p *Pipeline) summarize(ctx context.Context, text string) (string, error) {
	key := cache.Key("summary", text)
	if s, ok := cache.LoadJSON[string](ctx, p.cache, key); ok {
		return s, nil
	}
	s, err := p.summarizer.Summarize(ctx, text)
	if err != nil {
		return "", err
	}
	cache.StoreJSON(ctx, p.cache, key, s)
	return s, nil
}

func (p *Pipeline) translate(ctx context.Context, text string) translation.Translations {
	key := cache.Key("translation", text)
	if tr, ok := cache.LoadJSON[translation.Translations](ctx, p.cache, key); ok {
		return tr
	}
	tr := p.translator.Translate(ctx, text)
	// Fallback text is not worth remembering.
	if tr != translation.Fallback(text) {
		cache.StoreJSON(ctx, p.cache, key, tr)
	}
	return tr
}

func (p *Pipeline) index(ctx context.Context, log *slog.Logger, jobID, summary string) {
	if p.embedder == nil || p.vectors == nil || summary == "" {
		return
	}
	vec, err := p.embedder.Embed(ctx, summary)
	if err != nil {
		log.Warn("failed to embed summary", slog.Any("error", err))
		return
	}
	if err := p.vectors.Save(ctx, jobID, vec); err != nil {
		log.Warn("failed to store embedding", slog.Any("error", err))
	}
}

func (p *Pipeline) record(ctx context.Context, job *models.Job) {
	if p.recorder == nil {
		return
	}
	if err := p.recorder.Create(ctx, job); err != nil {
		slog.Warn("failed to record job", slog.String("job_id", job.ID), slog.Any("error", err))
	}
}

func (p *Pipeline) fail(ctx context.Context, log *slog.Logger, jobID string, err error, filename, inputType string) error {
	log.Error("processing failed", slog.Any("error", err))
	p.tracker.Fail(jobID, err, filename, inputType)
	if p.recorder != nil {
		// The job context may already be cancelled.
		rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if rerr := p.recorder.Fail(rctx, jobID, err.Error()); rerr != nil {
			log.Warn("failed to record job failure", slog.Any("error", rerr))
		}
	}
	return fmt.Errorf("job %s: %w", jobID, err)
}

func preview(text string) string {
	r := []rune(text)
	if len(r) > 200 {
		return string(r[:200])
	}
	return text
}
