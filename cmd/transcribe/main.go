// Command transcribe runs one file, YouTube URL or text through the
// summarizer pipeline and prints the results.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/joho/godotenv"
	"github.com/schollz/progressbar/v3"

	"jamesfarrell.me/kanglish-summarizer/internal/config"
	"jamesfarrell.me/kanglish-summarizer/internal/logging"
	"jamesfarrell.me/kanglish-summarizer/internal/pipeline"
	"jamesfarrell.me/kanglish-summarizer/internal/status"
	"jamesfarrell.me/kanglish-summarizer/internal/summary"
	"jamesfarrell.me/kanglish-summarizer/internal/transcription"
	"jamesfarrell.me/kanglish-summarizer/internal/translation"
	"jamesfarrell.me/kanglish-summarizer/internal/youtube"
)

func main() {
	textMode := flag.Bool("text", false, "treat the argument as text to summarize")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: transcribe [-text] <file|youtube-url|text>\n")
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	if err := godotenv.Load(); err != nil {
		fmt.Fprintf(os.Stderr, "Error loading .env file: %v\n", err)
	}
	cfg := config.Load()
	// Keep the terminal for the progress bar.
	logging.Setup(os.Stderr, cfg.LogFormat, slogLevel(cfg))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, cfg, strings.Join(flag.Args(), " "), *textMode); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, arg string, textMode bool) error {
	tracker := status.NewTracker()
	bar := newBar()
	hook := func(step status.Step, msg string) {
		bar.Describe(fmt.Sprintf("[cyan]%s[reset]", msg))
		_ = bar.Add(1)
	}

	var provider transcription.Provider
	if !textMode {
		if err := cfg.Validate(); err != nil {
			return err
		}
		p, err := transcription.New(cfg)
		if err != nil {
			return err
		}
		provider = p
	}

	pipe := pipeline.New(provider,
		summary.New(cfg.OpenRouterKey, cfg.OpenRouterBaseURL, cfg.SummaryModel, cfg.AppReferer),
		translation.New(cfg.DeepSeekKey, cfg.DeepSeekBaseURL, cfg.TranslationModel, cfg.TranslationTimeout),
		tracker,
		pipeline.WithStageHook(hook),
	)
	job := tracker.Reset()

	var err error
	switch {
	case textMode:
		err = pipe.RunText(ctx, job, arg)
	default:
		path := arg
		if _, _, ok := youtube.ValidateURL(arg); ok {
			if err := os.MkdirAll(cfg.UploadDir, 0o755); err != nil {
				return err
			}
			bar.Describe("[cyan]Downloading video...[reset]")
			path, err = youtube.NewDownloader(cfg.YTDLPPath, nil).Download(ctx, arg, cfg.UploadDir)
			if err != nil {
				return fmt.Errorf("YouTube download failed: %w", err)
			}
		}
		err = pipe.RunMedia(ctx, job, path)
	}
	_ = bar.Finish()
	fmt.Println()
	if err != nil {
		return err
	}

	final := tracker.FinalSnapshot()
	tr, _ := stage(tracker, status.StepTranslation).Result.(translation.Translations)
	fmt.Printf("Duration: %s\n\n", final.Duration)
	fmt.Printf("== Transcription ==\n%s\n\n", tracker.Text(status.StepTranscription))
	fmt.Printf("== Summary ==\n%s\n\n", tracker.Text(status.StepSummary))
	fmt.Printf("== Kannada ==\n%s\n\n", tr.Kannada)
	fmt.Printf("== Kanglish ==\n%s\n", tr.Kanglish)
	return nil
}

func stage(t *status.Tracker, step status.Step) status.Stage {
	s, _ := t.Snapshot(step)
	return s
}

func newBar() *progressbar.ProgressBar {
	return progressbar.NewOptions(-1,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetDescription("Starting..."),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetRenderBlankState(true),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSpinnerType(14),
	)
}

// slogLevel quiets info logs unless asked for, so they do not fight the bar.
func slogLevel(cfg *config.Config) slog.Level {
	if lvl := cfg.SlogLevel(); lvl != slog.LevelInfo {
		return lvl
	}
	return slog.LevelWarn
}
