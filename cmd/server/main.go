package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"jamesfarrell.me/kanglish-summarizer/internal/api"
	"jamesfarrell.me/kanglish-summarizer/internal/api/handlers"
	"jamesfarrell.me/kanglish-summarizer/internal/api/middleware"
	"jamesfarrell.me/kanglish-summarizer/internal/cache"
	"jamesfarrell.me/kanglish-summarizer/internal/config"
	"jamesfarrell.me/kanglish-summarizer/internal/embeddings"
	"jamesfarrell.me/kanglish-summarizer/internal/logging"
	"jamesfarrell.me/kanglish-summarizer/internal/pipeline"
	"jamesfarrell.me/kanglish-summarizer/internal/status"
	"jamesfarrell.me/kanglish-summarizer/internal/storage/db"
	"jamesfarrell.me/kanglish-summarizer/internal/storage/repository"
	"jamesfarrell.me/kanglish-summarizer/internal/summary"
	"jamesfarrell.me/kanglish-summarizer/internal/transcription"
	"jamesfarrell.me/kanglish-summarizer/internal/translation"
	"jamesfarrell.me/kanglish-summarizer/internal/youtube"
	"jamesfarrell.me/kanglish-summarizer/web"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file loaded", slog.Any("error", err))
	}

	cfg := config.Load()
	logging.Setup(os.Stderr, cfg.LogFormat, cfg.SlogLevel())

	if err := run(cfg); err != nil {
		slog.Error("server exited", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := os.MkdirAll(cfg.UploadDir, 0o755); err != nil {
		return err
	}
	proxies, err := middleware.ParseProxies(cfg.TrustedProxies)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	provider, err := transcription.New(cfg)
	if err != nil {
		return err
	}
	summarizer := summary.New(cfg.OpenRouterKey, cfg.OpenRouterBaseURL, cfg.SummaryModel, cfg.AppReferer)
	translator := translation.New(cfg.DeepSeekKey, cfg.DeepSeekBaseURL, cfg.TranslationModel, cfg.TranslationTimeout)

	resultCache := cache.New(ctx, cfg.RedisURL, cfg.CacheTTL)
	defer resultCache.Close()

	tmpl, err := web.Templates()
	if err != nil {
		return err
	}

	tracker := status.NewTracker()
	h := &handlers.Handler{
		UploadDir:      cfg.UploadDir,
		MaxUploadBytes: cfg.MaxUploadBytes,
		Tracker:        tracker,
		Downloader:     youtube.NewDownloader(cfg.YTDLPPath, nil),
		Templates:      tmpl,
		Static:         web.Static(),
	}
	opts := []pipeline.Option{pipeline.WithCache(resultCache)}

	if cfg.DatabaseURL != "" {
		database, err := openDatabase(ctx, cfg)
		if err != nil {
			return err
		}
		defer database.Close()

		jobs := repository.NewJobRepository(database)
		h.Jobs = jobs
		opts = append(opts, pipeline.WithRecorder(jobs))

		if cfg.OpenAIKey != "" && db.Driver(cfg.DatabaseURL) == db.DriverPostgres {
			embedder := embeddings.New(cfg.OpenAIKey, "")
			vectors := repository.NewEmbeddingRepository(database)
			h.Embedder, h.Vectors = embedder, vectors
			opts = append(opts, pipeline.WithSearch(embedder, vectors))
		}
	}

	pipe := pipeline.New(provider, summarizer, translator, tracker, opts...)
	h.Pipeline = pipe

	if cfg.ServiceAPIKey == "" {
		slog.Warn("SERVICE_API_KEY not set, history and search routes are unauthenticated")
	}
	router := api.NewRouter(h, api.Options{
		APIKey:         cfg.ServiceAPIKey,
		RateLimitRPS:   cfg.RateLimitRPS,
		RateLimitBurst: cfg.RateLimitBurst,
		TrustedProxies: proxies,
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("starting HTTP server",
			slog.String("addr", cfg.HTTPAddr),
			slog.String("upload_dir", cfg.UploadDir),
			slog.String("transcription", provider.Name()),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	err = srv.Shutdown(shutdownCtx)
	pipe.Shutdown()
	return err
}

func openDatabase(ctx context.Context, cfg *config.Config) (*sql.DB, error) {
	slog.Info("connecting to database", slog.String("url", config.MaskDatabaseURL(cfg.DatabaseURL)))
	database, err := db.NewConnection(ctx, db.Config{URL: cfg.DatabaseURL})
	if err != nil {
		return nil, err
	}
	withVectors := cfg.OpenAIKey != ""
	if err := db.Migrate(ctx, database, db.Driver(cfg.DatabaseURL), withVectors); err != nil {
		database.Close()
		return nil, err
	}
	return database, nil
}
