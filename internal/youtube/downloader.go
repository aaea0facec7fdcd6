package youtube

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"

	"jamesfarrell.me/kanglish-summarizer/internal/media"
)

const (
	// Merged MP4 capped at 720p; the file is kept as video so the result page can play it.
	downloadFormat = "bestvideo[ext=mp4][height<=720]+bestaudio[ext=m4a]/best[ext=mp4][height<=720]/bestvideo+bestaudio/best"
	defaultTitle   = "YouTube_Video"
)

// Runner executes a command and returns its standard output.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct{}

func (ExecRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("%s: %w\nstderr: %s", name, err, stderr.String())
	}
	return stdout.Bytes(), nil
}

// VideoInfo is the subset of yt-dlp metadata used to name the download.
type VideoInfo struct {
	Title    string  `json:"title"`
	Duration float64 `json:"duration"`
}

type Downloader struct {
	binary string
	runner Runner
}

func NewDownloader(binary string, runner Runner) *Downloader {
	if binary == "" {
		binary = "yt-dlp"
	}
	if runner == nil {
		runner = ExecRunner{}
	}
	return &Downloader{binary: binary, runner: runner}
}

// Download fetches url into dir as an MP4 and returns the file path.
func (d *Downloader) Download(ctx context.Context, url, dir string) (string, error) {
	normalized, videoID, ok := ValidateURL(url)
	if !ok {
		return "", ErrInvalidURL
	}
	log := slog.With(slog.String("video_id", videoID))

	title := defaultTitle
	info, err := d.Info(ctx, normalized)
	if err != nil {
		log.Warn("could not extract video info", slog.Any("error", err))
	} else {
		if info.Title != "" {
			title = media.SanitizeFilename(info.Title)
		}
		log.Info("video info", slog.String("title", info.Title), slog.Float64("duration_seconds", info.Duration))
	}

	output := filepath.Join(dir, title+".%(ext)s")
	log.Info("downloading mp4", slog.String("output", output))
	// --ignore-errors still exits non-zero when a fragment or merge step
	// fails, so the file lookup decides the outcome.
	_, runErr := d.runner.Run(ctx, d.binary, downloadArgs(output, normalized)...)
	if runErr != nil {
		if ctx.Err() != nil {
			return "", fmt.Errorf("yt-dlp download: %w", ctx.Err())
		}
		log.Warn("yt-dlp exited with error", slog.Any("error", runErr))
	}

	path, err := findDownload(dir, title)
	if err != nil {
		if runErr != nil {
			return "", fmt.Errorf("yt-dlp download: %w", runErr)
		}
		return "", err
	}
	if fi, err := os.Stat(path); err == nil {
		log.Info("downloaded mp4", slog.String("path", path), slog.Int64("bytes", fi.Size()))
	}
	return path, nil
}

// Info extracts metadata without downloading.
func (d *Downloader) Info(ctx context.Context, url string) (*VideoInfo, error) {
	out, err := d.runner.Run(ctx, d.binary,
		"--dump-single-json",
		"--no-warnings",
		"--quiet",
		"--no-playlist",
		url)
	if err != nil {
		return nil, err
	}

	var info VideoInfo
	if err := json.Unmarshal(out, &info); err != nil {
		return nil, fmt.Errorf("parse video info: %w", err)
	}
	return &info, nil
}

func downloadArgs(output, url string) []string {
	return []string{
		"--format", downloadFormat,
		"--merge-output-format", "mp4",
		"--output", output,
		"--no-playlist",
		"--no-check-certificates",
		"--no-write-info-json",
		"--no-write-subs",
		"--no-write-auto-subs",
		"--no-write-thumbnail",
		"--ignore-errors",
		"--continue",
		"--retries", "3",
		"--fragment-retries", "3",
		url,
	}
}

// findDownload looks for the titled MP4 first and falls back to the most
// recently modified MP4 in dir.
func findDownload(dir, title string) (string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, title+"*.mp4"))
	if err == nil && len(matches) > 0 {
		return matches[0], nil
	}

	all, err := filepath.Glob(filepath.Join(dir, "*.mp4"))
	if err != nil {
		return "", fmt.Errorf("list downloads: %w", err)
	}

	var newest string
	var newestMod int64
	for _, p := range all {
		fi, err := os.Stat(p)
		if err != nil {
			continue
		}
		if mod := fi.ModTime().UnixNano(); newest == "" || mod > newestMod {
			newest, newestMod = p, mod
		}
	}
	if newest == "" {
		return "", errors.New("no MP4 file found after download")
	}
	return newest, nil
}
