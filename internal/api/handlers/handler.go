// Package handlers implements the HTTP endpoints of the summarizer.
package handlers

import (
	"context"
	"encoding/json"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"

	"jamesfarrell.me/kanglish-summarizer/internal/status"
	"jamesfarrell.me/kanglish-summarizer/internal/storage/models"
)

// Starter launches background processing for the tracker's current job.
type Starter interface {
	StartMedia(jobID, path string)
	StartText(jobID, text string)
}

type Downloader interface {
	Download(ctx context.Context, url, dir string) (string, error)
}

// JobStore reads job history.
type JobStore interface {
	Get(ctx context.Context, id string) (*models.Job, error)
	List(ctx context.Context, limit int) ([]models.Job, error)
}

type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

type VectorSearcher interface {
	Search(ctx context.Context, embedding []float32, limit int) ([]models.SearchResult, error)
}

type Handler struct {
	UploadDir      string
	MaxUploadBytes int64

	Tracker    *status.Tracker
	Pipeline   Starter
	Downloader Downloader
	Templates  *template.Template
	Static     fs.FS

	// Optional. Endpoints that need them answer 503 when nil.
	Jobs     JobStore
	Embedder Embedder
	Vectors  VectorSearcher
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("failed to write response", slog.Any("error", err))
	}
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, errorResponse{Error: msg})
}

// InternalError is the response for unexpected failures.
func InternalError(w http.ResponseWriter) {
	writeError(w, http.StatusInternalServerError, "Internal server error occurred.")
}
