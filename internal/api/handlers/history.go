package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"jamesfarrell.me/kanglish-summarizer/internal/storage/models"
	"jamesfarrell.me/kanglish-summarizer/internal/storage/repository"
)

const defaultSearchLimit = 5

func (h *Handler) ListJobs(w http.ResponseWriter, r *http.Request) {
	if h.Jobs == nil {
		writeError(w, http.StatusServiceUnavailable, "Job history is not configured")
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	jobs, err := h.Jobs.List(r.Context(), limit)
	if err != nil {
		slog.Error("failed to list jobs", slog.Any("error", err))
		InternalError(w)
		return
	}
	writeJSON(w, http.StatusOK, jobs)
}

func (h *Handler) GetJob(w http.ResponseWriter, r *http.Request) {
	if h.Jobs == nil {
		writeError(w, http.StatusServiceUnavailable, "Job history is not configured")
		return
	}
	job, err := h.Jobs.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Job not found")
			return
		}
		slog.Error("failed to get job", slog.Any("error", err))
		InternalError(w)
		return
	}
	writeJSON(w, http.StatusOK, job)
}

// Search finds past jobs whose summaries are closest to the query.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	if h.Embedder == nil || h.Vectors == nil {
		writeError(w, http.StatusServiceUnavailable, "Search is not configured")
		return
	}

	var req models.SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	req.Query = strings.TrimSpace(req.Query)
	if req.Query == "" {
		writeError(w, http.StatusBadRequest, "Query is required")
		return
	}
	if req.Limit <= 0 {
		req.Limit = defaultSearchLimit
	}

	vec, err := h.Embedder.Embed(r.Context(), req.Query)
	if err != nil {
		slog.Error("failed to embed query", slog.Any("error", err))
		InternalError(w)
		return
	}
	results, err := h.Vectors.Search(r.Context(), vec, req.Limit)
	if err != nil {
		slog.Error("search failed", slog.Any("error", err))
		InternalError(w)
		return
	}
	writeJSON(w, http.StatusOK, models.SearchResponse{Results: results})
}
