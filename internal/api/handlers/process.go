package handlers

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"jamesfarrell.me/kanglish-summarizer/internal/media"
	"jamesfarrell.me/kanglish-summarizer/internal/youtube"
)

const (
	minTextLength   = 10
	multipartMemory = 32 << 20
)

type processResponse struct {
	Status string `json:"status"`
}

// Process accepts a file upload, a YouTube URL or pasted text and starts a job.
func (h *Handler) Process(w http.ResponseWriter, r *http.Request) {
	jobID := h.Tracker.Reset()

	if h.MaxUploadBytes > 0 {
		if r.ContentLength > h.MaxUploadBytes {
			writeError(w, http.StatusRequestEntityTooLarge, "File too large. Maximum size is 2GB.")
			return
		}
		r.Body = http.MaxBytesReader(w, r.Body, h.MaxUploadBytes)
	}
	if err := r.ParseMultipartForm(multipartMemory); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "File too large. Maximum size is 2GB.")
			return
		}
		writeError(w, http.StatusBadRequest, "Invalid form data")
		return
	}
	if r.MultipartForm != nil {
		defer r.MultipartForm.RemoveAll()
	}

	log := slog.With(slog.String("job_id", jobID))
	switch inputType := r.FormValue("inputType"); inputType {
	case "file":
		file, header, err := r.FormFile("file")
		if err != nil || header.Filename == "" {
			writeError(w, http.StatusBadRequest, "No file provided")
			return
		}
		defer file.Close()

		if err := media.ValidateFileFormat(header.Filename); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		path, err := h.saveUpload(file, header)
		if err != nil {
			log.Error("failed to save upload", slog.Any("error", err))
			InternalError(w)
			return
		}
		log.Info("file saved", slog.String("path", path))
		h.Pipeline.StartMedia(jobID, path)

	case "youtube":
		raw := strings.TrimSpace(r.FormValue("youtubeUrl"))
		if raw == "" {
			writeError(w, http.StatusBadRequest, "No YouTube URL provided")
			return
		}
		url, _, ok := youtube.ValidateURL(raw)
		if !ok {
			writeError(w, http.StatusBadRequest,
				"Invalid YouTube URL format. Only https://www.youtube.com/watch?v=VIDEO_ID is supported.")
			return
		}
		log.Info("processing YouTube URL", slog.String("url", url))
		path, err := h.Downloader.Download(r.Context(), url, h.UploadDir)
		if err != nil {
			log.Warn("YouTube download failed", slog.Any("error", err))
			writeError(w, http.StatusBadRequest, fmt.Sprintf("YouTube download failed: %v", err))
			return
		}
		h.Pipeline.StartMedia(jobID, path)

	case "text":
		text := strings.TrimSpace(r.FormValue("textInput"))
		if text == "" {
			writeError(w, http.StatusBadRequest, "No text provided")
			return
		}
		if utf8.RuneCountInString(text) < minTextLength {
			writeError(w, http.StatusBadRequest, "Text too short. Please provide at least 10 characters.")
			return
		}
		h.Pipeline.StartText(jobID, text)

	default:
		writeError(w, http.StatusBadRequest, "Invalid input type. Must be file, youtube, or text.")
		return
	}

	writeJSON(w, http.StatusOK, processResponse{Status: "success"})
}

func (h *Handler) saveUpload(file multipart.File, header *multipart.FileHeader) (string, error) {
	if err := os.MkdirAll(h.UploadDir, 0o755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}
	path := filepath.Join(h.UploadDir, media.SanitizeFilename(header.Filename))

	out, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", path, err)
	}
	if _, err := io.Copy(out, file); err != nil {
		out.Close()
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	return path, out.Close()
}
