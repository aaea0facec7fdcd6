package handlers

import (
	"bytes"
	"errors"
	"io/fs"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/gorilla/mux"

	"jamesfarrell.me/kanglish-summarizer/internal/media"
	"jamesfarrell.me/kanglish-summarizer/internal/pipeline"
	"jamesfarrell.me/kanglish-summarizer/internal/status"
	"jamesfarrell.me/kanglish-summarizer/internal/translation"
)

const (
	noSummary  = "No summary available."
	noKannada  = "ಕನ್ನಡ ಅನುವಾದ ಲಭ್ಯವಿಲ್ಲ."
	noKanglish = "Kanglish translation not available."
)

type summaries struct {
	English  string
	Kannada  string
	Kanglish string
}

// resultPage feeds result-page.html.
type resultPage struct {
	MediaType     string
	MediaName     string
	MediaSrc      string
	Transcription string
	Duration      string
	Summaries     summaries
}

func (h *Handler) Home(w http.ResponseWriter, r *http.Request) {
	h.render(w, "home-page.html", nil)
}

// Loading serves static/<page>.html.
func (h *Handler) Loading(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["page"] + ".html"
	if !fs.ValidPath(name) || strings.Contains(name, "/") {
		http.NotFound(w, r)
		return
	}
	data, err := fs.ReadFile(h.Static, name)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(data)
}

// Result renders the outcome of the current job. The filename, duration and
// type query parameters override what the tracker holds.
func (h *Handler) Result(w http.ResponseWriter, r *http.Request) {
	final := h.Tracker.FinalSnapshot()
	q := r.URL.Query()
	filename := firstNonEmpty(q.Get("filename"), final.Filename)
	duration := firstNonEmpty(q.Get("duration"), final.Duration, status.NoDuration)
	inputType := firstNonEmpty(q.Get("type"), final.InputType, pipeline.InputFile)

	page := resultPage{
		Transcription: h.Tracker.Text(status.StepTranscription),
		Duration:      duration,
		Summaries: summaries{
			English:  firstNonEmpty(h.Tracker.Text(status.StepSummary), noSummary),
			Kannada:  noKannada,
			Kanglish: noKanglish,
		},
	}

	switch {
	case inputType == pipeline.InputText:
		page.MediaType, page.MediaName = media.TypeText, "Text input"
	case filename != "":
		page.MediaType = media.MediaTypeFromExtension(filename)
		page.MediaName = filename
		page.MediaSrc = "/uploads/" + url.PathEscape(filename)
		if _, err := os.Stat(filepath.Join(h.UploadDir, filename)); err != nil {
			slog.Warn("result media missing", slog.String("file", filename))
		}
	default:
		page.MediaType, page.MediaName = media.TypeVideo, "Unknown file"
	}

	if s, err := h.Tracker.Snapshot(status.StepTranslation); err == nil {
		if tr, ok := s.Result.(translation.Translations); ok {
			page.Summaries.Kannada = firstNonEmpty(tr.Kannada, noKannada)
			page.Summaries.Kanglish = firstNonEmpty(tr.Kanglish, noKanglish)
		}
	}

	h.render(w, "result-page.html", page)
}

// Languages lists the output languages.
func (h *Handler) Languages(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, translation.SupportedLanguages())
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// render buffers the template so a failure can still produce a 500.
func (h *Handler) render(w http.ResponseWriter, name string, data any) {
	var buf bytes.Buffer
	if err := h.Templates.ExecuteTemplate(&buf, name, data); err != nil {
		slog.Error("template render failed", slog.String("template", name), slog.Any("error", err))
		InternalError(w)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}

// ServeUpload streams a file from the upload directory with range support.
func (h *Handler) ServeUpload(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["filename"]
	path, err := h.uploadPath(name)
	if err != nil {
		writeError(w, http.StatusNotFound, "File not found")
		return
	}

	f, err := os.Open(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			slog.Warn("failed to open upload", slog.String("path", path), slog.Any("error", err))
		}
		writeError(w, http.StatusNotFound, "File not found")
		return
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil || fi.IsDir() {
		writeError(w, http.StatusNotFound, "File not found")
		return
	}

	w.Header().Set("Content-Type", media.MIMEType(name))
	w.Header().Set("Accept-Ranges", "bytes")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	http.ServeContent(w, r, fi.Name(), fi.ModTime(), f)
}

var errOutsideUploads = errors.New("path escapes upload directory")

// uploadPath resolves name inside the upload directory.
func (h *Handler) uploadPath(name string) (string, error) {
	root, err := filepath.Abs(h.UploadDir)
	if err != nil {
		return "", err
	}
	path := filepath.Join(root, filepath.FromSlash(name))
	rel, err := filepath.Rel(root, path)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", errOutsideUploads
	}
	return path, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
