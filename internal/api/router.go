package api

import (
	"net/http"
	"net/netip"

	"github.com/gorilla/mux"

	"jamesfarrell.me/kanglish-summarizer/internal/api/handlers"
	"jamesfarrell.me/kanglish-summarizer/internal/api/middleware"
)

type Options struct {
	// APIKey protects the history and search routes. Empty disables the check.
	APIKey         string
	RateLimitRPS   float64
	RateLimitBurst int
	// TrustedProxies may set the client address through X-Forwarded-For.
	TrustedProxies []netip.Prefix
}

func NewRouter(h *handlers.Handler, opts Options) http.Handler {
	r := mux.NewRouter()
	r.Use(middleware.Recover, middleware.Logging)

	// Public routes
	r.HandleFunc("/", h.Home).Methods(http.MethodGet)
	r.HandleFunc("/health", h.Health).Methods(http.MethodGet)
	r.HandleFunc("/languages", h.Languages).Methods(http.MethodGet)
	r.HandleFunc("/uploads/{filename:.+}", h.ServeUpload).Methods(http.MethodGet, http.MethodHead)
	r.HandleFunc("/status/{step}", h.Status).Methods(http.MethodGet)
	r.HandleFunc("/loading/{page}", h.Loading).Methods(http.MethodGet)
	r.HandleFunc("/result", h.Result).Methods(http.MethodGet)

	limiter := middleware.NewRateLimiter(opts.RateLimitRPS, opts.RateLimitBurst, opts.TrustedProxies...)
	r.Handle("/process", limiter.Limit(http.HandlerFunc(h.Process))).Methods(http.MethodPost)

	// Protected routes
	protected := r.PathPrefix("").Subrouter()
	if opts.APIKey != "" {
		protected.Use(middleware.Auth(opts.APIKey))
	}
	protected.HandleFunc("/jobs", h.ListJobs).Methods(http.MethodGet)
	protected.HandleFunc("/jobs/{id}", h.GetJob).Methods(http.MethodGet)
	protected.HandleFunc("/search", h.Search).Methods(http.MethodPost)

	r.NotFoundHandler = middleware.Logging(http.HandlerFunc(notFound))
	return r
}

func notFound(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusNotFound)
	_, _ = w.Write([]byte(`{"error":"Not found"}`))
}
