package models

import "time"

const (
	StatusPending   = "pending"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

type Job struct {
	ID            string    `json:"id"`
	InputType     string    `json:"inputType"`
	Source        string    `json:"source"`
	Filename      string    `json:"filename"`
	Status        string    `json:"status"`
	Transcription string    `json:"transcription,omitempty"`
	Summary       string    `json:"summary,omitempty"`
	Kannada       string    `json:"kannada,omitempty"`
	Kanglish      string    `json:"kanglish,omitempty"`
	Duration      string    `json:"duration,omitempty"`
	Error         string    `json:"error,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// JobResult is what a finished pipeline run writes back to its job.
type JobResult struct {
	Transcription string
	Summary       string
	Kannada       string
	Kanglish      string
	Duration      string
}

type SearchRequest struct {
	Query string `json:"query"`
	Limit int    `json:"limit"`
}

type SearchResponse struct {
	Results []SearchResult `json:"results"`
}

type SearchResult struct {
	JobID      string  `json:"jobId"`
	Filename   string  `json:"filename"`
	Summary    string  `json:"summary"`
	Similarity float64 `json:"similarity"`
}
