package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"jamesfarrell.me/kanglish-summarizer/internal/storage/models"
)

var ErrNotFound = errors.New("job not found")

// Fixed width so that timestamps stored as TEXT sort chronologically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

type JobRepository struct {
	db  *sql.DB
	now func() time.Time
}

func NewJobRepository(db *sql.DB) *JobRepository {
	return &JobRepository{db: db, now: func() time.Time { return time.Now().UTC() }}
}

// Create inserts a pending job, assigning an ID when the job has none.
func (r *JobRepository) Create(ctx context.Context, job *models.Job) error {
	if job.ID == "" {
		job.ID = uuid.NewString()
	}
	now := r.now()
	job.Status = models.StatusPending
	job.CreatedAt, job.UpdatedAt = now, now

	const query = `
		INSERT INTO jobs (id, input_type, source, filename, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.db.ExecContext(ctx, query,
		job.ID,
		job.InputType,
		job.Source,
		job.Filename,
		job.Status,
		now.Format(timeLayout),
		now.Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("failed to insert job: %w", err)
	}
	return nil
}

func (r *JobRepository) Complete(ctx context.Context, id string, res models.JobResult) error {
	const query = `
		UPDATE jobs
		SET status = $1, transcription = $2, summary = $3, kannada = $4, kanglish = $5,
			duration = $6, error = '', updated_at = $7
		WHERE id = $8
	`
	return r.update(ctx, id, query,
		models.StatusCompleted,
		res.Transcription,
		res.Summary,
		res.Kannada,
		res.Kanglish,
		res.Duration,
		r.now().Format(timeLayout),
		id,
	)
}

func (r *JobRepository) Fail(ctx context.Context, id string, msg string) error {
	const query = `
		UPDATE jobs
		SET status = $1, error = $2, updated_at = $3
		WHERE id = $4
	`
	return r.update(ctx, id, query, models.StatusFailed, msg, r.now().Format(timeLayout), id)
}

func (r *JobRepository) update(ctx context.Context, id, query string, args ...any) error {
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to execute update: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

const selectJob = `
	SELECT id, input_type, source, filename, status, transcription, summary,
		   kannada, kanglish, duration, error, created_at, updated_at
	FROM jobs
`

func (r *JobRepository) Get(ctx context.Context, id string) (*models.Job, error) {
	job, err := scanJob(r.db.QueryRowContext(ctx, selectJob+` WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return job, nil
}

// List returns the most recent jobs first.
func (r *JobRepository) List(ctx context.Context, limit int) ([]models.Job, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	rows, err := r.db.QueryContext(ctx, selectJob+` ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}
	defer rows.Close()

	jobs := []models.Job{}
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, *job)
	}
	return jobs, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanJob(s scanner) (*models.Job, error) {
	var (
		job                  models.Job
		createdAt, updatedAt string
	)
	err := s.Scan(
		&job.ID,
		&job.InputType,
		&job.Source,
		&job.Filename,
		&job.Status,
		&job.Transcription,
		&job.Summary,
		&job.Kannada,
		&job.Kanglish,
		&job.Duration,
		&job.Error,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}
	if job.CreatedAt, err = time.Parse(timeLayout, createdAt); err != nil {
		return nil, fmt.Errorf("bad created_at %q: %w", createdAt, err)
	}
	if job.UpdatedAt, err = time.Parse(timeLayout, updatedAt); err != nil {
		return nil, fmt.Errorf("bad updated_at %q: %w", updatedAt, err)
	}
	return &job, nil
}
