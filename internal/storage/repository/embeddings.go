package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pgvector/pgvector-go"

	"jamesfarrell.me/kanglish-summarizer/internal/storage/models"
)

// EmbeddingRepository stores summary embeddings in a pgvector column.
// Postgres only.
type EmbeddingRepository struct {
	db *sql.DB
}

func NewEmbeddingRepository(db *sql.DB) *EmbeddingRepository {
	return &EmbeddingRepository{db: db}
}

func (r *EmbeddingRepository) Save(ctx context.Context, jobID string, embedding []float32) error {
	const query = `
		INSERT INTO job_embeddings (job_id, embedding)
		VALUES ($1, $2)
		ON CONFLICT (job_id) DO UPDATE SET embedding = EXCLUDED.embedding
	`
	if _, err := r.db.ExecContext(ctx, query, jobID, pgvector.NewVector(embedding)); err != nil {
		return fmt.Errorf("embedding insert failed: %w", err)
	}
	return nil
}

// Search returns completed jobs ordered by cosine similarity to embedding.
func (r *EmbeddingRepository) Search(ctx context.Context, embedding []float32, limit int) ([]models.SearchResult, error) {
	if limit <= 0 {
		limit = 5
	}
	const query = `
		SELECT j.id, j.filename, j.summary, 1 - (e.embedding <=> $1) AS similarity
		FROM job_embeddings e
		JOIN jobs j ON j.id = e.job_id
		WHERE j.status = 'completed'
		ORDER BY e.embedding <=> $1
		LIMIT $2
	`
	rows, err := r.db.QueryContext(ctx, query, pgvector.NewVector(embedding), limit)
	if err != nil {
		return nil, fmt.Errorf("search query failed: %w", err)
	}
	defer rows.Close()

	results := []models.SearchResult{}
	for rows.Next() {
		var res models.SearchResult
		if err := rows.Scan(&res.JobID, &res.Filename, &res.Summary, &res.Similarity); err != nil {
			return nil, fmt.Errorf("scan search result: %w", err)
		}
		results = append(results, res)
	}
	return results, rows.Err()
}
