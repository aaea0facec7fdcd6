package repository

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jamesfarrell.me/kanglish-summarizer/internal/storage/db"
	"jamesfarrell.me/kanglish-summarizer/internal/storage/models"
)

func openSQLite(t *testing.T) *sql.DB {
	t.Helper()
	ctx := context.Background()
	url := filepath.Join(t.TempDir(), "history.db")
	conn, err := db.NewConnection(ctx, db.Config{URL: url})
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	require.NoError(t, db.Migrate(ctx, conn, db.Driver(url), true))
	return conn
}

func TestJobLifecycle(t *testing.T) {
	ctx := context.Background()
	repo := NewJobRepository(openSQLite(t))

	job := &models.Job{InputType: "file", Source: "clip.mp4", Filename: "clip.mp4"}
	require.NoError(t, repo.Create(ctx, job))
	require.NotEmpty(t, job.ID)

	got, err := repo.Get(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, got.Status)
	assert.Equal(t, "clip.mp4", got.Filename)
	assert.WithinDuration(t, job.CreatedAt, got.CreatedAt, time.Millisecond)

	require.NoError(t, repo.Complete(ctx, job.ID, models.JobResult{
		Transcription: "hello",
		Summary:       "hi",
		Kannada:       "ನಮಸ್ಕಾರ",
		Kanglish:      "Namaskara",
		Duration:      "00:05",
	}))
	got, err = repo.Get(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, got.Status)
	assert.Equal(t, "hello", got.Transcription)
	assert.Equal(t, "ನಮಸ್ಕಾರ", got.Kannada)
	assert.Equal(t, "00:05", got.Duration)
}

func TestJobFail(t *testing.T) {
	ctx := context.Background()
	repo := NewJobRepository(openSQLite(t))

	job := &models.Job{InputType: "text", Source: "some text"}
	require.NoError(t, repo.Create(ctx, job))
	require.NoError(t, repo.Fail(ctx, job.ID, "transcription failed"))

	got, err := repo.Get(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusFailed, got.Status)
	assert.Equal(t, "transcription failed", got.Error)
}

func TestJobNotFound(t *testing.T) {
	ctx := context.Background()
	repo := NewJobRepository(openSQLite(t))

	_, err := repo.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, repo.Fail(ctx, "missing", "x"), ErrNotFound)
	assert.ErrorIs(t, repo.Complete(ctx, "missing", models.JobResult{}), ErrNotFound)
}

func TestJobListNewestFirst(t *testing.T) {
	ctx := context.Background()
	repo := NewJobRepository(openSQLite(t))

	base := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	for i, name := range []string{"a", "b", "c"} {
		at := base.Add(time.Duration(i) * 500 * time.Millisecond)
		repo.now = func() time.Time { return at }
		require.NoError(t, repo.Create(ctx, &models.Job{InputType: "file", Filename: name}))
	}

	jobs, err := repo.List(ctx, 2)
	require.NoError(t, err)
	require.Len(t, jobs, 2)
	assert.Equal(t, "c", jobs[0].Filename)
	assert.Equal(t, "b", jobs[1].Filename)
}

func TestEmbeddingSearchPostgres(t *testing.T) {
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	ctx := context.Background()
	conn, err := db.NewConnection(ctx, db.Config{URL: url})
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, db.Migrate(ctx, conn, db.Driver(url), true))

	jobs := NewJobRepository(conn)
	vectors := NewEmbeddingRepository(conn)

	job := &models.Job{InputType: "text"}
	require.NoError(t, jobs.Create(ctx, job))
	require.NoError(t, jobs.Complete(ctx, job.ID, models.JobResult{Summary: "about rivers"}))

	vec := make([]float32, 1536)
	vec[0] = 1
	require.NoError(t, vectors.Save(ctx, job.ID, vec))

	results, err := vectors.Search(ctx, vec, 50)
	require.NoError(t, err)
	var found bool
	for _, r := range results {
		if r.JobID == job.ID {
			found = true
			assert.InDelta(t, 1.0, r.Similarity, 1e-6)
		}
	}
	assert.True(t, found)
}
