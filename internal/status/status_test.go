package status

import (
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStep(t *testing.T) {
	for _, s := range []string{"transcription", "summary", "translation", "final"} {
		step, err := ParseStep(s)
		require.NoError(t, err)
		assert.Equal(t, Step(s), step)
	}
	_, err := ParseStep("bogus")
	assert.ErrorIs(t, err, ErrUnknownStep)
}

func TestLifecycle(t *testing.T) {
	tr := NewTracker()
	job := tr.Reset()

	assert.True(t, tr.Progress(job, StepTranscription, "Transcribing media..."))
	s, err := tr.Snapshot(StepTranscription)
	require.NoError(t, err)
	assert.False(t, s.Complete)
	assert.False(t, s.Error)
	require.NotNil(t, s.Progress)
	assert.Equal(t, "Transcribing media...", *s.Progress)

	tr.Complete(job, StepTranscription, "hello")
	s, _ = tr.Snapshot(StepTranscription)
	require.NotNil(t, s.Progress)
	assert.Equal(t, "Done", *s.Progress)
	assert.Equal(t, NoDuration, tr.FinalSnapshot().Duration)
	tr.Complete(job, StepSummary, "short")
	tr.Finish(job, "clip.mp4", "01:02", "file")

	assert.Equal(t, "hello", tr.Text(StepTranscription))
	assert.Equal(t, "short", tr.Text(StepSummary))
	assert.Equal(t, "", tr.Text(StepTranslation))

	f := tr.FinalSnapshot()
	assert.True(t, f.Complete)
	assert.True(t, f.Success)
	assert.Nil(t, f.Error)
	assert.Equal(t, "clip.mp4", f.Filename)
	assert.Equal(t, "01:02", f.Duration)
	assert.Equal(t, "file", f.InputType)
}

func TestFail(t *testing.T) {
	tr := NewTracker()
	job := tr.Current()
	tr.Complete(job, StepTranscription, "partial")

	assert.True(t, tr.Fail(job, errors.New("boom"), "clip.mp4", "file"))

	for _, step := range []Step{StepTranscription, StepSummary, StepTranslation} {
		s, err := tr.Snapshot(step)
		require.NoError(t, err)
		assert.True(t, s.Complete, step)
		assert.True(t, s.Error, step)
		assert.Nil(t, s.Progress, step)
	}
	assert.Equal(t, "ERROR: boom", tr.Text(StepTranscription))

	f := tr.FinalSnapshot()
	assert.True(t, f.Complete)
	assert.False(t, f.Success)
	require.NotNil(t, f.Error)
	assert.Equal(t, "boom", *f.Error)
	assert.Equal(t, "clip.mp4", f.Filename)
	assert.Equal(t, NoDuration, f.Duration)
	assert.Equal(t, "file", f.InputType)
}

func TestStaleJobIgnored(t *testing.T) {
	tr := NewTracker()
	old := tr.Current()
	current := tr.Reset()
	require.NotEqual(t, old, current)

	assert.False(t, tr.Complete(old, StepSummary, "stale"))
	assert.False(t, tr.Fail(old, errors.New("stale"), "", "text"))
	assert.False(t, tr.Finish(old, "a", "b", "c"))

	s, err := tr.Snapshot(StepSummary)
	require.NoError(t, err)
	assert.False(t, s.Complete)
	assert.Nil(t, s.Result)
	assert.False(t, tr.FinalSnapshot().Complete)
}

func TestSnapshotUnknownStep(t *testing.T) {
	_, err := NewTracker().Snapshot(StepFinal)
	assert.ErrorIs(t, err, ErrUnknownStep)
}

func TestConcurrentAccess(t *testing.T) {
	tr := NewTracker()
	job := tr.Current()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			tr.Progress(job, StepSummary, "working")
		}()
		go func() {
			defer wg.Done()
			_, _ = tr.Snapshot(StepSummary)
			_ = tr.FinalSnapshot()
		}()
	}
	wg.Wait()
}

func TestStageJSON(t *testing.T) {
	tr := NewTracker()
	job := tr.Current()

	s, err := tr.Snapshot(StepSummary)
	require.NoError(t, err)
	raw, err := json.Marshal(s)
	require.NoError(t, err)
	assert.JSONEq(t, `{"complete":false,"result":null,"progress":null,"error":false}`, string(raw))

	tr.Fail(job, errors.New("boom"), "", "text")
	s, _ = tr.Snapshot(StepTranscription)
	raw, err = json.Marshal(s)
	require.NoError(t, err)
	assert.JSONEq(t, `{"complete":true,"result":"ERROR: boom","progress":null,"error":true}`, string(raw))
}
