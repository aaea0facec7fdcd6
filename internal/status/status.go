// Package status tracks the progress of the current processing job so the
// browser can poll it step by step.
package status

import (
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

type Step string

const (
	StepTranscription Step = "transcription"
	StepSummary       Step = "summary"
	StepTranslation   Step = "translation"
	StepFinal         Step = "final"
)

var ErrUnknownStep = errors.New("unknown step")

// NoDuration is reported until a job knows its media length.
const NoDuration = "--:--"

// ParseStep maps a path segment to a step.
func ParseStep(s string) (Step, error) {
	switch Step(s) {
	case StepTranscription, StepSummary, StepTranslation, StepFinal:
		return Step(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownStep, s)
}

// Stage is the state of one pipeline step. Progress is nil until the step
// starts and again after a failure; the failure message itself is reported
// on the final step.
type Stage struct {
	Complete bool    `json:"complete"`
	Result   any     `json:"result"`
	Progress *string `json:"progress"`
	Error    bool    `json:"error"`
}

// Final describes the outcome of the whole job.
type Final struct {
	Complete  bool    `json:"complete"`
	Success   bool    `json:"success"`
	Error     *string `json:"error"`
	Filename  string  `json:"filename"`
	Duration  string  `json:"duration"`
	InputType string  `json:"input_type"`
}

// Tracker holds the status of a single job at a time. Reset starts a new
// job; writes that carry an older job ID are ignored.
type Tracker struct {
	mu     sync.RWMutex
	job    string
	stages map[Step]*Stage
	final  Final
}

func NewTracker() *Tracker {
	t := &Tracker{}
	t.Reset()
	return t
}

// Reset clears every step and returns the ID of the new job.
func (t *Tracker) Reset() string {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.job = uuid.NewString()
	t.stages = map[Step]*Stage{
		StepTranscription: {},
		StepSummary:       {},
		StepTranslation:   {},
	}
	t.final = Final{Duration: NoDuration}
	return t.job
}

// Current returns the ID of the job being tracked.
func (t *Tracker) Current() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.job
}

// update applies fn under the write lock when jobID is still current.
func (t *Tracker) update(jobID string, fn func()) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if jobID != t.job {
		return false
	}
	fn()
	return true
}

// Progress marks a step as running with a human readable message.
func (t *Tracker) Progress(jobID string, step Step, msg string) bool {
	return t.update(jobID, func() {
		if s, ok := t.stages[step]; ok {
			s.Progress = &msg
		}
	})
}

// Complete stores the result of a step.
func (t *Tracker) Complete(jobID string, step Step, result any) bool {
	return t.update(jobID, func() {
		if s, ok := t.stages[step]; ok {
			done := "Done"
			s.Complete = true
			s.Result = result
			s.Progress = &done
		}
	})
}

// Finish marks the job as successful.
func (t *Tracker) Finish(jobID, filename, duration, inputType string) bool {
	return t.update(jobID, func() {
		t.final = Final{
			Complete:  true,
			Success:   true,
			Filename:  filename,
			Duration:  duration,
			InputType: inputType,
		}
	})
}

// Fail marks every step as complete with err so pollers stop waiting.
func (t *Tracker) Fail(jobID string, err error, filename, inputType string) bool {
	msg := err.Error()
	return t.update(jobID, func() {
		for step, s := range t.stages {
			s.Complete = true
			s.Error = true
			s.Progress = nil
			s.Result = nil
			if step == StepTranscription {
				s.Result = "ERROR: " + msg
			}
		}
		t.final = Final{
			Complete:  true,
			Error:     &msg,
			Filename:  filename,
			Duration:  NoDuration,
			InputType: inputType,
		}
	})
}

// Snapshot returns a copy of a pipeline step. Progress strings are never
// mutated in place, so sharing the pointer is safe.
func (t *Tracker) Snapshot(step Step) (Stage, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	s, ok := t.stages[step]
	if !ok {
		return Stage{}, fmt.Errorf("%w: %q", ErrUnknownStep, step)
	}
	return *s, nil
}

// FinalSnapshot returns a copy of the final step.
func (t *Tracker) FinalSnapshot() Final {
	t.mu.RLock()
	defer t.mu.RUnlock()
	f := t.final
	if f.Error != nil {
		msg := *f.Error
		f.Error = &msg
	}
	return f
}

// Text returns the result of a step as a string, or "" when it has none.
func (t *Tracker) Text(step Step) string {
	s, err := t.Snapshot(step)
	if err != nil {
		return ""
	}
	str, _ := s.Result.(string)
	return str
}
