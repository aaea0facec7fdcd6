package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"jamesfarrell.me/kanglish-summarizer/internal/status"
)

// finalResponse is the shape pollers see for the final step.
type finalResponse struct {
	Complete  bool    `json:"complete"`
	Result    any     `json:"result"`
	Progress  any     `json:"progress"`
	Error     *string `json:"error"`
	Success   bool    `json:"success"`
	Filename  string  `json:"filename"`
	Duration  string  `json:"duration"`
	InputType string  `json:"input_type"`
}

// Status reports the state of one processing step.
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	step, err := status.ParseStep(mux.Vars(r)["step"])
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid step")
		return
	}

	if step == status.StepFinal {
		f := h.Tracker.FinalSnapshot()
		writeJSON(w, http.StatusOK, finalResponse{
			Complete:  f.Complete,
			Error:     f.Error,
			Success:   f.Success,
			Filename:  f.Filename,
			Duration:  f.Duration,
			InputType: f.InputType,
		})
		return
	}

	s, err := h.Tracker.Snapshot(step)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid step")
		return
	}
	writeJSON(w, http.StatusOK, s)
}
