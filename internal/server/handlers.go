package server

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/MrWong99/orato/internal/evaluation"
	"github.com/MrWong99/orato/internal/job"
	"github.com/MrWong99/orato/internal/presentation"
	"github.com/MrWong99/orato/internal/store"
)

// handlers holds the HTTP handler methods for the evaluation API.
type handlers struct {
	runner    *job.Runner
	reg       *job.Registry
	archive   store.Store
	maxUpload int64
}

// submitResponse acknowledges an accepted submission.
type submitResponse struct {
	JobID    string     `json:"job_id"`
	Status   job.Status `json:"status"`
	Progress string     `json:"progress"`
}

// presentationPayload wraps a child presentation with its variant
// discriminator, since the four variants share no common fields. Data is
// either a [presentation.Presentation] or, for archived jobs, the raw JSON
// the archive replayed.
type presentationPayload struct {
	Variant presentation.Variant `json:"variant"`
	Data    any                  `json:"data"`
}

// statusResponse is one job snapshot. RawEvaluation and ChildPresentation
// are set only on completed jobs, Error only on failed ones.
type statusResponse struct {
	JobID             string               `json:"job_id"`
	Status            job.Status           `json:"status"`
	Progress          string               `json:"progress"`
	RawEvaluation     *evaluation.Result   `json:"raw_evaluation,omitempty"`
	ChildPresentation *presentationPayload `json:"child_presentation,omitempty"`
	Error             string               `json:"error,omitempty"`
}

// jobSummary is one entry in the jobs listing.
type jobSummary struct {
	JobID      string           `json:"job_id"`
	Status     job.Status       `json:"status"`
	Progress   string           `json:"progress"`
	StudentAge int              `json:"student_age"`
	AgeGroup   evaluation.Group `json:"age_group"`
	Topic      string           `json:"topic,omitempty"`
	CreatedAt  time.Time        `json:"created_at"`
	UpdatedAt  time.Time        `json:"updated_at"`
}

// jobsResponse lists recent jobs plus the count still in flight.
type jobsResponse struct {
	Jobs   []jobSummary `json:"jobs"`
	Active int          `json:"active_jobs"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// handleEvaluate accepts a multipart submission (audio_file, student_age,
// optional student_name and topic) and responds 202 with the new job ID.
func (h *handlers) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)
	if err := r.ParseMultipartForm(h.maxUpload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form: "+err.Error())
		return
	}

	file, _, err := r.FormFile("audio_file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "audio_file is required")
		return
	}
	defer file.Close()
	audio, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "reading audio_file: "+err.Error())
		return
	}

	age, err := strconv.Atoi(r.FormValue("student_age"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "student_age must be a number")
		return
	}

	id, err := h.runner.Submit(r.Context(), job.SubmitRequest{
		Audio:       audio,
		StudentAge:  age,
		StudentName: r.FormValue("student_name"),
		Topic:       r.FormValue("topic"),
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusAccepted, submitResponse{
		JobID:    id,
		Status:   job.StatusPending,
		Progress: job.StatusPending.Message(),
	})
}

// handleJobStatus returns the current snapshot of one job. Jobs already
// evicted from the registry are restored from the archive when one is
// configured.
func (h *handlers) handleJobStatus(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	snap, err := h.reg.Get(id)
	if err == nil {
		writeJSON(w, http.StatusOK, snapshotResponse(snap))
		return
	}

	var nerr *evaluation.NotFoundError
	if errors.As(err, &nerr) && h.archive != nil {
		rec, recErr := h.archive.Get(r.Context(), id)
		if recErr != nil {
			slog.Error("archive lookup failed", "job_id", id, "err", recErr)
		} else if rec != nil {
			writeJSON(w, http.StatusOK, recordResponse(rec))
			return
		}
	}
	writeDomainError(w, err)
}

// handleJobs lists recent jobs, optionally filtered by ?status= and capped
// by ?limit= (default 50).
func (h *handlers) handleJobs(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "limit must be a non-negative number")
			return
		}
		limit = n
	}

	status := job.Status(r.URL.Query().Get("status"))
	if status != "" && !status.IsValid() {
		writeError(w, http.StatusBadRequest, "unknown status "+strconv.Quote(string(status)))
		return
	}

	snaps := h.reg.List(status, limit)
	resp := jobsResponse{
		Jobs:   make([]jobSummary, 0, len(snaps)),
		Active: h.reg.ActiveCount(),
	}
	for _, s := range snaps {
		resp.Jobs = append(resp.Jobs, jobSummary{
			JobID:      s.ID,
			Status:     s.Status,
			Progress:   s.Progress,
			StudentAge: s.StudentAge,
			AgeGroup:   s.AgeGroup,
			Topic:      s.Topic,
			CreatedAt:  s.CreatedAt,
			UpdatedAt:  s.UpdatedAt,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

// snapshotResponse converts a registry snapshot to its API shape.
func snapshotResponse(snap job.Snapshot) statusResponse {
	resp := statusResponse{
		JobID:    snap.ID,
		Status:   snap.Status,
		Progress: snap.Progress,
		Error:    snap.Error,
	}
	if snap.Status == job.StatusCompleted {
		resp.RawEvaluation = snap.Result
		if snap.Presentation != nil {
			resp.ChildPresentation = &presentationPayload{
				Variant: snap.Presentation.Variant(),
				Data:    snap.Presentation,
			}
		}
	}
	return resp
}

// recordResponse converts an archived record to the same shape the registry
// serves, so clients cannot tell a restored job from a live one.
func recordResponse(rec *store.Record) statusResponse {
	resp := statusResponse{
		JobID:         rec.JobID,
		Status:        job.StatusCompleted,
		Progress:      job.StatusCompleted.Message(),
		RawEvaluation: rec.Result,
	}
	if len(rec.Presentation) > 0 {
		resp.ChildPresentation = &presentationPayload{
			Variant: rec.Variant,
			Data:    json.RawMessage(rec.Presentation),
		}
	}
	return resp
}

// writeDomainError maps the evaluation error taxonomy to HTTP status codes.
func writeDomainError(w http.ResponseWriter, err error) {
	var (
		verr *evaluation.ValidationError
		nerr *evaluation.NotFoundError
	)
	switch {
	case errors.As(err, &verr):
		writeError(w, http.StatusBadRequest, verr.Error())
	case errors.As(err, &nerr):
		writeError(w, http.StatusNotFound, nerr.Error())
	default:
		slog.Error("request failed", "err", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// writeJSON encodes v as JSON and writes it with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encoding response failed", "err", err)
	}
}
