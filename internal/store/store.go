// Package store archives completed evaluations. The registry only keeps jobs
// in memory for polling; the store is the durable record teachers and parents
// query later.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/MrWong99/orato/internal/evaluation"
	"github.com/MrWong99/orato/internal/presentation"
)

// Record is one archived evaluation. Presentation is kept as raw JSON so the
// archive can replay exactly what the child saw without re-deriving it.
type Record struct {
	JobID        string               `json:"job_id"`
	StudentName  string               `json:"student_name,omitempty"`
	StudentAge   int                  `json:"student_age"`
	Topic        string               `json:"topic,omitempty"`
	AgeGroup     evaluation.Group     `json:"age_group"`
	Overall      int                  `json:"overall"`
	Variant      presentation.Variant `json:"variant"`
	Result       *evaluation.Result   `json:"result"`
	Presentation json.RawMessage      `json:"presentation"`
	CreatedAt    time.Time            `json:"created_at"`
}

// Validate checks the record carries everything the archive needs.
func (r *Record) Validate() error {
	var errs []error
	if r.JobID == "" {
		errs = append(errs, errors.New("store: record job_id is empty"))
	}
	if r.Result == nil {
		errs = append(errs, errors.New("store: record has no result"))
	}
	return errors.Join(errs...)
}

// NewRecord assembles an archive record from a finished job.
func NewRecord(jobID string, res *evaluation.Result, pres presentation.Presentation) (*Record, error) {
	raw, err := json.Marshal(pres)
	if err != nil {
		return nil, errors.Join(errors.New("store: marshal presentation"), err)
	}
	rec := &Record{
		JobID:        jobID,
		Result:       res,
		Presentation: raw,
	}
	if pres != nil {
		rec.Variant = pres.Variant()
	}
	if res != nil {
		rec.StudentName = res.Metadata.StudentName
		rec.StudentAge = res.Metadata.StudentAge
		rec.Topic = res.Metadata.Topic
		rec.AgeGroup = res.Metadata.AgeGroup
		rec.Overall = res.Scores.Overall
	}
	return rec, rec.Validate()
}

// Store archives completed evaluations.
// Implementations must be safe for concurrent use.
type Store interface {
	// Save creates or replaces the record for its job ID. The record is
	// validated before persistence.
	Save(ctx context.Context, rec *Record) error

	// Get retrieves a record by job ID. Returns (nil, nil) if not found.
	Get(ctx context.Context, jobID string) (*Record, error)

	// List returns the most recent records, newest first, capped at limit.
	// A non-positive limit returns nothing.
	List(ctx context.Context, limit int) ([]Record, error)

	// Delete removes a record by job ID. Deleting a non-existent record is
	// not an error.
	Delete(ctx context.Context, jobID string) error
}
