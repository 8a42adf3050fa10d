package evaluation

import "fmt"

// ValidationError rejects a request before any job is created. It maps to an
// HTTP 400 at the API boundary.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "evaluation: " + e.Reason
	}
	return fmt.Sprintf("evaluation: %s: %s", e.Field, e.Reason)
}

// ProcessingError marks a fatal pipeline stage failure. A job that hits one
// transitions to the failed state.
type ProcessingError struct {
	Stage string
	Err   error
}

func (e *ProcessingError) Error() string {
	return fmt.Sprintf("evaluation: %s stage failed: %v", e.Stage, e.Err)
}

func (e *ProcessingError) Unwrap() error { return e.Err }

// MetricError marks the failure of a single metric evaluator. It never fails
// the job; the metric is reported as degraded instead.
type MetricError struct {
	Metric MetricID
	Err    error
}

func (e *MetricError) Error() string {
	return fmt.Sprintf("evaluation: metric %s failed: %v", e.Metric, e.Err)
}

func (e *MetricError) Unwrap() error { return e.Err }

// NotFoundError is returned for lookups of unknown job IDs. It maps to an
// HTTP 404 at the API boundary.
type NotFoundError struct {
	JobID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("evaluation: job %q not found", e.JobID)
}

// InternalError wraps unexpected failures such as recovered panics or a
// presentation builder receiving an age group it cannot render.
type InternalError struct {
	Err error
}

func (e *InternalError) Error() string {
	return fmt.Sprintf("evaluation: internal error: %v", e.Err)
}

func (e *InternalError) Unwrap() error { return e.Err }
