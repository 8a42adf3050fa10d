package job

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/MrWong99/orato/internal/evaluation"
	"github.com/MrWong99/orato/internal/presentation"
)

// Submission is the validated input a job was created from. The raw audio is
// held only until preprocessing consumes it.
type Submission struct {
	StudentName string
	StudentAge  int
	Topic       string
	Profile     evaluation.Profile
}

// Snapshot is an immutable view of a job at one point in time. Result and
// Presentation are set exactly once, when the job completes, and are never
// mutated afterwards, so sharing the pointers is safe.
type Snapshot struct {
	ID           string
	Status       Status
	Progress     string
	StudentName  string
	StudentAge   int
	AgeGroup     evaluation.Group
	Topic        string
	CreatedAt    time.Time
	UpdatedAt    time.Time
	Result       *evaluation.Result
	Presentation presentation.Presentation
	Error        string
}

// Done reports whether the job has reached a terminal state.
func (s Snapshot) Done() bool { return s.Status.Terminal() }

// job is the registry's mutable record for one evaluation.
type job struct {
	id        string
	sub       Submission
	status    Status
	createdAt time.Time
	updatedAt time.Time
	result    *evaluation.Result
	pres      presentation.Presentation
	errMsg    string
}

func (j *job) snapshot() Snapshot {
	return Snapshot{
		ID:           j.id,
		Status:       j.status,
		Progress:     j.status.Message(),
		StudentName:  j.sub.StudentName,
		StudentAge:   j.sub.StudentAge,
		AgeGroup:     j.sub.Profile.Group,
		Topic:        j.sub.Topic,
		CreatedAt:    j.createdAt,
		UpdatedAt:    j.updatedAt,
		Result:       j.result,
		Presentation: j.pres,
		Error:        j.errMsg,
	}
}

// Registry is the in-memory job table. It is the only shared mutable state in
// the pipeline; the lock is held for map and status operations only, never
// across provider calls or metric evaluation. All methods are safe for
// concurrent use.
type Registry struct {
	mu   sync.RWMutex
	jobs map[string]*job
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{jobs: make(map[string]*job)}
}

// Add inserts a new pending job. Adding a duplicate ID is an error.
func (r *Registry) Add(id string, sub Submission) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.jobs[id]; exists {
		return fmt.Errorf("job: duplicate id %q", id)
	}
	now := time.Now().UTC()
	r.jobs[id] = &job{
		id:        id,
		sub:       sub,
		status:    StatusPending,
		createdAt: now,
		updatedAt: now,
	}
	return nil
}

// Get returns a snapshot of the job, or a *evaluation.NotFoundError for
// unknown IDs.
func (r *Registry) Get(id string) (Snapshot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	j, ok := r.jobs[id]
	if !ok {
		return Snapshot{}, &evaluation.NotFoundError{JobID: id}
	}
	return j.snapshot(), nil
}

// List returns snapshots of all jobs matching the status filter, newest
// first, capped at limit. An empty status matches everything; limit <= 0
// means no cap.
func (r *Registry) List(status Status, limit int) []Snapshot {
	r.mu.RLock()
	snaps := make([]Snapshot, 0, len(r.jobs))
	for _, j := range r.jobs {
		if status != "" && j.status != status {
			continue
		}
		snaps = append(snaps, j.snapshot())
	}
	r.mu.RUnlock()

	sort.Slice(snaps, func(i, k int) bool { return snaps[i].CreatedAt.After(snaps[k].CreatedAt) })
	if limit > 0 && len(snaps) > limit {
		snaps = snaps[:limit]
	}
	return snaps
}

// ActiveCount returns the number of jobs in a non-terminal state.
func (r *Registry) ActiveCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var n int
	for _, j := range r.jobs {
		if !j.status.Terminal() {
			n++
		}
	}
	return n
}

// Advance transitions a job to the given status. Backward or
// terminal-escaping transitions are rejected.
func (r *Registry) Advance(id string, status Status) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	j, ok := r.jobs[id]
	if !ok {
		return &evaluation.NotFoundError{JobID: id}
	}
	if !j.status.CanAdvance(status) {
		return fmt.Errorf("job: %s cannot advance from %s to %s", id, j.status, status)
	}
	j.status = status
	j.updatedAt = time.Now().UTC()
	return nil
}

// Complete marks a job completed, attaching its result and presentation.
func (r *Registry) Complete(id string, res *evaluation.Result, pres presentation.Presentation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	j, ok := r.jobs[id]
	if !ok {
		return &evaluation.NotFoundError{JobID: id}
	}
	if !j.status.CanAdvance(StatusCompleted) {
		return fmt.Errorf("job: %s cannot complete from %s", id, j.status)
	}
	j.status = StatusCompleted
	j.result = res
	j.pres = pres
	j.updatedAt = time.Now().UTC()
	return nil
}

// Fail marks a job failed with a human-readable error. Failing an already
// terminal job is a no-op so late pipeline errors cannot clobber a result.
func (r *Registry) Fail(id string, msg string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	j, ok := r.jobs[id]
	if !ok {
		return &evaluation.NotFoundError{JobID: id}
	}
	if j.status.Terminal() {
		return nil
	}
	j.status = StatusFailed
	j.errMsg = msg
	j.updatedAt = time.Now().UTC()
	return nil
}

// EvictTerminal removes completed and failed jobs whose last update is older
// than age, returning the number removed. Archived results stay available
// through the store; in-flight jobs are never evicted.
func (r *Registry) EvictTerminal(age time.Duration) int {
	cutoff := time.Now().UTC().Add(-age)
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for id, j := range r.jobs {
		if j.status.Terminal() && j.updatedAt.Before(cutoff) {
			delete(r.jobs, id)
			n++
		}
	}
	return n
}
