package job

import (
	"errors"
	"testing"
	"time"

	"github.com/MrWong99/orato/internal/evaluation"
)

func submissionFor(t *testing.T, age int) Submission {
	t.Helper()
	profile, err := evaluation.Classify(age)
	if err != nil {
		t.Fatalf("Classify(%d) failed: %v", age, err)
	}
	return Submission{StudentName: "Ada", StudentAge: age, Topic: "volcanoes", Profile: profile}
}

func TestRegistryAddAndGet(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()
	if err := reg.Add("job-1", submissionFor(t, 9)); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	snap, err := reg.Get("job-1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if snap.Status != StatusPending {
		t.Errorf("new job status = %s, want %s", snap.Status, StatusPending)
	}
	if snap.Progress != StatusPending.Message() {
		t.Errorf("Progress = %q, want the pending message", snap.Progress)
	}
	if snap.AgeGroup != evaluation.GroupUpperPrimary {
		t.Errorf("AgeGroup = %s, want %s", snap.AgeGroup, evaluation.GroupUpperPrimary)
	}
	if snap.CreatedAt.IsZero() {
		t.Error("CreatedAt not stamped")
	}

	if err := reg.Add("job-1", submissionFor(t, 9)); err == nil {
		t.Error("Add accepted a duplicate job ID")
	}
}

func TestRegistryGetUnknown(t *testing.T) {
	t.Parallel()

	_, err := NewRegistry().Get("nope")
	var nf *evaluation.NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("Get for unknown ID returned %v, want NotFoundError", err)
	}
	if nf.JobID != "nope" {
		t.Errorf("NotFoundError.JobID = %q", nf.JobID)
	}
}

func TestRegistryAdvance(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()
	if err := reg.Add("job-1", submissionFor(t, 12)); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	for _, s := range []Status{StatusPreprocessing, StatusExtractingFeatures, StatusTranscribing, StatusAnalyzing} {
		if err := reg.Advance("job-1", s); err != nil {
			t.Fatalf("Advance to %s failed: %v", s, err)
		}
	}
	if err := reg.Advance("job-1", StatusPreprocessing); err == nil {
		t.Error("Advance accepted a backward transition")
	}
	if err := reg.Advance("missing", StatusAnalyzing); err == nil {
		t.Error("Advance accepted an unknown job ID")
	}
}

func TestRegistryCompleteAttachesResult(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()
	if err := reg.Add("job-1", submissionFor(t, 7)); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	res := &evaluation.Result{}
	if err := reg.Complete("job-1", res, nil); err != nil {
		t.Fatalf("Complete failed: %v", err)
	}

	snap, err := reg.Get("job-1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if snap.Status != StatusCompleted || !snap.Done() {
		t.Errorf("completed job status = %s", snap.Status)
	}
	if snap.Result != res {
		t.Error("snapshot does not carry the attached result")
	}

	if err := reg.Advance("job-1", StatusFailed); err == nil {
		t.Error("Advance moved a completed job to failed")
	}
}

func TestRegistryFailIsSticky(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()
	if err := reg.Add("job-1", submissionFor(t, 7)); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if err := reg.Complete("job-1", &evaluation.Result{}, nil); err != nil {
		t.Fatalf("Complete failed: %v", err)
	}

	// A late pipeline error must not clobber the result.
	if err := reg.Fail("job-1", "too late"); err != nil {
		t.Fatalf("Fail on terminal job errored: %v", err)
	}
	snap, _ := reg.Get("job-1")
	if snap.Status != StatusCompleted || snap.Error != "" {
		t.Errorf("terminal job mutated by Fail: status=%s error=%q", snap.Status, snap.Error)
	}
}

func TestRegistryFail(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()
	if err := reg.Add("job-1", submissionFor(t, 7)); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if err := reg.Fail("job-1", "transcription broke"); err != nil {
		t.Fatalf("Fail failed: %v", err)
	}
	snap, _ := reg.Get("job-1")
	if snap.Status != StatusFailed || snap.Error != "transcription broke" {
		t.Errorf("failed job snapshot = %s / %q", snap.Status, snap.Error)
	}
}

func TestRegistryListAndActiveCount(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()
	for _, id := range []string{"job-1", "job-2", "job-3"} {
		if err := reg.Add(id, submissionFor(t, 9)); err != nil {
			t.Fatalf("Add %s failed: %v", id, err)
		}
		time.Sleep(time.Millisecond) // distinct CreatedAt for ordering
	}
	if err := reg.Fail("job-2", "boom"); err != nil {
		t.Fatalf("Fail failed: %v", err)
	}

	all := reg.List("", 0)
	if len(all) != 3 {
		t.Fatalf("List returned %d jobs, want 3", len(all))
	}
	if all[0].ID != "job-3" || all[2].ID != "job-1" {
		t.Errorf("List order = [%s %s %s], want newest first", all[0].ID, all[1].ID, all[2].ID)
	}

	failed := reg.List(StatusFailed, 0)
	if len(failed) != 1 || failed[0].ID != "job-2" {
		t.Errorf("List(failed) = %v", failed)
	}

	if got := len(reg.List("", 2)); got != 2 {
		t.Errorf("List with limit 2 returned %d jobs", got)
	}

	if got := reg.ActiveCount(); got != 2 {
		t.Errorf("ActiveCount = %d, want 2", got)
	}
}

func TestRegistryEvictTerminal(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()
	for _, id := range []string{"job-1", "job-2", "job-3"} {
		if err := reg.Add(id, submissionFor(t, 9)); err != nil {
			t.Fatalf("Add(%s) failed: %v", id, err)
		}
	}
	if err := reg.Fail("job-1", "boom"); err != nil {
		t.Fatalf("Fail failed: %v", err)
	}
	if err := reg.Fail("job-2", "boom"); err != nil {
		t.Fatalf("Fail failed: %v", err)
	}
	time.Sleep(time.Millisecond)

	// A generous age keeps everything.
	if n := reg.EvictTerminal(time.Hour); n != 0 {
		t.Fatalf("EvictTerminal(1h) = %d, want 0", n)
	}

	if n := reg.EvictTerminal(0); n != 2 {
		t.Fatalf("EvictTerminal(0) = %d, want 2", n)
	}
	if _, err := reg.Get("job-1"); err == nil {
		t.Error("evicted job-1 still resolvable")
	}
	// The pending job survives.
	if _, err := reg.Get("job-3"); err != nil {
		t.Errorf("pending job-3 was evicted: %v", err)
	}
}
