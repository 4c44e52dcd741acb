package pipeline

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestContentHashHex_Consistency(t *testing.T) {
	data := []byte("hello world")
	h1 := ContentHashHex(data)
	h2 := ContentHashHex(data)
	if h1 != h2 {
		t.Errorf("expected identical hashes, got %q and %q", h1, h2)
	}
	want := "b94d27b9934d3e08a52e52d7da7dabfac484efe37a5380ee9088f7ace2efcde9"
	if h1 != want {
		t.Errorf("expected hash %q, got %q", want, h1)
	}
}

func TestContentHashHex_EmptyInput(t *testing.T) {
	want := "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"
	if h := ContentHashHex(nil); h != want {
		t.Errorf("expected hash %q, got %q", want, h)
	}
}

func TestNewJobID_IsUUID(t *testing.T) {
	a, b := NewJobID(), NewJobID()
	if a == b {
		t.Fatal("expected distinct job ids")
	}
	if _, err := uuid.Parse(a); err != nil {
		t.Errorf("expected a uuid, got %q: %v", a, err)
	}
}

func TestNewJob(t *testing.T) {
	inputs := []Input{
		{Facility: "Przedszkole nr 7", Filename: "rachunek_2024.csv", Data: []byte("hello world")},
		{Facility: "Szkola Podstawowa nr 4", Filename: "rachunek_2024.xlsx", Data: []byte{}},
	}
	job := NewJob(inputs, "2024")

	snap := job.Snapshot()
	if snap.Status != StatusQueued {
		t.Errorf("expected status %q, got %q", StatusQueued, snap.Status)
	}
	if snap.Progress.TotalFiles != 2 {
		t.Errorf("expected 2 files, got %d", snap.Progress.TotalFiles)
	}
	if snap.Files[0].Size != 11 || snap.Files[0].SHA256 != ContentHashHex([]byte("hello world")) {
		t.Errorf("unexpected file info %+v", snap.Files[0])
	}
	if len(job.Inputs()) != 2 {
		t.Errorf("expected inputs to be kept until the job finishes")
	}
}

func TestJob_StateTransitions(t *testing.T) {
	job := &Job{
		ID:        "test-1",
		Status:    StatusQueued,
		Phase:     "queued",
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	transitions := []struct {
		status JobStatus
		phase  string
	}{
		{StatusAnalyzing, "extracting statements"},
		{StatusCompleted, "done"},
	}

	for _, tr := range transitions {
		before := job.UpdatedAt
		time.Sleep(time.Millisecond)
		job.SetStatus(tr.status, tr.phase)

		if job.Status != tr.status {
			t.Errorf("expected status %q, got %q", tr.status, job.Status)
		}
		if job.Phase != tr.phase {
			t.Errorf("expected phase %q, got %q", tr.phase, job.Phase)
		}
		if !job.UpdatedAt.After(before) {
			t.Errorf("expected UpdatedAt to advance after SetStatus(%q)", tr.status)
		}
	}
}

func TestJob_AddError(t *testing.T) {
	job := &Job{ID: "err-test", UpdatedAt: time.Now()}
	job.AddError("a.pdf: statement source unreadable")
	job.AddError("b.pdf: statement source unreadable")

	snap := job.Snapshot()
	if len(snap.Progress.Errors) != 2 {
		t.Fatalf("expected 2 errors, got %d", len(snap.Progress.Errors))
	}
	if snap.Progress.Errors[0] != "a.pdf: statement source unreadable" {
		t.Errorf("unexpected first error %q", snap.Progress.Errors[0])
	}
}

func TestJob_FileDone(t *testing.T) {
	job := &Job{ID: "done-test", UpdatedAt: time.Now()}
	job.FileDone(true)
	job.FileDone(false)
	job.FileDone(true)

	snap := job.Snapshot()
	if snap.Progress.FilesProcessed != 3 {
		t.Errorf("expected 3 files processed, got %d", snap.Progress.FilesProcessed)
	}
	if snap.Progress.FacilitiesOK != 2 {
		t.Errorf("expected 2 facilities ok, got %d", snap.Progress.FacilitiesOK)
	}
}

func TestJob_FinishDropsInputs(t *testing.T) {
	job := NewJob([]Input{{Filename: "a.csv", Data: []byte("x")}}, "2024")
	res := &Result{}
	job.Finish(res, StatusPartial)

	if job.Result() != res {
		t.Error("expected the result to be stored")
	}
	if job.Inputs() != nil {
		t.Error("expected uploaded data to be released")
	}
	snap := job.Snapshot()
	if snap.Status != StatusPartial || !snap.Finished() {
		t.Errorf("expected a finished partial job, got %q", snap.Status)
	}
}

func TestJob_SnapshotErrorsNotNil(t *testing.T) {
	job := &Job{ID: "snap-test", UpdatedAt: time.Now()}
	snap := job.Snapshot()
	if snap.Progress.Errors == nil {
		t.Error("expected non-nil errors slice in snapshot")
	}
	if snap.Finished() {
		t.Error("expected an unstarted job not to be finished")
	}
}

func TestJobStore_PutGet(t *testing.T) {
	store := NewJobStore(time.Hour)
	job := &Job{ID: "store-1", UpdatedAt: time.Now()}
	store.Put(job)

	got := store.Get("store-1")
	if got == nil {
		t.Fatal("expected to get job back")
	}
	if got.ID != "store-1" {
		t.Errorf("expected ID %q, got %q", "store-1", got.ID)
	}
	if store.Len() != 1 {
		t.Errorf("expected 1 job, got %d", store.Len())
	}
}

func TestJobStore_GetMissing(t *testing.T) {
	store := NewJobStore(time.Hour)
	if store.Get("nonexistent") != nil {
		t.Error("expected nil for missing job")
	}
}

func TestJobStore_TTLCleanup(t *testing.T) {
	store := NewJobStore(50 * time.Millisecond)

	expired := &Job{ID: "old", UpdatedAt: time.Now()}
	store.Put(expired)

	time.Sleep(100 * time.Millisecond)

	fresh := &Job{ID: "new", UpdatedAt: time.Now()}
	store.Put(fresh)

	store.Cleanup()

	if store.Get("old") != nil {
		t.Error("expected expired job to be cleaned up")
	}
	if store.Get("new") == nil {
		t.Error("expected fresh job to survive cleanup")
	}
}

func TestJobStore_CleanupEmpty(t *testing.T) {
	store := NewJobStore(time.Hour)
	store.Cleanup()
}
