package pipeline

import (
	"crypto/sha256"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// JobStatus represents the state of an analysis job.
type JobStatus string

const (
	StatusQueued    JobStatus = "queued"
	StatusAnalyzing JobStatus = "analyzing"
	StatusCompleted JobStatus = "completed"
	StatusPartial   JobStatus = "partial"
	StatusFailed    JobStatus = "failed"
)

// Job tracks one uploaded batch of facility statements.
type Job struct {
	mu sync.Mutex

	ID     string    `json:"job_id"`
	Year   string    `json:"year"`
	Status JobStatus `json:"status"`
	Phase  string    `json:"phase"`
	Files  []File    `json:"files"`

	Progress Progress `json:"progress"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Internal: not serialized.
	inputs []Input
	result *Result
	errors []string
}

// File describes one statement of a job.
type File struct {
	Filename string `json:"filename"`
	Facility string `json:"facility"`
	SHA256   string `json:"sha256"`
	Size     int    `json:"size"`
}

// Progress tracks processing progress.
type Progress struct {
	TotalFiles     int      `json:"total_files"`
	FilesProcessed int      `json:"files_processed"`
	FacilitiesOK   int      `json:"facilities_ok"`
	Errors         []string `json:"errors"`
}

// NewJobID returns a random job identifier.
func NewJobID() string {
	return uuid.NewString()
}

// NewJob creates a queued job for inputs.
func NewJob(inputs []Input, year string) *Job {
	now := time.Now()
	files := make([]File, len(inputs))
	for i, in := range inputs {
		files[i] = File{
			Filename: in.Filename,
			Facility: in.Facility,
			SHA256:   ContentHashHex(in.Data),
			Size:     len(in.Data),
		}
	}
	return &Job{
		ID:        NewJobID(),
		Year:      year,
		Status:    StatusQueued,
		Phase:     "queued",
		Files:     files,
		Progress:  Progress{TotalFiles: len(inputs)},
		CreatedAt: now,
		UpdatedAt: now,
		inputs:    inputs,
	}
}

// JobStore is a thread-safe in-memory job registry with TTL eviction.
type JobStore struct {
	mu   sync.Mutex
	jobs map[string]*Job
	ttl  time.Duration
}

func NewJobStore(ttl time.Duration) *JobStore {
	return &JobStore{
		jobs: make(map[string]*Job),
		ttl:  ttl,
	}
}

func (s *JobStore) Put(job *Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.ID] = job
}

func (s *JobStore) Get(id string) *Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.jobs[id]
}

// Len returns the number of stored jobs.
func (s *JobStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.jobs)
}

// Cleanup removes jobs not updated within the TTL.
func (s *JobStore) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for id, job := range s.jobs {
		if now.Sub(job.updatedAt()) > s.ttl {
			delete(s.jobs, id)
		}
	}
}

func (j *Job) updatedAt() time.Time {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.UpdatedAt
}

// SetStatus updates job status atomically.
func (j *Job) SetStatus(status JobStatus, phase string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Status = status
	j.Phase = phase
	j.UpdatedAt = time.Now()
}

// AddError records an error.
func (j *Job) AddError(err string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.errors = append(j.errors, err)
	j.Progress.Errors = j.errors
	j.UpdatedAt = time.Now()
}

// FileDone counts one processed statement.
func (j *Job) FileDone(ok bool) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Progress.FilesProcessed++
	if ok {
		j.Progress.FacilitiesOK++
	}
	j.UpdatedAt = time.Now()
}

// Inputs returns the statements to analyze.
func (j *Job) Inputs() []Input {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.inputs
}

// Finish stores the result, drops the uploaded bytes and sets the final
// status.
func (j *Job) Finish(res *Result, status JobStatus) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.result = res
	j.inputs = nil
	j.Status = status
	j.Phase = "done"
	j.UpdatedAt = time.Now()
}

// Result returns the analysis result, nil until the job has finished.
func (j *Job) Result() *Result {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.result
}

// JobSnapshot is a read-only, JSON-safe copy of job state.
type JobSnapshot struct {
	ID        string    `json:"job_id"`
	Year      string    `json:"year"`
	Status    JobStatus `json:"status"`
	Phase     string    `json:"phase"`
	Files     []File    `json:"files"`
	Progress  Progress  `json:"progress"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Snapshot returns a JSON-safe copy of the job state.
func (j *Job) Snapshot() JobSnapshot {
	j.mu.Lock()
	defer j.mu.Unlock()
	errs := append([]string{}, j.Progress.Errors...)
	return JobSnapshot{
		ID:     j.ID,
		Year:   j.Year,
		Status: j.Status,
		Phase:  j.Phase,
		Files:  append([]File(nil), j.Files...),
		Progress: Progress{
			TotalFiles:     j.Progress.TotalFiles,
			FilesProcessed: j.Progress.FilesProcessed,
			FacilitiesOK:   j.Progress.FacilitiesOK,
			Errors:         errs,
		},
		CreatedAt: j.CreatedAt,
		UpdatedAt: j.UpdatedAt,
	}
}

// Finished reports whether the job reached a final status.
func (s JobSnapshot) Finished() bool {
	switch s.Status {
	case StatusCompleted, StatusPartial, StatusFailed:
		return true
	}
	return false
}

// ContentHashHex computes SHA-256 of content and returns hex string.
func ContentHashHex(data []byte) string {
	h := sha256.Sum256(data)
	return fmt.Sprintf("%x", h[:])
}
