package pipeline

import (
	"crypto/sha256"
	"fmt"
	"sync"
	"time"
)

// JobStatus represents the state of a criteria import job.
type JobStatus string

const (
	StatusQueued     JobStatus = "queued"
	StatusParsing    JobStatus = "parsing"
	StatusBuilding   JobStatus = "building"
	StatusStoring    JobStatus = "storing"
	StatusCompleted  JobStatus = "completed"
	StatusFailed     JobStatus = "failed"
	StatusPartial    JobStatus = "partial"
	StatusDupSkipped JobStatus = "duplicate_skipped"
)

// Job tracks the import of one study's criteria document.
type Job struct {
	mu sync.Mutex

	ID      string `json:"job_id"`
	StudyID string `json:"study_id"`

	Status   JobStatus `json:"status"`
	Phase    string    `json:"phase"`
	Filename string    `json:"filename"`
	Title    string    `json:"title"`

	// Force re-imports content that was already imported for the study.
	Force bool `json:"force"`

	Progress Progress `json:"progress"`

	ContentHash   string    `json:"content_hash,omitempty"`
	ImportEventID string    `json:"import_event_id,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`

	// Internal: not serialized.
	fileData []byte
	errors   []string
}

// Progress tracks processing progress.
type Progress struct {
	TotalSections int      `json:"total_sections"`
	SectionsBuilt int      `json:"sections_built"`
	LinesTagged   int      `json:"lines_tagged"`
	LinesStored   int      `json:"lines_stored"`
	LinesMirrored int      `json:"lines_mirrored"`
	Errors        []string `json:"errors"`
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

// Cleanup removes expired jobs.
func (s *JobStore) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for id, job := range s.jobs {
		if now.Sub(job.lastUpdate()) > s.ttl {
			delete(s.jobs, id)
		}
	}
}

func (j *Job) lastUpdate() time.Time {
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

// SetTotalSections records how many sections the document split into.
func (j *Job) SetTotalSections(n int) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Progress.TotalSections = n
	j.UpdatedAt = time.Now()
}

// AddBuilt records one tagged section of n lines.
func (j *Job) AddBuilt(n int) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Progress.SectionsBuilt++
	j.Progress.LinesTagged += n
	j.UpdatedAt = time.Now()
}

// AddStored records persisted and mirrored line counts.
func (j *Job) AddStored(stored, mirrored int) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Progress.LinesStored += stored
	j.Progress.LinesMirrored += mirrored
	j.UpdatedAt = time.Now()
}

// SetImportEvent records the store's import event id.
func (j *Job) SetImportEvent(id string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.ImportEventID = id
}

// SetContentHash records the hash of the parsed content.
func (j *Job) SetContentHash(h string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.ContentHash = h
}

// SetFileData sets the raw file bytes for processing.
func (j *Job) SetFileData(data []byte) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.fileData = data
}

// FileData returns the raw file bytes.
func (j *Job) FileData() []byte {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.fileData
}

// JobSnapshot is a read-only, JSON-safe copy of job state.
type JobSnapshot struct {
	ID            string    `json:"job_id"`
	StudyID       string    `json:"study_id"`
	Status        JobStatus `json:"status"`
	Phase         string    `json:"phase"`
	Filename      string    `json:"filename"`
	Title         string    `json:"title"`
	ContentHash   string    `json:"content_hash,omitempty"`
	ImportEventID string    `json:"import_event_id,omitempty"`
	Progress      Progress  `json:"progress"`
}

// Snapshot returns a JSON-safe copy of the job state.
func (j *Job) Snapshot() JobSnapshot {
	j.mu.Lock()
	defer j.mu.Unlock()
	errs := append([]string{}, j.Progress.Errors...)
	p := j.Progress
	p.Errors = errs
	return JobSnapshot{
		ID:            j.ID,
		StudyID:       j.StudyID,
		Status:        j.Status,
		Phase:         j.Phase,
		Filename:      j.Filename,
		Title:         j.Title,
		ContentHash:   j.ContentHash,
		ImportEventID: j.ImportEventID,
		Progress:      p,
	}
}

// ContentHashHex computes SHA-256 of content and returns hex string.
func ContentHashHex(data []byte) string {
	h := sha256.Sum256(data)
	return fmt.Sprintf("%x", h[:])
}
