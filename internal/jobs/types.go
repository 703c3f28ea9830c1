package jobs

import (
	"context"
	"time"
)

// JobType represents the kind of recompute a job triggers.
type JobType string

const (
	// JobTypeReconcileObligation rematches one obligation's transactions
	// against all of its period views. Published when the obligation, its
	// periods, or any linked transaction's splits change; all trigger
	// variants collapse into this one idempotent recompute.
	JobTypeReconcileObligation JobType = "reconcile_obligation"

	// JobTypeRebuildSummary re-derives one owner's summary for one source
	// period. Published as a follow-on after period writes.
	JobTypeRebuildSummary JobType = "rebuild_summary"
)

// JobStatus represents the current status of a job.
type JobStatus string

const (
	JobStatusPending   JobStatus = "pending"
	JobStatusRunning   JobStatus = "running"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
	JobStatusRetrying  JobStatus = "retrying"
)

// ReconcileJob is one recompute trigger. Because every recompute derives its
// result from current stored documents, delivering the same job twice is
// harmless, which is what lets the queue debounce rather than lock.
type ReconcileJob struct {
	// JobID is the unique identifier for this job.
	JobID string `json:"job_id"`

	// Type selects the recompute entry point.
	Type JobType `json:"type"`

	// OwnerID is the user or group the recompute runs for.
	OwnerID string `json:"owner_id"`

	// ObligationID is set for reconcile_obligation jobs.
	ObligationID string `json:"obligation_id,omitempty"`

	// SourcePeriodID is set for rebuild_summary jobs.
	SourcePeriodID string `json:"source_period_id,omitempty"`

	// Status is the current status of the job.
	Status JobStatus `json:"status"`

	// CreatedAt is when the job was created.
	CreatedAt time.Time `json:"created_at"`

	// StartedAt is when the job started processing.
	StartedAt *time.Time `json:"started_at,omitempty"`

	// CompletedAt is when the job completed (success or failure).
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	// Error contains error details if the job failed.
	Error string `json:"error,omitempty"`

	// RetryCount is the number of times this job has been retried.
	RetryCount int `json:"retry_count"`

	// MaxRetries is the maximum number of retries allowed.
	MaxRetries int `json:"max_retries"`
}

// Key identifies the recompute target. Jobs with equal keys are redundant
// within a debounce window.
func (j *ReconcileJob) Key() string {
	subject := j.ObligationID
	if j.Type == JobTypeRebuildSummary {
		subject = j.SourcePeriodID
	}
	return string(j.Type) + "/" + j.OwnerID + "/" + subject
}

// Job is a generic interface for all job types.
type Job interface {
	// GetID returns the unique job identifier.
	GetID() string

	// GetType returns the job type.
	GetType() JobType

	// GetStatus returns the current job status.
	GetStatus() JobStatus
}

// GetID implements the Job interface.
func (j *ReconcileJob) GetID() string {
	return j.JobID
}

// GetType implements the Job interface.
func (j *ReconcileJob) GetType() JobType {
	return j.Type
}

// GetStatus implements the Job interface.
func (j *ReconcileJob) GetStatus() JobStatus {
	return j.Status
}

// Publisher defines the interface for publishing recompute jobs.
// This abstraction allows for different queue implementations (in-memory, Cloud Tasks, Pub/Sub).
type Publisher interface {
	// PublishReconcile publishes a recompute job. Implementations may drop
	// a job whose key was published within the debounce window; dropping is
	// an optimization, never a correctness requirement.
	PublishReconcile(ctx context.Context, job *ReconcileJob) error

	// Close closes the publisher and releases resources.
	Close() error
}

// Consumer defines the interface for consuming jobs from a queue.
type Consumer interface {
	// Start begins consuming jobs from the queue.
	// The handler function is called for each job received.
	Start(ctx context.Context, handler JobHandler) error

	// Stop stops consuming jobs and waits for in-flight jobs to complete.
	Stop(ctx context.Context) error
}

// JobHandler is a function that processes a job.
// It should return an error if the job failed and should be retried.
type JobHandler func(ctx context.Context, job Job) error

// JobStore defines the interface for storing and retrieving job status.
// This allows tracking job execution across service restarts.
type JobStore interface {
	// SaveJob saves or updates a job's state.
	SaveJob(ctx context.Context, job *ReconcileJob) error

	// GetJob retrieves a job by ID.
	GetJob(ctx context.Context, jobID string) (*ReconcileJob, error)

	// ListJobs retrieves jobs with optional filtering.
	ListJobs(ctx context.Context, filter JobFilter) ([]*ReconcileJob, error)

	// UpdateJobStatus updates the status of a job.
	UpdateJobStatus(ctx context.Context, jobID string, status JobStatus, errorMsg string) error
}

// JobFilter defines filtering criteria for listing jobs.
type JobFilter struct {
	// OwnerID filters jobs by owner.
	OwnerID string

	// Type filters jobs by type.
	Type JobType

	// Status filters jobs by status.
	Status JobStatus

	// Limit limits the number of results.
	Limit int

	// Offset for pagination.
	Offset int
}
