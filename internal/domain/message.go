package domain

import (
	"time"

	"github.com/google/uuid"
)

// IncomingMessage is one text message received from a chat.
type IncomingMessage struct {
	ChatID    int64
	MessageID int
	UserID    int64
	Text      string
}

// MessageRef identifies a message the bot has sent, so it can be
// deleted later.
type MessageRef struct {
	ChatID    int64
	MessageID int
}

// IsZero returns true if the reference does not point at a message.
func (r MessageRef) IsZero() bool {
	return r.ChatID == 0 && r.MessageID == 0
}

// JobID is a unique identifier for a job.
type JobID string

// String returns the string representation of the JobID.
func (id JobID) String() string {
	return string(id)
}

// NewJobID generates a short random job ID.
func NewJobID() JobID {
	return JobID(uuid.New().String()[:8])
}

// JobStatus represents the current state of a job.
type JobStatus string

const (
	JobStatusQueued     JobStatus = "queued"
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
)

// Job represents one message-handling unit of work in the queue.
// A job runs to completion or fails; it is never retried.
type Job struct {
	ID        JobID
	Message   IncomingMessage
	Status    JobStatus
	LastError string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewJob creates a queued job for an incoming message.
func NewJob(msg IncomingMessage) *Job {
	now := time.Now()
	return &Job{
		ID:        NewJobID(),
		Message:   msg,
		Status:    JobStatusQueued,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// MarkProcessing updates the job status to processing.
func (j *Job) MarkProcessing() {
	j.Status = JobStatusProcessing
	j.UpdatedAt = time.Now()
}

// MarkCompleted updates the job status to completed.
func (j *Job) MarkCompleted() {
	j.Status = JobStatusCompleted
	j.UpdatedAt = time.Now()
}

// MarkFailed updates the job status to failed with an error message.
func (j *Job) MarkFailed(err string) {
	j.Status = JobStatusFailed
	j.LastError = err
	j.UpdatedAt = time.Now()
}
