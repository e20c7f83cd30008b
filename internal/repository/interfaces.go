package repository

import (
	"context"

	"github.com/iconidentify/xcourier/internal/domain"
)

// MessageQueue manages the queue of message-handling jobs.
type MessageQueue interface {
	// Enqueue adds a job to the queue.
	Enqueue(ctx context.Context, job *domain.Job) error

	// Dequeue retrieves the next queued job (FIFO).
	Dequeue(ctx context.Context) (*domain.Job, error)

	// Update modifies job state.
	Update(ctx context.Context, job *domain.Job) error

	// Get retrieves a job by ID.
	Get(ctx context.Context, id domain.JobID) (*domain.Job, error)

	// ListPending returns all queued jobs.
	ListPending(ctx context.Context) ([]*domain.Job, error)

	// Stats returns queue statistics.
	Stats(ctx context.Context) (*QueueStats, error)
}

// QueueStats contains message queue statistics.
type QueueStats struct {
	Queued     int
	Processing int
	Completed  int
	Failed     int
}
