package repository

import (
	"context"
	"sync"

	"github.com/iconidentify/xcourier/internal/domain"
)

// maxFinishedJobs bounds how many completed/failed jobs are retained
// for inspection before the oldest are dropped.
const maxFinishedJobs = 1000

// InMemoryMessageQueue implements MessageQueue using in-memory storage.
type InMemoryMessageQueue struct {
	mu       sync.RWMutex
	jobs     map[domain.JobID]*domain.Job
	queue    []domain.JobID // FIFO queue of pending job IDs
	finished []domain.JobID // completed/failed job IDs, oldest first
}

// NewInMemoryMessageQueue creates a new in-memory message queue.
func NewInMemoryMessageQueue() *InMemoryMessageQueue {
	return &InMemoryMessageQueue{
		jobs:  make(map[domain.JobID]*domain.Job),
		queue: make([]domain.JobID, 0),
	}
}

// Enqueue adds a job to the queue.
func (q *InMemoryMessageQueue) Enqueue(ctx context.Context, job *domain.Job) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.jobs[job.ID] = job
	q.queue = append(q.queue, job.ID)

	return nil
}

// Dequeue retrieves the next queued job (FIFO).
func (q *InMemoryMessageQueue) Dequeue(ctx context.Context) (*domain.Job, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	// Find first job that is still queued
	for i, jobID := range q.queue {
		job, ok := q.jobs[jobID]
		if !ok {
			continue
		}

		if job.Status == domain.JobStatusQueued {
			// Remove from queue
			q.queue = append(q.queue[:i], q.queue[i+1:]...)
			return job, nil
		}
	}

	return nil, domain.ErrNoJobs
}

// Update modifies job state.
func (q *InMemoryMessageQueue) Update(ctx context.Context, job *domain.Job) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if _, ok := q.jobs[job.ID]; !ok {
		return domain.ErrJobNotFound
	}

	q.jobs[job.ID] = job

	if job.Status == domain.JobStatusCompleted || job.Status == domain.JobStatusFailed {
		q.finished = append(q.finished, job.ID)
		q.pruneFinished()
	}

	return nil
}

// pruneFinished drops the oldest finished jobs beyond the retention cap.
// Caller must hold the write lock.
func (q *InMemoryMessageQueue) pruneFinished() {
	for len(q.finished) > maxFinishedJobs {
		delete(q.jobs, q.finished[0])
		q.finished = q.finished[1:]
	}
}

// Get retrieves a job by ID.
func (q *InMemoryMessageQueue) Get(ctx context.Context, id domain.JobID) (*domain.Job, error) {
	q.mu.RLock()
	defer q.mu.RUnlock()

	job, ok := q.jobs[id]
	if !ok {
		return nil, domain.ErrJobNotFound
	}

	return job, nil
}

// ListPending returns all queued jobs.
func (q *InMemoryMessageQueue) ListPending(ctx context.Context) ([]*domain.Job, error) {
	q.mu.RLock()
	defer q.mu.RUnlock()

	var result []*domain.Job
	for _, job := range q.jobs {
		if job.Status == domain.JobStatusQueued {
			result = append(result, job)
		}
	}

	return result, nil
}

// Stats returns queue statistics.
func (q *InMemoryMessageQueue) Stats(ctx context.Context) (*QueueStats, error) {
	q.mu.RLock()
	defer q.mu.RUnlock()

	stats := &QueueStats{}
	for _, job := range q.jobs {
		switch job.Status {
		case domain.JobStatusQueued:
			stats.Queued++
		case domain.JobStatusProcessing:
			stats.Processing++
		case domain.JobStatusCompleted:
			stats.Completed++
		case domain.JobStatusFailed:
			stats.Failed++
		}
	}

	return stats, nil
}

// Clear removes all jobs (useful for testing).
func (q *InMemoryMessageQueue) Clear() {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.jobs = make(map[domain.JobID]*domain.Job)
	q.queue = make([]domain.JobID, 0)
	q.finished = nil
}
