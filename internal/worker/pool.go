package worker

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/iconidentify/xcourier/internal/domain"
	"github.com/iconidentify/xcourier/internal/repository"
)

// ErrShutdownTimeout is returned when workers don't stop within timeout.
var ErrShutdownTimeout = errors.New("worker pool shutdown timed out")

// Handler processes a dequeued incoming message.
type Handler interface {
	HandleMessage(ctx context.Context, msg domain.IncomingMessage) error
}

// Reporter is notified when a job fails. May be nil.
type Reporter interface {
	ReportFailure(ctx context.Context, job *domain.Job, err error)
}

// Pool manages a pool of workers for processing message jobs.
type Pool struct {
	workers      int
	pollInterval time.Duration
	queue        repository.MessageQueue
	handler      Handler
	reporter     Reporter
	logger       *slog.Logger

	wg     sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc
}

// Config holds worker pool configuration.
type Config struct {
	Workers      int
	PollInterval time.Duration
}

// NewPool creates a new worker pool.
func NewPool(
	cfg Config,
	queue repository.MessageQueue,
	handler Handler,
	reporter Reporter,
	logger *slog.Logger,
) *Pool {
	if cfg.Workers <= 0 {
		cfg.Workers = 2
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = time.Second
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Pool{
		workers:      cfg.Workers,
		pollInterval: cfg.PollInterval,
		queue:        queue,
		handler:      handler,
		reporter:     reporter,
		logger:       logger,
		ctx:          ctx,
		cancel:       cancel,
	}
}

// Start launches all workers.
func (p *Pool) Start() {
	p.logger.Info("starting worker pool", "workers", p.workers)

	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}
}

// Stop gracefully stops all workers.
func (p *Pool) Stop(timeout time.Duration) error {
	p.logger.Info("stopping worker pool")
	p.cancel()

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		p.logger.Info("worker pool stopped gracefully")
		return nil
	case <-time.After(timeout):
		return ErrShutdownTimeout
	}
}

func (p *Pool) worker(id int) {
	defer p.wg.Done()

	logger := p.logger.With("worker_id", id)
	logger.Info("worker started")

	ticker := time.NewTicker(p.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-p.ctx.Done():
			logger.Info("worker stopping")
			return
		case <-ticker.C:
			p.processNextJob(logger)
		}
	}
}

func (p *Pool) processNextJob(logger *slog.Logger) {
	job, err := p.queue.Dequeue(p.ctx)
	if err != nil {
		if !errors.Is(err, domain.ErrNoJobs) {
			logger.Error("failed to dequeue job", "error", err)
		}
		return
	}

	logger = logger.With("job_id", job.ID, "chat_id", job.Message.ChatID)
	logger.Info("processing job")

	// Update job status to processing
	job.MarkProcessing()
	if err := p.queue.Update(p.ctx, job); err != nil {
		logger.Error("failed to update job status", "error", err)
		return
	}

	// Handle the message
	err = p.handler.HandleMessage(p.ctx, job.Message)
	if err != nil {
		p.handleJobFailure(logger, job, err)
		return
	}

	// Mark completed
	job.MarkCompleted()
	if err := p.queue.Update(p.ctx, job); err != nil {
		logger.Error("failed to mark job completed", "error", err)
	}

	logger.Info("job completed successfully")
}

func (p *Pool) handleJobFailure(logger *slog.Logger, job *domain.Job, err error) {
	job.MarkFailed(err.Error())

	logger.Error("job failed", "error", err)

	if updateErr := p.queue.Update(p.ctx, job); updateErr != nil {
		logger.Error("failed to update job after failure", "error", updateErr)
	}

	if p.reporter != nil {
		p.reporter.ReportFailure(p.ctx, job, err)
	}
}
