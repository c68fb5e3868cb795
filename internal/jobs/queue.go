package jobs

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"reqgraph/internal/model"
	apperrors "reqgraph/pkg/errors"
	"reqgraph/pkg/logger"
)

// Runner executes a job and produces its sync report
type Runner interface {
	Run(ctx context.Context, job *ExtractionJob) (*model.SyncReport, error)
}

// QueueOptions configures the dispatcher
type QueueOptions struct {
	Workers    int
	JobTimeout time.Duration
}

// Queue dispatches submitted jobs to a fixed worker pool. Delivery from
// callers is at least once, so Submit is idempotent by job id: a job the
// registry already knows in a non-failed state is returned as is instead
// of being run again.
type Queue struct {
	repo    Repository
	runner  Runner
	workers int
	timeout time.Duration
	logger  *zap.Logger

	pending chan string
	wg      sync.WaitGroup

	mu      sync.Mutex
	stopped bool
}

// NewQueue creates a queue; Start must be called before Submit
func NewQueue(repo Repository, runner Runner, opts QueueOptions) *Queue {
	if opts.Workers <= 0 {
		opts.Workers = 2
	}
	if opts.JobTimeout <= 0 {
		opts.JobTimeout = 10 * time.Minute
	}
	return &Queue{
		repo:    repo,
		runner:  runner,
		workers: opts.Workers,
		timeout: opts.JobTimeout,
		logger:  logger.Get(),
		pending: make(chan string, 256),
	}
}

// Start launches the worker pool
func (q *Queue) Start(ctx context.Context) {
	for i := 0; i < q.workers; i++ {
		q.wg.Add(1)
		go func() {
			defer q.wg.Done()
			for id := range q.pending {
				q.process(ctx, id)
			}
		}()
	}
}

// Stop refuses new submissions and waits for in-flight jobs to finish
func (q *Queue) Stop() {
	q.mu.Lock()
	if q.stopped {
		q.mu.Unlock()
		return
	}
	q.stopped = true
	close(q.pending)
	q.mu.Unlock()

	q.wg.Wait()
}

// Submit registers a job and enqueues it for execution. Resubmitting an
// id that is pending, running, or finished successfully returns the
// stored job; a failed job is re-enqueued. The registry check and the
// enqueue are serialized under one mutex: callers deliver at least once,
// and two concurrent deliveries of the same id must not both pass the
// not-found check and run the job twice.
func (q *Queue) Submit(ctx context.Context, job *ExtractionJob) (*ExtractionJob, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.stopped {
		return nil, apperrors.NewServiceUnavailable("job queue", nil)
	}

	existing, err := q.repo.Get(ctx, job.ID)
	if err == nil && existing.Status != model.StatusFailed {
		return existing, nil
	}
	if err != nil {
		if _, ok := err.(ErrJobNotFound); !ok {
			return nil, err
		}
	}

	job.Status = model.StatusPending
	job.Error = ""
	if job.SubmittedAt.IsZero() {
		job.SubmittedAt = time.Now().UTC()
	}
	if err := q.repo.Put(ctx, job); err != nil {
		return nil, err
	}

	select {
	case q.pending <- job.ID:
	case <-ctx.Done():
		return nil, apperrors.NewContextCancelled("job submit", ctx.Err())
	}

	q.logger.Info("Job submitted",
		zap.String("job_id", job.ID),
		zap.String("project", job.ProjectName),
		zap.String("document", job.DocumentPath),
	)
	return job, nil
}

func (q *Queue) process(ctx context.Context, id string) {
	job, err := q.repo.Get(ctx, id)
	if err != nil {
		q.logger.Error("Dequeued job missing from registry",
			zap.String("job_id", id),
			zap.Error(err),
		)
		return
	}
	if job.Finished() {
		// duplicate delivery of an already finished job
		return
	}

	job.Status = model.StatusRunning
	job.StartedAt = time.Now().UTC()
	if err := q.repo.Put(ctx, job); err != nil {
		q.logger.Error("Failed to mark job running",
			zap.String("job_id", id),
			zap.Error(err),
		)
	}

	runCtx, cancel := context.WithTimeout(ctx, q.timeout)
	report, runErr := q.runner.Run(runCtx, job)
	cancel()

	job.FinishedAt = time.Now().UTC()
	job.Result = report
	if runErr != nil {
		job.Status = model.StatusFailed
		job.Error = runErr.Error()
		q.logger.Warn("Job failed",
			zap.String("job_id", id),
			zap.Error(runErr),
		)
	} else {
		job.Status = report.Status
		q.logger.Info("Job finished",
			zap.String("job_id", id),
			zap.String("status", job.Status),
		)
	}

	if err := q.repo.Put(ctx, job); err != nil {
		q.logger.Error("Failed to persist job outcome",
			zap.String("job_id", id),
			zap.Error(err),
		)
	}
}
