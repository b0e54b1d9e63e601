// Package worker polls the job queue and drives pending jobs through the
// download pipeline.
package worker

import (
	"context"
	"log"
	"sync"
	"time"

	"linkvid/internal/storage"
)

// ProcessFunc runs one job to a terminal state. It owns the status
// transitions; the worker only hands over the job id.
type ProcessFunc func(ctx context.Context, jobID string) error

// Worker processes pending jobs one at a time.
type Worker struct {
	jobs     *storage.JobRepository
	process  ProcessFunc
	interval time.Duration
	logger   *log.Logger
	stop     chan struct{}
	wg       sync.WaitGroup
}

// NewWorker creates a new worker polling at the given interval.
func NewWorker(jobs *storage.JobRepository, process ProcessFunc, interval time.Duration, logger *log.Logger) *Worker {
	if interval <= 0 {
		interval = 1 * time.Second
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Worker{
		jobs:     jobs,
		process:  process,
		interval: interval,
		logger:   logger,
		stop:     make(chan struct{}),
	}
}

// Start begins processing jobs.
func (w *Worker) Start(ctx context.Context) {
	w.wg.Add(1)
	go w.run(ctx)
	w.logger.Println("Worker started")
}

// Stop gracefully stops the worker, waiting for an in-flight job to finish.
func (w *Worker) Stop() {
	close(w.stop)
	w.wg.Wait()
	w.logger.Println("Worker stopped")
}

func (w *Worker) run(ctx context.Context) {
	defer w.wg.Done()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stop:
			return
		case <-ticker.C:
			w.processNextJob(ctx)
		}
	}
}

func (w *Worker) processNextJob(ctx context.Context) {
	job, err := w.jobs.NextPending(ctx)
	if err != nil {
		w.logger.Printf("Error getting next job: %v", err)
		return
	}
	if job == nil {
		return // No jobs to process
	}

	// The pipeline records the terminal state itself; the error here is for
	// the log only.
	if err := w.process(ctx, job.ID); err != nil {
		w.logger.Printf("Job %s did not complete: %v", job.ID, err)
	}
}
