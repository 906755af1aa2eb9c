package tasks

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
	"github.com/t-murch/radio-wash-sub000/internal/models"
	"github.com/t-murch/radio-wash-sub000/internal/repositories"
)

// Worker polls for work on a fixed interval: pending clean jobs first, then
// sync configs whose next run time has passed. One failing item never stops
// the others.
type Worker struct {
	cleaner  *Cleaner
	syncer   *Syncer
	jobs     *repositories.CleanJobRepository
	configs  *repositories.SyncConfigRepository
	interval time.Duration
	logger   *log.Logger
}

// NewWorker creates a worker polling at the given interval.
func NewWorker(cleaner *Cleaner, syncer *Syncer, jobs *repositories.CleanJobRepository, configs *repositories.SyncConfigRepository, interval time.Duration, logger *log.Logger) *Worker {
	return &Worker{
		cleaner:  cleaner,
		syncer:   syncer,
		jobs:     jobs,
		configs:  configs,
		interval: interval,
		logger:   logger,
	}
}

// Start runs the polling loop until the context is cancelled. A tick fires
// immediately on start so queued work is not delayed by one interval.
func (w *Worker) Start(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.logger.Info("worker started", "interval", w.interval)

	for {
		w.Tick(ctx)

		select {
		case <-ctx.Done():
			w.logger.Info("worker stopping")
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// Tick processes one round of pending jobs and due syncs.
func (w *Worker) Tick(ctx context.Context) {
	w.processPending(ctx)
	w.processDue(ctx)
}

func (w *Worker) processPending(ctx context.Context) {
	jobs, err := w.jobs.List(map[string]any{"status": models.JobStatusPending})
	if err != nil {
		w.logger.Error("failed to list pending jobs", "error", err)
		return
	}

	for _, job := range jobs {
		if ctx.Err() != nil {
			return
		}
		if err := w.cleaner.ProcessJob(ctx, job.ID()); err != nil {
			w.logger.Error("job failed", "job", job.ID(), "error", err)
		}
	}
}

func (w *Worker) processDue(ctx context.Context) {
	configs, err := w.configs.ListDue(time.Now())
	if err != nil {
		w.logger.Error("failed to list due sync configs", "error", err)
		return
	}

	for _, config := range configs {
		if ctx.Err() != nil {
			return
		}
		if _, err := w.syncer.Run(ctx, config); err != nil {
			w.logger.Error("sync failed", "config", config.ID(), "error", err)
		}
	}
}
