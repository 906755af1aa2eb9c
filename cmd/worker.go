package main

import (
	"context"
	"time"

	"github.com/t-murch/radio-wash-sub000/internal/repositories"
	"github.com/t-murch/radio-wash-sub000/internal/tasks"
	"github.com/urfave/cli/v3"
)

// WorkerRun runs the background worker until interrupted. The worker picks up
// pending jobs and due sync configs on every poll.
func (r *Runner) WorkerRun(ctx context.Context, cmd *cli.Command) error {
	db, err := r.database()
	if err != nil {
		return err
	}

	interval := time.Duration(r.config.Worker.PollIntervalSec) * time.Second
	if interval <= 0 {
		interval = 30 * time.Second
	}

	notifier := r.notifier()
	worker := tasks.NewWorker(
		r.cleaner(db, notifier),
		r.syncer(db),
		repositories.NewCleanJobRepository(db),
		repositories.NewSyncConfigRepository(db),
		interval,
		r.logger,
	)

	r.logger.Info("worker started", "interval", interval)
	return worker.Start(ctx)
}
