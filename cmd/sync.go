package main

import (
	"context"
	"fmt"
	"time"

	"github.com/t-murch/radio-wash-sub000/internal/formatter"
	"github.com/t-murch/radio-wash-sub000/internal/repositories"
	"github.com/t-murch/radio-wash-sub000/internal/shared"
	"github.com/urfave/cli/v3"
)

// SyncEnable turns on scheduled sync for a completed job.
func (r *Runner) SyncEnable(ctx context.Context, cmd *cli.Command) error {
	jobID := cmd.StringArg("job")
	frequency := cmd.String("frequency")

	if jobID == "" {
		return fmt.Errorf("%w: job ID is required", shared.ErrMissingArgument)
	}
	if frequency == "" {
		frequency = r.config.Sync.DefaultFrequency
	}

	db, err := r.database()
	if err != nil {
		return err
	}

	user, err := r.currentUser(ctx, db)
	if err != nil {
		return err
	}

	config, err := r.syncer(db).EnableSync(ctx, user.ID(), jobID, frequency)
	if err != nil {
		return err
	}

	r.writePlain("✓ Sync enabled: %s\n", config.ID())
	r.writePlain("  Frequency: %s\n", config.Frequency())
	if next := config.NextSyncAt(); next != nil {
		r.writePlain("  Next run: %s\n", next.Format(time.RFC1123))
	}

	return nil
}

// SyncDisable turns off a sync config.
func (r *Runner) SyncDisable(ctx context.Context, cmd *cli.Command) error {
	configID := cmd.StringArg("id")
	if configID == "" {
		return fmt.Errorf("%w: sync config ID is required", shared.ErrMissingArgument)
	}

	db, err := r.database()
	if err != nil {
		return err
	}

	user, err := r.currentUser(ctx, db)
	if err != nil {
		return err
	}

	if err := r.syncer(db).DisableSync(ctx, user.ID(), configID); err != nil {
		return err
	}

	r.writePlain("✓ Sync disabled: %s\n", configID)
	return nil
}

// SyncNow runs a sync immediately and prints the delta.
func (r *Runner) SyncNow(ctx context.Context, cmd *cli.Command) error {
	configID := cmd.StringArg("id")
	if configID == "" {
		return fmt.Errorf("%w: sync config ID is required", shared.ErrMissingArgument)
	}

	db, err := r.database()
	if err != nil {
		return err
	}

	user, err := r.currentUser(ctx, db)
	if err != nil {
		return err
	}

	r.logger.Infof("running sync %v", configID)

	result, err := r.syncer(db).SyncNow(ctx, user.ID(), configID)
	if err != nil {
		return err
	}

	r.writePlainln("✓ Sync complete")
	r.writePlain("  Added: %d\n", result.Added)
	r.writePlain("  Removed: %d\n", result.Removed)
	r.writePlain("  Unchanged: %d\n", result.Unchanged)
	r.writePlain("  Duration: %s\n", result.Duration.Round(time.Millisecond))

	return nil
}

// SyncList lists the current user's sync configs.
func (r *Runner) SyncList(ctx context.Context, cmd *cli.Command) error {
	db, err := r.database()
	if err != nil {
		return err
	}

	user, err := r.currentUser(ctx, db)
	if err != nil {
		return err
	}

	configs := repositories.NewSyncConfigRepository(db)
	results, err := configs.List(map[string]any{"user_id": user.ID()})
	if err != nil {
		return fmt.Errorf("failed to list sync configs: %w", err)
	}

	if len(results) == 0 {
		r.writePlainln("No sync configs. Enable one with 'radiowash sync enable <job>'.")
		return nil
	}

	r.writePlain("Found %d sync configs:\n\n", len(results))
	for i, c := range results {
		state := "disabled"
		if c.Active() {
			state = "active"
		}
		r.writePlain("%d. %s [%s, %s]\n", i+1, c.ID(), c.Frequency(), state)
		r.writePlain("   Job: %s\n", c.JobID())
		if last := c.LastSyncedAt(); last != nil {
			r.writePlain("   Last synced: %s\n", last.Format(time.RFC1123))
		}
		if next := c.NextSyncAt(); next != nil && c.Active() {
			r.writePlain("   Next run: %s\n", next.Format(time.RFC1123))
		}
		r.writePlain("\n")
	}

	return nil
}

// SyncHistory shows recent runs for a sync config.
func (r *Runner) SyncHistory(ctx context.Context, cmd *cli.Command) error {
	configID := cmd.StringArg("id")
	limit := cmd.Int("limit")

	if configID == "" {
		return fmt.Errorf("%w: sync config ID is required", shared.ErrMissingArgument)
	}

	db, err := r.database()
	if err != nil {
		return err
	}

	histories := repositories.NewSyncHistoryRepository(db)
	rows, err := histories.ListByConfig(configID, limit)
	if err != nil {
		return fmt.Errorf("failed to list sync history: %w", err)
	}

	if len(rows) == 0 {
		r.writePlainln("No sync runs recorded yet.")
		return nil
	}

	_, err = r.output.Write(formatter.HistoryToText(rows))
	return err
}
