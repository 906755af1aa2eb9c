package main

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/t-murch/radio-wash-sub000/internal/formatter"
	"github.com/t-murch/radio-wash-sub000/internal/repositories"
	"github.com/t-murch/radio-wash-sub000/internal/shared"
	"github.com/urfave/cli/v3"
)

// JobsCreate queues a clean copy of a playlist, optionally processing it immediately.
func (r *Runner) JobsCreate(ctx context.Context, cmd *cli.Command) error {
	playlistID := cmd.StringArg("playlist")
	targetName := cmd.String("name")
	runNow := cmd.Bool("run")

	if playlistID == "" {
		return fmt.Errorf("%w: playlist ID is required", shared.ErrMissingArgument)
	}

	db, err := r.database()
	if err != nil {
		return err
	}

	user, err := r.currentUser(ctx, db)
	if err != nil {
		return err
	}

	cleaner := r.cleaner(db, r.notifier())

	job, err := cleaner.CreateJob(ctx, user.ID(), playlistID, targetName)
	if err != nil {
		return fmt.Errorf("failed to create job: %w", err)
	}

	r.writePlain("✓ Job created: %s\n", job.ID())
	r.writePlain("  Source: %s\n", job.SourcePlaylistName())
	r.writePlain("  Target: %s\n", job.TargetPlaylistName())

	if !runNow {
		r.writePlain("\nRun 'radiowash jobs process %s' to build the cleaned playlist.\n", job.ID())
		return nil
	}

	r.writePlainln("\nProcessing...")
	if err := cleaner.ProcessJob(ctx, job.ID()); err != nil {
		return fmt.Errorf("job failed: %w", err)
	}

	return r.showJobSummary(job.ID(), db)
}

// JobsProcess runs a pending job to completion.
func (r *Runner) JobsProcess(ctx context.Context, cmd *cli.Command) error {
	jobID := cmd.StringArg("id")
	if jobID == "" {
		return fmt.Errorf("%w: job ID is required", shared.ErrMissingArgument)
	}

	db, err := r.database()
	if err != nil {
		return err
	}

	cleaner := r.cleaner(db, r.notifier())

	r.logger.Infof("processing job %v", jobID)
	if err := cleaner.ProcessJob(ctx, jobID); err != nil {
		return fmt.Errorf("job failed: %w", err)
	}

	return r.showJobSummary(jobID, db)
}

// JobsList lists the current user's jobs, optionally filtered by status.
func (r *Runner) JobsList(ctx context.Context, cmd *cli.Command) error {
	status := cmd.String("status")
	useJSON := cmd.Bool("json")

	db, err := r.database()
	if err != nil {
		return err
	}

	user, err := r.currentUser(ctx, db)
	if err != nil {
		return err
	}

	criteria := map[string]any{"user_id": user.ID()}
	if status != "" {
		criteria["status"] = status
	}

	jobs := repositories.NewCleanJobRepository(db)
	results, err := jobs.List(criteria)
	if err != nil {
		return fmt.Errorf("failed to list jobs: %w", err)
	}

	if useJSON {
		items := make([]map[string]any, 0, len(results))
		for _, j := range results {
			items = append(items, map[string]any{
				"id":      j.ID(),
				"source":  j.SourcePlaylistName(),
				"target":  j.TargetPlaylistName(),
				"status":  j.Status(),
				"total":   j.TotalTracks(),
				"matched": j.MatchedTracks(),
				"created": j.CreatedAt(),
			})
		}
		return r.writeJSON(items, true)
	}

	if len(results) == 0 {
		r.writePlainln("No jobs found.")
		return nil
	}

	r.writePlain("Found %d jobs:\n\n", len(results))
	for i, j := range results {
		r.writePlain("%d. %s [%s]\n", i+1, j.TargetPlaylistName(), j.Status())
		r.writePlain("   ID: %s\n", j.ID())
		r.writePlain("   Source: %s\n", j.SourcePlaylistName())
		if j.TotalTracks() > 0 {
			r.writePlain("   Matched: %d/%d tracks\n", j.MatchedTracks(), j.TotalTracks())
		}
		if j.ErrorMessage() != "" {
			r.writePlain("   Error: %s\n", j.ErrorMessage())
		}
		r.writePlain("\n")
	}

	return nil
}

// JobsShow prints a job with its track mappings, optionally exporting report files.
func (r *Runner) JobsShow(ctx context.Context, cmd *cli.Command) error {
	jobID := cmd.StringArg("id")
	base := cmd.String("output")

	if jobID == "" {
		return fmt.Errorf("%w: job ID is required", shared.ErrMissingArgument)
	}

	db, err := r.database()
	if err != nil {
		return err
	}

	jobs := repositories.NewCleanJobRepository(db)
	mappings := repositories.NewTrackMappingRepository(db)

	job, err := jobs.Get(jobID)
	if err != nil {
		return err
	}

	rows, err := mappings.ListByJob(jobID)
	if err != nil {
		return err
	}

	if base != "" {
		files, err := formatter.WriteJobReport(job, rows, base)
		if err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
		for _, f := range files {
			r.writePlain("✓ Wrote %s\n", f)
		}
		return nil
	}

	md, err := formatter.JobToMarkdown(job, rows)
	if err != nil {
		return err
	}
	_, err = r.output.Write(md)
	return err
}

// showJobSummary reloads a job and prints its final state.
func (r *Runner) showJobSummary(jobID string, db *sql.DB) error {
	jobs := repositories.NewCleanJobRepository(db)
	job, err := jobs.Get(jobID)
	if err != nil {
		return err
	}

	r.output.Write(formatter.JobToText(job))
	return nil
}
