package tasks

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/t-murch/radio-wash-sub000/internal/models"
	"github.com/t-murch/radio-wash-sub000/internal/repositories"
	"github.com/t-murch/radio-wash-sub000/internal/shared"
	mocks "github.com/t-murch/radio-wash-sub000/internal/testing"
)

func TestWorkerTick(t *testing.T) {
	t.Run("processes pending jobs", func(t *testing.T) {
		db := setupTestDB(t)
		user := createTestUser(t, db, false)

		catalog := &mocks.MockCatalog{
			Playlists: []models.Playlist{{ID: "p1", Name: "Mix"}},
			Tracks: map[string][]models.Track{
				"p1": {{ID: "s1", Name: "Alpha", Explicit: false}},
			},
		}

		jobs := repositories.NewCleanJobRepository(db)
		configs := repositories.NewSyncConfigRepository(db)
		cleaner := testCleaner(t, db, catalog, nil)
		syncer := testSyncer(t, db, catalog)

		job, err := cleaner.CreateJob(context.Background(), user.ID(), "p1", "")
		if err != nil {
			t.Fatalf("failed to create job: %v", err)
		}

		worker := NewWorker(cleaner, syncer, jobs, configs, time.Minute, shared.NewLogger(io.Discard))
		worker.Tick(context.Background())

		done, err := jobs.Get(job.ID())
		if err != nil {
			t.Fatalf("failed to reload job: %v", err)
		}
		if done.Status() != models.JobStatusCompleted {
			t.Errorf("expected completed, got %s", done.Status())
		}
	})

	t.Run("runs due syncs and reschedules them", func(t *testing.T) {
		db := setupTestDB(t)
		user := createTestUser(t, db, true)
		catalog := &mocks.MockCatalog{}

		job := completedJob(t, db, catalog, user.ID(), []models.Track{
			{ID: "s1", Name: "Alpha", Explicit: false},
		})

		jobs := repositories.NewCleanJobRepository(db)
		configs := repositories.NewSyncConfigRepository(db)
		cleaner := testCleaner(t, db, catalog, nil)
		syncer := testSyncer(t, db, catalog)

		config, err := syncer.EnableSync(context.Background(), user.ID(), job.ID(), models.FrequencyDaily)
		if err != nil {
			t.Fatalf("failed to enable sync: %v", err)
		}

		worker := NewWorker(cleaner, syncer, jobs, configs, time.Minute, shared.NewLogger(io.Discard))
		worker.Tick(context.Background())

		reloaded, err := configs.Get(config.ID())
		if err != nil {
			t.Fatalf("failed to reload config: %v", err)
		}
		if reloaded.NextSyncAt() == nil || !reloaded.NextSyncAt().After(time.Now()) {
			t.Error("expected sync rescheduled into the future")
		}

		due, err := configs.ListDue(time.Now())
		if err != nil {
			t.Fatalf("failed to list due configs: %v", err)
		}
		if len(due) != 0 {
			t.Errorf("expected no configs still due, got %d", len(due))
		}
	})
}
