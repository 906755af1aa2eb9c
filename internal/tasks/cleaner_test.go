package tasks

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/t-murch/radio-wash-sub000/internal/models"
	"github.com/t-murch/radio-wash-sub000/internal/repositories"
	"github.com/t-murch/radio-wash-sub000/internal/shared"
	mocks "github.com/t-murch/radio-wash-sub000/internal/testing"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		t.Fatalf("failed to enable foreign keys: %v", err)
	}

	if err := shared.RunMigrations(db); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	return db
}

func createTestUser(t *testing.T, db *sql.DB, premium bool) *models.User {
	t.Helper()

	users := repositories.NewUserRepository(db)
	user := models.NewUser(0, "listener@example.com", "Listener")
	user.SetPremium(premium)
	if err := users.Create(user); err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	return user
}

func testCleaner(t *testing.T, db *sql.DB, catalog *mocks.MockCatalog, notifier Notifier) *Cleaner {
	t.Helper()

	return NewCleaner(
		catalog,
		repositories.NewCleanJobRepository(db),
		repositories.NewTrackMappingRepository(db),
		notifier,
		shared.NewLogger(io.Discard),
	)
}

// countingNotifier records every update it receives.
type countingNotifier struct {
	updates []ProgressUpdate
}

func (n *countingNotifier) Notify(ctx context.Context, update ProgressUpdate) error {
	n.updates = append(n.updates, update)
	return nil
}

func TestCreateJob(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db, false)

	catalog := &mocks.MockCatalog{
		Playlists: []models.Playlist{{ID: "p1", Name: "Road Trip", TrackCount: 3}},
	}
	cleaner := testCleaner(t, db, catalog, nil)

	t.Run("creates pending job with default target name", func(t *testing.T) {
		job, err := cleaner.CreateJob(context.Background(), user.ID(), "p1", "")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if job.Status() != models.JobStatusPending {
			t.Errorf("expected pending status, got %s", job.Status())
		}
		if job.TargetPlaylistName() != "Road Trip (Clean)" {
			t.Errorf("unexpected target name: %s", job.TargetPlaylistName())
		}
	})

	t.Run("unknown playlist is rejected", func(t *testing.T) {
		_, err := cleaner.CreateJob(context.Background(), user.ID(), "missing", "")
		if err == nil {
			t.Error("expected error for unknown playlist")
		}
	})

	t.Run("missing user is invalid input", func(t *testing.T) {
		_, err := cleaner.CreateJob(context.Background(), "", "p1", "")
		if !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
	})
}

func TestProcessJob(t *testing.T) {
	t.Run("cleans a playlist end to end", func(t *testing.T) {
		db := setupTestDB(t)
		user := createTestUser(t, db, false)

		catalog := &mocks.MockCatalog{
			Playlists: []models.Playlist{{ID: "p1", Name: "Mix", TrackCount: 3}},
			Tracks: map[string][]models.Track{
				"p1": {
					{ID: "s1", Name: "Alpha", Artists: []string{"One"}, Explicit: true},
					{ID: "s2", Name: "Beta", Artists: []string{"Two"}, Explicit: false},
					{ID: "s3", Name: "Gamma", Artists: []string{"Three"}, Explicit: true},
				},
			},
			SearchResults: map[string][]models.Track{
				"Alpha": {{ID: "c1", Name: "Alpha", Artists: []string{"One"}, Explicit: false}},
				// Gamma has no clean version.
			},
		}

		notifier := &countingNotifier{}
		cleaner := testCleaner(t, db, catalog, notifier)

		job, err := cleaner.CreateJob(context.Background(), user.ID(), "p1", "")
		if err != nil {
			t.Fatalf("failed to create job: %v", err)
		}

		if err := cleaner.ProcessJob(context.Background(), job.ID()); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		jobs := repositories.NewCleanJobRepository(db)
		done, err := jobs.Get(job.ID())
		if err != nil {
			t.Fatalf("failed to reload job: %v", err)
		}

		if done.Status() != models.JobStatusCompleted {
			t.Errorf("expected completed, got %s", done.Status())
		}
		if done.TotalTracks() != 3 || done.ProcessedTracks() != 3 {
			t.Errorf("expected 3/3 processed, got %d/%d", done.ProcessedTracks(), done.TotalTracks())
		}
		if done.MatchedTracks() != 2 {
			t.Errorf("expected 2 matched (clean original + found substitute), got %d", done.MatchedTracks())
		}
		if done.TargetPlaylistID() == "" {
			t.Error("expected target playlist to be recorded")
		}

		mappings := repositories.NewTrackMappingRepository(db)
		stored, err := mappings.ListByJob(job.ID())
		if err != nil {
			t.Fatalf("failed to list mappings: %v", err)
		}
		if len(stored) != 3 {
			t.Fatalf("expected 3 mappings, got %d", len(stored))
		}
		if !stored[0].HasCleanMatch() || stored[0].TargetTrackID() != "c1" {
			t.Errorf("expected Alpha mapped to c1, got %+v", stored[0])
		}
		if !stored[1].HasCleanMatch() || stored[1].TargetTrackID() != "s2" {
			t.Errorf("expected Beta mapped to itself, got %+v", stored[1])
		}
		if stored[2].HasCleanMatch() {
			t.Error("expected Gamma unmatched")
		}

		// The cleaned playlist carries both matches, in source order.
		if len(catalog.AddCalls) != 1 {
			t.Fatalf("expected one add call, got %d", len(catalog.AddCalls))
		}
		added := catalog.AddCalls[0]
		if len(added) != 2 || added[0] != "c1" || added[1] != "s2" {
			t.Errorf("unexpected tracks added: %v", added)
		}

		if len(notifier.updates) == 0 {
			t.Fatal("expected progress updates")
		}
		last := notifier.updates[len(notifier.updates)-1]
		if last.Percent != 100 {
			t.Errorf("expected final update at 100%%, got %d", last.Percent)
		}
	})

	t.Run("completed job is a no-op", func(t *testing.T) {
		db := setupTestDB(t)
		user := createTestUser(t, db, false)

		catalog := &mocks.MockCatalog{
			Playlists: []models.Playlist{{ID: "p1", Name: "Mix"}},
		}
		cleaner := testCleaner(t, db, catalog, nil)

		job, err := cleaner.CreateJob(context.Background(), user.ID(), "p1", "")
		if err != nil {
			t.Fatalf("failed to create job: %v", err)
		}

		if err := cleaner.ProcessJob(context.Background(), job.ID()); err != nil {
			t.Fatalf("first run failed: %v", err)
		}
		created := len(catalog.CreatedNames)

		if err := cleaner.ProcessJob(context.Background(), job.ID()); err != nil {
			t.Fatalf("expected no-op, got %v", err)
		}
		if len(catalog.CreatedNames) != created {
			t.Error("expected no second playlist to be created")
		}
	})

	t.Run("failed job records verbatim message", func(t *testing.T) {
		db := setupTestDB(t)
		user := createTestUser(t, db, false)

		createErr := errors.New("playlist quota exceeded")
		catalog := &mocks.MockCatalog{
			Playlists: []models.Playlist{{ID: "p1", Name: "Mix"}},
			Tracks: map[string][]models.Track{
				"p1": {{ID: "s1", Name: "Alpha", Explicit: false}},
			},
			CreateErr: createErr,
		}
		cleaner := testCleaner(t, db, catalog, nil)

		job, err := cleaner.CreateJob(context.Background(), user.ID(), "p1", "")
		if err != nil {
			t.Fatalf("failed to create job: %v", err)
		}

		err = cleaner.ProcessJob(context.Background(), job.ID())
		if !errors.Is(err, createErr) {
			t.Fatalf("expected create error, got %v", err)
		}

		jobs := repositories.NewCleanJobRepository(db)
		failed, getErr := jobs.Get(job.ID())
		if getErr != nil {
			t.Fatalf("failed to reload job: %v", getErr)
		}

		if failed.Status() != models.JobStatusFailed {
			t.Errorf("expected failed status, got %s", failed.Status())
		}
		if failed.ErrorMessage() != err.Error() {
			t.Errorf("expected message %q, got %q", err.Error(), failed.ErrorMessage())
		}
	})

	t.Run("persistence failure fails the job without partial rows", func(t *testing.T) {
		db := setupTestDB(t)
		user := createTestUser(t, db, false)

		catalog := &mocks.MockCatalog{
			Playlists: []models.Playlist{{ID: "p1", Name: "Mix", TrackCount: 2}},
			Tracks: map[string][]models.Track{
				"p1": {
					{ID: "s1", Name: "Alpha", Artists: []string{"One"}, Explicit: false},
					{ID: "s2", Name: "Beta", Artists: []string{"Two"}, Explicit: false},
				},
			},
		}
		cleaner := testCleaner(t, db, catalog, nil)

		job, err := cleaner.CreateJob(context.Background(), user.ID(), "p1", "")
		if err != nil {
			t.Fatalf("failed to create job: %v", err)
		}

		// Make every mapping insert abort its transaction.
		if _, err := db.Exec(`CREATE TRIGGER reject_mapping_writes
			BEFORE INSERT ON track_mappings
			BEGIN SELECT RAISE(ABORT, 'disk I/O error'); END`); err != nil {
			t.Fatalf("failed to create trigger: %v", err)
		}

		if err := cleaner.ProcessJob(context.Background(), job.ID()); err == nil {
			t.Fatal("expected persistence failure to surface")
		}

		jobs := repositories.NewCleanJobRepository(db)
		failed, getErr := jobs.Get(job.ID())
		if getErr != nil {
			t.Fatalf("failed to reload job: %v", getErr)
		}

		if failed.Status() != models.JobStatusFailed {
			t.Errorf("expected failed status, got %s", failed.Status())
		}
		if failed.ErrorMessage() == "" {
			t.Error("expected a failure message on the job")
		}

		var rows int
		if err := db.QueryRow("SELECT COUNT(*) FROM track_mappings WHERE job_id = ?", job.ID()).Scan(&rows); err != nil {
			t.Fatalf("failed to count mappings: %v", err)
		}
		if rows != 0 {
			t.Errorf("expected no mapping rows after rollback, got %d", rows)
		}
	})

	t.Run("trailing tracks without IDs still count as processed", func(t *testing.T) {
		db := setupTestDB(t)
		user := createTestUser(t, db, false)

		catalog := &mocks.MockCatalog{
			Playlists: []models.Playlist{{ID: "p1", Name: "Mix", TrackCount: 3}},
			Tracks: map[string][]models.Track{
				"p1": {
					{ID: "s1", Name: "Alpha", Artists: []string{"One"}, Explicit: false},
					{Name: "Local File One"},
					{Name: "Local File Two"},
				},
			},
		}
		cleaner := testCleaner(t, db, catalog, nil)

		job, err := cleaner.CreateJob(context.Background(), user.ID(), "p1", "")
		if err != nil {
			t.Fatalf("failed to create job: %v", err)
		}

		if err := cleaner.ProcessJob(context.Background(), job.ID()); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		jobs := repositories.NewCleanJobRepository(db)
		done, getErr := jobs.Get(job.ID())
		if getErr != nil {
			t.Fatalf("failed to reload job: %v", getErr)
		}

		if done.ProcessedTracks() != 3 {
			t.Errorf("expected all 3 tracks counted as processed, got %d", done.ProcessedTracks())
		}
	})

	t.Run("failed job cannot be reprocessed", func(t *testing.T) {
		db := setupTestDB(t)
		user := createTestUser(t, db, false)

		catalog := &mocks.MockCatalog{
			Playlists: []models.Playlist{{ID: "p1", Name: "Mix"}},
			CreateErr: errors.New("boom"),
		}
		cleaner := testCleaner(t, db, catalog, nil)

		job, err := cleaner.CreateJob(context.Background(), user.ID(), "p1", "")
		if err != nil {
			t.Fatalf("failed to create job: %v", err)
		}

		if err := cleaner.ProcessJob(context.Background(), job.ID()); err == nil {
			t.Fatal("expected first run to fail")
		}

		err = cleaner.ProcessJob(context.Background(), job.ID())
		if !errors.Is(err, shared.ErrJobNotPending) {
			t.Errorf("expected ErrJobNotPending, got %v", err)
		}
	})

	t.Run("unknown job", func(t *testing.T) {
		db := setupTestDB(t)
		cleaner := testCleaner(t, db, &mocks.MockCatalog{}, nil)

		err := cleaner.ProcessJob(context.Background(), "nope")
		if !errors.Is(err, shared.ErrJobNotFound) {
			t.Errorf("expected ErrJobNotFound, got %v", err)
		}
	})

	t.Run("large playlist chunks mutation calls", func(t *testing.T) {
		db := setupTestDB(t)
		user := createTestUser(t, db, false)

		var tracks []models.Track
		for i := 0; i < 250; i++ {
			tracks = append(tracks, models.Track{
				ID:       shared.GenerateID(),
				Name:     "Clean Song",
				Artists:  []string{"Artist"},
				Explicit: false,
			})
		}

		catalog := &mocks.MockCatalog{
			Playlists: []models.Playlist{{ID: "p1", Name: "Big", TrackCount: 250}},
			Tracks:    map[string][]models.Track{"p1": tracks},
		}
		cleaner := testCleaner(t, db, catalog, nil)

		job, err := cleaner.CreateJob(context.Background(), user.ID(), "p1", "")
		if err != nil {
			t.Fatalf("failed to create job: %v", err)
		}

		if err := cleaner.ProcessJob(context.Background(), job.ID()); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if len(catalog.AddCalls) != 3 {
			t.Fatalf("expected 3 add calls for 250 tracks, got %d", len(catalog.AddCalls))
		}
		for i, call := range catalog.AddCalls {
			if len(call) > 100 {
				t.Errorf("call %d exceeds 100 tracks: %d", i, len(call))
			}
		}
	})
}
