package tasks

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"testing"

	"github.com/t-murch/radio-wash-sub000/internal/models"
	"github.com/t-murch/radio-wash-sub000/internal/repositories"
	"github.com/t-murch/radio-wash-sub000/internal/shared"
	mocks "github.com/t-murch/radio-wash-sub000/internal/testing"
)

func testSyncer(t *testing.T, db *sql.DB, catalog *mocks.MockCatalog) *Syncer {
	t.Helper()

	return NewSyncer(
		catalog,
		repositories.NewCleanJobRepository(db),
		repositories.NewTrackMappingRepository(db),
		repositories.NewSyncConfigRepository(db),
		repositories.NewSyncHistoryRepository(db),
		repositories.NewUserRepository(db),
		shared.NewLogger(io.Discard),
	)
}

// completedJob runs a clean job over the given source tracks and returns it.
func completedJob(t *testing.T, db *sql.DB, catalog *mocks.MockCatalog, userID string, tracks []models.Track) *models.CleanJob {
	t.Helper()

	if catalog.Tracks == nil {
		catalog.Tracks = map[string][]models.Track{}
	}
	catalog.Playlists = append(catalog.Playlists, models.Playlist{ID: "src", Name: "Source", TrackCount: len(tracks)})
	catalog.Tracks["src"] = tracks

	cleaner := testCleaner(t, db, catalog, nil)
	job, err := cleaner.CreateJob(context.Background(), userID, "src", "")
	if err != nil {
		t.Fatalf("failed to create job: %v", err)
	}
	if err := cleaner.ProcessJob(context.Background(), job.ID()); err != nil {
		t.Fatalf("failed to process job: %v", err)
	}

	done, err := repositories.NewCleanJobRepository(db).Get(job.ID())
	if err != nil {
		t.Fatalf("failed to reload job: %v", err)
	}
	return done
}

func TestEnableSync(t *testing.T) {
	t.Run("requires entitlement", func(t *testing.T) {
		db := setupTestDB(t)
		user := createTestUser(t, db, false)
		catalog := &mocks.MockCatalog{}
		job := completedJob(t, db, catalog, user.ID(), nil)

		syncer := testSyncer(t, db, catalog)
		_, err := syncer.EnableSync(context.Background(), user.ID(), job.ID(), models.FrequencyDaily)
		if !errors.Is(err, shared.ErrNotEntitled) {
			t.Errorf("expected ErrNotEntitled, got %v", err)
		}
	})

	t.Run("creates active config for completed job", func(t *testing.T) {
		db := setupTestDB(t)
		user := createTestUser(t, db, true)
		catalog := &mocks.MockCatalog{}
		job := completedJob(t, db, catalog, user.ID(), nil)

		syncer := testSyncer(t, db, catalog)
		config, err := syncer.EnableSync(context.Background(), user.ID(), job.ID(), models.FrequencyWeekly)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if !config.Active() {
			t.Error("expected active config")
		}
		if config.Frequency() != models.FrequencyWeekly {
			t.Errorf("expected weekly, got %s", config.Frequency())
		}
		if config.TargetPlaylistID() != job.TargetPlaylistID() {
			t.Errorf("expected target %s, got %s", job.TargetPlaylistID(), config.TargetPlaylistID())
		}
	})

	t.Run("rejects pending job", func(t *testing.T) {
		db := setupTestDB(t)
		user := createTestUser(t, db, true)
		catalog := &mocks.MockCatalog{
			Playlists: []models.Playlist{{ID: "p1", Name: "Mix"}},
		}

		cleaner := testCleaner(t, db, catalog, nil)
		job, err := cleaner.CreateJob(context.Background(), user.ID(), "p1", "")
		if err != nil {
			t.Fatalf("failed to create job: %v", err)
		}

		syncer := testSyncer(t, db, catalog)
		_, err = syncer.EnableSync(context.Background(), user.ID(), job.ID(), models.FrequencyDaily)
		if !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
	})

	t.Run("rejects another user's job", func(t *testing.T) {
		db := setupTestDB(t)
		owner := createTestUser(t, db, true)
		catalog := &mocks.MockCatalog{}
		job := completedJob(t, db, catalog, owner.ID(), nil)

		users := repositories.NewUserRepository(db)
		other := models.NewUser(0, "other@example.com", "Other")
		other.SetPremium(true)
		if err := users.Create(other); err != nil {
			t.Fatalf("failed to create user: %v", err)
		}

		syncer := testSyncer(t, db, catalog)
		_, err := syncer.EnableSync(context.Background(), other.ID(), job.ID(), models.FrequencyDaily)
		if !errors.Is(err, shared.ErrAccessDenied) {
			t.Errorf("expected ErrAccessDenied, got %v", err)
		}
	})

	t.Run("invalid frequency", func(t *testing.T) {
		db := setupTestDB(t)
		syncer := testSyncer(t, db, &mocks.MockCatalog{})

		_, err := syncer.EnableSync(context.Background(), "u1", "j1", "hourly")
		if !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
	})

	t.Run("re-enabling reactivates existing config", func(t *testing.T) {
		db := setupTestDB(t)
		user := createTestUser(t, db, true)
		catalog := &mocks.MockCatalog{}
		job := completedJob(t, db, catalog, user.ID(), nil)

		syncer := testSyncer(t, db, catalog)
		first, err := syncer.EnableSync(context.Background(), user.ID(), job.ID(), models.FrequencyDaily)
		if err != nil {
			t.Fatalf("failed to enable sync: %v", err)
		}

		if err := syncer.DisableSync(context.Background(), user.ID(), first.ID()); err != nil {
			t.Fatalf("failed to disable sync: %v", err)
		}

		second, err := syncer.EnableSync(context.Background(), user.ID(), job.ID(), models.FrequencyMonthly)
		if err != nil {
			t.Fatalf("failed to re-enable sync: %v", err)
		}

		if second.ID() != first.ID() {
			t.Errorf("expected the same config, got %s and %s", first.ID(), second.ID())
		}
		if !second.Active() || second.Frequency() != models.FrequencyMonthly {
			t.Errorf("expected active monthly config, got active=%v frequency=%s", second.Active(), second.Frequency())
		}
	})
}

func TestSyncNow(t *testing.T) {
	cleanTrack := func(id, name string) models.Track {
		return models.Track{ID: id, Name: name, Artists: []string{"Artist"}, Explicit: false}
	}

	setup := func(t *testing.T) (*sql.DB, *mocks.MockCatalog, *Syncer, *models.User, *models.SyncConfig) {
		t.Helper()

		db := setupTestDB(t)
		user := createTestUser(t, db, true)
		catalog := &mocks.MockCatalog{}

		tracks := []models.Track{cleanTrack("s1", "Alpha"), cleanTrack("s2", "Beta")}
		job := completedJob(t, db, catalog, user.ID(), tracks)

		syncer := testSyncer(t, db, catalog)
		config, err := syncer.EnableSync(context.Background(), user.ID(), job.ID(), models.FrequencyDaily)
		if err != nil {
			t.Fatalf("failed to enable sync: %v", err)
		}

		return db, catalog, syncer, user, config
	}

	t.Run("unchanged playlists yield empty run", func(t *testing.T) {
		db, _, syncer, user, config := setup(t)

		result, err := syncer.SyncNow(context.Background(), user.ID(), config.ID())
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if result.Added != 0 || result.Removed != 0 {
			t.Errorf("expected no changes, got %+v", result)
		}
		if result.Unchanged != 2 {
			t.Errorf("expected 2 unchanged, got %d", result.Unchanged)
		}

		histories, err := repositories.NewSyncHistoryRepository(db).ListByConfig(config.ID(), 10)
		if err != nil {
			t.Fatalf("failed to list histories: %v", err)
		}
		if len(histories) != 1 {
			t.Fatalf("expected 1 history row, got %d", len(histories))
		}
		if histories[0].Status() != models.SyncStatusCompleted {
			t.Errorf("expected completed history, got %s", histories[0].Status())
		}
	})

	t.Run("removed source track removed from clean playlist once", func(t *testing.T) {
		_, catalog, syncer, user, config := setup(t)

		// Drop Beta from the source.
		catalog.Tracks["src"] = catalog.Tracks["src"][:1]

		result, err := syncer.SyncNow(context.Background(), user.ID(), config.ID())
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if result.Removed != 1 {
			t.Errorf("expected 1 removal, got %d", result.Removed)
		}
		if len(catalog.RemoveCalls) != 1 {
			t.Fatalf("expected exactly one remove call, got %d", len(catalog.RemoveCalls))
		}
		if len(catalog.RemoveCalls[0]) != 1 || catalog.RemoveCalls[0][0] != "s2" {
			t.Errorf("expected s2 removed, got %v", catalog.RemoveCalls[0])
		}
	})

	t.Run("new source track resolved and added with mapping persisted", func(t *testing.T) {
		db, catalog, syncer, user, config := setup(t)

		catalog.Tracks["src"] = append(catalog.Tracks["src"], models.Track{
			ID: "s3", Name: "Gamma", Artists: []string{"Artist"}, Explicit: true,
		})
		catalog.SearchResults = map[string][]models.Track{
			"Gamma": {{ID: "c3", Name: "Gamma", Artists: []string{"Artist"}, Explicit: false}},
		}

		result, err := syncer.SyncNow(context.Background(), user.ID(), config.ID())
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if result.Added != 1 {
			t.Errorf("expected 1 addition, got %d", result.Added)
		}

		mappings, err := repositories.NewTrackMappingRepository(db).ListByJob(config.JobID())
		if err != nil {
			t.Fatalf("failed to list mappings: %v", err)
		}
		if len(mappings) != 3 {
			t.Fatalf("expected 3 mappings after sync, got %d", len(mappings))
		}

		// A second run reuses the stored mapping and searches no further.
		searches := catalog.SearchCalls
		again, err := syncer.SyncNow(context.Background(), user.ID(), config.ID())
		if err != nil {
			t.Fatalf("second run failed: %v", err)
		}
		if again.Added != 0 || again.Removed != 0 {
			t.Errorf("expected empty second run, got %+v", again)
		}
		if catalog.SearchCalls != searches {
			t.Errorf("expected no further searches, got %d extra", catalog.SearchCalls-searches)
		}
	})

	t.Run("entitlement loss disables config", func(t *testing.T) {
		db, _, syncer, user, config := setup(t)

		users := repositories.NewUserRepository(db)
		user.SetPremium(false)
		if err := users.Update(user); err != nil {
			t.Fatalf("failed to downgrade user: %v", err)
		}

		_, err := syncer.SyncNow(context.Background(), user.ID(), config.ID())
		if !errors.Is(err, shared.ErrNotEntitled) {
			t.Fatalf("expected ErrNotEntitled, got %v", err)
		}

		reloaded, err := repositories.NewSyncConfigRepository(db).Get(config.ID())
		if err != nil {
			t.Fatalf("failed to reload config: %v", err)
		}
		if reloaded.Active() {
			t.Error("expected config disabled after entitlement loss")
		}

		// Re-upgrading and re-enabling brings the same config back.
		user.SetPremium(true)
		if err := users.Update(user); err != nil {
			t.Fatalf("failed to upgrade user: %v", err)
		}
		restored, err := syncer.EnableSync(context.Background(), user.ID(), config.JobID(), models.FrequencyDaily)
		if err != nil {
			t.Fatalf("failed to re-enable: %v", err)
		}
		if restored.ID() != config.ID() {
			t.Errorf("expected config %s restored, got %s", config.ID(), restored.ID())
		}
	})

	t.Run("disabled config refuses to run", func(t *testing.T) {
		_, _, syncer, user, config := setup(t)

		if err := syncer.DisableSync(context.Background(), user.ID(), config.ID()); err != nil {
			t.Fatalf("failed to disable: %v", err)
		}

		_, err := syncer.SyncNow(context.Background(), user.ID(), config.ID())
		if !errors.Is(err, shared.ErrSyncDisabled) {
			t.Errorf("expected ErrSyncDisabled, got %v", err)
		}
	})

	t.Run("failed run leaves failed history", func(t *testing.T) {
		db, catalog, syncer, user, config := setup(t)

		catalog.RemoveErr = errors.New("platform rejected removal")
		catalog.Tracks["src"] = catalog.Tracks["src"][:1]

		_, err := syncer.SyncNow(context.Background(), user.ID(), config.ID())
		if err == nil {
			t.Fatal("expected error")
		}

		histories, listErr := repositories.NewSyncHistoryRepository(db).ListByConfig(config.ID(), 10)
		if listErr != nil {
			t.Fatalf("failed to list histories: %v", listErr)
		}
		if len(histories) != 1 {
			t.Fatalf("expected 1 history row, got %d", len(histories))
		}
		if histories[0].Status() != models.SyncStatusFailed {
			t.Errorf("expected failed history, got %s", histories[0].Status())
		}
		if histories[0].ErrorMessage() == "" {
			t.Error("expected error message on failed history")
		}
	})

	t.Run("config advances schedule after run", func(t *testing.T) {
		db, _, syncer, user, config := setup(t)

		if _, err := syncer.SyncNow(context.Background(), user.ID(), config.ID()); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		reloaded, err := repositories.NewSyncConfigRepository(db).Get(config.ID())
		if err != nil {
			t.Fatalf("failed to reload config: %v", err)
		}

		if reloaded.LastSyncedAt() == nil {
			t.Fatal("expected last synced timestamp")
		}
		if reloaded.NextSyncAt() == nil {
			t.Fatal("expected next sync timestamp")
		}
		interval := reloaded.NextSyncAt().Sub(*reloaded.LastSyncedAt())
		if interval.Hours() < 23 || interval.Hours() > 25 {
			t.Errorf("expected roughly a day between runs, got %v", interval)
		}
	})
}
