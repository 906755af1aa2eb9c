package tasks

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/t-murch/radio-wash-sub000/internal/models"
	"github.com/t-murch/radio-wash-sub000/internal/repositories"
	"github.com/t-murch/radio-wash-sub000/internal/services"
	"github.com/t-murch/radio-wash-sub000/internal/shared"
)

// SyncResult summarizes one sync run.
type SyncResult struct {
	Added     int
	Removed   int
	Unchanged int
	Duration  time.Duration
}

// Syncer keeps cleaned playlists in step with their sources. Sync is a
// premium feature: every entry point checks entitlement, and a user who
// loses it has their configs disabled rather than deleted.
type Syncer struct {
	catalog   services.Catalog
	resolver  *CleanResolver
	jobs      *repositories.CleanJobRepository
	mappings  *repositories.TrackMappingRepository
	configs   *repositories.SyncConfigRepository
	histories *repositories.SyncHistoryRepository
	users     *repositories.UserRepository
	logger    *log.Logger
}

// NewSyncer wires a syncer from its collaborators.
func NewSyncer(catalog services.Catalog, jobs *repositories.CleanJobRepository, mappings *repositories.TrackMappingRepository, configs *repositories.SyncConfigRepository, histories *repositories.SyncHistoryRepository, users *repositories.UserRepository, logger *log.Logger) *Syncer {
	return &Syncer{
		catalog:   catalog,
		resolver:  NewCleanResolver(catalog),
		jobs:      jobs,
		mappings:  mappings,
		configs:   configs,
		histories: histories,
		users:     users,
		logger:    logger,
	}
}

// EnableSync turns on scheduled syncing for a completed job. Re-enabling a
// job that already has a config reactivates it instead of creating a second
// one; the frequency is updated either way.
func (s *Syncer) EnableSync(ctx context.Context, userID, jobID, frequency string) (*models.SyncConfig, error) {
	if _, err := models.ParseFrequency(frequency); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}

	if err := s.checkEntitled(userID); err != nil {
		return nil, err
	}

	job, err := s.jobs.Get(jobID)
	if err != nil {
		return nil, err
	}
	if job.UserID() != userID {
		return nil, fmt.Errorf("%w: job %s does not belong to user", shared.ErrAccessDenied, jobID)
	}
	if job.Status() != models.JobStatusCompleted {
		return nil, fmt.Errorf("%w: job %s is %s, only completed jobs can sync", shared.ErrInvalidInput, jobID, job.Status())
	}

	existing, err := s.configs.GetByJobID(jobID)
	if err != nil && !errors.Is(err, shared.ErrConfigNotFound) {
		return nil, err
	}
	if err == nil {
		existing.SetActive(true)
		existing.SetFrequency(frequency)
		if err := s.configs.Update(existing); err != nil {
			return nil, err
		}
		s.logger.Info("sync re-enabled", "config", existing.ID(), "job", jobID, "frequency", frequency)
		return existing, nil
	}

	config := models.NewSyncConfig(0, jobID, userID, job.SourcePlaylistID(), job.TargetPlaylistID(), frequency)
	if err := s.configs.Create(config); err != nil {
		return nil, err
	}

	s.logger.Info("sync enabled", "config", config.ID(), "job", jobID, "frequency", frequency)
	return config, nil
}

// DisableSync deactivates a config. The config and its history survive so
// syncing can be resumed later without losing the mapping memory.
func (s *Syncer) DisableSync(ctx context.Context, userID, configID string) error {
	config, err := s.configs.Get(configID)
	if err != nil {
		return err
	}
	if config.UserID() != userID {
		return fmt.Errorf("%w: config %s does not belong to user", shared.ErrAccessDenied, configID)
	}

	config.SetActive(false)
	if err := s.configs.Update(config); err != nil {
		return err
	}

	s.logger.Info("sync disabled", "config", configID)
	return nil
}

// SyncNow runs one sync for a config immediately. A user who has lost
// entitlement gets the config disabled and ErrNotEntitled back.
func (s *Syncer) SyncNow(ctx context.Context, userID, configID string) (*SyncResult, error) {
	config, err := s.configs.Get(configID)
	if err != nil {
		return nil, err
	}
	if config.UserID() != userID {
		return nil, fmt.Errorf("%w: config %s does not belong to user", shared.ErrAccessDenied, configID)
	}

	return s.Run(ctx, config)
}

// Run executes one sync for a config: compute the delta between source and
// cleaned playlist, resolve newly discovered tracks, and apply the changes.
// Every attempt leaves exactly one history row, finalized once.
func (s *Syncer) Run(ctx context.Context, config *models.SyncConfig) (*SyncResult, error) {
	if !config.Active() {
		return nil, fmt.Errorf("%w: config %s", shared.ErrSyncDisabled, config.ID())
	}

	if err := s.checkEntitled(config.UserID()); err != nil {
		config.SetActive(false)
		if updateErr := s.configs.Update(config); updateErr != nil {
			s.logger.Error("failed to disable config after entitlement loss", "config", config.ID(), "error", updateErr)
		}
		return nil, err
	}

	history := models.NewSyncHistory(config.ID(), config.JobID())
	if err := s.histories.Create(history); err != nil {
		return nil, err
	}

	result, err := s.apply(ctx, config, history)
	if err != nil {
		history.Finalize(models.SyncStatusFailed, err.Error())
		if finalizeErr := s.histories.Finalize(history); finalizeErr != nil {
			s.logger.Error("failed to finalize sync history", "history", history.ID(), "error", finalizeErr)
		}
		return nil, err
	}

	history.SetCounts(result.Added, result.Removed, result.Unchanged)
	history.Finalize(models.SyncStatusCompleted, "")
	if err := s.histories.Finalize(history); err != nil {
		return nil, err
	}
	result.Duration = history.Duration()

	if err := config.Advance(history.StartedAt()); err != nil {
		return nil, err
	}
	if err := s.configs.Update(config); err != nil {
		return nil, err
	}

	s.logger.Info("sync completed",
		"config", config.ID(),
		"added", result.Added,
		"removed", result.Removed,
		"unchanged", result.Unchanged,
	)
	return result, nil
}

func (s *Syncer) apply(ctx context.Context, config *models.SyncConfig, history *models.SyncHistory) (*SyncResult, error) {
	source, err := s.catalog.GetPlaylistTracks(ctx, config.SourcePlaylistID())
	if err != nil {
		return nil, fmt.Errorf("failed to fetch source tracks: %w", err)
	}

	target, err := s.catalog.GetPlaylistTracks(ctx, config.TargetPlaylistID())
	if err != nil {
		return nil, fmt.Errorf("failed to fetch cleaned playlist tracks: %w", err)
	}

	mappings, err := s.mappings.ListByJob(config.JobID())
	if err != nil {
		return nil, err
	}

	delta := ComputeDelta(source, target, mappings)

	if len(delta.NewlyDiscovered) > 0 {
		added, err := s.resolveNew(ctx, config, delta.NewlyDiscovered, len(mappings))
		if err != nil {
			return nil, err
		}
		delta.ToAdd = append(delta.ToAdd, added...)
	}

	for _, chunk := range chunked(delta.ToAdd) {
		if err := s.catalog.AddTracks(ctx, config.TargetPlaylistID(), chunk); err != nil {
			return nil, fmt.Errorf("failed to add tracks: %w", err)
		}
	}

	for _, chunk := range chunked(delta.ToRemove) {
		if err := s.catalog.RemoveTracks(ctx, config.TargetPlaylistID(), chunk); err != nil {
			return nil, fmt.Errorf("failed to remove tracks: %w", err)
		}
	}

	return &SyncResult{
		Added:     len(delta.ToAdd),
		Removed:   len(delta.ToRemove),
		Unchanged: delta.Unchanged,
	}, nil
}

// resolveNew resolves tracks that joined the source playlist after the job
// ran, persists their mappings, and returns the target IDs that need adding.
func (s *Syncer) resolveNew(ctx context.Context, config *models.SyncConfig, discovered []models.Track, nextPosition int) ([]string, error) {
	var newMappings []*models.TrackMapping
	var toAdd []string

	for i, track := range discovered {
		mapping := models.NewTrackMapping(config.JobID(), nextPosition+i, track)

		clean, err := s.resolver.Resolve(ctx, track)
		if err != nil {
			s.logger.Warn("clean lookup failed during sync, recording as unmatched", "config", config.ID(), "track", track.Name, "error", err)
		} else if clean != nil {
			mapping.SetMatch(*clean)
			toAdd = append(toAdd, clean.ID)
		}

		newMappings = append(newMappings, mapping)
	}

	if err := s.mappings.CreateBatch(newMappings); err != nil {
		return nil, fmt.Errorf("failed to persist new mappings: %w", err)
	}

	return toAdd, nil
}

func (s *Syncer) checkEntitled(userID string) error {
	entitled, err := s.users.IsEntitled(userID)
	if err != nil {
		return err
	}
	if !entitled {
		return fmt.Errorf("%w: user %s", shared.ErrNotEntitled, userID)
	}
	return nil
}
