package tasks

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/t-murch/radio-wash-sub000/internal/models"
	"github.com/t-murch/radio-wash-sub000/internal/repositories"
	"github.com/t-murch/radio-wash-sub000/internal/services"
	"github.com/t-murch/radio-wash-sub000/internal/shared"
)

// chunkSize is the most tracks a single playlist mutation call may carry.
const chunkSize = 100

// Cleaner drives clean-playlist jobs end to end: it walks the source
// playlist, resolves clean substitutes, persists mappings in batches, and
// materializes the cleaned playlist on the platform.
type Cleaner struct {
	catalog  services.Catalog
	resolver *CleanResolver
	jobs     *repositories.CleanJobRepository
	mappings *repositories.TrackMappingRepository
	notifier Notifier
	logger   *log.Logger
}

// NewCleaner wires a cleaner from its collaborators. The notifier may be nil.
func NewCleaner(catalog services.Catalog, jobs *repositories.CleanJobRepository, mappings *repositories.TrackMappingRepository, notifier Notifier, logger *log.Logger) *Cleaner {
	return &Cleaner{
		catalog:  catalog,
		resolver: NewCleanResolver(catalog),
		jobs:     jobs,
		mappings: mappings,
		notifier: notifier,
		logger:   logger,
	}
}

// CreateJob validates the source playlist against the catalog and records a
// pending job. The target name defaults to "<source> (Clean)".
func (c *Cleaner) CreateJob(ctx context.Context, userID, sourcePlaylistID, targetName string) (*models.CleanJob, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: user ID is required", shared.ErrInvalidInput)
	}
	if sourcePlaylistID == "" {
		return nil, fmt.Errorf("%w: source playlist ID is required", shared.ErrInvalidInput)
	}

	playlist, err := c.catalog.GetPlaylist(ctx, sourcePlaylistID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up source playlist: %w", err)
	}

	if targetName == "" {
		targetName = fmt.Sprintf("%s (Clean)", playlist.Name)
	}

	job := models.NewCleanJob(0, userID, playlist.ID, playlist.Name, targetName)
	if err := c.jobs.Create(job); err != nil {
		return nil, err
	}

	c.logger.Info("created clean job", "job", job.ID(), "playlist", playlist.Name, "tracks", playlist.TrackCount)
	return job, nil
}

// ProcessJob runs a pending job to completion. Already-completed jobs are a
// no-op; jobs in any other non-pending state are rejected. On failure the
// job is marked failed with the fault message and the error is returned.
func (c *Cleaner) ProcessJob(ctx context.Context, jobID string) error {
	job, err := c.jobs.Get(jobID)
	if err != nil {
		return err
	}

	switch job.Status() {
	case models.JobStatusPending:
	case models.JobStatusCompleted:
		c.logger.Info("job already completed", "job", jobID)
		return nil
	default:
		return fmt.Errorf("%w: job %s is %s", shared.ErrJobNotPending, jobID, job.Status())
	}

	if err := c.run(ctx, job); err != nil {
		job.Fail(err.Error())
		if updateErr := c.jobs.Update(job); updateErr != nil {
			c.logger.Error("failed to record job failure", "job", jobID, "error", updateErr)
		}
		return err
	}

	return nil
}

func (c *Cleaner) run(ctx context.Context, job *models.CleanJob) error {
	tracks, err := c.catalog.GetPlaylistTracks(ctx, job.SourcePlaylistID())
	if err != nil {
		return fmt.Errorf("failed to fetch source tracks: %w", err)
	}

	job.Begin()
	job.SetTotalTracks(len(tracks))
	if err := c.jobs.Update(job); err != nil {
		return err
	}

	batcher := NewProgressBatcher(len(tracks))
	c.report(ctx, batcher, job, 0, "starting")

	var pending []*models.TrackMapping
	processed := 0
	matched := 0

	for position, track := range tracks {
		if track.ID == "" {
			// Local files and removed tracks have no catalog identity.
			c.logger.Warn("skipping track without catalog ID", "job", job.ID(), "position", position)
			processed++
			job.SetProcessedTracks(processed)
			continue
		}

		mapping := models.NewTrackMapping(job.ID(), position, track)

		clean, err := c.resolver.Resolve(ctx, track)
		if err != nil {
			c.logger.Warn("clean lookup failed, recording as unmatched", "job", job.ID(), "track", track.Name, "error", err)
		} else if clean != nil {
			mapping.SetMatch(*clean)
			matched++
		}

		pending = append(pending, mapping)
		processed++

		job.SetProcessedTracks(processed)
		job.SetMatchedTracks(matched)
		job.SetCurrentBatch(fmt.Sprintf("%d/%d", processed, len(tracks)))

		if batcher.ShouldPersist(processed) {
			if err := c.mappings.SaveBatch(pending, job); err != nil {
				return fmt.Errorf("failed to persist mapping batch: %w", err)
			}
			pending = pending[:0]
		}

		c.report(ctx, batcher, job, processed, "")
	}

	if len(pending) > 0 {
		if err := c.mappings.SaveBatch(pending, job); err != nil {
			return fmt.Errorf("failed to persist mapping batch: %w", err)
		}
	}

	if err := c.materialize(ctx, job); err != nil {
		return err
	}

	job.Complete()
	if err := c.jobs.Update(job); err != nil {
		return err
	}

	c.report(ctx, batcher, job, len(tracks), "completed")
	c.logger.Info("clean job completed", "job", job.ID(), "matched", matched, "total", len(tracks))
	return nil
}

// materialize creates the cleaned playlist and fills it with matched tracks
// in source order, chunked for the platform's mutation limit.
func (c *Cleaner) materialize(ctx context.Context, job *models.CleanJob) error {
	mappings, err := c.mappings.ListByJob(job.ID())
	if err != nil {
		return err
	}

	var trackIDs []string
	for _, m := range mappings {
		if m.HasCleanMatch() {
			trackIDs = append(trackIDs, m.TargetTrackID())
		}
	}

	description := fmt.Sprintf("Clean version of %s", job.SourcePlaylistName())
	playlist, err := c.catalog.CreatePlaylist(ctx, job.TargetPlaylistName(), description)
	if err != nil {
		return fmt.Errorf("failed to create target playlist: %w", err)
	}

	job.SetTargetPlaylistID(playlist.ID)
	if err := c.jobs.Update(job); err != nil {
		return err
	}

	for _, chunk := range chunked(trackIDs) {
		if err := c.catalog.AddTracks(ctx, playlist.ID, chunk); err != nil {
			return fmt.Errorf("failed to add tracks to target playlist: %w", err)
		}
	}

	return nil
}

// report sends a progress update when the batcher says one is due. Delivery
// failures are logged and never interrupt the job.
func (c *Cleaner) report(ctx context.Context, batcher *ProgressBatcher, job *models.CleanJob, processed int, message string) {
	if c.notifier == nil || !batcher.ShouldReport(processed) {
		return
	}

	update := batcher.Describe(processed, message)
	update.JobID = job.ID()

	if err := c.notifier.Notify(ctx, update); err != nil {
		c.logger.Warn("progress notification failed", "job", job.ID(), "error", err)
	}
}

// chunked splits IDs into slices of at most chunkSize.
func chunked(ids []string) [][]string {
	var chunks [][]string
	for len(ids) > chunkSize {
		chunks = append(chunks, ids[:chunkSize])
		ids = ids[chunkSize:]
	}
	if len(ids) > 0 {
		chunks = append(chunks, ids)
	}
	return chunks
}
