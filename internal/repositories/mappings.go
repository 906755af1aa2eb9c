package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/t-murch/radio-wash-sub000/internal/models"
	"github.com/t-murch/radio-wash-sub000/internal/shared"
)

// TrackMappingRepository persists source-to-clean-substitute correspondence rows.
//
// Mapping rows are only written in batches, inside one transaction together with
// the owning job's progress counters, so counters and mappings never diverge.
type TrackMappingRepository struct {
	db *sql.DB
}

// NewTrackMappingRepository creates a new TrackMappingRepository with the given database connection
func NewTrackMappingRepository(db *sql.DB) *TrackMappingRepository {
	return &TrackMappingRepository{db: db}
}

const mappingInsert = `
	INSERT INTO track_mappings (
		id, job_id, position, source_track_id, source_track_name, source_artist,
		explicit, has_clean_match, target_track_id, target_track_name,
		target_artist, created_at, updated_at
	)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`

// SaveBatch commits a batch of mappings together with the owning job's progress
// counters as one transaction. On any failure the whole batch is rolled back and
// no partial mapping state is left visible.
func (r *TrackMappingRepository) SaveBatch(mappings []*models.TrackMapping, job *models.CleanJob) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("%w: failed to begin transaction: %v", shared.ErrPersistence, err)
	}
	defer tx.Rollback()

	if err := r.insertAll(tx, mappings); err != nil {
		return err
	}

	now := time.Now()
	job.SetUpdatedAt(now)

	result, err := tx.Exec(`
		UPDATE clean_jobs
		SET processed_tracks = ?, matched_tracks = ?, current_batch = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`,
		job.ProcessedTracks(),
		job.MatchedTracks(),
		nullable(job.CurrentBatch()),
		now,
		job.ID(),
	)
	if err != nil {
		return fmt.Errorf("%w: failed to update job counters: %v", shared.ErrPersistence, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: failed to get affected rows: %v", shared.ErrPersistence, err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", shared.ErrJobNotFound, job.ID())
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: failed to commit mapping batch: %v", shared.ErrPersistence, err)
	}

	return nil
}

// CreateBatch inserts mappings discovered during a sync run in one transaction.
func (r *TrackMappingRepository) CreateBatch(mappings []*models.TrackMapping) error {
	if len(mappings) == 0 {
		return nil
	}

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("%w: failed to begin transaction: %v", shared.ErrPersistence, err)
	}
	defer tx.Rollback()

	if err := r.insertAll(tx, mappings); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: failed to commit mapping batch: %v", shared.ErrPersistence, err)
	}

	return nil
}

func (r *TrackMappingRepository) insertAll(tx *sql.Tx, mappings []*models.TrackMapping) error {
	stmt, err := tx.Prepare(mappingInsert)
	if err != nil {
		return fmt.Errorf("%w: failed to prepare insert: %v", shared.ErrPersistence, err)
	}
	defer stmt.Close()

	for _, m := range mappings {
		if m.ID() == "" {
			m.SetID(shared.GenerateID())
		}
		if err := m.Validate(); err != nil {
			return fmt.Errorf("validation failed: %w", err)
		}

		_, err := stmt.Exec(
			m.ID(),
			m.JobID(),
			m.Position(),
			m.SourceTrackID(),
			m.SourceTrackName(),
			m.SourceArtist(),
			m.Explicit(),
			m.HasCleanMatch(),
			nullable(m.TargetTrackID()),
			nullable(m.TargetTrackName()),
			nullable(m.TargetArtist()),
			m.CreatedAt(),
			m.UpdatedAt(),
		)
		if err != nil {
			return fmt.Errorf("%w: failed to insert mapping for track %s: %v", shared.ErrPersistence, m.SourceTrackID(), err)
		}
	}

	return nil
}

// ListByJob retrieves all mappings for a job ordered by source playlist position.
func (r *TrackMappingRepository) ListByJob(jobID string) ([]*models.TrackMapping, error) {
	query := `
		SELECT
			id, job_id, position, source_track_id, source_track_name, source_artist,
			explicit, has_clean_match, target_track_id, target_track_name,
			target_artist, created_at, updated_at
		FROM track_mappings
		WHERE job_id = ?
		ORDER BY position ASC
	`

	rows, err := r.db.Query(query, jobID)
	if err != nil {
		return nil, fmt.Errorf("failed to query mappings: %w", err)
	}
	defer rows.Close()

	var mappings []*models.TrackMapping
	for rows.Next() {
		mapping, err := r.scanRow(rows)
		if err != nil {
			return nil, err
		}
		mappings = append(mappings, mapping)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return mappings, nil
}

// CountByJob returns total and matched mapping counts for a job.
func (r *TrackMappingRepository) CountByJob(jobID string) (total, matched int, err error) {
	query := `
		SELECT COUNT(*), COALESCE(SUM(has_clean_match), 0)
		FROM track_mappings
		WHERE job_id = ?
	`
	if err := r.db.QueryRow(query, jobID).Scan(&total, &matched); err != nil {
		return 0, 0, fmt.Errorf("failed to count mappings: %w", err)
	}
	return total, matched, nil
}

func (r *TrackMappingRepository) scanRow(rows *sql.Rows) (*models.TrackMapping, error) {
	var (
		id              string
		jobID           string
		position        int
		sourceTrackID   string
		sourceTrackName string
		sourceArtist    string
		explicit        bool
		hasCleanMatch   bool
		targetTrackID   sql.NullString
		targetTrackName sql.NullString
		targetArtist    sql.NullString
		createdAt       time.Time
		updatedAt       time.Time
	)

	err := rows.Scan(
		&id, &jobID, &position, &sourceTrackID, &sourceTrackName, &sourceArtist,
		&explicit, &hasCleanMatch, &targetTrackID, &targetTrackName,
		&targetArtist, &createdAt, &updatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to scan mapping: %w", err)
	}

	source := models.Track{
		ID:       sourceTrackID,
		Name:     sourceTrackName,
		Artists:  []string{sourceArtist},
		Explicit: explicit,
	}

	mapping := models.NewTrackMapping(jobID, position, source)
	mapping.SetID(id)
	mapping.SetUpdatedAt(updatedAt)
	mapping.SetRawMatch(hasCleanMatch, targetTrackID.String, targetTrackName.String, targetArtist.String)

	return mapping, nil
}
