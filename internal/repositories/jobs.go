package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/t-murch/radio-wash-sub000/internal/models"
	"github.com/t-murch/radio-wash-sub000/internal/shared"
)

// CleanJobRepository implements models.Repository[*models.CleanJob].
//
// Handles clean-job CRUD with soft delete support and status-based queries.
type CleanJobRepository struct {
	db *sql.DB
}

// NewCleanJobRepository creates a new CleanJobRepository with the given database connection
func NewCleanJobRepository(db *sql.DB) *CleanJobRepository {
	return &CleanJobRepository{db: db}
}

// Create inserts a new job into the database with generated ID and sequence
func (r *CleanJobRepository) Create(job *models.CleanJob) error {
	sequence, err := NextSequence(r.db, "clean_jobs")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	id := shared.GenerateID()
	job.SetID(id)

	if err := job.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	query := `
		INSERT INTO clean_jobs (
			id, sequence, user_id, source_playlist_id, source_playlist_name,
			target_playlist_id, target_playlist_name, status, total_tracks,
			processed_tracks, matched_tracks, current_batch, error_message,
			started_at, completed_at, created_at, updated_at
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.Exec(query,
		id,
		sequence,
		job.UserID(),
		job.SourcePlaylistID(),
		job.SourcePlaylistName(),
		nullable(job.TargetPlaylistID()),
		job.TargetPlaylistName(),
		job.Status(),
		job.TotalTracks(),
		job.ProcessedTracks(),
		job.MatchedTracks(),
		nullable(job.CurrentBatch()),
		nullable(job.ErrorMessage()),
		job.StartedAt(),
		job.CompletedAt(),
		job.CreatedAt(),
		job.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert job: %w", err)
	}

	return nil
}

// Get retrieves a job by ID, excluding soft-deleted jobs
func (r *CleanJobRepository) Get(id string) (*models.CleanJob, error) {
	query := jobSelect + " WHERE id = ? AND deleted_at IS NULL"
	return r.scanOne(r.db.QueryRow(query, id))
}

// Update modifies an existing job in the database
func (r *CleanJobRepository) Update(job *models.CleanJob) error {
	if err := job.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now()
	job.SetUpdatedAt(now)

	query := `
		UPDATE clean_jobs
		SET target_playlist_id = ?, target_playlist_name = ?, status = ?,
			total_tracks = ?, processed_tracks = ?, matched_tracks = ?,
			current_batch = ?, error_message = ?, started_at = ?,
			completed_at = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query,
		nullable(job.TargetPlaylistID()),
		job.TargetPlaylistName(),
		job.Status(),
		job.TotalTracks(),
		job.ProcessedTracks(),
		job.MatchedTracks(),
		nullable(job.CurrentBatch()),
		nullable(job.ErrorMessage()),
		job.StartedAt(),
		job.CompletedAt(),
		now,
		job.ID(),
	)
	if err != nil {
		return fmt.Errorf("failed to update job: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", shared.ErrJobNotFound, job.ID())
	}

	return nil
}

// Delete soft-deletes a job by ID
func (r *CleanJobRepository) Delete(id string) error {
	now := time.Now()

	query := `
		UPDATE clean_jobs
		SET deleted_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query, now, id)
	if err != nil {
		return fmt.Errorf("failed to delete job: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", shared.ErrJobNotFound, id)
	}

	return nil
}

// List retrieves all jobs matching the given criteria, excluding soft-deleted jobs
func (r *CleanJobRepository) List(criteria map[string]any) ([]*models.CleanJob, error) {
	query := jobSelect + " WHERE deleted_at IS NULL"
	args := []any{}

	if userID, ok := criteria["user_id"].(string); ok && userID != "" {
		query += " AND user_id = ?"
		args = append(args, userID)
	}

	if status, ok := criteria["status"].(string); ok && status != "" {
		query += " AND status = ?"
		args = append(args, status)
	}

	query += " ORDER BY sequence DESC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query jobs: %w", err)
	}
	defer rows.Close()

	var jobs []*models.CleanJob
	for rows.Next() {
		job, err := r.scanRow(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return jobs, nil
}

const jobSelect = `
	SELECT
		id, sequence, user_id, source_playlist_id, source_playlist_name,
		target_playlist_id, target_playlist_name, status, total_tracks,
		processed_tracks, matched_tracks, current_batch, error_message,
		started_at, completed_at, created_at, updated_at, deleted_at
	FROM clean_jobs
`

type scanner interface {
	Scan(dest ...any) error
}

// nullable converts empty strings to NULL for optional text columns.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func (r *CleanJobRepository) scan(row scanner) (*models.CleanJob, error) {
	var (
		id                 string
		sequence           int
		userID             string
		sourcePlaylistID   string
		sourcePlaylistName string
		targetPlaylistID   sql.NullString
		targetPlaylistName string
		status             string
		totalTracks        int
		processedTracks    int
		matchedTracks      int
		currentBatch       sql.NullString
		errorMessage       sql.NullString
		startedAt          sql.NullTime
		completedAt        sql.NullTime
		createdAt          time.Time
		updatedAt          time.Time
		deletedAt          sql.NullTime
	)

	err := row.Scan(
		&id, &sequence, &userID, &sourcePlaylistID, &sourcePlaylistName,
		&targetPlaylistID, &targetPlaylistName, &status, &totalTracks,
		&processedTracks, &matchedTracks, &currentBatch, &errorMessage,
		&startedAt, &completedAt, &createdAt, &updatedAt, &deletedAt,
	)
	if err != nil {
		return nil, err
	}

	job := models.NewCleanJob(sequence, userID, sourcePlaylistID, sourcePlaylistName, targetPlaylistName)
	job.SetID(id)
	job.SetUpdatedAt(updatedAt)

	if targetPlaylistID.Valid {
		job.SetTargetPlaylistID(targetPlaylistID.String)
	}
	job.SetStatus(status)
	job.SetTotalTracks(totalTracks)
	job.SetProcessedTracks(processedTracks)
	job.SetMatchedTracks(matchedTracks)
	if currentBatch.Valid {
		job.SetCurrentBatch(currentBatch.String)
	}
	if errorMessage.Valid {
		job.SetErrorMessage(errorMessage.String)
	}
	if startedAt.Valid {
		job.SetStartedAt(&startedAt.Time)
	}
	if completedAt.Valid {
		job.SetCompletedAt(&completedAt.Time)
	}
	if deletedAt.Valid {
		job.SetDeletedAt(&deletedAt.Time)
	}

	return job, nil
}

// scanOne scans a single [sql.Row] into a [models.CleanJob]
func (r *CleanJobRepository) scanOne(row *sql.Row) (*models.CleanJob, error) {
	job, err := r.scan(row)
	if err == sql.ErrNoRows {
		return nil, shared.ErrJobNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan job: %w", err)
	}
	return job, nil
}

// scanRow scans a row from [sql.Rows] into a [models.CleanJob]
func (r *CleanJobRepository) scanRow(rows *sql.Rows) (*models.CleanJob, error) {
	job, err := r.scan(rows)
	if err != nil {
		return nil, fmt.Errorf("failed to scan job: %w", err)
	}
	return job, nil
}
