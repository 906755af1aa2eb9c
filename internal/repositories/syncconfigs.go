package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/t-murch/radio-wash-sub000/internal/models"
	"github.com/t-murch/radio-wash-sub000/internal/shared"
)

// SyncConfigRepository implements models.Repository[*models.SyncConfig].
//
// Configs are disabled rather than hard-deleted when sync should stop; Delete
// soft-deletes only for cascading cleanup.
type SyncConfigRepository struct {
	db *sql.DB
}

// NewSyncConfigRepository creates a new SyncConfigRepository with the given database connection
func NewSyncConfigRepository(db *sql.DB) *SyncConfigRepository {
	return &SyncConfigRepository{db: db}
}

const syncConfigSelect = `
	SELECT
		id, sequence, job_id, user_id, source_playlist_id, target_playlist_id,
		active, frequency, last_synced_at, next_sync_at, created_at, updated_at, deleted_at
	FROM sync_configs
`

// Create inserts a new sync config with generated ID and sequence
func (r *SyncConfigRepository) Create(config *models.SyncConfig) error {
	sequence, err := NextSequence(r.db, "sync_configs")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	id := shared.GenerateID()
	config.SetID(id)

	if err := config.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	query := `
		INSERT INTO sync_configs (
			id, sequence, job_id, user_id, source_playlist_id, target_playlist_id,
			active, frequency, last_synced_at, next_sync_at, created_at, updated_at
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.Exec(query,
		id,
		sequence,
		config.JobID(),
		config.UserID(),
		config.SourcePlaylistID(),
		config.TargetPlaylistID(),
		config.Active(),
		config.Frequency(),
		config.LastSyncedAt(),
		config.NextSyncAt(),
		config.CreatedAt(),
		config.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert sync config: %w", err)
	}

	return nil
}

// Get retrieves a sync config by ID, excluding soft-deleted configs
func (r *SyncConfigRepository) Get(id string) (*models.SyncConfig, error) {
	query := syncConfigSelect + " WHERE id = ? AND deleted_at IS NULL"
	return r.scanOne(r.db.QueryRow(query, id))
}

// GetByJobID retrieves the sync config owned by the given job, if any
func (r *SyncConfigRepository) GetByJobID(jobID string) (*models.SyncConfig, error) {
	query := syncConfigSelect + " WHERE job_id = ? AND deleted_at IS NULL"
	return r.scanOne(r.db.QueryRow(query, jobID))
}

// Update modifies an existing sync config in the database
func (r *SyncConfigRepository) Update(config *models.SyncConfig) error {
	if err := config.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now()
	config.SetUpdatedAt(now)

	query := `
		UPDATE sync_configs
		SET active = ?, frequency = ?, last_synced_at = ?, next_sync_at = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query,
		config.Active(),
		config.Frequency(),
		config.LastSyncedAt(),
		config.NextSyncAt(),
		now,
		config.ID(),
	)
	if err != nil {
		return fmt.Errorf("failed to update sync config: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", shared.ErrConfigNotFound, config.ID())
	}

	return nil
}

// Delete soft-deletes a sync config by ID
func (r *SyncConfigRepository) Delete(id string) error {
	now := time.Now()

	result, err := r.db.Exec(`
		UPDATE sync_configs
		SET deleted_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`, now, id)
	if err != nil {
		return fmt.Errorf("failed to delete sync config: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", shared.ErrConfigNotFound, id)
	}

	return nil
}

// List retrieves all sync configs matching the given criteria, excluding soft-deleted configs
func (r *SyncConfigRepository) List(criteria map[string]any) ([]*models.SyncConfig, error) {
	query := syncConfigSelect + " WHERE deleted_at IS NULL"
	args := []any{}

	if userID, ok := criteria["user_id"].(string); ok && userID != "" {
		query += " AND user_id = ?"
		args = append(args, userID)
	}

	if active, ok := criteria["active"].(bool); ok {
		query += " AND active = ?"
		args = append(args, active)
	}

	query += " ORDER BY sequence DESC"

	return r.queryMany(query, args...)
}

// ListDue retrieves active configs whose next sync is due at or before the given time.
// Configs that have never synced (NULL next_sync_at) are due immediately.
func (r *SyncConfigRepository) ListDue(now time.Time) ([]*models.SyncConfig, error) {
	query := syncConfigSelect + `
		WHERE deleted_at IS NULL AND active = 1
		AND (next_sync_at IS NULL OR next_sync_at <= ?)
		ORDER BY next_sync_at ASC
	`
	return r.queryMany(query, now)
}

func (r *SyncConfigRepository) queryMany(query string, args ...any) ([]*models.SyncConfig, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query sync configs: %w", err)
	}
	defer rows.Close()

	var configs []*models.SyncConfig
	for rows.Next() {
		config, err := r.scanRow(rows)
		if err != nil {
			return nil, err
		}
		configs = append(configs, config)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return configs, nil
}

func (r *SyncConfigRepository) scan(row scanner) (*models.SyncConfig, error) {
	var (
		id               string
		sequence         int
		jobID            string
		userID           string
		sourcePlaylistID string
		targetPlaylistID string
		active           bool
		frequency        string
		lastSyncedAt     sql.NullTime
		nextSyncAt       sql.NullTime
		createdAt        time.Time
		updatedAt        time.Time
		deletedAt        sql.NullTime
	)

	err := row.Scan(
		&id, &sequence, &jobID, &userID, &sourcePlaylistID, &targetPlaylistID,
		&active, &frequency, &lastSyncedAt, &nextSyncAt, &createdAt, &updatedAt, &deletedAt,
	)
	if err != nil {
		return nil, err
	}

	config := models.NewSyncConfig(sequence, jobID, userID, sourcePlaylistID, targetPlaylistID, frequency)
	config.SetID(id)
	config.SetActive(active)
	config.SetUpdatedAt(updatedAt)

	if lastSyncedAt.Valid {
		config.SetLastSyncedAt(&lastSyncedAt.Time)
	}
	if nextSyncAt.Valid {
		config.SetNextSyncAt(&nextSyncAt.Time)
	}
	if deletedAt.Valid {
		config.SetDeletedAt(&deletedAt.Time)
	}

	return config, nil
}

func (r *SyncConfigRepository) scanOne(row *sql.Row) (*models.SyncConfig, error) {
	config, err := r.scan(row)
	if err == sql.ErrNoRows {
		return nil, shared.ErrConfigNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan sync config: %w", err)
	}
	return config, nil
}

func (r *SyncConfigRepository) scanRow(rows *sql.Rows) (*models.SyncConfig, error) {
	config, err := r.scan(rows)
	if err != nil {
		return nil, fmt.Errorf("failed to scan sync config: %w", err)
	}
	return config, nil
}
