package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/t-murch/radio-wash-sub000/internal/models"
	"github.com/t-murch/radio-wash-sub000/internal/shared"
)

// SyncHistoryRepository persists append-only audit rows for sync attempts.
//
// Rows are created in the running state and finalized exactly once; finalized
// rows are never updated again and there is no delete.
type SyncHistoryRepository struct {
	db *sql.DB
}

// NewSyncHistoryRepository creates a new SyncHistoryRepository with the given database connection
func NewSyncHistoryRepository(db *sql.DB) *SyncHistoryRepository {
	return &SyncHistoryRepository{db: db}
}

// Create inserts a new running history row with a generated ID
func (r *SyncHistoryRepository) Create(history *models.SyncHistory) error {
	id := shared.GenerateID()
	history.SetID(id)

	if err := history.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	query := `
		INSERT INTO sync_histories (
			id, config_id, job_id, status, tracks_added, tracks_removed,
			tracks_unchanged, duration_ms, error_message, started_at,
			finished_at, created_at
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.Exec(query,
		id,
		history.ConfigID(),
		history.JobID(),
		history.Status(),
		history.TracksAdded(),
		history.TracksRemoved(),
		history.TracksUnchanged(),
		history.Duration().Milliseconds(),
		nullable(history.ErrorMessage()),
		history.StartedAt(),
		history.FinishedAt(),
		history.CreatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert sync history: %w", err)
	}

	return nil
}

// Finalize writes the terminal state of a running history row. Rows already
// finalized are left untouched and the call reports an error.
func (r *SyncHistoryRepository) Finalize(history *models.SyncHistory) error {
	if err := history.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}
	if history.Status() == models.SyncStatusRunning {
		return fmt.Errorf("cannot finalize a running history row")
	}

	query := `
		UPDATE sync_histories
		SET status = ?, tracks_added = ?, tracks_removed = ?, tracks_unchanged = ?,
			duration_ms = ?, error_message = ?, finished_at = ?
		WHERE id = ? AND status = ?
	`

	result, err := r.db.Exec(query,
		history.Status(),
		history.TracksAdded(),
		history.TracksRemoved(),
		history.TracksUnchanged(),
		history.Duration().Milliseconds(),
		nullable(history.ErrorMessage()),
		history.FinishedAt(),
		history.ID(),
		models.SyncStatusRunning,
	)
	if err != nil {
		return fmt.Errorf("failed to finalize sync history: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("history row %s not found or already finalized", history.ID())
	}

	return nil
}

// ListByConfig retrieves history rows for a config, most recent first.
func (r *SyncHistoryRepository) ListByConfig(configID string, limit int) ([]*models.SyncHistory, error) {
	query := `
		SELECT
			id, config_id, job_id, status, tracks_added, tracks_removed,
			tracks_unchanged, duration_ms, error_message, started_at,
			finished_at, created_at
		FROM sync_histories
		WHERE config_id = ?
		ORDER BY started_at DESC
	`
	args := []any{configID}

	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query sync histories: %w", err)
	}
	defer rows.Close()

	var histories []*models.SyncHistory
	for rows.Next() {
		history, err := r.scanRow(rows)
		if err != nil {
			return nil, err
		}
		histories = append(histories, history)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return histories, nil
}

func (r *SyncHistoryRepository) scanRow(rows *sql.Rows) (*models.SyncHistory, error) {
	var (
		id              string
		configID        string
		jobID           string
		status          string
		tracksAdded     int
		tracksRemoved   int
		tracksUnchanged int
		durationMS      int64
		errorMessage    sql.NullString
		startedAt       time.Time
		finishedAt      sql.NullTime
		createdAt       time.Time
	)

	err := rows.Scan(
		&id, &configID, &jobID, &status, &tracksAdded, &tracksRemoved,
		&tracksUnchanged, &durationMS, &errorMessage, &startedAt,
		&finishedAt, &createdAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to scan sync history: %w", err)
	}

	history := models.NewSyncHistory(configID, jobID)
	history.SetID(id)
	history.SetStartedAt(startedAt)
	history.SetStatus(status)
	history.SetCounts(tracksAdded, tracksRemoved, tracksUnchanged)
	history.SetDuration(time.Duration(durationMS) * time.Millisecond)
	if errorMessage.Valid {
		history.SetErrorMessage(errorMessage.String)
	}
	if finishedAt.Valid {
		history.SetFinishedAt(&finishedAt.Time)
	}

	return history, nil
}
