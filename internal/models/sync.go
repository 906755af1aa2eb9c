package models

import (
	"fmt"
	"time"
)

// Sync frequencies accepted by [ParseFrequency].
const (
	FrequencyDaily   = "daily"
	FrequencyWeekly  = "weekly"
	FrequencyMonthly = "monthly"
)

// ParseFrequency validates a frequency name and returns its interval.
func ParseFrequency(name string) (time.Duration, error) {
	switch name {
	case FrequencyDaily:
		return 24 * time.Hour, nil
	case FrequencyWeekly:
		return 7 * 24 * time.Hour, nil
	case FrequencyMonthly:
		return 30 * 24 * time.Hour, nil
	default:
		return 0, fmt.Errorf("unknown frequency: %s", name)
	}
}

// SyncConfig records a user's opt-in to recurring reconciliation for one completed job.
//
// Configs are disabled rather than deleted so history and mappings survive reactivation.
type SyncConfig struct {
	id               string
	sequence         int
	jobID            string
	userID           string
	sourcePlaylistID string
	targetPlaylistID string
	active           bool
	frequency        string
	lastSyncedAt     *time.Time
	nextSyncAt       *time.Time
	createdAt        time.Time
	updatedAt        time.Time
	deletedAt        *time.Time
}

// NewSyncConfig creates an active config for the given job.
func NewSyncConfig(sequence int, jobID, userID, sourcePlaylistID, targetPlaylistID, frequency string) *SyncConfig {
	now := time.Now()
	return &SyncConfig{
		sequence:         sequence,
		jobID:            jobID,
		userID:           userID,
		sourcePlaylistID: sourcePlaylistID,
		targetPlaylistID: targetPlaylistID,
		active:           true,
		frequency:        frequency,
		createdAt:        now,
		updatedAt:        now,
	}
}

func (c *SyncConfig) ID() string                { return c.id }
func (c *SyncConfig) Sequence() int             { return c.sequence }
func (c *SyncConfig) JobID() string             { return c.jobID }
func (c *SyncConfig) UserID() string            { return c.userID }
func (c *SyncConfig) SourcePlaylistID() string  { return c.sourcePlaylistID }
func (c *SyncConfig) TargetPlaylistID() string  { return c.targetPlaylistID }
func (c *SyncConfig) Active() bool              { return c.active }
func (c *SyncConfig) Frequency() string         { return c.frequency }
func (c *SyncConfig) LastSyncedAt() *time.Time  { return c.lastSyncedAt }
func (c *SyncConfig) NextSyncAt() *time.Time    { return c.nextSyncAt }
func (c *SyncConfig) CreatedAt() time.Time      { return c.createdAt }
func (c *SyncConfig) UpdatedAt() time.Time      { return c.updatedAt }
func (c *SyncConfig) DeletedAt() *time.Time     { return c.deletedAt }

func (c *SyncConfig) SetID(id string)              { c.id = id }
func (c *SyncConfig) SetActive(active bool)        { c.active = active }
func (c *SyncConfig) SetFrequency(f string)        { c.frequency = f }
func (c *SyncConfig) SetLastSyncedAt(t *time.Time) { c.lastSyncedAt = t }
func (c *SyncConfig) SetNextSyncAt(t *time.Time)   { c.nextSyncAt = t }
func (c *SyncConfig) SetUpdatedAt(t time.Time)     { c.updatedAt = t }
func (c *SyncConfig) SetDeletedAt(t *time.Time)    { c.deletedAt = t }

// Advance stamps a completed run and schedules the next one from the config frequency.
func (c *SyncConfig) Advance(ranAt time.Time) error {
	interval, err := ParseFrequency(c.frequency)
	if err != nil {
		return err
	}
	next := ranAt.Add(interval)
	c.lastSyncedAt = &ranAt
	c.nextSyncAt = &next
	return nil
}

// Validate checks required fields and that the frequency is known.
func (c *SyncConfig) Validate() error {
	if c.jobID == "" {
		return fmt.Errorf("job ID is required")
	}
	if c.userID == "" {
		return fmt.Errorf("user ID is required")
	}
	if c.sourcePlaylistID == "" || c.targetPlaylistID == "" {
		return fmt.Errorf("source and target playlist IDs are required")
	}
	if _, err := ParseFrequency(c.frequency); err != nil {
		return err
	}
	return nil
}

// Sync run status values. Running rows are finalized exactly once as completed or failed.
const (
	SyncStatusRunning   = "running"
	SyncStatusCompleted = "completed"
	SyncStatusFailed    = "failed"
)

// SyncHistory is one append-only audit row per sync attempt.
type SyncHistory struct {
	id              string
	configID        string
	jobID           string
	status          string
	tracksAdded     int
	tracksRemoved   int
	tracksUnchanged int
	duration        time.Duration
	errorMessage    string
	startedAt       time.Time
	finishedAt      *time.Time
	createdAt       time.Time
}

// NewSyncHistory creates a running history row for a sync attempt starting now.
func NewSyncHistory(configID, jobID string) *SyncHistory {
	now := time.Now()
	return &SyncHistory{
		configID:  configID,
		jobID:     jobID,
		status:    SyncStatusRunning,
		startedAt: now,
		createdAt: now,
	}
}

func (h *SyncHistory) ID() string              { return h.id }
func (h *SyncHistory) ConfigID() string        { return h.configID }
func (h *SyncHistory) JobID() string           { return h.jobID }
func (h *SyncHistory) Status() string          { return h.status }
func (h *SyncHistory) TracksAdded() int        { return h.tracksAdded }
func (h *SyncHistory) TracksRemoved() int      { return h.tracksRemoved }
func (h *SyncHistory) TracksUnchanged() int    { return h.tracksUnchanged }
func (h *SyncHistory) Duration() time.Duration { return h.duration }
func (h *SyncHistory) ErrorMessage() string    { return h.errorMessage }
func (h *SyncHistory) StartedAt() time.Time    { return h.startedAt }
func (h *SyncHistory) FinishedAt() *time.Time  { return h.finishedAt }
func (h *SyncHistory) CreatedAt() time.Time    { return h.createdAt }
func (h *SyncHistory) UpdatedAt() time.Time    { return h.createdAt }

func (h *SyncHistory) SetID(id string)           { h.id = id }
func (h *SyncHistory) SetStartedAt(t time.Time)  { h.startedAt = t }
func (h *SyncHistory) SetFinishedAt(t *time.Time) { h.finishedAt = t }
func (h *SyncHistory) SetStatus(s string)        { h.status = s }
func (h *SyncHistory) SetCounts(added, removed, unchanged int) {
	h.tracksAdded = added
	h.tracksRemoved = removed
	h.tracksUnchanged = unchanged
}
func (h *SyncHistory) SetDuration(d time.Duration) { h.duration = d }
func (h *SyncHistory) SetErrorMessage(msg string)  { h.errorMessage = msg }

// Finalize writes the terminal state for this attempt. Finalized rows are never mutated again.
func (h *SyncHistory) Finalize(status string, errMsg string) {
	now := time.Now()
	h.status = status
	h.errorMessage = errMsg
	h.finishedAt = &now
	h.duration = now.Sub(h.startedAt)
}

// Validate checks required references and that the status is known.
func (h *SyncHistory) Validate() error {
	if h.configID == "" {
		return fmt.Errorf("config ID is required")
	}
	if h.jobID == "" {
		return fmt.Errorf("job ID is required")
	}
	switch h.status {
	case SyncStatusRunning, SyncStatusCompleted, SyncStatusFailed:
	default:
		return fmt.Errorf("invalid status: %s", h.status)
	}
	return nil
}
