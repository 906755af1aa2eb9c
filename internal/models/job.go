package models

import (
	"fmt"
	"time"
)

// Job status values. Forward-only: pending -> processing -> completed | failed.
// Failed is terminal and always carries an error message.
const (
	JobStatusPending    = "pending"
	JobStatusProcessing = "processing"
	JobStatusCompleted  = "completed"
	JobStatusFailed     = "failed"
)

// CleanJob tracks one user-initiated request to produce a clean copy of a playlist.
type CleanJob struct {
	id                 string
	sequence           int
	userID             string
	sourcePlaylistID   string
	sourcePlaylistName string
	targetPlaylistID   string
	targetPlaylistName string
	status             string
	totalTracks        int
	processedTracks    int
	matchedTracks      int
	currentBatch       string
	errorMessage       string
	startedAt          *time.Time
	completedAt        *time.Time
	createdAt          time.Time
	updatedAt          time.Time
	deletedAt          *time.Time
}

// NewCleanJob creates a pending job for the given user and source playlist.
func NewCleanJob(sequence int, userID, sourcePlaylistID, sourcePlaylistName, targetPlaylistName string) *CleanJob {
	now := time.Now()
	return &CleanJob{
		sequence:           sequence,
		userID:             userID,
		sourcePlaylistID:   sourcePlaylistID,
		sourcePlaylistName: sourcePlaylistName,
		targetPlaylistName: targetPlaylistName,
		status:             JobStatusPending,
		createdAt:          now,
		updatedAt:          now,
	}
}

func (j *CleanJob) ID() string                 { return j.id }
func (j *CleanJob) Sequence() int              { return j.sequence }
func (j *CleanJob) UserID() string             { return j.userID }
func (j *CleanJob) SourcePlaylistID() string   { return j.sourcePlaylistID }
func (j *CleanJob) SourcePlaylistName() string { return j.sourcePlaylistName }
func (j *CleanJob) TargetPlaylistID() string   { return j.targetPlaylistID }
func (j *CleanJob) TargetPlaylistName() string { return j.targetPlaylistName }
func (j *CleanJob) Status() string             { return j.status }
func (j *CleanJob) TotalTracks() int           { return j.totalTracks }
func (j *CleanJob) ProcessedTracks() int       { return j.processedTracks }
func (j *CleanJob) MatchedTracks() int         { return j.matchedTracks }
func (j *CleanJob) CurrentBatch() string       { return j.currentBatch }
func (j *CleanJob) ErrorMessage() string       { return j.errorMessage }
func (j *CleanJob) StartedAt() *time.Time      { return j.startedAt }
func (j *CleanJob) CompletedAt() *time.Time    { return j.completedAt }
func (j *CleanJob) CreatedAt() time.Time       { return j.createdAt }
func (j *CleanJob) UpdatedAt() time.Time       { return j.updatedAt }
func (j *CleanJob) DeletedAt() *time.Time      { return j.deletedAt }

func (j *CleanJob) SetID(id string)                 { j.id = id }
func (j *CleanJob) SetTargetPlaylistID(id string)   { j.targetPlaylistID = id }
func (j *CleanJob) SetTargetPlaylistName(n string)  { j.targetPlaylistName = n }
func (j *CleanJob) SetStatus(status string)         { j.status = status }
func (j *CleanJob) SetTotalTracks(n int)            { j.totalTracks = n }
func (j *CleanJob) SetProcessedTracks(n int)        { j.processedTracks = n }
func (j *CleanJob) SetMatchedTracks(n int)          { j.matchedTracks = n }
func (j *CleanJob) SetCurrentBatch(label string)    { j.currentBatch = label }
func (j *CleanJob) SetErrorMessage(msg string)      { j.errorMessage = msg }
func (j *CleanJob) SetStartedAt(t *time.Time)       { j.startedAt = t }
func (j *CleanJob) SetCompletedAt(t *time.Time)     { j.completedAt = t }
func (j *CleanJob) SetUpdatedAt(t time.Time)        { j.updatedAt = t }
func (j *CleanJob) SetDeletedAt(t *time.Time)       { j.deletedAt = t }

// Begin transitions the job from pending to processing and stamps the start time.
func (j *CleanJob) Begin() {
	now := time.Now()
	j.status = JobStatusProcessing
	j.startedAt = &now
}

// Complete marks the job as completed and stamps the completion time.
func (j *CleanJob) Complete() {
	now := time.Now()
	j.status = JobStatusCompleted
	j.completedAt = &now
}

// Fail marks the job as failed with the fault message captured verbatim.
func (j *CleanJob) Fail(msg string) {
	now := time.Now()
	j.status = JobStatusFailed
	j.errorMessage = msg
	j.completedAt = &now
}

// Validate checks that required fields are present and the status is known.
func (j *CleanJob) Validate() error {
	if j.userID == "" {
		return fmt.Errorf("user ID is required")
	}
	if j.sourcePlaylistID == "" {
		return fmt.Errorf("source playlist ID is required")
	}
	switch j.status {
	case JobStatusPending, JobStatusProcessing, JobStatusCompleted, JobStatusFailed:
	default:
		return fmt.Errorf("invalid status: %s", j.status)
	}
	if j.status == JobStatusFailed && j.errorMessage == "" {
		return fmt.Errorf("failed job requires an error message")
	}
	return nil
}
