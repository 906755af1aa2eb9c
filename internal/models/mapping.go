package models

import (
	"fmt"
	"time"
)

// TrackMapping records the clean substitute found for one source track within a job.
//
// Mappings are the durable memory reused across sync runs: HasCleanMatch is true
// exactly when a target track ID is present.
type TrackMapping struct {
	id              string
	jobID           string
	position        int
	sourceTrackID   string
	sourceTrackName string
	sourceArtist    string
	explicit        bool
	hasCleanMatch   bool
	targetTrackID   string
	targetTrackName string
	targetArtist    string
	createdAt       time.Time
	updatedAt       time.Time
}

// NewTrackMapping creates an unmatched mapping for the given source track.
func NewTrackMapping(jobID string, position int, source Track) *TrackMapping {
	now := time.Now()
	return &TrackMapping{
		jobID:           jobID,
		position:        position,
		sourceTrackID:   source.ID,
		sourceTrackName: source.Name,
		sourceArtist:    source.ArtistLine(),
		explicit:        source.Explicit,
		createdAt:       now,
		updatedAt:       now,
	}
}

func (m *TrackMapping) ID() string              { return m.id }
func (m *TrackMapping) JobID() string           { return m.jobID }
func (m *TrackMapping) Position() int           { return m.position }
func (m *TrackMapping) SourceTrackID() string   { return m.sourceTrackID }
func (m *TrackMapping) SourceTrackName() string { return m.sourceTrackName }
func (m *TrackMapping) SourceArtist() string    { return m.sourceArtist }
func (m *TrackMapping) Explicit() bool          { return m.explicit }
func (m *TrackMapping) HasCleanMatch() bool     { return m.hasCleanMatch }
func (m *TrackMapping) TargetTrackID() string   { return m.targetTrackID }
func (m *TrackMapping) TargetTrackName() string { return m.targetTrackName }
func (m *TrackMapping) TargetArtist() string    { return m.targetArtist }
func (m *TrackMapping) CreatedAt() time.Time    { return m.createdAt }
func (m *TrackMapping) UpdatedAt() time.Time    { return m.updatedAt }

func (m *TrackMapping) SetID(id string)          { m.id = id }
func (m *TrackMapping) SetPosition(p int)        { m.position = p }
func (m *TrackMapping) SetUpdatedAt(t time.Time) { m.updatedAt = t }

// SetMatch records the clean substitute for this mapping.
func (m *TrackMapping) SetMatch(target Track) {
	m.hasCleanMatch = true
	m.targetTrackID = target.ID
	m.targetTrackName = target.Name
	m.targetArtist = target.ArtistLine()
}

// setRawMatch restores match fields when scanning from storage.
func (m *TrackMapping) SetRawMatch(hasMatch bool, targetID, targetName, targetArtist string) {
	m.hasCleanMatch = hasMatch
	m.targetTrackID = targetID
	m.targetTrackName = targetName
	m.targetArtist = targetArtist
}

// Validate checks mapping consistency: a clean match requires a target track ID and vice versa.
func (m *TrackMapping) Validate() error {
	if m.jobID == "" {
		return fmt.Errorf("job ID is required")
	}
	if m.sourceTrackID == "" {
		return fmt.Errorf("source track ID is required")
	}
	if m.hasCleanMatch != (m.targetTrackID != "") {
		return fmt.Errorf("clean match flag and target track ID are inconsistent")
	}
	return nil
}
