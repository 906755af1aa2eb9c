package tasks

import "github.com/t-murch/radio-wash-sub000/internal/models"

// Delta describes the changes needed to bring a cleaned playlist back in
// line with its source playlist.
type Delta struct {
	// ToAdd holds target-track IDs that belong in the cleaned playlist but
	// are not there yet, in source order.
	ToAdd []string
	// ToRemove holds target-track IDs present in the cleaned playlist whose
	// mapped source tracks have been removed. Tracks the user added to the
	// cleaned playlist by hand have no mapping and are never removed.
	ToRemove []string
	// NewlyDiscovered holds source tracks that have no mapping yet and must
	// be resolved before they can be added.
	NewlyDiscovered []models.Track
	// DesiredOrder lists every mapped target ID in source order. Advisory:
	// membership drives mutations, order does not.
	DesiredOrder []string
	// Unchanged counts target tracks that stay put.
	Unchanged int
}

// ComputeDelta reconciles the current source playlist against the current
// cleaned playlist using the stored mappings. It performs no I/O: the same
// inputs always yield the same delta, and iteration order of the inputs
// does not affect set membership.
func ComputeDelta(source []models.Track, target []models.Track, mappings []*models.TrackMapping) Delta {
	bySource := make(map[string]*models.TrackMapping, len(mappings))
	for _, m := range mappings {
		bySource[m.SourceTrackID()] = m
	}

	inSource := make(map[string]bool, len(source))
	for _, s := range source {
		inSource[s.ID] = true
	}

	inTarget := make(map[string]bool, len(target))
	for _, t := range target {
		inTarget[t.ID] = true
	}

	var delta Delta
	desired := make(map[string]bool)

	for _, track := range source {
		if track.ID == "" {
			continue
		}

		mapping, ok := bySource[track.ID]
		if !ok {
			delta.NewlyDiscovered = append(delta.NewlyDiscovered, track)
			continue
		}
		if !mapping.HasCleanMatch() {
			continue
		}

		// Two explicit tracks can resolve to the same clean track; the
		// cleaned playlist carries it once.
		targetID := mapping.TargetTrackID()
		if desired[targetID] {
			continue
		}
		desired[targetID] = true
		delta.DesiredOrder = append(delta.DesiredOrder, targetID)

		if inTarget[targetID] {
			delta.Unchanged++
		} else {
			delta.ToAdd = append(delta.ToAdd, targetID)
		}
	}

	// A target track is removable only when some mapping put it there and
	// that mapping's source track is gone from the source playlist.
	removable := make(map[string]bool)
	for _, m := range mappings {
		if m.HasCleanMatch() && !inSource[m.SourceTrackID()] {
			removable[m.TargetTrackID()] = true
		}
	}

	for _, t := range target {
		if removable[t.ID] && !desired[t.ID] {
			delta.ToRemove = append(delta.ToRemove, t.ID)
		}
	}

	return delta
}

// Empty reports whether the delta requires no playlist mutations and no
// new resolutions.
func (d Delta) Empty() bool {
	return len(d.ToAdd) == 0 && len(d.ToRemove) == 0 && len(d.NewlyDiscovered) == 0
}
