package tasks

import (
	"context"
	"fmt"
	"strings"

	"github.com/adrg/strutil"
	"github.com/adrg/strutil/metrics"
	"github.com/t-murch/radio-wash-sub000/internal/models"
	"github.com/t-murch/radio-wash-sub000/internal/services"
)

// CleanResolver finds clean (non-explicit) equivalents of explicit tracks
// through catalog search. Non-explicit input tracks resolve to themselves
// without touching the catalog.
type CleanResolver struct {
	catalog services.Catalog
	metric  *metrics.JaroWinkler
}

// NewCleanResolver creates a resolver backed by the given catalog.
func NewCleanResolver(catalog services.Catalog) *CleanResolver {
	return &CleanResolver{
		catalog: catalog,
		metric:  metrics.NewJaroWinkler(),
	}
}

// Resolve returns the clean version of a track, or nil when none exists.
// A nil result with a nil error means the catalog was searched and no
// acceptable candidate was found; an error means the search itself failed.
func (r *CleanResolver) Resolve(ctx context.Context, track models.Track) (*models.Track, error) {
	if !track.Explicit {
		// Already clean, no lookup needed.
		return &track, nil
	}

	query := r.buildQuery(track)

	candidates, err := r.catalog.SearchTracks(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("search for clean version of %q failed: %w", track.Name, err)
	}

	return r.pick(track, candidates), nil
}

// buildQuery combines track name and primary artist into a search query.
func (r *CleanResolver) buildQuery(track models.Track) string {
	artist := track.PrimaryArtist()
	if artist == "" {
		return track.Name
	}
	return fmt.Sprintf("%s %s", track.Name, artist)
}

// pick selects the best clean candidate: the name must match the source
// exactly (case-insensitive), and among those the candidate whose artist
// line is most similar to the source wins.
func (r *CleanResolver) pick(source models.Track, candidates []models.Track) *models.Track {
	wantName := strings.ToLower(strings.TrimSpace(source.Name))
	wantArtists := strings.ToLower(source.ArtistLine())

	var best *models.Track
	bestScore := -1.0

	for i := range candidates {
		candidate := &candidates[i]
		if candidate.Explicit {
			continue
		}
		if strings.ToLower(strings.TrimSpace(candidate.Name)) != wantName {
			continue
		}

		score := strutil.Similarity(wantArtists, strings.ToLower(candidate.ArtistLine()), r.metric)
		if score > bestScore {
			best = candidate
			bestScore = score
		}
	}

	return best
}
