package models

import "strings"

// Track represents a catalog track. Catalog data is never mutated locally.
type Track struct {
	ID       string
	Name     string
	Artists  []string
	Explicit bool
	URI      string
}

// PrimaryArtist returns the first listed artist, or an empty string for artistless tracks.
func (t Track) PrimaryArtist() string {
	if len(t.Artists) == 0 {
		return ""
	}
	return t.Artists[0]
}

// ArtistLine returns all artists joined for display and search queries.
func (t Track) ArtistLine() string {
	return strings.Join(t.Artists, ", ")
}

// Playlist represents a catalog playlist.
type Playlist struct {
	ID          string
	Name        string
	Description string
	TrackCount  int
	Public      bool
}
