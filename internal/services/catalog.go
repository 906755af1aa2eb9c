// package services defines interface Catalog for interacting with streaming-platform APIs
package services

import (
	"context"

	"github.com/t-murch/radio-wash-sub000/internal/models"
	"golang.org/x/oauth2"
)

// Profile represents the authenticated account on the streaming platform.
type Profile struct {
	ID          string
	Email       string
	DisplayName string
	Premium     bool
}

// Catalog defines the streaming-platform operations the cleaning and sync engines need.
//
// Implementations wrap their own timeout, rate-limit, and bounded-retry handling;
// callers see either a result or a terminal error.
type Catalog interface {
	// Authenticate performs OAuth or token authentication with the platform.
	Authenticate(ctx context.Context, credentials map[string]string) error

	// Me retrieves the authenticated account's profile.
	Me(ctx context.Context) (*Profile, error)

	// GetPlaylists retrieves all playlists for the authenticated user.
	GetPlaylists(ctx context.Context) ([]models.Playlist, error)

	// GetPlaylist retrieves a specific playlist by ID.
	GetPlaylist(ctx context.Context, playlistID string) (*models.Playlist, error)

	// GetPlaylistTracks retrieves every track of a playlist, following pagination.
	GetPlaylistTracks(ctx context.Context, playlistID string) ([]models.Track, error)

	// CreatePlaylist creates a private playlist for the authenticated user.
	CreatePlaylist(ctx context.Context, name, description string) (*models.Playlist, error)

	// AddTracks adds tracks by ID to a playlist. At most 100 tracks per call.
	AddTracks(ctx context.Context, playlistID string, trackIDs []string) error

	// RemoveTracks removes tracks by ID from a playlist. At most 100 tracks per call.
	RemoveTracks(ctx context.Context, playlistID string, trackIDs []string) error

	// SearchTracks runs a track search and returns candidate tracks.
	SearchTracks(ctx context.Context, query string) ([]models.Track, error)

	// Name returns the name of the platform (e.g., "Spotify")
	Name() string
}

// OAuthCatalog is a Catalog whose authentication runs through an OAuth2
// authorization-code flow with a browser round trip.
type OAuthCatalog interface {
	Catalog

	// GetAuthURL returns the authorization URL for user login.
	GetAuthURL(state string) string

	// OAuthConfig exposes the OAuth2 config for the local callback server.
	OAuthConfig() *oauth2.Config

	// SetToken installs a token obtained out of band.
	SetToken(ctx context.Context, token *oauth2.Token)
}
