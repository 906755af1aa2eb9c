// Spotify API implementation of [Catalog]
//
// Spotify API response types based on https://developer.spotify.com/documentation/web-api/reference/
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/t-murch/radio-wash-sub000/internal/models"
	"github.com/t-murch/radio-wash-sub000/internal/shared"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

const (
	spotifyAuthURL  = "https://accounts.spotify.com/authorize"
	spotifyTokenURL = "https://accounts.spotify.com/api/token"
	spotifyBaseURL  = "https://api.spotify.com/v1"

	// Bounded retry for transient upstream faults. Backoff doubles per attempt.
	maxAttempts    = 3
	initialBackoff = 500 * time.Millisecond
)

// SpotifyUser represents a Spotify user profile.
type SpotifyUser struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	Email       string `json:"email"`
	Product     string `json:"product"` // premium, free, etc.
}

// SpotifyArtist represents a Spotify artist.
type SpotifyArtist struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	URI  string `json:"uri"`
}

// SpotifyTrack represents a Spotify track.
type SpotifyTrack struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Artists  []SpotifyArtist `json:"artists"`
	Explicit bool            `json:"explicit"`
	URI      string          `json:"uri"`
}

type playlistOwner struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}

type playlistTracksRef struct {
	Total int `json:"total"`
}

// SpotifyPlaylist represents a Spotify playlist.
type SpotifyPlaylist struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Owner       playlistOwner     `json:"owner"`
	Public      bool              `json:"public"`
	Tracks      playlistTracksRef `json:"tracks"`
	URI         string            `json:"uri"`
}

// SpotifyPlaylistTrack represents a track within a playlist context.
type SpotifyPlaylistTrack struct {
	AddedAt string        `json:"added_at"`
	Track   *SpotifyTrack `json:"track"`
}

type paginatedPlaylistTracks struct {
	Items  []SpotifyPlaylistTrack `json:"items"`
	Total  int                    `json:"total"`
	Limit  int                    `json:"limit"`
	Offset int                    `json:"offset"`
	Next   *string                `json:"next"`
}

type paginatedPlaylists struct {
	Items  []SpotifyPlaylist `json:"items"`
	Total  int               `json:"total"`
	Limit  int               `json:"limit"`
	Offset int               `json:"offset"`
	Next   *string           `json:"next"`
}

// SpotifyService implements the Catalog interface for Spotify API interactions.
// Uses [oauth2] for authentication, a [rate.Limiter] to stay under API fairness
// limits, and bounded retry with exponential backoff for transient faults.
type SpotifyService struct {
	config     *oauth2.Config
	token      *oauth2.Token
	httpClient *http.Client
	baseURL    string
	limiter    *rate.Limiter
	profile    *Profile
}

// NewSpotifyService creates a new Spotify service with the given OAuth2 credentials.
func NewSpotifyService(credentials map[string]string) (*SpotifyService, error) {
	clientID, ok := credentials["client_id"]
	if !ok || clientID == "" {
		return nil, fmt.Errorf("%w: missing client_id", shared.ErrMissingCredentials)
	}

	clientSecret, ok := credentials["client_secret"]
	if !ok || clientSecret == "" {
		return nil, fmt.Errorf("%w: missing client_secret", shared.ErrMissingCredentials)
	}

	redirectURI, ok := credentials["redirect_uri"]
	if !ok || redirectURI == "" {
		redirectURI = "http://localhost:8888/callback"
	}

	config := &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURI,
		Scopes: []string{
			"user-read-private",
			"user-read-email",
			"playlist-read-private",
			"playlist-read-collaborative",
			"playlist-modify-private",
			"playlist-modify-public",
		},
		Endpoint: oauth2.Endpoint{
			AuthURL:  spotifyAuthURL,
			TokenURL: spotifyTokenURL,
		},
	}

	return &SpotifyService{
		config:     config,
		httpClient: http.DefaultClient,
		baseURL:    spotifyBaseURL,
		limiter:    rate.NewLimiter(rate.Every(200*time.Millisecond), 5),
	}, nil
}

// Authenticate performs OAuth2 authentication with Spotify. Expects either an "access_token" or "auth_code" in credentials.
func (s *SpotifyService) Authenticate(ctx context.Context, credentials map[string]string) error {
	if accessToken, ok := credentials["access_token"]; ok && accessToken != "" {
		s.SetToken(ctx, &oauth2.Token{AccessToken: accessToken})
		return nil
	}

	if authCode, ok := credentials["auth_code"]; ok && authCode != "" {
		token, err := s.config.Exchange(ctx, authCode)
		if err != nil {
			return fmt.Errorf("%w: failed to exchange auth code: %v", shared.ErrAuthFailed, err)
		}
		s.SetToken(ctx, token)
		return nil
	}

	return fmt.Errorf("%w: missing access_token or auth_code", shared.ErrMissingCredentials)
}

// SetToken installs an OAuth2 token obtained out of band (e.g., via the callback server).
// The HTTP client refreshes the token automatically when a refresh token is present.
func (s *SpotifyService) SetToken(ctx context.Context, token *oauth2.Token) {
	s.token = token
	s.httpClient = s.config.Client(ctx, token)
}

func (s *SpotifyService) Name() string {
	return "Spotify"
}

// GetAuthURL returns the OAuth2 authorization URL for user login.
func (s *SpotifyService) GetAuthURL(state string) string {
	return s.config.AuthCodeURL(state, oauth2.AccessTypeOffline)
}

// OAuthConfig exposes the OAuth2 config for the local callback server.
func (s *SpotifyService) OAuthConfig() *oauth2.Config {
	return s.config
}

// doRequest performs an authenticated HTTP request to the Spotify API.
//
// Transient faults (network errors, 429, 5xx) are retried up to maxAttempts
// times with exponential backoff; other failures surface immediately.
func (s *SpotifyService) doRequest(ctx context.Context, method, endpoint string, body, result any) error {
	if s.token == nil {
		return fmt.Errorf("%w: call Authenticate first", shared.ErrNotAuthenticated)
	}

	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
	}

	backoff := initialBackoff
	var lastErr error

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := s.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("request cancelled: %w", err)
		}

		retryable, err := s.attempt(ctx, method, endpoint, payload, result)
		if err == nil {
			return nil
		}
		lastErr = err

		if !retryable || attempt == maxAttempts {
			return lastErr
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
	}

	return lastErr
}

// attempt performs one HTTP round trip. The bool reports whether the failure is transient.
func (s *SpotifyService) attempt(ctx context.Context, method, endpoint string, payload []byte, result any) (bool, error) {
	apiURL := s.baseURL + endpoint

	var reader *bytes.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, apiURL, reader)
	if err != nil {
		return false, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return true, fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return true, fmt.Errorf("%w: status %d", shared.ErrRateLimited, resp.StatusCode)
	case resp.StatusCode >= 500:
		return true, fmt.Errorf("%w: status %d", shared.ErrServiceUnavailable, resp.StatusCode)
	case resp.StatusCode == http.StatusNotFound:
		return false, fmt.Errorf("%w: status 404", shared.ErrPlaylistNotFound)
	case resp.StatusCode == http.StatusUnauthorized:
		return false, fmt.Errorf("%w: status 401", shared.ErrTokenExpired)
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return false, fmt.Errorf("%w: status %d", shared.ErrAPIRequest, resp.StatusCode)
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return false, fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return false, nil
}

// Me retrieves the current authenticated user's profile.
func (s *SpotifyService) Me(ctx context.Context) (*Profile, error) {
	if s.profile != nil {
		return s.profile, nil
	}

	var user SpotifyUser
	if err := s.doRequest(ctx, http.MethodGet, "/me", nil, &user); err != nil {
		return nil, err
	}

	s.profile = &Profile{
		ID:          user.ID,
		Email:       user.Email,
		DisplayName: user.DisplayName,
		Premium:     user.Product == "premium",
	}
	return s.profile, nil
}

// GetPlaylists retrieves all playlists for the authenticated user.
func (s *SpotifyService) GetPlaylists(ctx context.Context) ([]models.Playlist, error) {
	var all []models.Playlist
	limit := 50
	offset := 0

	for {
		endpoint := fmt.Sprintf("/me/playlists?limit=%d&offset=%d", limit, offset)

		var response paginatedPlaylists
		if err := s.doRequest(ctx, http.MethodGet, endpoint, nil, &response); err != nil {
			return nil, err
		}

		for _, sp := range response.Items {
			all = append(all, toPlaylist(sp))
		}

		if response.Next == nil {
			break
		}
		offset += limit
	}

	return all, nil
}

// GetPlaylist retrieves a specific playlist by ID.
func (s *SpotifyService) GetPlaylist(ctx context.Context, playlistID string) (*models.Playlist, error) {
	endpoint := fmt.Sprintf("/playlists/%s", url.PathEscape(playlistID))

	var sp SpotifyPlaylist
	if err := s.doRequest(ctx, http.MethodGet, endpoint, nil, &sp); err != nil {
		return nil, err
	}

	playlist := toPlaylist(sp)
	return &playlist, nil
}

// GetPlaylistTracks retrieves every track of a playlist, following pagination.
//
// Items without a track object (e.g., removed episodes) are dropped; tracks with
// empty identifiers (local files) are passed through for the caller to skip.
func (s *SpotifyService) GetPlaylistTracks(ctx context.Context, playlistID string) ([]models.Track, error) {
	var all []models.Track
	limit := 100
	offset := 0

	for {
		endpoint := fmt.Sprintf("/playlists/%s/tracks?limit=%d&offset=%d", url.PathEscape(playlistID), limit, offset)

		var response paginatedPlaylistTracks
		if err := s.doRequest(ctx, http.MethodGet, endpoint, nil, &response); err != nil {
			return nil, err
		}

		for _, item := range response.Items {
			if item.Track == nil {
				continue
			}
			all = append(all, toTrack(*item.Track))
		}

		if response.Next == nil {
			break
		}
		offset += limit
	}

	return all, nil
}

// CreatePlaylist creates a private playlist for the authenticated user.
func (s *SpotifyService) CreatePlaylist(ctx context.Context, name, description string) (*models.Playlist, error) {
	profile, err := s.Me(ctx)
	if err != nil {
		return nil, err
	}

	endpoint := fmt.Sprintf("/users/%s/playlists", url.PathEscape(profile.ID))
	body := map[string]any{
		"name":        name,
		"description": description,
		"public":      false,
	}

	var sp SpotifyPlaylist
	if err := s.doRequest(ctx, http.MethodPost, endpoint, body, &sp); err != nil {
		return nil, err
	}

	playlist := toPlaylist(sp)
	return &playlist, nil
}

// trackURI builds a Spotify track URI from a track ID.
func trackURI(trackID string) string {
	return "spotify:track:" + trackID
}

// AddTracks adds tracks by ID to a playlist. Spotify accepts at most 100 tracks per call.
func (s *SpotifyService) AddTracks(ctx context.Context, playlistID string, trackIDs []string) error {
	if len(trackIDs) == 0 {
		return nil
	}
	if len(trackIDs) > 100 {
		return fmt.Errorf("%w: at most 100 tracks per call, got %d", shared.ErrInvalidArgument, len(trackIDs))
	}

	uris := make([]string, 0, len(trackIDs))
	for _, id := range trackIDs {
		uris = append(uris, trackURI(id))
	}

	endpoint := fmt.Sprintf("/playlists/%s/tracks", url.PathEscape(playlistID))
	body := map[string]any{"uris": uris}

	return s.doRequest(ctx, http.MethodPost, endpoint, body, nil)
}

// RemoveTracks removes tracks by ID from a playlist. Spotify accepts at most 100 tracks per call.
func (s *SpotifyService) RemoveTracks(ctx context.Context, playlistID string, trackIDs []string) error {
	if len(trackIDs) == 0 {
		return nil
	}
	if len(trackIDs) > 100 {
		return fmt.Errorf("%w: at most 100 tracks per call, got %d", shared.ErrInvalidArgument, len(trackIDs))
	}

	tracks := make([]map[string]string, 0, len(trackIDs))
	for _, id := range trackIDs {
		tracks = append(tracks, map[string]string{"uri": trackURI(id)})
	}

	endpoint := fmt.Sprintf("/playlists/%s/tracks", url.PathEscape(playlistID))
	body := map[string]any{"tracks": tracks}

	return s.doRequest(ctx, http.MethodDelete, endpoint, body, nil)
}

// SearchTracks runs a track search and returns candidate tracks.
func (s *SpotifyService) SearchTracks(ctx context.Context, query string) ([]models.Track, error) {
	endpoint := fmt.Sprintf("/search?q=%s&type=track&limit=50", url.QueryEscape(query))

	var response struct {
		Tracks struct {
			Items []SpotifyTrack `json:"items"`
		} `json:"tracks"`
	}

	if err := s.doRequest(ctx, http.MethodGet, endpoint, nil, &response); err != nil {
		return nil, err
	}

	tracks := make([]models.Track, 0, len(response.Tracks.Items))
	for _, st := range response.Tracks.Items {
		tracks = append(tracks, toTrack(st))
	}

	return tracks, nil
}

func toTrack(st SpotifyTrack) models.Track {
	artists := make([]string, 0, len(st.Artists))
	for _, a := range st.Artists {
		artists = append(artists, a.Name)
	}

	return models.Track{
		ID:       st.ID,
		Name:     st.Name,
		Artists:  artists,
		Explicit: st.Explicit,
		URI:      st.URI,
	}
}

func toPlaylist(sp SpotifyPlaylist) models.Playlist {
	return models.Playlist{
		ID:          sp.ID,
		Name:        sp.Name,
		Description: sp.Description,
		TrackCount:  sp.Tracks.Total,
		Public:      sp.Public,
	}
}
