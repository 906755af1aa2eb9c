// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"testing"

	"github.com/t-murch/radio-wash-sub000/internal/models"
	"github.com/t-murch/radio-wash-sub000/internal/services"
)

// MockCatalog is a configurable test double for [services.Catalog]. Zero
// value behaves like an empty platform; set the fields and funcs a test
// cares about. Call counters record interaction cardinality.
type MockCatalog struct {
	Profile   services.Profile
	Playlists []models.Playlist
	// Tracks maps playlist ID to its track list.
	Tracks map[string][]models.Track
	// SearchResults maps a query substring to result tracks; the first
	// matching entry wins.
	SearchResults map[string][]models.Track
	SearchErr     error
	CreateErr     error
	AddErr        error
	RemoveErr     error

	SearchCalls  int
	AddCalls     [][]string
	RemoveCalls  [][]string
	CreatedNames []string
}

func (m *MockCatalog) Authenticate(ctx context.Context, credentials map[string]string) error {
	return nil
}

func (m *MockCatalog) Me(ctx context.Context) (*services.Profile, error) {
	return &m.Profile, nil
}

func (m *MockCatalog) GetPlaylists(ctx context.Context) ([]models.Playlist, error) {
	return m.Playlists, nil
}

func (m *MockCatalog) GetPlaylist(ctx context.Context, playlistID string) (*models.Playlist, error) {
	for i := range m.Playlists {
		if m.Playlists[i].ID == playlistID {
			return &m.Playlists[i], nil
		}
	}
	return nil, fmt.Errorf("playlist %s not found", playlistID)
}

func (m *MockCatalog) GetPlaylistTracks(ctx context.Context, playlistID string) ([]models.Track, error) {
	return m.Tracks[playlistID], nil
}

func (m *MockCatalog) CreatePlaylist(ctx context.Context, name, description string) (*models.Playlist, error) {
	if m.CreateErr != nil {
		return nil, m.CreateErr
	}
	m.CreatedNames = append(m.CreatedNames, name)
	playlist := models.Playlist{ID: fmt.Sprintf("created-%d", len(m.CreatedNames)), Name: name, Description: description}
	m.Playlists = append(m.Playlists, playlist)
	return &playlist, nil
}

func (m *MockCatalog) AddTracks(ctx context.Context, playlistID string, trackIDs []string) error {
	if m.AddErr != nil {
		return m.AddErr
	}
	m.AddCalls = append(m.AddCalls, trackIDs)
	if m.Tracks == nil {
		m.Tracks = map[string][]models.Track{}
	}
	for _, id := range trackIDs {
		m.Tracks[playlistID] = append(m.Tracks[playlistID], models.Track{ID: id})
	}
	return nil
}

func (m *MockCatalog) RemoveTracks(ctx context.Context, playlistID string, trackIDs []string) error {
	if m.RemoveErr != nil {
		return m.RemoveErr
	}
	m.RemoveCalls = append(m.RemoveCalls, trackIDs)

	drop := make(map[string]bool, len(trackIDs))
	for _, id := range trackIDs {
		drop[id] = true
	}
	var kept []models.Track
	for _, t := range m.Tracks[playlistID] {
		if !drop[t.ID] {
			kept = append(kept, t)
		}
	}
	m.Tracks[playlistID] = kept
	return nil
}

func (m *MockCatalog) SearchTracks(ctx context.Context, query string) ([]models.Track, error) {
	m.SearchCalls++
	if m.SearchErr != nil {
		return nil, m.SearchErr
	}
	for key, tracks := range m.SearchResults {
		if strings.Contains(query, key) {
			return tracks, nil
		}
	}
	return nil, nil
}

func (m *MockCatalog) Name() string { return "mock" }

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

// FCloser simulates a failure when reading response body
type FCloser struct{}

func (f *FCloser) Read(p []byte) (n int, err error) {
	return 0, errors.New("read failed")
}

func (f *FCloser) Close() error {
	return nil
}

func MustGetwd(t *testing.T) string {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get working directory: %v", err)
	}
	return wd
}

func MustChdir(t *testing.T, dir string) {
	t.Helper()
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Failed to change directory to %s: %v", dir, err)
	}
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
