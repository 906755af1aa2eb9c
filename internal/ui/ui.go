package ui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/t-murch/radio-wash-sub000/internal/models"
	"github.com/t-murch/radio-wash-sub000/internal/repositories"
	"github.com/t-murch/radio-wash-sub000/internal/services"
	"github.com/t-murch/radio-wash-sub000/internal/tasks"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	PlaylistListView ViewState = iota
	TrackListView
	ConfirmView
	CleanView
	ResultView
)

// Model represents the TUI application state.
type Model struct {
	ctx          context.Context
	view         ViewState
	catalog      services.Catalog
	cleaner      *tasks.Cleaner
	mappings     *repositories.TrackMappingRepository
	jobs         *repositories.CleanJobRepository
	userID       string
	width        int
	height       int
	playlistList list.Model
	playlists    []models.Playlist
	trackList    list.Model
	selected     *models.Playlist
	tracks       []models.Track
	progress     tasks.ProgressUpdate
	progressChan <-chan tasks.ProgressUpdate
	doneChan     chan cleanDoneMsg
	job          *models.CleanJob
	unmatched    []*models.TrackMapping
	err          error
	help         help.Model
	keys         keyMap
}

type playlistsFetchedMsg struct {
	playlists []models.Playlist
	err       error
}

type tracksFetchedMsg struct {
	playlist *models.Playlist
	tracks   []models.Track
	err      error
}

type progressUpdateMsg tasks.ProgressUpdate

type cleanDoneMsg struct {
	job       *models.CleanJob
	unmatched []*models.TrackMapping
	err       error
}

// NewModel creates a new TUI model with the provided dependencies.
//
// The progress channel must be the one feeding the cleaner's notifier, so
// the clean view can render live updates.
func NewModel(ctx context.Context, catalog services.Catalog, cleaner *tasks.Cleaner, jobs *repositories.CleanJobRepository, mappings *repositories.TrackMappingRepository, userID string, progress <-chan tasks.ProgressUpdate) *Model {
	return &Model{
		ctx:          ctx,
		view:         PlaylistListView,
		catalog:      catalog,
		cleaner:      cleaner,
		jobs:         jobs,
		mappings:     mappings,
		userID:       userID,
		progressChan: progress,
		help:         help.New(),
		keys:         newKeyMap(),
	}
}

// Init initializes the TUI by fetching the user's playlists.
func (m *Model) Init() tea.Cmd {
	return m.fetchPlaylists()
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.playlistList.Width() == 0 {
			m.playlistList.SetSize(msg.Width-4, msg.Height-8)
		}
		if m.trackList.Width() == 0 {
			m.trackList.SetSize(msg.Width-4, msg.Height-8)
		}
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case PlaylistListView:
			return m.handlePlaylistListKeys(msg)
		case TrackListView:
			return m.handleTrackListKeys(msg)
		case ConfirmView:
			return m.handleConfirmKeys(msg)
		case ResultView:
			return m.handleResultKeys(msg)
		}

	case playlistsFetchedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, tea.Quit
		}
		m.playlists = msg.playlists
		items := make([]list.Item, len(msg.playlists))
		for i, pl := range msg.playlists {
			items[i] = playlistItem{playlist: pl}
		}
		m.playlistList = list.New(items, list.NewDefaultDelegate(), 0, 0)
		m.playlistList.Title = "Your Playlists"
		m.playlistList.SetSize(m.width-4, m.height-8)
		return m, nil

	case tracksFetchedMsg:
		if msg.err != nil {
			m.err = msg.err
			m.view = PlaylistListView
			return m, nil
		}
		m.selected = msg.playlist
		m.tracks = msg.tracks
		items := make([]list.Item, len(msg.tracks))
		for i, track := range msg.tracks {
			items[i] = trackItem{track: track}
		}
		m.trackList = list.New(items, list.NewDefaultDelegate(), 0, 0)
		m.trackList.Title = fmt.Sprintf("Tracks in '%s'", msg.playlist.Name)
		m.trackList.SetSize(m.width-4, m.height-8)
		m.view = TrackListView
		return m, nil

	case progressUpdateMsg:
		m.progress = tasks.ProgressUpdate(msg)
		return m, m.waitForActivity()

	case cleanDoneMsg:
		m.job = msg.job
		m.unmatched = msg.unmatched
		m.err = msg.err
		m.view = ResultView
		return m, nil
	}

	return m.updateLists(msg)
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	if m.err != nil && m.view != ResultView {
		return styles.err.Render(fmt.Sprintf("Error: %v\n\nPress q to quit", m.err))
	}

	switch m.view {
	case PlaylistListView:
		return m.renderPlaylistList()
	case TrackListView:
		return m.renderTrackList()
	case ConfirmView:
		return m.renderConfirm()
	case CleanView:
		return m.renderClean()
	case ResultView:
		return m.renderResult()
	default:
		return ""
	}
}

func (m *Model) handlePlaylistListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "enter":
		selected := m.playlistList.SelectedItem()
		if selected != nil {
			if pl, ok := selected.(playlistItem); ok {
				return m, m.fetchTracks(pl.playlist.ID)
			}
		}
	}

	var cmd tea.Cmd
	m.playlistList, cmd = m.playlistList.Update(msg)
	return m, cmd
}

func (m *Model) handleTrackListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "esc":
		m.view = PlaylistListView
		return m, nil
	case "enter":
		m.view = ConfirmView
		return m, nil
	}

	var cmd tea.Cmd
	m.trackList, cmd = m.trackList.Update(msg)
	return m, cmd
}

func (m *Model) handleConfirmKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "n":
		m.view = TrackListView
		return m, nil
	case "y":
		m.view = CleanView
		return m, m.startClean()
	}
	return m, nil
}

func (m *Model) handleResultKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "r":
		m.view = PlaylistListView
		m.selected = nil
		m.job = nil
		m.unmatched = nil
		m.err = nil
		return m, nil
	}
	return m, nil
}

func (m *Model) updateLists(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.view {
	case PlaylistListView:
		m.playlistList, cmd = m.playlistList.Update(msg)
	case TrackListView:
		m.trackList, cmd = m.trackList.Update(msg)
	}
	return m, cmd
}

func (m *Model) fetchPlaylists() tea.Cmd {
	return func() tea.Msg {
		playlists, err := m.catalog.GetPlaylists(m.ctx)
		return playlistsFetchedMsg{playlists: playlists, err: err}
	}
}

func (m *Model) fetchTracks(playlistID string) tea.Cmd {
	return func() tea.Msg {
		playlist, err := m.catalog.GetPlaylist(m.ctx, playlistID)
		if err != nil {
			return tracksFetchedMsg{err: err}
		}
		tracks, err := m.catalog.GetPlaylistTracks(m.ctx, playlistID)
		return tracksFetchedMsg{playlist: playlist, tracks: tracks, err: err}
	}
}

func (m *Model) startClean() tea.Cmd {
	m.doneChan = make(chan cleanDoneMsg, 1)

	go func() {
		job, err := m.cleaner.CreateJob(m.ctx, m.userID, m.selected.ID, "")
		if err != nil {
			m.doneChan <- cleanDoneMsg{err: err}
			return
		}

		runErr := m.cleaner.ProcessJob(m.ctx, job.ID())

		done, getErr := m.jobs.Get(job.ID())
		if getErr != nil {
			done = job
		}

		var unmatched []*models.TrackMapping
		if mappings, listErr := m.mappings.ListByJob(job.ID()); listErr == nil {
			for _, mapping := range mappings {
				if !mapping.HasCleanMatch() {
					unmatched = append(unmatched, mapping)
				}
			}
		}

		m.doneChan <- cleanDoneMsg{job: done, unmatched: unmatched, err: runErr}
	}()

	return m.waitForActivity()
}

// waitForActivity blocks on the next progress update or the final result.
func (m *Model) waitForActivity() tea.Cmd {
	return func() tea.Msg {
		select {
		case done := <-m.doneChan:
			return done
		case update := <-m.progressChan:
			return progressUpdateMsg(update)
		}
	}
}

func (m *Model) renderPlaylistList() string {
	helpKeys := []key.Binding{m.keys.enter, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)
	return fmt.Sprintf("%s\n\n%s", m.playlistList.View(), helpView)
}

func (m *Model) renderTrackList() string {
	cleanKey := key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "clean"),
	)
	helpKeys := []key.Binding{cleanKey, m.keys.back, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)
	return fmt.Sprintf("%s\n\n%s", m.trackList.View(), helpView)
}

func (m *Model) renderConfirm() string {
	explicit := 0
	for _, track := range m.tracks {
		if track.Explicit {
			explicit++
		}
	}

	title := styles.title.Render(fmt.Sprintf("Create a clean copy of '%s'?", m.selected.Name))
	info := fmt.Sprintf("\nPlaylist: %s\nTracks: %d\nExplicit: %d\n", m.selected.Name, len(m.tracks), explicit)

	helpKeys := []key.Binding{m.keys.yes, m.keys.no, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)

	return fmt.Sprintf("%s\n%s\n%s", title, info, helpView)
}

func (m *Model) renderClean() string {
	title := styles.title.Render("Cleaning Playlist")

	status := "Starting..."
	if m.progress.Total > 0 {
		status = fmt.Sprintf("Resolving tracks (%d/%d) %d%%", m.progress.Processed, m.progress.Total, m.progress.Percent)
	}

	return fmt.Sprintf("%s\n\n%s\n%s", title, status, m.progress.Message)
}

func (m *Model) renderResult() string {
	if m.err != nil {
		return styles.err.Render(fmt.Sprintf("Clean failed: %v\n\nPress r to retry, q to quit", m.err))
	}

	if m.job == nil {
		return styles.err.Render("No result available\n\nPress r to retry, q to quit")
	}

	title := styles.ok.Render("✓ Clean Copy Created!")
	info := fmt.Sprintf(
		"\nSource: %s (%d tracks)\nCreated: %s\nMatched: %d/%d",
		m.job.SourcePlaylistName(),
		m.job.TotalTracks(),
		m.job.TargetPlaylistName(),
		m.job.MatchedTracks(),
		m.job.TotalTracks(),
	)

	var failed string
	if len(m.unmatched) > 0 {
		failed = fmt.Sprintf("\n\n%s", styles.warn.Render(fmt.Sprintf("No clean version found for %d tracks:", len(m.unmatched))))
		for _, mapping := range m.unmatched {
			failed += fmt.Sprintf("\n  • %s - %s", mapping.SourceArtist(), mapping.SourceTrackName())
		}
	}

	helpKeys := []key.Binding{m.keys.restart, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)

	return fmt.Sprintf("%s\n%s%s\n\n%s", title, info, failed, helpView)
}
