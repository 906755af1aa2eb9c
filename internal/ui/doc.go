// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI provides a multi-view workflow for playlist cleaning:
//  1. [PlaylistListView] : Browse and select playlists
//  2. [TrackListView] : Preview tracks, explicit ones flagged
//  3. [ConfirmView] : Confirm the clean operation
//  4. [CleanView] : Monitor real-time progress updates
//  5. [ResultView] : Display match counts and unmatched tracks
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern.
// Progress updates flow through a channel fed by the cleaner's notifier,
// providing non-blocking status reporting during a run.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, y/n, q) with contextual help displayed via charmbracelet/bubbles/help.
package ui
