package main

import (
	"context"
	"fmt"

	"github.com/t-murch/radio-wash-sub000/internal/shared"
	"github.com/urfave/cli/v3"
)

// PlaylistsList lists the authenticated user's playlists.
func (r *Runner) PlaylistsList(ctx context.Context, cmd *cli.Command) error {
	limit := cmd.Int("limit")
	useJSON := cmd.Bool("json")
	pretty := cmd.Bool("pretty")

	if r.catalog == nil {
		return fmt.Errorf("%w: run 'radiowash auth login' first", shared.ErrNotAuthenticated)
	}

	r.logger.Infof("listing playlists with limit %v", limit)

	playlists, err := r.catalog.GetPlaylists(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}

	if limit > 0 && limit < len(playlists) {
		playlists = playlists[:limit]
	}

	if useJSON {
		return r.writeJSON(playlists, pretty)
	}

	r.writePlain("Found %d playlists:\n\n", len(playlists))
	for i, p := range playlists {
		r.writePlain("%d. %s\n", i+1, p.Name)
		if p.Description != "" {
			r.writePlain("   Description: %s\n", p.Description)
		}
		r.writePlain("   ID: %s\n", p.ID)
		r.writePlain("   Tracks: %d\n", p.TrackCount)
		if p.Public {
			r.writePlain("   Visibility: Public\n")
		} else {
			r.writePlain("   Visibility: Private\n")
		}
		r.writePlain("\n")
	}

	return nil
}

// PlaylistsShow prints a playlist's tracks, flagging explicit ones.
func (r *Runner) PlaylistsShow(ctx context.Context, cmd *cli.Command) error {
	playlistID := cmd.StringArg("id")
	useJSON := cmd.Bool("json")
	pretty := cmd.Bool("pretty")

	if playlistID == "" {
		return fmt.Errorf("%w: playlist ID is required", shared.ErrMissingArgument)
	}

	if r.catalog == nil {
		return fmt.Errorf("%w: run 'radiowash auth login' first", shared.ErrNotAuthenticated)
	}

	playlist, err := r.catalog.GetPlaylist(ctx, playlistID)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}

	tracks, err := r.catalog.GetPlaylistTracks(ctx, playlistID)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}

	if useJSON {
		return r.writeJSON(map[string]any{"playlist": playlist, "tracks": tracks}, pretty)
	}

	explicit := 0
	for _, t := range tracks {
		if t.Explicit {
			explicit++
		}
	}

	r.writePlain("Playlist: %s\n", playlist.Name)
	if playlist.Description != "" {
		r.writePlain("Description: %s\n", playlist.Description)
	}
	r.writePlain("Tracks: %d (%d explicit)\n\n", len(tracks), explicit)

	for i, track := range tracks {
		flag := ""
		if track.Explicit {
			flag = " [E]"
		}
		r.writePlain("%d. %s - %s%s\n", i+1, track.ArtistLine(), track.Name, flag)
	}

	return nil
}
