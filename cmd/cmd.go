// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

func configFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to configuration file",
		Value:   "config.toml",
	}
}

// setupCommand initializes the database
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "setup",
		Usage:  "Initialize database and run migrations",
		Flags:  []cli.Flag{configFlag()},
		Action: r.SetupDatabase,
	}
}

// authCommand handles the login flow
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Spotify authentication",
		Commands: []*cli.Command{
			{
				Name:   "login",
				Usage:  "Authenticate with Spotify using OAuth2",
				Flags:  []cli.Flag{configFlag()},
				Action: r.AuthLogin,
			},
			{
				Name:   "status",
				Usage:  "Show the authenticated account",
				Action: r.AuthStatus,
			},
		},
	}
}

// playlistsCommand lists and inspects playlists
func playlistsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "playlists",
		Aliases: []string{"pl"},
		Usage:   "Playlist operations",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List your playlists",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of playlists to return",
						Value: 50,
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
					},
				},
				Action: r.PlaylistsList,
			},
			{
				Name:      "show",
				Usage:     "Show a playlist's tracks, explicit ones flagged",
				Arguments: []cli.Argument{&cli.StringArg{Name: "id"}},
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
					},
				},
				Action: r.PlaylistsShow,
			},
		},
	}
}

// jobsCommand manages clean-playlist jobs
func jobsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "jobs",
		Usage: "Clean-playlist jobs",
		Commands: []*cli.Command{
			{
				Name:      "create",
				Usage:     "Queue a clean copy of a playlist",
				Arguments: []cli.Argument{&cli.StringArg{Name: "playlist"}},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "name",
						Aliases: []string{"n"},
						Usage:   "Name for the cleaned playlist",
					},
					&cli.BoolFlag{
						Name:  "run",
						Usage: "Process the job immediately",
					},
				},
				Action: r.JobsCreate,
			},
			{
				Name:      "process",
				Usage:     "Process a pending job",
				Arguments: []cli.Argument{&cli.StringArg{Name: "id"}},
				Action:    r.JobsProcess,
			},
			{
				Name:  "list",
				Usage: "List your jobs",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "status",
						Usage: "Filter by status (pending, processing, completed, failed)",
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.JobsList,
			},
			{
				Name:      "show",
				Usage:     "Show a job and its track mappings",
				Arguments: []cli.Argument{&cli.StringArg{Name: "id"}},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Write CSV and Markdown report files with this base name",
					},
				},
				Action: r.JobsShow,
			},
		},
	}
}

// syncCommand manages recurring playlist syncs
func syncCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "sync",
		Usage: "Keep cleaned playlists up to date (premium)",
		Commands: []*cli.Command{
			{
				Name:      "enable",
				Usage:     "Enable scheduled sync for a completed job",
				Arguments: []cli.Argument{&cli.StringArg{Name: "job"}},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "frequency",
						Aliases: []string{"f"},
						Usage:   "Sync frequency: daily, weekly, or monthly",
					},
				},
				Action: r.SyncEnable,
			},
			{
				Name:      "disable",
				Usage:     "Disable a sync config",
				Arguments: []cli.Argument{&cli.StringArg{Name: "id"}},
				Action:    r.SyncDisable,
			},
			{
				Name:      "now",
				Usage:     "Run a sync immediately",
				Arguments: []cli.Argument{&cli.StringArg{Name: "id"}},
				Action:    r.SyncNow,
			},
			{
				Name:   "list",
				Usage:  "List your sync configs",
				Action: r.SyncList,
			},
			{
				Name:      "history",
				Usage:     "Show recent runs for a sync config",
				Arguments: []cli.Argument{&cli.StringArg{Name: "id"}},
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Number of runs to show",
						Value: 20,
					},
				},
				Action: r.SyncHistory,
			},
		},
	}
}

// workerCommand runs the background worker loop
func workerCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "worker",
		Usage:  "Run the background worker (jobs and scheduled syncs)",
		Action: r.WorkerRun,
	}
}

// tuiCommand launches the interactive terminal UI
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "tui",
		Usage:  "Launch interactive terminal UI",
		Action: r.TUI,
	}
}
