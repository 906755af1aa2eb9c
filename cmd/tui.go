package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/t-murch/radio-wash-sub000/internal/notify"
	"github.com/t-murch/radio-wash-sub000/internal/repositories"
	"github.com/t-murch/radio-wash-sub000/internal/shared"
	"github.com/t-murch/radio-wash-sub000/internal/ui"
	"github.com/urfave/cli/v3"
)

// TUI launches the interactive terminal UI for playlist cleaning.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	if r.catalog == nil {
		return fmt.Errorf("%w: run 'radiowash auth login' first", shared.ErrNotAuthenticated)
	}

	db, err := r.database()
	if err != nil {
		return err
	}

	user, err := r.currentUser(ctx, db)
	if err != nil {
		return err
	}

	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger("./tmp/radiowash-tui.log")
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	r.SetLogger(fileLogger)

	notifier := notify.NewChannelNotifier(16)
	defer notifier.Close()

	cleaner := r.cleaner(db, notifier)
	jobs := repositories.NewCleanJobRepository(db)
	mappings := repositories.NewTrackMappingRepository(db)

	model := ui.NewModel(ctx, r.catalog, cleaner, jobs, mappings, user.ID(), notifier.Updates())
	p := tea.NewProgram(model)

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}
