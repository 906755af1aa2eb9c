package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/t-murch/radio-wash-sub000/internal/models"
	"github.com/t-murch/radio-wash-sub000/internal/notify"
	"github.com/t-murch/radio-wash-sub000/internal/repositories"
	"github.com/t-murch/radio-wash-sub000/internal/services"
	"github.com/t-murch/radio-wash-sub000/internal/shared"
	"github.com/t-murch/radio-wash-sub000/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config  *shared.Config
	catalog services.Catalog
	logger  *log.Logger
	output  io.Writer
	db      *sql.DB
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config  *shared.Config
	Catalog services.Catalog
	Logger  *log.Logger
	Output  io.Writer
	DB      *sql.DB
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}

	return &Runner{
		config:  opts.Config,
		catalog: opts.Catalog,
		logger:  opts.Logger,
		output:  opts.Output,
		db:      opts.DB,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, authCommand, playlistsCommand, jobsCommand, syncCommand, workerCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// SetLogger swaps the runner's logger, used when the TUI takes over the terminal.
func (r *Runner) SetLogger(l *log.Logger) {
	r.logger = l
}

// database opens the configured database on first use.
func (r *Runner) database() (*sql.DB, error) {
	if r.db != nil {
		return r.db, nil
	}

	db, err := shared.NewDatabase(r.config.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database (run 'radiowash setup' first): %w", err)
	}
	shared.ConfigureDatabase(db, r.config.Database.MaxOpenConns, r.config.Database.MaxIdleConns)

	r.db = db
	return db, nil
}

// notifier picks the progress sink: Redis when configured, the log otherwise.
func (r *Runner) notifier() tasks.Notifier {
	if r.config.Notifier.Addr != "" {
		return notify.NewRedisPublisher(r.config.Notifier.Addr, r.config.Notifier.Password, r.config.Notifier.DB)
	}
	return notify.NewLogNotifier(r.logger)
}

// cleaner builds the cleaning engine over the given database.
func (r *Runner) cleaner(db *sql.DB, notifier tasks.Notifier) *tasks.Cleaner {
	if notifier == nil {
		notifier = r.notifier()
	}
	return tasks.NewCleaner(
		r.catalog,
		repositories.NewCleanJobRepository(db),
		repositories.NewTrackMappingRepository(db),
		notifier,
		r.logger,
	)
}

// syncer builds the sync engine over the given database.
func (r *Runner) syncer(db *sql.DB) *tasks.Syncer {
	return tasks.NewSyncer(
		r.catalog,
		repositories.NewCleanJobRepository(db),
		repositories.NewTrackMappingRepository(db),
		repositories.NewSyncConfigRepository(db),
		repositories.NewSyncHistoryRepository(db),
		repositories.NewUserRepository(db),
		r.logger,
	)
}

// currentUser resolves the authenticated account to a local user row,
// creating it on first sight and keeping the premium flag current.
func (r *Runner) currentUser(ctx context.Context, db *sql.DB) (*models.User, error) {
	if r.catalog == nil {
		return nil, fmt.Errorf("%w: catalog service not initialized", shared.ErrNotAuthenticated)
	}

	profile, err := r.catalog.Me(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load account profile: %w", err)
	}

	users := repositories.NewUserRepository(db)

	user, err := users.GetByEmail(profile.Email)
	if errors.Is(err, shared.ErrUserNotFound) {
		user = models.NewUser(0, profile.Email, profile.DisplayName)
		user.SetPremium(profile.Premium)
		if err := users.Create(user); err != nil {
			return nil, err
		}
		r.logger.Info("registered user", "email", profile.Email, "premium", profile.Premium)
		return user, nil
	}
	if err != nil {
		return nil, err
	}

	if user.Premium() != profile.Premium || user.DisplayName() != profile.DisplayName {
		user.SetPremium(profile.Premium)
		user.SetDisplayName(profile.DisplayName)
		user.SetUpdatedAt(time.Now())
		if err := users.Update(user); err != nil {
			return nil, err
		}
	}

	return user, nil
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
