package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/rmp/internal/feed"
	"github.com/desertthunder/rmp/internal/models"
	"github.com/desertthunder/rmp/internal/services"
	"github.com/desertthunder/rmp/internal/shared"
	"github.com/desertthunder/rmp/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Resolver looks up metadata for an external media URL.
type Resolver interface {
	Resolve(ctx context.Context, trackURL string) (*models.MediaInfo, error)
}

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	fetcher    feed.Fetcher
	engine     tasks.Engine
	soundcloud Resolver
	auth       *services.RedditAuth
	logger     *log.Logger
	output     io.Writer
	openDB     func(shared.DatabaseConfig) (*sql.DB, error)

	dbOnce sync.Once
	db     *sql.DB
	dbErr  error
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	Fetcher    feed.Fetcher
	Engine     tasks.Engine
	SoundCloud Resolver
	Auth       *services.RedditAuth
	Logger     *log.Logger
	Output     io.Writer

	// OpenDB opens the local database; defaults to [shared.OpenDatabase].
	OpenDB func(shared.DatabaseConfig) (*sql.DB, error)
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
	if opts.OpenDB == nil {
		opts.OpenDB = shared.OpenDatabase
	}
	if opts.Engine == nil && opts.Fetcher != nil {
		opts.Engine = tasks.NewFeedEngine(opts.Fetcher, tasks.EngineOpts{Logger: opts.Logger})
	}

	return &Runner{
		config:     opts.Config,
		fetcher:    opts.Fetcher,
		engine:     opts.Engine,
		soundcloud: opts.SoundCloud,
		auth:       opts.Auth,
		logger:     opts.Logger,
		output:     opts.Output,
		openDB:     opts.OpenDB,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		feedCommand, searchCommand, commentsCommand, resolveCommand, subredditsCommand,
		historyCommand, authCommand, setupCommand, serveCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// SetLogger replaces the logger used by subsequent commands.
func (r *Runner) SetLogger(logger *log.Logger) {
	r.logger = logger
}

// database opens the local database on first use.
func (r *Runner) database() (*sql.DB, error) {
	r.dbOnce.Do(func() {
		r.db, r.dbErr = r.openDB(r.config.Database)
		if r.dbErr != nil {
			r.dbErr = fmt.Errorf("failed to open database %s: %w", r.config.Database.Path, r.dbErr)
		}
	})
	return r.db, r.dbErr
}

// Close releases the database if one was opened.
func (r *Runner) Close() error {
	if r.db == nil {
		return nil
	}
	return r.db.Close()
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

func (r *Runner) writeBytes(data []byte) error {
	if _, err := r.output.Write(data); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}
