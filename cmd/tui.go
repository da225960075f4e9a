package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/rmp/internal/feed"
	"github.com/desertthunder/rmp/internal/models"
	"github.com/desertthunder/rmp/internal/playback"
	"github.com/desertthunder/rmp/internal/repositories"
	"github.com/desertthunder/rmp/internal/shared"
	"github.com/desertthunder/rmp/internal/ui"
	"github.com/urfave/cli/v3"
)

// TUI launches the interactive player.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	if r.fetcher == nil {
		return fmt.Errorf("%w: feed fetcher not initialized", shared.ErrServiceUnavailable)
	}

	q, err := feedQuery(cmd)
	if err != nil {
		return err
	}

	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, closer := shared.NewFileLogger(r.config.Log)
	defer closer.Close()
	shared.SetLogLevel(fileLogger, shared.ParseLogLevel(r.config.Log.Level))
	r.SetLogger(fileLogger)

	var player playback.Player = playback.NopPlayer{}
	if r.config.Player.OpenBrowser {
		player = playback.NewBrowserPlayer()
	}

	opts := playback.SessionOpts{
		Player: player,
		Logger: shared.WithLogger(fileLogger, "component", "playback"),
		Volume: r.config.Player.Volume,
	}
	if db, err := r.database(); err != nil {
		fileLogger.Warn("play history disabled", "error", err)
	} else {
		history := repositories.NewHistoryRepository(db)
		opts.OnTrackChange = func(t models.Track) {
			if err := history.Record(t); err != nil {
				fileLogger.Warn("failed to record history", "track", t.ID, "error", err)
			}
		}
	}
	session := playback.NewSession(opts)

	loader := feed.NewLoader(r.fetcher, r.config.Reddit.CommentLimit)
	defer loader.Cancel()

	model := ui.NewModel(ctx, ui.Opts{
		Loader:  loader,
		Session: session,
		Query:   q,
		Logger:  shared.WithLogger(fileLogger, "component", "ui"),
	})
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	ui.Subscribe(p, session)

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}
