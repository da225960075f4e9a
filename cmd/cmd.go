// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

// feedCommand lists the playable tracks of a subreddit
func feedCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "feed",
		Aliases: []string{"f"},
		Usage:   "List tracks posted to a subreddit",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "subreddit",
				Aliases: []string{"s"},
				Usage:   "Subreddit name, without the r/ prefix",
				Value:   r.config.Reddit.DefaultSubreddit,
			},
			&cli.StringFlag{
				Name:  "sort",
				Usage: "Listing order: hot, new, or top",
				Value: "hot",
			},
			&cli.StringFlag{
				Name:  "time",
				Usage: "Time window for top: hour, day, week, month, year, or all",
				Value: "day",
			},
			&cli.IntFlag{
				Name:  "limit",
				Usage: "Posts per page (1-100)",
				Value: r.config.Reddit.PageSize,
			},
			&cli.IntFlag{
				Name:  "pages",
				Usage: "Number of pages to follow",
				Value: 1,
			},
			&cli.StringFlag{
				Name:  "preset",
				Usage: "Named filter: trending, newest, mostCommented, or highScore",
			},
			&cli.StringFlag{
				Name:    "query",
				Aliases: []string{"q"},
				Usage:   "Only keep tracks whose title contains this text",
			},
			&cli.IntFlag{
				Name:  "min-score",
				Usage: "Only keep tracks with at least this score",
			},
			&cli.IntFlag{
				Name:  "max-score",
				Usage: "Only keep tracks with at most this score",
			},
			&cli.StringFlag{
				Name:  "sort-by",
				Usage: "Order tracks by score, date, comments, or relevance",
			},
			&cli.StringFlag{
				Name:  "order",
				Usage: "Sort direction: desc or asc",
			},
			&cli.StringFlag{
				Name:  "source",
				Usage: "Only keep tracks whose domain contains this text (e.g. youtube)",
			},
			&cli.BoolFlag{
				Name:  "has-thumbnail",
				Usage: "Only keep tracks with a thumbnail",
			},
			&cli.StringFlag{
				Name:  "date",
				Usage: "Only keep tracks posted within: today, day, week, month, year, or all",
			},
			&cli.StringFlag{
				Name:  "format",
				Usage: "Output format: text, csv, markdown, or json",
				Value: "text",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Write the export to this file instead of stdout",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output the raw collect result as JSON",
			},
			&cli.BoolFlag{
				Name:  "pretty",
				Usage: "Pretty-print JSON output",
				Value: true,
			},
		},
		Action: r.Feed,
	}
}

// searchCommand ranks a subreddit's all-time listing against a query
func searchCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "search",
		Usage: "Search a subreddit's tracks by title",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "query"},
		},
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "subreddit",
				Aliases: []string{"s"},
				Usage:   "Subreddit name, without the r/ prefix",
				Value:   r.config.Reddit.DefaultSubreddit,
			},
			&cli.StringFlag{
				Name:  "sort",
				Usage: "Listing order searched",
				Value: "hot",
			},
			&cli.StringFlag{
				Name:  "sort-by",
				Usage: "Order matches by score, date, comments, or relevance",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
		},
		Action: r.Search,
	}
}

// commentsCommand prints a post's discussion thread
func commentsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "comments",
		Aliases: []string{"c"},
		Usage:   "Show the comment thread of a post",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "post-id"},
		},
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "subreddit",
				Aliases:  []string{"s"},
				Usage:    "Subreddit the post belongs to",
				Required: true,
			},
			&cli.IntFlag{
				Name:  "limit",
				Usage: "Maximum number of comments to request",
				Value: r.config.Reddit.CommentLimit,
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Write the thread to this file instead of stdout",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
		},
		Action: r.Comments,
	}
}

// resolveCommand looks up SoundCloud track metadata
func resolveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "resolve",
		Usage: "Resolve a SoundCloud URL to track metadata",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "url"},
		},
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
		},
		Action: r.Resolve,
	}
}

// subredditsCommand browses the curated subreddit catalog
func subredditsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "subreddits",
		Aliases: []string{"subs"},
		Usage:   "List curated music subreddits by genre",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "query"},
		},
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
		},
		Action: r.Subreddits,
	}
}

// historyCommand shows or clears the play history
func historyCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "Show recently played tracks",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "limit",
				Usage: "Number of entries to show",
				Value: 20,
			},
			&cli.BoolFlag{
				Name:  "clear",
				Usage: "Delete the play history",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
		},
		Action: r.History,
	}
}

// authCommand manages the stored Reddit authorization
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Manage Reddit authorization",
		Commands: []*cli.Command{
			{
				Name:  "url",
				Usage: "Print the Reddit authorization URL",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "open",
						Usage: "Open the URL in the browser",
					},
				},
				Action: r.AuthURL,
			},
			{
				Name:  "save",
				Usage: "Store an access token obtained from the authorization flow",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "path"},
				},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "token",
						Usage: "Access token (instead of a JSON file)",
					},
					&cli.IntFlag{
						Name:  "expires-in",
						Usage: "Token lifetime in seconds when using --token",
						Value: 3600,
					},
					&cli.StringFlag{
						Name:  "scope",
						Usage: "Granted scopes when using --token",
					},
				},
				Action: r.AuthSave,
			},
			{
				Name:   "status",
				Usage:  "Show whether a valid token is stored",
				Action: r.AuthStatus,
			},
			{
				Name:   "clear",
				Usage:  "Delete the stored token",
				Action: r.AuthClear,
			},
		},
	}
}

// setupCommand handles setup operations for the local database.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:  "database",
				Usage: "Initialize database and run migrations",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "config",
						Aliases: []string{"c"},
						Usage:   "Path to configuration file",
						Value:   "config.toml",
					},
					&cli.BoolFlag{
						Name:  "status",
						Usage: "List migrations and whether they are applied",
					},
					&cli.BoolFlag{
						Name:  "rollback",
						Usage: "Revert the most recent migration",
					},
				},
				Action: r.SetupDatabase,
			},
		},
	}
}

// serveCommand runs the JSON API
func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the feed, search, comments, and SoundCloud routes over HTTP",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "host",
				Usage: "Interface to listen on",
				Value: r.config.Server.Host,
			},
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Port to listen on",
				Value:   r.config.Server.Port,
			},
		},
		Action: r.Serve,
	}
}

// tuiCommand returns the top-level TUI command for interactive listening.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"play", "ui"},
		Usage:   "Launch the interactive player",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "subreddit",
				Aliases: []string{"s"},
				Usage:   "Subreddit to open, or custom-reddit to be prompted",
				Value:   r.config.Reddit.DefaultSubreddit,
			},
			&cli.StringFlag{
				Name:  "sort",
				Usage: "Listing order",
				Value: "hot",
			},
			&cli.StringFlag{
				Name:  "time",
				Usage: "Time window for top",
				Value: "day",
			},
			&cli.IntFlag{
				Name:  "limit",
				Usage: "Posts per page (1-100)",
				Value: r.config.Reddit.PageSize,
			},
		},
		Action: r.TUI,
	}
}
