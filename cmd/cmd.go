// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

func jsonFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:  "json",
			Usage: "Output raw JSON",
		},
		&cli.BoolFlag{
			Name:  "pretty",
			Usage: "Pretty-print JSON output",
		},
	}
}

func yesFlag(usage string) cli.Flag {
	return &cli.BoolFlag{
		Name:    "yes",
		Aliases: []string{"y"},
		Usage:   usage,
	}
}

// setupCommand creates the config file and database
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Create config.toml and initialize the database",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   "config.toml",
			},
		},
		Action: r.SetupDatabase,
	}
}

// playlistCommand handles playlist management
func playlistCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "playlist",
		Aliases: []string{"pl"},
		Usage:   "Manage playlists",
		Commands: []*cli.Command{
			{
				Name:    "list",
				Aliases: []string{"ls"},
				Usage:   "List playlists, marking the active one",
				Flags:   jsonFlags(),
				Action:  r.PlaylistList,
			},
			{
				Name:      "show",
				Usage:     "Show the songs of a playlist (default: active)",
				ArgsUsage: "[name]",
				Flags:     jsonFlags(),
				Action:    r.PlaylistShow,
			},
			{
				Name:      "create",
				Usage:     "Create a playlist and make it active",
				ArgsUsage: "<name>",
				Action:    r.PlaylistCreate,
			},
			{
				Name:      "rename",
				Usage:     "Rename the active playlist",
				ArgsUsage: "<new name>",
				Action:    r.PlaylistRename,
			},
			{
				Name:   "delete",
				Usage:  "Delete the active playlist",
				Flags:  []cli.Flag{yesFlag("Skip the confirmation")},
				Action: r.PlaylistDelete,
			},
			{
				Name:      "use",
				Aliases:   []string{"switch"},
				Usage:     "Switch the active playlist",
				ArgsUsage: "<name>",
				Action:    r.PlaylistUse,
			},
			{
				Name:      "add",
				Usage:     "Add a video to the active playlist",
				ArgsUsage: "<video id or URL>",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "title",
						Aliases: []string{"t"},
						Usage:   "Song title (looked up via oEmbed when omitted)",
					},
				},
				Action: r.PlaylistAdd,
			},
			{
				Name:      "remove",
				Aliases:   []string{"rm"},
				Usage:     "Remove a song from the active playlist by position",
				ArgsUsage: "<position>",
				Action:    r.PlaylistRemove,
			},
			{
				Name:      "move",
				Usage:     "Move a song within the active playlist",
				ArgsUsage: "<from> <to>",
				Action:    r.PlaylistMove,
			},
			{
				Name:      "fill",
				Usage:     "Search each line of a file and add the top hit to the active playlist",
				ArgsUsage: "<file>",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:    "workers",
						Aliases: []string{"w"},
						Usage:   "Concurrent searches (max 10)",
						Value:   3,
					},
					&cli.FloatFlag{
						Name:  "rate",
						Usage: "Searches per second",
						Value: 2,
					},
				},
				Action: r.PlaylistFill,
			},
		},
	}
}

// recentCommand handles the recently-played list
func recentCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "recent",
		Usage: "Recently played songs",
		Commands: []*cli.Command{
			{
				Name:    "list",
				Aliases: []string{"ls"},
				Usage:   "List recently played songs, newest first",
				Flags:   jsonFlags(),
				Action:  r.RecentList,
			},
			{
				Name:   "clear",
				Usage:  "Clear the recently-played list",
				Flags:  []cli.Flag{yesFlag("Skip the confirmation")},
				Action: r.RecentClear,
			},
			{
				Name:  "stats",
				Usage: "Show the most played songs",
				Flags: append(jsonFlags(), &cli.IntFlag{
					Name:    "limit",
					Aliases: []string{"n"},
					Usage:   "Number of songs to show",
					Value:   10,
				}),
				Action: r.RecentStats,
			},
		},
	}
}

// searchCommand searches YouTube
func searchCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "search",
		Usage:     "Search YouTube for videos",
		ArgsUsage: "<query>",
		Flags: append(jsonFlags(), &cli.IntFlag{
			Name:  "add",
			Usage: "Add the result at this position to the active playlist",
		}),
		Action: r.Search,
	}
}

// playCommand plays a single video through mpv
func playCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "play",
		Usage:     "Play a video through mpv until it ends",
		ArgsUsage: "<video id or URL>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "title",
				Aliases: []string{"t"},
				Usage:   "Song title (looked up via oEmbed when omitted)",
			},
		},
		Action: r.Play,
	}
}

// shareCommand builds a share link for the active playlist
func shareCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "share",
		Usage: "Print a share link for the active playlist",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "copy",
				Usage: "Copy the link to the clipboard",
			},
			&cli.BoolFlag{
				Name:  "open",
				Usage: "Open the link in the browser",
			},
		},
		Action: r.Share,
	}
}

// loadCommand imports a shared playlist
func loadCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "load",
		Usage:     "Load a playlist from a share link",
		ArgsUsage: "<link>",
		Action:    r.LoadShared,
	}
}

// exportCommand writes backups and exports
func exportCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Back up every playlist",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Output path (default: allplay_playlists_backup.json for json)",
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Export format: json, csv, markdown, txt",
				Value:   "json",
			},
			&cli.BoolFlag{
				Name:  "split",
				Usage: "Write one export per playlist with a manifest",
			},
			&cli.StringFlag{
				Name:  "dir",
				Usage: "Output directory for --split (default: allplay_export_{epoch})",
			},
			&cli.IntFlag{
				Name:    "workers",
				Aliases: []string{"w"},
				Usage:   "Concurrent export workers for --split",
				Value:   5,
			},
		},
		Action: r.Export,
	}
}

// importCommand restores a backup
func importCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "import",
		Usage:     "Replace all playlists with a backup file",
		ArgsUsage: "<file>",
		Flags:     []cli.Flag{yesFlag("Skip the confirmation")},
		Action:    r.Import,
	}
}

// notifyCommand toggles notifications
func notifyCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "notify",
		Usage: "Notification settings",
		Commands: []*cli.Command{
			{
				Name:   "on",
				Usage:  "Enable notifications",
				Action: r.NotifyOn,
			},
			{
				Name:   "off",
				Usage:  "Disable notifications",
				Action: r.NotifyOff,
			},
			{
				Name:   "status",
				Usage:  "Show whether notifications are enabled",
				Action: r.NotifyStatus,
			},
			{
				Name:   "test",
				Usage:  "Send a test notification",
				Action: r.NotifyTest,
			},
		},
	}
}

func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "tui",
		Usage: "Launch the interactive terminal UI",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "log-file",
				Usage: "Log file while the TUI owns the terminal",
				Value: "./tmp/allplay-tui.log",
			},
		},
		Action: r.TUI,
	}
}

func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the web interface",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "addr",
				Usage: "Listen address (default: server.host:server.port from config)",
			},
			&cli.BoolFlag{
				Name:  "open",
				Usage: "Open the interface in the browser",
			},
			&cli.BoolFlag{
				Name:  "embedded",
				Usage: "Play in the browser instead of through mpv",
			},
		},
		Action: r.Serve,
	}
}
