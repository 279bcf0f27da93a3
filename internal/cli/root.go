package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"planify/internal/format"
	"planify/internal/session"
	"planify/internal/store"
	"planify/internal/tui"

	"github.com/spf13/cobra"
)

type App struct {
	Dir        string
	Origin     string
	LogLevel   string
	PrettyJSON bool
	Format     string
}

func NewRootCmd() *cobra.Command {
	app := &App{}

	cmd := &cobra.Command{
		Use:          "planify",
		Short:        "Planify: local Kanban boards (CLI + TUI)",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Open the board in the interactive TUI
  planify

  # Sign in with the demo admin
  planify login admin123 --password password123

  # Scriptable commands
  planify tasks list --format text

  # Direct task lookup (shortcut for: planify tasks show <task-id>)
  planify task-1

  # Join a board from a share link (shortcut for: planify boards join <link>)
  planify "http://localhost:5173?board=DEMO2024"
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			// No subcommand => interactive TUI.
			if cmd.HasSubCommands() && len(args) == 0 {
				return runTUI(cmd, app)
			}
			return cmd.Help()
		},
	}

	cmd.PersistentFlags().StringVar(&app.Dir, "dir", envOr("PLANIFY_DIR", ""), "Path to the workspace dir (default: ~/.planify/data)")
	cmd.PersistentFlags().StringVar(&app.Origin, "origin", envOr("PLANIFY_ORIGIN", ""), "Base URL for board share links")
	cmd.PersistentFlags().StringVar(&app.LogLevel, "log-level", envOr("PLANIFY_LOG_LEVEL", ""), "Log level (debug|info|warn|error)")
	cmd.PersistentFlags().BoolVar(&app.PrettyJSON, "pretty", false, "Pretty-print JSON output")
	cmd.PersistentFlags().StringVar(&app.Format, "format", envOr("PLANIFY_FORMAT", "json"), "Output format (json|text)")

	cmd.AddCommand(newInitCmd(app))
	cmd.AddCommand(newConfigCmd(app))
	cmd.AddCommand(newViewCmd(app))
	cmd.AddCommand(newExportCmd(app))
	cmd.AddCommand(newImportCmd(app))
	cmd.AddCommand(newDemoCmd(app))
	cmd.AddCommand(newLoginCmd(app))
	cmd.AddCommand(newLogoutCmd(app))
	cmd.AddCommand(newRegisterCmd(app))
	cmd.AddCommand(newWhoamiCmd(app))
	cmd.AddCommand(newProfileCmd(app))
	cmd.AddCommand(newBoardsCmd(app))
	cmd.AddCommand(newTasksCmd(app))
	cmd.AddCommand(newCommentsCmd(app))
	cmd.AddCommand(newUsersCmd(app))
	cmd.AddCommand(newNotificationsCmd(app))
	cmd.AddCommand(newUndoCmd(app))
	cmd.AddCommand(newRedoCmd(app))
	cmd.AddCommand(newHistoryCmd(app))
	cmd.AddCommand(newStatsCmd(app))
	cmd.AddCommand(newCalendarCmd(app))
	cmd.AddCommand(newBoardCmd(app))

	return cmd
}

func runTUI(cmd *cobra.Command, app *App) error {
	m, cfg, err := openMedium(cmd, app)
	if err != nil {
		return writeErr(cmd, err)
	}
	defer func() { _ = m.Close() }()

	// The alt screen owns the terminal; log lines would tear the layout.
	origin := strings.TrimSpace(app.Origin)
	if origin == "" {
		origin = cfg.OriginOrDefault()
	}
	sess, err := session.Open(cmd.Context(), m, session.Options{
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		Origin: origin,
	})
	if err != nil {
		return writeErr(cmd, err)
	}
	return tui.Run(cmd.Context(), sess)
}

// openMedium resolves the workspace dir and opens its SQLite medium.
func openMedium(cmd *cobra.Command, app *App) (*store.SQLite, *store.GlobalConfig, error) {
	cfg, err := store.LoadConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	dir, err := store.ResolveDir(app.Dir, cfg)
	if err != nil {
		return nil, nil, err
	}
	app.Dir = dir
	m, err := store.Store{Dir: dir}.Open(cmd.Context())
	if err != nil {
		return nil, nil, err
	}
	return m, cfg, nil
}

// loadSession opens the workspace medium and bootstraps a session on it.
// The returned func closes the medium.
func loadSession(cmd *cobra.Command, app *App) (*session.Session, func(), error) {
	m, cfg, err := openMedium(cmd, app)
	if err != nil {
		return nil, nil, err
	}
	sess, err := openSessionOn(cmd, app, m, cfg)
	if err != nil {
		_ = m.Close()
		return nil, nil, err
	}
	return sess, func() { _ = m.Close() }, nil
}

func openSessionOn(cmd *cobra.Command, app *App, m store.Medium, cfg *store.GlobalConfig) (*session.Session, error) {
	origin := strings.TrimSpace(app.Origin)
	if origin == "" {
		origin = cfg.OriginOrDefault()
	}
	return session.Open(cmd.Context(), m, session.Options{
		Logger: newLogger(cmd.ErrOrStderr(), app.LogLevel, cfg),
		Origin: origin,
	})
}

func newLogger(w io.Writer, flagLevel string, cfg *store.GlobalConfig) *slog.Logger {
	lvl := strings.TrimSpace(flagLevel)
	if lvl == "" && cfg != nil {
		lvl = strings.TrimSpace(cfg.LogLevel)
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: parseLevel(lvl)}))
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "error":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}

func envOr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func writeOut(cmd *cobra.Command, app *App, v any) error {
	return format.Write(cmd.OutOrStdout(), v, app.Format, app.PrettyJSON)
}

func writeErr(cmd *cobra.Command, err error) error {
	fmt.Fprintln(cmd.ErrOrStderr(), err.Error())
	return err
}
