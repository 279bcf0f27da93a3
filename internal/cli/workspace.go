package cli

import (
	"os"
	"strings"

	"planify/internal/format"
	"planify/internal/store"

	"github.com/spf13/cobra"
)

func newInitCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize the workspace (seeds the demo board on first run)",
		RunE: func(cmd *cobra.Command, args []string) error {
			existed := false
			if cfg, err := store.LoadConfig(); err == nil {
				if dir, err := store.ResolveDir(app.Dir, cfg); err == nil {
					existed = store.Store{Dir: dir}.Exists()
				}
			}
			m, cfg, err := openMedium(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer m.Close()

			if _, err := openSessionOn(cmd, app, m, cfg); err != nil {
				return writeErr(cmd, err)
			}
			wsID, err := m.WorkspaceID(cmd.Context())
			if err != nil {
				return writeErr(cmd, err)
			}
			hints := []string{"planify login admin123 --password password123"}
			if existed {
				hints = []string{"planify whoami"}
			}
			return writeOut(cmd, app, format.Envelope{
				Data: map[string]any{
					"dir":         app.Dir,
					"sqlitePath":  m.Path(),
					"workspaceId": wsID,
					"created":     !existed,
				},
				Hints: hints,
			})
		},
	}
	return cmd
}

func newConfigCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Global config (~/.planify/config.json)",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "get",
		Short: "Show the global config",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := store.LoadConfig()
			if err != nil {
				return writeErr(cmd, err)
			}
			path, _ := store.ConfigPath()
			return writeOut(cmd, app, format.Envelope{Data: map[string]any{"path": path, "config": cfg}})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "set <" + strings.Join(store.ConfigKeys, "|") + "> <value>",
		Short: "Set a global config value (empty value clears it)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := store.LoadConfig()
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := cfg.Set(args[0], args[1]); err != nil {
				return writeErr(cmd, err)
			}
			if err := store.SaveConfig(cfg); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, format.Envelope{Data: cfg})
		},
	})
	return cmd
}

func newViewCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "view [" + strings.Join(store.Views, "|") + "]",
		Short: "Show or set the view the TUI reopens on",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, closeFn, err := loadSession(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer closeFn()
			if len(args) == 1 {
				if err := sess.SetLastView(cmd.Context(), args[0]); err != nil {
					return writeErr(cmd, err)
				}
			}
			v, err := sess.LastView(cmd.Context())
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, format.Envelope{Data: map[string]any{"view": v}})
		},
	}
	return cmd
}

func newExportCmd(app *App) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write every stored slot to a JSON backup",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, _, err := openMedium(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer m.Close()
			wsID, err := m.WorkspaceID(cmd.Context())
			if err != nil {
				return writeErr(cmd, err)
			}
			if strings.TrimSpace(out) == "" || out == "-" {
				if err := store.Export(cmd.Context(), m, wsID, cmd.OutOrStdout()); err != nil {
					return writeErr(cmd, err)
				}
				return nil
			}
			f, err := os.Create(out)
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := store.Export(cmd.Context(), m, wsID, f); err != nil {
				_ = f.Close()
				return writeErr(cmd, err)
			}
			if err := f.Close(); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, format.Envelope{
				Data:  map[string]any{"path": out, "workspaceId": wsID},
				Hints: []string{"planify import " + out},
			})
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "Output file (default: stdout)")
	return cmd
}

func newImportCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <backup.json>",
		Short: "Replace the workspace contents with a backup",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			defer f.Close()
			m, _, err := openMedium(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer m.Close()
			b, err := store.Import(cmd.Context(), m, f)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, format.Envelope{
				Data: map[string]any{
					"slots":       len(b.Slots),
					"exportedAt":  b.ExportedAt,
					"workspaceId": b.WorkspaceID,
				},
				Hints: []string{"planify whoami"},
			})
		},
	}
	return cmd
}
