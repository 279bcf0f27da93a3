package cli

import (
	"strings"

	"planify/internal/format"
	"planify/internal/mutate"
	"planify/internal/session"

	"github.com/spf13/cobra"
)

func newLoginCmd(app *App) *cobra.Command {
	var password string
	var code string

	cmd := &cobra.Command{
		Use:   "login [username-or-email]",
		Short: "Sign in (saved credentials are used when no username is given)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, closeFn, err := loadSession(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer closeFn()

			login := ""
			if len(args) == 1 {
				login = args[0]
			}
			if strings.TrimSpace(login) == "" {
				saved := sess.SavedCredentials()
				if saved == nil {
					return writeErr(cmd, mutate.ValidationError{Field: "username", Reason: "required (no saved credentials)"})
				}
				login = saved.Username
				if password == "" {
					password = saved.Password
				}
			}
			if code != "" {
				if c, ok := parseCodeOrLink(code); ok {
					code = c
				}
			}
			p, err := sess.Login(cmd.Context(), login, password, code)
			if err != nil {
				return writeErr(cmd, err)
			}
			data := map[string]any{"user": publicUser(*p.User)}
			if b, ok := sess.CurrentBoard(); ok {
				data["board"] = b
			}
			return writeOut(cmd, app, format.Envelope{
				Data:  data,
				Hints: []string{"planify tasks list", "planify notifications list"},
			})
		},
	}
	cmd.Flags().StringVar(&password, "password", envOr("PLANIFY_PASSWORD", ""), "Password")
	cmd.Flags().StringVar(&code, "code", "", "Board join code or share link to join on sign-in")
	return cmd
}

func newLogoutCmd(app *App) *cobra.Command {
	var forget bool

	cmd := &cobra.Command{
		Use:   "logout",
		Short: "Sign out (saved credentials are kept unless --forget)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, closeFn, err := loadSession(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer closeFn()
			if err := sess.Logout(cmd.Context()); err != nil {
				return writeErr(cmd, err)
			}
			if forget {
				if err := sess.ClearSavedCredentials(cmd.Context()); err != nil {
					return writeErr(cmd, err)
				}
			}
			return writeOut(cmd, app, format.Envelope{Data: map[string]any{
				"loggedOut":        true,
				"savedCredentials": sess.SavedCredentials() != nil,
			}})
		},
	}
	cmd.Flags().BoolVar(&forget, "forget", false, "Also clear the saved credentials")
	return cmd
}

func newRegisterCmd(app *App) *cobra.Command {
	var in mutate.RegisterInput

	cmd := &cobra.Command{
		Use:   "register <username>",
		Short: "Create an account and sign in",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, closeFn, err := loadSession(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer closeFn()
			in.Username = args[0]
			if c, ok := parseCodeOrLink(in.BoardCode); ok {
				in.BoardCode = c
			}
			p, err := sess.Register(cmd.Context(), in)
			if err != nil {
				return writeErr(cmd, err)
			}
			u, _ := sess.CurrentUser()
			data := map[string]any{"user": publicUser(u)}
			if p.Board != nil {
				data["board"] = *p.Board
			}
			return writeOut(cmd, app, format.Envelope{
				Data:  data,
				Hints: []string{"planify boards list", "planify boards create <name>"},
			})
		},
	}
	cmd.Flags().StringVar(&in.Email, "email", "", "Email")
	cmd.Flags().StringVar(&in.Password, "password", envOr("PLANIFY_PASSWORD", ""), "Password (8+ chars, letters and digits)")
	cmd.Flags().StringVar(&in.FirstName, "first-name", "", "First name")
	cmd.Flags().StringVar(&in.LastName, "last-name", "", "Last name")
	cmd.Flags().StringVar(&in.Patronymic, "patronymic", "", "Patronymic (optional)")
	cmd.Flags().StringVar(&in.BoardCode, "code", "", "Board join code or share link (optional)")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("first-name")
	_ = cmd.MarkFlagRequired("last-name")
	return cmd
}

func newWhoamiCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user and current board",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, closeFn, err := loadSession(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer closeFn()
			u, err := requireUser(sess)
			if err != nil {
				return writeErr(cmd, err)
			}
			data := map[string]any{"user": publicUser(u)}
			if b, ok := sess.CurrentBoard(); ok {
				data["board"] = b
			}
			return writeOut(cmd, app, format.Envelope{Data: data})
		},
	}
	return cmd
}

func newProfileCmd(app *App) *cobra.Command {
	var f userFlags

	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Update the signed-in user's profile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, closeFn, err := loadSession(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer closeFn()
			u, err := f.update(cmd)
			if err != nil {
				return writeErr(cmd, err)
			}
			p, err := sess.UpdateCurrentUser(cmd.Context(), u)
			if err != nil {
				return writeErr(cmd, err)
			}
			cur, _ := sess.CurrentUser()
			return writeOut(cmd, app, format.Envelope{Data: map[string]any{"user": publicUser(cur), "changed": p.Changed}})
		},
	}
	f.bind(cmd, false)
	return cmd
}

func newDemoCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Show the demo accounts seeded into a new workspace",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			accounts := []map[string]string{
				{"username": session.DemoAdminUsername, "password": session.DemoPassword, "role": "admin"},
				{"username": session.DemoUserUsername, "password": session.DemoPassword, "role": "user"},
			}
			tb := &format.Table{Headers: []string{"USERNAME", "PASSWORD", "ROLE"}}
			for _, a := range accounts {
				tb.Add(a["username"], a["password"], a["role"])
			}
			return writeOut(cmd, app, format.Envelope{
				Data:  map[string]any{"accounts": accounts, "boardCode": session.DemoBoardCode},
				Table: tb,
				Hints: []string{"planify login " + session.DemoAdminUsername + " --password " + session.DemoPassword},
			})
		},
	}
	return cmd
}
