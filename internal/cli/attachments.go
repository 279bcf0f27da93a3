package cli

import (
	"errors"
	"path/filepath"
	"strings"

	"planify/internal/format"
	"planify/internal/store"

	"github.com/spf13/cobra"
)

func newAttachmentsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "attachments",
		Short: "Manage task attachments and voice messages",
	}

	cmd.AddCommand(newAttachmentsAddCmd(app))
	cmd.AddCommand(newAttachmentsListCmd(app))
	cmd.AddCommand(newAttachmentsRemoveCmd(app))
	cmd.AddCommand(newAttachmentsSaveCmd(app))
	cmd.AddCommand(newAttachmentsVoiceCmd(app))

	return cmd
}

func newAttachmentsAddCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add <task-id> <path>",
		Short: "Attach a local file (up to 5 MB) to a task",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, closeFn, err := loadSession(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer closeFn()
			if _, err := requireUser(sess); err != nil {
				return writeErr(cmd, err)
			}
			t, err := requireTask(sess, args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			a, err := store.CaptureFile(args[1])
			if err != nil {
				return writeErr(cmd, err)
			}
			p, err := sess.AddAttachment(cmd.Context(), t.ID, a)
			if err != nil {
				return writeErr(cmd, err)
			}
			added := p.Task.Attachments[len(p.Task.Attachments)-1]
			added.URL = ""
			return writeOut(cmd, app, format.Envelope{
				Data:  added,
				Hints: []string{"planify attachments list " + t.ID},
			})
		},
	}
	return cmd
}

func newAttachmentsListCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list <task-id>",
		Short: "List a task's attachments and voice messages",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, closeFn, err := loadSession(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer closeFn()
			t, err := requireTask(sess, args[0])
			if err != nil {
				return writeErr(cmd, err)
			}

			type row struct {
				ID       string  `json:"id"`
				Kind     string  `json:"kind"`
				Name     string  `json:"name,omitempty"`
				Type     string  `json:"type,omitempty"`
				Size     int64   `json:"size,omitempty"`
				Duration float64 `json:"duration,omitempty"`
			}
			rows := make([]row, 0, len(t.Attachments)+len(t.VoiceMessages))
			tb := &format.Table{Headers: []string{"ID", "KIND", "NAME", "TYPE", "SIZE"}}
			for _, a := range t.Attachments {
				rows = append(rows, row{ID: a.ID, Kind: "file", Name: a.Name, Type: a.Type, Size: a.Size})
				tb.Add(a.ID, "file", a.Name, a.Type, store.HumanSize(a.Size))
			}
			for _, v := range t.VoiceMessages {
				rows = append(rows, row{ID: v.ID, Kind: "voice", Duration: v.Duration})
				tb.Add(v.ID, "voice", userLabel(sess.State(), v.UserID), "", formatSeconds(v.Duration))
			}
			return writeOut(cmd, app, format.Envelope{Data: rows, Table: tb})
		},
	}
	return cmd
}

func newAttachmentsRemoveCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "remove <task-id> <attachment-id>",
		Short: "Remove an attachment from a task",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, closeFn, err := loadSession(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer closeFn()
			if _, err := requireUser(sess); err != nil {
				return writeErr(cmd, err)
			}
			t, err := requireTask(sess, args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			p, err := sess.RemoveAttachment(cmd.Context(), t.ID, args[1])
			if err != nil {
				return writeErr(cmd, err)
			}
			if !p.Changed {
				return writeErr(cmd, errNotFound("attachment", args[1]))
			}
			return writeOut(cmd, app, format.Envelope{Data: map[string]any{"taskId": t.ID, "removed": args[1]}})
		},
	}
	return cmd
}

func newAttachmentsSaveCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "save <task-id> <attachment-id> [dest]",
		Short: "Write an attachment's contents to a file",
		Args:  cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, closeFn, err := loadSession(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer closeFn()
			t, err := requireTask(sess, args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			for _, a := range t.Attachments {
				if a.ID != args[1] {
					continue
				}
				dest := a.Name
				if len(args) == 3 {
					dest = args[2]
				}
				dest = filepath.Clean(dest)
				if err := store.SaveAttachment(a, dest); err != nil {
					return writeErr(cmd, err)
				}
				return writeOut(cmd, app, format.Envelope{Data: map[string]any{"path": dest, "size": a.Size}})
			}
			return writeErr(cmd, errNotFound("attachment", args[1]))
		},
	}
	return cmd
}

func newAttachmentsVoiceCmd(app *App) *cobra.Command {
	var duration float64

	cmd := &cobra.Command{
		Use:   "voice <task-id> <recording-path>",
		Short: "Attach a voice recording to a task",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, closeFn, err := loadSession(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer closeFn()
			if _, err := requireUser(sess); err != nil {
				return writeErr(cmd, err)
			}
			t, err := requireTask(sess, args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			rec, err := store.CaptureFile(args[1])
			if err != nil {
				return writeErr(cmd, err)
			}
			p, err := sess.AddVoiceMessage(cmd.Context(), t.ID, rec.URL, rec.Size, duration)
			if err != nil {
				return writeErr(cmd, err)
			}
			vm := p.Task.VoiceMessages[len(p.Task.VoiceMessages)-1]
			vm.URL = ""
			return writeOut(cmd, app, format.Envelope{Data: vm})
		},
	}
	cmd.Flags().Float64Var(&duration, "duration", 0, "Recording length in seconds")
	return cmd
}

// avatarURI turns an avatar flag into a stored URL: data URIs and http(s) URLs pass through,
// anything else is read as an image file.
func avatarURI(v string) (string, error) {
	v = strings.TrimSpace(v)
	switch {
	case v == "":
		return "", nil
	case strings.HasPrefix(v, "data:"), strings.HasPrefix(v, "http://"), strings.HasPrefix(v, "https://"):
		return v, nil
	}
	a, err := store.CaptureFile(v)
	if err != nil {
		return "", err
	}
	if !strings.HasPrefix(a.Type, "image/") {
		return "", errors.New("avatar must be an image, got " + a.Type)
	}
	return a.URL, nil
}
