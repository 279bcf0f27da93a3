package format

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"
)

// Envelope is the shape of every command's output.
//
// JSON output is {"data": ..., "_hints": [...]}. Text output renders Table when
// present, otherwise Data.
type Envelope struct {
	Data  any      `json:"data"`
	Hints []string `json:"_hints,omitempty"`

	Table *Table `json:"-"`
}

// Table is a plain header + rows rendering of a result for --format text.
type Table struct {
	Headers []string
	Rows    [][]string
}

func (t *Table) Add(cells ...string) { t.Rows = append(t.Rows, cells) }

// Write writes output in the requested format.
//
// Supported formats:
// - json (default)
// - text
func Write(w io.Writer, v any, format string, pretty bool) error {
	switch format {
	case "", "json":
		return WriteJSON(w, v, pretty)
	case "text":
		return WriteText(w, v)
	default:
		return fmt.Errorf("unknown format: %s (expected json|text)", format)
	}
}

// WriteJSON writes strict JSON output for CLI commands.
func WriteJSON(w io.Writer, v any, pretty bool) error {
	var b []byte
	var err error
	if pretty {
		b, err = json.MarshalIndent(v, "", "  ")
	} else {
		b, err = json.Marshal(v)
	}
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(w, string(b))
	return err
}

var hintStyle = lipgloss.NewStyle().Faint(true)

// WriteText renders v for humans. Envelopes with a Table become a bordered table;
// strings are printed as-is; anything else falls back to indented JSON.
func WriteText(w io.Writer, v any) error {
	env, ok := v.(Envelope)
	if !ok {
		if p, isPtr := v.(*Envelope); isPtr && p != nil {
			env, ok = *p, true
		}
	}
	if !ok {
		return writeValue(w, v)
	}
	if env.Table != nil {
		if _, err := fmt.Fprintln(w, RenderTable(*env.Table)); err != nil {
			return err
		}
	} else if err := writeValue(w, env.Data); err != nil {
		return err
	}
	for _, h := range env.Hints {
		if _, err := fmt.Fprintln(w, hintStyle.Render("hint: "+h)); err != nil {
			return err
		}
	}
	return nil
}

func writeValue(w io.Writer, v any) error {
	switch x := v.(type) {
	case nil:
		return nil
	case string:
		_, err := fmt.Fprintln(w, x)
		return err
	case fmt.Stringer:
		_, err := fmt.Fprintln(w, x.String())
		return err
	}
	return WriteJSON(w, v, true)
}

var headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
var cellStyle = lipgloss.NewStyle().Padding(0, 1)

// RenderTable draws t with a normal border. An empty table renders a "(none)" line.
func RenderTable(t Table) string {
	if len(t.Rows) == 0 {
		return "(none)"
	}
	tb := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(t.Headers...).
		Rows(t.Rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
	return tb.Render()
}

// Ago formats t relative to now ("3 minutes ago", "2 days from now").
func Ago(t, now time.Time) string {
	if t.IsZero() {
		return ""
	}
	return humanize.RelTime(t, now, "ago", "from now")
}

// Stamp formats t as local wall-clock minutes. The zero time formats as "".
func Stamp(t time.Time, loc *time.Location) string {
	if t.IsZero() {
		return ""
	}
	if loc != nil {
		t = t.In(loc)
	}
	return t.Format("2006-01-02 15:04")
}

// Truncate shortens s to n runes, marking the cut with an ellipsis.
func Truncate(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if n <= 0 || len(r) <= n {
		return s
	}
	if n == 1 {
		return "…"
	}
	return string(r[:n-1]) + "…"
}
