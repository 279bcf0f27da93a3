package format

import (
	"fmt"
	"os"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/glamour/styles"
	"github.com/charmbracelet/lipgloss"

	"planify/internal/model"
	"planify/internal/query"
	"planify/internal/state"
	"planify/internal/store"
)

var (
	reUnderline = regexp.MustCompile(`(?s)<u>(.*?)</u>`)
	reAlignDiv  = regexp.MustCompile(`(?s)<div style="text-align: (?:left|center|right)">(.*?)</div>`)
)

// DescriptionMarkdown turns a stored task description into plain markdown.
//
// Descriptions use a small markup subset: **bold**, *italic*, <u>underline</u>, "• " bullets,
// "1. " lists and alignment divs. Underline and alignment have no markdown form and are
// reduced to their text; bullets become list items.
func DescriptionMarkdown(raw string) string {
	s := strings.ReplaceAll(raw, "\r\n", "\n")
	s = reUnderline.ReplaceAllString(s, "$1")
	s = reAlignDiv.ReplaceAllString(s, "$1")
	lines := strings.Split(s, "\n")
	for i, ln := range lines {
		if rest, ok := strings.CutPrefix(strings.TrimLeft(ln, " "), "• "); ok {
			lines[i] = "- " + rest
		}
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// TaskMarkdown renders a task as a markdown document: header, metadata, description,
// attachments and comments.
func TaskMarkdown(st state.State, t model.Task, now time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", t.Title)

	pin := ""
	if t.IsPinned {
		pin = " · pinned"
	}
	fmt.Fprintf(&b, "**%s** · priority **%s**%s\n\n", t.Status, t.Priority, pin)

	names := make([]string, 0, len(t.AssigneeIDs))
	for _, u := range query.Assignees(st, t) {
		names = append(names, u.FullName()+" (@"+u.Username+")")
	}
	if len(names) > 0 {
		fmt.Fprintf(&b, "Assignees: %s\n\n", strings.Join(names, ", "))
	}
	if t.Deadline != nil {
		due := Stamp(*t.Deadline, now.Location()) + " (" + Ago(*t.Deadline, now) + ")"
		switch {
		case query.IsOverdue(t, now):
			due += " **overdue**"
		case query.IsDueSoon(t, now):
			due += " **due soon**"
		}
		fmt.Fprintf(&b, "Deadline: %s\n\n", due)
	}
	if creator, ok := st.FindUser(t.CreatorID); ok {
		fmt.Fprintf(&b, "Created by @%s %s\n\n", creator.Username, Ago(t.CreatedAt, now))
	}

	if d := DescriptionMarkdown(t.Description); d != "" {
		b.WriteString("## Description\n\n")
		b.WriteString(d)
		b.WriteString("\n\n")
	}

	if len(t.Attachments) > 0 || len(t.VoiceMessages) > 0 {
		b.WriteString("## Attachments\n\n")
		for _, a := range t.Attachments {
			fmt.Fprintf(&b, "- %s (%s, %s)\n", a.Name, a.Type, store.HumanSize(a.Size))
		}
		for _, v := range t.VoiceMessages {
			who := v.UserID
			if u, ok := st.FindUser(v.UserID); ok {
				who = "@" + u.Username
			}
			fmt.Fprintf(&b, "- voice message by %s, %s\n", who, (time.Duration(v.Duration * float64(time.Second))).Round(time.Second))
		}
		b.WriteString("\n")
	}

	if len(t.Comments) > 0 {
		fmt.Fprintf(&b, "## Comments (%d)\n\n", len(t.Comments))
		for _, c := range t.Comments {
			who := c.UserID
			if u, ok := st.FindUser(c.UserID); ok {
				who = "@" + u.Username
			}
			fmt.Fprintf(&b, "**%s** · %s\n\n%s\n\n", who, Ago(c.CreatedAt, now), c.Content)
		}
	}
	return strings.TrimRight(b.String(), "\n") + "\n"
}

var (
	mdRendererMu sync.Mutex
	// Keyed by style + wrap width. Renderers are fixed-style: WithAutoStyle can block on terminal queries.
	mdRenderers = map[string]*glamour.TermRenderer{}
)

// RenderMarkdown renders md for a terminal of the given width. It falls back to the raw text
// when glamour fails.
func RenderMarkdown(md string, width int) string {
	md = strings.TrimSpace(md)
	if md == "" {
		return ""
	}
	if width < 20 {
		width = 20
	}
	style := markdownStyle()
	key := fmt.Sprintf("%s:%d", style, width)

	mdRendererMu.Lock()
	defer mdRendererMu.Unlock()
	r := mdRenderers[key]
	if r == nil {
		rr, err := glamour.NewTermRenderer(
			glamour.WithStandardStyle(style),
			glamour.WithWordWrap(width),
		)
		if err != nil {
			return md
		}
		mdRenderers[key] = rr
		r = rr
	}
	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return strings.TrimRight(out, "\n")
}

func markdownStyle() string {
	if strings.TrimSpace(os.Getenv("NO_COLOR")) != "" {
		return styles.NoTTYStyle
	}
	if lipgloss.HasDarkBackground() {
		return styles.DarkStyle
	}
	return styles.LightStyle
}
