package session

import (
	"context"
	"net/url"
	"strings"

	"planify/internal/store"
)

// GenerateBoardLink returns <origin>?board=<code> for boardID, or "" for an unknown board.
func (s *Session) GenerateBoardLink(boardID string) string {
	b, ok := s.st.FindBoard(boardID)
	if !ok {
		return ""
	}
	origin := strings.TrimRight(strings.TrimSpace(s.opts.Origin), "/")
	if origin == "" {
		origin = store.DefaultOrigin
	}
	return origin + "?" + url.Values{"board": {b.Code}}.Encode()
}

// ParseShareLink extracts the join code from a share link.
func ParseShareLink(link string) (string, bool) {
	u, err := url.Parse(strings.TrimSpace(link))
	if err != nil || u.RawQuery == "" {
		return "", false
	}
	code := strings.TrimSpace(u.Query().Get("board"))
	return code, code != ""
}

// LastView returns the view the session should reopen on.
func (s *Session) LastView(ctx context.Context) (string, error) {
	return store.LastView(ctx, s.medium)
}

func (s *Session) SetLastView(ctx context.Context, view string) error {
	return store.SetLastView(ctx, s.medium, view)
}
