package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Views are the screens a session can reopen on.
var Views = []string{"board", "calendar", "users", "analytics", "profile", "manual"}

const DefaultView = "board"

func IsView(v string) bool {
	for _, x := range Views {
		if x == v {
			return true
		}
	}
	return false
}

// LastView returns the stored view, falling back to DefaultView when it is
// missing or not a known view.
func LastView(ctx context.Context, m Medium) (string, error) {
	v, err := Get(ctx, m, KeyLastView, DefaultView)
	if err != nil {
		// Best-effort; a corrupted value reads as missing.
		var de DecodeError
		if errors.As(err, &de) {
			return DefaultView, nil
		}
		return "", err
	}
	if !IsView(v) {
		return DefaultView, nil
	}
	return v, nil
}

func SetLastView(ctx context.Context, m Medium, view string) error {
	view = strings.ToLower(strings.TrimSpace(view))
	if !IsView(view) {
		return fmt.Errorf("invalid view %q (expected %s)", view, strings.Join(Views, "|"))
	}
	return Put(ctx, m, KeyLastView, view)
}
