// Package store is the persistent key-value adapter.
//
// Every collection and scalar of the session state lives under its own key
// (see slots.go) in a Medium. The default medium is a per-workspace SQLite file.
package store

import (
	"context"
	"os"
	"path/filepath"
	"strings"
)

const sqliteFileName = "planify.sqlite"

// Store is a workspace directory.
type Store struct {
	Dir string
}

// DefaultDir is the workspace used when nothing else is configured: <config dir>/data.
func DefaultDir() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "data"), nil
}

// ResolveDir picks the workspace directory: flag, then PLANIFY_DIR, then the
// configured default, then DefaultDir.
func ResolveDir(flagDir string, cfg *GlobalConfig) (string, error) {
	if v := strings.TrimSpace(flagDir); v != "" {
		return filepath.Clean(v), nil
	}
	if v := strings.TrimSpace(os.Getenv("PLANIFY_DIR")); v != "" {
		return filepath.Clean(v), nil
	}
	if cfg != nil && strings.TrimSpace(cfg.DefaultDir) != "" {
		return filepath.Clean(strings.TrimSpace(cfg.DefaultDir)), nil
	}
	return DefaultDir()
}

func (s Store) Ensure() error {
	return os.MkdirAll(s.Dir, 0o755)
}

func (s Store) sqlitePath() string {
	return filepath.Join(s.Dir, sqliteFileName)
}

// Exists reports whether the workspace already has a database.
func (s Store) Exists() bool {
	_, err := os.Stat(s.sqlitePath())
	return err == nil
}

// Open opens (creating if needed) the workspace's SQLite medium.
func (s Store) Open(ctx context.Context) (*SQLite, error) {
	if err := s.Ensure(); err != nil {
		return nil, err
	}
	return OpenSQLite(ctx, s.sqlitePath())
}
