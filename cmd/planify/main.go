package main

import (
	"os"
	"strings"

	"planify/internal/cli"
	"planify/internal/session"
)

func isTaskID(s string) bool {
	s = strings.TrimSpace(s)
	return strings.HasPrefix(s, "task-") && len(s) > len("task-")
}

func isShareLink(s string) bool {
	if !strings.Contains(s, "://") {
		return false
	}
	_, ok := session.ParseShareLink(s)
	return ok
}

// rewriteShortcutArgs expands the positional shortcuts:
//
//	planify <task-id>     -> planify tasks show <task-id>
//	planify <share-link>  -> planify boards join <share-link>
//
// Cobra treats the first non-flag token as a subcommand, so argv is rewritten before parsing.
// Persistent flags may come first, so the first positional token is searched for.
func rewriteShortcutArgs(argv []string) []string {
	if len(argv) < 2 {
		return argv
	}

	// Unknown flags are skipped without consuming a value so the positional is never swallowed.
	valueFlags := map[string]bool{
		"--dir":       true,
		"--origin":    true,
		"--log-level": true,
		"--format":    true,
	}

	expand := func(i int) []string {
		var sub []string
		switch a := strings.TrimSpace(argv[i]); {
		case isTaskID(a):
			sub = []string{"tasks", "show"}
		case isShareLink(a):
			sub = []string{"boards", "join"}
		default:
			return argv
		}
		out := make([]string, 0, len(argv)+2)
		out = append(out, argv[:i]...)
		out = append(out, sub...)
		out = append(out, argv[i:]...)
		return out
	}

	for i := 1; i < len(argv); i++ {
		a := strings.TrimSpace(argv[i])
		if a == "" {
			continue
		}
		if a == "--" {
			if i+1 < len(argv) {
				return expand(i + 1)
			}
			return argv
		}
		if strings.HasPrefix(a, "-") {
			if !strings.Contains(a, "=") && valueFlags[a] {
				i++
			}
			continue
		}
		return expand(i)
	}
	return argv
}

func main() {
	os.Args = rewriteShortcutArgs(os.Args)

	cmd := cli.NewRootCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
