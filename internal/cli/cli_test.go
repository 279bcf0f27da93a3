package cli

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"
)

func runCLI(t *testing.T, args []string) (stdout []byte, stderr []byte, err error) {
	t.Helper()

	cmd := NewRootCmd()

	var outBuf bytes.Buffer
	var errBuf bytes.Buffer
	cmd.SetOut(&outBuf)
	cmd.SetErr(&errBuf)
	cmd.SetArgs(args)

	e := cmd.Execute()
	return outBuf.Bytes(), errBuf.Bytes(), e
}

// isolatedDir keeps the test away from ~/.planify and returns a fresh workspace dir.
func isolatedDir(t *testing.T) string {
	t.Helper()
	t.Setenv("PLANIFY_CONFIG_DIR", t.TempDir())
	t.Setenv("PLANIFY_DIR", "")
	t.Setenv("PLANIFY_FORMAT", "")
	return filepath.Join(t.TempDir(), "ws")
}

func mustRun(t *testing.T, args ...string) map[string]any {
	t.Helper()
	stdout, stderr, err := runCLI(t, args)
	if err != nil {
		t.Fatalf("command failed: planify %v\nerr: %v\nstderr:\n%s\nstdout:\n%s", args, err, string(stderr), string(stdout))
	}
	var env map[string]any
	if err := json.Unmarshal(stdout, &env); err != nil {
		t.Fatalf("unmarshal stdout as json envelope: %v\nstdout:\n%s\nargs: %v", err, string(stdout), args)
	}
	if _, ok := env["data"]; !ok {
		t.Fatalf("expected JSON envelope to contain data key; got: %v\nstdout:\n%s", env, string(stdout))
	}
	return env
}

func dataMap(t *testing.T, env map[string]any) map[string]any {
	t.Helper()
	m, ok := env["data"].(map[string]any)
	if !ok {
		t.Fatalf("expected data object; got %#v", env["data"])
	}
	return m
}

func TestCLI_TaskLifecycleWithUndo(t *testing.T) {
	dir := isolatedDir(t)

	mustRun(t, "--dir", dir, "init")
	mustRun(t, "--dir", dir, "login", "admin123", "--password", "password123")

	created := dataMap(t, mustRun(t, "--dir", dir, "tasks", "create", "Write docs",
		"--priority", "high", "--assignees", "user1234", "--due", "2099-01-02", "--at", "10:00"))
	id, _ := created["id"].(string)
	if id == "" {
		t.Fatalf("expected task id; got %#v", created)
	}
	if got := created["status"]; got != "created" {
		t.Fatalf("expected default status created; got %v", got)
	}

	moved := dataMap(t, mustRun(t, "--dir", dir, "tasks", "move", id, "done"))
	if moved["status"] != "completed" {
		t.Fatalf("expected completed; got %#v", moved)
	}

	undo := dataMap(t, mustRun(t, "--dir", dir, "undo"))
	if undo["applied"] != true {
		t.Fatalf("expected undo to apply; got %#v", undo)
	}
	shown := dataMap(t, mustRun(t, "--dir", dir, "tasks", "show", id))
	task := shown["task"].(map[string]any)
	if task["status"] != "created" {
		t.Fatalf("expected status restored by undo; got %v", task["status"])
	}

	mustRun(t, "--dir", dir, "tasks", "delete", id)
	if _, _, err := runCLI(t, []string{"--dir", dir, "tasks", "show", id}); err == nil {
		t.Fatalf("expected show of deleted task to fail")
	}
	mustRun(t, "--dir", dir, "undo")
	mustRun(t, "--dir", dir, "tasks", "show", id)

	hist := dataMap(t, mustRun(t, "--dir", dir, "history"))
	// The delete was recorded after an undo, so it replaced the undone move.
	if entries, _ := hist["entries"].([]any); len(entries) != 2 {
		t.Fatalf("expected 2 history entries (add, delete); got %d", len(entries))
	}
}

func TestCLI_MutationsRequireLogin(t *testing.T) {
	dir := isolatedDir(t)
	mustRun(t, "--dir", dir, "init")

	_, stderr, err := runCLI(t, []string{"--dir", dir, "tasks", "create", "Nope"})
	if err == nil {
		t.Fatalf("expected error without login")
	}
	if !strings.Contains(string(stderr), "not authenticated") {
		t.Fatalf("expected not authenticated on stderr; got %q", string(stderr))
	}
}

func TestCLI_RegularUserCannotManageUsersOrBoards(t *testing.T) {
	dir := isolatedDir(t)
	mustRun(t, "--dir", dir, "login", "user1234", "--password", "password123")

	for _, args := range [][]string{
		{"users", "update", "user-2", "--role", "admin"},
		{"users", "delete", "user-1"},
		{"boards", "update", "board-1", "--name", "hijacked"},
	} {
		_, stderr, err := runCLI(t, append([]string{"--dir", dir}, args...))
		if err == nil {
			t.Fatalf("expected planify %v to be refused", args)
		}
		if !strings.Contains(string(stderr), "forbidden") {
			t.Fatalf("expected forbidden on stderr for %v; got %q", args, string(stderr))
		}
	}

	mustRun(t, "--dir", dir, "logout")
	_, stderr, err := runCLI(t, []string{"--dir", dir, "boards", "update", "board-1", "--name", "hijacked"})
	if err == nil {
		t.Fatalf("expected boards update without login to fail")
	}
	if !strings.Contains(string(stderr), "not authenticated") {
		t.Fatalf("expected not authenticated on stderr; got %q", string(stderr))
	}

	mustRun(t, "--dir", dir, "login", "admin123", "--password", "password123")
	users := mustRun(t, "--dir", dir, "users", "list")
	xs, _ := users["data"].([]any)
	if len(xs) != 2 {
		t.Fatalf("expected both demo users to survive; got %d", len(xs))
	}
	for _, x := range xs {
		u := x.(map[string]any)
		if u["username"] == "user1234" && u["role"] != "user" {
			t.Fatalf("expected user1234 to stay a regular user; got %v", u["role"])
		}
	}
	show := dataMap(t, mustRun(t, "--dir", dir, "boards", "update", "board-1", "--description", "kept"))
	board := show["board"].(map[string]any)
	if board["name"] == "HIJACKED" {
		t.Fatalf("expected board name untouched; got %#v", board)
	}
}

func TestCLI_LoginUsesSavedCredentials(t *testing.T) {
	dir := isolatedDir(t)
	mustRun(t, "--dir", dir, "login", "admin@planify.com", "--password", "password123")
	out := dataMap(t, mustRun(t, "--dir", dir, "logout"))
	if out["savedCredentials"] != true {
		t.Fatalf("expected credentials kept after logout; got %#v", out)
	}

	who := dataMap(t, mustRun(t, "--dir", dir, "login"))
	user := who["user"].(map[string]any)
	if user["username"] != "admin123" {
		t.Fatalf("expected saved admin login; got %#v", user)
	}
	if _, ok := user["password"]; ok && user["password"] != "" {
		t.Fatalf("password must not be printed")
	}

	mustRun(t, "--dir", dir, "logout", "--forget")
	if _, _, err := runCLI(t, []string{"--dir", dir, "login"}); err == nil {
		t.Fatalf("expected login without saved credentials to fail")
	}
}

func TestCLI_RegisterWithShareLink(t *testing.T) {
	dir := isolatedDir(t)
	mustRun(t, "--dir", dir, "--origin", "https://planify.example/", "login", "admin123", "--password", "password123")

	link := dataMap(t, mustRun(t, "--dir", dir, "--origin", "https://planify.example/", "boards", "link"))
	if link["link"] != "https://planify.example?board=DEMO2024" {
		t.Fatalf("unexpected share link: %#v", link)
	}
	mustRun(t, "--dir", dir, "logout")

	reg := dataMap(t, mustRun(t, "--dir", dir, "register", "newuser01",
		"--email", "new@example.com", "--password", "secret123",
		"--first-name", "Ann", "--last-name", "Lee",
		"--code", link["link"].(string)))
	board := reg["board"].(map[string]any)
	if board["id"] != "board-1" {
		t.Fatalf("expected to join the demo board; got %#v", board)
	}
	user := reg["user"].(map[string]any)
	if user["role"] != "user" {
		t.Fatalf("expected joined user to be a regular user; got %v", user["role"])
	}

	members := mustRun(t, "--dir", dir, "boards", "members")
	if xs, _ := members["data"].([]any); len(xs) != 3 {
		t.Fatalf("expected 3 members after join; got %d", len(xs))
	}
}

func TestCLI_TextFormatRendersTable(t *testing.T) {
	dir := isolatedDir(t)
	mustRun(t, "--dir", dir, "login", "admin123", "--password", "password123")

	stdout, stderr, err := runCLI(t, []string{"--dir", dir, "--format", "text", "tasks", "list"})
	if err != nil {
		t.Fatalf("tasks list: %v\n%s", err, stderr)
	}
	out := string(stdout)
	for _, want := range []string{"TITLE", "USER INTERFACE DESIGN", "AUTHENTICATION", "hint:"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in text output:\n%s", want, out)
		}
	}
}

func TestCLI_ExportImportRoundTrip(t *testing.T) {
	dir := isolatedDir(t)
	mustRun(t, "--dir", dir, "login", "admin123", "--password", "password123")

	backup := filepath.Join(t.TempDir(), "backup.json")
	mustRun(t, "--dir", dir, "export", "--out", backup)

	created := dataMap(t, mustRun(t, "--dir", dir, "tasks", "create", "Temporary"))
	id := created["id"].(string)

	mustRun(t, "--dir", dir, "import", backup)
	if _, _, err := runCLI(t, []string{"--dir", dir, "tasks", "show", id}); err == nil {
		t.Fatalf("expected task created after export to be gone after import")
	}
}

func TestCLI_ViewRoundTrip(t *testing.T) {
	dir := isolatedDir(t)
	got := dataMap(t, mustRun(t, "--dir", dir, "view"))
	if got["view"] != "board" {
		t.Fatalf("expected default view board; got %v", got["view"])
	}
	got = dataMap(t, mustRun(t, "--dir", dir, "view", "calendar"))
	if got["view"] != "calendar" {
		t.Fatalf("expected calendar; got %v", got["view"])
	}
	if _, _, err := runCLI(t, []string{"--dir", dir, "view", "nowhere"}); err == nil {
		t.Fatalf("expected invalid view to fail")
	}
}

func TestParseStatus(t *testing.T) {
	cases := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "created", want: "created"},
		{in: "todo", want: "created"},
		{in: "In-Progress", want: "in-progress"},
		{in: "doing", want: "in-progress"},
		{in: "done", want: "completed"},
		{in: "archived", wantErr: true},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			got, err := parseStatus(tc.in)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error for %q", tc.in)
				}
				return
			}
			if err != nil || string(got) != tc.want {
				t.Fatalf("parseStatus(%q) = %q, %v; want %q", tc.in, got, err, tc.want)
			}
		})
	}
}

func TestParseCodeOrLink(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{in: "DEMO2024", want: "DEMO2024", ok: true},
		{in: "http://localhost:5173?board=ABCD1234", want: "ABCD1234", ok: true},
		{in: "http://localhost:5173/", ok: false},
		{in: "  ", ok: false},
	}
	for _, tc := range cases {
		got, ok := parseCodeOrLink(tc.in)
		if ok != tc.ok || got != tc.want {
			t.Fatalf("parseCodeOrLink(%q) = %q, %v; want %q, %v", tc.in, got, ok, tc.want, tc.ok)
		}
	}
}
