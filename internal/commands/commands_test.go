package commands_test

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"taskman/internal/commands"
	"taskman/internal/config"
	"taskman/internal/exitcode"
	"taskman/internal/task"
	"taskman/internal/testutil"
)

// runCommand is a helper to run a command with FakeStore. args go through
// the command's flags first, as the dispatcher does.
func runCommand(t *testing.T, cmd commands.Command, st *testutil.FakeStore, args []string, quiet bool) (stdout, stderr string, code int) {
	t.Helper()

	fs := flag.NewFlagSet(cmd.Name(), flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	cmd.RegisterFlags(fs)
	if err := fs.Parse(args); err != nil {
		t.Fatalf("parse flags: %v", err)
	}

	var outBuf, errBuf bytes.Buffer

	cfg := &config.Config{
		Dir:      t.TempDir(),
		Quiet:    quiet,
		Settings: config.DefaultSettings(),
		Logger:   log.New(io.Discard),
	}
	cfg.Settings.Display.Locale = "C"

	ctx := context.Background()
	if st == nil {
		code = cmd.Run(ctx, cfg, nil, fs.Args(), &outBuf, &errBuf)
	} else {
		code = cmd.Run(ctx, cfg, st, fs.Args(), &outBuf, &errBuf)
	}
	return outBuf.String(), errBuf.String(), code
}

func sampleStore() *testutil.FakeStore {
	due := "2024-06-01"
	return testutil.NewFakeStore(
		task.Task{ID: "aaaa1111", Title: "Buy milk", Priority: task.PriorityLow, Status: task.StatusPending},
		task.Task{ID: "bbbb2222", Title: "Ship release", Description: "v1.0", DueDate: &due, Priority: task.PriorityHigh, Status: task.StatusCompleted},
		task.Task{ID: "bbbb3333", Title: "Call mom", Priority: task.PriorityMedium, Status: task.StatusPending},
	)
}

// Tests for version command
func TestVersionCommand(t *testing.T) {
	cmd := &commands.VersionCmd{}

	stdout, stderr, code := runCommand(t, cmd, nil, nil, false)

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stderr != "" {
		t.Errorf("expected no stderr, got %q", stderr)
	}
	if stdout != "taskman 0.1.0\n" {
		t.Errorf("expected version output, got %q", stdout)
	}
}

// Tests for help command
func TestHelpCommand(t *testing.T) {
	cmd := &commands.HelpCmd{}

	stdout, stderr, code := runCommand(t, cmd, nil, nil, false)

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stderr != "" {
		t.Errorf("expected no stderr, got %q", stderr)
	}
	testutil.GoldenString(t, "help", stdout)
}

// Tests for list command
func TestListCommand(t *testing.T) {
	cmd := &commands.ListCmd{}

	stdout, stderr, code := runCommand(t, cmd, sampleStore(), nil, false)

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stderr != "" {
		t.Errorf("expected no stderr, got %q", stderr)
	}
	expected := "   1  [ ] Buy milk  Low  No due date\n" +
		"   2  [x] Ship release  High  2024-06-01\n" +
		"            v1.0\n" +
		"   3  [ ] Call mom  Medium  No due date\n"
	if stdout != expected {
		t.Errorf("expected %q, got %q", expected, stdout)
	}
}

func TestListCommand_FilterKeepsPositions(t *testing.T) {
	cmd := &commands.ListCmd{}

	stdout, _, code := runCommand(t, cmd, sampleStore(), []string{"--status", "pending"}, false)

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	expected := "   1  [ ] Buy milk  Low  No due date\n" +
		"   3  [ ] Call mom  Medium  No due date\n"
	if stdout != expected {
		t.Errorf("expected %q, got %q", expected, stdout)
	}
}

func TestListCommand_BothFilters(t *testing.T) {
	cmd := &commands.ListCmd{}

	stdout, _, _ := runCommand(t, cmd, sampleStore(), []string{"--status", "pending", "--priority", "medium"}, false)

	if stdout != "   3  [ ] Call mom  Medium  No due date\n" {
		t.Errorf("unexpected output %q", stdout)
	}
}

func TestListCommand_Empty(t *testing.T) {
	cmd := &commands.ListCmd{}

	stdout, _, code := runCommand(t, cmd, testutil.NewFakeStore(), nil, false)
	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stdout != "No tasks found.\n" {
		t.Errorf("expected empty message, got %q", stdout)
	}

	stdout, _, _ = runCommand(t, cmd, testutil.NewFakeStore(), nil, true)
	if stdout != "" {
		t.Errorf("expected no output with quiet, got %q", stdout)
	}
}

func TestListCommand_InvalidFilter(t *testing.T) {
	cmd := &commands.ListCmd{}

	_, stderr, code := runCommand(t, cmd, sampleStore(), []string{"--priority", "urgent"}, false)

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if !strings.HasPrefix(stderr, "error: priority filter: invalid priority") {
		t.Errorf("unexpected stderr %q", stderr)
	}
}

func TestListCommand_HTML(t *testing.T) {
	st := testutil.NewFakeStore(task.Task{ID: "x1", Title: "<script>alert(1)</script>", Priority: task.PriorityLow, Status: task.StatusPending})
	cmd := &commands.ListCmd{}

	stdout, _, code := runCommand(t, cmd, st, []string{"--html"}, false)

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if strings.Contains(stdout, "<script>") {
		t.Errorf("title must be escaped, got %q", stdout)
	}
	if !strings.Contains(stdout, "&lt;script&gt;alert(1)&lt;/script&gt;") {
		t.Errorf("expected escaped title, got %q", stdout)
	}
}

func TestListCommand_StorageError(t *testing.T) {
	st := testutil.NewFakeStore()
	st.GetAllErr = errors.New("unreadable")
	cmd := &commands.ListCmd{}

	_, stderr, code := runCommand(t, cmd, st, nil, false)

	if code != exitcode.StorageError {
		t.Errorf("expected exit code %d, got %d", exitcode.StorageError, code)
	}
	if stderr != "error: storage error: unreadable\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
}

// Tests for add command
func TestAddCommand(t *testing.T) {
	st := testutil.NewFakeStore()
	cmd := &commands.AddCmd{}

	stdout, stderr, code := runCommand(t, cmd, st, []string{"--desc", " two litres ", "--due", "2024-06-01", "--priority", "HIGH", "Buy", "milk"}, false)

	if code != exitcode.Success {
		t.Fatalf("expected exit code %d, got %d (stderr %q)", exitcode.Success, code, stderr)
	}
	if stdout != "ok\n" {
		t.Errorf("expected 'ok\\n', got %q", stdout)
	}
	tasks := st.Tasks()
	if len(tasks) != 1 {
		t.Fatalf("expected 1 task, got %d", len(tasks))
	}
	got := tasks[0]
	if got.Title != "Buy milk" || got.Description != "two litres" || got.DueDateOnly() != "2024-06-01" {
		t.Errorf("unexpected task %+v", got)
	}
	if got.Priority != task.PriorityHigh || got.Status != task.StatusPending {
		t.Errorf("expected high/pending, got %s/%s", got.Priority, got.Status)
	}
}

func TestAddCommand_DefaultsToMedium(t *testing.T) {
	st := testutil.NewFakeStore()
	cmd := &commands.AddCmd{}

	_, _, code := runCommand(t, cmd, st, []string{"Plain"}, true)

	if code != exitcode.Success {
		t.Fatalf("expected exit code %d, got %d", exitcode.Success, code)
	}
	tasks := st.Tasks()
	if len(tasks) != 1 || tasks[0].Priority != task.PriorityMedium || tasks[0].DueDate != nil {
		t.Errorf("unexpected tasks %+v", tasks)
	}
}

func TestAddCommand_TitleRequired(t *testing.T) {
	st := testutil.NewFakeStore()
	cmd := &commands.AddCmd{}

	_, stderr, code := runCommand(t, cmd, st, []string{"   "}, false)

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if stderr != "error: Task title is required\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
	if st.Saves != 0 {
		t.Errorf("expected no save, got %d", st.Saves)
	}
}

func TestAddCommand_InvalidDueDate(t *testing.T) {
	st := testutil.NewFakeStore()
	cmd := &commands.AddCmd{}

	_, stderr, code := runCommand(t, cmd, st, []string{"--due", "tomorrow", "Thing"}, false)

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if stderr != "error: Invalid due date: tomorrow\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
	if len(st.Tasks()) != 0 {
		t.Error("expected no task to be created")
	}
}

func TestAddCommand_SaveError(t *testing.T) {
	st := testutil.NewFakeStore()
	st.SaveAllErr = errors.New("disk full")
	cmd := &commands.AddCmd{}

	_, stderr, code := runCommand(t, cmd, st, []string{"Thing"}, false)

	if code != exitcode.StorageError {
		t.Errorf("expected exit code %d, got %d", exitcode.StorageError, code)
	}
	if stderr != "error: storage error: disk full\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
}

// Tests for edit command
func TestEditCommand_ChangesOnlyGivenFields(t *testing.T) {
	st := sampleStore()
	cmd := &commands.EditCmd{}

	stdout, stderr, code := runCommand(t, cmd, st, []string{"--title", "Ship v1", "2"}, false)

	if code != exitcode.Success {
		t.Fatalf("expected exit code %d, got %d (stderr %q)", exitcode.Success, code, stderr)
	}
	if stdout != "ok\n" {
		t.Errorf("expected 'ok\\n', got %q", stdout)
	}
	got := st.Tasks()[1]
	if got.ID != "bbbb2222" || got.Title != "Ship v1" || got.Description != "v1.0" {
		t.Errorf("unexpected task %+v", got)
	}
	if got.DueDateOnly() != "2024-06-01" || got.Priority != task.PriorityHigh {
		t.Errorf("due date and priority must be kept, got %+v", got)
	}
	if got.Status != task.StatusCompleted {
		t.Errorf("status must be kept, got %s", got.Status)
	}
}

func TestEditCommand_ClearDueDate(t *testing.T) {
	st := sampleStore()
	cmd := &commands.EditCmd{}

	_, _, code := runCommand(t, cmd, st, []string{"--due", "", "bbbb2222"}, true)

	if code != exitcode.Success {
		t.Fatalf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if got := st.Tasks()[1]; got.DueDateOnly() != "" {
		t.Errorf("expected due date cleared, got %q", got.DueDateOnly())
	}
}

func TestEditCommand_EmptyTitle(t *testing.T) {
	st := sampleStore()
	cmd := &commands.EditCmd{}

	_, stderr, code := runCommand(t, cmd, st, []string{"--title", " ", "1"}, false)

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if stderr != "error: Task title is required\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
	if st.Tasks()[0].Title != "Buy milk" {
		t.Error("task must be unchanged")
	}
}

func TestEditCommand_FlagsDoNotLeakBetweenRuns(t *testing.T) {
	st := sampleStore()
	cmd := &commands.EditCmd{}

	runCommand(t, cmd, st, []string{"--priority", "high", "1"}, true)
	runCommand(t, cmd, st, []string{"--title", "Call dad", "3"}, true)

	if got := st.Tasks()[2]; got.Priority != task.PriorityMedium || got.Title != "Call dad" {
		t.Errorf("unexpected task %+v", got)
	}
}

// Tests for done and undo commands
func TestDoneCommand(t *testing.T) {
	st := sampleStore()
	cmd := &commands.DoneCmd{}

	stdout, stderr, code := runCommand(t, cmd, st, []string{"1"}, false)

	if code != exitcode.Success {
		t.Fatalf("expected exit code %d, got %d (stderr %q)", exitcode.Success, code, stderr)
	}
	if stdout != "ok\n" {
		t.Errorf("expected 'ok\\n', got %q", stdout)
	}
	if st.Tasks()[0].Status != task.StatusCompleted {
		t.Errorf("expected completed, got %s", st.Tasks()[0].Status)
	}
}

func TestDoneCommand_ByDigitID(t *testing.T) {
	st := testutil.NewFakeStore(
		task.Task{ID: "aaaa1111", Title: "Buy milk", Priority: task.PriorityLow, Status: task.StatusPending},
		task.Task{ID: "1712345678901", Title: "Imported", Priority: task.PriorityMedium, Status: task.StatusPending},
	)
	cmd := &commands.DoneCmd{}

	_, stderr, code := runCommand(t, cmd, st, []string{"1712345678901"}, false)

	if code != exitcode.Success {
		t.Fatalf("expected exit code %d, got %d (stderr %q)", exitcode.Success, code, stderr)
	}
	if st.Tasks()[1].Status != task.StatusCompleted {
		t.Errorf("expected imported task completed, got %s", st.Tasks()[1].Status)
	}
	if st.Tasks()[0].Status != task.StatusPending {
		t.Errorf("expected first task untouched, got %s", st.Tasks()[0].Status)
	}
}

func TestUndoCommand_ByIDPrefix(t *testing.T) {
	st := sampleStore()
	cmd := &commands.UndoCmd{}

	_, stderr, code := runCommand(t, cmd, st, []string{"bbbb2"}, false)

	if code != exitcode.Success {
		t.Fatalf("expected exit code %d, got %d (stderr %q)", exitcode.Success, code, stderr)
	}
	if st.Tasks()[1].Status != task.StatusPending {
		t.Errorf("expected pending, got %s", st.Tasks()[1].Status)
	}
}

func TestDoneCommand_RefErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"missing", nil, "error: task reference required\n"},
		{"out of range", []string{"9"}, "error: task number out of range: 9\n"},
		{"zero", []string{"0"}, "error: task number out of range: 0\n"},
		{"ambiguous prefix", []string{"bbbb"}, "error: ambiguous task reference: bbbb\n"},
		{"unknown id", []string{"zzzz"}, "error: task not found: zzzz\n"},
		{"too short", []string{"ab"}, "error: invalid task reference: ab\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := sampleStore()
			_, stderr, code := runCommand(t, &commands.DoneCmd{}, st, tt.args, false)

			if code != exitcode.UserError {
				t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
			}
			if stderr != tt.want {
				t.Errorf("expected %q, got %q", tt.want, stderr)
			}
			if st.Saves != 0 {
				t.Errorf("expected no save, got %d", st.Saves)
			}
		})
	}
}

// Tests for rm command
func TestRmCommand_Yes(t *testing.T) {
	st := sampleStore()
	cmd := &commands.RmCmd{}

	stdout, stderr, code := runCommand(t, cmd, st, []string{"--yes", "2"}, false)

	if code != exitcode.Success {
		t.Fatalf("expected exit code %d, got %d (stderr %q)", exitcode.Success, code, stderr)
	}
	if stdout != "ok\n" {
		t.Errorf("expected 'ok\\n', got %q", stdout)
	}
	tasks := st.Tasks()
	if len(tasks) != 2 || tasks[0].ID != "aaaa1111" || tasks[1].ID != "bbbb3333" {
		t.Errorf("unexpected remaining tasks %+v", tasks)
	}
}

func TestRmCommand_PromptAccepted(t *testing.T) {
	st := sampleStore()
	cmd := &commands.RmCmd{}
	cmd.SetInput(strings.NewReader("y\n"))

	stdout, stderr, code := runCommand(t, cmd, st, []string{"1"}, false)

	if code != exitcode.Success {
		t.Fatalf("expected exit code %d, got %d", exitcode.Success, code)
	}
	expectedPrompt := "Are you sure you want to delete this task? \"Buy milk\" [y/N] "
	if stderr != expectedPrompt {
		t.Errorf("expected prompt %q, got %q", expectedPrompt, stderr)
	}
	if stdout != "ok\n" {
		t.Errorf("expected 'ok\\n', got %q", stdout)
	}
	if len(st.Tasks()) != 2 {
		t.Errorf("expected 2 tasks, got %d", len(st.Tasks()))
	}
}

func TestRmCommand_PromptDeclined(t *testing.T) {
	for _, answer := range []string{"n\n", "\n", "", "maybe\n"} {
		st := sampleStore()
		cmd := &commands.RmCmd{}
		cmd.SetInput(strings.NewReader(answer))

		stdout, _, code := runCommand(t, cmd, st, []string{"1"}, false)

		if code != exitcode.Success {
			t.Errorf("answer %q: expected exit code %d, got %d", answer, exitcode.Success, code)
		}
		if stdout != "" {
			t.Errorf("answer %q: expected no output, got %q", answer, stdout)
		}
		if len(st.Tasks()) != 3 || st.Saves != 0 {
			t.Errorf("answer %q: declining must not touch the store", answer)
		}
	}
}

// Tests for export command
func TestExportCommand_Stdout(t *testing.T) {
	cmd := &commands.ExportCmd{}

	stdout, stderr, code := runCommand(t, cmd, sampleStore(), []string{"--format", "csv", "--status", "completed"}, false)

	if code != exitcode.Success {
		t.Fatalf("expected exit code %d, got %d (stderr %q)", exitcode.Success, code, stderr)
	}
	expected := "id,title,description,due_date,priority,status\n" +
		"bbbb2222,Ship release,v1.0,2024-06-01,high,completed\n"
	if stdout != expected {
		t.Errorf("expected %q, got %q", expected, stdout)
	}
}

func TestExportCommand_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tasks.yaml")
	cmd := &commands.ExportCmd{}

	stdout, _, code := runCommand(t, cmd, sampleStore(), []string{"--format", "yaml", "--output", path}, false)

	if code != exitcode.Success {
		t.Fatalf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stdout != "ok\n" {
		t.Errorf("expected 'ok\\n', got %q", stdout)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat export: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("expected mode 0600, got %o", perm)
	}
	data, _ := os.ReadFile(path)
	if !strings.Contains(string(data), "title: Buy milk") {
		t.Errorf("unexpected export %s", data)
	}
}

func TestExportCommand_UnknownFormat(t *testing.T) {
	cmd := &commands.ExportCmd{}

	_, stderr, code := runCommand(t, cmd, sampleStore(), []string{"--format", "docx"}, false)

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if !strings.HasPrefix(stderr, "error: unknown export format: docx") {
		t.Errorf("unexpected stderr %q", stderr)
	}
}

// Tests for the registry
func TestDefaultRegistry_Aliases(t *testing.T) {
	for alias, name := range map[string]string{
		"create": "add", "ls": "list", "update": "edit", "complete": "done",
		"reopen": "undo", "delete": "rm", "web": "serve", "tui": "ui",
	} {
		cmd, ok := commands.DefaultRegistry.Find(alias)
		if !ok {
			t.Errorf("alias %q not registered", alias)
			continue
		}
		if cmd.Name() != name {
			t.Errorf("alias %q resolves to %q, want %q", alias, cmd.Name(), name)
		}
	}
}

func TestRegistry_RejectsDuplicates(t *testing.T) {
	r := commands.NewRegistry()
	if err := r.Register(&commands.HelpCmd{}); err != nil {
		t.Fatalf("first register: %v", err)
	}
	if err := r.Register(&commands.HelpCmd{}); err == nil {
		t.Error("expected error for duplicate command")
	}
}

func TestHelpCommand_ForCommand(t *testing.T) {
	cmd := &commands.HelpCmd{}

	stdout, _, code := runCommand(t, cmd, nil, []string{"rm"}, false)

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if !strings.HasPrefix(stdout, "Usage:\n  taskman rm [--yes] <ref>\n\nDelete a task\nAliases: delete\n") {
		t.Errorf("unexpected help %q", stdout)
	}
}

func TestHelpCommand_UnknownCommand(t *testing.T) {
	cmd := &commands.HelpCmd{}

	_, stderr, code := runCommand(t, cmd, nil, []string{"frobnicate"}, false)

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if stderr != "error: unknown command: frobnicate\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
}

func TestHelpCommand_ListsRegistry(t *testing.T) {
	r := commands.NewRegistry()
	if err := r.Register(&commands.VersionCmd{}); err != nil {
		t.Fatal(err)
	}
	cmd := &commands.HelpCmd{}
	cmd.SetRegistry(r)

	stdout, _, _ := runCommand(t, cmd, nil, nil, false)

	if !strings.Contains(stdout, "  version  Print version\n") {
		t.Errorf("expected version line, got %q", stdout)
	}
	if strings.Contains(stdout, "  add ") {
		t.Errorf("expected only registered commands, got %q", stdout)
	}
}

func TestRegistry_AliasCollidesWithName(t *testing.T) {
	r := commands.NewRegistry()
	if err := r.Register(&commands.ListCmd{}); err != nil {
		t.Fatal(err)
	}
	if err := r.Register(&aliasCmd{alias: "list"}); err == nil {
		t.Error("expected error for alias shadowing a command name")
	}
}

// aliasCmd is a do-nothing command with one alias.
type aliasCmd struct {
	commands.VersionCmd
	alias string
}

func (c *aliasCmd) Name() string      { return "other" }
func (c *aliasCmd) Aliases() []string { return []string{c.alias} }
