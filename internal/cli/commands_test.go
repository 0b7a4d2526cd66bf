package cli_test

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"gopkg.in/yaml.v3"

	"github.com/calvinalkan/todo/internal/cli"
)

func Test_Add_Prints_ID_And_Persists_Task(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	id := c.MustRun("add", "Buy", "milk", "-d", "  two liters ", "-p", "HIGH", "--due", "2099-01-01")

	if id == "" || strings.ContainsAny(id, " \n") {
		t.Fatalf("expected a bare id, got %q", id)
	}

	content := c.ReadTasks()
	cli.AssertContains(t, content, `"id":`+id)
	cli.AssertContains(t, content, `"title":"Buy milk"`)
	cli.AssertContains(t, content, `"description":"two liters"`)
	cli.AssertContains(t, content, `"dueDate":"2099-01-01"`)
	cli.AssertContains(t, content, `"priority":"high"`)
	cli.AssertContains(t, content, `"completed":false`)
}

func Test_Add_Fails_When_Input_Invalid(t *testing.T) {
	t.Parallel()

	for _, tt := range []struct {
		name       string
		args       []string
		wantStderr string
	}{
		{name: "no title", args: []string{"add"}, wantStderr: "title"},
		{name: "blank title", args: []string{"add", "   "}, wantStderr: "title"},
		{name: "bad priority", args: []string{"add", "x", "-p", "urgent"}, wantStderr: "priority"},
		{name: "bad date", args: []string{"add", "x", "--due", "2024-02-30"}, wantStderr: "dueDate"},
		{name: "unknown flag", args: []string{"add", "x", "--nope"}, wantStderr: "unknown flag"},
	} {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			c := cli.NewCLI(t)
			stderr := c.MustFail(tt.args...)
			cli.AssertContains(t, stderr, tt.wantStderr)

			stdout := c.MustRun("ls")
			cli.AssertContains(t, stdout, "No tasks here.")
		})
	}
}

func Test_Ls_Prints_Empty_Message_When_No_Tasks(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	stdout := c.MustRun("ls")

	if stdout != "No tasks here." {
		t.Fatalf("stdout = %q", stdout)
	}
}

func Test_Ls_Orders_By_Priority_With_Completed_Last(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	low := c.MustRun("add", "Low", "-p", "low", "--due", "2099-01-01")
	c.MustRun("add", "Medium", "-p", "medium", "--due", "2099-01-01")
	c.MustRun("add", "High", "-p", "high", "--due", "2099-01-01")
	c.MustRun("toggle", low)

	stdout := c.MustRun("ls", "--sort", "priority", "--desc")

	var titles []string

	for _, line := range strings.Split(stdout, "\n") {
		fields := strings.Fields(line)
		titles = append(titles, fields[len(fields)-1])
	}

	if diff := cmp.Diff([]string{"High", "Medium", "Low"}, titles); diff != "" {
		t.Fatalf("order mismatch (-want +got):\n%s\n%s", diff, stdout)
	}

	cli.AssertContains(t, stdout, "[x] "+low)
}

func Test_Ls_Filters_By_Status_Priority_And_Search(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	milk := c.MustRun("add", "Buy milk", "-p", "low", "--due", "2099-01-01")
	c.MustRun("add", "Walk dog", "-d", "around the block", "-p", "high", "--due", "2099-01-01")
	c.MustRun("toggle", milk)

	stdout := c.MustRun("ls", "--status", "active")
	cli.AssertContains(t, stdout, "Walk dog")
	cli.AssertNotContains(t, stdout, "Buy milk")

	stdout = c.MustRun("ls", "--priority", "low")
	cli.AssertContains(t, stdout, "Buy milk")
	cli.AssertNotContains(t, stdout, "Walk dog")

	stdout = c.MustRun("ls", "--search", "BLOCK")
	cli.AssertContains(t, stdout, "Walk dog")
	cli.AssertContains(t, stdout, "    around the block")

	stdout = c.MustRun("ls", "--status", "completed", "--priority", "high")
	cli.AssertContains(t, stdout, "No tasks here.")

	stderr := c.MustFail("ls", "--status", "done")
	cli.AssertContains(t, stderr, "invalid view setting")
}

func Test_Ls_Marks_Overdue_Tasks(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	c.MustRun("add", "Late", "--due", "2000-01-01")
	c.MustRun("add", "Later", "--due", "2099-01-01")

	stdout := c.MustRun("ls")
	cli.AssertContains(t, stdout, "Late (overdue)")
	cli.AssertNotContains(t, stdout, "Later (overdue)")
}

func Test_Ls_Structured_Formats(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	c.MustRun("add", "Buy milk", "--due", "2000-01-01", "-p", "low")

	type record struct {
		Title    string `json:"title" yaml:"title"`
		DueDate  string `json:"dueDate" yaml:"dueDate"`
		Priority string `json:"priority" yaml:"priority"`
		Overdue  bool   `json:"overdue" yaml:"overdue"`
	}

	want := []record{{Title: "Buy milk", DueDate: "2000-01-01", Priority: "low", Overdue: true}}

	var fromJSON []record

	err := json.Unmarshal([]byte(c.MustRun("ls", "--format", "json")), &fromJSON)
	if err != nil {
		t.Fatal(err)
	}

	if diff := cmp.Diff(want, fromJSON); diff != "" {
		t.Errorf("json mismatch (-want +got):\n%s", diff)
	}

	var fromYAML []record

	err = yaml.Unmarshal([]byte(c.MustRun("ls", "--format", "yaml")), &fromYAML)
	if err != nil {
		t.Fatal(err)
	}

	if diff := cmp.Diff(want, fromYAML); diff != "" {
		t.Errorf("yaml mismatch (-want +got):\n%s", diff)
	}

	stderr := c.MustFail("ls", "--format", "xml")
	cli.AssertContains(t, stderr, "invalid format")
}

func Test_Toggle_Notifies_Only_On_Completion(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	id := c.MustRun("add", "Buy milk")

	stdout := c.MustRun("toggle", id)
	if stdout != `Task "Buy milk" marked as complete!` {
		t.Fatalf("stdout = %q", stdout)
	}

	stdout = c.MustRun("toggle", id)
	cli.AssertNotContains(t, stdout, "marked as complete")
	cli.AssertContains(t, stdout, "[ ] "+id)

	cli.AssertContains(t, c.ReadTasks(), `"completed":false`)
}

func Test_Toggle_Uses_Configured_Locale(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	c.Env["TODO_LOCALE"] = "de"

	id := c.MustRun("add", "Milch")
	stdout := c.MustRun("toggle", id)

	cli.AssertNotContains(t, stdout, "marked as complete")
	cli.AssertContains(t, stdout, "Milch")
}

func Test_Toggle_Fails_When_Task_Missing(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)

	cli.AssertContains(t, c.MustFail("toggle", "42"), "task not found")
	cli.AssertContains(t, c.MustFail("toggle"), "task id is required")
	cli.AssertContains(t, c.MustFail("toggle", "abc"), "invalid task id")
}

func Test_Edit_Changes_Only_Given_Fields(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	id := c.MustRun("add", "Buy milk", "-d", "two liters", "-p", "low", "--due", "2099-01-01")

	stdout := c.MustRun("edit", id, "--title", "Buy oat milk", "-p", "high")
	cli.AssertContains(t, stdout, "title:       Buy oat milk")
	cli.AssertContains(t, stdout, "description: two liters")
	cli.AssertContains(t, stdout, "priority:    high")
	cli.AssertContains(t, stdout, "due:         2099-01-01")

	c.MustRun("edit", id, "-d", "")
	cli.AssertContains(t, c.ReadTasks(), `"description":""`)

	cli.AssertContains(t, c.MustFail("edit", id), "nothing to change")
	cli.AssertContains(t, c.MustFail("edit", id, "--title", " "), "title")
	cli.AssertContains(t, c.MustFail("edit", "7", "--title", "x"), "task not found")
	cli.AssertContains(t, c.ReadTasks(), `"title":"Buy oat milk"`)
}

func Test_Show_Prints_All_Fields(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	id := c.MustRun("add", "Buy milk", "--due", "2099-01-01")

	stdout := c.MustRun("show", id)
	cli.AssertContains(t, stdout, "id:          "+id)
	cli.AssertContains(t, stdout, "priority:    medium")
	cli.AssertContains(t, stdout, "completed:   false")

	stdout = c.MustRun("show", id, "--format", "yaml")
	cli.AssertContains(t, stdout, "title: Buy milk")

	cli.AssertContains(t, c.MustFail("show", "1"), "task not found")
}

func Test_Rm_Requires_Confirmation(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	id := c.MustRun("add", "Keep me")

	stdout, stderr, code := c.RunWithInput("n\n", "rm", id)
	if code == 0 {
		t.Fatalf("refused rm should fail, stdout=%q", stdout)
	}

	cli.AssertContains(t, stderr, `Delete task "Keep me"? [y/N]`)
	cli.AssertContains(t, stderr, "aborted")
	cli.AssertContains(t, c.ReadTasks(), "Keep me")

	_, stderr, code = c.Run("rm", id)
	if code == 0 {
		t.Fatal("rm without input or --yes should fail")
	}

	cli.AssertContains(t, stderr, "--yes")

	stdout, _, code = c.RunWithInput("yes\n", "rm", id)
	if code != 0 {
		t.Fatalf("confirmed rm failed with %d", code)
	}

	cli.AssertContains(t, stdout, "Task has been deleted.")
	cli.AssertNotContains(t, c.ReadTasks(), "Keep me")

	// Deleting again is a silent no-op.
	if stdout := c.MustRun("rm", id, "-y"); stdout != "" {
		t.Fatalf("stdout = %q", stdout)
	}
}

func Test_Clear_Removes_Everything(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	c.MustRun("add", "a")
	c.MustRun("add", "b")

	_, stderr, code := c.RunWithInput("\n", "clear")
	if code == 0 {
		t.Fatal("clear without confirmation should fail")
	}

	cli.AssertContains(t, stderr, "Delete all 2 tasks?")

	stdout := c.MustRun("clear", "--yes")
	cli.AssertContains(t, stdout, "All tasks have been cleared.")

	if got := c.ReadTasks(); got != "[]" {
		t.Fatalf("tasks = %q, want []", got)
	}
}

func Test_Stats_Counts_All_Tasks(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	a := c.MustRun("add", "a", "-p", "high", "--due", "2000-01-01")
	c.MustRun("add", "b", "-p", "high", "--due", "2099-01-01")
	c.MustRun("add", "c", "-p", "low", "--due", "2000-01-01")
	c.MustRun("toggle", a)

	stdout := c.MustRun("stats")
	cli.AssertContains(t, stdout, "total:           3")
	cli.AssertContains(t, stdout, "completed:       1")
	cli.AssertContains(t, stdout, "overdue:         1")
	cli.AssertContains(t, stdout, "completion rate: 33%")
	cli.AssertContains(t, stdout, "high   2 (67%)")

	var got struct {
		Total          int `json:"total"`
		Active         int `json:"active"`
		CompletionRate int `json:"completionRate"`
	}

	err := json.Unmarshal([]byte(c.MustRun("stats", "--format", "json")), &got)
	if err != nil {
		t.Fatal(err)
	}

	if got.Total != 3 || got.Active != 2 || got.CompletionRate != 33 {
		t.Fatalf("stats = %+v", got)
	}
}

func Test_Corrupt_Data_Starts_Empty(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	c.WriteTasks("{not json")

	stdout := c.MustRun("ls")
	cli.AssertContains(t, stdout, "No tasks here.")

	c.MustRun("add", "fresh")
	cli.AssertContains(t, c.ReadTasks(), `"title":"fresh"`)
}

func Test_Stored_Task_Without_Valid_ID_Gets_Usable_ID(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	c.WriteTasks(`[
		{"id":0,"title":"legacy","description":"","dueDate":"2099-01-01","priority":"low","completed":false},
		{"id":40,"title":"recent","description":"","dueDate":"2099-01-02","priority":"low","completed":false}
	]`)

	cli.AssertContains(t, c.MustRun("ls"), "[ ] 41  2099-01-01")
	cli.AssertContains(t, c.MustRun("show", "41"), "title:       legacy")

	stdout := c.MustRun("toggle", "41")
	cli.AssertContains(t, stdout, `Task "legacy" marked as complete!`)

	content := c.ReadTasks()
	cli.AssertContains(t, content, `"id":41`)
	cli.AssertNotContains(t, content, `"id":0,`)

	if got := c.MustRun("rm", "-y", "0"); got != "" {
		t.Fatalf("rm of unknown id printed %q", got)
	}

	cli.AssertContains(t, c.MustFail("toggle", "0"), "task not found")
}

func Test_Unknown_Fields_Survive_Edits(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	c.WriteTasks(`[{"id":5,"title":"old","description":"","dueDate":"2099-01-01","priority":"low","completed":false,"tags":["x"]}]`)

	c.MustRun("edit", "5", "--title", "new")

	content := c.ReadTasks()
	cli.AssertContains(t, content, `"title":"new"`)
	cli.AssertContains(t, content, `"tags":["x"]`)
}

func Test_Sqlite_Backend_Persists_Between_Runs(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	id := c.MustRun("--backend", "sqlite", "add", "in sqlite")

	stdout := c.MustRun("--backend", "sqlite", "ls")
	cli.AssertContains(t, stdout, id)
	cli.AssertContains(t, stdout, "in sqlite")

	// The file backend does not see sqlite data.
	cli.AssertContains(t, c.MustRun("ls"), "No tasks here.")
}

func Test_Memory_Backend_Does_Not_Persist(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	c.MustRun("--backend", "memory", "add", "gone")

	cli.AssertContains(t, c.MustRun("--backend=memory", "ls"), "No tasks here.")
}

func Test_Add_Warns_When_Save_Fails(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	writeFile(t, c.DataDir(), "not a directory")

	stdout, stderr, code := c.Run("add", "unsaved")
	if code != 1 {
		t.Fatalf("exit code = %d, want 1", code)
	}

	if strings.TrimSpace(stdout) == "" {
		t.Fatal("the id of the in-memory task should still be printed")
	}

	cli.AssertContains(t, stderr, "warning: Could not save tasks")
	cli.AssertContains(t, stderr, "check the data directory and retry")
}
