package cli_test

import (
	"strings"
	"testing"

	"github.com/calvinalkan/todo/internal/cli"
)

func runShell(t *testing.T, c *cli.CLI, lines ...string) (string, string) {
	t.Helper()

	stdout, stderr, code := c.RunWithInput(strings.Join(lines, "\n")+"\n", "shell")
	if code != 0 {
		t.Fatalf("shell exited with %d\nstderr: %s", code, stderr)
	}

	return stdout, stderr
}

// between returns the text of s between the first from and the first to.
func between(t *testing.T, s, from, to string) string {
	t.Helper()

	start := strings.Index(s, from)
	end := strings.Index(s, to)

	if start < 0 || end < start {
		t.Fatalf("markers %q..%q not found in:\n%s", from, to, s)
	}

	return s[start+len(from) : end]
}

func Test_Shell_Keeps_View_State_Between_Commands(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)

	stdout, stderr := runShell(t, c,
		"add Buy milk -p low --due 2099-01-01",
		`add "Walk dog" -d 'around the block' -p high --due 2099-01-02`,
		"search MILK",
		"ls",
		"order",
		"esc",
		"filter priority high",
		"ls",
		"order",
		"filter priority all",
		"sort priority",
		"order desc",
		"view",
		"ls",
		"bogus",
		"quit",
		"add never runs",
	)

	cli.AssertContains(t, stdout, `status=all priority=all search="" sort=priority order=desc`)
	cli.AssertContains(t, stdout, "Bye!")
	cli.AssertContains(t, stderr, "unknown command: bogus")
	cli.AssertNotContains(t, stdout, "never runs")

	searched := between(t, stdout, "  Buy milk\n", "order: desc")
	cli.AssertNotContains(t, searched, "Walk dog")

	filtered := between(t, stdout, "order: desc", "order: asc")
	cli.AssertContains(t, filtered, "Walk dog")
	cli.AssertNotContains(t, filtered, "Buy milk")

	final := stdout[strings.Index(stdout, "order=desc"):]
	if strings.Index(final, "Walk dog") > strings.Index(final, "Buy milk") {
		t.Fatalf("high priority should list first:\n%s", final)
	}

	content := c.ReadTasks()
	cli.AssertContains(t, content, `"title":"Walk dog"`)
	cli.AssertContains(t, content, `"description":"around the block"`)
}

func Test_Shell_Ls_Flags_Change_View(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	c.MustRun("add", "Buy milk", "-p", "low")
	c.MustRun("add", "Walk dog", "-p", "high")

	stdout, stderr := runShell(t, c,
		"ls --priority high --desc",
		"view",
		"ls",
		"ls --bogus",
		"ls extra",
		"ls --format xml",
	)

	cli.AssertContains(t, stdout, `status=all priority=high search="" sort=dueDate order=desc`)
	cli.AssertNotContains(t, stdout, "Buy milk")

	if strings.Count(stdout, "Walk dog") != 2 {
		t.Fatalf("both listings should show the high priority task:\n%s", stdout)
	}

	cli.AssertContains(t, stderr, "unknown flag: --bogus")
	cli.AssertContains(t, stderr, "unexpected argument: extra")
	cli.AssertContains(t, stderr, "invalid format")
}

func Test_Shell_Confirms_Destructive_Commands(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	c.MustRun("add", "keep")

	stdout, stderr := runShell(t, c,
		"clear",
		"n",
		"ls",
		"clear",
		"y",
		"ls",
	)

	cli.AssertContains(t, stderr, "Delete all 1 tasks? [y/N]")
	cli.AssertContains(t, stderr, "error: aborted")

	if strings.Index(stdout, "keep") > strings.Index(stdout, "All tasks have been cleared.") {
		t.Fatalf("task should be listed before clearing:\n%s", stdout)
	}

	if !strings.HasSuffix(strings.TrimSpace(stdout), "No tasks here.") {
		t.Fatalf("list should be empty after clear:\n%s", stdout)
	}

	if got := c.ReadTasks(); got != "[]" {
		t.Fatalf("tasks = %q", got)
	}
}

func Test_Shell_Toggle_And_Stats(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	id := c.MustRun("add", "Buy milk")

	stdout, _ := runShell(t, c,
		"toggle "+id,
		"stats",
		"help",
	)

	cli.AssertContains(t, stdout, `Task "Buy milk" marked as complete!`)
	cli.AssertContains(t, stdout, "completion rate: 100%")
	cli.AssertContains(t, stdout, "filter status|priority <v>")
}

func Test_Shell_Reports_Unterminated_Quote(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	_, stderr := runShell(t, c, `add "oops`)

	cli.AssertContains(t, stderr, "unterminated quote")
	cli.AssertNotContains(t, c.MustRun("ls"), "oops")
}
