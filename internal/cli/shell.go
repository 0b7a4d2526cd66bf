package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/peterh/liner"

	"github.com/calvinalkan/todo/internal/app"

	flag "github.com/spf13/pflag"
)

const (
	shellPrompt      = "todo> "
	shellHistoryFile = ".shell_history"
)

var (
	errUnterminatedQuote = errors.New("unterminated quote")
	errUnexpectedArg     = errors.New("unexpected argument")
)

// ShellCmd returns the shell command. stdin is the process input; a terminal
// gets line editing and history, anything else is read line by line.
func ShellCmd(sess *session, stdin io.Reader) *Command {
	return &Command{
		Flags: flag.NewFlagSet("shell", flag.ContinueOnError),
		Usage: "shell",
		Short: "Interactive session",
		Long: `Start an interactive session. Filters, search and sort order set in the
session apply to every following ls until changed. Type 'help' for commands.`,
		Exec: func(ctx context.Context, o *IO, _ []string) error {
			a, err := sess.App(ctx)
			if err != nil {
				return err
			}

			sh := &shell{sess: sess, app: a, io: o}

			if f, ok := stdin.(*os.File); ok && f == os.Stdin {
				return sh.runLiner(ctx)
			}

			return sh.runLines(ctx)
		},
	}
}

// shell is one interactive session over a single [app.App]. Its view state
// lives in the App and persists across commands.
type shell struct {
	sess *session
	app  *app.App
	io   *IO
}

// runLiner reads commands with line editing, completion and history.
func (sh *shell) runLiner(ctx context.Context) error {
	line := liner.NewLiner()
	defer line.Close()

	line.SetCtrlCAborts(true)
	line.SetCompleter(sh.completer)

	historyPath := filepath.Join(sh.sess.cfg.DataDirAbs, shellHistoryFile)
	if f, err := os.Open(historyPath); err == nil {
		_, _ = line.ReadHistory(f)
		_ = f.Close()
	}

	defer sh.saveHistory(line, historyPath)

	sh.io.prompt = line.Prompt

	sh.io.Println("todo shell - type 'help' for commands.")

	for ctx.Err() == nil {
		input, err := line.Prompt(shellPrompt)
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
				sh.io.Println("Bye!")

				return nil
			}

			return fmt.Errorf("reading input: %w", err)
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}

		line.AppendHistory(input)

		if sh.exec(ctx, input) {
			return nil
		}
	}

	return ctx.Err()
}

func (sh *shell) saveHistory(line *liner.State, path string) {
	err := os.MkdirAll(filepath.Dir(path), 0o750)
	if err != nil {
		return
	}

	f, err := os.Create(path)
	if err != nil {
		return
	}

	_, _ = line.WriteHistory(f)
	_ = f.Close()
}

// runLines reads one command per line until EOF or quit, without prompts.
func (sh *shell) runLines(ctx context.Context) error {
	for ctx.Err() == nil {
		input, err := sh.io.ReadLine()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}

			return fmt.Errorf("reading input: %w", err)
		}

		input = strings.TrimSpace(input)
		if input == "" || strings.HasPrefix(input, "#") {
			continue
		}

		if sh.exec(ctx, input) {
			return nil
		}
	}

	return ctx.Err()
}

// exec runs one input line. It reports whether the session should end.
func (sh *shell) exec(ctx context.Context, input string) bool {
	args, err := splitArgs(input)
	if err != nil {
		sh.io.ErrPrintln("error:", err)
		return false
	}

	if len(args) == 0 {
		return false
	}

	name := strings.ToLower(args[0])
	args = args[1:]

	o := sh.io.sub()
	defer o.Finish()

	err = sh.dispatch(ctx, o, name, args)

	switch {
	case errors.Is(err, errQuit):
		o.Println("Bye!")
		return true
	case err != nil:
		o.ErrPrintln("error:", err)
	}

	return false
}

var errQuit = errors.New("quit")

func (sh *shell) dispatch(ctx context.Context, o *IO, name string, args []string) error {
	switch name {
	case "quit", "exit", "q":
		return errQuit

	case "help", "?":
		sh.printHelp(o)

	case "ls", "list":
		return sh.list(o, args)

	case "search", "/":
		if len(args) == 0 {
			sh.app.ClearSearch()
			return nil
		}

		sh.app.SearchInput(strings.Join(args, " "))

	case "esc":
		sh.app.ClearSearch()

	case "filter":
		return sh.filter(args)

	case "sort":
		if len(args) != 1 {
			return errors.New("usage: sort dueDate|priority")
		}

		return sh.app.SetSortKey(args[0])

	case "order":
		if len(args) == 0 {
			o.Println("order:", sh.app.ToggleSortOrder())
			return nil
		}

		return sh.app.SetSortOrder(args[0])

	case "view":
		sh.app.FlushSearch()

		v := sh.app.View()
		o.Printf("status=%s priority=%s search=%q sort=%s order=%s\n", v.Status, v.Priority, v.Search, v.SortKey, v.SortOrder)

	default:
		cmd := sh.command(name)
		if cmd == nil {
			return fmt.Errorf("unknown command: %s (type 'help' for commands)", name)
		}

		cmd.Run(ctx, o, args)
	}

	return nil
}

// list prints the session's view. Flags change the session's view settings
// the same way filter, sort and order do.
func (sh *shell) list(o *IO, args []string) error {
	cmd := LsCmd(sh.sess)
	cmd.Flags.SetOutput(io.Discard)

	err := cmd.Flags.Parse(args)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			cmd.PrintHelp(o)
			return nil
		}

		return err
	}

	if cmd.Flags.NArg() > 0 {
		return fmt.Errorf("%w: %s", errUnexpectedArg, cmd.Flags.Arg(0))
	}

	format, _ := cmd.Flags.GetString("format")

	err = validateFormat(format)
	if err != nil {
		return err
	}

	sh.app.FlushSearch()

	err = applyListFlags(sh.app, cmd.Flags, true)
	if err != nil {
		return err
	}

	return renderView(o, sh.app.ProjectedView(), sh.app, format)
}

// command returns a fresh instance of a one-shot command usable inside the
// shell. Fresh instances keep flag values from leaking between lines.
func (sh *shell) command(name string) *Command {
	for _, cmd := range []*Command{
		AddCmd(sh.sess),
		EditCmd(sh.sess),
		ToggleCmd(sh.sess),
		ShowCmd(sh.sess),
		RmCmd(sh.sess),
		ClearCmd(sh.sess),
		StatsCmd(sh.sess),
	} {
		if cmd.Matches(name) {
			return cmd
		}
	}

	return nil
}

func (sh *shell) filter(args []string) error {
	if len(args) != 2 {
		return errors.New("usage: filter status all|active|completed, filter priority all|low|medium|high")
	}

	switch args[0] {
	case "status":
		return sh.app.SetFilterStatus(args[1])
	case "priority":
		return sh.app.SetFilterPriority(args[1])
	default:
		return fmt.Errorf("unknown filter: %s", args[0])
	}
}

var shellCommands = map[string]string{
	"add <title> [flags]":        "Add a task",
	"edit <id> [flags]":          "Change fields of a task",
	"toggle <id>":                "Mark a task complete or active again",
	"show <id>":                  "Show task details",
	"rm <id> [-y]":               "Delete a task",
	"clear [-y]":                 "Delete all tasks",
	"ls [flags]":                 "List tasks; flags change the session's view",
	"search [text]":              "Filter by text (no text clears)",
	"esc":                        "Clear the search",
	"filter status|priority <v>": "Set a filter",
	"sort dueDate|priority":      "Set the sort key",
	"order [asc|desc]":           "Set or flip the sort order",
	"view":                       "Show the current filters",
	"stats":                      "Show task statistics",
	"quit":                       "Leave the shell",
}

func (sh *shell) printHelp(o *IO) {
	usages := make([]string, 0, len(shellCommands))
	for usage := range shellCommands {
		usages = append(usages, usage)
	}

	sort.Strings(usages)

	o.Println("Commands:")

	for _, usage := range usages {
		o.Printf("  %-28s %s\n", usage, shellCommands[usage])
	}
}

// completer provides tab completion for command names.
func (sh *shell) completer(line string) []string {
	var out []string

	for usage := range shellCommands {
		name, _, _ := strings.Cut(usage, " ")
		if strings.HasPrefix(name, strings.ToLower(line)) {
			out = append(out, name)
		}
	}

	sort.Strings(out)

	return out
}

// splitArgs splits a line on whitespace, keeping double or single quoted
// sections together.
func splitArgs(line string) ([]string, error) {
	var (
		args    []string
		cur     strings.Builder
		quote   rune
		inToken bool
	)

	for _, r := range line {
		switch {
		case quote != 0:
			if r == quote {
				quote = 0
				continue
			}

			cur.WriteRune(r)
		case r == '"' || r == '\'':
			quote = r
			inToken = true
		case r == ' ' || r == '\t':
			if inToken {
				args = append(args, cur.String())
				cur.Reset()

				inToken = false
			}
		default:
			cur.WriteRune(r)

			inToken = true
		}
	}

	if quote != 0 {
		return nil, errUnterminatedQuote
	}

	if inToken {
		args = append(args, cur.String())
	}

	return args, nil
}
