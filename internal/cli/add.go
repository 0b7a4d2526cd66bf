package cli

import (
	"context"
	"strconv"
	"strings"

	"github.com/calvinalkan/todo/internal/task"

	flag "github.com/spf13/pflag"
)

// AddCmd returns the add command.
func AddCmd(sess *session) *Command {
	fs := flag.NewFlagSet("add", flag.ContinueOnError)
	fs.StringP("description", "d", "", "Description text")
	fs.String("due", "", "Due date YYYY-MM-DD (default today)")
	fs.StringP("priority", "p", string(task.DefaultPriority), "Priority: low|medium|high")

	return &Command{
		Flags: fs,
		Usage: "add <title> [flags]",
		Short: "Add a task, prints ID",
		Long: `Add a new task. Prints the task ID on success.

All remaining arguments form the title.`,
		Exec: func(ctx context.Context, io *IO, args []string) error {
			return execAdd(ctx, io, sess, fs, args)
		},
	}
}

func execAdd(ctx context.Context, io *IO, sess *session, fs *flag.FlagSet, args []string) error {
	description, _ := fs.GetString("description")
	due, _ := fs.GetString("due")
	rawPriority, _ := fs.GetString("priority")

	priority, err := task.ParsePriority(rawPriority)
	if err != nil {
		return err
	}

	a, err := sess.App(ctx)
	if err != nil {
		return err
	}

	t, err := a.AddTask(ctx, task.Fields{
		Title:       strings.Join(args, " "),
		Description: description,
		DueDate:     task.Date(due),
		Priority:    priority,
	})

	err = report(io, a, err)
	if err != nil {
		return err
	}

	io.Println(strconv.FormatInt(t.ID, 10))

	return nil
}
