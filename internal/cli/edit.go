package cli

import (
	"context"
	"errors"

	"github.com/calvinalkan/todo/internal/task"

	flag "github.com/spf13/pflag"
)

var errNothingToChange = errors.New("nothing to change (set at least one flag)")

// EditCmd returns the edit command.
func EditCmd(sess *session) *Command {
	fs := flag.NewFlagSet("edit", flag.ContinueOnError)
	fs.StringP("title", "t", "", "New title")
	fs.StringP("description", "d", "", "New description (empty clears it)")
	fs.String("due", "", "New due date YYYY-MM-DD")
	fs.StringP("priority", "p", "", "New priority: low|medium|high")

	return &Command{
		Flags: fs,
		Usage: "edit <id> [flags]",
		Short: "Change fields of a task",
		Long: `Change fields of an existing task.

Only the flags given are changed; everything else is kept.`,
		Exec: func(ctx context.Context, io *IO, args []string) error {
			return execEdit(ctx, io, sess, fs, args)
		},
	}
}

func execEdit(ctx context.Context, io *IO, sess *session, fs *flag.FlagSet, args []string) error {
	id, err := parseID(args)
	if err != nil {
		return err
	}

	patch, err := patchFromFlags(fs)
	if err != nil {
		return err
	}

	if patch.IsEmpty() {
		return errNothingToChange
	}

	a, err := sess.App(ctx)
	if err != nil {
		return err
	}

	t, err := a.UpdateTask(ctx, id, patch)

	err = report(io, a, err)
	if err != nil {
		return err
	}

	printTask(io, t, a.Now())

	return nil
}

func patchFromFlags(fs *flag.FlagSet) (task.Patch, error) {
	var patch task.Patch

	if fs.Changed("title") {
		v, _ := fs.GetString("title")
		patch.Title = &v
	}

	if fs.Changed("description") {
		v, _ := fs.GetString("description")
		patch.Description = &v
	}

	if fs.Changed("due") {
		v, _ := fs.GetString("due")
		due := task.Date(v)
		patch.DueDate = &due
	}

	if fs.Changed("priority") {
		v, _ := fs.GetString("priority")

		p, err := task.ParsePriority(v)
		if err != nil {
			return task.Patch{}, err
		}

		patch.Priority = &p
	}

	return patch, nil
}
