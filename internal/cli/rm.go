package cli

import (
	"context"
	"fmt"

	flag "github.com/spf13/pflag"
)

// RmCmd returns the rm command.
func RmCmd(sess *session) *Command {
	fs := flag.NewFlagSet("rm", flag.ContinueOnError)
	fs.BoolP("yes", "y", false, "Do not ask for confirmation")

	return &Command{
		Flags:   fs,
		Usage:   "rm <id> [-y]",
		Short:   "Delete a task",
		Aliases: []string{"delete"},
		Long: `Delete a task after confirmation.

Deleting a task that does not exist succeeds without output.`,
		Exec: func(ctx context.Context, io *IO, args []string) error {
			return execRm(ctx, io, sess, fs, args)
		},
	}
}

func execRm(ctx context.Context, io *IO, sess *session, fs *flag.FlagSet, args []string) error {
	id, err := parseID(args)
	if err != nil {
		return err
	}

	a, err := sess.App(ctx)
	if err != nil {
		return err
	}

	t, ok := a.Task(id)
	if !ok {
		return nil
	}

	yes, _ := fs.GetBool("yes")
	if !yes {
		confirmed, err := io.Confirm(fmt.Sprintf("Delete task %q?", t.Title))
		if err != nil {
			return err
		}

		if !confirmed {
			return errAborted
		}
	}

	return report(io, a, a.DeleteTask(ctx, id))
}

// ClearCmd returns the clear command.
func ClearCmd(sess *session) *Command {
	fs := flag.NewFlagSet("clear", flag.ContinueOnError)
	fs.BoolP("yes", "y", false, "Do not ask for confirmation")

	return &Command{
		Flags: fs,
		Usage: "clear [-y]",
		Short: "Delete all tasks",
		Long:  "Delete every task after confirmation.",
		Exec: func(ctx context.Context, io *IO, _ []string) error {
			return execClear(ctx, io, sess, fs)
		},
	}
}

func execClear(ctx context.Context, io *IO, sess *session, fs *flag.FlagSet) error {
	a, err := sess.App(ctx)
	if err != nil {
		return err
	}

	yes, _ := fs.GetBool("yes")
	if !yes {
		confirmed, err := io.Confirm(fmt.Sprintf("Delete all %d tasks?", a.Stats().Total))
		if err != nil {
			return err
		}

		if !confirmed {
			return errAborted
		}
	}

	return report(io, a, a.ClearAll(ctx))
}
