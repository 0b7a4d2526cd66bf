package cli

import (
	"context"

	flag "github.com/spf13/pflag"
)

// ToggleCmd returns the toggle command.
func ToggleCmd(sess *session) *Command {
	return &Command{
		Flags:   flag.NewFlagSet("toggle", flag.ContinueOnError),
		Usage:   "toggle <id>",
		Short:   "Mark a task complete or active again",
		Aliases: []string{"done"},
		Exec: func(ctx context.Context, io *IO, args []string) error {
			return execToggle(ctx, io, sess, args)
		},
	}
}

func execToggle(ctx context.Context, io *IO, sess *session, args []string) error {
	id, err := parseID(args)
	if err != nil {
		return err
	}

	a, err := sess.App(ctx)
	if err != nil {
		return err
	}

	t, completed, err := a.ToggleTask(ctx, id)

	err = report(io, a, err)
	if err != nil {
		return err
	}

	if !completed {
		io.Println(taskLine(t, a.Now()))
	}

	return nil
}
