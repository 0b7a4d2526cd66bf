package cli

import (
	"context"
	"fmt"

	"github.com/calvinalkan/todo/internal/task"

	flag "github.com/spf13/pflag"
)

// ShowCmd returns the show command.
func ShowCmd(sess *session) *Command {
	fs := flag.NewFlagSet("show", flag.ContinueOnError)
	fs.String("format", formatText, "Output format: text|json|yaml")

	return &Command{
		Flags: fs,
		Usage: "show <id>",
		Short: "Show task details",
		Long:  "Display every field of a task.",
		Exec: func(ctx context.Context, io *IO, args []string) error {
			return execShow(ctx, io, sess, fs, args)
		},
	}
}

func execShow(ctx context.Context, io *IO, sess *session, fs *flag.FlagSet, args []string) error {
	format, _ := fs.GetString("format")

	err := validateFormat(format)
	if err != nil {
		return err
	}

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
		return fmt.Errorf("%w: %d", task.ErrNotFound, id)
	}

	if format != formatText {
		return writeStructured(io, format, toRecord(t, a.Now()))
	}

	printTask(io, t, a.Now())

	return nil
}
