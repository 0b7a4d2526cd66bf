package cli

import (
	"context"

	flag "github.com/spf13/pflag"
)

// StatsCmd returns the stats command.
func StatsCmd(sess *session) *Command {
	fs := flag.NewFlagSet("stats", flag.ContinueOnError)
	fs.String("format", formatText, "Output format: text|json|yaml")

	return &Command{
		Flags: fs,
		Usage: "stats [--format]",
		Short: "Show task statistics",
		Long:  "Show counts, completion rate and priority distribution over all tasks, ignoring filters.",
		Exec: func(ctx context.Context, io *IO, _ []string) error {
			format, _ := fs.GetString("format")

			err := validateFormat(format)
			if err != nil {
				return err
			}

			a, err := sess.App(ctx)
			if err != nil {
				return err
			}

			if format != formatText {
				return writeStructured(io, format, a.Stats())
			}

			printStats(io, a.Stats())

			return nil
		},
	}
}
