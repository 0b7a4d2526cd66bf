package cli

import (
	"context"

	"github.com/calvinalkan/todo/internal/app"
	"github.com/calvinalkan/todo/internal/task"
	"github.com/calvinalkan/todo/internal/view"

	flag "github.com/spf13/pflag"
)

// LsCmd returns the ls command.
func LsCmd(sess *session) *Command {
	fs := flag.NewFlagSet("ls", flag.ContinueOnError)
	fs.String("status", string(view.StatusAll), "Filter by status (all|active|completed)")
	fs.String("priority", string(view.PriorityAll), "Filter by priority (all|low|medium|high)")
	fs.StringP("search", "s", "", "Only tasks whose title or description contains text")
	fs.String("sort", string(view.SortByDueDate), "Sort by dueDate or priority")
	fs.Bool("desc", false, "Sort descending")
	fs.String("format", formatText, "Output format: text|json|yaml")

	return &Command{
		Flags:   fs,
		Usage:   "ls [flags]",
		Short:   "List tasks",
		Aliases: []string{"list"},
		Long: `List tasks matching the filters.

Incomplete tasks are listed before completed ones; the sort key orders
tasks within each group. Overdue tasks are marked.`,
		Exec: func(ctx context.Context, io *IO, _ []string) error {
			return execLs(ctx, io, sess, fs)
		},
	}
}

func execLs(ctx context.Context, io *IO, sess *session, fs *flag.FlagSet) error {
	format, _ := fs.GetString("format")

	err := validateFormat(format)
	if err != nil {
		return err
	}

	a, err := sess.App(ctx)
	if err != nil {
		return err
	}

	err = applyListFlags(a, fs, false)
	if err != nil {
		return err
	}

	return renderView(io, a.ProjectedView(), a, format)
}

// applyListFlags sets the view from the ls flags. With changedOnly, flags
// left at their defaults keep the current setting.
func applyListFlags(a *app.App, fs *flag.FlagSet, changedOnly bool) error {
	use := func(name string) bool { return !changedOnly || fs.Changed(name) }

	if use("status") {
		status, _ := fs.GetString("status")

		err := a.SetFilterStatus(status)
		if err != nil {
			return err
		}
	}

	if use("priority") {
		priority, _ := fs.GetString("priority")

		err := a.SetFilterPriority(priority)
		if err != nil {
			return err
		}
	}

	if use("sort") {
		sortKey, _ := fs.GetString("sort")

		err := a.SetSortKey(sortKey)
		if err != nil {
			return err
		}
	}

	if use("desc") {
		desc, _ := fs.GetBool("desc")

		order := string(view.Ascending)
		if desc {
			order = string(view.Descending)
		}

		err := a.SetSortOrder(order)
		if err != nil {
			return err
		}
	}

	if use("search") {
		search, _ := fs.GetString("search")
		a.SetSearch(search)
	}

	return nil
}

func renderView(io *IO, tasks []task.Task, a *app.App, format string) error {
	now := a.Now()

	if format == formatText {
		printList(io, tasks, now)
		return nil
	}

	records := make([]taskRecord, 0, len(tasks))
	for _, t := range tasks {
		records = append(records, toRecord(t, now))
	}

	return writeStructured(io, format, records)
}
