package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/calvinalkan/todo/internal/app"
	"github.com/calvinalkan/todo/internal/notify"
	"github.com/calvinalkan/todo/internal/stats"
	"github.com/calvinalkan/todo/internal/task"
)

var (
	errIDRequired    = errors.New("task id is required")
	errInvalidID     = errors.New("invalid task id")
	errInvalidFormat = errors.New("invalid format (must be text, json or yaml)")
	errAborted       = errors.New("aborted")
)

// emptyListText is printed by ls when nothing matches.
const emptyListText = "No tasks here."

const (
	formatText = "text"
	formatJSON = "json"
	formatYAML = "yaml"
)

func validateFormat(format string) error {
	switch format {
	case formatText, formatJSON, formatYAML:
		return nil
	default:
		return fmt.Errorf("%w: %s", errInvalidFormat, format)
	}
}

func parseID(args []string) (int64, error) {
	if len(args) == 0 {
		return 0, errIDRequired
	}

	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s", errInvalidID, args[0])
	}

	return id, nil
}

// report prints queued notifications and turns a persistence failure into a
// warning. The in-memory change of a failed save is kept, so the command
// itself still succeeds.
func report(o *IO, a *app.App, err error) error {
	for _, n := range a.Notifications() {
		if n.ID == notify.MsgSaveFailed {
			o.Warn(n.Message, "check the data directory and retry")
			continue
		}

		o.Println(n.Message)
	}

	if errors.Is(err, task.ErrPersist) {
		return nil
	}

	return err
}

// taskRecord is the structured output shape of a task.
type taskRecord struct {
	ID          int64         `json:"id" yaml:"id"`
	Title       string        `json:"title" yaml:"title"`
	Description string        `json:"description" yaml:"description"`
	DueDate     task.Date     `json:"dueDate" yaml:"dueDate"`
	Priority    task.Priority `json:"priority" yaml:"priority"`
	Completed   bool          `json:"completed" yaml:"completed"`
	Overdue     bool          `json:"overdue" yaml:"overdue"`
}

func toRecord(t task.Task, now time.Time) taskRecord {
	return taskRecord{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		DueDate:     t.DueDate,
		Priority:    t.Priority,
		Completed:   t.Completed,
		Overdue:     stats.IsOverdue(t, now),
	}
}

// writeStructured encodes v as JSON or YAML to stdout.
func writeStructured(o *IO, format string, v any) error {
	switch format {
	case formatJSON:
		enc := json.NewEncoder(o.Writer())
		enc.SetIndent("", "  ")

		err := enc.Encode(v)
		if err != nil {
			return fmt.Errorf("encoding json: %w", err)
		}
	case formatYAML:
		enc := yaml.NewEncoder(o.Writer())
		enc.SetIndent(2)

		err := enc.Encode(v)
		if err != nil {
			return fmt.Errorf("encoding yaml: %w", err)
		}

		return enc.Close()
	default:
		return fmt.Errorf("%w: %s", errInvalidFormat, format)
	}

	return nil
}

// taskLine renders one list row:
//
//	[ ] 1718000000000  2024-06-01  high    Buy milk (overdue)
func taskLine(t task.Task, now time.Time) string {
	box := "[ ]"
	if t.Completed {
		box = "[x]"
	}

	line := fmt.Sprintf("%s %d  %-10s  %-6s  %s", box, t.ID, t.DueDate, t.Priority, t.Title)
	if stats.IsOverdue(t, now) {
		line += " (overdue)"
	}

	return line
}

func printList(o *IO, tasks []task.Task, now time.Time) {
	if len(tasks) == 0 {
		o.Println(emptyListText)
		return
	}

	for _, t := range tasks {
		o.Println(taskLine(t, now))

		if t.Description != "" {
			for _, line := range strings.Split(t.Description, "\n") {
				o.Println("    " + line)
			}
		}
	}
}

func printTask(o *IO, t task.Task, now time.Time) {
	o.Println("id:          " + strconv.FormatInt(t.ID, 10))
	o.Println("title:       " + t.Title)
	o.Println("description: " + t.Description)
	o.Println("due:         " + string(t.DueDate))
	o.Println("priority:    " + string(t.Priority))
	o.Println("completed:   " + strconv.FormatBool(t.Completed))

	if stats.IsOverdue(t, now) {
		o.Println("overdue:     true")
	}
}

func printStats(o *IO, s stats.Stats) {
	o.Printf("total:           %d\n", s.Total)
	o.Printf("completed:       %d\n", s.Completed)
	o.Printf("active:          %d\n", s.Active)
	o.Printf("overdue:         %d\n", s.Overdue)
	o.Printf("completion rate: %d%%\n", s.CompletionRate)
	o.Println("by priority:")

	for _, share := range s.ByPriority {
		o.Printf("  %-6s %d (%d%%)\n", share.Priority, share.Count, share.Percentage)
	}
}
