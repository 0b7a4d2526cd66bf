// Package stats computes aggregate numbers over the full task list.
package stats

import (
	"math"
	"time"

	"github.com/calvinalkan/todo/internal/task"
)

// Stats summarizes a task list.
type Stats struct {
	Total          int             `json:"total" yaml:"total"`
	Completed      int             `json:"completed" yaml:"completed"`
	Active         int             `json:"active" yaml:"active"`
	Overdue        int             `json:"overdue" yaml:"overdue"`
	CompletionRate int             `json:"completionRate" yaml:"completionRate"`
	ByPriority     []PriorityShare `json:"byPriority" yaml:"byPriority"`
}

// PriorityShare is the number and percentage of tasks with one priority.
type PriorityShare struct {
	Priority   task.Priority `json:"priority" yaml:"priority"`
	Count      int           `json:"count" yaml:"count"`
	Percentage int           `json:"percentage" yaml:"percentage"`
}

// Compute aggregates records as of now. Overdue compares dates only, against
// the start of now's day in now's location.
func Compute(records []task.Task, now time.Time) Stats {
	var s Stats

	s.Total = len(records)
	counts := make(map[task.Priority]int, 3)

	for _, t := range records {
		if t.Completed {
			s.Completed++
		}

		if IsOverdue(t, now) {
			s.Overdue++
		}

		counts[t.Priority]++
	}

	s.Active = s.Total - s.Completed
	s.CompletionRate = percent(s.Completed, s.Total)

	for _, p := range task.Priorities() {
		s.ByPriority = append(s.ByPriority, PriorityShare{
			Priority:   p,
			Count:      counts[p],
			Percentage: percent(counts[p], s.Total),
		})
	}

	return s
}

// IsOverdue reports whether t is incomplete and due before the day of now.
// Tasks with an unparseable due date are never overdue.
func IsOverdue(t task.Task, now time.Time) bool {
	if t.Completed {
		return false
	}

	due, ok := t.DueDate.Time()
	if !ok {
		return false
	}

	y, m, d := now.Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, now.Location())

	dy, dm, dd := due.Date()

	return time.Date(dy, dm, dd, 0, 0, 0, 0, now.Location()).Before(today)
}

func percent(n, total int) int {
	if total == 0 {
		return 0
	}

	return int(math.Round(float64(n) / float64(total) * 100))
}
