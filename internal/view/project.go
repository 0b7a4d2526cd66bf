package view

import (
	"cmp"
	"slices"
	"strings"

	"github.com/calvinalkan/todo/internal/task"
)

// Project returns the tasks that pass the filters of state, ordered for
// display. records is not modified.
//
// Incomplete tasks always come before completed ones. Within each group
// tasks are ordered by the sort key in the sort order; ties keep input order.
func Project(records []task.Task, state State) []task.Task {
	out := make([]task.Task, 0, len(records))

	for _, t := range records {
		if matches(t, state) {
			out = append(out, t)
		}
	}

	slices.SortStableFunc(out, func(a, b task.Task) int {
		if a.Completed != b.Completed {
			if a.Completed {
				return 1
			}

			return -1
		}

		c := compareKey(a, b, state.SortKey)
		if state.SortOrder == Descending {
			return -c
		}

		return c
	})

	return out
}

func matches(t task.Task, state State) bool {
	switch state.Status {
	case StatusActive:
		if t.Completed {
			return false
		}
	case StatusCompleted:
		if !t.Completed {
			return false
		}
	}

	if state.Priority != "" && state.Priority != PriorityAll && t.Priority != state.Priority {
		return false
	}

	if state.Search == "" {
		return true
	}

	return strings.Contains(strings.ToLower(t.Title), state.Search) ||
		strings.Contains(strings.ToLower(t.Description), state.Search)
}

func compareKey(a, b task.Task, key SortKey) int {
	if key == SortByPriority {
		return cmp.Compare(a.Priority.Rank(), b.Priority.Rank())
	}

	return compareDates(a.DueDate, b.DueDate)
}

// compareDates orders by calendar date. An unparseable date is lower than
// any valid one; two unparseable dates are equal.
func compareDates(a, b task.Date) int {
	ta, okA := a.Time()
	tb, okB := b.Time()

	switch {
	case !okA && !okB:
		return 0
	case !okA:
		return -1
	case !okB:
		return 1
	default:
		return ta.Compare(tb)
	}
}
