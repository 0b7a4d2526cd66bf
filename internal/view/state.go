// Package view derives the ordered list of tasks to display from the full
// task list and the current filter and sort settings.
package view

import (
	"errors"
	"fmt"
	"strings"

	"github.com/calvinalkan/todo/internal/task"
)

// ErrInvalidFilter is returned by the [State] setters for unknown values.
var ErrInvalidFilter = errors.New("invalid view setting")

// Status selects tasks by completion.
type Status string

// Status values.
const (
	StatusAll       Status = "all"
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
)

// PriorityAll disables the priority filter.
const PriorityAll task.Priority = "all"

// SortKey is the field tasks are ordered by within each completion group.
type SortKey string

// SortKey values.
const (
	SortByDueDate  SortKey = "dueDate"
	SortByPriority SortKey = "priority"
)

// SortOrder is the direction of the sort key.
type SortOrder string

// SortOrder values.
const (
	Ascending  SortOrder = "asc"
	Descending SortOrder = "desc"
)

// State is the filter and sort configuration of a session.
// The zero value is not valid; use [DefaultState].
type State struct {
	Status    Status
	Priority  task.Priority
	Search    string
	SortKey   SortKey
	SortOrder SortOrder
}

// DefaultState shows all tasks by ascending due date.
func DefaultState() State {
	return State{
		Status:    StatusAll,
		Priority:  PriorityAll,
		SortKey:   SortByDueDate,
		SortOrder: Ascending,
	}
}

// SetStatus sets the completion filter.
func (s *State) SetStatus(status string) error {
	switch st := Status(strings.ToLower(strings.TrimSpace(status))); st {
	case StatusAll, StatusActive, StatusCompleted:
		s.Status = st

		return nil
	default:
		return fmt.Errorf("%w: status %q (want all, active or completed)", ErrInvalidFilter, status)
	}
}

// SetPriority sets the priority filter; "all" disables it.
func (s *State) SetPriority(priority string) error {
	p := task.Priority(strings.ToLower(strings.TrimSpace(priority)))
	if p != PriorityAll && !p.Valid() {
		return fmt.Errorf("%w: priority %q (want all, low, medium or high)", ErrInvalidFilter, priority)
	}

	s.Priority = p

	return nil
}

// SetSearch sets the search text. It is lowercased here so projection can
// compare without folding it again.
func (s *State) SetSearch(text string) {
	s.Search = strings.ToLower(text)
}

// ClearSearch removes the search filter.
func (s *State) ClearSearch() {
	s.Search = ""
}

// SetSortKey sets the secondary sort key.
func (s *State) SetSortKey(key string) error {
	switch k := SortKey(strings.TrimSpace(key)); k {
	case SortByDueDate, SortByPriority:
		s.SortKey = k

		return nil
	default:
		return fmt.Errorf("%w: sort key %q (want dueDate or priority)", ErrInvalidFilter, key)
	}
}

// SetSortOrder sets the direction of the secondary sort key.
func (s *State) SetSortOrder(order string) error {
	switch o := SortOrder(strings.ToLower(strings.TrimSpace(order))); o {
	case Ascending, Descending:
		s.SortOrder = o

		return nil
	default:
		return fmt.Errorf("%w: sort order %q (want asc or desc)", ErrInvalidFilter, order)
	}
}

// ToggleSortOrder flips between ascending and descending.
func (s *State) ToggleSortOrder() {
	if s.SortOrder == Descending {
		s.SortOrder = Ascending
	} else {
		s.SortOrder = Descending
	}
}
