// Package task holds the task record, its validation rules, and the Store that
// owns the authoritative task list and mirrors it into a key-value backend.
package task

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Task is a single to-do item.
//
// Extra holds JSON fields this version does not know about. They are kept so
// that a record written by a newer client survives a round trip through this
// one.
type Task struct {
	ID          int64
	Title       string
	Description string
	DueDate     Date
	Priority    Priority
	Completed   bool

	Extra map[string]json.RawMessage
}

// Priority is the urgency of a task.
type Priority string

// Priority values.
const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"

	DefaultPriority = PriorityMedium
)

// Priorities returns all priorities, most urgent first.
func Priorities() []Priority {
	return []Priority{PriorityHigh, PriorityMedium, PriorityLow}
}

// Rank orders priorities: high=3, medium=2, low=1. Unknown values rank 0.
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	default:
		return 0
	}
}

// Valid reports whether p is one of the known priorities.
func (p Priority) Valid() bool {
	return p.Rank() > 0
}

// ParsePriority parses a user supplied priority, ignoring case and
// surrounding whitespace.
func ParsePriority(s string) (Priority, error) {
	p := Priority(strings.ToLower(strings.TrimSpace(s)))
	if !p.Valid() {
		return "", &ValidationError{Field: "priority", Reason: fmt.Sprintf("must be low, medium or high, got %q", s)}
	}

	return p, nil
}

// dateLayout is the calendar date format used for storage and input.
const dateLayout = "2006-01-02"

// Date is a calendar date without a time component, stored as YYYY-MM-DD.
//
// A Date read from storage may be malformed; use [Date.Time] to find out.
type Date string

// DateOf returns the calendar date of t in t's location.
func DateOf(t time.Time) Date {
	return Date(t.Format(dateLayout))
}

// ParseDate parses and validates a YYYY-MM-DD date.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)

	_, err := time.ParseInLocation(dateLayout, s, time.Local)
	if err != nil {
		return "", &ValidationError{Field: "dueDate", Reason: fmt.Sprintf("must be a YYYY-MM-DD date, got %q", s)}
	}

	return Date(s), nil
}

// Time returns local midnight of the date. ok is false if the date does
// not parse.
func (d Date) Time() (time.Time, bool) {
	t, err := time.ParseInLocation(dateLayout, string(d), time.Local)
	if err != nil {
		return time.Time{}, false
	}

	return t, true
}

// Valid reports whether d is a well-formed calendar date.
func (d Date) Valid() bool {
	_, ok := d.Time()
	return ok
}

// Fields are the user editable values of a new task.
type Fields struct {
	Title       string
	Description string
	DueDate     Date
	Priority    Priority
}

// normalize trims text, applies defaults and validates.
// An empty due date becomes today; an empty priority becomes [DefaultPriority].
func (f Fields) normalize(today Date) (Fields, error) {
	f.Title = strings.TrimSpace(f.Title)
	f.Description = strings.TrimSpace(f.Description)

	if f.Title == "" {
		return Fields{}, &ValidationError{Field: "title", Reason: "must not be empty"}
	}

	if strings.TrimSpace(string(f.DueDate)) == "" {
		f.DueDate = today
	}

	due, err := ParseDate(string(f.DueDate))
	if err != nil {
		return Fields{}, err
	}

	f.DueDate = due

	if f.Priority == "" {
		f.Priority = DefaultPriority
	}

	if !f.Priority.Valid() {
		return Fields{}, &ValidationError{Field: "priority", Reason: fmt.Sprintf("must be low, medium or high, got %q", f.Priority)}
	}

	return f, nil
}

// Patch lists the fields to change on an existing task. Nil fields are left
// unchanged. The id is never patched.
type Patch struct {
	Title       *string
	Description *string
	DueDate     *Date
	Priority    *Priority
	Completed   *bool
}

// IsEmpty reports whether the patch changes nothing.
func (p Patch) IsEmpty() bool {
	return p.Title == nil && p.Description == nil && p.DueDate == nil && p.Priority == nil && p.Completed == nil
}

// apply returns a copy of t with the patch merged in, validated the same way
// as [Fields].
func (p Patch) apply(t Task) (Task, error) {
	if p.Title != nil {
		title := strings.TrimSpace(*p.Title)
		if title == "" {
			return Task{}, &ValidationError{Field: "title", Reason: "must not be empty"}
		}

		t.Title = title
	}

	if p.Description != nil {
		t.Description = strings.TrimSpace(*p.Description)
	}

	if p.DueDate != nil {
		due, err := ParseDate(string(*p.DueDate))
		if err != nil {
			return Task{}, err
		}

		t.DueDate = due
	}

	if p.Priority != nil {
		if !p.Priority.Valid() {
			return Task{}, &ValidationError{Field: "priority", Reason: fmt.Sprintf("must be low, medium or high, got %q", *p.Priority)}
		}

		t.Priority = *p.Priority
	}

	if p.Completed != nil {
		t.Completed = *p.Completed
	}

	return t, nil
}

// clone returns a deep copy so callers never share Extra with the store.
func (t Task) clone() Task {
	if t.Extra != nil {
		extra := make(map[string]json.RawMessage, len(t.Extra))
		for k, v := range t.Extra {
			extra[k] = append(json.RawMessage(nil), v...)
		}

		t.Extra = extra
	}

	return t
}

// wireTask is the persisted shape of a task.
type wireTask struct {
	ID          int64    `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	DueDate     Date     `json:"dueDate"`
	Priority    Priority `json:"priority"`
	Completed   bool     `json:"completed"`
}

var knownFields = []string{"id", "title", "description", "dueDate", "priority", "completed"}

// MarshalJSON writes the known fields followed by any preserved extra fields.
func (t Task) MarshalJSON() ([]byte, error) {
	known, err := json.Marshal(wireTask{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		DueDate:     t.DueDate,
		Priority:    t.Priority,
		Completed:   t.Completed,
	})
	if err != nil {
		return nil, err
	}

	extra := make(map[string]json.RawMessage, len(t.Extra))
	for k, v := range t.Extra {
		extra[k] = v
	}

	for _, k := range knownFields {
		delete(extra, k)
	}

	if len(extra) == 0 {
		return known, nil
	}

	rest, err := json.Marshal(extra)
	if err != nil {
		return nil, fmt.Errorf("task %d extra fields: %w", t.ID, err)
	}

	var buf bytes.Buffer

	buf.Write(known[:len(known)-1])
	buf.WriteByte(',')
	buf.Write(rest[1:])

	return buf.Bytes(), nil
}

// UnmarshalJSON reads the known fields and keeps everything else in Extra.
func (t *Task) UnmarshalJSON(data []byte) error {
	var w wireTask

	err := json.Unmarshal(data, &w)
	if err != nil {
		return err
	}

	var raw map[string]json.RawMessage

	err = json.Unmarshal(data, &raw)
	if err != nil {
		return err
	}

	for _, k := range knownFields {
		delete(raw, k)
	}

	if len(raw) == 0 {
		raw = nil
	}

	*t = Task{
		ID:          w.ID,
		Title:       w.Title,
		Description: w.Description,
		DueDate:     w.DueDate,
		Priority:    w.Priority,
		Completed:   w.Completed,
		Extra:       raw,
	}

	return nil
}
