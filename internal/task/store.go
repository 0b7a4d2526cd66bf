package task

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"time"

	"go.uber.org/zap"

	"github.com/calvinalkan/todo/internal/kv"
)

// DefaultKey is the key the task list is stored under.
const DefaultKey = "tasks"

// Backend is the key-value collaborator the list is persisted to.
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}

// Store owns the task list for one session.
//
// Every mutation is applied in memory first and then the whole list is
// written to the backend. A failed write is reported as a [*PersistError]
// but the in-memory change stays.
//
// Store is not safe for concurrent use; callers serialize access.
type Store struct {
	backend Backend
	key     string
	now     func() time.Time
	log     *zap.Logger

	tasks []Task
	ids   idGenerator
}

// StoreOption configures a [Store].
type StoreOption func(*Store)

// WithKey sets the backend key. Defaults to [DefaultKey].
func WithKey(key string) StoreOption {
	return func(s *Store) { s.key = key }
}

// WithClock sets the time source used for ids and the default due date.
func WithClock(now func() time.Time) StoreOption {
	return func(s *Store) { s.now = now }
}

// WithLogger sets the logger. Defaults to a no-op logger.
func WithLogger(logger *zap.Logger) StoreOption {
	return func(s *Store) { s.log = logger }
}

// NewStore returns an empty store backed by backend. Call [Store.Load] to
// read the persisted list.
func NewStore(backend Backend, opts ...StoreOption) *Store {
	if backend == nil {
		panic("task: backend is nil")
	}

	s := &Store{
		backend: backend,
		key:     DefaultKey,
		now:     time.Now,
		log:     zap.NewNop(),
	}

	for _, opt := range opts {
		opt(s)
	}

	s.ids.now = s.now

	return s
}

// Key returns the backend key the list is stored under.
func (s *Store) Key() string {
	return s.key
}

// Load replaces the in-memory list with the persisted one.
//
// A missing, unreadable or corrupt entry yields an empty list; Load never
// fails. Records with a non-positive or repeated id get fresh ids so ids
// stay unique and addressable.
func (s *Store) Load(ctx context.Context) {
	s.tasks = nil

	data, err := s.backend.Get(ctx, s.key)
	if err != nil {
		if !errors.Is(err, kv.ErrNotFound) {
			s.log.Warn("reading task list failed, starting empty", zap.String("key", s.key), zap.Error(err))
		}

		return
	}

	var loaded []Task

	err = json.Unmarshal(data, &loaded)
	if err != nil {
		s.log.Debug("discarding unparseable task list", zap.String("key", s.key), zap.Error(err))

		return
	}

	var maxID int64

	for _, t := range loaded {
		maxID = max(maxID, t.ID)
		s.ids.observe(t.ID)
	}

	// Replacement ids count up from the largest loaded id, so an unchanged
	// list gets the same ids on every load.
	seen := make(map[int64]bool, len(loaded))

	for i := range loaded {
		if loaded[i].ID <= 0 || seen[loaded[i].ID] {
			old := loaded[i].ID
			maxID++
			loaded[i].ID = maxID
			s.ids.observe(maxID)
			s.log.Debug("reassigned task id", zap.Int64("old", old), zap.Int64("new", maxID))
		}

		seen[loaded[i].ID] = true
	}

	s.tasks = loaded
}

// All returns a copy of the list in insertion order.
func (s *Store) All() []Task {
	out := make([]Task, len(s.tasks))
	for i, t := range s.tasks {
		out[i] = t.clone()
	}

	return out
}

// Len returns the number of tasks.
func (s *Store) Len() int {
	return len(s.tasks)
}

// Get returns a copy of the task with id.
func (s *Store) Get(id int64) (Task, bool) {
	idx := s.index(id)
	if idx < 0 {
		return Task{}, false
	}

	return s.tasks[idx].clone(), true
}

// Add validates fields, appends a new incomplete task and persists.
func (s *Store) Add(ctx context.Context, fields Fields) (Task, error) {
	normalized, err := fields.normalize(DateOf(s.now()))
	if err != nil {
		return Task{}, err
	}

	t := Task{
		ID:          s.ids.next(),
		Title:       normalized.Title,
		Description: normalized.Description,
		DueDate:     normalized.DueDate,
		Priority:    normalized.Priority,
	}

	s.tasks = append(s.tasks, t)

	return t.clone(), s.persist(ctx)
}

// Update merges patch into the task with id and persists.
// Returns an error matching [ErrNotFound] or [ErrValidation] without
// changing anything.
func (s *Store) Update(ctx context.Context, id int64, patch Patch) (Task, error) {
	idx := s.index(id)
	if idx < 0 {
		return Task{}, notFound(id)
	}

	updated, err := patch.apply(s.tasks[idx])
	if err != nil {
		return Task{}, err
	}

	s.tasks[idx] = updated

	return updated.clone(), s.persist(ctx)
}

// Toggle flips the completion flag of the task with id and persists.
// The returned task carries the new flag; completed reports whether the task
// went from incomplete to complete.
func (s *Store) Toggle(ctx context.Context, id int64) (t Task, completed bool, err error) {
	idx := s.index(id)
	if idx < 0 {
		return Task{}, false, notFound(id)
	}

	wasCompleted := s.tasks[idx].Completed
	s.tasks[idx].Completed = !wasCompleted

	return s.tasks[idx].clone(), !wasCompleted, s.persist(ctx)
}

// Remove deletes the task with id. Removing a missing id only persists.
func (s *Store) Remove(ctx context.Context, id int64) error {
	s.tasks = slices.DeleteFunc(s.tasks, func(t Task) bool { return t.ID == id })

	return s.persist(ctx)
}

// Clear removes every task and persists.
func (s *Store) Clear(ctx context.Context) error {
	s.tasks = nil

	return s.persist(ctx)
}

func (s *Store) index(id int64) int {
	return slices.IndexFunc(s.tasks, func(t Task) bool { return t.ID == id })
}

func (s *Store) persist(ctx context.Context) error {
	list := s.tasks
	if list == nil {
		list = []Task{}
	}

	data, err := json.Marshal(list)
	if err != nil {
		s.log.Warn("encoding task list failed", zap.String("key", s.key), zap.Error(err))

		return &PersistError{Key: s.key, Err: fmt.Errorf("encode: %w", err)}
	}

	err = s.backend.Set(ctx, s.key, data)
	if err != nil {
		s.log.Warn("saving task list failed", zap.String("key", s.key), zap.Error(err))

		return &PersistError{Key: s.key, Err: err}
	}

	return nil
}
