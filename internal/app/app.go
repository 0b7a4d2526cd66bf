// Package app is the controller facing core: it combines the task store,
// the session's view settings, search debouncing and notifications behind
// one set of operations that a user interface calls.
package app

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/calvinalkan/todo/internal/debounce"
	"github.com/calvinalkan/todo/internal/notify"
	"github.com/calvinalkan/todo/internal/stats"
	"github.com/calvinalkan/todo/internal/task"
	"github.com/calvinalkan/todo/internal/view"
)

// App serializes every operation with a mutex, so the debounce timer and
// the controller never observe a half applied change.
type App struct {
	mu     sync.Mutex
	store  *task.Store
	state  view.State
	notes  *notify.Center
	now    func() time.Time
	search *debounce.Debouncer[searchInput]

	// searchGen is bumped by every search change. A debounced input only
	// applies if nothing changed the search after it was typed.
	searchGen uint64

	onSearch func([]task.Task)
}

type searchInput struct {
	text string
	gen  uint64
}

// Option configures an [App].
type Option func(*App)

// WithClock sets the time source for stats.
func WithClock(now func() time.Time) Option {
	return func(a *App) { a.now = now }
}

// WithSearchDelay sets the quiet period for [App.SearchInput].
func WithSearchDelay(d time.Duration) Option {
	return func(a *App) {
		a.search = debounce.New(d, a.applySearch)
	}
}

// OnSearchApplied registers fn to receive the new projection each time a
// debounced search takes effect. fn runs with the App lock held and must not
// call back into the App.
func OnSearchApplied(fn func([]task.Task)) Option {
	return func(a *App) { a.onSearch = fn }
}

// New returns an App over a loaded store.
func New(store *task.Store, notes *notify.Center, opts ...Option) *App {
	a := &App{
		store: store,
		state: view.DefaultState(),
		notes: notes,
		now:   time.Now,
	}

	a.search = debounce.New(debounce.DefaultDelay, a.applySearch)

	for _, opt := range opts {
		opt(a)
	}

	return a
}

// Close drops any pending search input.
func (a *App) Close() {
	a.search.Stop()
}

// AddTask creates a task. Validation errors leave the store unchanged.
func (a *App) AddTask(ctx context.Context, fields task.Fields) (task.Task, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	t, err := a.store.Add(ctx, fields)

	return t, a.reportPersist(err)
}

// UpdateTask changes the fields set in patch.
func (a *App) UpdateTask(ctx context.Context, id int64, patch task.Patch) (task.Task, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	t, err := a.store.Update(ctx, id, patch)

	return t, a.reportPersist(err)
}

// ToggleTask flips completion and announces a task becoming complete.
func (a *App) ToggleTask(ctx context.Context, id int64) (task.Task, bool, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	t, completed, err := a.store.Toggle(ctx, id)
	if errors.Is(err, task.ErrNotFound) {
		return task.Task{}, false, err
	}

	if completed {
		a.notes.Push(notify.Success, notify.MsgTaskCompleted, map[string]any{"Title": t.Title})
	}

	return t, completed, a.reportPersist(err)
}

// DeleteTask removes a task. Deleting a missing task is not an error.
// Callers confirm with the user first.
func (a *App) DeleteTask(ctx context.Context, id int64) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	_, existed := a.store.Get(id)

	err := a.store.Remove(ctx, id)
	if existed {
		a.notes.Push(notify.Error, notify.MsgTaskDeleted, nil)
	}

	return a.reportPersist(err)
}

// ClearAll removes every task. Callers confirm with the user first.
func (a *App) ClearAll(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	err := a.store.Clear(ctx)
	a.notes.Push(notify.Info, notify.MsgTasksCleared, nil)

	return a.reportPersist(err)
}

// Task returns a copy of one task, for example to prefill an edit form.
func (a *App) Task(id int64) (task.Task, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	return a.store.Get(id)
}

// SetFilterStatus sets the completion filter.
func (a *App) SetFilterStatus(status string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	return a.state.SetStatus(status)
}

// SetFilterPriority sets the priority filter.
func (a *App) SetFilterPriority(priority string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	return a.state.SetPriority(priority)
}

// SetSearch applies search text immediately and drops pending input.
func (a *App) SetSearch(text string) {
	a.search.Cancel()

	a.mu.Lock()
	defer a.mu.Unlock()

	a.searchGen++
	a.state.SetSearch(text)
}

// SearchInput records one keystroke's worth of search text. Only the last
// input within the quiet period takes effect.
func (a *App) SearchInput(text string) {
	a.mu.Lock()
	a.searchGen++
	in := searchInput{text: text, gen: a.searchGen}
	a.mu.Unlock()

	a.search.Push(in)
}

// FlushSearch applies pending search input now. It reports whether input
// was pending.
func (a *App) FlushSearch() bool {
	return a.search.Flush()
}

// ClearSearch removes the search filter and any pending input.
func (a *App) ClearSearch() {
	a.search.Cancel()

	a.mu.Lock()
	defer a.mu.Unlock()

	a.searchGen++
	a.state.ClearSearch()
}

// applySearch is the debounce callback. It runs outside the debouncer's
// lock, so a search change can slip in between; gen detects that.
func (a *App) applySearch(in searchInput) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if in.gen != a.searchGen {
		return
	}

	a.state.SetSearch(in.text)

	if a.onSearch != nil {
		a.onSearch(view.Project(a.store.All(), a.state))
	}
}

// SetSortKey sets the sort key.
func (a *App) SetSortKey(key string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	return a.state.SetSortKey(key)
}

// SetSortOrder sets the sort direction.
func (a *App) SetSortOrder(order string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	return a.state.SetSortOrder(order)
}

// ToggleSortOrder flips the sort direction.
func (a *App) ToggleSortOrder() view.SortOrder {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.state.ToggleSortOrder()

	return a.state.SortOrder
}

// View returns the current view settings.
func (a *App) View() view.State {
	a.mu.Lock()
	defer a.mu.Unlock()

	return a.state
}

// ProjectedView returns the filtered, sorted tasks to display.
func (a *App) ProjectedView() []task.Task {
	a.mu.Lock()
	defer a.mu.Unlock()

	return view.Project(a.store.All(), a.state)
}

// Stats aggregates the full task list.
func (a *App) Stats() stats.Stats {
	a.mu.Lock()
	defer a.mu.Unlock()

	return stats.Compute(a.store.All(), a.now())
}

// Now returns the App's current time.
func (a *App) Now() time.Time {
	return a.now()
}

// Notifications returns and clears queued notifications.
func (a *App) Notifications() []notify.Notification {
	return a.notes.Drain()
}

// reportPersist queues a save failure notification and passes err through.
func (a *App) reportPersist(err error) error {
	if errors.Is(err, task.ErrPersist) {
		a.notes.Push(notify.Error, notify.MsgSaveFailed, map[string]any{"Error": err.Error()})
	}

	return err
}
