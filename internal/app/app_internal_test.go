package app

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calvinalkan/todo/internal/kv"
	"github.com/calvinalkan/todo/internal/notify"
	"github.com/calvinalkan/todo/internal/task"
)

func newTestApp(t *testing.T) *App {
	t.Helper()

	store := task.NewStore(kv.NewMemory())
	store.Load(context.Background())

	bundle, err := notify.NewBundle()
	require.NoError(t, err)

	a := New(store, notify.NewCenter(notify.NewTranslator(bundle, "en"), time.Minute, nil), WithSearchDelay(time.Hour))
	t.Cleanup(a.Close)

	return a
}

// The timer callback can be released by the debouncer and then wait on the
// App lock while the search is changed. These tests replay that ordering by
// delivering the input by hand after the change.

func TestApplySearch_LateInputDoesNotUndoClear(t *testing.T) {
	t.Parallel()

	a := newTestApp(t)

	a.SearchInput("milk")
	late := searchInput{text: "milk", gen: a.searchGen}

	a.ClearSearch()
	a.applySearch(late)

	assert.Empty(t, a.View().Search)
}

func TestApplySearch_LateInputDoesNotUndoSetSearch(t *testing.T) {
	t.Parallel()

	a := newTestApp(t)

	a.SearchInput("milk")
	late := searchInput{text: "milk", gen: a.searchGen}

	a.SetSearch("dog")
	a.applySearch(late)

	assert.Equal(t, "dog", a.View().Search)
}

func TestApplySearch_OnlyNewestInputApplies(t *testing.T) {
	t.Parallel()

	a := newTestApp(t)

	a.SearchInput("mi")
	late := searchInput{text: "mi", gen: a.searchGen}

	a.SearchInput("milk")
	a.applySearch(late)
	assert.Empty(t, a.View().Search)

	assert.True(t, a.FlushSearch())
	assert.Equal(t, "milk", a.View().Search)
}
