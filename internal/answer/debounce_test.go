package answer

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// flushRecorder collects flushed (key, value) pairs thread-safely.
type flushRecorder struct {
	mu     sync.Mutex
	keys   []string
	values []any
}

func (r *flushRecorder) flush(key string, value any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.keys = append(r.keys, key)
	r.values = append(r.values, value)
}

func (r *flushRecorder) snapshot() ([]string, []any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.keys...), append([]any(nil), r.values...)
}

func TestDebouncerCoalescesRapidEdits(t *testing.T) {
	rec := &flushRecorder{}
	d := NewDebouncer(30*time.Millisecond, rec.flush)
	defer d.Close()

	d.Trigger("q1", "v1")
	d.Trigger("q1", "v2")
	d.Trigger("q1", "v3")

	assert.Eventually(t, func() bool {
		keys, _ := rec.snapshot()
		return len(keys) == 1
	}, time.Second, 5*time.Millisecond)

	keys, values := rec.snapshot()
	require.Equal(t, []string{"q1"}, keys)
	assert.Equal(t, "v3", values[0], "only the last value in the window survives")
}

func TestDebouncerIndependentKeys(t *testing.T) {
	rec := &flushRecorder{}
	d := NewDebouncer(20*time.Millisecond, rec.flush)
	defer d.Close()

	d.Trigger("q1", "a")
	d.Trigger("q2", "b")

	assert.Eventually(t, func() bool {
		keys, _ := rec.snapshot()
		return len(keys) == 2
	}, time.Second, 5*time.Millisecond)

	keys, _ := rec.snapshot()
	assert.ElementsMatch(t, []string{"q1", "q2"}, keys)
}

func TestDebouncerCloseFlushesPending(t *testing.T) {
	rec := &flushRecorder{}
	d := NewDebouncer(time.Hour, rec.flush) // would never fire on its own

	d.Trigger("q1", "last edit")
	d.Close()

	keys, values := rec.snapshot()
	require.Equal(t, []string{"q1"}, keys)
	assert.Equal(t, "last edit", values[0])
}

func TestDebouncerNilValueIsFlushed(t *testing.T) {
	// nil is a real value: it deletes the stored answer.
	rec := &flushRecorder{}
	d := NewDebouncer(time.Hour, rec.flush)

	d.Trigger("q1", nil)
	d.Close()

	keys, values := rec.snapshot()
	require.Equal(t, []string{"q1"}, keys)
	assert.Nil(t, values[0])
}

func TestDebouncerTriggerAfterCloseFlushesImmediately(t *testing.T) {
	rec := &flushRecorder{}
	d := NewDebouncer(time.Hour, rec.flush)
	d.Close()

	d.Trigger("q1", "straggler")

	keys, values := rec.snapshot()
	require.Equal(t, []string{"q1"}, keys)
	assert.Equal(t, "straggler", values[0])
}

func TestDebouncerCloseIdempotent(t *testing.T) {
	rec := &flushRecorder{}
	d := NewDebouncer(time.Hour, rec.flush)

	d.Trigger("q1", "v")
	d.Close()
	d.Close()

	keys, _ := rec.snapshot()
	assert.Len(t, keys, 1)
}

func TestDebouncerFlushResetsWindows(t *testing.T) {
	rec := &flushRecorder{}
	d := NewDebouncer(time.Hour, rec.flush)
	defer d.Close()

	d.Trigger("q1", "v1")
	d.Flush()

	keys, _ := rec.snapshot()
	require.Len(t, keys, 1)

	// A later edit opens a fresh window rather than reusing the flushed one.
	d.Trigger("q1", "v2")
	d.Flush()

	keys, values := rec.snapshot()
	require.Len(t, keys, 2)
	assert.Equal(t, "v2", values[1])
}
