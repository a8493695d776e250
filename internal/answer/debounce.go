package answer

import (
	"sync"
	"time"
)

// DefaultDebounceWait collapses rapid consecutive edits into one flush.
const DefaultDebounceWait = 400 * time.Millisecond

// FlushFunc receives the last value seen for a key when its debounce window
// elapses. A nil payload is a valid value (it deletes the stored answer).
type FlushFunc func(key string, value any)

// Debouncer coalesces rapid successive values per key and invokes the flush
// callback on the trailing edge. Close flushes everything still pending, so
// a teardown never silently drops the last edit.
type Debouncer struct {
	mu      sync.Mutex
	wait    time.Duration
	flush   FlushFunc
	pending map[string]*pendingValue
	closed  bool
}

type pendingValue struct {
	value any
	timer *time.Timer
}

// NewDebouncer creates a Debouncer with the given trailing-edge window.
func NewDebouncer(wait time.Duration, flush FlushFunc) *Debouncer {
	if wait <= 0 {
		wait = DefaultDebounceWait
	}
	return &Debouncer{
		wait:    wait,
		flush:   flush,
		pending: make(map[string]*pendingValue),
	}
}

// Trigger records a value for the key and (re)starts its window. After Close
// the value is flushed immediately instead of being dropped.
func (d *Debouncer) Trigger(key string, value any) {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		d.flush(key, value)
		return
	}

	if p, ok := d.pending[key]; ok {
		p.value = value
		p.timer.Reset(d.wait)
		d.mu.Unlock()
		return
	}

	p := &pendingValue{value: value}
	p.timer = time.AfterFunc(d.wait, func() { d.fire(key) })
	d.pending[key] = p
	d.mu.Unlock()
}

// fire flushes one key when its timer elapses.
func (d *Debouncer) fire(key string) {
	d.mu.Lock()
	p, ok := d.pending[key]
	if !ok {
		d.mu.Unlock()
		return
	}
	delete(d.pending, key)
	d.mu.Unlock()

	d.flush(key, p.value)
}

// Flush immediately flushes every pending key.
func (d *Debouncer) Flush() {
	d.mu.Lock()
	drained := d.pending
	d.pending = make(map[string]*pendingValue)
	d.mu.Unlock()

	for key, p := range drained {
		p.timer.Stop()
		d.flush(key, p.value)
	}
}

// Close flushes all pending values and rejects future windows. Idempotent.
func (d *Debouncer) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	d.mu.Unlock()

	d.Flush()
}
