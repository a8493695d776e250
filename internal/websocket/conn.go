package websocket

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Deadlines applied when Wrap receives a zero duration.
const (
	defaultWriteTimeout = 10 * time.Second
	defaultReadTimeout  = 5 * time.Minute
)

// Conn serializes writes to a single gorilla connection. gorilla/websocket
// supports only one concurrent writer, and both streams write from more than
// one goroutine: the student stream acks autosaves while the phase watcher
// pushes redirects, and the monitor stream answers pings from its reader
// while the main loop forwards events.
type Conn struct {
	mu           sync.Mutex
	ws           *websocket.Conn
	writeTimeout time.Duration
	readTimeout  time.Duration
}

// Wrap wraps an upgraded connection with serialized, deadline-bounded writes.
func Wrap(ws *websocket.Conn, writeTimeout, readTimeout time.Duration) *Conn {
	if writeTimeout <= 0 {
		writeTimeout = defaultWriteTimeout
	}
	if readTimeout <= 0 {
		readTimeout = defaultReadTimeout
	}
	return &Conn{ws: ws, writeTimeout: writeTimeout, readTimeout: readTimeout}
}

// WriteTyped sends a strongly-typed response payload over the WebSocket.
// Safe for concurrent use.
func (c *Conn) WriteTyped(v interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ws.SetWriteDeadline(time.Now().Add(c.writeTimeout))
	return c.ws.WriteJSON(v)
}

// WriteError sends a typed ErrorResponse over the WebSocket.
func (c *Conn) WriteError(errMsg string) error {
	return c.WriteTyped(ErrorResponse{
		Event: EventError,
		Error: errMsg,
	})
}

// ReadJSON reads and decodes a message into the provided structure. Reads
// stay on a single goroutine per connection; only writes need the lock.
func (c *Conn) ReadJSON(v interface{}) error {
	c.ws.SetReadDeadline(time.Now().Add(c.readTimeout))
	return c.ws.ReadJSON(v)
}

// Close closes the underlying connection.
func (c *Conn) Close() error {
	return c.ws.Close()
}
