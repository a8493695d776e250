package websocket

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	gws "github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// connPair upgrades one server-side connection over a test server and dials
// it, returning the wrapped server end and the raw client end.
func connPair(t *testing.T) (*Conn, *gws.Conn) {
	t.Helper()

	upgrader := gws.Upgrader{}
	serverConns := make(chan *gws.Conn, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		serverConns <- c
	}))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	client, _, err := gws.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })

	server := Wrap(<-serverConns, 5*time.Second, time.Minute)
	t.Cleanup(func() { server.Close() })
	return server, client
}

func TestConnSerializesConcurrentWriters(t *testing.T) {
	server, client := connPair(t)

	// The raw gorilla connection panics when two goroutines write at once;
	// the wrapper must let the event pusher and the ack path share a
	// connection safely.
	const writers, perWriter = 4, 25
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perWriter; j++ {
				assert.NoError(t, server.WriteTyped(PongResponse{Event: EventPong}))
			}
		}()
	}

	for i := 0; i < writers*perWriter; i++ {
		var resp PongResponse
		require.NoError(t, client.ReadJSON(&resp))
		assert.Equal(t, EventPong, resp.Event)
	}
	wg.Wait()
}

func TestConnWriteError(t *testing.T) {
	server, client := connPair(t)

	require.NoError(t, server.WriteError("boom"))

	var resp ErrorResponse
	require.NoError(t, client.ReadJSON(&resp))
	assert.Equal(t, EventError, resp.Event)
	assert.Equal(t, "boom", resp.Error)
}

func TestConnReadJSON(t *testing.T) {
	server, client := connPair(t)

	require.NoError(t, client.WriteJSON(RequestEnvelope{Action: ActionPing}))

	var envelope RequestEnvelope
	require.NoError(t, server.ReadJSON(&envelope))
	assert.Equal(t, ActionPing, envelope.Action)
}
