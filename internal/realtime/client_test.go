package realtime

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedEvent struct {
	event string
	data  json.RawMessage
}

type eventRecorder struct {
	ch chan recordedEvent
}

func (r *eventRecorder) HandleClientEvent(c *Client, event string, data json.RawMessage) {
	r.ch <- recordedEvent{event: event, data: data}
}

func dialTestHub(t *testing.T, hub *Hub, events EventHandler) (*websocket.Conn, func()) {
	t.Helper()
	srv := httptest.NewServer(ServeWS(hub, events))
	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	return conn, func() {
		conn.Close()
		srv.Close()
	}
}

func TestServeWSDispatchesClientEvents(t *testing.T) {
	hub := NewHub()
	go hub.Run()
	recorder := &eventRecorder{ch: make(chan recordedEvent, 1)}
	conn, cleanup := dialTestHub(t, hub, recorder)
	defer cleanup()

	require.NoError(t, conn.WriteJSON(Envelope{
		Event: "searchJobs",
		Data:  json.RawMessage(`{"keyword":"go"}`),
	}))

	select {
	case got := <-recorder.ch:
		assert.Equal(t, "searchJobs", got.event)
		assert.JSONEq(t, `{"keyword":"go"}`, string(got.data))
	case <-time.After(2 * time.Second):
		t.Fatal("event was not dispatched to the handler")
	}
}

func TestServeWSJoinRoomReceivesUserEvents(t *testing.T) {
	hub := NewHub()
	go hub.Run()
	recorder := &eventRecorder{ch: make(chan recordedEvent, 1)}
	conn, cleanup := dialTestHub(t, hub, recorder)
	defer cleanup()

	require.NoError(t, conn.WriteJSON(Envelope{
		Event: "joinRoom",
		Data:  json.RawMessage(`"u-1"`),
	}))

	// the join is processed asynchronously, keep sending until it lands
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 50; i++ {
			hub.ToUser("u-1", "notification", map[string]string{"message": "hello"})
			time.Sleep(20 * time.Millisecond)
		}
	}()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var env Envelope
	require.NoError(t, conn.ReadJSON(&env))
	assert.Equal(t, "notification", env.Event)
	assert.JSONEq(t, `{"message":"hello"}`, string(env.Data))
	<-done
}

func TestBroadcastReachesDialedClient(t *testing.T) {
	hub := NewHub()
	go hub.Run()
	recorder := &eventRecorder{ch: make(chan recordedEvent, 1)}
	conn, cleanup := dialTestHub(t, hub, recorder)
	defer cleanup()

	// registration is asynchronous, keep broadcasting until the client sees it
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 50; i++ {
			hub.Broadcast("newJob", map[string]string{"id": "job-1"})
			time.Sleep(20 * time.Millisecond)
		}
	}()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var env Envelope
	require.NoError(t, conn.ReadJSON(&env))
	assert.Equal(t, "newJob", env.Event)
	<-done
}
