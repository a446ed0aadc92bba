package realtime

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 8192
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// EventHandler receives every client frame except joinRoom, which the hub
// handles itself. Implemented by the API layer so domain semantics stay out
// of the transport.
type EventHandler interface {
	HandleClientEvent(c *Client, event string, data json.RawMessage)
}

type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	sendCh chan []byte
	userID string // room membership, owned by the hub goroutine
}

// Emit sends the event to this connection only. The frame is handed to the
// hub goroutine, which owns sendCh, so emitting after the hub has dropped
// this client is a no-op rather than a send on a closed channel.
func (c *Client) Emit(event string, data interface{}) {
	payload, err := marshalEnvelope(event, data)
	if err != nil {
		return
	}
	c.hub.direct <- directMessage{client: c, payload: payload}
}

// ServeWS upgrades the request and runs the read/write pumps for the
// lifetime of the connection.
func ServeWS(hub *Hub, events EventHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		client := &Client{hub: hub, conn: conn, sendCh: make(chan []byte, 32)}
		hub.register <- client

		go client.writePump()
		go client.readPump(events)
	}
}

func (c *Client) readPump(events EventHandler) {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		var frame Envelope
		if err := json.Unmarshal(raw, &frame); err != nil {
			continue
		}
		if frame.Event == "joinRoom" {
			var userID string
			if err := json.Unmarshal(frame.Data, &userID); err != nil {
				continue
			}
			c.hub.join <- joinRequest{client: c, userID: userID}
			continue
		}
		events.HandleClientEvent(c, frame.Event, frame.Data)
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case payload, ok := <-c.sendCh:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
