package realtime

import "encoding/json"

// Emitter is the notification side of the hub, injected into the handlers
// that need to announce state changes. Delivery is best-effort: there is no
// acknowledgment, retry or persistence and a disconnected client simply
// misses the event.
type Emitter interface {
	Broadcast(event string, data interface{})
	ToUser(userID string, event string, data interface{})
}

// Envelope is the wire frame for both directions of the socket.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

type message struct {
	room    string // empty means broadcast to every client
	payload []byte
}

type directMessage struct {
	client  *Client
	payload []byte
}

type joinRequest struct {
	client *Client
	userID string
}

// Hub owns all connection and room state. Every mutation goes through its
// channels and happens on the Run goroutine, so no locks are needed.
type Hub struct {
	clients    map[*Client]bool
	rooms      map[string]map[*Client]bool
	send       chan message
	direct     chan directMessage
	register   chan *Client
	unregister chan *Client
	join       chan joinRequest
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		rooms:      make(map[string]map[*Client]bool),
		send:       make(chan message, 64),
		direct:     make(chan directMessage, 64),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		join:       make(chan joinRequest),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.clients[client] = true
		case client := <-h.unregister:
			h.drop(client)
		case req := <-h.join:
			h.joinRoom(req.client, req.userID)
		case m := <-h.send:
			h.deliver(m)
		case m := <-h.direct:
			h.deliverDirect(m)
		}
	}
}

// Broadcast sends the event to every connected client.
func (h *Hub) Broadcast(event string, data interface{}) {
	payload, err := marshalEnvelope(event, data)
	if err != nil {
		return
	}
	h.send <- message{payload: payload}
}

// ToUser sends the event only to connections that joined the user's room.
func (h *Hub) ToUser(userID string, event string, data interface{}) {
	if userID == "" {
		return
	}
	payload, err := marshalEnvelope(event, data)
	if err != nil {
		return
	}
	h.send <- message{room: userID, payload: payload}
}

func (h *Hub) deliver(m message) {
	targets := h.clients
	if m.room != "" {
		targets = h.rooms[m.room]
	}
	for client := range targets {
		select {
		case client.sendCh <- m.payload:
		default:
			// client cannot keep up, cut it loose
			h.drop(client)
		}
	}
}

// deliverDirect sends to a single connection. Runs on the hub goroutine so
// a client already dropped for slowness is skipped instead of hitting its
// closed channel.
func (h *Hub) deliverDirect(m directMessage) {
	if !h.clients[m.client] {
		return
	}
	select {
	case m.client.sendCh <- m.payload:
	default:
		h.drop(m.client)
	}
}

func (h *Hub) joinRoom(client *Client, userID string) {
	if !h.clients[client] || userID == "" {
		return
	}
	h.leaveRoom(client)
	client.userID = userID
	if h.rooms[userID] == nil {
		h.rooms[userID] = make(map[*Client]bool)
	}
	h.rooms[userID][client] = true
}

func (h *Hub) leaveRoom(client *Client) {
	if client.userID == "" {
		return
	}
	room := h.rooms[client.userID]
	delete(room, client)
	if len(room) == 0 {
		delete(h.rooms, client.userID)
	}
	client.userID = ""
}

func (h *Hub) drop(client *Client) {
	if !h.clients[client] {
		return
	}
	h.leaveRoom(client)
	delete(h.clients, client)
	close(client.sendCh)
}

func marshalEnvelope(event string, data interface{}) ([]byte, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Envelope{Event: event, Data: raw})
}
