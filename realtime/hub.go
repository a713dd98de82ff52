// Package realtime fans marketplace events out to connected clients over
// websockets. All access to the connection map happens on the Run goroutine.
package realtime

import (
	"context"
	"log"
	"time"

	"github.com/gorilla/websocket"
)

const writeDeadline = 5 * time.Second

// Event is the wire frame pushed to clients.
type Event struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload,omitempty"`
}

const (
	EventMessage      = "message"
	EventNotification = "notification"
	EventBadge        = "badge"
)

type client struct {
	userID string
	conn   *websocket.Conn
}

type directEvent struct {
	userID string
	event  Event
}

type Hub struct {
	clients    map[string]*websocket.Conn
	register   chan client
	unregister chan client
	broadcast  chan Event
	direct     chan directEvent

	// Optional connect/disconnect hooks, e.g. badge watch bookkeeping.
	OnConnect    func(userID string)
	OnDisconnect func(userID string)
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]*websocket.Conn),
		register:   make(chan client),
		unregister: make(chan client),
		broadcast:  make(chan Event),
		direct:     make(chan directEvent, 64),
	}
}

// Register attaches a user connection. An existing connection for the same
// user is closed and replaced.
func (h *Hub) Register(userID string, conn *websocket.Conn) {
	h.register <- client{userID: userID, conn: conn}
}

// Unregister detaches a connection. Ignored if the user has since
// reconnected on a different socket.
func (h *Hub) Unregister(userID string, conn *websocket.Conn) {
	h.unregister <- client{userID: userID, conn: conn}
}

// Send queues an event for one user. Offline users are skipped; the data is
// persisted elsewhere and delivered on the next fetch.
func (h *Hub) Send(userID string, ev Event) {
	select {
	case h.direct <- directEvent{userID: userID, event: ev}:
	default:
		log.Printf("realtime queue full, dropping %s event for user %s", ev.Type, userID)
	}
}

// Broadcast queues an event for every connected user.
func (h *Hub) Broadcast(ev Event) {
	h.broadcast <- ev
}

// Run owns the connection map until ctx is done, then closes every socket.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			for _, conn := range h.clients {
				conn.Close()
			}
			h.clients = make(map[string]*websocket.Conn)
			return

		case c := <-h.register:
			if old, ok := h.clients[c.userID]; ok && old != c.conn {
				old.Close()
			}
			h.clients[c.userID] = c.conn
			if h.OnConnect != nil {
				h.OnConnect(c.userID)
			}

		case c := <-h.unregister:
			if cur, ok := h.clients[c.userID]; ok && cur == c.conn {
				cur.Close()
				delete(h.clients, c.userID)
				if h.OnDisconnect != nil {
					h.OnDisconnect(c.userID)
				}
			}

		case ev := <-h.broadcast:
			for userID, conn := range h.clients {
				h.write(userID, conn, ev)
			}

		case de := <-h.direct:
			if conn, ok := h.clients[de.userID]; ok {
				h.write(de.userID, conn, de.event)
			}
		}
	}
}

func (h *Hub) write(userID string, conn *websocket.Conn, ev Event) {
	conn.SetWriteDeadline(time.Now().Add(writeDeadline))
	if err := conn.WriteJSON(ev); err != nil {
		log.Printf("realtime send to user %s failed: %v", userID, err)
		conn.Close()
		delete(h.clients, userID)
		if h.OnDisconnect != nil {
			h.OnDisconnect(userID)
		}
	}
}
