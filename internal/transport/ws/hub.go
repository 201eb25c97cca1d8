package ws

import (
	"encoding/json"
	"log"
)

// Event is the wire format pushed to operator clients
type Event struct {
	Event   string `json:"event"`
	Payload any    `json:"payload,omitempty"`
}

// Connection represents one connected operator client
type Connection struct {
	OperatorID string
	Send       chan []byte
	Hub        *Hub
}

// Hub maintains the set of connected operators and fans events out to
// them. All state is owned by the Run goroutine.
type Hub struct {
	connections map[*Connection]bool

	register   chan *Connection
	unregister chan *Connection
	broadcast  chan []byte
}

// NewHub creates a new hub
func NewHub() *Hub {
	return &Hub{
		connections: make(map[*Connection]bool),
		register:    make(chan *Connection),
		unregister:  make(chan *Connection),
		broadcast:   make(chan []byte, 64),
	}
}

// Run processes hub events. Call in a goroutine.
func (h *Hub) Run() {
	for {
		select {
		case conn := <-h.register:
			h.connections[conn] = true
			log.Printf("operator %s connected (%d online)", conn.OperatorID, len(h.connections))

		case conn := <-h.unregister:
			if _, ok := h.connections[conn]; ok {
				delete(h.connections, conn)
				close(conn.Send)
				log.Printf("operator %s disconnected (%d online)", conn.OperatorID, len(h.connections))
			}

		case message := <-h.broadcast:
			for conn := range h.connections {
				select {
				case conn.Send <- message:
				default:
					// slow client, drop it
					delete(h.connections, conn)
					close(conn.Send)
				}
			}
		}
	}
}

// Register adds a connection to the hub
func (h *Hub) Register(conn *Connection) {
	h.register <- conn
}

// Unregister removes a connection from the hub
func (h *Hub) Unregister(conn *Connection) {
	h.unregister <- conn
}

// BroadcastToOperators sends an event to every connected operator. It
// implements service.Broadcaster.
func (h *Hub) BroadcastToOperators(event string, payload any) {
	data, err := json.Marshal(Event{Event: event, Payload: payload})
	if err != nil {
		log.Printf("failed to marshal ws event %s: %v", event, err)
		return
	}
	h.broadcast <- data
}
