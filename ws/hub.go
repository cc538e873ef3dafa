package ws

// The hub keeps track of connected dashboard clients and broadcasts domain
// events (admissions, discharges, generated invoices) to all of them. Event
// delivery is fire-and-forget: it happens after the database transaction has
// committed and a failed or slow client never affects the committed state.

import (
	"encoding/json"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

var HubInstance = NewHub()

func init() {
	go HubInstance.Run()
}

// Client is one WebSocket connection.
type Client struct {
	Conn *websocket.Conn
	Send chan []byte
}

// Hub manages all client connections.
type Hub struct {
	Clients    map[*Client]bool
	Broadcast  chan []byte
	Register   chan *Client
	Unregister chan *Client
}

func NewHub() *Hub {
	return &Hub{
		Clients:    make(map[*Client]bool),
		Broadcast:  make(chan []byte, 256),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.Register:
			h.Clients[client] = true
			log.Debug().Msg("ws client registered")
		case client := <-h.Unregister:
			if _, ok := h.Clients[client]; ok {
				delete(h.Clients, client)
				close(client.Send)
				log.Debug().Msg("ws client unregistered")
			}
		case message := <-h.Broadcast:
			for client := range h.Clients {
				select {
				case client.Send <- message:
				default:
					close(client.Send)
					delete(h.Clients, client)
				}
			}
		}
	}
}

// Event is the wire shape of a broadcast notification.
type Event struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// Publish marshals and broadcasts an event without blocking the caller.
// Marshal failures are logged and dropped.
func (h *Hub) Publish(eventType string, payload interface{}) {
	data, err := json.Marshal(Event{Type: eventType, Payload: payload})
	if err != nil {
		log.Error().Err(err).Str("event", eventType).Msg("failed to marshal event")
		return
	}
	select {
	case h.Broadcast <- data:
	default:
		log.Warn().Str("event", eventType).Msg("event dropped, broadcast channel full")
	}
}
