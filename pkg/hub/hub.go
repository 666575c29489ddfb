// Package hub provides a thread-safe websocket broadcast hub using the
// channel-based fan-out pattern. The dashboard uses one hub per stream:
// tracker status JSON, log lines, and binary debug frames.
package hub

import (
	"encoding/json"
	"sync"

	"github.com/jishaemilin2005-cyber/Gaze-mapping/internal/log"
)

// MessageType indicates the websocket message format
type MessageType int

const (
	// JSONMessage is a JSON-encoded message
	JSONMessage MessageType = iota
	// BinaryMessage is raw binary data (e.g., JPEG debug frames)
	BinaryMessage
)

// Message represents a message to be broadcast to clients
type Message struct {
	Type MessageType
	Data []byte
}

// Hub maintains the set of active clients and broadcasts messages to them
type Hub struct {
	name string

	clients    map[*Client]bool
	broadcast  chan Message
	register   chan *Client
	unregister chan *Client

	mu sync.RWMutex
}

// New creates a new Hub with the given name (used in logs).
func New(name string) *Hub {
	return &Hub{
		name:       name,
		clients:    make(map[*Client]bool),
		broadcast:  make(chan Message, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

// Run starts the hub's main loop. Call it in a goroutine.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			count := len(h.clients)
			h.mu.Unlock()
			log.Debug("ws client connected", "hub", h.name, "clients", count)

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			count := len(h.clients)
			h.mu.Unlock()
			log.Debug("ws client disconnected", "hub", h.name, "clients", count)

		case message := <-h.broadcast:
			h.mu.Lock()
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					// Client can't keep up; drop it rather than
					// stalling every other consumer.
					close(client.send)
					delete(h.clients, client)
					log.Warn("dropped slow ws client", "hub", h.name)
				}
			}
			h.mu.Unlock()
		}
	}
}

// Broadcast sends a message to all connected clients. When the
// broadcast queue is full the message is dropped; the streams are
// best-effort.
func (h *Hub) Broadcast(msg Message) {
	select {
	case h.broadcast <- msg:
	default:
		log.Debug("broadcast queue full, dropping message", "hub", h.name)
	}
}

// BroadcastJSON encodes and broadcasts a JSON message
func (h *Hub) BroadcastJSON(v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	h.Broadcast(Message{Type: JSONMessage, Data: data})
	return nil
}

// BroadcastBinary broadcasts binary data (e.g., JPEG debug frames)
func (h *Hub) BroadcastBinary(data []byte) {
	h.Broadcast(Message{Type: BinaryMessage, Data: data})
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
