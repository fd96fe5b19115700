// Package livefeed broadcasts complaint lifecycle events to connected map
// clients over WebSocket. The feed is one-way: clients only listen.
package livefeed

import (
	"log"

	"jansevak/backend/internal/models"
)

// Event is one feed update pushed to every connected client.
type Event struct {
	// Type is the lifecycle event: "complaint_accepted",
	// "complaint_escalated" or "complaint_resolved".
	Type      string            `json:"type"`
	Complaint *models.Complaint `json:"complaint"`
}

const (
	EventAccepted  = "complaint_accepted"
	EventEscalated = "complaint_escalated"
	EventResolved  = "complaint_resolved"
)

// Hub fans events out to the registered clients.
type Hub struct {
	Clients map[*Client]bool

	RegisterCh   chan *Client
	UnregisterCh chan *Client
	BroadcastCh  chan Event
}

func NewHub() *Hub {
	return &Hub{
		Clients:      make(map[*Client]bool),
		RegisterCh:   make(chan *Client),
		UnregisterCh: make(chan *Client),
		BroadcastCh:  make(chan Event, 32),
	}
}

// Run is the hub's main dispatcher loop.
func (h *Hub) Run() {
	log.Println("Live feed hub started.")
	for {
		select {
		case client := <-h.RegisterCh:
			h.Clients[client] = true
		case client := <-h.UnregisterCh:
			if _, ok := h.Clients[client]; ok {
				delete(h.Clients, client)
				client.Close()
			}
		case event := <-h.BroadcastCh:
			for client := range h.Clients {
				select {
				case client.Send <- event:
				default:
					// Slow consumer; drop it rather than block the feed.
					delete(h.Clients, client)
					client.Close()
				}
			}
		}
	}
}

// Broadcast queues an event for every connected client without blocking
// the caller.
func (h *Hub) Broadcast(eventType string, complaint *models.Complaint) {
	select {
	case h.BroadcastCh <- Event{Type: eventType, Complaint: complaint}:
	default:
		log.Println("WARN: Live feed broadcast queue full, dropping event")
	}
}
