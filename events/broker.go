// Package events provides the SSE broker used to push run lifecycle
// events to connected dashboard clients.
package events

import (
	"encoding/json"
	"fmt"
	"log"
	"sync"
)

// Broker manages SSE connections and broadcasts run events.
type Broker struct {
	clients map[chan string]bool
	mu      sync.RWMutex
}

var broker = &Broker{
	clients: make(map[chan string]bool),
}

// GetBroker returns the global event broker.
func GetBroker() *Broker {
	return broker
}

// Register adds a new SSE client.
func (b *Broker) Register(client chan string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.clients[client] = true
	log.Printf("sse client connected (total: %d)", len(b.clients))
}

// Unregister removes an SSE client and closes its channel.
func (b *Broker) Unregister(client chan string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.clients, client)
	close(client)
	log.Printf("sse client disconnected (total: %d)", len(b.clients))
}

// Broadcast sends an event to all connected clients. Clients with a
// full buffer are skipped rather than blocking the sender.
func (b *Broker) Broadcast(eventType string, data any) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	jsonData, err := json.Marshal(data)
	if err != nil {
		log.Printf("failed to marshal event data: %v", err)
		return
	}

	message := fmt.Sprintf("event: %s\ndata: %s\n\n", eventType, string(jsonData))

	for client := range b.clients {
		select {
		case client <- message:
		default:
		}
	}
}
