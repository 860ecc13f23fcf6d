package main

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/dougsko/rigsync/pkg/logging"
	"github.com/dougsko/rigsync/pkg/protocol"
)

const (
	clientBuffer = 32
	writeTimeout = 5 * time.Second
)

type hubClient struct {
	conn *websocket.Conn
	send chan []byte
}

// EventHub fans gateway events out to websocket subscribers. A subscriber
// that falls behind is dropped rather than slowing the publisher.
type EventHub struct {
	mutex   sync.Mutex
	clients map[*hubClient]struct{}
}

// NewEventHub creates an empty hub
func NewEventHub() *EventHub {
	return &EventHub{clients: make(map[*hubClient]struct{})}
}

// Publish sends event to every subscriber without blocking
func (h *EventHub) Publish(event protocol.Event) {
	data, err := json.Marshal(event)
	if err != nil {
		logging.Error("events", "failed to encode event", logging.Fields{"error": err.Error()})
		return
	}

	h.mutex.Lock()
	defer h.mutex.Unlock()
	for c := range h.clients {
		select {
		case c.send <- data:
		default:
			logging.Warn("events", "subscriber too slow, dropping", logging.Fields{"remote": c.conn.RemoteAddr().String()})
			h.removeLocked(c)
		}
	}
}

// Serve streams events to conn until the peer goes away or the hub closes
func (h *EventHub) Serve(conn *websocket.Conn) {
	c := &hubClient{conn: conn, send: make(chan []byte, clientBuffer)}

	h.mutex.Lock()
	h.clients[c] = struct{}{}
	h.mutex.Unlock()
	logging.Debug("events", "subscriber connected", logging.Fields{
		"remote":      conn.RemoteAddr().String(),
		"subscribers": h.Count(),
	})

	// Inbound frames are ignored; reading is only how a close is noticed.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				h.remove(c)
				return
			}
		}
	}()

	for msg := range c.send {
		conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			h.remove(c)
			break
		}
	}

	conn.Close()
	logging.Debug("events", "subscriber disconnected", logging.Fields{
		"remote":      conn.RemoteAddr().String(),
		"subscribers": h.Count(),
	})
}

// Count returns the number of subscribers
func (h *EventHub) Count() int {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	return len(h.clients)
}

// Close disconnects every subscriber
func (h *EventHub) Close() {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	for c := range h.clients {
		h.removeLocked(c)
	}
}

func (h *EventHub) remove(c *hubClient) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	h.removeLocked(c)
}

func (h *EventHub) removeLocked(c *hubClient) {
	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	close(c.send)
}
