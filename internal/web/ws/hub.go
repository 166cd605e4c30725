// Package ws broadcasts live pipeline progress events to connected
// browser clients, the way iluha78-FD's Hub fans detection events out
// over WebSocket.
package ws

import (
	"encoding/json"
	"log"
	"net/http"
	"os"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/jnovak/facecat/internal/metrics"
	"github.com/jnovak/facecat/internal/pipeline"
)

var logger = log.New(os.Stderr, "[ws] ", log.LstdFlags)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Client is one connected browser tab watching a pipeline run.
type Client struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub maintains active clients and fans pipeline.Event out to all of
// them.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client
	mu         sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan []byte, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

// Run drives the hub's event loop; call it in a goroutine before
// serving any connections.
func (h *Hub) Run() {
	for {
		select {
		case c := <-h.register:
			h.mu.Lock()
			h.clients[c] = true
			h.mu.Unlock()
			metrics.WSConnections.Inc()

		case c := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
			}
			h.mu.Unlock()
			metrics.WSConnections.Dec()

		case msg := <-h.broadcast:
			h.mu.RLock()
			for c := range h.clients {
				select {
				case c.send <- msg:
				default:
					// Slow client, drop it rather than block the hub.
					go func(c *Client) { h.unregister <- c }(c)
				}
			}
			h.mu.RUnlock()
		}
	}
}

// Broadcast fans a pipeline.Event out to every connected client.
func (h *Hub) Broadcast(event pipeline.Event) {
	data, err := json.Marshal(event)
	if err != nil {
		logger.Printf("marshal event: %v", err)
		return
	}
	h.broadcast <- data
}

// HandleWS upgrades the request to a WebSocket and registers the
// resulting client with the hub.
func (h *Hub) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Printf("upgrade: %v", err)
		return
	}

	client := &Client{conn: conn, send: make(chan []byte, 64)}
	h.register <- client

	go client.writePump()
	go client.readPump(h)
}

func (c *Client) writePump() {
	defer c.conn.Close()
	for msg := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			return
		}
	}
}

func (c *Client) readPump(h *Hub) {
	defer func() {
		h.unregister <- c
		c.conn.Close()
	}()
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}
