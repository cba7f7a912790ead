// Package realtime pushes store snapshots to connected clients over
// websockets. Each client joins one topic (a feed scope, a profile, the
// review queue); the hub fans every published snapshot out to the topic's
// clients.
package realtime

import (
	"encoding/json"
	"log"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

// Well-known topic builders.
const (
	TopicGlobalFeed = "feed"
	TopicReview     = "review"
)

// TopicFeed scopes the global feed by snapshot size, so clients asking
// for different limits never share one client's truncated snapshot.
func TopicFeed(limit int) string {
	if limit <= 0 {
		return TopicGlobalFeed
	}
	return TopicGlobalFeed + ":" + strconv.Itoa(limit)
}

func TopicUserFeed(userID string) string { return "user:" + userID }
func TopicProfile(userID string) string  { return "profile:" + userID }
func TopicAgenda(userID string) string   { return "agenda:" + userID }

// Message is the envelope pushed to subscribers. Payload is always a full
// snapshot of the topic's result set, never a diff.
type Message struct {
	Type    string      `json:"type"`
	Topic   string      `json:"topic"`
	Payload interface{} `json:"payload"`
}

// Client is one websocket connection subscribed to a topic.
type Client struct {
	hub   *Hub
	conn  *websocket.Conn
	send  chan []byte
	topic string

	mu     sync.Mutex
	closed bool
}

// NewClient wraps an upgraded connection. Call ReadPump and WritePump in
// their own goroutines after registering the client.
func NewClient(hub *Hub, conn *websocket.Conn, topic string) *Client {
	return &Client{
		hub:   hub,
		conn:  conn,
		send:  make(chan []byte, 8),
		topic: topic,
	}
}

// Hub routes snapshot messages to topic subscribers.
type Hub struct {
	Register   chan *Client
	Unregister chan *Client

	mu     sync.RWMutex
	topics map[string]map[*Client]bool
}

func NewHub() *Hub {
	return &Hub{
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		topics:     make(map[string]map[*Client]bool),
	}
}

// Run processes registrations until the process exits.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.Register:
			h.mu.Lock()
			if _, ok := h.topics[client.topic]; !ok {
				h.topics[client.topic] = make(map[*Client]bool)
			}
			h.topics[client.topic][client] = true
			h.mu.Unlock()

		case client := <-h.Unregister:
			h.mu.Lock()
			if subscribers, ok := h.topics[client.topic]; ok {
				if _, okClient := subscribers[client]; okClient {
					client.mu.Lock()
					if !client.closed {
						close(client.send)
						client.closed = true
					}
					client.mu.Unlock()
					delete(subscribers, client)
					if len(subscribers) == 0 {
						delete(h.topics, client.topic)
					}
				}
			}
			h.mu.Unlock()
		}
	}
}

// HasSubscribers reports whether anyone is listening on topic. Callers use
// this to avoid holding store subscriptions open for empty topics.
func (h *Hub) HasSubscribers(topic string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.topics[topic]) > 0
}

// Publish sends a snapshot to every client subscribed to topic. A client
// whose send buffer is full is skipped; it will catch up on the next
// snapshot since every delivery is the full result set.
func (h *Hub) Publish(topic, msgType string, payload interface{}) {
	message, err := json.Marshal(Message{Type: msgType, Topic: topic, Payload: payload})
	if err != nil {
		log.Printf("ERROR: marshalling snapshot for topic %s: %v", topic, err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.topics[topic] {
		client.mu.Lock()
		if client.closed {
			client.mu.Unlock()
			continue
		}
		select {
		case client.send <- message:
		default:
		}
		client.mu.Unlock()
	}
}

// ReadPump drains (and discards) inbound frames so that pings/pongs and
// close handshakes are processed. It unregisters the client on any error.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.Unregister <- c
		c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("websocket read error on topic %s: %v", c.topic, err)
			}
			return
		}
	}
}

// WritePump forwards queued snapshots to the connection and keeps it alive
// with periodic pings.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
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
