package api

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/khryptorgraphics/nonaxiomatic/pkg/events"
)

// WebSocketMessage is the envelope streamed to /ws/events clients.
type WebSocketMessage struct {
	Type      string    `json:"type"`
	Subject   string    `json:"subject,omitempty"`
	Time      int64     `json:"time,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data,omitempty"`
}

const messageTypeHeartbeat = "heartbeat"

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// eventClient is a single connected WebSocket subscriber.
type eventClient struct {
	id   string
	conn *websocket.Conn
	send chan WebSocketMessage
}

// EventHub mirrors the teacher's WebSocketHub, but its source of truth is
// the reasoner's own event bus (spec §4.7: "mirrors the teacher's
// WebSocketHub") instead of an internal broadcast channel fed by handlers.
// Every event bus Kind is subscribed once at construction and fanned out to
// whichever clients are currently connected.
type EventHub struct {
	logger *slog.Logger

	mu      sync.RWMutex
	clients map[*eventClient]bool

	register   chan *eventClient
	unregister chan *eventClient
	stop       chan struct{}
}

// NewEventHub constructs a hub and subscribes it to every event kind on bus.
// bus may be nil (e.g. in tests), in which case the hub only emits
// heartbeats.
func NewEventHub(bus *events.Bus, logger *slog.Logger) *EventHub {
	h := &EventHub{
		logger:     logger,
		clients:    make(map[*eventClient]bool),
		register:   make(chan *eventClient),
		unregister: make(chan *eventClient),
		stop:       make(chan struct{}),
	}

	if bus != nil {
		for _, kind := range []events.Kind{
			events.ConceptNew, events.ConceptRemember, events.ConceptForget,
			events.ConceptBeliefAdd, events.ConceptBeliefRemove,
			events.TaskAdd, events.TaskRemove,
			events.CycleStart, events.CycleEnd,
			events.ResetStart, events.ResetEnd,
		} {
			kind := kind
			bus.Subscribe(kind, func(ev events.Event) { h.broadcastEvent(kind, ev) })
		}
	}

	return h
}

func (h *EventHub) broadcastEvent(kind events.Kind, ev events.Event) {
	msg := WebSocketMessage{
		Type:      kind.String(),
		Subject:   ev.Subject,
		Time:      ev.Time,
		Timestamp: time.Now(),
	}
	h.broadcast(msg)
}

func (h *EventHub) broadcast(msg WebSocketMessage) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.clients {
		select {
		case client.send <- msg:
		default:
			// client is slow; drop rather than block the reasoner's event path.
		}
	}
}

// Run processes registrations and periodic heartbeats until Stop is called.
func (h *EventHub) Run() {
	heartbeat := time.NewTicker(30 * time.Second)
	defer heartbeat.Stop()

	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
			h.logger.Info("websocket client connected", "client_id", client.id)

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()
			h.logger.Info("websocket client disconnected", "client_id", client.id)

		case <-heartbeat.C:
			h.broadcast(WebSocketMessage{Type: messageTypeHeartbeat, Timestamp: time.Now()})

		case <-h.stop:
			h.mu.Lock()
			for client := range h.clients {
				client.conn.Close()
				close(client.send)
				delete(h.clients, client)
			}
			h.mu.Unlock()
			return
		}
	}
}

// Stop shuts down the hub and disconnects every client.
func (h *EventHub) Stop() { close(h.stop) }

// eventsWebsocketHandler upgrades to a WebSocket and streams the event bus
// live (spec §4.7).
func (s *Server) eventsWebsocketHandler(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.logger.Error("failed to upgrade websocket connection", "error", err)
		return
	}

	client := &eventClient{
		id:   uuid.New().String(),
		conn: conn,
		send: make(chan WebSocketMessage, 256),
	}

	s.hub.register <- client
	go client.writePump()
	go client.readPump(s.hub)
}

func (c *eventClient) writePump() {
	ticker := time.NewTicker(54 * time.Second)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(message); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump only exists to detect client disconnects; the stream is
// one-directional (events out), so any inbound frame is discarded.
func (c *eventClient) readPump(h *EventHub) {
	defer func() {
		h.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(512)
	c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			break
		}
	}
}
