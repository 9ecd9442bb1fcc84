package websocket

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/phetchalermchai/it-inventory/internal/infrastructure"
	"github.com/phetchalermchai/it-inventory/pkg/contracts/events"
)

// HubStats is a snapshot of hub counters
type HubStats struct {
	ActiveClients    int   `json:"active_clients"`
	TotalConnections int64 `json:"total_connections"`
	MessagesSent     int64 `json:"messages_sent"`
	MessagesDropped  int64 `json:"messages_dropped"`
}

// Hub maintains the set of active clients and broadcasts messages to the clients
type Hub struct {
	// Registered clients
	clients map[*Client]bool

	// Outbound messages for every client
	broadcast chan []byte

	// Register requests from the clients
	register chan *Client

	// Unregister requests from clients
	unregister chan *Client

	mu      sync.RWMutex
	opts    Options
	logger  *slog.Logger
	metrics *infrastructure.BusinessMetrics

	totalConnections int64
	messagesSent     int64
	messagesDropped  int64

	// Control
	quit    chan struct{}
	done    chan struct{}
	running bool
}

// NewHub creates a new Hub instance with dependency injection
func NewHub(logger *slog.Logger, opts Options) *Hub {
	if logger == nil {
		logger = infrastructure.GetLogger()
	}
	if opts.SendBuffer <= 0 {
		opts = DefaultOptions()
	}

	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan []byte, 64),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		opts:       opts,
		logger:     logger.With(slog.String("component", "websocket.hub")),
		quit:       make(chan struct{}),
		done:       make(chan struct{}),
	}
}

// WithMetrics attaches business metrics for the connected client gauge
func (h *Hub) WithMetrics(metrics *infrastructure.BusinessMetrics) *Hub {
	h.metrics = metrics
	return h
}

// Options returns the hub's client options
func (h *Hub) Options() Options {
	return h.opts
}

// Start starts the hub loop in its own goroutine
func (h *Hub) Start() {
	h.mu.Lock()
	if h.running {
		h.mu.Unlock()
		return
	}
	h.running = true
	h.mu.Unlock()

	go h.Run()
}

// Run is the hub's main loop. Only Run closes client send channels.
func (h *Hub) Run() {
	defer close(h.done)

	for {
		select {
		case <-h.quit:
			h.mu.Lock()
			count := len(h.clients)
			for client := range h.clients {
				close(client.send)
				delete(h.clients, client)
			}
			h.mu.Unlock()
			h.recordClientsDelta(context.Background(), -int64(count))
			h.logger.Info("Hub shutting down", slog.Int("disconnected", count))
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			count := len(h.clients)
			h.totalConnections++
			h.mu.Unlock()

			ctx := client.context()
			h.recordClientsDelta(ctx, 1)
			h.logger.InfoContext(ctx, "Client registered",
				slog.Int("total_clients", count),
				slog.String("client_id", client.id),
				slog.String("remote_addr", client.remoteAddr))

			h.greet(ctx, client)

		case client := <-h.unregister:
			h.remove(client, "Client unregistered")

		case message := <-h.broadcast:
			h.fanOut(message)
		}
	}
}

func (h *Hub) greet(ctx context.Context, client *Client) {
	msg := events.NewMessage(events.MessageTypeConnection, client.traceID, events.ConnectionEvent{
		Status:   "connected",
		ClientID: client.id,
		Message:  "Connected to IT inventory dashboard",
	})
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}

	select {
	case client.send <- data:
	default:
		h.logger.WarnContext(ctx, "Failed to send connection message - client buffer full",
			slog.String("client_id", client.id))
	}
}

func (h *Hub) fanOut(message []byte) {
	h.mu.RLock()
	clients := make([]*Client, 0, len(h.clients))
	for client := range h.clients {
		clients = append(clients, client)
	}
	h.mu.RUnlock()

	sent := 0
	for _, client := range clients {
		select {
		case client.send <- message:
			sent++
		default:
			h.remove(client, "Client send buffer full, disconnecting")
		}
	}

	h.mu.Lock()
	h.messagesSent += int64(sent)
	h.messagesDropped += int64(len(clients) - sent)
	h.mu.Unlock()

	h.logger.Debug("Broadcast delivered",
		slog.Int("client_count", len(clients)),
		slog.Int("delivered", sent),
		slog.Int("message_size", len(message)))
}

func (h *Hub) remove(client *Client, reason string) {
	h.mu.Lock()
	if _, ok := h.clients[client]; !ok {
		h.mu.Unlock()
		return
	}
	delete(h.clients, client)
	close(client.send)
	count := len(h.clients)
	h.mu.Unlock()

	ctx := client.context()
	h.recordClientsDelta(ctx, -1)
	h.logger.InfoContext(ctx, reason,
		slog.Int("total_clients", count),
		slog.String("client_id", client.id),
		slog.Duration("connection_duration", client.connectedFor()))
}

func (h *Hub) recordClientsDelta(ctx context.Context, delta int64) {
	if h.metrics == nil || h.metrics.WebSocketClients == nil {
		return
	}
	h.metrics.WebSocketClients.Add(ctx, delta)
}

// Broadcast queues a message of messageType for every connected client.
// data may be a ready events.WebSocketMessage or a bare payload.
func (h *Hub) Broadcast(messageType string, data interface{}) {
	msg, ok := data.(events.WebSocketMessage)
	if !ok {
		msg = events.NewMessage(events.MessageType(messageType), "", data)
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("Error marshaling message",
			slog.String("error", err.Error()),
			slog.String("message_type", messageType))
		return
	}

	select {
	case h.broadcast <- payload:
	case <-h.quit:
	}
}

// Register adds a client to the hub
func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.quit:
		close(client.send)
	}
}

// Unregister removes a client from the hub
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.quit:
	}
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Stats returns current hub counters
func (h *Hub) Stats() HubStats {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return HubStats{
		ActiveClients:    len(h.clients),
		TotalConnections: h.totalConnections,
		MessagesSent:     h.messagesSent,
		MessagesDropped:  h.messagesDropped,
	}
}

// Stop gracefully stops the hub and disconnects every client
func (h *Hub) Stop() {
	h.mu.Lock()
	if !h.running {
		h.mu.Unlock()
		return
	}
	h.running = false
	h.mu.Unlock()

	close(h.quit)
	<-h.done
}
