// Package websocket pushes dataset lifecycle events to connected dashboards.
// The hub fans a single broadcast channel out to every registered client;
// clients that cannot keep up are dropped rather than allowed to stall the
// rest.
package websocket

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/metric"

	"github.com/eyecrackcodes/agentsummary/internal/infrastructure"
	"github.com/eyecrackcodes/agentsummary/pkg/contracts/events"
)

// Hub maintains the set of active clients and broadcasts messages to them
type Hub struct {
	// Registered clients
	clients map[*Client]bool

	// Inbound messages destined for every client
	broadcast chan []byte

	// Register requests from the clients
	register chan *Client

	// Unregister requests from clients
	unregister chan *Client

	mu sync.RWMutex

	logger *slog.Logger

	// Optional gauge wired from the otel setup
	clientGauge metric.Int64UpDownCounter

	// Counters
	totalConnections int64
	messagesSent     int64

	quit    chan struct{}
	running bool
}

// NewHub creates a new Hub instance
func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(slog.String("component", "websocket.hub"))

	return &Hub{
		broadcast:  make(chan []byte, 16),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[*Client]bool),
		logger:     logger,
		quit:       make(chan struct{}),
	}
}

// SetClientGauge wires the connected-clients instrument into the hub
func (h *Hub) SetClientGauge(gauge metric.Int64UpDownCounter) {
	h.clientGauge = gauge
}

// Start launches the hub's main loop. Safe to call more than once.
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

// Run processes register, unregister and broadcast requests until Stop
func (h *Hub) Run() {
	for {
		select {
		case <-h.quit:
			// Channel closure stays in this goroutine so a broadcast in
			// flight can never send on a just-closed channel.
			h.mu.Lock()
			for client := range h.clients {
				close(client.send)
				delete(h.clients, client)
			}
			h.mu.Unlock()
			h.logger.Info("Hub shutting down")
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			count := len(h.clients)
			h.totalConnections++
			h.mu.Unlock()

			ctx := clientContext(client)
			h.logger.InfoContext(ctx, "Client registered",
				slog.Int("total_clients", count),
				slog.String("client_id", client.id),
				slog.String("remote_addr", client.remoteAddr))

			if h.clientGauge != nil {
				h.clientGauge.Add(ctx, 1)
			}

			// Greet the new client so the dashboard knows the channel is live
			h.sendDirect(ctx, client, events.Message{
				BaseMessage: events.BaseMessage{
					ID:        uuid.New().String(),
					Type:      events.MessageTypeConnect,
					Timestamp: time.Now().UTC(),
					TraceID:   client.traceID,
				},
				Data: map[string]interface{}{
					"status":    "connected",
					"client_id": client.id,
				},
			})

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
				count := len(h.clients)
				h.mu.Unlock()

				ctx := clientContext(client)
				h.logger.InfoContext(ctx, "Client unregistered",
					slog.Int("total_clients", count),
					slog.String("client_id", client.id),
					slog.Duration("connection_duration", time.Since(client.connectedAt)))

				if h.clientGauge != nil {
					h.clientGauge.Add(ctx, -1)
				}
			} else {
				h.mu.Unlock()
			}

		case message := <-h.broadcast:
			h.mu.RLock()
			clients := make([]*Client, 0, len(h.clients))
			for client := range h.clients {
				clients = append(clients, client)
			}
			h.mu.RUnlock()

			successCount := 0
			failCount := 0

			for _, client := range clients {
				select {
				case client.send <- message:
					successCount++
					h.messagesSent++
				default:
					failCount++
					// Client's send channel is full, drop it
					h.mu.Lock()
					close(client.send)
					delete(h.clients, client)
					h.mu.Unlock()

					h.logger.WarnContext(clientContext(client), "Client send buffer full, disconnecting",
						slog.String("client_id", client.id))
					if h.clientGauge != nil {
						h.clientGauge.Add(clientContext(client), -1)
					}
				}
			}

			if failCount > 0 {
				h.logger.Warn("Some clients failed to receive broadcast",
					slog.Int("success_count", successCount),
					slog.Int("fail_count", failCount))
			}
		}
	}
}

// BroadcastDatasetRefreshed announces a freshly loaded dataset to every client
func (h *Hub) BroadcastDatasetRefreshed(payload events.DatasetRefreshed, traceID string) {
	h.Broadcast(events.Message{
		BaseMessage: events.BaseMessage{
			ID:        uuid.New().String(),
			Type:      events.MessageTypeDatasetRefreshed,
			Timestamp: time.Now().UTC(),
			TraceID:   traceID,
		},
		Data: payload,
	})
}

// BroadcastSystemStatus pushes a system status snapshot to every client
func (h *Hub) BroadcastSystemStatus(payload events.SystemStatus) {
	h.Broadcast(events.Message{
		BaseMessage: events.BaseMessage{
			ID:        uuid.New().String(),
			Type:      events.MessageTypeSystemStatus,
			Timestamp: time.Now().UTC(),
		},
		Data: payload,
	})
}

// BroadcastError pushes an error event to every client
func (h *Hub) BroadcastError(code, message string, fatal bool) {
	h.Broadcast(events.Message{
		BaseMessage: events.BaseMessage{
			ID:        uuid.New().String(),
			Type:      events.MessageTypeError,
			Timestamp: time.Now().UTC(),
		},
		Data: events.ErrorData{Code: code, Message: message, Fatal: fatal},
	})
}

// Broadcast marshals the message and queues it for every connected client
func (h *Hub) Broadcast(message events.Message) {
	jsonData, err := json.Marshal(message)
	if err != nil {
		h.logger.Error("Error marshaling message",
			slog.String("error", err.Error()),
			slog.String("message_type", string(message.Type)))
		return
	}

	select {
	case h.broadcast <- jsonData:
	case <-h.quit:
	}
}

// sendDirect queues a message for a single client, skipping the broadcast fan-out
func (h *Hub) sendDirect(ctx context.Context, client *Client, message events.Message) {
	jsonData, err := json.Marshal(message)
	if err != nil {
		h.logger.ErrorContext(ctx, "Error marshaling message",
			slog.String("error", err.Error()),
			slog.String("message_type", string(message.Type)))
		return
	}

	select {
	case client.send <- jsonData:
	default:
		h.logger.WarnContext(ctx, "Failed to send message - client buffer full",
			slog.String("client_id", client.id))
	}
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Register queues a client for registration with the hub
func (h *Hub) Register(client *Client) {
	h.register <- client
}

// Stop signals the hub to shut down. The run loop closes the client
// channels itself, so no send can race the closure.
func (h *Hub) Stop() {
	h.mu.Lock()
	if !h.running {
		h.mu.Unlock()
		return
	}
	h.running = false
	h.mu.Unlock()

	close(h.quit)
}

func clientContext(client *Client) context.Context {
	ctx := context.Background()
	if client.traceID != "" {
		ctx = infrastructure.WithTraceID(ctx, client.traceID)
	}
	return ctx
}
