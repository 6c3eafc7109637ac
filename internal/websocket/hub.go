package websocket

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"chainpulse/internal/infrastructure"
	"chainpulse/pkg/contracts/domain"
)

// Message types pushed to subscribers.
const (
	TypeConnection  = "connection"
	TypeChainUpdate = "chain_update"
)

// Message is the push envelope.
type Message struct {
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data,omitempty"`
}

// ChainUpdate is the payload of a chain_update message. It summarizes the
// fresh snapshot; subscribers re-fetch the full table over HTTP when they
// care about detail rows.
type ChainUpdate struct {
	Ticker          string                      `json:"ticker"`
	Provider        string                      `json:"provider"`
	FetchedAt       time.Time                   `json:"fetched_at"`
	UnderlyingPrice *float64                    `json:"underlying_price,omitempty"`
	Contracts       int                         `json:"contracts"`
	Expirations     []string                    `json:"expirations"`
	OpenInterest    []domain.StrikeOpenInterest `json:"open_interest"`
}

// Hub maintains the set of active clients and broadcasts messages to them.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client

	mu      sync.RWMutex
	running bool
	quit    chan struct{}

	logger *slog.Logger
}

// NewHub creates a hub.
func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = infrastructure.GetLogger()
	}
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan []byte, 64),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		quit:       make(chan struct{}),
		logger:     logger.With(slog.String("component", "websocket.hub")),
	}
}

// Start launches the hub loop. Safe to call once.
func (h *Hub) Start() {
	h.mu.Lock()
	if h.running {
		h.mu.Unlock()
		return
	}
	h.running = true
	h.mu.Unlock()

	go h.run()
}

// Stop shuts the hub down and closes every client's send channel.
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

func (h *Hub) run() {
	for {
		select {
		case <-h.quit:
			h.mu.Lock()
			for client := range h.clients {
				close(client.send)
				delete(h.clients, client)
			}
			h.mu.Unlock()
			h.logger.Info("hub shut down")
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			count := len(h.clients)
			h.mu.Unlock()
			h.logger.Info("client registered",
				slog.String("client_id", client.id),
				slog.Int("clients", count),
			)

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			count := len(h.clients)
			h.mu.Unlock()
			h.logger.Info("client unregistered",
				slog.String("client_id", client.id),
				slog.Int("clients", count),
			)

		case message := <-h.broadcast:
			h.mu.Lock()
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					// Slow consumer; drop the connection rather than
					// block the hub.
					close(client.send)
					delete(h.clients, client)
					h.logger.Warn("slow client evicted",
						slog.String("client_id", client.id))
				}
			}
			h.mu.Unlock()
		}
	}
}

// Broadcast queues a raw message for every connected client.
func (h *Hub) Broadcast(message []byte) {
	h.mu.RLock()
	running := h.running
	h.mu.RUnlock()
	if !running {
		return
	}

	select {
	case h.broadcast <- message:
	case <-h.quit:
	}
}

// BroadcastChainUpdate pushes a snapshot summary to every subscriber.
func (h *Hub) BroadcastChainUpdate(snapshot *domain.ChainSnapshot) {
	if snapshot == nil {
		return
	}
	msg := Message{
		Type:      TypeChainUpdate,
		Timestamp: time.Now().UTC(),
		Data: ChainUpdate{
			Ticker:          snapshot.Ticker,
			Provider:        snapshot.Provider,
			FetchedAt:       snapshot.FetchedAt,
			UnderlyingPrice: snapshot.UnderlyingPrice,
			Contracts:       len(snapshot.Contracts),
			Expirations:     snapshot.Expirations,
			OpenInterest:    snapshot.OpenInterest,
		},
	}
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("marshal chain update failed",
			slog.String("ticker", snapshot.Ticker),
			slog.String("error", err.Error()),
		)
		return
	}
	h.Broadcast(data)
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
