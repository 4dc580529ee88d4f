package websocket

import (
	"context"
	"encoding/json"
	"log"
	"sync"

	"assembly-rag-be/internal/pkg/logger"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// relayChannel carries trace events between instances, so a watcher
// connected to one node still sees runs executing on another.
const relayChannel = "trace_events"

type Hub struct {
	// Registered watchers: QueryID -> list of clients (several tabs may
	// follow the same run).
	clients map[uuid.UUID][]*Client

	register   chan *Client
	unregister chan *Client

	mu sync.RWMutex

	// Redis connection for cross-instance relay, nil for single node.
	rdb *redis.Client

	logger logger.ILogger
}

func NewHub(rdb *redis.Client, log logger.ILogger) *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[uuid.UUID][]*Client),
		rdb:        rdb,
		logger:     log,
	}
}

func (h *Hub) Run() {
	if h.rdb != nil {
		go h.subscribeToRedis()
	}

	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.QueryID] = append(h.clients[client.QueryID], client)
			h.mu.Unlock()
			h.logger.Info("Hub", "Trace watcher registered", map[string]interface{}{"query_id": client.QueryID})

		case client := <-h.unregister:
			h.mu.Lock()
			if clients, ok := h.clients[client.QueryID]; ok {
				for i, c := range clients {
					if c == client {
						h.clients[client.QueryID] = append(clients[:i], clients[i+1:]...)
						close(client.Send)
						break
					}
				}
				if len(h.clients[client.QueryID]) == 0 {
					delete(h.clients, client.QueryID)
					h.logger.Info("Hub", "Last trace watcher left", map[string]interface{}{"query_id": client.QueryID})
				}
			}
			h.mu.Unlock()
		}
	}
}

// Send delivers a trace event to every watcher of a run, local first, then
// through Redis for watchers connected to other instances.
func (h *Hub) Send(queryID uuid.UUID, event interface{}) {
	data, _ := json.Marshal(map[string]interface{}{
		"type": "trace",
		"data": event,
	})

	h.deliverLocal(queryID, data)

	if h.rdb != nil {
		payload, _ := json.Marshal(map[string]interface{}{
			"target_query_id": queryID.String(),
			"message":         json.RawMessage(data),
		})
		h.rdb.Publish(context.Background(), relayChannel, payload)
	}
}

// Broadcast tells every connected watcher something global happened, such
// as freshly indexed minutes invalidating cached answers.
func (h *Hub) Broadcast(messageType string, data interface{}) {
	payload, _ := json.Marshal(map[string]interface{}{
		"type": messageType,
		"data": data,
	})

	h.mu.RLock()
	var stale []*Client
	for _, clients := range h.clients {
		for _, client := range clients {
			select {
			case client.Send <- payload:
			default:
				stale = append(stale, client)
			}
		}
	}
	h.mu.RUnlock()
	h.dropStale(stale)

	if h.rdb != nil {
		relay, _ := json.Marshal(map[string]interface{}{
			"target_query_id": "*",
			"message":         json.RawMessage(payload),
		})
		h.rdb.Publish(context.Background(), relayChannel, relay)
	}
}

func (h *Hub) deliverLocal(queryID uuid.UUID, data []byte) {
	h.mu.RLock()
	clients := h.clients[queryID]
	var stale []*Client
	for _, client := range clients {
		select {
		case client.Send <- data:
		default:
			h.logger.Warn("Hub", "Watcher buffer full, dropping", map[string]interface{}{"query_id": queryID})
			stale = append(stale, client)
		}
	}
	h.mu.RUnlock()
	h.dropStale(stale)
}

// dropStale unregisters clients outside any lock, since Run needs the
// write lock to process them.
func (h *Hub) dropStale(stale []*Client) {
	for _, client := range stale {
		h.unregister <- client
	}
}

func (h *Hub) subscribeToRedis() {
	ctx := context.Background()
	pubsub := h.rdb.Subscribe(ctx, relayChannel)
	defer pubsub.Close()

	for msg := range pubsub.Channel() {
		var payload struct {
			TargetQueryID string          `json:"target_query_id"`
			Message       json.RawMessage `json:"message"`
		}
		if err := json.Unmarshal([]byte(msg.Payload), &payload); err != nil {
			log.Printf("Redis msg parse error: %v", err)
			continue
		}

		if payload.TargetQueryID == "*" {
			h.mu.RLock()
			var stale []*Client
			for _, clients := range h.clients {
				for _, client := range clients {
					select {
					case client.Send <- payload.Message:
					default:
						stale = append(stale, client)
					}
				}
			}
			h.mu.RUnlock()
			h.dropStale(stale)
			continue
		}

		qid, err := uuid.Parse(payload.TargetQueryID)
		if err != nil {
			continue
		}
		h.deliverLocal(qid, payload.Message)
	}
}
