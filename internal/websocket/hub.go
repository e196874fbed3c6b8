package websocket

import (
	"context"
	"encoding/json"
	"log"
	"sync"

	"admissions-rag-be/internal/pkg/logger"

	"github.com/redis/go-redis/v9"
)

const clusterChannel = "cluster_events"

// Hub tracks connected chat clients per user key. It is used to push
// server-side notices (session cleared, config reloaded) to open
// connections, across instances via Redis pub/sub.
type Hub struct {
	// Registered clients map: UserKey -> List of Clients (multi-device)
	clients map[string][]*Client

	// Register requests from the clients.
	register chan *Client

	// Unregister requests from clients.
	unregister chan *Client

	// Lock for safe map access
	mu sync.RWMutex

	// Redis connection for cross-instance communication
	rdb *redis.Client

	// Dedicated Logger
	logger logger.ILogger
}

func NewHub(rdb *redis.Client, log logger.ILogger) *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[string][]*Client),
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
			h.clients[client.UserKey] = append(h.clients[client.UserKey], client)
			h.mu.Unlock()
			h.logger.Info("Hub", "Client registered", map[string]interface{}{"user_key": client.UserKey})

		case client := <-h.unregister:
			h.mu.Lock()
			if clients, ok := h.clients[client.UserKey]; ok {
				for i, c := range clients {
					if c == client {
						h.clients[client.UserKey] = append(clients[:i], clients[i+1:]...)
						close(client.Send)
						break
					}
				}
				if len(h.clients[client.UserKey]) == 0 {
					delete(h.clients, client.UserKey)
					h.logger.Info("Hub", "Client completely unregistered", map[string]interface{}{"user_key": client.UserKey})
				}
			}
			h.mu.Unlock()
		}
	}
}

// Broadcast pushes a notice to ALL connected clients.
func (h *Hub) Broadcast(notice interface{}) {
	data, _ := json.Marshal(map[string]interface{}{
		"type": "notice",
		"data": notice,
	})

	h.mu.RLock()
	for _, clients := range h.clients {
		for _, client := range clients {
			select {
			case client.Send <- data:
			default:
				close(client.Send)
				h.unregister <- client
			}
		}
	}
	h.mu.RUnlock()

	if h.rdb != nil {
		payload := map[string]interface{}{
			"target_user_key": "*", // Wildcard for broadcast
			"message":         json.RawMessage(data),
		}
		jsonPayload, _ := json.Marshal(payload)
		h.rdb.Publish(context.Background(), clusterChannel, jsonPayload)
	}
}

// Notify pushes a notice to a single user's connections.
func (h *Hub) Notify(userKey string, notice interface{}) {
	data, _ := json.Marshal(map[string]interface{}{
		"type": "notice",
		"data": notice,
	})

	h.mu.RLock()
	clients, localFound := h.clients[userKey]
	h.mu.RUnlock()

	if localFound {
		for _, client := range clients {
			select {
			case client.Send <- data:
			default:
				h.logger.Warn("Hub", "Client Send buffer full, dropping message", map[string]interface{}{"user_key": userKey})
				close(client.Send)
				h.unregister <- client
			}
		}
	}

	// Always publish for multi-instance deployments: the user may be
	// connected elsewhere.
	if h.rdb != nil {
		payload := map[string]interface{}{
			"target_user_key": userKey,
			"message":         json.RawMessage(data),
		}
		jsonPayload, _ := json.Marshal(payload)
		h.rdb.Publish(context.Background(), clusterChannel, jsonPayload)
	}
}

func (h *Hub) subscribeToRedis() {
	// All instances subscribe to the cluster channel. When a message
	// arrives, deliver it to locally connected targets only.
	ctx := context.Background()
	pubsub := h.rdb.Subscribe(ctx, clusterChannel)
	defer pubsub.Close()

	ch := pubsub.Channel()

	for msg := range ch {
		var payload struct {
			TargetUserKey string          `json:"target_user_key"`
			Message       json.RawMessage `json:"message"`
		}
		if err := json.Unmarshal([]byte(msg.Payload), &payload); err != nil {
			log.Printf("Redis msg parse error: %v", err)
			continue
		}

		if payload.TargetUserKey == "*" {
			h.mu.RLock()
			for _, clients := range h.clients {
				for _, client := range clients {
					select {
					case client.Send <- payload.Message:
					default:
						close(client.Send)
						h.unregister <- client
					}
				}
			}
			h.mu.RUnlock()
			continue
		}

		h.mu.RLock()
		clients, ok := h.clients[payload.TargetUserKey]
		h.mu.RUnlock()

		if ok {
			for _, client := range clients {
				select {
				case client.Send <- payload.Message:
				default:
					close(client.Send)
					h.unregister <- client
				}
			}
		}
	}
}
