// Package realtime pushes live board updates to connected shop dashboards over
// WebSocket, with a Redis pub/sub bridge for cross-instance fan-out.
package realtime

import (
	"encoding/json"
	"sync"

	"go.uber.org/zap"
)

const (
	// PingInterval and PongWait drive the connection heartbeat, in seconds.
	PingInterval = 30
	PongWait     = 60
)

// Event names pushed to dashboards.
const (
	EventWashStatusChanged = "wash.status_changed"
	EventViewerCount       = "viewer_count"
)

// Hub maintains shop_id -> set of connections and broadcasts messages.
// Uses Redis pub/sub for horizontal scaling: local broadcast + publish to Redis.
type Hub struct {
	// shopID -> map[clientID]*Client
	shops    map[int64]map[string]*Client
	subs     map[int64]func() // cancel Redis subscription per shop
	mu       sync.RWMutex
	logger   *zap.Logger
	redis    RedisPublisher
	redisSub RedisSubscriber
}

// RedisPublisher publishes shop events for cross-instance broadcast.
type RedisPublisher interface {
	PublishShopEvent(shopID int64, event string, payload []byte) error
}

// RedisSubscriber subscribes to shop channels and invokes handler for incoming events.
type RedisSubscriber interface {
	SubscribeShop(shopID int64, handler func(event string, payload []byte)) (cancel func(), err error)
}

// NewHub creates a new WebSocket hub.
func NewHub(logger *zap.Logger, redisPub RedisPublisher, redisSub RedisSubscriber) *Hub {
	return &Hub{
		shops:    make(map[int64]map[string]*Client),
		subs:     make(map[int64]func()),
		logger:   logger,
		redis:    redisPub,
		redisSub: redisSub,
	}
}

// Register adds a client to a shop room. Starts the Redis subscription for the
// shop when its first client connects.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	if h.shops[c.ShopID] == nil {
		h.shops[c.ShopID] = make(map[string]*Client)
		if h.redisSub != nil {
			cancel, err := h.redisSub.SubscribeShop(c.ShopID, func(event string, payload []byte) {
				h.BroadcastToShop(c.ShopID, event, json.RawMessage(payload))
			})
			if err == nil {
				h.subs[c.ShopID] = cancel
			}
		}
	}
	h.shops[c.ShopID][c.ID] = c
	h.mu.Unlock()
	h.logger.Debug("dashboard connected", zap.String("client_id", c.ID), zap.Int64("shop_id", c.ShopID))
}

// Unregister removes a client from a shop room. Cancels the Redis subscription
// when the last client leaves.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	if m, ok := h.shops[c.ShopID]; ok {
		delete(m, c.ID)
		if len(m) == 0 {
			delete(h.shops, c.ShopID)
			if cancel, ok := h.subs[c.ShopID]; ok {
				cancel()
				delete(h.subs, c.ShopID)
			}
		}
	}
	h.mu.Unlock()
	h.logger.Debug("dashboard disconnected", zap.String("client_id", c.ID), zap.Int64("shop_id", c.ShopID))
}

// BroadcastToShop sends a message to all clients of a shop (local only).
func (h *Hub) BroadcastToShop(shopID int64, event string, payload interface{}) {
	var data []byte
	switch v := payload.(type) {
	case []byte:
		data = v
	case json.RawMessage:
		data = v
	default:
		data, _ = json.Marshal(payload)
	}
	msg := WSMessage{Event: event, Data: data}

	h.mu.RLock()
	clients := h.shops[shopID]
	h.mu.RUnlock()

	if clients == nil {
		return
	}
	for _, c := range clients {
		select {
		case c.send <- msg:
		default:
			// buffer full, skip
		}
	}
}

// BroadcastAndPublish sends to local clients and publishes to Redis for other
// instances.
func (h *Hub) BroadcastAndPublish(shopID int64, event string, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	h.BroadcastToShop(shopID, event, json.RawMessage(data))
	if h.redis != nil {
		_ = h.redis.PublishShopEvent(shopID, event, data)
	}
}

// PublishOnly publishes to Redis without a local broadcast: the subscriber
// callback performs the broadcast once for all instances, this one included,
// so local dashboards never see the event twice. Falls back to a local
// broadcast when Redis is not wired.
func (h *Hub) PublishOnly(shopID int64, event string, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	if h.redis != nil {
		_ = h.redis.PublishShopEvent(shopID, event, data)
		return
	}
	h.BroadcastToShop(shopID, event, json.RawMessage(data))
}

// ViewerCount returns the number of connected dashboards for a shop.
func (h *Hub) ViewerCount(shopID int64) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.shops[shopID])
}
