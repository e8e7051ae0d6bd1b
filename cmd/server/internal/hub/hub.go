package hub

import (
	"encoding/json"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fasihgithub/LivePricesProject/cmd/server/internal/protocol"
	"github.com/fasihgithub/LivePricesProject/cmd/server/internal/registry"
	"github.com/fasihgithub/LivePricesProject/pkg/models"
)

// Conn is one subscriber transport session. SendBytes must never block
// the caller: implementations enqueue onto their own outbound path and
// deal with slow or broken peers themselves.
type Conn interface {
	ReadMessage() ([]byte, error)
	SendBytes(b []byte)
	Close() error
}

// Hub owns the set of live subscriber connections. Each published quote
// is fanned out to every connection subscribed to its symbol; each
// connection gets its own control loop that feeds the subscription
// registry and guarantees teardown when the transport dies.
type Hub struct {
	registry *registry.Registry
	logger   *zap.Logger

	mu    sync.RWMutex
	conns map[string]Conn
}

func NewHub(reg *registry.Registry, logger *zap.Logger) *Hub {
	return &Hub{
		registry: reg,
		logger:   logger,
		conns:    make(map[string]Conn),
	}
}

// Add registers the connection under a fresh id and starts its control
// loop. Returns immediately; the loop runs until the transport closes.
func (h *Hub) Add(c Conn) string {
	id := uuid.NewString()

	h.mu.Lock()
	h.conns[id] = c
	h.mu.Unlock()
	h.registry.Register(id)

	h.logger.Info("Client connected", zap.String("conn_id", id), zap.Int("total", h.Count()))

	go h.controlLoop(id, c)
	return id
}

// Remove tears the connection down: live set, registry entry, then a
// best-effort transport close. Idempotent, callable from any path.
func (h *Hub) Remove(id string) {
	h.mu.Lock()
	c, ok := h.conns[id]
	delete(h.conns, id)
	h.mu.Unlock()

	h.registry.Unregister(id)

	if !ok {
		return
	}
	if err := c.Close(); err != nil {
		h.logger.Warn("Error closing connection", zap.String("conn_id", id), zap.Error(err))
	}
	h.logger.Info("Client removed", zap.String("conn_id", id), zap.Int("total", h.Count()))
}

// Publish fans the quote out to every live connection subscribed to its
// symbol. Each delivery goes through that connection's own send path, so
// one slow or dead subscriber cannot hold up the rest. A quote nobody
// wants costs nothing beyond the subscription checks.
func (h *Hub) Publish(q models.Quote) {
	payload, err := json.Marshal(q)
	if err != nil {
		h.logger.Error("Failed to serialize quote", zap.String("symbol", q.Symbol), zap.Error(err))
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for id, c := range h.conns {
		if h.registry.IsSubscribed(id, q.Symbol) {
			c.SendBytes(payload)
		}
	}
}

// Count returns the number of live connections.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns)
}

// HandleControl applies one inbound control message for the connection.
// Malformed messages are logged and dropped; the caller's loop continues.
func (h *Hub) HandleControl(id string, raw []byte) {
	var msg protocol.ControlMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		h.logger.Warn("Invalid control message", zap.String("conn_id", id), zap.Error(err))
		return
	}
	if len(msg.Symbols) == 0 {
		h.logger.Warn("Control message without symbols", zap.String("conn_id", id), zap.String("action", msg.Action))
		return
	}

	switch strings.ToLower(msg.Action) {
	case protocol.ActionSubscribe:
		h.registry.Subscribe(id, msg.Symbols)
		h.logger.Info("Subscribed", zap.String("conn_id", id), zap.Strings("symbols", msg.Symbols))
	case protocol.ActionUnsubscribe:
		h.registry.Unsubscribe(id, msg.Symbols)
		h.logger.Info("Unsubscribed", zap.String("conn_id", id), zap.Strings("symbols", msg.Symbols))
	default:
		h.logger.Warn("Unknown action", zap.String("conn_id", id), zap.String("action", msg.Action))
	}
}

func (h *Hub) controlLoop(id string, c Conn) {
	defer h.Remove(id)

	for {
		raw, err := c.ReadMessage()
		if err != nil {
			h.logger.Debug("Control loop ended", zap.String("conn_id", id), zap.Error(err))
			return
		}
		h.HandleControl(id, raw)
	}
}
