package notifier

import (
	"sync"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"mobil_kargo/internal/models"
)

// Conn is the write side of a live channel. *websocket.Conn satisfies it.
type Conn interface {
	WriteJSON(v interface{}) error
	Close() error
}

// SyncConn serializes writes to an underlying channel. gorilla/websocket
// allows only one concurrent writer per connection, and a registered channel
// can be written by the hub and by its own read loop at the same time, so
// both paths must go through the same wrapper.
type SyncConn struct {
	mu   sync.Mutex
	conn Conn
}

// NewSyncConn wraps c behind a write mutex.
func NewSyncConn(c Conn) *SyncConn {
	return &SyncConn{conn: c}
}

func (s *SyncConn) WriteJSON(v interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn.WriteJSON(v)
}

func (s *SyncConn) Close() error {
	return s.conn.Close()
}

// Hub is the live-connection registry: user id -> set of open channels.
// It is a disposable, process-local cache of who is currently reachable and
// never authoritative state. Delivery is best-effort, at most once; a failed
// write removes that channel and is never surfaced to the business operation
// that triggered it.
//
// The hub is created at process start, passed explicitly to the handlers
// that need it, and drained at shutdown via Close.
type Hub struct {
	mu      sync.Mutex
	clients map[uint]map[Conn]bool
}

// NewHub creates an empty registry.
func NewHub() *Hub {
	return &Hub{clients: make(map[uint]map[Conn]bool)}
}

// Register adds a channel for the user. A user may hold several channels at
// once (multi-device).
func (h *Hub) Register(userID uint, c Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[userID] == nil {
		h.clients[userID] = make(map[Conn]bool)
	}
	h.clients[userID][c] = true
	logrus.WithFields(logrus.Fields{"user_id": userID, "connections": len(h.clients[userID])}).
		Info("live channel registered")
}

// Unregister removes the channel; the user entry disappears with its last
// channel.
func (h *Hub) Unregister(userID uint, c Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(userID, c)
}

func (h *Hub) removeLocked(userID uint, c Conn) {
	conns, ok := h.clients[userID]
	if !ok {
		return
	}
	delete(conns, c)
	if len(conns) == 0 {
		delete(h.clients, userID)
	}
}

// Connections reports how many channels the user currently holds.
func (h *Hub) Connections(userID uint) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients[userID])
}

// SendTo delivers the event to every channel the user holds. A write failure
// on one channel closes and removes that channel only; the other channels
// still receive the event and the caller never sees an error.
func (h *Hub) SendTo(userID uint, ev Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients[userID] {
		if err := c.WriteJSON(ev); err != nil {
			logrus.WithError(err).WithFields(logrus.Fields{"user_id": userID, "event": ev.Type}).
				Warn("live channel write failed, dropping channel")
			h.removeLocked(userID, c)
			c.Close()
		}
	}
}

// SendToAll unicasts the event to each listed user.
func (h *Hub) SendToAll(userIDs []uint, ev Event) {
	for _, id := range userIDs {
		h.SendTo(id, ev)
	}
}

// BroadcastLocation pushes a courier location event to the customers of the
// courier's active orders (assigned, picked_up, in_transit).
func (h *Hub) BroadcastLocation(db *gorm.DB, courierID uint, ev Event) {
	var customerIDs []uint
	err := db.Model(&models.Order{}).
		Distinct("customer_id").
		Where("courier_id = ? AND status IN ?", courierID, models.ActiveStatuses).
		Pluck("customer_id", &customerIDs).Error
	if err != nil {
		logrus.WithError(err).WithField("courier_id", courierID).
			Warn("could not resolve active-order customers for location broadcast")
		return
	}
	h.SendToAll(customerIDs, ev)
}

// Close drains the registry, closing every channel. Called at shutdown.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for userID, conns := range h.clients {
		for c := range conns {
			c.Close()
		}
		delete(h.clients, userID)
	}
}
