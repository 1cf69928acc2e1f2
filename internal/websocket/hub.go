package websocket

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/NomadCrew/feedback-desk/logger"
	"github.com/NomadCrew/feedback-desk/types"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"nhooyr.io/websocket"
)

// ErrHubClosed is returned by Register after Shutdown.
var ErrHubClosed = errors.New("websocket hub is shut down")

// Hub tracks the staff connections streaming feedback events. A staff
// member may hold several connections, one per open console or tab; each
// gets its own publisher subscription.
type Hub struct {
	log          *zap.SugaredLogger
	publisher    EventSubscriber
	connections  map[string]*Connection // connection ID -> connection
	mu           sync.RWMutex
	shutdownOnce sync.Once
	closed       bool
	pingInterval time.Duration
	writeTimeout time.Duration
}

// EventSubscriber is the subscribing half of types.EventPublisher.
type EventSubscriber interface {
	Subscribe(ctx context.Context, subscriberID string, filters ...types.EventType) (<-chan types.Event, error)
	Unsubscribe(ctx context.Context, subscriberID string) error
}

// Connection is one staff websocket and its event subscription.
type Connection struct {
	ID      string
	StaffID string
	Conn    *websocket.Conn
	Filters []types.EventType
	events  <-chan types.Event
	mu      sync.Mutex
	closed  bool
}

// HubConfig contains configuration options for the Hub.
type HubConfig struct {
	PingInterval time.Duration
	WriteTimeout time.Duration
}

func DefaultHubConfig() HubConfig {
	return HubConfig{
		PingInterval: 30 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
}

func NewHub(publisher EventSubscriber, cfg ...HubConfig) *Hub {
	config := DefaultHubConfig()
	if len(cfg) > 0 {
		config = cfg[0]
	}

	return &Hub{
		log:          logger.GetLogger().Named("websocket_hub"),
		publisher:    publisher,
		connections:  make(map[string]*Connection),
		pingInterval: config.PingInterval,
		writeTimeout: config.WriteTimeout,
	}
}

// Register subscribes a new connection to the publisher. The subscription
// ends with ctx, Unregister or Shutdown.
func (h *Hub) Register(ctx context.Context, staffID string, conn *websocket.Conn, filters ...types.EventType) (*Connection, error) {
	h.mu.RLock()
	closed := h.closed
	h.mu.RUnlock()
	if closed {
		return nil, ErrHubClosed
	}

	id := staffID + ":" + uuid.NewString()
	events, err := h.publisher.Subscribe(ctx, id, filters...)
	if err != nil {
		h.log.Errorw("Failed to subscribe websocket connection",
			"staffID", staffID,
			"error", err)
		return nil, err
	}

	connection := &Connection{
		ID:      id,
		StaffID: staffID,
		Conn:    conn,
		Filters: filters,
		events:  events,
	}

	h.mu.Lock()
	h.connections[id] = connection
	h.mu.Unlock()

	h.log.Infow("WebSocket connection registered",
		"staffID", staffID,
		"connectionID", id,
		"filters", filters)
	return connection, nil
}

// Unregister removes a connection and ends its subscription.
func (h *Hub) Unregister(connectionID string) {
	h.mu.Lock()
	conn, ok := h.connections[connectionID]
	if !ok {
		h.mu.Unlock()
		return
	}
	delete(h.connections, connectionID)
	h.mu.Unlock()

	h.closeConnection(conn, websocket.StatusNormalClosure, "unregistered")
}

func (h *Hub) closeConnection(conn *Connection, code websocket.StatusCode, reason string) {
	conn.mu.Lock()
	if conn.closed {
		conn.mu.Unlock()
		return
	}
	conn.closed = true
	conn.mu.Unlock()

	// The subscription may already be gone if its context ended first.
	_ = h.publisher.Unsubscribe(context.Background(), conn.ID)

	if conn.Conn != nil {
		_ = conn.Conn.Close(code, reason)
	}

	h.log.Infow("WebSocket connection closed",
		"staffID", conn.StaffID,
		"connectionID", conn.ID,
		"reason", reason)
}

// ConnectedStaff returns the distinct staff IDs with an open connection.
func (h *Hub) ConnectedStaff() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	seen := make(map[string]bool, len(h.connections))
	staff := make([]string, 0, len(h.connections))
	for _, conn := range h.connections {
		if !seen[conn.StaffID] {
			seen[conn.StaffID] = true
			staff = append(staff, conn.StaffID)
		}
	}
	return staff
}

func (h *Hub) ConnectionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.connections)
}

// Shutdown closes every connection with StatusGoingAway. Later Register
// calls fail with ErrHubClosed.
func (h *Hub) Shutdown(ctx context.Context) error {
	h.shutdownOnce.Do(func() {
		h.mu.Lock()
		h.closed = true
		connections := make([]*Connection, 0, len(h.connections))
		for _, conn := range h.connections {
			connections = append(connections, conn)
		}
		h.connections = make(map[string]*Connection)
		h.mu.Unlock()

		for _, conn := range connections {
			h.closeConnection(conn, websocket.StatusGoingAway, "server shutdown")
		}
	})

	h.log.Info("WebSocket hub shutdown complete")
	return nil
}

// Events returns the connection's subscription channel. It is closed when
// the subscription ends.
func (c *Connection) Events() <-chan types.Event {
	return c.events
}

func (c *Connection) IsClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}
