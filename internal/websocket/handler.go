package websocket

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/NomadCrew/feedback-desk/config"
	apperrors "github.com/NomadCrew/feedback-desk/errors"
	"github.com/NomadCrew/feedback-desk/logger"
	"github.com/NomadCrew/feedback-desk/middleware"
	"github.com/NomadCrew/feedback-desk/types"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"
)

// anonymousStaff names connections made while staff auth is disabled.
const anonymousStaff = "anonymous"

// Message types exchanged with clients.
const (
	MessageTypePing      = "ping"
	MessageTypePong      = "pong"
	MessageTypeEvent     = "event"
	MessageTypeConnected = "connected"
	MessageTypeError     = "error"
)

// Handler streams feedback events to staff over websockets.
type Handler struct {
	log            *zap.SugaredLogger
	hub            *Hub
	pingInterval   time.Duration
	writeTimeout   time.Duration
	allowedOrigins []string
	isDevelopment  bool
}

func NewHandler(hub *Hub, serverCfg *config.ServerConfig) *Handler {
	return &Handler{
		log:            logger.GetLogger().Named("websocket_handler"),
		hub:            hub,
		pingInterval:   hub.pingInterval,
		writeTimeout:   hub.writeTimeout,
		allowedOrigins: serverCfg.AllowedOrigins,
		isDevelopment:  serverCfg.Environment == config.EnvDevelopment,
	}
}

// getAcceptOptions allows every origin in development and the configured
// origins otherwise.
func (h *Handler) getAcceptOptions() *websocket.AcceptOptions {
	opts := &websocket.AcceptOptions{
		CompressionMode: websocket.CompressionContextTakeover,
	}

	if h.isDevelopment || containsWildcardOnly(h.allowedOrigins) {
		opts.InsecureSkipVerify = true
	} else {
		opts.OriginPatterns = originPatterns(h.allowedOrigins)
	}

	return opts
}

// ClientMessage represents a message from the client.
type ClientMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// ServerMessage represents a message to the client.
type ServerMessage struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// HandleWebSocket godoc
// @Summary      Feedback event stream
// @Description  Upgrades to a websocket that receives FEEDBACK_CREATED, FEEDBACK_STATUS_CHANGED and FEEDBACK_DELETED events
// @Tags         feedback
// @Param        types  query  string  false  "Comma-separated event types to receive"
// @Param        token  query  string  false  "Staff token when headers cannot be set"
// @Success      101
// @Failure      400  {object}  types.ErrorResponse
// @Failure      401  {object}  types.ErrorResponse
// @Security     BearerAuth
// @Router       /feedback/events [get]
func (h *Handler) HandleWebSocket(c *gin.Context) {
	filters, err := parseEventFilters(c.Query("types"))
	if err != nil {
		_ = c.Error(apperrors.ValidationFailed("invalid_event_filter", err.Error()))
		return
	}

	staffID := c.GetString(string(middleware.StaffIDKey))
	if staffID == "" {
		staffID = anonymousStaff
	}

	conn, err := websocket.Accept(c.Writer, c.Request, h.getAcceptOptions())
	if err != nil {
		h.log.Errorw("Failed to accept WebSocket connection",
			"staffID", staffID,
			"error", err)
		return
	}

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	connection, err := h.hub.Register(ctx, staffID, conn, filters...)
	if err != nil {
		h.log.Errorw("Failed to register WebSocket connection",
			"staffID", staffID,
			"error", err)
		_ = conn.Close(websocket.StatusInternalError, "registration failed")
		return
	}
	defer h.hub.Unregister(connection.ID)

	if err := h.sendMessage(ctx, conn, ServerMessage{
		Type: MessageTypeConnected,
		Payload: map[string]interface{}{
			"staffId": staffID,
			"types":   filters,
		},
	}); err != nil {
		h.log.Errorw("Failed to send connected message",
			"staffID", staffID,
			"error", err)
		return
	}

	errCh := make(chan error, 3)
	go func() { errCh <- h.readLoop(ctx, conn, staffID) }()
	go func() { errCh <- h.writeLoop(ctx, conn, connection) }()
	go func() { errCh <- h.pingLoop(ctx, conn) }()

	err = <-errCh
	if err != nil && websocket.CloseStatus(err) != websocket.StatusNormalClosure &&
		websocket.CloseStatus(err) != websocket.StatusGoingAway {
		h.log.Warnw("WebSocket connection error",
			"staffID", staffID,
			"error", err)
	}
}

func (h *Handler) readLoop(ctx context.Context, conn *websocket.Conn, staffID string) error {
	for {
		var msg ClientMessage
		if err := wsjson.Read(ctx, conn, &msg); err != nil {
			return err
		}

		switch msg.Type {
		case MessageTypePing:
			_ = h.sendMessage(ctx, conn, ServerMessage{Type: MessageTypePong})
		default:
			h.log.Debugw("Unknown message type from client",
				"staffID", staffID,
				"type", msg.Type)
			_ = h.sendMessage(ctx, conn, ServerMessage{
				Type:  MessageTypeError,
				Error: "unknown message type: " + msg.Type,
			})
		}
	}
}

// writeLoop forwards subscription events until the subscription closes.
func (h *Handler) writeLoop(ctx context.Context, conn *websocket.Conn, connection *Connection) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-connection.Events():
			if !ok {
				return nil
			}
			if err := h.sendMessage(ctx, conn, ServerMessage{Type: MessageTypeEvent, Payload: event}); err != nil {
				return err
			}
		}
	}
}

func (h *Handler) pingLoop(ctx context.Context, conn *websocket.Conn) error {
	ticker := time.NewTicker(h.pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, h.writeTimeout)
			err := conn.Ping(pingCtx)
			cancel()
			if err != nil {
				return err
			}
		}
	}
}

func (h *Handler) sendMessage(ctx context.Context, conn *websocket.Conn, msg ServerMessage) error {
	writeCtx, cancel := context.WithTimeout(ctx, h.writeTimeout)
	defer cancel()
	return wsjson.Write(writeCtx, conn, msg)
}

// parseEventFilters reads a comma-separated list of event types. An empty
// list subscribes to everything.
func parseEventFilters(raw string) ([]types.EventType, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	var filters []types.EventType
	for _, part := range strings.Split(raw, ",") {
		et := types.EventType(strings.ToUpper(strings.TrimSpace(part)))
		switch et {
		case types.EventTypeFeedbackCreated, types.EventTypeFeedbackStatusChanged, types.EventTypeFeedbackDeleted:
			filters = append(filters, et)
		default:
			return nil, fmt.Errorf("unknown event type %q", part)
		}
	}
	return filters, nil
}

func containsWildcardOnly(origins []string) bool {
	return len(origins) == 0 || (len(origins) == 1 && origins[0] == "*")
}

// originPatterns strips schemes; the websocket library matches on host.
func originPatterns(origins []string) []string {
	patterns := make([]string, 0, len(origins))
	for _, o := range origins {
		o = strings.TrimPrefix(o, "https://")
		o = strings.TrimPrefix(o, "http://")
		patterns = append(patterns, o)
	}
	return patterns
}
