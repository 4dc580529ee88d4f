package handler

import (
	"assembly-rag-be/internal/pkg/logger"
	"assembly-rag-be/internal/pkg/serverutils"
	internalWS "assembly-rag-be/internal/websocket"
	"assembly-rag-be/pkg/rag"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

// TraceHandler exposes the live trace stream. A watcher opens a socket for
// one request id and receives every agent transition for that run as it
// happens. The request id itself is the capability: ids are random UUIDs
// handed out per query, so there is no extra auth on the handshake.
type TraceHandler struct {
	hub    *internalWS.Hub
	logger logger.ILogger
}

func NewTraceHandler(hub *internalWS.Hub, log logger.ILogger) *TraceHandler {
	return &TraceHandler{
		hub:    hub,
		logger: log,
	}
}

// ServeWs handles websocket requests from trace watchers.
func (h *TraceHandler) ServeWs(c *fiber.Ctx) error {
	queryID, err := uuid.Parse(c.Params("requestId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).
			JSON(serverutils.ErrorResponse(rag.KindInvalidQuery, "request id must be a UUID"))
	}

	// Upgrade via Fiber WebSocket Middleware
	// We handle the upgrade here using the helper which automatically hijacks the connection
	if websocket.IsWebSocketUpgrade(c) {
		return websocket.New(func(conn *websocket.Conn) {
			h.logger.Info("TraceHandler", "Starting trace session", map[string]interface{}{"query_id": queryID})
			internalWS.ServeWs(h.hub, conn, queryID)
			h.logger.Info("TraceHandler", "Trace session ended", map[string]interface{}{"query_id": queryID})
		})(c)
	}
	return fiber.ErrUpgradeRequired
}

// RegisterRoutes registers the trace websocket route.
func (h *TraceHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/ws/trace/:requestId", h.ServeWs)
}
