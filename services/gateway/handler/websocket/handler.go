package websocket

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/piresc/arbiter/internal/pkg/broker"
	"github.com/piresc/arbiter/internal/pkg/logger"
	"github.com/piresc/arbiter/internal/pkg/models"
	"github.com/piresc/arbiter/services/gateway"
)

// Handler upgrades /ws requests and runs one Session per connection
type Handler struct {
	gatewayUC gateway.GatewayUC
	broker    *broker.Broker
	cfg       models.WebSocketConfig
	upgrader  websocket.Upgrader
}

// NewHandler creates a WebSocket handler. An empty origin list accepts any origin.
func NewHandler(gatewayUC gateway.GatewayUC, b *broker.Broker, cfg *models.Config) *Handler {
	allowed := cfg.Server.AllowedOrigins
	return &Handler{
		gatewayUC: gatewayUC,
		broker:    b,
		cfg:       cfg.WebSocket,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return originAllowed(r.Header.Get("Origin"), allowed)
			},
		},
	}
}

func originAllowed(origin string, allowed []string) bool {
	if len(allowed) == 0 || origin == "" {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	for _, a := range allowed {
		if a == "*" || strings.EqualFold(a, origin) || strings.EqualFold(a, u.Host) {
			return true
		}
	}
	return false
}

// HandleWebSocket upgrades the request and blocks until the session ends
func (h *Handler) HandleWebSocket(c echo.Context) error {
	ws, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		// the upgrader has already written the HTTP error
		logger.Warn("WebSocket upgrade failed",
			logger.String("remote_addr", c.RealIP()),
			logger.Err(err))
		return nil
	}

	session := NewSession(ws, h.broker, h.gatewayUC, h.cfg)
	logger.Info("WebSocket client connected",
		logger.String("conn_id", session.ID()),
		logger.String("remote_addr", c.RealIP()))

	session.Run()
	return nil
}
