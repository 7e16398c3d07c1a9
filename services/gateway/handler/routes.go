package handler

import (
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/labstack/echo/v4"
	"github.com/piresc/arbiter/internal/pkg/middleware"
	"github.com/piresc/arbiter/services/gateway/handler/http"
	"github.com/piresc/arbiter/services/gateway/handler/nats"
	"github.com/piresc/arbiter/services/gateway/handler/websocket"
)

const (
	loginRateLimit  = 10
	loginRatePeriod = time.Minute
)

// Handler coordinates all protocol handlers for the gateway
type Handler struct {
	authHandler   *http.AuthHandler
	wsHandler     *websocket.Handler
	notifyHandler *nats.NotifyHandler
	redisClient   *redis.Client
}

// NewHandler creates and initializes all handlers. redisClient backs the
// login rate limiter and may be nil to disable it.
func NewHandler(
	authHandler *http.AuthHandler,
	wsHandler *websocket.Handler,
	notifyHandler *nats.NotifyHandler,
	redisClient *redis.Client,
) *Handler {
	return &Handler{
		authHandler:   authHandler,
		wsHandler:     wsHandler,
		notifyHandler: notifyHandler,
		redisClient:   redisClient,
	}
}

// InitConsumers starts the NATS notification relay
func (h *Handler) InitConsumers() error {
	if h.notifyHandler == nil {
		return nil
	}
	return h.notifyHandler.InitNATSConsumers()
}

// RegisterRoutes registers the HTTP and WebSocket routes. Calls carry their
// token per message, so /ws itself is public.
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	authGroup := e.Group("/auth")
	if h.redisClient != nil {
		authGroup.POST("/login", h.authHandler.Login, middleware.IPRateLimiter(loginRateLimit, loginRatePeriod, h.redisClient))
	} else {
		authGroup.POST("/login", h.authHandler.Login)
	}
	authGroup.POST("/refresh", h.authHandler.Refresh)
	authGroup.POST("/logout", h.authHandler.Logout)

	e.GET("/ws", h.wsHandler.HandleWebSocket)
}
