package middleware

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	appctx "github.com/piresc/arbiter/internal/pkg/context"
)

// RequestID keeps an incoming X-Request-ID or assigns a new uuid, and echoes it
// on the response so the zap middleware and panic recovery can log it. The id
// is also carried on the request context.
func RequestID() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id := c.Request().Header.Get(echo.HeaderXRequestID)
			if id == "" {
				id = uuid.NewString()
				c.Request().Header.Set(echo.HeaderXRequestID, id)
			}
			c.Response().Header().Set(echo.HeaderXRequestID, id)
			req := c.Request()
			c.SetRequest(req.WithContext(appctx.WithRequestID(req.Context(), id)))
			return next(c)
		}
	}
}
