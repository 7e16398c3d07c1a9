package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/labstack/echo/v4"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/piresc/arbiter/internal/pkg/constants"
	"github.com/piresc/arbiter/internal/pkg/logger"
	"github.com/piresc/arbiter/internal/pkg/models"
)

// PanicRecovery turns a panicking handler into a 500 with the unknown error
// shape, logging the stack and reporting it to New Relic when a transaction exists
func PanicRecovery() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) (err error) {
			defer func() {
				if r := recover(); r != nil {
					handlePanic(c, r)
					err = nil
				}
			}()
			return next(c)
		}
	}
}

func handlePanic(c echo.Context, r interface{}) {
	req := c.Request()
	requestID := c.Response().Header().Get(echo.HeaderXRequestID)
	panicMsg := fmt.Sprintf("%v", r)

	if txn := newrelic.FromContext(req.Context()); txn != nil {
		txn.NoticeError(newrelic.Error{
			Message: panicMsg,
			Class:   "PanicError",
			Attributes: map[string]interface{}{
				"http.method": req.Method,
				"http.path":   req.URL.Path,
				"request_id":  requestID,
			},
		})
	}

	logger.Error("Panic recovered during request processing",
		logger.String("panic_value", panicMsg),
		logger.String("panic_type", fmt.Sprintf("%T", r)),
		logger.String("stack_trace", string(debug.Stack())),
		logger.String("method", req.Method),
		logger.String("path", req.URL.Path),
		logger.String("client_ip", c.RealIP()),
		logger.String("request_id", requestID))

	if !c.Response().Committed {
		c.JSON(http.StatusInternalServerError, models.WSErrorMessage{
			Error:   constants.ErrorUnknown,
			Message: "internal error",
		})
	}
}
