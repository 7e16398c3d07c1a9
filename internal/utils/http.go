package utils

import (
	"github.com/labstack/echo/v4"
	"github.com/piresc/arbiter/internal/pkg/apperror"
	"github.com/piresc/arbiter/internal/pkg/constants"
	"github.com/piresc/arbiter/internal/pkg/logger"
	"github.com/piresc/arbiter/internal/pkg/models"
)

// ErrorBody converts err into the client error shape shared by HTTP and
// websocket replies. Only the safe message is exposed.
func ErrorBody(err error) models.WSErrorMessage {
	appErr := apperror.From(err)
	return models.WSErrorMessage{Error: appErr.Code, Message: appErr.Message}
}

// ErrorResponse writes err with the status its code maps to. Causes of
// server side failures are logged, never sent.
func ErrorResponse(c echo.Context, err error) error {
	appErr := apperror.From(err)
	switch appErr.Code {
	case constants.ErrorUnknown, constants.ErrorBadGateway:
		logger.Error("Request failed",
			logger.String("path", c.Path()),
			logger.String("code", appErr.Code),
			logger.Err(err))
	}
	return c.JSON(apperror.HTTPStatus(appErr), ErrorBody(appErr))
}

// BadRequestResponse rejects a body that could not be bound
func BadRequestResponse(c echo.Context, err error) error {
	return ErrorResponse(c, apperror.InvalidParams(err))
}

// JSONResponse writes data with statusCode
func JSONResponse(c echo.Context, statusCode int, data interface{}) error {
	return c.JSON(statusCode, data)
}
