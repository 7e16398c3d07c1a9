package http

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/piresc/arbiter/internal/pkg/apperror"
	appctx "github.com/piresc/arbiter/internal/pkg/context"
	"github.com/piresc/arbiter/internal/pkg/logger"
	"github.com/piresc/arbiter/internal/pkg/models"
	"github.com/piresc/arbiter/internal/utils"
	"github.com/piresc/arbiter/services/gateway"
)

// AuthHandler serves the session token endpoints
type AuthHandler struct {
	gatewayUC gateway.GatewayUC
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(gatewayUC gateway.GatewayUC) *AuthHandler {
	return &AuthHandler{
		gatewayUC: gatewayUC,
	}
}

// Login exchanges credentials for an access and refresh token
func (h *AuthHandler) Login(c echo.Context) error {
	var req models.LoginRequest
	if err := c.Bind(&req); err != nil {
		logger.Warn("Invalid login payload", logger.Err(err))
		return utils.BadRequestResponse(c, err)
	}
	if req.Username == "" || req.Password == "" {
		return utils.BadRequestResponse(c, errors.New("username and password are required"))
	}

	resp, err := h.gatewayUC.Login(c.Request().Context(), &req)
	if err != nil {
		logger.Info("Login rejected",
			logger.String("request_id", appctx.GetRequestID(c.Request().Context())),
			logger.String("username", req.Username),
			logger.String("code", apperror.From(err).Code))
		return utils.ErrorResponse(c, err)
	}

	return utils.JSONResponse(c, http.StatusOK, resp)
}

// Refresh issues a new access token for a live refresh token
func (h *AuthHandler) Refresh(c echo.Context) error {
	token, err := bindRefreshToken(c)
	if err != nil {
		return utils.BadRequestResponse(c, err)
	}

	resp, err := h.gatewayUC.Refresh(c.Request().Context(), token)
	if err != nil {
		return utils.ErrorResponse(c, err)
	}

	return utils.JSONResponse(c, http.StatusOK, resp)
}

// Logout revokes a refresh token. Revoking an unknown token succeeds.
func (h *AuthHandler) Logout(c echo.Context) error {
	token, err := bindRefreshToken(c)
	if err != nil {
		return utils.BadRequestResponse(c, err)
	}

	if err := h.gatewayUC.Logout(c.Request().Context(), token); err != nil {
		return utils.ErrorResponse(c, err)
	}

	return c.NoContent(http.StatusNoContent)
}

func bindRefreshToken(c echo.Context) (string, error) {
	var req models.RefreshRequest
	if err := c.Bind(&req); err != nil {
		return "", err
	}
	if req.RefreshToken == "" {
		return "", errors.New("refresh_token is required")
	}
	return req.RefreshToken, nil
}
