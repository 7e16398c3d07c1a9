package gateway

import (
	"context"

	"github.com/piresc/arbiter/internal/pkg/models"
)

//go:generate mockgen -destination=mocks/mock_usecase.go -package=mocks github.com/piresc/arbiter/services/gateway GatewayUC

// GatewayUC is what the transports need from the gateway
type GatewayUC interface {
	// VerifyToken checks an access token sent with a call
	VerifyToken(token string) (*models.Claims, error)

	// Dispatch runs one invocation through the action pipeline
	Dispatch(ctx context.Context, inv *models.Invocation) (*models.Outcome, error)

	// session tokens
	Login(ctx context.Context, req *models.LoginRequest) (*models.TokenResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*models.TokenResponse, error)
	Logout(ctx context.Context, refreshToken string) error
}
