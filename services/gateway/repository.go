package gateway

import (
	"context"
	"time"

	"github.com/piresc/arbiter/internal/pkg/action"
	"github.com/piresc/arbiter/internal/pkg/models"
)

//go:generate mockgen -destination=mocks/mock_repository.go -package=mocks github.com/piresc/arbiter/services/gateway SessionRepo

// EntityRepo is the storage engine local actions run against
type EntityRepo interface {
	action.Store
}

// SessionRepo stores refresh sessions by token id
type SessionRepo interface {
	SaveRefreshSession(ctx context.Context, id string, session *models.RefreshSession, ttl time.Duration) error
	// GetRefreshSession returns models.ErrNotFound for unknown or expired ids
	GetRefreshSession(ctx context.Context, id string) (*models.RefreshSession, error)
	DeleteRefreshSession(ctx context.Context, id string) error
}
