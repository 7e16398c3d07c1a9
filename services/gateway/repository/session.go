package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/piresc/arbiter/internal/pkg/constants"
	"github.com/piresc/arbiter/internal/pkg/database"
	"github.com/piresc/arbiter/internal/pkg/models"
)

// SessionRepo keeps refresh sessions in Redis, expiring with the upstream session
type SessionRepo struct {
	redisClient *database.RedisClient
}

// NewSessionRepository creates a new refresh session repository
func NewSessionRepository(redisClient *database.RedisClient) *SessionRepo {
	return &SessionRepo{redisClient: redisClient}
}

func sessionKey(id string) string {
	return fmt.Sprintf(constants.KeyRefreshSession, id)
}

// SaveRefreshSession stores session under id for ttl
func (r *SessionRepo) SaveRefreshSession(ctx context.Context, id string, session *models.RefreshSession, ttl time.Duration) error {
	if ttl <= 0 {
		return fmt.Errorf("refresh session ttl must be positive, got %s", ttl)
	}
	payload, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal refresh session: %w", err)
	}
	if err := r.redisClient.Set(ctx, sessionKey(id), payload, ttl); err != nil {
		return fmt.Errorf("failed to store refresh session: %w", err)
	}
	return nil
}

// GetRefreshSession loads the session stored under id
func (r *SessionRepo) GetRefreshSession(ctx context.Context, id string) (*models.RefreshSession, error) {
	raw, err := r.redisClient.Get(ctx, sessionKey(id))
	if errors.Is(err, database.ErrKeyNotFound) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load refresh session: %w", err)
	}

	var session models.RefreshSession
	if err := json.Unmarshal([]byte(raw), &session); err != nil {
		return nil, fmt.Errorf("failed to decode refresh session: %w", err)
	}
	return &session, nil
}

// DeleteRefreshSession removes the session; deleting a missing id is not an error
func (r *SessionRepo) DeleteRefreshSession(ctx context.Context, id string) error {
	if _, err := r.redisClient.Delete(ctx, sessionKey(id)); err != nil {
		return fmt.Errorf("failed to delete refresh session: %w", err)
	}
	return nil
}
