package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/piresc/arbiter/internal/pkg/apperror"
	httpclient "github.com/piresc/arbiter/internal/pkg/http"
	"github.com/piresc/arbiter/internal/pkg/logger"
	"github.com/piresc/arbiter/internal/pkg/models"
)

const authenticatePath = "users/authenticate"

type authenticateRequest struct {
	UserIdentifier string `json:"user_identifier"`
	Password       string `json:"password"`
}

// AuthClient validates credentials against the auth service
type AuthClient struct {
	client *httpclient.Client
}

// NewAuthClient creates an auth client for authServiceURL
func NewAuthClient(authServiceURL string, timeout time.Duration) *AuthClient {
	return &AuthClient{client: httpclient.NewClient("auth-service", authServiceURL, timeout)}
}

// Client exposes the underlying client for health reporting
func (a *AuthClient) Client() *httpclient.Client {
	return a.client
}

// Authenticate returns the session for valid credentials. A reply carrying
// an error field is Unauthorized; an unreachable service or any other
// unusable reply is BadGateway.
func (a *AuthClient) Authenticate(ctx context.Context, username, password string) (*models.AuthSession, error) {
	resp, err := a.client.PostJSON(ctx, authenticatePath, authenticateRequest{
		UserIdentifier: username,
		Password:       password,
	})
	if err != nil {
		logger.Error("Auth service call failed", logger.String("username", username), logger.Err(err))
		return nil, apperror.BadGateway(err)
	}

	fields, err := decodeObject(resp.Body)
	if err != nil {
		logger.Error("Auth service returned garbage", logger.Int("status", resp.StatusCode), logger.Err(err))
		return nil, apperror.BadGateway(err)
	}

	if raw, ok := fields["error"]; ok {
		var reason string
		if err := json.Unmarshal(raw, &reason); err != nil || reason == "" {
			reason = "invalid credentials"
		}
		logger.Info("Login rejected by auth service", logger.String("username", username), logger.String("reason", reason))
		return nil, apperror.Unauthorized(reason)
	}

	var session models.AuthSession
	if err := json.Unmarshal(resp.Body, &session); err != nil {
		return nil, apperror.BadGateway(fmt.Errorf("failed to decode auth session: %w", err))
	}
	if session.Username == "" || session.SessionTokenExpiry.IsZero() {
		return nil, apperror.BadGateway(errors.New("auth session is missing username or expiry"))
	}
	if session.Roles == nil {
		session.Roles = []string{}
	}
	return &session, nil
}
