package gateway

import (
	"context"
	"encoding/json"

	"github.com/piresc/arbiter/internal/pkg/models"
)

//go:generate mockgen -destination=mocks/mock_gateway.go -package=mocks github.com/piresc/arbiter/services/gateway ExecutorGW,AuthGW,ScriptGW,EventGW

// ExecutorGW runs a whole invocation on the upstream executor
type ExecutorGW interface {
	Invoke(ctx context.Context, inv *models.Invocation) (*models.Outcome, error)
}

// AuthGW checks credentials against the auth service
type AuthGW interface {
	Authenticate(ctx context.Context, username, password string) (*models.AuthSession, error)
}

// ScriptGW executes stored scripts on remote runners
type ScriptGW interface {
	RunScript(ctx context.Context, script *models.Entity, args json.RawMessage) (json.RawMessage, error)
}

// EventGW publishes audit events
type EventGW interface {
	PublishActionCompleted(ctx context.Context, event *models.ActionEvent) error
}
