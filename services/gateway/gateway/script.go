package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/piresc/arbiter/internal/pkg/apperror"
	"github.com/piresc/arbiter/internal/pkg/constants"
	"github.com/piresc/arbiter/internal/pkg/logger"
	"github.com/piresc/arbiter/internal/pkg/models"
	natspkg "github.com/piresc/arbiter/internal/pkg/nats"
)

// requester is the part of the NATS client the script runner needs
type requester interface {
	Request(ctx context.Context, subject string, data []byte) ([]byte, error)
}

type scriptRequest struct {
	Script     string          `json:"script"`
	Definition json.RawMessage `json:"definition"`
	Args       json.RawMessage `json:"args"`
}

type scriptReply struct {
	Result json.RawMessage `json:"result"`
}

// NATSScriptRunner executes scripts on runners listening on arbiter.script.<name>
type NATSScriptRunner struct {
	client  requester
	timeout time.Duration
}

// NewNATSScriptRunner creates a runner; timeout bounds each request
func NewNATSScriptRunner(client *natspkg.Client, timeout time.Duration) *NATSScriptRunner {
	return newNATSScriptRunner(client, timeout)
}

func newNATSScriptRunner(client requester, timeout time.Duration) *NATSScriptRunner {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &NATSScriptRunner{client: client, timeout: timeout}
}

// RunScript sends the script with args and returns the runner's result
func (r *NATSScriptRunner) RunScript(ctx context.Context, script *models.Entity, args json.RawMessage) (json.RawMessage, error) {
	payload, err := json.Marshal(scriptRequest{Script: script.Name, Definition: script.Definition, Args: args})
	if err != nil {
		return nil, apperror.Unknown(fmt.Errorf("failed to marshal script request: %w", err))
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	subject := fmt.Sprintf(constants.SubjectScriptRun, script.Name)
	data, err := r.client.Request(ctx, subject, payload)
	if err != nil {
		logger.Error("Script request failed",
			logger.String("subject", subject),
			logger.Err(err))
		if errors.Is(err, natspkg.ErrNoResponders) {
			return nil, apperror.BadGateway(fmt.Errorf("no runner for script %q: %w", script.Name, err))
		}
		return nil, apperror.BadGateway(err)
	}

	fields, err := decodeObject(data)
	if err != nil {
		return nil, apperror.BadGateway(err)
	}
	if raw, ok := fields["error"]; ok {
		return nil, replyError(raw, fields)
	}

	var reply scriptReply
	if err := json.Unmarshal(data, &reply); err != nil {
		return nil, apperror.BadGateway(fmt.Errorf("failed to decode script reply: %w", err))
	}
	if len(reply.Result) == 0 {
		return json.RawMessage("null"), nil
	}
	return reply.Result, nil
}
