package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"github.com/piresc/arbiter/internal/pkg/apperror"
	httpclient "github.com/piresc/arbiter/internal/pkg/http"
	"github.com/piresc/arbiter/internal/pkg/logger"
	"github.com/piresc/arbiter/internal/pkg/models"
)

// invokeRequest is the body posted to <UPSTREAM_URL>/<function>
type invokeRequest struct {
	Params json.RawMessage `json:"params"`
	Data   json.RawMessage `json:"data"`
	User   *models.Caller  `json:"user"`
}

// HTTPExecutor forwards whole invocations to the upstream executor
type HTTPExecutor struct {
	client *httpclient.Client
}

// NewHTTPExecutor creates an executor for upstreamURL
func NewHTTPExecutor(upstreamURL string, timeout time.Duration) *HTTPExecutor {
	return &HTTPExecutor{client: httpclient.NewClient("upstream-executor", upstreamURL, timeout)}
}

// Client exposes the underlying client for health reporting
func (e *HTTPExecutor) Client() *httpclient.Client {
	return e.client
}

// Invoke posts inv and decodes the untagged outcome or error reply.
// Transport failures, 5xx and unparseable replies are BadGateway.
func (e *HTTPExecutor) Invoke(ctx context.Context, inv *models.Invocation) (*models.Outcome, error) {
	body := invokeRequest{Params: inv.Params, Data: inv.Data}
	if inv.Claims != nil {
		caller := inv.Claims.AsCaller()
		body.User = &caller
	}

	resp, err := e.client.PostJSON(ctx, url.PathEscape(inv.Function), body)
	if err != nil {
		logger.Error("Upstream executor call failed",
			logger.String("function", inv.Function),
			logger.Err(err))
		return nil, apperror.BadGateway(err)
	}

	fields, err := decodeObject(resp.Body)
	if err != nil {
		logger.Error("Upstream executor returned garbage",
			logger.String("function", inv.Function),
			logger.Int("status", resp.StatusCode),
			logger.Err(err))
		return nil, apperror.BadGateway(err)
	}

	if raw, ok := fields["error"]; ok {
		return nil, replyError(raw, fields)
	}
	if resp.StatusCode >= 400 {
		return nil, apperror.BadGateway(fmt.Errorf("upstream responded %d without an error body", resp.StatusCode))
	}

	var outcome struct {
		Action      string          `json:"action"`
		PublishTo   []string        `json:"publishTo"`
		SubscribeTo []string        `json:"subscribeTo"`
		Data        json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(resp.Body, &outcome); err != nil {
		return nil, apperror.BadGateway(fmt.Errorf("failed to decode outcome: %w", err))
	}

	result := &models.Outcome{
		Action:      outcome.Action,
		PublishTo:   outcome.PublishTo,
		SubscribeTo: outcome.SubscribeTo,
	}
	if len(outcome.Data) > 0 {
		result.Data = outcome.Data
	}
	return result, nil
}
