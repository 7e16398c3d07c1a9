package gateway

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/piresc/arbiter/internal/pkg/apperror"
)

// errorReply is the failure shape shared by the upstream executor and script runners
type errorReply struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// decodeObject parses body as a JSON object keyed by field
func decodeObject(body []byte) (map[string]json.RawMessage, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, fmt.Errorf("response is not a JSON object: %w", err)
	}
	if fields == nil {
		return nil, errors.New("response is null")
	}
	return fields, nil
}

// replyError converts an {error, message} reply. Codes from the taxonomy are
// passed through, anything else is reported as an upstream failure.
func replyError(raw json.RawMessage, fields map[string]json.RawMessage) error {
	var reply errorReply
	if err := json.Unmarshal(raw, &reply.Error); err != nil {
		return apperror.BadGateway(fmt.Errorf("error field is not a string: %w", err))
	}
	if msg, ok := fields["message"]; ok {
		_ = json.Unmarshal(msg, &reply.Message)
	}

	if apperror.KnownCode(reply.Error) {
		return apperror.New(reply.Error, reply.Message)
	}
	detail := reply.Error
	if reply.Message != "" {
		detail = fmt.Sprintf("%s: %s", reply.Error, reply.Message)
	}
	return apperror.Upstream(detail)
}
