package models

import (
	"encoding/json"
	"time"
)

// Invocation is a single request to run a named operation
type Invocation struct {
	Function string          `json:"function"`
	Params   json.RawMessage `json:"params,omitempty"`
	Data     json.RawMessage `json:"data,omitempty"`
	Claims   *Claims         `json:"-"`
}

// Outcome is the success result of an operation. Data stays a Go value until
// the session serializes it, so list filters can still inspect it.
type Outcome struct {
	Action      string      `json:"action"`
	PublishTo   []string    `json:"publishTo,omitempty"`
	SubscribeTo []string    `json:"subscribeTo,omitempty"`
	Data        interface{} `json:"data"`
}

// ActionEvent is emitted after a mutating operation completes
type ActionEvent struct {
	Function   string    `json:"function"`
	Username   string    `json:"username"`
	Channels   []string  `json:"channels"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Notification is an externally produced message relayed into a channel
type Notification struct {
	Channel string          `json:"channel"`
	Action  string          `json:"action"`
	Data    json.RawMessage `json:"data"`
}
