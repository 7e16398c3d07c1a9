package models

import "encoding/json"

// WSMessage is any inbound frame; Action selects which other fields apply
type WSMessage struct {
	Action   string          `json:"action"`
	Channel  string          `json:"channel,omitempty"`
	Auth     string          `json:"auth,omitempty"`
	Function string          `json:"function,omitempty"`
	Params   json.RawMessage `json:"params,omitempty"`
	Data     json.RawMessage `json:"data,omitempty"`
}

// WSErrorMessage represents an error message sent over WebSocket
type WSErrorMessage struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
