package ws

import "encoding/json"

// Message is the JSON envelope in both directions.
type Message struct {
	Type    string `json:"type"`
	Payload any    `json:"payload,omitempty"`
}

// inbound is the decoded form of a client command, payload still raw.
type inbound struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// client → server
type CreatePayload struct {
	GameType string `json:"game_type"`
}

type JoinPayload struct {
	SessionID string `json:"session_id"`
}

type LeavePayload struct {
	SessionID string `json:"session_id"`
}

type MovePayload struct {
	SessionID string `json:"session_id"`
	Value     any    `json:"value"`
}

type ListPayload struct {
	GameType string `json:"game_type,omitempty"`
	Status   string `json:"status,omitempty"`
}

// server → client, unicast on a rejected command
type ErrorPayload struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	SessionID string `json:"session_id,omitempty"`
}
