// Package protocol defines the JSON messages exchanged between table clients
// and the gateway. It is transport agnostic: the same bytes travel over a
// WebSocket frame or a Nakama match data payload.
package protocol

import (
	"encoding/json"
	"errors"
	"fmt"

	"blackjack/internal/domain"
)

// MessageType tags every message in both directions.
type MessageType string

const (
	// Client -> Server
	TypeHit  MessageType = "HIT"
	TypeStay MessageType = "STAY"
	TypeDeal MessageType = "DEAL"

	// Server -> Client
	TypeConnected    MessageType = "CONNECTED"
	TypeDisconnected MessageType = "DISCONNECTED"
	TypeBust         MessageType = "BUST"
	TypeBlackjack    MessageType = "BLACKJACK"
	TypeTurn         MessageType = "TURN"
	TypeRoundEnd     MessageType = "ROUND_END"
	TypeError        MessageType = "ERROR"
)

var (
	ErrMalformedMessage = errors.New("malformed message")
	// ErrUnknownType also matches ErrMalformedMessage.
	ErrUnknownType = fmt.Errorf("%w: unknown message type", ErrMalformedMessage)
)

// Inbound is a client request. ID is the sender's connection identifier.
type Inbound struct {
	Type    MessageType     `json:"type"`
	ID      int64           `json:"id"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Result is one line of a round summary.
type Result struct {
	ID      int64         `json:"id"`
	Cards   []domain.Card `json:"cards"`
	Score   int           `json:"score"`
	Status  domain.Status `json:"status"`
	Outcome string        `json:"outcome,omitempty"`
}

// Outbound is a server message addressed to one connection or broadcast.
type Outbound struct {
	Type    MessageType   `json:"type"`
	ID      int64         `json:"id"`
	Cards   []domain.Card `json:"cards,omitempty"`
	Msg     string        `json:"msg,omitempty"`
	Score   *int          `json:"score,omitempty"`
	Status  domain.Status `json:"status,omitempty"`
	Turn    *int64        `json:"turn,omitempty"`
	House   *Result       `json:"house,omitempty"`
	Results []Result      `json:"results,omitempty"`
}

// Decode parses a client request. On a type error the returned message still
// carries whatever id was readable so the reply can echo it.
func Decode(raw []byte) (Inbound, error) {
	var in Inbound
	if err := json.Unmarshal(raw, &in); err != nil {
		var probe struct {
			ID int64 `json:"id"`
		}
		_ = json.Unmarshal(raw, &probe)
		return Inbound{ID: probe.ID}, fmt.Errorf("%w: %v", ErrMalformedMessage, err)
	}
	switch in.Type {
	case TypeHit, TypeStay, TypeDeal:
		return in, nil
	case "":
		return in, fmt.Errorf("%w: missing type", ErrMalformedMessage)
	default:
		return in, fmt.Errorf("%w %q", ErrUnknownType, in.Type)
	}
}

// Encode serializes a server message.
func Encode(msg Outbound) ([]byte, error) {
	return json.Marshal(msg)
}

// IntPtr is a convenience for optional numeric fields.
func IntPtr(v int) *int {
	return &v
}

// IDPtr is a convenience for the optional turn field.
func IDPtr(v int64) *int64 {
	return &v
}
