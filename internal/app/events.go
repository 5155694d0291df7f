package app

import (
	"blackjack/internal/domain"

	"github.com/google/uuid"
)

// EventKind identifies emitted session events for transport dispatch.
type EventKind string

const (
	EventPlayerJoined EventKind = "player_joined"
	EventPlayerLeft   EventKind = "player_left"
	EventRoundStarted EventKind = "round_started"
	EventHandDealt    EventKind = "hand_dealt"
	EventCardDrawn    EventKind = "card_drawn"
	EventPlayerStood  EventKind = "player_stood"
	EventTurnChanged  EventKind = "turn_changed"
	EventRoundEnded   EventKind = "round_ended"
	EventRoundAborted EventKind = "round_aborted"
)

// Event is a session event with optional targeted recipients. Payloads are
// copies taken under the session lock and safe to read after it is released.
type Event struct {
	Kind       EventKind
	Payload    any
	Recipients []int64 // player IDs; empty means broadcast
}

type PlayerJoinedPayload struct {
	PlayerID int64
	Seat     int
	Players  int
}

type PlayerLeftPayload struct {
	PlayerID int64
	Players  int
}

type RoundStartedPayload struct {
	RoundID     uuid.UUID
	HouseUpCard *domain.Card
}

type HandDealtPayload struct {
	PlayerID int64
	Hand     []domain.Card
	Score    int
	Status   domain.Status
}

type CardDrawnPayload struct {
	PlayerID int64
	Drawn    []domain.Card
	Hand     []domain.Card
	Score    int
	Status   domain.Status
}

type PlayerStoodPayload struct {
	PlayerID int64
	Score    int
}

type TurnChangedPayload struct {
	PlayerID int64
}

// Outcome is a player's result against the house or the table.
type Outcome string

const (
	OutcomeWin  Outcome = "win"
	OutcomeLose Outcome = "lose"
	OutcomePush Outcome = "push"
)

type Result struct {
	PlayerID int64
	Hand     []domain.Card
	Score    int
	Status   domain.Status
	Outcome  Outcome
}

type RoundEndedPayload struct {
	RoundID uuid.UUID
	House   *Result // nil when the table plays without a house
	Results []Result
}

type RoundAbortedPayload struct {
	RoundID uuid.UUID
	Reason  string
}
