package app

import (
	"blackjack/internal/domain"

	"github.com/google/uuid"
)

// PlayerSnapshot is a copy of one hand.
type PlayerSnapshot struct {
	PlayerID int64
	Hand     []domain.Card
	Score    int
	Status   domain.Status
}

// TableSnapshot is a consistent copy of the session taken under its lock.
type TableSnapshot struct {
	ID         uuid.UUID
	RoundID    uuid.UUID
	Phase      Phase
	TurnHolder int64 // valid only when HasTurn
	HasTurn    bool
	Players    []PlayerSnapshot // roster order
	MaxPlayers int
}

// Snapshot copies the roster, turn and phase.
func (s *Session) Snapshot() TableSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := TableSnapshot{
		ID:         s.id,
		RoundID:    s.roundID,
		Phase:      s.phase,
		Players:    make([]PlayerSnapshot, 0, len(s.roster)),
		MaxPlayers: s.maxPlayers,
	}
	if s.turn >= 0 {
		snap.TurnHolder = s.roster[s.turn].ID
		snap.HasTurn = true
	}
	for _, p := range s.roster {
		snap.Players = append(snap.Players, PlayerSnapshot{
			PlayerID: p.ID,
			Hand:     p.Cards(),
			Score:    p.Score,
			Status:   p.Status,
		})
	}
	return snap
}

// Player returns a copy of one seated player's hand.
func (s *Session) Player(playerID int64) (PlayerSnapshot, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(playerID)
	if idx < 0 {
		return PlayerSnapshot{}, false
	}
	p := s.roster[idx]
	return PlayerSnapshot{PlayerID: p.ID, Hand: p.Cards(), Score: p.Score, Status: p.Status}, true
}

// Count is the number of seated players.
func (s *Session) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.roster)
}

// Phase is the current table phase.
func (s *Session) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}
