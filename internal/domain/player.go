package domain

import "fmt"

// Status is the round status of a hand.
type Status string

const (
	// StatusWaiting is a seated player who has not been dealt into the current round.
	StatusWaiting Status = "waiting"
	// StatusActive is the initial status after a deal; the only one that may act.
	StatusActive Status = "active"
	// StatusBust means the score went over the ceiling.
	StatusBust Status = "bust"
	// StatusBlackjack means the score hit the ceiling exactly.
	StatusBlackjack Status = "blackjack"
	// StatusStood means the player ended their turn voluntarily.
	StatusStood Status = "stood"
)

// Terminal reports whether the status ends the player's round.
func (s Status) Terminal() bool {
	return s == StatusBust || s == StatusBlackjack || s == StatusStood
}

// Role selects how a hand is presented and whether it takes turns.
type Role string

const (
	RoleParticipant Role = "participant"
	RoleHouse       Role = "house"
)

// HouseID is the identifier reserved for the house hand. Connection
// identifiers start at 1.
const HouseID int64 = 0

// Drawer is anything a hand can pull cards from. Players are handed one for the
// duration of a call and never keep it.
type Drawer interface {
	Draw() (Card, error)
}

// Player is the per-connection hand state machine.
type Player struct {
	ID     int64
	Role   Role
	Hand   []Card
	Score  int
	Status Status

	view HandView
}

// NewPlayer returns a seated player that waits for the next deal.
func NewPlayer(id int64, role Role, view HandView) *Player {
	if view == nil {
		view = NopView{}
	}
	return &Player{ID: id, Role: role, Status: StatusWaiting, view: view}
}

// Deal clears the hand, marks the player active and draws the opening cards.
func (p *Player) Deal(src Drawer) ([]Card, error) {
	p.Hand = nil
	p.Score = 0
	p.Status = StatusActive
	p.view.ClearHand()
	return p.Hit(src, DealSize)
}

// Hit draws n cards one at a time. Every draw rescans the whole hand. Drawing
// stops as soon as the hand goes bust or reaches the ceiling.
func (p *Player) Hit(src Drawer, n int) ([]Card, error) {
	if p.Status != StatusActive {
		return nil, fmt.Errorf("hit with status %s: %w", p.Status, ErrOutOfTurn)
	}
	drawn := make([]Card, 0, n)
	for i := 0; i < n && p.Status == StatusActive; i++ {
		card, err := src.Draw()
		if err != nil {
			return drawn, err
		}
		drawn = append(drawn, p.take(card))
	}
	return drawn, nil
}

func (p *Player) take(card Card) Card {
	p.Hand = append(p.Hand, card)
	p.Score = Rescore(p.Hand)
	p.Status = StatusForScore(p.Score)

	added := p.Hand[len(p.Hand)-1]
	p.view.AddCard(added)
	if p.Status.Terminal() {
		p.view.DisableInteraction()
	}
	return added
}

// Stand ends the player's turn for this round.
func (p *Player) Stand() error {
	if p.Status != StatusActive {
		return fmt.Errorf("stand with status %s: %w", p.Status, ErrOutOfTurn)
	}
	p.Status = StatusStood
	p.view.DisableInteraction()
	return nil
}

// Cards returns a copy of the hand.
func (p *Player) Cards() []Card {
	return append([]Card(nil), p.Hand...)
}

// surrender empties the hand for the discard pile.
func (p *Player) surrender() []Card {
	cards := p.Hand
	p.Hand = nil
	p.Score = 0
	p.Status = StatusWaiting
	return cards
}
