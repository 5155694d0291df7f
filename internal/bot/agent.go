package bot

import (
	"fmt"

	"blackjack/internal/domain"
)

// Move is the decision made by a brain for one step of the house turn.
type Move struct {
	Hit bool
}

// Brain is the interface every house strategy implements.
type Brain interface {
	CalculateMove(hand []domain.Card, score int) Move
}

// Agent plays the house hand until its brain stands or the hand resolves.
type Agent struct {
	Strategy Brain
}

// NewAgent returns a house agent that draws to standOn.
func NewAgent(standOn int) (*Agent, error) {
	if standOn < 2 || standOn > domain.Ceiling {
		return nil, fmt.Errorf("stand threshold %d outside 2..%d", standOn, domain.Ceiling)
	}
	return &Agent{Strategy: DealerBrain{StandOn: standOn}}, nil
}

// Play drives the house hand to a terminal status, returning every card drawn.
func (a *Agent) Play(house *domain.Player, src domain.Drawer) ([]domain.Card, error) {
	var drawn []domain.Card
	for house.Status == domain.StatusActive {
		if !a.Strategy.CalculateMove(house.Cards(), house.Score).Hit {
			return drawn, house.Stand()
		}
		cards, err := house.Hit(src, 1)
		drawn = append(drawn, cards...)
		if err != nil {
			return drawn, err
		}
	}
	return drawn, nil
}
