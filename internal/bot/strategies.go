package bot

import "blackjack/internal/domain"

// DefaultStandOn is the classic house rule: draw to 16, stand on 17.
const DefaultStandOn = 17

// DealerBrain hits below StandOn and stands otherwise.
type DealerBrain struct {
	StandOn int
}

func (b DealerBrain) CalculateMove(hand []domain.Card, score int) Move {
	return Move{Hit: score < b.StandOn}
}
