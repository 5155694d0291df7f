package domain

const (
	// Ceiling is the maximum non-bust total.
	Ceiling = 21
	// SoftAceValue is the value an ace is dealt at.
	SoftAceValue = 11
	// HardAceValue is the value an ace is demoted to.
	HardAceValue = 1
	// DealSize is the number of cards dealt to every hand at round start.
	DealSize = 2
)

// Rescore recomputes the total of a hand, demoting soft aces in hand order
// while the total is over the ceiling. Demotion mutates the cards in place and
// is never undone while the card stays in the hand.
func Rescore(hand []Card) int {
	total := sumValues(hand)
	for i := range hand {
		if total <= Ceiling {
			break
		}
		if hand[i].Demotable() {
			hand[i].Value = HardAceValue
			total = sumValues(hand)
		}
	}
	return total
}

func sumValues(hand []Card) int {
	total := 0
	for _, c := range hand {
		total += c.Value
	}
	return total
}

// StatusForScore maps a freshly computed score to the resulting hand status.
func StatusForScore(score int) Status {
	switch {
	case score > Ceiling:
		return StatusBust
	case score == Ceiling:
		return StatusBlackjack
	default:
		return StatusActive
	}
}
