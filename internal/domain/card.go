package domain

import "strconv"

// Suits in deck construction order.
var Suits = []string{"S", "H", "D", "C"}

const (
	RankAce   = 1
	RankJack  = 11
	RankQueen = 12
	RankKing  = 13
)

// Card is a single playing card. Rank and Suit never change; Value is the
// amount the card currently counts for and may be demoted while it sits in a hand.
type Card struct {
	Rank  int    `json:"rank"`  // 1..13 (A=1, J=11, Q=12, K=13)
	Suit  string `json:"suit"`  // "S","H","D","C"
	Value int    `json:"value"` // counted value, see NominalValue
}

// NewCard returns a card carrying its nominal value.
func NewCard(rank int, suit string) Card {
	return Card{Rank: rank, Suit: suit, Value: NominalValue(rank)}
}

// NominalValue is the undemoted value of a rank: aces 11, faces 10, pips face value.
func NominalValue(rank int) int {
	switch {
	case rank == RankAce:
		return SoftAceValue
	case rank >= 10:
		return 10
	default:
		return rank
	}
}

// Demotable reports whether the card still counts at the soft value.
func (c Card) Demotable() bool {
	return c.Value == SoftAceValue
}

func (c Card) String() string {
	var r string
	switch c.Rank {
	case RankAce:
		r = "A"
	case RankJack:
		r = "J"
	case RankQueen:
		r = "Q"
	case RankKing:
		r = "K"
	default:
		r = strconv.Itoa(c.Rank)
	}
	return r + c.Suit
}

// NewDeck returns an ordered 52-card deck.
func NewDeck() []Card {
	cards := make([]Card, 0, 52)
	for _, s := range Suits {
		for r := RankAce; r <= RankKing; r++ {
			cards = append(cards, NewCard(r, s))
		}
	}
	return cards
}
