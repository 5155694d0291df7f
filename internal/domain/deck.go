package domain

import (
	"math/rand"
	"time"
)

// Deck is a draw pile plus a discard pile. Cards move draw → hand → discard and
// back to the draw pile only through a reshuffle.
type Deck struct {
	draw    []Card // top of the pile is the last element
	discard []Card
	rng     *rand.Rand
}

// NewShuffledDeck builds a 52-card deck and shuffles it with rng, or a
// time-seeded source when rng is nil.
func NewShuffledDeck(rng *rand.Rand) *Deck {
	d := &Deck{draw: NewDeck(), rng: ensureRand(rng)}
	d.Shuffle()
	return d
}

// NewStackedDeck returns an unshuffled deck that deals the given cards in
// order. Once exhausted it reshuffles its discards like any other deck.
func NewStackedDeck(rng *rand.Rand, cards ...Card) *Deck {
	draw := make([]Card, len(cards))
	for i, c := range cards {
		draw[len(cards)-1-i] = c
	}
	return &Deck{draw: draw, rng: ensureRand(rng)}
}

func ensureRand(rng *rand.Rand) *rand.Rand {
	if rng == nil {
		return rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return rng
}

// Shuffle permutes the draw pile in place.
func (d *Deck) Shuffle() {
	d.rng.Shuffle(len(d.draw), func(i, j int) { d.draw[i], d.draw[j] = d.draw[j], d.draw[i] })
}

// Draw pops the top card. An empty draw pile is refilled from the discard pile
// and shuffled first; ErrEmptyDeck is returned only when both piles are empty.
func (d *Deck) Draw() (Card, error) {
	if len(d.draw) == 0 {
		if len(d.discard) == 0 {
			return Card{}, ErrEmptyDeck
		}
		d.draw, d.discard = d.discard, nil
		d.Shuffle()
	}
	top := d.draw[len(d.draw)-1]
	d.draw = d.draw[:len(d.draw)-1]
	return top, nil
}

// Discard puts cards on the discard pile, restoring their nominal value.
func (d *Deck) Discard(cards ...Card) {
	for _, c := range cards {
		c.Value = NominalValue(c.Rank)
		d.discard = append(d.discard, c)
	}
}

// ResetRound moves every card held by the given players to the discard pile.
// It does not shuffle.
func (d *Deck) ResetRound(players ...*Player) {
	for _, p := range players {
		if p == nil {
			continue
		}
		d.Discard(p.surrender()...)
	}
}

// Remaining is the size of the draw pile.
func (d *Deck) Remaining() int {
	return len(d.draw)
}

// Discarded is the size of the discard pile.
func (d *Deck) Discarded() int {
	return len(d.discard)
}
