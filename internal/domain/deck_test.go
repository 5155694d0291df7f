package domain

import (
	"errors"
	"fmt"
	"math/rand"
	"testing"
)

func TestNewDeck(t *testing.T) {
	deck := NewDeck()
	if len(deck) != 52 {
		t.Fatalf("deck size = %d, want 52", len(deck))
	}

	seen := make(map[string]bool)
	for _, c := range deck {
		key := fmt.Sprintf("%s-%d", c.Suit, c.Rank)
		if seen[key] {
			t.Fatalf("duplicate card found: %s", key)
		}
		seen[key] = true
		if c.Rank < RankAce || c.Rank > RankKing {
			t.Fatalf("rank out of range: %d", c.Rank)
		}
		if c.Value != NominalValue(c.Rank) {
			t.Fatalf("card %s value = %d, want nominal %d", c, c.Value, NominalValue(c.Rank))
		}
	}
}

func TestNominalValue(t *testing.T) {
	tests := []struct {
		rank int
		want int
	}{
		{RankAce, 11},
		{2, 2},
		{9, 9},
		{10, 10},
		{RankJack, 10},
		{RankQueen, 10},
		{RankKing, 10},
	}
	for _, tt := range tests {
		if got := NominalValue(tt.rank); got != tt.want {
			t.Errorf("NominalValue(%d) = %d, want %d", tt.rank, got, tt.want)
		}
	}
}

func TestStackedDeckDrawOrder(t *testing.T) {
	d := NewStackedDeck(nil, NewCard(2, "S"), NewCard(3, "H"), NewCard(4, "D"))
	for _, want := range []int{2, 3, 4} {
		c, err := d.Draw()
		if err != nil {
			t.Fatalf("draw error: %v", err)
		}
		if c.Rank != want {
			t.Fatalf("drew rank %d, want %d", c.Rank, want)
		}
	}
}

func TestShuffledDeckIsSeeded(t *testing.T) {
	a := NewShuffledDeck(rand.New(rand.NewSource(7)))
	b := NewShuffledDeck(rand.New(rand.NewSource(7)))
	for i := 0; i < 52; i++ {
		ca, _ := a.Draw()
		cb, _ := b.Draw()
		if ca != cb {
			t.Fatalf("draw %d differs: %s vs %s", i, ca, cb)
		}
	}
}

func TestDrawReshufflesFromDiscard(t *testing.T) {
	d := NewStackedDeck(rand.New(rand.NewSource(1)), NewCard(RankAce, "S"))
	first, err := d.Draw()
	if err != nil {
		t.Fatalf("draw error: %v", err)
	}
	if d.Remaining() != 0 {
		t.Fatalf("remaining = %d, want 0", d.Remaining())
	}

	first.Value = HardAceValue
	d.Discard(first)

	again, err := d.Draw()
	if err != nil {
		t.Fatalf("draw after exhaustion should reshuffle, got %v", err)
	}
	if again.Rank != RankAce || again.Value != SoftAceValue {
		t.Fatalf("reshuffled card = %+v, want ace restored to 11", again)
	}
	if d.Discarded() != 0 {
		t.Fatalf("discard pile should be moved into the draw pile")
	}
}

func TestDrawEmptyDeck(t *testing.T) {
	d := NewStackedDeck(nil)
	if _, err := d.Draw(); !errors.Is(err, ErrEmptyDeck) {
		t.Fatalf("err = %v, want ErrEmptyDeck", err)
	}
}

func TestResetRoundMovesHandsToDiscard(t *testing.T) {
	d := NewShuffledDeck(rand.New(rand.NewSource(3)))
	p1 := NewPlayer(1, RoleParticipant, nil)
	p2 := NewPlayer(2, RoleParticipant, nil)
	if _, err := p1.Deal(d); err != nil {
		t.Fatalf("deal: %v", err)
	}
	if _, err := p2.Deal(d); err != nil {
		t.Fatalf("deal: %v", err)
	}

	held := len(p1.Hand) + len(p2.Hand)
	d.ResetRound(p1, p2, nil)

	if d.Discarded() != held {
		t.Fatalf("discarded = %d, want %d", d.Discarded(), held)
	}
	if d.Remaining()+d.Discarded() != 52 {
		t.Fatalf("cards lost: draw %d + discard %d", d.Remaining(), d.Discarded())
	}
	if len(p1.Hand) != 0 || p1.Status != StatusWaiting {
		t.Fatalf("player not reset: %+v", p1)
	}
}
