package domain

import "errors"

var (
	// ErrOutOfTurn is returned when a hand is asked to act while it is not active.
	ErrOutOfTurn = errors.New("out of turn action")
	// ErrEmptyDeck is returned when both the draw and discard piles are empty.
	ErrEmptyDeck = errors.New("deck empty after reshuffle")
)
