// Package render draws hands on a text console with pterm. Views are
// notified synchronously by the hands they are attached to and only write.
package render

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"blackjack/internal/app"
	"blackjack/internal/domain"

	"github.com/pterm/pterm"
)

// Console is a writer shared by every view of one table.
type Console struct {
	mu sync.Mutex
	w  io.Writer
}

func NewConsole(w io.Writer) *Console {
	return &Console{w: w}
}

// Views returns a factory that picks the view variant by role.
func (c *Console) Views() app.ViewFactory {
	return func(playerID int64, role domain.Role) domain.HandView {
		if role == domain.RoleHouse {
			return &HouseView{console: c}
		}
		return &ParticipantView{console: c, playerID: playerID}
	}
}

func (c *Console) print(s string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprint(c.w, s)
}

// ParticipantView shows every card as it arrives.
type ParticipantView struct {
	console  *Console
	playerID int64
	cards    []domain.Card
	disabled bool
}

func (v *ParticipantView) ClearHand() {
	v.cards = v.cards[:0]
	v.disabled = false
}

func (v *ParticipantView) AddCard(card domain.Card) {
	v.cards = append(v.cards, card)
	v.console.print(pterm.Sprintfln("%s %s", v.title(), strings.Join(faces(v.cards, len(v.cards)), " ")))
}

func (v *ParticipantView) DisableInteraction() {
	if v.disabled {
		return
	}
	v.disabled = true
	box := pterm.DefaultBox.WithTitle(v.title()).WithTitleTopCenter()
	v.console.print(box.Sprint(strings.Join(faces(v.cards, len(v.cards)), " ")) + "\n")
}

// Disabled reports whether the hand stopped taking actions.
func (v *ParticipantView) Disabled() bool {
	return v.disabled
}

func (v *ParticipantView) title() string {
	return pterm.LightCyan(fmt.Sprintf("Player %d", v.playerID))
}

// HouseView keeps every card after the first face down until the house is
// done playing.
type HouseView struct {
	console  *Console
	cards    []domain.Card
	revealed bool
}

func (v *HouseView) ClearHand() {
	v.cards = v.cards[:0]
	v.revealed = false
}

func (v *HouseView) AddCard(card domain.Card) {
	v.cards = append(v.cards, card)
	if v.revealed {
		return
	}
	v.console.print(pterm.Sprintfln("%s %s", pterm.LightYellow("House"), strings.Join(faces(v.cards, 1), " ")))
}

func (v *HouseView) DisableInteraction() {
	if v.revealed {
		return
	}
	v.revealed = true
	box := pterm.DefaultBox.WithTitle(pterm.LightYellow("House")).WithTitleTopCenter()
	v.console.print(box.Sprint(strings.Join(faces(v.cards, len(v.cards)), " ")) + "\n")
}

// faces renders the first open cards and masks the rest.
func faces(cards []domain.Card, open int) []string {
	out := make([]string, 0, len(cards))
	for i, card := range cards {
		if i >= open {
			out = append(out, "[??]")
			continue
		}
		out = append(out, face(card))
	}
	return out
}

func face(card domain.Card) string {
	s := "[" + card.String() + "]"
	if card.Suit == "H" || card.Suit == "D" {
		return pterm.LightRed(s)
	}
	return pterm.LightWhite(s)
}
