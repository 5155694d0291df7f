package domain

// HandView is the rendering surface attached to a hand. Calls are synchronous
// notifications; the hand never waits on or inspects their outcome.
type HandView interface {
	ClearHand()
	AddCard(card Card)
	DisableInteraction()
}

// NopView discards every notification.
type NopView struct{}

func (NopView) ClearHand()          {}
func (NopView) AddCard(Card)        {}
func (NopView) DisableInteraction() {}
