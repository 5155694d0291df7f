package gateway

import (
	"blackjack/internal/app"
	"blackjack/internal/domain"
	"blackjack/internal/protocol"
)

// Envelope is an outbound message and who gets it. Nil recipients means
// every connection.
type Envelope struct {
	Message    protocol.Outbound
	Recipients []int64
}

// Translate maps one session event to the client messages it produces.
func Translate(ev app.Event) []Envelope {
	switch p := ev.Payload.(type) {
	case app.RoundStartedPayload:
		if p.HouseUpCard == nil {
			return nil
		}
		return []Envelope{{Message: protocol.Outbound{
			Type:  protocol.TypeDeal,
			ID:    domain.HouseID,
			Cards: []domain.Card{*p.HouseUpCard},
		}}}

	case app.HandDealtPayload:
		return []Envelope{{
			Message: protocol.Outbound{
				Type:   protocol.TypeDeal,
				ID:     p.PlayerID,
				Cards:  p.Hand,
				Score:  protocol.IntPtr(p.Score),
				Status: p.Status,
			},
			Recipients: ev.Recipients,
		}}

	case app.CardDrawnPayload:
		return []Envelope{{
			Message: protocol.Outbound{
				Type:   drawType(p.Status),
				ID:     p.PlayerID,
				Cards:  p.Drawn,
				Score:  protocol.IntPtr(p.Score),
				Status: p.Status,
			},
			Recipients: ev.Recipients,
		}}

	case app.PlayerStoodPayload:
		return []Envelope{{Message: protocol.Outbound{
			Type:   protocol.TypeStay,
			ID:     p.PlayerID,
			Score:  protocol.IntPtr(p.Score),
			Status: domain.StatusStood,
		}}}

	case app.TurnChangedPayload:
		return []Envelope{{Message: protocol.Outbound{
			Type: protocol.TypeTurn,
			ID:   p.PlayerID,
			Turn: protocol.IDPtr(p.PlayerID),
		}}}

	case app.PlayerLeftPayload:
		return []Envelope{{Message: protocol.Outbound{
			Type: protocol.TypeDisconnected,
			ID:   p.PlayerID,
		}}}

	case app.RoundEndedPayload:
		msg := protocol.Outbound{Type: protocol.TypeRoundEnd}
		if p.House != nil {
			house := result(*p.House)
			msg.House = &house
		}
		for _, r := range p.Results {
			msg.Results = append(msg.Results, result(r))
		}
		return []Envelope{{Message: msg}}

	case app.RoundAbortedPayload:
		return []Envelope{{Message: protocol.Outbound{
			Type: protocol.TypeRoundEnd,
			Msg:  "round aborted: " + p.Reason,
		}}}
	}
	// Joins are acknowledged by the CONNECTED reply alone.
	return nil
}

func drawType(status domain.Status) protocol.MessageType {
	switch status {
	case domain.StatusBust:
		return protocol.TypeBust
	case domain.StatusBlackjack:
		return protocol.TypeBlackjack
	default:
		return protocol.TypeHit
	}
}

func result(r app.Result) protocol.Result {
	return protocol.Result{
		ID:      r.PlayerID,
		Cards:   r.Hand,
		Score:   r.Score,
		Status:  r.Status,
		Outcome: string(r.Outcome),
	}
}
