package app

import (
	"errors"
	"math/rand"
	"reflect"
	"sync"
	"testing"

	"blackjack/internal/domain"
)

var c = domain.NewCard

func newTestSession(t *testing.T, house bool, cards ...domain.Card) *Session {
	t.Helper()
	s, err := NewSession(Options{
		Deck:  domain.NewStackedDeck(rand.New(rand.NewSource(42)), cards...),
		House: house,
	})
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	return s
}

func kinds(events []Event) []EventKind {
	out := make([]EventKind, 0, len(events))
	for _, ev := range events {
		out = append(out, ev.Kind)
	}
	return out
}

func mustJoin(t *testing.T, s *Session, id int64) []Event {
	t.Helper()
	evs, err := s.Join(id)
	if err != nil {
		t.Fatalf("join %d: %v", id, err)
	}
	return evs
}

func TestJoinStartsRound(t *testing.T) {
	s := newTestSession(t, false, c(5, "S"), c(9, "H"))

	evs := mustJoin(t, s, 1)
	want := []EventKind{EventPlayerJoined, EventRoundStarted, EventHandDealt, EventTurnChanged}
	if !reflect.DeepEqual(kinds(evs), want) {
		t.Fatalf("events = %v, want %v", kinds(evs), want)
	}

	dealt := evs[2].Payload.(HandDealtPayload)
	if len(dealt.Hand) != 2 || dealt.Score != 14 || dealt.Status != domain.StatusActive {
		t.Fatalf("dealt = %+v", dealt)
	}
	if !reflect.DeepEqual(evs[2].Recipients, []int64{1}) {
		t.Fatalf("hand should be private, recipients = %v", evs[2].Recipients)
	}

	snap := s.Snapshot()
	if snap.Phase != PhasePlaying || !snap.HasTurn || snap.TurnHolder != 1 {
		t.Fatalf("snapshot = %+v", snap)
	}
}

func TestDealDemotesWhenOverCeiling(t *testing.T) {
	s := newTestSession(t, false, c(domain.RankAce, "S"), c(domain.RankAce, "H"))
	mustJoin(t, s, 1)

	p, ok := s.Player(1)
	if !ok {
		t.Fatal("player missing")
	}
	if p.Score != 12 || len(p.Hand) != 2 {
		t.Fatalf("score = %d hand = %v, want 12 with two cards", p.Score, p.Hand)
	}
}

func TestHitToCeilingEndsTurn(t *testing.T) {
	s := newTestSession(t, false, c(5, "S"), c(6, "H"), c(domain.RankKing, "D"), c(2, "C"))
	mustJoin(t, s, 1)

	evs, err := s.Hit(1)
	if err != nil {
		t.Fatalf("hit: %v", err)
	}
	if !reflect.DeepEqual(kinds(evs), []EventKind{EventCardDrawn, EventRoundEnded}) {
		t.Fatalf("events = %v", kinds(evs))
	}
	drawn := evs[0].Payload.(CardDrawnPayload)
	if drawn.Status != domain.StatusBlackjack || drawn.Score != 21 {
		t.Fatalf("drawn = %+v", drawn)
	}

	_, err = s.Hit(1)
	if !errors.Is(err, ErrNotYourTurn) || !errors.Is(err, domain.ErrOutOfTurn) {
		t.Fatalf("err = %v, want out of turn", err)
	}
	p, _ := s.Player(1)
	if len(p.Hand) != 3 || p.Score != 21 {
		t.Fatalf("hand mutated after blackjack: %+v", p)
	}
}

func TestHitDemotesInsteadOfBust(t *testing.T) {
	s := newTestSession(t, false, c(domain.RankAce, "S"), c(2, "H"), c(domain.RankKing, "D"))
	mustJoin(t, s, 1)

	evs, err := s.Hit(1)
	if err != nil {
		t.Fatalf("hit: %v", err)
	}
	drawn := evs[0].Payload.(CardDrawnPayload)
	if drawn.Score != 13 || drawn.Status != domain.StatusActive {
		t.Fatalf("drawn = %+v, want 13/active", drawn)
	}
	if len(evs) != 1 {
		t.Fatalf("turn should not advance, events = %v", kinds(evs))
	}
}

func TestBustAdvancesToNextPlayer(t *testing.T) {
	s := newTestSession(t, false,
		c(domain.RankKing, "S"), c(6, "H"), // player 1: 16
		c(5, "D"), c(5, "C"), // player 2: 10
		c(domain.RankKing, "D"), // player 1 busts
	)
	mustJoin(t, s, 1)
	mustJoin(t, s, 2)

	evs, err := s.Hit(1)
	if err != nil {
		t.Fatalf("hit: %v", err)
	}
	if !reflect.DeepEqual(kinds(evs), []EventKind{EventCardDrawn, EventTurnChanged}) {
		t.Fatalf("events = %v", kinds(evs))
	}
	if evs[0].Payload.(CardDrawnPayload).Status != domain.StatusBust {
		t.Fatalf("player 1 should be bust")
	}
	if got := evs[1].Payload.(TurnChangedPayload).PlayerID; got != 2 {
		t.Fatalf("turn moved to %d, want 2", got)
	}
}

func TestOutOfTurnActionDoesNotMutate(t *testing.T) {
	s := newTestSession(t, false, c(5, "S"), c(5, "H"), c(4, "D"), c(4, "C"), c(3, "S"))
	mustJoin(t, s, 1)
	mustJoin(t, s, 2)

	before, _ := s.Player(2)
	if _, err := s.Hit(2); !errors.Is(err, domain.ErrOutOfTurn) {
		t.Fatalf("hit err = %v, want out of turn", err)
	}
	if _, err := s.Stand(2); !errors.Is(err, domain.ErrOutOfTurn) {
		t.Fatalf("stand err = %v, want out of turn", err)
	}
	after, _ := s.Player(2)
	if !reflect.DeepEqual(before, after) {
		t.Fatalf("player 2 mutated: %+v -> %+v", before, after)
	}
	if _, err := s.Hit(99); !errors.Is(err, ErrUnknownPlayer) {
		t.Fatalf("unknown player err = %v", err)
	}
}

func TestPrematureAdvance(t *testing.T) {
	s := newTestSession(t, false, c(5, "S"), c(5, "H"))
	mustJoin(t, s, 1)
	if _, err := s.AdvanceTurn(); !errors.Is(err, ErrPrematureAdvance) {
		t.Fatalf("err = %v, want ErrPrematureAdvance", err)
	}
}

func TestRoundEndFiresOnce(t *testing.T) {
	s := newTestSession(t, false, c(5, "S"), c(5, "H"), c(4, "D"), c(4, "C"))
	mustJoin(t, s, 1)
	mustJoin(t, s, 2)

	var all []Event
	evs, err := s.Stand(1)
	if err != nil {
		t.Fatalf("stand 1: %v", err)
	}
	all = append(all, evs...)
	evs, err = s.Stand(2)
	if err != nil {
		t.Fatalf("stand 2: %v", err)
	}
	all = append(all, evs...)
	if _, err := s.AdvanceTurn(); !errors.Is(err, ErrNotPlaying) {
		t.Fatalf("advance after end err = %v", err)
	}

	ended := 0
	var payload RoundEndedPayload
	for _, ev := range all {
		if ev.Kind == EventRoundEnded {
			ended++
			payload = ev.Payload.(RoundEndedPayload)
		}
	}
	if ended != 1 {
		t.Fatalf("round_ended fired %d times", ended)
	}
	if payload.House != nil || len(payload.Results) != 2 {
		t.Fatalf("payload = %+v", payload)
	}
	if payload.Results[0].Outcome != OutcomeWin || payload.Results[1].Outcome != OutcomeLose {
		t.Fatalf("outcomes = %+v", payload.Results)
	}
	if s.Phase() != PhaseEnded {
		t.Fatalf("phase = %s", s.Phase())
	}
}

func TestDisconnectOfActivePlayerAdvances(t *testing.T) {
	s := newTestSession(t, false, c(5, "S"), c(5, "H"), c(4, "D"), c(4, "C"))
	mustJoin(t, s, 1)
	mustJoin(t, s, 2)

	evs, err := s.Leave(1)
	if err != nil {
		t.Fatalf("leave: %v", err)
	}
	if !reflect.DeepEqual(kinds(evs), []EventKind{EventPlayerLeft, EventTurnChanged}) {
		t.Fatalf("events = %v", kinds(evs))
	}
	snap := s.Snapshot()
	if len(snap.Players) != 1 || snap.Players[0].PlayerID != 2 {
		t.Fatalf("roster = %+v", snap.Players)
	}
	if snap.TurnHolder != 2 {
		t.Fatalf("turn holder = %d, want 2", snap.TurnHolder)
	}
	if _, err := s.Leave(1); !errors.Is(err, ErrUnknownPlayer) {
		t.Fatalf("second leave err = %v", err)
	}
}

func TestLeaveBeforeTurnHolderKeepsTurn(t *testing.T) {
	s := newTestSession(t, false, c(5, "S"), c(5, "H"), c(4, "D"), c(4, "C"), c(3, "D"), c(3, "C"))
	mustJoin(t, s, 1)
	mustJoin(t, s, 2)
	mustJoin(t, s, 3)
	if _, err := s.Stand(1); err != nil {
		t.Fatalf("stand: %v", err)
	}

	evs, err := s.Leave(1)
	if err != nil {
		t.Fatalf("leave: %v", err)
	}
	if len(evs) != 1 {
		t.Fatalf("events = %v, turn should not move", kinds(evs))
	}
	if snap := s.Snapshot(); snap.TurnHolder != 2 {
		t.Fatalf("turn holder = %d, want 2", snap.TurnHolder)
	}
}

func TestLastPlayerLeavingIdlesTable(t *testing.T) {
	s := newTestSession(t, true, c(5, "S"), c(5, "H"), c(4, "D"), c(4, "C"))
	mustJoin(t, s, 1)
	if _, err := s.Leave(1); err != nil {
		t.Fatalf("leave: %v", err)
	}
	if s.Phase() != PhaseIdle || s.Count() != 0 {
		t.Fatalf("phase = %s count = %d", s.Phase(), s.Count())
	}
}

func TestMidRoundJoinIsQueued(t *testing.T) {
	s := newTestSession(t, false, c(5, "S"), c(5, "H"), c(4, "D"), c(4, "C"))
	mustJoin(t, s, 1)

	evs := mustJoin(t, s, 2)
	if !reflect.DeepEqual(kinds(evs), []EventKind{EventPlayerJoined, EventHandDealt}) {
		t.Fatalf("events = %v", kinds(evs))
	}
	evs, err := s.Stand(1)
	if err != nil {
		t.Fatalf("stand: %v", err)
	}
	if got := evs[len(evs)-1].Payload.(TurnChangedPayload).PlayerID; got != 2 {
		t.Fatalf("turn = %d, want 2", got)
	}
}

func TestNaturalOnDealEndsRound(t *testing.T) {
	s := newTestSession(t, false,
		c(domain.RankAce, "S"), c(domain.RankKing, "H"),
		c(5, "D"), c(6, "D"), c(7, "D"), c(8, "D"),
	)
	evs := mustJoin(t, s, 1)
	if got := kinds(evs); got[len(got)-1] != EventRoundEnded {
		t.Fatalf("events = %v, want round to end on the deal", got)
	}

	evs = mustJoin(t, s, 2)
	if len(evs) != 1 {
		t.Fatalf("join after round end should only seat, got %v", kinds(evs))
	}
	if p, _ := s.Player(2); p.Status != domain.StatusWaiting {
		t.Fatalf("status = %s, want waiting", p.Status)
	}

	evs, err := s.StartRound()
	if err != nil {
		t.Fatalf("start round: %v", err)
	}
	if kinds(evs)[0] != EventRoundStarted {
		t.Fatalf("events = %v", kinds(evs))
	}
	if _, err := s.StartRound(); !errors.Is(err, ErrRoundInProgress) {
		t.Fatalf("err = %v, want ErrRoundInProgress", err)
	}
}

func TestHouseBustsAndPlayerWins(t *testing.T) {
	s := newTestSession(t, true,
		c(10, "S"), c(8, "H"), // player: 18
		c(10, "D"), c(6, "C"), // house: 16
		c(domain.RankKing, "S"), // house busts
	)
	evs := mustJoin(t, s, 1)
	started := evs[1].Payload.(RoundStartedPayload)
	if started.HouseUpCard == nil || started.HouseUpCard.Rank != 10 {
		t.Fatalf("house up card = %+v", started.HouseUpCard)
	}

	evs, err := s.Stand(1)
	if err != nil {
		t.Fatalf("stand: %v", err)
	}
	end := evs[len(evs)-1].Payload.(RoundEndedPayload)
	if end.House == nil || end.House.Status != domain.StatusBust || len(end.House.Hand) != 3 {
		t.Fatalf("house = %+v", end.House)
	}
	if end.Results[0].Outcome != OutcomeWin {
		t.Fatalf("outcome = %s, want win", end.Results[0].Outcome)
	}
}

func TestHousePush(t *testing.T) {
	s := newTestSession(t, true, c(10, "S"), c(7, "H"), c(10, "D"), c(7, "C"))
	mustJoin(t, s, 1)
	evs, err := s.Stand(1)
	if err != nil {
		t.Fatalf("stand: %v", err)
	}
	end := evs[len(evs)-1].Payload.(RoundEndedPayload)
	if end.House.Status != domain.StatusStood || end.Results[0].Outcome != OutcomePush {
		t.Fatalf("end = %+v", end)
	}
}

func TestTableFull(t *testing.T) {
	s, err := NewSession(Options{Rand: rand.New(rand.NewSource(1)), MaxPlayers: 1})
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	mustJoin(t, s, 1)
	if _, err := s.Join(2); !errors.Is(err, ErrTableFull) {
		t.Fatalf("err = %v, want ErrTableFull", err)
	}
	if _, err := s.Join(1); !errors.Is(err, ErrDuplicatePlayer) {
		t.Fatalf("err = %v, want ErrDuplicatePlayer", err)
	}
}

func TestEmptyDeckAbortsRound(t *testing.T) {
	s := newTestSession(t, false, c(2, "S"), c(3, "H"))
	mustJoin(t, s, 1)

	evs, err := s.Hit(1)
	if !errors.Is(err, domain.ErrEmptyDeck) {
		t.Fatalf("err = %v, want ErrEmptyDeck", err)
	}
	if !reflect.DeepEqual(kinds(evs), []EventKind{EventRoundAborted}) {
		t.Fatalf("events = %v", kinds(evs))
	}
	if s.Phase() != PhaseEnded {
		t.Fatalf("phase = %s", s.Phase())
	}

	// Cards went back to the discard pile, so a new round can be dealt.
	if _, err := s.StartRound(); err != nil {
		t.Fatalf("start round after abort: %v", err)
	}
}

func TestBadHouseThreshold(t *testing.T) {
	if _, err := NewSession(Options{House: true, HouseStandOn: 30}); err == nil {
		t.Fatal("expected error for stand threshold above the ceiling")
	}
}

func TestConcurrentActionsAreSerialized(t *testing.T) {
	s, err := NewSession(Options{Rand: rand.New(rand.NewSource(5)), House: true})
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	for id := int64(1); id <= 4; id++ {
		mustJoin(t, s, id)
	}

	var wg sync.WaitGroup
	for id := int64(1); id <= 4; id++ {
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				if i%3 == 0 {
					_, _ = s.Stand(id)
				} else {
					_, _ = s.Hit(id)
				}
				_ = s.Snapshot()
			}
		}(id)
	}
	wg.Wait()

	for _, p := range s.Snapshot().Players {
		sum := 0
		for _, card := range p.Hand {
			sum += card.Value
		}
		if sum != p.Score {
			t.Fatalf("player %d score %d != hand sum %d", p.PlayerID, p.Score, sum)
		}
	}
}
