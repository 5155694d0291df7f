package app

import (
	"errors"
	"fmt"
	"math/rand"
	"sync"

	"blackjack/internal/bot"
	"blackjack/internal/domain"

	"github.com/google/uuid"
)

// Phase represents the lifecycle stage of the table.
type Phase string

const (
	// PhaseIdle is a table with no round dealt yet.
	PhaseIdle Phase = "idle"
	// PhasePlaying is a round in progress with exactly one turn holder.
	PhasePlaying Phase = "playing"
	// PhaseEnded is the state after a round resolved or was aborted.
	PhaseEnded Phase = "ended"
)

var (
	ErrUnknownPlayer    = errors.New("player not found")
	ErrDuplicatePlayer  = errors.New("player already seated")
	ErrTableFull        = errors.New("table is full")
	ErrNoPlayers        = errors.New("no players seated")
	ErrRoundInProgress  = errors.New("round already in progress")
	ErrNotPlaying       = errors.New("no round in progress")
	ErrPrematureAdvance = errors.New("turn holder is still active")
	// ErrNotYourTurn also matches domain.ErrOutOfTurn.
	ErrNotYourTurn = fmt.Errorf("not your turn: %w", domain.ErrOutOfTurn)
)

// ViewFactory selects the rendering surface for a new hand by role.
type ViewFactory func(playerID int64, role domain.Role) domain.HandView

// Options configures a Session.
type Options struct {
	Rand         *rand.Rand
	Deck         *domain.Deck // overrides the shuffled deck built from Rand
	MaxPlayers   int
	House        bool
	HouseStandOn int
	Views        ViewFactory
}

// Session is one table: the deck, the ordered roster and the turn. Every
// exported method is serialized on one lock and returns events built from
// copies, so callers can deliver them after the lock is released.
type Session struct {
	mu sync.Mutex

	id      uuid.UUID
	roundID uuid.UUID
	phase   Phase

	deck   *domain.Deck
	roster []*domain.Player
	turn   int // roster index of the turn holder, -1 when none

	house  *domain.Player
	dealer *bot.Agent

	maxPlayers int
	views      ViewFactory
}

// NewSession creates a table with a freshly shuffled deck.
func NewSession(opts Options) (*Session, error) {
	s := &Session{
		id:         uuid.New(),
		phase:      PhaseIdle,
		deck:       opts.Deck,
		turn:       -1,
		maxPlayers: opts.MaxPlayers,
		views:      opts.Views,
	}
	if s.deck == nil {
		s.deck = domain.NewShuffledDeck(opts.Rand)
	}
	if s.maxPlayers <= 0 {
		s.maxPlayers = DefaultMaxPlayers
	}
	if s.views == nil {
		s.views = func(int64, domain.Role) domain.HandView { return domain.NopView{} }
	}
	if opts.House {
		standOn := opts.HouseStandOn
		if standOn == 0 {
			standOn = bot.DefaultStandOn
		}
		dealer, err := bot.NewAgent(standOn)
		if err != nil {
			return nil, fmt.Errorf("house agent: %w", err)
		}
		s.dealer = dealer
		s.house = domain.NewPlayer(domain.HouseID, domain.RoleHouse, s.views(domain.HouseID, domain.RoleHouse))
	}
	return s, nil
}

// ID is the table identifier.
func (s *Session) ID() uuid.UUID {
	return s.id
}

// Join seats a new player at the end of the turn order. The first player on an
// idle table starts a round; a player joining mid-round is dealt in at once.
func (s *Session) Join(playerID int64) ([]Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.indexOf(playerID) >= 0 {
		return nil, ErrDuplicatePlayer
	}
	if len(s.roster) >= s.maxPlayers {
		return nil, ErrTableFull
	}

	p := domain.NewPlayer(playerID, domain.RoleParticipant, s.views(playerID, domain.RoleParticipant))
	s.roster = append(s.roster, p)

	events := []Event{{
		Kind:    EventPlayerJoined,
		Payload: PlayerJoinedPayload{PlayerID: playerID, Seat: len(s.roster) - 1, Players: len(s.roster)},
	}}

	switch s.phase {
	case PhaseIdle:
		return append(events, s.startRoundLocked()...), nil
	case PhasePlaying:
		if _, err := p.Deal(s.deck); err != nil {
			return append(events, s.abortLocked(err)...), err
		}
		events = append(events, handDealt(p))
	}
	return events, nil
}

// Leave removes a player. A player holding the turn stands first so the turn
// moves on to the next active player.
func (s *Session) Leave(playerID int64) ([]Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(playerID)
	if idx < 0 {
		return nil, ErrUnknownPlayer
	}
	p := s.roster[idx]

	heldTurn := s.phase == PhasePlaying && idx == s.turn
	if heldTurn && p.Status == domain.StatusActive {
		_ = p.Stand()
	}
	s.deck.ResetRound(p)
	s.roster = append(s.roster[:idx], s.roster[idx+1:]...)
	if s.turn > idx {
		s.turn--
	}

	events := []Event{{
		Kind:    EventPlayerLeft,
		Payload: PlayerLeftPayload{PlayerID: playerID, Players: len(s.roster)},
	}}

	if len(s.roster) == 0 {
		s.deck.ResetRound(s.house)
		s.phase = PhaseIdle
		s.turn = -1
		return events, nil
	}
	if heldTurn {
		events = append(events, s.moveTurnLocked(idx)...)
	}
	return events, nil
}

// StartRound returns every hand to the discard pile, deals each player in
// roster order and gives the turn to the first active player.
func (s *Session) StartRound() ([]Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase == PhasePlaying {
		return nil, ErrRoundInProgress
	}
	if len(s.roster) == 0 {
		return nil, ErrNoPlayers
	}
	return s.startRoundLocked(), nil
}

// AdvanceTurn moves the turn to the next active player, ending the round when
// nobody is left to act.
func (s *Session) AdvanceTurn() ([]Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.advanceLocked()
}

// Hit draws one card for the turn holder.
func (s *Session) Hit(playerID int64) ([]Event, error) {
	return s.ApplyHit(playerID, 1)
}

// ApplyHit draws n cards for the turn holder and advances the turn when the
// hand resolves.
func (s *Session) ApplyHit(playerID int64, n int) ([]Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := s.turnHolder(playerID)
	if err != nil {
		return nil, err
	}
	drawn, err := p.Hit(s.deck, n)
	if err != nil {
		if errors.Is(err, domain.ErrEmptyDeck) {
			return s.abortLocked(err), err
		}
		return nil, err
	}

	events := []Event{{
		Kind: EventCardDrawn,
		Payload: CardDrawnPayload{
			PlayerID: p.ID,
			Drawn:    drawn,
			Hand:     p.Cards(),
			Score:    p.Score,
			Status:   p.Status,
		},
		Recipients: []int64{p.ID},
	}}
	if p.Status.Terminal() {
		advanced, err := s.advanceLocked()
		if err != nil {
			return events, err
		}
		events = append(events, advanced...)
	}
	return events, nil
}

// Stand ends the turn holder's round and advances the turn.
func (s *Session) Stand(playerID int64) ([]Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := s.turnHolder(playerID)
	if err != nil {
		return nil, err
	}
	if err := p.Stand(); err != nil {
		return nil, err
	}

	events := []Event{{
		Kind:    EventPlayerStood,
		Payload: PlayerStoodPayload{PlayerID: p.ID, Score: p.Score},
	}}
	advanced, err := s.advanceLocked()
	if err != nil {
		return events, err
	}
	return append(events, advanced...), nil
}

func (s *Session) turnHolder(playerID int64) (*domain.Player, error) {
	idx := s.indexOf(playerID)
	if idx < 0 {
		return nil, ErrUnknownPlayer
	}
	if s.phase != PhasePlaying || idx != s.turn {
		return nil, ErrNotYourTurn
	}
	return s.roster[idx], nil
}

func (s *Session) indexOf(playerID int64) int {
	for i, p := range s.roster {
		if p.ID == playerID {
			return i
		}
	}
	return -1
}

func (s *Session) startRoundLocked() []Event {
	s.deck.ResetRound(s.roster...)
	s.deck.ResetRound(s.house)
	s.roundID = uuid.New()
	s.phase = PhasePlaying
	s.turn = -1

	started := RoundStartedPayload{RoundID: s.roundID}
	var dealt []Event
	for _, p := range s.roster {
		if _, err := p.Deal(s.deck); err != nil {
			return append(append([]Event{{Kind: EventRoundStarted, Payload: started}}, dealt...), s.abortLocked(err)...)
		}
		dealt = append(dealt, handDealt(p))
	}
	if s.house != nil {
		if _, err := s.house.Deal(s.deck); err != nil {
			return append(append([]Event{{Kind: EventRoundStarted, Payload: started}}, dealt...), s.abortLocked(err)...)
		}
		up := s.house.Hand[0]
		started.HouseUpCard = &up
	}

	events := append([]Event{{Kind: EventRoundStarted, Payload: started}}, dealt...)
	return append(events, s.moveTurnLocked(0)...)
}

func (s *Session) advanceLocked() ([]Event, error) {
	if s.phase != PhasePlaying {
		return nil, ErrNotPlaying
	}
	if s.turn >= 0 && s.roster[s.turn].Status == domain.StatusActive {
		return nil, ErrPrematureAdvance
	}
	return s.moveTurnLocked(s.turn + 1), nil
}

// moveTurnLocked hands the turn to the first active player at or after start,
// wrapping around, or ends the round when there is none.
func (s *Session) moveTurnLocked(start int) []Event {
	n := len(s.roster)
	for k := 0; k < n; k++ {
		i := (start + k) % n
		if s.roster[i].Status == domain.StatusActive {
			s.turn = i
			return []Event{{
				Kind:    EventTurnChanged,
				Payload: TurnChangedPayload{PlayerID: s.roster[i].ID},
			}}
		}
	}
	return s.endRoundLocked()
}

func (s *Session) endRoundLocked() []Event {
	if s.phase != PhasePlaying {
		return nil
	}
	s.turn = -1

	payload := RoundEndedPayload{RoundID: s.roundID}
	if s.house != nil {
		if _, err := s.dealer.Play(s.house, s.deck); err != nil {
			return s.abortLocked(err)
		}
		house := resultOf(s.house)
		payload.House = &house
	}
	payload.Results = s.scoreLocked()
	s.phase = PhaseEnded

	return []Event{{Kind: EventRoundEnded, Payload: payload}}
}

func (s *Session) scoreLocked() []Result {
	best := 0
	for _, p := range s.roster {
		if p.Status != domain.StatusBust && p.Status != domain.StatusWaiting && p.Score > best {
			best = p.Score
		}
	}

	var results []Result
	for _, p := range s.roster {
		if p.Status == domain.StatusWaiting {
			continue
		}
		r := resultOf(p)
		switch {
		case p.Status == domain.StatusBust:
			r.Outcome = OutcomeLose
		case s.house == nil:
			if p.Score == best {
				r.Outcome = OutcomeWin
			} else {
				r.Outcome = OutcomeLose
			}
		case s.house.Status == domain.StatusBust || p.Score > s.house.Score:
			r.Outcome = OutcomeWin
		case p.Score == s.house.Score:
			r.Outcome = OutcomePush
		default:
			r.Outcome = OutcomeLose
		}
		results = append(results, r)
	}
	return results
}

func (s *Session) abortLocked(cause error) []Event {
	s.deck.ResetRound(s.roster...)
	s.deck.ResetRound(s.house)
	s.phase = PhaseEnded
	s.turn = -1
	return []Event{{
		Kind:    EventRoundAborted,
		Payload: RoundAbortedPayload{RoundID: s.roundID, Reason: cause.Error()},
	}}
}

func handDealt(p *domain.Player) Event {
	return Event{
		Kind: EventHandDealt,
		Payload: HandDealtPayload{
			PlayerID: p.ID,
			Hand:     p.Cards(),
			Score:    p.Score,
			Status:   p.Status,
		},
		Recipients: []int64{p.ID},
	}
}

func resultOf(p *domain.Player) Result {
	return Result{PlayerID: p.ID, Hand: p.Cards(), Score: p.Score, Status: p.Status}
}
