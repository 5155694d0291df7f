package nakama

import (
	"context"
	"database/sql"
	"math/rand"

	"blackjack/internal/app"
	"blackjack/internal/config"
	"blackjack/internal/gateway"

	"github.com/heroiclabs/nakama-common/runtime"
)

// MatchState holds the authoritative runtime state for the Nakama match handler.
type MatchState struct {
	Table      config.Table     `json:"table"`
	Conns      map[string]int64 `json:"conns"`       // session id -> connection id
	EmptySince int64            `json:"empty_since"` // tick the last player left, 0 while seated
	Gateway    *gateway.Gateway `json:"-"`

	dispatcher runtime.MatchDispatcher
	label      string
}

// NewMatch is the factory function registered with Nakama.
func NewMatch(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule) (runtime.Match, error) {
	return &matchHandler{}, nil
}

type matchHandler struct{}

// tableConfig reads data/table.json once and applies blackjack_* keys from
// the runtime environment.
func tableConfig(ctx context.Context, logger runtime.Logger) config.Table {
	if err := config.LoadTable("data/table.json"); err != nil {
		logger.Warn("MatchInit: Could not load table config: %v", err)
	}
	table := config.Get()

	env, _ := ctx.Value(runtime.RUNTIME_CTX_ENV).(map[string]string)
	withEnv, err := config.ApplyEnv(table, env)
	if err != nil {
		logger.Warn("MatchInit: Ignoring environment overrides: %v", err)
		return table
	}
	return withEnv
}

// MatchInit is called when the match is created.
func (mh *matchHandler) MatchInit(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, params map[string]interface{}) (interface{}, int, string) {
	logger.Debug("MatchInit: Initializing match handler.")

	table := tableConfig(ctx, logger)
	opts := app.Options{
		MaxPlayers:   table.MaxPlayers,
		House:        table.HouseEnabled,
		HouseStandOn: table.HouseStandOn,
	}
	if table.Seed != 0 {
		opts.Rand = rand.New(rand.NewSource(table.Seed))
	}
	session, err := app.NewSession(opts)
	if err != nil {
		logger.Error("MatchInit: Failed to create session: %v", err)
		return nil, 0, ""
	}

	state := &MatchState{
		Table:   table,
		Conns:   make(map[string]int64),
		Gateway: gateway.New(session, logger.WithField("table_id", session.ID().String())),
	}

	label, err := matchLabel(session.Snapshot())
	if err != nil {
		logger.Error("MatchInit: Failed to marshal label: %v", err)
		return nil, 0, ""
	}
	state.label = label

	return state, tickRate, label
}

func (mh *matchHandler) MatchJoinAttempt(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presence runtime.Presence, metadata map[string]string) (interface{}, bool, string) {
	matchState, ok := state.(*MatchState)
	if !ok {
		return state, false, "state not found"
	}
	if _, seated := matchState.Conns[presence.GetSessionId()]; seated {
		return state, false, "already joined"
	}
	if matchState.Gateway.Count() >= matchState.Table.MaxPlayers {
		return state, false, "match_full"
	}
	return state, true, ""
}

func (mh *matchHandler) MatchJoin(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presences []runtime.Presence) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		logger.Error("MatchJoin: state not found")
		return state
	}
	matchState.dispatcher = dispatcher

	for _, p := range presences {
		conn := &presenceConn{presence: p, state: matchState}
		id, err := matchState.Gateway.OnConnect(ctx, conn)
		if err != nil {
			logger.Warn("MatchJoin: User %s refused: %v", p.GetUserId(), err)
			_ = conn.Close()
			continue
		}
		matchState.Conns[p.GetSessionId()] = id
		logger.Debug("MatchJoin: User %s seated as connection %d.", p.GetUserId(), id)
	}
	if len(matchState.Conns) > 0 {
		matchState.EmptySince = 0
	}

	mh.updateLabel(matchState, dispatcher, logger)
	return matchState
}

func (mh *matchHandler) MatchLeave(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presences []runtime.Presence) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		logger.Error("MatchLeave: state not found")
		return state
	}
	matchState.dispatcher = dispatcher

	for _, p := range presences {
		id, seated := matchState.Conns[p.GetSessionId()]
		if !seated {
			continue
		}
		delete(matchState.Conns, p.GetSessionId())
		_ = matchState.Gateway.OnClose(ctx, id)
		logger.Debug("MatchLeave: User %s (connection %d) left.", p.GetUserId(), id)
	}
	if len(matchState.Conns) == 0 && matchState.EmptySince == 0 {
		matchState.EmptySince = tick
	}

	mh.updateLabel(matchState, dispatcher, logger)
	return matchState
}

func (mh *matchHandler) MatchLoop(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, messages []runtime.MatchData) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		return state
	}
	matchState.dispatcher = dispatcher

	for _, msg := range messages {
		id, seated := matchState.Conns[msg.GetSessionId()]
		if !seated {
			logger.Warn("MatchLoop: Message from unseated session %s dropped.", msg.GetSessionId())
			continue
		}
		switch msg.GetOpCode() {
		case OpClientMessage:
			_ = matchState.Gateway.OnMessage(ctx, id, msg.GetData())
		default:
			logger.Warn("MatchLoop: Unknown opcode received: %d", msg.GetOpCode())
		}
	}
	if len(messages) > 0 {
		mh.updateLabel(matchState, dispatcher, logger)
	}

	if len(matchState.Conns) == 0 {
		if matchState.EmptySince == 0 {
			matchState.EmptySince = tick
		}
		if tick-matchState.EmptySince >= emptyTicks {
			logger.Info("MatchLoop: Table empty for %d ticks, terminating.", tick-matchState.EmptySince)
			return nil
		}
	}
	return matchState
}

func (mh *matchHandler) MatchTerminate(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, graceSeconds int) interface{} {
	logger.Info("MatchTerminate: Shutting down in %d seconds.", graceSeconds)
	return state
}

func (mh *matchHandler) MatchSignal(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, data string) (interface{}, string) {
	return state, ""
}
