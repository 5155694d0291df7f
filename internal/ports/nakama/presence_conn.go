package nakama

import (
	"context"
	"encoding/json"
	"fmt"

	"blackjack/internal/protocol"

	"github.com/heroiclabs/nakama-common/runtime"
)

// presenceConn adapts one match presence to the gateway's connection
// contract. Nakama invokes match callbacks one at a time, so the dispatcher
// reference is always the one of the running callback.
type presenceConn struct {
	presence runtime.Presence
	state    *MatchState
}

func (c *presenceConn) Send(_ context.Context, data []byte) error {
	dispatcher := c.state.dispatcher
	if dispatcher == nil {
		return fmt.Errorf("no dispatcher for %s", c.presence.GetSessionId())
	}
	return dispatcher.BroadcastMessage(opCodeFor(data), data, []runtime.Presence{c.presence}, nil, true)
}

func (c *presenceConn) Close() error {
	dispatcher := c.state.dispatcher
	if dispatcher == nil {
		return nil
	}
	return dispatcher.MatchKick([]runtime.Presence{c.presence})
}

// opCodeFor reads the message type from an encoded outbound message.
func opCodeFor(data []byte) int64 {
	var head struct {
		Type protocol.MessageType `json:"type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return OpError
	}
	if op, ok := opCodes[head.Type]; ok {
		return op
	}
	return OpError
}
