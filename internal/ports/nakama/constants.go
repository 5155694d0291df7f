package nakama

import "blackjack/internal/protocol"

const (
	// RpcQuickMatch is the Nakama RPC id clients call to find or create an open table.
	RpcQuickMatch = "quick_match"

	// MatchNameBlackjack is the authoritative match handler name registered with Nakama.
	MatchNameBlackjack = "blackjack_match"

	// GameName tags match labels so listings only return blackjack tables.
	GameName = "blackjack"

	tickRate = 5
	// emptyTicks is how long an empty table lingers before it terminates.
	emptyTicks = 30 * tickRate
)

// Op codes for client messages and server events. Every payload is a JSON
// protocol message; the op code mirrors its type so clients can switch on it.
const (
	// Client -> Server
	OpClientMessage int64 = 1

	// Server -> Client events
	OpConnected    int64 = 101
	OpHit          int64 = 102
	OpBust         int64 = 103
	OpBlackjack    int64 = 104
	OpDisconnected int64 = 105
	OpStay         int64 = 106
	OpDeal         int64 = 107 // private hand, or the public house up-card
	OpTurn         int64 = 108
	OpRoundEnd     int64 = 109
	OpError        int64 = 110
)

var opCodes = map[protocol.MessageType]int64{
	protocol.TypeConnected:    OpConnected,
	protocol.TypeHit:          OpHit,
	protocol.TypeBust:         OpBust,
	protocol.TypeBlackjack:    OpBlackjack,
	protocol.TypeDisconnected: OpDisconnected,
	protocol.TypeStay:         OpStay,
	protocol.TypeDeal:         OpDeal,
	protocol.TypeTurn:         OpTurn,
	protocol.TypeRoundEnd:     OpRoundEnd,
	protocol.TypeError:        OpError,
}
