package app

// DefaultMaxPlayers bounds the roster when no explicit limit is configured.
// Seven seats keep every hand drawable from a single 52-card deck.
const DefaultMaxPlayers = 7
