// Package gateway translates client messages into session calls and session
// events back into client messages. It knows nothing about the transport: any
// adapter that can hand it a ports.Conn and raw frames can drive a table.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"blackjack/internal/app"
	"blackjack/internal/ports"
	"blackjack/internal/protocol"

	"github.com/heroiclabs/nakama-common/runtime"
)

var (
	ErrUnknownConnection = errors.New("unknown connection")
	ErrIDMismatch        = errors.New("message id does not match connection")
)

// Gateway owns the connection registry for one session.
type Gateway struct {
	session *app.Session
	logger  runtime.Logger

	mu     sync.RWMutex
	nextID int64
	conns  map[int64]ports.Conn
}

func New(session *app.Session, logger runtime.Logger) *Gateway {
	return &Gateway{
		session: session,
		logger:  logger,
		conns:   make(map[int64]ports.Conn),
	}
}

// Session exposes the table driven by this gateway.
func (g *Gateway) Session() *app.Session {
	return g.session
}

// Count is the number of registered connections.
func (g *Gateway) Count() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.conns)
}

// OnConnect registers conn under a fresh identifier and seats a player for it.
// Identifiers only increase, so a departed player's id is never handed out
// again. When the table refuses the player the connection is told why and
// left unregistered; closing it is up to the transport.
func (g *Gateway) OnConnect(ctx context.Context, conn ports.Conn) (int64, error) {
	g.mu.Lock()
	g.nextID++
	id := g.nextID
	g.conns[id] = conn
	g.mu.Unlock()

	events, err := g.session.Join(id)
	if err != nil && len(events) == 0 {
		g.unregister(id)
		g.logger.Warn("Gateway: connection %d refused: %v", id, err)
		g.reply(ctx, conn, protocol.Outbound{Type: protocol.TypeError, ID: id, Msg: err.Error()})
		return id, err
	}

	g.logger.Info("Gateway: connection %d joined", id)
	g.reply(ctx, conn, protocol.Outbound{Type: protocol.TypeConnected, ID: id})
	g.deliver(ctx, events)
	if err != nil {
		g.replyError(ctx, conn, id, err)
	}
	return id, nil
}

// OnMessage routes one raw frame received on connection id.
func (g *Gateway) OnMessage(ctx context.Context, id int64, raw []byte) error {
	conn, ok := g.lookup(id)
	if !ok {
		g.logger.Warn("Gateway: message from unknown connection %d dropped", id)
		return ErrUnknownConnection
	}

	in, err := protocol.Decode(raw)
	if err != nil {
		echo := in.ID
		if echo == 0 {
			echo = id
		}
		g.logger.Debug("Gateway: connection %d sent a bad message: %v", id, err)
		g.replyError(ctx, conn, echo, err)
		return err
	}
	if in.ID != id {
		err := fmt.Errorf("%w: got %d", ErrIDMismatch, in.ID)
		g.replyError(ctx, conn, in.ID, err)
		return err
	}

	var events []app.Event
	switch in.Type {
	case protocol.TypeHit:
		events, err = g.session.Hit(id)
	case protocol.TypeStay:
		events, err = g.session.Stand(id)
	case protocol.TypeDeal:
		events, err = g.session.StartRound()
	}

	g.deliver(ctx, events)
	if err != nil {
		g.logger.Debug("Gateway: %s from %d rejected: %v", in.Type, id, err)
		g.replyError(ctx, conn, id, err)
	}
	return err
}

// OnClose removes the connection and its player. Closing an unknown or
// already closed connection is a no-op.
func (g *Gateway) OnClose(ctx context.Context, id int64) error {
	if !g.unregister(id) {
		g.logger.Debug("Gateway: close for unknown connection %d ignored", id)
		return ErrUnknownConnection
	}

	events, err := g.session.Leave(id)
	if err != nil {
		g.logger.Warn("Gateway: leave %d: %v", id, err)
	}
	g.logger.Info("Gateway: connection %d left", id)
	g.deliver(ctx, events)
	return nil
}

func (g *Gateway) lookup(id int64) (ports.Conn, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	conn, ok := g.conns[id]
	return conn, ok
}

func (g *Gateway) unregister(id int64) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.conns[id]; !ok {
		return false
	}
	delete(g.conns, id)
	return true
}

type target struct {
	id   int64
	conn ports.Conn
}

// targets resolves recipients to connections; nil means every connection.
func (g *Gateway) targets(recipients []int64) []target {
	g.mu.RLock()
	defer g.mu.RUnlock()

	if len(recipients) == 0 {
		out := make([]target, 0, len(g.conns))
		for id, conn := range g.conns {
			out = append(out, target{id: id, conn: conn})
		}
		return out
	}
	out := make([]target, 0, len(recipients))
	for _, id := range recipients {
		if conn, ok := g.conns[id]; ok {
			out = append(out, target{id: id, conn: conn})
		}
	}
	return out
}

func (g *Gateway) deliver(ctx context.Context, events []app.Event) {
	for _, ev := range events {
		for _, env := range Translate(ev) {
			data, err := protocol.Encode(env.Message)
			if err != nil {
				g.logger.Error("Gateway: encode %s: %v", env.Message.Type, err)
				continue
			}
			for _, t := range g.targets(env.Recipients) {
				if err := t.conn.Send(ctx, data); err != nil {
					g.logger.Warn("Gateway: send %s to %d: %v", env.Message.Type, t.id, err)
				}
			}
		}
	}
}

func (g *Gateway) reply(ctx context.Context, conn ports.Conn, msg protocol.Outbound) {
	data, err := protocol.Encode(msg)
	if err != nil {
		g.logger.Error("Gateway: encode %s: %v", msg.Type, err)
		return
	}
	if err := conn.Send(ctx, data); err != nil {
		g.logger.Warn("Gateway: reply %s to %d: %v", msg.Type, msg.ID, err)
	}
}

func (g *Gateway) replyError(ctx context.Context, conn ports.Conn, id int64, err error) {
	g.reply(ctx, conn, protocol.Outbound{Type: protocol.TypeError, ID: id, Msg: err.Error()})
}
