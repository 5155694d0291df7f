// Package ws serves a table over plain WebSockets for deployments without
// Nakama.
package ws

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"blackjack/internal/gateway"

	"github.com/gorilla/websocket"
	"github.com/heroiclabs/nakama-common/runtime"
)

const (
	DefaultSendBuffer = 32
	maxMessageSize    = 4096
)

// Options tunes the transport. Zero values pick the defaults.
type Options struct {
	SendBuffer   int
	Tickets      *TicketService // nil accepts every client
	WriteWait    time.Duration
	PongWait     time.Duration
	PingInterval time.Duration
	CheckOrigin  func(r *http.Request) bool
}

type Server struct {
	gw       *gateway.Gateway
	logger   runtime.Logger
	opts     Options
	upgrader websocket.Upgrader
}

func NewServer(gw *gateway.Gateway, logger runtime.Logger, opts Options) *Server {
	if opts.SendBuffer <= 0 {
		opts.SendBuffer = DefaultSendBuffer
	}
	if opts.WriteWait <= 0 {
		opts.WriteWait = 10 * time.Second
	}
	if opts.PongWait <= 0 {
		opts.PongWait = 60 * time.Second
	}
	if opts.PingInterval <= 0 || opts.PingInterval >= opts.PongWait {
		opts.PingInterval = opts.PongWait * 9 / 10
	}
	if opts.CheckOrigin == nil {
		opts.CheckOrigin = func(r *http.Request) bool { return true }
	}
	return &Server{
		gw:       gw,
		logger:   logger,
		opts:     opts,
		upgrader: websocket.Upgrader{CheckOrigin: opts.CheckOrigin},
	}
}

// Handler routes /ws to the table and /healthz to a liveness probe.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/ws", s)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return mux
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if s.opts.Tickets != nil {
		subject, err := s.opts.Tickets.Verify(ticketFrom(r))
		if err != nil {
			s.logger.Warn("WS: rejected upgrade from %s: %v", r.RemoteAddr, err)
			http.Error(w, err.Error(), http.StatusUnauthorized)
			return
		}
		s.logger.Debug("WS: ticket accepted for %s", subject)
	}

	socket, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("WS: upgrade error: %v", err)
		return
	}

	c := newConn(socket, s.opts.SendBuffer, s.opts.WriteWait, s.opts.PingInterval)
	go c.writePump()

	ctx := context.WithoutCancel(r.Context())
	id, err := s.gw.OnConnect(ctx, c)
	if err != nil {
		// the gateway already queued the reason
		_ = c.Close()
		return
	}
	logger := s.logger.WithFields(map[string]interface{}{"conn": id, "trace_id": c.traceID.String()})
	logger.Debug("WS: connection opened from %s", r.RemoteAddr)

	s.readPump(ctx, c, id, logger)
}

func (s *Server) readPump(ctx context.Context, c *conn, id int64, logger runtime.Logger) {
	defer func() {
		_ = s.gw.OnClose(ctx, id)
		_ = c.Close()
		logger.Debug("WS: connection closed")
	}()

	c.ws.SetReadLimit(maxMessageSize)
	_ = c.ws.SetReadDeadline(time.Now().Add(s.opts.PongWait))
	c.ws.SetPongHandler(func(string) error {
		return c.ws.SetReadDeadline(time.Now().Add(s.opts.PongWait))
	})

	for {
		messageType, data, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logger.Warn("WS: read error: %v", err)
			}
			return
		}
		if messageType != websocket.TextMessage {
			continue
		}
		// Errors are answered to the client by the gateway.
		if err := s.gw.OnMessage(ctx, id, data); errors.Is(err, gateway.ErrUnknownConnection) {
			return
		}
	}
}

// ticketFrom reads the ticket from the query string or a bearer header.
func ticketFrom(r *http.Request) string {
	if t := r.URL.Query().Get("ticket"); t != "" {
		return t
	}
	if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	return ""
}
