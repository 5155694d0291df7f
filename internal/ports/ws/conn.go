package ws

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

var (
	ErrConnClosed   = errors.New("connection closed")
	ErrSlowConsumer = errors.New("send buffer full")
)

// conn serializes every write to one socket through a buffered channel and a
// single writer goroutine.
type conn struct {
	ws      *websocket.Conn
	traceID uuid.UUID
	send    chan []byte
	done    chan struct{}
	once    sync.Once

	writeWait    time.Duration
	pingInterval time.Duration
}

func newConn(ws *websocket.Conn, buffer int, writeWait, pingInterval time.Duration) *conn {
	return &conn{
		ws:           ws,
		traceID:      uuid.New(),
		send:         make(chan []byte, buffer),
		done:         make(chan struct{}),
		writeWait:    writeWait,
		pingInterval: pingInterval,
	}
}

// Send queues data for the writer. A full queue drops the connection rather
// than stalling the table.
func (c *conn) Send(ctx context.Context, data []byte) error {
	select {
	case <-c.done:
		return ErrConnClosed
	default:
	}
	select {
	case c.send <- data:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		_ = c.Close()
		return ErrSlowConsumer
	}
}

// Close asks the writer to flush what is queued and close the socket.
func (c *conn) Close() error {
	c.once.Do(func() { close(c.done) })
	return nil
}

func (c *conn) writePump() {
	ticker := time.NewTicker(c.pingInterval)
	defer func() {
		ticker.Stop()
		_ = c.ws.Close()
	}()

	for {
		select {
		case msg := <-c.send:
			if err := c.write(websocket.TextMessage, msg); err != nil {
				_ = c.Close()
				return
			}
		case <-ticker.C:
			if err := c.write(websocket.PingMessage, nil); err != nil {
				_ = c.Close()
				return
			}
		case <-c.done:
			c.flush()
			_ = c.write(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}

func (c *conn) flush() {
	for {
		select {
		case msg := <-c.send:
			if err := c.write(websocket.TextMessage, msg); err != nil {
				return
			}
		default:
			return
		}
	}
}

func (c *conn) write(messageType int, data []byte) error {
	_ = c.ws.SetWriteDeadline(time.Now().Add(c.writeWait))
	return c.ws.WriteMessage(messageType, data)
}
