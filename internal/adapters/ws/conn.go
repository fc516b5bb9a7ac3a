package ws

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

var (
	ErrBackpressure = errors.New("backpressure")
	ErrConnClosed   = errors.New("connection closed")
)

const writeTimeout = 5 * time.Second

// NetConn is an indirection over *websocket.Conn to ease testing.
type NetConn interface {
	ReadMessage() (int, []byte, error)
	WriteMessage(mt int, data []byte) error
	SetWriteDeadline(t time.Time) error
	Close() error
}

// conn is one transport endpoint. The write pump owns the network socket;
// everyone else talks to it through the buffered send channel. The send
// channel is never closed: deliveries race connection teardown, so
// shutdown is signaled through done instead of a channel close.
type conn struct {
	netConn NetConn
	send    chan []byte
	done    chan struct{}
	once    sync.Once
}

func newConn(nc NetConn) *conn {
	return &conn{
		netConn: nc,
		send:    make(chan []byte, 64),
		done:    make(chan struct{}),
	}
}

// trySend enqueues without blocking. A closed conn refuses the frame; a
// full buffer means the peer is not draining, and the frame is dropped
// rather than stalling the hub.
func (c *conn) trySend(data []byte) error {
	select {
	case <-c.done:
		return ErrConnClosed
	default:
	}
	select {
	case c.send <- data:
		return nil
	default:
		return ErrBackpressure
	}
}

func (c *conn) close() {
	c.once.Do(func() {
		close(c.done)
		_ = c.netConn.Close()
	})
}

// writePump drains the send queue to the network. It owns socket
// teardown: any write failure closes the conn, so the read pump observes
// the disconnect and the hub evicts the session.
func (c *conn) writePump(ctx context.Context) {
	defer c.close()
	for {
		select {
		case <-ctx.Done():
			return
		case <-c.done:
			return
		case data := <-c.send:
			if err := c.netConn.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
				log.Debug().Str("module", "adapters.ws").Err(err).Msg("write deadline")
				return
			}
			if err := c.netConn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Debug().Str("module", "adapters.ws").Err(err).Msg("write failed")
				return
			}
		}
	}
}
