package ws

import (
	"context"
	"encoding/json"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"forest-tails/server/internal/protocol"
	"forest-tails/server/internal/session"
)

const writeDeadline = 10 * time.Second

// channel adapts a websocket connection to session.Channel. All writes go
// through a single writer goroutine so concurrent pushes never interleave
// frames on the socket.
type channel struct {
	id     string
	conn   *websocket.Conn
	logger *zap.Logger

	state atomic.Int32

	sendQueue    chan []byte
	done         chan struct{}
	closeOnce    sync.Once
	closeTimeout time.Duration
}

func newChannel(conn *websocket.Conn, logger *zap.Logger, queueSize int, closeTimeout time.Duration) *channel {
	if queueSize <= 0 {
		queueSize = 1
	}
	ch := &channel{
		id:           uuid.NewString(),
		conn:         conn,
		logger:       logger,
		sendQueue:    make(chan []byte, queueSize),
		done:         make(chan struct{}),
		closeTimeout: closeTimeout,
	}
	ch.state.Store(int32(session.StateOpen))
	go ch.writeLoop()
	return ch
}

func (c *channel) ID() string { return c.id }

func (c *channel) State() session.State {
	return session.State(c.state.Load())
}

func (c *channel) Done() <-chan struct{} { return c.done }

func (c *channel) Send(ctx context.Context, p protocol.Push) error {
	if c.State() != session.StateOpen {
		return session.ErrChannelClosed
	}
	frame, err := json.Marshal(p)
	if err != nil {
		return err
	}
	select {
	case c.sendQueue <- frame:
		return nil
	case <-c.done:
		return session.ErrChannelClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close performs an orderly shutdown: a close frame goes out and the socket
// is torn down once the writer drains or the close timeout elapses.
func (c *channel) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.state.Store(int32(session.StateClosing))
		deadline := time.Now().Add(c.closeTimeout)
		err = c.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline)
		c.shutdown()
	})
	return err
}

// Abort tears the connection down without the closing handshake.
func (c *channel) Abort() {
	c.closeOnce.Do(func() {
		c.shutdown()
	})
}

func (c *channel) shutdown() {
	c.state.Store(int32(session.StateClosed))
	close(c.done)
	if err := c.conn.Close(); err != nil {
		c.logger.Debug("websocket close", zap.String("channel_id", c.id), zap.Error(err))
	}
}

func (c *channel) writeLoop() {
	for {
		select {
		case frame := <-c.sendQueue:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeDeadline))
			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				c.logger.Debug("websocket write failed",
					zap.String("channel_id", c.id), zap.Error(err))
				c.Abort()
				return
			}
		case <-c.done:
			return
		}
	}
}
