package session

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"forest-tails/server/internal/protocol"
)

const defaultPushTimeout = 5 * time.Second

// Notifier delivers one-way pushes over a specific channel. It never lets a
// delivery failure escape: a failed push to user B must not fail the
// request being answered for user A.
type Notifier struct {
	registry *Registry
	logger   *zap.Logger
	timeout  time.Duration
}

func NewNotifier(registry *Registry, logger *zap.Logger, timeout time.Duration) *Notifier {
	if timeout <= 0 {
		timeout = defaultPushTimeout
	}
	return &Notifier{registry: registry, logger: logger, timeout: timeout}
}

// Reply sends a push to the caller's own connection. Failures are logged
// and absorbed; the connection's own read loop will notice a dead peer.
func (n *Notifier) Reply(conn *Conn, p protocol.Push) {
	defer n.recoverPush("reply")
	ch := conn.Channel()
	if ch == nil || !sendable(ch) {
		n.logger.Warn("reply channel is not opened", zap.String("conn", conn.ID()))
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), n.timeout)
	defer cancel()
	if err := ch.Send(ctx, p); err != nil {
		n.logger.Warn("failed to deliver reply",
			zap.String("conn", conn.ID()), zap.String("type", p.Type), zap.Error(err))
	}
}

// Push builds and sends a notification to username over ch, which the
// caller obtained from the registry. A channel that is not open is skipped.
// Any send failure is treated as proof the connection is dead: the session
// is removed and nothing propagates to the caller.
func (n *Notifier) Push(ch Channel, username string, build func() protocol.Push) {
	defer n.recoverPush("push")
	if ch == nil || !sendable(ch) {
		n.logger.Warn("notification channel is not opened", zap.String("username", username))
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), n.timeout)
	defer cancel()

	p := build()
	err := ch.Send(ctx, p)
	if err == nil {
		n.logger.Debug("notification delivered",
			zap.String("username", username), zap.String("type", p.Type))
		return
	}

	switch {
	case errors.Is(err, ErrChannelClosed):
		n.logger.Debug("notification channel already closed, removing session",
			zap.String("username", username))
	case errors.Is(err, context.DeadlineExceeded):
		n.logger.Warn("notification send timed out, removing session",
			zap.String("username", username), zap.String("type", p.Type))
	default:
		n.logger.Error("unexpected error delivering notification, removing session",
			zap.String("username", username), zap.String("type", p.Type), zap.Error(err))
	}
	n.registry.RemoveSession(username)
}

func (n *Notifier) recoverPush(op string) {
	if p := recover(); p != nil {
		n.logger.Error("panic during notification dispatch", zap.String("op", op), zap.Any("panic", p))
	}
}

func sendable(ch Channel) bool {
	st := ch.State()
	return st == StateOpen || st == StateOpening
}
