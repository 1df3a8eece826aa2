package session

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"forest-tails/server/internal/protocol"
)

// Registry maps a username to its single active channel. At most one live
// session exists per username at any instant; a second login evicts the
// first.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]Channel
	logger   *zap.Logger
}

func NewRegistry(logger *zap.Logger) *Registry {
	return &Registry{
		sessions: make(map[string]Channel),
		logger:   logger,
	}
}

// AddSession registers ch as the active channel for username. A blank
// username or nil channel is a no-op. An existing entry is swapped out
// atomically and its channel closed gracefully; eviction never fails the
// caller. The registry removes the entry on its own once ch terminates.
func (r *Registry) AddSession(username string, ch Channel) {
	if strings.TrimSpace(username) == "" || ch == nil {
		return
	}

	r.mu.Lock()
	old := r.sessions[username]
	r.sessions[username] = ch
	total := len(r.sessions)
	r.mu.Unlock()

	if old != nil && old != ch {
		r.logger.Warn("duplicate login detected, closing old session",
			zap.String("username", username), zap.String("old_channel", old.ID()))
		r.notifyForceLogout(old)
		r.closeChannelSafe(old)
	}
	r.logger.Info("user connected",
		zap.String("username", username), zap.String("channel", ch.ID()), zap.Int("total_sessions", total))

	go func() {
		<-ch.Done()
		if r.removeIf(username, ch) {
			r.logger.Info("user disconnected", zap.String("username", username), zap.String("channel", ch.ID()))
		}
	}()
}

// RemoveSession drops the entry for username. Idempotent: absent entries
// are a no-op.
func (r *Registry) RemoveSession(username string) {
	if strings.TrimSpace(username) == "" {
		return
	}
	r.mu.Lock()
	_, ok := r.sessions[username]
	delete(r.sessions, username)
	r.mu.Unlock()
	if ok {
		r.logger.Info("session removed", zap.String("username", username))
	}
}

// removeIf drops the entry for username only while ch is still the
// registered channel, so a disconnect of an evicted channel never removes
// its replacement.
func (r *Registry) removeIf(username string, ch Channel) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.sessions[username] == ch {
		delete(r.sessions, username)
		return true
	}
	return false
}

// Channel returns the active channel for username, or nil. An entry found
// in a closed or closing state is pruned as a side effect and treated as
// not found.
func (r *Registry) Channel(username string) Channel {
	if strings.TrimSpace(username) == "" {
		return nil
	}
	r.mu.Lock()
	ch := r.sessions[username]
	r.mu.Unlock()
	if ch == nil {
		return nil
	}
	if st := ch.State(); st == StateOpen || st == StateOpening {
		return ch
	}
	r.removeIf(username, ch)
	return nil
}

func (r *Registry) IsOnline(username string) bool {
	return r.Channel(username) != nil
}

// OnlineUsers returns the usernames with a registered session.
func (r *Registry) OnlineUsers() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.sessions))
	for username := range r.sessions {
		out = append(out, username)
	}
	return out
}

// notifyForceLogout makes a best-effort attempt to tell an evicted
// connection why it is about to be closed. Failures only mean the peer is
// already gone.
func (r *Registry) notifyForceLogout(ch Channel) {
	defer r.recoverChannelPanic(ch, "force-logout")
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	err := ch.Send(ctx, protocol.Push{
		Type: protocol.PushForceLogout,
		Body: protocol.OK("Logged in from another location"),
	})
	if err != nil {
		r.logger.Debug("could not deliver force logout",
			zap.String("channel", ch.ID()), zap.Error(err))
	}
}

// closeChannelSafe initiates an asynchronous close when the channel is
// still open and aborts it otherwise. Failures are logged and swallowed:
// eviction must never fail the request that triggered it.
func (r *Registry) closeChannelSafe(ch Channel) {
	st := ch.State()
	if st == StateOpen || st == StateOpening {
		go func() {
			defer r.recoverChannelPanic(ch, "close")
			r.logger.Debug("closing evicted channel", zap.String("channel", ch.ID()), zap.String("state", st.String()))
			if err := ch.Close(); err != nil {
				r.logger.Warn("failed to close evicted channel, aborting",
					zap.String("channel", ch.ID()), zap.Error(err))
				r.abortSafe(ch)
			}
		}()
		return
	}
	r.logger.Debug("evicted channel not open, aborting",
		zap.String("channel", ch.ID()), zap.String("state", st.String()))
	r.abortSafe(ch)
}

func (r *Registry) abortSafe(ch Channel) {
	defer r.recoverChannelPanic(ch, "abort")
	ch.Abort()
}

func (r *Registry) recoverChannelPanic(ch Channel, op string) {
	if p := recover(); p != nil {
		r.logger.Error("panic during channel teardown",
			zap.String("channel", ch.ID()), zap.String("op", op), zap.Any("panic", p))
	}
}
