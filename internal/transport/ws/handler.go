package ws

import (
	"context"
	"encoding/json"

	"github.com/gofiber/contrib/websocket"
	"go.uber.org/zap"

	"forest-tails/server/internal/protocol"
	"forest-tails/server/internal/services/auth"
	"forest-tails/server/internal/services/friends"
	"forest-tails/server/internal/services/stats"
	"forest-tails/server/internal/session"
	"forest-tails/server/pkg/config"
)

// Handler owns one websocket endpoint: it wraps each accepted socket in a
// channel, runs its read loop and dispatches commands to the services.
type Handler struct {
	cfg      config.SessionConfig
	logger   *zap.Logger
	registry *session.Registry
	notifier *session.Notifier
	auth     auth.Service
	friends  friends.Service
	stats    stats.Service
}

func NewHandler(
	cfg config.SessionConfig,
	logger *zap.Logger,
	registry *session.Registry,
	notifier *session.Notifier,
	authService auth.Service,
	friendsService friends.Service,
	statsService stats.Service,
) *Handler {
	return &Handler{
		cfg:      cfg,
		logger:   logger,
		registry: registry,
		notifier: notifier,
		auth:     authService,
		friends:  friendsService,
		stats:    statsService,
	}
}

// Serve runs the connection until the peer disconnects or the channel is
// closed out from under it by a duplicate login. Commands are processed one
// at a time in arrival order.
func (h *Handler) Serve(wsConn *websocket.Conn) {
	ch := newChannel(wsConn, h.logger, h.cfg.SendQueueSize, h.cfg.CloseTimeout)
	conn := session.NewConn(ch.ID(), ch)
	h.logger.Info("client connected", zap.String("connection_id", conn.ID()))

	defer func() {
		ch.Abort()
		if u, ok := conn.User(); ok {
			h.registry.RemoveSession(u.Username)
		}
		h.logger.Info("client disconnected", zap.String("connection_id", conn.ID()))
	}()

	for {
		_, frame, err := wsConn.ReadMessage()
		if err != nil {
			return
		}

		var cmd protocol.Command
		if err := json.Unmarshal(frame, &cmd); err != nil {
			h.logger.Warn("malformed command frame",
				zap.String("connection_id", conn.ID()), zap.Error(err))
			h.notifier.Reply(conn, protocol.Push{
				Type: protocol.PushError,
				Body: protocol.Fail[bool](protocol.CodeValidationError, "Malformed command"),
			})
			continue
		}
		h.dispatch(conn, cmd)
	}
}

func (h *Handler) dispatch(conn *session.Conn, cmd protocol.Command) {
	ctx := context.Background()

	switch cmd.Op {
	case protocol.OpLogin:
		var req auth.LoginRequest
		if !h.decode(conn, cmd, &req) {
			return
		}
		h.notifier.Reply(conn, protocol.Push{
			Type: protocol.PushLoginResult,
			Body: h.auth.Login(ctx, conn, req),
		})

	case protocol.OpRegister:
		var req auth.RegisterRequest
		if !h.decode(conn, cmd, &req) {
			return
		}
		h.notifier.Reply(conn, protocol.Push{
			Type: protocol.PushRegisterResult,
			Body: h.auth.Register(ctx, req),
		})

	case protocol.OpVerifyAccount:
		var req auth.VerifyRequest
		if !h.decode(conn, cmd, &req) {
			return
		}
		h.notifier.Reply(conn, protocol.Push{
			Type: protocol.PushVerifyResult,
			Body: h.auth.VerifyAccount(ctx, req),
		})

	case protocol.OpResume:
		var req auth.ResumeRequest
		if !h.decode(conn, cmd, &req) {
			return
		}
		h.notifier.Reply(conn, protocol.Push{
			Type: protocol.PushResumeResult,
			Body: h.auth.Resume(ctx, conn, req),
		})

	case protocol.OpLogout:
		h.notifier.Reply(conn, protocol.Push{
			Type: protocol.PushLogoutResult,
			Body: h.auth.Logout(ctx, conn),
		})

	case protocol.OpFriendRequest:
		var req friends.SendRequestRequest
		if !h.decode(conn, cmd, &req) {
			return
		}
		h.notifier.Reply(conn, protocol.Push{
			Type: protocol.PushFriendRequestResult,
			Body: h.friends.SendRequest(ctx, conn, req),
		})

	case protocol.OpFriendRespond:
		var req friends.RespondRequest
		if !h.decode(conn, cmd, &req) {
			return
		}
		h.notifier.Reply(conn, protocol.Push{
			Type: protocol.PushFriendRespondResult,
			Body: h.friends.Respond(ctx, conn, req),
		})

	case protocol.OpFriendRemove:
		var req friends.RemoveRequest
		if !h.decode(conn, cmd, &req) {
			return
		}
		h.notifier.Reply(conn, protocol.Push{
			Type: protocol.PushFriendRemoveResult,
			Body: h.friends.Remove(ctx, conn, req),
		})

	case protocol.OpFriendsList:
		h.notifier.Reply(conn, protocol.Push{
			Type: protocol.PushFriendsList,
			Body: h.friends.List(ctx, conn),
		})

	case protocol.OpFriendStatus:
		var req friends.UpdateStatusRequest
		if !h.decode(conn, cmd, &req) {
			return
		}
		h.notifier.Reply(conn, protocol.Push{
			Type: protocol.PushFriendStatusResult,
			Body: h.friends.UpdateStatus(ctx, conn, req),
		})

	case protocol.OpStatsTop:
		h.notifier.Reply(conn, protocol.Push{
			Type: protocol.PushTopPlayers,
			Body: h.stats.TopPlayers(ctx),
		})

	case protocol.OpStatsPlayer:
		var req stats.PlayerStatsRequest
		if !h.decode(conn, cmd, &req) {
			return
		}
		h.notifier.Reply(conn, protocol.Push{
			Type: protocol.PushPlayerStats,
			Body: h.stats.PlayerStats(ctx, req),
		})

	default:
		h.logger.Warn("unknown operation",
			zap.String("connection_id", conn.ID()), zap.String("op", cmd.Op))
		h.notifier.Reply(conn, protocol.Push{
			Type: protocol.PushError,
			Body: protocol.Fail[bool](protocol.CodeValidationError, "Unknown operation: "+cmd.Op),
		})
	}
}

// decode unmarshals the command payload, replying with a validation error
// when the payload is not valid JSON for the request type.
func (h *Handler) decode(conn *session.Conn, cmd protocol.Command, out any) bool {
	if len(cmd.Payload) == 0 {
		cmd.Payload = []byte("{}")
	}
	if err := json.Unmarshal(cmd.Payload, out); err != nil {
		h.logger.Warn("malformed payload",
			zap.String("connection_id", conn.ID()), zap.String("op", cmd.Op), zap.Error(err))
		h.notifier.Reply(conn, protocol.Push{
			Type: protocol.PushError,
			Body: protocol.Fail[bool](protocol.CodeValidationError, "Malformed payload for "+cmd.Op),
		})
		return false
	}
	return true
}
