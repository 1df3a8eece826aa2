package friends

import (
	"context"

	"forest-tails/server/internal/protocol"
	"forest-tails/server/internal/session"
	"forest-tails/server/internal/store"
)

type SendRequestRequest struct {
	TargetUsername string `json:"target_username"`
}

type RespondRequest struct {
	RequesterID int64 `json:"requester_id"`
	Accept      bool  `json:"accept"`
}

type RemoveRequest struct {
	FriendID int64 `json:"friend_id"`
}

type UpdateStatusRequest struct {
	UserID int64  `json:"user_id"`
	Status string `json:"status"`
}

// Service implements the friendship rules between two users. Every entry
// point requires an authenticated connection and returns exactly one
// envelope; counterpart notifications are pushed asynchronously and never
// affect the caller's result.
type Service interface {
	SendRequest(ctx context.Context, conn *session.Conn, req SendRequestRequest) protocol.Response[bool]
	Respond(ctx context.Context, conn *session.Conn, req RespondRequest) protocol.Response[bool]
	Remove(ctx context.Context, conn *session.Conn, req RemoveRequest) protocol.Response[bool]
	List(ctx context.Context, conn *session.Conn) protocol.Response[[]protocol.Friend]
	UpdateStatus(ctx context.Context, conn *session.Conn, req UpdateStatusRequest) protocol.Response[bool]
}

// Transitions describes which status changes UpdateStatus accepts on an
// existing record. The zero value permits every change.
type Transitions map[store.FriendStatus][]store.FriendStatus

// Allowed reports whether from may change to to. A nil map allows any
// transition on an existing record.
func (t Transitions) Allowed(from, to store.FriendStatus) bool {
	if t == nil {
		return true
	}
	for _, s := range t[from] {
		if s == to {
			return true
		}
	}
	return false
}
