package friends

import (
	"forest-tails/server/internal/apperr"
	"forest-tails/server/internal/protocol"
	"forest-tails/server/internal/store"
)

func validateTargetUsername(username string) error {
	if username == "" {
		return apperr.New(protocol.CodeMissingRequiredField, "Target username is required")
	}
	return nil
}

// validateRelationshipStateFromRequest maps an existing relationship to the
// conflict reported to a user trying to send a new request over it.
func validateRelationshipStateFromRequest(status store.FriendStatus) error {
	switch status {
	case store.StatusAccepted:
		return apperr.Conflict("You are already friends with this user", protocol.CodeAlreadyFriends)
	case store.StatusPending:
		return apperr.Conflict("A friend request between you already exists", protocol.CodeFriendRequestAlreadySent)
	case store.StatusBlocked:
		return apperr.Conflict("You cannot send a friend request to this user", protocol.CodeUserBlocked)
	default:
		return apperr.Conflict("A conflicting relationship already exists", protocol.CodeConflict)
	}
}

func parseStatus(raw string) (store.FriendStatus, error) {
	switch store.FriendStatus(raw) {
	case store.StatusPending, store.StatusAccepted, store.StatusBlocked:
		return store.FriendStatus(raw), nil
	default:
		return "", apperr.Validation("Unknown relationship status")
	}
}
