package protocol

// Code identifies the outcome of an operation in a way clients can rely on.
// Values are wire-stable: new codes are appended to their band, existing
// values are never renumbered.
type Code int

const (
	CodeNone             Code = 0
	CodeSuccess          Code = 1
	CodeConnectionStable Code = 2
)

// Infrastructure band.
const (
	CodeServerInternalError Code = 100 + iota
	CodeDatabaseError
	CodeTimeout
)

// Validation and domain band.
const (
	CodeValidationError Code = 200 + iota
	CodeInvalidCredentials
	CodeUnauthorized
	CodeUserNotFound
	CodeUserAlreadyExists
	CodeNotFound
	CodeConflict
	CodeAccountNotVerified
	CodeAccountBanned
	CodeAccountLocked
	CodeSessionExpired
	CodeAlreadyFriends
	CodeFriendRequestAlreadySent
	CodeUserBlocked
	CodeFriendNotFound
	CodeMissingRequiredField
	CodeInvalidUsernameFormat
	CodeInvalidEmailFormat
	CodeInvalidPasswordFormat
	CodeInvalidCode
)

// Gameplay band.
const (
	CodeInventoryFull Code = 300 + iota
	CodeItemNotOwned
	CodeInvalidMovement
	CodeMapInstanceNotFound
	CodeCooldownActive
	CodeMapInstanceFull
)

func (c Code) String() string {
	switch c {
	case CodeNone:
		return "none"
	case CodeSuccess:
		return "success"
	case CodeConnectionStable:
		return "connection_stable"
	case CodeServerInternalError:
		return "server_internal_error"
	case CodeDatabaseError:
		return "database_error"
	case CodeTimeout:
		return "timeout"
	case CodeValidationError:
		return "validation_error"
	case CodeInvalidCredentials:
		return "invalid_credentials"
	case CodeUnauthorized:
		return "unauthorized"
	case CodeUserNotFound:
		return "user_not_found"
	case CodeUserAlreadyExists:
		return "user_already_exists"
	case CodeNotFound:
		return "not_found"
	case CodeConflict:
		return "conflict"
	case CodeAccountNotVerified:
		return "account_not_verified"
	case CodeAccountBanned:
		return "account_banned"
	case CodeAccountLocked:
		return "account_locked"
	case CodeSessionExpired:
		return "session_expired"
	case CodeAlreadyFriends:
		return "already_friends"
	case CodeFriendRequestAlreadySent:
		return "friend_request_already_sent"
	case CodeUserBlocked:
		return "user_blocked"
	case CodeFriendNotFound:
		return "friend_not_found"
	case CodeMissingRequiredField:
		return "missing_required_field"
	case CodeInvalidUsernameFormat:
		return "invalid_username_format"
	case CodeInvalidEmailFormat:
		return "invalid_email_format"
	case CodeInvalidPasswordFormat:
		return "invalid_password_format"
	case CodeInvalidCode:
		return "invalid_code"
	case CodeInventoryFull:
		return "inventory_full"
	case CodeItemNotOwned:
		return "item_not_owned"
	case CodeInvalidMovement:
		return "invalid_movement"
	case CodeMapInstanceNotFound:
		return "map_instance_not_found"
	case CodeCooldownActive:
		return "cooldown_active"
	case CodeMapInstanceFull:
		return "map_instance_full"
	}
	return "unknown"
}
