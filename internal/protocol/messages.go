package protocol

import "encoding/json"

// Command is one inbound request frame on a client connection.
type Command struct {
	Op      string          `json:"op"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Operation names accepted over the wire.
const (
	OpLogin         = "login"
	OpRegister      = "register"
	OpVerifyAccount = "verify_account"
	OpResume        = "resume"
	OpLogout        = "logout"
	OpFriendRequest = "friend_request"
	OpFriendRespond = "friend_respond"
	OpFriendRemove  = "friend_remove"
	OpFriendsList   = "friends_list"
	OpFriendStatus  = "friend_status"
	OpStatsTop      = "stats_top"
	OpStatsPlayer   = "stats_player"
)

// Push is one outbound frame: the response to a command or an unsolicited
// notification. Type selects the variant, Body carries the envelope.
type Push struct {
	Type string `json:"type"`
	Body any    `json:"body"`
}

// Push types. Each command produces exactly one of its "_result" pushes on
// the issuing connection; the "received"/"response"/"forced" pushes arrive
// unsolicited on other connections.
const (
	PushLoginResult           = "login_result"
	PushRegisterResult        = "register_result"
	PushVerifyResult          = "verify_result"
	PushResumeResult          = "resume_result"
	PushLogoutResult          = "logout_result"
	PushForceLogout           = "force_logout"
	PushFriendsList           = "friends_list"
	PushFriendRequestResult   = "friend_request_result"
	PushFriendRespondResult   = "friend_respond_result"
	PushFriendRemoveResult    = "friend_remove_result"
	PushFriendStatusResult    = "friend_status_result"
	PushFriendRequestReceived = "friend_request_received"
	PushFriendRequestResponse = "friend_request_response"
	PushFriendStatusChanged   = "friend_status_changed"
	PushTopPlayers            = "top_players"
	PushPlayerStats           = "player_stats"
	PushError                 = "error"
)
