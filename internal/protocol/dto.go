package protocol

// User is the public account summary returned by login, register and resume.
type User struct {
	ID           int64  `json:"id"`
	Username     string `json:"username"`
	Email        string `json:"email"`
	Coins        int64  `json:"coins"`
	AvatarID     int64  `json:"avatar_id"`
	SessionToken string `json:"session_token,omitempty"`
}

// Friend is one entry of a friends list or of a friend-request push.
type Friend struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	AvatarID int64  `json:"avatar_id"`
	IsOnline bool   `json:"is_online"`
	Status   string `json:"status"`
}

// FriendRequestResponse notifies the original requester about the outcome
// of a request they sent.
type FriendRequestResponse struct {
	ResponderID       int64  `json:"responder_id"`
	ResponderUsername string `json:"responder_username"`
	WasAccepted       bool   `json:"was_accepted"`
}

// LeaderboardEntry is one row of the top-players ranking.
type LeaderboardEntry struct {
	Rank         int    `json:"rank"`
	Username     string `json:"username"`
	GlobalPoints int64  `json:"global_points"`
	Wins         int64  `json:"wins"`
}

// PlayerStats is the per-player statistics summary.
type PlayerStats struct {
	Username      string `json:"username"`
	MatchesPlayed int64  `json:"matches_played"`
	Wins          int64  `json:"wins"`
	Losses        int64  `json:"losses"`
	GlobalPoints  int64  `json:"global_points"`
	CurrentStreak int64  `json:"current_streak"`
	MaxStreak     int64  `json:"max_streak"`
	PlayTimeSecs  int64  `json:"play_time_seconds"`
}
