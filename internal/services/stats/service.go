package stats

import (
	"context"

	"forest-tails/server/internal/protocol"
)

// DefaultTopLimit caps how many leaderboard rows a single query returns.
const DefaultTopLimit = 10

// PlayerStatsRequest identifies which player's statistics to load.
type PlayerStatsRequest struct {
	Username string `json:"username"`
}

// Service exposes the read-only statistics queries.
type Service interface {
	TopPlayers(ctx context.Context) protocol.Response[[]protocol.LeaderboardEntry]
	PlayerStats(ctx context.Context, req PlayerStatsRequest) protocol.Response[protocol.PlayerStats]
}
