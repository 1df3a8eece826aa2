package stats

import (
	"context"

	"go.uber.org/zap"

	"forest-tails/server/internal/apperr"
	"forest-tails/server/internal/executor"
	"forest-tails/server/internal/protocol"
	"forest-tails/server/internal/store"
)

type statsService struct {
	logger     *zap.Logger
	ex         *executor.Executor
	statistics store.Statistics
	topLimit   int
}

func NewStatsService(logger *zap.Logger, ex *executor.Executor, statistics store.Statistics) Service {
	return &statsService{
		logger:     logger,
		ex:         ex,
		statistics: statistics,
		topLimit:   DefaultTopLimit,
	}
}

func (s *statsService) TopPlayers(ctx context.Context) protocol.Response[[]protocol.LeaderboardEntry] {
	return executor.Execute(s.ex, ctx, "GetTopPlayers", func(ctx context.Context) ([]protocol.LeaderboardEntry, error) {
		rows, err := s.statistics.TopPlayers(ctx, s.topLimit)
		if err != nil {
			return nil, err
		}
		entries := make([]protocol.LeaderboardEntry, 0, len(rows))
		for i, row := range rows {
			entries = append(entries, protocol.LeaderboardEntry{
				Rank:         i + 1,
				Username:     row.Username,
				GlobalPoints: row.GlobalPoints,
				Wins:         row.Wins,
			})
		}
		return entries, nil
	})
}

func (s *statsService) PlayerStats(ctx context.Context, req PlayerStatsRequest) protocol.Response[protocol.PlayerStats] {
	return executor.Execute(s.ex, ctx, "GetPlayerStats", func(ctx context.Context) (protocol.PlayerStats, error) {
		if req.Username == "" {
			return protocol.PlayerStats{}, apperr.Validation("Username required")
		}
		row, err := s.statistics.ByUsername(ctx, req.Username)
		if err != nil {
			return protocol.PlayerStats{}, err
		}
		if row == nil {
			return protocol.PlayerStats{}, apperr.NotFound("Player not found", protocol.CodeUserNotFound)
		}
		return protocol.PlayerStats{
			Username:      row.Username,
			MatchesPlayed: row.MatchesPlayed,
			Wins:          row.Wins,
			Losses:        row.Losses,
			GlobalPoints:  row.GlobalPoints,
			CurrentStreak: row.CurrentStreak,
			MaxStreak:     row.MaxStreak,
			PlayTimeSecs:  row.PlayTimeSecs,
		}, nil
	})
}
