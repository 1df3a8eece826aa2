package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

type statsStore struct {
	db DBTX
}

// NewStatistics returns the sqlite-backed statistics store.
func NewStatistics(db DBTX) Statistics {
	return &statsStore{db: db}
}

const statsColumns = `s.user_id, u.username, s.matches_played, s.wins, s.losses,
        s.global_points, s.current_streak, s.max_streak, s.total_play_time_seconds`

func (s *statsStore) TopPlayers(ctx context.Context, limit int) ([]StatsRow, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+statsColumns+`
           FROM player_statistics s JOIN users u ON u.id = s.user_id
          ORDER BY s.global_points DESC, s.wins DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query top players: %w", classify(err))
	}
	defer rows.Close()

	var out []StatsRow
	for rows.Next() {
		var r StatsRow
		if err := rows.Scan(&r.UserID, &r.Username, &r.MatchesPlayed, &r.Wins, &r.Losses,
			&r.GlobalPoints, &r.CurrentStreak, &r.MaxStreak, &r.PlayTimeSecs); err != nil {
			return nil, fmt.Errorf("failed to scan stats row: %w", classify(err))
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to query top players: %w", classify(err))
	}
	return out, nil
}

func (s *statsStore) ByUsername(ctx context.Context, username string) (*StatsRow, error) {
	var r StatsRow
	err := s.db.QueryRowContext(ctx,
		`SELECT `+statsColumns+`
           FROM player_statistics s JOIN users u ON u.id = s.user_id
          WHERE u.username = ?`, username).
		Scan(&r.UserID, &r.Username, &r.MatchesPlayed, &r.Wins, &r.Losses,
			&r.GlobalPoints, &r.CurrentStreak, &r.MaxStreak, &r.PlayTimeSecs)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read player statistics: %w", classify(err))
	}
	return &r, nil
}
