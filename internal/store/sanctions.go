package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"forest-tails/server/internal/db/types"
)

type sanctionStore struct {
	db DBTX
}

// NewSanctions returns the sqlite-backed sanction store.
func NewSanctions(db DBTX) Sanctions {
	return &sanctionStore{db: db}
}

// FindActiveBan returns the newest sanction that is still in effect: a
// permanent ban, or a temporary one whose end date has not passed.
func (s *sanctionStore) FindActiveBan(ctx context.Context, userID int64) (*Sanction, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, user_id, type, reason, start_at, end_at FROM sanctions
          WHERE user_id = ? AND (end_at IS NULL OR end_at > strftime('%Y-%m-%dT%H:%M:%SZ', 'now'))
          ORDER BY start_at DESC LIMIT 1`, userID)

	var (
		sn      Sanction
		sType   string
		startAt types.Timestamp
		endAt   types.Timestamp
	)
	err := row.Scan(&sn.ID, &sn.UserID, &sType, &sn.Reason, &startAt, &endAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read sanction: %w", classify(err))
	}
	sn.Type = SanctionType(sType)
	sn.StartAt = startAt.Time
	if !endAt.Time.IsZero() {
		t := endAt.Time
		sn.EndAt = &t
	}
	return &sn, nil
}
