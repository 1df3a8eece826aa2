package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"forest-tails/server/internal/db/types"
)

type friendshipStore struct {
	db DBTX
}

// NewFriendships returns the sqlite-backed relationship store.
func NewFriendships(db DBTX) Friendships {
	return &friendshipStore{db: db}
}

func (s *friendshipStore) StatusEither(ctx context.Context, a, b int64) (FriendStatus, bool, error) {
	var status string
	err := s.db.QueryRowContext(ctx,
		`SELECT status FROM friendships
          WHERE (requester_id = ? AND addressee_id = ?) OR (requester_id = ? AND addressee_id = ?)`,
		a, b, b, a).Scan(&status)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read friendship status: %w", classify(err))
	}
	return FriendStatus(status), true, nil
}

func (s *friendshipStore) StatusDirected(ctx context.Context, requesterID, addresseeID int64) (FriendStatus, bool, error) {
	var status string
	err := s.db.QueryRowContext(ctx,
		`SELECT status FROM friendships WHERE requester_id = ? AND addressee_id = ?`,
		requesterID, addresseeID).Scan(&status)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read friendship status: %w", classify(err))
	}
	return FriendStatus(status), true, nil
}

func (s *friendshipStore) ListByStatus(ctx context.Context, userID int64, status FriendStatus) ([]Friendship, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT requester_id, addressee_id, status, created_at FROM friendships
          WHERE (requester_id = ? OR addressee_id = ?) AND status = ?
          ORDER BY created_at`,
		userID, userID, string(status))
	if err != nil {
		return nil, fmt.Errorf("failed to list friendships: %w", classify(err))
	}
	defer rows.Close()

	var out []Friendship
	for rows.Next() {
		var (
			f         Friendship
			st        string
			createdAt types.Timestamp
		)
		if err := rows.Scan(&f.RequesterID, &f.AddresseeID, &st, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan friendship: %w", classify(err))
		}
		f.Status = FriendStatus(st)
		f.CreatedAt = createdAt.Time
		out = append(out, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list friendships: %w", classify(err))
	}
	return out, nil
}

func (s *friendshipStore) InsertPending(ctx context.Context, requesterID, addresseeID int64) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO friendships (requester_id, addressee_id, status, created_at) VALUES (?, ?, ?, ?)`,
		requesterID, addresseeID, string(StatusPending), types.Timestamp{Time: time.Now().UTC()})
	if err != nil {
		return fmt.Errorf("failed to insert friend request: %w", classify(err))
	}
	return nil
}

func (s *friendshipStore) UpdateStatus(ctx context.Context, a, b int64, status FriendStatus) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE friendships SET status = ?
          WHERE (requester_id = ? AND addressee_id = ?) OR (requester_id = ? AND addressee_id = ?)`,
		string(status), a, b, b, a)
	if err != nil {
		return fmt.Errorf("failed to update friendship status: %w", classify(err))
	}
	return nil
}

func (s *friendshipStore) Delete(ctx context.Context, a, b int64) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM friendships
          WHERE (requester_id = ? AND addressee_id = ?) OR (requester_id = ? AND addressee_id = ?)`,
		a, b, b, a)
	if err != nil {
		return fmt.Errorf("failed to delete friendship: %w", classify(err))
	}
	return nil
}
