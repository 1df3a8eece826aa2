package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"forest-tails/server/internal/db/types"
)

type userStore struct {
	db DBTX
}

// NewUsers returns the sqlite-backed account store.
func NewUsers(db DBTX) Users {
	return &userStore{db: db}
}

const userColumns = `id, username, email, password_hash, full_name, is_verified, coins, avatar_id, created_at, last_login_at`

func (s *userStore) FindByUsername(ctx context.Context, username string) (*User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE username = ?`, username)
	return scanUser(row)
}

func (s *userStore) FindByID(ctx context.Context, id int64) (*User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	return scanUser(row)
}

func (s *userStore) FindByEmail(ctx context.Context, email string) (*User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = ?`, email)
	return scanUser(row)
}

func (s *userStore) ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error) {
	var n int64
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM users WHERE username = ? OR email = ?`, username, email).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("failed to check user existence: %w", classify(err))
	}
	return n > 0, nil
}

func (s *userStore) Create(ctx context.Context, u *User) error {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO users (username, email, password_hash, full_name, is_verified, coins, avatar_id, created_at, last_login_at)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		u.Username, u.Email, u.PasswordHash, u.FullName, boolToInt(u.IsVerified), u.Coins, u.AvatarID,
		types.Timestamp{Time: u.CreatedAt}, types.Timestamp{Time: u.LastLoginAt})
	if err != nil {
		return fmt.Errorf("failed to create user: %w", classify(err))
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read new user id: %w", classify(err))
	}
	u.ID = id
	return nil
}

func (s *userStore) Update(ctx context.Context, u *User) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE users SET username = ?, email = ?, password_hash = ?, full_name = ?, is_verified = ?,
                coins = ?, avatar_id = ?, last_login_at = ? WHERE id = ?`,
		u.Username, u.Email, u.PasswordHash, u.FullName, boolToInt(u.IsVerified),
		u.Coins, u.AvatarID, types.Timestamp{Time: u.LastLoginAt}, u.ID)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", classify(err))
	}
	return nil
}

func (s *userStore) SetCoins(ctx context.Context, id int64, coins int64) error {
	_, err := s.db.ExecContext(ctx, `UPDATE users SET coins = ? WHERE id = ?`, coins, id)
	if err != nil {
		return fmt.Errorf("failed to set coins: %w", classify(err))
	}
	return nil
}

func (s *userStore) MarkVerified(ctx context.Context, email string) error {
	_, err := s.db.ExecContext(ctx, `UPDATE users SET is_verified = 1 WHERE email = ?`, email)
	if err != nil {
		return fmt.Errorf("failed to mark user verified: %w", classify(err))
	}
	return nil
}

func scanUser(row *sql.Row) (*User, error) {
	var (
		u          User
		isVerified int64
		createdAt  types.Timestamp
		lastLogin  types.Timestamp
	)
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.FullName,
		&isVerified, &u.Coins, &u.AvatarID, &createdAt, &lastLogin)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read user: %w", classify(err))
	}
	u.IsVerified = isVerified != 0
	u.CreatedAt = createdAt.Time
	u.LastLoginAt = lastLogin.Time
	return &u, nil
}

func boolToInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}
