// Package store holds the persistence collaborators of the server. The
// business services only see the interfaces; the sqlite implementations
// live alongside them and classify driver failures into the tagged errors
// consumed by the executor.
package store

import (
	"context"
	"database/sql"
	"time"
)

// DBTX is the subset of *sql.DB / *sql.Tx the repositories need.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// FriendStatus is the state of a friendship record.
type FriendStatus string

const (
	StatusPending  FriendStatus = "pending"
	StatusAccepted FriendStatus = "accepted"
	StatusBlocked  FriendStatus = "blocked"
)

// SanctionType distinguishes permanent bans from temporary locks.
type SanctionType string

const (
	SanctionPermanentBan SanctionType = "permanent_ban"
	SanctionTemporaryBan SanctionType = "temporary_ban"
)

// CodePurpose is what a verification code was issued for.
type CodePurpose string

const (
	PurposeRegistration     CodePurpose = "registration"
	PurposePasswordRecovery CodePurpose = "password_recovery"
)

type User struct {
	ID           int64
	Username     string
	Email        string
	PasswordHash string
	FullName     string
	IsVerified   bool
	Coins        int64
	AvatarID     int64
	CreatedAt    time.Time
	LastLoginAt  time.Time
}

type Friendship struct {
	RequesterID int64
	AddresseeID int64
	Status      FriendStatus
	CreatedAt   time.Time
}

type Sanction struct {
	ID      int64
	UserID  int64
	Type    SanctionType
	Reason  string
	StartAt time.Time
	EndAt   *time.Time
}

type StatsRow struct {
	UserID        int64
	Username      string
	MatchesPlayed int64
	Wins          int64
	Losses        int64
	GlobalPoints  int64
	CurrentStreak int64
	MaxStreak     int64
	PlayTimeSecs  int64
}

// Users is the account store. Lookups return (nil, nil) when no row matches.
type Users interface {
	FindByUsername(ctx context.Context, username string) (*User, error)
	FindByID(ctx context.Context, id int64) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error)
	Create(ctx context.Context, u *User) error
	Update(ctx context.Context, u *User) error
	SetCoins(ctx context.Context, id int64, coins int64) error
	MarkVerified(ctx context.Context, email string) error
}

// Friendships is the relationship store. At most one record exists per
// unordered pair; the either-direction methods test both orderings.
type Friendships interface {
	StatusEither(ctx context.Context, a, b int64) (FriendStatus, bool, error)
	StatusDirected(ctx context.Context, requesterID, addresseeID int64) (FriendStatus, bool, error)
	ListByStatus(ctx context.Context, userID int64, status FriendStatus) ([]Friendship, error)
	InsertPending(ctx context.Context, requesterID, addresseeID int64) error
	UpdateStatus(ctx context.Context, a, b int64, status FriendStatus) error
	Delete(ctx context.Context, a, b int64) error
}

// Sanctions exposes active-ban lookup; nil means no active sanction.
type Sanctions interface {
	FindActiveBan(ctx context.Context, userID int64) (*Sanction, error)
}

// VerificationCodes stores short-lived one-time codes keyed by email and
// purpose.
type VerificationCodes interface {
	Save(ctx context.Context, email, code string, purpose CodePurpose) error
	ValidateAndConsume(ctx context.Context, email, code string, purpose CodePurpose) (bool, error)
}

// Statistics is the read-only statistics store.
type Statistics interface {
	TopPlayers(ctx context.Context, limit int) ([]StatsRow, error)
	ByUsername(ctx context.Context, username string) (*StatsRow, error)
}
