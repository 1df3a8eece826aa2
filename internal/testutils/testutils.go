package testutils

import (
	"context"
	"database/sql"
	"sync"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"forest-tails/server/internal/protocol"
	"forest-tails/server/internal/secure"
	"forest-tails/server/internal/session"
	"forest-tails/server/pkg/config"
)

func GetTestConfig() config.Config {
	return config.Config{
		Database: config.DatabaseConfig{
			Path:           ":memory:",
			MigrationsPath: "./migrations",
		},
		Server: config.ServerConfig{
			Host:              "localhost",
			Port:              8080,
			RateLimitMax:      1000,
			RateLimitDuration: time.Minute,
		},
		JWT: config.JWTConfig{
			Secret:           "test-secret",
			ResumeExpiration: 24 * time.Hour,
		},
		Session: config.SessionConfig{
			PushTimeout:   time.Second,
			CloseTimeout:  time.Second,
			SendQueueSize: 8,
		},
	}
}

func SetupTestDB(t *testing.T) *sql.DB {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		t.Fatalf("Failed to enable foreign keys: %v", err)
	}
	// Create tables (simplified for test utility, in a real app use migrations)
	createTables(t, db)
	return db
}

func createTables(t *testing.T, db *sql.DB) {
	tables := []string{
		`CREATE TABLE users (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            username TEXT NOT NULL UNIQUE,
            email TEXT NOT NULL UNIQUE,
            password_hash TEXT NOT NULL,
            full_name TEXT NOT NULL DEFAULT '',
            is_verified INTEGER NOT NULL DEFAULT 0,
            coins INTEGER NOT NULL DEFAULT 0,
            avatar_id INTEGER NOT NULL DEFAULT 1,
            created_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ', 'now')),
            last_login_at TEXT
        );`,
		`CREATE TABLE friendships (
            requester_id INTEGER NOT NULL,
            addressee_id INTEGER NOT NULL,
            status TEXT NOT NULL DEFAULT 'pending' CHECK (status IN ('pending', 'accepted', 'blocked')),
            created_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ', 'now')),
            PRIMARY KEY (requester_id, addressee_id),
            FOREIGN KEY (requester_id) REFERENCES users (id) ON DELETE CASCADE,
            FOREIGN KEY (addressee_id) REFERENCES users (id) ON DELETE CASCADE
        );`,
		`CREATE TABLE sanctions (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            user_id INTEGER NOT NULL,
            type TEXT NOT NULL CHECK (type IN ('permanent_ban', 'temporary_ban')),
            reason TEXT NOT NULL DEFAULT '',
            start_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ', 'now')),
            end_at TEXT,
            FOREIGN KEY (user_id) REFERENCES users (id) ON DELETE CASCADE
        );`,
		`CREATE TABLE verification_codes (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            email TEXT NOT NULL,
            code TEXT NOT NULL,
            purpose TEXT NOT NULL,
            expires_at TEXT NOT NULL,
            UNIQUE (email, purpose)
        );`,
		`CREATE TABLE player_statistics (
            user_id INTEGER PRIMARY KEY,
            matches_played INTEGER NOT NULL DEFAULT 0,
            wins INTEGER NOT NULL DEFAULT 0,
            losses INTEGER NOT NULL DEFAULT 0,
            global_points INTEGER NOT NULL DEFAULT 0,
            current_streak INTEGER NOT NULL DEFAULT 0,
            max_streak INTEGER NOT NULL DEFAULT 0,
            total_play_time_seconds INTEGER NOT NULL DEFAULT 0,
            FOREIGN KEY (user_id) REFERENCES users (id) ON DELETE CASCADE
        );`,
	}

	for _, sql := range tables {
		if _, err := db.Exec(sql); err != nil {
			t.Fatalf("Failed to execute SQL: %v\nSQL: %s", err, sql)
		}
	}
}

// CreateTestUser inserts a verified user and returns its id.
func CreateTestUser(t *testing.T, dbConn *sql.DB, username, email, password string) int64 {
	hash, err := secure.HashPassword(password)
	if err != nil {
		t.Fatalf("Failed to hash password: %v", err)
	}
	result, err := dbConn.Exec(
		`INSERT INTO users (username, email, password_hash, is_verified) VALUES (?, ?, ?, 1)`,
		username, email, hash)
	if err != nil {
		t.Fatalf("Failed to insert user: %v", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		t.Fatalf("Failed to get user ID: %v", err)
	}
	return id
}

// CreateTestStats inserts a statistics row for an existing user.
func CreateTestStats(t *testing.T, dbConn *sql.DB, userID int64, wins, losses, points int) {
	_, err := dbConn.Exec(
		`INSERT INTO player_statistics (user_id, matches_played, wins, losses, global_points)
         VALUES (?, ?, ?, ?, ?)`,
		userID, wins+losses, wins, losses, points)
	if err != nil {
		t.Fatalf("Failed to insert statistics: %v", err)
	}
}

// FakeChannel is an in-memory session.Channel for tests. Sent pushes are
// recorded and can be inspected with Pushes.
type FakeChannel struct {
	ChannelID string
	SendErr   error

	mu     sync.Mutex
	state  session.State
	pushes []protocol.Push
	done   chan struct{}
	closed bool
}

func NewFakeChannel(id string) *FakeChannel {
	return &FakeChannel{
		ChannelID: id,
		state:     session.StateOpen,
		done:      make(chan struct{}),
	}
}

func (c *FakeChannel) ID() string { return c.ChannelID }

func (c *FakeChannel) State() session.State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *FakeChannel) Send(ctx context.Context, p protocol.Push) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.SendErr != nil {
		return c.SendErr
	}
	if c.state != session.StateOpen {
		return session.ErrChannelClosed
	}
	c.pushes = append(c.pushes, p)
	return nil
}

func (c *FakeChannel) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.shutdownLocked()
	return nil
}

func (c *FakeChannel) Abort() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.shutdownLocked()
}

func (c *FakeChannel) Done() <-chan struct{} { return c.done }

// Disconnect simulates the peer dropping the connection.
func (c *FakeChannel) Disconnect() {
	c.Abort()
}

func (c *FakeChannel) Pushes() []protocol.Push {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]protocol.Push, len(c.pushes))
	copy(out, c.pushes)
	return out
}

func (c *FakeChannel) shutdownLocked() {
	if c.closed {
		return
	}
	c.closed = true
	c.state = session.StateClosed
	close(c.done)
}
