package stats_test

import (
	"context"
	"testing"

	"go.uber.org/zap/zaptest"

	"forest-tails/server/internal/executor"
	"forest-tails/server/internal/protocol"
	"forest-tails/server/internal/services/stats"
	"forest-tails/server/internal/store"
	"forest-tails/server/internal/testutils"
)

func TestTopPlayersRanksByPoints(t *testing.T) {
	db := testutils.SetupTestDB(t)
	defer db.Close()

	alice := testutils.CreateTestUser(t, db, "alice", "alice@example.com", "Password1")
	bob := testutils.CreateTestUser(t, db, "bob", "bob@example.com", "Password1")
	carol := testutils.CreateTestUser(t, db, "carol", "carol@example.com", "Password1")
	testutils.CreateTestStats(t, db, alice, 3, 1, 300)
	testutils.CreateTestStats(t, db, bob, 5, 5, 900)
	testutils.CreateTestStats(t, db, carol, 1, 0, 100)

	logger := zaptest.NewLogger(t)
	service := stats.NewStatsService(logger, executor.New(logger), store.NewStatistics(db))

	resp := service.TopPlayers(context.Background())
	if !resp.Success {
		t.Fatalf("TopPlayers failed: %+v", resp)
	}
	if len(resp.Data) != 3 {
		t.Fatalf("entries = %d, want 3", len(resp.Data))
	}

	want := []string{"bob", "alice", "carol"}
	for i, entry := range resp.Data {
		if entry.Username != want[i] {
			t.Errorf("rank %d = %q, want %q", i+1, entry.Username, want[i])
		}
		if entry.Rank != i+1 {
			t.Errorf("entry %d rank = %d, want %d", i, entry.Rank, i+1)
		}
	}
}

func TestTopPlayersEmptyBoard(t *testing.T) {
	db := testutils.SetupTestDB(t)
	defer db.Close()

	logger := zaptest.NewLogger(t)
	service := stats.NewStatsService(logger, executor.New(logger), store.NewStatistics(db))

	resp := service.TopPlayers(context.Background())
	if !resp.Success {
		t.Fatalf("TopPlayers failed: %+v", resp)
	}
	if len(resp.Data) != 0 {
		t.Errorf("entries = %d, want 0", len(resp.Data))
	}
}

func TestPlayerStats(t *testing.T) {
	db := testutils.SetupTestDB(t)
	defer db.Close()

	alice := testutils.CreateTestUser(t, db, "alice", "alice@example.com", "Password1")
	testutils.CreateTestStats(t, db, alice, 7, 3, 450)

	logger := zaptest.NewLogger(t)
	service := stats.NewStatsService(logger, executor.New(logger), store.NewStatistics(db))

	resp := service.PlayerStats(context.Background(), stats.PlayerStatsRequest{Username: "alice"})
	if !resp.Success {
		t.Fatalf("PlayerStats failed: %+v", resp)
	}
	if resp.Data.Wins != 7 || resp.Data.Losses != 3 || resp.Data.GlobalPoints != 450 {
		t.Errorf("stats = %+v", resp.Data)
	}
	if resp.Data.MatchesPlayed != 10 {
		t.Errorf("matches = %d, want 10", resp.Data.MatchesPlayed)
	}
}

func TestPlayerStatsUnknownUser(t *testing.T) {
	db := testutils.SetupTestDB(t)
	defer db.Close()

	logger := zaptest.NewLogger(t)
	service := stats.NewStatsService(logger, executor.New(logger), store.NewStatistics(db))

	resp := service.PlayerStats(context.Background(), stats.PlayerStatsRequest{Username: "ghost"})
	if resp.Success {
		t.Fatal("unknown player should fail")
	}
	if resp.Code != protocol.CodeUserNotFound {
		t.Errorf("code = %d, want %d", resp.Code, protocol.CodeUserNotFound)
	}

	blank := service.PlayerStats(context.Background(), stats.PlayerStatsRequest{})
	if blank.Success || blank.Code != protocol.CodeValidationError {
		t.Errorf("blank username resp = %+v, want code %d", blank, protocol.CodeValidationError)
	}
}
