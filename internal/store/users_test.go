package store_test

import (
	"context"
	"errors"
	"testing"

	"forest-tails/server/internal/store"
	"forest-tails/server/internal/testutils"
)

func TestUsersFindAbsentReturnsNil(t *testing.T) {
	db := testutils.SetupTestDB(t)
	defer db.Close()
	ctx := context.Background()

	users := store.NewUsers(db)
	u, err := users.FindByUsername(ctx, "ghost")
	if err != nil {
		t.Fatalf("FindByUsername failed: %v", err)
	}
	if u != nil {
		t.Errorf("expected nil for an absent user, got %+v", u)
	}
}

func TestUsersCreateAndFind(t *testing.T) {
	db := testutils.SetupTestDB(t)
	defer db.Close()
	ctx := context.Background()

	users := store.NewUsers(db)
	u := &store.User{
		Username:     "alice",
		Email:        "alice@example.com",
		PasswordHash: "not-a-real-hash",
		FullName:     "Alice Example",
		AvatarID:     1,
	}
	if err := users.Create(ctx, u); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if u.ID == 0 {
		t.Fatal("Create did not assign an id")
	}

	got, err := users.FindByEmail(ctx, "alice@example.com")
	if err != nil {
		t.Fatalf("FindByEmail failed: %v", err)
	}
	if got == nil || got.Username != "alice" {
		t.Fatalf("FindByEmail = %+v", got)
	}
	if got.IsVerified {
		t.Error("new user must start unverified")
	}
}

func TestUsersDuplicateUsernameIsConflict(t *testing.T) {
	db := testutils.SetupTestDB(t)
	defer db.Close()
	ctx := context.Background()

	users := store.NewUsers(db)
	first := &store.User{Username: "alice", Email: "alice@example.com", PasswordHash: "x"}
	if err := users.Create(ctx, first); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	dup := &store.User{Username: "alice", Email: "other@example.com", PasswordHash: "x"}
	err := users.Create(ctx, dup)
	if err == nil {
		t.Fatal("duplicate username should fail")
	}
	if !errors.Is(err, store.ErrConflict) {
		t.Errorf("error = %v, want wrapped ErrConflict", err)
	}
}

func TestUsersExistsByUsernameOrEmail(t *testing.T) {
	db := testutils.SetupTestDB(t)
	defer db.Close()
	ctx := context.Background()

	testutils.CreateTestUser(t, db, "alice", "alice@example.com", "Password1")
	users := store.NewUsers(db)

	cases := []struct {
		username, email string
		want            bool
	}{
		{"alice", "new@example.com", true},
		{"newname", "alice@example.com", true},
		{"newname", "new@example.com", false},
	}
	for _, tc := range cases {
		got, err := users.ExistsByUsernameOrEmail(ctx, tc.username, tc.email)
		if err != nil {
			t.Fatalf("ExistsByUsernameOrEmail(%q, %q) failed: %v", tc.username, tc.email, err)
		}
		if got != tc.want {
			t.Errorf("ExistsByUsernameOrEmail(%q, %q) = %v, want %v", tc.username, tc.email, got, tc.want)
		}
	}
}

func TestUsersMarkVerified(t *testing.T) {
	db := testutils.SetupTestDB(t)
	defer db.Close()
	ctx := context.Background()

	users := store.NewUsers(db)
	u := &store.User{Username: "alice", Email: "alice@example.com", PasswordHash: "x"}
	if err := users.Create(ctx, u); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if err := users.MarkVerified(ctx, "alice@example.com"); err != nil {
		t.Fatalf("MarkVerified failed: %v", err)
	}
	got, err := users.FindByID(ctx, u.ID)
	if err != nil || got == nil {
		t.Fatalf("FindByID failed: %v", err)
	}
	if !got.IsVerified {
		t.Error("user should be verified")
	}
}
