package store_test

import (
	"context"
	"testing"

	"forest-tails/server/internal/store"
	"forest-tails/server/internal/testutils"
)

func TestVerificationCodesValidateAndConsumeIsOneShot(t *testing.T) {
	db := testutils.SetupTestDB(t)
	defer db.Close()
	ctx := context.Background()

	codes := store.NewVerificationCodes(db)
	if err := codes.Save(ctx, "alice@example.com", "ABC123", store.PurposeRegistration); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	ok, err := codes.ValidateAndConsume(ctx, "alice@example.com", "ABC123", store.PurposeRegistration)
	if err != nil {
		t.Fatalf("ValidateAndConsume failed: %v", err)
	}
	if !ok {
		t.Fatal("fresh code should validate")
	}

	ok, err = codes.ValidateAndConsume(ctx, "alice@example.com", "ABC123", store.PurposeRegistration)
	if err != nil {
		t.Fatalf("second ValidateAndConsume failed: %v", err)
	}
	if ok {
		t.Error("a consumed code must not validate twice")
	}
}

func TestVerificationCodesRejectWrongCodeOrPurpose(t *testing.T) {
	db := testutils.SetupTestDB(t)
	defer db.Close()
	ctx := context.Background()

	codes := store.NewVerificationCodes(db)
	if err := codes.Save(ctx, "alice@example.com", "ABC123", store.PurposeRegistration); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	ok, err := codes.ValidateAndConsume(ctx, "alice@example.com", "WRONG1", store.PurposeRegistration)
	if err != nil || ok {
		t.Errorf("wrong code: ok=%v err=%v", ok, err)
	}
	ok, err = codes.ValidateAndConsume(ctx, "alice@example.com", "ABC123", store.PurposePasswordRecovery)
	if err != nil || ok {
		t.Errorf("wrong purpose: ok=%v err=%v", ok, err)
	}

	// The original code survives failed attempts.
	ok, err = codes.ValidateAndConsume(ctx, "alice@example.com", "ABC123", store.PurposeRegistration)
	if err != nil || !ok {
		t.Errorf("correct code after failed attempts: ok=%v err=%v", ok, err)
	}
}

func TestVerificationCodesSaveReplacesPrevious(t *testing.T) {
	db := testutils.SetupTestDB(t)
	defer db.Close()
	ctx := context.Background()

	codes := store.NewVerificationCodes(db)
	if err := codes.Save(ctx, "alice@example.com", "FIRST1", store.PurposeRegistration); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := codes.Save(ctx, "alice@example.com", "SECOND", store.PurposeRegistration); err != nil {
		t.Fatalf("second Save failed: %v", err)
	}

	ok, err := codes.ValidateAndConsume(ctx, "alice@example.com", "FIRST1", store.PurposeRegistration)
	if err != nil || ok {
		t.Errorf("replaced code should not validate: ok=%v err=%v", ok, err)
	}
	ok, err = codes.ValidateAndConsume(ctx, "alice@example.com", "SECOND", store.PurposeRegistration)
	if err != nil || !ok {
		t.Errorf("latest code should validate: ok=%v err=%v", ok, err)
	}
}
