package executor

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"go.uber.org/zap/zaptest"

	"forest-tails/server/internal/apperr"
	"forest-tails/server/internal/protocol"
	"forest-tails/server/internal/store"
)

func TestExecuteSuccess(t *testing.T) {
	ex := New(zaptest.NewLogger(t))

	resp := Execute(ex, context.Background(), "TestOp", func(ctx context.Context) (string, error) {
		return "hello", nil
	})

	if !resp.Success {
		t.Fatalf("expected success, got %+v", resp)
	}
	if resp.Code != protocol.CodeSuccess {
		t.Errorf("code = %d, want %d", resp.Code, protocol.CodeSuccess)
	}
	if resp.Data != "hello" {
		t.Errorf("data = %q, want %q", resp.Data, "hello")
	}
}

func TestExecuteDomainErrorKeepsCodeAndMessage(t *testing.T) {
	ex := New(zaptest.NewLogger(t))

	resp := Execute(ex, context.Background(), "TestOp", func(ctx context.Context) (bool, error) {
		return false, apperr.New(protocol.CodeUserAlreadyExists, "Username or email already in use")
	})

	if resp.Success {
		t.Fatal("expected failure")
	}
	if resp.Code != protocol.CodeUserAlreadyExists {
		t.Errorf("code = %d, want %d", resp.Code, protocol.CodeUserAlreadyExists)
	}
	if resp.Message != "Username or email already in use" {
		t.Errorf("message = %q", resp.Message)
	}
}

func TestExecuteWrappedDomainError(t *testing.T) {
	ex := New(zaptest.NewLogger(t))

	resp := Execute(ex, context.Background(), "TestOp", func(ctx context.Context) (bool, error) {
		return false, fmt.Errorf("loading profile: %w", apperr.NotFound("User not found", protocol.CodeUserNotFound))
	})

	if resp.Code != protocol.CodeUserNotFound {
		t.Errorf("code = %d, want %d", resp.Code, protocol.CodeUserNotFound)
	}
	if resp.Message != "User not found" {
		t.Errorf("message = %q", resp.Message)
	}
}

func TestExecuteTimeout(t *testing.T) {
	ex := New(zaptest.NewLogger(t))

	resp := Execute(ex, context.Background(), "TestOp", func(ctx context.Context) (bool, error) {
		return false, context.DeadlineExceeded
	})

	if resp.Code != protocol.CodeTimeout {
		t.Errorf("code = %d, want %d", resp.Code, protocol.CodeTimeout)
	}
}

func TestExecuteCancellation(t *testing.T) {
	ex := New(zaptest.NewLogger(t))

	resp := Execute(ex, context.Background(), "TestOp", func(ctx context.Context) (bool, error) {
		return false, context.Canceled
	})

	if resp.Code != protocol.CodeTimeout {
		t.Errorf("code = %d, want %d", resp.Code, protocol.CodeTimeout)
	}
	if resp.Message == "" {
		t.Error("expected a user-facing message")
	}
}

func TestExecuteStorageTagClassification(t *testing.T) {
	ex := New(zaptest.NewLogger(t))

	cases := []struct {
		name string
		err  error
		want protocol.Code
	}{
		{"conflict wrapped", fmt.Errorf("failed to create user: %w", store.ErrConflict), protocol.CodeConflict},
		{"constraint wrapped", fmt.Errorf("failed to update: %w", store.ErrConstraint), protocol.CodeValidationError},
		{"busy wrapped", fmt.Errorf("failed to read: %w", store.ErrBusy), protocol.CodeTimeout},
		{"auth by prefix", fmt.Errorf("storage-auth: access denied for reader"), protocol.CodeUnauthorized},
		{"unavailable by prefix", fmt.Errorf("storage-unavailable: no such table users"), protocol.CodeDatabaseError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp := Execute(ex, context.Background(), "TestOp", func(ctx context.Context) (bool, error) {
				return false, tc.err
			})
			if resp.Code != tc.want {
				t.Errorf("code = %d, want %d", resp.Code, tc.want)
			}
		})
	}
}

func TestExecuteUnknownErrorNeverLeaksText(t *testing.T) {
	ex := New(zaptest.NewLogger(t))
	secret := "password=hunter2 at /var/lib/app/data.db"

	resp := Execute(ex, context.Background(), "TestOp", func(ctx context.Context) (bool, error) {
		return false, fmt.Errorf("dial failed: %s", secret)
	})

	if resp.Code != protocol.CodeServerInternalError {
		t.Errorf("code = %d, want %d", resp.Code, protocol.CodeServerInternalError)
	}
	if strings.Contains(resp.Message, "hunter2") {
		t.Error("internal error text leaked into the response")
	}
}

func TestExecutePanicBecomesInternalError(t *testing.T) {
	ex := New(zaptest.NewLogger(t))

	resp := Execute(ex, context.Background(), "TestOp", func(ctx context.Context) (bool, error) {
		panic("index out of range [3] with length 2")
	})

	if resp.Success {
		t.Fatal("expected failure after panic")
	}
	if resp.Code != protocol.CodeServerInternalError {
		t.Errorf("code = %d, want %d", resp.Code, protocol.CodeServerInternalError)
	}
	if strings.Contains(resp.Message, "index out of range") {
		t.Error("panic text leaked into the response")
	}
}

func TestRunWrapsBoolResult(t *testing.T) {
	ex := New(zaptest.NewLogger(t))

	ok := Run(ex, context.Background(), "TestOp", func(ctx context.Context) error {
		return nil
	})
	if !ok.Success || ok.Data != true {
		t.Errorf("expected success with true data, got %+v", ok)
	}

	fail := Run(ex, context.Background(), "TestOp", func(ctx context.Context) error {
		return apperr.Validation("Username required")
	})
	if fail.Success || fail.Data != false {
		t.Errorf("expected failure with false data, got %+v", fail)
	}
	if fail.Code != protocol.CodeValidationError {
		t.Errorf("code = %d, want %d", fail.Code, protocol.CodeValidationError)
	}
}
