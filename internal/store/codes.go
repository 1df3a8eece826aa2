package store

import (
	"context"
	"fmt"
	"time"

	"forest-tails/server/internal/db/types"
)

// codeTTL is how long a verification code stays valid.
const codeTTL = 15 * time.Minute

type codeStore struct {
	db DBTX
}

// NewVerificationCodes returns the sqlite-backed verification-code store.
func NewVerificationCodes(db DBTX) VerificationCodes {
	return &codeStore{db: db}
}

// Save replaces any previous code for the same email and purpose.
func (s *codeStore) Save(ctx context.Context, email, code string, purpose CodePurpose) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO verification_codes (email, code, purpose, expires_at) VALUES (?, ?, ?, ?)
          ON CONFLICT (email, purpose) DO UPDATE SET code = excluded.code, expires_at = excluded.expires_at`,
		email, code, string(purpose), types.Timestamp{Time: time.Now().UTC().Add(codeTTL)})
	if err != nil {
		return fmt.Errorf("failed to save verification code: %w", classify(err))
	}
	return nil
}

// ValidateAndConsume reports whether an unexpired code matches and deletes
// it on success, so a code can only be used once.
func (s *codeStore) ValidateAndConsume(ctx context.Context, email, code string, purpose CodePurpose) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM verification_codes
          WHERE email = ? AND code = ? AND purpose = ? AND expires_at > ?`,
		email, code, string(purpose), types.Timestamp{Time: time.Now().UTC()})
	if err != nil {
		return false, fmt.Errorf("failed to consume verification code: %w", classify(err))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to consume verification code: %w", classify(err))
	}
	return n > 0, nil
}
