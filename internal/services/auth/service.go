package auth

import (
	"context"

	"forest-tails/server/internal/protocol"
	"forest-tails/server/internal/session"
)

// VerificationCodeLength is the length of emailed one-time codes.
const VerificationCodeLength = 6

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
}

type VerifyRequest struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

type ResumeRequest struct {
	Token string `json:"token"`
}

// Service establishes and tears down the registry entry tied to a
// connection. Every method returns exactly one envelope; none of them
// fails with a raw error.
type Service interface {
	Login(ctx context.Context, conn *session.Conn, req LoginRequest) protocol.Response[protocol.User]
	Register(ctx context.Context, req RegisterRequest) protocol.Response[protocol.User]
	VerifyAccount(ctx context.Context, req VerifyRequest) protocol.Response[bool]
	Resume(ctx context.Context, conn *session.Conn, req ResumeRequest) protocol.Response[protocol.User]
	Logout(ctx context.Context, conn *session.Conn) protocol.Response[bool]
}
