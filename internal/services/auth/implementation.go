package auth

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"forest-tails/server/internal/apperr"
	"forest-tails/server/internal/executor"
	"forest-tails/server/internal/mail"
	"forest-tails/server/internal/protocol"
	"forest-tails/server/internal/secure"
	"forest-tails/server/internal/session"
	"forest-tails/server/internal/store"
	"forest-tails/server/pkg/config"
)

// mailTimeout bounds the background sends fired by Register and
// VerifyAccount.
const mailTimeout = 15 * time.Second

type authService struct {
	config        config.Config
	logger        *zap.Logger
	ex            *executor.Executor
	users         store.Users
	sanctions     store.Sanctions
	codes         store.VerificationCodes
	notifications *mail.Notifications
	registry      *session.Registry
	validator     *authValidator
}

func NewAuthService(
	cfg config.Config,
	logger *zap.Logger,
	ex *executor.Executor,
	users store.Users,
	sanctions store.Sanctions,
	codes store.VerificationCodes,
	notifications *mail.Notifications,
	registry *session.Registry,
) Service {
	return &authService{
		config:        cfg,
		logger:        logger,
		ex:            ex,
		users:         users,
		sanctions:     sanctions,
		codes:         codes,
		notifications: notifications,
		registry:      registry,
		validator:     newAuthValidator(),
	}
}

func (s *authService) Login(ctx context.Context, conn *session.Conn, req LoginRequest) protocol.Response[protocol.User] {
	return executor.Execute(s.ex, ctx, "Login", func(ctx context.Context) (protocol.User, error) {
		if err := s.validator.ValidateLogin(req); err != nil {
			return protocol.User{}, err
		}

		user, err := s.users.FindByUsername(ctx, req.Username)
		if err != nil {
			return protocol.User{}, err
		}
		// A missing user and a wrong password produce the same code so the
		// response does not reveal which field was wrong.
		if user == nil {
			return protocol.User{}, apperr.Auth("Invalid username or password", protocol.CodeInvalidCredentials)
		}
		if !secure.VerifyPassword(user.PasswordHash, req.Password) {
			return protocol.User{}, apperr.Auth("Invalid username or password", protocol.CodeInvalidCredentials)
		}
		if !user.IsVerified {
			return protocol.User{}, apperr.Auth("Email not verified", protocol.CodeAccountNotVerified)
		}

		sanction, err := s.sanctions.FindActiveBan(ctx, user.ID)
		if err != nil {
			return protocol.User{}, err
		}
		if err := validateSanction(sanction); err != nil {
			return protocol.User{}, err
		}

		user.LastLoginAt = time.Now().UTC()
		if err := s.users.Update(ctx, user); err != nil {
			return protocol.User{}, err
		}

		s.attach(conn, user)

		token, err := s.resumeToken(user.Username)
		if err != nil {
			return protocol.User{}, err
		}
		return userSummary(user, token), nil
	})
}

func (s *authService) Logout(ctx context.Context, conn *session.Conn) protocol.Response[bool] {
	return executor.Run(s.ex, ctx, "Logout", func(ctx context.Context) error {
		if u, ok := conn.User(); ok {
			s.registry.RemoveSession(u.Username)
			conn.ClearUser()
		}
		return nil
	})
}

func (s *authService) Register(ctx context.Context, req RegisterRequest) protocol.Response[protocol.User] {
	return executor.Execute(s.ex, ctx, "Register", func(ctx context.Context) (protocol.User, error) {
		if err := s.validator.ValidateRegister(req); err != nil {
			return protocol.User{}, err
		}

		exists, err := s.users.ExistsByUsernameOrEmail(ctx, req.Username, req.Email)
		if err != nil {
			return protocol.User{}, err
		}
		if exists {
			return protocol.User{}, apperr.Conflict("Username or email already in use", protocol.CodeUserAlreadyExists)
		}

		hash, err := secure.HashPassword(req.Password)
		if err != nil {
			return protocol.User{}, err
		}
		now := time.Now().UTC()
		user := &store.User{
			Username:     req.Username,
			Email:        req.Email,
			PasswordHash: hash,
			FullName:     req.FullName,
			IsVerified:   false,
			Coins:        0,
			AvatarID:     1,
			CreatedAt:    now,
			LastLoginAt:  now,
		}
		if err := s.users.Create(ctx, user); err != nil {
			return protocol.User{}, err
		}

		code, err := secure.RandomCode(VerificationCodeLength)
		if err != nil {
			return protocol.User{}, err
		}
		if err := s.codes.Save(ctx, user.Email, code, store.PurposeRegistration); err != nil {
			return protocol.User{}, err
		}

		// Best-effort: registration never blocks on the outbound send.
		go s.sendCodeMail(user.Email, code)

		return protocol.User{Username: user.Username, Email: user.Email}, nil
	})
}

func (s *authService) VerifyAccount(ctx context.Context, req VerifyRequest) protocol.Response[bool] {
	return executor.Run(s.ex, ctx, "VerifyAccount", func(ctx context.Context) error {
		if err := s.validator.ValidateVerify(req); err != nil {
			return err
		}

		ok, err := s.codes.ValidateAndConsume(ctx, req.Email, req.Code, store.PurposeRegistration)
		if err != nil {
			return err
		}
		if !ok {
			return apperr.New(protocol.CodeInvalidCode, "Invalid or expired verification code")
		}
		if err := s.users.MarkVerified(ctx, req.Email); err != nil {
			return err
		}

		user, err := s.users.FindByEmail(ctx, req.Email)
		if err == nil && user != nil {
			go s.sendWelcomeMail(user.Email, user.Username)
		}
		return nil
	})
}

func (s *authService) Resume(ctx context.Context, conn *session.Conn, req ResumeRequest) protocol.Response[protocol.User] {
	return executor.Execute(s.ex, ctx, "Resume", func(ctx context.Context) (protocol.User, error) {
		username, err := s.parseResumeToken(req.Token)
		if err != nil {
			return protocol.User{}, apperr.Auth("Session token invalid or expired", protocol.CodeSessionExpired)
		}

		user, err := s.users.FindByUsername(ctx, username)
		if err != nil {
			return protocol.User{}, err
		}
		if user == nil || !user.IsVerified {
			return protocol.User{}, apperr.Auth("Session token invalid or expired", protocol.CodeSessionExpired)
		}

		sanction, err := s.sanctions.FindActiveBan(ctx, user.ID)
		if err != nil {
			return protocol.User{}, err
		}
		if err := validateSanction(sanction); err != nil {
			return protocol.User{}, err
		}

		s.attach(conn, user)

		token, err := s.resumeToken(user.Username)
		if err != nil {
			return protocol.User{}, err
		}
		return userSummary(user, token), nil
	})
}

// attach binds the authenticated user to the connection and registers its
// channel, evicting any session the user already had.
func (s *authService) attach(conn *session.Conn, user *store.User) {
	conn.SetUser(&session.User{
		ID:       user.ID,
		Username: user.Username,
		Email:    user.Email,
		AvatarID: user.AvatarID,
	})
	s.registry.AddSession(user.Username, conn.Channel())
}

func (s *authService) resumeToken(username string) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   username,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.config.JWT.ResumeExpiration)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.config.JWT.Secret))
}

func (s *authService) parseResumeToken(tokenString string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(s.config.JWT.Secret), nil
	})
	if err != nil {
		return "", err
	}
	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || !token.Valid || claims.Subject == "" {
		return "", jwt.ErrTokenInvalidClaims
	}
	return claims.Subject, nil
}

func (s *authService) sendCodeMail(email, code string) {
	ctx, cancel := context.WithTimeout(context.Background(), mailTimeout)
	defer cancel()
	if err := s.notifications.SendVerificationCode(ctx, email, code, store.PurposeRegistration); err != nil {
		s.logger.Error("failed to send verification code", zap.String("email", email), zap.Error(err))
	}
}

func (s *authService) sendWelcomeMail(email, username string) {
	ctx, cancel := context.WithTimeout(context.Background(), mailTimeout)
	defer cancel()
	if err := s.notifications.SendWelcome(ctx, email, username); err != nil {
		s.logger.Error("failed to send welcome email", zap.String("email", email), zap.Error(err))
	}
}

func validateSanction(sanction *store.Sanction) error {
	if sanction == nil {
		return nil
	}
	code := protocol.CodeAccountLocked
	if sanction.Type == store.SanctionPermanentBan {
		code = protocol.CodeAccountBanned
	}
	return apperr.Auth("Active sanction found: "+sanction.Reason, code)
}

func userSummary(user *store.User, token string) protocol.User {
	return protocol.User{
		ID:           user.ID,
		Username:     user.Username,
		Email:        user.Email,
		Coins:        user.Coins,
		AvatarID:     user.AvatarID,
		SessionToken: token,
	}
}
