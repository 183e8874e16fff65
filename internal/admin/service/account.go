package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/aussiebroadwan/godview/internal/admin/domain"
	"github.com/aussiebroadwan/godview/internal/admin/store"
	"github.com/aussiebroadwan/godview/pkg/cryptox"
	"github.com/aussiebroadwan/godview/pkg/idx"
	"github.com/aussiebroadwan/godview/pkg/jwtx"
	"github.com/aussiebroadwan/godview/pkg/slogx"
)

// DefaultAudience is the aud claim of session tokens.
const DefaultAudience = "godview"

// AccountService owns sign-in, sessions and first-run bootstrap.
type AccountService struct {
	Store      store.Store
	Signer     jwtx.Signer
	Issuer     string
	Audience   []string
	SessionTTL time.Duration

	// BootstrapToken gates Bootstrap. Empty disables bootstrap entirely.
	BootstrapToken string
	Now            func() time.Time
}

type BootstrapInput struct {
	Email    string `json:"email" validate:"required,email,max=254"`
	Name     string `json:"name" validate:"required,max=255"`
	Password string `json:"password" validate:"required,min=8,max=256"`
}

type SignInInput struct {
	Email    string `json:"email" validate:"required,max=254"`
	Password string `json:"password" validate:"required,max=256"`
	TOTPCode string `json:"totpCode"`
}

// SignedSession is a new session row plus the JWT naming it.
type SignedSession struct {
	Token   string
	Session domain.Session
	User    domain.User
}

// Bootstrap creates the first SUPER_ADMIN. It only works on an empty user
// table and with the configured token.
func (s *AccountService) Bootstrap(ctx context.Context, token string, in BootstrapInput) (domain.User, error) {
	log := slogx.FromContext(ctx)

	// 1. Validate provided token
	if s.BootstrapToken == "" || !cryptox.EqualTokens(token, s.BootstrapToken) {
		log.Warn("unauthorized bootstrap attempt")
		return domain.User{}, ErrBootstrapUnauthorized
	}

	// 2. Validate the admin details
	in.Email = domain.NormalizeEmail(in.Email)
	in.Name = strings.TrimSpace(in.Name)
	if err := validateInput(in); err != nil {
		return domain.User{}, err
	}
	passHash, err := cryptox.HashPassword(in.Password)
	if err != nil {
		log.Error("failed to hash admin password", slog.Any("error", err))
		return domain.User{}, err
	}

	// 3. Check emptiness and insert together
	now := clock(s.Now)
	admin := domain.User{
		ID:            idx.New().String(),
		Email:         in.Email,
		Name:          in.Name,
		PasswordHash:  passHash,
		Role:          domain.RoleSuperAdmin,
		EmailVerified: true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		empty, err := tx.Users().IsEmpty(ctx)
		if err != nil {
			return err
		}
		if !empty {
			return ErrBootstrapAlready
		}
		return tx.Users().CreateUser(ctx, admin)
	})
	if errors.Is(err, ErrBootstrapAlready) {
		log.Warn("attempted bootstrap on already-bootstrapped system")
		return domain.User{}, err
	}
	if err != nil {
		log.Error("failed to create bootstrap admin", slog.Any("error", err))
		return domain.User{}, err
	}

	log.Info("successfully bootstrapped system", slog.String("admin_user_id", admin.ID))
	return admin, nil
}

// SignIn checks credentials and opens a session. Unknown emails and wrong
// passwords are indistinguishable to the caller.
func (s *AccountService) SignIn(ctx context.Context, in SignInInput, ip, userAgent string) (SignedSession, error) {
	log := slogx.FromContext(ctx)

	// 1. Credentials
	in.Email = domain.NormalizeEmail(in.Email)
	if err := validateInput(in); err != nil {
		return SignedSession{}, err
	}
	user, err := s.Store.Users().GetUserByEmail(ctx, in.Email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			log.Warn("sign-in for unknown email")
			return SignedSession{}, ErrInvalidCredentials
		}
		log.Error("failed to load user for sign-in", slog.Any("error", err))
		return SignedSession{}, err
	}
	if user.PasswordHash == "" || cryptox.VerifyPassword(in.Password, user.PasswordHash) != nil {
		log.Warn("sign-in with wrong password", slog.String("user_id", user.ID))
		return SignedSession{}, ErrInvalidCredentials
	}
	if user.IsSuspended {
		log.Warn("sign-in by suspended user", slog.String("user_id", user.ID))
		return SignedSession{}, ErrSuspended
	}

	// 2. Second factor
	now := clock(s.Now)
	amr := []string{"pwd"}
	if user.MFAEnabled() && user.MFASecret != nil {
		code := strings.TrimSpace(in.TOTPCode)
		if code == "" {
			return SignedSession{}, ErrMFARequired
		}
		if !validTOTP(code, *user.MFASecret, now) {
			log.Warn("sign-in with invalid TOTP code", slog.String("user_id", user.ID))
			return SignedSession{}, ErrInvalidTOTPCode
		}
		amr = append(amr, "otp")
	}

	// 3. Session row, then the token naming it
	ttl := s.SessionTTL
	if ttl <= 0 {
		ttl = jwtx.DefaultSessionTTL
	}
	session := domain.Session{
		ID:        idx.New().String(),
		UserID:    user.ID,
		ExpiresAt: now.Add(ttl),
		IPAddress: orUnknown(ip),
		UserAgent: orUnknown(userAgent),
		CreatedAt: now,
	}
	if err := s.Store.Sessions().CreateSession(ctx, session); err != nil {
		log.Error("failed to create session", slog.Any("error", err))
		return SignedSession{}, err
	}

	audience := s.Audience
	if len(audience) == 0 {
		audience = []string{DefaultAudience}
	}
	token, err := s.Signer.Sign(jwtx.NewSessionClaims(user.ID, session.ID, amr, s.Issuer, audience, now, session.ExpiresAt))
	if err != nil {
		log.Error("failed to sign session token", slog.Any("error", err))
		return SignedSession{}, err
	}

	log.Info("signed in", slog.String("user_id", user.ID), slog.String("sid", session.ID))
	return SignedSession{Token: token, Session: session, User: user}, nil
}

// SignOut revokes the caller's session. Revoking twice is not an error.
func (s *AccountService) SignOut(ctx context.Context, caller domain.Caller) error {
	if err := RequireSession(caller); err != nil {
		return err
	}
	err := s.Store.Sessions().RevokeSession(ctx, caller.SessionID, clock(s.Now))
	if err != nil && !errors.Is(err, store.ErrNotFound) && !errors.Is(err, store.ErrStateChanged) {
		slogx.FromContext(ctx).Error("failed to revoke session", slog.Any("error", err))
		return err
	}
	return nil
}

// Me returns the caller's own profile as resolved by the Guard.
func (s *AccountService) Me(_ context.Context, caller domain.Caller) (domain.User, error) {
	if err := RequireSession(caller); err != nil {
		return domain.User{}, err
	}
	return caller.User, nil
}
