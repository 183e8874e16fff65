package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/godview/internal/admin/domain"
	"github.com/aussiebroadwan/godview/internal/admin/store"
	"github.com/aussiebroadwan/godview/pkg/slogx"
	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

const totpPeriod = 30

var totpOpts = totp.ValidateOpts{
	Period:    totpPeriod,
	Skew:      1,
	Digits:    otp.DigitsSix,
	Algorithm: otp.AlgorithmSHA1,
}

// validTOTP checks code against secret at now, allowing one step of skew.
func validTOTP(code, secret string, now time.Time) bool {
	if code == "" || secret == "" {
		return false
	}
	ok, err := totp.ValidateCustom(code, secret, now, totpOpts)
	return err == nil && ok
}

type MFAService struct {
	Store  store.Store
	Issuer string // shown in authenticator apps, e.g. "godview"
	Now    func() time.Time
}

type TOTPEnrollment struct {
	Secret  string
	URL     string // otpauth:// URL for QR codes
	Issuer  string
	Account string
}

// EnrollTOTP stores a fresh secret for the caller. MFA is not enforced
// until VerifyTOTP confirms a code from it. Enrolling again before
// verification replaces the pending secret.
func (s *MFAService) EnrollTOTP(ctx context.Context, caller domain.Caller) (TOTPEnrollment, error) {
	log := slogx.FromContext(ctx)

	if err := RequireSession(caller); err != nil {
		return TOTPEnrollment{}, err
	}
	if caller.User.MFAEnabled() {
		return TOTPEnrollment{}, ErrMFAAlreadyEnabled
	}

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      s.Issuer,
		AccountName: caller.User.Email,
		Period:      totpPeriod,
		Digits:      otp.DigitsSix,
		Algorithm:   otp.AlgorithmSHA1,
	})
	if err != nil {
		log.Error("failed to generate TOTP key", slog.Any("error", err))
		return TOTPEnrollment{}, err
	}

	if err := s.Store.Users().UpdateMFASecret(ctx, caller.User.ID, key.Secret(), clock(s.Now)); err != nil {
		log.Error("failed to store MFA secret", slog.Any("error", err))
		return TOTPEnrollment{}, err
	}

	return TOTPEnrollment{
		Secret:  key.Secret(),
		URL:     key.URL(),
		Issuer:  s.Issuer,
		Account: caller.User.Email,
	}, nil
}

// VerifyTOTP enables MFA once the caller proves they hold the secret.
func (s *MFAService) VerifyTOTP(ctx context.Context, caller domain.Caller, code string) error {
	if err := RequireSession(caller); err != nil {
		return err
	}
	user, err := s.user(ctx, caller.User.ID)
	if err != nil {
		return err
	}
	if user.MFAEnabled() {
		return ErrMFAAlreadyEnabled
	}
	if user.MFASecret == nil || *user.MFASecret == "" {
		return ErrMFANotEnrolled
	}

	now := clock(s.Now)
	if !validTOTP(code, *user.MFASecret, now) {
		slogx.FromContext(ctx).Warn("invalid TOTP code during enrollment", slog.String("user_id", user.ID))
		return ErrInvalidTOTPCode
	}

	if err := s.Store.Users().EnableMFA(ctx, user.ID, now); err != nil {
		slogx.FromContext(ctx).Error("failed to enable MFA", slog.Any("error", err))
		return err
	}
	return nil
}

// DisableTOTP removes MFA after a valid code.
func (s *MFAService) DisableTOTP(ctx context.Context, caller domain.Caller, code string) error {
	if err := RequireSession(caller); err != nil {
		return err
	}
	user, err := s.user(ctx, caller.User.ID)
	if err != nil {
		return err
	}
	if !user.MFAEnabled() || user.MFASecret == nil {
		return ErrMFANotEnabled
	}

	now := clock(s.Now)
	if !validTOTP(code, *user.MFASecret, now) {
		slogx.FromContext(ctx).Warn("invalid TOTP code when disabling MFA", slog.String("user_id", user.ID))
		return ErrInvalidTOTPCode
	}

	if err := s.Store.Users().DisableMFA(ctx, user.ID, now); err != nil {
		slogx.FromContext(ctx).Error("failed to disable MFA", slog.Any("error", err))
		return err
	}
	return nil
}

func (s *MFAService) user(ctx context.Context, id string) (domain.User, error) {
	user, err := s.Store.Users().GetUserByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return domain.User{}, ErrUserNotFound
	}
	return user, err
}
