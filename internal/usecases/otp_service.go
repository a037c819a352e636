package usecases

import (
	"context"
	"crypto/subtle"
	"errors"
	"time"

	"go.uber.org/zap"
	domainerrors "inkpost.backend/internal/domain/errors"
	"inkpost.backend/internal/domain/repositories"
	"inkpost.backend/pkg/crypto"
	"inkpost.backend/pkg/logger"
)

// DefaultOTPWindow applies when no positive expiry is configured
const DefaultOTPWindow = 300 * time.Second

var generateOTP = crypto.GenerateOTP

// IsOTPValid reports whether a code issued at issuedAt is still usable at now
func IsOTPValid(issuedAt, now time.Time, window time.Duration) bool {
	return now.Sub(issuedAt) < window
}

// OTPService issues and checks one-time codes. Each account has at most one
// code; issuing again replaces it.
type OTPService struct {
	repo   repositories.OneTimeCodeRepository
	window time.Duration
	now    func() time.Time
}

// NewOTPService creates an OTP service. A non-positive expirySeconds falls back
// to DefaultOTPWindow.
func NewOTPService(repo repositories.OneTimeCodeRepository, expirySeconds int) *OTPService {
	window := time.Duration(expirySeconds) * time.Second
	if expirySeconds <= 0 {
		logger.Warn(context.Background(), "OTP expiry not configured, using default",
			zap.Int("configured_seconds", expirySeconds),
			zap.Duration("window", DefaultOTPWindow),
		)
		window = DefaultOTPWindow
	}
	return &OTPService{
		repo:   repo,
		window: window,
		now:    time.Now,
	}
}

// WithClock replaces the time source
func (s *OTPService) WithClock(now func() time.Time) *OTPService {
	s.now = now
	return s
}

// Window returns the validity window
func (s *OTPService) Window() time.Duration {
	return s.window
}

// Issue creates a new code for the account, replacing any previous one
func (s *OTPService) Issue(ctx context.Context, accountID uint64) (string, error) {
	code, err := generateOTP()
	if err != nil {
		return "", err
	}
	if err := s.repo.Upsert(ctx, accountID, code, s.now()); err != nil {
		return "", err
	}
	return code, nil
}

// Resend issues a new code unless a valid one is outstanding
func (s *OTPService) Resend(ctx context.Context, accountID uint64) (string, error) {
	existing, err := s.repo.Get(ctx, accountID)
	switch {
	case err == nil:
		if IsOTPValid(existing.CreatedAt, s.now(), s.window) {
			return "", domainerrors.ErrOTPOutstanding
		}
	case !errors.Is(err, domainerrors.ErrOTPNotFound):
		return "", err
	}
	return s.Issue(ctx, accountID)
}

// Verify checks submitted against the stored code and consumes it on success.
// An expired code is left in place until it is replaced.
func (s *OTPService) Verify(ctx context.Context, accountID uint64, submitted string) error {
	stored, err := s.repo.Get(ctx, accountID)
	if err != nil {
		return err
	}
	if !IsOTPValid(stored.CreatedAt, s.now(), s.window) {
		return domainerrors.ErrOTPExpired
	}
	if subtle.ConstantTimeCompare([]byte(stored.Code), []byte(submitted)) != 1 {
		return domainerrors.ErrOTPMismatch
	}
	consumed, err := s.repo.Consume(ctx, accountID, stored.Code)
	if err != nil {
		return err
	}
	if !consumed {
		// replaced or consumed concurrently
		return domainerrors.ErrOTPNotFound
	}
	return nil
}
