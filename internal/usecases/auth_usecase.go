package usecases

import (
	"context"
	"errors"
	"time"

	"github.com/volatiletech/null/v8"
	"inkpost.backend/internal/domain/entities"
	domainerrors "inkpost.backend/internal/domain/errors"
	"inkpost.backend/internal/domain/repositories"
	"inkpost.backend/pkg/crypto"
	"inkpost.backend/pkg/jwt"
	"inkpost.backend/pkg/metrics"
	"inkpost.backend/pkg/utils"
)

var checkPassword = crypto.CheckPassword

// AuthUsecase handles token issuance and session lifecycle
type AuthUsecase struct {
	accounts   repositories.AccountRepository
	uow        repositories.UnitOfWork
	ledger     *SessionLedger
	jwtService *jwt.JWTService
	metrics    *metrics.Registry
	now        func() time.Time
}

// NewAuthUsecase creates a new auth usecase
func NewAuthUsecase(
	accounts repositories.AccountRepository,
	uow repositories.UnitOfWork,
	ledger *SessionLedger,
	jwtService *jwt.JWTService,
	m *metrics.Registry,
) *AuthUsecase {
	return &AuthUsecase{
		accounts:   accounts,
		uow:        uow,
		ledger:     ledger,
		jwtService: jwtService,
		metrics:    m,
		now:        time.Now,
	}
}

// Login checks credentials, opens a session and returns a token pair.
// Logging in moves last_login, which invalidates outstanding activation and reset links.
func (u *AuthUsecase) Login(ctx context.Context, input *entities.LoginInput) (resp *entities.AuthResponse, err error) {
	defer func() { u.metrics.AuthEvent("login", err) }()

	account, err := u.accounts.GetByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			return nil, domainerrors.ErrInvalidCredentials
		}
		return nil, err
	}
	if !checkPassword(input.Password, account.PasswordHash) {
		return nil, domainerrors.ErrInvalidCredentials
	}
	if !account.IsActive {
		return nil, domainerrors.ErrAccountInactive
	}

	pair, err := u.jwtService.GenerateTokenPair(subjectOf(account))
	if err != nil {
		return nil, err
	}

	now := u.now().UTC()
	err = u.uow.Do(ctx, func(txCtx context.Context) error {
		if err := u.accounts.UpdateLastLogin(txCtx, account.ID, now); err != nil {
			return err
		}
		return u.ledger.Track(txCtx, account.ID, pair.SessionID, pair.RefreshExpiresAt)
	})
	if err != nil {
		return nil, err
	}
	account.LastLogin = null.TimeFrom(now)

	return &entities.AuthResponse{
		Access:  pair.AccessToken,
		Refresh: pair.RefreshToken,
		Account: account,
	}, nil
}

// RefreshToken returns a new access token for a live session. The refresh token is returned unchanged.
func (u *AuthUsecase) RefreshToken(ctx context.Context, refreshToken string) (resp *entities.RefreshResponse, err error) {
	defer func() { u.metrics.AuthEvent("refresh", err) }()

	claims, err := u.jwtService.ValidateTyped(refreshToken, jwt.TokenTypeRefresh)
	if err != nil {
		return nil, domainerrors.ErrUnauthorized
	}

	revoked, err := u.ledger.IsRevoked(ctx, claims.SessionID)
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, domainerrors.ErrUnauthorized
	}

	account, err := u.accounts.GetByID(ctx, claims.AccountID)
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			return nil, domainerrors.ErrUnauthorized
		}
		return nil, err
	}
	if !account.IsActive {
		return nil, domainerrors.ErrAccountInactive
	}

	access, err := u.jwtService.GenerateAccessToken(subjectOf(account), claims.SessionID)
	if err != nil {
		return nil, err
	}
	return &entities.RefreshResponse{Access: access, Refresh: refreshToken}, nil
}

// Logout revokes the session of the given refresh token. The token must belong
// to accountID and must not be revoked already.
func (u *AuthUsecase) Logout(ctx context.Context, accountID uint64, refreshToken string) (err error) {
	defer func() { u.metrics.AuthEvent("logout", err) }()

	claims, err := u.jwtService.ValidateTyped(refreshToken, jwt.TokenTypeRefresh)
	if err != nil || claims.AccountID != accountID {
		return domainerrors.ErrInvalidSession
	}

	session, err := u.ledger.Get(ctx, claims.SessionID)
	if err != nil {
		return err
	}
	if session.AccountID != accountID || session.Revoked {
		return domainerrors.ErrInvalidSession
	}
	return u.ledger.RevokeOne(ctx, session.ID)
}

// LogoutAll revokes every outstanding session of the account
func (u *AuthUsecase) LogoutAll(ctx context.Context, accountID uint64) (n int, err error) {
	defer func() { u.metrics.AuthEvent("logout_all", err) }()
	return u.ledger.RevokeAll(ctx, accountID)
}

// SessionActive reports whether an access token's session is still live
func (u *AuthUsecase) SessionActive(ctx context.Context, sessionID string) (bool, error) {
	revoked, err := u.ledger.IsRevoked(ctx, sessionID)
	if err != nil {
		return false, err
	}
	return !revoked, nil
}

// ListSessions returns a page of the account's sessions
func (u *AuthUsecase) ListSessions(ctx context.Context, accountID uint64, page, limit int) ([]*entities.Session, utils.PaginationMeta, error) {
	return u.ledger.List(ctx, accountID, page, limit)
}

func subjectOf(a *entities.Account) jwt.Subject {
	return jwt.Subject{
		AccountID: a.ID,
		Email:     a.Email,
		Staff:     a.IsStaff,
	}
}
