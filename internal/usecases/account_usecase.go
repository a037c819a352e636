package usecases

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"inkpost.backend/internal/domain/entities"
	domainerrors "inkpost.backend/internal/domain/errors"
	"inkpost.backend/internal/domain/repositories"
	"inkpost.backend/pkg/crypto"
	"inkpost.backend/pkg/logger"
	"inkpost.backend/pkg/metrics"
	"inkpost.backend/pkg/token"
	"inkpost.backend/pkg/utils"
)

// Activation strategies
const (
	ActivationByLink = "link"
	ActivationByOTP  = "otp"
)

// AccountNotifier delivers account notifications
type AccountNotifier interface {
	Activation(ctx context.Context, account *entities.Account, link string) error
	PasswordReset(ctx context.Context, account *entities.Account, link string) error
	OTP(ctx context.Context, account *entities.Account, code string, validFor time.Duration) error
}

// AccountPolicy configures the registration flow
type AccountPolicy struct {
	VerificationRequired bool
	Strategy             string
	// BaseURL, ActivationPath and ResetPath build the links sent by email
	BaseURL         string
	ActivationPath  string
	ResetPath       string
	DispatchTimeout time.Duration
}

var hashPassword = crypto.HashPassword

// AccountUsecase handles registration, activation and password reset
type AccountUsecase struct {
	accounts repositories.AccountRepository
	otp      *OTPService
	tokens   *token.Generator
	notifier AccountNotifier
	metrics  *metrics.Registry
	policy   AccountPolicy
	now      func() time.Time
}

// NewAccountUsecase creates a new account usecase
func NewAccountUsecase(
	accounts repositories.AccountRepository,
	otp *OTPService,
	tokens *token.Generator,
	notifier AccountNotifier,
	m *metrics.Registry,
	policy AccountPolicy,
) *AccountUsecase {
	if policy.Strategy != ActivationByOTP {
		policy.Strategy = ActivationByLink
	}
	return &AccountUsecase{
		accounts: accounts,
		otp:      otp,
		tokens:   tokens,
		notifier: notifier,
		metrics:  m,
		policy:   policy,
		now:      time.Now,
	}
}

// Register creates an account. When verification is mandatory the account
// starts inactive and an activation link or code is sent.
func (u *AccountUsecase) Register(ctx context.Context, input *entities.RegisterInput) (account *entities.Account, err error) {
	defer func() { u.metrics.AuthEvent("register", err) }()

	email := entities.NormalizeEmail(input.Email)
	_, err = u.accounts.GetByEmail(ctx, email)
	if err == nil {
		return nil, domainerrors.ErrAlreadyExists
	}
	if !errors.Is(err, domainerrors.ErrNotFound) {
		return nil, err
	}

	passwordHash, err := hashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	verified := !u.policy.VerificationRequired
	account = &entities.Account{
		Email:           email,
		FirstName:       strings.TrimSpace(input.FirstName),
		LastName:        strings.TrimSpace(input.LastName),
		PasswordHash:    passwordHash,
		IsActive:        verified,
		IsEmailVerified: verified,
		DateJoined:      u.now().UTC(),
	}
	if err = u.accounts.Create(ctx, account); err != nil {
		return nil, err
	}

	if u.policy.VerificationRequired {
		// the account exists either way; the user can ask for a new link
		if sendErr := u.sendActivation(ctx, account); sendErr != nil {
			logger.Error(ctx, "Failed to prepare activation", zap.Uint64("account_id", account.ID), zap.Error(sendErr))
		}
	}
	return account, nil
}

// Activate verifies an activation link and activates the account.
// Following the same link again after activation succeeds without a write.
func (u *AccountUsecase) Activate(ctx context.Context, uidb64, tok string) (account *entities.Account, err error) {
	defer func() { u.metrics.AuthEvent("activate", err) }()

	account, err = u.linkAccount(ctx, uidb64)
	if err != nil {
		return nil, err
	}
	if account.Activated() {
		// a repeated or concurrent click on the link that activated the account
		sent := TokenState(account, token.PurposeActivation)
		sent.Active = false
		if !u.tokens.Check(sent, tok) {
			return nil, domainerrors.ErrInvalidToken
		}
		return account, nil
	}
	if !u.tokens.Check(TokenState(account, token.PurposeActivation), tok) {
		return nil, domainerrors.ErrInvalidToken
	}
	if _, err = u.accounts.Activate(ctx, account.ID); err != nil {
		return nil, err
	}
	account.IsActive = true
	account.IsEmailVerified = true
	return account, nil
}

// ResendActivation sends a new activation link or code. Unknown emails are
// accepted silently. Under the OTP strategy a still valid code is not replaced.
func (u *AccountUsecase) ResendActivation(ctx context.Context, email string) (err error) {
	defer func() { u.metrics.AuthEvent("resend_activation", err) }()

	account, err := u.accounts.GetByEmail(ctx, email)
	if err != nil && !errors.Is(err, domainerrors.ErrNotFound) {
		return err
	}
	if account != nil && account.IsEmailVerified {
		return domainerrors.ErrAlreadyVerified
	}
	if !u.policy.VerificationRequired {
		return domainerrors.ErrVerificationNotRequired
	}
	if account == nil {
		return nil
	}
	if u.policy.Strategy == ActivationByOTP {
		code, err := u.otp.Resend(ctx, account.ID)
		if err != nil {
			return err
		}
		u.deliverOTP(ctx, account, code)
		return nil
	}
	return u.sendActivation(ctx, account)
}

// RequestPasswordReset sends a reset link to a registered email
func (u *AccountUsecase) RequestPasswordReset(ctx context.Context, email string) (err error) {
	defer func() { u.metrics.AuthEvent("password_reset_request", err) }()

	account, err := u.accounts.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			return domainerrors.ErrUnknownAccount
		}
		return err
	}
	link := u.link(u.policy.ResetPath, token.PurposePasswordReset, account)
	u.deliver(ctx, "password_reset", account, func(dctx context.Context) error {
		return u.notifier.PasswordReset(dctx, account, link)
	})
	return nil
}

// ConfirmPasswordReset sets a new password if the link is valid and the pair matches.
// The new hash changes the token fingerprint, so the link cannot be used twice.
func (u *AccountUsecase) ConfirmPasswordReset(ctx context.Context, uidb64, tok, password, confirm string) (err error) {
	defer func() { u.metrics.AuthEvent("password_reset_confirm", err) }()

	account, err := u.linkAccount(ctx, uidb64)
	if err != nil {
		return err
	}
	if !u.tokens.Check(TokenState(account, token.PurposePasswordReset), tok) {
		return domainerrors.ErrInvalidToken
	}
	if password == "" || confirm == "" || password != confirm {
		return domainerrors.ErrPasswordMismatch
	}
	if len(password) < entities.MinPasswordLength {
		return domainerrors.ErrPasswordTooShort
	}
	passwordHash, err := hashPassword(password)
	if err != nil {
		return err
	}
	return u.accounts.UpdatePassword(ctx, account.ID, passwordHash)
}

// SendOTP issues a new code, replacing any previous one
func (u *AccountUsecase) SendOTP(ctx context.Context, email string) (err error) {
	defer func() { u.metrics.AuthEvent("otp_send", err) }()

	account, err := u.accounts.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	code, err := u.otp.Issue(ctx, account.ID)
	if err != nil {
		return err
	}
	u.deliverOTP(ctx, account, code)
	return nil
}

// ResendOTP issues a new code unless a valid one is outstanding
func (u *AccountUsecase) ResendOTP(ctx context.Context, email string) (err error) {
	defer func() { u.metrics.AuthEvent("otp_resend", err) }()

	account, err := u.accounts.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	code, err := u.otp.Resend(ctx, account.ID)
	if err != nil {
		return err
	}
	u.deliverOTP(ctx, account, code)
	return nil
}

// VerifyOTP checks a code and activates the account
func (u *AccountUsecase) VerifyOTP(ctx context.Context, email, code string) (account *entities.Account, err error) {
	defer func() { u.metrics.AuthEvent("otp_verify", err) }()

	account, err = u.accounts.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if err = u.otp.Verify(ctx, account.ID, code); err != nil {
		return nil, err
	}
	if _, err = u.accounts.Activate(ctx, account.ID); err != nil {
		return nil, err
	}
	account.IsActive = true
	account.IsEmailVerified = true
	return account, nil
}

// GetAccount returns an account by id
func (u *AccountUsecase) GetAccount(ctx context.Context, id uint64) (*entities.Account, error) {
	return u.accounts.GetByID(ctx, id)
}

// ListAccounts returns a page of accounts
func (u *AccountUsecase) ListAccounts(ctx context.Context, page, limit int) ([]*entities.Account, utils.PaginationMeta, error) {
	p := utils.GetPaginationParams(page, limit)
	accounts, total, err := u.accounts.List(ctx, p.Limit, p.CalculateOffset())
	if err != nil {
		return nil, utils.PaginationMeta{}, err
	}
	return accounts, utils.CalculateMeta(total, p.Page, p.Limit), nil
}

// linkAccount loads the account a link's uidb64 names. An undecodable or
// unknown uid is ErrInvalidToken.
func (u *AccountUsecase) linkAccount(ctx context.Context, uidb64 string) (*entities.Account, error) {
	id, err := token.DecodeUID(uidb64)
	if err != nil {
		return nil, domainerrors.ErrInvalidToken
	}
	account, err := u.accounts.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			return nil, domainerrors.ErrInvalidToken
		}
		return nil, err
	}
	return account, nil
}

func (u *AccountUsecase) sendActivation(ctx context.Context, account *entities.Account) error {
	if u.policy.Strategy == ActivationByOTP {
		code, err := u.otp.Issue(ctx, account.ID)
		if err != nil {
			return err
		}
		u.deliverOTP(ctx, account, code)
		return nil
	}

	link := u.link(u.policy.ActivationPath, token.PurposeActivation, account)
	u.deliver(ctx, "activation", account, func(dctx context.Context) error {
		return u.notifier.Activation(dctx, account, link)
	})
	return nil
}

func (u *AccountUsecase) deliverOTP(ctx context.Context, account *entities.Account, code string) {
	u.deliver(ctx, "otp", account, func(dctx context.Context) error {
		return u.notifier.OTP(dctx, account, code, u.otp.Window())
	})
}

// deliver runs one dispatch. Failures are logged and counted, never returned.
func (u *AccountUsecase) deliver(ctx context.Context, kind string, account *entities.Account, send func(context.Context) error) {
	dctx := context.WithoutCancel(ctx)
	if u.policy.DispatchTimeout > 0 {
		var cancel context.CancelFunc
		dctx, cancel = context.WithTimeout(dctx, u.policy.DispatchTimeout)
		defer cancel()
	}
	if err := send(dctx); err != nil {
		u.metrics.DispatchFailed(kind)
		logger.Error(ctx, "Notification dispatch failed",
			zap.String("kind", kind),
			zap.Uint64("account_id", account.ID),
			zap.Error(err),
		)
	}
}

func (u *AccountUsecase) link(path, purpose string, account *entities.Account) string {
	return strings.TrimSuffix(u.policy.BaseURL, "/") + "/" + strings.Trim(path, "/") + "/" +
		token.EncodeUID(account.ID) + "/" + u.tokens.Make(TokenState(account, purpose))
}

// TokenState is the part of an account that signed links for purpose are bound to
func TokenState(a *entities.Account, purpose string) token.State {
	var lastLogin *time.Time
	if a.LastLogin.Valid {
		t := a.LastLogin.Time
		lastLogin = &t
	}
	return token.State{
		Purpose:      purpose,
		ID:           a.ID,
		PasswordHash: a.PasswordHash,
		Email:        a.Email,
		LastLogin:    lastLogin,
		Active:       a.Activated(),
	}
}
