package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"inkpost.backend/internal/domain/entities"
	domainerrors "inkpost.backend/internal/domain/errors"
	"inkpost.backend/internal/interfaces/http/response"
	"inkpost.backend/pkg/utils"
)

type accountService interface {
	Register(ctx context.Context, input *entities.RegisterInput) (*entities.Account, error)
	Activate(ctx context.Context, uidb64, token string) (*entities.Account, error)
	ResendActivation(ctx context.Context, email string) error
	RequestPasswordReset(ctx context.Context, email string) error
	ConfirmPasswordReset(ctx context.Context, uidb64, token, password, confirm string) error
	GetAccount(ctx context.Context, id uint64) (*entities.Account, error)
	ListAccounts(ctx context.Context, page, limit int) ([]*entities.Account, utils.PaginationMeta, error)
}

// AccountHandler handles registration, activation and password reset
type AccountHandler struct {
	accounts accountService
}

// NewAccountHandler creates a new account handler
func NewAccountHandler(accounts accountService) *AccountHandler {
	return &AccountHandler{accounts: accounts}
}

// Register handles account registration
// POST /api/v1/accounts/register
func (h *AccountHandler) Register(c *gin.Context) {
	var input entities.RegisterInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	account, err := h.accounts.Register(c.Request.Context(), &input)
	if err != nil {
		response.Error(c, err)
		return
	}

	msg := "Registration successful."
	if !account.Activated() {
		msg = "Registration successful. Please check your email to activate your account."
	}
	response.Success(c, http.StatusCreated, gin.H{
		"message": msg,
		"account": account,
	})
}

// Activate handles an activation link
// GET /api/v1/accounts/activate/:uidb64/:token
func (h *AccountHandler) Activate(c *gin.Context) {
	_, err := h.accounts.Activate(c.Request.Context(), c.Param("uidb64"), c.Param("token"))
	if err != nil {
		if errors.Is(err, domainerrors.ErrInvalidToken) {
			response.ErrorWithError(c, http.StatusBadRequest, domainerrors.CodeInvalidLink, "activation link is invalid")
			return
		}
		response.Error(c, err)
		return
	}
	response.Message(c, http.StatusOK, "account activated")
}

// ResendActivation sends a new activation link or code
// POST /api/v1/accounts/activation/resend
func (h *AccountHandler) ResendActivation(c *gin.Context) {
	var input entities.EmailInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}
	if err := h.accounts.ResendActivation(c.Request.Context(), input.Email); err != nil {
		response.Error(c, err)
		return
	}
	response.Message(c, http.StatusOK, "activation email resent")
}

// RequestPasswordReset emails a password reset link
// POST /api/v1/accounts/password-reset
func (h *AccountHandler) RequestPasswordReset(c *gin.Context) {
	var input entities.EmailInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}
	if err := h.accounts.RequestPasswordReset(c.Request.Context(), input.Email); err != nil {
		response.Error(c, err)
		return
	}
	response.Message(c, http.StatusOK, "password reset email sent")
}

// ConfirmPasswordReset sets a new password from a reset link
// POST /api/v1/accounts/password-reset/:uidb64/:token
func (h *AccountHandler) ConfirmPasswordReset(c *gin.Context) {
	var input entities.ResetPasswordInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	err := h.accounts.ConfirmPasswordReset(c.Request.Context(), c.Param("uidb64"), c.Param("token"), input.Password, input.PasswordConfirm)
	if err != nil {
		if errors.Is(err, domainerrors.ErrInvalidToken) {
			response.ErrorWithError(c, http.StatusBadRequest, domainerrors.CodeInvalidLink, "reset link is invalid")
			return
		}
		response.Error(c, err)
		return
	}
	response.Message(c, http.StatusOK, "password reset complete")
}

// ListAccounts returns a page of accounts
// GET /api/v1/accounts/users
func (h *AccountHandler) ListAccounts(c *gin.Context) {
	var p utils.PaginationParams
	if err := c.ShouldBindQuery(&p); err != nil {
		response.Error(c, domainerrors.BadRequest("page and limit must be numbers"))
		return
	}
	accounts, meta, err := h.accounts.ListAccounts(c.Request.Context(), p.Page, p.Limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Page(c, accounts, meta)
}

// GetAccount returns one account
// GET /api/v1/accounts/users/:id
func (h *AccountHandler) GetAccount(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		response.Error(c, domainerrors.BadRequest("Invalid account ID"))
		return
	}
	account, err := h.accounts.GetAccount(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, account)
}
