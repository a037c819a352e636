package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"inkpost.backend/internal/domain/entities"
	domainerrors "inkpost.backend/internal/domain/errors"
	"inkpost.backend/internal/interfaces/http/middleware"
	"inkpost.backend/internal/interfaces/http/response"
	"inkpost.backend/pkg/utils"
)

type authService interface {
	Login(ctx context.Context, input *entities.LoginInput) (*entities.AuthResponse, error)
	RefreshToken(ctx context.Context, refreshToken string) (*entities.RefreshResponse, error)
	Logout(ctx context.Context, accountID uint64, refreshToken string) error
	LogoutAll(ctx context.Context, accountID uint64) (int, error)
	ListSessions(ctx context.Context, accountID uint64, page, limit int) ([]*entities.Session, utils.PaginationMeta, error)
}

type accountLookup interface {
	GetAccount(ctx context.Context, id uint64) (*entities.Account, error)
}

// AuthHandler handles token and session endpoints
type AuthHandler struct {
	auth     authService
	accounts accountLookup
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(auth authService, accounts accountLookup) *AuthHandler {
	return &AuthHandler{
		auth:     auth,
		accounts: accounts,
	}
}

// Token exchanges credentials for a token pair
// POST /api/v1/accounts/token
func (h *AuthHandler) Token(c *gin.Context) {
	var input entities.LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	resp, err := h.auth.Login(c.Request.Context(), &input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp)
}

// Refresh returns a new access token for a live refresh token
// POST /api/v1/accounts/token/refresh
func (h *AuthHandler) Refresh(c *gin.Context) {
	var input entities.RefreshInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	resp, err := h.auth.RefreshToken(c.Request.Context(), input.Refresh)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp)
}

// Logout revokes the given refresh token
// POST /api/v1/accounts/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	accountID, ok := middleware.GetAccountID(c)
	if !ok {
		response.Error(c, domainerrors.Unauthorized("Unauthorized"))
		return
	}

	var input entities.RefreshInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	if err := h.auth.Logout(c.Request.Context(), accountID, input.Refresh); err != nil {
		response.Error(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// LogoutAll revokes every outstanding session of the caller
// POST /api/v1/accounts/logout-all
func (h *AuthHandler) LogoutAll(c *gin.Context) {
	accountID, ok := middleware.GetAccountID(c)
	if !ok {
		response.Error(c, domainerrors.Unauthorized("Unauthorized"))
		return
	}
	if _, err := h.auth.LogoutAll(c.Request.Context(), accountID); err != nil {
		response.Error(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Me returns the caller's account
// GET /api/v1/accounts/me
func (h *AuthHandler) Me(c *gin.Context) {
	accountID, ok := middleware.GetAccountID(c)
	if !ok {
		response.Error(c, domainerrors.Unauthorized("Unauthorized"))
		return
	}
	account, err := h.accounts.GetAccount(c.Request.Context(), accountID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, account)
}

// Sessions lists the caller's sessions, newest first
// GET /api/v1/accounts/sessions
func (h *AuthHandler) Sessions(c *gin.Context) {
	accountID, ok := middleware.GetAccountID(c)
	if !ok {
		response.Error(c, domainerrors.Unauthorized("Unauthorized"))
		return
	}
	var p utils.PaginationParams
	if err := c.ShouldBindQuery(&p); err != nil {
		response.Error(c, domainerrors.BadRequest("page and limit must be numbers"))
		return
	}

	sessions, meta, err := h.auth.ListSessions(c.Request.Context(), accountID, p.Page, p.Limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	current, _ := middleware.GetSessionID(c)
	items := make([]gin.H, 0, len(sessions))
	for _, s := range sessions {
		items = append(items, gin.H{
			"id":        s.ID,
			"createdAt": s.CreatedAt,
			"expiresAt": s.ExpiresAt,
			"revoked":   s.Revoked,
			"current":   s.ID == current,
		})
	}
	response.Page(c, items, meta)
}
