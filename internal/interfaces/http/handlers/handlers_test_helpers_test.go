package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"inkpost.backend/internal/domain/entities"
	"inkpost.backend/internal/interfaces/http/middleware"
	"inkpost.backend/pkg/utils"
)

type accountServiceStub struct {
	registerFn     func(ctx context.Context, input *entities.RegisterInput) (*entities.Account, error)
	activateFn     func(ctx context.Context, uidb64, token string) (*entities.Account, error)
	resendFn       func(ctx context.Context, email string) error
	resetRequestFn func(ctx context.Context, email string) error
	resetConfirmFn func(ctx context.Context, uidb64, token, password, confirm string) error
	getAccountFn   func(ctx context.Context, id uint64) (*entities.Account, error)
	listAccountsFn func(ctx context.Context, page, limit int) ([]*entities.Account, utils.PaginationMeta, error)
	sendOTPFn      func(ctx context.Context, email string) error
	resendOTPFn    func(ctx context.Context, email string) error
	verifyOTPFn    func(ctx context.Context, email, code string) (*entities.Account, error)
}

func (s accountServiceStub) Register(ctx context.Context, input *entities.RegisterInput) (*entities.Account, error) {
	return s.registerFn(ctx, input)
}
func (s accountServiceStub) Activate(ctx context.Context, uidb64, token string) (*entities.Account, error) {
	return s.activateFn(ctx, uidb64, token)
}
func (s accountServiceStub) ResendActivation(ctx context.Context, email string) error {
	return s.resendFn(ctx, email)
}
func (s accountServiceStub) RequestPasswordReset(ctx context.Context, email string) error {
	return s.resetRequestFn(ctx, email)
}
func (s accountServiceStub) ConfirmPasswordReset(ctx context.Context, uidb64, token, password, confirm string) error {
	return s.resetConfirmFn(ctx, uidb64, token, password, confirm)
}
func (s accountServiceStub) GetAccount(ctx context.Context, id uint64) (*entities.Account, error) {
	return s.getAccountFn(ctx, id)
}
func (s accountServiceStub) ListAccounts(ctx context.Context, page, limit int) ([]*entities.Account, utils.PaginationMeta, error) {
	return s.listAccountsFn(ctx, page, limit)
}
func (s accountServiceStub) SendOTP(ctx context.Context, email string) error {
	return s.sendOTPFn(ctx, email)
}
func (s accountServiceStub) ResendOTP(ctx context.Context, email string) error {
	return s.resendOTPFn(ctx, email)
}
func (s accountServiceStub) VerifyOTP(ctx context.Context, email, code string) (*entities.Account, error) {
	return s.verifyOTPFn(ctx, email, code)
}

// withAccount stands in for the auth middleware
func withAccount(id uint64, sessionID string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.AccountIDKey, id)
		c.Set(middleware.SessionIDKey, sessionID)
		c.Next()
	}
}

func doJSON(t *testing.T, r http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if s, ok := body.(string); ok {
			buf.WriteString(s)
		} else {
			require.NoError(t, json.NewEncoder(&buf).Encode(body))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}
