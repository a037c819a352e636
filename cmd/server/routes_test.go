package main

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"inkpost.backend/internal/interfaces/http/handlers"
)

func TestRegisterAPIV1Routes_RegistersAccountRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	registerAPIV1Routes(r, routeDeps{
		accountHandler: &handlers.AccountHandler{},
		otpHandler:     &handlers.OTPHandler{},
		authHandler:    &handlers.AuthHandler{},
		authMiddleware: func(c *gin.Context) { c.Next() },
		idempotency:    func(c *gin.Context) { c.Next() },
	})

	expects := []struct {
		method string
		path   string
	}{
		{"POST", "/api/v1/accounts/register"},
		{"GET", "/api/v1/accounts/activate/:uidb64/:token"},
		{"POST", "/api/v1/accounts/activation/resend"},
		{"POST", "/api/v1/accounts/token"},
		{"POST", "/api/v1/accounts/token/refresh"},
		{"POST", "/api/v1/accounts/logout"},
		{"POST", "/api/v1/accounts/logout-all"},
		{"GET", "/api/v1/accounts/me"},
		{"GET", "/api/v1/accounts/sessions"},
		{"POST", "/api/v1/accounts/password-reset"},
		{"POST", "/api/v1/accounts/password-reset/:uidb64/:token"},
		{"POST", "/api/v1/accounts/otp/send"},
		{"POST", "/api/v1/accounts/otp/resend"},
		{"POST", "/api/v1/accounts/otp/verify"},
		{"GET", "/api/v1/accounts/users"},
		{"GET", "/api/v1/accounts/users/:id"},
	}

	routes := r.Routes()
	if len(routes) != len(expects) {
		t.Fatalf("expected %d routes, got %d", len(expects), len(routes))
	}
	for _, exp := range expects {
		found := false
		for _, route := range routes {
			if route.Method == exp.method && route.Path == exp.path {
				found = true
				break
			}
		}
		if !found {
			t.Fatalf("route %s %s not registered", exp.method, exp.path)
		}
	}
}

func TestRegisterAPIV1Routes_ProtectedRoutesUseAuth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	guarded := 0
	registerAPIV1Routes(r, routeDeps{
		accountHandler: &handlers.AccountHandler{},
		otpHandler:     &handlers.OTPHandler{},
		authHandler:    &handlers.AuthHandler{},
		authMiddleware: func(c *gin.Context) {
			guarded++
			c.AbortWithStatus(http.StatusUnauthorized)
		},
		idempotency: func(c *gin.Context) {
			c.AbortWithStatus(http.StatusConflict)
		},
	})

	for _, path := range []string{"/api/v1/accounts/me", "/api/v1/accounts/sessions", "/api/v1/accounts/users/1"} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("%s: expected 401, got %d", path, rec.Code)
		}
	}
	if guarded != 3 {
		t.Fatalf("expected auth middleware on 3 requests, got %d", guarded)
	}

	for _, path := range []string{"/api/v1/accounts/register", "/api/v1/accounts/otp/send", "/api/v1/accounts/password-reset"} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, path, nil))
		if rec.Code != http.StatusConflict {
			t.Fatalf("%s: expected idempotency guard, got %d", path, rec.Code)
		}
	}
}
