package handlers

import (
	"context"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"inkpost.backend/internal/domain/entities"
	domainerrors "inkpost.backend/internal/domain/errors"
)

func newOTPRouter(stub accountServiceStub) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewOTPHandler(stub)
	r := gin.New()
	r.POST("/otp/send", h.Send)
	r.POST("/otp/resend", h.Resend)
	r.POST("/otp/verify", h.Verify)
	return r
}

func TestOTPHandler(t *testing.T) {
	known := func(email string) error {
		if email != "user@example.com" {
			return domainerrors.ErrNotFound
		}
		return nil
	}
	r := newOTPRouter(accountServiceStub{
		sendOTPFn: func(_ context.Context, email string) error { return known(email) },
		resendOTPFn: func(_ context.Context, email string) error {
			if err := known(email); err != nil {
				return err
			}
			return domainerrors.ErrOTPOutstanding
		},
		verifyOTPFn: func(_ context.Context, email, code string) (*entities.Account, error) {
			if err := known(email); err != nil {
				return nil, err
			}
			switch code {
			case "482913":
				return &entities.Account{ID: 1, IsActive: true, IsEmailVerified: true}, nil
			case "111111":
				return nil, domainerrors.ErrOTPExpired
			case "222222":
				return nil, domainerrors.ErrOTPNotFound
			default:
				return nil, domainerrors.ErrOTPMismatch
			}
		},
	})

	tests := []struct {
		name   string
		path   string
		body   gin.H
		status int
	}{
		{"send", "/otp/send", gin.H{"email": "user@example.com"}, http.StatusOK},
		{"send unknown", "/otp/send", gin.H{"email": "ghost@example.com"}, http.StatusNotFound},
		{"send invalid email", "/otp/send", gin.H{"email": "nope"}, http.StatusBadRequest},
		{"resend outstanding", "/otp/resend", gin.H{"email": "user@example.com"}, http.StatusTooManyRequests},
		{"resend unknown", "/otp/resend", gin.H{"email": "ghost@example.com"}, http.StatusNotFound},
		{"verify", "/otp/verify", gin.H{"email": "user@example.com", "otp": "482913"}, http.StatusOK},
		{"verify expired", "/otp/verify", gin.H{"email": "user@example.com", "otp": "111111"}, http.StatusGone},
		{"verify missing code", "/otp/verify", gin.H{"email": "user@example.com", "otp": "222222"}, http.StatusNotFound},
		{"verify mismatch", "/otp/verify", gin.H{"email": "user@example.com", "otp": "000000"}, http.StatusBadRequest},
		{"verify malformed", "/otp/verify", gin.H{"email": "user@example.com", "otp": "12ab"}, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(t, r, http.MethodPost, tt.path, tt.body)
			assert.Equal(t, tt.status, w.Code, w.Body.String())
		})
	}

	w := doJSON(t, r, http.MethodPost, "/otp/resend", gin.H{"email": "user@example.com"})
	assert.Contains(t, decode(t, w)["message"], "please wait")
}
