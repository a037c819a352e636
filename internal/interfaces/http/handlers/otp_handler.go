package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"inkpost.backend/internal/domain/entities"
	domainerrors "inkpost.backend/internal/domain/errors"
	"inkpost.backend/internal/interfaces/http/response"
)

type otpService interface {
	SendOTP(ctx context.Context, email string) error
	ResendOTP(ctx context.Context, email string) error
	VerifyOTP(ctx context.Context, email, code string) (*entities.Account, error)
}

// OTPHandler handles one-time code activation
type OTPHandler struct {
	otp otpService
}

// NewOTPHandler creates a new OTP handler
func NewOTPHandler(otp otpService) *OTPHandler {
	return &OTPHandler{otp: otp}
}

// Send issues a code, replacing any previous one
// POST /api/v1/accounts/otp/send
func (h *OTPHandler) Send(c *gin.Context) {
	var input entities.EmailInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}
	if err := h.otp.SendOTP(c.Request.Context(), input.Email); err != nil {
		response.Error(c, err)
		return
	}
	response.Message(c, http.StatusOK, "OTP sent")
}

// Resend issues a code unless a valid one is outstanding
// POST /api/v1/accounts/otp/resend
func (h *OTPHandler) Resend(c *gin.Context) {
	var input entities.EmailInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}
	if err := h.otp.ResendOTP(c.Request.Context(), input.Email); err != nil {
		response.Error(c, err)
		return
	}
	response.Message(c, http.StatusOK, "New OTP sent")
}

// Verify checks a code and activates the account
// POST /api/v1/accounts/otp/verify
func (h *OTPHandler) Verify(c *gin.Context) {
	var input entities.VerifyOTPInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}
	if _, err := h.otp.VerifyOTP(c.Request.Context(), input.Email, input.OTP); err != nil {
		response.Error(c, err)
		return
	}
	response.Message(c, http.StatusOK, "Account activated")
}
