package middleware

import (
	"context"
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	domainerrors "inkpost.backend/internal/domain/errors"
	"inkpost.backend/internal/interfaces/http/response"
	"inkpost.backend/pkg/jwt"
	"inkpost.backend/pkg/logger"
)

const (
	// AuthorizationHeader is the header key for authorization
	AuthorizationHeader = "Authorization"
	// BearerPrefix is the prefix for bearer tokens
	BearerPrefix = "Bearer "
	// AccountIDKey is the context key for the account id
	AccountIDKey = "accountId"
	// AccountEmailKey is the context key for the account email
	AccountEmailKey = "accountEmail"
	// SessionIDKey is the context key for the session behind the access token
	SessionIDKey = "sessionId"
	// StaffKey is the context key for the staff flag
	StaffKey = "staff"
)

// SessionChecker reports whether the session behind an access token is still live
type SessionChecker interface {
	SessionActive(ctx context.Context, sessionID string) (bool, error)
}

// AuthMiddleware accepts a Bearer access token whose session has not been revoked.
// A nil checker skips the revocation lookup.
func AuthMiddleware(jwtService *jwt.JWTService, sessions SessionChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		authHeader := c.GetHeader(AuthorizationHeader)
		if authHeader == "" {
			abort(c, domainerrors.Unauthorized("Authorization header is required"))
			return
		}
		if !strings.HasPrefix(authHeader, BearerPrefix) {
			abort(c, domainerrors.Unauthorized("Invalid authorization format. Use: Bearer <token>"))
			return
		}

		claims, err := jwtService.ValidateTyped(strings.TrimPrefix(authHeader, BearerPrefix), jwt.TokenTypeAccess)
		if err != nil {
			logger.Debug(ctx, "Access token rejected", zap.String("path", c.Request.URL.Path), zap.Error(err))
			if errors.Is(err, jwt.ErrExpiredToken) {
				abort(c, domainerrors.Unauthorized("Token has expired"))
				return
			}
			abort(c, domainerrors.Unauthorized("Invalid token"))
			return
		}

		if sessions != nil {
			active, err := sessions.SessionActive(ctx, claims.SessionID)
			if err != nil {
				logger.Error(ctx, "Session lookup failed", zap.String("session_id", claims.SessionID), zap.Error(err))
				abort(c, domainerrors.InternalError(err))
				return
			}
			if !active {
				abort(c, domainerrors.Unauthorized("Session has been revoked"))
				return
			}
		}

		c.Set(AccountIDKey, claims.AccountID)
		c.Set(AccountEmailKey, claims.Email)
		c.Set(SessionIDKey, claims.SessionID)
		c.Set(StaffKey, claims.Staff)
		c.Request = c.Request.WithContext(context.WithValue(ctx, logger.AccountIDKey, claims.AccountID))

		c.Next()
	}
}

func abort(c *gin.Context, err *domainerrors.AppError) {
	response.Error(c, err)
	c.Abort()
}

// GetAccountID gets the account id from context
func GetAccountID(c *gin.Context) (uint64, bool) {
	v, exists := c.Get(AccountIDKey)
	if !exists {
		return 0, false
	}
	id, ok := v.(uint64)
	return id, ok && id != 0
}

// GetSessionID gets the session id from context
func GetSessionID(c *gin.Context) (string, bool) {
	v, exists := c.Get(SessionIDKey)
	if !exists {
		return "", false
	}
	sid, ok := v.(string)
	return sid, ok
}

// RequireStaff rejects accounts without the staff flag
func RequireStaff() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !c.GetBool(StaffKey) {
			abort(c, domainerrors.Forbidden("Insufficient permissions"))
			return
		}
		c.Next()
	}
}
