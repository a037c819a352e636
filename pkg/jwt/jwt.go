package jwt

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrInvalidToken   = errors.New("invalid token")
	ErrExpiredToken   = errors.New("token has expired")
	ErrWrongTokenType = errors.New("wrong token type")
)

// TokenType distinguishes access from refresh tokens
type TokenType string

const (
	TokenTypeAccess  TokenType = "access"
	TokenTypeRefresh TokenType = "refresh"
)

// Claims represents JWT claims
type Claims struct {
	AccountID uint64    `json:"accountId"`
	Email     string    `json:"email"`
	Staff     bool      `json:"staff,omitempty"`
	SessionID string    `json:"sid"`
	Type      TokenType `json:"typ"`
	jwt.RegisteredClaims
}

// TokenPair represents access and refresh tokens bound to one session
type TokenPair struct {
	AccessToken      string    `json:"access"`
	RefreshToken     string    `json:"refresh"`
	SessionID        string    `json:"-"`
	RefreshExpiresAt time.Time `json:"-"`
}

// Subject identifies the account a token is issued for
type Subject struct {
	AccountID uint64
	Email     string
	Staff     bool
}

// JWTService handles JWT operations
type JWTService struct {
	secret        []byte
	accessExpiry  time.Duration
	refreshExpiry time.Duration
}

var (
	signJWTToken = func(token *jwt.Token, secret []byte) (string, error) {
		return token.SignedString(secret)
	}
	newSessionID = func() (uuid.UUID, error) { return uuid.NewV7() }
)

// NewJWTService creates a new JWT service
func NewJWTService(secret string, accessExpiry, refreshExpiry time.Duration) *JWTService {
	return &JWTService{
		secret:        []byte(secret),
		accessExpiry:  accessExpiry,
		refreshExpiry: refreshExpiry,
	}
}

// RefreshExpiry returns the lifetime of refresh tokens
func (s *JWTService) RefreshExpiry() time.Duration {
	return s.refreshExpiry
}

// GenerateTokenPair opens a new session and signs an access/refresh pair for it.
// The refresh token's jti is the session id.
func (s *JWTService) GenerateTokenPair(sub Subject) (*TokenPair, error) {
	sid, err := newSessionID()
	if err != nil {
		return nil, err
	}
	now := time.Now()

	accessToken, err := s.generateToken(sub, sid.String(), TokenTypeAccess, now, s.accessExpiry)
	if err != nil {
		return nil, err
	}

	refreshToken, err := s.generateToken(sub, sid.String(), TokenTypeRefresh, now, s.refreshExpiry)
	if err != nil {
		return nil, err
	}

	return &TokenPair{
		AccessToken:      accessToken,
		RefreshToken:     refreshToken,
		SessionID:        sid.String(),
		RefreshExpiresAt: now.Add(s.refreshExpiry),
	}, nil
}

// GenerateAccessToken signs a new access token for an existing session
func (s *JWTService) GenerateAccessToken(sub Subject, sessionID string) (string, error) {
	return s.generateToken(sub, sessionID, TokenTypeAccess, time.Now(), s.accessExpiry)
}

// ValidateToken validates a JWT token and returns the claims
func (s *JWTService) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return s.secret, nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.AccountID == 0 || claims.SessionID == "" {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

// ValidateTyped validates a token and requires it to be of the given type
func (s *JWTService) ValidateTyped(tokenString string, typ TokenType) (*Claims, error) {
	claims, err := s.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}
	if claims.Type != typ {
		return nil, ErrWrongTokenType
	}
	return claims, nil
}

func (s *JWTService) generateToken(sub Subject, sessionID string, typ TokenType, now time.Time, expiry time.Duration) (string, error) {
	claims := &Claims{
		AccountID: sub.AccountID,
		Email:     sub.Email,
		Staff:     sub.Staff,
		SessionID: sessionID,
		Type:      typ,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(sub.AccountID, 10),
			ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}
	if typ == TokenTypeRefresh {
		claims.ID = sessionID
	} else {
		claims.ID = uuid.NewString()
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return signJWTToken(token, s.secret)
}
