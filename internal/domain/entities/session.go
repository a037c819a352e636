package entities

import "time"

// Session is an outstanding refresh session. ID equals the refresh token jti.
type Session struct {
	ID        string     `json:"id"`
	AccountID uint64     `json:"-"`
	ExpiresAt time.Time  `json:"expiresAt"`
	Revoked   bool       `json:"revoked"`
	RevokedAt *time.Time `json:"revokedAt,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
}

// Active reports whether the session can still authorize a refresh at now
func (s *Session) Active(now time.Time) bool {
	return !s.Revoked && now.Before(s.ExpiresAt)
}
