package entities

import "time"

// OneTimeCode is the single active OTP of an account
type OneTimeCode struct {
	AccountID uint64
	Code      string
	CreatedAt time.Time
}

// ExpiresAt returns the end of the validity window
func (c *OneTimeCode) ExpiresAt(window time.Duration) time.Time {
	return c.CreatedAt.Add(window)
}
