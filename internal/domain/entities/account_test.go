package entities

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "alice@example.com", NormalizeEmail("  Alice@Example.COM "))
}

func TestAccountHelpers(t *testing.T) {
	a := &Account{FirstName: "Ada", IsActive: true}
	assert.Equal(t, "Ada", a.FullName())
	assert.False(t, a.Activated())

	a.LastName = "Lovelace"
	a.IsEmailVerified = true
	assert.Equal(t, "Ada Lovelace", a.FullName())
	assert.True(t, a.Activated())
}

func TestSessionActive(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	s := &Session{ExpiresAt: now.Add(time.Hour)}
	assert.True(t, s.Active(now))
	assert.False(t, s.Active(now.Add(time.Hour)))

	s.Revoked = true
	assert.False(t, s.Active(now))
}

func TestOneTimeCodeExpiresAt(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	c := &OneTimeCode{CreatedAt: now}
	assert.Equal(t, now.Add(5*time.Minute), c.ExpiresAt(5*time.Minute))
}
