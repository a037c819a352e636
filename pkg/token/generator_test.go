package token

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func testState() State {
	login := time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)
	return State{Purpose: PurposeActivation, ID: 42, PasswordHash: "$2a$04$hash", Email: "user@example.com", LastLogin: &login}
}

func TestGenerator_MakeThenCheck(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	g := NewGenerator("secret", 0, 0).WithClock(fixedClock(now))

	tok := g.Make(testState())
	assert.Contains(t, tok, "-")
	assert.True(t, g.Check(testState(), tok))
}

func TestGenerator_StateChangesInvalidate(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	g := NewGenerator("secret", 0, 0).WithClock(fixedClock(now))
	tok := g.Make(testState())

	changed := testState()
	changed.PasswordHash = "$2a$04$other"
	assert.False(t, g.Check(changed, tok), "password change")

	changed = testState()
	later := changed.LastLogin.Add(time.Hour)
	changed.LastLogin = &later
	assert.False(t, g.Check(changed, tok), "new login")

	changed = testState()
	changed.LastLogin = nil
	assert.False(t, g.Check(changed, tok), "login cleared")

	changed = testState()
	changed.ID = 43
	assert.False(t, g.Check(changed, tok), "other account")

	changed = testState()
	changed.Active = true
	assert.False(t, g.Check(changed, tok), "account activated")

	changed = testState()
	changed.Email = "USER@example.com"
	assert.True(t, g.Check(changed, tok), "email case is not state")
}

func TestGenerator_PurposeBindsToken(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	g := NewGenerator("secret", 0, 0).WithClock(fixedClock(now))

	activation := testState()
	reset := testState()
	reset.Purpose = PurposePasswordReset

	tok := g.Make(activation)
	assert.False(t, g.Check(reset, tok), "activation token used for reset")
	assert.False(t, g.Check(activation, g.Make(reset)), "reset token used for activation")

	unbound := testState()
	unbound.Purpose = ""
	assert.False(t, g.Check(unbound, g.Make(unbound)), "tokens without a purpose never verify")
}

func TestGenerator_OtherSecretRejects(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	tok := NewGenerator("secret", 0, 0).WithClock(fixedClock(now)).Make(testState())
	assert.False(t, NewGenerator("other", 0, 0).WithClock(fixedClock(now)).Check(testState(), tok))
}

func TestGenerator_Expiry(t *testing.T) {
	issued := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	clock := issued
	g := NewGenerator("secret", 24*time.Hour, 3).WithClock(func() time.Time { return clock })
	tok := g.Make(testState())

	clock = issued.Add(3 * 24 * time.Hour)
	assert.True(t, g.Check(testState(), tok))

	clock = issued.Add(5 * 24 * time.Hour)
	assert.False(t, g.Check(testState(), tok))

	clock = issued.Add(-48 * time.Hour)
	assert.False(t, g.Check(testState(), tok), "token from the future")

	assert.Equal(t, 4*24*time.Hour, g.Lifetime())
}

func TestGenerator_MalformedTokens(t *testing.T) {
	g := NewGenerator("secret", 0, 0)
	tok := g.Make(testState())
	bucket, sig, _ := strings.Cut(tok, "-")

	for _, bad := range []string{
		"",
		"nodash",
		"-" + sig,
		bucket + "-",
		"zz!-" + sig,
		bucket + "-" + strings.Repeat("0", len(sig)),
		tok + "0",
	} {
		assert.False(t, g.Check(testState(), bad), bad)
	}

	assert.False(t, g.Check(State{}, tok))
}
