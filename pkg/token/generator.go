// Package token implements the stateless account tokens used by activation and
// password-reset links.
//
// A token is "<bucket>-<signature>" where bucket is the number of whole Bucket
// periods since the epoch, base36 encoded, and signature is an HMAC-SHA256 over
// the account state and the bucket. Nothing is stored: a token stops verifying
// once the account state it was bound to changes or the bucket ages out.
// Tokens are bound to a purpose, so a link made for one flow never verifies
// in another.
package token

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"
	"time"
)

const (
	// DefaultBucket is the default time bucket granularity
	DefaultBucket = 24 * time.Hour
	// DefaultTimeoutBuckets is how many buckets a token stays valid for
	DefaultTimeoutBuckets = 3

	keySalt = "inkpost.accounts.token"
)

// Token purposes
const (
	PurposeActivation    = "activation"
	PurposePasswordReset = "password_reset"
)

var epoch = time.Date(2001, 1, 1, 0, 0, 0, 0, time.UTC)

// State is the part of an account a token is bound to.
type State struct {
	Purpose      string
	ID           uint64
	PasswordHash string
	Email        string
	LastLogin    *time.Time
	Active       bool
}

// Generator makes and checks tokens.
type Generator struct {
	secret         []byte
	bucket         time.Duration
	timeoutBuckets int64
	now            func() time.Time
}

// NewGenerator creates a token generator. Non-positive bucket or timeout values
// fall back to the defaults.
func NewGenerator(secret string, bucket time.Duration, timeoutBuckets int) *Generator {
	if bucket <= 0 {
		bucket = DefaultBucket
	}
	if timeoutBuckets <= 0 {
		timeoutBuckets = DefaultTimeoutBuckets
	}
	return &Generator{
		secret:         []byte(secret),
		bucket:         bucket,
		timeoutBuckets: int64(timeoutBuckets),
		now:            time.Now,
	}
}

// WithClock replaces the generator's time source.
func (g *Generator) WithClock(now func() time.Time) *Generator {
	if now != nil {
		g.now = now
	}
	return g
}

// Lifetime is the longest a token can stay valid.
func (g *Generator) Lifetime() time.Duration {
	return time.Duration(g.timeoutBuckets+1) * g.bucket
}

// Make returns a token for the account state at the current bucket.
func (g *Generator) Make(s State) string {
	return g.makeAt(s, g.bucketOf(g.now()))
}

// Check reports whether token was made for s and has not aged out.
func (g *Generator) Check(s State, token string) bool {
	if s.ID == 0 || s.Purpose == "" || token == "" {
		return false
	}
	bucketPart, sigPart, ok := strings.Cut(token, "-")
	if !ok || bucketPart == "" || sigPart == "" {
		return false
	}
	bucket, err := strconv.ParseInt(bucketPart, 36, 64)
	if err != nil || bucket < 0 {
		return false
	}

	expected := g.makeAt(s, bucket)
	if !hmac.Equal([]byte(expected), []byte(token)) {
		return false
	}

	age := g.bucketOf(g.now()) - bucket
	return age >= 0 && age <= g.timeoutBuckets
}

func (g *Generator) bucketOf(t time.Time) int64 {
	return int64(t.Sub(epoch) / g.bucket)
}

func (g *Generator) makeAt(s State, bucket int64) string {
	mac := hmac.New(sha256.New, append([]byte(keySalt), g.secret...))
	mac.Write([]byte(hashValue(s, bucket)))
	sum := hex.EncodeToString(mac.Sum(nil))
	return strconv.FormatInt(bucket, 36) + "-" + sum[:32]
}

func hashValue(s State, bucket int64) string {
	login := ""
	if s.LastLogin != nil {
		login = s.LastLogin.UTC().Truncate(time.Second).Format(time.RFC3339)
	}
	var b strings.Builder
	b.WriteString(s.Purpose)
	b.WriteByte('|')
	b.WriteString(strconv.FormatUint(s.ID, 10))
	b.WriteByte('|')
	b.WriteString(s.PasswordHash)
	b.WriteByte('|')
	b.WriteString(login)
	b.WriteByte('|')
	b.WriteString(strings.ToLower(s.Email))
	b.WriteByte('|')
	b.WriteString(strconv.FormatBool(s.Active))
	b.WriteByte('|')
	b.WriteString(strconv.FormatInt(bucket, 10))
	return b.String()
}
