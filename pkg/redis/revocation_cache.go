package redis

import (
	"context"
	"time"
)

const revokedKeyPrefix = "revoked:"

// MinRevocationTTL is used when a revoked session has no remaining lifetime
const MinRevocationTTL = time.Minute

var (
	setRevokedValue    = Set
	existsRevokedValue = Exists
)

// RevocationCache keeps revoked session ids in Redis until the session would
// have expired anyway. It only ever answers "revoked"; a miss means "ask the
// database".
type RevocationCache struct{}

// NewRevocationCache creates a revocation cache over the package client
func NewRevocationCache() *RevocationCache {
	return &RevocationCache{}
}

// MarkRevoked records sessionID as revoked for ttl
func (c *RevocationCache) MarkRevoked(ctx context.Context, sessionID string, ttl time.Duration) error {
	if ttl < MinRevocationTTL {
		ttl = MinRevocationTTL
	}
	return setRevokedValue(ctx, revokedKeyPrefix+sessionID, "1", ttl)
}

// IsRevoked reports whether sessionID was marked revoked
func (c *RevocationCache) IsRevoked(ctx context.Context, sessionID string) (bool, error) {
	return existsRevokedValue(ctx, revokedKeyPrefix+sessionID)
}
