package repositories

import (
	"context"
	"time"

	"inkpost.backend/internal/domain/entities"
)

// SessionRepository defines outstanding session operations
type SessionRepository interface {
	Create(ctx context.Context, session *entities.Session) error
	GetByID(ctx context.Context, id string) (*entities.Session, error)
	// Revoke marks one session revoked. It reports whether the row changed.
	Revoke(ctx context.Context, id string, at time.Time) (bool, error)
	// ListOutstanding returns the unrevoked sessions of an account
	ListOutstanding(ctx context.Context, accountID uint64) ([]*entities.Session, error)
	RevokeByIDs(ctx context.Context, ids []string, at time.Time) (int64, error)
	ListByAccount(ctx context.Context, accountID uint64, limit, offset int) ([]*entities.Session, int64, error)
}
