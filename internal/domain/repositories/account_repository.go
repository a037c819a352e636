package repositories

import (
	"context"
	"time"

	"inkpost.backend/internal/domain/entities"
)

// AccountRepository defines account data operations
type AccountRepository interface {
	Create(ctx context.Context, account *entities.Account) error
	GetByID(ctx context.Context, id uint64) (*entities.Account, error)
	GetByEmail(ctx context.Context, email string) (*entities.Account, error)
	// Activate sets is_active and is_email_verified. It reports whether a row changed.
	Activate(ctx context.Context, id uint64) (bool, error)
	UpdatePassword(ctx context.Context, id uint64, passwordHash string) error
	UpdateLastLogin(ctx context.Context, id uint64, at time.Time) error
	List(ctx context.Context, limit, offset int) ([]*entities.Account, int64, error)
}
