package repositories

import (
	"context"
	"time"

	"inkpost.backend/internal/domain/entities"
)

// OneTimeCodeRepository stores at most one code per account
type OneTimeCodeRepository interface {
	// Upsert replaces the account's code and issuance time in one statement
	Upsert(ctx context.Context, accountID uint64, code string, issuedAt time.Time) error
	Get(ctx context.Context, accountID uint64) (*entities.OneTimeCode, error)
	// Consume deletes the code only if it still equals code. It reports whether a row was deleted.
	Consume(ctx context.Context, accountID uint64, code string) (bool, error)
}
