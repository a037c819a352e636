package repositories

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"inkpost.backend/internal/domain/entities"
	domainerrors "inkpost.backend/internal/domain/errors"
	"inkpost.backend/internal/infrastructure/models"
)

// OneTimeCodeRepository implements OTP persistence
type OneTimeCodeRepository struct {
	db *gorm.DB
}

// NewOneTimeCodeRepository creates a new OTP repository
func NewOneTimeCodeRepository(db *gorm.DB) *OneTimeCodeRepository {
	return &OneTimeCodeRepository{db: db}
}

// Upsert writes the code with INSERT ... ON CONFLICT (account_id) DO UPDATE
func (r *OneTimeCodeRepository) Upsert(ctx context.Context, accountID uint64, code string, issuedAt time.Time) error {
	m := &models.OneTimeCode{
		AccountID: accountID,
		Code:      code,
		CreatedAt: issuedAt.UTC(),
	}
	return GetDB(ctx, r.db).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "account_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"code", "created_at"}),
	}).Create(m).Error
}

// Get returns the account's code
func (r *OneTimeCodeRepository) Get(ctx context.Context, accountID uint64) (*entities.OneTimeCode, error) {
	var m models.OneTimeCode
	if err := GetDB(ctx, r.db).Where("account_id = ?", accountID).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrOTPNotFound
		}
		return nil, err
	}
	return &entities.OneTimeCode{
		AccountID: m.AccountID,
		Code:      m.Code,
		CreatedAt: m.CreatedAt.UTC(),
	}, nil
}

// Consume deletes the code if it still matches
func (r *OneTimeCodeRepository) Consume(ctx context.Context, accountID uint64, code string) (bool, error) {
	result := GetDB(ctx, r.db).
		Where("account_id = ? AND code = ?", accountID, code).
		Delete(&models.OneTimeCode{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
