package repositories

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/volatiletech/null/v8"
	"gorm.io/gorm"
	"inkpost.backend/internal/domain/entities"
	domainerrors "inkpost.backend/internal/domain/errors"
	"inkpost.backend/internal/infrastructure/models"
)

// AccountRepository implements account data operations
type AccountRepository struct {
	db *gorm.DB
}

// NewAccountRepository creates a new account repository
func NewAccountRepository(db *gorm.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

// Create inserts an account and fills in its generated ID
func (r *AccountRepository) Create(ctx context.Context, account *entities.Account) error {
	m := &models.Account{
		Email:           entities.NormalizeEmail(account.Email),
		FirstName:       account.FirstName,
		LastName:        account.LastName,
		PasswordHash:    account.PasswordHash,
		IsActive:        account.IsActive,
		IsEmailVerified: account.IsEmailVerified,
		IsStaff:         account.IsStaff,
		DateJoined:      account.DateJoined,
		LastLogin:       account.LastLogin,
		UpdatedAt:       account.DateJoined,
	}

	if err := GetDB(ctx, r.db).Create(m).Error; err != nil {
		if isUniqueViolation(err) {
			return domainerrors.ErrAlreadyExists
		}
		return err
	}
	account.ID = m.ID
	account.Email = m.Email
	return nil
}

// GetByID gets an account by ID
func (r *AccountRepository) GetByID(ctx context.Context, id uint64) (*entities.Account, error) {
	var m models.Account
	if err := GetDB(ctx, r.db).Where("id = ?", id).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return toAccountEntity(&m), nil
}

// GetByEmail gets an account by email, case-insensitively
func (r *AccountRepository) GetByEmail(ctx context.Context, email string) (*entities.Account, error) {
	var m models.Account
	if err := GetDB(ctx, r.db).Where("email = ?", entities.NormalizeEmail(email)).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return toAccountEntity(&m), nil
}

// Activate flips the account to active and verified. A second call changes nothing.
func (r *AccountRepository) Activate(ctx context.Context, id uint64) (bool, error) {
	result := GetDB(ctx, r.db).Model(&models.Account{}).
		Where("id = ? AND (is_active = ? OR is_email_verified = ?)", id, false, false).
		Updates(map[string]interface{}{
			"is_active":         true,
			"is_email_verified": true,
			"updated_at":        time.Now().UTC(),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// UpdatePassword replaces the password hash
func (r *AccountRepository) UpdatePassword(ctx context.Context, id uint64, passwordHash string) error {
	result := GetDB(ctx, r.db).Model(&models.Account{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"password_hash": passwordHash,
			"updated_at":    time.Now().UTC(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

// UpdateLastLogin records a successful login
func (r *AccountRepository) UpdateLastLogin(ctx context.Context, id uint64, at time.Time) error {
	result := GetDB(ctx, r.db).Model(&models.Account{}).
		Where("id = ?", id).
		Update("last_login", null.TimeFrom(at.UTC()))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

func toAccountEntity(m *models.Account) *entities.Account {
	lastLogin := m.LastLogin
	if lastLogin.Valid {
		lastLogin.Time = lastLogin.Time.UTC()
	}
	return &entities.Account{
		ID:              m.ID,
		Email:           m.Email,
		FirstName:       m.FirstName,
		LastName:        m.LastName,
		PasswordHash:    m.PasswordHash,
		IsActive:        m.IsActive,
		IsEmailVerified: m.IsEmailVerified,
		IsStaff:         m.IsStaff,
		DateJoined:      m.DateJoined.UTC(),
		LastLogin:       lastLogin,
		UpdatedAt:       m.UpdatedAt,
	}
}

// isUniqueViolation matches the postgres and sqlite duplicate key messages
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "unique constraint")
}

// List returns a page of accounts ordered by id
func (r *AccountRepository) List(ctx context.Context, limit, offset int) ([]*entities.Account, int64, error) {
	var totalCount int64
	if err := GetDB(ctx, r.db).Model(&models.Account{}).Count(&totalCount).Error; err != nil {
		return nil, 0, err
	}

	var ms []models.Account
	q := GetDB(ctx, r.db).Order("id ASC")
	if limit > 0 {
		q = q.Limit(limit).Offset(offset)
	}
	if err := q.Find(&ms).Error; err != nil {
		return nil, 0, err
	}

	accounts := make([]*entities.Account, 0, len(ms))
	for i := range ms {
		accounts = append(accounts, toAccountEntity(&ms[i]))
	}
	return accounts, totalCount, nil
}
