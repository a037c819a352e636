package repositories

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"inkpost.backend/internal/domain/entities"
	domainerrors "inkpost.backend/internal/domain/errors"
	"inkpost.backend/internal/infrastructure/models"
)

// SessionRepository implements outstanding session persistence
type SessionRepository struct {
	db *gorm.DB
}

// NewSessionRepository creates a new session repository
func NewSessionRepository(db *gorm.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// Create records an outstanding session
func (r *SessionRepository) Create(ctx context.Context, session *entities.Session) error {
	m := &models.OutstandingSession{
		ID:        session.ID,
		AccountID: session.AccountID,
		ExpiresAt: session.ExpiresAt.UTC(),
		Revoked:   session.Revoked,
		RevokedAt: session.RevokedAt,
		CreatedAt: session.CreatedAt.UTC(),
	}
	if err := GetDB(ctx, r.db).Create(m).Error; err != nil {
		if isUniqueViolation(err) {
			return domainerrors.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// GetByID gets a session by ID
func (r *SessionRepository) GetByID(ctx context.Context, id string) (*entities.Session, error) {
	var m models.OutstandingSession
	if err := GetDB(ctx, r.db).Where("id = ?", id).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return toSessionEntity(&m), nil
}

// Revoke marks the session revoked if it is not already
func (r *SessionRepository) Revoke(ctx context.Context, id string, at time.Time) (bool, error) {
	at = at.UTC()
	result := GetDB(ctx, r.db).Model(&models.OutstandingSession{}).
		Where("id = ? AND revoked = ?", id, false).
		Updates(map[string]interface{}{
			"revoked":    true,
			"revoked_at": &at,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// ListOutstanding returns the unrevoked sessions of an account, oldest first
func (r *SessionRepository) ListOutstanding(ctx context.Context, accountID uint64) ([]*entities.Session, error) {
	var ms []models.OutstandingSession
	err := GetDB(ctx, r.db).
		Where("account_id = ? AND revoked = ?", accountID, false).
		Order("created_at ASC").
		Find(&ms).Error
	if err != nil {
		return nil, err
	}
	sessions := make([]*entities.Session, 0, len(ms))
	for i := range ms {
		sessions = append(sessions, toSessionEntity(&ms[i]))
	}
	return sessions, nil
}

// RevokeByIDs marks the given sessions revoked and returns how many changed
func (r *SessionRepository) RevokeByIDs(ctx context.Context, ids []string, at time.Time) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	at = at.UTC()
	result := GetDB(ctx, r.db).Model(&models.OutstandingSession{}).
		Where("id IN ? AND revoked = ?", ids, false).
		Updates(map[string]interface{}{
			"revoked":    true,
			"revoked_at": &at,
		})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// ListByAccount returns a page of the account's sessions, newest first
func (r *SessionRepository) ListByAccount(ctx context.Context, accountID uint64, limit, offset int) ([]*entities.Session, int64, error) {
	var totalCount int64
	query := GetDB(ctx, r.db).Model(&models.OutstandingSession{}).Where("account_id = ?", accountID)
	if err := query.Count(&totalCount).Error; err != nil {
		return nil, 0, err
	}

	var ms []models.OutstandingSession
	q := GetDB(ctx, r.db).Where("account_id = ?", accountID).Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit).Offset(offset)
	}
	if err := q.Find(&ms).Error; err != nil {
		return nil, 0, err
	}

	sessions := make([]*entities.Session, 0, len(ms))
	for i := range ms {
		sessions = append(sessions, toSessionEntity(&ms[i]))
	}
	return sessions, totalCount, nil
}

func toSessionEntity(m *models.OutstandingSession) *entities.Session {
	return &entities.Session{
		ID:        m.ID,
		AccountID: m.AccountID,
		ExpiresAt: m.ExpiresAt.UTC(),
		Revoked:   m.Revoked,
		RevokedAt: m.RevokedAt,
		CreatedAt: m.CreatedAt.UTC(),
	}
}
