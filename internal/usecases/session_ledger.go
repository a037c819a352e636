package usecases

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"inkpost.backend/internal/domain/entities"
	domainerrors "inkpost.backend/internal/domain/errors"
	"inkpost.backend/internal/domain/repositories"
	"inkpost.backend/pkg/logger"
	"inkpost.backend/pkg/metrics"
	"inkpost.backend/pkg/utils"
)

// RevocationCache remembers revoked sessions so the hot path can skip the database
type RevocationCache interface {
	MarkRevoked(ctx context.Context, sessionID string, ttl time.Duration) error
	IsRevoked(ctx context.Context, sessionID string) (bool, error)
}

// SessionLedger tracks outstanding refresh sessions and their revocation.
// The database is the source of truth; the cache only short-circuits "revoked".
type SessionLedger struct {
	repo    repositories.SessionRepository
	uow     repositories.UnitOfWork
	cache   RevocationCache
	metrics *metrics.Registry
	now     func() time.Time
}

// NewSessionLedger creates a ledger. cache and m may be nil.
func NewSessionLedger(
	repo repositories.SessionRepository,
	uow repositories.UnitOfWork,
	cache RevocationCache,
	m *metrics.Registry,
) *SessionLedger {
	return &SessionLedger{
		repo:    repo,
		uow:     uow,
		cache:   cache,
		metrics: m,
		now:     time.Now,
	}
}

// WithClock replaces the time source
func (l *SessionLedger) WithClock(now func() time.Time) *SessionLedger {
	l.now = now
	return l
}

// Track records a new outstanding session
func (l *SessionLedger) Track(ctx context.Context, accountID uint64, sessionID string, expiresAt time.Time) error {
	id, ok := utils.ParseSessionID(sessionID)
	if !ok {
		return domainerrors.ErrInvalidSession
	}
	return l.repo.Create(ctx, &entities.Session{
		ID:        id,
		AccountID: accountID,
		ExpiresAt: expiresAt,
		CreatedAt: l.now(),
	})
}

// Get returns a session by id
func (l *SessionLedger) Get(ctx context.Context, sessionID string) (*entities.Session, error) {
	id, ok := utils.ParseSessionID(sessionID)
	if !ok {
		return nil, domainerrors.ErrInvalidSession
	}
	s, err := l.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			return nil, domainerrors.ErrInvalidSession
		}
		return nil, err
	}
	return s, nil
}

// RevokeOne revokes a single session. Revoking an already revoked session is not an error.
func (l *SessionLedger) RevokeOne(ctx context.Context, sessionID string) error {
	s, err := l.Get(ctx, sessionID)
	if err != nil {
		return err
	}
	now := l.now()
	changed, err := l.repo.Revoke(ctx, s.ID, now)
	if err != nil {
		return err
	}
	if changed {
		l.metrics.SessionsRevoked(1)
	}
	l.remember(ctx, s, now)
	return nil
}

// RevokeAll revokes every outstanding session of the account in one
// transaction and returns how many were revoked. Sessions created while
// this runs may stay active.
func (l *SessionLedger) RevokeAll(ctx context.Context, accountID uint64) (int, error) {
	now := l.now()
	var (
		outstanding []*entities.Session
		revoked     int64
	)
	err := l.uow.Do(ctx, func(txCtx context.Context) error {
		var err error
		outstanding, err = l.repo.ListOutstanding(l.uow.WithLock(txCtx), accountID)
		if err != nil {
			return err
		}
		ids := make([]string, 0, len(outstanding))
		for _, s := range outstanding {
			ids = append(ids, s.ID)
		}
		revoked, err = l.repo.RevokeByIDs(txCtx, ids, now)
		return err
	})
	if err != nil {
		return 0, err
	}

	l.metrics.SessionsRevoked(int(revoked))
	for _, s := range outstanding {
		l.remember(ctx, s, now)
	}
	return int(revoked), nil
}

// IsRevoked reports whether the session may no longer be used. Unknown
// sessions count as revoked.
func (l *SessionLedger) IsRevoked(ctx context.Context, sessionID string) (bool, error) {
	id, ok := utils.ParseSessionID(sessionID)
	if !ok {
		return true, nil
	}

	if l.cache != nil {
		hit, err := l.cache.IsRevoked(ctx, id)
		if err != nil {
			logger.Warn(ctx, "Revocation cache lookup failed", zap.String("session_id", id), zap.Error(err))
		} else if hit {
			return true, nil
		}
	}

	s, err := l.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			return true, nil
		}
		return false, err
	}
	if s.Revoked {
		l.remember(ctx, s, l.now())
	}
	return s.Revoked, nil
}

// List returns a page of the account's sessions, newest first
func (l *SessionLedger) List(ctx context.Context, accountID uint64, page, limit int) ([]*entities.Session, utils.PaginationMeta, error) {
	p := utils.GetPaginationParams(page, limit)
	sessions, total, err := l.repo.ListByAccount(ctx, accountID, p.Limit, p.CalculateOffset())
	if err != nil {
		return nil, utils.PaginationMeta{}, err
	}
	return sessions, utils.CalculateMeta(total, p.Page, p.Limit), nil
}

func (l *SessionLedger) remember(ctx context.Context, s *entities.Session, now time.Time) {
	if l.cache == nil {
		return
	}
	if err := l.cache.MarkRevoked(ctx, s.ID, s.ExpiresAt.Sub(now)); err != nil {
		logger.Warn(ctx, "Failed to cache revoked session", zap.String("session_id", s.ID), zap.Error(err))
	}
}
