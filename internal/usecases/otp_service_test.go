package usecases_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"inkpost.backend/internal/domain/entities"
	domainerrors "inkpost.backend/internal/domain/errors"
	"inkpost.backend/internal/usecases"
)

var otpEpoch = time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)

func fixedClock(t *time.Time) func() time.Time {
	return func() time.Time { return *t }
}

func TestIsOTPValid(t *testing.T) {
	window := 300 * time.Second
	assert.True(t, usecases.IsOTPValid(otpEpoch, otpEpoch, window))
	assert.True(t, usecases.IsOTPValid(otpEpoch, otpEpoch.Add(299*time.Second), window))
	assert.False(t, usecases.IsOTPValid(otpEpoch, otpEpoch.Add(300*time.Second), window))
	assert.False(t, usecases.IsOTPValid(otpEpoch, otpEpoch.Add(time.Hour), window))
}

func TestNewOTPService_WindowFallback(t *testing.T) {
	repo := new(MockOneTimeCodeRepository)
	assert.Equal(t, usecases.DefaultOTPWindow, usecases.NewOTPService(repo, 0).Window())
	assert.Equal(t, usecases.DefaultOTPWindow, usecases.NewOTPService(repo, -5).Window())
	assert.Equal(t, 120*time.Second, usecases.NewOTPService(repo, 120).Window())
}

func TestOTPService_Issue(t *testing.T) {
	repo := new(MockOneTimeCodeRepository)
	now := otpEpoch
	svc := usecases.NewOTPService(repo, 300).WithClock(fixedClock(&now))

	repo.On("Upsert", mock.Anything, uint64(7), mock.MatchedBy(func(c string) bool { return len(c) == 6 }), otpEpoch).Return(nil).Once()
	code, err := svc.Issue(context.Background(), 7)
	require.NoError(t, err)
	assert.Len(t, code, 6)

	repo.On("Upsert", mock.Anything, uint64(8), mock.Anything, otpEpoch).Return(errors.New("db down")).Once()
	_, err = svc.Issue(context.Background(), 8)
	assert.Error(t, err)
	repo.AssertExpectations(t)
}

func TestOTPService_Verify(t *testing.T) {
	ctx := context.Background()
	now := otpEpoch
	stored := &entities.OneTimeCode{AccountID: 1, Code: "482913", CreatedAt: otpEpoch}

	t.Run("not found", func(t *testing.T) {
		repo := new(MockOneTimeCodeRepository)
		repo.On("Get", ctx, uint64(1)).Return(nil, domainerrors.ErrOTPNotFound).Once()
		svc := usecases.NewOTPService(repo, 300).WithClock(fixedClock(&now))
		assert.ErrorIs(t, svc.Verify(ctx, 1, "482913"), domainerrors.ErrOTPNotFound)
	})

	t.Run("expired at the window edge", func(t *testing.T) {
		repo := new(MockOneTimeCodeRepository)
		repo.On("Get", ctx, uint64(1)).Return(stored, nil).Once()
		edge := otpEpoch.Add(300 * time.Second)
		svc := usecases.NewOTPService(repo, 300).WithClock(fixedClock(&edge))
		assert.ErrorIs(t, svc.Verify(ctx, 1, "482913"), domainerrors.ErrOTPExpired)
		repo.AssertNotCalled(t, "Consume", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("mismatch", func(t *testing.T) {
		repo := new(MockOneTimeCodeRepository)
		repo.On("Get", ctx, uint64(1)).Return(stored, nil).Once()
		svc := usecases.NewOTPService(repo, 300).WithClock(fixedClock(&now))
		assert.ErrorIs(t, svc.Verify(ctx, 1, "000000"), domainerrors.ErrOTPMismatch)
	})

	t.Run("success consumes", func(t *testing.T) {
		repo := new(MockOneTimeCodeRepository)
		repo.On("Get", ctx, uint64(1)).Return(stored, nil).Once()
		repo.On("Consume", ctx, uint64(1), "482913").Return(true, nil).Once()
		svc := usecases.NewOTPService(repo, 300).WithClock(fixedClock(&now))
		assert.NoError(t, svc.Verify(ctx, 1, "482913"))
		repo.AssertExpectations(t)
	})

	t.Run("lost consume race", func(t *testing.T) {
		repo := new(MockOneTimeCodeRepository)
		repo.On("Get", ctx, uint64(1)).Return(stored, nil).Once()
		repo.On("Consume", ctx, uint64(1), "482913").Return(false, nil).Once()
		svc := usecases.NewOTPService(repo, 300).WithClock(fixedClock(&now))
		assert.ErrorIs(t, svc.Verify(ctx, 1, "482913"), domainerrors.ErrOTPNotFound)
	})

	t.Run("consume error", func(t *testing.T) {
		repo := new(MockOneTimeCodeRepository)
		repo.On("Get", ctx, uint64(1)).Return(stored, nil).Once()
		repo.On("Consume", ctx, uint64(1), "482913").Return(false, errors.New("db down")).Once()
		svc := usecases.NewOTPService(repo, 300).WithClock(fixedClock(&now))
		assert.EqualError(t, svc.Verify(ctx, 1, "482913"), "db down")
	})
}

func TestOTPService_Resend(t *testing.T) {
	ctx := context.Background()
	stored := &entities.OneTimeCode{AccountID: 1, Code: "482913", CreatedAt: otpEpoch}

	t.Run("outstanding code blocks", func(t *testing.T) {
		repo := new(MockOneTimeCodeRepository)
		repo.On("Get", ctx, uint64(1)).Return(stored, nil).Once()
		now := otpEpoch.Add(100 * time.Second)
		svc := usecases.NewOTPService(repo, 300).WithClock(fixedClock(&now))

		_, err := svc.Resend(ctx, 1)
		assert.ErrorIs(t, err, domainerrors.ErrOTPOutstanding)
		repo.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("expired code is replaced", func(t *testing.T) {
		repo := new(MockOneTimeCodeRepository)
		now := otpEpoch.Add(301 * time.Second)
		repo.On("Get", ctx, uint64(1)).Return(stored, nil).Once()
		repo.On("Upsert", ctx, uint64(1), mock.Anything, now).Return(nil).Once()
		svc := usecases.NewOTPService(repo, 300).WithClock(fixedClock(&now))

		code, err := svc.Resend(ctx, 1)
		require.NoError(t, err)
		assert.Len(t, code, 6)
		repo.AssertExpectations(t)
	})

	t.Run("no code issues one", func(t *testing.T) {
		repo := new(MockOneTimeCodeRepository)
		now := otpEpoch
		repo.On("Get", ctx, uint64(1)).Return(nil, domainerrors.ErrOTPNotFound).Once()
		repo.On("Upsert", ctx, uint64(1), mock.Anything, now).Return(nil).Once()
		svc := usecases.NewOTPService(repo, 300).WithClock(fixedClock(&now))

		_, err := svc.Resend(ctx, 1)
		require.NoError(t, err)
	})

	t.Run("lookup error", func(t *testing.T) {
		repo := new(MockOneTimeCodeRepository)
		repo.On("Get", ctx, uint64(1)).Return(nil, errors.New("db down")).Once()
		svc := usecases.NewOTPService(repo, 300)

		_, err := svc.Resend(ctx, 1)
		assert.EqualError(t, err, "db down")
	})
}
