package models

import "time"

type OutstandingSession struct {
	ID        string     `gorm:"type:uuid;primaryKey"`
	AccountID uint64     `gorm:"index;not null"`
	ExpiresAt time.Time  `gorm:"not null"`
	Revoked   bool       `gorm:"not null;default:false;index"`
	RevokedAt *time.Time `gorm:"type:timestamptz"`
	CreatedAt time.Time  `gorm:"not null"`
}

func (OutstandingSession) TableName() string {
	return "outstanding_sessions"
}
