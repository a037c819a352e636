package models

import (
	"time"

	"github.com/volatiletech/null/v8"
)

type Account struct {
	ID              uint64    `gorm:"primaryKey;autoIncrement"`
	Email           string    `gorm:"type:varchar(254);uniqueIndex;not null"`
	FirstName       string    `gorm:"type:varchar(150)"`
	LastName        string    `gorm:"type:varchar(150)"`
	PasswordHash    string    `gorm:"type:varchar(255);not null"`
	IsActive        bool      `gorm:"not null;default:false"`
	IsEmailVerified bool      `gorm:"not null;default:false"`
	IsStaff         bool      `gorm:"not null;default:false"`
	DateJoined      time.Time `gorm:"not null"`
	LastLogin       null.Time `gorm:"type:timestamptz"`
	UpdatedAt       time.Time
}

func (Account) TableName() string {
	return "accounts"
}
