package models

import "time"

// OneTimeCode has account_id as its key so an upsert replaces the previous code.
type OneTimeCode struct {
	AccountID uint64    `gorm:"primaryKey;autoIncrement:false"`
	Code      string    `gorm:"type:varchar(6);not null"`
	CreatedAt time.Time `gorm:"not null"`
}

func (OneTimeCode) TableName() string {
	return "one_time_codes"
}
