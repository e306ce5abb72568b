// Package domain holds the subject profile used to pick a pricing currency.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

type Profile struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	SubjectID string       `gorm:"type:varchar(191);not null;uniqueIndex" json:"subject_id"`
	Name      string       `gorm:"type:varchar(255)" json:"name"`
	Country   string       `gorm:"type:varchar(64)" json:"country"`
	Currency  string       `gorm:"type:varchar(8);not null" json:"currency"`
	Avatar    string       `gorm:"type:varchar(512)" json:"avatar,omitempty"`
	CreatedAt time.Time    `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time    `gorm:"not null" json:"updated_at"`
}

func (Profile) TableName() string { return "profiles" }
