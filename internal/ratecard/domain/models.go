// Package domain holds the append-only ledger of generated rate cards.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// RateCard is one priced estimate. Rows are never updated; CreatedAt is the
// only ordering key exposed to readers.
type RateCard struct {
	ID           snowflake.ID `gorm:"primaryKey" json:"id"`
	SubjectID    string       `gorm:"type:varchar(191);not null;index:idx_rate_cards_subject" json:"subject_id"`
	Platform     string       `gorm:"type:varchar(32);not null" json:"platform"`
	CampaignType string       `gorm:"type:varchar(32);not null" json:"campaign_type"`
	BaseRate     float64      `gorm:"not null" json:"base_rate"`
	Currency     string       `gorm:"type:varchar(8);not null" json:"currency"`
	IsActive     bool         `gorm:"not null;default:true" json:"is_active"`
	CreatedAt    time.Time    `gorm:"not null" json:"created_at"`
}

func (RateCard) TableName() string { return "rate_cards" }
