// Package domain describes a subject's connected social platform accounts
// and their last synced audience metrics.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

type Account struct {
	ID             snowflake.ID      `gorm:"primaryKey" json:"id"`
	SubjectID      string            `gorm:"type:varchar(191);not null;uniqueIndex:ux_social_accounts_subject_platform,priority:1" json:"subject_id"`
	Platform       string            `gorm:"type:varchar(32);not null;uniqueIndex:ux_social_accounts_subject_platform,priority:2" json:"platform"`
	Username       string            `gorm:"type:varchar(255)" json:"username"`
	Followers      int64             `gorm:"not null" json:"followers"`
	EngagementRate float64           `gorm:"not null" json:"engagement_rate"`
	AvgViews       float64           `gorm:"not null" json:"avg_views"`
	IsConnected    bool              `gorm:"not null" json:"is_connected"`
	Metadata       datatypes.JSONMap `json:"metadata,omitempty"`
	LastSyncAt     *time.Time        `json:"last_sync_at,omitempty"`
	CreatedAt      time.Time         `gorm:"not null" json:"created_at"`
	UpdatedAt      time.Time         `gorm:"not null" json:"updated_at"`
}

func (Account) TableName() string { return "social_accounts" }
