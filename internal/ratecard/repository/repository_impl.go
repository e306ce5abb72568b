package repository

import (
	"context"

	"github.com/smallbiznis/ratecard/internal/ratecard/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, card *domain.RateCard) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO rate_cards (id, subject_id, platform, campaign_type, base_rate, currency, is_active, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		card.ID,
		card.SubjectID,
		card.Platform,
		card.CampaignType,
		card.BaseRate,
		card.Currency,
		card.IsActive,
		card.CreatedAt,
	).Error
}

// ListBySubject orders by id. Ids come from a snowflake node and grow with
// every insert.
func (r *repo) ListBySubject(ctx context.Context, db *gorm.DB, subjectID string) ([]*domain.RateCard, error) {
	var cards []*domain.RateCard
	err := db.WithContext(ctx).Raw(
		`SELECT id, subject_id, platform, campaign_type, base_rate, currency, is_active, created_at
		 FROM rate_cards WHERE subject_id = ? ORDER BY id ASC`,
		subjectID,
	).Scan(&cards).Error
	if err != nil {
		return nil, err
	}
	return cards, nil
}

func (r *repo) CountBySubject(ctx context.Context, db *gorm.DB, subjectID string) (int64, error) {
	var count int64
	err := db.WithContext(ctx).
		Model(&domain.RateCard{}).
		Where("subject_id = ?", subjectID).
		Count(&count).Error
	return count, err
}
