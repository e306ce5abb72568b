package domain

import (
	"context"

	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, card *RateCard) error
	// ListBySubject returns rows in insertion order.
	ListBySubject(ctx context.Context, db *gorm.DB, subjectID string) ([]*RateCard, error)
	CountBySubject(ctx context.Context, db *gorm.DB, subjectID string) (int64, error)
}
