package repository

import (
	"context"

	"github.com/smallbiznis/ratecard/pkg/db/option"
	"gorm.io/gorm"
)

// Repository is a thin gorm store for one model type. Struct filters match
// on non-zero fields only.
type Repository[T any] interface {
	WithTrx(tx *gorm.DB) Repository[T]
	Find(ctx context.Context, query *T, opts ...option.QueryOption) ([]*T, error)
	FindOne(ctx context.Context, query *T, opts ...option.QueryOption) (*T, error)
	Create(ctx context.Context, resource *T) error
	Save(ctx context.Context, resource *T) error
	Delete(ctx context.Context, query *T) (int64, error)
	Count(ctx context.Context, query *T) (int64, error)
}
