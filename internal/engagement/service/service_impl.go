package service

import (
	"fmt"
	"math"

	"github.com/smallbiznis/ratecard/internal/engagement/domain"
	"github.com/smallbiznis/ratecard/pkg/money"
)

type Service struct{}

func NewService() domain.Service {
	return &Service{}
}

// Aggregate reduces a batch of content counters to average views and an
// engagement rate of (likes+comments)/views*100 rounded to two decimals.
// A batch without views has a zero rate; an empty batch is an error.
func (s *Service) Aggregate(items []domain.ContentItem) (domain.Summary, error) {
	if len(items) == 0 {
		return domain.Summary{}, domain.ErrInsufficientData
	}

	var views, likes, comments int64
	for i, item := range items {
		if item.Views < 0 || item.Likes < 0 || item.Comments < 0 {
			return domain.Summary{}, fmt.Errorf("%w: item %d", domain.ErrInvalidCounter, i)
		}
		var ok bool
		if views, ok = addCounter(views, item.Views); !ok {
			return domain.Summary{}, fmt.Errorf("%w: views at item %d", domain.ErrCounterOverflow, i)
		}
		if likes, ok = addCounter(likes, item.Likes); !ok {
			return domain.Summary{}, fmt.Errorf("%w: likes at item %d", domain.ErrCounterOverflow, i)
		}
		if comments, ok = addCounter(comments, item.Comments); !ok {
			return domain.Summary{}, fmt.Errorf("%w: comments at item %d", domain.ErrCounterOverflow, i)
		}
	}
	interactions, ok := addCounter(likes, comments)
	if !ok {
		return domain.Summary{}, fmt.Errorf("%w: likes plus comments", domain.ErrCounterOverflow)
	}

	summary := domain.Summary{
		ItemCount:     len(items),
		TotalViews:    views,
		TotalLikes:    likes,
		TotalComments: comments,
		AvgViews:      float64(views) / float64(len(items)),
	}
	if views > 0 {
		summary.EngagementRate = money.Round2(float64(interactions) / float64(views) * 100)
	}

	return summary, nil
}

// addCounter adds two non-negative counters and reports false when the sum
// leaves the int64 range.
func addCounter(total, n int64) (int64, bool) {
	if n > math.MaxInt64-total {
		return total, false
	}
	return total + n, true
}

// AverageEngagement is the plain arithmetic mean of per-account rates,
// rounded to two decimals. Accounts are not weighted by follower count.
func (s *Service) AverageEngagement(rates []float64) float64 {
	if len(rates) == 0 {
		return 0
	}
	var total float64
	for _, rate := range rates {
		total += rate
	}
	return money.Round2(total / float64(len(rates)))
}
