package domain

import (
	"context"
	"errors"

	ratecarddomain "github.com/smallbiznis/ratecard/internal/ratecard/domain"
)

// Summary is the per-subject overview shown on the dashboard.
type Summary struct {
	SubjectID         string                   `json:"subject_id"`
	ConnectedAccounts int                      `json:"connected_accounts"`
	TotalFollowers    int64                    `json:"total_followers"`
	AvgEngagement     float64                  `json:"avg_engagement"`
	Currency          string                   `json:"currency"`
	RateCardCount     int64                    `json:"rate_card_count"`
	LatestRateCard    *ratecarddomain.RateCard `json:"latest_rate_card,omitempty"`
}

type Service interface {
	Summary(ctx context.Context, subjectID string) (Summary, error)
}

var ErrInvalidSubject = errors.New("invalid_subject")
