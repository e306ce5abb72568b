package domain

import (
	"context"
	"errors"

	ratingdomain "github.com/smallbiznis/ratecard/internal/rating/domain"
)

type GenerateRequest struct {
	SubjectID        string
	Platform         string
	CampaignType     string
	CustomFollowers  *int64
	CustomEngagement *float64
}

type GenerateResult struct {
	Rate           float64                    `json:"rate"`
	Currency       string                     `json:"currency"`
	Platform       string                     `json:"platform"`
	CampaignType   string                     `json:"campaign_type"`
	Followers      int64                      `json:"followers"`
	EngagementRate float64                    `json:"engagement_rate"`
	MetricsSource  ratingdomain.MetricsSource `json:"metrics_source"`
	Breakdown      ratingdomain.Breakdown     `json:"breakdown"`
	RateCard       RateCard                   `json:"rate_card"`
}

type Service interface {
	// Append validates and stores card. ID is always assigned; CreatedAt
	// only when the caller left it zero.
	Append(ctx context.Context, card RateCard) (RateCard, error)
	// History returns every card of the subject, newest first. Cards with
	// equal CreatedAt keep insertion order.
	History(ctx context.Context, subjectID string) ([]RateCard, error)
	Count(ctx context.Context, subjectID string) (int64, error)
	Generate(ctx context.Context, req GenerateRequest) (GenerateResult, error)
}

var (
	ErrInvalidSubject      = errors.New("invalid_subject")
	ErrInvalidPlatform     = errors.New("invalid_platform")
	ErrInvalidCampaignType = errors.New("invalid_campaign_type")
	ErrInvalidCurrency     = errors.New("invalid_currency")
	ErrInvalidBaseRate     = errors.New("invalid_base_rate")
)
