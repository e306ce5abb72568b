package service

import (
	"context"
	"strings"

	"github.com/smallbiznis/ratecard/internal/dashboard/domain"
	engagementdomain "github.com/smallbiznis/ratecard/internal/engagement/domain"
	profiledomain "github.com/smallbiznis/ratecard/internal/profile/domain"
	ratecarddomain "github.com/smallbiznis/ratecard/internal/ratecard/domain"
	socialaccountdomain "github.com/smallbiznis/ratecard/internal/socialaccount/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Log        *zap.Logger
	Accounts   socialaccountdomain.Service
	Profiles   profiledomain.Service
	RateCards  ratecarddomain.Service
	Engagement engagementdomain.Service
}

type Service struct {
	log        *zap.Logger
	accounts   socialaccountdomain.Service
	profiles   profiledomain.Service
	rateCards  ratecarddomain.Service
	engagement engagementdomain.Service
}

func NewService(p Params) domain.Service {
	return &Service{
		log:        p.Log.Named("dashboard.service"),
		accounts:   p.Accounts,
		profiles:   p.Profiles,
		rateCards:  p.RateCards,
		engagement: p.Engagement,
	}
}

// Summary aggregates connected accounts and the rate card ledger. The
// average engagement is the plain mean of each account's rate; accounts
// with more followers do not weigh more.
func (s *Service) Summary(ctx context.Context, subjectID string) (domain.Summary, error) {
	subjectID = strings.TrimSpace(subjectID)
	if subjectID == "" {
		return domain.Summary{}, domain.ErrInvalidSubject
	}

	accounts, err := s.accounts.List(ctx, subjectID)
	if err != nil {
		return domain.Summary{}, err
	}

	summary := domain.Summary{SubjectID: subjectID}
	rates := make([]float64, 0, len(accounts))
	for _, account := range accounts {
		if !account.IsConnected {
			continue
		}
		summary.ConnectedAccounts++
		summary.TotalFollowers += account.Followers
		rates = append(rates, account.EngagementRate)
	}
	summary.AvgEngagement = s.engagement.AverageEngagement(rates)

	profile, err := s.profiles.Get(ctx, subjectID)
	if err != nil {
		return domain.Summary{}, err
	}
	summary.Currency = profile.Currency

	summary.RateCardCount, err = s.rateCards.Count(ctx, subjectID)
	if err != nil {
		return domain.Summary{}, err
	}
	if summary.RateCardCount == 0 {
		return summary, nil
	}

	history, err := s.rateCards.History(ctx, subjectID)
	if err != nil {
		return domain.Summary{}, err
	}
	if len(history) > 0 {
		latest := history[0]
		summary.LatestRateCard = &latest
	}

	s.log.Debug("dashboard summary",
		zap.String("subject_id", subjectID),
		zap.Int("connected_accounts", summary.ConnectedAccounts),
		zap.Int64("rate_cards", summary.RateCardCount),
	)
	return summary, nil
}
