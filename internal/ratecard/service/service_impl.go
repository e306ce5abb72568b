package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/ratecard/internal/clock"
	currencydomain "github.com/smallbiznis/ratecard/internal/currency/domain"
	"github.com/smallbiznis/ratecard/internal/observability/metrics"
	"github.com/smallbiznis/ratecard/internal/observability/tracing"
	profiledomain "github.com/smallbiznis/ratecard/internal/profile/domain"
	"github.com/smallbiznis/ratecard/internal/ratecard/domain"
	ratingdomain "github.com/smallbiznis/ratecard/internal/rating/domain"
	socialaccountdomain "github.com/smallbiznis/ratecard/internal/socialaccount/domain"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB            *gorm.DB
	Log           *zap.Logger
	GenID         *snowflake.Node
	Clock         clock.Clock
	Repo          domain.Repository
	Engine        ratingdomain.Engine
	Currency      currencydomain.Service
	Profiles      profiledomain.Service
	Accounts      socialaccountdomain.Service
	Metrics       *metrics.Metrics       `optional:"true"`
	EngineMetrics *metrics.EngineMetrics `optional:"true"`
}

type Service struct {
	db            *gorm.DB
	log           *zap.Logger
	genID         *snowflake.Node
	clock         clock.Clock
	repo          domain.Repository
	engine        ratingdomain.Engine
	currency      currencydomain.Service
	profiles      profiledomain.Service
	accounts      socialaccountdomain.Service
	metrics       *metrics.Metrics
	engineMetrics *metrics.EngineMetrics
}

func New(p Params) domain.Service {
	return &Service{
		db:            p.DB,
		log:           p.Log.Named("ratecard.service"),
		genID:         p.GenID,
		clock:         p.Clock,
		repo:          p.Repo,
		engine:        p.Engine,
		currency:      p.Currency,
		profiles:      p.Profiles,
		accounts:      p.Accounts,
		metrics:       p.Metrics,
		engineMetrics: p.EngineMetrics,
	}
}

func (s *Service) Append(ctx context.Context, card domain.RateCard) (domain.RateCard, error) {
	card.SubjectID = strings.TrimSpace(card.SubjectID)
	if card.SubjectID == "" {
		return domain.RateCard{}, domain.ErrInvalidSubject
	}
	card.Platform = strings.ToLower(strings.TrimSpace(card.Platform))
	if card.Platform == "" {
		return domain.RateCard{}, domain.ErrInvalidPlatform
	}
	card.CampaignType = strings.ToLower(strings.TrimSpace(card.CampaignType))
	if card.CampaignType == "" {
		return domain.RateCard{}, domain.ErrInvalidCampaignType
	}
	card.Currency = currencydomain.NormalizeCode(card.Currency)
	if card.Currency == "" {
		return domain.RateCard{}, domain.ErrInvalidCurrency
	}
	if !s.currency.Supported(card.Currency) {
		return domain.RateCard{}, fmt.Errorf("%w: %q", currencydomain.ErrUnsupportedCurrency, card.Currency)
	}
	if card.BaseRate < 0 || math.IsNaN(card.BaseRate) || math.IsInf(card.BaseRate, 0) {
		return domain.RateCard{}, domain.ErrInvalidBaseRate
	}

	card.ID = s.genID.Generate()
	if card.CreatedAt.IsZero() {
		card.CreatedAt = s.clock.Now()
	}
	card.IsActive = true

	if err := s.repo.Insert(ctx, s.db, &card); err != nil {
		return domain.RateCard{}, err
	}
	return card, nil
}

func (s *Service) History(ctx context.Context, subjectID string) ([]domain.RateCard, error) {
	subjectID = strings.TrimSpace(subjectID)
	if subjectID == "" {
		return nil, domain.ErrInvalidSubject
	}

	items, err := s.repo.ListBySubject(ctx, s.db, subjectID)
	if err != nil {
		return nil, err
	}

	cards := make([]domain.RateCard, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		cards = append(cards, *item)
	}
	sortNewestFirst(cards)

	s.engineMetrics.ObserveHistoryLength(len(cards))
	return cards, nil
}

func (s *Service) Count(ctx context.Context, subjectID string) (int64, error) {
	subjectID = strings.TrimSpace(subjectID)
	if subjectID == "" {
		return 0, domain.ErrInvalidSubject
	}
	return s.repo.CountBySubject(ctx, s.db, subjectID)
}

// Generate prices a rate card for the subject and appends it to the ledger.
// The price uses the profile currency and either the caller's override or
// the connected account's last synced metrics.
func (s *Service) Generate(ctx context.Context, req domain.GenerateRequest) (result domain.GenerateResult, err error) {
	ctx, span := tracing.StartSpan(ctx, "ratecard.generate",
		attribute.String("ratecard.platform", req.Platform),
		attribute.String("ratecard.campaign_type", req.CampaignType),
	)
	defer func() { tracing.EndSpan(span, err) }()

	subjectID := strings.TrimSpace(req.SubjectID)
	if subjectID == "" {
		return domain.GenerateResult{}, domain.ErrInvalidSubject
	}
	platform := string(ratingdomain.NormalizePlatform(req.Platform))
	if platform == "" {
		return domain.GenerateResult{}, domain.ErrInvalidPlatform
	}
	campaignType := strings.ToLower(strings.TrimSpace(req.CampaignType))
	if campaignType == "" {
		campaignType = ratingdomain.CampaignDefault
	}

	profile, err := s.profiles.Get(ctx, subjectID)
	if err != nil {
		return domain.GenerateResult{}, err
	}

	override := &ratingdomain.MetricsOverride{
		Followers:      req.CustomFollowers,
		EngagementRate: req.CustomEngagement,
	}
	var connected *ratingdomain.ConnectedMetrics
	if !override.Complete() {
		connected, err = s.connectedMetrics(ctx, subjectID, platform)
		if err != nil {
			return domain.GenerateResult{}, err
		}
	}

	resolved, err := ratingdomain.ResolveMetrics(override, connected)
	if err != nil {
		s.engineMetrics.IncError(metrics.EngineErrorMissingMetrics)
		return domain.GenerateResult{}, err
	}

	quote, err := s.engine.Estimate(ratingdomain.EstimateRequest{
		Platform:       platform,
		Followers:      resolved.Followers,
		EngagementRate: resolved.EngagementRate,
		CampaignType:   campaignType,
		Currency:       profile.Currency,
	})
	if err != nil {
		return domain.GenerateResult{}, err
	}

	breakdown, err := s.engine.Breakdown(platform, resolved.Followers, campaignType, profile.Currency)
	if err != nil {
		return domain.GenerateResult{}, err
	}

	card, err := s.Append(ctx, domain.RateCard{
		SubjectID:    subjectID,
		Platform:     platform,
		CampaignType: campaignType,
		BaseRate:     quote.Price,
		Currency:     quote.Currency,
	})
	if err != nil {
		return domain.GenerateResult{}, err
	}

	s.metrics.RecordRateCardGenerated(ctx, platform, string(resolved.Source))
	s.log.Info("rate card generated",
		zap.String("subject_id", subjectID),
		zap.String("platform", platform),
		zap.String("campaign_type", campaignType),
		zap.String("currency", quote.Currency),
		zap.Float64("rate", quote.Price),
		zap.String("metrics_source", string(resolved.Source)),
		zap.Stringer("rate_card_id", card.ID),
	)

	return domain.GenerateResult{
		Rate:           quote.Price,
		Currency:       quote.Currency,
		Platform:       platform,
		CampaignType:   campaignType,
		Followers:      resolved.Followers,
		EngagementRate: resolved.EngagementRate,
		MetricsSource:  resolved.Source,
		Breakdown:      breakdown,
		RateCard:       card,
	}, nil
}

// connectedMetrics returns nil when the platform has no connected account.
func (s *Service) connectedMetrics(ctx context.Context, subjectID, platform string) (*ratingdomain.ConnectedMetrics, error) {
	account, err := s.accounts.Get(ctx, subjectID, platform)
	if err != nil {
		if errors.Is(err, socialaccountdomain.ErrNotFound) || errors.Is(err, socialaccountdomain.ErrInvalidPlatform) {
			return nil, nil
		}
		return nil, err
	}
	if !account.IsConnected {
		return nil, nil
	}
	return &ratingdomain.ConnectedMetrics{
		Platform:       account.Platform,
		Followers:      account.Followers,
		EngagementRate: account.EngagementRate,
	}, nil
}

// sortNewestFirst orders by CreatedAt descending. The sort is stable, so
// equal timestamps keep the order they were read in.
func sortNewestFirst(cards []domain.RateCard) {
	sort.SliceStable(cards, func(i, j int) bool {
		return cards[i].CreatedAt.After(cards[j].CreatedAt)
	})
}
