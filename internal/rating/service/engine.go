package service

import (
	"fmt"
	"math"

	"github.com/smallbiznis/ratecard/internal/config"
	currencydomain "github.com/smallbiznis/ratecard/internal/currency/domain"
	"github.com/smallbiznis/ratecard/internal/observability/metrics"
	ratingdomain "github.com/smallbiznis/ratecard/internal/rating/domain"
	"github.com/smallbiznis/ratecard/pkg/money"
	"go.uber.org/fx"
)

// Engine prices sponsored content. It holds only immutable tables and is
// safe for concurrent use.
type Engine struct {
	platforms ratingdomain.FactorTable
	campaigns ratingdomain.FactorTable
	currency  currencydomain.Service
	metrics   *metrics.EngineMetrics
}

type EngineParam struct {
	fx.In

	Pricing  config.PricingConfig
	Currency currencydomain.Service
	Metrics  *metrics.EngineMetrics `optional:"true"`
}

var engineErrorReasons = map[error]string{
	ratingdomain.ErrInvalidFollowers:      metrics.EngineErrorInvalidInput,
	ratingdomain.ErrInvalidEngagement:     metrics.EngineErrorInvalidInput,
	ratingdomain.ErrRateOutOfRange:        metrics.EngineErrorOutOfRange,
	currencydomain.ErrUnsupportedCurrency: metrics.EngineErrorUnsupportedCurrency,
}

func NewEngine(p EngineParam) ratingdomain.Engine {
	return New(p.Pricing, p.Currency, p.Metrics)
}

func New(pricing config.PricingConfig, currency currencydomain.Service, m *metrics.EngineMetrics) *Engine {
	return &Engine{
		platforms: ratingdomain.NewFactorTable(pricing.PlatformFactors, pricing.DefaultPlatformFactor),
		campaigns: ratingdomain.NewFactorTable(pricing.CampaignMultipliers, pricing.DefaultCampaignMultiplier),
		currency:  currency,
		metrics:   m,
	}
}

// Estimate computes
//
//	followers/1000 * platformFactor * max(1, engagement/2) * campaign * currency
//
// rounded half-up to two decimals. Unknown platforms and campaign types use
// the table fallbacks; unknown currencies fail.
func (e *Engine) Estimate(req ratingdomain.EstimateRequest) (quote ratingdomain.Quote, err error) {
	defer func() {
		if err != nil {
			e.metrics.IncError(metrics.ClassifyEngineError(err, engineErrorReasons))
		}
	}()

	if err = validateAudience(req.Followers, req.EngagementRate); err != nil {
		return ratingdomain.Quote{}, err
	}

	currencyMultiplier, err := e.currency.Multiplier(req.Currency)
	if err != nil {
		return ratingdomain.Quote{}, err
	}

	platformFactor, _ := e.platforms.Lookup(req.Platform)
	campaignMultiplier, _ := e.campaigns.Lookup(req.CampaignType)
	engagementMultiplier := EngagementMultiplier(req.EngagementRate)
	baseRate := BaseRate(req.Followers, platformFactor)

	price, err := roundPrice(baseRate * engagementMultiplier * campaignMultiplier * currencyMultiplier)
	if err != nil {
		return ratingdomain.Quote{}, err
	}

	quote = ratingdomain.Quote{
		Platform:             req.Platform,
		CampaignType:         req.CampaignType,
		Currency:             currencydomain.NormalizeCode(req.Currency),
		Followers:            req.Followers,
		EngagementRate:       req.EngagementRate,
		PlatformFactor:       platformFactor,
		BaseRate:             baseRate,
		EngagementMultiplier: engagementMultiplier,
		CampaignMultiplier:   campaignMultiplier,
		CurrencyMultiplier:   currencyMultiplier,
		Price:                price,
	}
	e.metrics.ObserveEstimate(req.Platform, req.CampaignType, quote.Currency, price)
	return quote, nil
}

// Breakdown prices the audience with no engagement bonus as a plain post.
// It shares BaseRate with Estimate.
func (e *Engine) Breakdown(platform string, followers int64, campaignType string, currency string) (ratingdomain.Breakdown, error) {
	if followers < 0 {
		return ratingdomain.Breakdown{}, fmt.Errorf("%w: %d", ratingdomain.ErrInvalidFollowers, followers)
	}

	currencyMultiplier, err := e.currency.Multiplier(currency)
	if err != nil {
		return ratingdomain.Breakdown{}, err
	}

	platformFactor, _ := e.platforms.Lookup(platform)
	// campaignType is ignored: every breakdown is priced as a post
	campaignMultiplier, _ := e.campaigns.Lookup(ratingdomain.BreakdownCampaign)
	engagementMultiplier := 1.0

	baseRate, err := roundPrice(BaseRate(followers, platformFactor) * engagementMultiplier * campaignMultiplier * currencyMultiplier)
	if err != nil {
		return ratingdomain.Breakdown{}, err
	}

	return ratingdomain.Breakdown{
		BaseRate:             baseRate,
		PlatformFactor:       platformFactor,
		EngagementMultiplier: engagementMultiplier,
		CampaignMultiplier:   campaignMultiplier,
		CurrencyMultiplier:   currencyMultiplier,
	}, nil
}

// BaseRate is the unweighted per-platform rate in the base currency.
func BaseRate(followers int64, platformFactor float64) float64 {
	return float64(followers) / 1000 * platformFactor
}

// EngagementMultiplier never drops below 1 and grows linearly once the
// rate passes 2%.
func EngagementMultiplier(engagementRate float64) float64 {
	return math.Max(1, engagementRate/2)
}

// roundPrice rounds a raw product, which can leave the float64 range even
// when every factor is finite.
func roundPrice(raw float64) (float64, error) {
	if math.IsInf(raw, 0) || math.IsNaN(raw) {
		return 0, fmt.Errorf("%w: %v", ratingdomain.ErrRateOutOfRange, raw)
	}
	return money.Round2(raw), nil
}

func validateAudience(followers int64, engagementRate float64) error {
	if followers < 0 {
		return fmt.Errorf("%w: %d", ratingdomain.ErrInvalidFollowers, followers)
	}
	if engagementRate < 0 || math.IsNaN(engagementRate) || math.IsInf(engagementRate, 0) {
		return fmt.Errorf("%w: %v", ratingdomain.ErrInvalidEngagement, engagementRate)
	}
	return nil
}
