package domain

import "errors"

type Engine interface {
	Estimate(req EstimateRequest) (Quote, error)
	Breakdown(platform string, followers int64, campaignType string, currency string) (Breakdown, error)
}

var (
	ErrMissingMetrics    = errors.New("missing_metrics")
	ErrInvalidFollowers  = errors.New("invalid_followers")
	ErrInvalidEngagement = errors.New("invalid_engagement_rate")
	// ErrRateOutOfRange is returned when finite inputs multiply past the
	// float64 range.
	ErrRateOutOfRange = errors.New("rate_out_of_range")
)

// ResolveMetrics picks the metrics a rate is computed from. A complete
// override wins over connected account data; a partial override is ignored.
// It fails with ErrMissingMetrics only when neither source is usable.
func ResolveMetrics(override *MetricsOverride, connected *ConnectedMetrics) (Metrics, error) {
	if override.Complete() {
		return Metrics{
			Followers:      *override.Followers,
			EngagementRate: *override.EngagementRate,
			Source:         MetricsSourceOverride,
		}, nil
	}
	if connected != nil {
		return Metrics{
			Followers:      connected.Followers,
			EngagementRate: connected.EngagementRate,
			Source:         MetricsSourceConnected,
		}, nil
	}
	return Metrics{}, ErrMissingMetrics
}
