package metrics

import (
	"errors"
	"strings"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	EngineErrorUnsupportedCurrency = "unsupported_currency"
	EngineErrorMissingMetrics      = "missing_metrics"
	EngineErrorInsufficientData    = "insufficient_data"
	EngineErrorInvalidInput        = "invalid_input"
	EngineErrorOutOfRange          = "out_of_range"
	EngineErrorUnknown             = "unknown"
)

// EngineMetrics tracks the pricing engine through the default prometheus
// registry.
type EngineMetrics struct {
	estimates     *prometheus.CounterVec
	errors        *prometheus.CounterVec
	price         *prometheus.HistogramVec
	engagement    prometheus.Observer
	historyLength prometheus.Observer
}

var (
	engineMetricsOnce sync.Once
	engineMetrics     *EngineMetrics
)

// EngineWithConfig returns the singleton engine metrics registry using config labels.
func EngineWithConfig(cfg Config) *EngineMetrics {
	engineMetricsOnce.Do(func() {
		engineMetrics = newEngineMetrics(prometheus.DefaultRegisterer, cfg)
	})
	return engineMetrics
}

// NewEngineMetrics registers engine metrics on registerer. Tests pass a
// fresh registry.
func NewEngineMetrics(registerer prometheus.Registerer, cfg Config) *EngineMetrics {
	return newEngineMetrics(registerer, cfg)
}

func newEngineMetrics(registerer prometheus.Registerer, cfg Config) *EngineMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	constLabels := constLabelsFor(cfg)

	estimates := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name:        "ratecard_estimates_total",
		Help:        "Rate estimates computed by platform, campaign type and currency.",
		ConstLabels: constLabels,
	}, []string{"platform", "campaign_type", "currency"})
	engineErrors := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name:        "ratecard_engine_errors_total",
		Help:        "Pricing failures by low-cardinality reason.",
		ConstLabels: constLabels,
	}, []string{"reason"})
	price := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:        "ratecard_estimate_price",
		Help:        "Distribution of estimated prices in the requested currency.",
		Buckets:     []float64{1, 10, 50, 100, 250, 500, 1000, 2500, 5000, 10000, 50000, 100000},
		ConstLabels: constLabels,
	}, []string{"currency"})
	engagement := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:        "ratecard_engagement_rate_percent",
		Help:        "Engagement rates produced by the aggregator.",
		Buckets:     []float64{0.5, 1, 2, 3, 5, 8, 13, 21, 50, 100},
		ConstLabels: constLabels,
	})
	historyLength := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:        "ratecard_history_length",
		Help:        "Number of rate cards returned per history read.",
		Buckets:     prometheus.ExponentialBuckets(1, 2, 10),
		ConstLabels: constLabels,
	})

	registerer.MustRegister(estimates, engineErrors, price, engagement, historyLength)

	return &EngineMetrics{
		estimates:     estimates,
		errors:        engineErrors,
		price:         price,
		engagement:    engagement,
		historyLength: historyLength,
	}
}

// ObserveEstimate records a successful estimate.
func (m *EngineMetrics) ObserveEstimate(platform, campaignType, currency string, price float64) {
	if m == nil {
		return
	}
	platform = lowLabel(platform)
	currency = strings.ToUpper(lowLabel(currency))
	m.estimates.WithLabelValues(platform, lowLabel(campaignType), currency).Inc()
	m.price.WithLabelValues(currency).Observe(price)
}

// IncError records a failed estimate or aggregation.
func (m *EngineMetrics) IncError(reason string) {
	if m == nil {
		return
	}
	m.errors.WithLabelValues(lowLabel(reason)).Inc()
}

func (m *EngineMetrics) ObserveEngagement(rate float64) {
	if m == nil {
		return
	}
	m.engagement.Observe(rate)
}

func (m *EngineMetrics) ObserveHistoryLength(n int) {
	if m == nil {
		return
	}
	m.historyLength.Observe(float64(n))
}

// ClassifyEngineError maps a pricing error to its reason label. Callers
// supply the sentinels so this package stays free of domain imports.
func ClassifyEngineError(err error, reasons map[error]string) string {
	if err == nil {
		return ""
	}
	for target, reason := range reasons {
		if errors.Is(err, target) {
			return reason
		}
	}
	return EngineErrorUnknown
}

func constLabelsFor(cfg Config) prometheus.Labels {
	serviceName := strings.TrimSpace(cfg.ServiceName)
	if serviceName == "" {
		serviceName = "ratecard"
	}
	environment := strings.TrimSpace(cfg.Environment)
	if environment == "" {
		environment = "unknown"
	}
	return prometheus.Labels{
		"service": serviceName,
		"env":     environment,
	}
}

func lowLabel(value string) string {
	value = strings.ToLower(strings.TrimSpace(value))
	if value == "" {
		return "none"
	}
	return value
}
