package metrics

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric/noop"
)

func TestFilterAttributesDropsForbiddenLabels(t *testing.T) {
	attrs := FilterAttributes(
		attribute.String("platform", "youtube"),
		attribute.String("subject_id", "creator-1"),
		attribute.String("currency", "ZAR"),
	)
	require.Len(t, attrs, 2)
	assert.Equal(t, attribute.Key("platform"), attrs[0].Key)
	assert.Equal(t, attribute.Key("currency"), attrs[1].Key)
}

func TestMetricsNilSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RecordRateCardGenerated(context.Background(), "youtube", "override")
		m.RecordAccountSync(context.Background(), "youtube")
		m.RecordRateLimitDenied(context.Background(), "generate", "exhausted")
	})
}

func TestNewWithNoopProvider(t *testing.T) {
	m, err := New(Config{}, noop.NewMeterProvider())
	require.NoError(t, err)
	assert.NotPanics(t, func() {
		m.RecordRateCardGenerated(context.Background(), "tiktok", "connected")
		m.RecordRateLimitAllowed(context.Background(), "generate")
	})
}
