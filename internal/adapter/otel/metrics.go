// Package otel holds the platform metric instruments.
package otel

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "botfactory"

// Metrics holds all botfactory metric instruments.
type Metrics struct {
	UpdatesPulled     metric.Int64Counter
	DuplicatesDropped metric.Int64Counter
	RepliesSent       metric.Int64Counter
	AIFallbacks       metric.Int64Counter
	AccessDenied      metric.Int64Counter
	ReplyDuration     metric.Float64Histogram
}

// NewMetrics creates all metric instruments.
func NewMetrics() (*Metrics, error) {
	meter := otel.Meter(meterName)
	m := &Metrics{}
	var err error

	m.UpdatesPulled, err = meter.Int64Counter("botfactory.updates.pulled",
		metric.WithDescription("Number of raw updates pulled from the platform"))
	if err != nil {
		return nil, err
	}

	m.DuplicatesDropped, err = meter.Int64Counter("botfactory.updates.duplicates",
		metric.WithDescription("Number of updates dropped by the dedup ledger"))
	if err != nil {
		return nil, err
	}

	m.RepliesSent, err = meter.Int64Counter("botfactory.replies.sent",
		metric.WithDescription("Number of replies delivered to end users"))
	if err != nil {
		return nil, err
	}

	m.AIFallbacks, err = meter.Int64Counter("botfactory.ai.fallbacks",
		metric.WithDescription("Number of replies served from the localized fallback text"))
	if err != nil {
		return nil, err
	}

	m.AccessDenied, err = meter.Int64Counter("botfactory.access.denied",
		metric.WithDescription("Number of messages rejected by the subscription gate"))
	if err != nil {
		return nil, err
	}

	m.ReplyDuration, err = meter.Float64Histogram("botfactory.reply.duration_seconds",
		metric.WithDescription("End-to-end reply pipeline duration in seconds"))
	if err != nil {
		return nil, err
	}

	return m, nil
}
