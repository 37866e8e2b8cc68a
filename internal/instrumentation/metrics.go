package instrumentation

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metric attribute keys - using constants for consistency.
const (
	attrStatus    = "status"
	attrOperation = "operation"
	attrService   = "service"
	attrResult    = "result"
	attrOutcome   = "outcome"
	attrModel     = "model"
)

// Metrics provides methods for recording observability metrics for a
// campaign run. A zero-value Metrics is a safe no-op, which is what the
// provider returns when instrumentation is disabled.
type Metrics struct {
	// Generation metrics
	generationOpsTotal metric.Int64Counter
	generationDuration metric.Float64Histogram

	// Mail send metrics
	sendOpsTotal metric.Int64Counter
	sendDuration metric.Float64Histogram

	// Campaign metrics
	recipientsLoadedTotal metric.Int64Counter
	outcomesTotal         metric.Int64Counter

	// OAuth metrics
	oauthTokenRefreshTotal metric.Int64Counter
}

// NewMetrics creates a new Metrics instance with all metrics initialized.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{}

	var err error

	m.generationOpsTotal, err = meter.Int64Counter(
		"generation_ops_total",
		metric.WithDescription("Total number of content generation API calls"),
		metric.WithUnit("{operation}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create generation_ops_total counter: %w", err)
	}

	m.generationDuration, err = meter.Float64Histogram(
		"generation_duration_seconds",
		metric.WithDescription("Content generation call duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.1, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0, 60.0),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create generation_duration_seconds histogram: %w", err)
	}

	m.sendOpsTotal, err = meter.Int64Counter(
		"mail_send_ops_total",
		metric.WithDescription("Total number of mail send operations"),
		metric.WithUnit("{operation}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create mail_send_ops_total counter: %w", err)
	}

	m.sendDuration, err = meter.Float64Histogram(
		"mail_send_duration_seconds",
		metric.WithDescription("Mail send operation duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create mail_send_duration_seconds histogram: %w", err)
	}

	m.recipientsLoadedTotal, err = meter.Int64Counter(
		"recipients_loaded_total",
		metric.WithDescription("Total number of recipient rows loaded or skipped at load time"),
		metric.WithUnit("{recipient}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create recipients_loaded_total counter: %w", err)
	}

	m.outcomesTotal, err = meter.Int64Counter(
		"campaign_outcomes_total",
		metric.WithDescription("Total number of terminal per-recipient outcomes"),
		metric.WithUnit("{recipient}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create campaign_outcomes_total counter: %w", err)
	}

	m.oauthTokenRefreshTotal, err = meter.Int64Counter(
		"oauth_token_refresh_total",
		metric.WithDescription("Total number of OAuth token refresh attempts"),
		metric.WithUnit("{attempt}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create oauth_token_refresh_total counter: %w", err)
	}

	return m, nil
}

// RecordGeneration records one content generation call.
func (m *Metrics) RecordGeneration(ctx context.Context, model, status string, seconds float64) {
	if m == nil || m.generationOpsTotal == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String(attrModel, model),
		attribute.String(attrStatus, status),
	)
	m.generationOpsTotal.Add(ctx, 1, attrs)
	m.generationDuration.Record(ctx, seconds, attrs)
}

// RecordSend records one mail send operation.
func (m *Metrics) RecordSend(ctx context.Context, status string, seconds float64) {
	if m == nil || m.sendOpsTotal == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String(attrService, "gmail"),
		attribute.String(attrOperation, "send"),
		attribute.String(attrStatus, status),
	)
	m.sendOpsTotal.Add(ctx, 1, attrs)
	m.sendDuration.Record(ctx, seconds, attrs)
}

// RecordRecipientsLoaded records recipient rows by load result
// ("loaded" or "skipped").
func (m *Metrics) RecordRecipientsLoaded(ctx context.Context, result string, n int) {
	if m == nil || m.recipientsLoadedTotal == nil {
		return
	}
	m.recipientsLoadedTotal.Add(ctx, int64(n), metric.WithAttributes(
		attribute.String(attrResult, result),
	))
}

// RecordOutcome records one terminal per-recipient outcome.
func (m *Metrics) RecordOutcome(ctx context.Context, outcome string) {
	if m == nil || m.outcomesTotal == nil {
		return
	}
	m.outcomesTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String(attrOutcome, outcome),
	))
}

// RecordTokenRefresh records an OAuth token refresh attempt.
func (m *Metrics) RecordTokenRefresh(ctx context.Context, result string) {
	if m == nil || m.oauthTokenRefreshTotal == nil {
		return
	}
	m.oauthTokenRefreshTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String(attrResult, result),
	))
}
