// Package instrumentation provides OpenTelemetry instrumentation for
// hireloop campaign runs.
//
// # Metrics
//
// The package exposes the following metric categories:
//
// Generation Metrics:
//   - generation_ops_total: Counter of text generation calls by model and status
//   - generation_duration_seconds: Histogram of generation call durations
//
// Sending Metrics:
//   - mail_send_ops_total: Counter of Gmail send operations by status
//   - mail_send_duration_seconds: Histogram of send durations
//
// Campaign Metrics:
//   - recipients_loaded_total: Counter of loaded/skipped recipient rows
//   - campaign_outcomes_total: Counter of per-recipient outcomes (sent, failed, skipped)
//
// OAuth Metrics:
//   - oauth_token_refresh_total: Counter of token refresh attempts by result
//
// # Tracing
//
// Spans are created per recipient (campaign.recipient) and per outbound
// call to Gmail, Drive, and the generation API.
//
// # Configuration
//
// Instrumentation can be configured via environment variables:
//   - INSTRUMENTATION_ENABLED: Enable/disable instrumentation (default: true)
//   - METRICS_EXPORTER: Metrics exporter type (prometheus, otlp, stdout, default: prometheus)
//   - TRACING_EXPORTER: Tracing exporter type (otlp, stdout, none, default: none)
//   - OTEL_EXPORTER_OTLP_ENDPOINT: OTLP endpoint for traces/metrics
//   - OTEL_TRACES_SAMPLER_ARG: Sampling rate (0.0 to 1.0, default: 1.0)
//   - OTEL_SERVICE_NAME: Service name (default: hireloop)
//
// # Example Usage
//
//	provider, err := instrumentation.NewProvider(ctx, instrumentation.DefaultConfig())
//	if err != nil {
//		return err
//	}
//	defer provider.Shutdown(ctx)
//
//	recorder := provider.Metrics()
//	recorder.RecordSend(ctx, instrumentation.StatusSuccess, time.Since(start).Seconds())
package instrumentation
