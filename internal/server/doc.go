// Package server provides the optional metrics listener that runs alongside
// a campaign.
//
// MetricsServer exposes Prometheus metrics on a dedicated port, isolated
// from anything user-facing. HealthChecker adds liveness, readiness and a
// /progress endpoint that reports per-outcome counts for the run in flight,
// so a long campaign can be watched with curl or scraped by Prometheus.
package server
