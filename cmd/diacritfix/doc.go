/*
Package main is the diacritfix server entrypoint.

# Overview

cmd/diacritfix is the executable entrypoint of the diacritfix service. It
exposes the HTTP API for uploading documents, paying for the repaired
result, and downloading it exactly once. The program supports YAML
configuration loading, structured logging (zap), Prometheus metrics, and
OpenTelemetry tracing.

# Core types

  - Server         — main server, manages the HTTP and metrics listeners plus graceful shutdown
  - Middleware     — HTTP middleware signature func(http.Handler) http.Handler
  - responseWriter — wraps http.ResponseWriter to capture the status code

# Capabilities

  - Subcommands: serve (start the service), version, health
  - Middleware chain: Recovery, RequestID, SecurityHeaders, RequestLogger,
    CORS, RateLimiter (per-IP), MetricsMiddleware, OTelTracing
  - Metrics server: /metrics (Prometheus) on a dedicated port
  - Graceful shutdown: signal → stop sweeper → close HTTP → close metrics → flush telemetry
  - Build injection: Version, BuildTime, GitCommit set via ldflags
*/
package main
