/*
Package metrics provides Prometheus metric collection for diacritfix,
covering the HTTP surface, the artifact lifecycle, and the two upstream
dependencies (document processor and payment gateway).

# Overview

The package registers and records Prometheus metrics through a single
Collector, using promauto so no Registry needs manual management. All
metrics are isolated under a namespace and grouped with multi-dimensional
labels for dashboards and alerting.

# Core types

  - Collector: holds the Counter, Histogram, and Gauge vectors, grouped
    by concern.

# Capabilities

  - HTTP metrics: request totals, latency, request/response body sizes,
    grouped by method/path/status with status codes bucketed as 2xx-5xx.
  - Lifecycle metrics: artifacts created, paid, delivered, and expired,
    plus a live-record gauge sampled from the store.
  - Upstream metrics: processor call latency by status, checkout call
    latency by operation and status.
*/
package metrics
