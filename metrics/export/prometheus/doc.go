// Package prometheus provides Prometheus collectors for credauth metrics.
//
// [NewPrometheusExporter] accepts a [credauth.Engine] and exposes an [http.Handler]
// that renders all credauth counters and histograms in Prometheus text exposition format.
// Counter names are prefixed credauth_*_total; the single histogram is
// credauth_validate_latency_seconds.
//
// # What this package must NOT do
//
//   - Register metrics in a global Prometheus registry — callers mount the Handler.
//   - Mutate engine state.
package prometheus
