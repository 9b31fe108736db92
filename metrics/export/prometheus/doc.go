// Package prometheus exposes engine counters through client_golang.
//
// [Collector] implements prometheus.Collector over
// quillpost.Engine.MetricsSnapshot: every scrape reads one snapshot and emits
// the quillpost_*_total counters plus the
// quillpost_authenticate_latency_seconds histogram. Callers register it on
// the registry they serve; nothing is registered globally.
package prometheus
