// Package otel exports engine counters through an OpenTelemetry Meter.
//
// [NewExporter] registers one Int64ObservableCounter per engine counter and
// one cumulative bucket counter, labeled with "le", for the authenticate
// latency histogram. A single callback reads quillpost.Engine.MetricsSnapshot
// per collection cycle. The caller owns the MeterProvider.
package otel
