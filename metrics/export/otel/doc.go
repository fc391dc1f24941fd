// Package otel exposes goVerify counters and the verify latency histogram as
// OpenTelemetry observable instruments.
//
// [NewExporter] registers one Int64ObservableCounter per verification
// counter and one Int64ObservableGauge per cumulative histogram bucket. A
// single callback reads [goVerify.Pipeline.MetricsSnapshot] on each
// collection cycle. Result cache statistics are added with [WithCacheStats].
//
// # What this package must NOT do
//
//   - Own the OTel MeterProvider. Callers supply the Meter.
//   - Mutate pipeline state.
package otel
