// Package prometheus exposes goVerify metrics through a client_golang
// collector.
//
// [NewExporter] wraps a [goVerify.Pipeline] (or any [Source]) in a
// [prometheus.Collector] registered on a private registry, and [Exporter.Handler]
// serves it in the text exposition format. Counter names are prefixed
// goverify_*_total; the single histogram is goverify_verify_latency_seconds.
//
// # What this package must NOT do
//
//   - Register metrics in the global Prometheus registry. Callers mount the Handler.
//   - Mutate pipeline state.
package prometheus
