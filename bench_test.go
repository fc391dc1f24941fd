package goVerify

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

func BenchmarkMetricsInc(b *testing.B) {
	m := NewMetrics(MetricsConfig{Enabled: true})
	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		m.Inc(MetricVerifyValid)
	}
}

func BenchmarkMetricsIncDisabled(b *testing.B) {
	m := NewMetrics(MetricsConfig{Enabled: false})
	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		m.Inc(MetricVerifyValid)
	}
}

func BenchmarkMetricsObserveLatencyParallel(b *testing.B) {
	m := NewMetrics(MetricsConfig{
		Enabled:                 true,
		EnableLatencyHistograms: true,
	})
	d := 12 * time.Millisecond
	b.ReportAllocs()
	b.ResetTimer()

	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			m.Observe(MetricVerifyLatency, d)
		}
	})
}

type packedBenchmarkMetrics struct {
	counters [metricIDCount]uint64
}

func (m *packedBenchmarkMetrics) Inc(id MetricID) {
	atomic.AddUint64(&m.counters[id], 1)
}

var mixedHotMetricIDs = [...]MetricID{
	MetricVerifyValid,
	MetricVerifyInvalid,
	MetricVerifyLocked,
	MetricVerifyUnavailable,
}

func BenchmarkMetricsIncMixedParallelPadded(b *testing.B) {
	m := NewMetrics(MetricsConfig{Enabled: true})
	b.ReportAllocs()
	b.ResetTimer()

	b.RunParallel(func(pb *testing.PB) {
		idx := 0
		for pb.Next() {
			m.Inc(mixedHotMetricIDs[idx])
			idx = (idx + 1) % len(mixedHotMetricIDs)
		}
	})
}

func BenchmarkMetricsIncMixedParallelPacked(b *testing.B) {
	m := &packedBenchmarkMetrics{}
	b.ReportAllocs()
	b.ResetTimer()

	b.RunParallel(func(pb *testing.PB) {
		idx := 0
		for pb.Next() {
			m.Inc(mixedHotMetricIDs[idx])
			idx = (idx + 1) % len(mixedHotMetricIDs)
		}
	})
}

func benchmarkPipeline(b *testing.B, cfg Config, otp string) {
	f := newJoeyFixture()
	p, err := New().
		WithConfig(cfg).
		WithProfileStore(f.profiles).
		WithHasher(f.hasher).
		WithOTPService(f.otp).
		WithFailedCounter(newFakeCounter(1 << 30)).
		WithNotifier(f.notifier).
		Build()
	if err != nil {
		b.Fatalf("Build failed: %v", err)
	}
	defer p.Close()
	ctx := context.Background()

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = p.Verify(ctx, "joey", "pw", otp)
	}
}

func BenchmarkPipelineVerifyValid(b *testing.B) {
	benchmarkPipeline(b, DefaultConfig(), "9527")
}

func BenchmarkPipelineVerifyInvalidWithMetrics(b *testing.B) {
	cfg := DefaultConfig()
	cfg.Metrics.Enabled = true
	cfg.Metrics.EnableLatencyHistograms = true
	benchmarkPipeline(b, cfg, "0000")
}
