package internaldefs

import (
	goVerify "github.com/MrEthical07/goVerify"
)

// CounterDef names one verification counter.
type CounterDef struct {
	ID   goVerify.MetricID
	Name string
	Help string
}

// HistogramDef names one latency histogram.
type HistogramDef struct {
	ID   goVerify.MetricID
	Name string
	Help string
}

// CounterDefs lists exported counters in MetricID order.
var CounterDefs = []CounterDef{
	{ID: goVerify.MetricVerifyValid, Name: "goverify_verify_valid_total", Help: "Verifications that matched."},
	{ID: goVerify.MetricVerifyInvalid, Name: "goverify_verify_invalid_total", Help: "Verifications rejected for wrong credentials."},
	{ID: goVerify.MetricVerifyLocked, Name: "goverify_verify_locked_total", Help: "Verifications rejected because the account is locked."},
	{ID: goVerify.MetricVerifyUnavailable, Name: "goverify_verify_unavailable_total", Help: "Verifications that failed on a collaborator."},
	{ID: goVerify.MetricNotificationFailed, Name: "goverify_notification_failed_total", Help: "Failure notifications the notifier could not deliver."},
}

// HistogramDefs lists exported latency histograms.
var HistogramDefs = []HistogramDef{
	{ID: goVerify.MetricVerifyLatency, Name: "goverify_verify_latency_seconds", Help: "Verify latency histogram."},
}

const (
	NotificationsDroppedName = "goverify_notifications_dropped_total"
	NotificationsDroppedHelp = "Async failure notifications dropped due to queue backpressure."

	CacheHitsName        = "goverify_cache_hits_total"
	CacheHitsHelp        = "Result cache hits."
	CacheMissesName      = "goverify_cache_misses_total"
	CacheMissesHelp      = "Result cache misses."
	CacheStoreErrorsName = "goverify_cache_store_errors_total"
	CacheStoreErrorsHelp = "Result cache store failures treated as misses."
)

// HistogramBounds are the upper bounds, in seconds, of the first seven
// buckets. The eighth bucket is +Inf.
func HistogramBounds() []float64 {
	bounds := goVerify.LatencyBucketBounds()
	out := make([]float64, len(bounds))
	for i, d := range bounds {
		out[i] = d.Seconds()
	}
	return out
}

// HistogramBoundSuffix is the per-bucket label suffix, in bucket order.
var HistogramBoundSuffix = []string{
	"0_005",
	"0_01",
	"0_025",
	"0_05",
	"0_1",
	"0_25",
	"0_5",
	"inf",
}

// NormalizeBuckets copies raw into a fixed eight-bucket array.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

// CumulativeBuckets turns per-bucket counts into running totals.
func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}
