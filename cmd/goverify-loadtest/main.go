// Command goverify-loadtest drives the verification pipeline and the result
// cache concurrently against Redis (or an embedded miniredis) and prints
// throughput and latency percentiles per phase.
package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	goVerify "github.com/MrEthical07/goVerify"
	"github.com/MrEthical07/goVerify/cache"
	"github.com/MrEthical07/goVerify/counter"
	otelexport "github.com/MrEthical07/goVerify/metrics/export/otel"
	"github.com/MrEthical07/goVerify/notify"
	"github.com/MrEthical07/goVerify/otp"
	"github.com/MrEthical07/goVerify/password"
	"github.com/MrEthical07/goVerify/profile"
)

const (
	loadSecret   = "JBSWY3DPEHPK3PXP"
	loadPassword = "correct-horse"
)

func main() {
	var (
		accounts    = flag.Int("accounts", 10000, "number of accounts to seed")
		concurrency = flag.Int("concurrency", 256, "number of concurrent workers")
		ops         = flag.Int("ops", 200000, "operations per phase")
		redisAddr   = flag.String("redis-addr", "", "redis address; if empty, REDIS_ADDR env or miniredis is used")
		cacheTTL    = flag.Duration("cache-ttl", time.Minute, "profile cache TTL; 0 disables the cache")
		threshold   = flag.Int("threshold", 1000000, "lock threshold; keep high so the invalid phase does not lock accounts")
		showOTel    = flag.Bool("otel", false, "print pipeline metrics collected through the OpenTelemetry exporter")
	)
	flag.Parse()

	if *accounts <= 0 || *concurrency <= 0 || *ops <= 0 {
		fmt.Fprintln(os.Stderr, "accounts, concurrency, and ops must be > 0")
		os.Exit(2)
	}

	ctx := context.Background()

	addr := *redisAddr
	if addr == "" {
		addr = os.Getenv("REDIS_ADDR")
	}

	var (
		cleanup func()
		client  redis.UniversalClient
	)
	if addr == "" {
		mr, err := miniredis.Run()
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to start miniredis: %v\n", err)
			os.Exit(1)
		}
		addr = mr.Addr()
		client = redis.NewUniversalClient(&redis.UniversalOptions{
			Addrs: []string{addr},
		})
		cleanup = func() {
			_ = client.Close()
			mr.Close()
		}
		fmt.Printf("using miniredis at %s\n", addr)
	} else {
		client = redis.NewUniversalClient(&redis.UniversalOptions{
			Addrs: []string{addr},
		})
		cleanup = func() { _ = client.Close() }
		fmt.Printf("using redis at %s\n", addr)
	}
	defer cleanup()

	hasher := password.SHA256{}
	hash, _ := hasher.Compute(loadPassword)

	ids := make([]string, *accounts)
	hashes := make(map[string]string, *accounts)
	secrets := otp.NewRedisSecrets(client, "lt:otp:")
	fmt.Printf("seeding %d accounts...\n", *accounts)
	startSeed := time.Now()
	for i := range ids {
		ids[i] = fmt.Sprintf("acct-%d", i)
		hashes[ids[i]] = hash
		if err := secrets.Put(ctx, ids[i], loadSecret); err != nil {
			fmt.Fprintf(os.Stderr, "seed secret failed: %v\n", err)
			os.Exit(1)
		}
	}
	fmt.Printf("seeded in %s\n", time.Since(startSeed).Round(time.Millisecond))

	// A frozen clock keeps every account's code stable for the whole run.
	frozen := time.Now()
	codes := otp.New(secrets, otp.Config{}).WithClock(func() time.Time { return frozen })
	code, err := codes.CurrentOTP(ctx, ids[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "current otp failed: %v\n", err)
		os.Exit(1)
	}

	ic := cache.NewInterceptor(cache.NewRedisStore(client, "lt:rc:"))
	profiles := profile.NewCached(profile.NewMemory(hashes), ic, *cacheTTL)

	ccfg := counter.DefaultConfig()
	ccfg.Threshold = *threshold
	ccfg.Prefix = "lt:fa:"
	failed, err := counter.NewRedis(client, ccfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "counter: %v\n", err)
		os.Exit(1)
	}

	pipeline, err := goVerify.New().
		WithProfileStore(profiles).
		WithHasher(hasher).
		WithOTPService(codes).
		WithFailedCounter(failed).
		WithNotifier(notify.NewLog(zerolog.Nop())).
		WithMetricsEnabled(true).
		WithLatencyHistograms(true).
		Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "pipeline: %v\n", err)
		os.Exit(1)
	}
	defer pipeline.Close()

	validStats := runPhase(*ops, *concurrency, 7919, func(r *rand.Rand) error {
		ok, err := pipeline.Verify(ctx, ids[r.Intn(len(ids))], loadPassword, code)
		if err == nil && !ok {
			return fmt.Errorf("valid credentials rejected")
		}
		return err
	})
	invalidStats := runPhase(*ops, *concurrency, 6151, func(r *rand.Rand) error {
		ok, err := pipeline.Verify(ctx, ids[r.Intn(len(ids))], loadPassword, "000000x")
		if err == nil && ok {
			return fmt.Errorf("invalid credentials accepted")
		}
		return err
	})
	lookupStats := runPhase(*ops, *concurrency, 4099, func(r *rand.Rand) error {
		_, err := profiles.PasswordHash(ctx, ids[r.Intn(len(ids))])
		return err
	})

	fmt.Println("---- results ----")
	printStats("verify-valid", validStats)
	printStats("verify-invalid", invalidStats)
	printStats("profile-lookup", lookupStats)
	st := ic.Stats()
	fmt.Printf("cache: hits=%d misses=%d store_errors=%d\n", st.Hits, st.Misses, st.StoreErrors)

	if *showOTel {
		if err := printOTel(ctx, pipeline, ic); err != nil {
			fmt.Fprintf(os.Stderr, "otel: %v\n", err)
			os.Exit(1)
		}
	}
}

func runPhase(ops, concurrency int, seed int64, op func(r *rand.Rand) error) phaseStats {
	var (
		wg        sync.WaitGroup
		cursor    int64
		failures  int64
		latencies = make([]time.Duration, 0, ops)
		mu        sync.Mutex
	)

	start := time.Now()
	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			r := rand.New(rand.NewSource(time.Now().UnixNano() + int64(worker)*seed))
			for {
				i := int(atomic.AddInt64(&cursor, 1)) - 1
				if i >= ops {
					return
				}
				t0 := time.Now()
				err := op(r)
				d := time.Since(t0)
				if err != nil {
					atomic.AddInt64(&failures, 1)
				}
				mu.Lock()
				latencies = append(latencies, d)
				mu.Unlock()
			}
		}(w)
	}
	wg.Wait()
	total := time.Since(start)
	return computeStats(total, latencies, failures)
}

func printOTel(ctx context.Context, pipeline *goVerify.Pipeline, ic *cache.Interceptor) error {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer func() { _ = provider.Shutdown(ctx) }()

	exp, err := otelexport.NewExporter(provider.Meter("goverify-loadtest"), pipeline, otelexport.WithCacheStats(ic))
	if err != nil {
		return err
	}
	defer exp.Close()

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(ctx, &rm); err != nil {
		return err
	}

	fmt.Println("---- otel ----")
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			switch data := m.Data.(type) {
			case metricdata.Sum[int64]:
				for _, dp := range data.DataPoints {
					fmt.Printf("%s %d\n", m.Name, dp.Value)
				}
			case metricdata.Gauge[int64]:
				for _, dp := range data.DataPoints {
					fmt.Printf("%s %d\n", m.Name, dp.Value)
				}
			}
		}
	}
	return nil
}

type phaseStats struct {
	total    time.Duration
	ops      int
	failures int64
	p50      time.Duration
	p95      time.Duration
	p99      time.Duration
	opsPerS  float64
}

func computeStats(total time.Duration, samples []time.Duration, failures int64) phaseStats {
	if len(samples) == 0 {
		return phaseStats{total: total}
	}
	sort.Slice(samples, func(i, j int) bool { return samples[i] < samples[j] })
	return phaseStats{
		total:    total,
		ops:      len(samples),
		failures: failures,
		p50:      percentile(samples, 50),
		p95:      percentile(samples, 95),
		p99:      percentile(samples, 99),
		opsPerS:  float64(len(samples)) / total.Seconds(),
	}
}

func percentile(samples []time.Duration, p int) time.Duration {
	if len(samples) == 0 {
		return 0
	}
	if p <= 0 {
		return samples[0]
	}
	if p >= 100 {
		return samples[len(samples)-1]
	}
	idx := (len(samples) - 1) * p / 100
	return samples[idx]
}

func printStats(name string, s phaseStats) {
	fmt.Printf("%s: ops=%d failures=%d total=%s ops/sec=%.0f p50=%s p95=%s p99=%s\n",
		name,
		s.ops,
		s.failures,
		s.total.Round(time.Millisecond),
		s.opsPerS,
		s.p50.Round(time.Microsecond),
		s.p95.Round(time.Microsecond),
		s.p99.Round(time.Microsecond),
	)
}
