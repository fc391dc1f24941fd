package goVerify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/rs/zerolog"
)

func TestJoeyValidResetsOnceWithoutNotification(t *testing.T) {
	f := newJoeyFixture()
	auth := f.canonical()

	ok, err := auth.Verify(context.Background(), "joey", "pw", "9527")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Fatalf("expected valid")
	}
	if f.counter.resets != 1 {
		t.Fatalf("expected 1 reset, got %d", f.counter.resets)
	}
	if f.counter.adds != 0 {
		t.Fatalf("expected 0 adds, got %d", f.counter.adds)
	}
	if f.notifier.count() != 0 {
		t.Fatalf("expected no notification, got %d", f.notifier.count())
	}
}

func TestJoeyInvalidAddsOnceAndNotifies(t *testing.T) {
	f := newJoeyFixture()
	auth := f.canonical()

	ok, err := auth.Verify(context.Background(), "joey", "pw", "0000")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Fatalf("expected invalid")
	}
	if f.counter.adds != 1 {
		t.Fatalf("expected 1 add, got %d", f.counter.adds)
	}
	if f.counter.resets != 0 {
		t.Fatalf("expected 0 resets, got %d", f.counter.resets)
	}
	if f.notifier.count() != 1 {
		t.Fatalf("expected 1 notification, got %d", f.notifier.count())
	}
	if !f.notifier.mentions("joey") {
		t.Fatalf("expected notification to name joey, got %v", f.notifier.messages)
	}
}

func TestLockedAccountNeverConsultsCollaborators(t *testing.T) {
	f := newJoeyFixture()
	f.counter.counts["joey"] = 5
	auth := f.canonical()

	ok, err := auth.Verify(context.Background(), "joey", "pw", "9527")
	if !errors.Is(err, ErrAccountLocked) {
		t.Fatalf("expected ErrAccountLocked, got %v", err)
	}
	if ok {
		t.Fatalf("expected false when locked")
	}
	if f.profiles.calls != 0 || f.hasher.calls != 0 || f.otp.calls != 0 {
		t.Fatalf("expected no collaborator calls, got profile=%d hasher=%d otp=%d",
			f.profiles.calls, f.hasher.calls, f.otp.calls)
	}
	if f.counter.adds != 0 || f.counter.resets != 0 {
		t.Fatalf("expected counter untouched, adds=%d resets=%d", f.counter.adds, f.counter.resets)
	}
	if f.notifier.count() != 0 {
		t.Fatalf("expected no notification when locked")
	}
}

func TestLockoutAfterThresholdFailures(t *testing.T) {
	f := newJoeyFixture()
	f.counter.threshold = 3
	auth := f.canonical()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		ok, err := auth.Verify(ctx, "joey", "pw", "0000")
		if err != nil || ok {
			t.Fatalf("attempt %d: expected (false, nil), got (%v, %v)", i, ok, err)
		}
	}

	_, err := auth.Verify(ctx, "joey", "pw", "9527")
	if !errors.Is(err, ErrAccountLocked) {
		t.Fatalf("expected lock after threshold, got %v", err)
	}
}

func TestSuccessResetsPriorFailures(t *testing.T) {
	f := newJoeyFixture()
	auth := f.canonical()
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if _, err := auth.Verify(ctx, "joey", "pw", "0000"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if ok, err := auth.Verify(ctx, "joey", "pw", "9527"); err != nil || !ok {
		t.Fatalf("expected valid, got (%v, %v)", ok, err)
	}
	if got := f.counter.counts["joey"]; got != 0 {
		t.Fatalf("expected count reset to 0, got %d", got)
	}
}

func TestCollaboratorFailureLeavesCounterAlone(t *testing.T) {
	f := newJoeyFixture()
	f.otp.err = errBoom
	auth := f.canonical()

	_, err := auth.Verify(context.Background(), "joey", "pw", "9527")
	if !errors.Is(err, ErrCollaboratorUnavailable) {
		t.Fatalf("expected collaborator error, got %v", err)
	}
	if f.counter.adds != 0 || f.counter.resets != 0 {
		t.Fatalf("expected counter untouched, adds=%d resets=%d", f.counter.adds, f.counter.resets)
	}
	if f.notifier.count() != 0 {
		t.Fatalf("expected no notification on collaborator failure")
	}
}

func TestUnknownAccountIsNotAFailedAttempt(t *testing.T) {
	f := newJoeyFixture()
	auth := f.canonical()

	_, err := auth.Verify(context.Background(), "ghost", "pw", "9527")
	if !errors.Is(err, ErrProfileNotFound) {
		t.Fatalf("expected ErrProfileNotFound, got %v", err)
	}
	if f.counter.counts["ghost"] != 0 {
		t.Fatalf("expected ghost count 0, got %d", f.counter.counts["ghost"])
	}
}

func TestCounterFailureDuringLockCheck(t *testing.T) {
	f := newJoeyFixture()
	f.counter.err = errBoom
	auth := f.canonical()

	_, err := auth.Verify(context.Background(), "joey", "pw", "9527")
	if !errors.Is(err, ErrCounterUnavailable) {
		t.Fatalf("expected ErrCounterUnavailable, got %v", err)
	}
	if f.profiles.calls != 0 {
		t.Fatalf("expected verifier not consulted")
	}
}

func TestNotifierFailureIsSwallowed(t *testing.T) {
	f := newJoeyFixture()
	f.notifier.err = errBoom

	var buf bytes.Buffer
	m := NewMetrics(MetricsConfig{Enabled: true})
	auth := f.canonical(WithLogger(zerolog.New(&buf)), WithMetrics(m))

	ok, err := auth.Verify(context.Background(), "joey", "pw", "0000")
	if err != nil || ok {
		t.Fatalf("expected (false, nil), got (%v, %v)", ok, err)
	}
	if !strings.Contains(buf.String(), "failure notification not delivered") {
		t.Fatalf("expected warn log, got %q", buf.String())
	}
	if got := m.Value(MetricNotificationFailed); got != 1 {
		t.Fatalf("expected 1 notification failure, got %d", got)
	}
}

func TestFailureLogSeesUpdatedCount(t *testing.T) {
	f := newJoeyFixture()
	f.counter.counts["joey"] = 2

	var buf bytes.Buffer
	auth := f.canonical(WithLogger(zerolog.New(&buf)))

	if _, err := auth.Verify(context.Background(), "joey", "pw", "0000"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var rec struct {
		Level       string `json:"level"`
		AccountID   string `json:"account_id"`
		FailedCount int    `json:"failed_count"`
		Message     string `json:"message"`
	}
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			t.Fatalf("bad log line %q: %v", line, err)
		}
		if rec.Message == "verification failed" {
			break
		}
	}

	if rec.Message != "verification failed" || rec.Level != "info" {
		t.Fatalf("expected info failure record, got %+v", rec)
	}
	if rec.AccountID != "joey" || rec.FailedCount != 3 {
		t.Fatalf("expected joey with count 3, got %+v", rec)
	}
}

func TestFailureLogReadErrorKeepsOutcome(t *testing.T) {
	f := newJoeyFixture()
	f.counter.getErr = errors.New("boom")

	var buf bytes.Buffer
	auth := f.canonical(WithLogger(zerolog.New(&buf)))

	ok, err := auth.Verify(context.Background(), "joey", "pw", "0000")
	if err != nil {
		t.Fatalf("expected rejection without error, got %v", err)
	}
	if ok {
		t.Fatalf("expected invalid")
	}
	if f.counter.adds != 1 {
		t.Fatalf("expected 1 add, got %d", f.counter.adds)
	}
	if f.notifier.count() != 1 {
		t.Fatalf("expected notification despite unreadable count, got %d", f.notifier.count())
	}
	if !strings.Contains(buf.String(), `"level":"warn"`) || !strings.Contains(buf.String(), "boom") {
		t.Fatalf("expected warn record naming the read error, got %q", buf.String())
	}
}

func TestFailureLogQuietOnSuccess(t *testing.T) {
	f := newJoeyFixture()

	var buf bytes.Buffer
	auth := f.canonical(WithLogger(zerolog.New(&buf)))

	if _, err := auth.Verify(context.Background(), "joey", "pw", "9527"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if buf.Len() != 0 {
		t.Fatalf("expected no log output, got %q", buf.String())
	}
}

func TestTraceRedactsSecrets(t *testing.T) {
	f := newJoeyFixture()

	var buf bytes.Buffer
	logger := zerolog.New(&buf).Level(zerolog.DebugLevel)
	auth := Chain(f.verifier(), Trace(WithLogger(logger)))

	ok, err := auth.Verify(context.Background(), "joey", "pw", "9527")
	if err != nil || !ok {
		t.Fatalf("expected trace to pass outcome through, got (%v, %v)", ok, err)
	}

	out := buf.String()
	if strings.Contains(out, "9527") || strings.Contains(out, `"pw"`) {
		t.Fatalf("secrets leaked into trace: %q", out)
	}
	if !strings.Contains(out, redacted) {
		t.Fatalf("expected redaction marker, got %q", out)
	}
	if strings.Count(out, "\n") != 2 {
		t.Fatalf("expected entry and exit records, got %q", out)
	}
}

func TestTracePassesErrorsThrough(t *testing.T) {
	f := newJoeyFixture()
	f.counter.counts["joey"] = 10
	auth := Chain(f.verifier(), Trace(), Lockout(f.counter))

	_, err := auth.Verify(context.Background(), "joey", "pw", "9527")
	if err != ErrAccountLocked {
		t.Fatalf("expected ErrAccountLocked unchanged, got %v", err)
	}
}

func TestChainOrderFirstIsOutermost(t *testing.T) {
	var order []string
	tag := func(name string) Decorator {
		return func(inner Authenticator) Authenticator {
			return AuthenticatorFunc(func(ctx context.Context, a, p, o string) (bool, error) {
				order = append(order, name)
				return inner.Verify(ctx, a, p, o)
			})
		}
	}
	base := AuthenticatorFunc(func(context.Context, string, string, string) (bool, error) {
		order = append(order, "base")
		return true, nil
	})

	auth := Chain(base, tag("outer"), nil, tag("middle"), tag("inner"))
	if _, err := auth.Verify(context.Background(), "a", "b", "c"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := "outer,middle,inner,base"
	if got := strings.Join(order, ","); got != want {
		t.Fatalf("expected %s, got %s", want, got)
	}
}

func TestMeasureCountsOutcomes(t *testing.T) {
	f := newJoeyFixture()
	f.counter.threshold = 1
	m := NewMetrics(MetricsConfig{Enabled: true, EnableLatencyHistograms: true})
	auth := Chain(f.verifier(), Measure(m), Lockout(f.counter), FailureCounter(f.counter))
	ctx := context.Background()

	_, _ = auth.Verify(ctx, "joey", "pw", "9527")
	_, _ = auth.Verify(ctx, "joey", "pw", "0000")
	_, _ = auth.Verify(ctx, "joey", "pw", "9527")
	_, _ = auth.Verify(ctx, "ghost", "pw", "9527")

	snap := m.Snapshot()
	if snap.Counters[MetricVerifyValid] != 1 {
		t.Fatalf("expected 1 valid, got %d", snap.Counters[MetricVerifyValid])
	}
	if snap.Counters[MetricVerifyInvalid] != 1 {
		t.Fatalf("expected 1 invalid, got %d", snap.Counters[MetricVerifyInvalid])
	}
	if snap.Counters[MetricVerifyLocked] != 1 {
		t.Fatalf("expected 1 locked, got %d", snap.Counters[MetricVerifyLocked])
	}
	if snap.Counters[MetricVerifyUnavailable] != 1 {
		t.Fatalf("expected 1 unavailable, got %d", snap.Counters[MetricVerifyUnavailable])
	}

	var total uint64
	for _, v := range snap.Histograms[MetricVerifyLatency] {
		total += v
	}
	if total != 4 {
		t.Fatalf("expected 4 latency observations, got %d", total)
	}
}

func TestConcurrentFailuresAreAllCounted(t *testing.T) {
	f := newJoeyFixture()
	f.counter.threshold = 1 << 30
	reject := AuthenticatorFunc(func(context.Context, string, string, string) (bool, error) {
		return false, nil
	})
	auth := Chain(reject, FailureCounter(f.counter))

	const n = 64
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			_, _ = auth.Verify(context.Background(), "joey", "pw", "0000")
		}()
	}
	wg.Wait()

	if got := f.counter.counts["joey"]; got != n {
		t.Fatalf("expected %d, got %d", n, got)
	}
}
