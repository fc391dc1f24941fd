package goVerify

import (
	"context"
	"errors"
	"strings"
	"sync"
)

type fakeProfiles struct {
	hashes map[string]string
	err    error
	calls  int
}

func (f *fakeProfiles) PasswordHash(_ context.Context, accountID string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	h, ok := f.hashes[accountID]
	if !ok {
		return "", ErrProfileNotFound
	}
	return h, nil
}

// fakeHasher "hashes" by returning a fixed digest per plaintext.
type fakeHasher struct {
	digests map[string]string
	err     error
	calls   int
}

func (f *fakeHasher) Compute(plaintext string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.digests[plaintext], nil
}

type fakeOTP struct {
	code  string
	err   error
	calls int
}

func (f *fakeOTP) CurrentOTP(context.Context, string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.code, nil
}

type fakeCounter struct {
	mu         sync.Mutex
	counts     map[string]int
	threshold  int
	adds       int
	resets     int
	lockChecks int
	err        error
	getErr     error
}

func newFakeCounter(threshold int) *fakeCounter {
	return &fakeCounter{counts: map[string]int{}, threshold: threshold}
}

func (f *fakeCounter) IsAccountLocked(_ context.Context, accountID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lockChecks++
	if f.err != nil {
		return false, f.err
	}
	return f.counts[accountID] >= f.threshold, nil
}

func (f *fakeCounter) AddFailedCount(_ context.Context, accountID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.adds++
	f.counts[accountID]++
	return nil
}

func (f *fakeCounter) ResetFailedCount(_ context.Context, accountID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.resets++
	f.counts[accountID] = 0
	return nil
}

func (f *fakeCounter) GetFailedCount(_ context.Context, accountID string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return 0, f.err
	}
	if f.getErr != nil {
		return 0, f.getErr
	}
	return f.counts[accountID], nil
}

type fakeNotifier struct {
	mu       sync.Mutex
	messages []string
	accounts []string
	err      error
}

func (f *fakeNotifier) Notify(_ context.Context, accountID, message string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.accounts = append(f.accounts, accountID)
	f.messages = append(f.messages, message)
	return f.err
}

func (f *fakeNotifier) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.messages)
}

func (f *fakeNotifier) mentions(accountID string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, m := range f.messages {
		if strings.Contains(m, accountID) {
			return true
		}
	}
	return false
}

var errBoom = errors.New("boom")

// joeyFixture mirrors the canonical account: password "pw" hashes to "abc",
// the current code is "9527".
type joeyFixture struct {
	profiles *fakeProfiles
	hasher   *fakeHasher
	otp      *fakeOTP
	counter  *fakeCounter
	notifier *fakeNotifier
}

func newJoeyFixture() *joeyFixture {
	return &joeyFixture{
		profiles: &fakeProfiles{hashes: map[string]string{"joey": "abc"}},
		hasher:   &fakeHasher{digests: map[string]string{"pw": "abc", "wrong": "zzz"}},
		otp:      &fakeOTP{code: "9527"},
		counter:  newFakeCounter(5),
		notifier: &fakeNotifier{},
	}
}

func (f *joeyFixture) verifier() *Verifier {
	return NewVerifier(f.profiles, f.hasher, f.otp)
}

func (f *joeyFixture) canonical(opts ...Option) Authenticator {
	return Chain(f.verifier(),
		Lockout(f.counter),
		Notification(f.notifier, opts...),
		FailureLog(f.counter, opts...),
		FailureCounter(f.counter),
	)
}
