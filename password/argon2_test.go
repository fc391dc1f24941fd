package password

import (
	"bytes"
	"strings"
	"testing"
)

func testSalt() []byte {
	return bytes.Repeat([]byte{0x5a}, 16)
}

func fastConfig() Config {
	return Config{
		Memory:      8 * 1024,
		Time:        1,
		Parallelism: 1,
		KeyLength:   32,
		Salt:        testSalt(),
	}
}

func TestComputeIsDeterministic(t *testing.T) {
	hasher, err := NewArgon2(fastConfig())
	if err != nil {
		t.Fatalf("NewArgon2 error: %v", err)
	}

	a, err := hasher.Compute("P@ssw0rd-Ascii")
	if err != nil {
		t.Fatalf("Compute error: %v", err)
	}
	b, err := hasher.Compute("P@ssw0rd-Ascii")
	if err != nil {
		t.Fatalf("Compute error: %v", err)
	}

	if a != b {
		t.Fatalf("expected equal digests, got %s and %s", a, b)
	}
	if !strings.HasPrefix(a, "$argon2id$v=19$m=8192,t=1,p=1$") {
		t.Fatalf("unexpected PHC prefix: %s", a)
	}
}

func TestComputeDistinguishesPasswords(t *testing.T) {
	hasher, err := NewArgon2(fastConfig())
	if err != nil {
		t.Fatalf("NewArgon2 error: %v", err)
	}

	a, _ := hasher.Compute("correct-password")
	b, _ := hasher.Compute("wrong-password")
	if a == b {
		t.Fatal("expected different digests for different passwords")
	}
}

func TestComputeDependsOnSalt(t *testing.T) {
	h1, _ := NewArgon2(fastConfig())
	cfg := fastConfig()
	cfg.Salt = bytes.Repeat([]byte{0x01}, 16)
	h2, _ := NewArgon2(cfg)

	a, _ := h1.Compute("same")
	b, _ := h2.Compute("same")
	if a == b {
		t.Fatal("expected salt to change the digest")
	}
}

func TestNewArgon2CopiesSalt(t *testing.T) {
	cfg := fastConfig()
	hasher, _ := NewArgon2(cfg)
	before, _ := hasher.Compute("pw")

	cfg.Salt[0] = 0x00
	after, _ := hasher.Compute("pw")
	if before != after {
		t.Fatal("expected hasher to be isolated from caller salt mutation")
	}
}

func TestNeedsUpgrade(t *testing.T) {
	oldHasher, err := NewArgon2(fastConfig())
	if err != nil {
		t.Fatalf("NewArgon2(old) error: %v", err)
	}
	hash, err := oldHasher.Compute("test-password")
	if err != nil {
		t.Fatalf("Compute error: %v", err)
	}

	cfg := fastConfig()
	cfg.Time = 2
	newHasher, err := NewArgon2(cfg)
	if err != nil {
		t.Fatalf("NewArgon2(new) error: %v", err)
	}

	needsUpgrade, err := newHasher.NeedsUpgrade(hash)
	if err != nil {
		t.Fatalf("NeedsUpgrade error: %v", err)
	}
	if !needsUpgrade {
		t.Fatal("expected NeedsUpgrade to return true for different parameters")
	}

	same, err := oldHasher.NeedsUpgrade(hash)
	if err != nil || same {
		t.Fatalf("expected no upgrade for current parameters, got (%v, %v)", same, err)
	}
}

func TestNeedsUpgradeMalformed(t *testing.T) {
	hasher, _ := NewArgon2(fastConfig())

	if _, err := hasher.NeedsUpgrade("not-a-phc-hash"); err == nil {
		t.Fatal("expected malformed hash to fail")
	}

	hash, _ := hasher.Compute("version-test")
	wrongVersion := strings.Replace(hash, "$v=19$", "$v=18$", 1)
	if _, err := hasher.NeedsUpgrade(wrongVersion); err == nil {
		t.Fatal("expected unsupported version to fail")
	}
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*Config)
		wantValid bool
	}{
		{"fast config", func(*Config) {}, true},
		{"low memory", func(c *Config) { c.Memory = 1024 }, false},
		{"zero time", func(c *Config) { c.Time = 0 }, false},
		{"zero parallelism", func(c *Config) { c.Parallelism = 0 }, false},
		{"short salt", func(c *Config) { c.Salt = []byte("short") }, false},
		{"short key", func(c *Config) { c.KeyLength = 8 }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := fastConfig()
			tt.mutate(&cfg)
			_, err := NewArgon2(cfg)
			if tt.wantValid != (err == nil) {
				t.Fatalf("wantValid=%v, got %v", tt.wantValid, err)
			}
		})
	}
}

func TestSHA256(t *testing.T) {
	got, err := SHA256{}.Compute("abc")
	if err != nil {
		t.Fatalf("Compute error: %v", err)
	}
	want := "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad"
	if got != want {
		t.Fatalf("expected %s, got %s", want, got)
	}
}
