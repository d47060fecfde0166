package priopool

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"
)

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pool.yaml")
	data := []byte(`workers: 4
levels: 5
queue: heap
drain_on_stop: true
retry:
  attempts: 3
  initial: 50ms
  max: 1s
`)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Workers != 4 || cfg.Levels != 5 || cfg.Queue != "heap" || !cfg.DrainOnStop {
		t.Fatalf("cfg = %+v", cfg)
	}
	if cfg.Retry.Attempts != 3 || cfg.Retry.Initial != 50*time.Millisecond || cfg.Retry.Max != time.Second {
		t.Fatalf("retry = %+v", cfg.Retry)
	}

	opts, err := cfg.Options()
	if err != nil {
		t.Fatalf("Options: %v", err)
	}
	if opts.QT != HeapQueue || opts.Levels != 5 || opts.Retry.Attempts != 3 {
		t.Fatalf("opts = %+v", opts)
	}
}

func TestLoadConfigEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pool.yaml")
	if err := os.WriteFile(path, []byte("workers: 2\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("PRIOPOOL_WORKERS", "8")
	t.Setenv("PRIOPOOL_QUEUE", "bucket")
	t.Setenv("PRIOPOOL_RETRY_INITIAL", "10ms")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Workers != 8 || cfg.Queue != "bucket" || cfg.Retry.Initial != 10*time.Millisecond {
		t.Fatalf("cfg = %+v", cfg)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for a missing file")
	}
}

func TestApplyEnvErrors(t *testing.T) {
	cases := map[string]string{
		"PRIOPOOL_WORKERS":       "many",
		"PRIOPOOL_DRAIN_ON_STOP": "maybe",
		"PRIOPOOL_RETRY_MAX":     "soon",
	}
	for key, val := range cases {
		t.Run(key, func(t *testing.T) {
			var cfg Config
			err := cfg.applyEnv(func(k string) string {
				if k == key {
					return val
				}
				return ""
			})
			if err == nil {
				t.Fatalf("expected error for %s=%s", key, val)
			}
		})
	}
}

func TestConfigUnknownQueue(t *testing.T) {
	_, err := Config{Queue: "ring"}.Options()
	if !errors.Is(err, ErrInvalidOptions) {
		t.Fatalf("err = %v; want ErrInvalidOptions", err)
	}
}

func TestValidateRetryBounds(t *testing.T) {
	o := Options{Retry: RetryPolicy{Initial: time.Second, Max: time.Millisecond}}
	o.FillDefaults()
	if err := o.Validate(); !errors.Is(err, ErrInvalidOptions) {
		t.Fatalf("err = %v; want ErrInvalidOptions", err)
	}
}

func TestRetryPolicyMerge(t *testing.T) {
	base := *GetDefaultRP()

	got := RetryPolicy{Attempts: 4}.merge(base)
	if got.Attempts != 4 || got.Initial != defaultInitialRetry || got.Max != defaultMaxRetry {
		t.Fatalf("merge = %+v", got)
	}

	got = RetryPolicy{Initial: 10 * time.Second}.merge(base)
	if got.Max != 10*time.Second {
		t.Fatalf("Max = %s; want raised to Initial", got.Max)
	}
}

func TestDefaultedRetryMaxFollowsInitial(t *testing.T) {
	o := Options{Retry: RetryPolicy{Attempts: 3, Initial: 10 * time.Second}}
	o.FillDefaults()
	if err := o.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if o.Retry.Max != 10*time.Second {
		t.Fatalf("Max = %s; want raised to Initial", o.Retry.Max)
	}

	// agrees with what WithRetry accepts for the same policy
	merged := RetryPolicy{Attempts: 3, Initial: 10 * time.Second}.merge(*GetDefaultRP())
	if merged.Max != o.Retry.Max {
		t.Fatalf("merge Max = %s; FillDefaults Max = %s", merged.Max, o.Retry.Max)
	}
}

func TestConfigWithoutWorkersUsesGOMAXPROCS(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pool.yaml")
	if err := os.WriteFile(path, []byte("levels: 3\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	opts, err := cfg.Options()
	if err != nil {
		t.Fatalf("Options: %v", err)
	}

	p, err := NewPoolFromOptions(nil, opts)
	if err != nil {
		t.Fatalf("NewPoolFromOptions: %v", err)
	}
	defer p.Stop()

	if got := p.Workers(); got != runtime.GOMAXPROCS(0) || got == 0 {
		t.Fatalf("workers = %d; want GOMAXPROCS", got)
	}
}
