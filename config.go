package priopool

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes the environment variables read by LoadConfig.
const EnvPrefix = "PRIOPOOL"

// Config is the file form of Options.
//
//	workers: 4
//	levels: 3
//	queue: bucket
//	drain_on_stop: false
//	pin_workers: false
//	retry:
//	  attempts: 3
//	  initial: 200ms
//	  max: 5s
type Config struct {
	// Workers left out or set to 0 selects runtime.GOMAXPROCS(0). A
	// zero-worker pool can only be built from Options directly.
	Workers     int         `yaml:"workers"`
	Levels      int         `yaml:"levels"`
	Queue       string      `yaml:"queue"`
	DrainOnStop bool        `yaml:"drain_on_stop"`
	PinWorkers  bool        `yaml:"pin_workers"`
	Retry       RetryConfig `yaml:"retry"`
}

type RetryConfig struct {
	Attempts int           `yaml:"attempts"`
	Initial  time.Duration `yaml:"initial"`
	Max      time.Duration `yaml:"max"`
}

// LoadConfig reads a YAML config file and applies PRIOPOOL_* environment
// overrides on top of it. An empty path loads only the environment.
func LoadConfig(path string) (Config, error) {
	var cfg Config
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("priopool: read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("priopool: parse config %s: %w", path, err)
		}
	}
	if err := cfg.applyEnv(os.Getenv); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(getenv func(string) string) error {
	ints := map[string]*int{
		"WORKERS":        &c.Workers,
		"LEVELS":         &c.Levels,
		"RETRY_ATTEMPTS": &c.Retry.Attempts,
	}
	for key, dst := range ints {
		if v := getenv(EnvPrefix + "_" + key); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("priopool: env %s_%s: %w", EnvPrefix, key, err)
			}
			*dst = n
		}
	}

	bools := map[string]*bool{
		"DRAIN_ON_STOP": &c.DrainOnStop,
		"PIN_WORKERS":   &c.PinWorkers,
	}
	for key, dst := range bools {
		if v := getenv(EnvPrefix + "_" + key); v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("priopool: env %s_%s: %w", EnvPrefix, key, err)
			}
			*dst = b
		}
	}

	durs := map[string]*time.Duration{
		"RETRY_INITIAL": &c.Retry.Initial,
		"RETRY_MAX":     &c.Retry.Max,
	}
	for key, dst := range durs {
		if v := getenv(EnvPrefix + "_" + key); v != "" {
			d, err := time.ParseDuration(v)
			if err != nil {
				return fmt.Errorf("priopool: env %s_%s: %w", EnvPrefix, key, err)
			}
			*dst = d
		}
	}

	if v := getenv(EnvPrefix + "_QUEUE"); v != "" {
		c.Queue = v
	}
	return nil
}

// Options converts the config into pool Options. The result still goes
// through FillDefaults and Validate in NewPoolFromOptions.
func (c Config) Options() (Options, error) {
	qt, err := ParseQueueType(c.Queue)
	if err != nil {
		return Options{}, err
	}
	workers := c.Workers
	if workers == 0 {
		workers = -1
	}
	return Options{
		Workers:     workers,
		Levels:      c.Levels,
		QT:          qt,
		DrainOnStop: c.DrainOnStop,
		PinWorkers:  c.PinWorkers,
		Retry: RetryPolicy{
			Attempts: c.Retry.Attempts,
			Initial:  c.Retry.Initial,
			Max:      c.Retry.Max,
		},
	}, nil
}
