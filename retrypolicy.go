package priopool

import (
	"time"
)

const (
	defaultAttempts     = 1
	defaultInitialRetry = 200 * time.Millisecond
	defaultMaxRetry     = 5 * time.Second
)

// RetryPolicy describes how many times and how often a task is retried.
// Zero values are treated as "use pool defaults". The pool default is a
// single attempt: nothing is retried unless a task opts in with WithRetry.
type RetryPolicy struct {
	// Attempts is the maximum number of tries for a task.
	Attempts int

	// Initial is the first backoff duration.
	Initial time.Duration

	// Max is the cap for backoff duration.
	Max time.Duration
}

// GetDefaultRP returns a pointer to the default retry policy used by the pool.
func GetDefaultRP() *RetryPolicy {
	rp := RetryPolicy{
		Attempts: defaultAttempts,
		Initial:  defaultInitialRetry,
		Max:      defaultMaxRetry,
	}
	return &rp
}

func (rp *RetryPolicy) fillDefaults() {
	if rp.Attempts <= 0 {
		rp.Attempts = defaultAttempts
	}
	if rp.Initial <= 0 {
		rp.Initial = defaultInitialRetry
	}
	if rp.Max <= 0 {
		// a defaulted cap never undercuts an explicit Initial
		rp.Max = max(defaultMaxRetry, rp.Initial)
	}
}

// merge overrides non-zero fields of base with rp.
func (rp RetryPolicy) merge(base RetryPolicy) RetryPolicy {
	if rp.Attempts > 0 {
		base.Attempts = rp.Attempts
	}
	if rp.Initial > 0 {
		base.Initial = rp.Initial
	}
	if rp.Max > 0 {
		base.Max = rp.Max
	}
	if base.Max < base.Initial {
		base.Max = base.Initial
	}
	return base
}
