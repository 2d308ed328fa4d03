package apiclient

import (
	"context"
	"time"

	"github.com/avast/retry-go/v4"
)

// RetryPolicy bounds how often a request is attempted. Attempts counts the
// first try, so the zero value and Attempts=1 both mean no retries.
type RetryPolicy struct {
	Attempts uint
	Delay    time.Duration
}

func NoRetry() RetryPolicy {
	return RetryPolicy{Attempts: 1}
}

func (p RetryPolicy) run(ctx context.Context, fn func() error) error {
	if p.Attempts <= 1 {
		return fn()
	}

	return retry.Do(
		fn,
		retry.Context(ctx),
		retry.Attempts(p.Attempts),
		retry.Delay(p.Delay),
		retry.DelayType(retry.FixedDelay),
		retry.RetryIf(IsTransient),
		retry.LastErrorOnly(true),
	)
}
