package apiclient

import (
	"context"
	"time"
)

// CallRecord describes one finished request attempt.
type CallRecord struct {
	Endpoint  string
	Method    string
	Status    int
	Duration  time.Duration
	Success   bool
	Code      string
	Attempt   int
	RequestID string
}

// CallObserver is notified after every attempt, successful or not.
// Implementations must return quickly; panics are recovered by the client.
type CallObserver interface {
	ObserveCall(ctx context.Context, record CallRecord)
}

type CallObserverFunc func(ctx context.Context, record CallRecord)

func (f CallObserverFunc) ObserveCall(ctx context.Context, record CallRecord) { f(ctx, record) }

// TokenSource supplies the bearer token for authenticated requests.
type TokenSource interface {
	Token(ctx context.Context) (string, bool)
}

// SessionExpirer is invoked when the backend answers 401.
type SessionExpirer interface {
	Expire(ctx context.Context)
}
