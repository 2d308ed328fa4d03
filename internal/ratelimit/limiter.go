// Package ratelimit throttles abusive callers of the mock backend, such as
// repeated login attempts from one address.
package ratelimit

import (
	"context"
	"strings"
)

// Limiter reports whether one more hit is allowed for key in the current
// window.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// LimiterFunc adapts a function to Limiter.
type LimiterFunc func(ctx context.Context, key string) (bool, error)

func (f LimiterFunc) Allow(ctx context.Context, key string) (bool, error) { return f(ctx, key) }

// Key builds a limiter key from a scope and a subject, e.g. "login:10.0.0.1".
func Key(scope string, subject string) string {
	scope = strings.ToLower(strings.TrimSpace(scope))
	subject = strings.ToLower(strings.TrimSpace(subject))
	if subject == "" {
		subject = "anonymous"
	}
	return scope + ":" + subject
}

// Unlimited allows every hit.
var Unlimited Limiter = LimiterFunc(func(context.Context, string) (bool, error) { return true, nil })
