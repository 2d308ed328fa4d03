// Package storage abstracts device-local key-value storage (the browser's
// localStorage in the web client) behind an injectable interface.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// Well-known keys shared with the web client.
const (
	KeyAuthToken            = "authToken"
	KeyUserType             = "userType"
	KeyUserID               = "userId"
	KeyCookieConsent        = "cookieConsent"
	KeyRecentSearches       = "ustam_recent_searches"
	KeyNotificationSettings = "ustam_notification_settings"
)

// ErrNotFound is returned by Get when the key is absent.
var ErrNotFound = errors.New("storage: key not found")

// Store is a flat string key-value store. Remove on a missing key is not an error.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Remove(ctx context.Context, key string) error
}

// GetString returns the raw value of key; ok is false when it is absent.
func GetString(ctx context.Context, s Store, key string) (string, bool, error) {
	raw, err := s.Get(ctx, key)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return "", false, nil
		}
		return "", false, err
	}
	return string(raw), true, nil
}

func SetString(ctx context.Context, s Store, key string, value string) error {
	return s.Set(ctx, key, []byte(value))
}

// GetJSON decodes the JSON value stored under key into T.
func GetJSON[T any](ctx context.Context, s Store, key string) (T, bool, error) {
	var out T

	raw, err := s.Get(ctx, key)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return out, false, nil
		}
		return out, false, err
	}

	if err := json.Unmarshal(raw, &out); err != nil {
		return out, false, fmt.Errorf("failed to decode %q: %w", key, err)
	}
	return out, true, nil
}

func SetJSON[T any](ctx context.Context, s Store, key string, value T) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode %q: %w", key, err)
	}
	return s.Set(ctx, key, raw)
}

// RemoveAll attempts to remove every key and joins the failures.
func RemoveAll(ctx context.Context, s Store, keys ...string) error {
	var errs []error
	for _, key := range keys {
		if err := s.Remove(ctx, key); err != nil {
			errs = append(errs, fmt.Errorf("failed to remove %q: %w", key, err))
		}
	}
	return errors.Join(errs...)
}
