package domain

import (
	"fmt"
	"strings"
	"time"
)

// ConsentVersion is stamped on every stored consent record.
const ConsentVersion = "1.0"

// ConsentCategory names a cookie category a user can opt into.
type ConsentCategory string

const (
	ConsentNecessary  ConsentCategory = "necessary"
	ConsentAnalytics  ConsentCategory = "analytics"
	ConsentMarketing  ConsentCategory = "marketing"
	ConsentFunctional ConsentCategory = "functional"
)

func ParseConsentCategory(s string) (ConsentCategory, error) {
	c := ConsentCategory(strings.ToLower(strings.TrimSpace(s)))
	switch c {
	case ConsentNecessary, ConsentAnalytics, ConsentMarketing, ConsentFunctional:
		return c, nil
	}
	return "", fmt.Errorf("%w: invalid consent category %q", ErrValidation, s)
}

// CookiePreferences holds the per-category consent booleans.
type CookiePreferences struct {
	Necessary  bool `json:"necessary"`
	Analytics  bool `json:"analytics"`
	Marketing  bool `json:"marketing"`
	Functional bool `json:"functional"`
}

// Normalize returns a copy with Necessary forced on; it is not user-editable.
func (p CookiePreferences) Normalize() CookiePreferences {
	p.Necessary = true
	return p
}

func (p CookiePreferences) Allows(category ConsentCategory) bool {
	switch category {
	case ConsentNecessary:
		return true
	case ConsentAnalytics:
		return p.Analytics
	case ConsentMarketing:
		return p.Marketing
	case ConsentFunctional:
		return p.Functional
	}
	return false
}

// ConsentRecord is the persisted form of a user's cookie decision.
type ConsentRecord struct {
	CookiePreferences
	Timestamp time.Time `json:"timestamp"`
	Version   string    `json:"version"`
}
