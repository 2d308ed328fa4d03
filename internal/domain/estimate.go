package domain

import (
	"fmt"
	"strings"
)

// Urgency is how soon the customer needs the work done.
type Urgency string

const (
	UrgencyNormal    Urgency = "normal"
	UrgencyUrgent    Urgency = "urgent"
	UrgencyEmergency Urgency = "emergency"
)

func (u Urgency) String() string { return string(u) }

func (u Urgency) IsValid() bool {
	switch u {
	case UrgencyNormal, UrgencyUrgent, UrgencyEmergency:
		return true
	}
	return false
}

func ParseUrgency(s string) (Urgency, error) {
	normalized := strings.ToLower(strings.TrimSpace(s))
	if normalized == "" {
		return UrgencyNormal, nil
	}
	u := Urgency(normalized)
	if !u.IsValid() {
		return "", fmt.Errorf("%w: invalid urgency %q", ErrValidation, s)
	}
	return u, nil
}

// CostEstimateRequest is the calculator input sent to the backend.
type CostEstimateRequest struct {
	Category  string  `json:"category"`
	AreaType  string  `json:"area_type"`
	Urgency   Urgency `json:"urgency"`
	Area      float64 `json:"area,omitempty"`
	RoomCount int     `json:"room_count,omitempty"`
	City      string  `json:"city,omitempty"`
	Details   string  `json:"details,omitempty"`
}

// CostEstimate is the calculation result; the algorithm lives server-side.
type CostEstimate struct {
	EstimatedCost float64            `json:"estimated_cost"`
	MinCost       float64            `json:"min_cost"`
	MaxCost       float64            `json:"max_cost"`
	Currency      string             `json:"currency,omitempty"`
	Breakdown     map[string]float64 `json:"breakdown,omitempty"`
}
