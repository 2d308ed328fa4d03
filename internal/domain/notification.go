package domain

import (
	"fmt"
	"strings"
	"time"
)

// NotificationType is the category of an in-app notification.
type NotificationType string

const (
	TypeMessage  NotificationType = "message"
	TypeJob      NotificationType = "job"
	TypeProposal NotificationType = "proposal"
	TypeReview   NotificationType = "review"
	TypePayment  NotificationType = "payment"
	TypeReminder NotificationType = "reminder"
	TypeSystem   NotificationType = "system"
)

func (t NotificationType) String() string { return string(t) }

func (t NotificationType) IsValid() bool {
	switch t {
	case TypeMessage, TypeJob, TypeProposal, TypeReview, TypePayment, TypeReminder, TypeSystem:
		return true
	}
	return false
}

func ParseNotificationType(s string) (NotificationType, error) {
	nt := NotificationType(strings.ToLower(strings.TrimSpace(s)))
	if !nt.IsValid() {
		return "", fmt.Errorf("%w: invalid notification type %q", ErrValidation, s)
	}
	return nt, nil
}

// Priority represents the display priority of a notification.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityNormal Priority = "normal"
	PriorityHigh   Priority = "high"
)

func (p Priority) String() string { return string(p) }

func (p Priority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityNormal, PriorityHigh:
		return true
	}
	return false
}

func ParsePriority(s string) (Priority, error) {
	normalized := strings.ToLower(strings.TrimSpace(s))
	if normalized == "" {
		return PriorityNormal, nil
	}
	pr := Priority(normalized)
	if !pr.IsValid() {
		return "", fmt.Errorf("%w: invalid priority %q", ErrValidation, s)
	}
	return pr, nil
}

// Notification is a session-local in-app notification record.
type Notification struct {
	ID        string           `json:"id"`
	Type      NotificationType `json:"type"`
	Title     string           `json:"title"`
	Message   string           `json:"message"`
	Timestamp time.Time        `json:"timestamp"`
	Read      bool             `json:"read"`
	Priority  Priority         `json:"priority"`
	ActionURL string           `json:"actionUrl,omitempty"`
}

func (n *Notification) Validate() error {
	if strings.TrimSpace(n.Title) == "" && strings.TrimSpace(n.Message) == "" {
		return fmt.Errorf("%w: title or message is required", ErrValidation)
	}
	if !n.Type.IsValid() {
		return fmt.Errorf("%w: invalid notification type %q", ErrValidation, n.Type)
	}
	if !n.Priority.IsValid() {
		return fmt.Errorf("%w: invalid priority %q", ErrValidation, n.Priority)
	}
	return nil
}

// UserType is the marketplace role of the signed-in user.
type UserType string

const (
	UserTypeCustomer  UserType = "customer"
	UserTypeCraftsman UserType = "craftsman"
)

func (u UserType) String() string { return string(u) }

func (u UserType) IsValid() bool {
	return u == UserTypeCustomer || u == UserTypeCraftsman
}

func ParseUserType(s string) (UserType, error) {
	ut := UserType(strings.ToLower(strings.TrimSpace(s)))
	if !ut.IsValid() {
		return "", fmt.Errorf("%w: invalid user type %q", ErrValidation, s)
	}
	return ut, nil
}
