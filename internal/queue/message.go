package queue

import (
	"fmt"
	"strings"

	"github.com/ustamapp/ustamapp-client/internal/domain"
)

// NotificationMessage is the broker payload for a pushed notification.
type NotificationMessage struct {
	UserID       int                 `json:"userId"`
	RequestID    string              `json:"requestId,omitempty"`
	Notification domain.Notification `json:"notification"`
}

func (m NotificationMessage) Validate() error {
	if m.UserID <= 0 {
		return fmt.Errorf("userId is required")
	}
	if strings.TrimSpace(m.Notification.ID) == "" {
		return fmt.Errorf("notification id is required")
	}
	if err := m.Notification.Validate(); err != nil {
		return fmt.Errorf("invalid notification: %w", err)
	}
	return nil
}
