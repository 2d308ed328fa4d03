package notification

import (
	"context"
	"sync"

	"github.com/ustamapp/ustamapp-client/internal/domain"
	"go.uber.org/zap"
)

// Permission mirrors the platform notification permission states.
type Permission string

const (
	PermissionDefault Permission = "default"
	PermissionGranted Permission = "granted"
	PermissionDenied  Permission = "denied"
)

// DesktopNotifier raises system notifications.
type DesktopNotifier interface {
	Permission() Permission
	RequestPermission(ctx context.Context) (Permission, error)
	Notify(ctx context.Context, n domain.Notification) error
}

// LogNotifier writes notifications to the log. It is used by the CLI, where
// the terminal is the only display.
type LogNotifier struct {
	logger *zap.Logger

	mu         sync.Mutex
	permission Permission
}

var _ DesktopNotifier = (*LogNotifier)(nil)

func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogNotifier{logger: logger, permission: PermissionDefault}
}

func (l *LogNotifier) Permission() Permission {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.permission
}

// RequestPermission grants unless the permission was already denied.
func (l *LogNotifier) RequestPermission(context.Context) (Permission, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.permission == PermissionDefault {
		l.permission = PermissionGranted
	}
	return l.permission, nil
}

func (l *LogNotifier) Notify(_ context.Context, n domain.Notification) error {
	l.logger.Info(n.Title,
		zap.String("notificationId", n.ID),
		zap.String("type", n.Type.String()),
		zap.String("priority", n.Priority.String()),
		zap.String("message", n.Message),
		zap.String("actionUrl", n.ActionURL),
	)
	return nil
}
