package notification

import (
	"context"
	"fmt"
	"time"

	"github.com/ustamapp/ustamapp-client/internal/apiclient"
	"github.com/ustamapp/ustamapp-client/internal/domain"
	"go.uber.org/zap"
)

const defaultPollInterval = 30 * time.Second

// Lister fetches the user's notifications from the backend.
type Lister interface {
	Notifications(ctx context.Context) ([]domain.Notification, error)
}

// Poller periodically fetches notifications and delivers the ones the role
// receives. Duplicates are left to the hub.
type Poller struct {
	lister   Lister
	role     domain.UserType
	interval time.Duration
	logger   *zap.Logger
}

var _ Source = (*Poller)(nil)

func NewPoller(lister Lister, role domain.UserType, interval time.Duration, logger *zap.Logger) (*Poller, error) {
	if lister == nil {
		return nil, fmt.Errorf("notification lister is required")
	}
	if interval <= 0 {
		interval = defaultPollInterval
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Poller{
		lister:   lister,
		role:     role,
		interval: interval,
		logger:   logger,
	}, nil
}

func (p *Poller) Run(ctx context.Context, deliver DeliverFunc) error {
	if deliver == nil {
		return fmt.Errorf("deliver func is required")
	}

	if err := p.tick(ctx, deliver); err != nil {
		return err
	}

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := p.tick(ctx, deliver); err != nil {
				return err
			}
		}
	}
}

// tick polls once. Only an expired session stops the poller; the token is
// gone and every later request would fail the same way.
func (p *Poller) tick(ctx context.Context, deliver DeliverFunc) error {
	err := p.poll(ctx, deliver)
	if err == nil || ctx.Err() != nil {
		return nil
	}
	if apiclient.IsUnauthorized(err) {
		p.logger.Warn("notification polling stopped, session expired")
		return err
	}
	p.logger.Error("notification poll failed", zap.Error(err))
	return nil
}

func (p *Poller) poll(ctx context.Context, deliver DeliverFunc) error {
	items, err := p.lister.Notifications(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch notifications: %w", err)
	}

	// Oldest first, so the hub ends up newest first.
	for i := len(items) - 1; i >= 0; i-- {
		n := items[i]
		if !roleAccepts(p.role, n.Type) {
			continue
		}
		if err := deliver(ctx, n, SourcePoll); err != nil {
			p.logger.Warn("failed to deliver polled notification",
				zap.String("notificationId", n.ID),
				zap.Error(err),
			)
		}
	}
	return nil
}
