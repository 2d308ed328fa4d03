package notification

import (
	"context"

	"github.com/ustamapp/ustamapp-client/internal/domain"
)

// Source names reported in metrics.
const (
	SourcePoll  = "poll"
	SourcePush  = "push"
	SourceLocal = "local"
)

// DeliverFunc hands an arriving notification to the session. Hub.Receive
// satisfies it.
type DeliverFunc func(ctx context.Context, n domain.Notification, source string) error

// Source produces notifications until ctx is done.
type Source interface {
	Run(ctx context.Context, deliver DeliverFunc) error
}

var roleTypes = map[domain.UserType][]domain.NotificationType{
	domain.UserTypeCustomer: {
		domain.TypeMessage,
		domain.TypeJob,
		domain.TypeProposal,
		domain.TypePayment,
		domain.TypeReminder,
		domain.TypeSystem,
	},
	domain.UserTypeCraftsman: {
		domain.TypeMessage,
		domain.TypeJob,
		domain.TypeReview,
		domain.TypePayment,
		domain.TypeReminder,
		domain.TypeSystem,
	},
}

// TypesForRole lists the notification types a role receives. Unknown roles
// only receive system notifications.
func TypesForRole(userType domain.UserType) []domain.NotificationType {
	types, ok := roleTypes[userType]
	if !ok {
		return []domain.NotificationType{domain.TypeSystem}
	}
	return append([]domain.NotificationType(nil), types...)
}

func roleAccepts(userType domain.UserType, t domain.NotificationType) bool {
	for _, allowed := range TypesForRole(userType) {
		if allowed == t {
			return true
		}
	}
	return false
}
