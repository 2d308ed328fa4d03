// Package notification keeps the session's in-app notifications and feeds
// them from polling or push sources.
package notification

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/ustamapp/ustamapp-client/internal/domain"
	"github.com/ustamapp/ustamapp-client/internal/observability"
	"github.com/ustamapp/ustamapp-client/internal/storage"
	"go.uber.org/zap"
)

const defaultSubscriberBuffer = 16

// EventKind says what changed in the hub.
type EventKind string

const (
	EventAdded   EventKind = "added"
	EventRead    EventKind = "read"
	EventAllRead EventKind = "all_read"
	EventDeleted EventKind = "deleted"
	EventCleared EventKind = "cleared"
)

// Event is published to subscribers after every change.
type Event struct {
	Kind         EventKind
	Notification domain.Notification
	Unread       int
}

// Hub is the session-local notification list, newest first. It is safe for
// concurrent use.
type Hub struct {
	store    storage.Store
	notifier DesktopNotifier
	metrics  *observability.Metrics
	logger   *zap.Logger
	now      func() time.Time

	mu     sync.Mutex
	items  []domain.Notification
	unread int
	subs   map[int]chan Event
	nextID int
}

type HubOption func(*Hub)

// WithSettingsStore enables persisted settings; without it defaults apply.
func WithSettingsStore(store storage.Store) HubOption {
	return func(h *Hub) { h.store = store }
}

func WithDesktopNotifier(notifier DesktopNotifier) HubOption {
	return func(h *Hub) { h.notifier = notifier }
}

func WithMetrics(metrics *observability.Metrics) HubOption {
	return func(h *Hub) { h.metrics = metrics }
}

func WithLogger(logger *zap.Logger) HubOption {
	return func(h *Hub) {
		if logger != nil {
			h.logger = logger
		}
	}
}

func NewHub(opts ...HubOption) *Hub {
	h := &Hub{
		logger: zap.NewNop(),
		now:    time.Now,
		subs:   make(map[int]chan Event),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Add stores n at the front of the list. Missing id, timestamp and priority
// are filled in.
func (h *Hub) Add(n domain.Notification) (domain.Notification, error) {
	n = h.complete(n)
	if err := n.Validate(); err != nil {
		return domain.Notification{}, err
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.indexOf(n.ID) >= 0 {
		return domain.Notification{}, fmt.Errorf("%w: notification %q already exists", domain.ErrConflict, n.ID)
	}
	h.insert(n)
	return n, nil
}

// Receive handles an arrival from a push or poll source. Already known ids
// are ignored. A desktop notification is raised when settings allow it.
func (h *Hub) Receive(ctx context.Context, n domain.Notification, source string) error {
	n = h.complete(n)
	if err := n.Validate(); err != nil {
		return err
	}

	h.mu.Lock()
	if h.indexOf(n.ID) >= 0 {
		h.mu.Unlock()
		return nil
	}
	h.insert(n)
	h.mu.Unlock()

	h.metrics.IncNotificationReceived(n.Type.String(), source)
	h.logger.Debug("notification received",
		zap.String("notificationId", n.ID),
		zap.String("type", n.Type.String()),
		zap.String("source", source),
	)

	h.notifyDesktop(ctx, n)
	return nil
}

func (h *Hub) notifyDesktop(ctx context.Context, n domain.Notification) {
	if h.notifier == nil || n.Read {
		return
	}

	settings := DefaultSettings()
	if h.store != nil {
		loaded, err := LoadSettings(ctx, h.store)
		if err != nil {
			h.logger.Warn("failed to load notification settings", zap.Error(err))
		} else {
			settings = loaded
		}
	}
	if !settings.Desktop || !settings.Allows(n.Type) {
		return
	}
	if h.notifier.Permission() != PermissionGranted {
		return
	}

	if err := h.notifier.Notify(ctx, n); err != nil {
		h.logger.Warn("desktop notification failed",
			zap.String("notificationId", n.ID),
			zap.Error(err),
		)
	}
}

// List returns a copy of all notifications, newest first.
func (h *Hub) List() []domain.Notification {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]domain.Notification(nil), h.items...)
}

func (h *Hub) UnreadCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.unread
}

func (h *Hub) MarkAsRead(id string) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	idx := h.indexOf(id)
	if idx < 0 {
		return notFound(id)
	}
	if h.items[idx].Read {
		return nil
	}

	h.items[idx].Read = true
	h.unread--
	h.publish(Event{Kind: EventRead, Notification: h.items[idx]})
	return nil
}

func (h *Hub) MarkAllAsRead() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for i := range h.items {
		h.items[i].Read = true
	}
	h.unread = 0
	h.publish(Event{Kind: EventAllRead})
}

// Delete removes a notification; the unread count drops only when it was
// unread.
func (h *Hub) Delete(id string) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	idx := h.indexOf(id)
	if idx < 0 {
		return notFound(id)
	}

	removed := h.items[idx]
	h.items = append(h.items[:idx], h.items[idx+1:]...)
	if !removed.Read {
		h.unread--
	}
	h.publish(Event{Kind: EventDeleted, Notification: removed})
	return nil
}

func (h *Hub) ClearAll() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.items = nil
	h.unread = 0
	h.publish(Event{Kind: EventCleared})
}

// Subscribe returns a channel of hub events and a cancel func. Events are
// dropped for a subscriber whose buffer is full.
func (h *Hub) Subscribe(buffer int) (<-chan Event, func()) {
	if buffer <= 0 {
		buffer = defaultSubscriberBuffer
	}
	ch := make(chan Event, buffer)

	h.mu.Lock()
	id := h.nextID
	h.nextID++
	h.subs[id] = ch
	h.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, id)
			h.mu.Unlock()
			close(ch)
		})
	}
	return ch, cancel
}

func (h *Hub) complete(n domain.Notification) domain.Notification {
	n.ID = strings.TrimSpace(n.ID)
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if n.Timestamp.IsZero() {
		n.Timestamp = h.now().UTC()
	}
	if n.Priority == "" {
		n.Priority = domain.PriorityNormal
	}
	return n
}

// insert must be called with mu held.
func (h *Hub) insert(n domain.Notification) {
	h.items = append([]domain.Notification{n}, h.items...)
	if !n.Read {
		h.unread++
	}
	h.publish(Event{Kind: EventAdded, Notification: n})
}

// publish must be called with mu held.
func (h *Hub) publish(event Event) {
	event.Unread = h.unread
	h.metrics.SetUnreadNotifications(h.unread)

	for _, ch := range h.subs {
		select {
		case ch <- event:
		default:
		}
	}
}

func (h *Hub) indexOf(id string) int {
	id = strings.TrimSpace(id)
	for i := range h.items {
		if h.items[i].ID == id {
			return i
		}
	}
	return -1
}

func notFound(id string) error {
	return fmt.Errorf("%w: notification %q", domain.ErrNotFound, id)
}
