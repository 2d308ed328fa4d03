// Package consent stores the user's cookie preferences on the device and
// mirrors them to the backend.
package consent

import (
	"context"
	"fmt"
	"time"

	"github.com/ustamapp/ustamapp-client/internal/domain"
	"github.com/ustamapp/ustamapp-client/internal/storage"
	"go.uber.org/zap"
)

// Mirror receives a copy of every saved record. Failures never block the
// local save.
type Mirror interface {
	SaveCookieConsent(ctx context.Context, record domain.ConsentRecord) error
}

type Manager struct {
	store  storage.Store
	mirror Mirror
	logger *zap.Logger
	now    func() time.Time
}

func NewManager(store storage.Store, mirror Mirror, logger *zap.Logger) (*Manager, error) {
	if store == nil {
		return nil, fmt.Errorf("storage is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Manager{
		store:  store,
		mirror: mirror,
		logger: logger,
		now:    time.Now,
	}, nil
}

// Save normalizes prefs, stamps the record and persists it.
func (m *Manager) Save(ctx context.Context, prefs domain.CookiePreferences) (domain.ConsentRecord, error) {
	record := domain.ConsentRecord{
		CookiePreferences: prefs.Normalize(),
		Timestamp:         m.now().UTC(),
		Version:           domain.ConsentVersion,
	}

	if err := storage.SetJSON(ctx, m.store, storage.KeyCookieConsent, record); err != nil {
		return domain.ConsentRecord{}, fmt.Errorf("failed to store cookie consent: %w", err)
	}

	if m.mirror != nil {
		if err := m.mirror.SaveCookieConsent(ctx, record); err != nil {
			m.logger.Warn("failed to mirror cookie consent", zap.Error(err))
		}
	}

	m.logger.Info("cookie consent saved",
		zap.Bool("analytics", record.Analytics),
		zap.Bool("marketing", record.Marketing),
		zap.Bool("functional", record.Functional),
	)
	return record, nil
}

// Load returns the stored record; ok is false until the user has decided.
func (m *Manager) Load(ctx context.Context) (domain.ConsentRecord, bool, error) {
	record, ok, err := storage.GetJSON[domain.ConsentRecord](ctx, m.store, storage.KeyCookieConsent)
	if err != nil || !ok {
		return domain.ConsentRecord{}, false, err
	}
	record.CookiePreferences = record.CookiePreferences.Normalize()
	return record, true, nil
}

func (m *Manager) AcceptAll(ctx context.Context) (domain.ConsentRecord, error) {
	return m.Save(ctx, domain.CookiePreferences{
		Necessary:  true,
		Analytics:  true,
		Marketing:  true,
		Functional: true,
	})
}

func (m *Manager) RejectAll(ctx context.Context) (domain.ConsentRecord, error) {
	return m.Save(ctx, domain.CookiePreferences{Necessary: true})
}

// Allows reports whether category is consented to. Without a stored record
// only necessary cookies are allowed.
func (m *Manager) Allows(ctx context.Context, category domain.ConsentCategory) bool {
	record, ok, err := m.Load(ctx)
	if err != nil {
		m.logger.Warn("failed to load cookie consent", zap.Error(err))
		return category == domain.ConsentNecessary
	}
	if !ok {
		return category == domain.ConsentNecessary
	}
	return record.Allows(category)
}

// Remove forgets the stored decision so the banner is shown again.
func (m *Manager) Remove(ctx context.Context) error {
	return m.store.Remove(ctx, storage.KeyCookieConsent)
}
