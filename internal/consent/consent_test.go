package consent

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ustamapp/ustamapp-client/internal/domain"
	"github.com/ustamapp/ustamapp-client/internal/storage"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type fakeMirror struct {
	saveFn func(ctx context.Context, record domain.ConsentRecord) error
}

func (f *fakeMirror) SaveCookieConsent(ctx context.Context, record domain.ConsentRecord) error {
	if f.saveFn != nil {
		return f.saveFn(ctx, record)
	}
	return nil
}

func fixedNow() time.Time {
	return time.Date(2026, 3, 1, 10, 30, 0, 0, time.UTC)
}

func TestManagerSaveRoundTrip(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := storage.NewMemoryStore()

	var mirrored domain.ConsentRecord
	m, err := NewManager(store, &fakeMirror{saveFn: func(_ context.Context, r domain.ConsentRecord) error {
		mirrored = r
		return nil
	}}, nil)
	if err != nil {
		t.Fatalf("NewManager() error = %v", err)
	}
	m.now = fixedNow

	saved, err := m.Save(ctx, domain.CookiePreferences{Necessary: false, Analytics: true, Marketing: false, Functional: true})
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if !saved.Necessary {
		t.Fatal("Save() must force Necessary")
	}
	if saved.Version != domain.ConsentVersion || !saved.Timestamp.Equal(fixedNow()) {
		t.Fatalf("Save() = %+v", saved)
	}
	if mirrored.CookiePreferences != saved.CookiePreferences {
		t.Fatalf("mirrored = %+v, want %+v", mirrored, saved)
	}

	loaded, ok, err := m.Load(ctx)
	if err != nil || !ok {
		t.Fatalf("Load() ok %v err %v", ok, err)
	}
	want := domain.CookiePreferences{Necessary: true, Analytics: true, Marketing: false, Functional: true}
	if loaded.CookiePreferences != want {
		t.Fatalf("Load() prefs = %+v, want %+v", loaded.CookiePreferences, want)
	}
	if !loaded.Timestamp.Equal(fixedNow()) || loaded.Version != "1.0" {
		t.Fatalf("Load() = %+v", loaded)
	}
}

func TestManagerLoadReturnsLatestOfConsecutiveSaves(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	m, err := NewManager(storage.NewMemoryStore(), nil, nil)
	if err != nil {
		t.Fatalf("NewManager() error = %v", err)
	}

	first := fixedNow()
	second := first.Add(90 * time.Second)
	clock := []time.Time{first, second}
	m.now = func() time.Time {
		now := clock[0]
		clock = clock[1:]
		return now
	}

	if _, err := m.Save(ctx, domain.CookiePreferences{Analytics: true, Marketing: true, Functional: true}); err != nil {
		t.Fatalf("first Save() error = %v", err)
	}
	latest, err := m.Save(ctx, domain.CookiePreferences{Analytics: false, Marketing: true, Functional: false})
	if err != nil {
		t.Fatalf("second Save() error = %v", err)
	}

	loaded, ok, err := m.Load(ctx)
	if err != nil || !ok {
		t.Fatalf("Load() ok %v err %v", ok, err)
	}
	want := domain.CookiePreferences{Necessary: true, Analytics: false, Marketing: true, Functional: false}
	if loaded.CookiePreferences != want || latest.CookiePreferences != want {
		t.Fatalf("Load() prefs = %+v, want %+v", loaded.CookiePreferences, want)
	}
	if !loaded.Timestamp.Equal(second) || loaded.Version != domain.ConsentVersion {
		t.Fatalf("Load() = %+v, want timestamp %s version %s", loaded, second, domain.ConsentVersion)
	}
}

func TestManagerLoadNormalizesTamperedRecord(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := storage.NewMemoryStore()
	_ = storage.SetString(ctx, store, storage.KeyCookieConsent, `{"necessary":false,"analytics":true,"version":"1.0"}`)

	m, _ := NewManager(store, nil, nil)
	got, ok, err := m.Load(ctx)
	if err != nil || !ok {
		t.Fatalf("Load() ok %v err %v", ok, err)
	}
	if !got.Necessary || !got.Analytics {
		t.Fatalf("Load() = %+v", got)
	}
}

func TestManagerMirrorFailureIsLogged(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zap.WarnLevel)
	m, _ := NewManager(storage.NewMemoryStore(), &fakeMirror{saveFn: func(context.Context, domain.ConsentRecord) error {
		return errors.New("backend down")
	}}, zap.New(core))

	if _, err := m.RejectAll(context.Background()); err != nil {
		t.Fatalf("RejectAll() error = %v", err)
	}
	if logs.FilterMessage("failed to mirror cookie consent").Len() != 1 {
		t.Fatalf("expected mirror failure warning, got %v", logs.All())
	}
}

func TestManagerAllows(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	m, _ := NewManager(storage.NewMemoryStore(), nil, nil)

	if m.Allows(ctx, domain.ConsentAnalytics) {
		t.Fatal("analytics should be denied before any decision")
	}
	if !m.Allows(ctx, domain.ConsentNecessary) {
		t.Fatal("necessary should always be allowed")
	}

	if _, err := m.AcceptAll(ctx); err != nil {
		t.Fatalf("AcceptAll() error = %v", err)
	}
	for _, c := range []domain.ConsentCategory{domain.ConsentAnalytics, domain.ConsentMarketing, domain.ConsentFunctional} {
		if !m.Allows(ctx, c) {
			t.Fatalf("Allows(%s) = false after AcceptAll", c)
		}
	}

	if _, err := m.RejectAll(ctx); err != nil {
		t.Fatalf("RejectAll() error = %v", err)
	}
	if m.Allows(ctx, domain.ConsentMarketing) {
		t.Fatal("marketing should be denied after RejectAll")
	}

	if err := m.Remove(ctx); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	if _, ok, _ := m.Load(ctx); ok {
		t.Fatal("Load() after Remove should report no decision")
	}
}
