package session

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/ustamapp/ustamapp-client/internal/domain"
	"github.com/ustamapp/ustamapp-client/internal/storage"
)

func TestManagerSaveAndCurrent(t *testing.T) {
	t.Parallel()

	store := storage.NewMemoryStore()
	m, err := NewManager(store, nil, nil)
	if err != nil {
		t.Fatalf("NewManager() error = %v", err)
	}

	ctx := context.Background()
	if _, ok, err := m.Current(ctx); err != nil || ok {
		t.Fatalf("Current() on empty store = ok %v err %v", ok, err)
	}

	want := Session{Token: "tok-1", UserType: domain.UserTypeCraftsman, UserID: 42}
	if err := m.Save(ctx, want); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, ok, err := m.Current(ctx)
	if err != nil || !ok {
		t.Fatalf("Current() ok %v err %v", ok, err)
	}
	if got != want {
		t.Fatalf("Current() = %+v, want %+v", got, want)
	}

	token, ok := m.Token(ctx)
	if !ok || token != "tok-1" {
		t.Fatalf("Token() = %q, %v; want tok-1, true", token, ok)
	}
}

func TestManagerSaveRequiresToken(t *testing.T) {
	t.Parallel()

	m, _ := NewManager(storage.NewMemoryStore(), nil, nil)
	err := m.Save(context.Background(), Session{UserID: 1})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("Save() error = %v, want ErrValidation", err)
	}
}

func TestManagerExpireClearsKeysAndRedirects(t *testing.T) {
	t.Parallel()

	store := storage.NewMemoryStore()
	nav := &RecordingNavigator{}
	m, _ := NewManager(store, nav, nil)

	ctx := context.Background()
	_ = m.Save(ctx, Session{Token: "tok", UserType: domain.UserTypeCustomer, UserID: 7})
	_ = storage.SetString(ctx, store, storage.KeyCookieConsent, `{"necessary":true}`)

	m.Expire(ctx)

	for _, key := range []string{storage.KeyAuthToken, storage.KeyUserType, storage.KeyUserID} {
		if _, ok, _ := storage.GetString(ctx, store, key); ok {
			t.Fatalf("key %q should be cleared", key)
		}
	}
	if _, ok, _ := storage.GetString(ctx, store, storage.KeyCookieConsent); !ok {
		t.Fatal("consent should survive session expiry")
	}

	routes := nav.Routes()
	if len(routes) != 1 || routes[0] != LoginRoute {
		t.Fatalf("routes = %v, want [%s]", routes, LoginRoute)
	}
}

func TestManagerSaveDropsStaleUserKeys(t *testing.T) {
	t.Parallel()

	store := storage.NewMemoryStore()
	m, _ := NewManager(store, nil, nil)
	ctx := context.Background()

	_ = m.Save(ctx, Session{Token: "tok-a", UserType: domain.UserTypeCraftsman, UserID: 9})
	if err := m.Save(ctx, Session{Token: "tok-b"}); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, ok, err := m.Current(ctx)
	if err != nil || !ok {
		t.Fatalf("Current() ok %v err %v", ok, err)
	}
	if want := (Session{Token: "tok-b"}); got != want {
		t.Fatalf("Current() = %+v, want %+v", got, want)
	}
}

func TestManagerConcurrentExpireRedirectsOnce(t *testing.T) {
	t.Parallel()

	nav := &RecordingNavigator{}
	m, _ := NewManager(storage.NewMemoryStore(), nav, nil)
	ctx := context.Background()
	_ = m.Save(ctx, Session{Token: "tok", UserType: domain.UserTypeCustomer, UserID: 7})

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.Expire(ctx)
		}()
	}
	wg.Wait()

	if routes := nav.Routes(); len(routes) != 1 {
		t.Fatalf("routes = %v, want one redirect", routes)
	}
	if _, ok, _ := m.Current(ctx); ok {
		t.Fatal("session should be cleared")
	}

	_ = m.Save(ctx, Session{Token: "tok-2"})
	m.Expire(ctx)
	if routes := nav.Routes(); len(routes) != 2 {
		t.Fatalf("routes = %v, want a second redirect after a new sign-in", routes)
	}
}

func TestManagerCurrentIgnoresUnknownUserType(t *testing.T) {
	t.Parallel()

	store := storage.NewMemoryStore()
	ctx := context.Background()
	_ = storage.SetString(ctx, store, storage.KeyAuthToken, "tok")
	_ = storage.SetString(ctx, store, storage.KeyUserType, "admin")
	_ = storage.SetString(ctx, store, storage.KeyUserID, "not-a-number")

	m, _ := NewManager(store, nil, nil)
	got, ok, err := m.Current(ctx)
	if err != nil || !ok {
		t.Fatalf("Current() ok %v err %v", ok, err)
	}
	if got.UserType != "" || got.UserID != 0 {
		t.Fatalf("Current() = %+v, want only token", got)
	}
}
