package session

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/ustamapp/ustamapp-client/internal/domain"
	"github.com/ustamapp/ustamapp-client/internal/storage"
	"go.uber.org/zap"
)

// LoginRoute is where an expired session is sent.
const LoginRoute = "/login"

// Navigator performs a forced navigation, discarding in-progress UI state.
type Navigator interface {
	Navigate(ctx context.Context, route string)
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(ctx context.Context, route string)

func (f NavigatorFunc) Navigate(ctx context.Context, route string) { f(ctx, route) }

// Session is the signed-in user as kept in device storage.
type Session struct {
	Token    string
	UserType domain.UserType
	UserID   int
}

type Manager struct {
	store     storage.Store
	navigator Navigator
	logger    *zap.Logger

	// expired is set by the first Expire after a Save; later 401s from
	// requests already in flight clear storage but do not navigate again.
	mu      sync.Mutex
	expired bool
}

func NewManager(store storage.Store, navigator Navigator, logger *zap.Logger) (*Manager, error) {
	if store == nil {
		return nil, fmt.Errorf("storage is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if navigator == nil {
		navigator = NavigatorFunc(func(context.Context, string) {})
	}

	return &Manager{
		store:     store,
		navigator: navigator,
		logger:    logger,
	}, nil
}

func (m *Manager) Save(ctx context.Context, s Session) error {
	if strings.TrimSpace(s.Token) == "" {
		return fmt.Errorf("%w: token is required", domain.ErrValidation)
	}

	if err := storage.SetString(ctx, m.store, storage.KeyAuthToken, s.Token); err != nil {
		return err
	}
	if s.UserType != "" {
		if err := storage.SetString(ctx, m.store, storage.KeyUserType, s.UserType.String()); err != nil {
			return err
		}
	} else if err := m.store.Remove(ctx, storage.KeyUserType); err != nil {
		return err
	}
	if s.UserID != 0 {
		if err := storage.SetString(ctx, m.store, storage.KeyUserID, strconv.Itoa(s.UserID)); err != nil {
			return err
		}
	} else if err := m.store.Remove(ctx, storage.KeyUserID); err != nil {
		return err
	}

	m.mu.Lock()
	m.expired = false
	m.mu.Unlock()
	return nil
}

// Current returns the stored session; ok is false when no token is stored.
func (m *Manager) Current(ctx context.Context) (Session, bool, error) {
	token, ok, err := storage.GetString(ctx, m.store, storage.KeyAuthToken)
	if err != nil || !ok || token == "" {
		return Session{}, false, err
	}

	s := Session{Token: token}

	if rawType, ok, err := storage.GetString(ctx, m.store, storage.KeyUserType); err != nil {
		return Session{}, false, err
	} else if ok {
		if userType, parseErr := domain.ParseUserType(rawType); parseErr == nil {
			s.UserType = userType
		}
	}

	if rawID, ok, err := storage.GetString(ctx, m.store, storage.KeyUserID); err != nil {
		return Session{}, false, err
	} else if ok {
		if id, convErr := strconv.Atoi(strings.TrimSpace(rawID)); convErr == nil {
			s.UserID = id
		}
	}

	return s, true, nil
}

// Token implements the API client's token source.
func (m *Manager) Token(ctx context.Context) (string, bool) {
	token, ok, err := storage.GetString(ctx, m.store, storage.KeyAuthToken)
	if err != nil {
		m.logger.Warn("failed to read auth token", zap.Error(err))
		return "", false
	}
	return token, ok && token != ""
}

// Clear removes all auth-related keys.
func (m *Manager) Clear(ctx context.Context) error {
	return storage.RemoveAll(ctx, m.store, storage.KeyAuthToken, storage.KeyUserType, storage.KeyUserID)
}

// Expire clears the session and forces navigation to the login route. Only
// the first call since the last Save navigates.
func (m *Manager) Expire(ctx context.Context) {
	m.mu.Lock()
	first := !m.expired
	m.expired = true
	m.mu.Unlock()

	if err := m.Clear(ctx); err != nil {
		m.logger.Error("failed to clear expired session", zap.Error(err))
	}
	if !first {
		return
	}
	m.logger.Info("session expired, redirecting", zap.String("route", LoginRoute))
	m.navigator.Navigate(ctx, LoginRoute)
}

// RecordingNavigator records navigations instead of performing them.
type RecordingNavigator struct {
	mu     sync.Mutex
	routes []string
}

func (r *RecordingNavigator) Navigate(_ context.Context, route string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.routes = append(r.routes, route)
}

func (r *RecordingNavigator) Routes() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.routes...)
}
