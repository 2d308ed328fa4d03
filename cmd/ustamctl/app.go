package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ustamapp/ustamapp-client/internal/analytics"
	"github.com/ustamapp/ustamapp-client/internal/api"
	"github.com/ustamapp/ustamapp-client/internal/apiclient"
	"github.com/ustamapp/ustamapp-client/internal/config"
	"github.com/ustamapp/ustamapp-client/internal/consent"
	"github.com/ustamapp/ustamapp-client/internal/domain"
	infraredis "github.com/ustamapp/ustamapp-client/internal/infra/redis"
	"github.com/ustamapp/ustamapp-client/internal/observability"
	"github.com/ustamapp/ustamapp-client/internal/search"
	"github.com/ustamapp/ustamapp-client/internal/session"
	"github.com/ustamapp/ustamapp-client/internal/storage"
	"go.uber.org/zap"
)

const msgSessionExpired = "Oturumunuzun süresi doldu. Tekrar giriş yapın: ustamctl login"

// app holds the client stack shared by every command.
type app struct {
	cfg       *config.Config
	logger    *zap.Logger
	metrics   *observability.Metrics
	store     storage.Store
	sessions  *session.Manager
	client    *apiclient.Client
	service   *api.Service
	consent   *consent.Manager
	recent    *search.RecentSearches
	analytics *analytics.Manager
	out       io.Writer

	analyticsDone chan struct{}
	closers       []func() error
}

func newApp(ctx context.Context, out io.Writer) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger, err := observability.NewLogger(cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	a := &app{
		cfg:     cfg,
		logger:  logger,
		metrics: observability.NewMetrics(),
		out:     out,
	}

	if err := a.openStore(); err != nil {
		_ = a.close()
		return nil, err
	}

	a.sessions, err = session.NewManager(a.store, session.NavigatorFunc(a.navigate), logger)
	if err != nil {
		_ = a.close()
		return nil, err
	}
	a.recent, err = search.NewRecentSearches(a.store)
	if err != nil {
		_ = a.close()
		return nil, err
	}

	clientOpts := []apiclient.Option{
		apiclient.WithTimeout(cfg.RequestTimeout()),
		apiclient.WithRetryPolicy(apiclient.RetryPolicy{Attempts: uint(max(cfg.RetryAttempts, 1)), Delay: cfg.RetryDelay()}),
		apiclient.WithTokenSource(a.sessions),
		apiclient.WithSessionExpirer(a.sessions),
		apiclient.WithMetrics(a.metrics),
		apiclient.WithLogger(logger),
	}

	if cfg.AnalyticsEnabled {
		sender, err := analytics.NewHTTPSender(cfg.APIBaseURL, cfg.RequestTimeout())
		if err != nil {
			_ = a.close()
			return nil, err
		}
		a.analytics, err = analytics.NewManager(sender,
			analytics.WithConsent(a.analyticsAllowed),
			analytics.WithBufferSize(cfg.AnalyticsBuffer),
			analytics.WithMetrics(a.metrics),
			analytics.WithLogger(logger),
		)
		if err != nil {
			_ = a.close()
			return nil, err
		}
		clientOpts = append(clientOpts, apiclient.WithObserver(a.analytics))
	}

	a.client, err = apiclient.New(cfg.APIBaseURL, clientOpts...)
	if err != nil {
		_ = a.close()
		return nil, err
	}
	a.service, err = api.NewService(a.client,
		api.WithSessionStore(a.sessions),
		api.WithSearchRecorder(a.recent),
		api.WithLogger(logger),
	)
	if err != nil {
		_ = a.close()
		return nil, err
	}
	a.consent, err = consent.NewManager(a.store, a.service, logger)
	if err != nil {
		_ = a.close()
		return nil, err
	}

	a.startAnalytics(ctx)
	return a, nil
}

// startAnalytics drains the analytics queue. The consent gate reads
// a.consent, so this runs only once the app is fully wired.
func (a *app) startAnalytics(ctx context.Context) {
	if a.analytics == nil {
		return
	}

	a.analyticsDone = make(chan struct{})
	go func() {
		defer close(a.analyticsDone)
		_ = a.analytics.Run(context.WithoutCancel(ctx))
	}()
}

func (a *app) openStore() error {
	switch a.cfg.StorageBackend {
	case config.StorageMemory:
		a.store = storage.NewMemoryStore()
	case config.StorageRedis:
		rdb, err := infraredis.NewRedis(a.cfg.RedisURL)
		if err != nil {
			return err
		}
		a.closers = append(a.closers, rdb.Close)

		store, err := infraredis.NewRedisStore(rdb, deviceID(), 0)
		if err != nil {
			return err
		}
		a.store = store
	default:
		store, err := storage.OpenKeyringStore(a.cfg.KeyringDir)
		if err != nil {
			return err
		}
		a.store = store
	}
	return nil
}

func deviceID() string {
	if id := strings.TrimSpace(os.Getenv("USTAM_DEVICE_ID")); id != "" {
		return id
	}
	if host, err := os.Hostname(); err == nil && host != "" {
		return host
	}
	return "ustamctl"
}

func (a *app) navigate(_ context.Context, route string) {
	if route == session.LoginRoute {
		fmt.Fprintln(a.out, msgSessionExpired)
	}
}

// analyticsAllowed is evaluated when a batch is sent, never on the request
// path.
func (a *app) analyticsAllowed(ctx context.Context) bool {
	if a.consent == nil {
		return false
	}
	return a.consent.Allows(ctx, domain.ConsentAnalytics)
}

// pageView records the command as a screen visit.
func (a *app) pageView(page string, title string) {
	if a.analytics != nil {
		a.analytics.PageView(page, title)
	}
}

func (a *app) formSubmit(formID string) {
	if a.analytics != nil {
		a.analytics.FormSubmit(formID)
	}
}

// close ends the analytics session, waits for the queue to drain and
// releases connections.
func (a *app) close() error {
	if a.analytics != nil {
		a.analytics.Close()
		if a.analyticsDone != nil {
			<-a.analyticsDone
		}
	}

	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	_ = a.logger.Sync()
	return errors.Join(errs...)
}
