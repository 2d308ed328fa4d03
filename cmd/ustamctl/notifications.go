package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"github.com/ustamapp/ustamapp-client/internal/domain"
	"github.com/ustamapp/ustamapp-client/internal/notification"
	"github.com/ustamapp/ustamapp-client/internal/queue"
	"github.com/ustamapp/ustamapp-client/internal/session"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	consumerPrefetch = 10
	watchBuffer      = 32
)

var errNotSignedIn = errors.New("önce giriş yapın: ustamctl login")

func newNotificationsCmd(current appFunc) *cobra.Command {
	notificationsCmd := &cobra.Command{
		Use:     "notifications",
		Aliases: []string{"n"},
		Short:   "List and follow notifications",
	}

	notificationsCmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List notifications",
			RunE: func(cmd *cobra.Command, _ []string) error {
				a := current()
				a.pageView("/notifications", "Bildirimler")

				items, err := a.service.Notifications(cmd.Context())
				if err != nil {
					return userError(err)
				}
				for _, n := range items {
					printNotification(cmd.OutOrStdout(), n)
				}
				return nil
			},
		},
		&cobra.Command{
			Use:   "read-all",
			Short: "Mark every notification as read",
			RunE: func(cmd *cobra.Command, _ []string) error {
				if err := current().service.MarkAllNotificationsRead(cmd.Context()); err != nil {
					return userError(err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Tüm bildirimler okundu olarak işaretlendi")
				return nil
			},
		},
		newWatchCmd(current),
	)

	return notificationsCmd
}

func newWatchCmd(current appFunc) *cobra.Command {
	var interval time.Duration

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Follow new notifications until interrupted",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := current()
			ctx := cmd.Context()

			s, ok, err := a.sessions.Current(ctx)
			if err != nil {
				return err
			}
			if !ok {
				return errNotSignedIn
			}
			if interval <= 0 {
				interval = a.cfg.NotificationPollInterval()
			}

			notifier := notification.NewLogNotifier(a.logger)
			if _, err := notifier.RequestPermission(ctx); err != nil {
				a.logger.Warn("desktop notification permission request failed", zap.Error(err))
			}
			hub := notification.NewHub(
				notification.WithSettingsStore(a.store),
				notification.WithDesktopNotifier(notifier),
				notification.WithMetrics(a.metrics),
				notification.WithLogger(a.logger),
			)

			sources, err := a.notificationSources(s, interval)
			if err != nil {
				return err
			}

			events, cancel := hub.Subscribe(watchBuffer)
			defer cancel()

			a.pageView("/notifications", "Bildirimler")
			fmt.Fprintf(cmd.OutOrStdout(), "Bildirimler izleniyor (%s aralıkla). Çıkmak için Ctrl+C.\n", interval)

			g, gctx := errgroup.WithContext(ctx)
			for _, source := range sources {
				source := source
				g.Go(func() error {
					return source.Run(gctx, hub.Receive)
				})
			}
			g.Go(func() error {
				return printEvents(gctx, cmd.OutOrStdout(), events)
			})

			return userError(g.Wait())
		},
	}

	cmd.Flags().DurationVar(&interval, "interval", 0, "poll interval (default from USTAM_NOTIFICATION_POLL_SECONDS)")
	return cmd
}

// notificationSources always polls; the RabbitMQ push queue is added when
// configured.
func (a *app) notificationSources(s session.Session, interval time.Duration) ([]notification.Source, error) {
	poller, err := notification.NewPoller(a.service, s.UserType, interval, a.logger)
	if err != nil {
		return nil, err
	}
	sources := []notification.Source{poller}

	if a.cfg.RabbitMQURL == "" {
		return sources, nil
	}

	rabbit, err := queue.NewRabbitMQ(a.cfg.RabbitMQURL)
	if err != nil {
		return nil, err
	}
	consumer := queue.NewRabbitMQConsumer(rabbit, consumerPrefetch, a.logger)
	a.closers = append(a.closers, consumer.Close)

	pushed, err := notification.NewQueueSource(consumer, s.UserID, s.UserType, a.logger)
	if err != nil {
		return nil, err
	}
	return append(sources, pushed), nil
}

func printEvents(ctx context.Context, out io.Writer, events <-chan notification.Event) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-events:
			if !ok {
				return nil
			}
			if event.Kind != notification.EventAdded {
				continue
			}
			printNotification(out, event.Notification)
			fmt.Fprintf(out, "  okunmamış: %d\n", event.Unread)
		}
	}
}

func printNotification(out io.Writer, n domain.Notification) {
	marker := "•"
	if n.Read {
		marker = " "
	}
	fmt.Fprintf(out, "%s [%s] %s %s: %s\n",
		marker, n.Timestamp.Local().Format("15:04"), n.Type, n.Title, n.Message)
}
