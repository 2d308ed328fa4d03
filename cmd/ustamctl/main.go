// Command ustamctl is a terminal client for the UstamApp marketplace API.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var a *app

	root := &cobra.Command{
		Use:           "ustamctl",
		Short:         "UstamApp command line client",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			a, err = newApp(cmd.Context(), cmd.OutOrStdout())
			return err
		},
	}

	// Commands read the app lazily since it is built in PersistentPreRunE.
	current := func() *app { return a }

	root.AddCommand(
		newLoginCmd(current),
		newLogoutCmd(current),
		newProfileCmd(current),
		newSearchCmd(current),
		newEstimateCmd(current),
		newJobCmd(current),
		newConsentCmd(current),
		newNotificationsCmd(current),
	)

	cobra.OnFinalize(func() {
		if a != nil {
			if err := a.close(); err != nil {
				fmt.Fprintln(os.Stderr, "cleanup:", err)
			}
			a = nil
		}
	})

	return root
}
