package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/ustamapp/ustamapp-client/internal/domain"
)

func newConsentCmd(current appFunc) *cobra.Command {
	consentCmd := &cobra.Command{
		Use:   "consent",
		Short: "Show or change cookie consent",
	}

	consentCmd.AddCommand(
		&cobra.Command{
			Use:   "show",
			Short: "Show the stored consent decision",
			RunE: func(cmd *cobra.Command, _ []string) error {
				record, ok, err := current().consent.Load(cmd.Context())
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintln(cmd.OutOrStdout(), "Henüz çerez tercihi yapılmadı")
					return nil
				}
				printConsent(cmd.OutOrStdout(), record)
				return nil
			},
		},
		&cobra.Command{
			Use:   "accept-all",
			Short: "Accept every cookie category",
			RunE: func(cmd *cobra.Command, _ []string) error {
				record, err := current().consent.AcceptAll(cmd.Context())
				if err != nil {
					return err
				}
				printConsent(cmd.OutOrStdout(), record)
				return nil
			},
		},
		&cobra.Command{
			Use:   "reject-all",
			Short: "Keep only necessary cookies",
			RunE: func(cmd *cobra.Command, _ []string) error {
				record, err := current().consent.RejectAll(cmd.Context())
				if err != nil {
					return err
				}
				printConsent(cmd.OutOrStdout(), record)
				return nil
			},
		},
	)

	return consentCmd
}

func printConsent(out io.Writer, record domain.ConsentRecord) {
	mark := func(v bool) string {
		if v {
			return "açık"
		}
		return "kapalı"
	}

	fmt.Fprintf(out, "Zorunlu:    %s\n", mark(record.Necessary))
	fmt.Fprintf(out, "Analitik:   %s\n", mark(record.Analytics))
	fmt.Fprintf(out, "Pazarlama:  %s\n", mark(record.Marketing))
	fmt.Fprintf(out, "İşlevsel:   %s\n", mark(record.Functional))
	fmt.Fprintf(out, "Sürüm %s, %s\n", record.Version, record.Timestamp.Local().Format("2006-01-02 15:04"))
}
