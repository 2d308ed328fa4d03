package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/ustamapp/ustamapp-client/internal/api"
	"github.com/ustamapp/ustamapp-client/internal/apiclient"
	"github.com/ustamapp/ustamapp-client/internal/domain"
	"github.com/ustamapp/ustamapp-client/internal/format"
	"github.com/ustamapp/ustamapp-client/internal/search"
	"github.com/ustamapp/ustamapp-client/internal/validation"
)

type appFunc func() *app

func newLoginCmd(current appFunc) *cobra.Command {
	var email string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := current()
			a.pageView("/login", "Giriş")
			a.formSubmit("login")

			result, err := a.service.Login(cmd.Context(), api.Credentials{
				Email:    email,
				Password: os.Getenv("USTAM_PASSWORD"),
			})
			if err != nil {
				return userError(err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Hoş geldiniz, %s %s (%s)\n",
				result.User.FirstName, result.User.LastName, result.User.UserType)
			return nil
		},
	}

	cmd.Flags().StringVarP(&email, "email", "e", "", "account email (password is read from USTAM_PASSWORD)")
	_ = cmd.MarkFlagRequired("email")

	return cmd
}

func newLogoutCmd(current appFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and clear the stored session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := current()
			if err := a.service.Logout(cmd.Context()); err != nil {
				a.logger.Warn("remote logout failed, local session cleared")
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Çıkış yapıldı")
			return nil
		},
	}
}

func newProfileCmd(current appFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "profile",
		Short: "Show the signed-in user",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := current()
			a.pageView("/profile", "Profil")

			user, err := a.service.Profile(cmd.Context())
			if err != nil {
				return userError(err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s %s <%s>\n", user.FirstName, user.LastName, user.Email)
			fmt.Fprintf(out, "Rol: %s\n", user.UserType)
			return nil
		},
	}
}

func newSearchCmd(current appFunc) *cobra.Command {
	var filters search.Filters
	var showRecent bool

	cmd := &cobra.Command{
		Use:   "search [keyword]",
		Short: "Search craftsmen",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := current()
			out := cmd.OutOrStdout()

			if showRecent {
				recent, err := a.recent.List(cmd.Context())
				if err != nil {
					return err
				}
				for _, q := range recent {
					fmt.Fprintln(out, q)
				}
				return nil
			}

			if len(args) == 1 {
				filters.Keyword = args[0]
			}
			a.pageView("/search", "Usta Ara")

			result, err := a.service.SearchCraftsmen(cmd.Context(), filters)
			if err != nil {
				return userError(err)
			}
			printCraftsmen(out, result)
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&filters.Category, "category", "", "category name")
	flags.StringVar(&filters.City, "city", "", "city")
	flags.StringVar(&filters.District, "district", "", "district")
	flags.Float64Var(&filters.MinRating, "min-rating", 0, "minimum average rating")
	flags.Float64Var(&filters.MaxPrice, "max-price", 0, "maximum hourly rate")
	flags.BoolVar(&filters.VerifiedOnly, "verified", false, "only verified craftsmen")
	flags.StringVar(&filters.SortBy, "sort", search.SortRating, "rating, reviews, price or distance")
	flags.IntVar(&filters.Page, "page", 1, "result page")
	flags.BoolVar(&showRecent, "recent", false, "list recent searches instead")

	return cmd
}

func printCraftsmen(out io.Writer, result domain.SearchResult) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tAD\tKATEGORİ\tŞEHİR\tPUAN\tÜCRET")
	for _, c := range result.Craftsmen {
		name := c.Name
		if c.Verified {
			name += " ✓"
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%.1f (%d)\t%s\n",
			c.ID, name, c.Category, c.City, c.Rating, c.ReviewCount, format.Currency(c.HourlyRate))
	}
	_ = w.Flush()
	fmt.Fprintf(out, "%d sonuç, sayfa %d/%d\n", result.Total, result.Page, max(result.TotalPages, 1))
}

func newEstimateCmd(current appFunc) *cobra.Command {
	var req domain.CostEstimateRequest
	var urgency string

	cmd := &cobra.Command{
		Use:   "estimate",
		Short: "Ask the cost calculator for a price range",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := current()
			a.pageView("/cost-calculator", "Maliyet Hesaplama")
			a.formSubmit("cost-calculator")

			parsed, err := domain.ParseUrgency(urgency)
			if err != nil {
				return err
			}
			req.Urgency = parsed

			estimate, err := a.service.CostEstimate(cmd.Context(), req)
			if err != nil {
				return userError(err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Tahmini maliyet: %s\n", format.Currency(estimate.EstimatedCost))
			fmt.Fprintf(out, "Aralık: %s\n", format.Range(estimate.MinCost, estimate.MaxCost))
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&req.Category, "category", "", "service category")
	flags.StringVar(&req.AreaType, "area-type", "", "area type, e.g. daire or ofis")
	flags.Float64Var(&req.Area, "area", 0, "area in square metres")
	flags.IntVar(&req.RoomCount, "rooms", 0, "number of rooms")
	flags.StringVar(&req.City, "city", "", "city")
	flags.StringVar(&urgency, "urgency", string(domain.UrgencyNormal), "normal, urgent or emergency")

	return cmd
}

func newJobCmd(current appFunc) *cobra.Command {
	jobCmd := &cobra.Command{
		Use:   "job",
		Short: "Manage job requests",
	}

	var req domain.JobRequest
	var urgency string

	create := &cobra.Command{
		Use:   "create",
		Short: "Create a job request",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := current()
			a.pageView("/jobs/new", "İş Talebi")
			a.formSubmit("job-request")

			parsed, err := domain.ParseUrgency(urgency)
			if err != nil {
				return err
			}
			req.Urgency = parsed

			job, err := a.service.CreateJobRequest(cmd.Context(), req)
			if err != nil {
				return userError(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "İş talebi oluşturuldu: #%d %s (%s)\n", job.ID, job.Title, job.Status)
			return nil
		},
	}

	flags := create.Flags()
	flags.StringVar(&req.Category, "category", "", "service category")
	flags.StringVar(&req.Title, "title", "", "short title")
	flags.StringVar(&req.Description, "description", "", "what needs to be done")
	flags.StringVar(&req.City, "city", "", "city")
	flags.StringVar(&req.District, "district", "", "district")
	flags.StringVar(&req.Address, "address", "", "address")
	flags.Float64Var(&req.Budget, "budget", 0, "budget in TRY")
	flags.StringVar(&urgency, "urgency", string(domain.UrgencyNormal), "normal, urgent or emergency")

	jobCmd.AddCommand(create)
	return jobCmd
}

// userError renders field errors and API failures with their Turkish
// messages.
func userError(err error) error {
	var fieldErrs validation.Errors
	if errors.As(err, &fieldErrs) {
		fields := make([]string, 0, len(fieldErrs))
		for field := range fieldErrs {
			fields = append(fields, field)
		}
		sort.Strings(fields)

		lines := make([]string, 0, len(fields))
		for _, field := range fields {
			lines = append(lines, fmt.Sprintf("  %s: %s", field, fieldErrs[field]))
		}
		return fmt.Errorf("form hatalı:\n%s", strings.Join(lines, "\n"))
	}

	var apiErr *apiclient.APIError
	if errors.As(err, &apiErr) {
		return errors.New(apiErr.Message)
	}
	return err
}
