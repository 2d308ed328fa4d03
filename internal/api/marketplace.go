package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/ustamapp/ustamapp-client/internal/apiclient"
	"github.com/ustamapp/ustamapp-client/internal/domain"
	"github.com/ustamapp/ustamapp-client/internal/search"
	"github.com/ustamapp/ustamapp-client/internal/validation"
	"go.uber.org/zap"
)

// SearchCraftsmen runs a craftsman search and records the keyword in the
// recent searches.
func (s *Service) SearchCraftsmen(ctx context.Context, filters search.Filters) (domain.SearchResult, error) {
	result, err := call[domain.SearchResult](ctx, s, apiclient.RequestSpec{
		Method:   http.MethodGet,
		Endpoint: "/api/search/craftsmen",
		Query:    filters.Query(),
	})
	if err != nil {
		return domain.SearchResult{}, err
	}

	if keyword := strings.TrimSpace(filters.Keyword); keyword != "" && s.recent != nil {
		if err := s.recent.Add(ctx, keyword); err != nil {
			s.logger.Warn("failed to record recent search", zap.Error(err))
		}
	}
	return result, nil
}

func (s *Service) Categories(ctx context.Context) ([]domain.Category, error) {
	return call[[]domain.Category](ctx, s, apiclient.RequestSpec{
		Method:   http.MethodGet,
		Endpoint: "/api/search/categories",
	})
}

func (s *Service) Craftsman(ctx context.Context, id int) (domain.Craftsman, error) {
	endpoint, err := idPath("/api/search/craftsmen/%d", id)
	if err != nil {
		return domain.Craftsman{}, err
	}
	return call[domain.Craftsman](ctx, s, apiclient.RequestSpec{
		Method:   http.MethodGet,
		Endpoint: endpoint,
	})
}

func (s *Service) RequestQuote(ctx context.Context, req domain.QuoteRequest) (domain.Quote, error) {
	if req.CraftsmanID <= 0 {
		return domain.Quote{}, fmt.Errorf("%w: craftsman is required", domain.ErrValidation)
	}
	if req.Urgency == "" {
		req.Urgency = domain.UrgencyNormal
	}

	return call[domain.Quote](ctx, s, apiclient.RequestSpec{
		Method:       http.MethodPost,
		Endpoint:     "/api/quotes/request",
		Body:         req,
		RequiresAuth: true,
	})
}

func (s *Service) MyQuotes(ctx context.Context) ([]domain.Quote, error) {
	return call[[]domain.Quote](ctx, s, apiclient.RequestSpec{
		Method:       http.MethodGet,
		Endpoint:     "/api/quotes/my-quotes",
		RequiresAuth: true,
	})
}

// RespondToQuote is the craftsman side of a quote.
func (s *Service) RespondToQuote(ctx context.Context, id int, resp domain.QuoteResponse) (domain.Quote, error) {
	endpoint, err := idPath("/api/quotes/%d/respond", id)
	if err != nil {
		return domain.Quote{}, err
	}
	return call[domain.Quote](ctx, s, apiclient.RequestSpec{
		Method:       http.MethodPost,
		Endpoint:     endpoint,
		Body:         resp,
		RequiresAuth: true,
	})
}

// DecideQuote is the customer side of a quote.
func (s *Service) DecideQuote(ctx context.Context, id int, decision domain.QuoteDecision, notes string) (domain.Quote, error) {
	if !decision.IsValid() {
		return domain.Quote{}, fmt.Errorf("%w: invalid quote decision %q", domain.ErrValidation, decision)
	}
	endpoint, err := idPath("/api/quotes/%d/decision", id)
	if err != nil {
		return domain.Quote{}, err
	}

	return call[domain.Quote](ctx, s, apiclient.RequestSpec{
		Method:   http.MethodPost,
		Endpoint: endpoint,
		Body: map[string]string{
			"decision": string(decision),
			"notes":    notes,
		},
		RequiresAuth: true,
	})
}

// CreateJobRequest validates req locally and only then posts it. Invalid
// input is returned as validation.Errors without any request.
func (s *Service) CreateJobRequest(ctx context.Context, req domain.JobRequest) (domain.Job, error) {
	if err := validation.JobRequest(req).Err(); err != nil {
		return domain.Job{}, err
	}
	if req.Urgency == "" {
		req.Urgency = domain.UrgencyNormal
	}
	req.Title = strings.TrimSpace(req.Title)
	req.Description = strings.TrimSpace(req.Description)

	return call[domain.Job](ctx, s, apiclient.RequestSpec{
		Method:       http.MethodPost,
		Endpoint:     "/api/jobs",
		Body:         req,
		RequiresAuth: true,
	})
}

// Jobs lists the caller's jobs, optionally filtered by status.
func (s *Service) Jobs(ctx context.Context, status domain.JobStatus) ([]domain.Job, error) {
	query := url.Values{}
	if status != "" {
		if !status.IsValid() {
			return nil, fmt.Errorf("%w: invalid job status %q", domain.ErrValidation, status)
		}
		query.Set("status", string(status))
	}

	return call[[]domain.Job](ctx, s, apiclient.RequestSpec{
		Method:       http.MethodGet,
		Endpoint:     "/api/jobs",
		Query:        query,
		RequiresAuth: true,
	})
}

func (s *Service) Job(ctx context.Context, id int) (domain.Job, error) {
	endpoint, err := idPath("/api/jobs/%d", id)
	if err != nil {
		return domain.Job{}, err
	}
	return call[domain.Job](ctx, s, apiclient.RequestSpec{
		Method:       http.MethodGet,
		Endpoint:     endpoint,
		RequiresAuth: true,
	})
}

func (s *Service) UpdateJobStatus(ctx context.Context, id int, status domain.JobStatus) (domain.Job, error) {
	if !status.IsValid() {
		return domain.Job{}, fmt.Errorf("%w: invalid job status %q", domain.ErrValidation, status)
	}
	endpoint, err := idPath("/api/jobs/%d/status", id)
	if err != nil {
		return domain.Job{}, err
	}

	return call[domain.Job](ctx, s, apiclient.RequestSpec{
		Method:       http.MethodPut,
		Endpoint:     endpoint,
		Body:         map[string]string{"status": string(status)},
		RequiresAuth: true,
	})
}

// CostEstimate asks the backend calculator for a price range.
func (s *Service) CostEstimate(ctx context.Context, req domain.CostEstimateRequest) (domain.CostEstimate, error) {
	if err := validation.CostEstimate(req).Err(); err != nil {
		return domain.CostEstimate{}, err
	}
	if req.Urgency == "" {
		req.Urgency = domain.UrgencyNormal
	}

	return call[domain.CostEstimate](ctx, s, apiclient.RequestSpec{
		Method:   http.MethodPost,
		Endpoint: "/api/cost-calculator/estimate",
		Body:     req,
	})
}
