package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/ustamapp/ustamapp-client/internal/apiclient"
	"github.com/ustamapp/ustamapp-client/internal/domain"
)

// Legal document kinds served by /api/legal/documents.
const (
	LegalTerms         = "terms"
	LegalPrivacy       = "privacy"
	LegalKVKK          = "kvkk"
	LegalCookiePolicy  = "cookies"
	LegalUserAgreement = "user-agreement"
)

func (s *Service) LegalDocument(ctx context.Context, kind string) (domain.LegalDocument, error) {
	kind = strings.TrimSpace(kind)
	if kind == "" {
		return domain.LegalDocument{}, fmt.Errorf("%w: document type is required", domain.ErrValidation)
	}
	return call[domain.LegalDocument](ctx, s, apiclient.RequestSpec{
		Method:   http.MethodGet,
		Endpoint: "/api/legal/documents/" + url.PathEscape(kind),
	})
}

// SaveCookieConsent mirrors a consent record to the backend. The bearer token
// is attached when a session exists.
func (s *Service) SaveCookieConsent(ctx context.Context, record domain.ConsentRecord) error {
	return exec(ctx, s, apiclient.RequestSpec{
		Method:       http.MethodPost,
		Endpoint:     "/api/legal/cookie-consent",
		Body:         record,
		RequiresAuth: true,
	})
}

func (s *Service) Consents(ctx context.Context) ([]domain.ConsentRecord, error) {
	return call[[]domain.ConsentRecord](ctx, s, apiclient.RequestSpec{
		Method:       http.MethodGet,
		Endpoint:     "/api/legal/consents",
		RequiresAuth: true,
	})
}

func (s *Service) Notifications(ctx context.Context) ([]domain.Notification, error) {
	return call[[]domain.Notification](ctx, s, apiclient.RequestSpec{
		Method:       http.MethodGet,
		Endpoint:     "/api/notifications",
		RequiresAuth: true,
	})
}

func (s *Service) MarkNotificationRead(ctx context.Context, id string) error {
	endpoint, err := notificationPath(id, "/read")
	if err != nil {
		return err
	}
	return exec(ctx, s, apiclient.RequestSpec{
		Method:       http.MethodPut,
		Endpoint:     endpoint,
		RequiresAuth: true,
	})
}

func (s *Service) MarkAllNotificationsRead(ctx context.Context) error {
	return exec(ctx, s, apiclient.RequestSpec{
		Method:       http.MethodPut,
		Endpoint:     "/api/notifications/read-all",
		RequiresAuth: true,
	})
}

func (s *Service) DeleteNotification(ctx context.Context, id string) error {
	endpoint, err := notificationPath(id, "")
	if err != nil {
		return err
	}
	return exec(ctx, s, apiclient.RequestSpec{
		Method:       http.MethodDelete,
		Endpoint:     endpoint,
		RequiresAuth: true,
	})
}

func notificationPath(id, suffix string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", fmt.Errorf("%w: notification id is required", domain.ErrValidation)
	}
	return "/api/notifications/" + url.PathEscape(id) + suffix, nil
}

type PageStat struct {
	Page  string `json:"page"`
	Views int    `json:"views"`
}

type Dashboard struct {
	TotalEvents    int            `json:"total_events"`
	UniqueSessions int            `json:"unique_sessions"`
	EventCounts    map[string]int `json:"event_counts"`
	TopPages       []PageStat     `json:"top_pages"`
}

func (s *Service) AnalyticsDashboard(ctx context.Context) (Dashboard, error) {
	return call[Dashboard](ctx, s, apiclient.RequestSpec{
		Method:       http.MethodGet,
		Endpoint:     "/api/analytics/dashboard",
		RequiresAuth: true,
	})
}

type UploadResult struct {
	URL      string `json:"url"`
	Filename string `json:"filename"`
}

// UploadImage uploads an image under the "image" form field.
func (s *Service) UploadImage(ctx context.Context, filename string, r io.Reader) (UploadResult, error) {
	var raw json.RawMessage
	err := s.client.Upload(ctx, apiclient.UploadSpec{
		Endpoint:     "/api/upload/image",
		FieldName:    "image",
		FileName:     filename,
		Reader:       r,
		RequiresAuth: true,
	}, &raw)
	if err != nil {
		return UploadResult{}, err
	}

	var out UploadResult
	if err := unwrap(raw, &out); err != nil {
		return UploadResult{}, err
	}
	return out, nil
}
