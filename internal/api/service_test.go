package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/ustamapp/ustamapp-client/internal/apiclient"
	"github.com/ustamapp/ustamapp-client/internal/domain"
	"github.com/ustamapp/ustamapp-client/internal/format"
	"github.com/ustamapp/ustamapp-client/internal/search"
	"github.com/ustamapp/ustamapp-client/internal/session"
	"github.com/ustamapp/ustamapp-client/internal/storage"
	"github.com/ustamapp/ustamapp-client/internal/validation"
)

type testEnv struct {
	service  *Service
	store    *storage.MemoryStore
	sessions *session.Manager
	nav      *session.RecordingNavigator
	recent   *search.RecentSearches
	hits     *atomic.Int32
}

func newTestEnv(t *testing.T, handler http.HandlerFunc) *testEnv {
	t.Helper()

	hits := &atomic.Int32{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		handler(w, r)
	}))
	t.Cleanup(server.Close)

	store := storage.NewMemoryStore()
	nav := &session.RecordingNavigator{}
	sessions, err := session.NewManager(store, nav, nil)
	if err != nil {
		t.Fatalf("session.NewManager() error = %v", err)
	}
	recent, err := search.NewRecentSearches(store)
	if err != nil {
		t.Fatalf("search.NewRecentSearches() error = %v", err)
	}

	client, err := apiclient.New(server.URL,
		apiclient.WithTokenSource(sessions),
		apiclient.WithSessionExpirer(sessions),
	)
	if err != nil {
		t.Fatalf("apiclient.New() error = %v", err)
	}

	service, err := NewService(client, WithSessionStore(sessions), WithSearchRecorder(recent))
	if err != nil {
		t.Fatalf("NewService() error = %v", err)
	}

	return &testEnv{
		service:  service,
		store:    store,
		sessions: sessions,
		nav:      nav,
		recent:   recent,
		hits:     hits,
	}
}

func writeJSON(t *testing.T, w http.ResponseWriter, status int, body any) {
	t.Helper()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		t.Errorf("encode response: %v", err)
	}
}

func TestCostEstimateFormatsMockedBackendResult(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/cost-calculator/estimate" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}

		var req domain.CostEstimateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.Category != "boya" || req.AreaType != "daire" || req.Urgency != domain.UrgencyNormal {
			t.Errorf("request = %+v", req)
		}

		writeJSON(t, w, http.StatusOK, map[string]any{
			"success": true,
			"data": map[string]any{
				"estimated_cost": 1000,
				"min_cost":       800,
				"max_cost":       1200,
				"currency":       "TRY",
			},
		})
	})

	got, err := env.service.CostEstimate(context.Background(), domain.CostEstimateRequest{
		Category: "boya",
		AreaType: "daire",
		Area:     60,
	})
	if err != nil {
		t.Fatalf("CostEstimate() error = %v", err)
	}

	if s := format.Currency(got.EstimatedCost); s != "₺1.000" {
		t.Fatalf("Currency(estimated) = %q, want ₺1.000", s)
	}
	if s := format.Range(got.MinCost, got.MaxCost); s != "₺800 - ₺1.200" {
		t.Fatalf("Range() = %q, want ₺800 - ₺1.200", s)
	}
}

func TestCreateJobRequestRejectsShortDescriptionWithoutRequest(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusCreated)
	})

	_, err := env.service.CreateJobRequest(context.Background(), domain.JobRequest{
		Category:    "tesisat",
		Title:       "Kombi bakımı",
		Description: "0123456789",
		City:        "İzmir",
	})

	var fieldErrs validation.Errors
	if !errors.As(err, &fieldErrs) {
		t.Fatalf("CreateJobRequest() error = %v, want validation.Errors", err)
	}
	if got := fieldErrs["description"]; got != "Açıklama en az 20 karakter olmalıdır" {
		t.Fatalf("description error = %q", got)
	}
	if got := env.hits.Load(); got != 0 {
		t.Fatalf("server hits = %d, want 0", got)
	}
}

func TestCreateJobRequestPostsValidInput(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok" {
			t.Errorf("Authorization = %q", r.Header.Get("Authorization"))
		}
		var req domain.JobRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		writeJSON(t, w, http.StatusCreated, map[string]any{
			"success": true,
			"data":    map[string]any{"id": 31, "title": req.Title, "status": "open"},
		})
	})
	ctx := context.Background()
	_ = env.sessions.Save(ctx, session.Session{Token: "tok"})

	job, err := env.service.CreateJobRequest(ctx, domain.JobRequest{
		Category:    "tesisat",
		Title:       "  Kombi bakımı  ",
		Description: "Yıllık kombi bakımı ve petek temizliği yapılacak.",
		City:        "İzmir",
	})
	if err != nil {
		t.Fatalf("CreateJobRequest() error = %v", err)
	}
	if job.ID != 31 || job.Title != "Kombi bakımı" || job.Status != domain.JobStatusOpen {
		t.Fatalf("job = %+v", job)
	}
}

func TestLoginStoresSession(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, func(w http.ResponseWriter, r *http.Request) {
		var creds Credentials
		_ = json.NewDecoder(r.Body).Decode(&creds)
		if creds.Email != "ayse@example.com" {
			t.Errorf("email = %q", creds.Email)
		}
		writeJSON(t, w, http.StatusOK, map[string]any{
			"success": true,
			"data": map[string]any{
				"access_token": "jwt-1",
				"user":         map[string]any{"id": 5, "email": creds.Email, "user_type": "craftsman"},
			},
		})
	})

	ctx := context.Background()
	result, err := env.service.Login(ctx, Credentials{Email: " ayse@example.com ", Password: "secret"})
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if result.Token != "jwt-1" {
		t.Fatalf("token = %q", result.Token)
	}

	got, ok, err := env.sessions.Current(ctx)
	if err != nil || !ok {
		t.Fatalf("Current() ok %v err %v", ok, err)
	}
	want := session.Session{Token: "jwt-1", UserType: domain.UserTypeCraftsman, UserID: 5}
	if got != want {
		t.Fatalf("session = %+v, want %+v", got, want)
	}
}

func TestLogoutClearsSessionEvenWhenBackendFails(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(t, w, http.StatusInternalServerError, map[string]any{"success": false, "message": "down"})
	})
	ctx := context.Background()
	_ = env.sessions.Save(ctx, session.Session{Token: "tok", UserID: 3})

	err := env.service.Logout(ctx)
	if apiclient.StatusOf(err) != http.StatusInternalServerError {
		t.Fatalf("Logout() error = %v, want 500", err)
	}
	if _, ok, _ := env.sessions.Current(ctx); ok {
		t.Fatal("session should be cleared")
	}
}

func TestUnauthorizedClearsSessionAndRedirectsOnce(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(t, w, http.StatusUnauthorized, map[string]any{"success": false, "message": "expired"})
	})
	ctx := context.Background()
	_ = env.sessions.Save(ctx, session.Session{Token: "tok", UserType: domain.UserTypeCustomer, UserID: 3})

	_, err := env.service.Profile(ctx)
	if !apiclient.IsUnauthorized(err) {
		t.Fatalf("Profile() error = %v, want UNAUTHORIZED", err)
	}

	for _, key := range []string{storage.KeyAuthToken, storage.KeyUserType, storage.KeyUserID} {
		if _, ok, _ := storage.GetString(ctx, env.store, key); ok {
			t.Fatalf("key %q should be cleared", key)
		}
	}
	if routes := env.nav.Routes(); len(routes) != 1 || routes[0] != session.LoginRoute {
		t.Fatalf("routes = %v", routes)
	}
}

func TestEnvelopeFailureOnSuccessStatus(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(t, w, http.StatusOK, map[string]any{
			"success": false,
			"message": "Usta bulunamadı",
			"code":    "CRAFTSMAN_NOT_FOUND",
		})
	})

	_, err := env.service.Craftsman(context.Background(), 7)

	var apiErr *apiclient.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("Craftsman() error = %v, want *APIError", err)
	}
	if apiErr.Code != "CRAFTSMAN_NOT_FOUND" || apiErr.Message != "Usta bulunamadı" {
		t.Fatalf("APIError = %+v", apiErr)
	}
}

func TestCategoriesAcceptsBareArray(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(t, w, http.StatusOK, []map[string]any{{"id": 1, "name": "Elektrik"}, {"id": 2, "name": "Tesisat"}})
	})

	got, err := env.service.Categories(context.Background())
	if err != nil {
		t.Fatalf("Categories() error = %v", err)
	}
	if len(got) != 2 || got[1].Name != "Tesisat" {
		t.Fatalf("Categories() = %+v", got)
	}
}

func TestSearchCraftsmenRecordsKeyword(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("q") != "boyacı" || r.URL.Query().Get("city") != "Bursa" {
			t.Errorf("query = %s", r.URL.RawQuery)
		}
		writeJSON(t, w, http.StatusOK, map[string]any{
			"success": true,
			"data":    map[string]any{"craftsmen": []any{map[string]any{"id": 1, "name": "Mehmet"}}, "total": 1, "page": 1, "pages": 1},
		})
	})
	ctx := context.Background()

	result, err := env.service.SearchCraftsmen(ctx, search.Filters{Keyword: "boyacı", City: "Bursa"})
	if err != nil {
		t.Fatalf("SearchCraftsmen() error = %v", err)
	}
	if result.Total != 1 || len(result.Craftsmen) != 1 {
		t.Fatalf("result = %+v", result)
	}

	recent, _ := env.recent.List(ctx)
	if len(recent) != 1 || recent[0] != "boyacı" {
		t.Fatalf("recent = %v", recent)
	}
}

func TestNotificationEndpoints(t *testing.T) {
	t.Parallel()

	var (
		mu    sync.Mutex
		paths []string
	)
	env := newTestEnv(t, func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		paths = append(paths, r.Method+" "+r.URL.Path)
		mu.Unlock()
		writeJSON(t, w, http.StatusOK, map[string]any{"success": true})
	})
	ctx := context.Background()

	if err := env.service.MarkNotificationRead(ctx, "n-1"); err != nil {
		t.Fatalf("MarkNotificationRead() error = %v", err)
	}
	if err := env.service.MarkAllNotificationsRead(ctx); err != nil {
		t.Fatalf("MarkAllNotificationsRead() error = %v", err)
	}
	if err := env.service.DeleteNotification(ctx, "n-2"); err != nil {
		t.Fatalf("DeleteNotification() error = %v", err)
	}
	if err := env.service.DeleteNotification(ctx, " "); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("DeleteNotification(blank) error = %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	want := "PUT /api/notifications/n-1/read,PUT /api/notifications/read-all,DELETE /api/notifications/n-2"
	if got := strings.Join(paths, ","); got != want {
		t.Fatalf("paths = %s, want %s", got, want)
	}
}

func TestUploadImageUnwrapsEnvelope(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, func(w http.ResponseWriter, r *http.Request) {
		if _, _, err := r.FormFile("image"); err != nil {
			t.Errorf("FormFile() error = %v", err)
		}
		writeJSON(t, w, http.StatusOK, map[string]any{
			"success": true,
			"data":    map[string]any{"url": "/uploads/a.jpg", "filename": "a.jpg"},
		})
	})

	got, err := env.service.UploadImage(context.Background(), "a.jpg", strings.NewReader("jpeg"))
	if err != nil {
		t.Fatalf("UploadImage() error = %v", err)
	}
	if got.URL != "/uploads/a.jpg" {
		t.Fatalf("UploadImage() = %+v", got)
	}
}

func TestIDValidation(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	ctx := context.Background()

	if _, err := env.service.Job(ctx, 0); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("Job(0) error = %v", err)
	}
	if _, err := env.service.DecideQuote(ctx, 1, "maybe", ""); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("DecideQuote() error = %v", err)
	}
	if _, err := env.service.UpdateJobStatus(ctx, 1, "done"); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("UpdateJobStatus() error = %v", err)
	}
	if got := env.hits.Load(); got != 0 {
		t.Fatalf("server hits = %d, want 0", got)
	}
}
