// Package handler implements the backend REST contract with in-memory state
// so the client can be developed and tested without the real service.
package handler

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/ustamapp/ustamapp-client/internal/domain"
	"github.com/ustamapp/ustamapp-client/internal/queue"
	"github.com/ustamapp/ustamapp-client/internal/ratelimit"
	"github.com/ustamapp/ustamapp-client/internal/transport"
	"github.com/ustamapp/ustamapp-client/internal/validation"
	"go.uber.org/zap"
)

const (
	msgValidation         = "Lütfen form alanlarını kontrol edin"
	msgUnauthorized       = "Bu işlem için giriş yapmalısınız"
	msgInvalidCredentials = "E-posta veya şifre hatalı"
	msgNotFound           = "Kayıt bulunamadı"
	msgConflict           = "Bu kayıt zaten mevcut"
	msgRateLimited        = "Çok fazla istek gönderdiniz. Lütfen biraz bekleyin."
)

const localUser = "user"

type Handler struct {
	backend   *Backend
	publisher queue.Publisher
	limiter   ratelimit.Limiter
	logger    *zap.Logger
}

type Option func(*Handler)

// WithPublisher pushes created notifications to the user's queue as well.
func WithPublisher(publisher queue.Publisher) Option {
	return func(h *Handler) { h.publisher = publisher }
}

// WithLimiter throttles login and analytics ingest per client address.
func WithLimiter(limiter ratelimit.Limiter) Option {
	return func(h *Handler) {
		if limiter != nil {
			h.limiter = limiter
		}
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(h *Handler) {
		if logger != nil {
			h.logger = logger
		}
	}
}

func NewHandler(backend *Backend, opts ...Option) (*Handler, error) {
	if backend == nil {
		return nil, fmt.Errorf("backend is required")
	}

	h := &Handler{
		backend: backend,
		limiter: ratelimit.Unlimited,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h, nil
}

// RegisterRoutes mounts every /api route on router.
func RegisterRoutes(router fiber.Router, backend *Backend, opts ...Option) error {
	h, err := NewHandler(backend, opts...)
	if err != nil {
		return err
	}

	api := router.Group("/api")

	auth := api.Group("/auth")
	auth.Post("/register", h.Register)
	auth.Post("/login", h.throttle("login"), h.Login)
	auth.Post("/logout", h.requireAuth, h.Logout)
	auth.Get("/profile", h.requireAuth, h.Profile)

	api.Get("/search/categories", h.Categories)
	api.Get("/search/craftsmen", h.SearchCraftsmen)
	api.Get("/search/craftsmen/:id", h.GetCraftsman)
	api.Post("/cost-calculator/estimate", h.CostEstimate)

	quotes := api.Group("/quotes", h.requireAuth)
	quotes.Post("/request", h.RequestQuote)
	quotes.Get("/my-quotes", h.MyQuotes)
	quotes.Post("/:id/respond", h.RespondToQuote)
	quotes.Post("/:id/decision", h.DecideQuote)

	jobs := api.Group("/jobs", h.requireAuth)
	jobs.Post("/", h.CreateJob)
	jobs.Get("/", h.ListJobs)
	jobs.Get("/:id", h.GetJob)
	jobs.Put("/:id/status", h.UpdateJobStatus)

	notifications := api.Group("/notifications")
	notifications.Post("/", h.CreateNotification)
	notifications.Get("/", h.requireAuth, h.ListNotifications)
	notifications.Put("/read-all", h.requireAuth, h.MarkAllNotificationsRead)
	notifications.Put("/:id/read", h.requireAuth, h.MarkNotificationRead)
	notifications.Delete("/:id", h.requireAuth, h.DeleteNotification)

	legal := api.Group("/legal")
	legal.Get("/documents/:type", h.LegalDocument)
	legal.Post("/cookie-consent", h.SaveCookieConsent)
	legal.Get("/consents", h.requireAuth, h.ListConsents)

	analytics := api.Group("/analytics")
	analytics.Post("/events", h.throttle("analytics"), h.IngestEvents)
	analytics.Get("/dashboard", h.requireAuth, h.Dashboard)

	api.Post("/upload/image", h.requireAuth, h.UploadImage)

	return nil
}

func (h *Handler) requireAuth(c *fiber.Ctx) error {
	user, ok := h.authenticate(c)
	if !ok {
		return transport.NewError(fiber.StatusUnauthorized, transport.CodeUnauthorized, msgUnauthorized)
	}
	c.Locals(localUser, user)
	return c.Next()
}

// authenticate resolves the bearer token, if any.
func (h *Handler) authenticate(c *fiber.Ctx) (domain.User, bool) {
	token := bearerToken(c)
	if token == "" {
		return domain.User{}, false
	}
	return h.backend.Authenticate(token)
}

func bearerToken(c *fiber.Ctx) string {
	header := strings.TrimSpace(c.Get(fiber.HeaderAuthorization))
	token, found := strings.CutPrefix(header, "Bearer ")
	if !found {
		return ""
	}
	return strings.TrimSpace(token)
}

func currentUser(c *fiber.Ctx) domain.User {
	user, _ := c.Locals(localUser).(domain.User)
	return user
}

// throttle fails open when the limiter itself is unavailable.
func (h *Handler) throttle(scope string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		allowed, err := h.limiter.Allow(c.UserContext(), ratelimit.Key(scope, c.IP()))
		if err != nil {
			h.logger.Warn("rate limiter unavailable", zap.String("scope", scope), zap.Error(err))
			return c.Next()
		}
		if !allowed {
			return transport.NewError(fiber.StatusTooManyRequests, transport.CodeRateLimited, msgRateLimited)
		}
		return c.Next()
	}
}

func parseBody(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		return transport.NewError(fiber.StatusBadRequest, transport.CodeValidation, "invalid JSON body")
	}
	return nil
}

func paramID(c *fiber.Ctx) (int, error) {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return 0, transport.NewError(fiber.StatusBadRequest, transport.CodeValidation, "invalid id")
	}
	return id, nil
}

func requestID(c *fiber.Ctx) string {
	if value := strings.TrimSpace(c.Get(fiber.HeaderXRequestID)); value != "" {
		return value
	}
	if value, ok := c.Locals("requestid").(string); ok {
		return strings.TrimSpace(value)
	}
	return ""
}

func toHTTPError(err error) error {
	var fieldErrs validation.Errors
	switch {
	case errors.As(err, &fieldErrs):
		return transport.NewError(fiber.StatusBadRequest, transport.CodeValidation, msgValidation).
			WithDetails(map[string]string(fieldErrs))
	case errors.Is(err, domain.ErrValidation):
		return transport.NewError(fiber.StatusBadRequest, transport.CodeValidation, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		return transport.NewError(fiber.StatusNotFound, transport.CodeNotFound, msgNotFound)
	case errors.Is(err, domain.ErrConflict):
		return transport.NewError(fiber.StatusConflict, transport.CodeConflict, msgConflict)
	default:
		return err
	}
}
