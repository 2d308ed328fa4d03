package handler

import (
	"path/filepath"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/ustamapp/ustamapp-client/internal/domain"
	"github.com/ustamapp/ustamapp-client/internal/transport"
)

const (
	maxEventsPerBatch = 100
	maxUploadBytes    = 5 << 20
	legalVersion      = "1.0"
)

var legalTitles = map[string]string{
	"terms":          "Kullanım Koşulları",
	"privacy":        "Gizlilik Politikası",
	"kvkk":           "KVKK Aydınlatma Metni",
	"cookies":        "Çerez Politikası",
	"user-agreement": "Kullanıcı Sözleşmesi",
}

var legalUpdatedAt = time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

func (h *Handler) LegalDocument(c *fiber.Ctx) error {
	kind := c.Params("type")
	title, ok := legalTitles[kind]
	if !ok {
		return transport.NewError(fiber.StatusNotFound, transport.CodeNotFound, msgNotFound)
	}

	return transport.OK(c, fiber.StatusOK, domain.LegalDocument{
		Type:      kind,
		Title:     title,
		Content:   title + " metni geliştirme ortamında örnek içeriktir.",
		Version:   legalVersion,
		UpdatedAt: legalUpdatedAt,
	})
}

// SaveCookieConsent accepts anonymous visitors as well as signed-in users.
func (h *Handler) SaveCookieConsent(c *fiber.Ctx) error {
	var record domain.ConsentRecord
	if err := parseBody(c, &record); err != nil {
		return err
	}

	user, _ := h.authenticate(c)
	return transport.OK(c, fiber.StatusCreated, h.backend.SaveConsent(user.ID, record))
}

func (h *Handler) ListConsents(c *fiber.Ctx) error {
	return transport.OK(c, fiber.StatusOK, h.backend.Consents(currentUser(c).ID))
}

type ingestRequest struct {
	Events []domain.AnalyticsEvent `json:"events"`
}

type ingestResponse struct {
	Accepted int `json:"accepted"`
}

func (h *Handler) IngestEvents(c *fiber.Ctx) error {
	var req ingestRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if len(req.Events) > maxEventsPerBatch {
		return transport.NewError(fiber.StatusBadRequest, transport.CodeValidation, "too many events in one batch")
	}

	return transport.OK(c, fiber.StatusAccepted, ingestResponse{Accepted: h.backend.IngestEvents(req.Events)})
}

func (h *Handler) Dashboard(c *fiber.Ctx) error {
	return transport.OK(c, fiber.StatusOK, h.backend.Dashboard())
}

type uploadResponse struct {
	URL      string `json:"url"`
	Filename string `json:"filename"`
}

func (h *Handler) UploadImage(c *fiber.Ctx) error {
	file, err := c.FormFile("image")
	if err != nil {
		return transport.NewError(fiber.StatusBadRequest, transport.CodeValidation, "image field is required")
	}
	if file.Size == 0 || file.Size > maxUploadBytes {
		return transport.NewError(fiber.StatusBadRequest, transport.CodeValidation, "image must be between 1 byte and 5 MB")
	}

	filename := filepath.Base(file.Filename)
	return transport.OK(c, fiber.StatusCreated, uploadResponse{
		URL:      "/uploads/" + uuid.NewString() + filepath.Ext(filename),
		Filename: filename,
	})
}
