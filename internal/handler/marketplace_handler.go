package handler

import (
	"net/url"

	"github.com/gofiber/fiber/v2"
	"github.com/ustamapp/ustamapp-client/internal/domain"
	"github.com/ustamapp/ustamapp-client/internal/search"
	"github.com/ustamapp/ustamapp-client/internal/transport"
	"github.com/ustamapp/ustamapp-client/internal/validation"
)

// Categories returns a bare array; the client accepts unwrapped bodies.
func (h *Handler) Categories(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(h.backend.Categories())
}

func (h *Handler) SearchCraftsmen(c *fiber.Ctx) error {
	query, err := url.ParseQuery(string(c.Request().URI().QueryString()))
	if err != nil {
		return transport.NewError(fiber.StatusBadRequest, transport.CodeValidation, "invalid query string")
	}
	return transport.OK(c, fiber.StatusOK, h.backend.Search(search.ParseFilters(query)))
}

func (h *Handler) GetCraftsman(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	craftsman, err := h.backend.Craftsman(id)
	if err != nil {
		return toHTTPError(err)
	}
	return transport.OK(c, fiber.StatusOK, craftsman)
}

func (h *Handler) CostEstimate(c *fiber.Ctx) error {
	var req domain.CostEstimateRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if req.Urgency == "" {
		req.Urgency = domain.UrgencyNormal
	}
	if err := validation.CostEstimate(req).Err(); err != nil {
		return toHTTPError(err)
	}
	return transport.OK(c, fiber.StatusOK, Estimate(req))
}

func (h *Handler) CreateJob(c *fiber.Ctx) error {
	user := currentUser(c)
	if user.UserType != domain.UserTypeCustomer {
		return transport.NewError(fiber.StatusForbidden, transport.CodeForbidden, "Sadece müşteriler iş talebi oluşturabilir")
	}

	var req domain.JobRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if req.Urgency == "" {
		req.Urgency = domain.UrgencyNormal
	}
	if err := validation.JobRequest(req).Err(); err != nil {
		return toHTTPError(err)
	}

	return transport.OK(c, fiber.StatusCreated, h.backend.CreateJob(user.ID, req))
}

func (h *Handler) ListJobs(c *fiber.Ctx) error {
	status := domain.JobStatus(c.Query("status"))
	if status != "" && !status.IsValid() {
		return transport.NewError(fiber.StatusBadRequest, transport.CodeValidation, "invalid job status")
	}
	return transport.OK(c, fiber.StatusOK, h.backend.Jobs(currentUser(c).ID, status))
}

func (h *Handler) GetJob(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	job, err := h.backend.Job(currentUser(c).ID, id)
	if err != nil {
		return toHTTPError(err)
	}
	return transport.OK(c, fiber.StatusOK, job)
}

type jobStatusRequest struct {
	Status string `json:"status"`
}

func (h *Handler) UpdateJobStatus(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}

	var req jobStatusRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	job, err := h.backend.UpdateJobStatus(currentUser(c).ID, id, domain.JobStatus(req.Status))
	if err != nil {
		return toHTTPError(err)
	}
	return transport.OK(c, fiber.StatusOK, job)
}
