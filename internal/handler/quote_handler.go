package handler

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/ustamapp/ustamapp-client/internal/domain"
	"github.com/ustamapp/ustamapp-client/internal/transport"
)

func (h *Handler) RequestQuote(c *fiber.Ctx) error {
	user := currentUser(c)
	if user.UserType != domain.UserTypeCustomer {
		return transport.NewError(fiber.StatusForbidden, transport.CodeForbidden, "Sadece müşteriler teklif isteyebilir")
	}

	var req domain.QuoteRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	quote, err := h.backend.RequestQuote(user.ID, req)
	if err != nil {
		return toHTTPError(err)
	}

	if craftsmanUserID, ok := h.backend.CraftsmanUser(quote.CraftsmanID); ok {
		h.notify(c, craftsmanUserID, domain.Notification{
			Type:      domain.TypeJob,
			Title:     "Yeni teklif talebi",
			Message:   quote.Description,
			Priority:  domain.PriorityHigh,
			ActionURL: quoteURL(quote.ID),
		})
	}

	return transport.OK(c, fiber.StatusCreated, quote)
}

func (h *Handler) MyQuotes(c *fiber.Ctx) error {
	return transport.OK(c, fiber.StatusOK, h.backend.Quotes(currentUser(c)))
}

func (h *Handler) RespondToQuote(c *fiber.Ctx) error {
	user := currentUser(c)
	if user.UserType != domain.UserTypeCraftsman {
		return transport.NewError(fiber.StatusForbidden, transport.CodeForbidden, "Sadece ustalar teklif verebilir")
	}
	id, err := paramID(c)
	if err != nil {
		return err
	}

	var req domain.QuoteResponse
	if err := parseBody(c, &req); err != nil {
		return err
	}

	quote, err := h.backend.RespondToQuote(user.ID, id, req)
	if err != nil {
		return toHTTPError(err)
	}

	title := "Teklifiniz hazır"
	if quote.Status == domain.QuoteStatusDeclined {
		title = "Teklif talebiniz reddedildi"
	}
	h.notify(c, quote.CustomerID, domain.Notification{
		Type:      domain.TypeProposal,
		Title:     title,
		Message:   quote.Description,
		Priority:  domain.PriorityHigh,
		ActionURL: quoteURL(quote.ID),
	})

	return transport.OK(c, fiber.StatusOK, quote)
}

type quoteDecisionRequest struct {
	Decision string `json:"decision"`
	Notes    string `json:"notes"`
}

func (h *Handler) DecideQuote(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}

	var req quoteDecisionRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	quote, err := h.backend.DecideQuote(currentUser(c).ID, id, domain.QuoteDecision(req.Decision), req.Notes)
	if err != nil {
		return toHTTPError(err)
	}

	if craftsmanUserID, ok := h.backend.CraftsmanUser(quote.CraftsmanID); ok {
		h.notify(c, craftsmanUserID, domain.Notification{
			Type:      domain.TypeJob,
			Title:     "Teklifiniz yanıtlandı",
			Message:   quote.Status,
			Priority:  domain.PriorityNormal,
			ActionURL: quoteURL(quote.ID),
		})
	}

	return transport.OK(c, fiber.StatusOK, quote)
}

func quoteURL(id int) string {
	return fmt.Sprintf("/quotes/%d", id)
}
