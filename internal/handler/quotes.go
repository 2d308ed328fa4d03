package handler

import (
	"fmt"
	"strings"

	"github.com/ustamapp/ustamapp-client/internal/domain"
)

// RequestQuote opens a pending quote from customerID to a catalog craftsman.
func (b *Backend) RequestQuote(customerID int, req domain.QuoteRequest) (domain.Quote, error) {
	description := strings.TrimSpace(req.Description)
	if description == "" {
		return domain.Quote{}, fmt.Errorf("%w: description is required", domain.ErrValidation)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	craftsman, ok := b.craftsmanByID(req.CraftsmanID)
	if !ok {
		return domain.Quote{}, fmt.Errorf("%w: craftsman %d", domain.ErrNotFound, req.CraftsmanID)
	}

	category := strings.TrimSpace(req.Category)
	if category == "" {
		category = craftsman.Category
	}

	b.nextQuoteID++
	quote := domain.Quote{
		ID:          b.nextQuoteID,
		CraftsmanID: craftsman.ID,
		CustomerID:  customerID,
		Category:    category,
		Description: description,
		Status:      domain.QuoteStatusPending,
		CreatedAt:   b.now().UTC(),
	}
	b.quotes = append(b.quotes, quote)
	return quote, nil
}

// Quotes lists what user is part of: requests a customer sent, or requests
// addressed to a craftsman's profile.
func (b *Backend) Quotes(user domain.User) []domain.Quote {
	b.mu.Lock()
	defer b.mu.Unlock()

	profileID := b.profileOf(user.ID)
	out := make([]domain.Quote, 0)
	for _, q := range b.quotes {
		switch user.UserType {
		case domain.UserTypeCustomer:
			if q.CustomerID == user.ID {
				out = append(out, q)
			}
		case domain.UserTypeCraftsman:
			if profileID != 0 && q.CraftsmanID == profileID {
				out = append(out, q)
			}
		}
	}
	return out
}

// RespondToQuote records the craftsman's price or refusal. Only pending
// quotes and quotes sent back for revision accept a response.
func (b *Backend) RespondToQuote(userID int, id int, resp domain.QuoteResponse) (domain.Quote, error) {
	switch resp.ResponseType {
	case domain.QuoteResponseQuote:
		if resp.QuotedPrice <= 0 {
			return domain.Quote{}, fmt.Errorf("%w: quoted_price must be positive", domain.ErrValidation)
		}
	case domain.QuoteResponseDecline:
	default:
		return domain.Quote{}, fmt.Errorf("%w: invalid response type %q", domain.ErrValidation, resp.ResponseType)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	profileID := b.profileOf(userID)
	q, err := b.quoteWhere(id, func(q domain.Quote) bool { return profileID != 0 && q.CraftsmanID == profileID })
	if err != nil {
		return domain.Quote{}, err
	}
	if q.Status != domain.QuoteStatusPending && q.Status != domain.QuoteStatusRevisionRequested {
		return domain.Quote{}, fmt.Errorf("%w: quote %d is %s", domain.ErrConflict, id, q.Status)
	}

	if resp.ResponseType == domain.QuoteResponseDecline {
		q.Status = domain.QuoteStatusDeclined
	} else {
		q.Status = domain.QuoteStatusQuoted
		q.Amount = resp.QuotedPrice
	}
	q.Notes = strings.TrimSpace(resp.Notes)
	return *q, nil
}

// DecideQuote applies the customer's answer to a quoted price.
func (b *Backend) DecideQuote(customerID int, id int, decision domain.QuoteDecision, notes string) (domain.Quote, error) {
	if !decision.IsValid() {
		return domain.Quote{}, fmt.Errorf("%w: invalid quote decision %q", domain.ErrValidation, decision)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	q, err := b.quoteWhere(id, func(q domain.Quote) bool { return q.CustomerID == customerID })
	if err != nil {
		return domain.Quote{}, err
	}
	if q.Status != domain.QuoteStatusQuoted {
		return domain.Quote{}, fmt.Errorf("%w: quote %d is %s", domain.ErrConflict, id, q.Status)
	}

	switch decision {
	case domain.QuoteAccept:
		q.Status = domain.QuoteStatusAccepted
	case domain.QuoteReject:
		q.Status = domain.QuoteStatusRejected
	case domain.QuoteRequestRevise:
		q.Status = domain.QuoteStatusRevisionRequested
	}
	if trimmed := strings.TrimSpace(notes); trimmed != "" {
		q.Notes = trimmed
	}
	return *q, nil
}

// CraftsmanUser returns the account behind a catalog profile. Seeded
// profiles have none.
func (b *Backend) CraftsmanUser(craftsmanID int) (int, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, acc := range b.accounts {
		if acc.craftsmanID != 0 && acc.craftsmanID == craftsmanID {
			return acc.user.ID, true
		}
	}
	return 0, false
}

func (b *Backend) profileOf(userID int) int {
	acc, ok := b.accountByID(userID)
	if !ok {
		return 0
	}
	return acc.craftsmanID
}

// quoteWhere finds quote id among those visible to the caller. Others'
// quotes are reported as missing.
func (b *Backend) quoteWhere(id int, visible func(domain.Quote) bool) (*domain.Quote, error) {
	for i := range b.quotes {
		if b.quotes[i].ID == id && visible(b.quotes[i]) {
			return &b.quotes[i], nil
		}
	}
	return nil, fmt.Errorf("%w: quote %d", domain.ErrNotFound, id)
}
