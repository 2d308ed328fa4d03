package domain

import "time"

// JobRequest is a customer's request for work in a category.
type JobRequest struct {
	Category      string     `json:"category"`
	Title         string     `json:"title"`
	Description   string     `json:"description"`
	City          string     `json:"city"`
	District      string     `json:"district,omitempty"`
	Address       string     `json:"address,omitempty"`
	Urgency       Urgency    `json:"urgency"`
	Budget        float64    `json:"budget,omitempty"`
	PreferredDate *time.Time `json:"preferred_date,omitempty"`
}

// JobStatus tracks a job through its lifecycle.
type JobStatus string

const (
	JobStatusOpen       JobStatus = "open"
	JobStatusAssigned   JobStatus = "assigned"
	JobStatusInProgress JobStatus = "in_progress"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusCancelled  JobStatus = "cancelled"
)

func (s JobStatus) IsValid() bool {
	switch s {
	case JobStatusOpen, JobStatusAssigned, JobStatusInProgress, JobStatusCompleted, JobStatusCancelled:
		return true
	}
	return false
}

type Job struct {
	ID          int        `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Category    string     `json:"category"`
	City        string     `json:"city"`
	Status      JobStatus  `json:"status"`
	Budget      float64    `json:"budget,omitempty"`
	CustomerID  int        `json:"customer_id,omitempty"`
	CraftsmanID *int       `json:"craftsman_id,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// QuoteDecision is the customer's answer to a craftsman's quote.
type QuoteDecision string

const (
	QuoteAccept        QuoteDecision = "accept"
	QuoteReject        QuoteDecision = "reject"
	QuoteRequestRevise QuoteDecision = "revise"
)

func (d QuoteDecision) IsValid() bool {
	return d == QuoteAccept || d == QuoteReject || d == QuoteRequestRevise
}

// Quote statuses as the backend reports them.
const (
	QuoteStatusPending           = "pending"
	QuoteStatusQuoted            = "quoted"
	QuoteStatusDeclined          = "declined"
	QuoteStatusAccepted          = "accepted"
	QuoteStatusRejected          = "rejected"
	QuoteStatusRevisionRequested = "revision_requested"
)

// Craftsman response types for a quote request.
const (
	QuoteResponseQuote   = "quote"
	QuoteResponseDecline = "decline"
)

type QuoteRequest struct {
	CraftsmanID int     `json:"craftsman_id"`
	Category    string  `json:"category"`
	JobType     string  `json:"job_type,omitempty"`
	Location    string  `json:"location"`
	Description string  `json:"description"`
	Urgency     Urgency `json:"urgency"`
	BudgetRange string  `json:"budget_range,omitempty"`
}

type Quote struct {
	ID          int       `json:"id"`
	CraftsmanID int       `json:"craftsman_id"`
	CustomerID  int       `json:"customer_id"`
	Category    string    `json:"category"`
	Description string    `json:"description"`
	Status      string    `json:"status"`
	Amount      float64   `json:"quoted_price,omitempty"`
	Notes       string    `json:"notes,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

type QuoteResponse struct {
	ResponseType  string  `json:"response_type"`
	QuotedPrice   float64 `json:"quoted_price,omitempty"`
	EstimatedDays int     `json:"estimated_duration_days,omitempty"`
	Notes         string  `json:"notes,omitempty"`
}

type Craftsman struct {
	ID           int      `json:"id"`
	Name         string   `json:"name"`
	BusinessName string   `json:"business_name,omitempty"`
	Category     string   `json:"category"`
	City         string   `json:"city"`
	District     string   `json:"district,omitempty"`
	Rating       float64  `json:"average_rating"`
	ReviewCount  int      `json:"total_reviews"`
	HourlyRate   float64  `json:"hourly_rate,omitempty"`
	Skills       []string `json:"skills,omitempty"`
	Verified     bool     `json:"is_verified"`
}

type SearchResult struct {
	Craftsmen  []Craftsman `json:"craftsmen"`
	Total      int         `json:"total"`
	Page       int         `json:"page"`
	TotalPages int         `json:"pages"`
}

type Category struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	Icon string `json:"icon,omitempty"`
}

type User struct {
	ID        int      `json:"id"`
	Email     string   `json:"email"`
	FirstName string   `json:"first_name"`
	LastName  string   `json:"last_name"`
	Phone     string   `json:"phone,omitempty"`
	UserType  UserType `json:"user_type"`
}

type LegalDocument struct {
	Type      string    `json:"type"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Version   string    `json:"version"`
	UpdatedAt time.Time `json:"updated_at"`
}
