package handler

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/ustamapp/ustamapp-client/internal/domain"
)

const defaultProfileCategory = "Genel"

// Backend is the in-memory state behind the mock routes. It is reset on
// every process start.
type Backend struct {
	mu sync.Mutex

	accounts      map[string]*account
	tokens        map[string]int
	nextUserID    int
	notifications map[int][]domain.Notification
	consents      map[int][]domain.ConsentRecord
	events        []domain.AnalyticsEvent
	jobs          []domain.Job
	nextJobID     int
	quotes        []domain.Quote
	nextQuoteID   int
	craftsmen     []domain.Craftsman
	categories    []domain.Category

	now func() time.Time
}

type account struct {
	user     domain.User
	password string
	// craftsmanID links a craftsman account to its catalog profile.
	craftsmanID int
}

func NewBackend() *Backend {
	return &Backend{
		accounts:      make(map[string]*account),
		tokens:        make(map[string]int),
		notifications: make(map[int][]domain.Notification),
		consents:      make(map[int][]domain.ConsentRecord),
		craftsmen:     seedCraftsmen(),
		categories:    seedCategories(),
		now:           time.Now,
	}
}

// Register creates an account and signs it in.
func (b *Backend) Register(user domain.User, password string) (string, domain.User, error) {
	email := strings.ToLower(strings.TrimSpace(user.Email))
	if email == "" || password == "" {
		return "", domain.User{}, fmt.Errorf("%w: email and password are required", domain.ErrValidation)
	}
	if !user.UserType.IsValid() {
		return "", domain.User{}, fmt.Errorf("%w: invalid user type %q", domain.ErrValidation, user.UserType)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if _, exists := b.accounts[email]; exists {
		return "", domain.User{}, fmt.Errorf("%w: email %s is already registered", domain.ErrConflict, email)
	}

	b.nextUserID++
	user.ID = b.nextUserID
	user.Email = email
	acc := &account{user: user, password: password}
	if user.UserType == domain.UserTypeCraftsman {
		acc.craftsmanID = b.addProfile(user)
	}
	b.accounts[email] = acc

	return b.issueToken(user.ID), user, nil
}

// Login returns a fresh token. ok is false for unknown credentials.
func (b *Backend) Login(email string, password string) (string, domain.User, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	acc, exists := b.accounts[strings.ToLower(strings.TrimSpace(email))]
	if !exists || acc.password != password {
		return "", domain.User{}, false
	}
	return b.issueToken(acc.user.ID), acc.user, true
}

func (b *Backend) Logout(token string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.tokens, token)
}

// Authenticate resolves a bearer token.
func (b *Backend) Authenticate(token string) (domain.User, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	userID, ok := b.tokens[token]
	if !ok {
		return domain.User{}, false
	}
	acc, ok := b.accountByID(userID)
	if !ok {
		return domain.User{}, false
	}
	return acc.user, true
}

func (b *Backend) accountByID(userID int) (*account, bool) {
	for _, acc := range b.accounts {
		if acc.user.ID == userID {
			return acc, true
		}
	}
	return nil, false
}

// addProfile lists a newly registered craftsman in the catalog, unverified
// and without reviews.
func (b *Backend) addProfile(user domain.User) int {
	id := len(b.craftsmen) + 1
	b.craftsmen = append(b.craftsmen, domain.Craftsman{
		ID:       id,
		Name:     strings.TrimSpace(user.FirstName + " " + user.LastName),
		Category: defaultProfileCategory,
	})
	return id
}

// ExpireTokens invalidates every issued token.
func (b *Backend) ExpireTokens() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.tokens = make(map[string]int)
}

func (b *Backend) issueToken(userID int) string {
	token := uuid.NewString()
	b.tokens[token] = userID
	return token
}

// Notify stores n for userID, newest first, filling id and timestamp.
func (b *Backend) Notify(userID int, n domain.Notification) (domain.Notification, error) {
	if userID <= 0 {
		return domain.Notification{}, fmt.Errorf("%w: user_id is required", domain.ErrValidation)
	}
	if n.Priority == "" {
		n.Priority = domain.PriorityNormal
	}
	if err := n.Validate(); err != nil {
		return domain.Notification{}, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if strings.TrimSpace(n.ID) == "" {
		n.ID = uuid.NewString()
	}
	if n.Timestamp.IsZero() {
		n.Timestamp = b.now().UTC()
	}
	n.Read = false
	b.notifications[userID] = append([]domain.Notification{n}, b.notifications[userID]...)
	return n, nil
}

func (b *Backend) Notifications(userID int) []domain.Notification {
	b.mu.Lock()
	defer b.mu.Unlock()

	items := b.notifications[userID]
	out := make([]domain.Notification, len(items))
	copy(out, items)
	return out
}

func (b *Backend) MarkRead(userID int, id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	items := b.notifications[userID]
	for i := range items {
		if items[i].ID == id {
			items[i].Read = true
			return nil
		}
	}
	return fmt.Errorf("%w: notification %s", domain.ErrNotFound, id)
}

func (b *Backend) MarkAllRead(userID int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	items := b.notifications[userID]
	for i := range items {
		items[i].Read = true
	}
}

func (b *Backend) DeleteNotification(userID int, id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	items := b.notifications[userID]
	for i := range items {
		if items[i].ID == id {
			b.notifications[userID] = append(items[:i], items[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%w: notification %s", domain.ErrNotFound, id)
}

// SaveConsent appends a consent record. userID 0 collects anonymous
// visitors.
func (b *Backend) SaveConsent(userID int, record domain.ConsentRecord) domain.ConsentRecord {
	record.CookiePreferences = record.CookiePreferences.Normalize()
	if record.Timestamp.IsZero() {
		record.Timestamp = b.now().UTC()
	}
	if record.Version == "" {
		record.Version = domain.ConsentVersion
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.consents[userID] = append(b.consents[userID], record)
	return record
}

func (b *Backend) Consents(userID int) []domain.ConsentRecord {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]domain.ConsentRecord, len(b.consents[userID]))
	copy(out, b.consents[userID])
	return out
}

func (b *Backend) IngestEvents(events []domain.AnalyticsEvent) int {
	b.mu.Lock()
	defer b.mu.Unlock()

	accepted := 0
	for _, event := range events {
		if strings.TrimSpace(event.Name) == "" || strings.TrimSpace(event.SessionID) == "" {
			continue
		}
		if event.Timestamp.IsZero() {
			event.Timestamp = b.now().UTC()
		}
		b.events = append(b.events, event)
		accepted++
	}
	return accepted
}

type pageStat struct {
	Page  string `json:"page"`
	Views int    `json:"views"`
}

type dashboard struct {
	TotalEvents    int            `json:"total_events"`
	UniqueSessions int            `json:"unique_sessions"`
	EventCounts    map[string]int `json:"event_counts"`
	TopPages       []pageStat     `json:"top_pages"`
}

const topPagesLimit = 10

func (b *Backend) Dashboard() dashboard {
	b.mu.Lock()
	defer b.mu.Unlock()

	sessions := make(map[string]struct{})
	counts := make(map[string]int)
	views := make(map[string]int)
	for _, event := range b.events {
		sessions[event.SessionID] = struct{}{}
		counts[event.Name]++
		if event.Name == domain.EventPageView && event.Page != "" {
			views[event.Page]++
		}
	}

	pages := make([]pageStat, 0, len(views))
	for page, n := range views {
		pages = append(pages, pageStat{Page: page, Views: n})
	}
	sort.Slice(pages, func(i, j int) bool {
		if pages[i].Views != pages[j].Views {
			return pages[i].Views > pages[j].Views
		}
		return pages[i].Page < pages[j].Page
	})
	if len(pages) > topPagesLimit {
		pages = pages[:topPagesLimit]
	}

	return dashboard{
		TotalEvents:    len(b.events),
		UniqueSessions: len(sessions),
		EventCounts:    counts,
		TopPages:       pages,
	}
}

func (b *Backend) CreateJob(customerID int, req domain.JobRequest) domain.Job {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextJobID++
	job := domain.Job{
		ID:          b.nextJobID,
		Title:       strings.TrimSpace(req.Title),
		Description: strings.TrimSpace(req.Description),
		Category:    req.Category,
		City:        req.City,
		Status:      domain.JobStatusOpen,
		Budget:      req.Budget,
		CustomerID:  customerID,
		CreatedAt:   b.now().UTC(),
	}
	b.jobs = append(b.jobs, job)
	return job
}

// Jobs lists the customer's jobs, optionally filtered by status.
func (b *Backend) Jobs(customerID int, status domain.JobStatus) []domain.Job {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]domain.Job, 0)
	for _, job := range b.jobs {
		if job.CustomerID != customerID {
			continue
		}
		if status != "" && job.Status != status {
			continue
		}
		out = append(out, job)
	}
	return out
}

func (b *Backend) Job(customerID int, id int) (domain.Job, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, job := range b.jobs {
		if job.ID == id && job.CustomerID == customerID {
			return job, nil
		}
	}
	return domain.Job{}, fmt.Errorf("%w: job %d", domain.ErrNotFound, id)
}

func (b *Backend) UpdateJobStatus(customerID int, id int, status domain.JobStatus) (domain.Job, error) {
	if !status.IsValid() {
		return domain.Job{}, fmt.Errorf("%w: invalid job status %q", domain.ErrValidation, status)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	for i := range b.jobs {
		if b.jobs[i].ID != id || b.jobs[i].CustomerID != customerID {
			continue
		}
		b.jobs[i].Status = status
		if status == domain.JobStatusCompleted {
			completedAt := b.now().UTC()
			b.jobs[i].CompletedAt = &completedAt
		}
		return b.jobs[i], nil
	}
	return domain.Job{}, fmt.Errorf("%w: job %d", domain.ErrNotFound, id)
}
