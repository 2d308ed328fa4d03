package handler

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/ustamapp/ustamapp-client/internal/domain"
	"github.com/ustamapp/ustamapp-client/internal/search"
)

func seedCategories() []domain.Category {
	return []domain.Category{
		{ID: 1, Name: "Elektrik", Icon: "bolt"},
		{ID: 2, Name: "Tesisat", Icon: "droplet"},
		{ID: 3, Name: "Boya", Icon: "brush"},
		{ID: 4, Name: "Marangoz", Icon: "hammer"},
		{ID: 5, Name: "Temizlik", Icon: "sparkles"},
	}
}

func seedCraftsmen() []domain.Craftsman {
	return []domain.Craftsman{
		{ID: 1, Name: "Ahmet Yılmaz", BusinessName: "Yılmaz Elektrik", Category: "Elektrik", City: "İstanbul", District: "Kadıköy", Rating: 4.8, ReviewCount: 124, HourlyRate: 350, Skills: []string{"pano", "aydınlatma"}, Verified: true},
		{ID: 2, Name: "Mehmet Demir", Category: "Tesisat", City: "İstanbul", District: "Üsküdar", Rating: 4.5, ReviewCount: 88, HourlyRate: 300, Skills: []string{"kombi", "su kaçağı"}, Verified: true},
		{ID: 3, Name: "Ayşe Kaya", BusinessName: "Renk Boya", Category: "Boya", City: "Ankara", District: "Çankaya", Rating: 4.9, ReviewCount: 210, HourlyRate: 250, Skills: []string{"iç cephe", "dekoratif"}, Verified: true},
		{ID: 4, Name: "Can Öztürk", Category: "Marangoz", City: "İzmir", District: "Bornova", Rating: 4.2, ReviewCount: 35, HourlyRate: 400, Skills: []string{"mutfak dolabı"}},
		{ID: 5, Name: "Zeynep Arslan", Category: "Temizlik", City: "İstanbul", District: "Beşiktaş", Rating: 4.6, ReviewCount: 64, HourlyRate: 200},
	}
}

func (b *Backend) Categories() []domain.Category {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]domain.Category, len(b.categories))
	copy(out, b.categories)
	return out
}

func (b *Backend) Craftsman(id int) (domain.Craftsman, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	c, ok := b.craftsmanByID(id)
	if !ok {
		return domain.Craftsman{}, fmt.Errorf("%w: craftsman %d", domain.ErrNotFound, id)
	}
	return c, nil
}

func (b *Backend) craftsmanByID(id int) (domain.Craftsman, bool) {
	for _, c := range b.craftsmen {
		if c.ID == id {
			return c, true
		}
	}
	return domain.Craftsman{}, false
}

// Search applies the same filters the client sends as query parameters.
func (b *Backend) Search(f search.Filters) domain.SearchResult {
	b.mu.Lock()
	matches := make([]domain.Craftsman, 0, len(b.craftsmen))
	for _, c := range b.craftsmen {
		if matchesFilters(c, f) {
			matches = append(matches, c)
		}
	}
	b.mu.Unlock()

	sortCraftsmen(matches, f.SortBy)

	page := f.Page
	if page < 1 {
		page = 1
	}
	perPage := f.PerPage
	if perPage < 1 {
		perPage = search.DefaultPerPage
	}

	total := len(matches)
	start := (page - 1) * perPage
	if start > total {
		start = total
	}
	end := start + perPage
	if end > total {
		end = total
	}

	return domain.SearchResult{
		Craftsmen:  matches[start:end],
		Total:      total,
		Page:       page,
		TotalPages: int(math.Ceil(float64(total) / float64(perPage))),
	}
}

func matchesFilters(c domain.Craftsman, f search.Filters) bool {
	if keyword := strings.ToLower(strings.TrimSpace(f.Keyword)); keyword != "" {
		haystack := strings.ToLower(strings.Join(append([]string{c.Name, c.BusinessName, c.Category}, c.Skills...), " "))
		if !strings.Contains(haystack, keyword) {
			return false
		}
	}
	if f.Category != "" && !strings.EqualFold(f.Category, c.Category) {
		return false
	}
	if f.City != "" && !strings.EqualFold(f.City, c.City) {
		return false
	}
	if f.District != "" && !strings.EqualFold(f.District, c.District) {
		return false
	}
	if f.MinRating > 0 && c.Rating < f.MinRating {
		return false
	}
	if f.MaxPrice > 0 && c.HourlyRate > f.MaxPrice {
		return false
	}
	if f.VerifiedOnly && !c.Verified {
		return false
	}
	return true
}

func sortCraftsmen(items []domain.Craftsman, sortBy string) {
	sort.SliceStable(items, func(i, j int) bool {
		switch sortBy {
		case search.SortReviews:
			return items[i].ReviewCount > items[j].ReviewCount
		case search.SortPrice:
			return items[i].HourlyRate < items[j].HourlyRate
		default:
			return items[i].Rating > items[j].Rating
		}
	})
}

// Cost calculator constants. Rates are per square metre.
const (
	defaultRatePerSqm = 50.0
	defaultArea       = 20.0
	perRoomSurcharge  = 250.0
	rangeSpread       = 0.2
	laborShare        = 0.6
)

var ratesPerSqm = map[string]float64{
	"elektrik": 45,
	"tesisat":  55,
	"boya":     50,
	"marangoz": 120,
	"temizlik": 15,
}

var urgencyMultipliers = map[domain.Urgency]float64{
	domain.UrgencyNormal:    1,
	domain.UrgencyUrgent:    1.25,
	domain.UrgencyEmergency: 1.5,
}

// Estimate prices a job from area, room count and urgency. The result is
// rounded to the nearest ten and spread ±20% for the range.
func Estimate(req domain.CostEstimateRequest) domain.CostEstimate {
	rate, ok := ratesPerSqm[strings.ToLower(strings.TrimSpace(req.Category))]
	if !ok {
		rate = defaultRatePerSqm
	}
	area := req.Area
	if area <= 0 {
		area = defaultArea
	}
	multiplier, ok := urgencyMultipliers[req.Urgency]
	if !ok {
		multiplier = 1
	}

	estimate := roundTen((area*rate + float64(req.RoomCount)*perRoomSurcharge) * multiplier)
	return domain.CostEstimate{
		EstimatedCost: estimate,
		MinCost:       roundTen(estimate * (1 - rangeSpread)),
		MaxCost:       roundTen(estimate * (1 + rangeSpread)),
		Currency:      "TRY",
		Breakdown: map[string]float64{
			"labor":     roundTen(estimate * laborShare),
			"materials": roundTen(estimate * (1 - laborShare)),
		},
	}
}

func roundTen(v float64) float64 {
	return math.Round(v/10) * 10
}
