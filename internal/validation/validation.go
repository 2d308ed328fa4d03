// Package validation checks form input locally before it is sent to the
// backend. Messages are the Turkish strings shown next to each field.
package validation

import (
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/ustamapp/ustamapp-client/internal/domain"
)

const (
	MinDescriptionLength = 20
	MaxDescriptionLength = 2000
	MinTitleLength       = 5
	MaxTitleLength       = 100
	MaxArea              = 10000
	MaxRoomCount         = 50
)

const (
	msgCategoryRequired    = "Kategori seçimi zorunludur"
	msgTitleRequired       = "Başlık zorunludur"
	msgTitleTooShort       = "Başlık en az 5 karakter olmalıdır"
	msgTitleTooLong        = "Başlık en fazla 100 karakter olabilir"
	msgDescriptionRequired = "Açıklama zorunludur"
	msgDescriptionTooShort = "Açıklama en az 20 karakter olmalıdır"
	msgDescriptionTooLong  = "Açıklama en fazla 2000 karakter olabilir"
	msgCityRequired        = "Şehir seçimi zorunludur"
	msgUrgencyInvalid      = "Geçersiz aciliyet seçimi"
	msgBudgetInvalid       = "Bütçe negatif olamaz"
	msgAreaTypeRequired    = "Alan tipi seçimi zorunludur"
	msgAreaInvalid         = "Alan 0 ile 10000 m² arasında olmalıdır"
	msgRoomCountInvalid    = "Oda sayısı 0 ile 50 arasında olmalıdır"
)

// Errors maps a field name to its user-facing message. A nil or empty
// Errors means the input is valid.
type Errors map[string]string

func (e Errors) Error() string {
	if len(e) == 0 {
		return "validation passed"
	}

	fields := make([]string, 0, len(e))
	for field := range e {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		parts = append(parts, fmt.Sprintf("%s: %s", field, e[field]))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Unwrap lets callers match validation failures with domain.ErrValidation.
func (e Errors) Unwrap() error {
	return domain.ErrValidation
}

// Err returns e as an error, or nil when there are no field errors.
func (e Errors) Err() error {
	if len(e) == 0 {
		return nil
	}
	return e
}

func (e Errors) add(field, msg string) {
	if _, exists := e[field]; !exists {
		e[field] = msg
	}
}

// JobRequest validates a job request form.
func JobRequest(req domain.JobRequest) Errors {
	errs := Errors{}

	if strings.TrimSpace(req.Category) == "" {
		errs.add("category", msgCategoryRequired)
	}

	title := strings.TrimSpace(req.Title)
	switch n := utf8.RuneCountInString(title); {
	case n == 0:
		errs.add("title", msgTitleRequired)
	case n < MinTitleLength:
		errs.add("title", msgTitleTooShort)
	case n > MaxTitleLength:
		errs.add("title", msgTitleTooLong)
	}

	description := strings.TrimSpace(req.Description)
	switch n := utf8.RuneCountInString(description); {
	case n == 0:
		errs.add("description", msgDescriptionRequired)
	case n < MinDescriptionLength:
		errs.add("description", msgDescriptionTooShort)
	case n > MaxDescriptionLength:
		errs.add("description", msgDescriptionTooLong)
	}

	if strings.TrimSpace(req.City) == "" {
		errs.add("city", msgCityRequired)
	}
	if req.Urgency != "" && !req.Urgency.IsValid() {
		errs.add("urgency", msgUrgencyInvalid)
	}
	if req.Budget < 0 {
		errs.add("budget", msgBudgetInvalid)
	}

	return errs
}

// CostEstimate validates the cost calculator form.
func CostEstimate(req domain.CostEstimateRequest) Errors {
	errs := Errors{}

	if strings.TrimSpace(req.Category) == "" {
		errs.add("category", msgCategoryRequired)
	}
	if strings.TrimSpace(req.AreaType) == "" {
		errs.add("area_type", msgAreaTypeRequired)
	}
	if req.Urgency != "" && !req.Urgency.IsValid() {
		errs.add("urgency", msgUrgencyInvalid)
	}
	if req.Area < 0 || req.Area > MaxArea {
		errs.add("area", msgAreaInvalid)
	}
	if req.RoomCount < 0 || req.RoomCount > MaxRoomCount {
		errs.add("room_count", msgRoomCountInvalid)
	}

	return errs
}
