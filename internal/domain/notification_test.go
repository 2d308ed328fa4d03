package domain

import (
	"errors"
	"testing"
)

func TestParseNotificationType(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		want    NotificationType
		wantErr bool
	}{
		{name: "valid lowercase", input: "proposal", want: TypeProposal},
		{name: "valid uppercase with spaces", input: " PAYMENT ", want: TypePayment},
		{name: "invalid", input: "invoice", wantErr: true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := ParseNotificationType(tt.input)
			if tt.wantErr {
				if !errors.Is(err, ErrValidation) {
					t.Fatalf("ParseNotificationType() error = %v, want ErrValidation", err)
				}
				return
			}

			if err != nil {
				t.Fatalf("ParseNotificationType() unexpected error = %v", err)
			}
			if got != tt.want {
				t.Fatalf("ParseNotificationType() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestParsePriority(t *testing.T) {
	t.Parallel()

	got, err := ParsePriority(" HIGH ")
	if err != nil {
		t.Fatalf("ParsePriority() unexpected error = %v", err)
	}
	if got != PriorityHigh {
		t.Fatalf("ParsePriority() = %s, want %s", got, PriorityHigh)
	}

	got, err = ParsePriority("")
	if err != nil {
		t.Fatalf("ParsePriority(empty) unexpected error = %v", err)
	}
	if got != PriorityNormal {
		t.Fatalf("ParsePriority(empty) = %s, want %s", got, PriorityNormal)
	}

	_, err = ParsePriority("urgent")
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("ParsePriority() error = %v, want ErrValidation", err)
	}
}

func TestNotificationValidate(t *testing.T) {
	t.Parallel()

	base := Notification{
		Type:     TypeJob,
		Priority: PriorityNormal,
		Title:    "Yeni iş talebi",
		Message:  "Kadıköy'de elektrik arızası",
	}

	tests := []struct {
		name    string
		mutate  func(*Notification)
		wantErr bool
	}{
		{
			name:   "valid notification",
			mutate: func(n *Notification) {},
		},
		{
			name: "message only is enough",
			mutate: func(n *Notification) {
				n.Title = ""
			},
		},
		{
			name: "missing title and message",
			mutate: func(n *Notification) {
				n.Title = " "
				n.Message = ""
			},
			wantErr: true,
		},
		{
			name: "invalid type",
			mutate: func(n *Notification) {
				n.Type = NotificationType("invoice")
			},
			wantErr: true,
		},
		{
			name: "invalid priority",
			mutate: func(n *Notification) {
				n.Priority = Priority("urgent")
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			current := base
			tt.mutate(&current)

			err := current.Validate()
			if tt.wantErr {
				if !errors.Is(err, ErrValidation) {
					t.Fatalf("Validate() error = %v, want ErrValidation", err)
				}
				return
			}

			if err != nil {
				t.Fatalf("Validate() unexpected error = %v", err)
			}
		})
	}
}

func TestCookiePreferencesNormalizeKeepsNecessary(t *testing.T) {
	t.Parallel()

	prefs := CookiePreferences{Necessary: false, Analytics: true}.Normalize()
	if !prefs.Necessary {
		t.Fatal("Necessary should always be true after Normalize()")
	}
	if !prefs.Analytics || prefs.Marketing || prefs.Functional {
		t.Fatalf("Normalize() changed optional categories: %+v", prefs)
	}
	if !prefs.Allows(ConsentNecessary) {
		t.Fatal("necessary category should always be allowed")
	}
	if prefs.Allows(ConsentMarketing) {
		t.Fatal("marketing should not be allowed")
	}
}

func TestParseUrgency(t *testing.T) {
	t.Parallel()

	got, err := ParseUrgency("")
	if err != nil || got != UrgencyNormal {
		t.Fatalf("ParseUrgency(empty) = %s, %v; want normal, nil", got, err)
	}

	if _, err := ParseUrgency("tomorrow"); !errors.Is(err, ErrValidation) {
		t.Fatalf("ParseUrgency() error = %v, want ErrValidation", err)
	}
}
