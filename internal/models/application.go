package models

import (
	"strings"
	"time"
)

// ApplicationStatus captures the review state of a competition application.
type ApplicationStatus string

const (
	ApplicationStatusApproved ApplicationStatus = "approved"
	ApplicationStatusPending  ApplicationStatus = "pending"
	ApplicationStatusRejected ApplicationStatus = "rejected"
)

// ApplicationStatuses lists the accepted statuses in display order.
var ApplicationStatuses = []ApplicationStatus{
	ApplicationStatusApproved,
	ApplicationStatusPending,
	ApplicationStatusRejected,
}

// Valid reports whether s is one of the known statuses.
func (s ApplicationStatus) Valid() bool {
	switch s {
	case ApplicationStatusApproved, ApplicationStatusPending, ApplicationStatusRejected:
		return true
	}
	return false
}

// Normalize maps unknown or empty values to pending.
func (s ApplicationStatus) Normalize() ApplicationStatus {
	if s.Valid() {
		return s
	}
	return ApplicationStatusPending
}

// Label is the human readable badge text. Unknown values read as pending.
func (s ApplicationStatus) Label() string {
	switch s {
	case ApplicationStatusApproved:
		return "Approved"
	case ApplicationStatusRejected:
		return "Rejected"
	default:
		return "Pending"
	}
}

// StatusTone is the badge colour family for a status.
type StatusTone string

const (
	ToneSuccess StatusTone = "green"
	ToneWarning StatusTone = "yellow"
	ToneDanger  StatusTone = "red"
)

// Tone returns the badge colour. Unknown values use the pending tone.
func (s ApplicationStatus) Tone() StatusTone {
	switch s {
	case ApplicationStatusApproved:
		return ToneSuccess
	case ApplicationStatusRejected:
		return ToneDanger
	default:
		return ToneWarning
	}
}

// StatusFilterAll disables status filtering.
const StatusFilterAll = "all"

// ParseStatusFilter accepts "all" (or empty) and the known statuses in their
// canonical lowercase spelling. Other casings are rejected.
func ParseStatusFilter(raw string) (string, bool) {
	value := strings.TrimSpace(raw)
	if value == "" || value == StatusFilterAll {
		return StatusFilterAll, true
	}
	if ApplicationStatus(value).Valid() {
		return value, true
	}
	return "", false
}

// Application is a single student's competition registration.
type Application struct {
	ID               int64             `db:"id" json:"id"`
	StudentName      string            `db:"student_name" json:"studentName"`
	CI               string            `db:"ci" json:"ci"`
	Area             string            `db:"area" json:"area"`
	Category         string            `db:"category" json:"category"`
	School           string            `db:"school" json:"school"`
	Status           ApplicationStatus `db:"status" json:"status"`
	RegistrationDate string            `db:"registration_date" json:"registrationDate"`
	ContactEmail     string            `db:"contact_email" json:"contactEmail"`
	ContactPhone     string            `db:"contact_phone" json:"contactPhone"`
	Notes            *string           `db:"notes" json:"notes"`
}

// NotesText returns the notes or an empty string when absent.
func (a Application) NotesText() string {
	if a.Notes == nil {
		return ""
	}
	return *a.Notes
}

// WithStatus returns a copy with the status replaced.
func (a Application) WithStatus(status ApplicationStatus) Application {
	a.Status = status
	return a
}

// WithNotes returns a copy with notes set; an empty string stays present.
func (a Application) WithNotes(notes string) Application {
	a.Notes = &notes
	return a
}

// MailtoLink builds the contact mail link, empty when no address is known.
func (a Application) MailtoLink() string {
	if strings.TrimSpace(a.ContactEmail) == "" {
		return ""
	}
	return "mailto:" + strings.TrimSpace(a.ContactEmail)
}

// TelLink builds the contact phone link with spacing removed.
func (a Application) TelLink() string {
	phone := strings.Map(func(r rune) rune {
		switch r {
		case ' ', '-', '(', ')', '.':
			return -1
		}
		return r
	}, a.ContactPhone)
	if phone == "" {
		return ""
	}
	return "tel:" + phone
}

// RegisteredOn parses the ISO registration date. ok is false for malformed values.
func (a Application) RegisteredOn() (time.Time, bool) {
	for _, layout := range []string{"2006-01-02", time.RFC3339} {
		if t, err := time.Parse(layout, a.RegistrationDate); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// ApplicationFilter holds the search term and status selector.
type ApplicationFilter struct {
	Search string
	Status string
}

// StatusSummary counts applications per status.
type StatusSummary struct {
	Total    int `json:"total"`
	Approved int `json:"approved"`
	Pending  int `json:"pending"`
	Rejected int `json:"rejected"`
}
