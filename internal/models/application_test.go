package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusUnknownDefaultsToPending(t *testing.T) {
	unknown := ApplicationStatus("withdrawn")
	assert.False(t, unknown.Valid())
	assert.Equal(t, ApplicationStatusPending, unknown.Normalize())
	assert.Equal(t, "Pending", unknown.Label())
	assert.Equal(t, ToneWarning, unknown.Tone())
	assert.Equal(t, ApplicationStatusPending, ApplicationStatus("").Normalize())
}

func TestStatusLabelsAndTones(t *testing.T) {
	cases := []struct {
		status ApplicationStatus
		label  string
		tone   StatusTone
	}{
		{ApplicationStatusApproved, "Approved", ToneSuccess},
		{ApplicationStatusPending, "Pending", ToneWarning},
		{ApplicationStatusRejected, "Rejected", ToneDanger},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.label, tc.status.Label())
		assert.Equal(t, tc.tone, tc.status.Tone())
		assert.Equal(t, tc.status, tc.status.Normalize())
	}
}

func TestParseStatusFilter(t *testing.T) {
	for raw, want := range map[string]string{"": "all", "all": "all", " pending ": "pending", "approved": "approved"} {
		got, ok := ParseStatusFilter(raw)
		assert.True(t, ok, raw)
		assert.Equal(t, want, got, raw)
	}
	for _, raw := range []string{"archived", "APPROVED", "Pending", "ALL"} {
		_, ok := ParseStatusFilter(raw)
		assert.False(t, ok, raw)
	}
}

func TestNotesAbsentAndEmpty(t *testing.T) {
	app := Application{ID: 1}
	assert.Equal(t, "", app.NotesText())
	assert.Nil(t, app.Notes)

	withEmpty := app.WithNotes("")
	assert.NotNil(t, withEmpty.Notes)
	assert.Equal(t, "", withEmpty.NotesText())
	assert.Nil(t, app.Notes, "original must stay untouched")
}

func TestContactLinks(t *testing.T) {
	app := Application{ContactEmail: " ana@example.com ", ContactPhone: "+591 (700) 123-45"}
	assert.Equal(t, "mailto:ana@example.com", app.MailtoLink())
	assert.Equal(t, "tel:+59170012345", app.TelLink())
	assert.Empty(t, Application{}.MailtoLink())
	assert.Empty(t, Application{}.TelLink())
}

func TestRegisteredOn(t *testing.T) {
	when, ok := Application{RegistrationDate: "2024-03-15"}.RegisteredOn()
	assert.True(t, ok)
	assert.Equal(t, 15, when.Day())
	_, ok = Application{RegistrationDate: "15/03/2024"}.RegisteredOn()
	assert.False(t, ok)
}
