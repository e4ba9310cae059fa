package service

import (
	"strings"

	"github.com/noah-isme/olympiad-applications/internal/models"
)

// MatchesSearch reports whether app matches the free-text term. Name and area
// compare case-insensitively; the CI number must contain the term verbatim.
func MatchesSearch(app models.Application, term string) bool {
	if term == "" {
		return true
	}
	lowered := strings.ToLower(term)
	return strings.Contains(strings.ToLower(app.StudentName), lowered) ||
		strings.Contains(app.CI, term) ||
		strings.Contains(strings.ToLower(app.Area), lowered)
}

// MatchesStatus reports whether app passes the status selector.
func MatchesStatus(app models.Application, status string) bool {
	return status == models.StatusFilterAll || string(app.Status) == status
}

// FilterApplications returns the visible subset in working-set order.
func FilterApplications(apps []models.Application, filter models.ApplicationFilter) []models.Application {
	visible := make([]models.Application, 0, len(apps))
	for _, app := range apps {
		if MatchesSearch(app, filter.Search) && MatchesStatus(app, filter.Status) {
			visible = append(visible, app)
		}
	}
	return visible
}

// SummarizeStatuses counts applications per status. Unknown values count as pending.
func SummarizeStatuses(apps []models.Application) models.StatusSummary {
	summary := models.StatusSummary{Total: len(apps)}
	for _, app := range apps {
		switch app.Status.Normalize() {
		case models.ApplicationStatusApproved:
			summary.Approved++
		case models.ApplicationStatusRejected:
			summary.Rejected++
		default:
			summary.Pending++
		}
	}
	return summary
}
