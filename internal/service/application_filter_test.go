package service

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/olympiad-applications/internal/models"
)

func sampleApplications() []models.Application {
	return []models.Application{
		{ID: 1, StudentName: "Ana María Gutiérrez", CI: "8456123LP", Area: "Matemáticas", Status: models.ApplicationStatusApproved},
		{ID: 2, StudentName: "Luis Fernando Rojas", CI: "7321456CB", Area: "Física", Status: models.ApplicationStatusPending},
		{ID: 3, StudentName: "Carlos Eduardo Mamani", CI: "9012345SC", Area: "Química", Status: models.ApplicationStatusRejected},
	}
}

func ids(apps []models.Application) []int64 {
	out := make([]int64, 0, len(apps))
	for _, app := range apps {
		out = append(out, app.ID)
	}
	return out
}

func TestMatchesSearch(t *testing.T) {
	app := sampleApplications()[0]
	cases := []struct {
		term string
		want bool
	}{
		{"", true},
		{"ana", true},
		{"GUTIÉRREZ", true},
		{"matem", true},
		{"8456", true},
		{"lp", false},
		{"LP", true},
		{"Física", false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, MatchesSearch(app, tc.term), tc.term)
	}
}

func TestMatchesStatus(t *testing.T) {
	app := sampleApplications()[1]
	assert.True(t, MatchesStatus(app, models.StatusFilterAll))
	assert.True(t, MatchesStatus(app, "pending"))
	assert.False(t, MatchesStatus(app, "approved"))
	assert.False(t, MatchesStatus(app, "Pending"))
}

func TestFilterApplicationsCombinesPredicates(t *testing.T) {
	apps := sampleApplications()
	assert.Equal(t, []int64{3}, ids(FilterApplications(apps, models.ApplicationFilter{Search: "CARLOS", Status: "all"})))
	assert.Equal(t, []int64{2}, ids(FilterApplications(apps, models.ApplicationFilter{Status: "pending"})))
	assert.Equal(t, []int64{1, 2, 3}, ids(FilterApplications(apps, models.ApplicationFilter{Status: "all"})))
	assert.Empty(t, FilterApplications(apps, models.ApplicationFilter{Search: "carlos", Status: "approved"}))
	assert.Empty(t, FilterApplications(nil, models.ApplicationFilter{Status: "all"}))
}

// referenceFilter is a deliberately naive restatement of the matching rule.
func referenceFilter(apps []models.Application, term, status string) []int64 {
	out := []int64{}
	for _, app := range apps {
		search := term == "" ||
			strings.Index(strings.ToLower(app.StudentName), strings.ToLower(term)) >= 0 ||
			strings.Index(app.CI, term) >= 0 ||
			strings.Index(strings.ToLower(app.Area), strings.ToLower(term)) >= 0
		statusOK := status == "all" || status == string(app.Status)
		if search && statusOK {
			out = append(out, app.ID)
		}
	}
	return out
}

func randomText(r *rand.Rand, alphabet []rune, max int) string {
	n := r.Intn(max + 1)
	var b strings.Builder
	for i := 0; i < n; i++ {
		b.WriteRune(alphabet[r.Intn(len(alphabet))])
	}
	return b.String()
}

func TestFilterApplicationsMatchesReference(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	alphabet := []rune("abcABCxyZ019 ñÑ")
	statuses := []models.ApplicationStatus{"approved", "pending", "rejected", "unknown"}
	filters := []string{"all", "approved", "pending", "rejected"}

	for iter := 0; iter < 500; iter++ {
		apps := make([]models.Application, r.Intn(12))
		for i := range apps {
			apps[i] = models.Application{
				ID:          int64(i + 1),
				StudentName: randomText(r, alphabet, 8),
				CI:          randomText(r, alphabet, 6),
				Area:        randomText(r, alphabet, 6),
				Status:      statuses[r.Intn(len(statuses))],
			}
		}
		term := randomText(r, alphabet, 3)
		status := filters[r.Intn(len(filters))]

		got := ids(FilterApplications(apps, models.ApplicationFilter{Search: term, Status: status}))
		require.Equal(t, referenceFilter(apps, term, status), got, "term=%q status=%q", term, status)
	}
}

func TestSummarizeStatuses(t *testing.T) {
	apps := append(sampleApplications(), models.Application{ID: 4, Status: "mystery"})
	summary := SummarizeStatuses(apps)
	assert.Equal(t, models.StatusSummary{Total: 4, Approved: 1, Pending: 2, Rejected: 1}, summary)
}
