package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/olympiad-applications/internal/models"
	appErrors "github.com/noah-isme/olympiad-applications/pkg/errors"
)

type mockApplicationRepo struct {
	apps       map[int64]models.Application
	lastFilter models.ApplicationFilter
	listCalls  int
	err        error
}

func newMockApplicationRepo() *mockApplicationRepo {
	repo := &mockApplicationRepo{apps: map[int64]models.Application{}}
	for _, app := range sampleApplications() {
		repo.apps[app.ID] = app
	}
	return repo
}

func (m *mockApplicationRepo) List(ctx context.Context, filter models.ApplicationFilter) ([]models.Application, error) {
	m.listCalls++
	m.lastFilter = filter
	if m.err != nil {
		return nil, m.err
	}
	all := make([]models.Application, 0, len(m.apps))
	for id := int64(1); id <= int64(len(m.apps)); id++ {
		if app, ok := m.apps[id]; ok {
			all = append(all, app)
		}
	}
	return FilterApplications(all, filter), nil
}

func (m *mockApplicationRepo) FindByID(ctx context.Context, id int64) (*models.Application, error) {
	if app, ok := m.apps[id]; ok {
		return &app, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockApplicationRepo) UpdateStatus(ctx context.Context, id int64, status models.ApplicationStatus) (bool, error) {
	if m.err != nil {
		return false, m.err
	}
	app, ok := m.apps[id]
	if !ok {
		return false, nil
	}
	m.apps[id] = app.WithStatus(status)
	return true, nil
}

func (m *mockApplicationRepo) UpdateNotes(ctx context.Context, id int64, notes string) (bool, error) {
	if m.err != nil {
		return false, m.err
	}
	app, ok := m.apps[id]
	if !ok {
		return false, nil
	}
	m.apps[id] = app.WithNotes(notes)
	return true, nil
}

type memoryCache struct {
	entries     map[string][]models.Application
	invalidated []string
}

func (c *memoryCache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	apps, ok := c.entries[key]
	if !ok {
		return false, nil
	}
	*(dest.(*[]models.Application)) = apps
	return true, nil
}

func (c *memoryCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if c.entries == nil {
		c.entries = map[string][]models.Application{}
	}
	c.entries[key] = value.([]models.Application)
	return nil
}

func (c *memoryCache) Invalidate(ctx context.Context, pattern string) error {
	c.invalidated = append(c.invalidated, pattern)
	c.entries = nil
	return nil
}

func TestApplicationServiceListFiltersAndCaches(t *testing.T) {
	repo := newMockApplicationRepo()
	cache := &memoryCache{}
	svc := NewApplicationService(repo, cache, NewMetricsService(), validator.New(), zap.NewNop())

	apps, hit, err := svc.List(context.Background(), models.ApplicationFilter{Search: "CARLOS"})
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, []int64{3}, ids(apps))
	assert.Equal(t, models.StatusFilterAll, repo.lastFilter.Status)

	apps, hit, err = svc.List(context.Background(), models.ApplicationFilter{Search: "CARLOS", Status: "all"})
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, []int64{3}, ids(apps))
	assert.Equal(t, 1, repo.listCalls)
}

func TestApplicationServiceListRejectsUnknownStatus(t *testing.T) {
	svc := NewApplicationService(newMockApplicationRepo(), nil, nil, nil, nil)
	for _, status := range []string{"archived", "APPROVED", "Pending"} {
		_, _, err := svc.List(context.Background(), models.ApplicationFilter{Status: status})
		require.Error(t, err, status)
		assert.Equal(t, appErrors.ErrInvalidStatus.Code, appErrors.FromError(err).Code, status)
	}
}

func TestApplicationServiceListNormalizesStoredStatus(t *testing.T) {
	repo := newMockApplicationRepo()
	app := repo.apps[1]
	app.Status = "legacy"
	repo.apps[1] = app
	svc := NewApplicationService(repo, nil, nil, nil, nil)

	apps, _, err := svc.List(context.Background(), models.ApplicationFilter{})
	require.NoError(t, err)
	assert.Equal(t, models.ApplicationStatusPending, apps[0].Status)
}

func TestApplicationServiceListWrapsRepositoryError(t *testing.T) {
	repo := newMockApplicationRepo()
	repo.err = errors.New("db down")
	svc := NewApplicationService(repo, nil, nil, nil, nil)

	_, _, err := svc.List(context.Background(), models.ApplicationFilter{})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInternal.Status, appErrors.FromError(err).Status)
}

func TestApplicationServiceGetNotFound(t *testing.T) {
	svc := NewApplicationService(newMockApplicationRepo(), nil, nil, nil, nil)
	_, err := svc.Get(context.Background(), 42)
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))
}

func TestApplicationServiceUpdateStatus(t *testing.T) {
	repo := newMockApplicationRepo()
	cache := &memoryCache{}
	metrics := NewMetricsService()
	svc := NewApplicationService(repo, cache, metrics, validator.New(), zap.NewNop())

	app, err := svc.UpdateStatus(context.Background(), 3, UpdateStatusRequest{Status: "approved"})
	require.NoError(t, err)
	assert.Equal(t, models.ApplicationStatusApproved, app.Status)
	assert.Equal(t, []string{applicationsCachePattern}, cache.invalidated)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.mutations.WithLabelValues("status", "ok")))
}

func TestApplicationServiceUpdateStatusValidation(t *testing.T) {
	repo := newMockApplicationRepo()
	svc := NewApplicationService(repo, nil, nil, nil, nil)

	_, err := svc.UpdateStatus(context.Background(), 1, UpdateStatusRequest{Status: "archived"})
	assert.True(t, errors.Is(err, appErrors.ErrInvalidStatus))
	assert.Equal(t, models.ApplicationStatusApproved, repo.apps[1].Status)

	_, err = svc.UpdateStatus(context.Background(), 99, UpdateStatusRequest{Status: "approved"})
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))
}

func TestApplicationServiceUnknownIDCountsAsNotFound(t *testing.T) {
	metrics := NewMetricsService()
	svc := NewApplicationService(newMockApplicationRepo(), nil, metrics, validator.New(), zap.NewNop())

	_, err := svc.UpdateStatus(context.Background(), 99, UpdateStatusRequest{Status: "approved"})
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))
	empty := ""
	_, err = svc.UpdateNotes(context.Background(), 99, UpdateNotesRequest{Notes: &empty})
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.mutations.WithLabelValues("status", "not_found")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.mutations.WithLabelValues("notes", "not_found")))
	assert.Equal(t, 0.0, testutil.ToFloat64(metrics.mutations.WithLabelValues("status", "ok")))

	repo := newMockApplicationRepo()
	repo.err = errors.New("db down")
	failing := NewApplicationService(repo, nil, metrics, validator.New(), zap.NewNop())
	_, err = failing.UpdateStatus(context.Background(), 1, UpdateStatusRequest{Status: "approved"})
	assert.Equal(t, appErrors.ErrInternal.Code, appErrors.FromError(err).Code)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.mutations.WithLabelValues("status", "error")))
}

func TestApplicationServiceUpdateNotes(t *testing.T) {
	repo := newMockApplicationRepo()
	svc := NewApplicationService(repo, nil, nil, nil, nil)

	empty := ""
	app, err := svc.UpdateNotes(context.Background(), 1, UpdateNotesRequest{Notes: &empty})
	require.NoError(t, err)
	require.NotNil(t, app.Notes)
	assert.Equal(t, "", *app.Notes)

	_, err = svc.UpdateNotes(context.Background(), 1, UpdateNotesRequest{})
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
}

func TestApplicationServiceSummary(t *testing.T) {
	svc := NewApplicationService(newMockApplicationRepo(), nil, nil, nil, nil)
	summary, err := svc.Summary(context.Background(), models.ApplicationFilter{})
	require.NoError(t, err)
	assert.Equal(t, models.StatusSummary{Total: 3, Approved: 1, Pending: 1, Rejected: 1}, summary)
}
