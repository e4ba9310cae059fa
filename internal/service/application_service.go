package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/olympiad-applications/internal/models"
	appErrors "github.com/noah-isme/olympiad-applications/pkg/errors"
)

const applicationsCachePattern = "applications:*"

type applicationRepository interface {
	List(ctx context.Context, filter models.ApplicationFilter) ([]models.Application, error)
	FindByID(ctx context.Context, id int64) (*models.Application, error)
	UpdateStatus(ctx context.Context, id int64, status models.ApplicationStatus) (bool, error)
	UpdateNotes(ctx context.Context, id int64, notes string) (bool, error)
}

type applicationCache interface {
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Invalidate(ctx context.Context, pattern string) error
}

// UpdateStatusRequest is the body of PATCH /applications/{id}/status.
type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=approved pending rejected"`
}

// UpdateNotesRequest is the body of PATCH /applications/{id}/notes. Notes
// may be empty but must be present.
type UpdateNotesRequest struct {
	Notes *string `json:"notes" validate:"required,max=4000"`
}

// ApplicationService implements the applications REST contract.
type ApplicationService struct {
	repo      applicationRepository
	cache     applicationCache
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewApplicationService constructs the application service. cache and
// metrics are optional.
func NewApplicationService(repo applicationRepository, cache applicationCache, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *ApplicationService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ApplicationService{repo: repo, cache: cache, metrics: metrics, validator: validate, logger: logger}
}

// NormalizeFilter validates the status selector, defaulting to "all".
func NormalizeFilter(filter models.ApplicationFilter) (models.ApplicationFilter, error) {
	status, ok := models.ParseStatusFilter(filter.Status)
	if !ok {
		return filter, appErrors.Clone(appErrors.ErrInvalidStatus, fmt.Sprintf("unknown status filter %q", filter.Status))
	}
	filter.Status = status
	return filter, nil
}

func listCacheKey(filter models.ApplicationFilter) string {
	return "applications:list:" + filter.Status + ":" + url.QueryEscape(filter.Search)
}

// List returns applications matching the optional status and search filter.
// The boolean reports whether the result came from cache.
func (s *ApplicationService) List(ctx context.Context, filter models.ApplicationFilter) ([]models.Application, bool, error) {
	filter, err := NormalizeFilter(filter)
	if err != nil {
		return nil, false, err
	}

	key := listCacheKey(filter)
	if s.cache != nil {
		var cached []models.Application
		if hit, _ := s.cache.Get(ctx, key, &cached); hit {
			return cached, true, nil
		}
	}

	start := time.Now()
	apps, err := s.repo.List(ctx, filter)
	s.metrics.ObserveDBQuery("applications_list", time.Since(start))
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list applications")
	}
	for i := range apps {
		apps[i].Status = apps[i].Status.Normalize()
	}
	if apps == nil {
		apps = []models.Application{}
	}

	if s.cache != nil {
		_ = s.cache.Set(ctx, key, apps, 0)
	}
	return apps, false, nil
}

// Summary counts the filtered applications per status.
func (s *ApplicationService) Summary(ctx context.Context, filter models.ApplicationFilter) (models.StatusSummary, error) {
	apps, _, err := s.List(ctx, filter)
	if err != nil {
		return models.StatusSummary{}, err
	}
	return SummarizeStatuses(apps), nil
}

// Get returns one application.
func (s *ApplicationService) Get(ctx context.Context, id int64) (*models.Application, error) {
	start := time.Now()
	app, err := s.repo.FindByID(ctx, id)
	s.metrics.ObserveDBQuery("applications_get", time.Since(start))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "application not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load application")
	}
	app.Status = app.Status.Normalize()
	return app, nil
}

// UpdateStatus persists a new review status.
func (s *ApplicationService) UpdateStatus(ctx context.Context, id int64, req UpdateStatusRequest) (*models.Application, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInvalidStatus.Code, appErrors.ErrInvalidStatus.Status, appErrors.ErrInvalidStatus.Message)
	}
	status := models.ApplicationStatus(req.Status)

	start := time.Now()
	found, err := s.repo.UpdateStatus(ctx, id, status)
	s.metrics.ObserveDBQuery("applications_update_status", time.Since(start))
	if err := s.mutationOutcome("status", found, err); err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	s.logger.Info("application status updated", zap.Int64("application_id", id), zap.String("status", req.Status))
	return s.Get(ctx, id)
}

// UpdateNotes persists internal notes. An empty string clears them without
// removing the field.
func (s *ApplicationService) UpdateNotes(ctx context.Context, id int64, req UpdateNotesRequest) (*models.Application, error) {
	if req.Notes == nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "notes is required")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid notes payload")
	}

	start := time.Now()
	found, err := s.repo.UpdateNotes(ctx, id, *req.Notes)
	s.metrics.ObserveDBQuery("applications_update_notes", time.Since(start))
	if err := s.mutationOutcome("notes", found, err); err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	s.logger.Info("application notes updated", zap.Int64("application_id", id), zap.Int("length", len(*req.Notes)))
	return s.Get(ctx, id)
}

// mutationOutcome counts the update under its real outcome and maps it to the
// error returned to the caller.
func (s *ApplicationService) mutationOutcome(field string, found bool, err error) error {
	switch {
	case err != nil:
		s.metrics.RecordMutation(field, err)
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update application "+field)
	case !found:
		notFound := appErrors.Clone(appErrors.ErrNotFound, "application not found")
		s.metrics.RecordMutation(field, notFound)
		return notFound
	}
	s.metrics.RecordMutation(field, nil)
	return nil
}

func (s *ApplicationService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, applicationsCachePattern); err != nil {
		s.logger.Warn("applications cache invalidation failed", zap.Error(err))
	}
}
