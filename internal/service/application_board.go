package service

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/noah-isme/olympiad-applications/internal/models"
	appErrors "github.com/noah-isme/olympiad-applications/pkg/errors"
)

// ApplicationGateway is the data access seam behind the board. The fixture
// repository and the REST client both satisfy it.
type ApplicationGateway interface {
	FetchAll(ctx context.Context) ([]models.Application, error)
	UpdateStatus(ctx context.Context, id int64, status models.ApplicationStatus) error
	UpdateNotes(ctx context.Context, id int64, notes string) error
}

// LoadResult reports the outcome of the initial load.
type LoadResult struct {
	Count int
	Err   error
}

// OK reports whether the load succeeded.
func (r LoadResult) OK() bool { return r.Err == nil }

// MutationResult reports the outcome of a status or notes update. Applied is
// true once the local working set changed; Err carries a backend failure that
// was logged but not rolled back.
type MutationResult struct {
	ID      int64
	Applied bool
	Err     error
}

// OK reports whether both the local and remote halves succeeded.
func (r MutationResult) OK() bool { return r.Applied && r.Err == nil }

// ApplicationBoard holds the state of the applications table view: the
// working set, search term, status selector and the expanded row.
type ApplicationBoard struct {
	gateway ApplicationGateway
	logger  *zap.Logger

	mu       sync.Mutex
	apps     []models.Application
	search   string
	status   string
	expanded *int64
	loading  bool
	loaded   bool
}

// NewApplicationBoard constructs an empty board in the loading state.
func NewApplicationBoard(gateway ApplicationGateway, logger *zap.Logger) *ApplicationBoard {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ApplicationBoard{
		gateway: gateway,
		logger:  logger,
		status:  models.StatusFilterAll,
		loading: true,
	}
}

// Load fetches the full working set. Failures are logged and reported in the
// result; the loading flag is always cleared.
func (b *ApplicationBoard) Load(ctx context.Context) (result LoadResult) {
	b.mu.Lock()
	b.loading = true
	b.mu.Unlock()

	defer func() {
		b.mu.Lock()
		b.loading = false
		b.loaded = true
		b.mu.Unlock()
	}()

	apps, err := b.gateway.FetchAll(ctx)
	if err != nil {
		b.logger.Warn("load applications failed", zap.Error(err))
		return LoadResult{Err: appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, "failed to load applications")}
	}

	working := make([]models.Application, len(apps))
	for i, app := range apps {
		app.Status = app.Status.Normalize()
		working[i] = app
	}

	b.mu.Lock()
	b.apps = working
	b.mu.Unlock()

	b.logger.Debug("applications loaded", zap.Int("count", len(working)))
	return LoadResult{Count: len(working)}
}

// Loading reports whether the initial load is outstanding.
func (b *ApplicationBoard) Loading() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.loading
}

// SetSearch replaces the free-text search term.
func (b *ApplicationBoard) SetSearch(term string) {
	b.mu.Lock()
	b.search = term
	b.mu.Unlock()
}

// SetStatusFilter replaces the status selector. Accepts "all" or a status.
func (b *ApplicationBoard) SetStatusFilter(raw string) error {
	status, ok := models.ParseStatusFilter(raw)
	if !ok {
		return appErrors.Clone(appErrors.ErrInvalidStatus, fmt.Sprintf("unknown status filter %q", raw))
	}
	b.mu.Lock()
	b.status = status
	b.mu.Unlock()
	return nil
}

// Filter returns the current search term and status selector.
func (b *ApplicationBoard) Filter() models.ApplicationFilter {
	b.mu.Lock()
	defer b.mu.Unlock()
	return models.ApplicationFilter{Search: b.search, Status: b.status}
}

// Applications returns a copy of the working set.
func (b *ApplicationBoard) Applications() []models.Application {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]models.Application, len(b.apps))
	copy(out, b.apps)
	return out
}

// Visible recomputes the visible subset from the working set.
func (b *ApplicationBoard) Visible() []models.Application {
	b.mu.Lock()
	defer b.mu.Unlock()
	return FilterApplications(b.apps, models.ApplicationFilter{Search: b.search, Status: b.status})
}

// Summary counts the working set per status.
func (b *ApplicationBoard) Summary() models.StatusSummary {
	b.mu.Lock()
	defer b.mu.Unlock()
	return SummarizeStatuses(b.apps)
}

// ToggleExpanded opens the detail panel for id, or closes it when id is
// already expanded. Only one record is expanded at a time.
func (b *ApplicationBoard) ToggleExpanded(id int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.expanded != nil && *b.expanded == id {
		b.expanded = nil
		return
	}
	b.expanded = &id
}

// Expanded returns the expanded record id, if any.
func (b *ApplicationBoard) Expanded() (int64, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.expanded == nil {
		return 0, false
	}
	return *b.expanded, true
}

// Find returns the working-set record with id.
func (b *ApplicationBoard) Find(id int64) (models.Application, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, app := range b.apps {
		if app.ID == id {
			return app, true
		}
	}
	return models.Application{}, false
}

// UpdateStatus sets the status locally, then asks the backend to persist it.
func (b *ApplicationBoard) UpdateStatus(ctx context.Context, id int64, status models.ApplicationStatus) MutationResult {
	if !status.Valid() {
		return MutationResult{ID: id, Err: appErrors.Clone(appErrors.ErrInvalidStatus, fmt.Sprintf("unknown status %q", status))}
	}
	applied := b.replace(id, func(app models.Application) models.Application {
		return app.WithStatus(status)
	})
	if err := b.gateway.UpdateStatus(ctx, id, status); err != nil {
		b.logger.Warn("update application status failed",
			zap.Int64("application_id", id),
			zap.String("status", string(status)),
			zap.Error(err))
		return MutationResult{ID: id, Applied: applied, Err: err}
	}
	return MutationResult{ID: id, Applied: applied}
}

// UpdateNotes sets the notes locally, then asks the backend to persist them.
// An empty string is stored as empty notes, not as absent.
func (b *ApplicationBoard) UpdateNotes(ctx context.Context, id int64, notes string) MutationResult {
	applied := b.replace(id, func(app models.Application) models.Application {
		return app.WithNotes(notes)
	})
	if err := b.gateway.UpdateNotes(ctx, id, notes); err != nil {
		b.logger.Warn("update application notes failed",
			zap.Int64("application_id", id),
			zap.Error(err))
		return MutationResult{ID: id, Applied: applied, Err: err}
	}
	return MutationResult{ID: id, Applied: applied}
}

// replace maps over the working set, swapping in a new value for id only.
func (b *ApplicationBoard) replace(id int64, fn func(models.Application) models.Application) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	next := make([]models.Application, len(b.apps))
	found := false
	for i, app := range b.apps {
		if app.ID == id {
			next[i] = fn(app)
			found = true
			continue
		}
		next[i] = app
	}
	b.apps = next
	return found
}
