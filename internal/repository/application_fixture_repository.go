package repository

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/noah-isme/olympiad-applications/internal/models"
	appErrors "github.com/noah-isme/olympiad-applications/pkg/errors"
)

func strPtr(s string) *string { return &s }

// FixtureApplications returns the static demo records.
func FixtureApplications() []models.Application {
	return []models.Application{
		{
			ID:               1,
			StudentName:      "Ana María Gutiérrez López",
			CI:               "8456123",
			Area:             "Matemáticas",
			Category:         "Primero de Secundaria",
			School:           "Unidad Educativa San Andrés",
			Status:           models.ApplicationStatusApproved,
			RegistrationDate: "2024-03-15",
			ContactEmail:     "ana.gutierrez@example.com",
			ContactPhone:     "+591 70012345",
			Notes:            strPtr("Documentation complete."),
		},
		{
			ID:               2,
			StudentName:      "Luis Fernando Rojas Vargas",
			CI:               "7321456",
			Area:             "Física",
			Category:         "Segundo de Secundaria",
			School:           "Colegio Don Bosco",
			Status:           models.ApplicationStatusPending,
			RegistrationDate: "2024-03-18",
			ContactEmail:     "luis.rojas@example.com",
			ContactPhone:     "+591 71234567",
			Notes:            strPtr(""),
		},
		{
			ID:               3,
			StudentName:      "Carlos Eduardo Mamani Quispe",
			CI:               "9012345",
			Area:             "Química",
			Category:         "Tercero de Secundaria",
			School:           "Unidad Educativa Juan XXIII",
			Status:           models.ApplicationStatusRejected,
			RegistrationDate: "2024-03-20",
			ContactEmail:     "carlos.mamani@example.com",
			ContactPhone:     "+591 72345678",
			Notes:            strPtr("Missing tutor authorization."),
		},
	}
}

// FixtureApplicationRepository is an in-memory ApplicationGateway that
// simulates network latency with a fixed delay.
type FixtureApplicationRepository struct {
	delay time.Duration

	mu   sync.Mutex
	apps []models.Application
}

// NewFixtureApplicationRepository seeds the store with records, or with the
// demo fixtures when records is nil.
func NewFixtureApplicationRepository(delay time.Duration, records []models.Application) *FixtureApplicationRepository {
	if records == nil {
		records = FixtureApplications()
	}
	apps := make([]models.Application, len(records))
	copy(apps, records)
	return &FixtureApplicationRepository{delay: delay, apps: apps}
}

func (r *FixtureApplicationRepository) wait(ctx context.Context) error {
	if r.delay <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(r.delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// FetchAll returns a copy of every stored record after the simulated delay.
func (r *FixtureApplicationRepository) FetchAll(ctx context.Context) ([]models.Application, error) {
	if err := r.wait(ctx); err != nil {
		return nil, fmt.Errorf("fetch fixture applications: %w", err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.Application, len(r.apps))
	copy(out, r.apps)
	return out, nil
}

// UpdateStatus persists a status change in memory.
func (r *FixtureApplicationRepository) UpdateStatus(ctx context.Context, id int64, status models.ApplicationStatus) error {
	if !status.Valid() {
		return appErrors.ErrInvalidStatus
	}
	return r.update(ctx, id, func(app models.Application) models.Application { return app.WithStatus(status) })
}

// UpdateNotes persists a notes change in memory.
func (r *FixtureApplicationRepository) UpdateNotes(ctx context.Context, id int64, notes string) error {
	return r.update(ctx, id, func(app models.Application) models.Application { return app.WithNotes(notes) })
}

func (r *FixtureApplicationRepository) update(ctx context.Context, id int64, fn func(models.Application) models.Application) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, app := range r.apps {
		if app.ID == id {
			r.apps[i] = fn(app)
			return nil
		}
	}
	return appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("application %d not found", id))
}
