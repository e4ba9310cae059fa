package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/olympiad-applications/internal/models"
)

const applicationColumns = `id, student_name, ci, area, category, school, status, registration_date, contact_email, contact_phone, notes`

// normalizedStatus reads unknown stored statuses as pending, matching how
// they are reported once loaded.
const normalizedStatus = `CASE WHEN status IN ('approved', 'rejected') THEN status ELSE 'pending' END`

// ApplicationRepository manages persistence for olympiad applications.
type ApplicationRepository struct {
	db *sqlx.DB
}

// NewApplicationRepository constructs an ApplicationRepository.
func NewApplicationRepository(db *sqlx.DB) *ApplicationRepository {
	return &ApplicationRepository{db: db}
}

// List returns applications matching the filter ordered by id. Search terms
// are matched with strpos so they behave as literal substrings.
func (r *ApplicationRepository) List(ctx context.Context, filter models.ApplicationFilter) ([]models.Application, error) {
	args := []interface{}{}
	conditions := []string{"1=1"}

	if filter.Search != "" {
		args = append(args, strings.ToLower(filter.Search), filter.Search)
		lowered, raw := len(args)-1, len(args)
		conditions = append(conditions, fmt.Sprintf(
			"(strpos(LOWER(student_name), $%d) > 0 OR strpos(ci, $%d) > 0 OR strpos(LOWER(area), $%d) > 0)",
			lowered, raw, lowered))
	}
	if filter.Status != "" && filter.Status != models.StatusFilterAll {
		args = append(args, filter.Status)
		conditions = append(conditions, fmt.Sprintf("%s = $%d", normalizedStatus, len(args)))
	}

	query := fmt.Sprintf("SELECT %s FROM olympiad_applications WHERE %s ORDER BY id ASC", applicationColumns, strings.Join(conditions, " AND "))

	var apps []models.Application
	if err := r.db.SelectContext(ctx, &apps, query, args...); err != nil {
		return nil, fmt.Errorf("list applications: %w", err)
	}
	return apps, nil
}

// FindByID fetches one application.
func (r *ApplicationRepository) FindByID(ctx context.Context, id int64) (*models.Application, error) {
	query := fmt.Sprintf("SELECT %s FROM olympiad_applications WHERE id = $1", applicationColumns)
	var app models.Application
	if err := r.db.GetContext(ctx, &app, query, id); err != nil {
		return nil, err
	}
	return &app, nil
}

// UpdateStatus sets the status column. It reports false when no row matched.
func (r *ApplicationRepository) UpdateStatus(ctx context.Context, id int64, status models.ApplicationStatus) (bool, error) {
	const query = `UPDATE olympiad_applications SET status = $2, updated_at = $3 WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id, string(status), time.Now().UTC())
	if err != nil {
		return false, fmt.Errorf("update application status: %w", err)
	}
	return affected(res)
}

// UpdateNotes sets the notes column. It reports false when no row matched.
func (r *ApplicationRepository) UpdateNotes(ctx context.Context, id int64, notes string) (bool, error) {
	const query = `UPDATE olympiad_applications SET notes = $2, updated_at = $3 WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id, notes, time.Now().UTC())
	if err != nil {
		return false, fmt.Errorf("update application notes: %w", err)
	}
	return affected(res)
}

// Upsert inserts or replaces an application by id.
func (r *ApplicationRepository) Upsert(ctx context.Context, app *models.Application) error {
	const query = `INSERT INTO olympiad_applications (` + applicationColumns + `)
        VALUES (:id, :student_name, :ci, :area, :category, :school, :status, :registration_date, :contact_email, :contact_phone, :notes)
        ON CONFLICT (id) DO UPDATE SET student_name = EXCLUDED.student_name, ci = EXCLUDED.ci, area = EXCLUDED.area,
        category = EXCLUDED.category, school = EXCLUDED.school, status = EXCLUDED.status,
        registration_date = EXCLUDED.registration_date, contact_email = EXCLUDED.contact_email,
        contact_phone = EXCLUDED.contact_phone, notes = EXCLUDED.notes, updated_at = NOW()`
	if _, err := r.db.NamedExecContext(ctx, query, app); err != nil {
		return fmt.Errorf("upsert application %d: %w", app.ID, err)
	}
	return nil
}

// SyncIDSequence moves the id sequence past the highest stored id so rows
// seeded with explicit ids do not collide with later inserts.
func (r *ApplicationRepository) SyncIDSequence(ctx context.Context) error {
	const query = `SELECT setval(pg_get_serial_sequence('olympiad_applications', 'id'), COALESCE(MAX(id), 1)) FROM olympiad_applications`
	if _, err := r.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("sync application id sequence: %w", err)
	}
	return nil
}

type rowsAffected interface {
	RowsAffected() (int64, error)
}

func affected(res rowsAffected) (bool, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n > 0, nil
}
