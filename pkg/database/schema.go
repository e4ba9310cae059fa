package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

const applicationsSchema = `CREATE TABLE IF NOT EXISTS olympiad_applications (
    id BIGSERIAL PRIMARY KEY,
    student_name TEXT NOT NULL,
    ci TEXT NOT NULL,
    area TEXT NOT NULL,
    category TEXT NOT NULL,
    school TEXT NOT NULL,
    status TEXT NOT NULL DEFAULT 'pending',
    registration_date TEXT NOT NULL,
    contact_email TEXT NOT NULL DEFAULT '',
    contact_phone TEXT NOT NULL DEFAULT '',
    notes TEXT,
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

// EnsureSchema creates the applications table when it does not exist yet.
func EnsureSchema(ctx context.Context, db *sqlx.DB) error {
	if _, err := db.ExecContext(ctx, applicationsSchema); err != nil {
		return fmt.Errorf("ensure olympiad_applications table: %w", err)
	}
	return nil
}
