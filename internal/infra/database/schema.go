package database

import (
	"context"
	"database/sql"
	"fmt"
	"log"
)

// EnsureSchema creates every table the pipeline needs. Statements are
// idempotent so a restart against an already provisioned database is a no-op.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS clients (
			id         UUID PRIMARY KEY,
			email      TEXT UNIQUE,
			name       TEXT NOT NULL DEFAULT '',
			phone      TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS workout_programs (
			id              UUID PRIMARY KEY,
			path            TEXT NOT NULL,
			gender          INT NOT NULL,
			activity_level  INT NOT NULL,
			purpose         INT NOT NULL,
			focus           INT NOT NULL,
			diseases        TEXT NOT NULL DEFAULT '',
			ignore_diseases BOOLEAN NOT NULL DEFAULT FALSE,
			created_at      TIMESTAMPTZ NOT NULL,
			UNIQUE (gender, activity_level, purpose, focus, diseases, ignore_diseases)
		)`,

		`CREATE TABLE IF NOT EXISTS sales (
			id                    UUID PRIMARY KEY,
			type                  TEXT NOT NULL,
			time                  TIMESTAMPTZ NOT NULL,
			order_id              TEXT NOT NULL DEFAULT '',
			client_id             UUID NOT NULL REFERENCES clients (id),
			workout_program_id    UUID REFERENCES workout_programs (id),
			nutrition_path        TEXT NOT NULL DEFAULT '',
			resume_key            TEXT UNIQUE,
			is_success_email_sent BOOLEAN NOT NULL DEFAULT FALSE,
			is_staff_notified     BOOLEAN NOT NULL DEFAULT FALSE,
			error_handled         BOOLEAN,
			scheduled_delivery    TIMESTAMPTZ,
			is_done               BOOLEAN NOT NULL DEFAULT FALSE
		)`,

		`CREATE INDEX IF NOT EXISTS idx_sales_pending
			ON sales (time) WHERE NOT is_done`,

		`CREATE TABLE IF NOT EXISTS agendas (
			id             UUID PRIMARY KEY,
			sale_id        UUID NOT NULL UNIQUE REFERENCES sales (id) ON DELETE CASCADE,
			gender         INT,
			age            INT,
			height         INT,
			weight         INT,
			activity_level INT,
			daily_activity INT,
			purpose        INT,
			focus          INT,
			diseases       TEXT NOT NULL DEFAULT '',
			trainer        TEXT NOT NULL DEFAULT ''
		)`,

		`CREATE TABLE IF NOT EXISTS sale_products (
			id          UUID PRIMARY KEY,
			sale_id     UUID NOT NULL REFERENCES sales (id) ON DELETE CASCADE,
			code        TEXT NOT NULL,
			label       TEXT NOT NULL DEFAULT '',
			price_cents INT NOT NULL DEFAULT 0
		)`,

		`CREATE TABLE IF NOT EXISTS staff (
			id       UUID PRIMARY KEY,
			name     TEXT NOT NULL UNIQUE,
			nickname TEXT NOT NULL DEFAULT '',
			is_admin BOOLEAN NOT NULL DEFAULT FALSE,
			email    TEXT NOT NULL,
			phone    TEXT NOT NULL DEFAULT ''
		)`,
	}

	for _, stmt := range statements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("schema setup failed: %w", err)
		}
	}

	log.Println("🗄️ [DB] schema verified")
	return nil
}
