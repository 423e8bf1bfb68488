package postgresql

import (
	"context"
	"fmt"

	"github.com/mind-links/contractor-backend-go/internal/pkg/database"
)

const schema = `
CREATE TABLE IF NOT EXISTS contractor_invitations (
	id                 UUID PRIMARY KEY,
	company_id         TEXT NOT NULL,
	created_by         TEXT NOT NULL,
	contract_type      TEXT NOT NULL,
	entity             TEXT NOT NULL,
	personal_email     TEXT NOT NULL,
	legal_first_name   TEXT NOT NULL,
	legal_last_name    TEXT NOT NULL,
	contract_name      TEXT NOT NULL,
	tax_residence      TEXT NOT NULL,
	manager            TEXT NOT NULL DEFAULT '',
	report             TEXT NOT NULL DEFAULT '',
	worker_id          TEXT NOT NULL DEFAULT '',
	external_worker_id TEXT NOT NULL DEFAULT '',
	department         TEXT NOT NULL DEFAULT '',
	hiring_objective   TEXT NOT NULL DEFAULT '',
	role               TEXT NOT NULL DEFAULT '',
	seniority_level    TEXT NOT NULL DEFAULT '',
	scope_of_work      TEXT NOT NULL,
	currency           TEXT NOT NULL,
	payment_rate       NUMERIC NOT NULL CHECK (payment_rate > 0),
	invoice_policy     TEXT NOT NULL,
	start_date         DATE NOT NULL,
	end_date           DATE CHECK (end_date IS NULL OR end_date >= start_date),
	coverage           TEXT NOT NULL DEFAULT '',
	equipment          BOOLEAN NOT NULL DEFAULT FALSE,
	coworking_space    BOOLEAN NOT NULL DEFAULT FALSE,
	equity             BOOLEAN NOT NULL DEFAULT FALSE,
	status             TEXT NOT NULL DEFAULT 'pending',
	revoked_at         TIMESTAMPTZ,
	created_at         TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at         TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

-- Tables created before currency and payment_rate were widened.
ALTER TABLE contractor_invitations
	ALTER COLUMN currency TYPE TEXT,
	ALTER COLUMN payment_rate TYPE NUMERIC;

CREATE INDEX IF NOT EXISTS idx_contractor_invitations_company_created
	ON contractor_invitations (company_id, created_at DESC);
`

// EnsureSchema creates the tables this service owns when they are missing
func EnsureSchema(ctx context.Context, db *database.DB) error {
	if _, err := db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to ensure schema: %w", err)
	}
	return nil
}
