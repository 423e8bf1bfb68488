package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/mind-links/contractor-backend-go/internal/domain/invitation"
	"github.com/mind-links/contractor-backend-go/internal/pkg/database"
)

const invitationColumns = `
	id, company_id, created_by, contract_type,
	entity, personal_email, legal_first_name, legal_last_name, contract_name, tax_residence,
	manager, report, worker_id, external_worker_id, department, hiring_objective,
	role, seniority_level, scope_of_work,
	currency, payment_rate, invoice_policy, start_date, end_date,
	coverage, equipment, coworking_space, equity,
	status, revoked_at, created_at, updated_at
`

type invitationRepositoryImpl struct {
	db *database.DB
}

// NewInvitationRepository creates a new invitation repository instance
func NewInvitationRepository(db *database.DB) invitation.InvitationRepository {
	return &invitationRepositoryImpl{db: db}
}

func scanInvitation(row pgx.Row) (invitation.Invitation, error) {
	var inv invitation.Invitation
	err := row.Scan(
		&inv.ID, &inv.CompanyID, &inv.CreatedBy, &inv.ContractType,
		&inv.Entity, &inv.PersonalEmail, &inv.LegalFirstName, &inv.LegalLastName, &inv.ContractName, &inv.TaxResidence,
		&inv.Manager, &inv.Report, &inv.WorkerID, &inv.ExternalWorkerID, &inv.Department, &inv.HiringObjective,
		&inv.Role, &inv.SeniorityLevel, &inv.ScopeOfWork,
		&inv.Currency, &inv.PaymentRate, &inv.InvoicePolicy, &inv.StartDate, &inv.EndDate,
		&inv.Coverage, &inv.Equipment, &inv.CoworkingSpace, &inv.Equity,
		&inv.Status, &inv.RevokedAt, &inv.CreatedAt, &inv.UpdatedAt,
	)
	return inv, err
}

// Create implements invitation.InvitationRepository.
func (r *invitationRepositoryImpl) Create(ctx context.Context, inv invitation.Invitation) (invitation.Invitation, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO contractor_invitations (
			id, company_id, created_by, contract_type,
			entity, personal_email, legal_first_name, legal_last_name, contract_name, tax_residence,
			manager, report, worker_id, external_worker_id, department, hiring_objective,
			role, seniority_level, scope_of_work,
			currency, payment_rate, invoice_policy, start_date, end_date,
			coverage, equipment, coworking_space, equity, status
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15,
			$16, $17, $18, $19, $20, $21, $22, $23, $24, $25, $26, $27, $28, $29
		)
		RETURNING ` + invitationColumns

	created, err := scanInvitation(q.QueryRow(ctx, query,
		inv.ID, inv.CompanyID, inv.CreatedBy, inv.ContractType,
		inv.Entity, inv.PersonalEmail, inv.LegalFirstName, inv.LegalLastName, inv.ContractName, inv.TaxResidence,
		inv.Manager, inv.Report, inv.WorkerID, inv.ExternalWorkerID, inv.Department, inv.HiringObjective,
		inv.Role, inv.SeniorityLevel, inv.ScopeOfWork,
		inv.Currency, inv.PaymentRate, inv.InvoicePolicy, inv.StartDate, inv.EndDate,
		inv.Coverage, inv.Equipment, inv.CoworkingSpace, inv.Equity, inv.Status,
	))
	if err != nil {
		return invitation.Invitation{}, fmt.Errorf("failed to create invitation: %w", err)
	}

	return created, nil
}

// GetByID implements invitation.InvitationRepository.
func (r *invitationRepositoryImpl) GetByID(ctx context.Context, id, companyID string) (invitation.Invitation, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + invitationColumns + `
		FROM contractor_invitations
		WHERE id = $1 AND company_id = $2
	`

	inv, err := scanInvitation(q.QueryRow(ctx, query, id, companyID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return invitation.Invitation{}, invitation.ErrInvitationNotFound
		}
		return invitation.Invitation{}, fmt.Errorf("failed to get invitation: %w", err)
	}

	return inv, nil
}

// List implements invitation.InvitationRepository.
func (r *invitationRepositoryImpl) List(ctx context.Context, filter invitation.ListFilter) ([]invitation.Invitation, int64, error) {
	q := GetQuerier(ctx, r.db)

	// An empty status matches every row.
	where := `WHERE company_id = $1 AND ($2 = '' OR status = $2)`

	var total int64
	err := q.QueryRow(ctx, `SELECT COUNT(*) FROM contractor_invitations `+where,
		filter.CompanyID, string(filter.Status),
	).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count invitations: %w", err)
	}

	query := `SELECT ` + invitationColumns + `
		FROM contractor_invitations ` + where + `
		ORDER BY created_at DESC, id DESC
		LIMIT $3 OFFSET $4
	`

	rows, err := q.Query(ctx, query, filter.CompanyID, string(filter.Status), filter.Limit, filter.Offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list invitations: %w", err)
	}
	defer rows.Close()

	invitations := []invitation.Invitation{}
	for rows.Next() {
		inv, err := scanInvitation(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan invitation: %w", err)
		}
		invitations = append(invitations, inv)
	}

	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("rows iteration error: %w", err)
	}

	return invitations, total, nil
}

// MarkRevoked implements invitation.InvitationRepository.
func (r *invitationRepositoryImpl) MarkRevoked(ctx context.Context, id, companyID string) (invitation.Invitation, error) {
	var revoked invitation.Invitation

	err := WithTransaction(ctx, r.db, func(ctx context.Context) error {
		q := GetQuerier(ctx, r.db)

		var status invitation.Status
		err := q.QueryRow(ctx, `
			SELECT status FROM contractor_invitations
			WHERE id = $1 AND company_id = $2
			FOR UPDATE
		`, id, companyID).Scan(&status)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return invitation.ErrInvitationNotFound
			}
			return fmt.Errorf("failed to lock invitation: %w", err)
		}
		if status != invitation.StatusPending {
			return invitation.ErrInvitationAlreadyRevoked
		}

		query := `
			UPDATE contractor_invitations
			SET status = 'revoked', revoked_at = NOW(), updated_at = NOW()
			WHERE id = $1
			RETURNING ` + invitationColumns

		revoked, err = scanInvitation(q.QueryRow(ctx, query, id))
		if err != nil {
			return fmt.Errorf("failed to mark invitation as revoked: %w", err)
		}
		return nil
	})
	if err != nil {
		return invitation.Invitation{}, err
	}

	return revoked, nil
}
