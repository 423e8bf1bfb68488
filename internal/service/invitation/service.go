package invitation

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-chi/jwtauth/v5"
	"github.com/google/uuid"
	"github.com/mind-links/contractor-backend-go/internal/domain/invitation"
	"github.com/mind-links/contractor-backend-go/internal/pkg/email"
	"github.com/mind-links/contractor-backend-go/internal/pkg/metrics"
	"github.com/mind-links/contractor-backend-go/internal/pkg/sse"
	"github.com/mind-links/contractor-backend-go/internal/pkg/validator"
)

// Config holds invitation service configuration
type Config struct {
	InvitationBaseURL string // link target in invitation emails, e.g. https://app.mind-links.io/invitations
}

type InvitationServiceImpl struct {
	invitationRepo invitation.InvitationRepository
	publisher      sse.Publisher
	emailService   email.EmailService
	metrics        *metrics.Metrics
	config         Config
}

func NewInvitationService(
	invitationRepo invitation.InvitationRepository,
	publisher sse.Publisher,
	emailService email.EmailService,
	m *metrics.Metrics,
	cfg Config,
) invitation.InvitationService {
	return &InvitationServiceImpl{
		invitationRepo: invitationRepo,
		publisher:      publisher,
		emailService:   emailService,
		metrics:        m,
		config:         cfg,
	}
}

// getClaimsFromContext extracts company_id and user_id from JWT claims
func getClaimsFromContext(ctx context.Context) (companyID, userID string, err error) {
	_, claims, err := jwtauth.FromContext(ctx)
	if err != nil {
		return "", "", fmt.Errorf("failed to extract claims from context: %w", err)
	}

	companyID, ok := claims["company_id"].(string)
	if !ok || companyID == "" {
		return "", "", fmt.Errorf("company_id claim is missing or invalid")
	}

	userID, _ = claims["user_id"].(string)

	return companyID, userID, nil
}

// CreateFromWizard implements invitation.InvitationService.
func (s *InvitationServiceImpl) CreateFromWizard(ctx context.Context, req invitation.CreateRequest) (invitation.Invitation, error) {
	if err := req.Validate(); err != nil {
		return invitation.Invitation{}, err
	}

	id, err := uuid.NewV7()
	if err != nil {
		return invitation.Invitation{}, fmt.Errorf("failed to generate invitation id: %w", err)
	}
	inv := req.ToInvitation()
	inv.ID = id.String()

	created, err := s.invitationRepo.Create(ctx, inv)
	if err != nil {
		return invitation.Invitation{}, fmt.Errorf("failed to create invitation: %w", err)
	}

	s.metrics.InvitationsCreated.Inc()
	slog.Info("Contractor invitation created",
		"invitation_id", created.ID,
		"company_id", created.CompanyID,
		"contract_type", created.ContractType,
	)

	if s.emailService != nil {
		go s.sendInvitationEmail(created)
	}

	return created, nil
}

// sendInvitationEmail runs outside the request; the invitation stays valid
// when the mail cannot be delivered.
func (s *InvitationServiceImpl) sendInvitationEmail(inv invitation.Invitation) {
	msg := email.InvitationEmail{
		To:             inv.PersonalEmail,
		ContractorName: inv.FullName(),
		EntityName:     inv.Entity,
		ContractName:   inv.ContractName,
		ContractType:   inv.ContractType,
		PaymentRate:    inv.PaymentRate.String(),
		Currency:       inv.Currency,
		InvoicePolicy:  inv.InvoicePolicy,
		StartDate:      inv.StartDate.Format(validator.DateLayout),
		InvitationLink: strings.TrimRight(s.config.InvitationBaseURL, "/") + "/" + inv.ID,
	}
	if inv.EndDate != nil {
		msg.EndDate = inv.EndDate.Format(validator.DateLayout)
	}

	if err := s.emailService.SendContractorInvitation(msg); err != nil {
		slog.Error("Failed to send invitation email", "invitation_id", inv.ID, "error", err)
	}
}

// GetByID implements invitation.InvitationService.
func (s *InvitationServiceImpl) GetByID(ctx context.Context, id string) (invitation.InvitationResponse, error) {
	companyID, _, err := getClaimsFromContext(ctx)
	if err != nil {
		return invitation.InvitationResponse{}, err
	}

	if !validator.IsValidUUID(id) {
		return invitation.InvitationResponse{}, invitation.ErrInvalidInvitationID
	}

	inv, err := s.invitationRepo.GetByID(ctx, id, companyID)
	if err != nil {
		return invitation.InvitationResponse{}, err
	}

	return invitation.NewInvitationResponse(inv), nil
}

// List implements invitation.InvitationService.
func (s *InvitationServiceImpl) List(ctx context.Context, req invitation.ListRequest) (invitation.ListResponse, error) {
	companyID, _, err := getClaimsFromContext(ctx)
	if err != nil {
		return invitation.ListResponse{}, err
	}

	if err := req.Validate(); err != nil {
		return invitation.ListResponse{}, err
	}
	req.Normalize()

	invitations, total, err := s.invitationRepo.List(ctx, invitation.ListFilter{
		CompanyID: companyID,
		Status:    invitation.Status(req.Status),
		Offset:    (req.Page - 1) * req.Limit,
		Limit:     req.Limit,
	})
	if err != nil {
		return invitation.ListResponse{}, fmt.Errorf("failed to list invitations: %w", err)
	}

	items := make([]invitation.InvitationResponse, 0, len(invitations))
	for _, inv := range invitations {
		items = append(items, invitation.NewInvitationResponse(inv))
	}

	totalPages := int(total) / req.Limit
	if int(total)%req.Limit != 0 {
		totalPages++
	}

	return invitation.ListResponse{
		Invitations: items,
		TotalItems:  total,
		Page:        req.Page,
		Limit:       req.Limit,
		TotalPages:  totalPages,
	}, nil
}

// Revoke implements invitation.InvitationService.
func (s *InvitationServiceImpl) Revoke(ctx context.Context, id string) (invitation.InvitationResponse, error) {
	companyID, userID, err := getClaimsFromContext(ctx)
	if err != nil {
		return invitation.InvitationResponse{}, err
	}

	if !validator.IsValidUUID(id) {
		return invitation.InvitationResponse{}, invitation.ErrInvalidInvitationID
	}

	revoked, err := s.invitationRepo.MarkRevoked(ctx, id, companyID)
	if err != nil {
		return invitation.InvitationResponse{}, err
	}

	s.metrics.InvitationsRevoked.Inc()
	slog.Info("Contractor invitation revoked", "invitation_id", id, "revoked_by", userID)

	// The creator is told even when someone else in the company revoked it.
	if s.publisher != nil {
		s.publisher.Publish(revoked.CreatedBy, sse.Event{
			Event: sse.EventInvitationRevoked,
			Data: map[string]interface{}{
				"invitation_id": revoked.ID,
				"revoked_by":    userID,
			},
		})
	}

	return invitation.NewInvitationResponse(revoked), nil
}
