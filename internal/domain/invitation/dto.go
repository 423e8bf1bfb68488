package invitation

import (
	"sort"
	"strings"
	"time"

	"github.com/mind-links/contractor-backend-go/internal/domain/wizard"
	"github.com/mind-links/contractor-backend-go/internal/pkg/validator"
)

const (
	DefaultPageLimit = 20
	MaxPageLimit     = 100
)

// CreateRequest - used internally by WizardService when a wizard completes
type CreateRequest struct {
	CompanyID string
	CreatedBy string // user_id from JWT
	Data      wizard.Data
}

// Validate re-checks the data against the wizard's own step rules so data that
// could not have passed the wizard is rejected.
func (r *CreateRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.CompanyID) {
		errs = append(errs, validator.ValidationError{
			Field:   "company_id",
			Message: "company_id is required",
		})
	}

	if validator.IsEmpty(r.CreatedBy) {
		errs = append(errs, validator.ValidationError{
			Field:   "created_by",
			Message: "created_by is required",
		})
	}

	if !r.Data.ContractType.Valid() {
		errs = append(errs, validator.ValidationError{
			Field:   string(wizard.FieldContractType),
			Message: "Contract type is required",
		})
	}

	for _, step := range []wizard.Step{wizard.StepPersonalDetails, wizard.StepRoleDetails, wizard.StepPaymentAndDates} {
		errs = append(errs, fromErrorMap(wizard.ValidateStep(step, r.Data))...)
	}

	if !r.Data.Coverage.Valid() {
		errs = append(errs, validator.ValidationError{
			Field:   string(wizard.FieldCoverage),
			Message: "coverage must be empty or one of basic, standard, premium",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// ToInvitation converts validated wizard data into a pending invitation
func (r *CreateRequest) ToInvitation() Invitation {
	d := r.Data
	rate, _ := validator.ParseDecimal(d.PaymentRate)
	start, _ := validator.IsValidDate(d.StartDate)

	var end *time.Time
	if t, ok := validator.IsValidDate(d.EndDate); ok {
		end = &t
	}

	return Invitation{
		CompanyID:        r.CompanyID,
		CreatedBy:        r.CreatedBy,
		ContractType:     string(d.ContractType),
		Entity:           strings.TrimSpace(d.Entity),
		PersonalEmail:    strings.TrimSpace(d.PersonalEmail),
		LegalFirstName:   strings.TrimSpace(d.LegalFirstName),
		LegalLastName:    strings.TrimSpace(d.LegalLastName),
		ContractName:     strings.TrimSpace(d.ContractName),
		TaxResidence:     strings.TrimSpace(d.TaxResidence),
		Manager:          d.Manager,
		Report:           d.Report,
		WorkerID:         d.WorkerID,
		ExternalWorkerID: d.ExternalWorkerID,
		Department:       d.Department,
		HiringObjective:  d.HiringObjective,
		Role:             d.Role,
		SeniorityLevel:   d.SeniorityLevel,
		ScopeOfWork:      d.ScopeOfWork,
		Currency:         strings.ToUpper(strings.TrimSpace(d.Currency)),
		PaymentRate:      rate,
		InvoicePolicy:    d.InvoicePolicy,
		StartDate:        start,
		EndDate:          end,
		Coverage:         string(d.Coverage),
		Equipment:        d.Equipment,
		CoworkingSpace:   d.CoworkingSpace,
		Equity:           d.Equity,
		Status:           StatusPending,
	}
}

func fromErrorMap(m wizard.ErrorMap) validator.ValidationErrors {
	var errs validator.ValidationErrors
	for field, msg := range m {
		errs = append(errs, validator.ValidationError{Field: string(field), Message: msg})
	}
	sort.Slice(errs, func(i, j int) bool { return errs[i].Field < errs[j].Field })
	return errs
}

// ListRequest - GET /invitations query params
type ListRequest struct {
	Status string `json:"status"`
	Page   int    `json:"page"`
	Limit  int    `json:"limit"`
}

func (r *ListRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.Status != "" && !Status(r.Status).Valid() {
		errs = append(errs, validator.ValidationError{
			Field:   "status",
			Message: "status must be one of pending, revoked",
		})
	}

	if r.Page < 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "page",
			Message: "page must be a positive number",
		})
	}

	if r.Limit < 0 || r.Limit > MaxPageLimit {
		errs = append(errs, validator.ValidationError{
			Field:   "limit",
			Message: "limit must be between 1 and 100",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// Normalize fills in default pagination
func (r *ListRequest) Normalize() {
	if r.Page == 0 {
		r.Page = 1
	}
	if r.Limit == 0 {
		r.Limit = DefaultPageLimit
	}
}

// InvitationResponse - GET /invitations/{id}
type InvitationResponse struct {
	ID               string  `json:"id"`
	CompanyID        string  `json:"company_id"`
	CreatedBy        string  `json:"created_by"`
	ContractType     string  `json:"contract_type"`
	Entity           string  `json:"entity"`
	PersonalEmail    string  `json:"personal_email"`
	LegalFirstName   string  `json:"legal_first_name"`
	LegalLastName    string  `json:"legal_last_name"`
	ContractName     string  `json:"contract_name"`
	TaxResidence     string  `json:"tax_residence"`
	Manager          string  `json:"manager,omitempty"`
	Report           string  `json:"report,omitempty"`
	WorkerID         string  `json:"worker_id"`
	ExternalWorkerID string  `json:"external_worker_id,omitempty"`
	Department       string  `json:"department,omitempty"`
	HiringObjective  string  `json:"hiring_objective,omitempty"`
	Role             string  `json:"role,omitempty"`
	SeniorityLevel   string  `json:"seniority_level,omitempty"`
	ScopeOfWork      string  `json:"scope_of_work"`
	Currency         string  `json:"currency"`
	PaymentRate      string  `json:"payment_rate"`
	InvoicePolicy    string  `json:"invoice_policy"`
	StartDate        string  `json:"start_date"`
	EndDate          *string `json:"end_date,omitempty"`
	Coverage         string  `json:"coverage,omitempty"`
	Equipment        bool    `json:"equipment"`
	CoworkingSpace   bool    `json:"coworking_space"`
	Equity           bool    `json:"equity"`
	Status           string  `json:"status"`
	RevokedAt        *string `json:"revoked_at,omitempty"`
	CreatedAt        string  `json:"created_at"`
	UpdatedAt        string  `json:"updated_at"`
}

// NewInvitationResponse maps an entity to its API shape
func NewInvitationResponse(inv Invitation) InvitationResponse {
	resp := InvitationResponse{
		ID:               inv.ID,
		CompanyID:        inv.CompanyID,
		CreatedBy:        inv.CreatedBy,
		ContractType:     inv.ContractType,
		Entity:           inv.Entity,
		PersonalEmail:    inv.PersonalEmail,
		LegalFirstName:   inv.LegalFirstName,
		LegalLastName:    inv.LegalLastName,
		ContractName:     inv.ContractName,
		TaxResidence:     inv.TaxResidence,
		Manager:          inv.Manager,
		Report:           inv.Report,
		WorkerID:         inv.WorkerID,
		ExternalWorkerID: inv.ExternalWorkerID,
		Department:       inv.Department,
		HiringObjective:  inv.HiringObjective,
		Role:             inv.Role,
		SeniorityLevel:   inv.SeniorityLevel,
		ScopeOfWork:      inv.ScopeOfWork,
		Currency:         inv.Currency,
		PaymentRate:      inv.PaymentRate.String(),
		InvoicePolicy:    inv.InvoicePolicy,
		StartDate:        inv.StartDate.Format(validator.DateLayout),
		Coverage:         inv.Coverage,
		Equipment:        inv.Equipment,
		CoworkingSpace:   inv.CoworkingSpace,
		Equity:           inv.Equity,
		Status:           string(inv.Status),
		CreatedAt:        inv.CreatedAt.Format(time.RFC3339),
		UpdatedAt:        inv.UpdatedAt.Format(time.RFC3339),
	}

	if inv.EndDate != nil {
		s := inv.EndDate.Format(validator.DateLayout)
		resp.EndDate = &s
	}
	if inv.RevokedAt != nil {
		s := inv.RevokedAt.Format(time.RFC3339)
		resp.RevokedAt = &s
	}

	return resp
}

// ListResponse - GET /invitations
type ListResponse struct {
	Invitations []InvitationResponse `json:"invitations"`
	TotalItems  int64                `json:"-"`
	Page        int                  `json:"-"`
	Limit       int                  `json:"-"`
	TotalPages  int                  `json:"-"`
}
