package wizard

import (
	"github.com/mind-links/contractor-backend-go/internal/pkg/validator"
)

// Patch is a partial WizardData update. Nil fields are left untouched.
type Patch struct {
	ContractType *ContractType `json:"contractType,omitempty"`

	Entity           *string `json:"entity,omitempty"`
	PersonalEmail    *string `json:"personalEmail,omitempty"`
	LegalFirstName   *string `json:"legalFirstName,omitempty"`
	LegalLastName    *string `json:"legalLastName,omitempty"`
	ContractName     *string `json:"contractName,omitempty"`
	TaxResidence     *string `json:"taxResidence,omitempty"`
	Manager          *string `json:"manager,omitempty"`
	Report           *string `json:"report,omitempty"`
	WorkerID         *string `json:"workerId,omitempty"`
	ExternalWorkerID *string `json:"externalWorkerId,omitempty"`
	Department       *string `json:"department,omitempty"`
	HiringObjective  *string `json:"hiringObjective,omitempty"`

	Role           *string `json:"role,omitempty"`
	SeniorityLevel *string `json:"seniorityLevel,omitempty"`
	ScopeOfWork    *string `json:"scopeOfWork,omitempty"`

	Currency      *string `json:"currency,omitempty"`
	PaymentRate   *string `json:"paymentRate,omitempty"`
	InvoicePolicy *string `json:"invoicePolicy,omitempty"`
	StartDate     *string `json:"startDate,omitempty"`
	EndDate       *string `json:"endDate,omitempty"`

	Coverage *CoveragePlan `json:"coverage,omitempty"`

	Equipment      *bool `json:"equipment,omitempty"`
	CoworkingSpace *bool `json:"coworkingSpace,omitempty"`
	Equity         *bool `json:"equity,omitempty"`
}

// Validate checks enumerated values before the patch reaches a wizard. It
// does not run step rules; those are reported through the wizard error map.
func (p *Patch) Validate() error {
	var errs validator.ValidationErrors

	if len(p.Fields()) == 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "patch",
			Message: "at least one field is required",
		})
	}

	if p.ContractType != nil && !p.ContractType.Valid() {
		errs = append(errs, validator.ValidationError{
			Field:   string(FieldContractType),
			Message: "contractType must be one of fixed-rate, pay-as-you-go, milestone",
		})
	}

	if p.Coverage != nil && !p.Coverage.Valid() {
		errs = append(errs, validator.ValidationError{
			Field:   string(FieldCoverage),
			Message: "coverage must be empty or one of basic, standard, premium",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// Fields lists the fields present in the patch.
func (p *Patch) Fields() []Field {
	var fields []Field
	add := func(present bool, f Field) {
		if present {
			fields = append(fields, f)
		}
	}

	add(p.ContractType != nil, FieldContractType)
	add(p.Entity != nil, FieldEntity)
	add(p.PersonalEmail != nil, FieldPersonalEmail)
	add(p.LegalFirstName != nil, FieldLegalFirstName)
	add(p.LegalLastName != nil, FieldLegalLastName)
	add(p.ContractName != nil, FieldContractName)
	add(p.TaxResidence != nil, FieldTaxResidence)
	add(p.Manager != nil, FieldManager)
	add(p.Report != nil, FieldReport)
	add(p.WorkerID != nil, FieldWorkerID)
	add(p.ExternalWorkerID != nil, FieldExternalWorkerID)
	add(p.Department != nil, FieldDepartment)
	add(p.HiringObjective != nil, FieldHiringObjective)
	add(p.Role != nil, FieldRole)
	add(p.SeniorityLevel != nil, FieldSeniorityLevel)
	add(p.ScopeOfWork != nil, FieldScopeOfWork)
	add(p.Currency != nil, FieldCurrency)
	add(p.PaymentRate != nil, FieldPaymentRate)
	add(p.InvoicePolicy != nil, FieldInvoicePolicy)
	add(p.StartDate != nil, FieldStartDate)
	add(p.EndDate != nil, FieldEndDate)
	add(p.Coverage != nil, FieldCoverage)
	add(p.Equipment != nil, FieldEquipment)
	add(p.CoworkingSpace != nil, FieldCoworkingSpace)
	add(p.Equity != nil, FieldEquity)

	return fields
}

// applyTo merges the present fields into d, last write wins.
func (p *Patch) applyTo(d *Data) {
	setString := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	setBool := func(dst *bool, src *bool) {
		if src != nil {
			*dst = *src
		}
	}

	if p.ContractType != nil {
		d.ContractType = *p.ContractType
	}
	setString(&d.Entity, p.Entity)
	setString(&d.PersonalEmail, p.PersonalEmail)
	setString(&d.LegalFirstName, p.LegalFirstName)
	setString(&d.LegalLastName, p.LegalLastName)
	setString(&d.ContractName, p.ContractName)
	setString(&d.TaxResidence, p.TaxResidence)
	setString(&d.Manager, p.Manager)
	setString(&d.Report, p.Report)
	setString(&d.WorkerID, p.WorkerID)
	setString(&d.ExternalWorkerID, p.ExternalWorkerID)
	setString(&d.Department, p.Department)
	setString(&d.HiringObjective, p.HiringObjective)
	setString(&d.Role, p.Role)
	setString(&d.SeniorityLevel, p.SeniorityLevel)
	setString(&d.ScopeOfWork, p.ScopeOfWork)
	setString(&d.Currency, p.Currency)
	setString(&d.PaymentRate, p.PaymentRate)
	setString(&d.InvoicePolicy, p.InvoicePolicy)
	setString(&d.StartDate, p.StartDate)
	setString(&d.EndDate, p.EndDate)
	if p.Coverage != nil {
		d.Coverage = *p.Coverage
	}
	setBool(&d.Equipment, p.Equipment)
	setBool(&d.CoworkingSpace, p.CoworkingSpace)
	setBool(&d.Equity, p.Equity)
}

// View - GET /wizards/{id} and the body of every wizard mutation response
type View struct {
	ID             string            `json:"id"`
	CurrentStep    Step              `json:"current_step"`
	StepLabel      string            `json:"step_label"`
	CompletedSteps []Step            `json:"completed_steps"`
	Errors         map[string]string `json:"errors"`
	Data           Data              `json:"data"`
	ExpiresAt      string            `json:"expires_at"`
}

// AdvanceResponse - POST /wizards/{id}/advance
type AdvanceResponse struct {
	Advanced bool `json:"advanced"`
	View
}

// RetreatResponse - POST /wizards/{id}/retreat
type RetreatResponse struct {
	Retreated bool `json:"retreated"`
	View
}

// CompleteResponse - POST /wizards/{id}/complete
type CompleteResponse struct {
	InvitationID string `json:"invitation_id"`
	Status       string `json:"status"`
}
