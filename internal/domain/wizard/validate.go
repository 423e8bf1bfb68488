package wizard

import (
	"github.com/mind-links/contractor-backend-go/internal/pkg/validator"
)

// EmailValidator reports whether an address is acceptable.
type EmailValidator func(email string) bool

// Validator computes per-step error maps. The zero value is not usable; build
// one with NewValidator.
type Validator struct {
	email EmailValidator
}

// NewValidator returns a step validator. A nil email validator falls back to
// validator.MatchesEmailPattern (local@domain.tld).
func NewValidator(email EmailValidator) Validator {
	if email == nil {
		email = validator.MatchesEmailPattern
	}
	return Validator{email: email}
}

var defaultValidator = NewValidator(nil)

// ValidateStep runs the default validator. See Validator.ValidateStep.
func ValidateStep(step Step, data Data) ErrorMap {
	return defaultValidator.ValidateStep(step, data)
}

// ValidateStep is a pure function of (step, data). Steps without programmatic
// rules (0, 4, 5, 6) always yield an empty map.
func (v Validator) ValidateStep(step Step, data Data) ErrorMap {
	errs := make(ErrorMap)

	switch step {
	case StepPersonalDetails:
		v.validatePersonalDetails(data, errs)
	case StepRoleDetails:
		required(errs, FieldScopeOfWork, data.ScopeOfWork, "Scope of work is required")
	case StepPaymentAndDates:
		v.validatePaymentAndDates(data, errs)
	}

	return errs
}

func (v Validator) validatePersonalDetails(data Data, errs ErrorMap) {
	required(errs, FieldEntity, data.Entity, "Entity is required")

	if required(errs, FieldPersonalEmail, data.PersonalEmail, "Personal email is required") &&
		!v.email(data.PersonalEmail) {
		errs[FieldPersonalEmail] = "Please enter a valid email address"
	}

	required(errs, FieldLegalFirstName, data.LegalFirstName, "Legal first name is required")
	required(errs, FieldLegalLastName, data.LegalLastName, "Legal last name is required")
	required(errs, FieldContractName, data.ContractName, "Contract name is required")
	required(errs, FieldTaxResidence, data.TaxResidence, "Tax residence is required")
	required(errs, FieldWorkerID, data.WorkerID, "Worker ID is required")
}

func (v Validator) validatePaymentAndDates(data Data, errs ErrorMap) {
	if required(errs, FieldPaymentRate, data.PaymentRate, "Payment rate is required") {
		rate, ok := validator.ParseDecimal(data.PaymentRate)
		switch {
		case !ok:
			errs[FieldPaymentRate] = "Please enter a valid payment rate"
		case !rate.IsPositive():
			errs[FieldPaymentRate] = "Payment rate must be greater than 0"
		}
	}

	required(errs, FieldInvoicePolicy, data.InvoicePolicy, "Invoice policy is required")

	var (
		start      validator.Date
		startValid bool
	)
	if required(errs, FieldStartDate, data.StartDate, "Start date is required") {
		t, ok := validator.IsValidDate(data.StartDate)
		if !ok {
			errs[FieldStartDate] = "Please enter a valid start date"
		}
		start, startValid = validator.Date(t), ok
	}

	if data.EndDate == "" {
		return
	}
	t, ok := validator.IsValidDate(data.EndDate)
	if !ok {
		errs[FieldEndDate] = "Please enter a valid end date"
		return
	}
	if startValid && validator.Date(t).Before(start) {
		errs[FieldEndDate] = "End date cannot be before start date"
	}
}

// required records msg for field when value is the empty string and reports
// whether the value was present. Whitespace counts as a value.
func required(errs ErrorMap, field Field, value, msg string) bool {
	if value == "" {
		errs[field] = msg
		return false
	}
	return true
}
