package wizard

// Step enumerates the screens of the contractor invitation wizard.
type Step int

const (
	StepContractType    Step = iota // 0, initial
	StepPersonalDetails             // 1
	StepRoleDetails                 // 2
	StepPaymentAndDates             // 3
	StepCompliance                  // 4
	StepBenefits                    // 5
	StepReview                      // 6, left only through Complete or Close
)

const stepCount = 7

var stepLabels = [stepCount]string{
	"Contract type",
	"Personal details",
	"Role details",
	"Payment and dates",
	"Compliance",
	"Benefits",
	"Review and sign",
}

var stepFields = [stepCount][]Field{
	StepContractType: {FieldContractType},
	StepPersonalDetails: {
		FieldEntity, FieldPersonalEmail, FieldLegalFirstName, FieldLegalLastName,
		FieldContractName, FieldTaxResidence, FieldManager, FieldReport,
		FieldWorkerID, FieldExternalWorkerID, FieldDepartment, FieldHiringObjective,
	},
	StepRoleDetails:     {FieldRole, FieldSeniorityLevel, FieldScopeOfWork},
	StepPaymentAndDates: {FieldCurrency, FieldPaymentRate, FieldInvoicePolicy, FieldStartDate, FieldEndDate},
	StepCompliance:      {FieldCoverage},
	StepBenefits:        {FieldEquipment, FieldCoworkingSpace, FieldEquity},
	StepReview:          nil,
}

// Steps returns every step in order.
func Steps() []Step {
	steps := make([]Step, stepCount)
	for i := range steps {
		steps[i] = Step(i)
	}
	return steps
}

func (s Step) Valid() bool {
	return s >= StepContractType && s <= StepReview
}

// Label is the human readable title of the step.
func (s Step) Label() string {
	if !s.Valid() {
		return "Unknown"
	}
	return stepLabels[s]
}

func (s Step) String() string {
	return s.Label()
}

// Fields returns the WizardData fields collected on this step.
func (s Step) Fields() []Field {
	if !s.Valid() {
		return nil
	}
	fields := make([]Field, len(stepFields[s]))
	copy(fields, stepFields[s])
	return fields
}

// IsDataEntry reports whether the step is one of the gated data entry steps 1-5.
func (s Step) IsDataEntry() bool {
	return s >= StepPersonalDetails && s <= StepBenefits
}
