package wizard

import (
	"encoding/json"
	"sort"
)

// ContractType is chosen on the first step. The zero value means unset.
type ContractType string

const (
	ContractTypeFixedRate  ContractType = "fixed-rate"
	ContractTypePayAsYouGo ContractType = "pay-as-you-go"
	ContractTypeMilestone  ContractType = "milestone"
	ContractTypeUnset      ContractType = ""
)

func ContractTypes() []ContractType {
	return []ContractType{ContractTypeFixedRate, ContractTypePayAsYouGo, ContractTypeMilestone}
}

func (c ContractType) Valid() bool {
	switch c {
	case ContractTypeFixedRate, ContractTypePayAsYouGo, ContractTypeMilestone:
		return true
	}
	return false
}

// CoveragePlan is the optional compliance coverage selected on step 4.
type CoveragePlan string

const (
	CoverageNone     CoveragePlan = ""
	CoverageBasic    CoveragePlan = "basic"
	CoverageStandard CoveragePlan = "standard"
	CoveragePremium  CoveragePlan = "premium"
)

func (c CoveragePlan) Valid() bool {
	switch c {
	case CoverageNone, CoverageBasic, CoverageStandard, CoveragePremium:
		return true
	}
	return false
}

// Field names a WizardData field. Values match the JSON keys of Data.
type Field string

const (
	FieldContractType     Field = "contractType"
	FieldEntity           Field = "entity"
	FieldPersonalEmail    Field = "personalEmail"
	FieldLegalFirstName   Field = "legalFirstName"
	FieldLegalLastName    Field = "legalLastName"
	FieldContractName     Field = "contractName"
	FieldTaxResidence     Field = "taxResidence"
	FieldManager          Field = "manager"
	FieldReport           Field = "report"
	FieldWorkerID         Field = "workerId"
	FieldExternalWorkerID Field = "externalWorkerId"
	FieldDepartment       Field = "department"
	FieldHiringObjective  Field = "hiringObjective"
	FieldRole             Field = "role"
	FieldSeniorityLevel   Field = "seniorityLevel"
	FieldScopeOfWork      Field = "scopeOfWork"
	FieldCurrency         Field = "currency"
	FieldPaymentRate      Field = "paymentRate"
	FieldInvoicePolicy    Field = "invoicePolicy"
	FieldStartDate        Field = "startDate"
	FieldEndDate          Field = "endDate"
	FieldCoverage         Field = "coverage"
	FieldEquipment        Field = "equipment"
	FieldCoworkingSpace   Field = "coworkingSpace"
	FieldEquity           Field = "equity"
)

const (
	DefaultCurrency = "USD"
	DefaultWorkerID = "1"
)

// Data is the form record accumulated across all steps of one invitation.
type Data struct {
	ContractType ContractType `json:"contractType"`

	Entity           string `json:"entity"`
	PersonalEmail    string `json:"personalEmail"`
	LegalFirstName   string `json:"legalFirstName"`
	LegalLastName    string `json:"legalLastName"`
	ContractName     string `json:"contractName"`
	TaxResidence     string `json:"taxResidence"`
	Manager          string `json:"manager"`
	Report           string `json:"report"`
	WorkerID         string `json:"workerId"`
	ExternalWorkerID string `json:"externalWorkerId"`
	Department       string `json:"department"`
	HiringObjective  string `json:"hiringObjective"`

	Role           string `json:"role"`
	SeniorityLevel string `json:"seniorityLevel"`
	ScopeOfWork    string `json:"scopeOfWork"`

	Currency      string `json:"currency"`
	PaymentRate   string `json:"paymentRate"`
	InvoicePolicy string `json:"invoicePolicy"`
	StartDate     string `json:"startDate"` // YYYY-MM-DD
	EndDate       string `json:"endDate"`   // YYYY-MM-DD, optional

	Coverage CoveragePlan `json:"coverage"`

	Equipment      bool `json:"equipment"`
	CoworkingSpace bool `json:"coworkingSpace"`
	Equity         bool `json:"equity"`
}

// NewData returns the canonical initial WizardData. Both the initializer and
// the reset paths go through here.
func NewData() Data {
	return Data{
		Currency: DefaultCurrency,
		WorkerID: DefaultWorkerID,
	}
}

// ErrorMap maps a field to its human readable validation message.
type ErrorMap map[Field]string

func (m ErrorMap) Clone() ErrorMap {
	out := make(ErrorMap, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// ToMap converts the map to plain string keys for API responses.
func (m ErrorMap) ToMap() map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[string(k)] = v
	}
	return out
}

// StepSet is a set of steps. It marshals as a sorted JSON array.
type StepSet map[Step]struct{}

func (s StepSet) Add(step Step) {
	s[step] = struct{}{}
}

func (s StepSet) Has(step Step) bool {
	_, ok := s[step]
	return ok
}

// Sorted returns the members in ascending order.
func (s StepSet) Sorted() []Step {
	steps := make([]Step, 0, len(s))
	for step := range s {
		steps = append(steps, step)
	}
	sort.Slice(steps, func(i, j int) bool { return steps[i] < steps[j] })
	return steps
}

func (s StepSet) Clone() StepSet {
	out := make(StepSet, len(s))
	for step := range s {
		out[step] = struct{}{}
	}
	return out
}

func (s StepSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Sorted())
}

func (s *StepSet) UnmarshalJSON(b []byte) error {
	var steps []Step
	if err := json.Unmarshal(b, &steps); err != nil {
		return err
	}
	set := make(StepSet, len(steps))
	for _, step := range steps {
		set.Add(step)
	}
	*s = set
	return nil
}

// State is the ephemeral navigation state of one running wizard.
type State struct {
	CurrentStep    Step     `json:"current_step"`
	CompletedSteps StepSet  `json:"completed_steps"`
	Errors         ErrorMap `json:"errors"`
}

func newState() State {
	return State{
		CurrentStep:    StepContractType,
		CompletedSteps: make(StepSet),
		Errors:         make(ErrorMap),
	}
}

func (s State) clone() State {
	return State{
		CurrentStep:    s.CurrentStep,
		CompletedSteps: s.CompletedSteps.Clone(),
		Errors:         s.Errors.Clone(),
	}
}

// Snapshot is the serialisable form of a wizard used by session storage.
type Snapshot struct {
	Open  bool  `json:"open"`
	State State `json:"state"`
	Data  Data  `json:"data"`
}

// Clone returns a deep copy of the snapshot.
func (s Snapshot) Clone() Snapshot {
	s.State = s.State.clone()
	return s
}
