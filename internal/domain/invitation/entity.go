package invitation

import (
	"time"

	"github.com/shopspring/decimal"
)

// Status represents the status of a contractor invitation
type Status string

const (
	StatusPending Status = "pending"
	StatusRevoked Status = "revoked"
)

func (s Status) Valid() bool {
	return s == StatusPending || s == StatusRevoked
}

// Invitation is a contractor invitation produced by a completed wizard
type Invitation struct {
	ID        string
	CompanyID string
	CreatedBy string

	ContractType string

	Entity           string
	PersonalEmail    string
	LegalFirstName   string
	LegalLastName    string
	ContractName     string
	TaxResidence     string
	Manager          string
	Report           string
	WorkerID         string
	ExternalWorkerID string
	Department       string
	HiringObjective  string

	Role           string
	SeniorityLevel string
	ScopeOfWork    string

	Currency      string
	PaymentRate   decimal.Decimal
	InvoicePolicy string
	StartDate     time.Time
	EndDate       *time.Time

	Coverage       string
	Equipment      bool
	CoworkingSpace bool
	Equity         bool

	Status    Status
	RevokedAt *time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// FullName joins the contractor's legal names
func (i *Invitation) FullName() string {
	return i.LegalFirstName + " " + i.LegalLastName
}

// CanBeRevoked checks if the invitation is still pending
func (i *Invitation) CanBeRevoked() bool {
	return i.Status == StatusPending
}
