package wizard

import "errors"

var (
	ErrWizardClosed       = errors.New("wizard is not open")
	ErrContractTypeLocked = errors.New("contract type can only be changed on the contract type step")
	ErrNotOnReviewStep    = errors.New("wizard can only be completed from the review step")
	ErrSessionNotFound    = errors.New("wizard session not found")
	ErrInvalidSessionID   = errors.New("invalid wizard session id")
)
