package wizard

// Wizard is the step transition controller for one contractor invitation.
//
// A Wizard is owned by a single caller and is not safe for concurrent use;
// every operation runs to completion before the next one observes the state.
// While the wizard is closed no operation mutates it.
type Wizard struct {
	open      bool
	state     State
	data      Data
	validator Validator

	onComplete func(Data)
	onClose    func()
}

// Option configures a Wizard.
type Option func(*Wizard)

// WithValidator replaces the default step validator, e.g. to plug in a
// stricter email check.
func WithValidator(v Validator) Option {
	return func(w *Wizard) {
		w.validator = v
	}
}

// WithOnComplete sets the callback invoked with the final data snapshot.
func WithOnComplete(fn func(Data)) Option {
	return func(w *Wizard) {
		w.onComplete = fn
	}
}

// WithOnClose sets the callback invoked when the wizard is abandoned.
func WithOnClose(fn func()) Option {
	return func(w *Wizard) {
		w.onClose = fn
	}
}

// New returns a closed wizard holding the initial state.
func New(opts ...Option) *Wizard {
	w := &Wizard{
		state:     newState(),
		data:      NewData(),
		validator: defaultValidator,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(w)
		}
	}
	return w
}

// Open makes the wizard active. Opening a closed wizard starts from fresh
// state; opening an already open wizard changes nothing.
func (w *Wizard) Open() {
	if w.open {
		return
	}
	w.reset()
	w.open = true
}

// SetOpen mirrors the external isOpen flag. Turning it off keeps the state as
// is; turning it back on starts fresh.
func (w *Wizard) SetOpen(open bool) {
	if open {
		w.Open()
		return
	}
	w.open = false
}

func (w *Wizard) IsOpen() bool {
	return w.open
}

// CurrentStep returns the active step.
func (w *Wizard) CurrentStep() Step {
	return w.state.CurrentStep
}

// State returns a copy of the navigation state.
func (w *Wizard) State() State {
	return w.state.clone()
}

// Data returns a copy of the accumulated form data.
func (w *Wizard) Data() Data {
	return w.data
}

// Update merges patch into the form data and clears the stored error of
// every field it touches. Nothing is re-validated.
func (w *Wizard) Update(patch Patch) error {
	if !w.open {
		return ErrWizardClosed
	}
	if patch.ContractType != nil && w.state.CurrentStep != StepContractType {
		return ErrContractTypeLocked
	}

	patch.applyTo(&w.data)
	for _, field := range patch.Fields() {
		delete(w.state.Errors, field)
	}
	return nil
}

// Advance tries to move one step forward and reports whether it did.
//
// Step 0 requires a contract type. Steps 1-5 store the step validator's
// result in the error map and move on only when it is empty, recording the
// step as completed. The review step never advances.
func (w *Wizard) Advance() bool {
	if !w.open {
		return false
	}

	step := w.state.CurrentStep
	switch {
	case step == StepContractType:
		if w.data.ContractType == ContractTypeUnset {
			return false
		}
		w.state.CurrentStep = StepPersonalDetails
		return true

	case step.IsDataEntry():
		errs := w.validator.ValidateStep(step, w.data)
		w.state.Errors = errs
		if len(errs) > 0 {
			return false
		}
		w.state.CompletedSteps.Add(step)
		w.state.CurrentStep = step + 1
		return true
	}

	return false
}

// Retreat moves one step back without validating. Errors and completed
// steps are left untouched.
func (w *Wizard) Retreat() bool {
	if !w.open || w.state.CurrentStep == StepContractType {
		return false
	}
	w.state.CurrentStep--
	return true
}

// Complete hands the final data to the completion callback and resets the
// wizard. It is only allowed from the review step.
func (w *Wizard) Complete() error {
	if !w.open {
		return ErrWizardClosed
	}
	if w.state.CurrentStep != StepReview {
		return ErrNotOnReviewStep
	}

	if w.onComplete != nil {
		w.onComplete(w.data)
	}
	w.reset()
	return nil
}

// Close abandons the wizard from any step: the state is reset and the close
// callback fires instead of the completion callback.
func (w *Wizard) Close() {
	if !w.open {
		return
	}
	w.reset()
	if w.onClose != nil {
		w.onClose()
	}
}

// Snapshot captures the wizard for storage.
func (w *Wizard) Snapshot() Snapshot {
	return Snapshot{
		Open:  w.open,
		State: w.state.clone(),
		Data:  w.data,
	}
}

// Restore replaces the wizard's state with s. Callbacks and validator are kept.
func (w *Wizard) Restore(s Snapshot) {
	w.open = s.Open
	w.state = s.State.clone()
	w.data = s.Data
	if !w.state.CurrentStep.Valid() {
		w.state.CurrentStep = StepContractType
	}
}

func (w *Wizard) reset() {
	w.state = newState()
	w.data = NewData()
}
