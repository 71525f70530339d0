package model

// WorkflowStatus is the phase of the link-creation workflow.
type WorkflowStatus string

const (
	// WorkflowIdle accepts form edits and a submit.
	WorkflowIdle WorkflowStatus = "Idle"

	// WorkflowSubmitting means one request is in flight.
	WorkflowSubmitting WorkflowStatus = "Submitting"

	// WorkflowSucceeded holds a LinkResult until reset.
	WorkflowSucceeded WorkflowStatus = "Succeeded"

	// WorkflowFailed holds a user-facing message until reset.
	WorkflowFailed WorkflowStatus = "Failed"
)

// String returns the string representation of WorkflowStatus
func (s WorkflowStatus) String() string {
	return string(s)
}

// IsBusy returns true while a submission is in flight
func (s WorkflowStatus) IsBusy() bool {
	return s == WorkflowSubmitting
}

// IsTerminal returns true for the states that only an explicit reset leaves
func (s WorkflowStatus) IsTerminal() bool {
	return s == WorkflowSucceeded || s == WorkflowFailed
}

// FormState holds the live, unvalidated values of the link form.
type FormState struct {
	SourceURL        string
	CustomAlias      string
	ExpirationOption ExpirationOption
	ExpirationDate   string // YYYY-MM-DD, empty when unset
}

// EmptyForm is the form a fresh workflow starts with.
func EmptyForm() FormState {
	return FormState{ExpirationOption: ExpirationNever}
}

// WorkflowState is the single value the submission controller mutates.
type WorkflowState struct {
	Status   WorkflowStatus
	Form     FormState
	InFlight *LinkRequest // set only while Submitting
	Result   *LinkResult  // set only in Succeeded
	Message  string       // set only in Failed
}

// IdleState returns the initial workflow state.
func IdleState() WorkflowState {
	return WorkflowState{Status: WorkflowIdle, Form: EmptyForm()}
}
