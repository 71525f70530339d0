package workflow

import "github.com/sifan077/snipr/internal/app/model"

// Action is one discrete event applied to the workflow state.
type Action interface {
	apply(model.WorkflowState) model.WorkflowState
}

type (
	// EditURL replaces the source URL.
	EditURL struct{ Value string }

	// EditAlias replaces the custom alias; disallowed characters are dropped.
	EditAlias struct{ Value string }

	// SelectExpiration changes the option and clears the date unless custom.
	SelectExpiration struct{ Option model.ExpirationOption }

	// SetExpirationDate sets the custom calendar date (YYYY-MM-DD).
	SetExpirationDate struct{ Date string }

	// SubmitStarted moves an Idle workflow to Submitting.
	SubmitStarted struct{ Request model.LinkRequest }

	// SubmitSucceeded completes the in-flight request.
	SubmitSucceeded struct{ Result model.LinkResult }

	// SubmitFailed completes the in-flight request with a user-facing message.
	SubmitFailed struct{ Message string }

	// Reset discards everything and returns to an empty Idle form.
	Reset struct{}
)

// Reduce is the pure transition function of the workflow state machine.
// Actions that are not legal in the current status return state unchanged.
func Reduce(state model.WorkflowState, action Action) model.WorkflowState {
	if action == nil {
		return state
	}
	return action.apply(state)
}

func (a EditURL) apply(s model.WorkflowState) model.WorkflowState {
	if s.Status != model.WorkflowIdle {
		return s
	}
	s.Form.SourceURL = a.Value
	return s
}

func (a EditAlias) apply(s model.WorkflowState) model.WorkflowState {
	if s.Status != model.WorkflowIdle {
		return s
	}
	s.Form.CustomAlias = SanitizeAlias(a.Value)
	return s
}

func (a SelectExpiration) apply(s model.WorkflowState) model.WorkflowState {
	if s.Status != model.WorkflowIdle {
		return s
	}
	if _, err := model.ParseExpirationOption(string(a.Option)); err != nil {
		return s
	}
	s.Form.ExpirationOption = a.Option
	if !a.Option.RequiresDate() {
		s.Form.ExpirationDate = ""
	}
	return s
}

func (a SetExpirationDate) apply(s model.WorkflowState) model.WorkflowState {
	if s.Status != model.WorkflowIdle || !s.Form.ExpirationOption.RequiresDate() {
		return s
	}
	s.Form.ExpirationDate = a.Date
	return s
}

func (a SubmitStarted) apply(s model.WorkflowState) model.WorkflowState {
	if s.Status != model.WorkflowIdle {
		return s
	}
	req := a.Request
	s.Status = model.WorkflowSubmitting
	s.InFlight = &req
	return s
}

func (a SubmitSucceeded) apply(s model.WorkflowState) model.WorkflowState {
	if s.Status != model.WorkflowSubmitting {
		return s
	}
	result := a.Result
	s.Status = model.WorkflowSucceeded
	s.InFlight = nil
	s.Result = &result
	return s
}

func (a SubmitFailed) apply(s model.WorkflowState) model.WorkflowState {
	if s.Status != model.WorkflowSubmitting {
		return s
	}
	s.Status = model.WorkflowFailed
	s.InFlight = nil
	s.Message = a.Message
	return s
}

func (Reset) apply(s model.WorkflowState) model.WorkflowState {
	if !s.Status.IsTerminal() {
		return s
	}
	return model.IdleState()
}
