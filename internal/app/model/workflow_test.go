package model

import "testing"

func TestWorkflowStatus_IsBusy(t *testing.T) {
	tests := []struct {
		status   WorkflowStatus
		expected bool
	}{
		{WorkflowIdle, false},
		{WorkflowSubmitting, true},
		{WorkflowSucceeded, false},
		{WorkflowFailed, false},
	}

	for _, test := range tests {
		result := test.status.IsBusy()
		if result != test.expected {
			t.Errorf("WorkflowStatus(%s).IsBusy() = %v, expected %v", test.status, result, test.expected)
		}
	}
}

func TestWorkflowStatus_IsTerminal(t *testing.T) {
	tests := []struct {
		status   WorkflowStatus
		expected bool
	}{
		{WorkflowIdle, false},
		{WorkflowSubmitting, false},
		{WorkflowSucceeded, true},
		{WorkflowFailed, true},
	}

	for _, test := range tests {
		result := test.status.IsTerminal()
		if result != test.expected {
			t.Errorf("WorkflowStatus(%s).IsTerminal() = %v, expected %v", test.status, result, test.expected)
		}
	}
}

func TestIdleState(t *testing.T) {
	s := IdleState()
	if s.Status != WorkflowIdle {
		t.Errorf("IdleState().Status = %s, expected Idle", s.Status)
	}
	if s.Form.ExpirationOption != ExpirationNever {
		t.Errorf("IdleState() option = %s, expected never", s.Form.ExpirationOption)
	}
	if s.Result != nil || s.InFlight != nil || s.Message != "" {
		t.Errorf("IdleState() carries leftovers: %+v", s)
	}
}
