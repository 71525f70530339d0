package workflow

import (
	"testing"

	"github.com/sifan077/snipr/internal/app/model"
	"github.com/stretchr/testify/assert"
)

func TestReduce_FormEdits(t *testing.T) {
	s := model.IdleState()

	s = Reduce(s, EditURL{Value: "https://example.com"})
	s = Reduce(s, EditAlias{Value: "my link!@#"})
	s = Reduce(s, SelectExpiration{Option: model.ExpirationCustom})
	s = Reduce(s, SetExpirationDate{Date: "2026-11-01"})

	assert.Equal(t, model.WorkflowIdle, s.Status)
	assert.Equal(t, "https://example.com", s.Form.SourceURL)
	assert.Equal(t, "mylink", s.Form.CustomAlias)
	assert.Equal(t, model.ExpirationCustom, s.Form.ExpirationOption)
	assert.Equal(t, "2026-11-01", s.Form.ExpirationDate)

	s = Reduce(s, SelectExpiration{Option: model.ExpirationOneDay})
	assert.Empty(t, s.Form.ExpirationDate, "leaving custom clears the date")

	s = Reduce(s, SetExpirationDate{Date: "2026-11-01"})
	assert.Empty(t, s.Form.ExpirationDate, "date is only accepted for custom")

	s = Reduce(s, SelectExpiration{Option: "forever"})
	assert.Equal(t, model.ExpirationOneDay, s.Form.ExpirationOption)
}

func TestReduce_SubmissionLifecycle(t *testing.T) {
	req := model.LinkRequest{URL: "https://example.com", ExpirationOption: model.ExpirationNever}
	s := Reduce(model.IdleState(), EditURL{Value: req.URL})

	s = Reduce(s, SubmitStarted{Request: req})
	assert.Equal(t, model.WorkflowSubmitting, s.Status)
	assert.Equal(t, &req, s.InFlight)

	// Edits and a second start are ignored while in flight.
	busy := s
	s = Reduce(s, EditURL{Value: "https://other.example"})
	s = Reduce(s, SubmitStarted{Request: model.LinkRequest{URL: "https://other.example"}})
	assert.Equal(t, busy, s)

	s = Reduce(s, SubmitSucceeded{Result: model.LinkResult{ShortURL: "https://s.ly/abc"}})
	assert.Equal(t, model.WorkflowSucceeded, s.Status)
	assert.Nil(t, s.InFlight)
	assert.Equal(t, "https://s.ly/abc", s.Result.ShortURL)

	// Terminal states never leave on their own.
	done := s
	s = Reduce(s, SubmitFailed{Message: "late"})
	s = Reduce(s, EditAlias{Value: "x"})
	assert.Equal(t, done, s)

	s = Reduce(s, Reset{})
	assert.Equal(t, model.IdleState(), s)
}

func TestReduce_Failure(t *testing.T) {
	s := Reduce(model.IdleState(), SubmitStarted{})
	s = Reduce(s, SubmitFailed{Message: "alias taken"})

	assert.Equal(t, model.WorkflowFailed, s.Status)
	assert.Equal(t, "alias taken", s.Message)
	assert.Nil(t, s.Result)

	s = Reduce(s, Reset{})
	assert.Equal(t, model.IdleState(), s)
}

func TestReduce_IgnoresOutOfOrderActions(t *testing.T) {
	idle := model.IdleState()

	assert.Equal(t, idle, Reduce(idle, SubmitSucceeded{}))
	assert.Equal(t, idle, Reduce(idle, SubmitFailed{Message: "x"}))
	assert.Equal(t, idle, Reduce(idle, Reset{}))
	assert.Equal(t, idle, Reduce(idle, nil))
}
