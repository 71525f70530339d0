package workflow

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sifan077/snipr/internal/app/model"
	"go.uber.org/zap"
)

var (
	// ErrSubmissionInFlight rejects a submit while another one is pending.
	ErrSubmissionInFlight = errors.New("a submission is already in flight")

	// ErrNotIdle rejects a submit from Succeeded or Failed; reset first.
	ErrNotIdle = errors.New("workflow must be reset before submitting again")
)

// Submission outcomes reported to the Recorder.
const (
	OutcomeSucceeded = "succeeded"
	OutcomeFailed    = "failed"
	OutcomeRejected  = "rejected"
)

// Recorder receives workflow metrics.
type Recorder interface {
	ObserveSubmission(outcome string, elapsed time.Duration)
	ObserveDistribution(channel, outcome string)
}

type nopRecorder struct{}

func (nopRecorder) ObserveSubmission(string, time.Duration) {}
func (nopRecorder) ObserveDistribution(string, string)      {}

// ControllerDeps groups the collaborators of a Controller.
type ControllerDeps struct {
	Logger    *zap.Logger
	Shortener Shortener
	Clock     func() time.Time
	Metrics   Recorder
}

// Controller owns the single WorkflowState and is the only writer of it.
type Controller struct {
	logger    *zap.Logger
	shortener Shortener
	clock     func() time.Time
	metrics   Recorder

	mu        sync.Mutex
	state     model.WorkflowState
	listeners []func(model.WorkflowState)
}

// NewController returns an Idle controller.
func NewController(deps ControllerDeps) *Controller {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	metrics := deps.Metrics
	if metrics == nil {
		metrics = nopRecorder{}
	}
	return &Controller{
		logger:    logger.Named("workflow"),
		shortener: deps.Shortener,
		clock:     clock,
		metrics:   metrics,
		state:     model.IdleState(),
	}
}

// OnChange registers fn to receive every new state after it is committed.
func (c *Controller) OnChange(fn func(model.WorkflowState)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, fn)
}

// State returns a snapshot of the current workflow state.
func (c *Controller) State() model.WorkflowState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Result returns the link result while the workflow is Succeeded.
func (c *Controller) Result() (model.LinkResult, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state.Status != model.WorkflowSucceeded || c.state.Result == nil {
		return model.LinkResult{}, false
	}
	return *c.state.Result, true
}

func (c *Controller) SetURL(value string) model.WorkflowState {
	return c.Dispatch(EditURL{Value: value})
}

func (c *Controller) SetAlias(value string) model.WorkflowState {
	return c.Dispatch(EditAlias{Value: value})
}

func (c *Controller) SelectExpiration(option model.ExpirationOption) model.WorkflowState {
	return c.Dispatch(SelectExpiration{Option: option})
}

func (c *Controller) SetExpirationDate(date string) model.WorkflowState {
	return c.Dispatch(SetExpirationDate{Date: date})
}

// Reset returns a Succeeded or Failed workflow to an empty Idle form.
func (c *Controller) Reset() model.WorkflowState {
	return c.Dispatch(Reset{})
}

// Dispatch applies a form or reset action. Submission actions are only
// produced by Submit; dispatching them here is ignored.
func (c *Controller) Dispatch(action Action) model.WorkflowState {
	switch action.(type) {
	case SubmitStarted, SubmitSucceeded, SubmitFailed:
		c.logger.Warn("ignoring externally dispatched submission action")
		return c.State()
	}
	return c.commit(action)
}

// CanSubmit reports whether Submit would currently dispatch a request.
func (c *Controller) CanSubmit() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Status == model.WorkflowIdle && CanSubmit(c.state.Form, c.clock())
}

// Submit runs one request/response cycle against the Shortener.
//
// A rejected submit returns ErrSubmissionInFlight, ErrNotIdle or a
// *ValidationError and leaves the state untouched. An accepted submit blocks
// until the service answers; its outcome is reported through the returned
// state (Succeeded or Failed), never through the error.
func (c *Controller) Submit(ctx context.Context) (model.WorkflowState, error) {
	c.mu.Lock()
	now := c.clock()
	if err := c.admitLocked(now); err != nil {
		state := c.state
		c.mu.Unlock()
		c.metrics.ObserveSubmission(OutcomeRejected, 0)
		c.logger.Debug("submit rejected", zap.String("status", state.Status.String()), zap.Error(err))
		return state, err
	}

	req := Normalize(c.state.Form)
	started, listeners := c.applyLocked(SubmitStarted{Request: req})
	c.mu.Unlock()
	notify(listeners, started)

	c.logger.Info("submitting link request",
		zap.String("url", req.URL),
		zap.String("alias", req.CustomAlias),
		zap.String("expiration", req.ExpirationOption.String()),
	)

	begin := time.Now()
	shortURL, err := c.shortener.Shorten(ctx, req)
	elapsed := time.Since(begin)

	var next Action
	if err != nil {
		c.logger.Warn("link request failed", zap.Error(err), zap.Duration("elapsed", elapsed))
		c.metrics.ObserveSubmission(OutcomeFailed, elapsed)
		next = SubmitFailed{Message: FailureMessage(err)}
	} else {
		c.logger.Info("short link created", zap.String("short_url", shortURL), zap.Duration("elapsed", elapsed))
		c.metrics.ObserveSubmission(OutcomeSucceeded, elapsed)
		next = SubmitSucceeded{Result: model.LinkResult{
			ShortURL:              shortURL,
			ExpirationDescription: describeRequest(req, now),
		}}
	}
	return c.commit(next), nil
}

func (c *Controller) admitLocked(now time.Time) error {
	switch c.state.Status {
	case model.WorkflowSubmitting:
		return ErrSubmissionInFlight
	case model.WorkflowSucceeded, model.WorkflowFailed:
		return ErrNotIdle
	}
	return Validate(c.state.Form, now)
}

func (c *Controller) commit(action Action) model.WorkflowState {
	c.mu.Lock()
	state, listeners := c.applyLocked(action)
	c.mu.Unlock()
	notify(listeners, state)
	return state
}

func (c *Controller) applyLocked(action Action) (model.WorkflowState, []func(model.WorkflowState)) {
	c.state = Reduce(c.state, action)
	listeners := make([]func(model.WorkflowState), len(c.listeners))
	copy(listeners, c.listeners)
	return c.state, listeners
}

func notify(listeners []func(model.WorkflowState), state model.WorkflowState) {
	for _, fn := range listeners {
		fn(state)
	}
}

// describeRequest uses the request's own option and date, never the service's.
func describeRequest(req model.LinkRequest, now time.Time) string {
	var customDate time.Time
	if req.ExpirationOption.RequiresDate() && req.ExpirationDate != nil {
		if d, err := ParseDate(*req.ExpirationDate, now.Location()); err == nil {
			customDate = d
		}
	}
	return DescribeExpiration(req.ExpirationOption, customDate, now)
}
