package workflow

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/sifan077/snipr/internal/app/model"
)

// ErrValidationIncomplete means the form does not yet allow a submission.
var ErrValidationIncomplete = errors.New("link request is incomplete")

const (
	validURLHint   = "✓ Valid URL"
	invalidURLHint = "✗ Invalid URL format"
)

var (
	validate *validator.Validate

	aliasPattern    = regexp.MustCompile(`^[A-Za-z0-9_-]*$`)
	aliasDisallowed = regexp.MustCompile(`[^A-Za-z0-9_-]`)
)

func init() {
	validate = validator.New()

	validate.RegisterValidation("absurl", validateAbsoluteURL)
	validate.RegisterValidation("alias", validateAlias)
	validate.RegisterStructValidation(validateExpirationDate, submission{})
}

// submission is the validated view of a form at a given instant.
type submission struct {
	URL            string `validate:"required,absurl"`
	CustomAlias    string `validate:"alias"`
	Option         string `validate:"required,oneof=never 1day 7days custom"`
	ExpirationDate string `validate:"required_if=Option custom"`

	now time.Time
}

// ValidationError lists the form fields that block submission.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", ErrValidationIncomplete, strings.Join(e.Fields, ", "))
}

func (e *ValidationError) Unwrap() error {
	return ErrValidationIncomplete
}

// Validate returns nil when form may be submitted at now.
func Validate(form model.FormState, now time.Time) error {
	s := submission{
		URL:            strings.TrimSpace(form.SourceURL),
		CustomAlias:    strings.TrimSpace(form.CustomAlias),
		Option:         string(form.ExpirationOption),
		ExpirationDate: strings.TrimSpace(form.ExpirationDate),
		now:            now,
	}

	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("validate link request: %w", err)
	}
	fields := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		fields = append(fields, fe.Field())
	}
	return &ValidationError{Fields: fields}
}

// CanSubmit drives the enabled state of the submit affordance.
func CanSubmit(form model.FormState, now time.Time) bool {
	return Validate(form, now) == nil
}

// Normalize builds the request sent to the service from a validated form.
func Normalize(form model.FormState) model.LinkRequest {
	req := model.LinkRequest{
		URL:              strings.TrimSpace(form.SourceURL),
		CustomAlias:      strings.TrimSpace(form.CustomAlias),
		ExpirationOption: form.ExpirationOption,
	}
	if form.ExpirationOption.RequiresDate() {
		date := strings.TrimSpace(form.ExpirationDate)
		req.ExpirationDate = &date
	}
	return req
}

// SanitizeAlias drops every character outside [A-Za-z0-9_-].
func SanitizeAlias(raw string) string {
	return aliasDisallowed.ReplaceAllString(raw, "")
}

// IsValidURL reports whether raw parses as an absolute URL with a host.
func IsValidURL(raw string) bool {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return false
	}
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return u.IsAbs() && u.Host != ""
}

// URLHint is the live validity indicator shown under the URL field.
func URLHint(raw string) string {
	if raw == "" {
		return ""
	}
	if IsValidURL(raw) {
		return validURLHint
	}
	return invalidURLHint
}

// MinExpirationDate is the earliest custom date a user may pick: tomorrow.
func MinExpirationDate(now time.Time) string {
	return startOfTomorrow(now).Format(model.DateLayout)
}

func validateAbsoluteURL(fl validator.FieldLevel) bool {
	return IsValidURL(fl.Field().String())
}

func validateAlias(fl validator.FieldLevel) bool {
	return aliasPattern.MatchString(fl.Field().String())
}

func validateExpirationDate(sl validator.StructLevel) {
	s := sl.Current().Interface().(submission)
	if s.Option != string(model.ExpirationCustom) || s.ExpirationDate == "" {
		return
	}
	d, err := ParseDate(s.ExpirationDate, s.now.Location())
	if err != nil || d.Before(startOfTomorrow(s.now)) {
		sl.ReportError(s.ExpirationDate, "ExpirationDate", "ExpirationDate", "notbefore_tomorrow", "")
	}
}

func startOfTomorrow(now time.Time) time.Time {
	y, m, d := now.Date()
	return time.Date(y, m, d+1, 0, 0, 0, 0, now.Location())
}
