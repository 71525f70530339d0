package handler

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	validate *validator.Validate

	aliasPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

	// Aliases that would shadow service routes.
	reservedAliases = map[string]bool{
		"api":     true,
		"health":  true,
		"metrics": true,
	}
)

func init() {
	validate = validator.New()

	validate.RegisterValidation("alias", validateAlias)
}

// shortenRequest mirrors model.LinkRequest with validation rules attached.
type shortenRequest struct {
	URL              string  `json:"url" validate:"required,max=2048,http_url"`
	CustomAlias      string  `json:"customAlias" validate:"omitempty,max=64,alias"`
	ExpirationOption string  `json:"expirationOption" validate:"required,oneof=never 1day 7days custom"`
	ExpirationDate   *string `json:"expirationDate" validate:"required_if=ExpirationOption custom"`
}

func validateAlias(fl validator.FieldLevel) bool {
	return aliasPattern.MatchString(fl.Field().String())
}

// IsReservedAlias reports whether alias collides with a fixed route.
func IsReservedAlias(alias string) bool {
	return reservedAliases[strings.ToLower(alias)]
}

// validateRequest returns a single user-facing message, or "" when req is valid.
func validateRequest(req shortenRequest) string {
	err := validate.Struct(req)
	if err == nil {
		if IsReservedAlias(req.CustomAlias) {
			return fmt.Sprintf("alias %q is reserved", req.CustomAlias)
		}
		return ""
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return "invalid request"
	}

	messages := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		messages = append(messages, getErrorMessage(fe))
	}
	return strings.Join(messages, "; ")
}

func getErrorMessage(err validator.FieldError) string {
	field := jsonName(err.Field())

	switch err.Tag() {
	case "required", "required_if":
		return fmt.Sprintf("%s is required", field)
	case "http_url":
		return fmt.Sprintf("%s must be a valid http(s) URL", field)
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, err.Param())
	case "alias":
		return fmt.Sprintf("%s may only contain letters, digits, '-' and '_'", field)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(err.Param(), " ", ", "))
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}

func jsonName(field string) string {
	switch field {
	case "URL":
		return "url"
	case "CustomAlias":
		return "customAlias"
	case "ExpirationOption":
		return "expirationOption"
	case "ExpirationDate":
		return "expirationDate"
	default:
		return field
	}
}
