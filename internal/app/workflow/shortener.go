package workflow

import (
	"context"
	"errors"
	"fmt"

	"github.com/sifan077/snipr/internal/app/model"
)

// GenericFailureMessage is shown when a failure carries no service message.
const GenericFailureMessage = "Something went wrong"

// Shortener is the external short-link creation service.
type Shortener interface {
	Shorten(ctx context.Context, req model.LinkRequest) (string, error)
}

// ServiceError is a non-2xx or malformed response from the service.
type ServiceError struct {
	StatusCode int
	Message    string
}

func (e *ServiceError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("shorten service: status %d", e.StatusCode)
	}
	return fmt.Sprintf("shorten service: status %d: %s", e.StatusCode, e.Message)
}

// NetworkError is a transport failure reaching the service.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("shorten service unreachable: %v", e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// FailureMessage picks the user-facing message for a failed submission.
func FailureMessage(err error) string {
	var svcErr *ServiceError
	if errors.As(err, &svcErr) && svcErr.Message != "" {
		return svcErr.Message
	}
	return GenericFailureMessage
}
