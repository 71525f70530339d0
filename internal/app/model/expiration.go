package model

import "fmt"

// ExpirationOption is the user's choice of when a short link stops being valid.
type ExpirationOption string

const (
	ExpirationNever     ExpirationOption = "never"
	ExpirationOneDay    ExpirationOption = "1day"
	ExpirationSevenDays ExpirationOption = "7days"
	ExpirationCustom    ExpirationOption = "custom"
)

// DateLayout is the calendar date format used by the form and on the wire.
const DateLayout = "2006-01-02"

// ExpirationOptions lists every option in display order.
func ExpirationOptions() []ExpirationOption {
	return []ExpirationOption{ExpirationNever, ExpirationOneDay, ExpirationSevenDays, ExpirationCustom}
}

// ParseExpirationOption maps a wire value to an ExpirationOption.
func ParseExpirationOption(s string) (ExpirationOption, error) {
	switch opt := ExpirationOption(s); opt {
	case ExpirationNever, ExpirationOneDay, ExpirationSevenDays, ExpirationCustom:
		return opt, nil
	default:
		return "", fmt.Errorf("unknown expiration option %q", s)
	}
}

// String returns the wire value.
func (o ExpirationOption) String() string {
	return string(o)
}

// RequiresDate is true when an explicit calendar date must accompany the option.
func (o ExpirationOption) RequiresDate() bool {
	return o == ExpirationCustom
}

// Label is the short human name shown next to the option.
func (o ExpirationOption) Label() string {
	switch o {
	case ExpirationNever:
		return "Never (permanent)"
	case ExpirationOneDay:
		return "1 Day (24 hours)"
	case ExpirationSevenDays:
		return "7 Days (1 week)"
	case ExpirationCustom:
		return "Custom (pick date)"
	default:
		return string(o)
	}
}
