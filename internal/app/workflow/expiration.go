package workflow

import (
	"errors"
	"fmt"
	"time"

	"github.com/sifan077/snipr/internal/app/model"
)

const (
	neverExpiresText = "This link will never expire"

	// en-US renderings of toLocaleDateString/toLocaleTimeString.
	descriptionDateLayout = "1/2/2006"
	descriptionTimeLayout = "3:04:05 PM"
)

// ErrMissingDate means the custom option was chosen without a calendar date.
var ErrMissingDate = errors.New("custom expiration requires a date")

// DescribeExpiration renders the human-readable expiry of a link created at now.
//
// One-day and seven-day links expire that many calendar days after now. A custom
// date is normalized to 23:59:59 of that day in now's location. A custom option
// with a zero date is an incomplete selection and yields "".
func DescribeExpiration(option model.ExpirationOption, customDate, now time.Time) string {
	if option == model.ExpirationNever {
		return neverExpiresText
	}
	at, ok := resolveExpiry(option, customDate, now)
	if !ok {
		return ""
	}
	return fmt.Sprintf("This link will expire on %s at %s",
		at.Format(descriptionDateLayout), at.Format(descriptionTimeLayout))
}

// ExpiresAt resolves option to an absolute instant, nil for links that never expire.
func ExpiresAt(option model.ExpirationOption, customDate, now time.Time) (*time.Time, error) {
	switch option {
	case model.ExpirationNever:
		return nil, nil
	case model.ExpirationOneDay, model.ExpirationSevenDays, model.ExpirationCustom:
		at, ok := resolveExpiry(option, customDate, now)
		if !ok {
			return nil, ErrMissingDate
		}
		return &at, nil
	default:
		return nil, fmt.Errorf("expires at: unknown option %q", option)
	}
}

// ParseDate parses a YYYY-MM-DD calendar date at midnight in loc.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	d, err := time.ParseInLocation(model.DateLayout, s, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return d, nil
}

func resolveExpiry(option model.ExpirationOption, customDate, now time.Time) (time.Time, bool) {
	switch option {
	case model.ExpirationOneDay:
		return now.AddDate(0, 0, 1), true
	case model.ExpirationSevenDays:
		return now.AddDate(0, 0, 7), true
	case model.ExpirationCustom:
		if customDate.IsZero() {
			return time.Time{}, false
		}
		y, m, d := customDate.Date()
		return time.Date(y, m, d, 23, 59, 59, 0, now.Location()), true
	default:
		return time.Time{}, false
	}
}
