package conversation

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"frontline/models"
)

// ValidationError reports a booking field that failed local validation.
// It is a client error: no state is mutated when one is returned.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04"
)

// ValidateBookingFields checks the required appointment fields locally.
// The external agent's all_fields_collected claim is never sufficient on
// its own; everything is re-checked here before any side effect.
func ValidateBookingFields(fields models.CollectedFields) *ValidationError {
	if strings.TrimSpace(fields.FirstName) == "" {
		return &ValidationError{Field: "first_name", Reason: "must not be empty"}
	}
	if strings.TrimSpace(fields.LastName) == "" {
		return &ValidationError{Field: "last_name", Reason: "must not be empty"}
	}
	if !emailPattern.MatchString(fields.Email) {
		return &ValidationError{Field: "email", Reason: "not a valid address"}
	}
	if fields.ChosenDepartmentID <= 0 {
		return &ValidationError{Field: "chosen_department_id", Reason: "missing department reference"}
	}
	if _, err := time.Parse(dateLayout, fields.Date); err != nil {
		return &ValidationError{Field: "date", Reason: "must be a valid YYYY-MM-DD date"}
	}
	if _, err := time.Parse(timeLayout, fields.Time); err != nil {
		return &ValidationError{Field: "time", Reason: "must be a valid 24-hour HH:MM time"}
	}
	return nil
}

// CombineDateTime merges a YYYY-MM-DD date and a 24-hour HH:MM time into a
// single UTC instant.
func CombineDateTime(date, clock string) (time.Time, error) {
	d, err := time.Parse(dateLayout, date)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", date, err)
	}
	t, err := time.Parse(timeLayout, clock)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid time %q: %w", clock, err)
	}
	return time.Date(d.Year(), d.Month(), d.Day(), t.Hour(), t.Minute(), 0, 0, time.UTC), nil
}
