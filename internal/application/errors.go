package application

import (
	"errors"
	"sort"
	"strings"

	"github.com/example/calendar-events/internal/persistence"
)

var (
	// ErrNotFound is returned when the requested event or notification does not exist.
	ErrNotFound = errors.New("application: not found")
	// ErrSuggestionSuperseded is returned to a city lookup replaced by a newer query.
	ErrSuggestionSuperseded = errors.New("application: suggestion superseded")
)

// ValidationError maps form fields (title, startDate, endDate, ...) to the
// message shown next to them.
type ValidationError struct {
	FieldErrors map[string]string
}

// Error lists the offending fields in name order.
func (v *ValidationError) Error() string {
	if v == nil {
		return ""
	}
	fields := v.Fields()
	if len(fields) == 0 {
		return "validation failed"
	}
	return "validation failed: " + strings.Join(fields, ", ")
}

// Fields returns the names of the invalid fields, sorted.
func (v *ValidationError) Fields() []string {
	if v == nil {
		return nil
	}
	fields := make([]string, 0, len(v.FieldErrors))
	for field := range v.FieldErrors {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	return fields
}

// HasErrors reports whether any field level issues were recorded.
func (v *ValidationError) HasErrors() bool {
	return v != nil && len(v.FieldErrors) > 0
}

func (v *ValidationError) add(field, message string) {
	if v.FieldErrors == nil {
		v.FieldErrors = make(map[string]string)
	}
	v.FieldErrors[field] = message
}

func (v *ValidationError) merge(other *ValidationError) {
	if other == nil {
		return
	}
	for field, msg := range other.FieldErrors {
		v.add(field, msg)
	}
}

// mapEventRepoError translates storage errors into application errors.
func mapEventRepoError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, persistence.ErrNotFound), errors.Is(err, ErrNotFound):
		return ErrNotFound
	case errors.Is(err, persistence.ErrDuplicate):
		vErr := &ValidationError{}
		vErr.add("event", "event already exists")
		return vErr
	case errors.Is(err, persistence.ErrConstraintViolation):
		vErr := &ValidationError{}
		vErr.add("event", "event violates storage constraints")
		return vErr
	default:
		return err
	}
}
