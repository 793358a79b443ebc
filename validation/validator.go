package validation

import (
	"fmt"
	"math"
	"strings"

	"github.com/kbukum/transcriptkit/errors"
)

// FieldError describes one rejected field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Checks accumulates cross-field rules that struct tags cannot express.
// Methods chain; call Err once all rules have run.
//
//	err := validation.New().
//		Check(max == 0 || max >= min, "max_speakers", "must not be less than min_speakers").
//		Err()
type Checks struct {
	failed []FieldError
}

// New starts an empty set of checks.
func New() *Checks {
	return &Checks{}
}

func (c *Checks) fail(field, format string, args ...any) *Checks {
	c.failed = append(c.failed, FieldError{Field: field, Message: fmt.Sprintf(format, args...)})
	return c
}

// Check records message against field unless ok holds.
func (c *Checks) Check(ok bool, field, message string) *Checks {
	if ok {
		return c
	}
	return c.fail(field, "%s", message)
}

// Required rejects blank strings.
func (c *Checks) Required(field, value string) *Checks {
	return c.Check(strings.TrimSpace(value) != "", field, "is required")
}

// Interval accepts finite, non-negative bounds with end strictly after start.
// A non-finite bound is reported alone since the ordering checks would be noise.
func (c *Checks) Interval(field string, start, end float64) *Checks {
	finite := true
	for _, b := range []struct {
		name string
		v    float64
	}{{"start", start}, {"end", end}} {
		if math.IsNaN(b.v) || math.IsInf(b.v, 0) {
			c.fail(field+"."+b.name, "must be a finite number")
			finite = false
		}
	}
	if !finite {
		return c
	}
	if start < 0 {
		c.fail(field+".start", "must not be negative")
	}
	if end <= start {
		c.fail(field, "end (%g) must be greater than start (%g)", end, start)
	}
	return c
}

// Between rejects integers outside [lo, hi].
func (c *Checks) Between(field string, value, lo, hi int) *Checks {
	if value >= lo && value <= hi {
		return c
	}
	return c.fail(field, "must be between %d and %d", lo, hi)
}

// OK reports whether every rule passed so far.
func (c *Checks) OK() bool { return len(c.failed) == 0 }

// Failed returns the recorded field errors in the order they were found.
func (c *Checks) Failed() []FieldError { return c.failed }

// Err returns nil when every rule passed, otherwise an INVALID_INPUT
// AppError listing each field.
func (c *Checks) Err() error {
	if c.OK() {
		return nil
	}
	return fieldsError(c.failed)
}

// fieldsError joins field errors into the message format shared with Validate.
func fieldsError(fields []FieldError) *errors.AppError {
	parts := make([]string, len(fields))
	for i, f := range fields {
		parts[i] = f.Field + ": " + f.Message
	}
	return errors.Validation(strings.Join(parts, "; ")).WithDetail("fields", fields)
}
