package record

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/lchelle/servicediary/core"
)

// DateLayout is the wire format for completion dates.
const DateLayout = "2006-01-02"

const (
	descMinLen    = 8
	descMaxLen    = 200 // batch shared description only
	minEntryHours = 0.5
)

var NowFunc = time.Now // mockable

// ParseDate parses a completion date, accepting the date-only wire format or
// a full RFC3339 timestamp (of which only the date part is kept).
func ParseDate(s string) (time.Time, error) {
	if t, err := time.Parse(DateLayout, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, errors.Wrap(err, "parsing date")
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
}

// today returns the current date with the time of day zeroed, so completion
// dates compare date-only.
func today() time.Time {
	n := NowFunc()
	return time.Date(n.Year(), n.Month(), n.Day(), 0, 0, 0, 0, time.UTC)
}

// ValidateServiceHours checks a candidate record against policy and returns
// every violated rule; rules are independent and never short-circuit. The
// caller decides whether to reject (single path) or skip-and-continue (batch
// path).
func ValidateServiceHours(hours float64, dateCompleted, studentName, description string, maxHours float64) (time.Time, []string) {
	var errs []string

	if hours == 0 || dateCompleted == "" || studentName == "" || description == "" {
		errs = append(errs, "All fields are required")
	}

	var date time.Time
	if dateCompleted != "" {
		var err error
		if date, err = ParseDate(dateCompleted); err != nil {
			errs = append(errs, "Service date must be a valid date (YYYY-MM-DD)")
		} else if date.After(today()) {
			errs = append(errs, "Service date cannot be in the future")
		}
	}

	if !isFinite(hours) || hours <= 0 || hours > maxHours {
		errs = append(errs, fmt.Sprintf("Hours must be between 0.5 and %s", formatHours(maxHours)))
	}
	if !isHalfHourIncrement(hours) {
		errs = append(errs, "Hours must be in half hour increments (0.5)")
	}

	if len(description) < descMinLen {
		errs = append(errs, "Description must be at least 8 characters long")
	}

	return date, errs
}

// Validate checks the batch's shared fields. Per-entry rules are applied
// separately by the batch writer so one bad tuple cannot sink the batch.
func (nb *NewBatch) Validate() (time.Time, error) {
	if nb.DateCompleted == "" || nb.Description == "" || len(nb.Students) == 0 {
		return time.Time{}, core.NewValidationError(errors.New("Missing required fields"))
	}
	if l := len(nb.Description); l < descMinLen || l > descMaxLen {
		return time.Time{}, core.NewValidationError(errors.New("Description must be between 8 and 200 characters"))
	}
	date, err := ParseDate(nb.DateCompleted)
	if err != nil {
		return time.Time{}, core.NewValidationError(errors.New("Service date must be a valid date (YYYY-MM-DD)"))
	}
	return date, nil
}

// validate returns the reason this entry must be skipped, or "" if it is
// processable.
func (e BatchEntry) validate(maxHours float64) string {
	if !isFinite(e.Hours) || e.Hours < minEntryHours || e.Hours > maxHours {
		return fmt.Sprintf("Hours must be between 0.5 and %s", formatHours(maxHours))
	}
	if !isHalfHourIncrement(e.Hours) {
		return "Hours must be in half hour increments"
	}
	if len(strings.TrimSpace(e.FirstName)) <= 1 {
		return "First name must be longer than 1 character"
	}
	if len(strings.TrimSpace(e.Surname)) <= 1 {
		return "Surname must be longer than 1 character"
	}
	return ""
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// isHalfHourIncrement reports whether hours align to 0.5 steps, checked as
// round(hours*10) % 5 == 0.
func isHalfHourIncrement(hours float64) bool {
	return int64(math.Round(hours*10))%5 == 0
}

func formatHours(h float64) string {
	return strconv.FormatFloat(h, 'f', -1, 64)
}
