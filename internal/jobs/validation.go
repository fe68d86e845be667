package jobs

import (
	"fmt"
	"math"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	maxNameLength  = 150
	maxNotesLength = 2000
)

// Validate checks in against the field rules. today is the caller's
// current date; an applied date after it is rejected. Leading and trailing
// whitespace is trimmed from text fields in place.
func (in *Input) Validate(today time.Time) error {
	in.CompanyName = strings.TrimSpace(in.CompanyName)
	in.Position = strings.TrimSpace(in.Position)
	in.Notes = strings.TrimSpace(in.Notes)
	in.AppliedDate = strings.TrimSpace(in.AppliedDate)

	if err := validateName("company_name", in.CompanyName); err != nil {
		return err
	}
	if err := validateName("position", in.Position); err != nil {
		return err
	}
	if err := ValidateStatus(in.Status); err != nil {
		return err
	}
	if err := validateAppliedDate(in.AppliedDate, today); err != nil {
		return err
	}
	if utf8.RuneCountInString(in.Notes) > maxNotesLength {
		return fmt.Errorf("%w: notes must not exceed %d characters", ErrValidation, maxNotesLength)
	}
	return nil
}

// ValidateStatus rejects empty and unknown statuses.
func ValidateStatus(s Status) error {
	if s == "" {
		return fmt.Errorf("%w: status is required", ErrValidation)
	}
	if !s.IsValid() {
		return fmt.Errorf("%w: status %q is not one of APPLIED, INTERVIEW, OFFER, REJECTED", ErrValidation, s)
	}
	return nil
}

func validateName(field, value string) error {
	if value == "" {
		return fmt.Errorf("%w: %s is required", ErrValidation, field)
	}
	if utf8.RuneCountInString(value) > maxNameLength {
		return fmt.Errorf("%w: %s must not exceed %d characters", ErrValidation, field, maxNameLength)
	}
	return nil
}

func validateAppliedDate(value string, today time.Time) error {
	if value == "" {
		return fmt.Errorf("%w: applied_date is required", ErrValidation)
	}
	d, err := time.Parse(DateLayout, value)
	if err != nil {
		return fmt.Errorf("%w: applied_date must be YYYY-MM-DD", ErrValidation)
	}
	y, m, day := today.Date()
	if d.After(time.Date(y, m, day, 0, 0, 0, 0, time.UTC)) {
		return fmt.Errorf("%w: applied_date cannot be in the future", ErrValidation)
	}
	return nil
}

// normalise fills paging defaults and rejects out-of-range values.
func (q ListQuery) normalise() (ListQuery, error) {
	if q.Page < 0 {
		return q, fmt.Errorf("%w: page must be 0 or greater", ErrValidation)
	}
	if q.Size == 0 {
		q.Size = DefaultPageSize
	}
	if q.Size < 1 || q.Size > MaxPageSize {
		return q, fmt.Errorf("%w: size must be between 1 and %d", ErrValidation, MaxPageSize)
	}
	if q.Page > (math.MaxInt-1)/q.Size {
		return q, fmt.Errorf("%w: page is out of range", ErrValidation)
	}
	if q.Status != "" && !q.Status.IsValid() {
		return q, fmt.Errorf("%w: unknown status %q", ErrValidation, q.Status)
	}
	if q.Sort != SortAsc {
		q.Sort = SortDesc
	}
	return q, nil
}
