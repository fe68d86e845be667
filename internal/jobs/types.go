package jobs

import (
	"strings"
	"time"
)

// Status is the stage a job application has reached.
type Status string

// Application statuses.
const (
	StatusApplied   Status = "APPLIED"
	StatusInterview Status = "INTERVIEW"
	StatusOffer     Status = "OFFER"
	StatusRejected  Status = "REJECTED"
)

// IsValid reports whether s is a known status.
func (s Status) IsValid() bool {
	switch s {
	case StatusApplied, StatusInterview, StatusOffer, StatusRejected:
		return true
	}
	return false
}

// ParseStatus converts a string to a Status, ignoring case.
func ParseStatus(s string) (Status, bool) {
	st := Status(strings.ToUpper(strings.TrimSpace(s)))
	return st, st.IsValid()
}

// DateLayout is the calendar-date format of AppliedDate.
const DateLayout = "2006-01-02"

// Application is a job application owned by exactly one principal.
type Application struct {
	ID          string    `json:"id"`
	OwnerID     string    `json:"owner_id"`
	CompanyName string    `json:"company_name"`
	Position    string    `json:"position"`
	Status      Status    `json:"status"`
	AppliedDate string    `json:"applied_date"`
	Notes       string    `json:"notes,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Input carries the client-editable fields for create and update.
type Input struct {
	CompanyName string `json:"company_name"`
	Position    string `json:"position"`
	Status      Status `json:"status"`
	AppliedDate string `json:"applied_date"`
	Notes       string `json:"notes"`
}

// SortDirection orders listings by applied date.
type SortDirection string

// Sort directions.
const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// ParseSort returns SortAsc for "asc" in any case and SortDesc otherwise.
func ParseSort(s string) SortDirection {
	if strings.EqualFold(strings.TrimSpace(s), string(SortAsc)) {
		return SortAsc
	}
	return SortDesc
}

// Paging limits.
const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// ListQuery selects a page of applications. A zero Status matches all.
type ListQuery struct {
	Status Status
	Page   int
	Size   int
	Sort   SortDirection
}

// Page is one page of a listing.
type Page struct {
	Items         []Application `json:"items"`
	Page          int           `json:"page"`
	Size          int           `json:"size"`
	TotalElements int           `json:"total_elements"`
	TotalPages    int           `json:"total_pages"`
}

// Stats summarises applications by outcome.
type Stats struct {
	TotalApplications int `json:"total_applications"`
	Interviews        int `json:"interviews"`
	Offers            int `json:"offers"`
	Rejected          int `json:"rejected"`
}

// ListFilter is what the repository sees. OwnerID is set whenever the
// caller is restricted to their own records.
type ListFilter struct {
	OwnerID string
	Status  Status
	Limit   int
	Offset  int
	Sort    SortDirection
}
