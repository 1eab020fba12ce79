package feedback

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/lchelle/servicediary/core"
	"github.com/lchelle/servicediary/core/user"
)

const (
	StatusOpen = "open"

	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

// Feedback is a user-submitted issue report.
type Feedback struct {
	ID           string    `json:"id"`
	Seq          int64     `json:"-"`
	UserID       string    `json:"-"`
	UserRole     user.Role `json:"userType"`
	IssueType    string    `json:"issueType"`
	Description  string    `json:"description"`
	Priority     string    `json:"priority"`
	ContactEmail string    `json:"contactEmail,omitempty"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"created_at"` // UTC
}

// TicketNumber renders the human-facing reference, e.g. "SSD-000042".
func (fb Feedback) TicketNumber() string {
	return fmt.Sprintf("SSD-%06d", fb.Seq)
}

// NewFeedback contains information needed to submit a report.
type NewFeedback struct {
	IssueType    string `json:"issueType" validate:"required"`
	Description  string `json:"description" validate:"required"`
	Priority     string `json:"priority" validate:"omitempty,oneof=low medium high"`
	ContactEmail string `json:"contactEmail" validate:"omitempty,email"`
}

func (nf *NewFeedback) Validate(validate *validator.Validate) error {
	nf.IssueType = core.CleanString(nf.IssueType, true /* lower */)
	nf.Description = core.CleanString(nf.Description)
	nf.Priority = core.CleanString(nf.Priority, true /* lower */)
	nf.ContactEmail = core.CleanString(nf.ContactEmail, true /* lower */)
	return validate.Struct(nf)
}
