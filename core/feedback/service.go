package feedback

import (
	"context"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/lchelle/servicediary/core"
	"github.com/lchelle/servicediary/core/user"
)

type (
	Repository interface {
		// CreateFeedback assigns the ticket sequence number.
		CreateFeedback(ctx context.Context, fb Feedback) (Feedback, error)
	}

	Service struct {
		repo    Repository
		mailSvc core.EmailService
		conf    *core.Config
		logger  core.Logger
	}
)

func NewService(repo Repository, mailSvc core.EmailService, conf *core.Config, logger core.Logger) *Service {
	return &Service{repo: repo, mailSvc: mailSvc, conf: conf, logger: logger}
}

// Submit stores the report and emails a notification to the site operator.
// The email is best-effort; its failure never fails the submission.
func (svc *Service) Submit(ctx context.Context, userID string, role user.Role, nf NewFeedback) (Feedback, error) {
	fb := Feedback{
		ID:           uuid.New().String(),
		UserID:       userID,
		UserRole:     role,
		IssueType:    nf.IssueType,
		Description:  nf.Description,
		Priority:     nf.Priority,
		ContactEmail: nf.ContactEmail,
		Status:       StatusOpen,
		CreatedAt:    time.Now().UTC(),
	}
	if fb.Priority == "" {
		fb.Priority = PriorityMedium
	}

	fb, err := svc.repo.CreateFeedback(ctx, fb)
	if err != nil {
		return Feedback{}, errors.Wrap(err, "inserting feedback")
	}

	svc.mailSvc.SendMessages(svc.notification(fb))
	return fb, nil
}

func (svc *Service) notification(fb Feedback) *core.EmailMessage {
	desc := fb.Description
	if len(desc) > 200 {
		desc = desc[:200] + "..."
	}
	contact := fb.ContactEmail
	if contact == "" {
		contact = "Not provided"
	}

	body := fmt.Sprintf(`New feedback received for %s:

Ticket Number: %s
Issue Type: %s
Priority: %s
User Type: %s
Contact Email: %s

Description:
%s

Please check your admin panel to manage this feedback.
`,
		svc.conf.AppName,
		fb.TicketNumber(),
		strings.ToUpper(fb.IssueType),
		strings.ToUpper(fb.Priority),
		fb.UserRole,
		contact,
		desc,
	)

	return &core.EmailMessage{
		To:      []mail.Address{{Address: svc.conf.FeedbackEmail}},
		Subject: fmt.Sprintf("[%s] %s", strings.ToUpper(fb.Priority), fb.TicketNumber()),
		BodyStr: body,
	}
}
