package sqlxrepos

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/lchelle/servicediary/core"
	"github.com/lchelle/servicediary/core/feedback"
)

type feedbackRepository struct {
	exec core.DBExecutor
}

var _ feedback.Repository = (*feedbackRepository)(nil) // interface compliance check

func NewFeedbackRepository(db *sqlx.DB) *feedbackRepository {
	return &feedbackRepository{exec: db}
}

func (repo *feedbackRepository) CreateFeedback(ctx context.Context, fb feedback.Feedback) (feedback.Feedback, error) {
	if fb.ID == "" {
		fb.ID = uuid.New().String()
	}
	err := repo.exec.GetContext(ctx, &fb.Seq, `
		INSERT INTO feedback (id, user_id, user_type, issue_type, description, priority, contact_email, status, created_at)
		VALUES ($1, NULLIF($2, '')::uuid, $3, $4, $5, $6, NULLIF($7, ''), $8, $9)
		RETURNING seq`,
		fb.ID, fb.UserID, fb.UserRole.String(), fb.IssueType, fb.Description,
		fb.Priority, fb.ContactEmail, fb.Status, fb.CreatedAt,
	)
	if err != nil {
		return feedback.Feedback{}, errors.Wrap(err, "inserting feedback")
	}
	return fb, nil
}
