package inmem

import (
	"context"

	"github.com/google/uuid"

	"github.com/lchelle/servicediary/core/feedback"
)

type FeedbackRepository struct {
	db *DB
}

var _ feedback.Repository = (*FeedbackRepository)(nil) // interface compliance check

func NewFeedbackRepository(db *DB) *FeedbackRepository {
	return &FeedbackRepository{db: db}
}

func (repo *FeedbackRepository) CreateFeedback(ctx context.Context, fb feedback.Feedback) (feedback.Feedback, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	if fb.ID == "" {
		fb.ID = uuid.New().String()
	}
	repo.db.seq++
	fb.Seq = repo.db.seq
	repo.db.feedback = append(repo.db.feedback, fb)
	return fb, nil
}
