package repository

import (
	"context"

	"feedback-board/internal/domain"
)

// MutateFunc changes an aggregate in place. Returning an error aborts the write.
type MutateFunc func(f *domain.Feedback) error

// FeedbackRepository exposes persistence operations for Feedback aggregates.
// Comments and replies are embedded and always written together with their parent.
type FeedbackRepository interface {
	Init(ctx context.Context) error
	Create(ctx context.Context, f *domain.Feedback) error
	Get(ctx context.Context, id string) (*domain.Feedback, error)
	List(ctx context.Context, filter domain.ListFilter) ([]domain.Feedback, error)
	// Mutate applies fn as one atomic read-modify-write of the aggregate and returns the stored result.
	Mutate(ctx context.Context, id string, fn MutateFunc) (*domain.Feedback, error)
	Delete(ctx context.Context, id string) error
}
