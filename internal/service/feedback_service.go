package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"feedback-board/internal/apperr"
	"feedback-board/internal/domain"
	"feedback-board/internal/repository"
)

// FeedbackInput carries the editable content of a feedback item.
type FeedbackInput struct {
	Title       string
	Description string
	Category    domain.Category
}

func (in FeedbackInput) normalize() (FeedbackInput, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	in.Category = domain.Category(strings.TrimSpace(string(in.Category)))
	if in.Title == "" || in.Description == "" || in.Category == "" {
		return in, apperr.InvalidArgument("title, description, and category are required")
	}
	if !in.Category.Valid() {
		return in, apperr.InvalidArgument("category must be Feature, Bug, UI, or Other")
	}
	return in, nil
}

// FeedbackService owns the feedback aggregate and its vote, author and role rules.
type FeedbackService interface {
	Create(ctx context.Context, subject domain.Subject, in FeedbackInput) (*ResolvedFeedback, error)
	Get(ctx context.Context, id string) (*ResolvedFeedback, error)
	List(ctx context.Context, filter domain.ListFilter) ([]ResolvedFeedback, error)
	Upvote(ctx context.Context, subject domain.Subject, id string) (*ResolvedFeedback, error)
	RemoveUpvote(ctx context.Context, subject domain.Subject, id string) (*ResolvedFeedback, error)
	UpdateStatus(ctx context.Context, subject domain.Subject, id string, status domain.Status) (*ResolvedFeedback, error)
	UpdateContent(ctx context.Context, subject domain.Subject, id string, in FeedbackInput) (*ResolvedFeedback, error)
	Delete(ctx context.Context, subject domain.Subject, id string) error
	AddComment(ctx context.Context, subject domain.Subject, id, text string) (*ResolvedFeedback, error)
	AddReply(ctx context.Context, subject domain.Subject, id, commentID, text string) (*ResolvedFeedback, error)
	DeleteComment(ctx context.Context, subject domain.Subject, id, commentID string) (*ResolvedFeedback, error)
	DeleteReply(ctx context.Context, subject domain.Subject, id, commentID, replyID string) (*ResolvedFeedback, error)
}

type feedbackService struct {
	feedback repository.FeedbackRepository
	users    repository.UserRepository
	now      func() time.Time
}

func NewFeedbackService(feedback repository.FeedbackRepository, users repository.UserRepository) FeedbackService {
	return &feedbackService{
		feedback: feedback,
		users:    users,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

var errFeedbackNotFound = apperr.NotFound("feedback not found")

func (s *feedbackService) Create(ctx context.Context, subject domain.Subject, in FeedbackInput) (*ResolvedFeedback, error) {
	if err := requireSubject(subject); err != nil {
		return nil, err
	}
	in, err := in.normalize()
	if err != nil {
		return nil, err
	}

	f := &domain.Feedback{
		ID:          uuid.NewString(),
		Title:       in.Title,
		Description: in.Description,
		Category:    in.Category,
		Status:      domain.StatusOpen,
		UpvotedBy:   []string{},
		CreatedBy:   subject.ID,
		CreatedAt:   s.now(),
		Comments:    []domain.Comment{},
	}
	if err := s.feedback.Create(ctx, f); err != nil {
		return nil, translate(err)
	}
	return s.resolve(ctx, f)
}

func (s *feedbackService) Get(ctx context.Context, id string) (*ResolvedFeedback, error) {
	f, err := s.feedback.Get(ctx, id)
	if err != nil {
		return nil, translate(err)
	}
	return s.resolve(ctx, f)
}

func (s *feedbackService) List(ctx context.Context, filter domain.ListFilter) ([]ResolvedFeedback, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, apperr.InvalidArgument("status must be Open, Planned, In Progress, or Done")
	}
	if filter.Category != "" && !filter.Category.Valid() {
		return nil, apperr.InvalidArgument("category must be Feature, Bug, UI, or Other")
	}

	items, err := s.feedback.List(ctx, filter)
	if err != nil {
		return nil, translate(err)
	}

	r := s.newResolver()
	out := make([]ResolvedFeedback, 0, len(items))
	for i := range items {
		resolved, err := r.feedback(ctx, &items[i])
		if err != nil {
			return nil, err
		}
		out = append(out, *resolved)
	}
	return out, nil
}

func (s *feedbackService) Upvote(ctx context.Context, subject domain.Subject, id string) (*ResolvedFeedback, error) {
	if err := requireSubject(subject); err != nil {
		return nil, err
	}
	return s.mutate(ctx, id, func(f *domain.Feedback) error {
		if !f.Upvote(subject.ID) {
			return apperr.ErrAlreadyVoted
		}
		return nil
	})
}

func (s *feedbackService) RemoveUpvote(ctx context.Context, subject domain.Subject, id string) (*ResolvedFeedback, error) {
	if err := requireSubject(subject); err != nil {
		return nil, err
	}
	return s.mutate(ctx, id, func(f *domain.Feedback) error {
		if !f.RemoveUpvote(subject.ID) {
			return apperr.ErrNotVoted
		}
		return nil
	})
}

func (s *feedbackService) UpdateStatus(ctx context.Context, subject domain.Subject, id string, status domain.Status) (*ResolvedFeedback, error) {
	if err := requireSubject(subject); err != nil {
		return nil, err
	}
	if !status.Valid() {
		return nil, apperr.InvalidArgument("status must be Open, Planned, In Progress, or Done")
	}
	return s.mutate(ctx, id, func(f *domain.Feedback) error {
		if !canManage(subject, f) {
			return apperr.Forbidden("only the author or an admin can change the status")
		}
		f.Status = status
		return nil
	})
}

func (s *feedbackService) UpdateContent(ctx context.Context, subject domain.Subject, id string, in FeedbackInput) (*ResolvedFeedback, error) {
	if err := requireSubject(subject); err != nil {
		return nil, err
	}
	in, err := in.normalize()
	if err != nil {
		return nil, err
	}
	return s.mutate(ctx, id, func(f *domain.Feedback) error {
		if !canManage(subject, f) {
			return apperr.Forbidden("only the author or an admin can edit this feedback")
		}
		f.Title = in.Title
		f.Description = in.Description
		f.Category = in.Category
		return nil
	})
}

func (s *feedbackService) Delete(ctx context.Context, subject domain.Subject, id string) error {
	if err := requireSubject(subject); err != nil {
		return err
	}
	f, err := s.feedback.Get(ctx, id)
	if err != nil {
		return translate(err)
	}
	if !canManage(subject, f) {
		return apperr.Forbidden("only the author or an admin can delete this feedback")
	}
	// createdBy never changes after Create, so the ownership check cannot go stale
	if err := s.feedback.Delete(ctx, id); err != nil {
		return translate(err)
	}
	return nil
}

func (s *feedbackService) AddComment(ctx context.Context, subject domain.Subject, id, text string) (*ResolvedFeedback, error) {
	if err := requireSubject(subject); err != nil {
		return nil, err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, apperr.InvalidArgument("comment text is required")
	}
	comment := domain.Comment{
		ID:      uuid.NewString(),
		UserID:  subject.ID,
		Author:  subject.Username,
		Text:    text,
		Date:    s.now(),
		Replies: []domain.Reply{},
	}
	return s.mutate(ctx, id, func(f *domain.Feedback) error {
		f.Comments = append(f.Comments, comment)
		return nil
	})
}

func (s *feedbackService) AddReply(ctx context.Context, subject domain.Subject, id, commentID, text string) (*ResolvedFeedback, error) {
	if err := requireSubject(subject); err != nil {
		return nil, err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, apperr.InvalidArgument("reply text is required")
	}

	author := domain.UserAuthor(subject.ID)
	if subject.IsAdmin() {
		author = domain.AdminAuthor()
	}
	reply := domain.Reply{
		ID:        uuid.NewString(),
		Text:      text,
		Author:    author,
		CreatedAt: s.now(),
	}
	return s.mutate(ctx, id, func(f *domain.Feedback) error {
		idx := f.CommentIndex(commentID)
		if idx < 0 {
			return apperr.NotFound("comment not found")
		}
		f.Comments[idx].Replies = append(f.Comments[idx].Replies, reply)
		return nil
	})
}

func (s *feedbackService) DeleteComment(ctx context.Context, subject domain.Subject, id, commentID string) (*ResolvedFeedback, error) {
	if err := requireSubject(subject); err != nil {
		return nil, err
	}
	return s.mutate(ctx, id, func(f *domain.Feedback) error {
		idx := f.CommentIndex(commentID)
		if idx < 0 {
			return apperr.NotFound("comment not found")
		}
		if !subject.IsAdmin() && !subject.Owns(f.Comments[idx].UserID) {
			return apperr.Forbidden("only the comment author or an admin can delete this comment")
		}
		f.Comments = append(f.Comments[:idx], f.Comments[idx+1:]...)
		return nil
	})
}

func (s *feedbackService) DeleteReply(ctx context.Context, subject domain.Subject, id, commentID, replyID string) (*ResolvedFeedback, error) {
	if err := requireSubject(subject); err != nil {
		return nil, err
	}
	return s.mutate(ctx, id, func(f *domain.Feedback) error {
		ci := f.CommentIndex(commentID)
		if ci < 0 {
			return apperr.NotFound("comment not found")
		}
		comment := &f.Comments[ci]
		ri := comment.ReplyIndex(replyID)
		if ri < 0 {
			return apperr.NotFound("reply not found")
		}
		reply := comment.Replies[ri]
		if !subject.IsAdmin() && (reply.Author.Kind != domain.AuthorUser || !subject.Owns(reply.Author.UserID)) {
			return apperr.Forbidden("only the reply author or an admin can delete this reply")
		}
		comment.Replies = append(comment.Replies[:ri], comment.Replies[ri+1:]...)
		return nil
	})
}

func (s *feedbackService) mutate(ctx context.Context, id string, fn repository.MutateFunc) (*ResolvedFeedback, error) {
	f, err := s.feedback.Mutate(ctx, id, fn)
	if err != nil {
		return nil, translate(err)
	}
	return s.resolve(ctx, f)
}

func requireSubject(subject domain.Subject) error {
	if subject.ID == "" {
		return apperr.ErrUnauthenticated
	}
	return nil
}

// canManage reports whether subject may change status, edit or delete f.
func canManage(subject domain.Subject, f *domain.Feedback) bool {
	return subject.IsAdmin() || subject.Owns(f.CreatedBy)
}

// translate maps repository failures onto the error taxonomy. Classified errors
// raised inside a mutation pass through untouched.
func translate(err error) error {
	var classified *apperr.Error
	switch {
	case errors.As(err, &classified):
		return classified
	case errors.Is(err, repository.ErrNotFound):
		return errFeedbackNotFound
	case errors.Is(err, repository.ErrConflict):
		return apperr.Wrap(apperr.CodeConflict, "feedback already exists", err)
	default:
		return apperr.Internal(err)
	}
}
