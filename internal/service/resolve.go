package service

import (
	"context"
	"errors"

	"feedback-board/internal/apperr"
	"feedback-board/internal/domain"
	"feedback-board/internal/repository"
)

// AnonymousLabel replaces authors that are unknown or no longer exist.
const AnonymousLabel = "Anonymous"

// ResolvedFeedback is a feedback aggregate with every user reference resolved to a display name.
type ResolvedFeedback struct {
	domain.Feedback
	CreatedByName string
	Thread        []ResolvedComment
}

type ResolvedComment struct {
	domain.Comment
	AuthorName string
	Thread     []ResolvedReply
}

type ResolvedReply struct {
	domain.Reply
	AuthorName string
}

// resolver caches user lookups for the lifetime of one read.
type resolver struct {
	users repository.UserRepository
	names map[string]string
}

func (s *feedbackService) newResolver() *resolver {
	return &resolver{users: s.users, names: make(map[string]string)}
}

func (s *feedbackService) resolve(ctx context.Context, f *domain.Feedback) (*ResolvedFeedback, error) {
	return s.newResolver().feedback(ctx, f)
}

func (r *resolver) feedback(ctx context.Context, f *domain.Feedback) (*ResolvedFeedback, error) {
	name, err := r.name(ctx, f.CreatedBy, "")
	if err != nil {
		return nil, err
	}
	out := &ResolvedFeedback{
		Feedback:      f.Clone(),
		CreatedByName: name,
		Thread:        make([]ResolvedComment, len(f.Comments)),
	}
	for i, c := range f.Comments {
		author, err := r.name(ctx, c.UserID, c.Author)
		if err != nil {
			return nil, err
		}
		rc := ResolvedComment{
			Comment:    c,
			AuthorName: author,
			Thread:     make([]ResolvedReply, len(c.Replies)),
		}
		for j, reply := range c.Replies {
			label := reply.Author.Label
			if reply.Author.Kind == domain.AuthorUser {
				label, err = r.name(ctx, reply.Author.UserID, "")
				if err != nil {
					return nil, err
				}
			} else if label == "" {
				label = domain.AdminLabel
			}
			rc.Thread[j] = ResolvedReply{Reply: reply, AuthorName: label}
		}
		out.Thread[i] = rc
	}
	return out, nil
}

// name resolves a user id. snapshot is used when the id is absent.
func (r *resolver) name(ctx context.Context, userID, snapshot string) (string, error) {
	if userID == "" {
		if snapshot != "" {
			return snapshot, nil
		}
		return AnonymousLabel, nil
	}
	if userID == domain.AdminSubjectID {
		return domain.AdminLabel, nil
	}
	if name, ok := r.names[userID]; ok {
		return name, nil
	}

	name := AnonymousLabel
	user, err := r.users.GetByID(ctx, userID)
	switch {
	case err == nil:
		name = user.Username
	case errors.Is(err, repository.ErrNotFound):
	default:
		return "", apperr.Internal(err)
	}
	r.names[userID] = name
	return name, nil
}
