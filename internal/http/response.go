package http

import (
	"time"

	"feedback-board/internal/domain"
	"feedback-board/internal/service"
)

type FeedbackResponse struct {
	ID            string            `json:"id"`
	Title         string            `json:"title"`
	Description   string            `json:"description"`
	Category      domain.Category   `json:"category"`
	Status        domain.Status     `json:"status"`
	Upvotes       int               `json:"upvotes"`
	UpvotedBy     []string          `json:"upvotedBy"`
	CreatedBy     *string           `json:"createdBy"`
	CreatedByName string            `json:"createdByName"`
	CreatedAt     string            `json:"createdAt"`
	UpdatedAt     string            `json:"updatedAt"`
	Comments      []CommentResponse `json:"comments"`
}

type CommentResponse struct {
	ID      string          `json:"id"`
	User    *string         `json:"user"`
	Author  string          `json:"author"`
	Text    string          `json:"text"`
	Date    string          `json:"date"`
	Replies []ReplyResponse `json:"replies"`
}

// ReplyResponse carries createdBy only for user-authored replies.
type ReplyResponse struct {
	ID        string  `json:"id"`
	Text      string  `json:"text"`
	CreatedBy *string `json:"createdBy"`
	Author    string  `json:"author"`
	CreatedAt string  `json:"createdAt"`
}

func optional(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}

func feedbackToResponse(f service.ResolvedFeedback) FeedbackResponse {
	resp := FeedbackResponse{
		ID:            f.ID,
		Title:         f.Title,
		Description:   f.Description,
		Category:      f.Category,
		Status:        f.Status,
		Upvotes:       f.Upvotes,
		UpvotedBy:     make([]string, len(f.UpvotedBy)),
		CreatedBy:     optional(f.CreatedBy),
		CreatedByName: f.CreatedByName,
		CreatedAt:     f.CreatedAt.Format(time.RFC3339Nano),
		UpdatedAt:     f.UpdatedAt.Format(time.RFC3339Nano),
		Comments:      make([]CommentResponse, len(f.Thread)),
	}
	copy(resp.UpvotedBy, f.UpvotedBy)

	for i, comment := range f.Thread {
		c := CommentResponse{
			ID:      comment.ID,
			User:    optional(comment.UserID),
			Author:  comment.AuthorName,
			Text:    comment.Text,
			Date:    comment.Date.Format(time.RFC3339Nano),
			Replies: make([]ReplyResponse, len(comment.Thread)),
		}
		for j, reply := range comment.Thread {
			r := ReplyResponse{
				ID:        reply.ID,
				Text:      reply.Text,
				Author:    reply.AuthorName,
				CreatedAt: reply.CreatedAt.Format(time.RFC3339Nano),
			}
			if reply.Author.Kind == domain.AuthorUser {
				r.CreatedBy = optional(reply.Author.UserID)
			}
			c.Replies[j] = r
		}
		resp.Comments[i] = c
	}
	return resp
}
