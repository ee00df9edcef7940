package sqlite

import (
	"time"

	"feedback-board/internal/domain"
)

// feedbackDocument is the JSON shape stored in feedback.document.
type feedbackDocument struct {
	ID          string            `json:"id"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Category    string            `json:"category"`
	Status      string            `json:"status"`
	Upvotes     int               `json:"upvotes"`
	UpvotedBy   []string          `json:"upvotedBy"`
	CreatedBy   string            `json:"createdBy,omitempty"`
	CreatedAt   time.Time         `json:"createdAt"`
	UpdatedAt   time.Time         `json:"updatedAt"`
	Comments    []commentDocument `json:"comments"`
}

type commentDocument struct {
	ID      string          `json:"id"`
	User    string          `json:"user,omitempty"`
	Author  string          `json:"author"`
	Text    string          `json:"text"`
	Date    time.Time       `json:"date"`
	Replies []replyDocument `json:"replies"`
}

type replyDocument struct {
	ID          string    `json:"id"`
	Text        string    `json:"text"`
	AuthorKind  string    `json:"authorKind"`
	CreatedBy   string    `json:"createdBy,omitempty"`
	AuthorLabel string    `json:"authorLabel,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

func feedbackToDocument(f *domain.Feedback) feedbackDocument {
	doc := feedbackDocument{
		ID:          f.ID,
		Title:       f.Title,
		Description: f.Description,
		Category:    string(f.Category),
		Status:      string(f.Status),
		Upvotes:     f.Upvotes,
		UpvotedBy:   append([]string{}, f.UpvotedBy...),
		CreatedBy:   f.CreatedBy,
		CreatedAt:   f.CreatedAt.UTC(),
		UpdatedAt:   f.UpdatedAt.UTC(),
		Comments:    make([]commentDocument, len(f.Comments)),
	}
	for i, c := range f.Comments {
		cd := commentDocument{
			ID:      c.ID,
			User:    c.UserID,
			Author:  c.Author,
			Text:    c.Text,
			Date:    c.Date.UTC(),
			Replies: make([]replyDocument, len(c.Replies)),
		}
		for j, r := range c.Replies {
			cd.Replies[j] = replyDocument{
				ID:          r.ID,
				Text:        r.Text,
				AuthorKind:  string(r.Author.Kind),
				CreatedBy:   r.Author.UserID,
				AuthorLabel: r.Author.Label,
				CreatedAt:   r.CreatedAt.UTC(),
			}
		}
		doc.Comments[i] = cd
	}
	return doc
}

func (d feedbackDocument) toDomain() domain.Feedback {
	f := domain.Feedback{
		ID:          d.ID,
		Title:       d.Title,
		Description: d.Description,
		Category:    domain.Category(d.Category),
		Status:      domain.Status(d.Status),
		Upvotes:     d.Upvotes,
		UpvotedBy:   append([]string{}, d.UpvotedBy...),
		CreatedBy:   d.CreatedBy,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
		Comments:    make([]domain.Comment, len(d.Comments)),
	}
	for i, cd := range d.Comments {
		c := domain.Comment{
			ID:      cd.ID,
			UserID:  cd.User,
			Author:  cd.Author,
			Text:    cd.Text,
			Date:    cd.Date,
			Replies: make([]domain.Reply, len(cd.Replies)),
		}
		for j, rd := range cd.Replies {
			c.Replies[j] = domain.Reply{
				ID:        rd.ID,
				Text:      rd.Text,
				Author:    replyAuthor(rd),
				CreatedAt: rd.CreatedAt,
			}
		}
		f.Comments[i] = c
	}
	return f
}

func replyAuthor(rd replyDocument) domain.ReplyAuthor {
	if domain.AuthorKind(rd.AuthorKind) == domain.AuthorAdmin || (rd.CreatedBy == "" && rd.AuthorLabel != "") {
		label := rd.AuthorLabel
		if label == "" {
			label = domain.AdminLabel
		}
		return domain.ReplyAuthor{Kind: domain.AuthorAdmin, Label: label}
	}
	return domain.UserAuthor(rd.CreatedBy)
}
