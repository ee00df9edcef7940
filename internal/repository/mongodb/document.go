package mongodb

import (
	"time"

	"feedback-board/internal/domain"
)

type userDocument struct {
	ID           string    `bson:"_id"`
	Username     string    `bson:"username"`
	PasswordHash string    `bson:"password_hash"`
	Role         string    `bson:"role"`
	CreatedAt    time.Time `bson:"created_at"`
	UpdatedAt    time.Time `bson:"updated_at"`
}

func userToDocument(u *domain.User) userDocument {
	return userDocument{
		ID:           u.ID,
		Username:     u.Username,
		PasswordHash: u.PasswordHash,
		Role:         string(u.Role),
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

func (d userDocument) toDomain() domain.User {
	return domain.User{
		ID:           d.ID,
		Username:     d.Username,
		PasswordHash: d.PasswordHash,
		Role:         domain.Role(d.Role),
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
}

// feedbackDocument embeds comments and replies inline; version guards optimistic replaces.
type feedbackDocument struct {
	ID          string            `bson:"_id"`
	Title       string            `bson:"title"`
	Description string            `bson:"description"`
	Category    string            `bson:"category"`
	Status      string            `bson:"status"`
	Upvotes     int               `bson:"upvotes"`
	UpvotedBy   []string          `bson:"upvotedBy"`
	CreatedBy   string            `bson:"createdBy,omitempty"`
	CreatedAt   time.Time         `bson:"createdAt"`
	UpdatedAt   time.Time         `bson:"updatedAt"`
	Comments    []commentDocument `bson:"comments"`
	Version     int64             `bson:"version"`
}

type commentDocument struct {
	ID      string          `bson:"_id"`
	User    string          `bson:"user,omitempty"`
	Author  string          `bson:"author"`
	Text    string          `bson:"text"`
	Date    time.Time       `bson:"date"`
	Replies []replyDocument `bson:"replies"`
}

type replyDocument struct {
	ID          string    `bson:"_id"`
	Text        string    `bson:"text"`
	AuthorKind  string    `bson:"authorKind"`
	CreatedBy   string    `bson:"createdBy,omitempty"`
	AuthorLabel string    `bson:"author,omitempty"`
	CreatedAt   time.Time `bson:"createdAt"`
}

func feedbackToDocument(f *domain.Feedback, version int64) feedbackDocument {
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
		Version:     version,
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
			author := domain.UserAuthor(rd.CreatedBy)
			if domain.AuthorKind(rd.AuthorKind) == domain.AuthorAdmin || rd.CreatedBy == "" {
				author = domain.AdminAuthor()
				if rd.AuthorLabel != "" {
					author.Label = rd.AuthorLabel
				}
			}
			c.Replies[j] = domain.Reply{
				ID:        rd.ID,
				Text:      rd.Text,
				Author:    author,
				CreatedAt: rd.CreatedAt,
			}
		}
		f.Comments[i] = c
	}
	return f
}
