package domain

import (
	"slices"
	"time"
)

type Category string

const (
	CategoryFeature Category = "Feature"
	CategoryBug     Category = "Bug"
	CategoryUI      Category = "UI"
	CategoryOther   Category = "Other"
)

func (c Category) Valid() bool {
	switch c {
	case CategoryFeature, CategoryBug, CategoryUI, CategoryOther:
		return true
	}
	return false
}

type Status string

const (
	StatusOpen       Status = "Open"
	StatusPlanned    Status = "Planned"
	StatusInProgress Status = "In Progress"
	StatusDone       Status = "Done"
)

func (s Status) Valid() bool {
	switch s {
	case StatusOpen, StatusPlanned, StatusInProgress, StatusDone:
		return true
	}
	return false
}

// AdminLabel is the author label stamped on replies written by an administrator.
const AdminLabel = "Admin"

// Feedback is the aggregate root: a suggestion plus its embedded comments and replies.
type Feedback struct {
	ID          string
	Title       string
	Description string
	Category    Category
	Status      Status
	Upvotes     int
	UpvotedBy   []string
	CreatedBy   string
	CreatedAt   time.Time
	UpdatedAt   time.Time
	Comments    []Comment
}

// Comment is owned by a Feedback and addressed by (feedback id, comment id).
type Comment struct {
	ID      string
	UserID  string
	Author  string
	Text    string
	Date    time.Time
	Replies []Reply
}

type AuthorKind string

const (
	AuthorUser  AuthorKind = "user"
	AuthorAdmin AuthorKind = "admin"
)

// ReplyAuthor is either admin-authored (label only) or user-authored (user id resolved at read time).
type ReplyAuthor struct {
	Kind   AuthorKind
	UserID string
	Label  string
}

func AdminAuthor() ReplyAuthor {
	return ReplyAuthor{Kind: AuthorAdmin, Label: AdminLabel}
}

func UserAuthor(userID string) ReplyAuthor {
	return ReplyAuthor{Kind: AuthorUser, UserID: userID}
}

type Reply struct {
	ID        string
	Text      string
	Author    ReplyAuthor
	CreatedAt time.Time
}

// HasVoted reports whether userID is present in UpvotedBy.
func (f *Feedback) HasVoted(userID string) bool {
	return slices.Contains(f.UpvotedBy, userID)
}

// Upvote records a vote for userID. It returns false if the user already voted.
func (f *Feedback) Upvote(userID string) bool {
	if f.HasVoted(userID) {
		return false
	}
	f.UpvotedBy = append(f.UpvotedBy, userID)
	f.Upvotes = len(f.UpvotedBy)
	return true
}

// RemoveUpvote drops the vote of userID. It returns false if no vote was recorded.
func (f *Feedback) RemoveUpvote(userID string) bool {
	idx := slices.Index(f.UpvotedBy, userID)
	if idx < 0 {
		return false
	}
	f.UpvotedBy = slices.Delete(f.UpvotedBy, idx, idx+1)
	f.Upvotes = len(f.UpvotedBy)
	return true
}

func (f *Feedback) CommentIndex(commentID string) int {
	return slices.IndexFunc(f.Comments, func(c Comment) bool { return c.ID == commentID })
}

func (c *Comment) ReplyIndex(replyID string) int {
	return slices.IndexFunc(c.Replies, func(r Reply) bool { return r.ID == replyID })
}

// Clone returns a deep copy so callers can mutate without aliasing stored slices.
func (f Feedback) Clone() Feedback {
	out := f
	out.UpvotedBy = slices.Clone(f.UpvotedBy)
	out.Comments = make([]Comment, len(f.Comments))
	for i, c := range f.Comments {
		c.Replies = slices.Clone(c.Replies)
		out.Comments[i] = c
	}
	return out
}
