package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path"
	"sort"
	"strings"
	"time"

	"feedback-board/internal/apperr"
	"feedback-board/internal/domain"
	"feedback-board/internal/storage"
)

const exportURLExpiry = 15 * time.Minute

// ExportOptions configures where board snapshots are written. An empty bucket disables exports.
type ExportOptions struct {
	Bucket    string
	KeyPrefix string
}

// ExportObject describes a stored snapshot.
type ExportObject struct {
	Key          string
	Size         int64
	LastModified *time.Time
	URL          string
}

// ExportService writes JSON snapshots of the whole board to object storage.
type ExportService interface {
	Export(ctx context.Context, subject domain.Subject) (string, error)
	List(ctx context.Context, subject domain.Subject) ([]ExportObject, error)
}

type exportService struct {
	feedback FeedbackService
	store    storage.Service
	opts     ExportOptions
	now      func() time.Time
}

func NewExportService(feedback FeedbackService, store storage.Service, opts ExportOptions) ExportService {
	opts.KeyPrefix = strings.Trim(opts.KeyPrefix, "/")
	return &exportService{
		feedback: feedback,
		store:    store,
		opts:     opts,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// ErrExportsNotConfigured is returned when no export bucket is set.
var ErrExportsNotConfigured = apperr.New(apperr.CodeInternal, "exports not configured")

func (s *exportService) authorize(subject domain.Subject) error {
	if err := requireSubject(subject); err != nil {
		return err
	}
	if !subject.IsAdmin() {
		return apperr.Forbidden("admin access required")
	}
	if s.store == nil || s.opts.Bucket == "" {
		return ErrExportsNotConfigured
	}
	return nil
}

func (s *exportService) Export(ctx context.Context, subject domain.Subject) (string, error) {
	if err := s.authorize(subject); err != nil {
		return "", err
	}

	items, err := s.feedback.List(ctx, domain.ListFilter{})
	if err != nil {
		return "", err
	}

	now := s.now()
	snapshot := boardSnapshot{
		ExportedAt: now,
		ExportedBy: subject.Username,
		Feedback:   make([]snapshotFeedback, len(items)),
	}
	for i := range items {
		snapshot.Feedback[i] = toSnapshot(items[i])
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(snapshot); err != nil {
		return "", apperr.Internal(fmt.Errorf("encode snapshot: %w", err))
	}

	key := path.Join(s.opts.KeyPrefix, fmt.Sprintf("feedback-%s.json", now.Format("20060102T150405Z")))
	location, err := s.store.PutObject(ctx, s.opts.Bucket, key, &buf, "application/json")
	if err != nil {
		return "", apperr.Internal(err)
	}
	return location, nil
}

func (s *exportService) List(ctx context.Context, subject domain.Subject) ([]ExportObject, error) {
	if err := s.authorize(subject); err != nil {
		return nil, err
	}

	prefix := s.opts.KeyPrefix
	if prefix != "" {
		prefix += "/"
	}
	objects, err := s.store.ListObjects(ctx, s.opts.Bucket, prefix)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	out := make([]ExportObject, 0, len(objects))
	for _, obj := range objects {
		url, err := s.store.GetObjectURL(ctx, s.opts.Bucket, obj.Key, exportURLExpiry)
		if err != nil {
			return nil, apperr.Internal(err)
		}
		out = append(out, ExportObject{
			Key:          obj.Key,
			Size:         obj.Size,
			LastModified: obj.LastModified,
			URL:          url,
		})
	}
	// keys embed the export timestamp
	sort.Slice(out, func(i, j int) bool { return out[i].Key > out[j].Key })
	return out, nil
}

type boardSnapshot struct {
	ExportedAt time.Time          `json:"exportedAt"`
	ExportedBy string             `json:"exportedBy"`
	Feedback   []snapshotFeedback `json:"feedback"`
}

type snapshotFeedback struct {
	ID          string            `json:"id"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Category    string            `json:"category"`
	Status      string            `json:"status"`
	Upvotes     int               `json:"upvotes"`
	CreatedBy   string            `json:"createdBy"`
	CreatedAt   time.Time         `json:"createdAt"`
	Comments    []snapshotComment `json:"comments"`
}

type snapshotComment struct {
	Author  string          `json:"author"`
	Text    string          `json:"text"`
	Date    time.Time       `json:"date"`
	Replies []snapshotReply `json:"replies"`
}

type snapshotReply struct {
	Author    string    `json:"author"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"createdAt"`
}

func toSnapshot(f ResolvedFeedback) snapshotFeedback {
	out := snapshotFeedback{
		ID:          f.ID,
		Title:       f.Title,
		Description: f.Description,
		Category:    string(f.Category),
		Status:      string(f.Status),
		Upvotes:     f.Upvotes,
		CreatedBy:   f.CreatedByName,
		CreatedAt:   f.CreatedAt,
		Comments:    make([]snapshotComment, len(f.Thread)),
	}
	for i, c := range f.Thread {
		sc := snapshotComment{
			Author:  c.AuthorName,
			Text:    c.Text,
			Date:    c.Date,
			Replies: make([]snapshotReply, len(c.Thread)),
		}
		for j, r := range c.Thread {
			sc.Replies[j] = snapshotReply{Author: r.AuthorName, Text: r.Text, CreatedAt: r.CreatedAt}
		}
		out.Comments[i] = sc
	}
	return out
}
