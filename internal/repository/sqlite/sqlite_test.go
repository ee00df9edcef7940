package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"feedback-board/internal/domain"
	"feedback-board/internal/repository"
)

func openTempDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "nested", "feedback.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func newFeedbackRepo(t *testing.T) repository.FeedbackRepository {
	t.Helper()
	repo := NewFeedbackRepository(openTempDB(t))
	if err := repo.Init(context.Background()); err != nil {
		t.Fatalf("init feedback repo: %v", err)
	}
	return repo
}

func sampleFeedback(id string, created time.Time) *domain.Feedback {
	return &domain.Feedback{
		ID:          id,
		Title:       "Title " + id,
		Description: "Description",
		Category:    domain.CategoryBug,
		Status:      domain.StatusOpen,
		CreatedBy:   "owner",
		CreatedAt:   created,
	}
}

func TestUserRepositoryRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository(openTempDB(t))
	if err := repo.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}

	user := &domain.User{ID: "u1", Username: "alice", PasswordHash: "hash", Role: domain.RoleUser}
	if err := repo.Create(ctx, user); err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := repo.GetByUsername(ctx, "alice")
	if err != nil {
		t.Fatalf("get by username: %v", err)
	}
	if got.ID != "u1" || got.Role != domain.RoleUser || got.PasswordHash != "hash" {
		t.Fatalf("unexpected user: %+v", got)
	}

	if _, err := repo.GetByID(ctx, "u1"); err != nil {
		t.Fatalf("get by id: %v", err)
	}

	dup := &domain.User{ID: "u2", Username: "alice", PasswordHash: "x", Role: domain.RoleUser}
	if err := repo.Create(ctx, dup); !errors.Is(err, repository.ErrConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}

	if _, err := repo.GetByID(ctx, "missing"); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestFeedbackCreateGetPreservesEmbeddedData(t *testing.T) {
	ctx := context.Background()
	repo := newFeedbackRepo(t)

	created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	f := sampleFeedback("f1", created)
	f.Comments = []domain.Comment{{
		ID:     "c1",
		UserID: "u1",
		Author: "alice",
		Text:   "nice idea",
		Date:   created,
		Replies: []domain.Reply{
			{ID: "r1", Text: "thanks", Author: domain.AdminAuthor(), CreatedAt: created},
			{ID: "r2", Text: "+1", Author: domain.UserAuthor("u2"), CreatedAt: created},
		},
	}}
	if err := repo.Create(ctx, f); err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := repo.Get(ctx, "f1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !got.CreatedAt.Equal(created) {
		t.Fatalf("expected created at %v, got %v", created, got.CreatedAt)
	}
	if len(got.Comments) != 1 || len(got.Comments[0].Replies) != 2 {
		t.Fatalf("unexpected comments: %+v", got.Comments)
	}
	admin := got.Comments[0].Replies[0].Author
	if admin.Kind != domain.AuthorAdmin || admin.Label != domain.AdminLabel || admin.UserID != "" {
		t.Fatalf("unexpected admin author: %+v", admin)
	}
	user := got.Comments[0].Replies[1].Author
	if user.Kind != domain.AuthorUser || user.UserID != "u2" {
		t.Fatalf("unexpected user author: %+v", user)
	}
}

func TestFeedbackGetMissing(t *testing.T) {
	repo := newFeedbackRepo(t)
	if _, err := repo.Get(context.Background(), "nope"); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	_, err := repo.Mutate(context.Background(), "nope", func(*domain.Feedback) error { return nil })
	if !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected not found from mutate, got %v", err)
	}
	if err := repo.Delete(context.Background(), "nope"); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected not found from delete, got %v", err)
	}
}

func TestFeedbackMutateAbortsOnError(t *testing.T) {
	ctx := context.Background()
	repo := newFeedbackRepo(t)
	if err := repo.Create(ctx, sampleFeedback("f1", time.Now())); err != nil {
		t.Fatalf("create: %v", err)
	}

	boom := errors.New("boom")
	_, err := repo.Mutate(ctx, "f1", func(f *domain.Feedback) error {
		f.Title = "changed"
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}

	got, err := repo.Get(ctx, "f1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Title != "Title f1" {
		t.Fatalf("expected aborted mutation to leave title, got %q", got.Title)
	}
}

func TestFeedbackConcurrentUpvotesKeepInvariant(t *testing.T) {
	ctx := context.Background()
	repo := newFeedbackRepo(t)
	if err := repo.Create(ctx, sampleFeedback("f1", time.Now())); err != nil {
		t.Fatalf("create: %v", err)
	}

	const voters = 25
	var wg sync.WaitGroup
	errs := make(chan error, voters)
	for i := 0; i < voters; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := repo.Mutate(ctx, "f1", func(f *domain.Feedback) error {
				f.Upvote(fmt.Sprintf("user-%d", i))
				return nil
			})
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("mutate: %v", err)
		}
	}

	got, err := repo.Get(ctx, "f1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Upvotes != voters || len(got.UpvotedBy) != voters {
		t.Fatalf("expected %d votes, got %d (%d voters)", voters, got.Upvotes, len(got.UpvotedBy))
	}
}

func TestFeedbackListFiltersAndSorts(t *testing.T) {
	ctx := context.Background()
	repo := newFeedbackRepo(t)
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	seeds := []struct {
		id       string
		title    string
		category domain.Category
		status   domain.Status
		owner    string
		votes    []string
	}{
		{"a", "Dark mode", domain.CategoryFeature, domain.StatusOpen, "u1", []string{"x"}},
		{"b", "Crash on save", domain.CategoryBug, domain.StatusDone, "u2", []string{"x", "y", "z"}},
		{"c", "Crash on load", domain.CategoryBug, domain.StatusOpen, "u1", nil},
		{"d", "Button colour", domain.CategoryUI, domain.StatusDone, "u2", []string{"y", "z"}},
	}
	for i, s := range seeds {
		f := sampleFeedback(s.id, base.Add(time.Duration(i)*time.Hour))
		f.Title = s.title
		f.Category = s.category
		f.Status = s.status
		f.CreatedBy = s.owner
		f.UpvotedBy = s.votes
		f.Upvotes = len(s.votes)
		if err := repo.Create(ctx, f); err != nil {
			t.Fatalf("create %s: %v", s.id, err)
		}
	}

	ids := func(items []domain.Feedback) string {
		out := ""
		for _, item := range items {
			out += item.ID
		}
		return out
	}

	tests := []struct {
		name   string
		filter domain.ListFilter
		want   string
	}{
		{"default newest first", domain.ListFilter{}, "dcba"},
		{"by upvotes", domain.ListFilter{Sort: domain.SortUpvotes}, "bdac"},
		{"status and category", domain.ListFilter{Status: domain.StatusDone, Category: domain.CategoryBug}, "b"},
		{"created by", domain.ListFilter{CreatedBy: "u1"}, "ca"},
		{"search", domain.ListFilter{Search: "crash"}, "cb"},
		{"upvoted by", domain.ListFilter{UpvotedBy: "y", Sort: domain.SortUpvotes}, "bd"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := repo.List(ctx, tt.filter)
			if err != nil {
				t.Fatalf("list: %v", err)
			}
			if ids(got) != tt.want {
				t.Fatalf("expected %s, got %s", tt.want, ids(got))
			}
		})
	}
}

func TestFeedbackDeleteRemovesAggregate(t *testing.T) {
	ctx := context.Background()
	repo := newFeedbackRepo(t)
	if err := repo.Create(ctx, sampleFeedback("f1", time.Now())); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := repo.Delete(ctx, "f1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := repo.Get(ctx, "f1"); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected not found after delete, got %v", err)
	}
}
