package mongodb

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"feedback-board/internal/domain"
	"feedback-board/internal/repository"
)

// newLiveRepo connects to FEEDBACK_TEST_MONGO_URI and skips when it is unset.
func newLiveRepo(t *testing.T) repository.FeedbackRepository {
	t.Helper()
	uri := os.Getenv("FEEDBACK_TEST_MONGO_URI")
	if uri == "" {
		t.Skip("FEEDBACK_TEST_MONGO_URI not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	db, err := Open(ctx, Cfg{URI: uri, Database: fmt.Sprintf("feedback_test_%d", time.Now().UnixNano())})
	if err != nil {
		t.Fatalf("open mongo: %v", err)
	}
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = db.Drop(ctx)
		_ = db.Client().Disconnect(ctx)
	})

	repo := NewFeedbackRepository(db)
	if err := repo.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}
	return repo
}

func TestMutateConcurrentUpvotesKeepInvariant(t *testing.T) {
	repo := newLiveRepo(t)
	ctx := context.Background()
	if err := repo.Create(ctx, &domain.Feedback{
		ID:       "f1",
		Title:    "T",
		Category: domain.CategoryBug,
		Status:   domain.StatusOpen,
	}); err != nil {
		t.Fatalf("create: %v", err)
	}

	// each writer loses at most voters-1 races, below maxMutateAttempts
	const voters = 8
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

func TestMutateMissingAndDeleted(t *testing.T) {
	repo := newLiveRepo(t)
	ctx := context.Background()

	_, err := repo.Mutate(ctx, "missing", func(*domain.Feedback) error { return nil })
	if !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	if err := repo.Create(ctx, &domain.Feedback{ID: "f2", Title: "T", Category: domain.CategoryUI, Status: domain.StatusOpen}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := repo.Delete(ctx, "f2"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	_, err = repo.Mutate(ctx, "f2", func(*domain.Feedback) error { return nil })
	if !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected not found after delete, got %v", err)
	}
}
