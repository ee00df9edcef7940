package domain

import (
	"fmt"
	"math/rand"
	"testing"
	"time"
)

func TestFilterConjunctionRandomized(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	categories := []Category{CategoryFeature, CategoryBug, CategoryUI, CategoryOther}
	statuses := []Status{StatusOpen, StatusPlanned, StatusInProgress, StatusDone}
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	items := make([]Feedback, 200)
	for i := range items {
		items[i] = Feedback{
			ID:        fmt.Sprintf("f%d", i),
			Title:     fmt.Sprintf("item %d", i),
			Category:  categories[rng.Intn(len(categories))],
			Status:    statuses[rng.Intn(len(statuses))],
			CreatedAt: base.Add(time.Duration(rng.Intn(10000)) * time.Minute),
		}
	}

	got := ListFilter{Status: StatusDone, Category: CategoryBug}.Apply(items)

	want := 0
	for _, item := range items {
		if item.Status == StatusDone && item.Category == CategoryBug {
			want++
		}
	}
	if len(got) != want {
		t.Fatalf("expected %d items, got %d", want, len(got))
	}
	for _, item := range got {
		if item.Status != StatusDone || item.Category != CategoryBug {
			t.Fatalf("item %s does not satisfy both predicates", item.ID)
		}
	}
	for i := 1; i < len(got); i++ {
		if got[i].CreatedAt.After(got[i-1].CreatedAt) {
			t.Fatalf("expected newest first at %d", i)
		}
	}
}

func TestFilterSearchIsCaseInsensitiveOnTitle(t *testing.T) {
	items := []Feedback{
		{ID: "1", Title: "Dark Mode please", Description: "x"},
		{ID: "2", Title: "Export to CSV", Description: "dark mode too"},
	}
	got := ListFilter{Search: "DARK"}.Apply(items)
	if len(got) != 1 || got[0].ID != "1" {
		t.Fatalf("unexpected search result: %+v", got)
	}
}

func TestFilterCreatedByAndUpvotedBy(t *testing.T) {
	items := []Feedback{
		{ID: "1", CreatedBy: "a", UpvotedBy: []string{"b"}},
		{ID: "2", CreatedBy: "b", UpvotedBy: []string{"a", "b"}},
		{ID: "3", CreatedBy: "a"},
	}
	if got := (ListFilter{CreatedBy: "a"}).Apply(items); len(got) != 2 {
		t.Fatalf("expected 2 items by a, got %d", len(got))
	}
	if got := (ListFilter{UpvotedBy: "a"}).Apply(items); len(got) != 1 || got[0].ID != "2" {
		t.Fatalf("unexpected upvoted result: %+v", got)
	}
	if got := (ListFilter{}).Apply(items); len(got) != 3 {
		t.Fatalf("empty filter must keep everything, got %d", len(got))
	}
}

func TestSortByUpvotesStable(t *testing.T) {
	items := []Feedback{
		{ID: "a", Upvotes: 1},
		{ID: "b", Upvotes: 3},
		{ID: "c", Upvotes: 1},
		{ID: "d", Upvotes: 2},
	}
	SortFeedback(items, SortUpvotes)
	order := ""
	for _, item := range items {
		order += item.ID
	}
	if order != "bdac" {
		t.Fatalf("unexpected order %s", order)
	}
}
