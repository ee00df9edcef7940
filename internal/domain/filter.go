package domain

import (
	"slices"
	"sort"
	"strings"
)

type SortMode string

const (
	SortNewest  SortMode = "latest"
	SortUpvotes SortMode = "upvotes"
)

// ListFilter holds optional list predicates. Empty fields impose no constraint.
type ListFilter struct {
	Status    Status
	Category  Category
	CreatedBy string
	UpvotedBy string
	Search    string
	Sort      SortMode
}

// Match reports whether f satisfies every provided predicate.
func (lf ListFilter) Match(f Feedback) bool {
	if lf.Status != "" && f.Status != lf.Status {
		return false
	}
	if lf.Category != "" && f.Category != lf.Category {
		return false
	}
	if lf.CreatedBy != "" && f.CreatedBy != lf.CreatedBy {
		return false
	}
	if lf.UpvotedBy != "" && !slices.Contains(f.UpvotedBy, lf.UpvotedBy) {
		return false
	}
	if search := strings.TrimSpace(lf.Search); search != "" {
		if !strings.Contains(strings.ToLower(f.Title), strings.ToLower(search)) {
			return false
		}
	}
	return true
}

// Apply filters items and sorts the result. Ties keep the input order.
func (lf ListFilter) Apply(items []Feedback) []Feedback {
	out := make([]Feedback, 0, len(items))
	for _, item := range items {
		if lf.Match(item) {
			out = append(out, item)
		}
	}
	SortFeedback(out, lf.Sort)
	return out
}

func SortFeedback(items []Feedback, mode SortMode) {
	if mode == SortUpvotes {
		sort.SliceStable(items, func(i, j int) bool {
			return items[i].Upvotes > items[j].Upvotes
		})
		return
	}
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
}
