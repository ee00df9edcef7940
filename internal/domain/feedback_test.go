package domain

import "testing"

func TestUpvoteKeepsCounterInSync(t *testing.T) {
	var f Feedback

	if !f.Upvote("u1") {
		t.Fatal("expected first upvote to succeed")
	}
	if f.Upvote("u1") {
		t.Fatal("expected repeat upvote to be rejected")
	}
	if !f.Upvote("u2") {
		t.Fatal("expected second voter to succeed")
	}
	if f.Upvotes != 2 || len(f.UpvotedBy) != 2 {
		t.Fatalf("unexpected vote state: %d %v", f.Upvotes, f.UpvotedBy)
	}

	if !f.RemoveUpvote("u1") {
		t.Fatal("expected removal to succeed")
	}
	if f.RemoveUpvote("u1") {
		t.Fatal("expected second removal to be rejected")
	}
	if f.Upvotes != 1 || len(f.UpvotedBy) != 1 || f.UpvotedBy[0] != "u2" {
		t.Fatalf("unexpected vote state: %d %v", f.Upvotes, f.UpvotedBy)
	}
}

func TestCloneDoesNotAlias(t *testing.T) {
	f := Feedback{
		UpvotedBy: []string{"u1"},
		Comments: []Comment{{
			ID:      "c1",
			Replies: []Reply{{ID: "r1"}},
		}},
	}
	c := f.Clone()
	c.UpvotedBy[0] = "changed"
	c.Comments[0].Replies[0].ID = "changed"
	c.Comments[0].ID = "changed"

	if f.UpvotedBy[0] != "u1" || f.Comments[0].ID != "c1" || f.Comments[0].Replies[0].ID != "r1" {
		t.Fatalf("clone aliased the original: %+v", f)
	}
}

func TestCommentAndReplyIndex(t *testing.T) {
	f := Feedback{Comments: []Comment{{ID: "a"}, {ID: "b", Replies: []Reply{{ID: "x"}, {ID: "y"}}}}}
	if f.CommentIndex("b") != 1 {
		t.Fatal("expected comment b at index 1")
	}
	if f.CommentIndex("missing") != -1 {
		t.Fatal("expected missing comment to be -1")
	}
	if f.Comments[1].ReplyIndex("y") != 1 {
		t.Fatal("expected reply y at index 1")
	}
}

func TestEnumValidation(t *testing.T) {
	for _, c := range []Category{CategoryFeature, CategoryBug, CategoryUI, CategoryOther} {
		if !c.Valid() {
			t.Errorf("expected %q valid", c)
		}
	}
	if Category("bug").Valid() {
		t.Error("category match must be exact")
	}
	for _, s := range []Status{StatusOpen, StatusPlanned, StatusInProgress, StatusDone} {
		if !s.Valid() {
			t.Errorf("expected %q valid", s)
		}
	}
	if Status("Closed").Valid() {
		t.Error("unexpected valid status Closed")
	}
}

func TestSubjectOwns(t *testing.T) {
	s := Subject{ID: "u1"}
	if !s.Owns("u1") {
		t.Fatal("expected owner match")
	}
	if s.Owns("") || (Subject{}).Owns("") {
		t.Fatal("empty owner must never match")
	}
}
