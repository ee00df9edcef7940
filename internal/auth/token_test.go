package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"feedback-board/internal/apperr"
	"feedback-board/internal/domain"
)

func TestIssueVerifyRoundTrip(t *testing.T) {
	m := NewTokenManager("secret", time.Hour)
	subject := domain.Subject{ID: "u1", Username: "alice", Role: domain.RoleUser}

	token, expires, err := m.Issue(subject)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if time.Until(expires) <= 0 {
		t.Fatalf("expected future expiry, got %v", expires)
	}

	got, err := m.Verify(token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if got != subject {
		t.Fatalf("expected %+v, got %+v", subject, got)
	}
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	token, _, err := NewTokenManager("one", time.Hour).Issue(domain.Subject{ID: "u1", Role: domain.RoleAdmin})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	_, err = NewTokenManager("two", time.Hour).Verify(token)
	if !errors.Is(err, apperr.ErrUnauthenticated) {
		t.Fatalf("expected unauthenticated, got %v", err)
	}
}

func TestVerifyRejectsExpired(t *testing.T) {
	m := NewTokenManager("secret", time.Hour)
	issued := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return issued }

	token, _, err := m.Issue(domain.Subject{ID: "u1", Role: domain.RoleUser})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	m.now = func() time.Time { return issued.Add(2 * time.Hour) }
	_, err = m.Verify(token)
	if !errors.Is(err, apperr.ErrUnauthenticated) {
		t.Fatalf("expected unauthenticated, got %v", err)
	}
	if apperr.PublicMessage(err) != "token has expired" {
		t.Fatalf("unexpected message %q", apperr.PublicMessage(err))
	}
}

func TestVerifyRejectsGarbage(t *testing.T) {
	if _, err := NewTokenManager("secret", 0).Verify("not-a-token"); !errors.Is(err, apperr.ErrUnauthenticated) {
		t.Fatalf("expected unauthenticated, got %v", err)
	}
}

func TestParseBearer(t *testing.T) {
	tests := []struct {
		header  string
		want    string
		wantErr bool
	}{
		{"Bearer abc", "abc", false},
		{"  Bearer   abc  ", "abc", false},
		{"", "", true},
		{"Basic abc", "", true},
		{"Bearer ", "", true},
		{"abc", "", true},
	}
	for _, tt := range tests {
		got, err := ParseBearer(tt.header)
		if tt.wantErr {
			if !errors.Is(err, apperr.ErrUnauthenticated) {
				t.Errorf("%q: expected unauthenticated, got %v", tt.header, err)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("%q: expected %q, got %q (%v)", tt.header, tt.want, got, err)
		}
	}
}

func TestSubjectContext(t *testing.T) {
	if _, ok := SubjectFrom(context.Background()); ok {
		t.Fatal("expected no subject on empty context")
	}
	ctx := WithSubject(context.Background(), domain.Subject{ID: "u1"})
	got, ok := SubjectFrom(ctx)
	if !ok || got.ID != "u1" {
		t.Fatalf("unexpected subject %+v", got)
	}
}
