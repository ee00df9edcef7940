package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"feedback-board/internal/domain"
	"feedback-board/internal/repository"
)

const createFeedbackTable = `
CREATE TABLE IF NOT EXISTS feedback (
	id TEXT PRIMARY KEY,
	title TEXT NOT NULL,
	category TEXT NOT NULL,
	status TEXT NOT NULL,
	created_by TEXT NOT NULL DEFAULT '',
	upvotes INTEGER NOT NULL DEFAULT 0,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL,
	version INTEGER NOT NULL DEFAULT 1,
	document TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_feedback_status ON feedback(status);
CREATE INDEX IF NOT EXISTS idx_feedback_category ON feedback(category);
CREATE INDEX IF NOT EXISTS idx_feedback_created_by ON feedback(created_by);
`

// FeedbackRepository stores each aggregate as one JSON document row. The
// scalar columns duplicate document fields so list filters can use indexes.
type FeedbackRepository struct {
	db *sql.DB
}

func NewFeedbackRepository(db *sql.DB) repository.FeedbackRepository {
	return &FeedbackRepository{db: db}
}

func (r *FeedbackRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createFeedbackTable); err != nil {
		return fmt.Errorf("create feedback table: %w", err)
	}
	return nil
}

func (r *FeedbackRepository) Create(ctx context.Context, f *domain.Feedback) error {
	now := time.Now().UTC()
	if f.CreatedAt.IsZero() {
		f.CreatedAt = now
	}
	f.UpdatedAt = now

	doc, err := json.Marshal(feedbackToDocument(f))
	if err != nil {
		return fmt.Errorf("encode feedback: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
INSERT INTO feedback (id, title, category, status, created_by, upvotes, created_at, updated_at, version, document)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, 1, ?)`,
		f.ID,
		f.Title,
		string(f.Category),
		string(f.Status),
		f.CreatedBy,
		f.Upvotes,
		f.CreatedAt.UTC(),
		f.UpdatedAt,
		string(doc),
	)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "unique") {
			return fmt.Errorf("feedback %s: %w", f.ID, repository.ErrConflict)
		}
		return fmt.Errorf("insert feedback: %w", err)
	}
	return nil
}

func (r *FeedbackRepository) Get(ctx context.Context, id string) (*domain.Feedback, error) {
	row := r.db.QueryRowContext(ctx, `SELECT document, version FROM feedback WHERE id=?`, id)
	f, _, err := scanFeedback(row)
	if err != nil {
		return nil, err
	}
	return f, nil
}

func (r *FeedbackRepository) List(ctx context.Context, filter domain.ListFilter) ([]domain.Feedback, error) {
	var (
		where []string
		args  []any
	)
	if filter.Status != "" {
		where = append(where, "status = ?")
		args = append(args, string(filter.Status))
	}
	if filter.Category != "" {
		where = append(where, "category = ?")
		args = append(args, string(filter.Category))
	}
	if filter.CreatedBy != "" {
		where = append(where, "created_by = ?")
		args = append(args, filter.CreatedBy)
	}

	query := `SELECT document, version FROM feedback`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY rowid ASC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query feedback: %w", err)
	}
	defer rows.Close()

	var items []domain.Feedback
	for rows.Next() {
		f, _, err := scanFeedback(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate feedback: %w", err)
	}

	// search and vote membership live inside the document
	return filter.Apply(items), nil
}

func (r *FeedbackRepository) Mutate(ctx context.Context, id string, fn repository.MutateFunc) (*domain.Feedback, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback() // safe no-op on commit

	row := tx.QueryRowContext(ctx, `SELECT document, version FROM feedback WHERE id=?`, id)
	f, version, err := scanFeedback(row)
	if err != nil {
		return nil, err
	}

	if err := fn(f); err != nil {
		return nil, err
	}
	f.UpdatedAt = time.Now().UTC()

	doc, err := json.Marshal(feedbackToDocument(f))
	if err != nil {
		return nil, fmt.Errorf("encode feedback: %w", err)
	}

	res, err := tx.ExecContext(ctx, `
UPDATE feedback
SET title=?, category=?, status=?, upvotes=?, updated_at=?, document=?, version=version+1
WHERE id=? AND version=?`,
		f.Title,
		string(f.Category),
		string(f.Status),
		f.Upvotes,
		f.UpdatedAt,
		string(doc),
		id,
		version,
	)
	if err != nil {
		return nil, fmt.Errorf("update feedback: %w", err)
	}
	aff, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("feedback update rows affected: %w", err)
	}
	if aff == 0 {
		return nil, fmt.Errorf("feedback %s: %w", id, repository.ErrStaleVersion)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit feedback update: %w", err)
	}
	return f, nil
}

func (r *FeedbackRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM feedback WHERE id=?`, id)
	if err != nil {
		return fmt.Errorf("delete feedback: %w", err)
	}
	aff, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("feedback delete rows affected: %w", err)
	}
	if aff == 0 {
		return fmt.Errorf("feedback %s: %w", id, repository.ErrNotFound)
	}
	return nil
}

func scanFeedback(scanner interface {
	Scan(dest ...any) error
}) (*domain.Feedback, int64, error) {
	var (
		raw     string
		version int64
	)
	if err := scanner.Scan(&raw, &version); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, 0, fmt.Errorf("feedback: %w", repository.ErrNotFound)
		}
		return nil, 0, fmt.Errorf("scan feedback: %w", err)
	}

	var doc feedbackDocument
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return nil, 0, fmt.Errorf("decode feedback: %w", err)
	}
	f := doc.toDomain()
	return &f, version, nil
}
