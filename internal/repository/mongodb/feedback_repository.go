package mongodb

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"feedback-board/internal/domain"
	"feedback-board/internal/repository"
)

const (
	feedbackCollection = "feedback"
	maxMutateAttempts  = 10
)

// FeedbackRepository keeps one document per aggregate. Writes replace the whole
// document conditioned on its version, so concurrent mutations retry instead of
// overwriting each other.
type FeedbackRepository struct {
	feedback *mongo.Collection
}

func NewFeedbackRepository(db *mongo.Database) repository.FeedbackRepository {
	return &FeedbackRepository{feedback: db.Collection(feedbackCollection)}
}

func (r *FeedbackRepository) Init(ctx context.Context) error {
	_, err := r.feedback.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "status", Value: 1}}},
		{Keys: bson.D{{Key: "category", Value: 1}}},
		{Keys: bson.D{{Key: "createdBy", Value: 1}}},
		{Keys: bson.D{{Key: "createdAt", Value: -1}}},
	})
	if err != nil {
		return fmt.Errorf("create feedback indexes: %w", err)
	}
	return nil
}

func (r *FeedbackRepository) Create(ctx context.Context, f *domain.Feedback) error {
	now := time.Now().UTC()
	if f.CreatedAt.IsZero() {
		f.CreatedAt = now
	}
	f.UpdatedAt = now

	if _, err := r.feedback.InsertOne(ctx, feedbackToDocument(f, 1)); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("feedback %s: %w", f.ID, repository.ErrConflict)
		}
		return fmt.Errorf("insert feedback: %w", err)
	}
	return nil
}

func (r *FeedbackRepository) Get(ctx context.Context, id string) (*domain.Feedback, error) {
	doc, err := r.get(ctx, id)
	if err != nil {
		return nil, err
	}
	f := doc.toDomain()
	return &f, nil
}

func (r *FeedbackRepository) get(ctx context.Context, id string) (feedbackDocument, error) {
	var doc feedbackDocument
	if err := r.feedback.FindOne(ctx, bson.D{{Key: "_id", Value: id}}).Decode(&doc); err != nil {
		return feedbackDocument{}, handleMongoError("feedback", err)
	}
	return doc, nil
}

func (r *FeedbackRepository) List(ctx context.Context, filter domain.ListFilter) ([]domain.Feedback, error) {
	opts := options.Find().SetSort(listSort(filter.Sort))
	cursor, err := r.feedback.Find(ctx, listQuery(filter), opts)
	if err != nil {
		return nil, fmt.Errorf("query feedback: %w", err)
	}
	defer cursor.Close(ctx)

	var items []domain.Feedback
	for cursor.Next(ctx) {
		var doc feedbackDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode feedback: %w", err)
		}
		items = append(items, doc.toDomain())
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("iterate feedback: %w", err)
	}
	return filter.Apply(items), nil
}

func (r *FeedbackRepository) Mutate(ctx context.Context, id string, fn repository.MutateFunc) (*domain.Feedback, error) {
	for attempt := 0; attempt < maxMutateAttempts; attempt++ {
		current, err := r.get(ctx, id)
		if err != nil {
			return nil, err
		}

		f := current.toDomain()
		if err := fn(&f); err != nil {
			return nil, err
		}
		f.UpdatedAt = time.Now().UTC()

		res, err := r.feedback.ReplaceOne(ctx,
			bson.D{{Key: "_id", Value: id}, {Key: "version", Value: current.Version}},
			feedbackToDocument(&f, current.Version+1),
		)
		if err != nil {
			return nil, fmt.Errorf("replace feedback: %w", err)
		}
		if res.MatchedCount == 1 {
			return &f, nil
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
	}
	return nil, fmt.Errorf("feedback %s: %w", id, repository.ErrStaleVersion)
}

func (r *FeedbackRepository) Delete(ctx context.Context, id string) error {
	res, err := r.feedback.DeleteOne(ctx, bson.D{{Key: "_id", Value: id}})
	if err != nil {
		return fmt.Errorf("delete feedback: %w", err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("feedback %s: %w", id, repository.ErrNotFound)
	}
	return nil
}

func listQuery(filter domain.ListFilter) bson.D {
	query := bson.D{}
	if filter.Status != "" {
		query = append(query, bson.E{Key: "status", Value: string(filter.Status)})
	}
	if filter.Category != "" {
		query = append(query, bson.E{Key: "category", Value: string(filter.Category)})
	}
	if filter.CreatedBy != "" {
		query = append(query, bson.E{Key: "createdBy", Value: filter.CreatedBy})
	}
	if filter.UpvotedBy != "" {
		query = append(query, bson.E{Key: "upvotedBy", Value: filter.UpvotedBy})
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		query = append(query, bson.E{Key: "title", Value: primitive.Regex{
			Pattern: regexp.QuoteMeta(search),
			Options: "i",
		}})
	}
	return query
}

func listSort(mode domain.SortMode) bson.D {
	if mode == domain.SortUpvotes {
		return bson.D{{Key: "upvotes", Value: -1}, {Key: "createdAt", Value: -1}}
	}
	return bson.D{{Key: "createdAt", Value: -1}}
}
