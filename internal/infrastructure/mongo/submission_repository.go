package mongo

import (
	"context"
	"fmt"
	"time"

	"github.com/orsayn/site-api/internal/contact/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// SubmissionRepository implements application.RecordStore using MongoDB.
type SubmissionRepository struct {
	client     *mongo.Client
	collection *mongo.Collection
	now        func() time.Time
}

// NewSubmissionRepository creates a Mongo-backed record store.
func NewSubmissionRepository(client *mongo.Client, database, collectionName string) *SubmissionRepository {
	return &SubmissionRepository{
		client:     client,
		collection: client.Database(database).Collection(collectionName),
		now:        time.Now,
	}
}

func toSubmissionDocument(record domain.Record, createdAt time.Time) SubmissionDocument {
	return SubmissionDocument{
		ID:          primitive.NewObjectIDFromTimestamp(createdAt),
		Reference:   record.Reference,
		Name:        record.Name,
		Company:     record.Company,
		Email:       record.Email,
		Ambition:    record.Ambition,
		Context:     record.Context,
		Status:      record.Status,
		SubmittedAt: record.SubmittedAt.UTC(),
		CreatedAt:   createdAt.UTC(),
	}
}

// Create inserts record and returns the new document id in hex.
func (r *SubmissionRepository) Create(ctx context.Context, record domain.Record) (string, error) {
	doc := toSubmissionDocument(record, r.now())
	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		return "", fmt.Errorf("mongo: insert submission: %w", err)
	}
	return doc.ID.Hex(), nil
}

// Ping checks connectivity to the primary.
func (r *SubmissionRepository) Ping(ctx context.Context) error {
	return r.client.Ping(ctx, readpref.Primary())
}

// Count returns the estimated number of stored submissions.
func (r *SubmissionRepository) Count(ctx context.Context) (int64, error) {
	return r.collection.EstimatedDocumentCount(ctx)
}

// EnsureIndexes creates the indexes the operators query by.
func (r *SubmissionRepository) EnsureIndexes(ctx context.Context) ([]string, error) {
	models := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "reference", Value: 1}},
			Options: options.Index().SetName("reference_unique").SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "submittedAt", Value: -1}},
			Options: options.Index().SetName("submittedAt_desc"),
		},
		{
			Keys:    bson.D{{Key: "status", Value: 1}, {Key: "submittedAt", Value: -1}},
			Options: options.Index().SetName("status_submittedAt"),
		},
	}
	names, err := r.collection.Indexes().CreateMany(ctx, models)
	if err != nil {
		return nil, fmt.Errorf("mongo: create submission indexes: %w", err)
	}
	return names, nil
}
