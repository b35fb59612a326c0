package mongo

import (
	"context"
	"fmt"

	"github.com/orsayn/site-api/internal/contact/domain"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

const (
	failedNotificationTarget  = "contact_notification"
	failedNotificationPending = "pending"
)

// FailedNotificationRepository persists undelivered notification emails.
type FailedNotificationRepository struct {
	collection *mongo.Collection
}

func NewFailedNotificationRepository(client *mongo.Client, database, collectionName string) *FailedNotificationRepository {
	return &FailedNotificationRepository{collection: client.Database(database).Collection(collectionName)}
}

func toFailedNotificationDocument(f domain.FailedNotification) FailedNotificationDocument {
	at := f.FailedAt.UTC()
	return FailedNotificationDocument{
		ID:          primitive.NewObjectIDFromTimestamp(at),
		Target:      failedNotificationTarget,
		Reference:   f.Reference,
		Recipients:  append([]string(nil), f.Message.To...),
		ReplyTo:     f.Message.ReplyTo,
		Subject:     f.Message.Subject,
		HTML:        f.Message.HTML,
		Error:       f.Err,
		Attempts:    1,
		Status:      failedNotificationPending,
		CreatedAt:   at,
		LastTriedAt: at,
	}
}

// Save stores f with a pending status.
func (r *FailedNotificationRepository) Save(ctx context.Context, f domain.FailedNotification) error {
	if _, err := r.collection.InsertOne(ctx, toFailedNotificationDocument(f)); err != nil {
		return fmt.Errorf("failed_notifications への保存に失敗: %w", err)
	}
	return nil
}
