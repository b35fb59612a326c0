package mongo

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SubmissionDocument は受理された問い合わせを MongoDB 上で表現したもの。
type SubmissionDocument struct {
	ID          primitive.ObjectID `bson:"_id"`
	Reference   string             `bson:"reference"`
	Name        string             `bson:"name"`
	Company     string             `bson:"company,omitempty"`
	Email       string             `bson:"email"`
	Ambition    string             `bson:"ambition"`
	Context     string             `bson:"context,omitempty"`
	Status      string             `bson:"status"`
	SubmittedAt time.Time          `bson:"submittedAt"`
	CreatedAt   time.Time          `bson:"createdAt"`
}

// FailedNotificationDocument keeps an email that could not be delivered so an
// operator can replay it.
type FailedNotificationDocument struct {
	ID          primitive.ObjectID `bson:"_id"`
	Target      string             `bson:"target"`
	Reference   string             `bson:"reference"`
	Recipients  []string           `bson:"recipients"`
	ReplyTo     string             `bson:"replyTo,omitempty"`
	Subject     string             `bson:"subject"`
	HTML        string             `bson:"html"`
	Error       string             `bson:"error"`
	Attempts    int                `bson:"attempts"`
	Status      string             `bson:"status"`
	CreatedAt   time.Time          `bson:"createdAt"`
	LastTriedAt time.Time          `bson:"lastTriedAt"`
}
