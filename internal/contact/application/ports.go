package application

import (
	"context"
	"time"

	"github.com/orsayn/site-api/internal/contact/domain"
)

// Mailer sends transactional email.
type Mailer interface {
	Send(ctx context.Context, msg domain.EmailMessage) error
}

// RecordStore creates business records for accepted submissions and returns
// the store's identifier for the new record.
type RecordStore interface {
	Create(ctx context.Context, record domain.Record) (string, error)
}

// NotificationFailureStore keeps undelivered notifications for replay.
type NotificationFailureStore interface {
	Save(ctx context.Context, f domain.FailedNotification) error
}

// GateObserver receives every gate decision. Implementations must be safe for
// concurrent use; their errors are logged and otherwise ignored.
type GateObserver interface {
	Record(ctx context.Context, ev GateEvent) error
}

// GateEvent describes one admit/reject decision.
type GateEvent struct {
	ClientID string
	Allowed  bool
	Reason   RejectReason
	Method   string
	Path     string
	At       time.Time
}
