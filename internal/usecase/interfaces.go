package usecase

import (
	"context"
	"time"

	"github.com/xavierca1/fitness-sales/internal/infra/mail"
)

// Notifier is the outbound message boundary. Implementations fail fast;
// retrying is the reconciliation sweep's job, never the caller's.
type Notifier interface {
	Send(kind mail.Kind, to []mail.Recipient, subject, body string, attachments ...mail.Attachment) error
}

// DeliveryScheduler enqueues the durable one-off task that sends the final
// document at the given time. The persisted scheduled_delivery column stays
// the source of truth; the task is only the fast path.
type DeliveryScheduler interface {
	ScheduleDelivery(ctx context.Context, saleID string, at time.Time) error
}

// DocumentGenerator renders the nutrition plan to a file and returns its path.
type DocumentGenerator interface {
	CreateNutrition(cpfc CPFC, diet Diet, profile NutritionProfile) (string, error)
}

// Shortener compresses a resumption link. A nil Shortener on the LinkBuilder
// means links go out long.
type Shortener interface {
	Shorten(ctx context.Context, url string) (string, error)
}
