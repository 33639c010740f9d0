package ports

import (
	"context"

	"github.com/SomeLazyDayz/Backend-15-11/internal/core/domain"
)

// Geocoder resolves a free-form address to coordinates. An unresolvable
// address fails soft: (nil, nil), never an error. Errors are reserved for
// transport or quota failures.
type Geocoder interface {
	Geocode(ctx context.Context, address string) (*domain.GeoPoint, error)
}

// EventPublisher publishes domain events to a message broker.
type EventPublisher interface {
	PublishAlertCreated(ctx context.Context, event *domain.AlertEvent) error
	PublishDonorRegistered(ctx context.Context, donor *domain.Donor) error
	PublishBroadcast(ctx context.Context, data []byte) error
}

// EventSubscriber subscribes to domain events from a message broker.
type EventSubscriber interface {
	SubscribeAlerts(ctx context.Context, handler func(ctx context.Context, event *domain.AlertEvent) error) error
}

// CacheService provides read-through caching.
type CacheService interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttlSeconds int) error
	Delete(ctx context.Context, key string) error
}

// NotificationService sends notifications (push, SMS, etc.) to donors.
type NotificationService interface {
	SendPush(ctx context.Context, donorID int64, title, body string) error
}
