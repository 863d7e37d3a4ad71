package ports

import (
	"context"

	"github.com/jaimeparramilic/lading-odds/internal/domain"
)

// WebhookEventRepository defines the interface for the webhook audit log.
// Access tokens are deliberately not part of this interface; persisting them
// belongs to an external collaborator.
type WebhookEventRepository interface {
	LogWebhook(ctx context.Context, event *domain.WebhookEvent) error
}

// ReplayGuard deduplicates webhook deliveries. Shopify retries slow or
// failed deliveries with the same delivery id.
type ReplayGuard interface {
	// FirstDelivery reports whether this delivery id has not been seen
	// before. An empty id is always treated as first.
	FirstDelivery(ctx context.Context, deliveryID string) (bool, error)
}
