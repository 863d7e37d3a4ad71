package entity

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/jaimeparramilic/lading-odds/internal/domain"
)

// MongoWebhookEventDoc is the MongoDB document shape for the webhook audit
// log. Payloads are stored verbatim as raw bytes.
type MongoWebhookEventDoc struct {
	ID         primitive.ObjectID `bson:"_id,omitempty"`
	DeliveryID string             `bson:"delivery_id,omitempty"`
	Topic      string             `bson:"topic"`
	Shop       string             `bson:"shop"`
	Payload    []byte             `bson:"payload"`
	Verified   bool               `bson:"verified"`
	ReceivedAt time.Time          `bson:"received_at"`
	CreatedAt  time.Time          `bson:"created_at"`
}

// MongoWebhookEventDocFromDomain converts a domain event to its document
func MongoWebhookEventDocFromDomain(event *domain.WebhookEvent) *MongoWebhookEventDoc {
	return &MongoWebhookEventDoc{
		DeliveryID: event.DeliveryID,
		Topic:      event.Topic,
		Shop:       event.Shop,
		Payload:    event.Payload,
		Verified:   event.Verified,
		ReceivedAt: event.ReceivedAt,
	}
}

// ToDomain converts the document back to a domain event
func (d *MongoWebhookEventDoc) ToDomain() *domain.WebhookEvent {
	return &domain.WebhookEvent{
		DeliveryID: d.DeliveryID,
		Topic:      d.Topic,
		Shop:       d.Shop,
		Payload:    d.Payload,
		Verified:   d.Verified,
		ReceivedAt: d.ReceivedAt,
	}
}
