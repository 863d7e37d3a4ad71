package repository

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/jaimeparramilic/lading-odds/internal/domain"
	"github.com/jaimeparramilic/lading-odds/internal/infrastructure/repository/entity"
	"github.com/jaimeparramilic/lading-odds/internal/ports"
)

// MongoWebhookRepository implements the webhook audit log using MongoDB
type MongoWebhookRepository struct {
	collection *mongo.Collection
}

// NewMongoWebhookRepository creates a new MongoDB webhook audit log
func NewMongoWebhookRepository(db *mongo.Database) ports.WebhookEventRepository {
	return &MongoWebhookRepository{
		collection: db.Collection("webhook_events"),
	}
}

// LogWebhook appends a verified webhook event to the audit log
func (r *MongoWebhookRepository) LogWebhook(ctx context.Context, event *domain.WebhookEvent) error {
	doc := entity.MongoWebhookEventDocFromDomain(event)
	doc.CreatedAt = time.Now()

	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("failed to log webhook: %w", err)
	}
	return nil
}

// NoopWebhookRepository discards events. Used when no MongoDB is configured;
// the receiver itself stays stateless.
type NoopWebhookRepository struct{}

// NewNoopWebhookRepository creates a repository that drops all events
func NewNoopWebhookRepository() ports.WebhookEventRepository {
	return &NoopWebhookRepository{}
}

// LogWebhook discards the event
func (r *NoopWebhookRepository) LogWebhook(ctx context.Context, event *domain.WebhookEvent) error {
	return nil
}
