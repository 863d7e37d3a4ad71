package domain

import "time"

// WebhookEvent represents a verified webhook notification pushed by Shopify
type WebhookEvent struct {
	// DeliveryID is Shopify's X-Shopify-Webhook-Id, unique per delivery
	// attempt. Empty if the header was absent.
	DeliveryID string    `json:"delivery_id" bson:"delivery_id"`
	Topic      string    `json:"topic" bson:"topic"`
	Shop       string    `json:"shop" bson:"shop"`
	Payload    []byte    `json:"payload" bson:"payload"`
	Verified   bool      `json:"verified" bson:"verified"`
	ReceivedAt time.Time `json:"received_at" bson:"received_at"`
}
