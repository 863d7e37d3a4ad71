package webhook_handlers

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/jaimeparramilic/lading-odds/internal/domain"
)

// CustomerHandler handles customer-related webhook events
type CustomerHandler struct {
	logger zerolog.Logger
}

// NewCustomerHandler creates a new customer webhook handler
func NewCustomerHandler(logger zerolog.Logger) *CustomerHandler {
	return &CustomerHandler{logger: logger}
}

// CanHandle returns true if this handler can process the given topic
func (h *CustomerHandler) CanHandle(topic string) bool {
	switch topic {
	case "customers/create", "customers/update", "customers/delete":
		return true
	}
	return false
}

// Handle processes a customer webhook event. Only the customer id is
// logged; personal fields stay out of the logs.
func (h *CustomerHandler) Handle(ctx context.Context, event *domain.WebhookEvent) error {
	var customer struct {
		ID int64 `json:"id"`
	}
	if err := json.Unmarshal(event.Payload, &customer); err != nil {
		return fmt.Errorf("failed to parse customer webhook payload: %w", err)
	}

	h.logger.Info().
		Str("topic", event.Topic).
		Str("shop", event.Shop).
		Int64("customerId", customer.ID).
		Msg("Processing customer webhook event")

	return nil
}
