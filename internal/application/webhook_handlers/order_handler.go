package webhook_handlers

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/jaimeparramilic/lading-odds/internal/domain"
)

// OrderHandler handles order-related webhook events
type OrderHandler struct {
	logger zerolog.Logger
}

// NewOrderHandler creates a new order webhook handler
func NewOrderHandler(logger zerolog.Logger) *OrderHandler {
	return &OrderHandler{logger: logger}
}

// CanHandle returns true if this handler can process the given topic
func (h *OrderHandler) CanHandle(topic string) bool {
	switch topic {
	case "orders/create", "orders/updated", "orders/cancelled", "orders/paid", "orders/fulfilled":
		return true
	}
	return false
}

// Handle processes an order webhook event
func (h *OrderHandler) Handle(ctx context.Context, event *domain.WebhookEvent) error {
	var order struct {
		ID              int64  `json:"id"`
		OrderNumber     int64  `json:"order_number"`
		TotalPrice      string `json:"total_price"`
		Currency        string `json:"currency"`
		FinancialStatus string `json:"financial_status"`
	}
	if err := json.Unmarshal(event.Payload, &order); err != nil {
		return fmt.Errorf("failed to parse order webhook payload: %w", err)
	}

	h.logger.Info().
		Str("topic", event.Topic).
		Str("shop", event.Shop).
		Int64("orderId", order.ID).
		Int64("orderNumber", order.OrderNumber).
		Str("totalPrice", order.TotalPrice).
		Str("currency", order.Currency).
		Str("financialStatus", order.FinancialStatus).
		Msg("Processing order webhook event")

	return nil
}
