package application

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"

	"github.com/jaimeparramilic/lading-odds/internal/domain"
)

// WebhookHandler processes webhook events for the topics it declares.
type WebhookHandler interface {
	CanHandle(topic string) bool
	Handle(ctx context.Context, event *domain.WebhookEvent) error
}

// WebhookDispatcher routes verified webhook events to registered handlers
// by topic. Unrecognized topics are logged and acknowledged, not rejected;
// Shopify only expects a fast receipt confirmation.
type WebhookDispatcher struct {
	handlers []WebhookHandler
	logger   zerolog.Logger
}

// NewWebhookDispatcher creates a new webhook dispatcher
func NewWebhookDispatcher(logger zerolog.Logger) *WebhookDispatcher {
	return &WebhookDispatcher{logger: logger}
}

// RegisterHandler adds a handler to the dispatch list
func (d *WebhookDispatcher) RegisterHandler(h WebhookHandler) {
	d.handlers = append(d.handlers, h)
}

// Dispatch routes an event to every handler claiming its topic. Handler
// errors are collected and returned for logging; the HTTP acknowledgment
// has already been decided by the time this runs.
func (d *WebhookDispatcher) Dispatch(ctx context.Context, event *domain.WebhookEvent) error {
	topic := strings.ToLower(event.Topic)

	var errs []error
	handled := false
	for _, h := range d.handlers {
		if !h.CanHandle(topic) {
			continue
		}
		handled = true
		if err := h.Handle(ctx, event); err != nil {
			d.logger.Error().Err(err).Str("topic", topic).Str("shop", event.Shop).Msg("Webhook handler failed")
			errs = append(errs, err)
		}
	}

	if !handled {
		d.logger.Info().Str("topic", topic).Str("shop", event.Shop).Msg("No handler registered for webhook topic")
	}

	return errors.Join(errs...)
}
