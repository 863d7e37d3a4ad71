package webhook_handlers

import (
	"context"
	"encoding/json"

	"github.com/rs/zerolog"

	"github.com/jaimeparramilic/lading-odds/internal/domain"
)

// AppUninstalledHandler handles app/uninstalled webhook events. Once this
// fires, the shop's access token is revoked upstream and any stored copy is
// dead.
type AppUninstalledHandler struct {
	logger zerolog.Logger
}

// NewAppUninstalledHandler creates a new app/uninstalled webhook handler
func NewAppUninstalledHandler(logger zerolog.Logger) *AppUninstalledHandler {
	return &AppUninstalledHandler{logger: logger}
}

// CanHandle returns true if this handler can process the given topic
func (h *AppUninstalledHandler) CanHandle(topic string) bool {
	return topic == "app/uninstalled"
}

// Handle processes an app/uninstalled webhook event
func (h *AppUninstalledHandler) Handle(ctx context.Context, event *domain.WebhookEvent) error {
	shop := event.Shop
	var payload struct {
		Domain string `json:"domain"`
		Name   string `json:"name"`
	}
	if err := json.Unmarshal(event.Payload, &payload); err == nil && payload.Domain != "" {
		shop = payload.Domain
	}

	h.logger.Info().
		Str("shop", shop).
		Str("shopName", payload.Name).
		Msg("App uninstalled from shop")

	// TODO: notify the token storage owner so the shop's credential is
	// purged; this service does not hold tokens itself.

	return nil
}
