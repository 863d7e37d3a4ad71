package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/jaimeparramilic/lading-odds/internal/application"
	"github.com/jaimeparramilic/lading-odds/internal/domain"
	"github.com/jaimeparramilic/lading-odds/internal/infrastructure/pubsub"
	"github.com/jaimeparramilic/lading-odds/internal/ports"
)

const maxWebhookBody = 1 << 20

// WebhookHandler receives provider-pushed event notifications. The raw body
// is verified before anything parses it, and the 200 acknowledgment never
// waits on downstream handler work; a slow response only makes Shopify
// redeliver the same event.
type WebhookHandler struct {
	verifier   ports.SignatureVerifier
	repo       ports.WebhookEventRepository
	guard      ports.ReplayGuard
	dispatcher *application.WebhookDispatcher
	events     *pubsub.WebhookPubSub
	logger     zerolog.Logger
}

// NewWebhookHandler creates the webhook endpoint handler
func NewWebhookHandler(
	verifier ports.SignatureVerifier,
	repo ports.WebhookEventRepository,
	guard ports.ReplayGuard,
	dispatcher *application.WebhookDispatcher,
	events *pubsub.WebhookPubSub,
	logger zerolog.Logger,
) *WebhookHandler {
	return &WebhookHandler{
		verifier:   verifier,
		repo:       repo,
		guard:      guard,
		dispatcher: dispatcher,
		events:     events,
		logger:     logger,
	}
}

// Handle implements POST /api/shopify/webhooks
func (h *WebhookHandler) Handle(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBody))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{"ok": false, "error": "failed to read request body"})
		return
	}
	defer r.Body.Close()

	topic := r.Header.Get("X-Shopify-Topic")

	if !h.verifier.VerifyWebhook(body, r.Header.Get("X-Shopify-Hmac-SHA256")) {
		h.logger.Warn().Str("topic", topic).Msg("Webhook signature verification failed")
		webhookEventsTotal.WithLabelValues(topic, "invalid_signature").Inc()
		writeJSON(w, http.StatusUnauthorized, map[string]interface{}{"ok": false, "error": "invalid signature"})
		return
	}

	shop := r.Header.Get("X-Shopify-Shop-Domain")
	if shop == "" {
		shop = shopFromPayload(body)
	}

	deliveryID := r.Header.Get("X-Shopify-Webhook-Id")
	first, err := h.guard.FirstDelivery(r.Context(), deliveryID)
	if err != nil {
		h.logger.Warn().Err(err).Str("deliveryId", deliveryID).Msg("Replay guard unavailable, processing anyway")
	}
	if !first {
		h.logger.Info().Str("deliveryId", deliveryID).Str("topic", topic).Msg("Duplicate webhook delivery, acknowledging without redispatch")
		webhookEventsTotal.WithLabelValues(topic, "duplicate").Inc()
		writeJSON(w, http.StatusOK, map[string]interface{}{"ok": true})
		return
	}

	event := &domain.WebhookEvent{
		DeliveryID: deliveryID,
		Topic:      topic,
		Shop:       shop,
		Payload:    body,
		Verified:   true,
		ReceivedAt: time.Now().UTC(),
	}

	if err := h.repo.LogWebhook(r.Context(), event); err != nil {
		// Audit logging is best effort; the delivery is still acknowledged.
		h.logger.Error().Err(err).Str("topic", topic).Str("shop", shop).Msg("Failed to log webhook event")
	}

	// Acknowledge now; fan-out and handlers run detached from this request.
	ctx := context.WithoutCancel(r.Context())
	go func() {
		h.events.Publish(event)
		if err := h.dispatcher.Dispatch(ctx, event); err != nil {
			h.logger.Error().Err(err).Str("topic", topic).Str("shop", shop).Msg("Webhook dispatch failed after acknowledgment")
		}
	}()

	webhookEventsTotal.WithLabelValues(topic, "ok").Inc()
	writeJSON(w, http.StatusOK, map[string]interface{}{"ok": true})
}

// shopFromPayload falls back to the payload's own domain fields when the
// shop-domain header is missing. A malformed body degrades to empty rather
// than failing; verification has already passed at this point.
func shopFromPayload(body []byte) string {
	var payload struct {
		Domain     string `json:"domain"`
		ShopDomain string `json:"shop_domain"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	if payload.Domain != "" {
		return payload.Domain
	}
	return payload.ShopDomain
}
