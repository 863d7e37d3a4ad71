package api_test

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/jaimeparramilic/lading-odds/internal/application"
	"github.com/jaimeparramilic/lading-odds/internal/domain"
	"github.com/jaimeparramilic/lading-odds/internal/infrastructure/api"
	"github.com/jaimeparramilic/lading-odds/internal/infrastructure/dedup"
	"github.com/jaimeparramilic/lading-odds/internal/infrastructure/pubsub"
	"github.com/jaimeparramilic/lading-odds/internal/infrastructure/repository"
	shopifyinfra "github.com/jaimeparramilic/lading-odds/internal/infrastructure/shopify"
)

type capturingHandler struct {
	mu     sync.Mutex
	events []*domain.WebhookEvent
}

func (h *capturingHandler) CanHandle(topic string) bool { return true }

func (h *capturingHandler) Handle(ctx context.Context, event *domain.WebhookEvent) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, event)
	return nil
}

func (h *capturingHandler) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.events)
}

type fixedReplayGuard struct {
	first bool
}

func (g *fixedReplayGuard) FirstDelivery(ctx context.Context, deliveryID string) (bool, error) {
	return g.first, nil
}

func newWebhookHandler(t *testing.T, captured *capturingHandler) *api.WebhookHandler {
	t.Helper()
	dispatcher := application.NewWebhookDispatcher(zerolog.Nop())
	dispatcher.RegisterHandler(captured)
	return api.NewWebhookHandler(
		shopifyinfra.NewVerifier(testSecret, 0),
		repository.NewNoopWebhookRepository(),
		dedup.NewNoopReplayGuard(),
		dispatcher,
		pubsub.NewWebhookPubSub(zerolog.Nop()),
		zerolog.Nop(),
	)
}

func signBody(body []byte) string {
	mac := hmac.New(sha256.New, []byte(testSecret))
	mac.Write(body)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func webhookRequest(body []byte, signature string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/shopify/webhooks", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Shopify-Topic", "orders/create")
	req.Header.Set("X-Shopify-Shop-Domain", "test-shop.myshopify.com")
	req.Header.Set("X-Shopify-Webhook-Id", "delivery-123")
	req.Header.Set("X-Shopify-Hmac-SHA256", signature)
	return req
}

func TestWebhookAcceptsValidSignature(t *testing.T) {
	captured := &capturingHandler{}
	h := newWebhookHandler(t, captured)

	body := []byte(`{"id":1234567890,"order_number":1001,"total_price":"10.00","currency":"EUR"}`)
	rec := httptest.NewRecorder()
	h.Handle(rec, webhookRequest(body, signBody(body)))

	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, true, resp["ok"])

	// Dispatch runs detached from the request.
	require.Eventually(t, func() bool { return captured.count() == 1 }, time.Second, 5*time.Millisecond)

	captured.mu.Lock()
	defer captured.mu.Unlock()
	event := captured.events[0]
	require.Equal(t, "orders/create", event.Topic)
	require.Equal(t, "test-shop.myshopify.com", event.Shop)
	require.Equal(t, "delivery-123", event.DeliveryID)
	require.True(t, event.Verified)
	require.Equal(t, body, event.Payload)
}

func TestWebhookRejectsInvalidSignature(t *testing.T) {
	captured := &capturingHandler{}
	h := newWebhookHandler(t, captured)

	body := []byte(`{"id":1234567890}`)
	tampered := append([]byte(nil), body...)
	tampered[2] = 'x'

	rec := httptest.NewRecorder()
	h.Handle(rec, webhookRequest(tampered, signBody(body)))

	require.Equal(t, http.StatusUnauthorized, rec.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, false, resp["ok"])
	require.Equal(t, "invalid signature", resp["error"])

	time.Sleep(20 * time.Millisecond)
	require.Zero(t, captured.count())
}

func TestWebhookRejectsMissingSignature(t *testing.T) {
	h := newWebhookHandler(t, &capturingHandler{})

	body := []byte(`{"id":1}`)
	rec := httptest.NewRecorder()
	h.Handle(rec, webhookRequest(body, ""))

	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestWebhookToleratesMalformedPayload(t *testing.T) {
	captured := &capturingHandler{}
	h := newWebhookHandler(t, captured)

	// Verification covers the raw bytes; the body never has to be JSON.
	body := []byte(`{"id":12345`)
	req := webhookRequest(body, signBody(body))
	req.Header.Del("X-Shopify-Shop-Domain")
	rec := httptest.NewRecorder()
	h.Handle(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Eventually(t, func() bool { return captured.count() == 1 }, time.Second, 5*time.Millisecond)
}

func TestWebhookShopFromPayloadFallback(t *testing.T) {
	captured := &capturingHandler{}
	h := newWebhookHandler(t, captured)

	body := []byte(`{"id":1,"domain":"payload-shop.myshopify.com"}`)
	req := webhookRequest(body, signBody(body))
	req.Header.Del("X-Shopify-Shop-Domain")
	rec := httptest.NewRecorder()
	h.Handle(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Eventually(t, func() bool { return captured.count() == 1 }, time.Second, 5*time.Millisecond)

	captured.mu.Lock()
	defer captured.mu.Unlock()
	require.Equal(t, "payload-shop.myshopify.com", captured.events[0].Shop)
}

func TestWebhookDuplicateDeliveryNotRedispatched(t *testing.T) {
	captured := &capturingHandler{}
	dispatcher := application.NewWebhookDispatcher(zerolog.Nop())
	dispatcher.RegisterHandler(captured)
	h := api.NewWebhookHandler(
		shopifyinfra.NewVerifier(testSecret, 0),
		repository.NewNoopWebhookRepository(),
		&fixedReplayGuard{first: false},
		dispatcher,
		pubsub.NewWebhookPubSub(zerolog.Nop()),
		zerolog.Nop(),
	)

	body := []byte(`{"id":1}`)
	rec := httptest.NewRecorder()
	h.Handle(rec, webhookRequest(body, signBody(body)))

	// Still acknowledged so Shopify stops retrying, but nothing runs again.
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, true, resp["ok"])

	time.Sleep(20 * time.Millisecond)
	require.Zero(t, captured.count())
}

func TestWebhookPublishesToSubscribers(t *testing.T) {
	events := pubsub.NewWebhookPubSub(zerolog.Nop())
	dispatcher := application.NewWebhookDispatcher(zerolog.Nop())
	h := api.NewWebhookHandler(
		shopifyinfra.NewVerifier(testSecret, 0),
		repository.NewNoopWebhookRepository(),
		dedup.NewNoopReplayGuard(),
		dispatcher,
		events,
		zerolog.Nop(),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sub := events.Subscribe(ctx, &pubsub.EventFilter{Topics: []string{"orders/create"}})

	body := []byte(`{"id":1}`)
	rec := httptest.NewRecorder()
	h.Handle(rec, webhookRequest(body, signBody(body)))
	require.Equal(t, http.StatusOK, rec.Code)

	select {
	case event := <-sub.Events:
		require.Equal(t, "orders/create", event.Topic)
	case <-time.After(time.Second):
		t.Fatal("expected event on subscription channel")
	}
}
