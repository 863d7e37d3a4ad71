package application

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/rs/zerolog"

	"github.com/jaimeparramilic/lading-odds/internal/domain"
	"github.com/jaimeparramilic/lading-odds/internal/ports"
)

// Verification failures on the callback leg. Each maps to a 400-class
// response; none of them results in a token exchange attempt.
var (
	ErrInvalidShop      = errors.New("invalid shop domain")
	ErrStaleTimestamp   = errors.New("stale timestamp")
	ErrInvalidSignature = errors.New("invalid signature")
	ErrStateMismatch    = errors.New("state mismatch")
	ErrShopMismatch     = errors.New("shop mismatch")
)

// uninstallTopic is registered on every successful install so the token
// owner learns when a shop removes the app.
const uninstallTopic = "app/uninstalled"

// OAuthService implements the authorization-code handshake with Shopify.
// It is stateless across requests; the state nonce and shop cookie pair set
// at flow start and echoed back at callback are the sole session binding.
type OAuthService struct {
	client         ports.ShopifyClient
	verifier       ports.SignatureVerifier
	webhookAddress string
	logger         zerolog.Logger
}

// NewOAuthService creates a new OAuth handshake service. webhookAddress, if
// non-empty, is registered for app/uninstalled after each token exchange.
func NewOAuthService(client ports.ShopifyClient, verifier ports.SignatureVerifier, webhookAddress string, logger zerolog.Logger) *OAuthService {
	return &OAuthService{
		client:         client,
		verifier:       verifier,
		webhookAddress: webhookAddress,
		logger:         logger,
	}
}

// BeginAuthResult carries the generated state nonce and the authorization
// URL the user agent is redirected to.
type BeginAuthResult struct {
	State        string
	AuthorizeURL string
}

// BeginAuth starts the handshake for a shop. The shop domain is validated
// before any URL is constructed; the returned nonce must be stored in an
// HTTP-only cookie and compared on the callback leg.
func (s *OAuthService) BeginAuth(shop string) (*BeginAuthResult, error) {
	if !domain.ValidShopDomain(shop) {
		return nil, ErrInvalidShop
	}
	state, err := GenerateState()
	if err != nil {
		return nil, fmt.Errorf("failed to generate state: %w", err)
	}

	s.logger.Info().Str("shop", shop).Msg("Beginning OAuth flow")

	return &BeginAuthResult{
		State:        state,
		AuthorizeURL: s.client.AuthorizeURL(shop, state),
	}, nil
}

// CallbackInput is the verification context for the callback leg: the
// callback query parameters plus the cookie pair set at flow start.
type CallbackInput struct {
	Query       url.Values
	StateCookie string
	ShopCookie  string
}

// CompleteAuth verifies a callback and exchanges the code for an access
// token. Checks run in order: shop domain syntax, timestamp freshness, HMAC,
// state nonce, shop-cookie binding. All are mandatory and independent; the
// first failure short-circuits and no exchange is attempted. The returned
// grant is handed to the caller and not persisted here.
func (s *OAuthService) CompleteAuth(ctx context.Context, in CallbackInput) (*domain.TokenGrant, error) {
	shop := in.Query.Get("shop")
	if !domain.ValidShopDomain(shop) {
		return nil, ErrInvalidShop
	}
	if err := s.verifier.CheckTimestamp(in.Query, time.Now()); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStaleTimestamp, err)
	}
	if !s.verifier.VerifyQuery(in.Query) {
		return nil, ErrInvalidSignature
	}
	state := in.Query.Get("state")
	if state == "" || in.StateCookie == "" || state != in.StateCookie {
		return nil, ErrStateMismatch
	}
	if in.ShopCookie == "" || in.ShopCookie != shop {
		return nil, ErrShopMismatch
	}

	grant, err := s.client.ExchangeToken(ctx, shop, in.Query.Get("code"))
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("shop", shop).Str("scope", grant.Scope).Msg("OAuth flow completed")

	// Best effort: a failed subscription must not fail the install.
	if s.webhookAddress != "" {
		if _, err := s.client.CreateWebhook(ctx, shop, grant.AccessToken, uninstallTopic, s.webhookAddress); err != nil {
			s.logger.Warn().Err(err).Str("shop", shop).Str("topic", uninstallTopic).Msg("Failed to register webhook after install")
		}
	}

	return grant, nil
}

// GenerateState returns a cryptographically random, URL-safe nonce of 24
// random bytes (32 encoded characters).
func GenerateState() (string, error) {
	buf := make([]byte, 24)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
