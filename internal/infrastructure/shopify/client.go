package shopify

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	goshopify "github.com/bold-commerce/go-shopify/v4"
	"github.com/rs/zerolog"

	"github.com/jaimeparramilic/lading-odds/internal/domain"
	"github.com/jaimeparramilic/lading-odds/internal/ports"
)

// exchangeTimeout bounds the outbound token-exchange call so an unresponsive
// upstream cannot stall the callback request indefinitely.
const exchangeTimeout = 10 * time.Second

type client struct {
	apiKey      string
	apiSecret   string
	scopes      []string
	redirectURI string
	apiVersion  string
	app         goshopify.App
	httpClient  *http.Client
	logger      zerolog.Logger
}

// NewClient creates a Shopify client adapter. redirectURI must byte-for-byte
// match the allowed redirection URL registered with the app.
func NewClient(apiKey, apiSecret string, scopes []string, redirectURI, apiVersion string, logger zerolog.Logger) ports.ShopifyClient {
	return &client{
		apiKey:      apiKey,
		apiSecret:   apiSecret,
		scopes:      scopes,
		redirectURI: redirectURI,
		apiVersion:  apiVersion,
		app: goshopify.App{
			ApiKey:    apiKey,
			ApiSecret: apiSecret,
		},
		httpClient: &http.Client{Timeout: exchangeTimeout},
		logger:     logger,
	}
}

// AuthorizeURL builds the hosted authorization page URL. Shopify expects
// scopes comma-separated with no spaces.
func (c *client) AuthorizeURL(shop string, state string) string {
	return fmt.Sprintf(
		"https://%s/admin/oauth/authorize?client_id=%s&scope=%s&redirect_uri=%s&state=%s",
		shop,
		url.QueryEscape(c.apiKey),
		url.QueryEscape(strings.Join(c.scopes, ",")),
		url.QueryEscape(c.redirectURI),
		url.QueryEscape(state),
	)
}

// ExchangeToken trades the authorization code for an access token. A
// non-success upstream response is surfaced with its body attached; codes
// are single-use, so the caller must not retry the same exchange.
func (c *client) ExchangeToken(ctx context.Context, shop string, code string) (*domain.TokenGrant, error) {
	tokenURL := fmt.Sprintf("https://%s/admin/oauth/access_token", shop)

	values := url.Values{}
	values.Set("client_id", c.apiKey)
	values.Set("client_secret", c.apiSecret)
	values.Set("code", code)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, tokenURL, strings.NewReader(values.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange token: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("failed to exchange token: status %d, body: %s", resp.StatusCode, string(body))
	}

	var tokenResponse struct {
		AccessToken string `json:"access_token"`
		Scope       string `json:"scope"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&tokenResponse); err != nil {
		return nil, fmt.Errorf("failed to decode token response: %w", err)
	}
	if tokenResponse.AccessToken == "" {
		return nil, fmt.Errorf("token response contained no access token")
	}

	c.logger.Info().Str("shop", shop).Str("scope", tokenResponse.Scope).Msg("Token exchange completed")

	return &domain.TokenGrant{
		Shop:        shop,
		AccessToken: tokenResponse.AccessToken,
		Scope:       tokenResponse.Scope,
		APIVersion:  c.apiVersion,
		SavedAt:     time.Now().UTC(),
	}, nil
}

// adminClient creates a goshopify client bound to a shop and access token.
func (c *client) adminClient(shop string, accessToken string) (*goshopify.Client, error) {
	admin, err := goshopify.NewClient(c.app, shop, accessToken, goshopify.WithVersion(c.apiVersion))
	if err != nil {
		return nil, fmt.Errorf("failed to create admin client: %w", err)
	}
	return admin, nil
}

func (c *client) GetShop(ctx context.Context, shop string, accessToken string) (*goshopify.Shop, error) {
	admin, err := c.adminClient(shop, accessToken)
	if err != nil {
		return nil, err
	}
	info, err := admin.Shop.Get(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get shop: %w", err)
	}
	return info, nil
}

func (c *client) GetProducts(ctx context.Context, shop string, accessToken string, limit int) ([]goshopify.Product, error) {
	admin, err := c.adminClient(shop, accessToken)
	if err != nil {
		return nil, err
	}
	products, err := admin.Product.List(ctx, &goshopify.ListOptions{Limit: limit})
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return products, nil
}

func (c *client) CreateWebhook(ctx context.Context, shop string, accessToken string, topic string, address string) (*goshopify.Webhook, error) {
	admin, err := c.adminClient(shop, accessToken)
	if err != nil {
		return nil, err
	}
	created, err := admin.Webhook.Create(ctx, goshopify.Webhook{
		Topic:   topic,
		Address: address,
		Format:  "json",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create webhook: %w", err)
	}
	return created, nil
}
