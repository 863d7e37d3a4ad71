package ports

import (
	"context"

	shopify "github.com/bold-commerce/go-shopify/v4"

	"github.com/jaimeparramilic/lading-odds/internal/domain"
)

// ShopifyClient defines the outbound Shopify operations the service needs.
type ShopifyClient interface {
	// AuthorizeURL builds the hosted authorization page URL for a shop,
	// embedding client id, scopes, the registered redirect URI and state.
	AuthorizeURL(shop string, state string) string

	// ExchangeToken trades an authorization code for an access token via a
	// server-to-server call to the shop's token endpoint.
	ExchangeToken(ctx context.Context, shop string, code string) (*domain.TokenGrant, error)

	// Admin API, authenticated with a caller-supplied access token.
	GetShop(ctx context.Context, shop string, accessToken string) (*shopify.Shop, error)
	GetProducts(ctx context.Context, shop string, accessToken string, limit int) ([]shopify.Product, error)
	CreateWebhook(ctx context.Context, shop string, accessToken string, topic string, address string) (*shopify.Webhook, error)
}
