package api

import (
	"net/http"

	"github.com/rs/zerolog"

	"github.com/jaimeparramilic/lading-odds/internal/domain"
	"github.com/jaimeparramilic/lading-odds/internal/ports"
)

// productsLimit caps the product listing proxy; it exists to smoke-test a
// token, not to page a catalog.
const productsLimit = 5

// AdminProxy exposes small authenticated Admin API checks for a shop and a
// caller-supplied access token.
type AdminProxy struct {
	client ports.ShopifyClient
	logger zerolog.Logger
}

// NewAdminProxy creates the Admin API proxy handlers
func NewAdminProxy(client ports.ShopifyClient, logger zerolog.Logger) *AdminProxy {
	return &AdminProxy{client: client, logger: logger}
}

// Ping implements GET /api/shopify/admin/ping: fetches shop.json to confirm
// the token works.
func (p *AdminProxy) Ping(w http.ResponseWriter, r *http.Request) {
	shop, token, ok := p.credentials(w, r)
	if !ok {
		return
	}

	info, err := p.client.GetShop(r.Context(), shop, token)
	if err != nil {
		p.logger.Error().Err(err).Str("shop", shop).Msg("Admin ping failed")
		writeJSON(w, http.StatusBadGateway, map[string]interface{}{"error": "admin api failed", "details": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"ok": true, "data": info})
}

// Products implements GET /api/shopify/admin/products: lists a handful of
// products with the supplied token.
func (p *AdminProxy) Products(w http.ResponseWriter, r *http.Request) {
	shop, token, ok := p.credentials(w, r)
	if !ok {
		return
	}

	products, err := p.client.GetProducts(r.Context(), shop, token, productsLimit)
	if err != nil {
		p.logger.Error().Err(err).Str("shop", shop).Msg("Admin products listing failed")
		writeJSON(w, http.StatusBadGateway, map[string]interface{}{"error": "admin api failed", "details": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"ok": true, "products": products})
}

func (p *AdminProxy) credentials(w http.ResponseWriter, r *http.Request) (shop, token string, ok bool) {
	query := r.URL.Query()
	shop = query.Get("shop")
	token = query.Get("access_token")
	if shop == "" || token == "" {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{"error": "missing shop or access_token parameter"})
		return "", "", false
	}
	if !domain.ValidShopDomain(shop) {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{"error": "invalid shop parameter, expected {name}.myshopify.com", "shop": shop})
		return "", "", false
	}
	return shop, token, true
}
