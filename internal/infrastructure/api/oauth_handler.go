package api

import (
	"errors"
	"fmt"
	"html"
	"net/http"
	"net/url"

	"github.com/rs/zerolog"

	"github.com/jaimeparramilic/lading-odds/internal/application"
	"github.com/jaimeparramilic/lading-odds/internal/config"
	"github.com/jaimeparramilic/lading-odds/internal/domain"
	"github.com/jaimeparramilic/lading-odds/internal/ports"
)

const (
	stateCookieName = "shopify_oauth_state"
	shopCookieName  = "shopify_shop"

	// Cookies live just long enough to bridge the redirect round trip. An
	// abandoned flow leaves nothing to clean up server-side.
	cookieMaxAge = 300
)

// OAuthHandler serves the single OAuth endpoint. A request without a code
// parameter starts the flow; a request with one is the provider callback.
type OAuthHandler struct {
	cfg      *config.Config
	svc      *application.OAuthService
	verifier ports.SignatureVerifier
	logger   zerolog.Logger
}

// NewOAuthHandler creates the OAuth endpoint handler
func NewOAuthHandler(cfg *config.Config, svc *application.OAuthService, verifier ports.SignatureVerifier, logger zerolog.Logger) *OAuthHandler {
	return &OAuthHandler{cfg: cfg, svc: svc, verifier: verifier, logger: logger}
}

// Handle implements GET /api/shopify/oauth
func (h *OAuthHandler) Handle(w http.ResponseWriter, r *http.Request) {
	if !h.cfg.ShopifyConfigured() {
		h.logger.Error().Msg("OAuth endpoint hit with incomplete Shopify configuration")
		writeJSON(w, http.StatusInternalServerError, map[string]interface{}{
			"error":    "missing required configuration",
			"settings": h.cfg.MissingShopifySettings(),
		})
		return
	}

	query := r.URL.Query()
	shop := query.Get("shop")
	if shop == "" {
		if c, err := r.Cookie(shopCookieName); err == nil {
			shop = c.Value
		}
	}
	code := query.Get("code")

	// Diagnostic modes leak signing material and are unreachable unless the
	// operator flag is set; the flags themselves are never signed either way.
	if h.cfg.DebugEndpoints {
		switch {
		case code == "" && query.Get("check") == "1":
			h.handleCheck(w, shop)
			return
		case code == "" && query.Get("dryrun") == "1":
			h.handleDryRun(w, shop)
			return
		case code != "" && query.Get("debug") == "2":
			h.handleInspect(w, query, shop)
			return
		}
	}

	if code == "" {
		h.begin(w, r, shop)
		return
	}
	h.callback(w, r, query)
}

func (h *OAuthHandler) begin(w http.ResponseWriter, r *http.Request, shop string) {
	result, err := h.svc.BeginAuth(shop)
	if errors.Is(err, application.ErrInvalidShop) {
		oauthFlowsTotal.WithLabelValues("begin", "invalid_shop").Inc()
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{
			"error": "invalid shop parameter, expected {name}.myshopify.com",
			"shop":  shop,
		})
		return
	}
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to begin OAuth flow")
		oauthFlowsTotal.WithLabelValues("begin", "error").Inc()
		writeJSON(w, http.StatusInternalServerError, map[string]interface{}{"error": "internal server error"})
		return
	}

	h.setCookie(w, stateCookieName, result.State, cookieMaxAge)
	h.setCookie(w, shopCookieName, shop, cookieMaxAge)

	oauthFlowsTotal.WithLabelValues("begin", "redirected").Inc()
	http.Redirect(w, r, result.AuthorizeURL, http.StatusFound)
}

func (h *OAuthHandler) callback(w http.ResponseWriter, r *http.Request, query url.Values) {
	in := application.CallbackInput{Query: query}
	if c, err := r.Cookie(stateCookieName); err == nil {
		in.StateCookie = c.Value
	}
	if c, err := r.Cookie(shopCookieName); err == nil {
		in.ShopCookie = c.Value
	}

	grant, err := h.svc.CompleteAuth(r.Context(), in)

	// The cookie pair is single-use regardless of outcome.
	h.setCookie(w, stateCookieName, "", -1)
	h.setCookie(w, shopCookieName, "", -1)

	if err != nil {
		h.rejectCallback(w, err)
		return
	}

	oauthFlowsTotal.WithLabelValues("callback", "ok").Inc()
	if query.Get("format") == "json" {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"ok":           true,
			"shop":         grant.Shop,
			"api_version":  grant.APIVersion,
			"access_token": grant.AccessToken,
			"scope":        grant.Scope,
			"saved_at":     grant.SavedAt,
		})
		return
	}
	h.writeConfirmationPage(w, grant)
}

// rejectCallback maps verification errors to 400s and everything else (the
// token exchange itself) to 502 with the upstream error attached. Failures
// are always JSON so pipeline callers and operators get the same shape.
func (h *OAuthHandler) rejectCallback(w http.ResponseWriter, err error) {
	for _, known := range []struct {
		sentinel error
		label    string
		message  string
	}{
		{application.ErrInvalidShop, "invalid_shop", "invalid shop parameter, expected {name}.myshopify.com"},
		{application.ErrStaleTimestamp, "stale_timestamp", "stale timestamp"},
		{application.ErrInvalidSignature, "invalid_signature", "invalid signature"},
		{application.ErrStateMismatch, "state_mismatch", "state mismatch"},
		{application.ErrShopMismatch, "shop_mismatch", "shop mismatch"},
	} {
		if errors.Is(err, known.sentinel) {
			oauthFlowsTotal.WithLabelValues("callback", known.label).Inc()
			writeJSON(w, http.StatusBadRequest, map[string]interface{}{"error": known.message})
			return
		}
	}

	h.logger.Error().Err(err).Msg("Token exchange failed")
	oauthFlowsTotal.WithLabelValues("callback", "exchange_failed").Inc()
	writeJSON(w, http.StatusBadGateway, map[string]interface{}{
		"error":   "token exchange failed",
		"details": err.Error(),
	})
}

func (h *OAuthHandler) writeConfirmationPage(w http.ResponseWriter, grant *domain.TokenGrant) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	fmt.Fprintf(w, `<!doctype html><html><body style="font-family:system-ui;padding:28px">
<h1>OAuth OK</h1>
<p><b>Shop:</b> %s</p>
<p><b>API version:</b> %s</p>
<p><b>Scope:</b> %s</p>
<p><b>Access token:</b> <code>%s</code></p>
<p>For pipelines, repeat the request with <code>&amp;format=json</code>.</p>
</body></html>`,
		html.EscapeString(grant.Shop),
		html.EscapeString(grant.APIVersion),
		html.EscapeString(grant.Scope),
		html.EscapeString(grant.MaskedToken()),
	)
}

// handleCheck reports what the start leg would send to Shopify without
// redirecting, so operators can compare the redirect URI against the app's
// allowed redirection URL.
func (h *OAuthHandler) handleCheck(w http.ResponseWriter, shop string) {
	validated := ""
	if domain.ValidShopDomain(shop) {
		validated = shop
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"note":                  "diagnostic: this is what would be sent to Shopify, no redirect",
		"app_url":               h.cfg.AppURL,
		"redirect_uri_expected": h.cfg.RedirectURI(),
		"shop_input":            shop,
		"shop_validated":        validated,
	})
}

// handleDryRun prints the authorization URL instead of redirecting.
func (h *OAuthHandler) handleDryRun(w http.ResponseWriter, shop string) {
	result, err := h.svc.BeginAuth(shop)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{"error": "invalid shop parameter", "shop": shop})
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	fmt.Fprintln(w, result.AuthorizeURL)
}

// handleInspect recomputes the callback signature without exchanging the
// code.
func (h *OAuthHandler) handleInspect(w http.ResponseWriter, query url.Values, shop string) {
	message, digest := h.verifier.Inspect(query)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"note": "diagnostic: callback inspection, token is not exchanged",
		"shop": shop,
		"hmac": map[string]interface{}{
			"given":          query.Get("hmac"),
			"expected":       digest,
			"message_signed": message,
			"match":          h.verifier.VerifyQuery(query),
		},
	})
}

func (h *OAuthHandler) setCookie(w http.ResponseWriter, name, value string, maxAge int) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   h.cfg.Production(),
		SameSite: http.SameSiteLaxMode,
	})
}
