package ports

import (
	"net/url"
	"time"
)

// SignatureVerifier decides whether a request genuinely originated from
// Shopify. Failure is a boolean result, not an error; callers branch on it.
type SignatureVerifier interface {
	// VerifyQuery checks the hex-encoded hmac parameter against a digest of
	// the canonical message rebuilt from the callback query parameters.
	VerifyQuery(params url.Values) bool

	// VerifyWebhook checks a base64-encoded signature against a digest of
	// the exact raw request body bytes.
	VerifyWebhook(body []byte, signature string) bool

	// CheckTimestamp rejects callbacks whose signed timestamp parameter is
	// further from now than the configured skew. A missing parameter passes.
	CheckTimestamp(params url.Values, now time.Time) error

	// Inspect returns the canonical message and the hex digest computed over
	// it. Diagnostic only; the output leaks signing material and must never
	// reach a production response.
	Inspect(params url.Values) (message string, digest string)
}
