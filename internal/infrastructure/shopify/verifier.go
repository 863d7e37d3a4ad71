package shopify

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/jaimeparramilic/lading-odds/internal/ports"
)

// Verifier checks Shopify request signatures with a shared secret. Two
// encodings are in play: OAuth callbacks carry a hex hmac query parameter
// signed over the canonical query message, webhooks carry a base64 header
// signed over the raw request body.
type Verifier struct {
	secret  []byte
	maxSkew time.Duration
}

var _ ports.SignatureVerifier = (*Verifier)(nil)

// NewVerifier creates a verifier for the given shared secret. maxSkew bounds
// the signed timestamp parameter on OAuth callbacks; zero disables the check.
func NewVerifier(secret string, maxSkew time.Duration) *Verifier {
	return &Verifier{secret: []byte(secret), maxSkew: maxSkew}
}

func (v *Verifier) digest(message []byte) []byte {
	mac := hmac.New(sha256.New, v.secret)
	mac.Write(message)
	return mac.Sum(nil)
}

// VerifyQuery checks the hex-encoded hmac parameter against the digest of
// the canonical message. The comparison is constant-time.
func (v *Verifier) VerifyQuery(params url.Values) bool {
	given := params.Get("hmac")
	if given == "" {
		return false
	}
	claimed, err := hex.DecodeString(strings.ToLower(given))
	if err != nil {
		return false
	}
	computed := v.digest([]byte(CanonicalMessage(params)))
	return hmac.Equal(computed, claimed)
}

// VerifyWebhook checks the base64-encoded signature header against the
// digest of the exact raw body bytes. The body must not have been parsed or
// acted upon before this returns true.
func (v *Verifier) VerifyWebhook(body []byte, signature string) bool {
	if signature == "" {
		return false
	}
	claimed, err := base64.StdEncoding.DecodeString(signature)
	if err != nil {
		return false
	}
	return hmac.Equal(v.digest(body), claimed)
}

// CheckTimestamp rejects callbacks whose signed timestamp is further from
// now than the configured skew. The parameter is optional; absence passes.
func (v *Verifier) CheckTimestamp(params url.Values, now time.Time) error {
	raw := params.Get("timestamp")
	if raw == "" || v.maxSkew == 0 {
		return nil
	}
	ts, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return fmt.Errorf("malformed timestamp parameter %q", raw)
	}
	skew := now.Sub(time.Unix(ts, 0))
	if skew < 0 {
		skew = -skew
	}
	if skew > v.maxSkew {
		return fmt.Errorf("timestamp skew %s exceeds maximum %s", skew, v.maxSkew)
	}
	return nil
}

// Inspect returns the canonical message and its hex digest for operator
// diagnostics. Never expose this output in a production response.
func (v *Verifier) Inspect(params url.Values) (string, string) {
	message := CanonicalMessage(params)
	return message, hex.EncodeToString(v.digest([]byte(message)))
}
