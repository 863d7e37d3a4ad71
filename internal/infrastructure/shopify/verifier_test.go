package shopify_test

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"net/url"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	shopifyinfra "github.com/jaimeparramilic/lading-odds/internal/infrastructure/shopify"
)

const testSecret = "hush"

func signHex(t *testing.T, secret string, message string) string {
	t.Helper()
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(message))
	return hex.EncodeToString(mac.Sum(nil))
}

func signBase64(t *testing.T, secret string, body []byte) string {
	t.Helper()
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// Fixed contract vector: HMAC-SHA256 with key "hush" over the canonical
// message below. Pinned so a change to the signing scheme fails loudly.
func TestVerifyQueryContractVector(t *testing.T) {
	v := shopifyinfra.NewVerifier(testSecret, 0)

	params, err := url.ParseQuery("code=0907a61c0c8d55e99db179b68161bc00&shop=some-shop.myshopify.com&timestamp=1337178173")
	require.NoError(t, err)
	params.Set("hmac", "4712bf92ffc2917d15a2f5a273e39f0116667419aa4b6ac0b3baaf26fa3c4d20")

	require.True(t, v.VerifyQuery(params))
}

func TestVerifyQueryAcceptsSelfComputedDigest(t *testing.T) {
	v := shopifyinfra.NewVerifier(testSecret, 0)

	params := url.Values{}
	params.Set("shop", "test-shop.myshopify.com")
	params.Set("code", "abc123")
	params.Set("state", "nonce-value")
	params.Set("hmac", signHex(t, testSecret, shopifyinfra.CanonicalMessage(params)))

	require.True(t, v.VerifyQuery(params))
}

func TestVerifyQueryRejectsMutations(t *testing.T) {
	v := shopifyinfra.NewVerifier(testSecret, 0)

	params := url.Values{}
	params.Set("shop", "test-shop.myshopify.com")
	params.Set("code", "abc123")
	params.Set("hmac", signHex(t, testSecret, shopifyinfra.CanonicalMessage(params)))

	tampered, err := url.ParseQuery(params.Encode())
	require.NoError(t, err)
	tampered.Set("code", "abc124")
	require.False(t, v.VerifyQuery(tampered))

	wrongSecret := shopifyinfra.NewVerifier("husH", 0)
	require.False(t, wrongSecret.VerifyQuery(params))
}

func TestVerifyQueryMissingOrMalformedSignature(t *testing.T) {
	v := shopifyinfra.NewVerifier(testSecret, 0)

	params := url.Values{}
	params.Set("shop", "test-shop.myshopify.com")
	require.False(t, v.VerifyQuery(params))

	params.Set("hmac", "not-hex")
	require.False(t, v.VerifyQuery(params))
}

func TestVerifyWebhook(t *testing.T) {
	v := shopifyinfra.NewVerifier(testSecret, 0)

	body := []byte(`{"id":1234567890,"topic":"app/uninstalled"}`)
	require.True(t, v.VerifyWebhook(body, "Zj71p4svrMTnyTwJp173zmc+UcgeQMloyuWw3WeTO2Q="))
	require.True(t, v.VerifyWebhook(body, signBase64(t, testSecret, body)))

	// Stale signature over a tampered body.
	require.False(t, v.VerifyWebhook([]byte(`{"id":1234567891,"topic":"app/uninstalled"}`), signBase64(t, testSecret, body)))
	require.False(t, v.VerifyWebhook(body, ""))
	require.False(t, v.VerifyWebhook(body, "!!!not-base64!!!"))
}

func TestCheckTimestamp(t *testing.T) {
	v := shopifyinfra.NewVerifier(testSecret, 600*time.Second)
	now := time.Now()

	fresh := url.Values{"timestamp": {strconv.FormatInt(now.Unix(), 10)}}
	require.NoError(t, v.CheckTimestamp(fresh, now))

	stale := url.Values{"timestamp": {strconv.FormatInt(now.Add(-time.Hour).Unix(), 10)}}
	require.Error(t, v.CheckTimestamp(stale, now))

	malformed := url.Values{"timestamp": {"yesterday"}}
	require.Error(t, v.CheckTimestamp(malformed, now))

	// The parameter is optional; absence passes.
	require.NoError(t, v.CheckTimestamp(url.Values{}, now))

	// A zero skew disables the check entirely.
	disabled := shopifyinfra.NewVerifier(testSecret, 0)
	require.NoError(t, disabled.CheckTimestamp(stale, now))
}

func TestInspect(t *testing.T) {
	v := shopifyinfra.NewVerifier(testSecret, 0)

	params := url.Values{}
	params.Set("shop", "test-shop.myshopify.com")
	params.Set("hmac", "ignored")

	message, digest := v.Inspect(params)
	require.Equal(t, "shop=test-shop.myshopify.com", message)
	require.Equal(t, signHex(t, testSecret, message), digest)
}
