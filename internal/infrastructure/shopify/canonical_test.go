package shopify_test

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"

	shopifyinfra "github.com/jaimeparramilic/lading-odds/internal/infrastructure/shopify"
)

func TestCanonicalMessageSortsKeys(t *testing.T) {
	params := url.Values{}
	params.Set("timestamp", "1337178173")
	params.Set("shop", "some-shop.myshopify.com")
	params.Set("code", "0907a61c0c8d55e99db179b68161bc00")

	msg := shopifyinfra.CanonicalMessage(params)
	require.Equal(t, "code=0907a61c0c8d55e99db179b68161bc00&shop=some-shop.myshopify.com&timestamp=1337178173", msg)
}

func TestCanonicalMessageOrderInvariant(t *testing.T) {
	a, err := url.ParseQuery("shop=s.myshopify.com&code=abc&state=xyz&timestamp=1")
	require.NoError(t, err)
	b, err := url.ParseQuery("timestamp=1&state=xyz&code=abc&shop=s.myshopify.com")
	require.NoError(t, err)

	require.Equal(t, shopifyinfra.CanonicalMessage(a), shopifyinfra.CanonicalMessage(b))
}

func TestCanonicalMessageExcludesLocalFlags(t *testing.T) {
	params, err := url.ParseQuery("shop=s.myshopify.com&hmac=deadbeef&signature=old&debug=2&check=1&dryrun=1&format=json")
	require.NoError(t, err)

	require.Equal(t, "shop=s.myshopify.com", shopifyinfra.CanonicalMessage(params))
}

func TestCanonicalMessageRepeatedKeys(t *testing.T) {
	// Each occurrence of a repeated key is its own pair, values sorted.
	params, err := url.ParseQuery("ids=3&ids=1&ids=2&shop=s.myshopify.com")
	require.NoError(t, err)

	require.Equal(t, "ids=1&ids=2&ids=3&shop=s.myshopify.com", shopifyinfra.CanonicalMessage(params))
}

func TestCanonicalMessageUsesDecodedValues(t *testing.T) {
	params, err := url.ParseQuery("redirect=https%3A%2F%2Fexample.com%2Fcb&shop=s.myshopify.com")
	require.NoError(t, err)

	require.Equal(t, "redirect=https://example.com/cb&shop=s.myshopify.com", shopifyinfra.CanonicalMessage(params))
}
