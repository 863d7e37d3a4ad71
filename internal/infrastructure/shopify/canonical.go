package shopify

import (
	"net/url"
	"sort"
	"strings"
)

// localFlags are parameters excluded from the canonical message: the
// signature itself plus purely local diagnostic flags Shopify never signs.
// Any key not listed here is treated as provider-sent and enters the
// canonical string.
var localFlags = map[string]struct{}{
	"hmac":      {},
	"signature": {},
	"debug":     {},
	"check":     {},
	"dryrun":    {},
	"format":    {},
}

// CanonicalMessage deterministically rebuilds the byte string Shopify signed
// from the callback query parameters. Keys are deduplicated and sorted in
// ascending byte order; each occurrence of a repeated key emits its own
// key=value pair (occurrences sorted by value); pairs are joined with "&".
// Values are the decoded representations as received — Shopify signs decoded
// values, so re-encoding them here would break verification.
func CanonicalMessage(params url.Values) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		if _, local := localFlags[k]; local {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var parts []string
	for _, k := range keys {
		values := append([]string(nil), params[k]...)
		sort.Strings(values)
		for _, v := range values {
			parts = append(parts, k+"="+v)
		}
	}
	return strings.Join(parts, "&")
}
