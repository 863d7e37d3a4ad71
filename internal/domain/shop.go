package domain

import "regexp"

// Shop domains must look like {subdomain}.myshopify.com. Nested subdomains
// and lookalike hosts (sub.myshopify.com.evil.com) do not match because the
// pattern is anchored on both ends.
var shopDomainPattern = regexp.MustCompile(`(?i)^[a-z0-9][a-z0-9-]*\.myshopify\.com$`)

// ValidShopDomain reports whether s is a syntactically valid myshopify
// domain. It must be checked before s is embedded in any outbound URL.
func ValidShopDomain(s string) bool {
	return shopDomainPattern.MatchString(s)
}
