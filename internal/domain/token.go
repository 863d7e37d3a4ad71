package domain

import "time"

// TokenGrant is the result of a successful authorization-code exchange.
// It is returned to the caller and never persisted here; storing the token
// for later Admin API use is the caller's responsibility.
type TokenGrant struct {
	Shop        string    `json:"shop"`
	AccessToken string    `json:"access_token"`
	Scope       string    `json:"scope"`
	APIVersion  string    `json:"api_version"`
	SavedAt     time.Time `json:"saved_at"`
}

// MaskedToken renders the access token with only the first 6 and last 4
// characters visible, for human-readable confirmation pages.
func (g *TokenGrant) MaskedToken() string {
	t := g.AccessToken
	if len(t) <= 10 {
		return "…"
	}
	return t[:6] + "…" + t[len(t)-4:]
}
