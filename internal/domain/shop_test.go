package domain_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jaimeparramilic/lading-odds/internal/domain"
)

func TestValidShopDomain(t *testing.T) {
	valid := []string{
		"test-shop.myshopify.com",
		"a.myshopify.com",
		"Shop-123.MYSHOPIFY.COM",
	}
	for _, s := range valid {
		require.True(t, domain.ValidShopDomain(s), "expected %q to be valid", s)
	}

	invalid := []string{
		"",
		"evil.com",
		"sub.myshopify.com.evil.com",
		"a.b.myshopify.com",
		"-shop.myshopify.com",
		"https://test-shop.myshopify.com",
		"test-shop.myshopify.com/admin",
		"myshopify.com",
	}
	for _, s := range invalid {
		require.False(t, domain.ValidShopDomain(s), "expected %q to be invalid", s)
	}
}

func TestTokenGrantMaskedToken(t *testing.T) {
	grant := &domain.TokenGrant{AccessToken: "shpat_abcdef1234567890"}
	require.Equal(t, "shpat_…7890", grant.MaskedToken())

	short := &domain.TokenGrant{AccessToken: "tiny"}
	require.Equal(t, "…", short.MaskedToken())
}
