package jwtware

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetExtractorsParsesLookup(t *testing.T) {
	extractors := GetExtractors("header:Authorization, cookie:jwt ,query:auth_token,param:token,bogus")
	require.Len(t, extractors, 4)
}

func TestGetExtractorsIgnoresMalformedParts(t *testing.T) {
	assert.Empty(t, GetExtractors("header,cookie"))
	assert.Empty(t, GetExtractors(""))
}

func TestGetDefaultConfig(t *testing.T) {
	cfg := GetDefaultConfig(Config{Resolver: func(_ context.Context, token string) (any, error) { return token, nil }})

	assert.Equal(t, DefaultContextKey, cfg.ContextKey)
	assert.Equal(t, defaultTokenLookup, cfg.TokenLookup)
	assert.Equal(t, "Bearer", cfg.AuthScheme)
	assert.NotNil(t, cfg.SuccessHandler)
	assert.NotNil(t, cfg.ErrorHandler)
}

func TestGetDefaultConfigRequiresResolver(t *testing.T) {
	assert.Panics(t, func() {
		GetDefaultConfig()
	})
}
