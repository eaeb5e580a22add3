package auth_test

import (
	"testing"

	"github.com/openbook/go-auth"
	"github.com/stretchr/testify/assert"
)

func TestSimpleConfig_Defaults(t *testing.T) {
	cfg := auth.SimpleConfig{SigningKey: "secret"}

	assert.Equal(t, "secret", cfg.GetSigningKey())
	assert.Equal(t, 24, cfg.GetTokenExpiration())
	assert.Equal(t, "access_token", cfg.GetContextKey())
	assert.Equal(t, "header:Authorization,cookie:access_token", cfg.GetTokenLookup())
	assert.Equal(t, "Bearer", cfg.GetAuthScheme())
}

func TestSimpleConfig_Overrides(t *testing.T) {
	cfg := auth.SimpleConfig{
		SigningKey:      "secret",
		TokenExpiration: 2,
		ContextKey:      "session",
		AuthScheme:      "Token",
	}

	assert.Equal(t, 2, cfg.GetTokenExpiration())
	assert.Equal(t, "session", cfg.GetContextKey())
	assert.Equal(t, "header:Authorization,cookie:session", cfg.GetTokenLookup(), "the cookie source follows the context key")
	assert.Equal(t, "Token", cfg.GetAuthScheme())
}
