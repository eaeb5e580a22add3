package auth

// SimpleConfig is a plain-struct Config implementation for callers that do
// not bring their own configuration layer.
type SimpleConfig struct {
	SigningKey      string
	TokenExpiration int
	Issuer          string
	Audience        []string
	ContextKey      string
	TokenLookup     string
	AuthScheme      string
}

// GetSigningKey returns the shared HMAC signing secret.
func (c SimpleConfig) GetSigningKey() string { return c.SigningKey }

// GetTokenExpiration returns the token lifetime in hours.
func (c SimpleConfig) GetTokenExpiration() int {
	if c.TokenExpiration <= 0 {
		return 24
	}
	return c.TokenExpiration
}

// GetIssuer returns the iss claim value.
func (c SimpleConfig) GetIssuer() string { return c.Issuer }

// GetAudience returns the aud claim values.
func (c SimpleConfig) GetAudience() []string { return c.Audience }

// GetContextKey returns the locals key (and cookie name) for the session.
func (c SimpleConfig) GetContextKey() string {
	if c.ContextKey == "" {
		return "access_token"
	}
	return c.ContextKey
}

// GetTokenLookup returns the extraction chain for incoming tokens.
func (c SimpleConfig) GetTokenLookup() string {
	if c.TokenLookup == "" {
		return "header:Authorization,cookie:" + c.GetContextKey()
	}
	return c.TokenLookup
}

// GetAuthScheme returns the Authorization header scheme.
func (c SimpleConfig) GetAuthScheme() string {
	if c.AuthScheme == "" {
		return "Bearer"
	}
	return c.AuthScheme
}

var _ Config = SimpleConfig{}
