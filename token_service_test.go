package auth_test

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/openbook/go-auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	testSigningKey = []byte("test-signing-key")
	testIssuer     = "test-issuer"
	testAudience   = jwt.ClaimStrings{"test-audience"}
)

func newTestTokenService() auth.TokenService {
	return auth.NewTokenService(testSigningKey, 24, testIssuer, testAudience, &MockLogger{})
}

func TestTokenService_Generate(t *testing.T) {
	service := newTestTokenService()

	identity := TestIdentity{
		id:       "d6f2c2f0-0000-4000-8000-000000000001",
		username: "ada",
		email:    "ada@example.com",
		role:     "writer",
	}

	tokenString, err := service.Generate(identity)
	require.NoError(t, err)
	require.NotEmpty(t, tokenString)

	token, err := jwt.ParseWithClaims(tokenString, &auth.JWTClaims{}, func(token *jwt.Token) (any, error) {
		return testSigningKey, nil
	})
	require.NoError(t, err)
	require.True(t, token.Valid)

	claims, ok := token.Claims.(*auth.JWTClaims)
	require.True(t, ok)
	assert.Equal(t, "ada", claims.Subject(), "subject is the username at issuance time")
	assert.Equal(t, "writer", claims.Role())
	assert.Equal(t, testIssuer, claims.Issuer)
	assert.Equal(t, testAudience, claims.Audience)
	assert.NotEmpty(t, claims.ID, "every issuance gets a fresh jti")
	assert.NotNil(t, claims.ExpiresAt)
	assert.WithinDuration(t, time.Now().Add(24*time.Hour), claims.Expires(), time.Minute)
}

func TestTokenService_Generate_NilIdentity(t *testing.T) {
	service := newTestTokenService()

	tokenString, err := service.Generate(nil)
	assert.Error(t, err)
	assert.Empty(t, tokenString)
}

func TestTokenService_Generate_DistinctTokensForSameIdentity(t *testing.T) {
	service := newTestTokenService()
	identity := TestIdentity{username: "ada", role: "reader"}

	first, err := service.Generate(identity)
	require.NoError(t, err)
	second, err := service.Generate(identity)
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestTokenService_Validate(t *testing.T) {
	service := newTestTokenService()

	t.Run("round trip preserves subject and role", func(t *testing.T) {
		identity := TestIdentity{username: "grace", role: "admin"}

		tokenString, err := service.Generate(identity)
		require.NoError(t, err)

		claims, err := service.Validate(tokenString)
		require.NoError(t, err)
		assert.Equal(t, "grace", claims.Subject())
		assert.Equal(t, "admin", claims.Role())
		assert.True(t, claims.HasRole("admin"))
		assert.True(t, claims.IsAtLeast("writer"))
	})

	t.Run("expired token", func(t *testing.T) {
		impl := auth.NewTokenService(testSigningKey, 24, testIssuer, testAudience, nil).(*auth.TokenServiceImpl)

		past := time.Now().Add(-time.Hour)
		expired := &auth.JWTClaims{
			RegisteredClaims: jwt.RegisteredClaims{
				Issuer:    testIssuer,
				Subject:   "ada",
				Audience:  testAudience,
				IssuedAt:  jwt.NewNumericDate(past.Add(-time.Hour)),
				ExpiresAt: jwt.NewNumericDate(past),
			},
			UserRole: "reader",
		}

		tokenString, err := impl.SignClaims(expired)
		require.NoError(t, err)

		claims, err := service.Validate(tokenString)
		assert.Nil(t, claims)
		assert.True(t, auth.IsTokenExpired(err))
		assert.False(t, auth.IsTokenInvalid(err))
	})

	t.Run("tampered signature is invalid, never expired", func(t *testing.T) {
		impl := auth.NewTokenService(testSigningKey, 24, testIssuer, testAudience, nil).(*auth.TokenServiceImpl)

		// expired claims under a flipped signature must still report
		// invalid: the signature check runs before the expiry check
		past := time.Now().Add(-time.Hour)
		expired := &auth.JWTClaims{
			RegisteredClaims: jwt.RegisteredClaims{
				Issuer:    testIssuer,
				Subject:   "ada",
				Audience:  testAudience,
				ExpiresAt: jwt.NewNumericDate(past),
			},
			UserRole: "reader",
		}

		tokenString, err := impl.SignClaims(expired)
		require.NoError(t, err)

		tampered := flipLastChar(tokenString)
		require.NotEqual(t, tokenString, tampered)

		claims, err := service.Validate(tampered)
		assert.Nil(t, claims)
		assert.True(t, auth.IsTokenInvalid(err))
		assert.False(t, auth.IsTokenExpired(err))
	})

	t.Run("wrong signing key", func(t *testing.T) {
		other := auth.NewTokenService([]byte("another-key"), 24, testIssuer, testAudience, nil)

		tokenString, err := other.Generate(TestIdentity{username: "mallory", role: "admin"})
		require.NoError(t, err)

		claims, err := service.Validate(tokenString)
		assert.Nil(t, claims)
		assert.True(t, auth.IsTokenInvalid(err))
	})

	t.Run("wrong issuer", func(t *testing.T) {
		other := auth.NewTokenService(testSigningKey, 24, "someone-else", testAudience, nil)

		tokenString, err := other.Generate(TestIdentity{username: "ada", role: "reader"})
		require.NoError(t, err)

		claims, err := service.Validate(tokenString)
		assert.Nil(t, claims)
		assert.True(t, auth.IsTokenInvalid(err))
	})

	t.Run("garbage token", func(t *testing.T) {
		claims, err := service.Validate("not.a.token")
		assert.Nil(t, claims)
		assert.True(t, auth.IsTokenInvalid(err))
	})

	t.Run("unexpected signing method", func(t *testing.T) {
		unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{
			Issuer:  testIssuer,
			Subject: "ada",
		})
		tokenString, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)

		claims, err := service.Validate(tokenString)
		assert.Nil(t, claims)
		assert.True(t, auth.IsTokenInvalid(err))
	})
}

func flipLastChar(s string) string {
	if strings.HasSuffix(s, "A") {
		return s[:len(s)-1] + "B"
	}
	return s[:len(s)-1] + "A"
}
