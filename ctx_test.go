package auth_test

import (
	"context"
	"testing"

	"github.com/openbook/go-auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccountContext(t *testing.T) {
	ctx := context.Background()

	_, ok := auth.FromContext(ctx)
	assert.False(t, ok)

	account := &auth.Account{Username: "ada", Role: auth.RoleReader}
	ctx = auth.WithContext(ctx, account)

	got, ok := auth.FromContext(ctx)
	require.True(t, ok)
	assert.Same(t, account, got)
}

func TestPrincipalContext(t *testing.T) {
	ctx := context.Background()

	_, ok := auth.PrincipalFromContext(ctx)
	assert.False(t, ok)

	principal := &auth.Principal{Subject: "ada", Role: auth.RoleAdmin}
	ctx = auth.WithPrincipal(ctx, principal)

	got, ok := auth.PrincipalFromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, "ada", got.Subject)
	assert.Equal(t, auth.RoleAdmin, got.Role)
}

func TestPrincipalContext_NilPrincipal(t *testing.T) {
	ctx := auth.WithPrincipal(context.Background(), nil)

	got, ok := auth.PrincipalFromContext(ctx)
	assert.False(t, ok)
	assert.Nil(t, got)
}

func TestClaimsContext(t *testing.T) {
	ctx := context.Background()

	_, ok := auth.GetClaims(ctx)
	assert.False(t, ok)

	claims := &auth.JWTClaims{UserRole: "writer"}
	ctx = auth.WithClaimsContext(ctx, claims)

	got, ok := auth.GetClaims(ctx)
	require.True(t, ok)
	assert.Equal(t, "writer", got.Role())
}
