package auth

import (
	"context"

	"github.com/goliatone/go-router"
)

// Principal is the request-scoped authenticated identity derived from a
// validated token. It travels with the request context and is discarded at
// request completion; it is never stored.
type Principal struct {
	Subject string
	Role    UserRole
}

var accountCtxKey = &contextKey{"account"}
var principalCtxKey = &contextKey{"principal"}
var claimsCtxKey = &contextKey{"claims"}

type contextKey struct {
	name string
}

// WithContext sets the Account in the given context
func WithContext(r context.Context, account *Account) context.Context {
	return context.WithValue(r, accountCtxKey, account)
}

// FromContext finds the account from the context.
func FromContext(ctx context.Context) (*Account, bool) {
	raw, ok := ctx.Value(accountCtxKey).(*Account)
	return raw, ok
}

// WithPrincipal sets the Principal in the given context
func WithPrincipal(r context.Context, principal *Principal) context.Context {
	return context.WithValue(r, principalCtxKey, principal)
}

// PrincipalFromContext extracts the Principal from the standard context
func PrincipalFromContext(ctx context.Context) (*Principal, bool) {
	raw, ok := ctx.Value(principalCtxKey).(*Principal)
	if !ok || raw == nil {
		return nil, false
	}
	return raw, true
}

// WithClaimsContext sets the AuthClaims in the given context
func WithClaimsContext(r context.Context, claims AuthClaims) context.Context {
	return context.WithValue(r, claimsCtxKey, claims)
}

// GetClaims extracts the AuthClaims from the standard context
func GetClaims(ctx context.Context) (AuthClaims, bool) {
	raw, ok := ctx.Value(claimsCtxKey).(AuthClaims)
	return raw, ok
}

// claimsView is the minimal shape request authentication leaves in router
// locals. Matching on the method set keeps the middleware package decoupled.
type claimsView interface {
	Subject() string
	Role() string
}

// RouterPrincipal extracts the Principal left in the router context by the
// request authenticator. The boolean is false for anonymous requests.
func RouterPrincipal(ctx router.Context, key string) (*Principal, bool) {
	if key == "" {
		key = "access_token"
	}
	raw := ctx.Locals(key)
	if raw == nil {
		return nil, false
	}
	view, ok := raw.(claimsView)
	if !ok {
		return nil, false
	}
	return &Principal{
		Subject: view.Subject(),
		Role:    UserRole(view.Role()),
	}, true
}
