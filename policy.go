package auth

import (
	"strings"

	"github.com/goliatone/go-router"
)

// DenyReason distinguishes "nobody is signed in" from "the signed-in
// principal's role is not enough".
type DenyReason string

const (
	DenyNone             DenyReason = ""
	DenyUnauthenticated  DenyReason = "unauthenticated"
	DenyInsufficientRole DenyReason = "insufficient_role"
)

// Decision is the outcome of evaluating a request path against the policy.
type Decision struct {
	Allowed bool
	Reason  DenyReason
	Prefix  string
}

// RouteRule binds a path prefix to an access requirement. A rule with
// Public set requires no principal. A rule with an empty role set admits
// any authenticated principal. Otherwise the principal's role must be one
// of Roles.
type RouteRule struct {
	Prefix string
	Public bool
	Roles  []UserRole
}

func (r RouteRule) matches(path string) bool {
	prefix := strings.TrimSuffix(r.Prefix, "/")
	if prefix == "" {
		return true
	}
	return path == prefix || strings.HasPrefix(path, prefix+"/")
}

func (r RouteRule) admits(role UserRole) bool {
	if len(r.Roles) == 0 {
		return true
	}
	for _, allowed := range r.Roles {
		if role == allowed {
			return true
		}
	}
	return false
}

// RoutePolicy is a static, ordered route table built once at startup.
// The most specific matching prefix wins; equally specific prefixes are
// resolved by declaration order. Paths matched by no rule require an
// authenticated principal.
type RoutePolicy struct {
	rules []RouteRule
}

func NewRoutePolicy(rules ...RouteRule) *RoutePolicy {
	return &RoutePolicy{rules: rules}
}

// DefaultRoutePolicy covers the standard API layout: administration is
// admin only, authoring needs writer or admin, auth and account
// endpoints are open, everything else needs a signed-in user.
func DefaultRoutePolicy() *RoutePolicy {
	return NewRoutePolicy(
		RouteRule{Prefix: "/api/admin", Roles: []UserRole{RoleAdmin}},
		RouteRule{Prefix: "/api/work", Roles: []UserRole{RoleWriter, RoleAdmin}},
		RouteRule{Prefix: "/api/auth", Public: true},
		RouteRule{Prefix: "/api/account", Public: true},
		RouteRule{Prefix: "/api/library"},
		RouteRule{Prefix: "/api/books"},
	)
}

// Evaluate is a pure function of the request path and the principal, if
// any. It never touches the account store.
func (p *RoutePolicy) Evaluate(path string, principal *Principal) Decision {
	rule, ok := p.match(path)
	if !ok {
		// Unmatched paths default to authenticated-only.
		rule = RouteRule{}
	}

	if rule.Public {
		return Decision{Allowed: true, Prefix: rule.Prefix}
	}

	if principal == nil {
		return Decision{Reason: DenyUnauthenticated, Prefix: rule.Prefix}
	}

	if !rule.admits(principal.Role) {
		return Decision{Reason: DenyInsufficientRole, Prefix: rule.Prefix}
	}

	return Decision{Allowed: true, Prefix: rule.Prefix}
}

func (p *RoutePolicy) match(path string) (RouteRule, bool) {
	best := RouteRule{}
	bestLen := -1
	found := false

	for _, rule := range p.rules {
		if !rule.matches(path) {
			continue
		}
		length := len(strings.TrimSuffix(rule.Prefix, "/"))
		if length > bestLen {
			best = rule
			bestLen = length
			found = true
		}
	}

	return best, found
}

// Err translates a deny decision into the matching error. Allow yields nil.
func (d Decision) Err() error {
	switch d.Reason {
	case DenyUnauthenticated:
		return ErrUnauthenticated
	case DenyInsufficientRole:
		return ErrInsufficientRole
	default:
		return nil
	}
}

// Middleware enforces the policy for every request passing through it.
// It reads the principal attached by the request authenticator and fails
// closed when the policy denies.
func (p *RoutePolicy) Middleware(contextKey string) router.MiddlewareFunc {
	if contextKey == "" {
		contextKey = "access_token"
	}
	return func(next router.HandlerFunc) router.HandlerFunc {
		return func(ctx router.Context) error {
			var principal *Principal
			if pr, ok := RouterPrincipal(ctx, contextKey); ok {
				principal = pr
			}

			decision := p.Evaluate(requestPath(ctx), principal)
			if !decision.Allowed {
				return decision.Err()
			}

			return next(ctx)
		}
	}
}

func requestPath(ctx router.Context) string {
	url := ctx.OriginalURL()
	if i := strings.IndexByte(url, '?'); i >= 0 {
		url = url[:i]
	}
	return url
}
