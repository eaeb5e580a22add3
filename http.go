package auth

import (
	"context"
	"time"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-print"
	"github.com/goliatone/go-repository-bun"
	"github.com/goliatone/go-router"
	"github.com/openbook/go-auth/middleware/jwtware"
)

// LoginPayload carries the credential pair for a local login.
type LoginPayload interface {
	GetIdentifier() string
	GetPassword() string
}

// RouteAuthenticator binds the resolver and token service to HTTP
// transport concerns: the authentication middleware, cookie issuance, and
// boundary error translation.
type RouteAuthenticator struct {
	resolver       *Resolver
	tokens         TokenService
	cfg            Config
	cookieDuration time.Duration
	Logger         Logger
	ErrorHandler   func(c router.Context, err error) error
}

func NewHTTPAuthenticator(resolver *Resolver, tokens TokenService, cfg Config) (*RouteAuthenticator, error) {
	cookieDuration := 24 * time.Hour
	if cfg.GetTokenExpiration() > 0 {
		cookieDuration = time.Duration(cfg.GetTokenExpiration()) * time.Hour
	}

	a := &RouteAuthenticator{
		cfg:            cfg,
		resolver:       resolver,
		tokens:         tokens,
		Logger:         defLogger{},
		cookieDuration: cookieDuration,
	}

	a.ErrorHandler = a.defaultErrHandler

	return a, nil
}

func (a RouteAuthenticator) GetCookieDuration() time.Duration {
	return a.cookieDuration
}

// Authenticate is the request authenticator: it attaches a principal when
// a valid token arrives and lets every request continue otherwise. Expired
// cookies are cleared in passing. Pair it with RoutePolicy.Middleware for
// enforcement.
func (a *RouteAuthenticator) Authenticate() router.MiddlewareFunc {
	return jwtware.New(jwtware.Config{
		Passthrough:     true,
		TokenValidator:  jwtValidatorAdapter{a.tokens},
		AccountResolver: AccountResolverFromStore(a.resolver.Store()),
		ContextKey:      a.cfg.GetContextKey(),
		TokenLookup:     a.cfg.GetTokenLookup(),
		AuthScheme:      a.cfg.GetAuthScheme(),
		CookieName:      a.cfg.GetContextKey(),
		ErrorHandler:    a.ErrorHandler,
		ContextEnricher: ContextEnricherAdapter,
	})
}

// ProtectedRoute hard-gates a route group: requests without a valid token
// are rejected by the given error handler instead of passing through.
func (a *RouteAuthenticator) ProtectedRoute(cfg Config, errorHandler func(router.Context, error) error) router.MiddlewareFunc {
	return jwtware.New(jwtware.Config{
		ErrorHandler:    errorHandler,
		TokenValidator:  jwtValidatorAdapter{a.tokens},
		AccountResolver: AccountResolverFromStore(a.resolver.Store()),
		AuthScheme:      cfg.GetAuthScheme(),
		ContextKey:      cfg.GetContextKey(),
		TokenLookup:     cfg.GetTokenLookup(),
		CookieName:      cfg.GetContextKey(),
	})
}

// Login authenticates the credential pair and, on success, issues a token
// and sets the auth cookie. The token is returned so JSON handlers can
// also place it in the response body.
func (a *RouteAuthenticator) Login(ctx router.Context, payload LoginPayload) (string, error) {
	account, err := a.resolver.Login(ctx.Context(), payload.GetIdentifier(), payload.GetPassword())
	if err != nil {
		a.Logger.Error("Login error: %s", err)
		return "", err
	}

	token, err := a.tokens.Generate(NewIdentityFromAccount(account))
	if err != nil {
		a.Logger.Error("Token generation error: %s", err)
		return "", err
	}

	a.setCookieToken(ctx, token, a.cookieDuration)
	return token, nil
}

// Register creates a local account and signs it in, same response shape
// as Login.
func (a *RouteAuthenticator) Register(ctx router.Context, in RegisterInput) (string, error) {
	account, err := a.resolver.Register(ctx.Context(), in)
	if err != nil {
		return "", err
	}

	token, err := a.tokens.Generate(NewIdentityFromAccount(account))
	if err != nil {
		a.Logger.Error("Token generation error: %s", err)
		return "", err
	}

	a.setCookieToken(ctx, token, a.cookieDuration)
	return token, nil
}

// Logout clears the auth cookie. Previously issued tokens stay valid
// until their natural expiry; there is no server side revocation.
func (a *RouteAuthenticator) Logout(ctx router.Context) {
	a.cookieDel(ctx, a.cfg.GetContextKey())
}

// SetTokenCookie delivers an externally issued token through the auth
// cookie, used by OAuth callback handlers where the client is a browser
// redirect rather than a JSON consumer.
func (a *RouteAuthenticator) SetTokenCookie(ctx router.Context, token string) {
	a.setCookieToken(ctx, token, a.cookieDuration)
}

func (a *RouteAuthenticator) setCookieToken(c router.Context, val string, duration time.Duration) {
	c.Cookie(&router.Cookie{
		Name:     a.cfg.GetContextKey(),
		Value:    val,
		Expires:  time.Now().Add(duration),
		HTTPOnly: true,
		Secure:   true,
		SameSite: "Lax",
		Path:     "/",
	})
}

func (a *RouteAuthenticator) cookieDel(c router.Context, name string) {
	c.Cookie(&router.Cookie{
		Name:     name,
		Value:    "",
		Expires:  time.Now().Add(-time.Hour * (24 * 365)),
		HTTPOnly: true,
		Secure:   true,
		SameSite: "Lax",
		Path:     "/",
	})
}

func (a *RouteAuthenticator) defaultErrHandler(c router.Context, err error) error {
	if errors.Is(err, jwtware.ErrSubjectNotFound) {
		// The token checked out but its subject is gone. Clients see the
		// same outcome as an invalid token.
		err = ErrStaleTokenSubject
	}

	var richErr *errors.Error
	if !errors.As(err, &richErr) {
		richErr = errors.Wrap(err, errors.CategoryInternal, "An unexpected server error occurred").
			WithCode(errors.CodeInternal)
	}

	a.Logger.Info(
		"Middleware error handler: %s category=%s details=%s",
		richErr.Message,
		richErr.Category,
		print.MaybePrettyJSON(richErr.Metadata),
	)

	return c.JSON(richErr.Code, router.ViewContext{
		"error": router.ViewContext{
			"message":   richErr.Message,
			"text_code": richErr.TextCode,
		},
	})
}

// jwtValidatorAdapter lets the middleware consume the token service
// without the packages importing each other.
type jwtValidatorAdapter struct {
	tokens TokenService
}

func (v jwtValidatorAdapter) Validate(tokenString string) (jwtware.AuthClaims, error) {
	claims, err := v.tokens.Validate(tokenString)
	if err != nil {
		return nil, err
	}
	return claims, nil
}

// AccountResolverFromStore adapts an AccountStore to the middleware's
// subject lookup, translating missing records into the stale subject
// sentinel and everything else into a store failure.
func AccountResolverFromStore(store AccountStore) jwtware.AccountResolver {
	return func(ctx context.Context, subject string) (string, error) {
		account, err := store.ByUsername(ctx, subject)
		if err != nil {
			if repository.IsRecordNotFound(err) {
				return "", jwtware.ErrSubjectNotFound
			}
			return "", storeFailure(err, "failed to resolve token subject")
		}
		return string(account.Role), nil
	}
}
