package auth

import (
	"github.com/goliatone/go-errors"
)

const (
	// TextCodeInvalidCredentials tags login failures regardless of cause.
	TextCodeInvalidCredentials = "invalid_credentials"
	// TextCodeRoleNotSelfAssignable tags registrations requesting a privileged role.
	TextCodeRoleNotSelfAssignable = "role_not_self_assignable"
	// TextCodeDuplicateIdentity tags registrations colliding with an existing account.
	TextCodeDuplicateIdentity = "duplicate_identity"
	// TextCodeTokenInvalid tags malformed or forged tokens.
	TextCodeTokenInvalid = "token_invalid"
	// TextCodeTokenExpired tags well-formed tokens past their expiry.
	TextCodeTokenExpired = "token_expired"
	// TextCodeUnauthenticated tags requests missing a principal on a protected route.
	TextCodeUnauthenticated = "unauthenticated"
	// TextCodeInsufficientRole tags authenticated requests denied by role.
	TextCodeInsufficientRole = "insufficient_role"
	// TextCodeAccountStoreUnavailable tags transient store failures.
	TextCodeAccountStoreUnavailable = "account_store_unavailable"
	// TextCodeStaleTokenSubject tags valid tokens whose subject account is gone.
	TextCodeStaleTokenSubject = "stale_token_subject"
)

// ErrInvalidCredentials is returned for any local login failure. It is
// deliberately uniform: callers cannot tell "no such user" from "wrong
// password".
var ErrInvalidCredentials = errors.New("invalid credentials", errors.CategoryAuth).
	WithTextCode(TextCodeInvalidCredentials).
	WithCode(errors.CodeUnauthorized)

// ErrRoleNotSelfAssignable is returned when a registration requests a role
// that cannot be self-assigned (admin).
var ErrRoleNotSelfAssignable = errors.New("role cannot be self assigned", errors.CategoryValidation).
	WithTextCode(TextCodeRoleNotSelfAssignable).
	WithCode(errors.CodeBadRequest)

// ErrDuplicateIdentity is returned when a registration collides with an
// existing account's email or username.
var ErrDuplicateIdentity = errors.New("account already exists", errors.CategoryConflict).
	WithTextCode(TextCodeDuplicateIdentity).
	WithCode(errors.CodeConflict)

// ErrTokenInvalid is returned for malformed tokens and signature failures.
// These are never refreshable and never trigger cookie cleanup.
var ErrTokenInvalid = errors.New("invalid token", errors.CategoryAuth).
	WithTextCode(TextCodeTokenInvalid).
	WithCode(errors.CodeUnauthorized)

// ErrTokenExpired is returned for well-formed, correctly signed tokens whose
// expiry has passed.
var ErrTokenExpired = errors.New("token expired", errors.CategoryAuth).
	WithTextCode(TextCodeTokenExpired).
	WithCode(errors.CodeUnauthorized)

// ErrUnauthenticated is returned when a route requires a principal and the
// request has none.
var ErrUnauthenticated = errors.New("authentication required", errors.CategoryAuth).
	WithTextCode(TextCodeUnauthenticated).
	WithCode(errors.CodeUnauthorized)

// ErrInsufficientRole is returned when an authenticated principal's role is
// excluded by the route's policy.
var ErrInsufficientRole = errors.New("insufficient role", errors.CategoryAuthz).
	WithTextCode(TextCodeInsufficientRole).
	WithCode(errors.CodeForbidden)

// ErrAccountStoreUnavailable is returned when the account store fails for
// reasons other than a missing record. Callers may retry with backoff.
var ErrAccountStoreUnavailable = errors.New("account store unavailable", errors.CategoryInternal).
	WithTextCode(TextCodeAccountStoreUnavailable).
	WithCode(errors.CodeInternal)

// ErrStaleTokenSubject is returned when a valid token references an account
// that no longer exists. Treated as an invalid token at the boundary.
var ErrStaleTokenSubject = errors.New("token subject no longer exists", errors.CategoryAuth).
	WithTextCode(TextCodeStaleTokenSubject).
	WithCode(errors.CodeUnauthorized)

// ErrEmptyPassword is returned when hashing an empty password.
var ErrEmptyPassword = errors.New("password must not be empty", errors.CategoryValidation).
	WithCode(errors.CodeBadRequest)

func hasTextCode(err error, code string) bool {
	if err == nil {
		return false
	}
	var richErr *errors.Error
	if errors.As(err, &richErr) {
		return richErr.TextCode == code
	}
	return false
}

// IsTokenExpired will check for expired tokens
func IsTokenExpired(err error) bool {
	return hasTextCode(err, TextCodeTokenExpired)
}

// IsTokenInvalid will check for malformed or forged tokens
func IsTokenInvalid(err error) bool {
	return hasTextCode(err, TextCodeTokenInvalid)
}

// IsInvalidCredentials will check for the uniform login failure
func IsInvalidCredentials(err error) bool {
	return hasTextCode(err, TextCodeInvalidCredentials)
}

// IsStoreUnavailable will check for transient account store failures
func IsStoreUnavailable(err error) bool {
	return hasTextCode(err, TextCodeAccountStoreUnavailable)
}

// IsDuplicateIdentity will check for registration conflicts
func IsDuplicateIdentity(err error) bool {
	return hasTextCode(err, TextCodeDuplicateIdentity)
}
