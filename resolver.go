package auth

import (
	"context"
	"fmt"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
)

// Resolver turns a local login, a local registration, or an external OAuth2
// profile into a canonical Account.
type Resolver struct {
	store  AccountStore
	logger Logger
}

// NewResolver creates a Resolver over the given account store.
func NewResolver(store AccountStore) *Resolver {
	return &Resolver{
		store:  store,
		logger: defLogger{},
	}
}

// WithLogger overrides the resolver logger.
func (r *Resolver) WithLogger(logger Logger) *Resolver {
	r.logger = logger
	return r
}

// Store exposes the underlying account store for transport adapters.
func (r *Resolver) Store() AccountStore {
	return r.store
}

// RegisterInput is the payload for local self-service registration.
type RegisterInput struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// Validate will run validation rules
func (in RegisterInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Username, validation.Required, validation.Length(3, 80)),
		validation.Field(&in.Email, validation.Required, validation.Length(6, 150), is.Email),
		validation.Field(&in.Password, validation.Required, validation.Length(8, 100)),
	)
}

// Register creates a local account. Admin is never self-assignable; a
// duplicate email or username is rejected before anything is persisted.
func (r *Resolver) Register(ctx context.Context, in RegisterInput) (*Account, error) {
	role := RoleReader
	if in.Role != "" {
		parsed, ok := ParseRole(in.Role)
		if !ok {
			return nil, errors.New("unknown role", errors.CategoryValidation).
				WithCode(errors.CodeBadRequest).
				WithMetadata(map[string]any{"role": in.Role})
		}
		role = parsed
	}

	if !role.SelfAssignable() {
		return nil, ErrRoleNotSelfAssignable
	}

	if err := in.Validate(); err != nil {
		return nil, errors.Wrap(err, errors.CategoryValidation, "invalid registration payload").
			WithCode(errors.CodeBadRequest)
	}

	if err := r.ensureIdentityFree(ctx, in.Email, in.Username); err != nil {
		return nil, err
	}

	hash, err := HashPassword(in.Password)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to hash password")
	}

	record := &Account{
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: hash,
		Role:         role,
	}

	created, err := r.store.Save(ctx, record)
	if err != nil {
		if IsUniqueViolation(err) {
			return nil, ErrDuplicateIdentity
		}
		return nil, storeFailure(err, "failed to persist account")
	}

	return created, nil
}

// Login verifies a local credential pair. Every failure mode collapses into
// ErrInvalidCredentials so callers cannot enumerate accounts; a missing
// account still burns a hash comparison.
func (r *Resolver) Login(ctx context.Context, username, password string) (*Account, error) {
	account, err := r.store.ByUsername(ctx, username)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			compareDummy(password)
			return nil, ErrInvalidCredentials
		}
		return nil, storeFailure(err, "failed to retrieve account during login")
	}

	if !account.HasLocalCredentials() {
		compareDummy(password)
		return nil, ErrInvalidCredentials
	}

	if err := ComparePasswordAndHash(password, account.PasswordHash); err != nil {
		return nil, ErrInvalidCredentials
	}

	return account, nil
}

// ExternalProfile is the provider-reported identity handed to the resolver
// after a completed OAuth2 exchange.
type ExternalProfile struct {
	Provider       string
	ProviderUserID string
	Login          string
	Email          string
	EmailVerified  bool
}

// EffectiveEmail returns the provider email when present, otherwise a
// placeholder derived deterministically from the provider user id so that
// repeated logins for the same external identity always map to the same
// address. A whitespace-only provider email counts as absent.
func (p ExternalProfile) EffectiveEmail() string {
	if email := strings.TrimSpace(p.Email); email != "" {
		return email
	}
	provider := p.Provider
	if provider == "" {
		provider = "github"
	}
	return fmt.Sprintf("%s@users.noreply.%s.com", p.ProviderUserID, provider)
}

// ResolveExternal maps an external identity to an Account, creating a reader
// account on first sign-in and refreshing username/email from the provider's
// current values on every subsequent one. Concurrent first logins for the
// same provider user id converge on a single persisted account: the id is
// derived deterministically from the provider user id, and a uniqueness
// conflict on insert falls back to re-reading the winner's record.
func (r *Resolver) ResolveExternal(ctx context.Context, profile ExternalProfile) (*Account, error) {
	if profile.ProviderUserID == "" {
		return nil, errors.New("external profile is missing the provider user id", errors.CategoryBadInput).
			WithCode(errors.CodeBadRequest)
	}

	email := profile.EffectiveEmail()

	account, err := r.store.ByExternalID(ctx, profile.ProviderUserID)
	if err == nil {
		if account.Username == profile.Login && account.Email == email {
			return account, nil
		}

		account.Username = profile.Login
		account.Email = email
		updated, err := r.store.Save(ctx, account)
		if err != nil {
			return nil, storeFailure(err, "failed to refresh external account")
		}
		return updated, nil
	}

	if !repository.IsRecordNotFound(err) {
		return nil, storeFailure(err, "failed to retrieve external account")
	}

	record := &Account{
		Username:   profile.Login,
		Email:      email,
		Role:       RoleReader,
		ExternalID: profile.ProviderUserID,
	}
	if id, err := DeterministicAccountID(profile.Provider, profile.ProviderUserID); err == nil {
		record.ID = id
	}

	created, err := r.store.Save(ctx, record)
	if err == nil {
		return created, nil
	}

	if IsUniqueViolation(err) {
		// Lost the first-login race; the winner's record is authoritative.
		winner, readErr := r.store.ByExternalID(ctx, profile.ProviderUserID)
		if readErr == nil {
			return winner, nil
		}
		if repository.IsRecordNotFound(readErr) {
			return nil, ErrDuplicateIdentity
		}
		return nil, storeFailure(readErr, "failed to re-read external account after conflict")
	}

	return nil, storeFailure(err, "failed to create external account")
}

func (r *Resolver) ensureIdentityFree(ctx context.Context, email, username string) error {
	if _, err := r.store.ByEmail(ctx, email); err == nil {
		return ErrDuplicateIdentity
	} else if !repository.IsRecordNotFound(err) {
		return storeFailure(err, "failed to check email uniqueness")
	}

	if _, err := r.store.ByUsername(ctx, username); err == nil {
		return ErrDuplicateIdentity
	} else if !repository.IsRecordNotFound(err) {
		return storeFailure(err, "failed to check username uniqueness")
	}

	return nil
}

func storeFailure(err error, msg string) error {
	return errors.Wrap(err, ErrAccountStoreUnavailable.Category, msg).
		WithTextCode(ErrAccountStoreUnavailable.TextCode).
		WithCode(errors.CodeInternal)
}
