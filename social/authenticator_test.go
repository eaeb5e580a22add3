package social

import (
	"context"
	"testing"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/openbook/go-auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeProvider short-circuits the OAuth wire exchange.
type fakeProvider struct {
	name         string
	profile      *SocialProfile
	exchangeErr  error
	userInfoErr  error
	lastVerifier string
}

func (f *fakeProvider) Name() string { return f.name }

func (f *fakeProvider) AuthCodeURL(state string, opts ...AuthCodeOption) string {
	return "https://provider.example.com/authorize?state=" + state
}

func (f *fakeProvider) Exchange(ctx context.Context, code string, opts ...ExchangeOption) (*Token, error) {
	cfg := ApplyExchangeOptions(opts...)
	f.lastVerifier = cfg.CodeVerifier
	if f.exchangeErr != nil {
		return nil, f.exchangeErr
	}
	return &Token{AccessToken: "provider-access-token", TokenType: "bearer"}, nil
}

func (f *fakeProvider) UserInfo(ctx context.Context, token *Token) (*SocialProfile, error) {
	if f.userInfoErr != nil {
		return nil, f.userInfoErr
	}
	return f.profile, nil
}

func (f *fakeProvider) RefreshToken(ctx context.Context, refreshToken string) (*Token, error) {
	return nil, nil
}

// memStore is an in-memory auth.AccountStore.
type memStore struct {
	byExternalID map[string]*auth.Account
}

func newMemStore() *memStore {
	return &memStore{byExternalID: map[string]*auth.Account{}}
}

func (s *memStore) ByUsername(ctx context.Context, username string) (*auth.Account, error) {
	for _, account := range s.byExternalID {
		if account.Username == username {
			return account, nil
		}
	}
	return nil, repository.NewRecordNotFound()
}

func (s *memStore) ByEmail(ctx context.Context, email string) (*auth.Account, error) {
	for _, account := range s.byExternalID {
		if account.Email == email {
			return account, nil
		}
	}
	return nil, repository.NewRecordNotFound()
}

func (s *memStore) ByExternalID(ctx context.Context, externalID string) (*auth.Account, error) {
	if account, ok := s.byExternalID[externalID]; ok {
		return account, nil
	}
	return nil, repository.NewRecordNotFound()
}

func (s *memStore) Save(ctx context.Context, record *auth.Account) (*auth.Account, error) {
	s.byExternalID[record.ExternalID] = record
	return record, nil
}

func newTestAuthenticator(t *testing.T, provider SocialProvider) (*SocialAuthenticator, *memStore) {
	t.Helper()

	store := newMemStore()
	resolver := auth.NewResolver(store)
	tokens := auth.NewTokenService([]byte("social-test-key"), 24, "test-issuer", nil, nil)

	sa := NewSocialAuthenticator(resolver, tokens, SocialAuthConfig{
		DefaultRedirectURL: "/dashboard",
		StateEncryptionKey: []byte("0123456789abcdef0123456789abcdef"),
		StateHMACKey:       []byte("fedcba9876543210fedcba9876543210"),
		StateTTL:           10 * time.Minute,
	}, WithProvider(provider))

	return sa, store
}

func TestSocialAuthenticator_BeginAuth(t *testing.T) {
	provider := &fakeProvider{name: "github"}
	sa, _ := newTestAuthenticator(t, provider)

	redirect, err := sa.BeginAuth(context.Background(), "github")
	require.NoError(t, err)

	assert.Equal(t, "github", redirect.Provider)
	assert.NotEmpty(t, redirect.State)
	assert.Contains(t, redirect.URL, "state=")

	t.Run("unknown provider", func(t *testing.T) {
		_, err := sa.BeginAuth(context.Background(), "myspace")
		assert.ErrorIs(t, err, ErrProviderNotFound)
	})

	t.Run("custom redirect", func(t *testing.T) {
		redirect, err := sa.BeginAuth(context.Background(), "github", WithRedirectURL("/settings"))
		require.NoError(t, err)
		assert.NotEmpty(t, redirect.State)
	})
}

func TestSocialAuthenticator_CompleteAuth(t *testing.T) {
	ctx := context.Background()

	profile := &SocialProfile{
		ProviderUserID: "583231",
		Provider:       "github",
		Email:          "octocat@example.com",
		EmailVerified:  true,
		Name:           "The Octocat",
		Username:       "octocat",
	}

	t.Run("first sign in creates a reader and issues a token", func(t *testing.T) {
		provider := &fakeProvider{name: "github", profile: profile}
		sa, store := newTestAuthenticator(t, provider)

		redirect, err := sa.BeginAuth(ctx, "github", WithRedirectURL("/dashboard"))
		require.NoError(t, err)

		result, err := sa.CompleteAuth(ctx, "github", "auth-code", redirect.State)
		require.NoError(t, err)

		assert.Equal(t, "github", result.Provider)
		assert.Equal(t, "/dashboard", result.RedirectURL)
		assert.NotEmpty(t, result.Token)
		assert.NotEmpty(t, provider.lastVerifier, "the PKCE verifier travels through the state")

		require.NotNil(t, result.Account)
		assert.Equal(t, auth.RoleReader, result.Account.Role)
		assert.Equal(t, "octocat", result.Account.Username)
		assert.Equal(t, "583231", result.Account.ExternalID)

		stored, err := store.ByExternalID(ctx, "583231")
		require.NoError(t, err)
		assert.Same(t, result.Account, stored)
	})

	t.Run("returning sign in reuses the account", func(t *testing.T) {
		provider := &fakeProvider{name: "github", profile: profile}
		sa, store := newTestAuthenticator(t, provider)

		existing := &auth.Account{
			Username:   "octocat",
			Email:      "octocat@example.com",
			Role:       auth.RoleWriter,
			ExternalID: "583231",
		}
		_, err := store.Save(ctx, existing)
		require.NoError(t, err)

		redirect, err := sa.BeginAuth(ctx, "github")
		require.NoError(t, err)

		result, err := sa.CompleteAuth(ctx, "github", "auth-code", redirect.State)
		require.NoError(t, err)
		assert.Same(t, existing, result.Account)
		assert.Equal(t, auth.RoleWriter, result.Account.Role)
	})

	t.Run("state bound to a different provider is rejected", func(t *testing.T) {
		github := &fakeProvider{name: "github", profile: profile}
		google := &fakeProvider{name: "google", profile: profile}
		sa, _ := newTestAuthenticator(t, github)
		WithProvider(google)(sa)

		redirect, err := sa.BeginAuth(ctx, "github")
		require.NoError(t, err)

		_, err = sa.CompleteAuth(ctx, "google", "auth-code", redirect.State)
		assert.ErrorIs(t, err, ErrInvalidState)
	})

	t.Run("garbage state is rejected", func(t *testing.T) {
		provider := &fakeProvider{name: "github", profile: profile}
		sa, _ := newTestAuthenticator(t, provider)

		_, err := sa.CompleteAuth(ctx, "github", "auth-code", "garbage-state")
		assert.ErrorIs(t, err, ErrInvalidState)
	})

	t.Run("failed exchange", func(t *testing.T) {
		provider := &fakeProvider{
			name:        "github",
			exchangeErr: providerFailure("exchange"),
		}
		sa, _ := newTestAuthenticator(t, provider)

		redirect, err := sa.BeginAuth(ctx, "github")
		require.NoError(t, err)

		_, err = sa.CompleteAuth(ctx, "github", "bad-code", redirect.State)
		assert.True(t, hasSocialTextCode(err, TextCodeTokenExchangeFail))
	})

	t.Run("failed user info", func(t *testing.T) {
		provider := &fakeProvider{
			name:        "github",
			userInfoErr: providerFailure("user_info"),
		}
		sa, _ := newTestAuthenticator(t, provider)

		redirect, err := sa.BeginAuth(ctx, "github")
		require.NoError(t, err)

		_, err = sa.CompleteAuth(ctx, "github", "auth-code", redirect.State)
		assert.True(t, hasSocialTextCode(err, TextCodeUserInfoFail))
	})
}

func hasSocialTextCode(err error, code string) bool {
	var rich *goerrors.Error
	if goerrors.As(err, &rich) {
		return rich.TextCode == code
	}
	return false
}

func TestSocialAuthenticator_ListProviders(t *testing.T) {
	github := &fakeProvider{name: "github"}
	sa, _ := newTestAuthenticator(t, github)

	providers := sa.ListProviders()
	require.Len(t, providers, 1)
	assert.Equal(t, "github", providers[0].Name)
	assert.NotEmpty(t, providers[0].AuthURL)
}

func providerFailure(operation string) error {
	return &ProviderError{
		Provider:    "github",
		Operation:   operation,
		Description: "boom",
	}
}
