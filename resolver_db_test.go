package auth

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Concurrent first logins for the same external identity must converge on a
// single persisted account. The losers of the insert race fall back to
// re-reading the winner's record, so every call still succeeds.
func TestResolveExternalConcurrentFirstLogins(t *testing.T) {
	repo, db := setupAccountsRepoWithDB(t)
	resolver := NewResolver(repo)

	profile := ExternalProfile{
		Provider:       "github",
		ProviderUserID: "583231",
		Login:          "octocat",
		Email:          "octocat@example.com",
	}

	const logins = 8
	accounts := make([]*Account, logins)
	errs := make([]error, logins)

	var wg sync.WaitGroup
	for i := 0; i < logins; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			accounts[i], errs[i] = resolver.ResolveExternal(context.Background(), profile)
		}(i)
	}
	wg.Wait()

	for i := 0; i < logins; i++ {
		require.NoError(t, errs[i], "login %d", i)
		require.NotNil(t, accounts[i], "login %d", i)
	}

	winner := accounts[0]
	for _, account := range accounts[1:] {
		assert.Equal(t, winner.ID, account.ID)
	}

	count, err := db.NewSelect().Model((*Account)(nil)).Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, count, "exactly one account survives the race")

	persisted, err := repo.ByExternalID(context.Background(), "583231")
	require.NoError(t, err)
	assert.Equal(t, winner.ID, persisted.ID)
	assert.Equal(t, RoleReader, persisted.Role)
}
