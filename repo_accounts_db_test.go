package auth

import (
	"context"
	"database/sql"
	"testing"

	"github.com/goliatone/go-repository-bun"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

func setupAccountsRepo(t *testing.T) Accounts {
	repo, _ := setupAccountsRepoWithDB(t)
	return repo
}

func setupAccountsRepoWithDB(t *testing.T) (Accounts, *bun.DB) {
	t.Helper()

	sqldb, err := sql.Open(sqliteshim.ShimName, ":memory:")
	require.NoError(t, err)
	sqldb.SetMaxOpenConns(1)

	db := bun.NewDB(sqldb, sqlitedialect.New())
	t.Cleanup(func() {
		_ = db.Close()
		_ = sqldb.Close()
	})

	migration, err := GetMigrationsFS().ReadFile("data/sql/migrations/20240101000000_create_accounts.up.sql")
	require.NoError(t, err)

	_, err = db.Exec(string(migration))
	require.NoError(t, err)

	return NewAccountsRepository(db), db
}

func TestAccountsRepository_SaveAndLookups(t *testing.T) {
	repo := setupAccountsRepo(t)
	ctx := context.Background()

	created, err := repo.Save(ctx, &Account{
		Username:     "ada",
		Email:        "ada@example.com",
		PasswordHash: "$2a$14$hash",
	})
	require.NoError(t, err)
	require.NotNil(t, created)
	assert.Equal(t, RoleReader, created.Role, "role defaults to reader")
	assert.NotEmpty(t, created.ID)

	byUsername, err := repo.ByUsername(ctx, "ada")
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", byUsername.Email)

	byEmail, err := repo.ByEmail(ctx, "ada@example.com")
	require.NoError(t, err)
	assert.Equal(t, "ada", byEmail.Username)

	_, err = repo.ByUsername(ctx, "nobody")
	assert.True(t, repository.IsRecordNotFound(err))

	_, err = repo.ByUsername(ctx, "")
	assert.True(t, repository.IsRecordNotFound(err), "blank identifiers never match")
}

func TestAccountsRepository_ByExternalID(t *testing.T) {
	repo := setupAccountsRepo(t)
	ctx := context.Background()

	_, err := repo.Save(ctx, &Account{
		Username:   "octocat",
		Email:      "octocat@example.com",
		ExternalID: "583231",
	})
	require.NoError(t, err)

	found, err := repo.ByExternalID(ctx, "583231")
	require.NoError(t, err)
	assert.Equal(t, "octocat", found.Username)
	assert.True(t, found.IsExternal())
	assert.False(t, found.HasLocalCredentials())

	_, err = repo.ByExternalID(ctx, "999999")
	assert.True(t, repository.IsRecordNotFound(err))
}

func TestAccountsRepository_UniqueConstraints(t *testing.T) {
	repo := setupAccountsRepo(t)
	ctx := context.Background()

	_, err := repo.Save(ctx, &Account{Username: "ada", Email: "ada@example.com"})
	require.NoError(t, err)

	t.Run("duplicate username", func(t *testing.T) {
		_, err := repo.Save(ctx, &Account{Username: "ada", Email: "other@example.com"})
		require.Error(t, err)
		assert.True(t, IsUniqueViolation(err))
	})

	t.Run("duplicate email", func(t *testing.T) {
		_, err := repo.Save(ctx, &Account{Username: "lovelace", Email: "ada@example.com"})
		require.Error(t, err)
		assert.True(t, IsUniqueViolation(err))
	})

	t.Run("missing email does not collide", func(t *testing.T) {
		_, err := repo.Save(ctx, &Account{Username: "anon1"})
		require.NoError(t, err)
		_, err = repo.Save(ctx, &Account{Username: "anon2"})
		require.NoError(t, err)
	})
}
