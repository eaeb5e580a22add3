package auth

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Accounts is the persistence surface for Account records. It layers the
// lookups the resolver needs on top of the generic repository behavior.
type Accounts interface {
	repository.Repository[*Account]
	AccountStore

	ByUsernameTx(ctx context.Context, tx bun.IDB, username string) (*Account, error)
	ByEmailTx(ctx context.Context, tx bun.IDB, email string) (*Account, error)
	ByExternalIDTx(ctx context.Context, tx bun.IDB, externalID string) (*Account, error)
	SaveTx(ctx context.Context, tx bun.IDB, record *Account) (*Account, error)
}

type accounts struct {
	repository.Repository[*Account]
	db *bun.DB
}

var (
	_ Accounts                        = (*accounts)(nil)
	_ AccountStore                    = (*accounts)(nil)
	_ repository.Repository[*Account] = (*accounts)(nil)
)

func NewAccountsRepository(db *bun.DB) Accounts {
	repo := repository.NewRepository[*Account](db, repository.ModelHandlers[*Account]{
		NewRecord: func() *Account { return &Account{} },
		GetID: func(a *Account) uuid.UUID {
			if a == nil {
				return uuid.Nil
			}
			return a.ID
		},
		SetID: func(a *Account, id uuid.UUID) {
			if a != nil {
				a.ID = id
			}
		},
	})

	return &accounts{
		Repository: repo,
		db:         db,
	}
}

func (a *accounts) ByUsername(ctx context.Context, username string) (*Account, error) {
	return a.ByUsernameTx(ctx, a.db, username)
}

func (a *accounts) ByUsernameTx(ctx context.Context, tx bun.IDB, username string) (*Account, error) {
	return a.byColumn(ctx, tx, "username", username)
}

func (a *accounts) ByEmail(ctx context.Context, email string) (*Account, error) {
	return a.ByEmailTx(ctx, a.db, email)
}

func (a *accounts) ByEmailTx(ctx context.Context, tx bun.IDB, email string) (*Account, error) {
	return a.byColumn(ctx, tx, "email", email)
}

func (a *accounts) ByExternalID(ctx context.Context, externalID string) (*Account, error) {
	return a.ByExternalIDTx(ctx, a.db, externalID)
}

func (a *accounts) ByExternalIDTx(ctx context.Context, tx bun.IDB, externalID string) (*Account, error) {
	return a.byColumn(ctx, tx, "external_id", externalID)
}

// Save inserts new records and updates existing ones.
func (a *accounts) Save(ctx context.Context, record *Account) (*Account, error) {
	return a.SaveTx(ctx, a.db, record)
}

func (a *accounts) SaveTx(ctx context.Context, tx bun.IDB, record *Account) (*Account, error) {
	if record != nil && record.ID != uuid.Nil {
		existing, err := a.Repository.GetByIdentifierTx(ctx, tx, record.ID.String())
		if err == nil && existing != nil {
			return a.Repository.UpdateTx(ctx, tx, record, repository.UpdateByID(record.ID.String()))
		}
		if err != nil && !repository.IsRecordNotFound(err) {
			return nil, err
		}
	}
	prepareAccountDefaults(record)
	return a.Repository.CreateTx(ctx, tx, record)
}

func (a *accounts) byColumn(ctx context.Context, tx bun.IDB, column, value string) (*Account, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil, repository.NewRecordNotFound().
			WithMetadata(map[string]any{
				column: value,
			})
	}

	record := &Account{}
	err := tx.NewSelect().
		Model(record).
		Where(fmt.Sprintf("?TableAlias.%s = ?", column), trimmed).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, repository.NewRecordNotFound().
				WithMetadata(map[string]any{
					column: trimmed,
				})
		}
		return nil, err
	}

	return record, nil
}

func prepareAccountDefaults(record *Account) {
	if record == nil {
		return
	}

	if record.Role == "" {
		record.Role = RoleReader
	}

	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
}

// IsUniqueViolation reports whether err came from a unique constraint on
// insert or update. The repository layer hides the driver error behind a
// generic database message, so the chain is walked down to the original
// cause before matching the sqlite and postgres driver texts.
func IsUniqueViolation(err error) bool {
	seen := 0
	for err != nil && seen < 32 {
		seen++
		if isUniqueViolationMessage(err.Error()) {
			return true
		}

		var richErr *errors.Error
		if errors.As(err, &richErr) && richErr != nil && richErr.Source != nil {
			err = richErr.Source
			continue
		}
		err = stderrors.Unwrap(err)
	}
	return false
}

func isUniqueViolationMessage(msg string) bool {
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value")
}
