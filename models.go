package auth

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Account is the canonical identity record. An account is authenticated
// either locally (PasswordHash set) or through an external OAuth2 provider
// (ExternalID set); it always carries at least one of the two.
type Account struct {
	bun.BaseModel `bun:"table:accounts,alias:acc"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Role          UserRole   `bun:"role,notnull" json:"role,omitempty"`
	Username      string     `bun:"username,notnull,unique" json:"username,omitempty"`
	Email         string     `bun:"email,unique,nullzero" json:"email,omitempty"`
	PasswordHash  string     `bun:"password_hash" json:"-"`
	ExternalID    string     `bun:"external_id,unique,nullzero" json:"external_id,omitempty"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
	DeletedAt     *time.Time `bun:"deleted_at,soft_delete,nullzero" json:"deleted_at,omitempty"`
}

// HasLocalCredentials reports whether the account can authenticate with a
// username and password.
func (a *Account) HasLocalCredentials() bool {
	return a != nil && a.PasswordHash != ""
}

// IsExternal reports whether the account is linked to an external
// OAuth2 identity.
func (a *Account) IsExternal() bool {
	return a != nil && a.ExternalID != ""
}
