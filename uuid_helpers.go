package auth

import (
	"github.com/goliatone/hashid/pkg/hashid"
	"github.com/google/uuid"
)

// DeterministicAccountID derives a stable account id from an external
// identity. Concurrent first logins for the same provider user therefore
// race toward the same primary key instead of creating divergent rows.
func DeterministicAccountID(provider, providerUserID string) (uuid.UUID, error) {
	if provider == "" {
		provider = "github"
	}
	return hashid.NewUUID(provider + ":" + providerUserID)
}
