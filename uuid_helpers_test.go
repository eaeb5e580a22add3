package auth_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/openbook/go-auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeterministicAccountID(t *testing.T) {
	first, err := auth.DeterministicAccountID("github", "583231")
	require.NoError(t, err)
	require.NotEqual(t, uuid.Nil, first)

	second, err := auth.DeterministicAccountID("github", "583231")
	require.NoError(t, err)
	assert.Equal(t, first, second, "the same external identity always maps to the same id")

	otherUser, err := auth.DeterministicAccountID("github", "583232")
	require.NoError(t, err)
	assert.NotEqual(t, first, otherUser)

	otherProvider, err := auth.DeterministicAccountID("google", "583231")
	require.NoError(t, err)
	assert.NotEqual(t, first, otherProvider, "provider namespaces are disjoint")
}

func TestDeterministicAccountID_DefaultProvider(t *testing.T) {
	implicit, err := auth.DeterministicAccountID("", "583231")
	require.NoError(t, err)

	explicit, err := auth.DeterministicAccountID("github", "583231")
	require.NoError(t, err)

	assert.Equal(t, explicit, implicit)
}
