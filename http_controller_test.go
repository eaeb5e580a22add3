package auth_test

import (
	"testing"

	"github.com/openbook/go-auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoginRequest(t *testing.T) {
	req := auth.LoginRequest{Username: "ada", Password: "hunter2"}

	assert.Equal(t, "ada", req.GetIdentifier())
	assert.Equal(t, "hunter2", req.GetPassword())
	assert.NoError(t, req.Validate())

	assert.Error(t, auth.LoginRequest{Password: "hunter2"}.Validate())
	assert.Error(t, auth.LoginRequest{Username: "ada"}.Validate())
}

func TestRegisterInput_Validate(t *testing.T) {
	valid := auth.RegisterInput{
		Username: "ada",
		Email:    "ada@example.com",
		Password: "correct-horse-battery",
	}
	assert.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(*auth.RegisterInput)
	}{
		{"short username", func(in *auth.RegisterInput) { in.Username = "ab" }},
		{"missing email", func(in *auth.RegisterInput) { in.Email = "" }},
		{"malformed email", func(in *auth.RegisterInput) { in.Email = "not-an-email" }},
		{"short password", func(in *auth.RegisterInput) { in.Password = "short" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := valid
			tt.mutate(&in)
			assert.Error(t, in.Validate())
		})
	}
}

func TestFormatValidationErrorToMap(t *testing.T) {
	t.Run("field errors are flattened", func(t *testing.T) {
		err := auth.RegisterInput{Username: "ab", Email: "nope", Password: "short"}.Validate()
		require.Error(t, err)

		out := auth.FormatValidationErrorToMap(err)
		assert.Contains(t, out, "username")
		assert.Contains(t, out, "email")
		assert.Contains(t, out, "password")
	})

	t.Run("plain errors keep a single entry", func(t *testing.T) {
		out := auth.FormatValidationErrorToMap(assert.AnError)
		assert.Equal(t, map[string]string{"error": assert.AnError.Error()}, out)
	})

	t.Run("nil is empty", func(t *testing.T) {
		assert.Empty(t, auth.FormatValidationErrorToMap(nil))
	})
}
