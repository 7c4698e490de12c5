package validator_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/medstock/pkg/validator"
)

func TestApply(t *testing.T) {
	t.Parallel()

	t.Run("all rules pass", func(t *testing.T) {
		err := validator.Apply(
			validator.Required("name", "Amina"),
			validator.ValidPhone("phone", "+255 712-345-678"),
		)
		assert.NoError(t, err)
	})

	t.Run("collects every failure", func(t *testing.T) {
		err := validator.Apply(
			validator.Required("name", "   "),
			validator.ValidPhone("phone", "12"),
			validator.ValidEmail("email", "nope"),
		)
		require.Error(t, err)

		verrs := validator.ExtractValidationErrors(err)
		require.Len(t, verrs, 3)
		assert.Equal(t, []string{"name", "phone", "email"}, verrs.Fields())
		assert.True(t, verrs.Has("phone"))
		assert.Equal(t, []string{"field is required"}, verrs.Get("name"))
		assert.Contains(t, verrs.Map(), "email")
		assert.ErrorIs(t, err, validator.ErrValidationFailed)
	})

	t.Run("when skips rule", func(t *testing.T) {
		email := ""
		err := validator.Apply(validator.When(email != "", validator.ValidEmail("email", email)))
		assert.NoError(t, err)

		email = "bad@"
		err = validator.Apply(validator.When(email != "", validator.ValidEmail("email", email)))
		assert.True(t, validator.IsValidationError(err))
	})
}

func TestExtractValidationErrors(t *testing.T) {
	t.Parallel()

	assert.Nil(t, validator.ExtractValidationErrors(nil))
	assert.Nil(t, validator.ExtractValidationErrors(errors.New("boom")))

	wrapped := fmt.Errorf("create user: %w", validator.Apply(validator.Required("phone", "")))
	verrs := validator.ExtractValidationErrors(wrapped)
	require.Len(t, verrs, 1)
	assert.Equal(t, "phone", verrs[0].Field)
	assert.Equal(t, "required", verrs[0].Code)
	assert.False(t, validator.IsValidationError(errors.New("boom")))
}

func TestRules(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		rule validator.Rule
		want bool
	}{
		{"email ok", validator.ValidEmail("email", "dho@district.go.tz"), true},
		{"email display name rejected", validator.ValidEmail("email", "Dho <dho@district.go.tz>"), false},
		{"email no tld", validator.ValidEmail("email", "dho@localhost"), false},
		{"email empty", validator.ValidEmail("email", ""), false},
		{"phone plain", validator.ValidPhone("phone", "0712345678"), false},
		{"phone e164", validator.ValidPhone("phone", "+255712345678"), true},
		{"phone too short", validator.ValidPhone("phone", "+25571"), false},
		{"min len runes", validator.MinLen("password", "ñññññññ", 8), false},
		{"min len ok", validator.MinLen("password", "s3cretpass", 8), true},
		{"max len", validator.MaxLen("name", "abcdef", 5), false},
		{"one of", validator.OneOf("status", "active", []string{"active", "inactive"}), true},
		{"role", validator.ValidRole("role", "guest", []string{"admin"}), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.rule.Check())
		})
	}
}
