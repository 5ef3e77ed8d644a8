package validation

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeUsername(t *testing.T) {
	got, err := NormalizeUsername("  jane.doe+1@x  ")
	require.NoError(t, err)
	assert.Equal(t, "jane.doe+1@x", got)

	for _, bad := range []string{"", "with space", "semi;colon"} {
		_, err := NormalizeUsername(bad)
		assert.Error(t, err, bad)
	}
}

func TestRegisterValidatorsAndFieldErrors(t *testing.T) {
	require.NoError(t, RegisterValidators())
	require.NoError(t, RegisterValidators())

	type payload struct {
		Username string `validate:"required,username"`
		Password string `validate:"required,min=8"`
	}

	v := validator.New()
	require.NoError(t, v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		_, err := NormalizeUsername(fl.Field().String())
		return err == nil
	}))

	err := v.Struct(payload{Username: "bad name", Password: "short"})
	fields := FieldErrors(err)
	assert.Equal(t, "username", fields["username"])
	assert.Equal(t, "min=8", fields["password"])

	assert.Nil(t, FieldErrors(nil))
}
