package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/soundvaultapp/soundvault-server/internal/errors"
)

type createCategoryForm struct {
	Name string `json:"name" validate:"required,min=1,max=50,category_name"`
}

func TestValidator_CategoryName(t *testing.T) {
	v := New()

	valid := []string{
		"cinematic",
		"retro games",
		"lo-fi",
		"8bit",
		"two-word name",
	}
	for _, name := range valid {
		assert.NoError(t, v.Validate(createCategoryForm{Name: name}), "name %q should be valid", name)
	}

	invalid := []string{
		"Cinematic",  // uppercase
		"-leading",   // leading separator
		"trailing-",  // trailing separator
		"double--hy", // doubled separator
		"with_under", // underscore
		"with/slash",
	}
	for _, name := range invalid {
		assert.Error(t, v.Validate(createCategoryForm{Name: name}), "name %q should be invalid", name)
	}
}

func TestValidator_UsesJSONFieldNames(t *testing.T) {
	v := New()

	err := v.Validate(createCategoryForm{Name: ""})
	require.Error(t, err)

	var domainErr *domainerrors.Error
	require.True(t, domainerrors.As(err, &domainErr))
	assert.Equal(t, domainerrors.CodeValidation, domainErr.Code)

	details, ok := domainErr.Details.(map[string]string)
	require.True(t, ok)
	assert.Contains(t, details, "name", "details should be keyed by JSON field name")
	assert.Equal(t, "is required", details["name"])
}

func TestValidator_MaxLength(t *testing.T) {
	v := New()

	long := make([]byte, 51)
	for i := range long {
		long[i] = 'a'
	}
	err := v.Validate(createCategoryForm{Name: string(long)})
	assert.Error(t, err)
}
