package intake

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRequireFields(t *testing.T) {
	require.NoError(t, RequireFields(Field{"name", "Ada"}, Field{"message", "Great"}))

	err := RequireFields(Field{"name", "Ada"}, Field{"message", "  "}, Field{"company", ""})
	require.Error(t, err)
	require.True(t, IsValidation(err))

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	require.Equal(t, []string{"message", "company"}, verr.Fields)
	require.Equal(t, "All fields are required (message, company)", err.Error())
}

func TestIsValidation_Wrapped(t *testing.T) {
	err := fmt.Errorf("create: %w", &ValidationError{Message: "bad"})
	require.True(t, IsValidation(err))
	require.False(t, IsValidation(fmt.Errorf("boom")))
	require.Equal(t, "bad", (&ValidationError{Message: "bad"}).Error())
}

func TestReference(t *testing.T) {
	ref := Reference("abc.png")
	require.Equal(t, "/uploads/abc.png", ref)

	name, ok := ObjectName(ref)
	require.True(t, ok)
	require.Equal(t, "abc.png", name)

	for _, bad := range []string{"", "/uploads/", "https://cdn.example.com/a.png", "/uploads/a/b.png"} {
		_, ok := ObjectName(bad)
		require.False(t, ok, bad)
	}
}
