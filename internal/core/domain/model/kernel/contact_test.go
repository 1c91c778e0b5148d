package kernel_test

import (
	"testing"

	"exportdocs/internal/core/domain/model/kernel"
	"exportdocs/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewContact(t *testing.T) {
	t.Run("trims and keeps every field", func(t *testing.T) {
		c, err := kernel.NewContact("  Ana Lima ", " +66 81 000 0000", "ana@example.com", "1 Silom Rd", "Lima Export")
		require.NoError(t, err)
		assert.Equal(t, "Ana Lima", c.Name())
		assert.Equal(t, "+66 81 000 0000", c.Mobile())
		assert.Equal(t, "ana@example.com", c.Email())
		assert.Equal(t, "1 Silom Rd", c.Address())
		assert.Equal(t, "Lima Export", c.Business())
	})

	t.Run("optional fields may be empty", func(t *testing.T) {
		_, err := kernel.NewContact("Ana", "0810000000", "", "", "")
		require.NoError(t, err)
	})

	t.Run("requires name and mobile", func(t *testing.T) {
		_, err := kernel.NewContact(" ", "", "a@b.c", "", "")
		require.Error(t, err)
		assert.ErrorIs(t, err, errs.ErrValueIsRequired)
		assert.Contains(t, err.Error(), "name")
		assert.Contains(t, err.Error(), "mobile")
	})
}

func TestContact_ZeroValueIsInvalid(t *testing.T) {
	var c kernel.Contact
	require.Error(t, c.Validate())
}

func TestDestination_String(t *testing.T) {
	testCases := []struct {
		name     string
		dest     kernel.Destination
		expected string
	}{
		{"full", kernel.NewDestination("12 Harbour St", "Australia", "2000"), "12 Harbour St, 2000, Australia"},
		{"country only", kernel.NewDestination("", " Japan ", ""), "Japan"},
		{"empty", kernel.NewDestination("", "", ""), ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, tc.dest.String())
		})
	}
}
