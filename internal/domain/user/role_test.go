package user

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseRoleCode(t *testing.T) {
	c, err := ParseRoleCode(" admin ")
	require.NoError(t, err)
	require.Equal(t, RoleCodeAdmin, c)
	require.True(t, c.CanManageCategories())

	_, err = ParseRoleCode("a!")
	require.ErrorIs(t, err, ErrInvalidRoleCode)

	require.False(t, RoleCode("CUSTOMER").CanManageCategories())
}
