package access

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanEditListingOwner(t *testing.T) {
	p := Principal{ID: 7, Role: RoleUser}
	assert.True(t, CanEditListing(p, 7))
	assert.False(t, CanEditListing(p, 9))
}

func TestCanEditListingElevatedRoles(t *testing.T) {
	for _, role := range []Role{RoleModerator, RoleAdmin} {
		p := Principal{ID: 1, Role: role}
		assert.True(t, CanEditListing(p, 9), "role %s should edit any listing", role)
		assert.True(t, CanEditListing(p, 1))
	}
}

func TestCanEditSelectionOwnerOnly(t *testing.T) {
	owner := Principal{ID: 3, Role: RoleUser}
	assert.True(t, CanEditSelection(owner, 3))

	// Roles grant no bypass for selections.
	for _, role := range []Role{RoleUser, RoleModerator, RoleAdmin} {
		p := Principal{ID: 5, Role: role}
		assert.False(t, CanEditSelection(p, 3), "role %s must not edit foreign selection", role)
	}
}

func TestParseRole(t *testing.T) {
	for _, valid := range []string{"user", "moderator", "admin"} {
		role, err := ParseRole(valid)
		assert.NoError(t, err)
		assert.True(t, role.Valid())
	}

	for _, invalid := range []string{"", "superuser", "ADMIN", "root"} {
		_, err := ParseRole(invalid)
		assert.Error(t, err, "role %q must be rejected", invalid)
	}
}
