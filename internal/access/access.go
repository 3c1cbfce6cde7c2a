// Package access decides whether a principal may mutate a resource.
//
// Decisions are pure functions of the principal and the resource owner.
// Callers resolve resource existence first (not-found wins over forbidden),
// then ask for a decision, then mutate.
package access

import "fmt"

// Role is the closed set of principal roles. Any other value is rejected
// at parse time and never reaches an evaluation.
type Role string

const (
	RoleUser      Role = "user"
	RoleModerator Role = "moderator"
	RoleAdmin     Role = "admin"
)

// ParseRole validates a stored role value.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleUser, RoleModerator, RoleAdmin:
		return Role(s), nil
	}
	return "", fmt.Errorf("access: unknown role %q", s)
}

// Valid reports whether the role is one of the enumerated values.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleModerator, RoleAdmin:
		return true
	}
	return false
}

// Principal is the authenticated actor for the current request.
type Principal struct {
	ID   int64
	Role Role
}

// CanEditListing reports whether the principal may update or delete a
// listing owned by authorID. Moderators and admins may edit any listing;
// everyone else must be the author.
func CanEditListing(p Principal, authorID int64) bool {
	if p.Role == RoleModerator || p.Role == RoleAdmin {
		return true
	}
	return p.ID == authorID
}

// CanEditSelection reports whether the principal may update or delete a
// selection owned by ownerID. Ownership is the sole criterion; roles grant
// no bypass here, deliberately asymmetric with listings.
func CanEditSelection(p Principal, ownerID int64) bool {
	return p.ID == ownerID
}
