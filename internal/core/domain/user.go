package domain

import (
	"strings"
)

// Role is the fixed role a user is registered with.
type Role string

const (
	RoleAdmin Role = "ADMIN"
	RoleUser  Role = "USER"
)

// Authority is a single granted permission checked by the route policy.
type Authority string

const (
	AuthorityAdmin Authority = "ROLE_ADMIN"
	AuthorityUser  Authority = "ROLE_USER"
)

// roleAuthorities expands a role into the authorities it grants.
// ADMIN implies USER.
var roleAuthorities = map[Role][]Authority{
	RoleAdmin: {AuthorityAdmin, AuthorityUser},
	RoleUser:  {AuthorityUser},
}

// ParseRole normalises a caller-supplied role. Matching is case-insensitive.
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToUpper(strings.TrimSpace(s)))
	if _, ok := roleAuthorities[r]; !ok {
		return "", ErrInvalidRole
	}
	return r, nil
}

// Authorities returns a copy of the authority set granted by r.
func (r Role) Authorities() []Authority {
	src := roleAuthorities[r]
	out := make([]Authority, len(src))
	copy(out, src)
	return out
}

// User models a registered account.
type User struct {
	ID           string `json:"id"`
	Login        string `json:"login"`
	PasswordHash string `json:"-"`
	Role         Role   `json:"role"`
}
