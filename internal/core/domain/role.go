package domain

import (
	"encoding/json"
	"strings"
)

// Role is the authorization level attached to a user session, ordered by
// privilege. RoleNone grants no permissions, even against an empty
// required-role set.
type Role string

const (
	RoleNone   Role = "NONE"
	RoleClient Role = "CLIENT"
	RoleAgent  Role = "AGENT"
	RoleAdmin  Role = "ADMIN"
)

// privilege orders roles for comparisons; higher means more privileged.
var privilege = map[Role]int{
	RoleNone:   0,
	RoleClient: 1,
	RoleAgent:  2,
	RoleAdmin:  3,
}

// ParseRole maps a stored textual role to a Role, case-insensitively.
// Unrecognised values fall back to RoleNone rather than erroring so that a
// corrupted session blob degrades to "not authenticated".
func ParseRole(s string) Role {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case string(RoleClient):
		return RoleClient
	case string(RoleAgent):
		return RoleAgent
	case string(RoleAdmin):
		return RoleAdmin
	default:
		return RoleNone
	}
}

// Level returns the privilege rank of the role.
func (r Role) Level() int {
	return privilege[r]
}

// AtLeast reports whether the role carries at least the privilege of other.
func (r Role) AtLeast(other Role) bool {
	return r != RoleNone && r.Level() >= other.Level()
}

// MarshalJSON stores the role as its upper-case textual name.
func (r Role) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(r))
}

// UnmarshalJSON accepts any casing and never fails on unknown values.
func (r *Role) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		*r = RoleNone
		return nil
	}
	*r = ParseRole(s)
	return nil
}
