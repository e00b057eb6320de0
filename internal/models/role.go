package models

import (
	"encoding/json"
	"errors"
)

// Role is a user's privilege level, ordered from least to most privileged.
type Role int

const (
	RoleUser Role = iota
	RoleAdmin
	RoleCoOwner
	RoleOwner
)

var ErrInvalidRole = errors.New("invalid role: must be user, admin, coOwner, or owner")

func (r Role) String() string {
	switch r {
	case RoleOwner:
		return "owner"
	case RoleCoOwner:
		return "coOwner"
	case RoleAdmin:
		return "admin"
	case RoleUser:
		return "user"
	default:
		return "unknown"
	}
}

// ParseRole converts a wire-format role name to a Role. Unrecognized
// names map to RoleUser; use UnmarshalJSON when unknown names must be
// rejected instead.
func ParseRole(s string) Role {
	switch s {
	case "owner":
		return RoleOwner
	case "coOwner":
		return RoleCoOwner
	case "admin":
		return RoleAdmin
	default:
		return RoleUser
	}
}

// Valid returns true if the role is a recognised value.
func (r Role) Valid() bool {
	return r >= RoleUser && r <= RoleOwner
}

// Roles travel as their string names on the wire.
func (r Role) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.String())
}

func (r *Role) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	switch s {
	case "owner", "coOwner", "admin", "user":
		*r = ParseRole(s)
		return nil
	default:
		return ErrInvalidRole
	}
}
