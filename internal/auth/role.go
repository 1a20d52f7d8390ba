// Package auth derives edit capabilities from user roles and keeps the
// signed-in user for a browser session.
package auth

import (
	"errors"
	"fmt"
	"strings"
)

type Role string

const (
	RoleAdmin  Role = "admin"
	RoleEditor Role = "editor"
	RoleUser   Role = "user"
)

var ErrUnknownRole = errors.New("unknown role")

func ParseRole(s string) (Role, error) {
	switch r := Role(strings.ToLower(strings.TrimSpace(s))); r {
	case RoleAdmin, RoleEditor, RoleUser:
		return r, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownRole, s)
}

// Capabilities are the only permission bits in the system.
type Capabilities struct {
	CanEdit bool `json:"canEdit"`
	IsAdmin bool `json:"isAdmin"`
}

func CapabilitiesFor(r Role) Capabilities {
	return Capabilities{
		CanEdit: r == RoleAdmin || r == RoleEditor,
		IsAdmin: r == RoleAdmin,
	}
}

// NextRole is the admin table's cycle: user -> editor -> admin -> user.
func NextRole(r Role) Role {
	switch r {
	case RoleUser:
		return RoleEditor
	case RoleEditor:
		return RoleAdmin
	default:
		return RoleUser
	}
}

// Badge is the label shown next to a user in the admin table.
func (r Role) Badge() string {
	switch r {
	case RoleAdmin:
		return "Quản trị viên"
	case RoleEditor:
		return "Biên tập viên"
	default:
		return "Người dùng"
	}
}
