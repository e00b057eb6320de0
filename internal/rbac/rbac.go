// Package rbac provides role-based access control checks for moderation
// and game actions.
package rbac

import "parlor/backend/internal/models"

// Permission is a moderation or game capability.
type Permission int

const (
	PermKickUser Permission = iota
	PermBanUser
	PermUnbanUser
	PermPromoteCoOwner
	PermDemoteToUser
	PermGrantOwner
	PermCreateGame
)

// permissionMatrix maps roles to their allowed permissions. Keeping the
// matrix explicit makes the privilege table exhaustively checkable.
var permissionMatrix = map[models.Role]map[Permission]bool{
	models.RoleOwner: {
		PermKickUser:       true,
		PermBanUser:        true,
		PermUnbanUser:      true,
		PermPromoteCoOwner: true,
		PermDemoteToUser:   true,
		PermGrantOwner:     true,
		PermCreateGame:     true,
	},
	models.RoleCoOwner: {
		PermKickUser:   true,
		PermBanUser:    true,
		PermUnbanUser:  true,
		PermCreateGame: true,
	},
	models.RoleAdmin: {
		PermKickUser:   true,
		PermBanUser:    true,
		PermUnbanUser:  true,
		PermCreateGame: true,
	},
	models.RoleUser: {
		// No special permissions.
	},
}

// HasPermission checks if a role has a specific permission.
func HasPermission(role models.Role, perm Permission) bool {
	perms, ok := permissionMatrix[role]
	if !ok {
		return false
	}
	return perms[perm]
}

// IsModerator reports whether the role may moderate at all.
func IsModerator(role models.Role) bool {
	return role == models.RoleOwner || role == models.RoleCoOwner || role == models.RoleAdmin
}

// CanActOn enforces owner immunity: an owner target can only be acted on
// by the owner itself.
func CanActOn(actor, target models.Role) bool {
	if target == models.RoleOwner && actor != models.RoleOwner {
		return false
	}
	return true
}

// RequirePermission returns an error message if the role lacks the
// permission, or empty string if allowed.
func RequirePermission(role models.Role, perm Permission) string {
	if HasPermission(role, perm) {
		return ""
	}
	return "permission denied: " + permName(perm) + " requires higher role"
}

func permName(p Permission) string {
	switch p {
	case PermKickUser:
		return "kick_user"
	case PermBanUser:
		return "ban_user"
	case PermUnbanUser:
		return "unban_user"
	case PermPromoteCoOwner:
		return "promote_co_owner"
	case PermDemoteToUser:
		return "demote_to_user"
	case PermGrantOwner:
		return "grant_owner"
	case PermCreateGame:
		return "create_game"
	default:
		return "unknown"
	}
}
