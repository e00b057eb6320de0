// Package moderation applies kick/ban/role actions against the credential
// store, room state, and live connections.
package moderation

import (
	"parlor/backend/internal/models"
	"parlor/backend/internal/rbac"
	"parlor/backend/internal/room"
	"parlor/backend/internal/store"
)

// Disconnector force-terminates every live connection a user holds. The
// core implements it over the hub and websocket gateway.
type Disconnector interface {
	ForceLogout(username, reason string)
}

// Result reports an action's outcome. Msg goes back to the actor alone;
// Notice is broadcast as a system chat message on success.
type Result struct {
	OK     bool
	Msg    string
	Notice string
}

func failure(msg string) Result {
	return Result{OK: false, Msg: msg}
}

// Engine mutates moderation state. Every action is a single atomic
// in-memory mutation; the core broadcasts after each success.
type Engine struct {
	creds *store.CredentialStore
	room  *room.State
	disc  Disconnector
}

func NewEngine(creds *store.CredentialStore, rm *room.State, disc Disconnector) *Engine {
	return &Engine{creds: creds, room: rm, disc: disc}
}

// Kick force-disconnects every connection of the target and removes it
// from the room. The account is untouched; the target may reconnect.
func (e *Engine) Kick(actor, target string) Result {
	targetAcct, res := e.guard(actor, target, rbac.PermKickUser)
	if !res.OK {
		return res
	}

	e.disc.ForceLogout(target, "You have been kicked.")
	e.room.Remove(target)
	return Result{OK: true, Notice: targetAcct.Username + " was kicked"}
}

// Ban sets the banned flag, then applies the kick effects. A banned
// account is rejected at both login and join time.
func (e *Engine) Ban(actor, target string) Result {
	targetAcct, res := e.guard(actor, target, rbac.PermBanUser)
	if !res.OK {
		return res
	}

	targetAcct.Banned = true
	e.disc.ForceLogout(target, "You have been banned.")
	e.room.Remove(target)
	return Result{OK: true, Notice: targetAcct.Username + " was banned"}
}

// Unban clears the banned flag.
func (e *Engine) Unban(actor, target string) Result {
	targetAcct, res := e.guard(actor, target, rbac.PermUnbanUser)
	if !res.OK {
		return res
	}

	targetAcct.Banned = false
	return Result{OK: true, Notice: targetAcct.Username + " was unbanned"}
}

// PromoteCoOwner grants coOwner. Owner-only.
func (e *Engine) PromoteCoOwner(actor, target string) Result {
	targetAcct, res := e.guard(actor, target, rbac.PermPromoteCoOwner)
	if !res.OK {
		return res
	}
	if targetAcct.Role == models.RoleOwner {
		return failure("the owner cannot be promoted to coOwner")
	}

	targetAcct.Role = models.RoleCoOwner
	e.room.Refresh(targetAcct)
	return Result{OK: true, Notice: targetAcct.Username + " is now a co-owner"}
}

// DemoteToUser strips a moderator role. Owner-only; the owner slot itself
// is only vacated through RemoveOwner.
func (e *Engine) DemoteToUser(actor, target string) Result {
	targetAcct, res := e.guard(actor, target, rbac.PermDemoteToUser)
	if !res.OK {
		return res
	}
	if targetAcct.Role == models.RoleOwner {
		return failure("the owner cannot be demoted")
	}

	targetAcct.Role = models.RoleUser
	e.room.Refresh(targetAcct)
	return Result{OK: true, Notice: targetAcct.Username + " is now a regular user"}
}

// MakeOwner reassigns the single owner slot to the target, demoting the
// prior holder to coOwner.
func (e *Engine) MakeOwner(actor, target string) Result {
	targetAcct, res := e.guard(actor, target, rbac.PermGrantOwner)
	if !res.OK {
		return res
	}
	if targetAcct.Role == models.RoleOwner {
		return failure(targetAcct.Username + " is already the owner")
	}

	e.transferOwner(targetAcct)
	return Result{OK: true, Notice: targetAcct.Username + " is now the owner"}
}

// RemoveOwner demotes the owner to coOwner, leaving the slot vacant until
// MakeOwner or FixOwner fills it again.
func (e *Engine) RemoveOwner(actor, target string) Result {
	targetAcct, res := e.guard(actor, target, rbac.PermGrantOwner)
	if !res.OK {
		return res
	}
	if targetAcct.Role != models.RoleOwner {
		return failure(targetAcct.Username + " is not the owner")
	}

	targetAcct.Role = models.RoleCoOwner
	e.room.Refresh(targetAcct)
	return Result{OK: true, Notice: targetAcct.Username + " is no longer the owner"}
}

// FixOwner restores the owner role to the configured master account,
// demoting any usurper to coOwner. The master identity comes from
// configuration, not from a name baked into logic.
func (e *Engine) FixOwner(master string) Result {
	if master == "" {
		return failure("no master owner is configured")
	}
	masterAcct := e.creds.Get(master)
	if masterAcct == nil {
		return failure("master owner account is not registered")
	}
	if masterAcct.Role == models.RoleOwner {
		return Result{OK: true}
	}

	e.transferOwner(masterAcct)
	return Result{OK: true, Notice: masterAcct.Username + " reclaimed ownership"}
}

// transferOwner moves the owner slot to the target, keeping the at most
// one owner invariant.
func (e *Engine) transferOwner(target *models.Account) {
	if prev := e.creds.Owner(); prev != nil && prev.Username != target.Username {
		prev.Role = models.RoleCoOwner
		e.room.Refresh(prev)
	}
	target.Role = models.RoleOwner
	e.room.Refresh(target)
}

// guard resolves both accounts and applies the permission table plus
// owner immunity. The actor's session validity and ban state are checked
// upstream before any action reaches the engine.
func (e *Engine) guard(actor, target string, perm rbac.Permission) (*models.Account, Result) {
	actorAcct := e.creds.Get(actor)
	if actorAcct == nil {
		return nil, failure("unknown actor")
	}
	if msg := rbac.RequirePermission(actorAcct.Role, perm); msg != "" {
		return nil, failure(msg)
	}
	targetAcct := e.creds.Get(target)
	if targetAcct == nil {
		return nil, failure("unknown user: " + target)
	}
	if !rbac.CanActOn(actorAcct.Role, targetAcct.Role) {
		return nil, failure("the owner is immune to moderation")
	}
	return targetAcct, Result{OK: true}
}
