package core

import (
	"log/slog"
	"time"

	"parlor/backend/internal/hub"
	"parlor/backend/internal/models"
	"parlor/backend/internal/moderation"
	"parlor/backend/internal/rbac"
)

// Connect registers a fresh, not-yet-identified connection.
func (c *Core) Connect(connID string, client hub.Client) {
	c.hub.Subscribe(connID, client)
}

// Disconnect tears a connection down. When it was the user's last one,
// the avatar leaves the room per the retention policy.
func (c *Core) Disconnect(connID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	username, last := c.hub.Unsubscribe(connID)
	if username == "" {
		return
	}
	if last {
		c.room.Disconnect(username)
	}
	c.broadcastUserList()
	c.broadcastRoom()
	slog.Debug("connection closed", "username", username, "last", last)
}

// JoinChat attaches an authenticated session to a connection and puts the
// user in the room. Invalid or banned sessions get a forceLogout signal
// on this connection only.
func (c *Core) JoinChat(connID, tok string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	acct, err := c.resolve(tok)
	if err != nil {
		c.hub.SendTo(connID, hub.Event{
			Type:    models.EventForceLogout,
			Payload: models.ForceLogout{Reason: err.Error()},
		})
		return
	}

	c.hub.Attach(connID, acct.Username)
	c.room.Enter(acct)
	c.broadcastUserList()
	c.broadcastRoom()

	// Late joiners still need to see the running match.
	if snap := c.lobby.Snapshot(); snap != nil {
		c.hub.SendTo(connID, hub.Event{Type: models.EventGameState, Payload: snap})
	}
	slog.Info("joined chat", "username", acct.Username)
}

// SendMessage broadcasts a chat line with the sender's public profile
// attached. Empty messages are dropped.
func (c *Core) SendMessage(tok, text string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	acct, err := c.resolve(tok)
	if err != nil {
		return
	}
	text = trimChat(text)
	if text == "" {
		return
	}

	c.hub.Broadcast(hub.Event{
		Type: models.EventChatMessage,
		Payload: models.ChatMessage{
			From:      acct.Username,
			Text:      text,
			Color:     acct.Color,
			Avatar:    acct.Avatar,
			Role:      acct.Role.String(),
			Timestamp: time.Now().Format(time.RFC3339),
		},
	})
}

// MoveAvatar moves a free-standing avatar; seated avatars stay put.
func (c *Core) MoveAvatar(tok string, x, y int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	acct, err := c.resolve(tok)
	if err != nil {
		return
	}
	if c.room.Move(acct.Username, x, y) {
		c.broadcastRoom()
	}
}

// SitOnSeat binds the avatar to a free seat.
func (c *Core) SitOnSeat(tok string, seatIndex int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	acct, err := c.resolve(tok)
	if err != nil {
		return
	}
	if c.room.Sit(acct.Username, seatIndex) {
		c.broadcastRoom()
	}
}

// StandUp releases the avatar's seat.
func (c *Core) StandUp(tok string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	acct, err := c.resolve(tok)
	if err != nil {
		return
	}
	if c.room.Stand(acct.Username) {
		c.broadcastRoom()
	}
}

// Moderate dispatches a moderation event to the engine and reports the
// outcome back to the acting connection alone. Successes additionally
// broadcast a system notice and fresh state snapshots.
func (c *Core) Moderate(connID, action, tok, target string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	acct, err := c.resolve(tok)
	if err != nil {
		c.adminResult(connID, moderation.Result{OK: false, Msg: err.Error()})
		return
	}

	var res moderation.Result
	switch action {
	case models.EventKickUser:
		res = c.mod.Kick(acct.Username, target)
	case models.EventBanUser:
		res = c.mod.Ban(acct.Username, target)
	case models.EventUnbanUser:
		res = c.mod.Unban(acct.Username, target)
	case models.EventPromoteCoOwner:
		res = c.mod.PromoteCoOwner(acct.Username, target)
	case models.EventDemoteToUser:
		res = c.mod.DemoteToUser(acct.Username, target)
	case models.EventMakeOwner:
		res = c.mod.MakeOwner(acct.Username, target)
	case models.EventRemoveOwner:
		res = c.mod.RemoveOwner(acct.Username, target)
	default:
		res = moderation.Result{OK: false, Msg: "unknown action"}
	}

	if res.OK {
		slog.Info("moderation action", "action", action, "actor", acct.Username, "target", target)
		if res.Notice != "" {
			c.systemNotice(res.Notice)
		}
		c.broadcastUserList()
		c.broadcastRoom()
	}
	c.adminResult(connID, res)
}

// GameCreate replaces any live match with a fresh one. Moderator-only.
func (c *Core) GameCreate(connID, tok, gameType string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	acct, err := c.resolve(tok)
	if err != nil {
		c.adminResult(connID, moderation.Result{OK: false, Msg: err.Error()})
		return
	}
	if msg := rbac.RequirePermission(acct.Role, rbac.PermCreateGame); msg != "" {
		c.adminResult(connID, moderation.Result{OK: false, Msg: msg})
		return
	}

	c.lobby.Create(acct.Username, gameType)
	slog.Info("game created", "host", acct.Username, "type", gameType)
	c.broadcastGame()
	c.adminResult(connID, moderation.Result{OK: true})
}

// JoinGame adds the player to the open match. Silently ignored otherwise.
func (c *Core) JoinGame(tok string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	acct, err := c.resolve(tok)
	if err != nil {
		return
	}
	if c.lobby.Join(acct.Username) {
		c.broadcastGame()
	}
}

// LockGame starts the match. Host or owner only.
func (c *Core) LockGame(connID, tok string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	acct, err := c.resolve(tok)
	if err != nil {
		c.adminResult(connID, moderation.Result{OK: false, Msg: err.Error()})
		return
	}

	if c.lobby.Lock(acct.Username, acct.Role == models.RoleOwner) {
		c.broadcastGame()
		return
	}
	c.adminResult(connID, moderation.Result{OK: false, Msg: "only the host or owner may lock the game"})
}

// GameMove places a mark. Invalid moves are silently ignored.
func (c *Core) GameMove(tok string, index int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	acct, err := c.resolve(tok)
	if err != nil {
		return
	}
	if c.lobby.Move(acct.Username, index) {
		c.broadcastGame()
	}
}
