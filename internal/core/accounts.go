package core

import (
	"log/slog"

	"golang.org/x/crypto/bcrypt"

	"parlor/backend/internal/models"
	"parlor/backend/internal/moderation"
)

// RegisterInput carries a registration request.
type RegisterInput struct {
	Username string
	Password string
	Avatar   string
	Color    string
	Language string
	Theme    string
}

// Register creates an account. The first-ever account becomes owner; the
// configured master account claims ownership whenever it registers;
// everyone else starts as a regular user.
func (c *Core) Register(in RegisterInput) (models.Role, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := models.ValidateUsername(in.Username); err != nil {
		return models.RoleUser, err
	}
	if in.Password == "" {
		return models.RoleUser, models.ErrPasswordEmpty
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return models.RoleUser, err
	}

	role := models.RoleUser
	if c.creds.Count() == 0 {
		role = models.RoleOwner
	}

	acct := &models.Account{
		Username:     in.Username,
		PasswordHash: string(hashed),
		Avatar:       in.Avatar,
		Color:        in.Color,
		Language:     in.Language,
		Theme:        in.Theme,
		Role:         role,
	}
	if err := c.creds.Create(acct); err != nil {
		return models.RoleUser, err
	}

	// The master account reclaims the owner slot on registration, demoting
	// any sitting owner to coOwner. The demotion is a role mutation, so
	// connected clients get fresh snapshots like any other.
	if c.opts.MasterOwner != "" && in.Username == c.opts.MasterOwner {
		if res := c.mod.FixOwner(c.opts.MasterOwner); res.OK {
			if res.Notice != "" {
				c.systemNotice(res.Notice)
			}
			c.broadcastUserList()
			c.broadcastRoom()
		}
	}

	slog.Info("account registered", "username", acct.Username, "role", acct.Role.String())
	return acct.Role, nil
}

// Login authenticates an account and issues a fresh session token. Banned
// accounts are rejected here and again at join time.
func (c *Core) Login(username, password string) (string, models.Profile, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	acct := c.creds.Get(username)
	if acct == nil {
		return "", models.Profile{}, ErrUnknownUser
	}
	if acct.Banned {
		return "", models.Profile{}, ErrBanned
	}
	if err := bcrypt.CompareHashAndPassword([]byte(acct.PasswordHash), []byte(password)); err != nil {
		return "", models.Profile{}, ErrWrongPassword
	}

	tok, err := c.tokens.Generate(username)
	if err != nil {
		return "", models.Profile{}, err
	}
	c.sessions.Put(tok, username)

	slog.Info("login", "username", username)
	return tok, acct.Profile(), nil
}

// ProfileInput carries a profile update; empty fields are left unchanged.
type ProfileInput struct {
	Avatar   string
	Color    string
	Language string
	Theme    string
}

// UpdateProfile mutates any subset of an account's profile fields and
// refreshes the live room avatar's mirror.
func (c *Core) UpdateProfile(tok string, in ProfileInput) (models.Profile, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	acct, err := c.resolve(tok)
	if err != nil {
		return models.Profile{}, err
	}

	if in.Avatar != "" {
		acct.Avatar = in.Avatar
	}
	if in.Color != "" {
		acct.Color = in.Color
	}
	if in.Language != "" {
		acct.Language = in.Language
	}
	if in.Theme != "" {
		acct.Theme = in.Theme
	}

	if c.room.Refresh(acct) {
		c.broadcastUserList()
		c.broadcastRoom()
	}
	return acct.Profile(), nil
}

// FixOwner restores ownership to the configured master account. Only the
// master account itself may trigger it.
func (c *Core) FixOwner(tok string) moderation.Result {
	c.mu.Lock()
	defer c.mu.Unlock()

	acct, err := c.resolve(tok)
	if err != nil {
		return moderation.Result{OK: false, Msg: err.Error()}
	}
	if c.opts.MasterOwner == "" || acct.Username != c.opts.MasterOwner {
		return moderation.Result{OK: false, Msg: "only the master owner may reclaim ownership"}
	}

	res := c.mod.FixOwner(c.opts.MasterOwner)
	if res.OK {
		slog.Info("ownership restored", "username", acct.Username)
		if res.Notice != "" {
			c.systemNotice(res.Notice)
		}
		c.broadcastUserList()
		c.broadcastRoom()
	}
	return res
}
