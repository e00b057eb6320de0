// Package core owns the whole in-memory application state. Every handler,
// HTTP or event-channel, funnels its mutation through a Core method; a
// single mutex keeps the one-writer-at-a-time semantics the components
// rely on.
package core

import (
	"errors"
	"strings"
	"sync"
	"time"

	"parlor/backend/internal/auth"
	"parlor/backend/internal/game"
	"parlor/backend/internal/hub"
	"parlor/backend/internal/models"
	"parlor/backend/internal/moderation"
	"parlor/backend/internal/room"
	"parlor/backend/internal/store"
	"parlor/backend/pkg/token"
)

const maxChatRunes = 512

// Error strings double as the wire-format error field.
var ErrBanned = errors.New("banned")
var ErrUnknownUser = errors.New("unknown user")
var ErrWrongPassword = errors.New("wrong password")
var ErrInvalidSession = errors.New("invalid session")

// Options is the slice of configuration the core needs.
type Options struct {
	JWTSecret     string
	MasterOwner   string
	RetainAvatars bool
}

// Core holds all components and serializes access to them. Components
// themselves carry no locks; mu is the single writer gate.
type Core struct {
	mu       sync.Mutex
	opts     Options
	creds    *store.CredentialStore
	sessions *auth.SessionRegistry
	tokens   *token.Manager
	room     *room.State
	lobby    *game.Lobby
	hub      *hub.Hub
	mod      *moderation.Engine
}

// New wires up a fresh, empty state container.
func New(opts Options) *Core {
	c := &Core{
		opts:     opts,
		creds:    store.NewCredentialStore(),
		sessions: auth.NewSessionRegistry(),
		tokens:   token.NewManager(opts.JWTSecret),
		room:     room.NewState(room.DefaultSeats, opts.RetainAvatars),
		lobby:    game.NewLobby(),
		hub:      hub.NewHub(),
	}
	c.mod = moderation.NewEngine(c.creds, c.room, c)
	return c
}

// resolve maps a token to its live, non-banned account. Both the token
// signature and the in-process session registry must agree.
func (c *Core) resolve(tok string) (*models.Account, error) {
	username, err := c.tokens.Parse(tok)
	if err != nil {
		return nil, ErrInvalidSession
	}
	registered, ok := c.sessions.Resolve(tok)
	if !ok || registered != username {
		return nil, ErrInvalidSession
	}
	acct := c.creds.Get(username)
	if acct == nil {
		return nil, ErrInvalidSession
	}
	if acct.Banned {
		return nil, ErrBanned
	}
	return acct, nil
}

// ForceLogout implements moderation.Disconnector: it signals every
// connection the user holds and drops them from the hub. The write pump
// drains the pending forceLogout before closing the socket.
func (c *Core) ForceLogout(username, reason string) {
	for _, connID := range c.hub.ConnectionsOf(username) {
		c.hub.SendTo(connID, hub.Event{
			Type:    models.EventForceLogout,
			Payload: models.ForceLogout{Reason: reason},
		})
		c.hub.Unsubscribe(connID)
	}
}

func (c *Core) broadcastUserList() {
	online := c.hub.Online()
	profiles := make([]models.Profile, 0, len(online))
	for _, name := range online {
		if acct := c.creds.Get(name); acct != nil {
			profiles = append(profiles, acct.Profile())
		}
	}
	c.hub.Broadcast(hub.Event{Type: models.EventUserList, Payload: profiles})
}

func (c *Core) broadcastRoom() {
	c.hub.Broadcast(hub.Event{Type: models.EventRoomUpdate, Payload: c.room.Snapshot()})
}

func (c *Core) broadcastGame() {
	if snap := c.lobby.Snapshot(); snap != nil {
		c.hub.Broadcast(hub.Event{Type: models.EventGameState, Payload: snap})
	}
}

func (c *Core) systemNotice(text string) {
	c.hub.Broadcast(hub.Event{
		Type: models.EventChatMessage,
		Payload: models.ChatMessage{
			From:      "System",
			Text:      text,
			Timestamp: time.Now().Format(time.RFC3339),
		},
	})
}

func (c *Core) adminResult(connID string, res moderation.Result) {
	c.hub.SendTo(connID, hub.Event{
		Type:    models.EventAdminResult,
		Payload: models.AdminResult{OK: res.OK, Msg: res.Msg},
	})
}

func trimChat(text string) string {
	text = strings.TrimSpace(text)
	runes := []rune(text)
	if len(runes) > maxChatRunes {
		text = string(runes[:maxChatRunes])
	}
	return text
}
