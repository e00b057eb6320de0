package models

import "encoding/json"

// Client-to-server event types.
const (
	EventJoinChat       = "joinChat"
	EventSendMessage    = "sendMessage"
	EventMoveAvatar     = "moveAvatar"
	EventSitOnSeat      = "sitOnSeat"
	EventStandUp        = "standUp"
	EventKickUser       = "kickUser"
	EventBanUser        = "banUser"
	EventUnbanUser      = "unbanUser"
	EventPromoteCoOwner = "promoteCoOwner"
	EventDemoteToUser   = "demoteToUser"
	EventMakeOwner      = "makeOwner"
	EventRemoveOwner    = "removeOwner"
	EventGameCreate     = "gameCreate"
	EventJoinGame       = "joinGame"
	EventLockGame       = "lockGame"
	EventGameMove       = "gameMove"
)

// Server-to-client event types.
const (
	EventUserList    = "userlist"
	EventRoomUpdate  = "roomUpdate"
	EventChatMessage = "chatMessage"
	EventGameState   = "gameState"
	EventForceLogout = "forceLogout"
	EventAdminResult = "adminResult"
)

// ClientEvent is the envelope for everything a client sends on the event
// channel. Payload decoding is deferred until the type is known.
type ClientEvent struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// TokenPayload carries events that need nothing beyond a session token.
type TokenPayload struct {
	Token string `json:"token"`
}

type MessagePayload struct {
	Token string `json:"token"`
	Text  string `json:"text"`
}

type MovePayload struct {
	Token string `json:"token"`
	X     int    `json:"x"`
	Y     int    `json:"y"`
}

type SitPayload struct {
	Token     string `json:"token"`
	SeatIndex int    `json:"seatIndex"`
}

// TargetPayload carries every moderation event.
type TargetPayload struct {
	Token      string `json:"token"`
	TargetUser string `json:"targetUser"`
}

type GameCreatePayload struct {
	Token string `json:"token"`
	Type  string `json:"type"`
}

type GameMovePayload struct {
	Token string `json:"token"`
	Index int    `json:"index"`
}

// ChatMessage is broadcast for every chat line, including system notices
// (From is "System" and the profile fields are empty).
type ChatMessage struct {
	From      string `json:"from"`
	Text      string `json:"text"`
	Color     string `json:"color,omitempty"`
	Avatar    string `json:"avatar,omitempty"`
	Role      string `json:"role,omitempty"`
	Timestamp string `json:"timestamp"`
}

// ForceLogout tells a single connection to terminate before the server
// closes it.
type ForceLogout struct {
	Reason string `json:"reason"`
}

// AdminResult is the unicast reply to a moderation or game actor.
type AdminResult struct {
	OK  bool   `json:"ok"`
	Msg string `json:"msg,omitempty"`
}
