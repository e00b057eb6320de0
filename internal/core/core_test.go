package core_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"parlor/backend/internal/core"
	"parlor/backend/internal/hub"
	"parlor/backend/internal/models"
)

// envelope mirrors hub.Event with a deferred payload for assertions.
type envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

func newCore(t *testing.T, opts core.Options) *core.Core {
	t.Helper()
	if opts.JWTSecret == "" {
		opts.JWTSecret = "test-secret"
	}
	return core.New(opts)
}

func register(t *testing.T, c *core.Core, username string) models.Role {
	t.Helper()
	role, err := c.Register(core.RegisterInput{
		Username: username,
		Password: "pw-" + username,
		Avatar:   "butterfly",
		Color:    "#ff66cc",
	})
	require.NoError(t, err)
	return role
}

func login(t *testing.T, c *core.Core, username string) string {
	t.Helper()
	tok, _, err := c.Login(username, "pw-"+username)
	require.NoError(t, err)
	return tok
}

// connect opens a fake connection and joins the chat with the token.
func connect(t *testing.T, c *core.Core, connID, tok string) hub.Client {
	t.Helper()
	client := make(hub.Client, 64)
	c.Connect(connID, client)
	c.JoinChat(connID, tok)
	return client
}

func drain(t *testing.T, client hub.Client) []envelope {
	t.Helper()
	var events []envelope
	for {
		select {
		case msg, ok := <-client:
			if !ok {
				return events
			}
			var ev envelope
			require.NoError(t, json.Unmarshal(msg, &ev))
			events = append(events, ev)
		default:
			return events
		}
	}
}

func lastOfType(events []envelope, eventType string) (envelope, bool) {
	for i := len(events) - 1; i >= 0; i-- {
		if events[i].Type == eventType {
			return events[i], true
		}
	}
	return envelope{}, false
}

func TestFirstRegistrationBecomesOwner(t *testing.T) {
	c := newCore(t, core.Options{})
	assert.Equal(t, models.RoleOwner, register(t, c, "alice"))
	assert.Equal(t, models.RoleUser, register(t, c, "bob"))
	assert.Equal(t, models.RoleUser, register(t, c, "carol"))
}

func TestRegisterValidation(t *testing.T) {
	c := newCore(t, core.Options{})
	register(t, c, "alice")

	_, err := c.Register(core.RegisterInput{Username: "alice", Password: "x"})
	assert.Error(t, err, "duplicate username")

	_, err = c.Register(core.RegisterInput{Username: "", Password: "x"})
	assert.ErrorIs(t, err, models.ErrUsernameEmpty)

	_, err = c.Register(core.RegisterInput{Username: "dave", Password: ""})
	assert.ErrorIs(t, err, models.ErrPasswordEmpty)
}

func TestLoginFailures(t *testing.T) {
	c := newCore(t, core.Options{})
	register(t, c, "alice")

	_, _, err := c.Login("ghost", "pw")
	assert.ErrorIs(t, err, core.ErrUnknownUser)

	_, _, err = c.Login("alice", "wrong")
	assert.ErrorIs(t, err, core.ErrWrongPassword)
}

func TestProfileRoundTripAcrossLogins(t *testing.T) {
	c := newCore(t, core.Options{})
	register(t, c, "alice")
	tok := login(t, c, "alice")

	_, err := c.UpdateProfile(tok, core.ProfileInput{Avatar: "moth", Theme: "light"})
	require.NoError(t, err)

	_, profile, err := c.Login("alice", "pw-alice")
	require.NoError(t, err)
	assert.Equal(t, "moth", profile.Avatar)
	assert.Equal(t, "light", profile.Theme)
	assert.Equal(t, "#ff66cc", profile.Color, "untouched fields survive")
}

func TestUpdateProfileRejectsBadToken(t *testing.T) {
	c := newCore(t, core.Options{})
	_, err := c.UpdateProfile("garbage", core.ProfileInput{Avatar: "x"})
	assert.ErrorIs(t, err, core.ErrInvalidSession)
}

func TestJoinChatWithInvalidTokenSignalsForceLogout(t *testing.T) {
	c := newCore(t, core.Options{})
	client := make(hub.Client, 8)
	c.Connect("c1", client)
	c.JoinChat("c1", "garbage")

	events := drain(t, client)
	ev, ok := lastOfType(events, models.EventForceLogout)
	require.True(t, ok)

	var payload models.ForceLogout
	require.NoError(t, json.Unmarshal(ev.Payload, &payload))
	assert.Equal(t, "invalid session", payload.Reason)
}

func TestJoinChatBroadcastsUserListAndRoom(t *testing.T) {
	c := newCore(t, core.Options{})
	register(t, c, "alice")
	tok := login(t, c, "alice")

	client := connect(t, c, "c1", tok)
	events := drain(t, client)

	ev, ok := lastOfType(events, models.EventUserList)
	require.True(t, ok)
	var profiles []models.Profile
	require.NoError(t, json.Unmarshal(ev.Payload, &profiles))
	require.Len(t, profiles, 1)
	assert.Equal(t, "alice", profiles[0].Username)

	ev, ok = lastOfType(events, models.EventRoomUpdate)
	require.True(t, ok)
	var snap models.RoomSnapshot
	require.NoError(t, json.Unmarshal(ev.Payload, &snap))
	assert.Contains(t, snap.Avatars, "alice")
	assert.NotEmpty(t, snap.Seats)
}

func TestSendMessageCarriesProfileAndTimestamp(t *testing.T) {
	c := newCore(t, core.Options{})
	register(t, c, "alice")
	tok := login(t, c, "alice")
	client := connect(t, c, "c1", tok)
	drain(t, client)

	c.SendMessage(tok, "  hello room  ")
	ev, ok := lastOfType(drain(t, client), models.EventChatMessage)
	require.True(t, ok)

	var msg models.ChatMessage
	require.NoError(t, json.Unmarshal(ev.Payload, &msg))
	assert.Equal(t, "alice", msg.From)
	assert.Equal(t, "hello room", msg.Text)
	assert.Equal(t, "owner", msg.Role)
	assert.NotEmpty(t, msg.Timestamp)

	c.SendMessage(tok, "   ")
	_, ok = lastOfType(drain(t, client), models.EventChatMessage)
	assert.False(t, ok, "blank messages are dropped")
}

func TestBanScenario(t *testing.T) {
	// register(alice) -> owner; register(bob) -> user; owner bans bob;
	// bob can no longer log in and his connection is force-closed.
	c := newCore(t, core.Options{})
	require.Equal(t, models.RoleOwner, register(t, c, "alice"))
	require.Equal(t, models.RoleUser, register(t, c, "bob"))

	aliceTok := login(t, c, "alice")
	bobTok, profile, err := c.Login("bob", "pw-bob")
	require.NoError(t, err)
	require.Equal(t, models.RoleUser, profile.Role)

	aliceClient := connect(t, c, "alice-1", aliceTok)
	bobClient := connect(t, c, "bob-1", bobTok)
	drain(t, aliceClient)
	drain(t, bobClient)

	c.Moderate("alice-1", models.EventBanUser, aliceTok, "bob")

	// Bob got the signal, then the channel closed.
	bobEvents := drain(t, bobClient)
	_, ok := lastOfType(bobEvents, models.EventForceLogout)
	assert.True(t, ok)

	// Alice saw the result, a system notice, and a bob-less user list.
	aliceEvents := drain(t, aliceClient)
	ev, ok := lastOfType(aliceEvents, models.EventAdminResult)
	require.True(t, ok)
	var res models.AdminResult
	require.NoError(t, json.Unmarshal(ev.Payload, &res))
	assert.True(t, res.OK)

	ev, ok = lastOfType(aliceEvents, models.EventUserList)
	require.True(t, ok)
	var profiles []models.Profile
	require.NoError(t, json.Unmarshal(ev.Payload, &profiles))
	require.Len(t, profiles, 1)
	assert.Equal(t, "alice", profiles[0].Username)

	_, _, err = c.Login("bob", "pw-bob")
	assert.EqualError(t, err, "banned")

	// The surviving pre-ban token is dead too.
	client := make(hub.Client, 8)
	c.Connect("bob-2", client)
	c.JoinChat("bob-2", bobTok)
	_, ok = lastOfType(drain(t, client), models.EventForceLogout)
	assert.True(t, ok)
}

func TestModerationFailureIsUnicastOnly(t *testing.T) {
	c := newCore(t, core.Options{})
	register(t, c, "alice")
	register(t, c, "bob")
	aliceTok := login(t, c, "alice")
	bobTok := login(t, c, "bob")

	aliceClient := connect(t, c, "alice-1", aliceTok)
	bobClient := connect(t, c, "bob-1", bobTok)
	drain(t, aliceClient)
	drain(t, bobClient)

	// bob (a regular user) tries to kick the owner.
	c.Moderate("bob-1", models.EventKickUser, bobTok, "alice")

	bobEvents := drain(t, bobClient)
	ev, ok := lastOfType(bobEvents, models.EventAdminResult)
	require.True(t, ok)
	var res models.AdminResult
	require.NoError(t, json.Unmarshal(ev.Payload, &res))
	assert.False(t, res.OK)

	aliceEvents := drain(t, aliceClient)
	assert.Empty(t, aliceEvents, "failed actions broadcast nothing")
}

func TestMasterOwnerReclaimsOnRegistration(t *testing.T) {
	c := newCore(t, core.Options{MasterOwner: "master"})
	require.Equal(t, models.RoleOwner, register(t, c, "alice"))
	require.Equal(t, models.RoleOwner, register(t, c, "master"))

	// Alice kept an elevated role instead of dropping to user.
	_, profile, err := c.Login("alice", "pw-alice")
	require.NoError(t, err)
	assert.Equal(t, models.RoleCoOwner, profile.Role)
}

func TestMasterOwnerRegistrationBroadcastsDemotion(t *testing.T) {
	c := newCore(t, core.Options{MasterOwner: "master"})
	register(t, c, "alice")
	aliceTok := login(t, c, "alice")
	aliceClient := connect(t, c, "alice-1", aliceTok)
	drain(t, aliceClient)

	// Alice is watching when the master account registers and takes the
	// owner slot from her.
	register(t, c, "master")
	events := drain(t, aliceClient)

	ev, ok := lastOfType(events, models.EventUserList)
	require.True(t, ok, "the demotion reaches connected clients immediately")
	var profiles []models.Profile
	require.NoError(t, json.Unmarshal(ev.Payload, &profiles))
	require.Len(t, profiles, 1)
	assert.Equal(t, models.RoleCoOwner, profiles[0].Role)

	ev, ok = lastOfType(events, models.EventRoomUpdate)
	require.True(t, ok)
	var snap models.RoomSnapshot
	require.NoError(t, json.Unmarshal(ev.Payload, &snap))
	assert.Equal(t, models.RoleCoOwner, snap.Avatars["alice"].Role)

	ev, ok = lastOfType(events, models.EventChatMessage)
	require.True(t, ok)
	var msg models.ChatMessage
	require.NoError(t, json.Unmarshal(ev.Payload, &msg))
	assert.Equal(t, "System", msg.From)
	assert.Contains(t, msg.Text, "master")
}

func TestFixOwnerIsMasterOnly(t *testing.T) {
	c := newCore(t, core.Options{MasterOwner: "master"})
	register(t, c, "master")
	register(t, c, "alice")
	masterTok := login(t, c, "master")
	aliceTok := login(t, c, "alice")

	// The master hands ownership away, then reclaims it.
	masterClient := connect(t, c, "m-1", masterTok)
	drain(t, masterClient)
	c.Moderate("m-1", models.EventMakeOwner, masterTok, "alice")
	drain(t, masterClient)

	res := c.FixOwner(aliceTok)
	assert.False(t, res.OK)

	res = c.FixOwner(masterTok)
	require.True(t, res.OK)
	_, profile, err := c.Login("master", "pw-master")
	require.NoError(t, err)
	assert.Equal(t, models.RoleOwner, profile.Role)
}

func TestGameFlowThroughCore(t *testing.T) {
	c := newCore(t, core.Options{})
	register(t, c, "alice")
	register(t, c, "bob")
	aliceTok := login(t, c, "alice")
	bobTok := login(t, c, "bob")

	aliceClient := connect(t, c, "alice-1", aliceTok)
	bobClient := connect(t, c, "bob-1", bobTok)
	drain(t, aliceClient)
	drain(t, bobClient)

	// A regular user may not create a game.
	c.GameCreate("bob-1", bobTok, "tictactoe")
	ev, ok := lastOfType(drain(t, bobClient), models.EventAdminResult)
	require.True(t, ok)
	var res models.AdminResult
	require.NoError(t, json.Unmarshal(ev.Payload, &res))
	assert.False(t, res.OK)

	c.GameCreate("alice-1", aliceTok, "tictactoe")
	c.JoinGame(bobTok)
	c.LockGame("alice-1", aliceTok)
	c.GameMove(aliceTok, 4)

	ev, ok = lastOfType(drain(t, bobClient), models.EventGameState)
	require.True(t, ok)
	var state struct {
		Board   [9]string `json:"board"`
		Turn    string    `json:"turn"`
		Started bool      `json:"started"`
	}
	require.NoError(t, json.Unmarshal(ev.Payload, &state))
	assert.True(t, state.Started)
	assert.Equal(t, "X", state.Board[4])
	assert.Equal(t, "bob", state.Turn)
}

func TestDisconnectRemovesAvatarByDefault(t *testing.T) {
	c := newCore(t, core.Options{})
	register(t, c, "alice")
	register(t, c, "bob")
	aliceTok := login(t, c, "alice")
	bobTok := login(t, c, "bob")

	aliceClient := connect(t, c, "alice-1", aliceTok)
	connect(t, c, "bob-1", bobTok)
	drain(t, aliceClient)

	c.Disconnect("bob-1")
	events := drain(t, aliceClient)

	ev, ok := lastOfType(events, models.EventRoomUpdate)
	require.True(t, ok)
	var snap models.RoomSnapshot
	require.NoError(t, json.Unmarshal(ev.Payload, &snap))
	assert.NotContains(t, snap.Avatars, "bob")

	ev, ok = lastOfType(events, models.EventUserList)
	require.True(t, ok)
	var profiles []models.Profile
	require.NoError(t, json.Unmarshal(ev.Payload, &profiles))
	require.Len(t, profiles, 1)
}

func TestDisconnectRetainsAvatarWhenConfigured(t *testing.T) {
	c := newCore(t, core.Options{RetainAvatars: true})
	register(t, c, "alice")
	register(t, c, "bob")
	aliceTok := login(t, c, "alice")
	bobTok := login(t, c, "bob")

	aliceClient := connect(t, c, "alice-1", aliceTok)
	connect(t, c, "bob-1", bobTok)
	drain(t, aliceClient)

	c.Disconnect("bob-1")
	ev, ok := lastOfType(drain(t, aliceClient), models.EventRoomUpdate)
	require.True(t, ok)
	var snap models.RoomSnapshot
	require.NoError(t, json.Unmarshal(ev.Payload, &snap))
	assert.Contains(t, snap.Avatars, "bob", "ghost avatar stays in the room")
}

func TestSecondConnectionKeepsUserOnline(t *testing.T) {
	c := newCore(t, core.Options{})
	register(t, c, "alice")
	tok := login(t, c, "alice")

	c1 := connect(t, c, "c1", tok)
	connect(t, c, "c2", tok)
	drain(t, c1)

	c.Disconnect("c2")
	ev, ok := lastOfType(drain(t, c1), models.EventUserList)
	require.True(t, ok)
	var profiles []models.Profile
	require.NoError(t, json.Unmarshal(ev.Payload, &profiles))
	require.Len(t, profiles, 1, "alice still online via c1")
}
