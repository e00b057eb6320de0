package hub_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"parlor/backend/internal/hub"
)

func recv(t *testing.T, c hub.Client) hub.Event {
	t.Helper()
	select {
	case msg := <-c:
		var ev hub.Event
		require.NoError(t, json.Unmarshal(msg, &ev))
		return ev
	default:
		t.Fatal("expected a pending event")
		return hub.Event{}
	}
}

func TestBroadcastSkipsUnjoinedConnections(t *testing.T) {
	h := hub.NewHub()
	joined := make(hub.Client, 4)
	lurker := make(hub.Client, 4)
	h.Subscribe("c1", joined)
	h.Subscribe("c2", lurker)
	h.Attach("c1", "alice")

	h.Broadcast(hub.Event{Type: "chatMessage", Payload: "hi"})

	ev := recv(t, joined)
	assert.Equal(t, "chatMessage", ev.Type)
	assert.Empty(t, lurker)
}

func TestSendToReachesUnjoinedConnection(t *testing.T) {
	h := hub.NewHub()
	c := make(hub.Client, 4)
	h.Subscribe("c1", c)

	h.SendTo("c1", hub.Event{Type: "forceLogout"})
	assert.Equal(t, "forceLogout", recv(t, c).Type)

	// Unknown connections are ignored.
	h.SendTo("nope", hub.Event{Type: "forceLogout"})
}

func TestSendToUserHitsEveryConnection(t *testing.T) {
	h := hub.NewHub()
	c1 := make(hub.Client, 4)
	c2 := make(hub.Client, 4)
	h.Subscribe("c1", c1)
	h.Subscribe("c2", c2)
	h.Attach("c1", "alice")
	h.Attach("c2", "alice")

	h.SendToUser("alice", hub.Event{Type: "adminResult"})
	assert.Equal(t, "adminResult", recv(t, c1).Type)
	assert.Equal(t, "adminResult", recv(t, c2).Type)

	ids := h.ConnectionsOf("alice")
	assert.ElementsMatch(t, []string{"c1", "c2"}, ids)
}

func TestUnsubscribeReportsLastConnection(t *testing.T) {
	h := hub.NewHub()
	c1 := make(hub.Client, 4)
	c2 := make(hub.Client, 4)
	h.Subscribe("c1", c1)
	h.Subscribe("c2", c2)
	h.Attach("c1", "alice")
	h.Attach("c2", "alice")

	user, last := h.Unsubscribe("c1")
	assert.Equal(t, "alice", user)
	assert.False(t, last)
	assert.True(t, h.IsOnline("alice"))

	user, last = h.Unsubscribe("c2")
	assert.Equal(t, "alice", user)
	assert.True(t, last)
	assert.False(t, h.IsOnline("alice"))

	// Double unsubscribe is safe.
	user, last = h.Unsubscribe("c2")
	assert.Empty(t, user)
	assert.False(t, last)
}

func TestOnlineListsUniqueSortedUsernames(t *testing.T) {
	h := hub.NewHub()
	for _, id := range []string{"c1", "c2", "c3"} {
		h.Subscribe(id, make(hub.Client, 1))
	}
	h.Attach("c1", "zoe")
	h.Attach("c2", "alice")
	h.Attach("c3", "zoe")

	assert.Equal(t, []string{"alice", "zoe"}, h.Online())
}

func TestSlowClientDoesNotBlockBroadcast(t *testing.T) {
	h := hub.NewHub()
	full := make(hub.Client) // unbuffered and never drained
	h.Subscribe("c1", full)
	h.Attach("c1", "alice")

	done := make(chan struct{})
	go func() {
		h.Broadcast(hub.Event{Type: "roomUpdate"})
		close(done)
	}()
	<-done
}
