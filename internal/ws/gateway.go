// Package ws bridges websocket connections to the core event operations.
package ws

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"parlor/backend/internal/core"
	"parlor/backend/internal/hub"
	"parlor/backend/internal/models"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	clientBacklog  = 64
	maxMessageSize = 4096
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The browser client is served from arbitrary hosts during development.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Gateway upgrades HTTP requests and pumps events between the socket and
// the core.
type Gateway struct {
	core *core.Core
}

func NewGateway(c *core.Core) *Gateway {
	return &Gateway{core: c}
}

// Handle godoc
// @Summary      Open the real-time event channel
// @Description  Upgrades the connection to a WebSocket carrying JSON events.
// @Tags         events
// @Router       /ws [get]
func (g *Gateway) Handle(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		slog.Warn("websocket upgrade failed", "error", err)
		return
	}

	connID := uuid.NewString()
	client := make(hub.Client, clientBacklog)
	g.core.Connect(connID, client)

	go writePump(conn, client)
	g.readLoop(conn, connID)
}

// readLoop decodes client events until the socket dies. Malformed input
// is dropped; it must never take the process down. A client that stops
// answering pings misses the read deadline and gets reaped here.
func (g *Gateway) readLoop(conn *websocket.Conn, connID string) {
	defer g.core.Disconnect(connID)
	conn.SetReadLimit(maxMessageSize)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var ev models.ClientEvent
		if err := json.Unmarshal(data, &ev); err != nil {
			continue
		}
		g.dispatch(connID, ev)
	}
}

// writePump drains the client channel onto the socket and keeps the
// connection alive with periodic pings. The hub closing the channel is
// the signal to shut the socket down, after any pending forceLogout has
// been flushed.
func writePump(conn *websocket.Conn, client hub.Client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	for {
		select {
		case msg, ok := <-client:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (g *Gateway) dispatch(connID string, ev models.ClientEvent) {
	switch ev.Type {
	case models.EventJoinChat:
		var p models.TokenPayload
		if decode(ev.Payload, &p) {
			g.core.JoinChat(connID, p.Token)
		}
	case models.EventSendMessage:
		var p models.MessagePayload
		if decode(ev.Payload, &p) {
			g.core.SendMessage(p.Token, p.Text)
		}
	case models.EventMoveAvatar:
		var p models.MovePayload
		if decode(ev.Payload, &p) {
			g.core.MoveAvatar(p.Token, p.X, p.Y)
		}
	case models.EventSitOnSeat:
		var p models.SitPayload
		if decode(ev.Payload, &p) {
			g.core.SitOnSeat(p.Token, p.SeatIndex)
		}
	case models.EventStandUp:
		var p models.TokenPayload
		if decode(ev.Payload, &p) {
			g.core.StandUp(p.Token)
		}
	case models.EventKickUser, models.EventBanUser, models.EventUnbanUser,
		models.EventPromoteCoOwner, models.EventDemoteToUser,
		models.EventMakeOwner, models.EventRemoveOwner:
		var p models.TargetPayload
		if decode(ev.Payload, &p) {
			g.core.Moderate(connID, ev.Type, p.Token, p.TargetUser)
		}
	case models.EventGameCreate:
		var p models.GameCreatePayload
		if decode(ev.Payload, &p) {
			g.core.GameCreate(connID, p.Token, p.Type)
		}
	case models.EventJoinGame:
		var p models.TokenPayload
		if decode(ev.Payload, &p) {
			g.core.JoinGame(p.Token)
		}
	case models.EventLockGame:
		var p models.TokenPayload
		if decode(ev.Payload, &p) {
			g.core.LockGame(connID, p.Token)
		}
	case models.EventGameMove:
		var p models.GameMovePayload
		if decode(ev.Payload, &p) {
			g.core.GameMove(p.Token, p.Index)
		}
	default:
		slog.Debug("dropping unknown event", "type", ev.Type)
	}
}

func decode(raw json.RawMessage, dst interface{}) bool {
	if len(raw) == 0 {
		return false
	}
	return json.Unmarshal(raw, dst) == nil
}
