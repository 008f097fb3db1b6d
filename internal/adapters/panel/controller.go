// Package panel is the websocket adapter between the browser's floating
// room panel and the gateway. The client sends pointer and user events as
// JSON envelopes; the gateway owns geometry, the gesture machine, the
// thread and the poll cycle, and pushes state back.
package panel

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"sync/atomic"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/dkraev/parley/internal/app"
	"github.com/dkraev/parley/internal/core"
	"github.com/dkraev/parley/internal/domain"
	"github.com/dkraev/parley/internal/geometry"
	"github.com/dkraev/parley/internal/interaction"
)

var ErrBackpressure = errors.New("backpressure")

type PanelWSController struct {
	Orch        *app.Orchestrator
	Reducer     interaction.Reducer
	DefaultSize geometry.Size
}

func NewPanelWSController(orch *app.Orchestrator, min, def geometry.Size) *PanelWSController {
	return &PanelWSController{
		Orch:        orch,
		Reducer:     interaction.Reducer{Min: min},
		DefaultSize: def,
	}
}

// panelConn wraps one websocket connection plus the panel state it owns.
// The geometry, viewport and gesture state are touched only by the read
// pump, which handles events strictly in arrival order — that is the
// single-threaded event-loop model the panel logic assumes.
type panelConn struct {
	conn *websocket.Conn
	send chan []byte

	mu     sync.RWMutex
	closed bool

	sid  core.SessionID
	user domain.Identity

	geo     geometry.Rect
	vp      geometry.Viewport
	gesture interaction.State

	// roomOpen is flipped by the read pump on open/close, and cleared by
	// NotifyClosed, which the poll goroutine calls on terminal errors.
	roomOpen atomic.Bool
}

func (c *panelConn) TrySend(b []byte) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return errors.New("connection closed")
	}
	select {
	case c.send <- b:
	default:
		return ErrBackpressure
	}
	return nil
}

func (c *panelConn) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.send)
	_ = c.conn.Close()
	c.mu.Unlock()
}

// NotifyMessages implements core.PanelNotifier; called from the poll
// goroutine when a cycle changed the thread.
func (c *panelConn) NotifyMessages(msgs []domain.Message) {
	c.sendJSON(messagesEnvelope{Type: "messages", Messages: msgs})
}

// NotifyClosed implements core.PanelNotifier. The room is gone whoever
// decided it, so later pointer events must find the panel closed.
func (c *panelConn) NotifyClosed(reason string) {
	c.roomOpen.Store(false)
	c.sendJSON(closedEnvelope{Type: "closed", Reason: reason})
}

func (c *panelConn) sendJSON(v any) {
	b, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Str("module", "panel").Msg("sendJSON marshal")
		return
	}
	_ = c.TrySend(b)
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// HandlePanel upgrades the connection and runs the pumps. The identity and
// client token are placed on the gin context by the router middleware.
func (ctl *PanelWSController) HandlePanel(ctx context.Context, c *gin.Context) {
	sid := core.SessionID(c.GetString("client_token"))
	userVal, ok := c.Get("identity")
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "no session identity"})
		return
	}
	user := userVal.(domain.Identity)

	log.Info().Str("module", "panel").Str("sid", string(sid)).Str("email", user.Email).Msg("new panel connection")

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Str("module", "panel").Msg("ws upgrade")
		return
	}

	conn := &panelConn{
		conn: ws,
		send: make(chan []byte, 32),
		sid:  sid,
		user: user,
	}

	ctx, cancel := context.WithCancel(ctx)
	go ctl.writePump(ctx, conn)
	go ctl.readPump(ctx, cancel, conn)
}
