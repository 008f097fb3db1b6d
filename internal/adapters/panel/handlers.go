package panel

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/dkraev/parley/internal/app"
	"github.com/dkraev/parley/internal/domain"
	"github.com/dkraev/parley/internal/geometry"
	"github.com/dkraev/parley/internal/interaction"
)

type messagesEnvelope struct {
	Type     string           `json:"type"`
	Messages []domain.Message `json:"messages"`
}

type closedEnvelope struct {
	Type   string `json:"type"`
	Reason string `json:"reason"`
}

type geometryEnvelope struct {
	Type     string        `json:"type"`
	Rect     geometry.Rect `json:"rect"`
	Captured bool          `json:"captured"`
}

type roomStateEnvelope struct {
	Type     string           `json:"type"`
	Room     domain.Room      `json:"room"`
	Messages []domain.Message `json:"messages"`
	Rect     geometry.Rect    `json:"rect"`
}

func (c *panelConn) sendError(msg string) {
	c.sendJSON(map[string]string{"type": "error", "error": msg})
}

func (c *panelConn) sendNotice(text string) {
	c.sendJSON(map[string]string{"type": "notice", "text": text})
}

func (c *panelConn) sendGeometry() {
	c.sendJSON(geometryEnvelope{Type: "geometry", Rect: c.geo, Captured: c.gesture.Captured()})
}

func (ctl *PanelWSController) handleOpen(ctx context.Context, c *panelConn, data []byte) {
	var p struct {
		Type     string            `json:"type"`
		Room     string            `json:"room"`
		Viewport geometry.Viewport `json:"viewport"`
	}
	if err := json.Unmarshal(data, &p); err != nil || p.Room == "" ||
		p.Viewport.Width <= 0 || p.Viewport.Height <= 0 {
		c.sendError("bad_payload")
		return
	}

	res, err := ctl.Orch.OpenRoom(ctx, c.sid, c.user, domain.RoomID(p.Room), c)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrUnauthorized):
			c.NotifyClosed("unauthorized")
		case errors.Is(err, domain.ErrForbidden):
			c.NotifyClosed("forbidden")
		case errors.Is(err, domain.ErrNotFound):
			c.sendError("room not found")
		default:
			c.sendNotice("could not open the room, try again")
		}
		log.Warn().Err(err).Str("module", "panel").Str("sid", string(c.sid)).Str("room", p.Room).Msg("open failed")
		return
	}

	c.vp = p.Viewport
	c.geo = geometry.CenterInViewport(ctl.DefaultSize, c.vp)
	c.gesture = interaction.State{}
	c.roomOpen.Store(true)

	c.sendJSON(roomStateEnvelope{
		Type:     "room_state",
		Room:     res.Room,
		Messages: res.Messages,
		Rect:     c.geo,
	})
}

func (ctl *PanelWSController) handleClose(c *panelConn) {
	if !c.roomOpen.Load() {
		return
	}
	ctl.Orch.CloseRoom(c.sid)
	c.gesture = interaction.State{}
	c.NotifyClosed("closed")
}

func (ctl *PanelWSController) handleViewport(c *panelConn, data []byte) {
	var p struct {
		Type   string  `json:"type"`
		Width  float64 `json:"width"`
		Height float64 `json:"height"`
	}
	if err := json.Unmarshal(data, &p); err != nil || p.Width <= 0 || p.Height <= 0 {
		c.sendError("bad_payload")
		return
	}
	c.vp = geometry.Viewport{Width: p.Width, Height: p.Height}
	if !c.roomOpen.Load() {
		return
	}
	// The host window shrank or grew: drag by zero re-clamps the panel into
	// the new viewport.
	c.geo = geometry.DragTo(c.geo, geometry.Point{}, c.vp)
	c.sendGeometry()
}

func (ctl *PanelWSController) handlePointerDown(c *panelConn, data []byte) {
	var p struct {
		Type   string  `json:"type"`
		Region string  `json:"region"`
		Edge   string  `json:"edge"`
		X      float64 `json:"x"`
		Y      float64 `json:"y"`
	}
	if err := json.Unmarshal(data, &p); err != nil {
		c.sendError("bad_payload")
		return
	}
	region, ok := interaction.ParseRegion(p.Region)
	if !ok {
		c.sendError("bad_region")
		return
	}
	edge := geometry.EdgeNone
	if region == interaction.RegionHandle {
		if edge, ok = geometry.ParseEdge(p.Edge); !ok {
			c.sendError("bad_edge")
			return
		}
	}
	ctl.step(c, interaction.PointerDown{Region: region, Edge: edge, At: geometry.Point{X: p.X, Y: p.Y}})
}

func (ctl *PanelWSController) handlePointerMove(c *panelConn, data []byte) {
	var p struct {
		Type string  `json:"type"`
		X    float64 `json:"x"`
		Y    float64 `json:"y"`
	}
	if err := json.Unmarshal(data, &p); err != nil {
		c.sendError("bad_payload")
		return
	}
	ctl.step(c, interaction.PointerMove{At: geometry.Point{X: p.X, Y: p.Y}})
}

func (ctl *PanelWSController) handlePointerUp(c *panelConn) {
	ctl.step(c, interaction.PointerUp{})
}

func (ctl *PanelWSController) handleBackdrop(c *panelConn) {
	ctl.step(c, interaction.BackdropClick{})
}

// step advances the gesture machine and applies its effect. Pointer events
// for a closed panel are dropped.
func (ctl *PanelWSController) step(c *panelConn, ev interaction.Event) {
	if !c.roomOpen.Load() {
		return
	}
	next, eff := ctl.Reducer.Reduce(c.gesture, ev, c.geo, c.vp)
	captureChanged := next.Captured() != c.gesture.Captured()
	c.gesture = next

	if eff.Apply != nil {
		c.geo = *eff.Apply
		c.sendGeometry()
	} else if captureChanged {
		c.sendGeometry()
	}
	if eff.Close {
		ctl.handleClose(c)
	}
}

func (ctl *PanelWSController) handlePost(ctx context.Context, c *panelConn, data []byte) {
	var p struct {
		Type    string `json:"type"`
		Content string `json:"content"`
	}
	if err := json.Unmarshal(data, &p); err != nil {
		c.sendError("bad_payload")
		return
	}

	_, err := ctl.Orch.PostMessage(ctx, c.sid, p.Content)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrUnauthorized):
			ctl.Orch.CloseRoom(c.sid)
			c.NotifyClosed("unauthorized")
		case errors.Is(err, domain.ErrForbidden):
			c.sendNotice("you are not allowed to post in this room")
		case errors.Is(err, app.ErrRateLimited):
			c.sendNotice("you are posting too fast, slow down")
		case errors.Is(err, domain.ErrContentEmpty), errors.Is(err, domain.ErrContentTooLong):
			c.sendNotice("message rejected: " + err.Error())
		case domain.IsNetwork(err):
			c.sendNotice("message not sent, check your connection")
		default:
			c.sendError("post failed")
		}
		return
	}

	msgs, err := ctl.Orch.Snapshot(c.sid)
	if err != nil {
		return
	}
	c.NotifyMessages(msgs)
}

func (ctl *PanelWSController) handleDelete(ctx context.Context, c *panelConn, data []byte) {
	var p struct {
		Type string `json:"type"`
		ID   string `json:"id"`
	}
	if err := json.Unmarshal(data, &p); err != nil || p.ID == "" {
		c.sendError("bad_payload")
		return
	}

	err := ctl.Orch.DeleteMessage(ctx, c.sid, domain.MessageID(p.ID))
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrForbidden):
			c.sendNotice("you can only remove your latest message")
		case errors.Is(err, domain.ErrNotFound):
			c.sendNotice("that message is already gone")
		case domain.IsNetwork(err):
			c.sendNotice("delete failed, check your connection")
		default:
			c.sendError("delete failed")
		}
		// Fall through to a snapshot push either way: the refreshed list is
		// worth showing after a NotFound.
	}

	msgs, serr := ctl.Orch.Snapshot(c.sid)
	if serr != nil {
		return
	}
	c.NotifyMessages(msgs)
}
