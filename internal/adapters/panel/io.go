package panel

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

func (ctl *PanelWSController) writePump(ctx context.Context, c *panelConn) {
	for {
		select {
		case <-ctx.Done():
			log.Info().Str("module", "panel").Msg("writePump ctx done")
			return
		case data, ok := <-c.send:
			if !ok {
				log.Warn().Str("module", "panel").Msg("writePump channel closed")
				return
			}
			if err := c.conn.SetWriteDeadline(time.Now().Add(5 * time.Second)); err != nil {
				log.Error().Err(err).Str("module", "panel").Msg("writePump set deadline")
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Error().Err(err).Str("module", "panel").Msg("writePump write error")
				return
			}
		}
	}
}

func (ctl *PanelWSController) readPump(ctx context.Context, cancel context.CancelFunc, c *panelConn) {
	defer func() {
		log.Info().Str("module", "panel").Str("sid", string(c.sid)).Msg("readPump closing")
		ctl.Orch.CloseRoom(c.sid)
		cancel()
		c.Close()
	}()

	for {
		select {
		case <-ctx.Done():
			log.Info().Str("module", "panel").Str("sid", string(c.sid)).Msg("readPump ctx done")
			return
		default:
			_, data, err := c.conn.ReadMessage()
			if err != nil {
				log.Debug().Err(err).Str("module", "panel").Str("sid", string(c.sid)).Msg("readPump read error")
				return
			}
			ctl.handleEnvelope(ctx, c, data)
		}
	}
}

func (ctl *PanelWSController) handleEnvelope(ctx context.Context, c *panelConn, data []byte) {
	var env struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &env); err != nil {
		log.Error().Err(err).Str("module", "panel").Msg("bad json")
		return
	}

	switch env.Type {
	case "open":
		ctl.handleOpen(ctx, c, data)
	case "close":
		ctl.handleClose(c)
	case "viewport":
		ctl.handleViewport(c, data)
	case "pointer_down":
		ctl.handlePointerDown(c, data)
	case "pointer_move":
		ctl.handlePointerMove(c, data)
	case "pointer_up":
		ctl.handlePointerUp(c)
	case "backdrop":
		ctl.handleBackdrop(c)
	case "post":
		ctl.handlePost(ctx, c, data)
	case "delete":
		ctl.handleDelete(ctx, c, data)
	case "ping":
		c.sendJSON(map[string]string{"type": "pong"})
	default:
		log.Warn().Str("module", "panel").Str("type", env.Type).Msg("unknown envelope")
	}
}
