package signal

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Syndicate/internal/core"
	"github.com/dkeye/Syndicate/internal/metrics"
	"github.com/dkeye/Syndicate/internal/protocol"
)

func (ctl *GameWSController) writePump(ctx context.Context, c *WsSignalConn) {
	ticker := time.NewTicker(ctl.PingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			log.Info().Str("module", "signal").Msg("writePump ctx done")
			return
		case <-ticker.C:
			if err := c.conn.SetWriteDeadline(time.Now().Add(5 * time.Second)); err != nil {
				return
			}
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				log.Warn().Err(err).Str("module", "signal").Msg("writePump ping")
				return
			}
		case data, ok := <-c.send:
			if !ok {
				log.Warn().Str("module", "signal").Msg("writePump channel closed")
				return
			}
			if err := c.conn.SetWriteDeadline(time.Now().Add(5 * time.Second)); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump set deadline")
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump write error")
				return
			}
		}
	}
}

func (ctl *GameWSController) readPump(ctx context.Context, cancel context.CancelFunc, id core.ConnID, c *WsSignalConn) {
	defer func() {
		log.Info().Str("module", "signal").Uint64("conn", uint64(id)).Msg("readPump closing")
		cancel()
		ctl.Orch.OnDisconnect(id)
		ctl.Limiter.Forget(id)
		metrics.ActiveConnections.Dec()
		c.Close()
	}()

	c.conn.SetReadLimit(ctl.ReadLimit)
	for {
		select {
		case <-ctx.Done():
			log.Info().Str("module", "signal").Uint64("conn", uint64(id)).Msg("readPump ctx done")
			return
		default:
			_, data, err := c.conn.ReadMessage()
			if err != nil {
				log.Info().Err(err).Str("module", "signal").Uint64("conn", uint64(id)).Msg("readPump read error")
				return
			}
			ctl.handleMessage(id, c, data)
		}
	}
}

// handleMessage routes one inbound envelope. Malformed payloads are
// dropped with no reply; unknown actions are logged and ignored.
func (ctl *GameWSController) handleMessage(id core.ConnID, c *WsSignalConn, data []byte) {
	var env protocol.Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		log.Error().Err(err).Str("module", "signal").Uint64("conn", uint64(id)).Msg("bad json")
		return
	}
	if !protocol.KnownAction(env.Action) {
		metrics.MessagesIn.WithLabelValues("unknown").Inc()
		log.Warn().Str("module", "signal").Str("action", env.Action).Msg("unknown action")
		return
	}
	metrics.MessagesIn.WithLabelValues(env.Action).Inc()

	switch env.Action {
	case protocol.ActionCreateGame:
		ctl.handleCreateGame(id, c, data)
	case protocol.ActionJoinGame:
		ctl.handleJoinGame(id, c, data)
	case protocol.ActionStartGame:
		ctl.Orch.StartGame(id)
	case protocol.ActionPlayerReady:
		ctl.Orch.PlayerReady(id)
	case protocol.ActionLeaveGame:
		ctl.Orch.LeaveGame(id)
	case protocol.ActionRemovePlayer:
		ctl.handleRemovePlayer(id, c, data)
	case protocol.ActionPing:
		ctl.sendJSON(c, protocol.Pong{Type: protocol.TypePong})
	}
}

func (ctl *GameWSController) sendJSON(c *WsSignalConn, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("sendJSON marshal")
		return
	}
	_ = c.TrySend(b)
}
