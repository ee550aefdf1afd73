package signal

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/Syndicate/internal/core"
	"github.com/dkeye/Syndicate/internal/domain"
	"github.com/dkeye/Syndicate/internal/protocol"
)

func (ctl *GameWSController) handleCreateGame(
	id core.ConnID,
	c *WsSignalConn,
	data []byte,
) {
	var p protocol.CreateGamePayload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad createGame payload")
		return
	}
	if !ctl.Limiter.Allow(id) {
		ctl.sendJSON(c, protocol.Err("too many games created, try again later"))
		return
	}
	ctl.Orch.CreateGame(id, p.PlayerName, domain.Settings{
		EyeWitness: p.EyeWitness,
		BodyGuard:  p.BodyGuard,
	})
}

func (ctl *GameWSController) handleJoinGame(
	id core.ConnID,
	c *WsSignalConn,
	data []byte,
) {
	var p protocol.JoinGamePayload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad joinGame payload")
		return
	}
	ctl.Orch.JoinGame(id, p.PlayerName, p.GameCode)
}

func (ctl *GameWSController) handleRemovePlayer(
	id core.ConnID,
	c *WsSignalConn,
	data []byte,
) {
	var p protocol.RemovePlayerPayload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad removePlayer payload")
		return
	}
	ctl.Orch.RemovePlayer(id, p.TargetID)
}
