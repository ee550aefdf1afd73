package app

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/Syndicate/internal/core"
	"github.com/dkeye/Syndicate/internal/metrics"
)

// Broadcaster fans an outbound message out to a room. The message is
// marshalled exactly once; each connected member gets at most one send
// attempt and one member's failure never blocks the rest.
type Broadcaster struct {
	Registry *Registry
	Policy   Policy
}

func NewBroadcaster(reg *Registry, policy Policy) *Broadcaster {
	return &Broadcaster{Registry: reg, Policy: policy}
}

// Send unicasts to one connection. Missing connections are a no-op.
func (b *Broadcaster) Send(id core.ConnID, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Str("module", "app.broadcast").Msg("marshal")
		return
	}
	conn, ok := b.Registry.Conn(id)
	if !ok {
		return
	}
	if err := conn.TrySend(core.Frame(data)); err != nil {
		metrics.DeliveryFailures.Inc()
		log.Warn().Err(err).Str("module", "app.broadcast").Uint64("conn", uint64(id)).Msg("unicast dropped")
	}
}

// Broadcast delivers v to every member of room whose connected flag is
// still true.
func (b *Broadcaster) Broadcast(room core.GameService, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Str("module", "app.broadcast").Msg("marshal")
		return
	}
	frame := core.Frame(data)
	sent := 0
	for _, p := range room.Players() {
		if !p.Connected {
			continue
		}
		conn, ok := b.Registry.Conn(p.ID)
		if !ok {
			continue
		}
		if err := conn.TrySend(frame); err != nil {
			metrics.DeliveryFailures.Inc()
			log.Warn().Err(err).Str("module", "app.broadcast").Str("code", string(room.Code())).Uint64("conn", uint64(p.ID)).Msg("recipient dropped")
			if b.Policy != nil && b.Policy.OnBackPressure(room, p.ID) == KickMember {
				conn.Close()
			}
			continue
		}
		sent++
	}
	log.Debug().Str("module", "app.broadcast").Str("code", string(room.Code())).Int("sent_to", sent).Msg("broadcast result")
}
