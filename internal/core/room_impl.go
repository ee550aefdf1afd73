package core

import (
	"strings"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/Syndicate/internal/domain"
)

// gameRoom is a threadsafe in-memory room. Run-to-completion per
// operation: every check-then-mutate sequence happens under the room
// mutex, so membership checks and the Lobby->Playing transition are
// atomic even on a parallel runtime.
type gameRoom struct {
	code domain.GameCode
	host ConnID

	mu        sync.RWMutex
	hostToken string
	players   map[ConnID]*domain.Player
	order     []ConnID
	settings  domain.Settings
	status    domain.Status
	round     int
	roles     map[ConnID]domain.RoleKind
	ready     map[ConnID]bool
}

func NewGameRoom(code domain.GameCode, host ConnID, settings domain.Settings) GameService {
	return &gameRoom{
		code:     code,
		host:     host,
		players:  make(map[ConnID]*domain.Player),
		settings: settings,
		status:   domain.StatusLobby,
		ready:    make(map[ConnID]bool),
	}
}

func (r *gameRoom) Code() domain.GameCode { return r.code }
func (r *gameRoom) Host() ConnID          { return r.host }

func (r *gameRoom) Status() domain.Status {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.status
}

func (r *gameRoom) Settings() domain.Settings {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.settings
}

func (r *gameRoom) PlayerCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.players)
}

// Players returns the roster in join order.
func (r *gameRoom) Players() []PlayerDTO {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]PlayerDTO, 0, len(r.order))
	for _, id := range r.order {
		p := r.players[id]
		out = append(out, PlayerDTO{
			ID:        id,
			Name:      p.Name,
			Connected: p.Connected,
			Alive:     p.Alive,
			IsHost:    p.IsHost,
		})
	}
	return out
}

func (r *gameRoom) Player(id ConnID) (domain.Player, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.players[id]
	if !ok {
		return domain.Player{}, false
	}
	return *p, true
}

func (r *gameRoom) ConnIDs() []ConnID {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]ConnID, len(r.order))
	copy(out, r.order)
	return out
}

// Join attaches a validated player. Rejects once the game has started,
// rejects a connection that already holds a seat, and rejects display
// names already present in the room, compared case-insensitively.
func (r *gameRoom) Join(id ConnID, p *domain.Player) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.status != domain.StatusLobby {
		return domain.ErrAlreadyStarted
	}
	if _, seated := r.players[id]; seated {
		return domain.ErrAlreadyInGame
	}
	for _, member := range r.players {
		if strings.EqualFold(member.Name, p.Name) {
			return domain.ErrNameTaken
		}
	}
	p.IsHost = id == r.host
	if p.IsHost {
		r.hostToken = p.Token
	}
	r.players[id] = p
	r.order = append(r.order, id)
	log.Info().Str("module", "core.room").Str("code", string(r.code)).Uint64("conn", uint64(id)).Str("name", p.Name).Msg("player joined")
	return nil
}

// Start moves the room Lobby -> Playing and deals roles exactly once.
// Only the host may start, and only with a full enough lobby.
func (r *gameRoom) Start(caller ConnID) (map[ConnID]domain.RoleKind, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if caller != r.host {
		return nil, domain.ErrNotHost
	}
	if r.status != domain.StatusLobby {
		return nil, domain.ErrNotLobby
	}
	if len(r.players) < domain.MinPlayers {
		return nil, domain.ErrTooFewPlayers
	}

	ids := make([]ConnID, len(r.order))
	copy(ids, r.order)
	roles := AssignRoles(ids, r.settings)
	for id, role := range roles {
		r.players[id].Role = role
	}
	r.roles = roles
	r.status = domain.StatusPlaying
	r.round = 1
	r.ready = make(map[ConnID]bool)

	out := make(map[ConnID]domain.RoleKind, len(roles))
	for id, role := range roles {
		out[id] = role
	}
	log.Info().Str("module", "core.room").Str("code", string(r.code)).Int("players", len(ids)).Int("syndicate", SyndicateCount(len(ids))).Msg("game started")
	return out, nil
}

// MarkReady is an idempotent no-op for unknown players.
func (r *gameRoom) MarkReady(id ConnID) (ready, total int, ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.players[id]; !ok {
		return 0, 0, false
	}
	r.ready[id] = true
	ready, total = r.readyCountLocked()
	return ready, total, true
}

func (r *gameRoom) ReadyCount() (ready, total int) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.readyCountLocked()
}

func (r *gameRoom) readyCountLocked() (ready, total int) {
	for id := range r.players {
		if r.ready[id] {
			ready++
		}
	}
	return ready, len(r.players)
}

// RemovePlayer hard-removes the record (explicit leave or host kick).
func (r *gameRoom) RemovePlayer(id ConnID) (domain.Player, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.players[id]
	if !ok {
		return domain.Player{}, false
	}
	removed := *p
	delete(r.players, id)
	delete(r.ready, id)
	delete(r.roles, id)
	for i, oid := range r.order {
		if oid == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	log.Info().Str("module", "core.room").Str("code", string(r.code)).Uint64("conn", uint64(id)).Msg("player removed")
	return removed, true
}

// MarkDisconnected soft-removes: the record stays, only the connected
// flag flips. Player count and roster entries are unchanged.
func (r *gameRoom) MarkDisconnected(id ConnID) (domain.Player, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.players[id]
	if !ok {
		return domain.Player{}, false
	}
	p.Connected = false
	return *p, true
}

// Teammates lists the other Syndicate members' names, but only for a
// Syndicate caller. Everyone else learns nothing.
func (r *gameRoom) Teammates(of ConnID) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.roles[of] != domain.RoleSyndicate {
		return nil
	}
	var names []string
	for _, id := range r.order {
		if id != of && r.roles[id] == domain.RoleSyndicate {
			names = append(names, r.players[id].Name)
		}
	}
	return names
}
