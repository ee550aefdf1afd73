package app

import (
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/Syndicate/internal/core"
	"github.com/dkeye/Syndicate/internal/domain"
)

type connEntry struct {
	Code domain.GameCode
	Conn core.SignalConnection
}

// Registry maps live connections to their send capability and, once the
// player enters a room, to that room's code. Rooms never hold
// connections; everything transport-side resolves through here.
type Registry struct {
	mu    sync.RWMutex
	conns map[core.ConnID]*connEntry
}

func NewRegistry() *Registry {
	return &Registry{conns: make(map[core.ConnID]*connEntry)}
}

func (r *Registry) Bind(id core.ConnID, conn core.SignalConnection) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.conns[id] = &connEntry{Conn: conn}
	log.Info().Str("module", "app.registry").Uint64("conn", uint64(id)).Msg("bound connection")
}

// RoomOf reports the caller's current room. Absence is not a fault, it
// means the connection has no active room.
func (r *Registry) RoomOf(id core.ConnID) (domain.GameCode, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.conns[id]
	if !ok || entry.Code == "" {
		return "", false
	}
	return entry.Code, true
}

func (r *Registry) UpdateRoom(id core.ConnID, code domain.GameCode) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.conns[id]
	if !ok {
		return false
	}
	entry.Code = code
	log.Info().Str("module", "app.registry").Uint64("conn", uint64(id)).Str("code", string(code)).Msg("updated room")
	return true
}

// ClearRoom drops the room association but keeps the connection bound.
func (r *Registry) ClearRoom(id core.ConnID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if entry, ok := r.conns[id]; ok {
		entry.Code = ""
	}
}

func (r *Registry) Conn(id core.ConnID) (core.SignalConnection, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.conns[id]
	if !ok || entry.Conn == nil {
		return nil, false
	}
	return entry.Conn, true
}

func (r *Registry) Unbind(id core.ConnID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.conns, id)
	log.Info().Str("module", "app.registry").Uint64("conn", uint64(id)).Msg("unbound connection")
}

func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns)
}
