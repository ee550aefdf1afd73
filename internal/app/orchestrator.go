package app

import (
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/Syndicate/internal/core"
	"github.com/dkeye/Syndicate/internal/domain"
	"github.com/dkeye/Syndicate/internal/protocol"
)

// Orchestrator carries out the room operations: it validates against
// the caller's current room, mutates through the room service and fans
// the resulting messages out. Validation failures go back to the
// originating connection only, never to the room.
type Orchestrator struct {
	Registry *Registry
	Store    core.GameStore
	Cast     *Broadcaster
}

func NewOrchestrator(reg *Registry, store core.GameStore, cast *Broadcaster) *Orchestrator {
	return &Orchestrator{Registry: reg, Store: store, Cast: cast}
}

// CreateGame opens a fresh lobby with the caller as host.
func (o *Orchestrator) CreateGame(id core.ConnID, name string, settings domain.Settings) {
	p, err := domain.NewPlayer(name, true)
	if err != nil {
		o.Cast.Send(id, protocol.Err(err.Error()))
		return
	}
	if _, ok := o.Registry.RoomOf(id); ok {
		o.LeaveGame(id)
	}
	room := o.Store.Create(id, settings)
	if err := room.Join(id, p); err != nil {
		o.Cast.Send(id, protocol.Err(err.Error()))
		return
	}
	o.Registry.UpdateRoom(id, room.Code())
	o.Store.BindToken(p.Token, room.Code(), id)
	o.Cast.Send(id, protocol.GameCreated{
		Type:        protocol.TypeGameCreated,
		GameCode:    room.Code(),
		Players:     room.Players(),
		IsHost:      true,
		PlayerToken: p.Token,
	})
}

// JoinGame seats the caller in an existing lobby. Check order: name,
// existence, lobby status, name collision; the first failure wins.
func (o *Orchestrator) JoinGame(id core.ConnID, name, code string) {
	p, err := domain.NewPlayer(name, false)
	if err != nil {
		o.Cast.Send(id, protocol.Err(err.Error()))
		return
	}
	gameCode := domain.GameCode(strings.ToUpper(strings.TrimSpace(code)))
	room, ok := o.Store.Get(gameCode)
	if !ok {
		o.Cast.Send(id, protocol.Err(domain.ErrGameNotFound.Error()))
		return
	}
	// Leave-first applies only when switching rooms; a self-join must
	// keep the target room intact and fall through to the name check.
	if current, ok := o.Registry.RoomOf(id); ok && current != gameCode {
		o.LeaveGame(id)
	}
	if err := room.Join(id, p); err != nil {
		o.Cast.Send(id, protocol.Err(err.Error()))
		return
	}
	o.Registry.UpdateRoom(id, gameCode)
	o.Store.BindToken(p.Token, gameCode, id)
	o.Cast.Send(id, protocol.GameJoined{
		Type:        protocol.TypeGameJoined,
		GameCode:    gameCode,
		Players:     room.Players(),
		IsHost:      false,
		PlayerToken: p.Token,
	})
	o.Cast.Broadcast(room, protocol.PlayerListUpdate{
		Type:    protocol.TypePlayerListUpdate,
		Players: room.Players(),
	})
}

// StartGame deals roles and moves the caller's room to Playing. Each
// player is told their own role only; Syndicate members additionally
// learn their teammates' names.
func (o *Orchestrator) StartGame(id core.ConnID) {
	room, ok := o.roomOf(id)
	if !ok {
		return
	}
	roles, err := room.Start(id)
	if err != nil {
		o.Cast.Send(id, protocol.Err(err.Error()))
		return
	}
	total := room.PlayerCount()
	for member, role := range roles {
		o.Cast.Send(member, protocol.RoleAssigned{
			Type:         protocol.TypeRoleAssigned,
			Role:         role,
			Description:  domain.Describe(role),
			Teammates:    room.Teammates(member),
			PlayerCount:  total,
			ReadyCount:   0,
			TotalPlayers: total,
		})
	}
}

// PlayerReady marks the caller ready and reports the aggregate count to
// the whole room. Unknown room or player is a no-op.
func (o *Orchestrator) PlayerReady(id core.ConnID) {
	room, ok := o.roomOf(id)
	if !ok {
		return
	}
	ready, total, ok := room.MarkReady(id)
	if !ok {
		return
	}
	o.Cast.Broadcast(room, protocol.ReadyUpdate{
		Type:         protocol.TypeReadyUpdate,
		ReadyCount:   ready,
		TotalPlayers: total,
	})
}

// LeaveGame removes the caller from their room. A leaving host tears
// the whole room down; everyone still seated gets a terminal error.
func (o *Orchestrator) LeaveGame(id core.ConnID) {
	code, ok := o.Registry.RoomOf(id)
	if !ok {
		return
	}
	room, ok := o.Store.Get(code)
	if !ok {
		o.Registry.ClearRoom(id)
		return
	}

	if id == room.Host() {
		members := room.ConnIDs()
		o.Store.Remove(code)
		for _, member := range members {
			o.Registry.ClearRoom(member)
			if member != id {
				o.Cast.Send(member, protocol.Err("the host has left the game"))
			}
		}
		log.Info().Str("module", "app.orchestrator").Str("code", string(code)).Msg("room destroyed by host leave")
		return
	}

	removed, ok := room.RemovePlayer(id)
	o.Registry.ClearRoom(id)
	if !ok {
		return
	}
	o.Store.DropToken(removed.Token)
	o.Cast.Broadcast(room, protocol.PlayerListUpdate{
		Type:    protocol.TypePlayerListUpdate,
		Players: room.Players(),
	})
}

// RemovePlayer is the host kicking a seat. The target gets a distinct
// notice, everyone else the shrunken roster.
func (o *Orchestrator) RemovePlayer(id core.ConnID, target core.ConnID) {
	room, ok := o.roomOf(id)
	if !ok {
		return
	}
	if id != room.Host() {
		o.Cast.Send(id, protocol.Err(domain.ErrNotHost.Error()))
		return
	}
	if target == room.Host() {
		// A host removing themselves is a leave, which tears the room
		// down; a hostless room could never be destroyed.
		o.LeaveGame(id)
		return
	}
	removed, ok := room.RemovePlayer(target)
	if !ok {
		o.Cast.Send(id, protocol.Err(domain.ErrPlayerNotFound.Error()))
		return
	}
	o.Store.DropToken(removed.Token)
	o.Cast.Send(target, protocol.RemovedFromGame{
		Type:    protocol.TypeRemovedFromGame,
		Message: "you were removed from the game by the host",
	})
	o.Registry.ClearRoom(target)
	o.Cast.Broadcast(room, protocol.PlayerListUpdate{
		Type:    protocol.TypePlayerListUpdate,
		Players: room.Players(),
	})
}

// OnDisconnect soft-marks the player and tells the room. The record
// stays in the roster; hosting authority is not reassigned even when
// the host drops.
func (o *Orchestrator) OnDisconnect(id core.ConnID) {
	if room, ok := o.roomOf(id); ok {
		if p, marked := room.MarkDisconnected(id); marked {
			o.Cast.Broadcast(room, protocol.PlayerDisconnected{
				Type:       protocol.TypePlayerDisconnected,
				PlayerID:   id,
				PlayerName: p.Name,
			})
		}
	}
	o.Registry.Unbind(id)
}

// roomOf resolves the caller's current room. Absence is a no-op signal,
// not a fault.
func (o *Orchestrator) roomOf(id core.ConnID) (core.GameService, bool) {
	code, ok := o.Registry.RoomOf(id)
	if !ok {
		return nil, false
	}
	return o.Store.Get(code)
}
