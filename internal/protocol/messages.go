// Package protocol is the closed wire catalog: one struct per inbound
// action payload and per outbound message. Handlers never see loose
// maps; payloads are unmarshalled into these at the boundary.
package protocol

import (
	"github.com/dkeye/Syndicate/internal/core"
	"github.com/dkeye/Syndicate/internal/domain"
)

// Inbound actions.
const (
	ActionCreateGame   = "createGame"
	ActionJoinGame     = "joinGame"
	ActionStartGame    = "startGame"
	ActionPlayerReady  = "playerReady"
	ActionLeaveGame    = "leaveGame"
	ActionRemovePlayer = "removePlayer"
	ActionPing         = "ping"
)

// Envelope carries only the routing tag; the payload is re-parsed per
// action.
type Envelope struct {
	Action string `json:"action"`
}

// KnownAction reports whether the routing tag belongs to the closed set.
func KnownAction(action string) bool {
	switch action {
	case ActionCreateGame, ActionJoinGame, ActionStartGame,
		ActionPlayerReady, ActionLeaveGame, ActionRemovePlayer, ActionPing:
		return true
	}
	return false
}

type CreateGamePayload struct {
	Action     string `json:"action"`
	PlayerName string `json:"playerName"`
	EyeWitness bool   `json:"eyeWitness"`
	BodyGuard  bool   `json:"bodyGuard"`
}

type JoinGamePayload struct {
	Action     string `json:"action"`
	PlayerName string `json:"playerName"`
	GameCode   string `json:"gameCode"`
}

type RemovePlayerPayload struct {
	Action   string      `json:"action"`
	TargetID core.ConnID `json:"targetId"`
}

// Outbound message types.
const (
	TypeGameCreated        = "gameCreated"
	TypeGameJoined         = "gameJoined"
	TypePlayerListUpdate   = "playerListUpdate"
	TypeError              = "error"
	TypeRoleAssigned       = "roleAssigned"
	TypeReadyUpdate        = "readyUpdate"
	TypePlayerDisconnected = "playerDisconnected"
	TypeRemovedFromGame    = "removedFromGame"
	TypePong               = "pong"
)

type GameCreated struct {
	Type        string           `json:"type"`
	GameCode    domain.GameCode  `json:"gameCode"`
	Players     []core.PlayerDTO `json:"players"`
	IsHost      bool             `json:"isHost"`
	PlayerToken string           `json:"playerToken"`
}

type GameJoined struct {
	Type        string           `json:"type"`
	GameCode    domain.GameCode  `json:"gameCode"`
	Players     []core.PlayerDTO `json:"players"`
	IsHost      bool             `json:"isHost"`
	PlayerToken string           `json:"playerToken"`
}

type PlayerListUpdate struct {
	Type    string           `json:"type"`
	Players []core.PlayerDTO `json:"players"`
}

type ErrorMessage struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type RoleAssigned struct {
	Type         string          `json:"type"`
	Role         domain.RoleKind `json:"role"`
	Description  domain.RoleInfo `json:"description"`
	Teammates    []string        `json:"teammates,omitempty"`
	PlayerCount  int             `json:"playerCount"`
	ReadyCount   int             `json:"readyCount"`
	TotalPlayers int             `json:"totalPlayers"`
}

type ReadyUpdate struct {
	Type         string `json:"type"`
	ReadyCount   int    `json:"readyCount"`
	TotalPlayers int    `json:"totalPlayers"`
}

type PlayerDisconnected struct {
	Type       string      `json:"type"`
	PlayerID   core.ConnID `json:"playerId"`
	PlayerName string      `json:"playerName"`
}

type RemovedFromGame struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type Pong struct {
	Type string `json:"type"`
}

// Err wraps a validation failure for the originating connection only.
func Err(message string) ErrorMessage {
	return ErrorMessage{Type: TypeError, Message: message}
}
