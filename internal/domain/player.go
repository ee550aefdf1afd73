// Package domain contains entity without logic, just meta-data
package domain

import (
	"errors"
	"strings"

	"github.com/google/uuid"
)

const MaxPlayerNameLen = 24

var (
	ErrNameEmpty   = errors.New("player name empty")
	ErrNameTooLong = errors.New("player name too long")
	ErrNameTaken   = errors.New("name already taken")
)

// Player is a member of a single GameRoom. Owned by that room,
// keyed there by connection id; never shared between rooms.
type Player struct {
	Name      string
	IsHost    bool
	Connected bool
	Alive     bool
	Role      RoleKind
	Token     string
}

// NewPlayer validates the display name and mints the player token.
func NewPlayer(name string, host bool) (*Player, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrNameEmpty
	}
	if len(name) > MaxPlayerNameLen {
		return nil, ErrNameTooLong
	}
	return &Player{
		Name:      name,
		IsHost:    host,
		Connected: true,
		Alive:     true,
		Token:     uuid.NewString(),
	}, nil
}
