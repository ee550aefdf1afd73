package domain

import "errors"

type GameCode string

const GameCodeLen = 4

// Status is the room lifecycle phase. Lobby -> Playing only; a room in
// Playing never returns to Lobby, it can only be destroyed.
type Status string

const (
	StatusLobby   Status = "lobby"
	StatusPlaying Status = "playing"
)

// MinPlayers is the smallest party the role distribution makes sense for.
const MinPlayers = 5

// Settings are the host-chosen options fixed at room creation.
type Settings struct {
	EyeWitness bool `json:"eyeWitness"`
	BodyGuard  bool `json:"bodyGuard"`
}

var (
	ErrGameNotFound   = errors.New("game not found")
	ErrAlreadyStarted = errors.New("game already started")
	ErrAlreadyInGame  = errors.New("already in this game")
	ErrNotLobby       = errors.New("game is not in lobby")
	ErrNotHost        = errors.New("only the host can do that")
	ErrTooFewPlayers  = errors.New("not enough players")
	ErrPlayerNotFound = errors.New("player not found")
)
