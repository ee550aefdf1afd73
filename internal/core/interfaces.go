package core

import "github.com/dkeye/Syndicate/internal/domain"

// Frame is a serialized outbound message.
type Frame []byte

// ConnID identifies one transport connection. Minted by the adapter,
// opaque to the core.
type ConnID uint64

// SignalConnection abstracts the messaging transport.
// Owned by the adapter; the adapter must Close() it.
type SignalConnection interface {
	TrySend(Frame) error
	Close()
}

// PlayerDTO is a read-only roster entry for the wire (no transport fields).
type PlayerDTO struct {
	ID        ConnID `json:"id"`
	Name      string `json:"name"`
	Connected bool   `json:"connected"`
	Alive     bool   `json:"alive"`
	IsHost    bool   `json:"isHost"`
}

// GameService is the core-facing API of a room. It owns the membership
// set and the role state but never touches transport resources.
// Cross-references to connections are plain ConnIDs resolved through the
// registry by the caller.
type GameService interface {
	Code() domain.GameCode
	Host() ConnID
	Status() domain.Status
	Settings() domain.Settings
	PlayerCount() int
	Players() []PlayerDTO
	Player(id ConnID) (domain.Player, bool)
	ConnIDs() []ConnID

	Join(id ConnID, p *domain.Player) error
	Start(caller ConnID) (map[ConnID]domain.RoleKind, error)
	MarkReady(id ConnID) (ready, total int, ok bool)
	ReadyCount() (ready, total int)
	RemovePlayer(id ConnID) (domain.Player, bool)
	MarkDisconnected(id ConnID) (domain.Player, bool)
	Teammates(of ConnID) []string
}

type RoomInfo struct {
	Code        domain.GameCode `json:"code"`
	PlayerCount int             `json:"playerCount"`
	Status      domain.Status   `json:"status"`
}

// GameStore owns all active rooms, keyed by code, plus the write-only
// token index.
type GameStore interface {
	Create(host ConnID, settings domain.Settings) GameService
	Get(code domain.GameCode) (GameService, bool)
	Remove(code domain.GameCode)
	List() []RoomInfo

	BindToken(token string, code domain.GameCode, conn ConnID)
	DropToken(token string)
}
