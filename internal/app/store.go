package app

import (
	"crypto/rand"
	"math/big"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/Syndicate/internal/core"
	"github.com/dkeye/Syndicate/internal/domain"
	"github.com/dkeye/Syndicate/internal/metrics"
)

// codeAlphabet leaves out I, O, 0 and 1 so a code read aloud across the
// room cannot be mistyped.
const codeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// TokenRef resolves a player token back to its seat. Tokens are minted
// at join time and only ever written; there is no resume-by-token path.
type TokenRef struct {
	Code domain.GameCode
	Conn core.ConnID
}

// GameStoreImpl owns every active room. Code allocation and room
// add/remove share one lock so a generated code can never collide with
// a room created concurrently.
type GameStoreImpl struct {
	mu     sync.RWMutex
	rooms  map[domain.GameCode]core.GameService
	tokens map[string]TokenRef
}

func NewGameStore() *GameStoreImpl {
	return &GameStoreImpl{
		rooms:  make(map[domain.GameCode]core.GameService),
		tokens: make(map[string]TokenRef),
	}
}

func (s *GameStoreImpl) Create(host core.ConnID, settings domain.Settings) core.GameService {
	s.mu.Lock()
	defer s.mu.Unlock()
	code := s.freeCodeLocked()
	room := core.NewGameRoom(code, host, settings)
	s.rooms[code] = room
	metrics.ActiveRooms.Set(float64(len(s.rooms)))
	log.Info().Str("module", "app.store").Str("code", string(code)).Uint64("host", uint64(host)).Msg("room created")
	return room
}

func (s *GameStoreImpl) Get(code domain.GameCode) (core.GameService, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	room, ok := s.rooms[code]
	return room, ok
}

func (s *GameStoreImpl) Remove(code domain.GameCode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.rooms, code)
	for token, ref := range s.tokens {
		if ref.Code == code {
			delete(s.tokens, token)
		}
	}
	metrics.ActiveRooms.Set(float64(len(s.rooms)))
	log.Info().Str("module", "app.store").Str("code", string(code)).Msg("room removed")
}

func (s *GameStoreImpl) List() []core.RoomInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]core.RoomInfo, 0, len(s.rooms))
	for code, room := range s.rooms {
		out = append(out, core.RoomInfo{
			Code:        code,
			PlayerCount: room.PlayerCount(),
			Status:      room.Status(),
		})
	}
	return out
}

// BindToken indexes a minted player token to its seat.
func (s *GameStoreImpl) BindToken(token string, code domain.GameCode, conn core.ConnID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[token] = TokenRef{Code: code, Conn: conn}
}

func (s *GameStoreImpl) DropToken(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tokens, token)
}

// freeCodeLocked draws codes until one is unused. With 32^4 codes and a
// small number of live rooms the loop terminates almost immediately.
func (s *GameStoreImpl) freeCodeLocked() domain.GameCode {
	for {
		code := generateCode(domain.GameCodeLen)
		if _, taken := s.rooms[code]; !taken {
			return code
		}
	}
}

func generateCode(n int) domain.GameCode {
	out := make([]byte, n)
	for i := range out {
		x, err := rand.Int(rand.Reader, big.NewInt(int64(len(codeAlphabet))))
		if err != nil {
			// crypto/rand only fails if the OS entropy source is gone.
			panic(err)
		}
		out[i] = codeAlphabet[x.Int64()]
	}
	return domain.GameCode(out)
}
