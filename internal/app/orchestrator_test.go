package app

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/dkeye/Syndicate/internal/core"
	"github.com/dkeye/Syndicate/internal/domain"
	"github.com/dkeye/Syndicate/internal/protocol"
)

// fakeConn captures frames in place of a real WebSocket.
type fakeConn struct {
	mu     sync.Mutex
	frames []core.Frame
	fail   bool
	closed bool
}

func (f *fakeConn) TrySend(fr core.Frame) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errors.New("send buffer full")
	}
	f.frames = append(f.frames, fr)
	return nil
}

func (f *fakeConn) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
}

func (f *fakeConn) messages(t *testing.T) []map[string]any {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]map[string]any, 0, len(f.frames))
	for _, fr := range f.frames {
		var m map[string]any
		if err := json.Unmarshal(fr, &m); err != nil {
			t.Fatalf("bad frame %q: %v", fr, err)
		}
		out = append(out, m)
	}
	return out
}

func (f *fakeConn) lastOfType(t *testing.T, typ string) map[string]any {
	t.Helper()
	var found map[string]any
	for _, m := range f.messages(t) {
		if m["type"] == typ {
			found = m
		}
	}
	if found == nil {
		t.Fatalf("no %q message captured", typ)
	}
	return found
}

func (f *fakeConn) countOfType(t *testing.T, typ string) int {
	t.Helper()
	n := 0
	for _, m := range f.messages(t) {
		if m["type"] == typ {
			n++
		}
	}
	return n
}

func (f *fakeConn) reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.frames = nil
}

func newWorld() *Orchestrator {
	reg := NewRegistry()
	store := NewGameStore()
	return NewOrchestrator(reg, store, NewBroadcaster(reg, SimplePolicy{}))
}

// seatParty creates a room via conn 1 and joins n-1 more players; conn
// ids are 1..n, names Player1..PlayerN.
func seatParty(t *testing.T, o *Orchestrator, n int, settings domain.Settings) ([]core.ConnID, []*fakeConn) {
	t.Helper()
	ids := make([]core.ConnID, n)
	conns := make([]*fakeConn, n)
	for i := 0; i < n; i++ {
		ids[i] = core.ConnID(i + 1)
		conns[i] = &fakeConn{}
		o.Registry.Bind(ids[i], conns[i])
	}
	o.CreateGame(ids[0], "Player1", settings)
	created := conns[0].lastOfType(t, protocol.TypeGameCreated)
	code := created["gameCode"].(string)
	for i := 1; i < n; i++ {
		o.JoinGame(ids[i], fmt.Sprintf("Player%d", i+1), code)
	}
	return ids, conns
}

func TestCreateGameBlankNameCreatesNoRoom(t *testing.T) {
	o := newWorld()
	conn := &fakeConn{}
	o.Registry.Bind(1, conn)

	o.CreateGame(1, "   ", domain.Settings{})

	msg := conn.lastOfType(t, protocol.TypeError)
	if msg["message"] != domain.ErrNameEmpty.Error() {
		t.Fatalf("unexpected error message %q", msg["message"])
	}
	if len(o.Store.List()) != 0 {
		t.Fatal("blank-name create must not allocate a room")
	}
	if _, ok := o.Registry.RoomOf(1); ok {
		t.Fatal("blank-name create must not bind a room")
	}
}

func TestCreateGameSeatsHost(t *testing.T) {
	o := newWorld()
	conn := &fakeConn{}
	o.Registry.Bind(1, conn)

	o.CreateGame(1, "Alice", domain.Settings{EyeWitness: true})

	msg := conn.lastOfType(t, protocol.TypeGameCreated)
	code := msg["gameCode"].(string)
	if len(code) != domain.GameCodeLen {
		t.Fatalf("game code %q has wrong length", code)
	}
	if msg["isHost"] != true {
		t.Fatal("creator must be host")
	}
	if msg["playerToken"] == "" || msg["playerToken"] == nil {
		t.Fatal("creator got no player token")
	}
	players := msg["players"].([]any)
	if len(players) != 1 {
		t.Fatalf("fresh room roster has %d entries", len(players))
	}
	if got, _ := o.Registry.RoomOf(1); got != domain.GameCode(code) {
		t.Fatalf("registry resolves %q, want %q", got, code)
	}
}

func TestJoinGameValidationOrder(t *testing.T) {
	o := newWorld()
	seatParty(t, o, 2, domain.Settings{})

	joiner := &fakeConn{}
	o.Registry.Bind(99, joiner)
	code, _ := o.Registry.RoomOf(1)

	// Empty name wins over a bad code.
	o.JoinGame(99, "  ", "NOPE")
	if msg := joiner.lastOfType(t, protocol.TypeError); msg["message"] != domain.ErrNameEmpty.Error() {
		t.Fatalf("want empty-name error first, got %q", msg["message"])
	}

	joiner.reset()
	o.JoinGame(99, "Zoe", "NOPE")
	if msg := joiner.lastOfType(t, protocol.TypeError); msg["message"] != domain.ErrGameNotFound.Error() {
		t.Fatalf("want not-found error, got %q", msg["message"])
	}

	// Name collision is case-insensitive.
	joiner.reset()
	o.JoinGame(99, "player2", string(code))
	if msg := joiner.lastOfType(t, protocol.TypeError); msg["message"] != domain.ErrNameTaken.Error() {
		t.Fatalf("want name-taken error, got %q", msg["message"])
	}
	if _, ok := o.Registry.RoomOf(99); ok {
		t.Fatal("failed join must not bind a room")
	}
}

func TestJoinGameRejectsStartedRoom(t *testing.T) {
	o := newWorld()
	ids, _ := seatParty(t, o, 5, domain.Settings{})
	o.StartGame(ids[0])

	late := &fakeConn{}
	o.Registry.Bind(99, late)
	code, _ := o.Registry.RoomOf(ids[0])
	o.JoinGame(99, "Zoe", string(code))

	if msg := late.lastOfType(t, protocol.TypeError); msg["message"] != domain.ErrAlreadyStarted.Error() {
		t.Fatalf("want already-started error, got %q", msg["message"])
	}
}

func TestJoinGameBroadcastsRoster(t *testing.T) {
	o := newWorld()
	_, conns := seatParty(t, o, 3, domain.Settings{})

	joined := conns[2].lastOfType(t, protocol.TypeGameJoined)
	if joined["isHost"] != false {
		t.Fatal("joiner must not be host")
	}
	if joined["playerToken"] == "" || joined["playerToken"] == nil {
		t.Fatal("joiner got no token")
	}

	// Everyone, including the joiner, got the 3-entry roster.
	for i, c := range conns {
		roster := c.lastOfType(t, protocol.TypePlayerListUpdate)
		players := roster["players"].([]any)
		if len(players) != 3 {
			t.Fatalf("conn %d saw roster of %d, want 3", i+1, len(players))
		}
		first := players[0].(map[string]any)
		if first["name"] != "Player1" || first["isHost"] != true {
			t.Fatalf("roster not in join order: %+v", players)
		}
	}
}

func TestStartGameIsNoopForNonHostAndSmallLobby(t *testing.T) {
	o := newWorld()
	ids, conns := seatParty(t, o, 4, domain.Settings{})

	o.StartGame(ids[1])
	if msg := conns[1].lastOfType(t, protocol.TypeError); msg["message"] != domain.ErrNotHost.Error() {
		t.Fatalf("want not-host error, got %q", msg["message"])
	}

	o.StartGame(ids[0])
	if msg := conns[0].lastOfType(t, protocol.TypeError); msg["message"] != domain.ErrTooFewPlayers.Error() {
		t.Fatalf("want too-few-players error, got %q", msg["message"])
	}

	for i, c := range conns {
		if got := c.countOfType(t, protocol.TypeRoleAssigned); got != 0 {
			t.Fatalf("conn %d received %d roleAssigned despite failed start", i+1, got)
		}
	}
}

func TestStartGameUnicastsRoles(t *testing.T) {
	o := newWorld()
	ids, conns := seatParty(t, o, 5, domain.Settings{})

	o.StartGame(ids[0])

	counts := map[string]int{}
	teammateLists := 0
	for i, c := range conns {
		if got := c.countOfType(t, protocol.TypeRoleAssigned); got != 1 {
			t.Fatalf("conn %d received %d roleAssigned, want 1", i+1, got)
		}
		msg := c.lastOfType(t, protocol.TypeRoleAssigned)
		role := msg["role"].(string)
		counts[role]++

		desc := msg["description"].(map[string]any)
		if desc["title"] == "" || desc["winCondition"] == "" {
			t.Fatalf("role %q has empty description: %+v", role, desc)
		}
		if msg["totalPlayers"].(float64) != 5 || msg["readyCount"].(float64) != 0 {
			t.Fatalf("unexpected counters in %+v", msg)
		}

		mates, hasMates := msg["teammates"]
		if role == string(domain.RoleSyndicate) {
			if !hasMates || len(mates.([]any)) != 1 {
				t.Fatalf("syndicate member got teammates %v", mates)
			}
			teammateLists++
		} else if hasMates {
			t.Fatalf("role %q must not see teammates, got %v", role, mates)
		}
	}
	if counts[string(domain.RoleSyndicate)] != 2 {
		t.Fatalf("want 2 syndicate, got %+v", counts)
	}
	if counts[string(domain.RoleDetective)] != 1 {
		t.Fatalf("want 1 detective, got %+v", counts)
	}
	// Both optional roles disabled: the rest are bystanders.
	if counts[string(domain.RoleBystander)] != 2 {
		t.Fatalf("want 2 bystanders, got %+v", counts)
	}
	if teammateLists != 2 {
		t.Fatalf("teammate lists sent to %d conns, want 2", teammateLists)
	}
}

func TestPlayerReadyBroadcastsAggregate(t *testing.T) {
	o := newWorld()
	ids, conns := seatParty(t, o, 5, domain.Settings{})
	o.StartGame(ids[0])

	o.PlayerReady(ids[2])
	for i, c := range conns {
		msg := c.lastOfType(t, protocol.TypeReadyUpdate)
		if msg["readyCount"].(float64) != 1 || msg["totalPlayers"].(float64) != 5 {
			t.Fatalf("conn %d saw %v/%v ready", i+1, msg["readyCount"], msg["totalPlayers"])
		}
	}

	// Marking the same player again stays at 1.
	o.PlayerReady(ids[2])
	if msg := conns[0].lastOfType(t, protocol.TypeReadyUpdate); msg["readyCount"].(float64) != 1 {
		t.Fatalf("repeat ready bumped the count: %v", msg["readyCount"])
	}

	// Unknown conn: nothing new is broadcast.
	before := conns[0].countOfType(t, protocol.TypeReadyUpdate)
	o.PlayerReady(99)
	if after := conns[0].countOfType(t, protocol.TypeReadyUpdate); after != before {
		t.Fatal("ready for unknown conn must be a silent no-op")
	}
}

func TestHostLeaveDestroysRoom(t *testing.T) {
	o := newWorld()
	ids, conns := seatParty(t, o, 3, domain.Settings{})
	code, _ := o.Registry.RoomOf(ids[0])

	o.LeaveGame(ids[0])

	if _, ok := o.Store.Get(code); ok {
		t.Fatal("room still resolvable after host left")
	}
	for _, id := range ids {
		if _, ok := o.Registry.RoomOf(id); ok {
			t.Fatalf("conn %d still bound to destroyed room", id)
		}
	}
	for i, c := range conns[1:] {
		msg := c.lastOfType(t, protocol.TypeError)
		if msg["message"] == "" {
			t.Fatalf("member %d got empty terminal error", i+2)
		}
	}
	if conns[0].countOfType(t, protocol.TypeError) != 0 {
		t.Fatal("leaving host must not receive the terminal error")
	}
}

func TestNonHostLeaveShrinksRoster(t *testing.T) {
	o := newWorld()
	ids, conns := seatParty(t, o, 3, domain.Settings{})
	code, _ := o.Registry.RoomOf(ids[0])

	o.LeaveGame(ids[1])

	if _, ok := o.Store.Get(code); !ok {
		t.Fatal("room must survive a non-host leave")
	}
	if _, ok := o.Registry.RoomOf(ids[1]); ok {
		t.Fatal("leaver still bound to the room")
	}
	for _, i := range []int{0, 2} {
		roster := conns[i].lastOfType(t, protocol.TypePlayerListUpdate)
		players := roster["players"].([]any)
		if len(players) != 2 {
			t.Fatalf("conn %d saw roster of %d after leave", i+1, len(players))
		}
		for _, p := range players {
			if p.(map[string]any)["name"] == "Player2" {
				t.Fatal("leaver still present in broadcast roster")
			}
		}
	}
}

func TestRemovePlayerNotices(t *testing.T) {
	o := newWorld()
	ids, conns := seatParty(t, o, 5, domain.Settings{})

	// Non-host cannot kick.
	o.RemovePlayer(ids[1], ids[3])
	if msg := conns[1].lastOfType(t, protocol.TypeError); msg["message"] != domain.ErrNotHost.Error() {
		t.Fatalf("want not-host error, got %q", msg["message"])
	}

	// Unknown target.
	o.RemovePlayer(ids[0], 99)
	if msg := conns[0].lastOfType(t, protocol.TypeError); msg["message"] != domain.ErrPlayerNotFound.Error() {
		t.Fatalf("want player-not-found error, got %q", msg["message"])
	}

	// Host kicks Player4.
	o.RemovePlayer(ids[0], ids[3])
	if conns[3].countOfType(t, protocol.TypeRemovedFromGame) != 1 {
		t.Fatal("target did not get the removed notice")
	}
	if _, ok := o.Registry.RoomOf(ids[3]); ok {
		t.Fatal("target still bound to the room")
	}
	for _, i := range []int{0, 1, 2, 4} {
		roster := conns[i].lastOfType(t, protocol.TypePlayerListUpdate)
		players := roster["players"].([]any)
		if len(players) != 4 {
			t.Fatalf("conn %d saw roster of %d after kick", i+1, len(players))
		}
		for _, p := range players {
			if p.(map[string]any)["name"] == "Player4" {
				t.Fatal("kicked player still in roster broadcast")
			}
		}
	}
}

func TestRemovePlayerSelfKickTearsRoomDown(t *testing.T) {
	o := newWorld()
	ids, conns := seatParty(t, o, 3, domain.Settings{})
	code, _ := o.Registry.RoomOf(ids[0])

	o.RemovePlayer(ids[0], ids[0])

	if _, ok := o.Store.Get(code); ok {
		t.Fatal("room survived the host removing themselves")
	}
	for _, id := range ids {
		if _, ok := o.Registry.RoomOf(id); ok {
			t.Fatalf("conn %d still bound to the torn-down room", id)
		}
	}
	// The other members get the host-leave terminal error, not a roster.
	for i, c := range conns[1:] {
		if c.countOfType(t, protocol.TypeError) != 1 {
			t.Fatalf("member %d missing the terminal error", i+2)
		}
	}
	if conns[0].countOfType(t, protocol.TypeRemovedFromGame) != 0 {
		t.Fatal("self-kick must not send the removed notice")
	}
}

func TestHostRejoinOwnRoomKeepsRoomAlive(t *testing.T) {
	o := newWorld()
	ids, conns := seatParty(t, o, 3, domain.Settings{})
	code, _ := o.Registry.RoomOf(ids[0])
	for _, c := range conns {
		c.reset()
	}

	o.JoinGame(ids[0], "Player1", string(code))

	if msg := conns[0].lastOfType(t, protocol.TypeError); msg["message"] != domain.ErrAlreadyInGame.Error() {
		t.Fatalf("want already-in-game error, got %q", msg["message"])
	}
	if conns[0].countOfType(t, protocol.TypeGameJoined) != 0 {
		t.Fatal("rejected self-join must not report gameJoined")
	}
	room, ok := o.Store.Get(code)
	if !ok {
		t.Fatal("room destroyed by a host self-join")
	}
	if room.PlayerCount() != 3 {
		t.Fatalf("roster shrank to %d on self-join", room.PlayerCount())
	}
	if got, _ := o.Registry.RoomOf(ids[0]); got != code {
		t.Fatalf("host binding moved to %q", got)
	}
	for i, c := range conns[1:] {
		if n := len(c.messages(t)); n != 0 {
			t.Fatalf("member %d received %d messages from a failed self-join", i+2, n)
		}
	}
}

func TestDisconnectSoftMarks(t *testing.T) {
	o := newWorld()
	ids, conns := seatParty(t, o, 3, domain.Settings{})
	code, _ := o.Registry.RoomOf(ids[0])

	o.OnDisconnect(ids[1])

	room, _ := o.Store.Get(code)
	if room.PlayerCount() != 3 {
		t.Fatalf("disconnect changed player count to %d", room.PlayerCount())
	}
	p, ok := room.Player(ids[1])
	if !ok || p.Connected {
		t.Fatalf("player record after disconnect: %+v, %v", p, ok)
	}
	for _, i := range []int{0, 2} {
		msg := conns[i].lastOfType(t, protocol.TypePlayerDisconnected)
		if msg["playerName"] != "Player2" || msg["playerId"].(float64) != float64(ids[1]) {
			t.Fatalf("conn %d saw disconnect notice %+v", i+1, msg)
		}
	}
	if _, ok := o.Registry.Conn(ids[1]); ok {
		t.Fatal("disconnected conn still bound in registry")
	}

	// Host disconnect keeps the room and reassigns nothing.
	o.OnDisconnect(ids[0])
	if _, ok := o.Store.Get(code); !ok {
		t.Fatal("host disconnect must not destroy the room")
	}
	if room.Host() != ids[0] {
		t.Fatal("hosting authority must not move on disconnect")
	}
}

func TestBroadcastIsolatesFailingRecipient(t *testing.T) {
	o := newWorld()
	ids, conns := seatParty(t, o, 3, domain.Settings{})
	code, _ := o.Registry.RoomOf(ids[0])
	room, _ := o.Store.Get(code)

	conns[1].fail = true
	for _, c := range conns {
		c.reset()
	}

	o.Cast.Broadcast(room, protocol.ReadyUpdate{Type: protocol.TypeReadyUpdate, ReadyCount: 0, TotalPlayers: 3})

	if len(conns[0].messages(t)) != 1 || len(conns[2].messages(t)) != 1 {
		t.Fatal("healthy recipients must still get the frame")
	}
	if len(conns[1].messages(t)) != 0 {
		t.Fatal("failing recipient unexpectedly captured a frame")
	}
	if conns[1].closed {
		t.Fatal("SimplePolicy must not close a slow connection")
	}
}
