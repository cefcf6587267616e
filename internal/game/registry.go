package game

import (
	"crypto/rand"
	"math/big"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

const pinAllocAttempts = 50

// Registry owns the PIN->Room and player->PIN mappings. Its own mutex only
// guards those maps; every room mutation happens under that room's mutex so
// unrelated rooms never serialize against each other.
type Registry struct {
	mu         sync.RWMutex
	rooms      map[string]*Room
	playerRoom map[string]string

	src      QuestionSource
	sender   Sender
	settings Settings
	pinFn    func(length int) (string, error)
}

func NewRegistry(src QuestionSource, settings Settings) *Registry {
	return &Registry{
		rooms:      make(map[string]*Room),
		playerRoom: make(map[string]string),
		src:        src,
		settings:   settings,
		pinFn:      randomPin,
	}
}

// SetSender wires the outbound delivery channel. Must be called before any
// player traffic arrives.
func (r *Registry) SetSender(s Sender) {
	r.sender = s
}

// room resolves a PIN without touching room state.
func (r *Registry) room(pin string) *Room {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.rooms[pin]
}

// playerPin resolves the caller's current room, if any.
func (r *Registry) playerPin(playerID string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	pin, ok := r.playerRoom[playerID]
	return pin, ok
}

// CreateRoom allocates a fresh PIN and creates a room with the caller as
// sole member and host. A caller still registered elsewhere is removed from
// their old room first so the routing table stays single-valued.
func (r *Registry) CreateRoom(playerID, name string) (RoomState, error) {
	r.Leave(playerID)

	r.mu.Lock()
	pin, err := r.allocatePinLocked()
	if err != nil {
		r.mu.Unlock()
		return RoomState{}, err
	}
	room := &Room{
		PIN:     pin,
		HostID:  playerID,
		players: make(map[string]*Player),
	}
	room.players[playerID] = &Player{ID: playerID, Name: name, IsHost: true, JoinedAt: time.Now().UTC()}
	room.order = append(room.order, playerID)
	r.rooms[pin] = room
	r.playerRoom[playerID] = pin
	r.mu.Unlock()

	log.Info().Str("pin", pin).Str("playerId", playerID).Msg("room created")

	room.mu.Lock()
	state := room.stateLocked()
	members := room.memberIDsLocked()
	room.mu.Unlock()

	r.sendToAll(members, "room_state", state)
	return state, nil
}

func (r *Registry) allocatePinLocked() (string, error) {
	for i := 0; i < pinAllocAttempts; i++ {
		pin, err := r.pinFn(PinLength)
		if err != nil {
			return "", err
		}
		if _, taken := r.rooms[pin]; !taken {
			return pin, nil
		}
	}
	return "", ErrPinExhausted
}

func randomPin(length int) (string, error) {
	b := make([]byte, length)
	for i := range b {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", err
		}
		b[i] = '0' + byte(n.Int64())
	}
	return string(b), nil
}

// JoinRoom adds the caller to the room with the given PIN as a non-host
// member.
func (r *Registry) JoinRoom(playerID, name, pin string) (RoomState, error) {
	r.Leave(playerID)

	room := r.room(pin)
	if room == nil {
		return RoomState{}, ErrRoomNotFound
	}

	room.mu.Lock()
	if room.closed {
		room.mu.Unlock()
		return RoomState{}, ErrRoomNotFound
	}
	if room.Started {
		room.mu.Unlock()
		return RoomState{}, ErrRoomAlreadyStarted
	}
	if len(room.players) >= MaxPlayers {
		room.mu.Unlock()
		return RoomState{}, ErrRoomFull
	}
	room.players[playerID] = &Player{ID: playerID, Name: name, JoinedAt: time.Now().UTC()}
	room.order = append(room.order, playerID)

	// Routing must be visible before the member is, or a disconnect racing
	// the join would miss the routing entry and leave a ghost member.
	r.mu.Lock()
	r.playerRoom[playerID] = pin
	r.mu.Unlock()

	state := room.stateLocked()
	members := room.memberIDsLocked()
	room.mu.Unlock()

	log.Info().Str("pin", pin).Str("playerId", playerID).Msg("player joined")

	r.sendToAll(members, "room_state", state)
	return state, nil
}

// Leave removes the caller from their current room, if any. It doubles as
// the disconnect handler and is idempotent. An empty room is destroyed; a
// departing host hands the role to the earliest remaining joiner. If the
// departure leaves an active round with every remaining player answered,
// the round completes right away.
func (r *Registry) Leave(playerID string) {
	r.mu.Lock()
	pin, ok := r.playerRoom[playerID]
	if !ok {
		r.mu.Unlock()
		return
	}
	delete(r.playerRoom, playerID)
	room := r.rooms[pin]
	r.mu.Unlock()
	if room == nil {
		return
	}

	room.mu.Lock()
	p := room.players[playerID]
	if p == nil {
		room.mu.Unlock()
		return
	}
	delete(room.players, playerID)
	for i, id := range room.order {
		if id == playerID {
			room.order = append(room.order[:i], room.order[i+1:]...)
			break
		}
	}

	if len(room.players) == 0 {
		room.closed = true
		room.round = nil
		room.mu.Unlock()

		r.mu.Lock()
		delete(r.rooms, pin)
		r.mu.Unlock()

		log.Info().Str("pin", pin).Msg("room destroyed")
		return
	}

	if p.IsHost {
		next := room.players[room.order[0]]
		next.IsHost = true
		room.HostID = next.ID
		log.Info().Str("pin", pin).Str("playerId", next.ID).Msg("host transferred")
	}

	var endedRoundID string
	if room.roundCompleteLocked() {
		endedRoundID = room.round.ID
	}
	state := room.stateLocked()
	members := room.memberIDsLocked()
	room.mu.Unlock()

	log.Info().Str("pin", pin).Str("playerId", playerID).Msg("player left")

	r.sendToAll(members, "room_state", state)
	if endedRoundID != "" {
		r.endRound(pin, endedRoundID)
	}
}

// StartGame flips the room to started and kicks off the first round. Only
// the host may start, and only once.
func (r *Registry) StartGame(playerID string) (RoomState, error) {
	pin, ok := r.playerPin(playerID)
	if !ok {
		return RoomState{}, ErrNotInRoom
	}
	room := r.room(pin)
	if room == nil {
		return RoomState{}, ErrRoomNotFound
	}

	room.mu.Lock()
	if room.closed {
		room.mu.Unlock()
		return RoomState{}, ErrRoomNotFound
	}
	if room.HostID != playerID {
		room.mu.Unlock()
		return RoomState{}, ErrNotHost
	}
	if len(room.players) < MinPlayers {
		room.mu.Unlock()
		return RoomState{}, ErrNotEnoughPlayers
	}
	if room.Started {
		room.mu.Unlock()
		return RoomState{}, ErrRoomAlreadyStarted
	}
	room.Started = true
	state := room.stateLocked()
	members := room.memberIDsLocked()
	room.mu.Unlock()

	log.Info().Str("pin", pin).Str("playerId", playerID).Msg("game started")

	r.sendToAll(members, "room_state", state)
	r.sendToAll(members, "game_started", state)
	r.StartRound(pin)
	return state, nil
}
