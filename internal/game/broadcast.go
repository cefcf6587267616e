package game

// stateLocked builds the public snapshot. Caller holds room.mu.
func (room *Room) stateLocked() RoomState {
	players := make([]PlayerState, 0, len(room.order))
	for _, id := range room.order {
		p := room.players[id]
		if p == nil {
			continue
		}
		players = append(players, PlayerState{ID: p.ID, Name: p.Name, IsHost: p.IsHost, Score: p.Score})
	}
	return RoomState{
		PIN:        room.PIN,
		Started:    room.Started,
		MaxPlayers: MaxPlayers,
		Players:    players,
		Count:      len(players),
	}
}

// BroadcastRoomState sends the room's public snapshot to every member with a
// live connection.
func (r *Registry) BroadcastRoomState(pin string) {
	room := r.room(pin)
	if room == nil {
		return
	}
	room.mu.Lock()
	if room.closed {
		room.mu.Unlock()
		return
	}
	state := room.stateLocked()
	members := room.memberIDsLocked()
	room.mu.Unlock()
	r.sendToAll(members, "room_state", state)
}

// BroadcastToRoom delivers one event to every current member. Delivery is
// per-recipient; one dead connection never blocks the rest.
func (r *Registry) BroadcastToRoom(pin, event string, payload any) {
	room := r.room(pin)
	if room == nil {
		return
	}
	room.mu.Lock()
	members := room.memberIDsLocked()
	room.mu.Unlock()
	r.sendToAll(members, event, payload)
}

func (r *Registry) sendToAll(playerIDs []string, event string, payload any) {
	if r.sender == nil {
		return
	}
	for _, id := range playerIDs {
		r.sender.Send(id, event, payload)
	}
}

// sendToPlayer is best-effort single-recipient delivery.
func (r *Registry) sendToPlayer(playerID, event string, payload any) {
	if r.sender == nil {
		return
	}
	r.sender.Send(playerID, event, payload)
}
