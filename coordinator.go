/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"strings"
	"time"
	"unicode/utf8"
)

// Coordinator runs the room state machine. Every operation mutates state
// under the room's lock and returns the notifications it produced; the
// caller delivers them after the lock is released.
//
// Operations for a single connection must not run concurrently with each
// other. The transport guarantees this by handling each connection's
// messages from one goroutine.
type Coordinator struct {
	cfg     *Config
	players *Registry
	rooms   *Store
}

// RoomStatus is a read-only snapshot of a room.
type RoomStatus struct {
	Code       string         `json:"code"`
	State      string         `json:"state"`
	Players    []Seat         `json:"players"`
	Scores     map[string]int `json:"scores"`
	Rounds     int            `json:"rounds"`
	CreatedAt  time.Time      `json:"created_at"`
	LastActive time.Time      `json:"last_active"`
}

func newCoordinator(cfg *Config) *Coordinator {
	return &Coordinator{
		cfg:     cfg,
		players: newRegistry(cfg.maxNameLength),
		rooms:   newStore(cfg.chatHistory),
	}
}

func (c *Coordinator) Connect(id string) {
	c.players.register(id)
}

// unmatched returns the player for id, failing if they already sit in a room.
func (c *Coordinator) unmatched(id string) (Player, error) {
	p, ok := c.players.lookup(id)
	if !ok {
		return Player{}, ErrNotConnected
	}
	if p.RoomCode != "" {
		return Player{}, ErrAlreadyInRoom
	}
	return p, nil
}

// current returns the live room id sits in.
func (c *Coordinator) current(id string) (*Room, error) {
	p, ok := c.players.lookup(id)
	if !ok {
		return nil, ErrNotConnected
	}
	if p.RoomCode == "" {
		return nil, ErrNotInRoom
	}

	r, ok := c.rooms.get(p.RoomCode)
	if !ok {
		return nil, ErrUnknownRoom
	}
	return r, nil
}

// seat adds id to r and records the room on the player. r.mu must be held.
func (c *Coordinator) seat(r *Room, id, name string) ([]Envelope, error) {
	if err := r.addPlayer(Seat{ID: id, Name: name}); err != nil {
		return nil, err
	}

	// Both calls are infallible here: the name is validated and id is registered.
	_ = c.players.setName(id, name)
	c.players.setRoom(id, r.code)

	envs := []Envelope{{To: id, Msg: RoomJoinedMessage{
		Type:     "room-joined",
		RoomCode: r.code,
		Players:  r.seats(),
		Scores:   r.scoreboard(),
		Chat:     r.history(),
	}}}

	if len(r.players) == roomCapacity {
		envs = append(envs, toEach(r.players, BothPlayersJoinedMessage{
			Type:    "both-players-joined",
			Players: r.seats(),
			Scores:  r.scoreboard(),
		})...)
	}

	return envs, nil
}

// CreateRoom seats id in a room under a freshly generated code.
func (c *Coordinator) CreateRoom(id, name string) ([]Envelope, error) {
	name, err := c.players.validName(name)
	if err != nil {
		return nil, err
	}

	if _, err := c.unmatched(id); err != nil {
		return nil, err
	}

	r, err := c.rooms.create()
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	envs, err := c.seat(r, id, name)
	if err != nil && len(r.players) == 0 {
		r.close()
	}
	r.mu.Unlock()

	if err != nil {
		if r.isClosed() {
			c.rooms.remove(r.code, r)
		}
		return nil, err
	}

	logf(c.cfg, "GAMES: Player %q created room %s", name, r.code)

	return envs, nil
}

// JoinRoom seats id in the room for code. Unless strict joining is
// enabled, an unknown code creates the room.
func (c *Coordinator) JoinRoom(id, code, name string) ([]Envelope, error) {
	name, err := c.players.validName(name)
	if err != nil {
		return nil, err
	}

	code = strings.TrimSpace(code)
	if !validRoomCode(code) {
		return nil, ErrInvalidRoomCode
	}

	if _, err := c.unmatched(id); err != nil {
		return nil, err
	}

	for {
		var r *Room
		if c.cfg.strictJoin {
			var ok bool
			r, ok = c.rooms.get(code)
			if !ok {
				return nil, ErrUnknownRoom
			}
		} else {
			r = c.rooms.getOrCreate(code)
		}

		r.mu.Lock()
		if r.isClosed() {
			// Torn down between lookup and lock; the next lookup sees a fresh room.
			r.mu.Unlock()
			continue
		}

		envs, err := c.seat(r, id, name)
		r.mu.Unlock()

		if err != nil {
			return nil, err
		}

		logf(c.cfg, "GAMES: Player %q joined room %s", name, code)

		return envs, nil
	}
}

// Move records a blind move. Nothing is emitted until the second move of
// the round arrives, at which point both players receive the result.
func (c *Coordinator) Move(id, choice string) ([]Envelope, error) {
	r, err := c.current(id)
	if err != nil {
		return nil, err
	}

	m, err := parseMove(choice)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	res, err := r.recordMove(id, m)
	seats := r.seats()
	r.mu.Unlock()

	if err != nil || res == nil {
		return nil, err
	}

	if winner, ok := res.Winner(); ok {
		logf(c.cfg, "GAMES: Round %d in room %s won by %q", res.RoundNumber, r.code, winner.Name)
	} else {
		logf(c.cfg, "GAMES: Round %d in room %s tied", res.RoundNumber, r.code)
	}

	return toEach(seats, newRoundResultMessage(res)), nil
}

// Rematch starts a fresh round once the previous one has resolved.
func (c *Coordinator) Rematch(id string) ([]Envelope, error) {
	r, err := c.current(id)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.isClosed() || !r.has(id) {
		return nil, ErrNotInRoom
	}
	if r.state() != RoundResolved {
		return nil, ErrRoundNotResolved
	}

	r.clearRound()

	return toEach(r.players, SimpleMessage{Type: "rematch-start"}), nil
}

// Chat appends to the room's log and fans the message out to the
// sender's room only.
func (c *Coordinator) Chat(id, text string) ([]Envelope, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyMessage
	}
	if limit := c.cfg.maxChatLength; limit > 0 && utf8.RuneCountInString(text) > limit {
		text = string([]rune(text)[:limit])
	}

	r, err := c.current(id)
	if err != nil {
		return nil, err
	}

	p, _ := c.players.lookup(id)

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.isClosed() || !r.has(id) {
		return nil, ErrNotInRoom
	}

	entry := ChatEntry{
		Sender:   p.Name,
		SenderID: id,
		Text:     text,
		Time:     time.Now(),
	}
	r.appendChat(entry)

	return toEach(r.players, ChatMessage{
		Type:     "chat-message",
		Sender:   entry.Sender,
		SenderID: entry.SenderID,
		Text:     entry.Text,
		Time:     entry.Time,
	}), nil
}

// Leave takes id out of its room while keeping the connection registered.
func (c *Coordinator) Leave(id string) ([]Envelope, error) {
	p, ok := c.players.lookup(id)
	if !ok {
		return nil, ErrNotConnected
	}
	if p.RoomCode == "" {
		return nil, ErrNotInRoom
	}

	return c.leave(p), nil
}

// Disconnect forgets the connection and runs leave logic for its room.
func (c *Coordinator) Disconnect(id string) []Envelope {
	p, ok := c.players.deregister(id)
	if !ok || p.RoomCode == "" {
		return nil
	}

	return c.leave(p)
}

// leave removes p from its room. A room that drops from two players to
// one is abandoned: the remaining player is told and unmatched, and the
// room is destroyed along with its scores.
func (c *Coordinator) leave(p Player) []Envelope {
	defer c.players.unassign(p.ID, p.RoomCode)

	r, ok := c.rooms.get(p.RoomCode)
	if !ok {
		return nil
	}

	var envs []Envelope

	r.mu.Lock()
	had := len(r.players)
	if r.removePlayer(p.ID) && had == roomCapacity {
		remaining := r.seats()
		r.close()

		for _, s := range remaining {
			c.players.unassign(s.ID, r.code)
		}
		envs = toEach(remaining, SimpleMessage{Type: "opponent-left"})
	}
	r.mu.Unlock()

	if r.isClosed() {
		c.rooms.remove(r.code, r)
		logf(c.cfg, "GAMES: Room %s closed after %q left", r.code, p.Name)
	}

	return envs
}

// Reap closes every room idle since before cutoff.
func (c *Coordinator) Reap(cutoff time.Time) []Envelope {
	var envs []Envelope

	for _, r := range c.rooms.list() {
		r.mu.Lock()
		if r.isClosed() {
			r.mu.Unlock()
			c.rooms.remove(r.code, r)
			continue
		}
		if r.lastActive.After(cutoff) {
			r.mu.Unlock()
			continue
		}

		seats := r.seats()
		r.close()
		for _, s := range seats {
			c.players.unassign(s.ID, r.code)
		}
		envs = append(envs, toEach(seats, SimpleMessage{Type: "room-expired"})...)
		r.mu.Unlock()

		c.rooms.remove(r.code, r)
		logf(c.cfg, "GAMES: Reaped idle room %s", r.code)
	}

	return envs
}

// Status returns a snapshot of the live room for code.
func (c *Coordinator) Status(code string) (RoomStatus, error) {
	r, ok := c.rooms.get(code)
	if !ok {
		return RoomStatus{}, ErrUnknownRoom
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	return RoomStatus{
		Code:       r.code,
		State:      r.state().String(),
		Players:    r.seats(),
		Scores:     r.scoreboard(),
		Rounds:     r.rounds,
		CreatedAt:  r.createdAt,
		LastActive: r.lastActive,
	}, nil
}
