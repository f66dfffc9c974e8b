/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"sync"
	"sync/atomic"
	"time"
)

const (
	roomCapacity   = 2
	roomCodeDigits = 6
)

// Seat is a player as seen by a room.
type Seat struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type ChatEntry struct {
	Sender   string    `json:"sender"`
	SenderID string    `json:"senderId"`
	Text     string    `json:"text"`
	Time     time.Time `json:"time"`
}

type State int

const (
	WaitingForPlayers State = iota
	ReadyToPlay
	RoundInProgress
	RoundResolved
	Abandoned
)

func (s State) String() string {
	switch s {
	case WaitingForPlayers:
		return "waiting-for-players"
	case ReadyToPlay:
		return "ready-to-play"
	case RoundInProgress:
		return "round-in-progress"
	case RoundResolved:
		return "round-resolved"
	case Abandoned:
		return "abandoned"
	}
	return "unknown"
}

// Room holds the state of one code. Every method except isClosed
// expects mu to be held by the caller.
type Room struct {
	code string

	mu sync.Mutex

	players  []Seat
	scores   map[string]int
	pending  map[string]Move
	resolved bool
	rounds   int

	chat      []ChatEntry
	chatLimit int

	createdAt  time.Time
	lastActive time.Time

	closed atomic.Bool
}

func newRoom(code string, chatLimit int) *Room {
	now := time.Now()
	return &Room{
		code:       code,
		scores:     make(map[string]int),
		pending:    make(map[string]Move),
		chatLimit:  chatLimit,
		createdAt:  now,
		lastActive: now,
	}
}

func (r *Room) isClosed() bool {
	return r.closed.Load()
}

func (r *Room) close() {
	r.closed.Store(true)
}

func (r *Room) touch() {
	r.lastActive = time.Now()
}

func (r *Room) state() State {
	switch {
	case r.isClosed():
		return Abandoned
	case len(r.players) < roomCapacity:
		return WaitingForPlayers
	case r.resolved:
		return RoundResolved
	case len(r.pending) == 1:
		return RoundInProgress
	}
	return ReadyToPlay
}

func (r *Room) has(id string) bool {
	for _, s := range r.players {
		if s.ID == id {
			return true
		}
	}
	return false
}

func (r *Room) seats() []Seat {
	out := make([]Seat, len(r.players))
	copy(out, r.players)
	return out
}

func (r *Room) scoreboard() map[string]int {
	out := make(map[string]int, len(r.scores))
	for id, n := range r.scores {
		out[id] = n
	}
	return out
}

func (r *Room) history() []ChatEntry {
	out := make([]ChatEntry, len(r.chat))
	copy(out, r.chat)
	return out
}

func (r *Room) addPlayer(s Seat) error {
	if r.isClosed() {
		return ErrUnknownRoom
	}
	if r.has(s.ID) {
		return ErrAlreadyInRoom
	}
	if len(r.players) >= roomCapacity {
		return ErrRoomFull
	}

	r.players = append(r.players, s)
	r.scores[s.ID] = 0
	r.touch()

	return nil
}

// removePlayer drops the player with their score and pending move, and
// reports whether they were present. An emptied room is closed.
func (r *Room) removePlayer(id string) bool {
	dst := r.players[:0]
	removed := false

	for _, s := range r.players {
		if s.ID == id {
			removed = true
			continue
		}
		dst = append(dst, s)
	}
	r.players = dst

	if !removed {
		return false
	}

	delete(r.scores, id)
	delete(r.pending, id)
	r.touch()

	if len(r.players) == 0 {
		r.close()
	}

	return true
}

// recordMove stores a blind move. The second move of a round resolves it
// and the result is returned; otherwise the result is nil.
func (r *Room) recordMove(id string, m Move) (*RoundResult, error) {
	if r.isClosed() || !r.has(id) {
		return nil, ErrNotInRoom
	}
	if !m.valid() {
		return nil, ErrInvalidMove
	}
	if len(r.players) < roomCapacity {
		return nil, ErrRoomNotReady
	}
	if _, ok := r.pending[id]; ok || r.resolved {
		return nil, ErrAlreadyMoved
	}

	r.pending[id] = m
	r.touch()

	if len(r.pending) < roomCapacity {
		return nil, nil
	}

	return r.resolveRound(), nil
}

func (r *Room) resolveRound() *RoundResult {
	first, second := r.players[0], r.players[1]
	a, b := r.pending[first.ID], r.pending[second.ID]

	outcome := resolve(a, b)
	switch outcome {
	case FirstWins:
		r.scores[first.ID]++
	case SecondWins:
		r.scores[second.ID]++
	}

	r.resolved = true
	r.rounds++

	return &RoundResult{
		Outcome:     outcome,
		First:       first,
		Second:      second,
		FirstMove:   a,
		SecondMove:  b,
		Scores:      r.scoreboard(),
		RoundNumber: r.rounds,
	}
}

func (r *Room) clearRound() {
	clear(r.pending)
	r.resolved = false
	r.touch()
}

func (r *Room) appendChat(e ChatEntry) {
	r.chat = append(r.chat, e)
	if r.chatLimit > 0 && len(r.chat) > r.chatLimit {
		r.chat = append(r.chat[:0], r.chat[len(r.chat)-r.chatLimit:]...)
	}
	r.touch()
}

// Store holds the live rooms, keyed by code. Lock order is Store.mu
// before Room.mu.
type Store struct {
	mu        sync.Mutex
	rooms     map[string]*Room
	chatLimit int
}

func newStore(chatLimit int) *Store {
	return &Store{
		rooms:     make(map[string]*Room),
		chatLimit: chatLimit,
	}
}

func validRoomCode(code string) bool {
	if len(code) != roomCodeDigits {
		return false
	}
	for i := 0; i < len(code); i++ {
		if code[i] < '0' || code[i] > '9' {
			return false
		}
	}
	return true
}

func randomRoomCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", roomCodeDigits, n.Int64()), nil
}

// getOrCreate returns the live room for code, replacing a closed one
// that has not been removed yet.
func (s *Store) getOrCreate(code string) *Room {
	s.mu.Lock()
	defer s.mu.Unlock()

	if r, ok := s.rooms[code]; ok && !r.isClosed() {
		return r
	}

	r := newRoom(code, s.chatLimit)
	s.rooms[code] = r

	return r
}

func (s *Store) get(code string) (*Room, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.rooms[code]
	if !ok || r.isClosed() {
		return nil, false
	}
	return r, true
}

// freeCode returns a code that no live room uses, without reserving it.
func (s *Store) freeCode() (string, error) {
	for {
		code, err := randomRoomCode()
		if err != nil {
			return "", err
		}

		if _, ok := s.get(code); !ok {
			return code, nil
		}
	}
}

// create inserts an empty room under a fresh code.
func (s *Store) create() (*Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for {
		code, err := randomRoomCode()
		if err != nil {
			return nil, err
		}

		if r, ok := s.rooms[code]; ok && !r.isClosed() {
			continue
		}

		r := newRoom(code, s.chatLimit)
		s.rooms[code] = r

		return r, nil
	}
}

// remove deletes code only while it still maps to r.
func (s *Store) remove(code string, r *Room) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if current, ok := s.rooms[code]; ok && current == r {
		delete(s.rooms, code)
	}
}

func (s *Store) list() []*Room {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*Room, 0, len(s.rooms))
	for _, r := range s.rooms {
		out = append(out, r)
	}
	return out
}

func (s *Store) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.rooms)
}
