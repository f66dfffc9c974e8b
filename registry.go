/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"strings"
	"sync"
	"unicode/utf8"
)

// Player is the server-side record of one connection.
type Player struct {
	ID       string
	Name     string
	RoomCode string
}

// Registry maps connection IDs to players. It never calls into rooms,
// so it is safe to use while a room lock is held.
type Registry struct {
	mu      sync.RWMutex
	players map[string]*Player

	maxNameLength int
}

func newRegistry(maxNameLength int) *Registry {
	return &Registry{
		players:       make(map[string]*Player),
		maxNameLength: maxNameLength,
	}
}

func (r *Registry) register(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.players[id]; ok {
		return
	}

	r.players[id] = &Player{ID: id}
}

// validName returns the trimmed name, or ErrInvalidName.
func (r *Registry) validName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ErrInvalidName
	}
	if r.maxNameLength > 0 && utf8.RuneCountInString(name) > r.maxNameLength {
		return "", ErrInvalidName
	}
	return name, nil
}

func (r *Registry) setName(id, name string) error {
	name, err := r.validName(name)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.players[id]
	if !ok {
		return ErrNotConnected
	}
	p.Name = name

	return nil
}

func (r *Registry) setRoom(id, code string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if p, ok := r.players[id]; ok {
		p.RoomCode = code
	}
}

// unassign clears the room of id, but only if it still points at code.
func (r *Registry) unassign(id, code string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if p, ok := r.players[id]; ok && p.RoomCode == code {
		p.RoomCode = ""
	}
}

func (r *Registry) lookup(id string) (Player, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.players[id]
	if !ok {
		return Player{}, false
	}
	return *p, true
}

// deregister removes the record and returns it so the caller can run
// leave logic for the room it occupied.
func (r *Registry) deregister(id string) (Player, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.players[id]
	if !ok {
		return Player{}, false
	}
	delete(r.players, id)

	return *p, true
}

func (r *Registry) count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.players)
}
