/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"strings"
)

type Move string

const (
	Rock     Move = "rock"
	Paper    Move = "paper"
	Scissors Move = "scissors"
)

// beats maps each move to the move it defeats.
var beats = map[Move]Move{
	Rock:     Scissors,
	Scissors: Paper,
	Paper:    Rock,
}

func (m Move) valid() bool {
	_, ok := beats[m]
	return ok
}

func parseMove(s string) (Move, error) {
	m := Move(strings.ToLower(strings.TrimSpace(s)))
	if !m.valid() {
		return "", ErrInvalidMove
	}
	return m, nil
}

type Outcome int

const (
	Tie Outcome = iota
	FirstWins
	SecondWins
)

func (o Outcome) String() string {
	switch o {
	case FirstWins:
		return "first"
	case SecondWins:
		return "second"
	default:
		return "tie"
	}
}

// resolve is a pure function of the two moves. Both moves must be valid.
func resolve(a, b Move) Outcome {
	switch {
	case a == b:
		return Tie
	case beats[a] == b:
		return FirstWins
	default:
		return SecondWins
	}
}

// RoundResult is one resolved round, with the players in join order.
type RoundResult struct {
	Outcome     Outcome
	First       Seat
	Second      Seat
	FirstMove   Move
	SecondMove  Move
	Scores      map[string]int
	RoundNumber int
}

// Winner returns the winning seat, or false on a tie.
func (r RoundResult) Winner() (Seat, bool) {
	switch r.Outcome {
	case FirstWins:
		return r.First, true
	case SecondWins:
		return r.Second, true
	}
	return Seat{}, false
}
