/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"time"
)

// Messages coming from clients
type ClientMessage struct {
	Type     string `json:"type"`               // "create-room", "join-room", "player-move", "rematch", "chat-message", "leave-room"
	RoomCode string `json:"roomCode,omitempty"` // join-room
	Name     string `json:"name,omitempty"`     // create-room / join-room
	Choice   string `json:"choice,omitempty"`   // player-move
	Text     string `json:"text,omitempty"`     // chat-message
}

// SessionInfoMessage is sent immediately on connect so the client knows
// its own connection ID.
type SessionInfoMessage struct {
	Type string `json:"type"` // "session-info"
	ID   string `json:"id"`
}

// RoomJoinedMessage is sent only to a player whose join succeeded.
type RoomJoinedMessage struct {
	Type     string         `json:"type"` // "room-joined"
	RoomCode string         `json:"roomCode"`
	Players  []Seat         `json:"players"`
	Scores   map[string]int `json:"scores"`
	Chat     []ChatEntry    `json:"chat"`
}

type BothPlayersJoinedMessage struct {
	Type    string         `json:"type"` // "both-players-joined"
	Players []Seat         `json:"players"`
	Scores  map[string]int `json:"scores"`
}

// RoundResultMessage reveals both moves at once. WinnerID is null on a tie.
type RoundResultMessage struct {
	Type     string          `json:"type"` // "round-result"
	Round    int             `json:"round"`
	Moves    map[string]Move `json:"moves"`
	WinnerID *string         `json:"winnerId"`
	Tie      bool            `json:"tie"`
	Scores   map[string]int  `json:"scores"`
}

type ChatMessage struct {
	Type     string    `json:"type"` // "chat-message"
	Sender   string    `json:"sender"`
	SenderID string    `json:"senderId"`
	Text     string    `json:"text"`
	Time     time.Time `json:"time"`
}

// SimpleMessage is for payload-free notifications ("room-full",
// "rematch-start", "opponent-left", "room-expired").
type SimpleMessage struct {
	Type string `json:"type"`
}

// ErrorMessage is sent only to the client whose operation was rejected.
type ErrorMessage struct {
	Type    string `json:"type"` // "error"
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Envelope pairs an outbound message with the connection it is for.
type Envelope struct {
	To  string
	Msg any
}

func newRoundResultMessage(res *RoundResult) RoundResultMessage {
	msg := RoundResultMessage{
		Type:  "round-result",
		Round: res.RoundNumber,
		Moves: map[string]Move{
			res.First.ID:  res.FirstMove,
			res.Second.ID: res.SecondMove,
		},
		Scores: res.Scores,
	}

	if winner, ok := res.Winner(); ok {
		id := winner.ID
		msg.WinnerID = &id
	} else {
		msg.Tie = true
	}

	return msg
}

// rejection builds the message for a failed operation.
func rejection(err error) any {
	code := errorCode(err)
	if code == "room-full" {
		return SimpleMessage{Type: "room-full"}
	}

	return ErrorMessage{
		Type:    "error",
		Code:    code,
		Message: err.Error(),
	}
}

func toEach(seats []Seat, msg any) []Envelope {
	out := make([]Envelope, 0, len(seats))
	for _, s := range seats {
		out = append(out, Envelope{To: s.ID, Msg: msg})
	}
	return out
}
