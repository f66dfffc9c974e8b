package main

import (
	"errors"
	"fmt"
	"testing"
)

func fullRoom(t *testing.T) *Room {
	t.Helper()

	r := newRoom("482913", 100)
	for _, s := range []Seat{{ID: "a", Name: "Alice"}, {ID: "b", Name: "Bob"}} {
		if err := r.addPlayer(s); err != nil {
			t.Fatalf("addPlayer(%s): %v", s.Name, err)
		}
	}
	return r
}

func TestRoomCapacity(t *testing.T) {
	r := fullRoom(t)

	if err := r.addPlayer(Seat{ID: "c", Name: "Carol"}); !errors.Is(err, ErrRoomFull) {
		t.Errorf("third addPlayer = %v, want ErrRoomFull", err)
	}
	if err := r.addPlayer(Seat{ID: "a", Name: "Alice"}); !errors.Is(err, ErrAlreadyInRoom) {
		t.Errorf("duplicate addPlayer = %v, want ErrAlreadyInRoom", err)
	}
	if len(r.players) != 2 {
		t.Errorf("players = %d, want 2", len(r.players))
	}
	if got := r.scoreboard(); len(got) != 2 || got["a"] != 0 || got["b"] != 0 {
		t.Errorf("scores = %v, want zeroes for a and b", got)
	}
	if r.state() != ReadyToPlay {
		t.Errorf("state = %s, want %s", r.state(), ReadyToPlay)
	}
}

func TestRoomRecordMove(t *testing.T) {
	r := newRoom("482913", 100)
	_ = r.addPlayer(Seat{ID: "a", Name: "Alice"})

	if _, err := r.recordMove("a", Rock); !errors.Is(err, ErrRoomNotReady) {
		t.Fatalf("move with one player = %v, want ErrRoomNotReady", err)
	}

	_ = r.addPlayer(Seat{ID: "b", Name: "Bob"})

	if _, err := r.recordMove("c", Rock); !errors.Is(err, ErrNotInRoom) {
		t.Errorf("move by outsider = %v, want ErrNotInRoom", err)
	}
	if _, err := r.recordMove("a", Move("lizard")); !errors.Is(err, ErrInvalidMove) {
		t.Errorf("invalid move = %v, want ErrInvalidMove", err)
	}

	res, err := r.recordMove("a", Rock)
	if err != nil || res != nil {
		t.Fatalf("first move = %v, %v, want nil, nil", res, err)
	}
	if r.state() != RoundInProgress {
		t.Errorf("state = %s, want %s", r.state(), RoundInProgress)
	}

	if _, err := r.recordMove("a", Paper); !errors.Is(err, ErrAlreadyMoved) {
		t.Errorf("repeat move = %v, want ErrAlreadyMoved", err)
	}
	if len(r.pending) != 1 || r.pending["a"] != Rock {
		t.Errorf("pending = %v, want only a=rock", r.pending)
	}

	res, err = r.recordMove("b", Scissors)
	if err != nil || res == nil {
		t.Fatalf("second move = %v, %v", res, err)
	}
	if res.Outcome != FirstWins || res.FirstMove != Rock || res.SecondMove != Scissors {
		t.Errorf("result = %+v", res)
	}
	if res.Scores["a"] != 1 || res.Scores["b"] != 0 {
		t.Errorf("scores = %v, want a=1 b=0", res.Scores)
	}
	if r.state() != RoundResolved {
		t.Errorf("state = %s, want %s", r.state(), RoundResolved)
	}

	if _, err := r.recordMove("b", Rock); !errors.Is(err, ErrAlreadyMoved) {
		t.Errorf("move after resolution = %v, want ErrAlreadyMoved", err)
	}

	r.clearRound()
	if len(r.pending) != 0 || r.state() != ReadyToPlay {
		t.Errorf("after clearRound pending = %v, state = %s", r.pending, r.state())
	}
	if r.scores["a"] != 1 {
		t.Errorf("clearRound reset scores: %v", r.scores)
	}
}

func TestRoomRemovePlayerDropsState(t *testing.T) {
	r := fullRoom(t)
	_, _ = r.recordMove("a", Rock)

	if !r.removePlayer("a") {
		t.Fatal("removePlayer(a) = false")
	}
	if _, ok := r.scores["a"]; ok {
		t.Error("score kept for departed player")
	}
	if _, ok := r.pending["a"]; ok {
		t.Error("pending move kept for departed player")
	}
	if r.removePlayer("a") {
		t.Error("second removePlayer(a) = true")
	}
	if r.isClosed() {
		t.Error("room closed with a player left")
	}

	r.removePlayer("b")
	if !r.isClosed() || r.state() != Abandoned {
		t.Errorf("emptied room closed = %v, state = %s", r.isClosed(), r.state())
	}
}

func TestRoomChatBounded(t *testing.T) {
	r := newRoom("482913", 3)
	for i := 0; i < 5; i++ {
		r.appendChat(ChatEntry{Sender: "Alice", Text: fmt.Sprint(i)})
	}

	got := r.history()
	if len(got) != 3 {
		t.Fatalf("history = %d entries, want 3", len(got))
	}
	for i, want := range []string{"2", "3", "4"} {
		if got[i].Text != want {
			t.Errorf("history[%d] = %q, want %q", i, got[i].Text, want)
		}
	}
}

func TestValidRoomCode(t *testing.T) {
	tests := map[string]bool{
		"482913":  true,
		"000000":  true,
		"48291":   false,
		"4829130": false,
		"48a913":  false,
		"":        false,
	}

	for code, want := range tests {
		if got := validRoomCode(code); got != want {
			t.Errorf("validRoomCode(%q) = %v, want %v", code, got, want)
		}
	}
}

func TestStoreGetOrCreateReplacesClosed(t *testing.T) {
	s := newStore(100)

	first := s.getOrCreate("482913")
	if again := s.getOrCreate("482913"); again != first {
		t.Fatal("getOrCreate returned a new room for a live code")
	}

	first.close()
	if _, ok := s.get("482913"); ok {
		t.Error("get returned a closed room")
	}

	second := s.getOrCreate("482913")
	if second == first {
		t.Fatal("getOrCreate returned the closed room")
	}

	s.remove("482913", first)
	if got, ok := s.get("482913"); !ok || got != second {
		t.Error("remove of a stale room deleted its replacement")
	}

	s.remove("482913", second)
	if s.count() != 0 {
		t.Errorf("count = %d, want 0", s.count())
	}
}

func TestStoreCreateUniqueCodes(t *testing.T) {
	s := newStore(100)
	seen := make(map[string]bool)

	for n := 0; n < 200; n++ {
		r, err := s.create()
		if err != nil {
			t.Fatalf("create: %v", err)
		}
		if !validRoomCode(r.code) {
			t.Fatalf("create produced invalid code %q", r.code)
		}
		if seen[r.code] {
			t.Fatalf("create reused live code %q", r.code)
		}
		seen[r.code] = true
	}

	code, err := s.freeCode()
	if err != nil {
		t.Fatalf("freeCode: %v", err)
	}
	if seen[code] {
		t.Errorf("freeCode returned live code %q", code)
	}
}
