// rpsbox Rock, Paper, Scissors
//
// Two players share a room through a 6-digit code. Each round both players
// pick rock, paper, or scissors without seeing the other's choice; once the
// second choice arrives the round is resolved and both players see both
// moves, the winner, and the running score. Either player may then ask for
// a rematch, which starts a fresh round with the scores kept.
//
// Features:
// - One shared websocket endpoint; rooms are chosen by "join-room" messages
// - Rooms hold at most two players; a third joiner gets "room-full"
// - Moves are collected blind and revealed together
// - Per-room chat, never delivered outside the room
// - A player leaving a full room closes it and notifies the opponent
// - Idle rooms optionally reaped after a configurable timeout
// - Random 6-digit room codes via crypto/rand, with server-side collision check
// - In-browser QR button to share the current room, backed by go-qrcode

package main

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/skip2/go-qrcode"
)

// reaperLoop periodically closes rooms that have been idle longer than idleTimeout.
func (h *Hub) reaperLoop(ctx context.Context, idleTimeout time.Duration) {
	ticker := time.NewTicker(idleTimeout / 2)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			h.deliver(h.coord.Reap(time.Now().Add(-idleTimeout)))

			logf(h.cfg, "GAMES: %d rooms open, %d players registered, %d websockets connected",
				h.coord.rooms.count(),
				h.coord.players.count(),
				h.connections(),
			)
		case <-ctx.Done():
			return
		}
	}
}

// QR handler: generates a PNG QR code for the current room URL using go-qrcode.
func qrHandler(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	code := ps.ByName("code")
	if !validRoomCode(code) {
		http.Error(w, "invalid room code", http.StatusNotFound)
		return
	}

	// Derive scheme (respecting TLS and X-Forwarded-Proto if present).
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}

	// We are at /.../:code/qr; strip trailing "/qr" to get the room URL.
	path := strings.TrimSuffix(r.URL.Path, "/qr")

	url := scheme + "://" + r.Host + path

	const qrSize = 320 // mobile-friendly size
	png, err := qrcode.Encode(url, qrcode.Medium, qrSize)
	if err != nil {
		http.Error(w, "qr generation failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	_, _ = w.Write(png)
}

func serveRoomPage(cfg *Config, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		startTime := time.Now()

		if !validRoomCode(ps.ByName("code")) {
			http.NotFound(w, r)
			return
		}

		data, err := assets.ReadFile("assets/rps.html")
		if err != nil {
			errs <- err
			return
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Header().Set("Cache-Control", "public, max-age=3600")
		w.Header().Set("Expires", time.Now().Add(time.Hour).UTC().Format(http.TimeFormat))
		securityHeaders(cfg, w)

		sendBytes(cfg, w, r, errs, "Room page "+ps.ByName("code"), data, startTime)
	}
}

func serveRoomStatus(cfg *Config, coord *Coordinator, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.Header().Set("Cache-Control", "no-store")
		securityHeaders(cfg, w)

		var body any

		status, err := coord.Status(ps.ByName("code"))
		if err != nil {
			w.WriteHeader(http.StatusNotFound)
			body = rejection(err)
		} else {
			body = status
		}

		if err := json.NewEncoder(w).Encode(body); err != nil {
			errs <- err
		}
	}
}

// redirectNewRoom handles GET /path by picking a 6-digit code no live room
// uses and redirecting to /path/:code.
func redirectNewRoom(cfg *Config, path string, coord *Coordinator) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		code, err := coord.rooms.freeCode()
		if err != nil {
			http.Error(w, "unable to generate room code", http.StatusInternalServerError)
			return
		}

		logf(cfg, "GAMES: Offered room %s%s/%s to %s", cfg.prefix, path, code, realIP(r))
		http.Redirect(w, r, cfg.prefix+path+"/"+code, http.StatusTemporaryRedirect)
	}
}

// registerRPSGame sets up routes so that:
//   - $path               → redirects to a new random room (6-digit code)
//   - $path/:code         → HTML client
//   - $path/:code/qr      → PNG QR code for that room URL
//   - $path/:code/status  → JSON snapshot of that room
//   - /ws                 → WebSocket shared by all rooms
func registerRPSGame(ctx context.Context, cfg *Config, path string, mux *httprouter.Router, errs chan<- error) *Hub {
	coord := newCoordinator(cfg)
	hub := newHub(cfg, coord)

	if cfg.sessionTimeout > 0 {
		go hub.reaperLoop(ctx, cfg.sessionTimeout)
	}

	mux.GET(cfg.prefix+path, redirectNewRoom(cfg, path, coord))

	mux.GET(cfg.prefix+path+"/:code", serveRoomPage(cfg, errs))

	mux.GET(cfg.prefix+path+"/:code/qr", qrHandler)

	mux.GET(cfg.prefix+path+"/:code/status", serveRoomStatus(cfg, coord, errs))

	mux.GET(cfg.prefix+"/ws", serveWS(cfg, hub))

	return hub
}
