/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
)

const (
	writeWait      = 10 * time.Second
	maxMessageSize = 4096
	sendBuffer     = 16
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type Client struct {
	conn *websocket.Conn
	send chan any
	id   string

	closeOnce sync.Once
}

func (c *Client) close() {
	c.closeOnce.Do(func() {
		close(c.send)
	})
}

// Hub owns the open connections, feeds their messages to the coordinator,
// and delivers whatever the coordinator emits.
type Hub struct {
	cfg   *Config
	coord *Coordinator

	mu      sync.Mutex
	clients map[string]*Client
}

func newHub(cfg *Config, coord *Coordinator) *Hub {
	return &Hub{
		cfg:     cfg,
		coord:   coord,
		clients: make(map[string]*Client),
	}
}

func (h *Hub) register(c *Client) {
	h.mu.Lock()
	h.clients[c.id] = c
	h.mu.Unlock()

	h.coord.Connect(c.id)

	c.send <- SessionInfoMessage{
		Type: "session-info",
		ID:   c.id,
	}
}

func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	if current, ok := h.clients[c.id]; ok && current == c {
		delete(h.clients, c.id)
	}
	h.mu.Unlock()

	c.close()

	h.deliver(h.coord.Disconnect(c.id))
}

// deliver never blocks: a client whose buffer is full is dropped, and its
// read pump then runs the usual disconnect path.
func (h *Hub) deliver(envs []Envelope) {
	if len(envs) == 0 {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	for _, e := range envs {
		c, ok := h.clients[e.To]
		if !ok {
			continue
		}

		select {
		case c.send <- e.Msg:
		default:
			delete(h.clients, c.id)
			c.close()
		}
	}
}

func (h *Hub) handle(c *Client, msg ClientMessage) {
	var (
		envs []Envelope
		err  error
	)

	switch msg.Type {
	case "create-room":
		envs, err = h.coord.CreateRoom(c.id, msg.Name)
	case "join-room":
		envs, err = h.coord.JoinRoom(c.id, msg.RoomCode, msg.Name)
	case "player-move":
		envs, err = h.coord.Move(c.id, msg.Choice)
	case "rematch":
		envs, err = h.coord.Rematch(c.id)
	case "chat-message":
		envs, err = h.coord.Chat(c.id, msg.Text)
	case "leave-room":
		envs, err = h.coord.Leave(c.id)
	default:
		err = ErrBadRequest
	}

	if err != nil {
		logf(h.cfg, "GAMES: Rejected %q from %s: %v", msg.Type, c.id, err)
		envs = []Envelope{{To: c.id, Msg: rejection(err)}}
	}

	h.deliver(envs)
}

// closeAll disconnects every client; each read pump then runs its
// normal disconnect path.
func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for id, c := range h.clients {
		delete(h.clients, id)
		c.close()
	}
}

func (h *Hub) connections() int {
	h.mu.Lock()
	defer h.mu.Unlock()

	return len(h.clients)
}

func serveWS(cfg *Config, h *Hub) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Println("upgrade error:", err)
			return
		}

		client := &Client{
			conn: conn,
			send: make(chan any, sendBuffer),
			id:   uuid.NewString(),
		}

		logf(cfg, "SERVE: Websocket %s opened by %s", client.id, realIP(r))

		h.register(client)

		go client.writePump(cfg)
		client.readPump(cfg, h)

		logf(cfg, "SERVE: Websocket %s closed", client.id)
	}
}

// readPump handles every message of one connection in order, which is
// what serializes that connection's coordinator calls.
func (c *Client) readPump(cfg *Config, h *Hub) {
	defer func() {
		h.unregister(c)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(cfg.pongTimeout))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(cfg.pongTimeout))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			return
		}

		var msg ClientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			h.deliver([]Envelope{{To: c.id, Msg: rejection(ErrBadRequest)}})
			continue
		}

		h.handle(c, msg)
	}
}

func (c *Client) writePump(cfg *Config) {
	ticker := time.NewTicker(cfg.pongTimeout * 9 / 10)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
