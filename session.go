package main

import (
	"encoding/json"
	"net/http"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
	"github.com/skip2/go-qrcode"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// session is one duplex connection: anonymous until its first identifying
// message binds it to a room as either the host display or a named player.
type session struct {
	id   string
	conn *websocket.Conn
	send chan any
	done chan struct{}
	once sync.Once

	// Written only under the bound room's mutex.
	room *Room
	name string
}

func newSession(conn *websocket.Conn) *session {
	return &session{
		id:   uuid.NewString(),
		conn: conn,
		send: make(chan any, 16),
		done: make(chan struct{}),
	}
}

// shutdown signals the write pump to exit, exactly once; safe from both the
// read pump and a room dropping a slow consumer. The outbox channel itself
// is never closed, so a send racing a shutdown cannot panic.
func (c *session) shutdown() {
	c.once.Do(func() {
		close(c.done)
	})
}

// trySend queues a message without ever blocking: a session that has shut
// down eats the message, and a full outbox means the client stopped reading,
// so the session is shut down instead of parking the caller.
func (c *session) trySend(msg any) {
	select {
	case <-c.done:
		return
	default:
	}

	select {
	case c.send <- msg:
	default:
		c.shutdown()
	}
}

func (c *session) writePump() {
	defer c.conn.Close()

	for {
		select {
		case msg := <-c.send:
			if err := c.conn.WriteJSON(msg); err != nil {
				return
			}
		case <-c.done:
			return
		}
	}
}

func (c *session) readPump(cfg *Config, rr *roomRegistry) {
	defer func() {
		if c.room != nil {
			c.room.Detach(c)
		}
		c.shutdown()
		_ = c.conn.Close()
	}()

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			return
		}

		var msg ClientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			// Malformed input is dropped; the connection stays open.
			continue
		}

		c.dispatch(cfg, rr, msg)
	}
}

// dispatch routes one inbound message. Identity messages bind the session;
// everything else goes to the bound room, which validates phase and role.
// Unbound or unrecognized gameplay traffic is a silent no-op.
func (c *session) dispatch(cfg *Config, rr *roomRegistry, msg ClientMessage) {
	switch msg.Type {
	case "create-room":
		if c.room != nil {
			return
		}
		room := rr.createRoom()
		c.trySend(RoomCreatedMessage{Type: "room-created", Code: room.code})
		room.AttachHost(c)
		logf(cfg, "GAME: Session %s hosting new room %s", c.id, room.code)

	case "host-join":
		if c.room != nil {
			return
		}
		room := rr.getRoom(strings.ToUpper(strings.TrimSpace(msg.Code)))
		if room == nil {
			c.trySend(ErrorMessage{Type: "error", Message: "room not found"})
			return
		}
		room.AttachHost(c)
		logf(cfg, "GAME: Session %s rejoined room %s as host", c.id, room.code)

	case "join-room":
		if c.room != nil {
			return
		}
		room := rr.getRoom(strings.ToUpper(strings.TrimSpace(msg.Code)))
		if room == nil {
			c.trySend(ErrorMessage{Type: "error", Message: "room not found"})
			return
		}
		room.JoinPlayer(c, msg.Name)

	case "start-game":
		if c.room != nil {
			c.room.StartGame(c)
		}

	case "vote-category":
		if c.room != nil {
			c.room.VoteCategory(c, msg.Category)
		}

	case "submit-lie":
		if c.room != nil {
			c.room.SubmitLie(c, msg.Lie)
		}

	case "submit-vote":
		if c.room != nil {
			c.room.SubmitVote(c, msg.AnswerID)
		}

	case "play-again":
		if c.room != nil {
			c.room.PlayAgain(c)
		}

	default:
		// Unknown types are ignored.
	}
}

func serveWS(cfg *Config, rr *roomRegistry) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logf(cfg, "GAME: Upgrade error from %s: %v", realIP(r), err)
			return
		}

		c := newSession(conn)
		go c.writePump()
		c.readPump(cfg, rr)
	}
}

func serveRoomPage(cfg *Config) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		securityHeaders(cfg, w)

		code := strings.ToUpper(ps.ByName("code"))
		_, _ = w.Write([]byte(newPage("fibber", "Room "+code)))
	}
}

// qrHandler generates a PNG QR code for a room's join URL, so phones can
// scan straight into the game.
func qrHandler(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	code := ps.ByName("code")
	if code == "" {
		http.Error(w, "missing room code", http.StatusBadRequest)
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

// registerGame sets up routes so that:
//   - $path             → landing page
//   - $path/:code       → per-room page
//   - $path/:code/qr    → PNG QR code for that room URL
//   - /ws               → the game's WebSocket endpoint
func registerGame(cfg *Config, path string, mux *httprouter.Router) error {
	bank, err := loadQuestionBank()
	if err != nil {
		return err
	}

	rr := newRoomRegistry(cfg, bank)

	mux.GET(cfg.prefix+path, serveHomePage(cfg))
	mux.GET(cfg.prefix+path+"/:code", serveRoomPage(cfg))
	mux.GET(cfg.prefix+path+"/:code/qr", qrHandler)
	mux.GET(cfg.prefix+"/ws", serveWS(cfg, rr))

	return nil
}
