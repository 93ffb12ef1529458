package main

import (
	"crypto/rand"
	"sync"
	"time"
)

// Room codes skip visually ambiguous characters (no O/I, no 0/1) so they
// survive being read off a screen. 32 characters also divides 256 evenly,
// so the byte modulus below is unbiased.
const roomCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

const roomCodeLength = 4

// roomRegistry owns the process-wide code → room table. It is passed to
// every handler explicitly; lifecycle is insert on create, remove on sweep.
type roomRegistry struct {
	mu    sync.Mutex
	rooms map[string]*Room

	cfg  *Config
	bank []Question
}

func newRoomRegistry(cfg *Config, bank []Question) *roomRegistry {
	rr := &roomRegistry{
		rooms: make(map[string]*Room),
		cfg:   cfg,
		bank:  bank,
	}
	if cfg.sweepInterval > 0 {
		go rr.sweepLoop()
	}
	return rr
}

// createRoom generates a code, retrying on collision until unique among
// live rooms, and inserts the new room.
func (rr *roomRegistry) createRoom() *Room {
	rr.mu.Lock()
	defer rr.mu.Unlock()

	var code string
	for {
		code = newRoomCode()
		if _, exists := rr.rooms[code]; !exists {
			break
		}
	}

	room := newRoom(rr.cfg, code, rr.bank)
	rr.rooms[code] = room
	logf(rr.cfg, "ROOMS: Created room %s (%d live)", code, len(rr.rooms))
	return room
}

func (rr *roomRegistry) getRoom(code string) *Room {
	rr.mu.Lock()
	defer rr.mu.Unlock()
	return rr.rooms[code]
}

func newRoomCode() string {
	buf := make([]byte, roomCodeLength)
	if _, err := rand.Read(buf); err != nil {
		panic("crypto/rand failure: " + err.Error())
	}
	code := make([]byte, roomCodeLength)
	for i := range code {
		code[i] = roomCodeAlphabet[int(buf[i])%len(roomCodeAlphabet)]
	}
	return string(code)
}

// sweepLoop periodically reaps rooms with no host and no player channels
// attached. The room's timer is cancelled before deletion so a pending
// transition can't fire into a room that no longer exists.
func (rr *roomRegistry) sweepLoop() {
	ticker := time.NewTicker(rr.cfg.sweepInterval)
	for range ticker.C {
		rr.sweep()
	}
}

func (rr *roomRegistry) sweep() {
	rr.mu.Lock()
	defer rr.mu.Unlock()

	for code, room := range rr.rooms {
		if room.detachedAll() {
			room.stopTimer()
			delete(rr.rooms, code)
			logf(rr.cfg, "ROOMS: Reaped idle room %s (%d live)", code, len(rr.rooms))
		}
	}
}
