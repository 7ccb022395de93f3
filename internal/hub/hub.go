package hub

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pickemparty/pickem-app/internal/awards"
	"github.com/pickemparty/pickem-app/internal/metrics"
)

// LeaderboardUpdate is the wire shape pushed to a room after a reveal.
type LeaderboardUpdate struct {
	Type      string                     `json:"type"`
	GameID    uuid.UUID                  `json:"game_id"`
	Players   []awards.LeaderboardPlayer `json:"players"`
	Timestamp int64                      `json:"timestamp"`
}

// Reaction is an ephemeral fan-out event. The hub assigns the id so clients
// can de-duplicate; clients drop the reaction from display after 3 seconds
// on their own, the hub keeps no state about it.
type Reaction struct {
	Type     string     `json:"type"`
	ID       uuid.UUID  `json:"id"`
	GameID   uuid.UUID  `json:"game_id"`
	Emoji    string     `json:"emoji"`
	SenderID *uuid.UUID `json:"sender_id,omitempty"`
}

type room struct {
	mu    sync.Mutex
	conns map[*Conn]struct{}
}

// Hub maps game ids to their sets of subscribed connections. The outer lock
// only guards the room map; fan-out contends on the room's own lock, so a
// busy game never serializes broadcasts for unrelated games.
type Hub struct {
	mu     sync.RWMutex
	rooms  map[uuid.UUID]*room
	joined map[*Conn]uuid.UUID
}

func NewHub() *Hub {
	return &Hub{
		rooms:  make(map[uuid.UUID]*room),
		joined: make(map[*Conn]uuid.UUID),
	}
}

// Join subscribes a connection to a game's room. No membership check happens
// here; authorization already happened upstream. Joining the room you are
// already in is a no-op, joining a different room moves the connection.
// The room insert happens under h.mu so a concurrent Leave of the room's
// last member cannot delete the room between the bookkeeping and the insert.
func (h *Hub) Join(conn *Conn, gameID uuid.UUID) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if prev, ok := h.joined[conn]; ok {
		if prev == gameID {
			return
		}
		h.removeLocked(conn, prev)
	}
	rm := h.rooms[gameID]
	if rm == nil {
		rm = &room{conns: make(map[*Conn]struct{})}
		h.rooms[gameID] = rm
	}
	h.joined[conn] = gameID

	rm.mu.Lock()
	rm.conns[conn] = struct{}{}
	rm.mu.Unlock()
}

// Leave unsubscribes the connection from whatever room it is in. Safe to
// call for a connection that never joined.
func (h *Hub) Leave(conn *Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	gameID, ok := h.joined[conn]
	if !ok {
		return
	}
	h.removeLocked(conn, gameID)
}

func (h *Hub) removeLocked(conn *Conn, gameID uuid.UUID) {
	delete(h.joined, conn)
	rm := h.rooms[gameID]
	if rm == nil {
		return
	}
	rm.mu.Lock()
	delete(rm.conns, conn)
	empty := len(rm.conns) == 0
	rm.mu.Unlock()
	if empty {
		delete(h.rooms, gameID)
	}
}

// RoomSize reports how many connections are subscribed to a game.
func (h *Hub) RoomSize(gameID uuid.UUID) int {
	h.mu.RLock()
	rm := h.rooms[gameID]
	h.mu.RUnlock()
	if rm == nil {
		return 0
	}
	rm.mu.Lock()
	defer rm.mu.Unlock()
	return len(rm.conns)
}

// BroadcastLeaderboard pushes a full snapshot to every connection currently
// in the game's room. At most once: connections that join later rely on the
// page's initial snapshot instead of a replay.
func (h *Hub) BroadcastLeaderboard(gameID uuid.UUID, players []awards.LeaderboardPlayer) {
	h.fanOut(gameID, LeaderboardUpdate{
		Type:      "leaderboard",
		GameID:    gameID,
		Players:   players,
		Timestamp: time.Now().UnixMilli(),
	})
	metrics.LeaderboardBroadcasts.Inc()
}

// BroadcastReaction fans an emoji out to the room, assigning a fresh id.
func (h *Hub) BroadcastReaction(gameID uuid.UUID, emoji string, senderID *uuid.UUID) {
	h.fanOut(gameID, Reaction{
		Type:     "reaction",
		ID:       uuid.New(),
		GameID:   gameID,
		Emoji:    emoji,
		SenderID: senderID,
	})
	metrics.ReactionBroadcasts.Inc()
}

func (h *Hub) fanOut(gameID uuid.UUID, payload any) {
	h.mu.RLock()
	rm := h.rooms[gameID]
	h.mu.RUnlock()
	if rm == nil {
		return
	}

	rm.mu.Lock()
	conns := make([]*Conn, 0, len(rm.conns))
	for conn := range rm.conns {
		conns = append(conns, conn)
	}
	rm.mu.Unlock()

	data, err := json.Marshal(payload)
	if err != nil {
		slog.Error("hub: failed to marshal payload", "game_id", gameID, "error", err)
		return
	}

	for _, conn := range conns {
		if !conn.trySend(data) {
			// Dead or too slow. Drop it so the fan-out never stalls.
			slog.Warn("hub: dropping slow connection", "game_id", gameID)
			h.Leave(conn)
			conn.Close()
		}
	}
}
