package ws

import (
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/pickemparty/pickem-app/internal/hub"
	"github.com/pickemparty/pickem-app/internal/metrics"
	"github.com/pickemparty/pickem-app/internal/middleware"
	"github.com/pickemparty/pickem-app/internal/service"
	"github.com/pickemparty/pickem-app/internal/store"
)

// ClientMessage is what a connected client may send upstream. Reactions are
// the only client-initiated event; everything else flows through HTTP.
type ClientMessage struct {
	Type  string `json:"type"`
	Emoji string `json:"emoji,omitempty"`
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Handler upgrades a game-page connection, joins it to the game's room and
// pushes the current leaderboard as the first frame. The client re-issues
// the connection after a reconnect; the hub holds no session state for it.
func Handler(h *hub.Hub, games *store.GameStore, leaderboard *service.LeaderboardService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		gameID, err := uuid.Parse(chi.URLParam(r, "gameID"))
		if err != nil {
			http.Error(w, "invalid game id", http.StatusBadRequest)
			return
		}
		if _, err := games.GetGame(r.Context(), gameID.String()); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				http.NotFound(w, r)
				return
			}
			http.Error(w, "failed to load game", http.StatusInternalServerError)
			return
		}

		userID, _ := middleware.GetUserIDFromContext(r.Context())

		players, err := leaderboard.ForGame(r.Context(), gameID, userID)
		if err != nil {
			http.Error(w, "failed to load leaderboard", http.StatusInternalServerError)
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		slog.Info("ws connected", "game_id", gameID, "remote", r.RemoteAddr)

		c := hub.NewConn(conn)
		h.Join(c, gameID)
		metrics.ActiveConnections.Inc()

		c.SendJSON(hub.LeaderboardUpdate{
			Type:      "leaderboard",
			GameID:    gameID,
			Players:   players,
			Timestamp: time.Now().UnixMilli(),
		})

		go readLoop(h, c, conn, gameID, userID)
	}
}

func readLoop(h *hub.Hub, c *hub.Conn, conn *websocket.Conn, gameID, userID uuid.UUID) {
	defer func() {
		h.Leave(c)
		c.Close()
		metrics.ActiveConnections.Dec()
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			slog.Info("ws disconnected", "game_id", gameID, "error", err)
			return
		}

		var msg ClientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			continue
		}
		if msg.Type == "reaction" && msg.Emoji != "" {
			var sender *uuid.UUID
			if userID != uuid.Nil {
				sender = &userID
			}
			h.BroadcastReaction(gameID, msg.Emoji, sender)
		}
	}
}
