package hub

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/pickemparty/pickem-app/internal/awards"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testUpgrader = websocket.Upgrader{
	CheckOrigin: func(*http.Request) bool { return true },
}

// newHubServer upgrades every request and joins the connection to the room
// named by the game query parameter.
func newHubServer(t *testing.T, h *Hub) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gameID, err := uuid.Parse(r.URL.Query().Get("game"))
		if err != nil {
			http.Error(w, "bad game id", http.StatusBadRequest)
			return
		}
		ws, err := testUpgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		h.Join(NewConn(ws), gameID)
	}))
	t.Cleanup(server.Close)
	return server
}

func dial(t *testing.T, server *httptest.Server, gameID uuid.UUID) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/?game=" + gameID.String()
	ws, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { ws.Close() })
	return ws
}

func waitForRoomSize(t *testing.T, h *Hub, gameID uuid.UUID, want int) {
	t.Helper()
	require.Eventually(t, func() bool {
		return h.RoomSize(gameID) == want
	}, 2*time.Second, 10*time.Millisecond, "room never reached %d connections", want)
}

func readJSON(t *testing.T, ws *websocket.Conn, v any) {
	t.Helper()
	require.NoError(t, ws.SetReadDeadline(time.Now().Add(2*time.Second)))
	require.NoError(t, ws.ReadJSON(v))
}

func expectNoMessage(t *testing.T, ws *websocket.Conn) {
	t.Helper()
	require.NoError(t, ws.SetReadDeadline(time.Now().Add(200*time.Millisecond)))
	_, _, err := ws.ReadMessage()
	require.Error(t, err, "expected no message, but one arrived")
}

func TestBroadcastLeaderboardReachesWholeRoom(t *testing.T) {
	h := NewHub()
	server := newHubServer(t, h)
	gameID := uuid.New()

	first := dial(t, server, gameID)
	second := dial(t, server, gameID)
	waitForRoomSize(t, h, gameID, 2)

	players := []awards.LeaderboardPlayer{
		{UserID: uuid.New(), Username: "ada", TotalScore: 5, CorrectCount: 1, Rank: 1},
	}
	h.BroadcastLeaderboard(gameID, players)

	for _, ws := range []*websocket.Conn{first, second} {
		var update LeaderboardUpdate
		readJSON(t, ws, &update)
		assert.Equal(t, "leaderboard", update.Type)
		assert.Equal(t, gameID, update.GameID)
		require.Len(t, update.Players, 1)
		assert.Equal(t, "ada", update.Players[0].Username)
		assert.Equal(t, 5, update.Players[0].TotalScore)
		assert.NotZero(t, update.Timestamp)
	}
}

func TestBroadcastIsScopedToRoom(t *testing.T) {
	h := NewHub()
	server := newHubServer(t, h)
	gameA := uuid.New()
	gameB := uuid.New()

	inA := dial(t, server, gameA)
	inB := dial(t, server, gameB)
	waitForRoomSize(t, h, gameA, 1)
	waitForRoomSize(t, h, gameB, 1)

	h.BroadcastLeaderboard(gameA, nil)

	var update LeaderboardUpdate
	readJSON(t, inA, &update)
	assert.Equal(t, gameA, update.GameID)

	expectNoMessage(t, inB)
}

func TestLateJoinerGetsNoReplay(t *testing.T) {
	h := NewHub()
	server := newHubServer(t, h)
	gameID := uuid.New()

	early := dial(t, server, gameID)
	waitForRoomSize(t, h, gameID, 1)

	h.BroadcastLeaderboard(gameID, nil)

	var update LeaderboardUpdate
	readJSON(t, early, &update)
	assert.Equal(t, "leaderboard", update.Type)

	late := dial(t, server, gameID)
	waitForRoomSize(t, h, gameID, 2)

	expectNoMessage(t, late)
}

func TestBroadcastReaction(t *testing.T) {
	h := NewHub()
	server := newHubServer(t, h)
	gameID := uuid.New()
	senderID := uuid.New()

	ws := dial(t, server, gameID)
	waitForRoomSize(t, h, gameID, 1)

	h.BroadcastReaction(gameID, "🎉", &senderID)

	var reaction Reaction
	readJSON(t, ws, &reaction)
	assert.Equal(t, "reaction", reaction.Type)
	assert.NotEqual(t, uuid.Nil, reaction.ID)
	assert.Equal(t, gameID, reaction.GameID)
	assert.Equal(t, "🎉", reaction.Emoji)
	require.NotNil(t, reaction.SenderID)
	assert.Equal(t, senderID, *reaction.SenderID)
}

func TestReactionIDsAreUnique(t *testing.T) {
	h := NewHub()
	server := newHubServer(t, h)
	gameID := uuid.New()

	ws := dial(t, server, gameID)
	waitForRoomSize(t, h, gameID, 1)

	h.BroadcastReaction(gameID, "👏", nil)
	h.BroadcastReaction(gameID, "👏", nil)

	var first, second Reaction
	readJSON(t, ws, &first)
	readJSON(t, ws, &second)
	assert.NotEqual(t, first.ID, second.ID)
	assert.Nil(t, first.SenderID)
}

func TestBroadcastToEmptyRoom(t *testing.T) {
	h := NewHub()

	// No one subscribed, nothing to do, no panic
	h.BroadcastLeaderboard(uuid.New(), nil)
	h.BroadcastReaction(uuid.New(), "🎉", nil)
}

func TestLeaveUnjoinedConn(t *testing.T) {
	h := NewHub()
	h.Leave(&Conn{})
}

func TestJoinMovesBetweenRooms(t *testing.T) {
	h := NewHub()
	server := newHubServer(t, h)
	gameA := uuid.New()
	gameB := uuid.New()

	// Grab the server-side conn by joining through the handler, then move it
	dial(t, server, gameA)
	waitForRoomSize(t, h, gameA, 1)

	h.mu.Lock()
	var conn *Conn
	for c := range h.joined {
		conn = c
	}
	h.mu.Unlock()
	require.NotNil(t, conn)

	h.Join(conn, gameB)
	assert.Equal(t, 0, h.RoomSize(gameA))
	assert.Equal(t, 1, h.RoomSize(gameB))

	// Re-joining the current room changes nothing
	h.Join(conn, gameB)
	assert.Equal(t, 1, h.RoomSize(gameB))

	h.Leave(conn)
	assert.Equal(t, 0, h.RoomSize(gameB))
}

func TestJoinStaysVisibleUnderConcurrentLeave(t *testing.T) {
	h := NewHub()
	gameID := uuid.New()

	joiner := &Conn{send: make(chan []byte, sendBufferSize)}
	churner := &Conn{send: make(chan []byte, sendBufferSize)}

	// The churner repeatedly empties the room, which deletes it from the
	// hub. A Join racing that deletion must still land in the live room,
	// never in an orphaned one that fan-out can no longer find.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 1000; i++ {
			h.Join(churner, gameID)
			h.Leave(churner)
		}
	}()

	for i := 0; i < 1000; i++ {
		h.Join(joiner, gameID)
		if size := h.RoomSize(gameID); size < 1 {
			t.Fatalf("connection joined but missing from its room, size %d", size)
		}
		h.Leave(joiner)
	}
	<-done
}

func TestSlowConnectionIsDropped(t *testing.T) {
	h := NewHub()
	server := newHubServer(t, h)
	gameID := uuid.New()

	dial(t, server, gameID)
	waitForRoomSize(t, h, gameID, 1)

	h.mu.Lock()
	var conn *Conn
	for c := range h.joined {
		conn = c
	}
	h.mu.Unlock()
	require.NotNil(t, conn)

	// A closed connection fails trySend, so the next fan-out evicts it
	conn.Close()
	h.BroadcastLeaderboard(gameID, nil)

	assert.Equal(t, 0, h.RoomSize(gameID))
}
