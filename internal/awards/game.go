package awards

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type GameStatus string

const (
	GameSetup     GameStatus = "setup"
	GameOpen      GameStatus = "open"
	GameLive      GameStatus = "live"
	GameCompleted GameStatus = "completed"
)

// statusOrder fixes the forward direction of the lifecycle.
var statusOrder = map[GameStatus]int{
	GameSetup:     0,
	GameOpen:      1,
	GameLive:      2,
	GameCompleted: 3,
}

// CanTransition reports whether a game may move from one status to another.
// Only forward moves are allowed; skipping intermediate statuses is fine,
// going backward is not.
func CanTransition(from, to GameStatus) bool {
	fromOrder, ok := statusOrder[from]
	if !ok {
		return false
	}
	toOrder, ok := statusOrder[to]
	if !ok {
		return false
	}
	return toOrder > fromOrder
}

type Game struct {
	ID          uuid.UUID  `db:"id" json:"id"`
	EventID     uuid.UUID  `db:"event_id" json:"event_id"`
	Name        string     `db:"name" json:"name"`
	Status      GameStatus `db:"status" json:"status"`
	AccessCode  string     `db:"access_code" json:"access_code"`
	PicksLockAt *time.Time `db:"picks_lock_at" json:"picks_lock_at,omitempty"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
}

// PicksOpen reports whether picks may be written for this game right now.
// Both conditions are wall-clock relative, so callers must evaluate this at
// write time rather than cache the result.
func (g *Game) PicksOpen(now time.Time) bool {
	if g.Status != GameOpen {
		return false
	}
	if g.PicksLockAt != nil && !now.Before(*g.PicksLockAt) {
		return false
	}
	return true
}

// Joinable reports whether new participants may join. Late joins are allowed
// while the ceremony is live; setup and completed games are closed.
func (g *Game) Joinable() bool {
	return g.Status == GameOpen || g.Status == GameLive
}

type GameParticipant struct {
	GameID   uuid.UUID `db:"game_id"`
	UserID   uuid.UUID `db:"user_id"`
	JoinedAt time.Time `db:"joined_at"`
}

// NormalizeAccessCode maps user input to the stored form.
func NormalizeAccessCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// ValidAccessCode reports whether a normalized code is well formed:
// uppercase alphanumeric, at least 4 characters.
func ValidAccessCode(code string) bool {
	if len(code) < 4 {
		return false
	}
	for _, r := range code {
		if (r < 'A' || r > 'Z') && (r < '0' || r > '9') {
			return false
		}
	}
	return true
}
