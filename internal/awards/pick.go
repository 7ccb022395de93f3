package awards

import (
	"time"

	"github.com/google/uuid"
)

// Pick is a participant's chosen nomination for one category of one game.
// There is at most one row per (game, user, category); re-picking overwrites.
type Pick struct {
	ID           uuid.UUID `db:"id" json:"id"`
	GameID       uuid.UUID `db:"game_id" json:"game_id"`
	UserID       uuid.UUID `db:"user_id" json:"user_id"`
	CategoryID   uuid.UUID `db:"category_id" json:"category_id"`
	NominationID uuid.UUID `db:"nomination_id" json:"nomination_id"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}
