package awards

import "github.com/google/uuid"

type Category struct {
	ID      uuid.UUID `db:"id" json:"id"`
	EventID uuid.UUID `db:"event_id" json:"event_id"`
	Name    string    `db:"name" json:"name"`
	Points  int       `db:"points" json:"points"`

	// Display and tie-break ordering within the event
	SortOrder int `db:"sort_order" json:"sort_order"`

	// Invariant: IsRevealed is true exactly when WinnerNominationID is set.
	// Both are written atomically by the reveal store.
	IsRevealed         bool       `db:"is_revealed" json:"is_revealed"`
	WinnerNominationID *uuid.UUID `db:"winner_nomination_id" json:"winner_nomination_id,omitempty"`
}

func (c *Category) IsWinner(nominationID uuid.UUID) bool {
	return c.IsRevealed && c.WinnerNominationID != nil && *c.WinnerNominationID == nominationID
}

type Nomination struct {
	ID         uuid.UUID  `db:"id" json:"id"`
	CategoryID uuid.UUID  `db:"category_id" json:"category_id"`
	PersonID   *uuid.UUID `db:"person_id" json:"person_id,omitempty"`
	WorkID     *uuid.UUID `db:"work_id" json:"work_id,omitempty"`

	// Free-text fallback shown when neither reference describes the entry
	Label string `db:"label" json:"label"`
}
