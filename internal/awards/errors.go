package awards

import "errors"

// User-facing failures of the core operations. All of them are recoverable
// by retrying with different input; none is fatal to the process. Storage
// errors are translated to these at the store/service boundary so callers
// can match with errors.Is.
var (
	ErrGameNotFound               = errors.New("game not found")
	ErrCategoryNotFound           = errors.New("category not found")
	ErrNominationNotFound         = errors.New("nomination not found")
	ErrNotAParticipant            = errors.New("user is not a participant of this game")
	ErrPicksLocked                = errors.New("picks are locked for this game")
	ErrCategoryNotInGame          = errors.New("category does not belong to this game's event")
	ErrNominationNotInCategory    = errors.New("nomination does not belong to this category")
	ErrNominationCategoryMismatch = errors.New("nomination does not belong to the revealed category")
	ErrInvalidAccessCode          = errors.New("no game with that access code")
	ErrGameNotJoinable            = errors.New("game is not accepting new participants")
	ErrInvalidTransition          = errors.New("invalid game status transition")
)
