package awards

import "github.com/google/uuid"

// LeaderboardPlayer is a derived row, never persisted. Rank uses standard
// competition ranking: equal scores share a rank and the next distinct score
// skips by the size of the tie group.
type LeaderboardPlayer struct {
	UserID        uuid.UUID `json:"user_id"`
	Username      string    `json:"username"`
	Email         string    `json:"email"`
	AvatarURL     *string   `json:"avatar_url,omitempty"`
	TotalScore    int       `json:"total_score"`
	CorrectCount  int       `json:"correct_count"`
	Rank          int       `json:"rank"`
	IsCurrentUser bool      `json:"is_current_user"`
}
