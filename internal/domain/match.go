package domain

import (
	"time"

	"github.com/google/uuid"
)

// QueuedPlayer is a player waiting in the game room
type QueuedPlayer struct {
	PlayerID string `json:"player_id"`
	Score    int    `json:"score"`
	Username string `json:"username"`
}

// Match is an immutable pairing of two queued players.
// Scores are captured at pairing time.
type Match struct {
	ID         uuid.UUID `json:"id"`
	P1         string    `json:"p1"`
	P2         string    `json:"p2"`
	P1Username string    `json:"p1_username"`
	P2Username string    `json:"p2_username"`
	P1Score    int       `json:"p1_score"`
	P2Score    int       `json:"p2_score"`
	CreatedAt  time.Time `json:"created_at"`
}

// NewMatch pairs a and b, a being the stronger player
func NewMatch(a, b QueuedPlayer) Match {
	return Match{
		ID:         uuid.New(),
		P1:         a.PlayerID,
		P2:         b.PlayerID,
		P1Username: a.Username,
		P2Username: b.Username,
		P1Score:    a.Score,
		P2Score:    b.Score,
		CreatedAt:  time.Now(),
	}
}
