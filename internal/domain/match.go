package domain

import (
	"time"

	"game_arcade/internal/game"
)

// MatchResult is one player's outcome of a finished match.
type MatchResult string

const (
	MatchResultWin  MatchResult = "win"
	MatchResultLose MatchResult = "lose"
	MatchResultDraw MatchResult = "draw"
)

// Match is one player's row in the persisted match history. A two-player
// game produces two rows, one per participant, mirroring how clients query
// their own history.
type Match struct {
	ID         int64          `db:"id" json:"id"`
	UserID     int64          `db:"user_id" json:"user_id"`
	GameType   game.Type      `db:"game_type" json:"game_type"`
	OpponentID *int64         `db:"opponent_id" json:"opponent_id,omitempty"`
	SessionID  string         `db:"session_id" json:"session_id"`
	Result     MatchResult    `db:"result" json:"result"`
	Details    map[string]any `db:"details" json:"details,omitempty"`
	CreatedAt  time.Time      `db:"created_at" json:"created_at"`
}
