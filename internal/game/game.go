package game

// Type identifies a supported ruleset.
type Type string

const (
	TypeNim Type = "nim"
)

// Status is the lifecycle phase of a game.
type Status string

const (
	StatusWaiting    Status = "waiting"
	StatusInProgress Status = "in_progress"
	StatusOver       Status = "over"
)

// State is the game-type-specific part of a session snapshot. Implementations
// are plain value holders; all transitions go through a Rules implementation.
type State interface {
	GameStatus() Status
	// Winner is the id of the winning player once the game is over, nil
	// while running or after a draw.
	Winner() *int64
	Clone() State
}

// Rules is the transition function for one game type. Implementations must be
// pure: no I/O, no shared mutable state, and every method returns a fresh
// State without modifying its input. A single Rules value is therefore safe
// to share across all sessions of its type.
type Rules interface {
	Type() Type

	MinPlayers() int
	MaxPlayers() int

	// NewState returns the initial waiting state for a fresh session.
	NewState() State

	// Start moves a waiting state to in-progress once enough players have
	// joined. players is the join-ordered member list; join order is turn
	// order, so players[0] moves first.
	Start(s State, players []int64) (State, error)

	// Apply validates playerID's move against s and returns the next state.
	// On a rules violation it returns a typed error and no new state.
	Apply(s State, players []int64, playerID int64, move any) (State, error)

	// Forfeit ends an in-progress game after leaverID abandoned it, awarding
	// the win to the remaining player (no winner if nobody is left).
	Forfeit(s State, leaverID int64, remaining []int64) State
}
