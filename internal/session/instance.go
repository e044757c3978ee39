package session

import (
	"time"

	"game_arcade/internal/game"
)

// GameInstance is the authoritative record of one game session. The live
// instance is owned by the Store and only ever changed on its serialized
// mutation path; everything handed out to callers is a Snapshot.
type GameInstance struct {
	ID        string     `json:"id"`
	GameType  game.Type  `json:"game_type"`
	Players   []int64    `json:"players"`
	State     game.State `json:"state"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// Snapshot returns a deep copy that is safe to read and marshal without
// holding any lock.
func (g *GameInstance) Snapshot() *GameInstance {
	c := *g
	c.Players = append([]int64(nil), g.Players...)
	if g.State != nil {
		c.State = g.State.Clone()
	}
	return &c
}

// HasPlayer reports whether id has joined this session.
func (g *GameInstance) HasPlayer(id int64) bool {
	for _, p := range g.Players {
		if p == id {
			return true
		}
	}
	return false
}

// Status is a shorthand for the state's lifecycle phase.
func (g *GameInstance) Status() game.Status {
	if g.State == nil {
		return game.StatusWaiting
	}
	return g.State.GameStatus()
}
