package game

// NimConfig are the tunables of the Nim ruleset.
type NimConfig struct {
	PileSize int // objects in the pile at game start
	MaxTake  int // most objects a single move may remove

	// TakeLastWins selects the convention: true means the player who removes
	// the last object wins (normal play), false means they lose (misère).
	TakeLastWins bool
}

// DefaultNimConfig is the classic 21-object, take-up-to-3, normal-play game.
var DefaultNimConfig = NimConfig{
	PileSize:     21,
	MaxTake:      3,
	TakeLastWins: true,
}

// NimState is the full renderable state of one Nim session.
type NimState struct {
	Status    Status `json:"status"`
	Remaining int    `json:"remaining"`
	Turn      int64  `json:"turn,omitempty"`
	WinnerID  *int64 `json:"winner,omitempty"`
}

func (s *NimState) GameStatus() Status { return s.Status }
func (s *NimState) Winner() *int64     { return s.WinnerID }

func (s *NimState) Clone() State {
	c := *s
	if s.WinnerID != nil {
		w := *s.WinnerID
		c.WinnerID = &w
	}
	return &c
}

// NimRules implements Rules for bounded-take Nim.
type NimRules struct {
	cfg NimConfig
}

func NewNimRules(cfg NimConfig) *NimRules {
	if cfg.PileSize <= 0 {
		cfg.PileSize = DefaultNimConfig.PileSize
	}
	if cfg.MaxTake <= 0 {
		cfg.MaxTake = DefaultNimConfig.MaxTake
	}
	return &NimRules{cfg: cfg}
}

func (r *NimRules) Type() Type      { return TypeNim }
func (r *NimRules) MinPlayers() int { return 2 }
func (r *NimRules) MaxPlayers() int { return 2 }

func (r *NimRules) NewState() State {
	return &NimState{Status: StatusWaiting, Remaining: r.cfg.PileSize}
}

func (r *NimRules) Start(s State, players []int64) (State, error) {
	ns, ok := s.(*NimState)
	if !ok || ns.Status != StatusWaiting {
		return nil, ErrGameOver
	}
	next := ns.Clone().(*NimState)
	next.Status = StatusInProgress
	next.Turn = players[0] // first joiner opens
	return next, nil
}

func (r *NimRules) Apply(s State, players []int64, playerID int64, move any) (State, error) {
	ns, ok := s.(*NimState)
	if !ok {
		return nil, ErrGameOver
	}
	if ns.Status != StatusInProgress {
		return nil, ErrGameOver
	}
	if ns.Turn != playerID {
		return nil, ErrNotYourTurn
	}

	take, ok := moveQuantity(move)
	if !ok {
		return nil, ErrInvalidQuantity
	}
	max := r.cfg.MaxTake
	if ns.Remaining < max {
		max = ns.Remaining
	}
	if take < 1 || take > max {
		return nil, ErrInvalidQuantity
	}

	next := ns.Clone().(*NimState)
	next.Remaining -= take

	if next.Remaining == 0 {
		next.Status = StatusOver
		next.Turn = 0
		winner := playerID
		if !r.cfg.TakeLastWins {
			winner = nextPlayer(players, playerID)
		}
		next.WinnerID = &winner
		return next, nil
	}

	next.Turn = nextPlayer(players, playerID)
	return next, nil
}

func (r *NimRules) Forfeit(s State, leaverID int64, remaining []int64) State {
	ns, ok := s.(*NimState)
	if !ok {
		return s
	}
	next := ns.Clone().(*NimState)
	next.Status = StatusOver
	next.Turn = 0
	if len(remaining) > 0 {
		w := remaining[0]
		next.WinnerID = &w
	}
	return next
}

// nextPlayer returns the member after current in join order, wrapping.
func nextPlayer(players []int64, current int64) int64 {
	for i, p := range players {
		if p == current {
			return players[(i+1)%len(players)]
		}
	}
	return players[0]
}

// moveQuantity extracts the take count from a decoded JSON move value.
// Clients send a bare number; decoded JSON numbers arrive as float64.
func moveQuantity(move any) (int, bool) {
	switch v := move.(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		if v != float64(int(v)) {
			return 0, false
		}
		return int(v), true
	default:
		return 0, false
	}
}
