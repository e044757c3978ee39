package session

import (
	"context"
	"sync"
	"time"

	"game_arcade/internal/domain"
	"game_arcade/internal/game"
	"game_arcade/internal/logger"

	"github.com/google/uuid"
)

// Recorder persists one player's row of a finished match. Nil-safe at the
// Manager level: without a recorder finished games are simply not archived.
type Recorder interface {
	Create(ctx context.Context, m *domain.Match) error
}

type ManagerConfig struct {
	// IdleTTL is how long a finished, empty session stays listed before the
	// sweeper evicts it.
	IdleTTL time.Duration
	// SweepInterval is how often the sweeper runs.
	SweepInterval time.Duration
}

const (
	defaultIdleTTL       = 5 * time.Minute
	defaultSweepInterval = time.Minute

	// abandonedAfter evicts sessions nobody ever occupied or everyone left
	// without finishing, so a crashed client cannot pin memory forever.
	abandonedAfter = time.Hour
)

// Manager owns session lifecycle: creation, membership, move submission and
// eviction. All state changes funnel through the Store's serialized mutation
// path; the Manager adds the policy on top.
type Manager struct {
	store    *Store
	games    *game.Factory
	cfg      ManagerConfig
	recorder Recorder

	// seated tracks which session each player currently occupies, per game
	// type. Guarded by mu; only membership operations touch it, the move
	// path never does.
	mu     sync.Mutex
	seated map[game.Type]map[int64]string
}

func NewManager(store *Store, games *game.Factory, recorder Recorder, cfg ManagerConfig) *Manager {
	if cfg.IdleTTL <= 0 {
		cfg.IdleTTL = defaultIdleTTL
	}
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = defaultSweepInterval
	}
	return &Manager{
		store:    store,
		games:    games,
		cfg:      cfg,
		recorder: recorder,
		seated:   make(map[game.Type]map[int64]string),
	}
}

// CreateGame opens a new session of the given type with playerID already
// seated as its first member. A player holding an active session of the same
// type cannot open another one.
func (m *Manager) CreateGame(t game.Type, playerID int64) (*GameInstance, error) {
	rules, err := m.games.Rules(t)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if sid, ok := m.seatedIn(t, playerID); ok {
		logger.Debug("create rejected, player already seated", "player", playerID, "session", sid)
		return nil, ErrAlreadyInGame
	}

	now := time.Now()
	inst := &GameInstance{
		ID:        uuid.NewString(),
		GameType:  t,
		Players:   []int64{playerID},
		State:     rules.NewState(),
		CreatedAt: now,
		UpdatedAt: now,
	}
	m.store.Put(inst)
	m.seat(t, playerID, inst.ID)

	logger.Info("session created", "session", inst.ID, "game", t, "player", playerID)
	return inst.Snapshot(), nil
}

// JoinGame admits playerID into the session. Re-join by an existing member is
// idempotent: it returns the current snapshot without committing anything,
// reported by changed == false. Reaching the game's minimum player count
// starts the match.
func (m *Manager) JoinGame(sessionID string, playerID int64) (snap *GameInstance, changed bool, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cur, err := m.store.Get(sessionID)
	if err != nil {
		return nil, false, err
	}
	if sid, ok := m.seatedIn(cur.GameType, playerID); ok && sid != sessionID {
		return nil, false, ErrAlreadyInGame
	}

	var gameType game.Type
	snap, err = m.store.Mutate(sessionID, func(inst *GameInstance) error {
		gameType = inst.GameType
		if inst.HasPlayer(playerID) {
			return errNoChange
		}
		if inst.Status() == game.StatusOver {
			return game.ErrGameOver
		}

		rules, err := m.games.Rules(inst.GameType)
		if err != nil {
			return err
		}
		if len(inst.Players) >= rules.MaxPlayers() {
			return ErrSessionFull
		}

		inst.Players = append(inst.Players, playerID)
		if inst.Status() == game.StatusWaiting && len(inst.Players) >= rules.MinPlayers() {
			started, err := rules.Start(inst.State, inst.Players)
			if err != nil {
				inst.Players = inst.Players[:len(inst.Players)-1]
				return err
			}
			inst.State = started
		}
		return nil
	})

	if err == errNoChange {
		snap, err = m.store.Get(sessionID)
		return snap, false, err
	}
	if err != nil {
		return nil, false, err
	}

	m.seat(gameType, playerID, sessionID)
	logger.Info("player joined", "session", sessionID, "player", playerID, "status", snap.Status())
	return snap, true, nil
}

// LeaveGame removes playerID from the session. Leaving an in-progress game is
// a forfeit: the match ends immediately with the remaining player as winner.
// Leaving a session one is not part of is a benign no-op, since leave
// requests race with disconnect-driven teardown.
func (m *Manager) LeaveGame(sessionID string, playerID int64) (*GameInstance, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var (
		gameType game.Type
		ended    bool
	)
	snap, err := m.store.Mutate(sessionID, func(inst *GameInstance) error {
		gameType = inst.GameType
		if !inst.HasPlayer(playerID) {
			return errNoChange
		}

		remaining := make([]int64, 0, len(inst.Players)-1)
		for _, p := range inst.Players {
			if p != playerID {
				remaining = append(remaining, p)
			}
		}
		inst.Players = remaining

		if inst.Status() == game.StatusInProgress {
			rules, err := m.games.Rules(inst.GameType)
			if err != nil {
				return err
			}
			inst.State = rules.Forfeit(inst.State, playerID, remaining)
			ended = true
		}
		return nil
	})

	if err == errNoChange {
		return m.store.Get(sessionID)
	}
	if err != nil {
		return nil, err
	}

	m.unseat(gameType, playerID)
	if ended {
		// the match is over for everyone still seated
		for _, p := range snap.Players {
			m.unseat(gameType, p)
		}
		m.recordMatch(snap, &playerID)
	}

	logger.Info("player left", "session", sessionID, "player", playerID, "forfeit", ended)
	return snap, nil
}

// SubmitMove applies playerID's move through the rules engine. A rejected
// move leaves the session untouched and returns the typed rules error; the
// caller routes it to the offending player only.
func (m *Manager) SubmitMove(sessionID string, playerID int64, move any) (*GameInstance, error) {
	var (
		gameType game.Type
		ended    bool
	)
	snap, err := m.store.Mutate(sessionID, func(inst *GameInstance) error {
		gameType = inst.GameType
		if !inst.HasPlayer(playerID) {
			return ErrPlayerNotInSession
		}

		rules, err := m.games.Rules(inst.GameType)
		if err != nil {
			return err
		}
		next, err := rules.Apply(inst.State, inst.Players, playerID, move)
		if err != nil {
			return err
		}
		inst.State = next
		ended = next.GameStatus() == game.StatusOver
		return nil
	})
	if err != nil {
		return nil, err
	}

	if ended {
		m.mu.Lock()
		for _, p := range snap.Players {
			m.unseat(gameType, p)
		}
		m.mu.Unlock()
		m.recordMatch(snap, nil)
		logger.Info("session finished", "session", sessionID, "game", gameType)
	}
	return snap, nil
}

// GetGame returns a snapshot of one session.
func (m *Manager) GetGame(sessionID string) (*GameInstance, error) {
	return m.store.Get(sessionID)
}

// ListGames returns snapshots of live sessions, optionally filtered by game
// type and status. Empty filter values match everything.
func (m *Manager) ListGames(t game.Type, status game.Status) []*GameInstance {
	all := m.store.List()
	out := make([]*GameInstance, 0, len(all))
	for _, inst := range all {
		if t != "" && inst.GameType != t {
			continue
		}
		if status != "" && inst.Status() != status {
			continue
		}
		out = append(out, inst)
	}
	return out
}

// StartSweeper launches the background eviction loop; it stops when ctx is
// cancelled.
func (m *Manager) StartSweeper(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(m.cfg.SweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				m.sweep(time.Now())
			case <-ctx.Done():
				return
			}
		}
	}()
}

// sweep evicts finished, empty sessions past the idle window, plus any empty
// session old enough to be considered abandoned.
func (m *Manager) sweep(now time.Time) {
	for _, inst := range m.store.List() {
		if len(inst.Players) > 0 {
			continue
		}
		finished := inst.Status() == game.StatusOver && now.Sub(inst.UpdatedAt) > m.cfg.IdleTTL
		abandoned := now.Sub(inst.CreatedAt) > abandonedAfter
		if finished || abandoned {
			m.store.Delete(inst.ID)
			logger.Info("session evicted", "session", inst.ID, "status", inst.Status())
		}
	}
}

// recordMatch archives one row per participant, best effort and off the hot
// path. forfeiter, when set, identifies the player who lost by leaving and is
// no longer in snap.Players.
func (m *Manager) recordMatch(snap *GameInstance, forfeiter *int64) {
	if m.recorder == nil {
		return
	}

	participants := append([]int64(nil), snap.Players...)
	if forfeiter != nil {
		participants = append(participants, *forfeiter)
	}
	winner := snap.State.Winner()

	for i, p := range participants {
		result := domain.MatchResultDraw
		if winner != nil {
			if *winner == p {
				result = domain.MatchResultWin
			} else {
				result = domain.MatchResultLose
			}
		}

		var opponent *int64
		if len(participants) == 2 {
			o := participants[1-i]
			opponent = &o
		}

		row := &domain.Match{
			UserID:     p,
			GameType:   snap.GameType,
			OpponentID: opponent,
			SessionID:  snap.ID,
			Result:     result,
			Details:    map[string]any{"state": snap.State},
		}
		go func(row *domain.Match) {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := m.recorder.Create(ctx, row); err != nil {
				logger.Error("match archive failed", "session", row.SessionID, "user", row.UserID, "error", err)
			}
		}(row)
	}
}

func (m *Manager) seatedIn(t game.Type, playerID int64) (string, bool) {
	byPlayer := m.seated[t]
	if byPlayer == nil {
		return "", false
	}
	sid, ok := byPlayer[playerID]
	if !ok {
		return "", false
	}
	// drop stale entries for sessions that finished or were evicted
	inst, err := m.store.Get(sid)
	if err != nil || inst.Status() == game.StatusOver {
		delete(byPlayer, playerID)
		return "", false
	}
	return sid, true
}

func (m *Manager) seat(t game.Type, playerID int64, sessionID string) {
	if m.seated[t] == nil {
		m.seated[t] = make(map[int64]string)
	}
	m.seated[t][playerID] = sessionID
}

func (m *Manager) unseat(t game.Type, playerID int64) {
	if byPlayer := m.seated[t]; byPlayer != nil {
		delete(byPlayer, playerID)
	}
}
