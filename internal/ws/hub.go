package ws

import (
	"encoding/json"
	"errors"
	"sync"

	"game_arcade/internal/game"
	"game_arcade/internal/logger"
	"game_arcade/internal/session"
)

// Hub bridges websocket connections to the session manager. It keeps the
// per-session subscriber groups and fans committed state out to them; all
// game semantics live behind the manager.
type Hub struct {
	manager *session.Manager

	mu      sync.RWMutex
	clients map[int64]*Client            // by player id
	rooms   map[string]map[int64]*Client // session id → subscribers
}

// NewHub wires the hub as the store's commit observer, so every committed
// mutation reaches subscribers in commit order.
func NewHub(manager *session.Manager, store *session.Store) *Hub {
	h := &Hub{
		manager: manager,
		clients: make(map[int64]*Client),
		rooms:   make(map[string]map[int64]*Client),
	}
	store.SetCommitHook(h.publishUpdate)
	return h
}

// publishUpdate runs inside the store's per-session critical section, so it
// must only enqueue: a full send here would stall every writer of the
// session. A subscriber whose buffer is full loses the update; the next
// snapshot supersedes it anyway.
func (h *Hub) publishUpdate(snap *session.GameInstance) {
	data, err := json.Marshal(Message{Type: MsgUpdate, Payload: snap})
	if err != nil {
		logger.Error("marshal game update", "session", snap.ID, "error", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	wsBroadcasts.Inc()
	for _, c := range h.rooms[snap.ID] {
		select {
		case c.Send <- data:
		default:
			wsDropped.Inc()
			logger.Warn("subscriber send buffer full, update dropped",
				"session", snap.ID, "player", c.PlayerID)
		}
	}
}

// register tracks a freshly upgraded connection. A second connection by the
// same player supersedes the first.
func (h *Hub) register(c *Client) {
	h.mu.Lock()
	old := h.clients[c.PlayerID]
	h.clients[c.PlayerID] = c
	h.mu.Unlock()

	wsConnections.Inc()
	if old != nil {
		logger.Warn("duplicate connection, closing previous", "player", c.PlayerID)
		old.Close()
	}
}

func (h *Hub) subscribe(c *Client, sessionID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.rooms[sessionID] == nil {
		h.rooms[sessionID] = make(map[int64]*Client)
	}
	h.rooms[sessionID][c.PlayerID] = c
	c.sessions[sessionID] = true
}

func (h *Hub) unsubscribe(c *Client, sessionID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.unsubscribeLocked(c, sessionID)
}

func (h *Hub) unsubscribeLocked(c *Client, sessionID string) {
	if subs := h.rooms[sessionID]; subs != nil {
		if subs[c.PlayerID] == c {
			delete(subs, c.PlayerID)
		}
		if len(subs) == 0 {
			delete(h.rooms, sessionID)
		}
	}
	delete(c.sessions, sessionID)
}

func (h *Hub) subscribed(c *Client, sessionID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return c.sessions[sessionID]
}

// handleCommand dispatches one decoded client message. Rejections go back to
// the sender only; committed state changes reach the room via the commit
// hook.
func (h *Hub) handleCommand(c *Client, raw []byte) {
	var msg inbound
	if err := json.Unmarshal(raw, &msg); err != nil {
		c.sendError("", "bad_request", "malformed message")
		return
	}
	wsCommands.WithLabelValues(msg.Type).Inc()

	switch msg.Type {
	case MsgCreate:
		h.handleCreate(c, msg.Payload)
	case MsgJoin:
		h.handleJoin(c, msg.Payload)
	case MsgLeave:
		h.handleLeave(c, msg.Payload)
	case MsgMove:
		h.handleMove(c, msg.Payload)
	case MsgList:
		h.handleList(c, msg.Payload)
	default:
		c.sendError("", "bad_request", "unknown command: "+msg.Type)
	}
}

func (h *Hub) handleCreate(c *Client, payload json.RawMessage) {
	var p CreatePayload
	if err := json.Unmarshal(payload, &p); err != nil {
		c.sendError("", "bad_request", "malformed create payload")
		return
	}

	snap, err := h.manager.CreateGame(game.Type(p.GameType), c.PlayerID)
	if err != nil {
		c.sendError("", errorCode(err), err.Error())
		return
	}

	h.subscribe(c, snap.ID)
	// creation commits nothing through the store, so tell the creator directly
	c.send(Message{Type: MsgUpdate, Payload: snap})
}

func (h *Hub) handleJoin(c *Client, payload json.RawMessage) {
	var p JoinPayload
	if err := json.Unmarshal(payload, &p); err != nil || p.SessionID == "" {
		c.sendError("", "bad_request", "malformed join payload")
		return
	}

	// Subscribe before joining so the join's own broadcast includes the
	// joiner; roll back if the manager refuses.
	wasSubscribed := h.subscribed(c, p.SessionID)
	if !wasSubscribed {
		h.subscribe(c, p.SessionID)
	}

	snap, changed, err := h.manager.JoinGame(p.SessionID, c.PlayerID)
	if err != nil {
		if !wasSubscribed {
			h.unsubscribe(c, p.SessionID)
		}
		c.sendError(p.SessionID, errorCode(err), err.Error())
		return
	}

	// An idempotent re-join commits nothing and so broadcasts nothing; the
	// requester still gets the current snapshot.
	if !changed {
		c.send(Message{Type: MsgUpdate, Payload: snap})
	}
}

func (h *Hub) handleLeave(c *Client, payload json.RawMessage) {
	var p LeavePayload
	if err := json.Unmarshal(payload, &p); err != nil || p.SessionID == "" {
		c.sendError("", "bad_request", "malformed leave payload")
		return
	}

	// Unsubscribe first: the forfeit or shrink broadcast goes to the
	// remaining subscribers only.
	h.unsubscribe(c, p.SessionID)
	if _, err := h.manager.LeaveGame(p.SessionID, c.PlayerID); err != nil {
		c.sendError(p.SessionID, errorCode(err), err.Error())
	}
}

func (h *Hub) handleMove(c *Client, payload json.RawMessage) {
	var p MovePayload
	if err := json.Unmarshal(payload, &p); err != nil || p.SessionID == "" {
		c.sendError("", "bad_request", "malformed move payload")
		return
	}

	if _, err := h.manager.SubmitMove(p.SessionID, c.PlayerID, p.Value); err != nil {
		c.sendError(p.SessionID, errorCode(err), err.Error())
	}
}

func (h *Hub) handleList(c *Client, payload json.RawMessage) {
	var p ListPayload
	if len(payload) > 0 {
		if err := json.Unmarshal(payload, &p); err != nil {
			c.sendError("", "bad_request", "malformed list payload")
			return
		}
	}
	games := h.manager.ListGames(game.Type(p.GameType), game.Status(p.Status))
	c.send(Message{Type: MsgGames, Payload: games})
}

// onDisconnect treats a dropped connection as an explicit leave of every
// session the connection had joined.
func (h *Hub) onDisconnect(c *Client) {
	h.mu.Lock()
	if h.clients[c.PlayerID] == c {
		delete(h.clients, c.PlayerID)
	}
	left := make([]string, 0, len(c.sessions))
	for sid := range c.sessions {
		left = append(left, sid)
	}
	for _, sid := range left {
		h.unsubscribeLocked(c, sid)
	}
	h.mu.Unlock()

	wsConnections.Dec()
	for _, sid := range left {
		if _, err := h.manager.LeaveGame(sid, c.PlayerID); err != nil && !errors.Is(err, session.ErrSessionNotFound) {
			logger.Error("leave on disconnect", "session", sid, "player", c.PlayerID, "error", err)
		}
	}
	logger.Info("client disconnected", "player", c.PlayerID, "sessions", len(left))
}

// errorCode maps typed manager and rules errors to stable wire codes.
func errorCode(err error) string {
	switch {
	case errors.Is(err, session.ErrSessionNotFound):
		return "session_not_found"
	case errors.Is(err, session.ErrSessionFull):
		return "session_full"
	case errors.Is(err, session.ErrAlreadyInGame):
		return "already_in_game"
	case errors.Is(err, session.ErrPlayerNotInSession):
		return "player_not_in_session"
	case errors.Is(err, game.ErrInvalidGameType):
		return "invalid_game_type"
	case errors.Is(err, game.ErrNotYourTurn):
		return "not_your_turn"
	case errors.Is(err, game.ErrInvalidQuantity):
		return "invalid_quantity"
	case errors.Is(err, game.ErrGameOver):
		return "game_over"
	default:
		return "internal_error"
	}
}
