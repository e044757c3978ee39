package integration

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"game_arcade/internal/config"
	httpserver "game_arcade/internal/http"
	"game_arcade/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type snapshot struct {
	ID       string  `json:"id"`
	GameType string  `json:"game_type"`
	Players  []int64 `json:"players"`
	State    struct {
		Status    string `json:"status"`
		Remaining int    `json:"remaining"`
		Turn      int64  `json:"turn"`
		Winner    *int64 `json:"winner"`
	} `json:"state"`
}

type wireError struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	SessionID string `json:"session_id"`
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	t.Setenv("JWT_SECRET", "e2e-secret")
	service.InitJWT()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		NimPileSize:     21,
		NimMaxTake:      3,
		NimTakeLastWins: true,
		SessionIdleTTL:  time.Minute,
		SweepInterval:   time.Minute,
	}

	r := gin.New()
	httpserver.RegisterRoutes(r, nil, cfg, "test")

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func dialPlayer(t *testing.T, srv *httptest.Server, playerID int64) *websocket.Conn {
	t.Helper()
	token, err := service.GenerateJWT(playerID)
	require.NoError(t, err)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?token=" + token
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	expectType(t, conn, "ready")
	return conn
}

func sendCmd(t *testing.T, conn *websocket.Conn, msgType string, payload any) {
	t.Helper()
	raw, err := json.Marshal(payload)
	require.NoError(t, err)
	data, err := json.Marshal(map[string]any{"type": msgType, "payload": json.RawMessage(raw)})
	require.NoError(t, err)
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, data))
}

func readEnvelope(t *testing.T, conn *websocket.Conn) envelope {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(3*time.Second)))
	_, raw, err := conn.ReadMessage()
	require.NoError(t, err)
	var msg envelope
	require.NoError(t, json.Unmarshal(raw, &msg))
	return msg
}

func expectType(t *testing.T, conn *websocket.Conn, msgType string) envelope {
	t.Helper()
	msg := readEnvelope(t, conn)
	require.Equal(t, msgType, msg.Type)
	return msg
}

func expectUpdate(t *testing.T, conn *websocket.Conn) snapshot {
	t.Helper()
	msg := expectType(t, conn, "game_update")
	var s snapshot
	require.NoError(t, json.Unmarshal(msg.Payload, &s))
	return s
}

func expectError(t *testing.T, conn *websocket.Conn, code string) {
	t.Helper()
	msg := expectType(t, conn, "game_error")
	var e wireError
	require.NoError(t, json.Unmarshal(msg.Payload, &e))
	require.Equal(t, code, e.Code)
}

// expectSilence asserts nothing arrives on the connection for a short window.
// The read timeout poisons the websocket, so only call this when the
// connection is done being read.
func expectSilence(t *testing.T, conn *websocket.Conn) {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(300*time.Millisecond)))
	_, _, err := conn.ReadMessage()
	netErr, ok := err.(interface{ Timeout() bool })
	require.True(t, ok && netErr.Timeout(), "expected read timeout, got %v", err)
}

// expectNoPendingUpdate proves the connection's outbound queue holds no game
// update: a list command is answered in order, so if an update had been
// queued it would arrive first and fail the type check.
func expectNoPendingUpdate(t *testing.T, conn *websocket.Conn) {
	t.Helper()
	sendCmd(t, conn, "list", map[string]any{})
	expectType(t, conn, "games")
}

func TestFullNimMatchOverWebsocket(t *testing.T) {
	srv := newTestServer(t)

	const alice, bob int64 = 1, 2
	a := dialPlayer(t, srv, alice)
	b := dialPlayer(t, srv, bob)

	// alice opens a session
	sendCmd(t, a, "create", map[string]any{"game_type": "nim"})
	created := expectUpdate(t, a)
	assert.Equal(t, "waiting", created.State.Status)
	assert.Equal(t, []int64{alice}, created.Players)

	// bob joins; both subscribers receive the started game
	sendCmd(t, b, "join", map[string]any{"session_id": created.ID})
	for _, conn := range []*websocket.Conn{a, b} {
		s := expectUpdate(t, conn)
		assert.Equal(t, "in_progress", s.State.Status)
		assert.Equal(t, []int64{alice, bob}, s.Players)
		assert.Equal(t, alice, s.State.Turn, "first joiner opens")
		assert.Equal(t, 21, s.State.Remaining)
	}

	// out-of-turn move is rejected to bob only
	sendCmd(t, b, "move", map[string]any{"session_id": created.ID, "value": 1})
	expectError(t, b, "not_your_turn")
	expectNoPendingUpdate(t, a)

	// oversized take is rejected to alice only
	sendCmd(t, a, "move", map[string]any{"session_id": created.ID, "value": 5})
	expectError(t, a, "invalid_quantity")
	expectNoPendingUpdate(t, b)

	// play out the match with maximal takes: 21 objects, 3 per move, so the
	// seventh move (alice's fourth) empties the pile and wins
	conns := map[int64]*websocket.Conn{alice: a, bob: b}
	state := created.State
	state.Turn = alice
	remaining := 21
	for remaining > 0 {
		take := 3
		if remaining < take {
			take = remaining
		}
		sendCmd(t, conns[state.Turn], "move", map[string]any{"session_id": created.ID, "value": take})

		var sa, sb snapshot
		sa = expectUpdate(t, a)
		sb = expectUpdate(t, b)
		assert.Equal(t, sa, sb, "all subscribers see the same snapshot")

		remaining -= take
		assert.Equal(t, remaining, sa.State.Remaining)
		state = sa.State
	}

	require.Equal(t, "over", state.Status)
	require.NotNil(t, state.Winner)
	assert.Equal(t, alice, *state.Winner)

	// moves after game over bounce; the error being the very next frame also
	// proves the final update arrived exactly once
	sendCmd(t, b, "move", map[string]any{"session_id": created.ID, "value": 1})
	expectError(t, b, "game_over")

	expectSilence(t, a)
	expectSilence(t, b)
}

func TestRejoinReturnsCurrentState(t *testing.T) {
	srv := newTestServer(t)
	a := dialPlayer(t, srv, 1)
	b := dialPlayer(t, srv, 2)

	sendCmd(t, a, "create", map[string]any{"game_type": "nim"})
	created := expectUpdate(t, a)

	sendCmd(t, b, "join", map[string]any{"session_id": created.ID})
	expectUpdate(t, a)
	expectUpdate(t, b)

	// a second join from the same member is answered, not broadcast
	sendCmd(t, b, "join", map[string]any{"session_id": created.ID})
	s := expectUpdate(t, b)
	assert.Equal(t, "in_progress", s.State.Status)
	expectSilence(t, a)
}

func TestLeaveForfeitsInProgressGame(t *testing.T) {
	srv := newTestServer(t)
	const alice, bob int64 = 1, 2
	a := dialPlayer(t, srv, alice)
	b := dialPlayer(t, srv, bob)

	sendCmd(t, a, "create", map[string]any{"game_type": "nim"})
	created := expectUpdate(t, a)
	sendCmd(t, b, "join", map[string]any{"session_id": created.ID})
	expectUpdate(t, a)
	expectUpdate(t, b)

	sendCmd(t, b, "leave", map[string]any{"session_id": created.ID})

	s := expectUpdate(t, a)
	assert.Equal(t, "over", s.State.Status)
	assert.Equal(t, []int64{alice}, s.Players)
	require.NotNil(t, s.State.Winner)
	assert.Equal(t, alice, *s.State.Winner)

	// the leaver is unsubscribed before the forfeit commits
	expectSilence(t, b)
}

func TestDisconnectCountsAsLeave(t *testing.T) {
	srv := newTestServer(t)
	const alice, bob int64 = 1, 2
	a := dialPlayer(t, srv, alice)
	b := dialPlayer(t, srv, bob)

	sendCmd(t, a, "create", map[string]any{"game_type": "nim"})
	created := expectUpdate(t, a)
	sendCmd(t, b, "join", map[string]any{"session_id": created.ID})
	expectUpdate(t, a)
	expectUpdate(t, b)

	require.NoError(t, b.Close())

	s := expectUpdate(t, a)
	assert.Equal(t, "over", s.State.Status)
	require.NotNil(t, s.State.Winner)
	assert.Equal(t, alice, *s.State.Winner)
}

func TestCreateUnknownGameType(t *testing.T) {
	srv := newTestServer(t)
	a := dialPlayer(t, srv, 1)

	sendCmd(t, a, "create", map[string]any{"game_type": "checkers"})
	expectError(t, a, "invalid_game_type")
}

func TestJoinMissingSession(t *testing.T) {
	srv := newTestServer(t)
	a := dialPlayer(t, srv, 1)

	sendCmd(t, a, "join", map[string]any{"session_id": "nope"})
	expectError(t, a, "session_not_found")
}

func TestThirdPlayerGetsSessionFull(t *testing.T) {
	srv := newTestServer(t)
	a := dialPlayer(t, srv, 1)
	b := dialPlayer(t, srv, 2)
	c := dialPlayer(t, srv, 3)

	sendCmd(t, a, "create", map[string]any{"game_type": "nim"})
	created := expectUpdate(t, a)
	sendCmd(t, b, "join", map[string]any{"session_id": created.ID})
	expectUpdate(t, a)
	expectUpdate(t, b)

	sendCmd(t, c, "join", map[string]any{"session_id": created.ID})
	expectError(t, c, "session_full")
	expectSilence(t, a)
	expectSilence(t, b)
}

func TestRESTDirectory(t *testing.T) {
	srv := newTestServer(t)
	a := dialPlayer(t, srv, 1)

	sendCmd(t, a, "create", map[string]any{"game_type": "nim"})
	created := expectUpdate(t, a)

	resp, err := http.Get(srv.URL + "/api/v1/games?status=waiting")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Games []snapshot `json:"games"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Len(t, body.Games, 1)
	assert.Equal(t, created.ID, body.Games[0].ID)

	resp2, err := http.Get(srv.URL + "/api/v1/games/" + created.ID)
	require.NoError(t, err)
	defer resp2.Body.Close()
	assert.Equal(t, http.StatusOK, resp2.StatusCode)

	resp3, err := http.Get(srv.URL + "/api/v1/games/missing")
	require.NoError(t, err)
	defer resp3.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp3.StatusCode)
}
